package main

import (
	"vibelist/cmd"
)

func main() {
	cmd.Execute()
}
