package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vibelist/core/curator"
	"vibelist/logger"
)

var (
	generatePrompt   string
	generateBackend  string
	generateManifest string
	generateVerbose  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a playlist from a natural-language request",
	Long: `Generate a playlist by describing what you want to hear, for example:
  vibelist generate -p "upbeat 80s synth pop for a road trip"`,
	Run: func(cmd *cobra.Command, args []string) {
		if generateBackend != "" {
			cfg.Backend = generateBackend
		}
		if generateManifest != "" {
			cfg.LibraryManifest = generateManifest
		}

		store, err := loadLibrary(cfg)
		if err != nil {
			logger.Fatal("failed to load library", logger.ErrorField(err))
		}

		backend, err := curator.New(cfg.Backend, cfg, nil)
		if err != nil {
			logger.Fatal("failed to create backend", logger.ErrorField(err))
		}

		tracks := store.Tracks()
		fmt.Printf("Curating with %s backend over %d tracks...\n\n", backend.Name(), len(tracks))

		stream := func(chunk string, final bool) {
			if generateVerbose && !final {
				fmt.Print(chunk)
			}
		}

		indices, err := backend.Generate(context.Background(), generatePrompt, tracks, stream, generateVerbose)
		if err != nil {
			fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Playlist (%d tracks):\n", len(indices))
		for i, idx := range indices {
			track := tracks[idx]
			if track.Artist != "" {
				fmt.Printf("%3d. %s - %s\n", i+1, track.Artist, track.DisplayName())
			} else {
				fmt.Printf("%3d. %s\n", i+1, track.DisplayName())
			}
		}
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generatePrompt, "prompt", "p", "", "playlist description (required)")
	generateCmd.Flags().StringVar(&generateBackend, "backend", "", "backend: anthropic, openai, openai-tools, local, keyword")
	generateCmd.Flags().StringVar(&generateManifest, "library", "", "path to the library manifest JSON")
	generateCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "show model output and match detail")
	generateCmd.MarkFlagRequired("prompt")
	rootCmd.AddCommand(generateCmd)
}
