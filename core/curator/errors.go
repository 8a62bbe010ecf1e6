package curator

import (
	"errors"
	"fmt"
)

// Failure taxonomy for playlist generation. Backends recover every failure
// below at their boundary and return it as an error value; only genuinely
// unexpected faults propagate.
var (
	ErrEmptyLibrary       = errors.New("library contains no tracks")
	ErrEmptyKeywords      = errors.New("no usable keywords in prompt")
	ErrNoKeywordMatches   = errors.New("no tracks matched the keywords")
	ErrMissingCredential  = errors.New("missing API credential")
	ErrMalformedEnvelope  = errors.New("malformed API response envelope")
	ErrNoParseableArray   = errors.New("no JSON array found in model response")
	ErrEmptySelection     = errors.New("model selected no valid tracks")
	ErrTurnBudgetExceeded = errors.New("tool loop exceeded maximum turns")
	ErrPromptTooLarge     = errors.New("prompt does not fit in model context")
	ErrModelLoad          = errors.New("failed to load local model")
)

// HTTPError reports a non-200 status from a provider API.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.Status, e.Body)
}
