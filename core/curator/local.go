package curator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"vibelist/logger"
	"vibelist/model"
)

// InferenceRuntime is the narrow surface LocalBackend needs from a local
// model runtime (typically a llama.cpp binding). Sampling happens on our
// side from raw logits, so the runtime only loads, tokenizes, and decodes.
type InferenceRuntime interface {
	// LoadModel loads model weights from a file path.
	LoadModel(path string) error
	// NewContext prepares an inference context.
	NewContext(contextSize, threads int) error
	// Tokenize converts text to model tokens.
	Tokenize(text string) ([]int, error)
	// Decode feeds a batch of tokens through the model.
	Decode(tokens []int) error
	// Logits returns the logits for the last decoded token, one per
	// vocabulary entry.
	Logits() []float32
	// TokenText returns the text a token decodes to.
	TokenText(token int) string
	// IsEndOfGeneration reports whether a token terminates generation.
	IsEndOfGeneration(token int) bool
	// Free releases model and context resources.
	Free()
}

// Local sampling parameters.
const (
	localTopK = 40
	localTopP = 0.95
)

// LocalBackend runs playlist generation against a local model. The prompt
// uses a small library sample because local context windows are tight.
type LocalBackend struct {
	ModelPath   string
	ContextSize int
	Threads     int
	MaxTokens   int
	Temperature float64
	Prompt      PromptConfig

	runtime InferenceRuntime

	mu     sync.Mutex
	loaded bool
	rng    *rand.Rand
}

// NewLocalBackend creates a local-model backend over the given runtime.
// The model is not loaded until the first Generate call.
func NewLocalBackend(runtime InferenceRuntime, modelPath string, contextSize, threads, maxTokens, maxPromptTracks int, temperature float64) *LocalBackend {
	cfg := DefaultPromptConfig()
	cfg.MaxTracksInPrompt = maxPromptTracks
	return &LocalBackend{
		ModelPath:   modelPath,
		ContextSize: contextSize,
		Threads:     threads,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Prompt:      cfg,
		runtime:     runtime,
		rng:         rand.New(rand.NewSource(rand.Int63())),
	}
}

// Name returns the backend name.
func (b *LocalBackend) Name() string { return "local" }

// Validate checks a model path and runtime are configured.
func (b *LocalBackend) Validate() error {
	if b.runtime == nil {
		return fmt.Errorf("%w: no inference runtime configured", ErrModelLoad)
	}
	if b.ModelPath == "" {
		return fmt.Errorf("%w: LOCAL_MODEL_PATH is not set", ErrModelLoad)
	}
	return nil
}

// ensureLoaded lazily loads the model and context. Safe to call repeatedly;
// the work happens once.
func (b *LocalBackend) ensureLoaded() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loaded {
		return nil
	}

	logger.Info("loading local model",
		logger.String("path", b.ModelPath),
		logger.Int("contextSize", b.ContextSize),
		logger.Int("threads", b.Threads))

	if err := b.runtime.LoadModel(b.ModelPath); err != nil {
		return fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	if err := b.runtime.NewContext(b.ContextSize, b.Threads); err != nil {
		b.runtime.Free()
		return fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	b.loaded = true
	return nil
}

// Close releases the loaded model. The backend can be reused; the next
// Generate reloads.
func (b *LocalBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loaded {
		b.runtime.Free()
		b.loaded = false
	}
}

// Generate renders the enumerated prompt, runs token-by-token inference with
// top-k/nucleus/temperature sampling, and maps the answer's row numbers back
// to library indices. Tokens stream out as they are drawn.
func (b *LocalBackend) Generate(ctx context.Context, userPrompt string, library []model.Track, stream StreamFunc, verbose bool) ([]int, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if len(library) == 0 {
		return nil, ErrEmptyLibrary
	}
	if err := b.ensureLoaded(); err != nil {
		return nil, err
	}

	prompt, sampled := BuildPrompt(userPrompt, library, b.Prompt)

	tokens, err := b.runtime.Tokenize(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize prompt: %w", err)
	}
	if len(tokens) >= b.ContextSize {
		return nil, fmt.Errorf("%w: %d prompt tokens, context holds %d",
			ErrPromptTooLarge, len(tokens), b.ContextSize)
	}

	logger.Info("local backend generating playlist",
		logger.Int("libraryTracks", len(library)),
		logger.Int("promptTracks", len(sampled)),
		logger.Int("promptTokens", len(tokens)))

	if err := b.runtime.Decode(tokens); err != nil {
		return nil, fmt.Errorf("failed to decode prompt: %w", err)
	}

	var out strings.Builder
	generated := 0
	for total := len(tokens); generated < b.MaxTokens && total < b.ContextSize; generated++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		token := b.sample(b.runtime.Logits())
		if b.runtime.IsEndOfGeneration(token) {
			break
		}

		piece := b.runtime.TokenText(token)
		out.WriteString(piece)
		emit(stream, piece, false)

		if err := b.runtime.Decode([]int{token}); err != nil {
			return nil, fmt.Errorf("failed to decode token: %w", err)
		}
		total++
	}

	text := out.String()
	emit(stream, text, true)

	if verbose {
		logger.Debug("local generation finished",
			logger.Int("generatedTokens", generated),
			logger.Int("responseBytes", len(text)))
	}

	indices := ParseRowResponse(text, sampled)
	if len(indices) == 0 {
		if _, ok := extractArray(text); !ok {
			return nil, ErrNoParseableArray
		}
		return nil, ErrEmptySelection
	}

	logger.Info("local backend generated playlist", logger.Int("tracks", len(indices)))
	return indices, nil
}

type tokenCandidate struct {
	id    int
	logit float64
}

// sample draws the next token: top-k cut, nucleus (top-p) cut, temperature
// scaling, then a categorical draw. Temperature <= 0 degenerates to greedy.
func (b *LocalBackend) sample(logits []float32) int {
	candidates := make([]tokenCandidate, len(logits))
	for i, l := range logits {
		candidates[i] = tokenCandidate{id: i, logit: float64(l)}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].logit > candidates[j].logit
	})

	if len(candidates) > localTopK {
		candidates = candidates[:localTopK]
	}
	candidates = nucleusCut(candidates, localTopP)

	if b.Temperature <= 0 {
		return candidates[0].id
	}

	probs := softmax(candidates, b.Temperature)
	r := b.rng.Float64()
	var cum float64
	for i, p := range probs {
		cum += p
		if r < cum {
			return candidates[i].id
		}
	}
	return candidates[len(candidates)-1].id
}

// nucleusCut keeps the smallest logit-sorted prefix whose probability mass
// reaches topP. At least one candidate survives.
func nucleusCut(candidates []tokenCandidate, topP float64) []tokenCandidate {
	probs := softmax(candidates, 1.0)
	var cum float64
	for i, p := range probs {
		cum += p
		if cum >= topP {
			return candidates[:i+1]
		}
	}
	return candidates
}

// softmax computes probabilities over logit-sorted candidates at the given
// temperature. Subtracting the max logit keeps the exponentials finite.
func softmax(candidates []tokenCandidate, temperature float64) []float64 {
	probs := make([]float64, len(candidates))
	maxLogit := candidates[0].logit
	var sum float64
	for i, c := range candidates {
		probs[i] = math.Exp((c.logit - maxLogit) / temperature)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
