// Package shell orchestrates the application: it turns user keywords into
// prompts, runs narrative and image generation concurrently, and wires the
// results into playback, sharing, and history.
package shell

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/anikutusu/anikutusu"
	"github.com/anikutusu/anikutusu/genai"
	"github.com/anikutusu/anikutusu/history"
	"github.com/anikutusu/anikutusu/prompt"
	"github.com/anikutusu/anikutusu/sharecodec"
	"github.com/anikutusu/anikutusu/speech"
	"github.com/anikutusu/anikutusu/utils/stream"
)

// DefaultBaseURL is the public address share links point at.
const DefaultBaseURL = "https://anikutusu.app/"

// Generator is the slice of the generative service the shell needs.
type Generator interface {
	GenerateNarrative(ctx context.Context, promptText string) (string, error)
	GenerateImages(ctx context.Context, promptText string, config genai.ImageConfig) ([]genai.Image, error)
}

// Request is one generation request.
type Request struct {
	Query      string
	Category   anikutusu.Category
	ImageStyle anikutusu.ImageStyle
}

// Result is a completed, not yet titled, generation.
type Result struct {
	Request   Request
	Narrative string
	Images    []genai.Image
	// ImageErr is set when a shared memory loaded fine but regenerating
	// its images failed; the narrative stays usable.
	ImageErr error
}

// Shell owns one user session: the current result, the playback session,
// and the history store.
type Shell struct {
	gen     Generator
	history *history.Store
	logger  *slog.Logger
	baseURL string

	mu         sync.Mutex
	generating bool
	current    *Result
}

// Option configures a Shell.
type Option func(*Shell)

// WithBaseURL overrides the share link base address.
func WithBaseURL(baseURL string) Option {
	return func(s *Shell) { s.baseURL = baseURL }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Shell) { s.logger = logger }
}

// New creates a shell over the given generator and history store.
func New(gen Generator, store *history.Store, opts ...Option) *Shell {
	s := &Shell{
		gen:     gen,
		history: store,
		logger:  slog.Default(),
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StreamingGenerator is implemented by generators that can stream the
// narrative as it is produced.
type StreamingGenerator interface {
	StreamNarrative(ctx context.Context, promptText string) (*stream.Stream[string], error)
}

// Generate builds prompts for the request and dispatches narrative and
// image generation concurrently, joining both. Either failure fails the
// whole step; the prior result is kept so the user can retry. Re-entrant
// generation is rejected while one is in flight.
func (s *Shell) Generate(ctx context.Context, req Request) (*Result, error) {
	return s.generate(ctx, req, nil)
}

// GenerateStreamed behaves like Generate but delivers narrative deltas to
// onDelta as they arrive. Generators without streaming support deliver the
// whole narrative as a single delta.
func (s *Shell) GenerateStreamed(ctx context.Context, req Request, onDelta func(delta string)) (*Result, error) {
	return s.generate(ctx, req, onDelta)
}

func (s *Shell) generate(ctx context.Context, req Request, onDelta func(delta string)) (*Result, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, anikutusu.NewInvalidInputError("query must not be empty")
	}

	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return nil, anikutusu.NewInvalidInputError("a generation is already in flight")
	}
	s.generating = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.generating = false
		s.mu.Unlock()
	}()

	narrativePrompt, imagePrompt := prompt.Build(req.Category, req.Query, req.ImageStyle)

	var narrative string
	var images []genai.Image
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sg, ok := s.gen.(StreamingGenerator)
		if onDelta == nil || !ok {
			var err error
			narrative, err = s.gen.GenerateNarrative(gctx, narrativePrompt)
			if err == nil && onDelta != nil {
				onDelta(narrative)
			}
			return err
		}

		deltas, err := sg.StreamNarrative(gctx, narrativePrompt)
		if err != nil {
			return err
		}
		var b strings.Builder
		for deltas.Next() {
			delta := deltas.Current()
			b.WriteString(delta)
			onDelta(delta)
		}
		if err := deltas.Err(); err != nil {
			return err
		}
		narrative = b.String()
		return nil
	})
	g.Go(func() error {
		var err error
		images, err = s.gen.GenerateImages(gctx, imagePrompt, genai.DefaultImageConfig())
		return err
	})
	if err := g.Wait(); err != nil {
		if anikutusu.IsKind(err, anikutusu.Generation) {
			return nil, err
		}
		return nil, anikutusu.NewGenerationError("generation failed", err)
	}

	result := &Result{Request: req, Narrative: narrative, Images: images}
	s.mu.Lock()
	s.current = result
	s.mu.Unlock()
	return result, nil
}

// Current returns the latest completed result, if any.
func (s *Shell) Current() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Save titles the current result and appends the minted memory to history.
// A memory is immutable once created.
func (s *Shell) Save(title string) (anikutusu.Memory, error) {
	if strings.TrimSpace(title) == "" {
		return anikutusu.Memory{}, anikutusu.NewInvalidInputError("title must not be empty")
	}

	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if current == nil || current.Narrative == "" {
		return anikutusu.Memory{}, anikutusu.NewInvalidInputError("no generated memory to save")
	}

	var imageData, imageMime string
	if len(current.Images) > 0 {
		imageData = current.Images[0].Data
		imageMime = current.Images[0].MimeType
	}
	m := anikutusu.NewMemory(title, anikutusu.SharedMemoryData{
		Title:      title,
		Query:      current.Request.Query,
		Category:   current.Request.Category,
		ImageStyle: current.Request.ImageStyle,
		ResultText: current.Narrative,
	}, imageData, imageMime)

	s.history.Append(m)
	return m, nil
}

// History returns the persisted memories, newest first.
func (s *Shell) History() []anikutusu.Memory {
	return s.history.Load()
}

// ShareLink encodes the memory's portable fields into a link.
func (s *Shell) ShareLink(m anikutusu.Memory) string {
	return sharecodec.ShareLink(s.baseURL, m.Shared())
}

// LoadShared reconstructs a memory from a share token and re-invokes image
// generation from the decoded fields. A decode failure is the only fatal
// outcome; image regeneration failure is recoverable and leaves the
// narrative and title visible via Result.ImageErr.
func (s *Shell) LoadShared(ctx context.Context, token string) (*Result, error) {
	data, err := sharecodec.Decode(token)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Request: Request{
			Query:      data.Query,
			Category:   data.Category,
			ImageStyle: data.ImageStyle,
		},
		Narrative: data.ResultText,
	}

	_, imagePrompt := prompt.Build(data.Category, data.Query, data.ImageStyle)
	images, err := s.gen.GenerateImages(ctx, imagePrompt, genai.DefaultImageConfig())
	if err != nil {
		s.logger.Warn("could not regenerate shared memory images", "error", err)
		result.ImageErr = err
	} else {
		result.Images = images
	}

	s.mu.Lock()
	s.current = result
	s.mu.Unlock()
	return result, nil
}

// ShareContent is what a share target receives.
type ShareContent struct {
	Title string
	Text  string
	Link  string
	Image *genai.Image
}

// ShareTarget is a native share integration (the device share sheet).
type ShareTarget interface {
	Share(ctx context.Context, content ShareContent) error
}

// Share sentinel errors. Cancellation is not an error condition;
// unavailability triggers the manual fallback.
var (
	ErrShareUnavailable = errors.New("native share unavailable")
	ErrShareCancelled   = errors.New("share cancelled")
)

// Share attempts a native share of the memory. It reports whether the
// native share completed; when it did not for any reason other than user
// cancellation, the caller should fall back to manual actions (link copy,
// text copy, image download). Only genuine failures return an error.
func (s *Shell) Share(ctx context.Context, target ShareTarget, m anikutusu.Memory) (bool, error) {
	content := ShareContent{
		Title: m.Title,
		Text:  m.ResultText,
		Link:  s.ShareLink(m),
	}
	if m.ImageData != "" {
		content.Image = &genai.Image{MimeType: m.ImageMimeType, Data: m.ImageData}
	}

	if target == nil {
		return false, nil
	}
	err := target.Share(ctx, content)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrShareCancelled):
		return false, nil
	case errors.Is(err, ErrShareUnavailable):
		return false, nil
	default:
		return false, anikutusu.NewShareActionError("native share failed", err)
	}
}

// Dictate runs a recognition session and returns the prior text with the
// streamed transcript appended, mirroring how dictation extends whatever
// the user already typed.
func (s *Shell) Dictate(ctx context.Context, rec speech.Recognizer, prior string) (string, error) {
	transcripts, err := rec.Listen(ctx)
	if err != nil {
		return prior, err
	}

	text := prior
	for transcripts.Next() {
		t := transcripts.Current()
		if !t.Final {
			continue
		}
		if text != "" && !strings.HasSuffix(text, " ") {
			text += " "
		}
		text += t.Text
	}
	if err := transcripts.Err(); err != nil {
		return text, err
	}
	return text, nil
}
