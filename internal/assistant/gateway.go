package assistant

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rohits-web03/robotutor/internal/apperr"
	"github.com/rohits-web03/robotutor/internal/models"
)

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher returns the nearest textbook snippets for a query vector. An
// empty result is not an error.
type Searcher interface {
	Search(ctx context.Context, vector []float32, limit int) ([]Snippet, error)
}

// Generator produces an answer from an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TurnRecorder persists one Q&A turn. The store satisfies this.
type TurnRecorder interface {
	AppendChatMessage(ctx context.Context, msg *models.ChatMessage) error
}

type Snippet struct {
	Text   string
	Source string
	Score  float32
}

type Options struct {
	TopK    int
	Timeout time.Duration
	// SupportedLanguages restricts the language codes accepted by Ask.
	// Empty means pass-through.
	SupportedLanguages []string
}

// Gateway orchestrates one round trip per question: embed, search,
// generate, then best-effort logging. All intelligence lives in the
// external providers; the gateway only sequences and bounds them.
type Gateway struct {
	embedder  Embedder
	searcher  Searcher
	generator Generator
	recorder  TurnRecorder

	topK      int
	timeout   time.Duration
	languages map[string]bool
}

func NewGateway(e Embedder, s Searcher, g Generator, r TurnRecorder, opts Options) *Gateway {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	var langs map[string]bool
	if len(opts.SupportedLanguages) > 0 {
		langs = make(map[string]bool, len(opts.SupportedLanguages))
		for _, l := range opts.SupportedLanguages {
			langs[l] = true
		}
	}
	return &Gateway{
		embedder:  e,
		searcher:  s,
		generator: g,
		recorder:  r,
		topK:      opts.TopK,
		timeout:   opts.Timeout,
		languages: langs,
	}
}

type AskInput struct {
	UserID       uuid.UUID
	Question     string
	SelectedText string
	Language     string
	Profile      *models.UserProfile
}

type AskResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Ask runs the full question round trip. No snippets found is a degraded
// but valid path: the question still reaches the generator with an empty
// context. A failure to record the turn never fails the response.
func (g *Gateway) Ask(ctx context.Context, in AskInput) (*AskResult, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return nil, apperr.New(apperr.InvalidArgument, "Question cannot be empty")
	}

	language := in.Language
	if language == "" {
		language = "en"
	}
	if g.languages != nil && !g.languages[language] {
		return nil, apperr.New(apperr.InvalidArgument, "Unsupported language code")
	}

	query := question
	if in.SelectedText != "" {
		query = "Based on this text: '" + in.SelectedText + "'\n\nQuestion: " + question
	}

	var vector []float32
	err := g.step(ctx, "embedding", func(ctx context.Context) error {
		var err error
		vector, err = g.embedder.Embed(ctx, query)
		return err
	})
	if err != nil {
		return nil, err
	}

	var snippets []Snippet
	err = g.step(ctx, "search", func(ctx context.Context) error {
		var err error
		snippets, err = g.searcher.Search(ctx, vector, g.topK)
		return err
	})
	if err != nil {
		return nil, err
	}

	prompt := buildAskPrompt(question, snippets, in.Profile, language)

	var answer string
	err = g.step(ctx, "generation", func(ctx context.Context) error {
		var err error
		answer, err = g.generator.Generate(ctx, prompt)
		return err
	})
	if err != nil {
		return nil, err
	}

	g.recordTurn(ctx, in, question, answer, snippets, language)

	sources := make([]string, 0, len(snippets))
	for _, s := range snippets {
		if s.Source != "" {
			sources = append(sources, s.Source)
		} else {
			sources = append(sources, "Textbook Content")
		}
	}
	return &AskResult{Answer: answer, Sources: sources}, nil
}

// Personalize rewrites content for the user's profile via the generator.
func (g *Gateway) Personalize(ctx context.Context, content string, profile *models.UserProfile) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", apperr.New(apperr.InvalidArgument, "Content cannot be empty")
	}
	if profile == nil {
		return "", apperr.New(apperr.InvalidArgument, "User profile not found")
	}

	var out string
	err := g.step(ctx, "generation", func(ctx context.Context) error {
		var err error
		out, err = g.generator.Generate(ctx, buildPersonalizePrompt(content, profile))
		return err
	})
	return out, err
}

// Translate renders content in Urdu via the generator.
func (g *Gateway) Translate(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", apperr.New(apperr.InvalidArgument, "Content cannot be empty")
	}

	var out string
	err := g.step(ctx, "generation", func(ctx context.Context) error {
		var err error
		out, err = g.generator.Generate(ctx, buildTranslatePrompt(content))
		return err
	})
	return out, err
}

// step bounds one provider call by the configured timeout and retries
// once, with jitter, on transient failure. Anything that still fails
// surfaces as ServiceUnavailable tagged with the step name.
func (g *Gateway) step(ctx context.Context, name string, fn func(context.Context) error) error {
	err := g.attempt(ctx, fn)
	if err != nil && isTransient(err) && ctx.Err() == nil {
		time.Sleep(100*time.Millisecond + time.Duration(rand.Intn(150))*time.Millisecond)
		err = g.attempt(ctx, fn)
	}
	if err != nil {
		return apperr.Wrap(apperr.ServiceUnavailable, "Assistant "+name+" step failed", err)
	}
	return nil
}

func (g *Gateway) attempt(parent context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, g.timeout)
	defer cancel()
	return fn(ctx)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// recordTurn appends the chat message best-effort. The response has
// already been computed; a storage failure here is only logged.
func (g *Gateway) recordTurn(ctx context.Context, in AskInput, question, answer string, snippets []Snippet, language string) {
	if g.recorder == nil || in.UserID == uuid.Nil {
		return
	}

	contexts := make([]string, 0, len(snippets))
	for _, s := range snippets {
		contexts = append(contexts, s.Text)
	}

	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
	defer cancel()

	msg := &models.ChatMessage{
		UserID:      in.UserID,
		Message:     question,
		Response:    answer,
		ContextUsed: strings.Join(contexts, "\n"),
		Language:    language,
	}
	if err := g.recorder.AppendChatMessage(logCtx, msg); err != nil {
		log.Printf("Failed to record chat turn for user %s: %v", in.UserID, err)
	}
}
