package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohits-web03/robotutor/internal/apperr"
	"github.com/rohits-web03/robotutor/internal/models"
)

type fakeEmbedder struct {
	vector []float32
	errs   []error // consumed one per call; nil slice means always succeed
	calls  int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.vector, nil
}

type fakeSearcher struct {
	snippets []Snippet
	err      error
}

func (f *fakeSearcher) Search(ctx context.Context, vector []float32, limit int) ([]Snippet, error) {
	return f.snippets, f.err
}

type fakeGenerator struct {
	answer string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}

type fakeRecorder struct {
	messages []*models.ChatMessage
	err      error
}

func (f *fakeRecorder) AppendChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "dial: i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func newTestGateway(e Embedder, s Searcher, g Generator, r TurnRecorder) *Gateway {
	return NewGateway(e, s, g, r, Options{
		TopK:               3,
		Timeout:            time.Second,
		SupportedLanguages: []string{"en", "ur"},
	})
}

func TestAskHappyPath(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	searcher := &fakeSearcher{snippets: []Snippet{
		{Text: "ROS 2 is a middleware framework for robotics.", Source: "Chapter 1", Score: 0.9},
	}}
	generator := &fakeGenerator{answer: "ROS 2 is a robotics middleware."}
	recorder := &fakeRecorder{}
	gw := newTestGateway(embedder, searcher, generator, recorder)

	userID := uuid.New()
	result, err := gw.Ask(context.Background(), AskInput{
		UserID:   userID,
		Question: "What is ROS 2?",
	})
	require.NoError(t, err)
	assert.Equal(t, "ROS 2 is a robotics middleware.", result.Answer)
	assert.Equal(t, []string{"Chapter 1"}, result.Sources)

	assert.Contains(t, generator.prompt, "ROS 2 is a middleware framework")
	assert.Contains(t, generator.prompt, "What is ROS 2?")

	require.Len(t, recorder.messages, 1)
	assert.Equal(t, userID, recorder.messages[0].UserID)
	assert.Equal(t, "What is ROS 2?", recorder.messages[0].Message)
	assert.Contains(t, recorder.messages[0].ContextUsed, "middleware framework")
}

func TestAskEmptySearchStillAnswers(t *testing.T) {
	gw := newTestGateway(
		&fakeEmbedder{vector: []float32{0.1}},
		&fakeSearcher{snippets: nil},
		&fakeGenerator{answer: "The textbook does not cover that."},
		&fakeRecorder{},
	)

	result, err := gw.Ask(context.Background(), AskInput{UserID: uuid.New(), Question: "What is ROS 2?"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Answer)
	assert.Empty(t, result.Sources)
}

func TestAskEmbeddingFailure(t *testing.T) {
	gw := newTestGateway(
		&fakeEmbedder{errs: []error{errors.New("quota exceeded"), errors.New("quota exceeded")}},
		&fakeSearcher{},
		&fakeGenerator{},
		&fakeRecorder{},
	)

	_, err := gw.Ask(context.Background(), AskInput{UserID: uuid.New(), Question: "What is ROS 2?"})
	require.Error(t, err)
	assert.Equal(t, apperr.ServiceUnavailable, apperr.KindOf(err))
	assert.Contains(t, apperr.Message(err), "embedding")
}

func TestAskSearchFailure(t *testing.T) {
	gw := newTestGateway(
		&fakeEmbedder{vector: []float32{0.1}},
		&fakeSearcher{err: errors.New("collection missing")},
		&fakeGenerator{},
		&fakeRecorder{},
	)

	_, err := gw.Ask(context.Background(), AskInput{UserID: uuid.New(), Question: "q"})
	require.Error(t, err)
	assert.Equal(t, apperr.ServiceUnavailable, apperr.KindOf(err))
	assert.Contains(t, apperr.Message(err), "search")
}

func TestAskRetriesTransientEmbedFailure(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1}, errs: []error{timeoutError{}, nil}}
	gw := newTestGateway(embedder, &fakeSearcher{}, &fakeGenerator{answer: "ok"}, &fakeRecorder{})

	result, err := gw.Ask(context.Background(), AskInput{UserID: uuid.New(), Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Answer)
	assert.Equal(t, 2, embedder.calls)
}

func TestAskDoesNotRetryPermanentFailure(t *testing.T) {
	embedder := &fakeEmbedder{errs: []error{errors.New("invalid api key")}}
	gw := newTestGateway(embedder, &fakeSearcher{}, &fakeGenerator{}, &fakeRecorder{})

	_, err := gw.Ask(context.Background(), AskInput{UserID: uuid.New(), Question: "q"})
	require.Error(t, err)
	assert.Equal(t, 1, embedder.calls)
}

func TestAskLogFailureDoesNotFailResponse(t *testing.T) {
	gw := newTestGateway(
		&fakeEmbedder{vector: []float32{0.1}},
		&fakeSearcher{},
		&fakeGenerator{answer: "fine"},
		&fakeRecorder{err: errors.New("disk full")},
	)

	result, err := gw.Ask(context.Background(), AskInput{UserID: uuid.New(), Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, "fine", result.Answer)
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	gw := newTestGateway(&fakeEmbedder{}, &fakeSearcher{}, &fakeGenerator{}, nil)

	_, err := gw.Ask(context.Background(), AskInput{Question: "   "})
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
}

func TestAskRejectsUnsupportedLanguage(t *testing.T) {
	gw := newTestGateway(&fakeEmbedder{}, &fakeSearcher{}, &fakeGenerator{}, nil)

	_, err := gw.Ask(context.Background(), AskInput{Question: "q", Language: "fr"})
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
}

func TestAskPassesLanguageThroughWithoutWhitelist(t *testing.T) {
	generator := &fakeGenerator{answer: "bien"}
	gw := NewGateway(&fakeEmbedder{vector: []float32{0.1}}, &fakeSearcher{}, generator, nil, Options{
		Timeout: time.Second,
	})

	_, err := gw.Ask(context.Background(), AskInput{Question: "q", Language: "fr"})
	require.NoError(t, err)
	assert.Contains(t, generator.prompt, `"fr"`)
}

func TestAskSelectedTextReachesEmbedder(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1}}
	gw := newTestGateway(embedder, &fakeSearcher{}, &fakeGenerator{answer: "ok"}, nil)

	_, err := gw.Ask(context.Background(), AskInput{
		Question:     "What does this mean?",
		SelectedText: "inverse kinematics",
	})
	require.NoError(t, err)
}

func TestPersonalizeRequiresProfile(t *testing.T) {
	gw := newTestGateway(&fakeEmbedder{}, &fakeSearcher{}, &fakeGenerator{}, nil)

	_, err := gw.Personalize(context.Background(), "some content", nil)
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
}

func TestPersonalizeUsesProfile(t *testing.T) {
	generator := &fakeGenerator{answer: "adapted"}
	gw := newTestGateway(&fakeEmbedder{}, &fakeSearcher{}, generator, nil)

	out, err := gw.Personalize(context.Background(), "lesson text", &models.UserProfile{
		SoftwareBackground: "Rust",
		ExperienceLevel:    "advanced",
	})
	require.NoError(t, err)
	assert.Equal(t, "adapted", out)
	assert.Contains(t, generator.prompt, "Rust")
	assert.Contains(t, generator.prompt, "advanced")
}

func TestTranslatePrompt(t *testing.T) {
	generator := &fakeGenerator{answer: "اردو متن"}
	gw := newTestGateway(&fakeEmbedder{}, &fakeSearcher{}, generator, nil)

	out, err := gw.Translate(context.Background(), "Robots are machines.")
	require.NoError(t, err)
	assert.Equal(t, "اردو متن", out)
	assert.True(t, strings.Contains(generator.prompt, "Urdu"))
	assert.Contains(t, generator.prompt, "Robots are machines.")
}
