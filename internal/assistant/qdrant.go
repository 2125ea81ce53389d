package assistant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/rohits-web03/robotutor/internal/config"
)

// QdrantSearcher implements Searcher against a Qdrant collection of
// textbook chunks. Payloads carry the chunk text under "text" and an
// optional "source" label.
type QdrantSearcher struct {
	client     *qdrant.Client
	collection string
}

func NewQdrantSearcher(cfg config.QdrantConfig) (*QdrantSearcher, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	return &QdrantSearcher{client: client, collection: cfg.Collection}, nil
}

func (s *QdrantSearcher) Close() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

func (s *QdrantSearcher) Search(ctx context.Context, vector []float32, limit int) ([]Snippet, error) {
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayloadInclude("text", "source"),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	snippets := make([]Snippet, 0, len(points))
	for _, p := range points {
		text := p.GetPayload()["text"].GetStringValue()
		if text == "" {
			continue
		}
		snippets = append(snippets, Snippet{
			Text:   text,
			Source: p.GetPayload()["source"].GetStringValue(),
			Score:  p.GetScore(),
		})
	}
	return snippets, nil
}
