package ai

import (
	"context"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiComplete(t *testing.T) {
	g := &GeminiClient{generate: func(_ context.Context, prompt string) (*genai.GenerateContentResponse, error) {
		assert.Equal(t, "make slides", prompt)
		return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(` {"slides":`), genai.Text(`[]} `)}},
		}}}, nil
	}}
	got, err := g.Complete(context.Background(), "make slides")
	require.NoError(t, err)
	assert.Equal(t, `{"slides":[]}`, got)
	assert.NoError(t, g.Close())

	g.generate = func(context.Context, string) (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{}, nil
	}
	_, err = g.Complete(context.Background(), "make slides")
	assert.ErrorContains(t, err, "no completion returned")
}

func TestGeminiComplete_Timeout(t *testing.T) {
	g := &GeminiClient{
		timeout: 20 * time.Millisecond,
		generate: func(ctx context.Context, _ string) (*genai.GenerateContentResponse, error) {
			_, ok := ctx.Deadline()
			assert.True(t, ok, "request must carry a deadline")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return nil, nil
			}
		},
	}

	start := time.Now()
	_, err := g.Complete(context.Background(), "make slides")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}
