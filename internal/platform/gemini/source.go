// Package gemini produces book recommendations with the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"google.golang.org/genai"

	"paperpharmacy/internal/logging"
	"paperpharmacy/internal/platform/breaker"
	"paperpharmacy/internal/prescription"
)

var (
	ErrMissingAPIKey = errors.New("gemini: missing api key")
	ErrEmptyResponse = errors.New("gemini: empty response")
)

// Generator returns the model's raw JSON text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Source implements prescription.Source.
type Source struct {
	gen     Generator
	timeout time.Duration
	breaker *breaker.Breaker[[]prescription.AIBook]
}

// NewSource creates a source backed by the Gemini API.
func NewSource(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return NewSourceWithGenerator(&modelGenerator{client: client, model: cfg.Model}, cfg.Timeout), nil
}

// NewSourceWithGenerator creates a source around any generator.
func NewSourceWithGenerator(gen Generator, timeout time.Duration) *Source {
	return &Source{
		gen:     gen,
		timeout: timeout,
		breaker: breaker.New[[]prescription.AIBook]("gemini", breaker.Settings{MinRequests: 3}),
	}
}

func (s *Source) Recommend(ctx context.Context, req prescription.Request) ([]prescription.AIBook, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	prompt := BuildPrompt(req)
	return s.breaker.Execute(func() ([]prescription.AIBook, error) {
		text, err := s.gen.Generate(ctx, prompt)
		if err != nil {
			return nil, err
		}
		books, err := ParseBooks(text)
		if err != nil {
			logging.Ctx(ctx).Debug().Str("response", text).Msg("unparseable model response")
			return nil, err
		}
		return books, nil
	})
}

// ParseBooks decodes the model's JSON array. It requires at least
// prescription.Count books and drops any beyond that.
func ParseBooks(text string) ([]prescription.AIBook, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	text = strings.TrimSuffix(strings.TrimPrefix(text, "```json"), "```")

	var books []prescription.AIBook
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &books); err != nil {
		return nil, fmt.Errorf("gemini: decode books: %w", err)
	}
	if len(books) < prescription.Count {
		return nil, fmt.Errorf("gemini: got %d books, want %d", len(books), prescription.Count)
	}
	books = books[:prescription.Count]
	for i := range books {
		for j, lib := range books[i].Libraries {
			books[i].Libraries[j] = lib.Normalize()
		}
	}
	return books, nil
}

type modelGenerator struct {
	client *genai.Client
	model  string
}

func (g *modelGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(),
	})
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	return resp.Text(), nil
}

// Unavailable is a source for deployments without an API key. Every
// call fails, which the prescription flow reports as a normal
// recommendation failure.
type Unavailable struct{}

func (Unavailable) Recommend(context.Context, prescription.Request) ([]prescription.AIBook, error) {
	return nil, ErrMissingAPIKey
}
