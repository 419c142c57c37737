/*
Package ai provides functionality to interact with the Gemini API: text generation for
answers and classification, embeddings for financial statement retrieval, and a short
yes/no call used to confirm unknown ticker symbols.
*/
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

var ErrEmptyResponse = errors.New("empty response from model")

// Options tune a single generation call. Zero values leave the model defaults.
type Options struct {
	System      string
	Temperature float32
	MaxTokens   int32
}

// Gemini wraps one genai client for generation and embeddings.
type Gemini struct {
	client     *genai.Client
	model      string
	embedModel string
	dimensions int32
	log        zerolog.Logger
}

func NewGemini(ctx context.Context, apiKey, model, embedModel string, dimensions int, log zerolog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{
		client:     client,
		model:      model,
		embedModel: embedModel,
		dimensions: int32(dimensions),
		log:        log,
	}, nil
}

// Generate sends prompt as a single user turn and returns the reply text.
func (g *Gemini) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	userContent := &genai.Content{
		Parts: []*genai.Part{
			{Text: prompt},
		},
		Role: "user",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{userContent}, generateConfig(opts))
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}

	g.log.Debug().Str("model", g.model).Int("chars", len(text)).Msg("Generated reply")

	return text, nil
}

func generateConfig(opts Options) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if opts.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{
				{Text: opts.System},
			},
		}
	}
	if opts.Temperature > 0 {
		cfg.Temperature = genai.Ptr(opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = opts.MaxTokens
	}
	return cfg
}

// Embed returns the embedding of a single text.
func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := g.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one request. Vectors are returned in input order.
func (g *Gemini) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
	}

	cfg := &genai.EmbedContentConfig{}
	if g.dimensions > 0 {
		cfg.OutputDimensionality = genai.Ptr(g.dimensions)
	}

	resp, err := g.client.Models.EmbedContent(ctx, g.embedModel, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("failed to embed content: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}

// ValidateSymbol asks the model whether symbol is a ticker listed on HOSE, HNX or UPCOM.
func (g *Gemini) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	reply, err := g.Generate(ctx, fmt.Sprintf(symbolValidationPrompt, symbol), Options{
		Temperature: 0.1,
		MaxTokens:   5,
	})
	if err != nil {
		return false, fmt.Errorf("failed to validate symbol %s: %w", symbol, err)
	}
	return ParseYesNo(reply), nil
}

// ParseYesNo reads a one-word yes/no reply.
func ParseYesNo(reply string) bool {
	r := strings.ToUpper(strings.TrimSpace(reply))
	return strings.HasPrefix(r, "YES") || strings.HasPrefix(r, "CÓ")
}
