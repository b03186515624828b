// Package assistant answers free-form pet-care questions with a
// generative model.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// The system framing prepended to every question
const promptPrefix = "You are a world-class pet behaviorist and health expert for PetPlaza. " +
	"Answer the following question briefly and warmly: "

var (
	ErrEmptyQuestion = errors.New("question cannot be empty")
	ErrNotConfigured = errors.New("assistant is not configured")
)

// Client answers a single question. Implementations are expected to be
// safe for concurrent use.
type Client interface {
	Ask(ctx context.Context, question string) (string, error)
}

type geminiClient struct {
	client *genai.Client
	model  string
}

// New creates a Gemini-backed client for the given API key and model
func New(ctx context.Context, apiKey, model string) (Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	return &geminiClient{client: client, model: model}, nil
}

func (c *geminiClient) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(promptPrefix+question), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	return strings.TrimSpace(resp.Text()), nil
}
