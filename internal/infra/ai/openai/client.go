package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/docsense/internal/domain/ai"
)

const (
	DefaultChatModel      = "gpt-4o-mini"
	DefaultEmbeddingModel = "text-embedding-3-small"
)

type Client struct {
	*openai.Client
	Model          string
	EmbeddingModel string
}

var (
	_ ai.Completer = (*Client)(nil)
	_ ai.Embedder  = (*Client)(nil)
)

// NewClient builds a client; baseURL may be empty for the public API.
func NewClient(apiKey, baseURL, model, embeddingModel string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = DefaultChatModel
	}
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model, EmbeddingModel: embeddingModel}
}

func (c *Client) Complete(ctx context.Context, in ai.CompletionRequest) (string, error) {
	req := openai.ChatCompletionRequest{Model: c.Model}
	if in.System != "" {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: in.System})
	}
	req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: in.Prompt})
	if in.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens,
	// they also reject a custom temperature
	if isReasoningModel(c.Model) {
		req.MaxCompletionTokens = in.MaxTokens
	} else {
		req.MaxTokens = in.MaxTokens
		req.Temperature = in.Temperature
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", mapError(err))
	}
	if len(resp.Choices) == 0 {
		return "", ai.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.EmbeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", mapError(err))
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, ai.ErrEmptyResponse
	}
	return resp.Data[0].Embedding, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// mapError keeps the original error and adds ai.ErrQuotaExceeded for 429s.
func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return errors.Join(ai.ErrQuotaExceeded, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return errors.Join(ai.ErrQuotaExceeded, err)
	}
	return err
}
