package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"sheet-reader/api/internal/ocr"
	"sheet-reader/api/internal/util"
)

const maxTokens = 2048

type Engine struct {
	APIKey string
	Model  string
	client *openai.Client
}

// New builds an engine; baseURL may be empty for the public API.
func New(key, model, baseURL string) *Engine {
	cfg := openai.DefaultConfig(strings.TrimSpace(key))
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Engine{
		APIKey: strings.TrimSpace(key),
		Model:  strings.TrimSpace(model),
		client: openai.NewClientWithConfig(cfg),
	}
}

func (e *Engine) Name() string     { return "gpt" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Generate(ctx context.Context, instruction string, img ocr.Image) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("OPENAI_API_KEY not set")
	}
	req := openai.ChatCompletionRequest{
		Model:       e.Model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: instruction},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
						URL:    util.MakeDataURL(img.MIME, img.Data),
						Detail: openai.ImageURLDetailHigh,
					}},
				},
			},
		},
	}
	// reasoning models reject max_tokens
	if strings.HasPrefix(e.Model, "o1") || strings.HasPrefix(e.Model, "o3") || strings.HasPrefix(e.Model, "o4") || strings.HasPrefix(e.Model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	txt := resp.Choices[0].Message.Content
	if strings.TrimSpace(txt) == "" {
		return "", errors.New("openai: empty response")
	}
	return txt, nil
}
