package ocr

import (
	"context"
	"fmt"
)

// Image is an image payload handed to an engine.
type Image struct {
	Name string
	MIME string
	Data []byte
}

// Engine sends one instruction plus one image to a multimodal model and
// returns the model's raw text reply.
type Engine interface {
	Name() string
	GetModel() string
	Generate(ctx context.Context, instruction string, img Image) (string, error)
}

type Engines struct {
	Gemini Engine
	OpenAI Engine
}

func (e *Engines) GetEngine(llmName string) (Engine, error) {
	var eng Engine
	switch llmName {
	case "", "gemini":
		eng = e.Gemini
	case "gpt", "openai":
		eng = e.OpenAI
	default:
		return nil, fmt.Errorf("unknown llm_name %q; use 'gemini' or 'gpt'", llmName)
	}
	if eng == nil {
		return nil, fmt.Errorf("engine %q is not configured", llmName)
	}
	return eng, nil
}
