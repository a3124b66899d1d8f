package engines

import (
	"sheet-reader/api/internal/config"
	"sheet-reader/api/internal/ocr"
	"sheet-reader/api/internal/ocr/gemini"
	"sheet-reader/api/internal/ocr/openai"
)

// FromConfig returns the engine selected by cfg.Provider. Engines are built
// even without a key; they report the missing credential on each call.
func FromConfig(cfg *config.Config) (ocr.Engine, error) {
	engs := &ocr.Engines{
		Gemini: gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel),
		OpenAI: openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL),
	}
	return engs.GetEngine(cfg.Provider)
}
