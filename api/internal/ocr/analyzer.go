package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sheet-reader/api/internal/logging"
	"sheet-reader/api/internal/ocr/types"
	"sheet-reader/api/internal/prompt"
	"sheet-reader/api/internal/util"
)

var (
	// ErrAnalysisFailed covers an unreadable file, a failed model call and a
	// reply that is not JSON.
	ErrAnalysisFailed = errors.New("analysis failed")
	// ErrMalformedOutput is a reply that is valid JSON but not an answer map.
	ErrMalformedOutput = errors.New("malformed model output")
)

// Analyzer turns a staged answer sheet image into an AnswerMap.
type Analyzer struct {
	engine      Engine
	instruction string
	timeout     time.Duration
}

func NewAnalyzer(engine Engine, timeout time.Duration) *Analyzer {
	return &Analyzer{
		engine:      engine,
		instruction: prompt.AnswerSheet,
		timeout:     timeout,
	}
}

func (a *Analyzer) Engine() Engine { return a.engine }

// AnalyzeFile reads the image at path and asks the engine for the marked
// answers. The call is made once; there are no retries.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (types.AnswerMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read image: %v", ErrAnalysisFailed, err)
	}
	img := Image{
		Name: filepath.Base(path),
		MIME: util.PickImageMIME(path, data),
		Data: data,
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := a.engine.Generate(ctx, a.instruction, img)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAnalysisFailed, a.engine.Name(), err)
	}
	logging.Debug("model replied",
		"engine", a.engine.Name(),
		"model", a.engine.GetModel(),
		"mime", img.MIME,
		"bytes", len(data),
		"took_ms", time.Since(start).Milliseconds(),
	)

	answers, err := types.ParseAnswerMap(util.StripCodeFences(raw))
	if err != nil {
		if errors.Is(err, types.ErrBadShape) {
			return nil, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
		}
		return nil, fmt.Errorf("%w: bad JSON: %w", ErrAnalysisFailed, err)
	}
	return answers, nil
}
