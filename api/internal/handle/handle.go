package handle

import (
	"context"
	"encoding/json"
	"net/http"

	"sheet-reader/api/internal/ocr/types"
	"sheet-reader/api/internal/staging"
)

// SheetAnalyzer is the analysis side of the upload handler.
type SheetAnalyzer interface {
	AnalyzeFile(ctx context.Context, path string) (types.AnswerMap, error)
}

type Handle struct {
	analyzer SheetAnalyzer
	stager   *staging.Stager
	// echo the underlying error in failure envelopes
	debug bool
}

func New(analyzer SheetAnalyzer, stager *staging.Stager, debug bool) *Handle {
	return &Handle{
		analyzer: analyzer,
		stager:   stager,
		debug:    debug,
	}
}

type successEnvelope struct {
	Success bool            `json:"success"`
	Data    types.AnswerMap `json:"data"`
}

type failureEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, failureEnvelope{Success: false, Message: msg})
}
