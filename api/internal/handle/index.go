package handle

import (
	"net/http"

	"sheet-reader/api/internal/staging"
)

type endpointInfo struct {
	Method       string      `json:"method"`
	Path         string      `json:"path"`
	Description  string      `json:"description"`
	Field        string      `json:"field,omitempty"`
	AcceptTypes  []string    `json:"acceptTypes,omitempty"`
	MaxSizeBytes int64       `json:"maxSizeBytes,omitempty"`
	Errors       []errorInfo `json:"errors,omitempty"`
}

type errorInfo struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type serviceInfo struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Engine      string         `json:"engine,omitempty"`
	Model       string         `json:"model,omitempty"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

var Version = "dev"

// Index describes the service and its single operational endpoint.
func (h *Handle) Index(engine, model string) http.HandlerFunc {
	info := serviceInfo{
		Name:        "sheet-reader",
		Version:     Version,
		Description: "Reads the marked answers from a photo of a multiple-choice answer sheet.",
		Engine:      engine,
		Model:       model,
		Endpoints: []endpointInfo{
			{
				Method:       http.MethodPost,
				Path:         "/api/analyze-sheet",
				Description:  "multipart/form-data upload; returns {success, data} where data maps question number to a letter, null or an array of letters",
				Field:        imageField,
				AcceptTypes:  []string{"image/jpeg", "image/jpg", "image/png", "image/gif"},
				MaxSizeBytes: h.stager.MaxBytes(),
				Errors: []errorInfo{
					{Status: http.StatusBadRequest, Message: MsgNoImage},
					{Status: http.StatusBadRequest, Message: MsgInvalidType},
					{Status: http.StatusBadRequest, Message: MsgEmptyImage},
					{Status: http.StatusBadRequest, Message: h.rejectMessage(staging.ErrTooLarge)},
					{Status: http.StatusMethodNotAllowed, Message: MsgMethodNotAllowed},
					{Status: http.StatusInternalServerError, Message: MsgAnalysisFailed},
				},
			},
		},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, info)
	}
}
