package handle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sheet-reader/api/internal/logging"
	"sheet-reader/api/internal/ocr/types"
	"sheet-reader/api/internal/staging"
)

const (
	imageField = "image"

	// room for multipart boundaries and headers on top of the file itself
	multipartOverhead = 1 << 20

	MsgMethodNotAllowed = "Method not allowed"
	MsgNoImage          = "No image file uploaded."
	MsgInvalidType      = "Invalid file type. Only JPEG, PNG, and GIF images are allowed."
	MsgAnalysisFailed   = "Failed to analyze the image. Please try again."
	MsgEmptyImage       = "Uploaded image is empty."
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/jpg":  true,
	"image/gif":  true,
}

var (
	errNoImage     = errors.New("no image part")
	errInvalidType = errors.New("invalid content type")
)

func setCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

// AnalyzeSheet handles POST /api/analyze-sheet: a multipart upload with one
// file field "image". The staged file is removed before this returns, on
// every path.
func (h *Handle) AnalyzeSheet(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeFailure(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
		return
	}
	reqID := logging.RequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.stager.MaxBytes()+multipartOverhead)
	file, err := h.receive(r)
	if err != nil {
		code, msg := http.StatusBadRequest, h.rejectMessage(err)
		logging.Info("upload rejected", "request_id", reqID, "reason", err.Error())
		writeFailure(w, code, msg)
		return
	}
	defer func() {
		if err := file.Remove(); err != nil {
			logging.Warn("staged file cleanup failed", "request_id", reqID, "path", file.Path, "error", err)
		}
	}()

	ctx, cancel := requestContext(r)
	defer cancel()

	answers, err := h.analyzer.AnalyzeFile(ctx, file.Path)
	if err != nil {
		logging.Error("sheet analysis failed",
			"request_id", reqID,
			"file", file.OriginalName,
			"size", file.Size,
			"error", err,
		)
		env := failureEnvelope{Success: false, Message: MsgAnalysisFailed}
		if h.debug {
			env.Error = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, env)
		return
	}

	logging.Info("sheet analyzed", "request_id", reqID, "questions", len(answers), "size", file.Size)
	if answers == nil {
		answers = types.AnswerMap{}
	}
	writeJSON(w, http.StatusOK, successEnvelope{Success: true, Data: answers})
}

// receive finds the first "image" file part, checks its declared type and
// streams it to the stager. Nothing touches the disk for a rejected type.
func (h *Handle) receive(r *http.Request) (*staging.File, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errNoImage, err)
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, errNoImage
		}
		if err != nil {
			return nil, classifyBodyErr(err)
		}
		if part.FormName() != imageField || part.FileName() == "" {
			_ = part.Close()
			continue
		}
		f, err := h.stagePart(part)
		_ = part.Close()
		return f, err
	}
}

func (h *Handle) stagePart(part *multipart.Part) (*staging.File, error) {
	ct := part.Header.Get("Content-Type")
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil || !allowedTypes[strings.ToLower(mt)] {
		return nil, fmt.Errorf("%w: %q", errInvalidType, ct)
	}
	f, err := h.stager.Stage(part, part.FileName())
	if err != nil {
		return nil, classifyBodyErr(err)
	}
	return f, nil
}

func classifyBodyErr(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: %v", staging.ErrTooLarge, err)
	}
	return err
}

func (h *Handle) rejectMessage(err error) string {
	switch {
	case errors.Is(err, errInvalidType):
		return MsgInvalidType
	case errors.Is(err, staging.ErrTooLarge):
		return fmt.Sprintf("File too large. Maximum size is %s.", humanSize(h.stager.MaxBytes()))
	case errors.Is(err, staging.ErrEmpty):
		return MsgEmptyImage
	default:
		return MsgNoImage
	}
}

// requestContext honours an optional X-Request-Timeout (seconds) header.
func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			return context.WithTimeout(r.Context(), time.Duration(v)*time.Second)
		}
	}
	return context.WithCancel(r.Context())
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
