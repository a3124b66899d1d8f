package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"sheet-reader/api/internal/logging"
	"sheet-reader/api/internal/staging"
)

var allowedDocTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

func allowedDocument(mime string) bool {
	return allowedDocTypes[strings.ToLower(strings.TrimSpace(mime))]
}

// acceptImage downloads one image, stages it, analyzes it and replies.
// The staged file is removed before returning.
func (r *Router) acceptImage(ctx context.Context, chatID int64, fileID, name string, size int64) {
	if size > r.Stager.MaxBytes() {
		r.send(chatID, textTooLarge(r.Stager.MaxBytes()))
		return
	}
	r.send(chatID, textAccepted)

	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		logging.Error("telegram get file failed", "chat_id", chatID, "error", err)
		r.send(chatID, textFailed)
		return
	}
	file, err := r.download(ctx, url, name)
	if err != nil {
		if errors.Is(err, staging.ErrTooLarge) {
			r.send(chatID, textTooLarge(r.Stager.MaxBytes()))
			return
		}
		logging.Error("telegram download failed", "chat_id", chatID, "error", err)
		r.send(chatID, textFailed)
		return
	}
	defer func() {
		if err := file.Remove(); err != nil {
			logging.Warn("staged file cleanup failed", "path", file.Path, "error", err)
		}
	}()

	answers, err := r.Analyzer.AnalyzeFile(ctx, file.Path)
	if err != nil {
		logging.Error("sheet analysis failed", "chat_id", chatID, "error", err)
		r.send(chatID, textFailed)
		return
	}
	r.SendResult(chatID, FormatAnswers(answers))
}

func (r *Router) download(ctx context.Context, url, name string) (*staging.File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	if name == "" {
		name = filepath.Base(url)
	}
	return r.Stager.Stage(resp.Body, name)
}
