package telegram

import (
	"fmt"
	"strings"

	"sheet-reader/api/internal/ocr/types"
)

const (
	textHelp        = "Send a photo of a multiple-choice answer sheet and I will reply with the marked answers.\nCommands: /health"
	textAccepted    = "Got the photo, reading the answers…"
	textFailed      = "Failed to analyze the image. Please try again."
	textUnsupported = "Only JPEG, PNG and GIF images are supported."
	textNoAnswers   = "No questions were found on this sheet."

	maxMessageLen = 3900
)

func textTooLarge(max int64) string {
	if max < 1<<20 {
		return fmt.Sprintf("The image is too large. Maximum size is %dKB.", max>>10)
	}
	return fmt.Sprintf("The image is too large. Maximum size is %dMB.", max>>20)
}

// FormatAnswers renders one line per question in numeric order.
func FormatAnswers(am types.AnswerMap) string {
	if len(am) == 0 {
		return textNoAnswers
	}
	var b strings.Builder
	for _, q := range am.Questions() {
		v := "—"
		if opts := am[q].Options; len(opts) > 0 {
			v = strings.Join(opts, ", ")
		}
		fmt.Fprintf(&b, "%s: %s\n", q, v)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Router) SendResult(chatID int64, text string) {
	if r := []rune(text); len(r) > maxMessageLen {
		text = string(r[:maxMessageLen]) + "…"
	}
	r.send(chatID, "📝 Answers:\n\n"+text)
}
