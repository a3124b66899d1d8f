package telegram

import (
	"context"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sheet-reader/api/internal/logging"
	"sheet-reader/api/internal/ocr/types"
	"sheet-reader/api/internal/staging"
)

// BotAPI is the part of *tgbotapi.BotAPI the router uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

type SheetAnalyzer interface {
	AnalyzeFile(ctx context.Context, path string) (types.AnswerMap, error)
}

type Router struct {
	Bot      BotAPI
	Analyzer SheetAnalyzer
	Stager   *staging.Stager

	HTTPClient *http.Client
}

func NewRouter(bot BotAPI, analyzer SheetAnalyzer, stager *staging.Stager) *Router {
	return &Router{
		Bot:        bot,
		Analyzer:   analyzer,
		Stager:     stager,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil {
		return
	}
	cid := msg.Chat.ID

	if msg.IsCommand() {
		r.HandleCommand(cid, msg.Command())
		return
	}

	switch {
	case len(msg.Photo) > 0:
		// largest size is last
		ph := msg.Photo[len(msg.Photo)-1]
		r.acceptImage(ctx, cid, ph.FileID, "photo.jpg", int64(ph.FileSize))
	case msg.Document != nil:
		doc := msg.Document
		if !allowedDocument(doc.MimeType) {
			r.send(cid, textUnsupported)
			return
		}
		r.acceptImage(ctx, cid, doc.FileID, doc.FileName, int64(doc.FileSize))
	case strings.TrimSpace(msg.Text) != "":
		r.send(cid, textHelp)
	}
}

func (r *Router) HandleCommand(chatID int64, cmd string) {
	switch cmd {
	case "start", "help":
		r.send(chatID, textHelp)
	case "health":
		r.send(chatID, "✅ OK")
	default:
		r.send(chatID, "Unknown command. Try /help")
	}
}

func (r *Router) send(chatID int64, text string) {
	if _, err := r.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logging.Warn("telegram send failed", "chat_id", chatID, "error", err)
	}
}
