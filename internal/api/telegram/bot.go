package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"bloodcell/internal/container"
	"bloodcell/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я считаю клетки крови на снимке мазка.

🔬 Отправьте фото или файл изображения, и я посчитаю лейкоциты (WBC), эритроциты (RBC) и тромбоциты.

📋 Команды:
/analyze — начать анализ
/last — повторить последний результат
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте снимок мазка крови
2️⃣ Бот найдёт клетки на изображении
3️⃣ Вы получите количество клеток, возможные отклонения и снимок с рамками

⚠️ Пороговые правила демонстрационные и не заменяют анализ врача.`

	msgAwaitingImage   = "🔬 Отправьте снимок мазка крови."
	msgCancelled       = "❌ Операция отменена. Отправьте /analyze для нового анализа."
	msgSendImage       = "🔬 Пожалуйста, отправьте изображение мазка крови."
	msgStillAwaiting   = "🔬 Жду снимок мазка. Отправьте фото или /cancel, чтобы отменить."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgBusy            = "⏳ Предыдущее изображение ещё обрабатывается."
	msgNoLast          = "Результатов пока нет. Отправьте снимок."
	msgNotImage        = "⚠️ Файл не похож на изображение. Отправьте JPEG или PNG."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте другой снимок."
)

// Bot Telegram-интерфейс к анализу мазка
type Bot struct {
	api *tgbotapi.BotAPI
	app *container.Container
	log logrus.FieldLogger
}

// NewBot создаёт нового бота
func NewBot(token string, app *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	app.Log.WithField("account", api.Self.UserName).Info("telegram bot authorized")

	return &Bot{
		api: api,
		app: app,
		log: app.Log,
	}, nil
}

// Run обрабатывает сообщения, пока не отменён ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if fileID, ok := imageFileID(msg); ok {
		b.handleImage(ctx, msg.Chat.ID, fileID)
		return
	}
	if msg.Document != nil {
		b.sendMessage(msg.Chat.ID, msgNotImage)
		return
	}

	session, err := b.app.SessionService.Get(ctx, msg.Chat.ID)
	if err != nil {
		b.log.WithError(err).Error("get session")
		b.sendMessage(msg.Chat.ID, msgSendImage)
		return
	}
	b.sendMessage(msg.Chat.ID, textReply(session.State))
}

// textReply ответ на текст без изображения, зависит от состояния диалога
func textReply(state entity.SessionState) string {
	switch state {
	case entity.StateAwaitingImage:
		return msgStillAwaiting
	case entity.StateProcessing:
		return msgBusy
	default:
		return msgSendImage
	}
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	sessions := b.app.SessionService
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.logErr(sessions.Reset(ctx, chatID))
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "analyze":
		b.logErr(sessions.AwaitImage(ctx, chatID))
		b.sendMessage(chatID, msgAwaitingImage)

	case "last":
		session, err := sessions.Get(ctx, chatID)
		if err != nil || session.LastAnalysis == nil {
			b.sendMessage(chatID, msgNoLast)
			return
		}
		b.sendMessage(chatID, FormatReport(session.LastAnalysis))

	case "cancel":
		b.logErr(sessions.Cancel(ctx, chatID))
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleImage скачивает изображение, анализирует и отправляет отчёт со снимком
func (b *Bot) handleImage(ctx context.Context, chatID int64, fileID string) {
	log := b.log.WithField("chat_id", chatID)

	_, ok, err := b.app.SessionService.BeginProcessing(ctx, chatID)
	if err != nil {
		log.WithError(err).Error("begin processing")
		b.sendMessage(chatID, msgProcessingError)
		return
	}
	if !ok {
		b.sendMessage(chatID, msgBusy)
		return
	}

	var analysis *entity.Analysis
	defer func() {
		if _, err := b.app.SessionService.Finish(ctx, chatID, analysis); err != nil {
			log.WithError(err).Error("finish session")
		}
	}()

	b.sendMessage(chatID, msgProcessing)

	imageData, err := b.downloadFile(ctx, fileID)
	if err != nil {
		log.WithError(err).Error("download image")
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	analysis, err = b.app.AnalysisService.Analyze(ctx, imageData)
	if err != nil {
		log.WithError(err).Warn("analysis failed")
		if errors.Is(err, entity.ErrImageDecode) {
			b.sendMessage(chatID, msgNotImage)
		} else {
			b.sendMessage(chatID, msgProcessingError)
		}
		return
	}

	report := FormatReport(analysis)
	annotated, err := b.app.AnalysisService.Annotate(imageData, analysis)
	if err != nil {
		log.WithError(err).Warn("annotate image")
		b.sendMessage(chatID, report)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "cells.jpg", Bytes: annotated})
	photo.Caption = report
	if _, err := b.api.Send(photo); err != nil {
		log.WithError(err).Error("send photo")
		b.sendMessage(chatID, report)
	}
}

// imageFileID возвращает файл наибольшего разрешения из фото или документ-изображение
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).WithField("chat_id", chatID).Error("send message")
	}
}

func (b *Bot) logErr(_ *entity.Session, err error) {
	if err != nil {
		b.log.WithError(err).Error("session update")
	}
}
