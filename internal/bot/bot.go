// Package bot wires the Telegram transport to the booking and review
// services.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"zapisnik/internal/availability"
	"zapisnik/internal/booking"
	"zapisnik/internal/db"
	"zapisnik/internal/notify"
	"zapisnik/internal/review"
)

type telegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	SelfUser() tgbotapi.User
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return c.api.Request(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

func (c *realTelegramClient) SelfUser() tgbotapi.User {
	return c.api.Self
}

// Exporter produces the appointment workbook for /export.
type Exporter interface {
	Export(ctx context.Context) ([]byte, error)
}

// Bot runs the appointment request dialog over Telegram long polling.
type Bot struct {
	tg       telegramClient
	booking  *booking.Service
	review   *review.Service
	avail    *availability.Calculator
	notifier *notify.Notifier
	exporter Exporter
	logger   *zerolog.Logger
}

// New creates a bot over an authorized Telegram API connection.
func New(
	api *tgbotapi.BotAPI,
	bookingSvc *booking.Service,
	reviewSvc *review.Service,
	avail *availability.Calculator,
	notifier *notify.Notifier,
	exporter Exporter,
	logger *zerolog.Logger,
) (*Bot, error) {
	return NewWithTelegramClient(&realTelegramClient{api: api}, bookingSvc, reviewSvc, avail, notifier, exporter, logger)
}

// NewWithTelegramClient allows injecting a mocked Telegram client for tests.
func NewWithTelegramClient(
	tg telegramClient,
	bookingSvc *booking.Service,
	reviewSvc *review.Service,
	avail *availability.Calculator,
	notifier *notify.Notifier,
	exporter Exporter,
	logger *zerolog.Logger,
) (*Bot, error) {
	if tg == nil {
		return nil, fmt.Errorf("telegram client is nil")
	}
	return &Bot{
		tg:       tg,
		booking:  bookingSvc,
		review:   reviewSvc,
		avail:    avail,
		notifier: notifier,
		exporter: exporter,
		logger:   logger,
	}, nil
}

// Start begins polling updates and handles them until the context is done.
// Updates are handled one at a time, so a decision is fully committed before
// the next callback is read.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	b.logger.Info().Str("username", b.tg.SelfUser().UserName).Msg("bot authorized")

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			requestID := uuid.New().String()
			l := b.logger.With().Str("request_id", requestID).Logger()
			updateCtx := l.WithContext(ctx)
			b.handleUpdate(updateCtx, &update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	l := zerolog.Ctx(ctx)
	if update.CallbackQuery != nil {
		l.Debug().
			Int64("user_id", update.CallbackQuery.From.ID).
			Str("data", update.CallbackQuery.Data).
			Msg("Handling callback query")
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil {
		l.Debug().
			Int64("user_id", update.Message.From.ID).
			Str("text", update.Message.Text).
			Msg("Handling message")
		b.handleMessage(ctx, update.Message)
		return
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.From == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "/") {
		switch {
		case strings.HasPrefix(text, "/start"):
			b.handleStart(msg)
		case strings.HasPrefix(text, "/book"):
			b.handleBook(ctx, msg)
		case strings.HasPrefix(text, "/view_requests"):
			b.handleViewRequests(ctx, msg)
		case strings.HasPrefix(text, "/upcoming_requests"):
			b.handleUpcomingRequests(ctx, msg)
		case strings.HasPrefix(text, "/export"):
			b.handleExport(ctx, msg)
		default:
			b.reply(msg.Chat.ID, "Неизвестная команда. Используйте /book, чтобы записаться.")
		}
		return
	}

	if text == "" {
		return
	}
	b.handleNote(ctx, msg, text)
}

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	if b.review.IsAdmin(msg.From.ID) {
		b.reply(msg.Chat.ID,
			"Привет, администратор! Доступные команды:\n"+
				"/view_requests - заявки на рассмотрении\n"+
				"/upcoming_requests - принятые заявки\n"+
				"/export - выгрузка в Excel")
		return
	}
	b.reply(msg.Chat.ID, "Привет! Я помогу записаться на встречу. Используйте /book, чтобы выбрать дату и время.")
}

func (b *Bot) handleBook(ctx context.Context, msg *tgbotapi.Message) {
	l := zerolog.Ctx(ctx)
	if err := b.booking.Start(ctx, msg.From.ID); err != nil {
		l.Error().Err(err).Msg("failed to start booking dialog")
		b.reply(msg.Chat.ID, "Не удалось начать запись, попробуйте позже.")
		return
	}
	occupied, err := b.avail.OccupiedDates(ctx)
	if err != nil {
		l.Error().Err(err).Msg("failed to load occupied dates")
		b.reply(msg.Chat.ID, "Не удалось загрузить календарь, попробуйте позже.")
		return
	}
	now := time.Now()
	reply := tgbotapi.NewMessage(msg.Chat.ID, "Выберите дату:")
	reply.ReplyMarkup = GenerateCalendarKeyboard(now.Year(), int(now.Month()), occupied)
	b.send(ctx, reply)
}

func (b *Bot) handleViewRequests(ctx context.Context, msg *tgbotapi.Message) {
	if !b.review.IsAdmin(msg.From.ID) {
		b.reply(msg.Chat.ID, "Вы не администратор!")
		return
	}
	pending, err := b.review.ListPending(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list pending requests")
		b.reply(msg.Chat.ID, "Не удалось загрузить заявки.")
		return
	}
	if len(pending) == 0 {
		b.reply(msg.Chat.ID, "Нет заявок на рассмотрении.")
		return
	}
	for _, a := range pending {
		reply := tgbotapi.NewMessage(msg.Chat.ID, formatAppointment(&a))
		reply.ReplyMarkup = GenerateDecisionKeyboard(a.ID)
		b.send(ctx, reply)
	}
}

func (b *Bot) handleUpcomingRequests(ctx context.Context, msg *tgbotapi.Message) {
	if !b.review.IsAdmin(msg.From.ID) {
		b.reply(msg.Chat.ID, "Вы не администратор!")
		return
	}
	upcoming, err := b.review.ListUpcoming(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list upcoming requests")
		b.reply(msg.Chat.ID, "Не удалось загрузить заявки.")
		return
	}
	if len(upcoming) == 0 {
		b.reply(msg.Chat.ID, "Принятых заявок нет.")
		return
	}
	var sb strings.Builder
	sb.WriteString("Принятые заявки:\n")
	for _, a := range upcoming {
		fmt.Fprintf(&sb, "\n%s", formatAppointment(&a))
	}
	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) handleExport(ctx context.Context, msg *tgbotapi.Message) {
	if !b.review.IsAdmin(msg.From.ID) {
		b.reply(msg.Chat.ID, "Вы не администратор!")
		return
	}
	data, err := b.exporter.Export(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("export failed")
		b.reply(msg.Chat.ID, "Не удалось сформировать выгрузку.")
		return
	}
	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("appointments_%s.xlsx", time.Now().Format("2006-01-02")),
		Bytes: data,
	})
	b.send(ctx, doc)
}

// handleNote treats plain text as the free-form note finishing the dialog:
// the draft plus the note becomes a pending request and every admin gets a
// copy with decision buttons.
func (b *Bot) handleNote(ctx context.Context, msg *tgbotapi.Message, text string) {
	l := zerolog.Ctx(ctx)
	a, err := b.booking.Submit(ctx, msg.From.ID, displayName(msg.From), msg.Chat.ID, text)
	if err != nil {
		l.Error().Err(err).Msg("failed to submit request")
		b.reply(msg.Chat.ID, "Не удалось отправить заявку, попробуйте позже.")
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf(
		"Заявка отправлена!\nКогда: %s\nПричина: %s\nСообщение: %s\nОжидайте решения администратора.",
		a.Time, a.Reason, a.Message))

	kb := GenerateDecisionKeyboard(a.ID)
	b.notifier.Broadcast(ctx, b.review.AdminIDs(), "Новая заявка:\n"+formatAppointment(a), &kb)
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq == nil || cq.Message == nil {
		return
	}
	data := cq.Data
	_ = b.answerCallback(cq.ID)
	if data == "empty" {
		return
	}

	chatID := cq.Message.Chat.ID

	switch {
	case data == "occupied":
		b.reply(chatID, "Это время уже занято, выберите другое.")
	case strings.HasPrefix(data, "occupied_"):
		b.reply(chatID, "Эта дата уже занята, выберите другую.")
	case strings.HasPrefix(data, "date_"):
		b.handleDateCallback(ctx, chatID, cq.From.ID, strings.TrimPrefix(data, "date_"))
	case strings.HasPrefix(data, "time_"):
		b.handleTimeCallback(ctx, chatID, cq.From.ID, data)
	case strings.HasPrefix(data, "reason_"):
		b.handleReasonCallback(ctx, chatID, cq.From.ID, strings.TrimPrefix(data, "reason_"))
	case strings.HasPrefix(data, "accept_"), strings.HasPrefix(data, "reject_"):
		b.handleDecisionCallback(ctx, cq)
	}
}

func (b *Bot) handleDateCallback(ctx context.Context, chatID, userID int64, date string) {
	l := zerolog.Ctx(ctx)
	err := b.booking.SelectDate(ctx, userID, date)
	switch {
	case errors.Is(err, booking.ErrPastDate):
		b.reply(chatID, "Нельзя выбрать прошедшую дату.")
		return
	case errors.Is(err, booking.ErrDateOccupied):
		b.reply(chatID, "Эта дата уже занята, выберите другую.")
		return
	case err != nil:
		l.Error().Err(err).Str("date", date).Msg("failed to select date")
		b.reply(chatID, "Что-то пошло не так, попробуйте еще раз.")
		return
	}

	slots, err := b.avail.DaySlots(ctx, date)
	if err != nil {
		l.Error().Err(err).Str("date", date).Msg("failed to load time slots")
		b.reply(chatID, "Не удалось загрузить свободное время.")
		return
	}
	reply := tgbotapi.NewMessage(chatID, "Выберите время:")
	reply.ReplyMarkup = GenerateTimeKeyboard(date, slots)
	b.send(ctx, reply)
}

func (b *Bot) handleTimeCallback(ctx context.Context, chatID, userID int64, data string) {
	l := zerolog.Ctx(ctx)
	// time_<HH:MM>_<date>
	parts := strings.SplitN(data, "_", 3)
	if len(parts) != 3 {
		return
	}
	timeOfDay, date := parts[1], parts[2]

	err := b.booking.SelectTime(ctx, userID, date, timeOfDay)
	switch {
	case errors.Is(err, booking.ErrTimeOccupied):
		b.reply(chatID, "Это время уже занято, выберите другое.")
		return
	case err != nil:
		l.Error().Err(err).Str("slot", timeOfDay).Msg("failed to select time")
		b.reply(chatID, "Что-то пошло не так, попробуйте еще раз.")
		return
	}

	reply := tgbotapi.NewMessage(chatID, "Выберите причину встречи:")
	reply.ReplyMarkup = GenerateReasonKeyboard()
	b.send(ctx, reply)
}

func (b *Bot) handleReasonCallback(ctx context.Context, chatID, userID int64, token string) {
	label, err := b.booking.SelectReason(ctx, userID, token)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("reason", token).Msg("failed to select reason")
		b.reply(chatID, "Что-то пошло не так, попробуйте еще раз.")
		return
	}
	b.reply(chatID, fmt.Sprintf("Причина: %s.\nНапишите сообщение к заявке:", label))
}

func (b *Bot) handleDecisionCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	l := zerolog.Ctx(ctx)
	chatID := cq.Message.Chat.ID
	if !b.review.IsAdmin(cq.From.ID) {
		b.reply(chatID, "Вы не администратор!")
		return
	}

	decision, idStr, ok := strings.Cut(cq.Data, "_")
	if !ok {
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		b.reply(chatID, "Некорректная заявка.")
		return
	}

	a, err := b.review.Decide(ctx, cq.From.ID, id, decision)
	switch {
	case errors.Is(err, db.ErrAlreadyDecided):
		b.reply(chatID, "Заявка уже рассмотрена.")
		return
	case errors.Is(err, db.ErrAppointmentNotFound):
		b.reply(chatID, "Заявка не найдена.")
		return
	case err != nil:
		l.Error().Err(err).Int64("appointment_id", id).Msg("failed to decide request")
		b.reply(chatID, "Не удалось обработать заявку.")
		return
	}

	if decision == review.DecisionAccept {
		b.reply(chatID, fmt.Sprintf("Заявка #%d принята.", a.ID))
		b.notifyRequester(ctx, a.ChatID, fmt.Sprintf("Ваша заявка принята! Ждем вас %s.", a.Time))
	} else {
		b.reply(chatID, fmt.Sprintf("Заявка #%d отклонена.", a.ID))
		b.notifyRequester(ctx, a.ChatID, "К сожалению, ваша заявка отклонена.")
	}
}

// notifyRequester is best effort: the decision is already committed, a
// delivery failure only gets logged.
func (b *Bot) notifyRequester(ctx context.Context, chatID int64, text string) {
	if chatID == 0 {
		return
	}
	if err := b.notifier.Send(ctx, chatID, tgbotapi.NewMessage(chatID, text)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("chat_id", chatID).Msg("failed to notify requester")
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func (b *Bot) send(ctx context.Context, msg tgbotapi.Chattable) {
	if _, err := b.tg.Send(msg); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to send message")
	}
}

func (b *Bot) answerCallback(id string) error {
	_, err := b.tg.Request(tgbotapi.NewCallback(id, ""))
	return err
}

func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return "@" + u.UserName
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return strconv.FormatInt(u.ID, 10)
}
