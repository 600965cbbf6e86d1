package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"wallethunter/internal/domain"
	"wallethunter/internal/logger"
	"wallethunter/internal/repository"
	"wallethunter/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot is the interactive process: it touches the shared store on every
// inbound message and exposes the admin command surface.
type Bot struct {
	api             *tgbotapi.BotAPI
	repo            *repository.UserRepository
	admin           *service.AdminService
	adminIDs        []int64
	walletHunterURL string
	dominoURL       string

	stopCh          chan struct{}
	wg              sync.WaitGroup
	log             *slog.Logger
	feedbackPending map[int64]bool
	mu              sync.Mutex
}

func New(token string, repo *repository.UserRepository, admin *service.AdminService, adminIDs []int64, walletHunterURL, dominoURL string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "bot")
	log.Info("bot authorized", "username", api.Self.UserName)

	return &Bot{
		api:             api,
		repo:            repo,
		admin:           admin,
		adminIDs:        adminIDs,
		walletHunterURL: walletHunterURL,
		dominoURL:       dominoURL,
		stopCh:          make(chan struct{}),
		log:             log,
		feedbackPending: make(map[int64]bool),
	}, nil
}

// Start runs the update loop until Stop is called.
func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			switch {
			case update.Message != nil:
				b.wg.Add(1)
				go func(msg *tgbotapi.Message) {
					defer b.wg.Done()
					b.handleMessage(msg)
				}(update.Message)
			case update.CallbackQuery != nil:
				b.wg.Add(1)
				go func(cb *tgbotapi.CallbackQuery) {
					defer b.wg.Done()
					b.handleCallback(cb)
				}(update.CallbackQuery)
			}
		}
	}
}

// Stop gracefully stops the bot and drains in-flight handlers.
func (b *Bot) Stop() {
	close(b.stopCh)
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	for _, id := range b.adminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Every inbound message refreshes identity and heartbeat.
	if err := b.repo.Touch(ctx, domain.Identity{
		UserID:    msg.From.ID,
		Username:  msg.From.UserName,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
		Language:  msg.From.LanguageCode,
	}); err != nil {
		b.log.Error("touch failed", "user_id", msg.From.ID, "error", err)
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	b.handleText(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.sendMenu(msg.Chat.ID, "Главное меню:")

	case "myid":
		b.reply(msg, fmt.Sprintf("Ваш ID: %d", msg.From.ID))

	case "adminhelp", "users", "user", "setwin", "setgen", "setbal", "stats":
		if !b.isAdmin(msg.From.ID) {
			b.reply(msg, "⛔ Команда доступна только админу.")
			return
		}
		b.reply(msg, b.handleAdminCommand(ctx, msg))

	default:
		b.reply(msg, "Неизвестная команда. /start — главное меню.")
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Text == "" {
		return
	}

	b.mu.Lock()
	pending := b.feedbackPending[msg.From.ID]
	if pending {
		delete(b.feedbackPending, msg.From.ID)
	}
	b.mu.Unlock()

	if pending {
		b.relayFeedback(msg)
		return
	}

	if msg.Text == "📩 Обратная связь" {
		b.mu.Lock()
		b.feedbackPending[msg.From.ID] = true
		b.mu.Unlock()
		b.reply(msg, "Напиши сообщение одним текстом — я отправлю его админу.")
		return
	}

	if msg.Text == "🎮 Игры" {
		b.sendGamesMenu(msg.Chat.ID)
	}
}

func (b *Bot) relayFeedback(msg *tgbotapi.Message) {
	sender := fmt.Sprintf("%d @%s %s %s", msg.From.ID, msg.From.UserName, msg.From.FirstName, msg.From.LastName)
	payload := fmt.Sprintf("📩 Feedback\nОт: %s\n\n%s", sender, msg.Text)

	sentAny := false
	for _, adminID := range b.adminIDs {
		if _, err := b.api.Send(tgbotapi.NewMessage(adminID, payload)); err == nil {
			sentAny = true
		}
	}

	if sentAny {
		b.reply(msg, "✅ Отправлено админу.")
	} else {
		b.reply(msg, "⚠️ Не удалось доставить админу (проверь ADMIN_IDS).")
	}
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	switch cb.Data {
	case "menu_games":
		b.answerCallback(cb.ID, "")
		if cb.Message != nil {
			b.sendGamesMenu(cb.Message.Chat.ID)
		}
	case "game_smash":
		b.answerCallback(cb.ID, "Smash скоро будет 👍")
		if cb.Message != nil {
			b.send(cb.Message.Chat.ID, "Smash: в разработке.")
		}
	default:
		b.answerCallback(cb.ID, "Неизвестная команда")
	}
}

func (b *Bot) sendMenu(chatID int64, text string) {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("▶️ Wallet Hunter", b.walletHunterURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎮 Игры", "menu_games"),
		),
	)

	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = kb
	if _, err := b.api.Send(m); err != nil {
		b.log.Error("send menu failed", "error", err)
	}
}

func (b *Bot) sendGamesMenu(chatID int64) {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🁫 Domino (Mini App)", b.dominoURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💥 Smash (скоро)", "game_smash"),
		),
	)

	m := tgbotapi.NewMessage(chatID, "Выбери игру:")
	m.ReplyMarkup = kb
	if _, err := b.api.Send(m); err != nil {
		b.log.Error("send games menu failed", "error", err)
	}
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	m := tgbotapi.NewMessage(msg.Chat.ID, text)
	m.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(m); err != nil {
		b.log.Error("send reply failed", "error", err)
	}
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error("send failed", "error", err)
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.log.Error("answer callback failed", "error", err)
	}
}
