package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wallethunter/internal/domain"
	"wallethunter/internal/repository"
	"wallethunter/internal/schema"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleAdminCommand dispatches an already-authorized admin command and
// returns the reply text.
func (b *Bot) handleAdminCommand(ctx context.Context, msg *tgbotapi.Message) string {
	args := msg.CommandArguments()

	switch msg.Command() {
	case "adminhelp":
		return adminHelp
	case "users":
		return b.handleUsers(ctx, args)
	case "user":
		return b.handleUser(ctx, args)
	case "setwin":
		return b.handleSetWin(ctx, args)
	case "setgen":
		return b.handleSetGen(ctx, args)
	case "setbal":
		return b.handleSetBal(ctx, args)
	case "stats":
		return b.handleStats(ctx)
	default:
		return "Неизвестная команда. /adminhelp — список команд."
	}
}

const adminHelp = `🔧 Admin команды:
/users [N] — последние N пользователей (по умолчанию 20)
/user <id> — карточка пользователя
/setwin <id> <percent> — шанс выигрыша
/setgen <id> <level> — уровень генератора
/setbal <id> <mmc|ton|usdt|stars> <value> — баланс
/stats — статистика
/myid — показать твой Telegram ID`

func (b *Bot) handleUsers(ctx context.Context, args string) string {
	limit := 20
	if args != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(args)); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	users, err := b.admin.ListUsers(ctx, limit)
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}
	if len(users) == 0 {
		return "Пока пользователей нет."
	}

	var sb strings.Builder
	sb.WriteString("👥 Users:\n")
	for _, u := range users {
		sb.WriteString(fmt.Sprintf("%d | %s | last: %s | win=%.1f%% | gen=%d\n",
			u.UserID, displayName(u), formatTS(u.LastSeen), u.WinChance, u.GenLevel))
	}
	return sb.String()
}

func (b *Bot) handleUser(ctx context.Context, args string) string {
	userID, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		return "Используй: /user <id>"
	}

	u, err := b.admin.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return "Пользователь не найден."
	}
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	uname := "—"
	if u.Username != "" {
		uname = "@" + u.Username
	}

	return fmt.Sprintf(`👤 User %d
username: %s
name: %s %s
lang: %s
created: %s
last_seen: %s

win: %.1f%%
gen: %d
bal: mmc=%g, ton=%g, usdt=%g, stars=%g
minutes: %d
wallet: %s (%s)`,
		u.UserID, uname, u.FirstName, u.LastName, u.Language,
		formatTS(u.CreatedAt), formatTS(u.LastSeen),
		u.WinChance, u.GenLevel,
		u.BalMMC, u.BalTON, u.BalUSDT, u.BalStars,
		u.MinutesInApp, u.WalletStatus, u.WalletAddress)
}

func (b *Bot) handleSetWin(ctx context.Context, args string) string {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return "Используй: /setwin <id> <percent>"
	}

	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "ID должен быть числом."
	}
	percent, err := strconv.ParseFloat(strings.ReplaceAll(parts[1], ",", "."), 64)
	if err != nil {
		return "Неверный формат. Пример: /setwin 123 10"
	}

	stored, err := b.admin.SetWinChance(ctx, userID, percent)
	if errors.Is(err, repository.ErrNotFound) {
		return "Пользователь не найден."
	}
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	return fmt.Sprintf("✅ win_chance для %d = %.1f%%", userID, stored)
}

func (b *Bot) handleSetGen(ctx context.Context, args string) string {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return "Используй: /setgen <id> <level>"
	}

	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "ID должен быть числом."
	}
	level, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "Неверный формат. Пример: /setgen 123 5"
	}

	stored, err := b.admin.SetGenLevel(ctx, userID, level)
	if errors.Is(err, repository.ErrNotFound) {
		return "Пользователь не найден."
	}
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	return fmt.Sprintf("✅ gen_level для %d = %d", userID, stored)
}

func (b *Bot) handleSetBal(ctx context.Context, args string) string {
	parts := strings.Fields(args)
	if len(parts) < 3 {
		return "Используй: /setbal <id> <mmc|ton|usdt|stars> <value>"
	}

	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "ID должен быть числом."
	}
	asset := strings.ToLower(parts[1])
	value, err := strconv.ParseFloat(strings.ReplaceAll(parts[2], ",", "."), 64)
	if err != nil {
		return "Неверный формат. Пример: /setbal 123 usdt 50"
	}

	err = b.admin.SetBalance(ctx, userID, asset, value)
	switch {
	case errors.Is(err, schema.ErrInvalidValue):
		return "Asset должен быть: mmc | ton | usdt | stars"
	case errors.Is(err, repository.ErrNotFound):
		return "Пользователь не найден."
	case err != nil:
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	return fmt.Sprintf("✅ %s для %d = %g", asset, userID, value)
}

func (b *Bot) handleStats(ctx context.Context) string {
	stats, err := b.admin.GetStats(ctx)
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	return fmt.Sprintf(`📊 Статистика

👥 Пользователи:
• Всего: %d
• Активных за сутки: %d
• Активных за неделю: %d`,
		stats.TotalUsers, stats.ActiveToday, stats.ActiveWeek)
}

func displayName(u domain.User) string {
	if u.Username != "" {
		return "@" + u.Username
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return "—"
	}
	return name
}

func formatTS(ts int64) string {
	if ts == 0 {
		return "—"
	}
	return time.Unix(ts, 0).Format("2006-01-02 15:04:05")
}
