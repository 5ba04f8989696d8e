package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"daily-tasks/internal/model"
	"daily-tasks/internal/repository"
	"daily-tasks/internal/service"
)

const (
	cbTogglePrefix = "toggle:"
	cbCarryPrefix  = "carry:"
)

const (
	menuLabelToday = "📋 Today"
	menuLabelCarry = "♻️ Carry over"
	menuLabelIdeas = "💡 Suggestions"
	menuLabelHelp  = "ℹ️ Help"
)

// sender is the part of the Telegram API the handlers talk to.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Services are what the bot's commands call into.
type Services struct {
	Users     *repository.UserRepository
	Accounts  *service.UserService
	Tasks     *service.TaskService
	CarryOver *service.CarryOverService
	Reminders *service.ReminderService
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api      *tgbotapi.BotAPI
	out      sender
	svc      Services
	timezone string
}

// New connects to Telegram. New chats get timezone as their zone.
func New(token string, svc Services, timezone string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	b := newBot(api, svc, timezone)
	b.api = api
	return b, nil
}

func newBot(out sender, svc Services, timezone string) *Bot {
	return &Bot{out: out, svc: svc, timezone: timezone}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot is not connected")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}

	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			log.Printf("[error] handle callback: %v", err)
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("[error] handle message: %v", err)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.Chat.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	// Plain text is a new task for today.
	return b.addTask(ctx, msg.Chat.ID, msg.Text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg.Chat.ID)
	case "today":
		return b.sendToday(ctx, msg.Chat.ID)
	case "add":
		return b.addTask(ctx, msg.Chat.ID, msg.CommandArguments())
	case "done":
		return b.handleDone(ctx, msg)
	case "carryover":
		return b.handleCarryOver(ctx, msg.Chat.ID)
	case "suggest":
		return b.sendSuggestions(ctx, msg.Chat.ID)
	case "timezone":
		return b.handleTimezone(ctx, msg)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelToday):
		return true, b.sendToday(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelCarry):
		return true, b.handleCarryOver(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelIdeas):
		return true, b.sendSuggestions(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg.Chat.ID)
	default:
		return false, nil
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.Chat.ID); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I keep your daily list and move unfinished tasks to the next day.</b>\n\n"+
			"Send any text to add it to today.\n\n"+helpText,
		escape(name),
	)
	return b.sendText(msg.Chat.ID, text)
}

const helpText = "Commands:\n" +
	"• /today — today's list\n" +
	"• /add &lt;text&gt; — add a task\n" +
	"• /done &lt;n&gt; — toggle the n-th task of today\n" +
	"• /carryover — carry yesterday's unfinished tasks now\n" +
	"• /suggest — tasks that keep slipping\n" +
	"• /timezone &lt;Area/City&gt; — zone your days are counted in"

func (b *Bot) handleHelp(chatID int64) error {
	return b.sendText(chatID, "ℹ️ <b>Help</b>\n"+helpText)
}

func (b *Bot) addTask(ctx context.Context, chatID int64, content string) error {
	user, err := b.ensureUser(ctx, chatID)
	if err != nil {
		return err
	}
	task, err := b.svc.Tasks.CreateTask(ctx, user, content, nil)
	var verr *repository.ValidationError
	if errors.As(err, &verr) {
		return b.sendText(chatID, "Write the task after the command, e.g. /add buy milk")
	}
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not save the task: %s", escape(err.Error())))
	}
	return b.sendText(chatID, fmt.Sprintf("➕ Added «%s».", escape(task.Content)))
}

// sendToday renders today's list with a toggle button per task.
func (b *Bot) sendToday(ctx context.Context, chatID int64) error {
	user, err := b.ensureUser(ctx, chatID)
	if err != nil {
		return err
	}
	text, err := b.svc.Reminders.DailySummary(ctx, user)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load tasks: %s", escape(err.Error())))
	}
	view, err := b.svc.Tasks.Today(ctx, user)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load tasks: %s", escape(err.Error())))
	}

	var buttons [][]tgbotapi.InlineKeyboardButton
	for i, task := range view.Tasks {
		mark := "⬜"
		if task.Completed {
			mark = "✅"
		}
		label := fmt.Sprintf("%s %d · %s", mark, i+1, shortTitle(task.Content, 24))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbTogglePrefix+task.ID),
		))
	}
	if len(buttons) == 0 {
		return b.sendText(chatID, text)
	}
	return b.sendWithReplyMarkup(chatID, text, tgbotapi.NewInlineKeyboardMarkup(buttons...))
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	n, err := strconv.Atoi(strings.TrimSpace(msg.CommandArguments()))
	if err != nil || n <= 0 {
		return b.sendText(msg.Chat.ID, "Give the task number from /today, e.g. /done 2")
	}
	user, err := b.ensureUser(ctx, msg.Chat.ID)
	if err != nil {
		return err
	}
	view, err := b.svc.Tasks.Today(ctx, user)
	if err != nil {
		return err
	}
	if n > len(view.Tasks) {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("There are only %d tasks today.", len(view.Tasks)))
	}
	return b.toggle(ctx, msg.Chat.ID, user, view.Tasks[n-1].ID)
}

func (b *Bot) toggle(ctx context.Context, chatID int64, user *model.User, taskID string) error {
	task, err := b.svc.Tasks.ToggleTask(ctx, user, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return b.sendText(chatID, "Task not found or already deleted.")
	}
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}
	if task.Completed {
		return b.sendText(chatID, fmt.Sprintf("✅ «%s» done.", escape(task.Content)))
	}
	return b.sendText(chatID, fmt.Sprintf("↩️ «%s» reopened.", escape(task.Content)))
}

func (b *Bot) handleCarryOver(ctx context.Context, chatID int64) error {
	user, err := b.ensureUser(ctx, chatID)
	if err != nil {
		return err
	}
	res, err := b.svc.CarryOver.CarryOver(ctx, user.ID, b.svc.Tasks.Day(user).Location())
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Carry-over failed: %s", escape(err.Error())))
	}
	if res.AlreadyRan {
		return b.sendText(chatID, "Carry-over already ran today.")
	}
	text := service.CarryOverSummary(res, nil)
	if text == "" {
		text = "Nothing to carry over. Clean slate!"
	}
	return b.sendText(chatID, text)
}

func (b *Bot) sendSuggestions(ctx context.Context, chatID int64) error {
	user, err := b.ensureUser(ctx, chatID)
	if err != nil {
		return err
	}
	tasks, err := b.svc.Tasks.Suggestions(ctx, user)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load suggestions: %s", escape(err.Error())))
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, "No suggestions right now.")
	}

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, task := range tasks {
		label := fmt.Sprintf("♻️ %s (%s)", shortTitle(task.Content, 24), task.DateCreated)
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbCarryPrefix+task.ID),
		))
	}
	return b.sendWithReplyMarkup(chatID, "💡 <b>These keep slipping.</b> Tap one to bring it into today.",
		tgbotapi.NewInlineKeyboardMarkup(buttons...))
}

func (b *Bot) handleTimezone(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.Chat.ID)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		current := user.Timezone
		if current == "" {
			current = "server default"
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Your zone: %s. Change it with /timezone Europe/Berlin", escape(current)))
	}
	if err := b.svc.Accounts.SetTimezone(ctx, user.ID, name); err != nil {
		var verr *repository.ValidationError
		if errors.As(err, &verr) {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Unknown zone %s.", escape(name)))
		}
		return err
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🕰 Days are now counted in %s.", escape(name)))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.out.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("[warn] callback ack: %v", err)
	}

	chatID := cb.Message.Chat.ID
	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbTogglePrefix):
		log.Printf("[info] callback toggle chat=%d task=%s", chatID, strings.TrimPrefix(data, cbTogglePrefix))
		user, err := b.ensureUser(ctx, chatID)
		if err != nil {
			return err
		}
		return b.toggle(ctx, chatID, user, strings.TrimPrefix(data, cbTogglePrefix))
	case strings.HasPrefix(data, cbCarryPrefix):
		log.Printf("[info] callback carry chat=%d task=%s", chatID, strings.TrimPrefix(data, cbCarryPrefix))
		user, err := b.ensureUser(ctx, chatID)
		if err != nil {
			return err
		}
		res, err := b.svc.CarryOver.CarrySelected(ctx, user.ID, []string{strings.TrimPrefix(data, cbCarryPrefix)}, b.svc.Tasks.Day(user).Location())
		if err != nil {
			return b.sendText(chatID, fmt.Sprintf("Carry-over failed: %s", escape(err.Error())))
		}
		if res.TotalCarried == 0 {
			return b.sendText(chatID, "That task is already in today's list.")
		}
		return b.sendText(chatID, fmt.Sprintf("♻️ «%s» is back in today's list.", escape(res.CarriedTasks[0].Content)))
	default:
		return nil
	}
}

// Notify delivers a maintenance summary to the user's chat.
func (b *Bot) Notify(_ context.Context, user model.User, text string) error {
	if user.TelegramChatID == nil {
		return nil
	}
	return b.sendText(*user.TelegramChatID, text)
}

// SendDailySummaries sends today's list to every linked user.
func (b *Bot) SendDailySummaries(ctx context.Context) error {
	users, err := b.svc.Users.ListAll(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		user := &users[i]
		if user.TelegramChatID == nil {
			continue
		}
		text, err := b.svc.Reminders.DailySummary(ctx, user)
		if err != nil {
			log.Printf("[error] build summary for user %s: %v", user.ID, err)
			continue
		}
		if err := b.sendText(*user.TelegramChatID, text); err != nil {
			log.Printf("[error] send summary to %d: %v", *user.TelegramChatID, err)
		}
	}
	return nil
}

func (b *Bot) ensureUser(ctx context.Context, chatID int64) (*model.User, error) {
	return b.svc.Users.UpsertFromTelegram(ctx, chatID, b.timezone)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.out.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.out.Send(msg)
	return err
}
