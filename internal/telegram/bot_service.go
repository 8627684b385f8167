// Package telegram handles the integration with the Telegram Bot API.
// It is responsible for receiving updates from Telegram, normalizing them
// into conversation events, and sending the machine's replies back.
package telegram

import (
	"context"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mayankshukla2904/nagrik-backend/internal/conversation"
	"github.com/mayankshukla2904/nagrik-backend/internal/localization"
	"github.com/mayankshukla2904/nagrik-backend/internal/storage"
)

// BotService is responsible for receiving Telegram updates and routing them
// through the conversation machine. It holds no per-user state itself; all of
// that lives in the machine's session store.
type BotService struct {
	BotAPI    *tgbotapi.BotAPI
	Machine   *conversation.Machine
	Storage   storage.Storage
	Localizer *localization.Localizer
}

// NewBotService creates a new BotService instance.
func NewBotService(token string, machine *conversation.Machine, s storage.Storage, localizer *localization.Localizer) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("✅ Authorized on account %s", bot.Self.UserName)

	return &BotService{
		BotAPI:    bot,
		Machine:   machine,
		Storage:   s,
		Localizer: localizer,
	}, nil
}

// extractMessageContent uniformly extracts text or a caption from a message.
func extractMessageContent(msg *tgbotapi.Message) string {
	if msg == nil {
		return ""
	}
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

// Run is the main loop for receiving Telegram updates.
func (s *BotService) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)

	for update := range updates {
		switch {
		case update.Message != nil:
			s.handleMessage(update.Message)
		case update.CallbackQuery != nil:
			s.handleCallbackQuery(update.CallbackQuery)
		}
	}
}

// handleMessage resolves the sender, maps the message to a conversation event
// and sends back whatever the machine replies. The machine recovers from its
// own panics, so a bad message never takes the update loop down.
func (s *BotService) handleMessage(msg *tgbotapi.Message) {
	user, err := s.Storage.SaveUserIfNotExists(msg.Chat.ID)
	if err != nil {
		log.Printf("ERROR: failed to resolve user for TelegramID %d: %v", msg.Chat.ID, err)
		return
	}

	if msg.IsCommand() && msg.Command() == "language" && strings.TrimSpace(msg.CommandArguments()) == "" {
		s.sendLanguageKeyboard(msg.Chat.ID, user.Language)
		return
	}

	event, ok := s.eventFromMessage(msg)
	if !ok {
		s.send(msg.Chat.ID, s.Localizer.GetString(user.Language, "unsupported_message_type"))
		return
	}

	_, reply := s.Machine.Handle(context.Background(), user.ID, event)
	if reply != "" {
		s.send(msg.Chat.ID, reply)
	}
}

// eventFromMessage normalizes a Telegram message into a conversation event.
// The second return is false for message types the intake flow cannot use.
func (s *BotService) eventFromMessage(msg *tgbotapi.Message) (conversation.Event, bool) {
	switch {
	case msg.IsCommand():
		return conversation.CommandEvent(msg.Command(), strings.TrimSpace(msg.CommandArguments())), true
	case msg.Location != nil:
		return conversation.Event{
			Kind:      conversation.EventLocation,
			Latitude:  msg.Location.Latitude,
			Longitude: msg.Location.Longitude,
		}, true
	case msg.Photo != nil:
		largestPhoto := msg.Photo[len(msg.Photo)-1]
		return conversation.Event{
			Kind:        conversation.EventMedia,
			MediaFileID: largestPhoto.FileID,
			Text:        msg.Caption,
		}, true
	case msg.Video != nil:
		return conversation.Event{
			Kind:        conversation.EventMedia,
			MediaFileID: msg.Video.FileID,
			Text:        msg.Caption,
		}, true
	default:
		if content := extractMessageContent(msg); content != "" {
			return conversation.TextEvent(content), true
		}
		return conversation.Event{}, false
	}
}

// sendLanguageKeyboard sends a message with a keyboard to choose a language.
func (s *BotService) sendLanguageKeyboard(chatID int64, language string) {
	msg := tgbotapi.NewMessage(chatID, s.Localizer.GetString(language, "choose_language"))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("English", "set_lang_"+localization.LanguageEnglish),
			tgbotapi.NewInlineKeyboardButtonData("हिन्दी", "set_lang_"+localization.LanguageHindi),
		),
	)
	if _, err := s.BotAPI.Send(msg); err != nil {
		log.Printf("ERROR: failed to send language keyboard to chat %d: %v", chatID, err)
	}
}

func (s *BotService) handleCallbackQuery(callbackQuery *tgbotapi.CallbackQuery) {
	// Respond to the callback query to remove the "loading" state
	callback := tgbotapi.NewCallback(callbackQuery.ID, "")
	if _, err := s.BotAPI.Request(callback); err != nil {
		log.Printf("failed to send callback response: %v", err)
	}

	if callbackQuery.Message == nil {
		return
	}
	chatID := callbackQuery.Message.Chat.ID

	if strings.HasPrefix(callbackQuery.Data, "set_lang_") {
		langCode := strings.TrimPrefix(callbackQuery.Data, "set_lang_")

		user, err := s.Storage.SaveUserIfNotExists(chatID)
		if err != nil {
			log.Printf("ERROR: failed to resolve user for TelegramID %d: %v", chatID, err)
			return
		}

		// The machine persists the choice and answers in the new language.
		_, reply := s.Machine.Handle(context.Background(), user.ID, conversation.CommandEvent("language", langCode))
		if reply != "" {
			s.send(chatID, reply)
		}
	}
}

// send delivers one plain-text reply, logging failures instead of surfacing
// them; Telegram delivery problems must not disturb session state.
func (s *BotService) send(chatID int64, text string) {
	reply := tgbotapi.NewMessage(chatID, text)
	if _, err := s.BotAPI.Send(reply); err != nil {
		log.Printf("ERROR: failed to send message to chat %d: %v", chatID, err)
	}
}
