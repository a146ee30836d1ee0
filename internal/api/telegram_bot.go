// Package api provides handlers for external APIs and interfaces
package api

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/abelzeko/border-wait/internal/entities"
	"github.com/abelzeko/border-wait/internal/usecases"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

var portIDRe = regexp.MustCompile(`^\d{6,8}$`)

const helpText = "Available commands:\n" +
	"/start - Start the bot\n" +
	"/canada - Wait times entering Canada\n" +
	"/us - Wait times entering the US\n" +
	"/port [id] - Wait times for one US port, e.g. /port 300401\n" +
	"/help - Show this help message"

// CrossingService is the part of the use case layer the bot talks to
type CrossingService interface {
	GetCanadaCrossings() ([]entities.CanadaBorderCrossingTimes, error)
	GetUSCrossings() ([]entities.BorderCrossing, error)
	GetCrossingByPortID(id string) (entities.BorderCrossing, error)
	FormatCanadaInfo(data []entities.CanadaBorderCrossingTimes) string
	FormatUSInfo(data []entities.BorderCrossing) string
	FormatCrossing(c entities.BorderCrossing) string
}

var _ CrossingService = (*usecases.CrossingUseCase)(nil)

// TelegramBot handles interactions with the Telegram API
type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	service CrossingService
	log     zerolog.Logger
}

// NewTelegramBot creates a new Telegram bot handler
func NewTelegramBot(botToken string, service CrossingService, log zerolog.Logger) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &TelegramBot{
		bot:     bot,
		service: service,
		log:     log,
	}, nil
}

// Start listens for and handles Telegram messages until ctx is done
func (t *TelegramBot) Start(ctx context.Context) {
	t.log.Info().Str("account", t.bot.Self.UserName).Msg("authorized on Telegram")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	t.log.Info().Msg("bot is now listening for messages")

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}

			t.logMessage(update.Message)

			msg := tgbotapi.NewMessage(update.Message.Chat.ID, t.Reply(update.Message))
			if _, err := t.bot.Send(msg); err != nil {
				t.log.Error().Err(err).Msg("error sending message")
			}
		}
	}
}

// logMessage records an incoming message. From is empty for messages sent on
// behalf of channels.
func (t *TelegramBot) logMessage(message *tgbotapi.Message) {
	event := t.log.Debug().Str("text", message.Text)
	if message.From != nil {
		event = event.Str("user", message.From.UserName).Int64("user_id", message.From.ID)
	}
	event.Msg("received message")
}

// Reply builds the response text for a message
func (t *TelegramBot) Reply(message *tgbotapi.Message) string {
	if message.IsCommand() {
		return t.handleCommand(message.Command(), message.CommandArguments())
	}

	text := strings.TrimSpace(message.Text)
	if portIDRe.MatchString(text) {
		return t.handlePortCommand(text)
	}
	return "I don't understand. Use /help to see available commands."
}

// handleCommand processes commands like /start, /help, etc.
func (t *TelegramBot) handleCommand(command, args string) string {
	switch command {
	case "start":
		return "Welcome to the Border Wait bot! Use /canada or /us for current wait times, or /help for more information."
	case "help":
		return helpText
	case "canada":
		data, err := t.service.GetCanadaCrossings()
		if err != nil {
			t.log.Error().Err(err).Msg("error fetching CBSA data")
			return "Error fetching wait times. Please try again later."
		}
		return t.service.FormatCanadaInfo(data)
	case "us":
		data, err := t.service.GetUSCrossings()
		if err != nil {
			t.log.Error().Err(err).Msg("error fetching CBP data")
			return "Error fetching wait times. Please try again later."
		}
		return t.service.FormatUSInfo(data)
	case "port":
		return t.handlePortCommand(args)
	default:
		t.log.Debug().Str("command", command).Msg("unknown command")
		return "Unknown command. Use /help to see available commands."
	}
}

// handlePortCommand processes the /port [id] command
func (t *TelegramBot) handlePortCommand(args string) string {
	args = strings.TrimSpace(args)
	if args == "" {
		return "Please specify a port identifier. Example: /port 300401"
	}

	crossing, err := t.service.GetCrossingByPortID(args)
	var fe *entities.FormatError
	switch {
	case err == nil:
		return t.service.FormatCrossing(crossing)
	case errors.As(err, &fe):
		return fmt.Sprintf("'%s' is not a port identifier. Use 6 to 8 digits, e.g. 300401.", args)
	case errors.Is(err, usecases.ErrPortNotFound):
		return fmt.Sprintf("No wait times found for port '%s'. Use /us to see the available ports.", args)
	default:
		t.log.Error().Err(err).Str("port", args).Msg("error looking up port")
		return "Error fetching wait times. Please try again later."
	}
}
