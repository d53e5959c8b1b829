// Package bot wraps the Telegram Bot API for posting to the target channel.
package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/maheshsv/telegram-doc-poster/internal/platform/config"
)

const (
	// emptyMessagePlaceholder stands in for whitespace-only text because
	// Telegram rejects messages with an empty body.
	emptyMessagePlaceholder = " "

	logFieldAdminID = "admin_id"
	logFieldImage   = "image"
)

// Bot posts photos and text messages to the configured channel. All sends
// pass through a shared rate limiter so bursts of chunks stay under
// Telegram's flood limits.
type Bot struct {
	cfg     *config.Config
	api     *tgbotapi.BotAPI
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

func New(cfg *config.Config, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("creating bot API: %w", err)
	}

	return &Bot{
		cfg:     cfg,
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1),
		logger:  logger,
	}, nil
}

// SendPhoto uploads the image at path to the target channel, with an
// optional caption.
func (b *Bot) SendPhoto(ctx context.Context, path, caption string) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	photo := tgbotapi.NewPhoto(b.cfg.TargetChatID, tgbotapi.FilePath(path))
	photo.Caption = caption

	if _, err := b.api.Send(photo); err != nil {
		return fmt.Errorf("send photo %q to chat %d: %w", path, b.cfg.TargetChatID, err)
	}

	b.logger.Debug().Str(logFieldImage, path).Msg("Photo sent")

	return nil
}

// SendText sends one text message to the target channel.
func (b *Bot) SendText(ctx context.Context, text string) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		text = emptyMessagePlaceholder
	}

	msg := tgbotapi.NewMessage(b.cfg.TargetChatID, text)
	msg.DisableWebPagePreview = true

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message to chat %d: %w", b.cfg.TargetChatID, err)
	}

	return nil
}

// SendNotification delivers an operational notice to every configured admin.
// Failures are logged per admin and never abort the caller.
func (b *Bot) SendNotification(ctx context.Context, text string) error {
	for _, adminID := range b.cfg.AdminIDs {
		if err := b.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		msg := tgbotapi.NewMessage(adminID, text)
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Error().Err(err).Int64(logFieldAdminID, adminID).Msg("failed to send notification to admin")
		}
	}

	return nil
}
