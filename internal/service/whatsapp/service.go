package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/eggtracker/internal/config"
	"github.com/mamadbah2/eggtracker/internal/domain/models"
	"github.com/mamadbah2/eggtracker/internal/service/commands"
	"github.com/mamadbah2/eggtracker/pkg/clients/anthropic"
	client "github.com/mamadbah2/eggtracker/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// ErrEmptyMessage is returned for inbound messages without readable text.
var ErrEmptyMessage = errors.New("empty message body")

// MessagingService describes the operations the HTTP layer and scheduler can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	translator anthropic.Client
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. translator may be nil.
func NewMetaWhatsAppService(
	cfg config.WhatsAppConfig,
	apiClient client.Client,
	dispatcher commands.Dispatcher,
	translator anthropic.Client,
	logger *zap.Logger,
) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetaWhatsAppService{
		cfg:        cfg,
		client:     apiClient,
		dispatcher: dispatcher,
		translator: translator,
		logger:     logger.Named("svc.whatsapp"),
	}
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook runs every inbound message as a command and replies to its sender.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := extractMessageText(msg)
	if text == "" {
		return ErrEmptyMessage
	}

	if err := s.client.MarkRead(ctx, msg.ID); err != nil {
		s.logger.Debug("mark read failed", zap.Error(err))
	}

	cmd := s.parse(ctx, text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	if err != nil {
		reply = ErrorReply(err)
		var pe *models.PersistenceError
		if errors.As(err, &pe) {
			s.logger.Error("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		}
	}

	return s.send(ctx, msg.From, reply, false)
}

// parse falls back to the translator for text that is not a known command.
func (s *MetaWhatsAppService) parse(ctx context.Context, text string) models.Command {
	cmd := models.ParseCommand(text)
	if cmd.Type != models.CommandUnknown || s.translator == nil {
		return cmd
	}

	line, err := s.translator.TranslateToCommand(ctx, text)
	if err != nil {
		s.logger.Debug("translation failed", zap.Error(err))
		return cmd
	}
	translated := models.ParseCommand(line)
	if translated.Type == models.CommandUnknown {
		return cmd
	}
	s.logger.Debug("translated free text", zap.String("command", line))
	return translated
}

// SendOutbound lets internal operators and jobs push notifications.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return s.send(ctx, req.To, req.Message, req.PreviewURL)
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, preview bool) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         to,
		Body:       body,
		PreviewURL: preview,
	})
	return err
}

// ErrorReply turns a command failure into a message for the farm hand.
func ErrorReply(err error) string {
	var (
		stock    *models.InsufficientStockError
		size     *models.InvalidCartonSizeError
		sale     *models.InvalidSaleInputError
		category *models.UnknownCategoryError
		input    *models.InvalidInputError
		persist  *models.PersistenceError
	)

	switch {
	case errors.Is(err, commands.ErrUnsupportedCommand):
		return "Unknown command.\n" + commands.HelpMessage
	case errors.Is(err, commands.ErrInvalidArguments):
		return "I could not read that.\n" + commands.HelpMessage
	case errors.As(err, &stock):
		return fmt.Sprintf("Not enough %s eggs: need %d, have %d.", stock.Category, stock.Requested, stock.Available)
	case errors.As(err, &size):
		return fmt.Sprintf("A carton holds %d to %d eggs, not %d.", models.MinCartonSize, models.MaxCartonSize, size.Value)
	case errors.As(err, &sale):
		return fmt.Sprintf("The sale needs a valid %s.", sale.Field)
	case errors.As(err, &category):
		return fmt.Sprintf("I do not know the egg type %q.", string(category.ID))
	case errors.Is(err, models.ErrEmptyCollection):
		return "A collection needs at least one egg."
	case errors.Is(err, models.ErrSpeedModeRequired):
		return "Bulk packing needs speed mode. Pack cartons by color instead."
	case errors.Is(err, models.ErrInvalidState):
		return "That carton is already sold."
	case errors.Is(err, models.ErrNotFound):
		return "I could not find that carton."
	case errors.As(err, &input):
		return fmt.Sprintf("Invalid %s: %q.", input.Field, input.Value)
	case errors.As(err, &persist):
		return "Saving failed. Nothing was changed, please try again."
	default:
		return "Something went wrong. Please try again."
	}
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return strings.TrimSpace(msg.Text.Body)
	}

	if msg.Interactive != nil {
		if msg.Interactive.ButtonReply != nil {
			return msg.Interactive.ButtonReply.ID
		}
		if msg.Interactive.ListReply != nil {
			return msg.Interactive.ListReply.ID
		}
	}

	return ""
}
