package whatsapp

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/mamadbah2/eggtracker/internal/config"
	"github.com/mamadbah2/eggtracker/internal/domain/models"
	"github.com/mamadbah2/eggtracker/internal/service/commands"
	client "github.com/mamadbah2/eggtracker/pkg/clients/whatsapp"
)

type fakeClient struct {
	mu      sync.Mutex
	sent    []client.SendTextMessageRequest
	read    []string
	sendErr error
}

func (f *fakeClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, req)
	return &client.SendTextMessageResponse{}, nil
}

func (f *fakeClient) MarkRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.read = append(f.read, id)
	return nil
}

type fakeDispatcher struct {
	got   []models.Command
	reply string
	err   error
}

func (f *fakeDispatcher) HandleCommand(_ context.Context, cmd models.Command, _ string) (string, error) {
	f.got = append(f.got, cmd)
	return f.reply, f.err
}

type fakeTranslator struct {
	line string
	err  error
}

func (f fakeTranslator) TranslateToCommand(context.Context, string) (string, error) {
	return f.line, f.err
}

func textPayload(from, body string) models.WebhookPayload {
	return models.WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []models.WebhookEntry{{
			Changes: []models.WebhookChange{{
				Field: "messages",
				Value: models.WebhookValue{Messages: []models.InboundMessage{{
					From: from,
					ID:   "wamid.1",
					Type: "text",
					Text: &models.TextContent{Body: body},
				}}},
			}},
		}},
	}
}

func TestVerifyWebhookToken(t *testing.T) {
	t.Parallel()
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{VerifyToken: "secret"}, &fakeClient{}, &fakeDispatcher{}, nil, nil)

	got, err := svc.VerifyWebhookToken("subscribe", "secret", "challenge-1")
	if err != nil || got != "challenge-1" {
		t.Fatalf("VerifyWebhookToken = %q, %v", got, err)
	}
	for _, tc := range [][2]string{{"", "secret"}, {"unsubscribe", "secret"}, {"subscribe", "wrong"}} {
		if _, err := svc.VerifyWebhookToken(tc[0], tc[1], "c"); err == nil {
			t.Errorf("VerifyWebhookToken(%q, %q) succeeded", tc[0], tc[1])
		}
	}
}

func TestHandleWebhookRepliesWithDispatcherResult(t *testing.T) {
	t.Parallel()
	fc := &fakeClient{}
	fd := &fakeDispatcher{reply: "Collection saved: 24 eggs."}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, fc, fd, nil, nil)

	if err := svc.HandleWebhook(context.Background(), textPayload("15550001111", "/collect 24")); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if len(fd.got) != 1 || fd.got[0].Type != models.CommandCollect {
		t.Fatalf("dispatched = %+v", fd.got)
	}
	if len(fc.sent) != 1 || fc.sent[0].To != "15550001111" || fc.sent[0].Body != "Collection saved: 24 eggs." {
		t.Errorf("sent = %+v", fc.sent)
	}
	if len(fc.read) != 1 || fc.read[0] != "wamid.1" {
		t.Errorf("read = %v", fc.read)
	}
}

func TestHandleWebhookRepliesWithErrors(t *testing.T) {
	t.Parallel()
	fc := &fakeClient{}
	fd := &fakeDispatcher{err: &models.InsufficientStockError{Category: models.GenericDuck, Requested: 6, Available: 2}}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, fc, fd, nil, nil)

	if err := svc.HandleWebhook(context.Background(), textPayload("1", "/pack duck 6")); err != nil {
		t.Fatalf("domain errors should be answered, got %v", err)
	}
	if len(fc.sent) != 1 || fc.sent[0].Body != "Not enough generic_duck eggs: need 6, have 2." {
		t.Errorf("sent = %+v", fc.sent)
	}
}

func TestHandleWebhookTranslatesFreeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		translator fakeTranslator
		want       models.CommandType
	}{
		{name: "translated", translator: fakeTranslator{line: "/collect 24"}, want: models.CommandCollect},
		{name: "translator failed", translator: fakeTranslator{err: errors.New("boom")}, want: models.CommandUnknown},
		{name: "translated to nonsense", translator: fakeTranslator{line: "/dance"}, want: models.CommandUnknown},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fd := &fakeDispatcher{reply: "ok"}
			svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, &fakeClient{}, fd, tt.translator, nil)

			if err := svc.HandleWebhook(context.Background(), textPayload("1", "two dozen today")); err != nil {
				t.Fatalf("HandleWebhook: %v", err)
			}
			if len(fd.got) != 1 || fd.got[0].Type != tt.want {
				t.Errorf("dispatched = %+v, want %s", fd.got, tt.want)
			}
		})
	}
}

func TestHandleWebhookReportsSendFailures(t *testing.T) {
	t.Parallel()
	fc := &fakeClient{sendErr: errors.New("network down")}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, fc, &fakeDispatcher{reply: "ok"}, nil, nil)

	if err := svc.HandleWebhook(context.Background(), textPayload("1", "/stock")); err == nil {
		t.Fatal("expected send failure to surface")
	}
	if err := svc.HandleWebhook(context.Background(), textPayload("1", "   ")); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("empty body err = %v, want ErrEmptyMessage", err)
	}
}

func TestErrorReply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{err: commands.ErrUnsupportedCommand, want: "Unknown command."},
		{err: commands.ErrInvalidArguments, want: "I could not read that."},
		{err: &models.InvalidCartonSizeError{Value: 31}, want: "A carton holds 1 to 30 eggs, not 31."},
		{err: &models.InvalidSaleInputError{Field: "price"}, want: "valid price"},
		{err: models.ErrEmptyCollection, want: "at least one egg"},
		{err: models.ErrSpeedModeRequired, want: "speed mode"},
		{err: models.ErrInvalidState, want: "already sold"},
		{err: models.ErrNotFound, want: "could not find"},
		{err: models.Persistence("cartons.write", errors.New("disk full")), want: "Saving failed"},
	}
	for _, tt := range tests {
		if got := ErrorReply(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("ErrorReply(%v) = %q, want it to contain %q", tt.err, got, tt.want)
		}
	}
}
