package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, reply string, status int) (Client, *messageRequest) {
	t.Helper()
	got := new(messageRequest)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "key" {
			t.Errorf("missing api key header")
		}
		_ = json.NewDecoder(r.Body).Decode(got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		body, _ := json.Marshal(map[string]any{
			"content": []map[string]string{{"type": "text", "text": reply}},
		})
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return NewClient("key", WithBaseURL(srv.URL)), got
}

func TestTranslateToCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		reply   string
		want    string
		wantErr bool
	}{
		{name: "plain", reply: "/collect 24", want: "/collect 24"},
		{name: "fenced", reply: "`/pack 12`", want: "/pack 12"},
		{name: "extra lines", reply: "/stock\nThat shows your stock.", want: "/stock"},
		{name: "unknown", reply: "UNKNOWN", wantErr: true},
		{name: "prose", reply: "Sure, here you go", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, req := newTestClient(t, tt.reply, http.StatusOK)

			got, err := client.TranslateToCommand(context.Background(), "we got two dozen today")
			if tt.wantErr {
				if !errors.Is(err, ErrNoCommand) {
					t.Fatalf("err = %v, want ErrNoCommand", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("TranslateToCommand: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if len(req.Messages) != 1 || req.Messages[0].Content != "we got two dozen today" || req.Model != model {
				t.Errorf("request = %+v", req)
			}
		})
	}
}

func TestTranslateToCommandAPIError(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, "", http.StatusTooManyRequests)

	if _, err := client.TranslateToCommand(context.Background(), "hi"); err == nil || errors.Is(err, ErrNoCommand) {
		t.Fatalf("err = %v, want api error", err)
	}
}
