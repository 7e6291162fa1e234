package slack_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/codefreeze/pkg/domain/types"
	slackinfra "github.com/m-mizutani/codefreeze/pkg/infra/slack"
)

func TestWebhookClient_Notify(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier, err := slackinfra.NewWebhookClient(server.URL, "#releases")
	gt.NoError(t, err)

	gt.NoError(t, notifier.Notify(context.Background(), "Feature flag report"))
	gt.Value(t, received["text"]).Equal("Feature flag report")
	gt.Value(t, received["channel"]).Equal("#releases")
}

func TestWebhookClient_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	notifier, err := slackinfra.NewWebhookClient(server.URL, "")
	gt.NoError(t, err)

	err = notifier.Notify(context.Background(), "hello")
	gt.True(t, errors.Is(err, types.ErrRemote))
}

func TestNewWebhookClient_RequiresURL(t *testing.T) {
	_, err := slackinfra.NewWebhookClient("", "")
	gt.True(t, errors.Is(err, types.ErrConfiguration))
}
