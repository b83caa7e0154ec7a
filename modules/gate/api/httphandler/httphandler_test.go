package httphandler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gaze-network/ticket-integrity/common"
	"github.com/gaze-network/ticket-integrity/core/ledger/memory"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/modules/gate/credential"
	"github.com/gaze-network/ticket-integrity/modules/gate/usecase"
	"github.com/gaze-network/ticket-integrity/modules/gate/verifier"
	"github.com/gaze-network/ticket-integrity/pkg/clock"
	"github.com/gaze-network/ticket-integrity/pkg/errorhandler"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	l := memory.New()
	l.PutEvent(types.Event{ID: 3, Organizer: "0xOrganizer"})
	l.PutTicket(types.Ticket{TokenID: 7, EventID: 3, OriginalOwner: "0xHolder", CurrentOwner: "0xHolder"})

	codec, err := credential.New([]byte(strings.Repeat("k", credential.KeySize)))
	require.NoError(t, err)
	clk := clock.NewFake(time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC))
	uc := usecase.New(l, l, nil, codec, usecase.Deployment{ContractID: "0xTicketContract", ChainID: 1}, clk)

	app := fiber.New(fiber.Config{ErrorHandler: errorhandler.NewHTTPErrorHandler()})
	require.NoError(t, New(uc).Mount(app))
	return app
}

func post[T any](t *testing.T, app *fiber.App, path string, body any) (int, common.HttpResponse[T]) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out common.HttpResponse[T]
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestGateFlow(t *testing.T) {
	app := newTestApp(t)

	status, issued := post[issueCredentialResult](t, app, "/v1/gate/credentials", map[string]any{
		"tokenId": 7,
		"holder":  "0xHolder",
	})
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, issued.Result)
	assert.True(t, strings.HasPrefix(issued.Result.Credential, credential.Prefix))
	assert.Equal(t, issued.Result.IssuedAt+int64(credential.ValidityWindow/time.Second), issued.Result.ExpiresAt)

	status, scanned := post[verdictResult](t, app, "/v1/gate/scan", map[string]any{
		"credential": issued.Result.Credential,
		"scanner":    "0xOrganizer",
		"eventId":    3,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, verifier.StatusSuccess, scanned.Result.Status)
	assert.Equal(t, verifier.CheckPassed, scanned.Result.Checks.Usage)

	confirm := map[string]any{
		"credential": issued.Result.Credential,
		"scanner":    "0xOrganizer",
		"eventId":    3,
	}
	status, entry := post[confirmEntryResult](t, app, "/v1/gate/confirm", confirm)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, entry.Result.Admitted)
	assert.NotEmpty(t, entry.Result.RequestID)

	status, entry = post[confirmEntryResult](t, app, "/v1/gate/confirm", confirm)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, entry.Result.Admitted)
	assert.Equal(t, verifier.ReasonAlreadyUsed, entry.Result.Verdict.Reason)
}

func TestGateValidation(t *testing.T) {
	app := newTestApp(t)

	status, _ := post[verdictResult](t, app, "/v1/gate/scan", map[string]any{"scanner": "0xOrganizer"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = post[issueCredentialResult](t, app, "/v1/gate/credentials", map[string]any{"tokenId": 404, "holder": "0xHolder"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = post[issueCredentialResult](t, app, "/v1/gate/credentials", map[string]any{"tokenId": 7, "holder": "0xSomeoneElse"})
	assert.Equal(t, http.StatusBadRequest, status)
}
