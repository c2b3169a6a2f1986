package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_Counters(t *testing.T) {
	m := New("ccn")

	m.NonceIssued()
	m.NonceIssued()
	m.NonceResynced()
	m.Dispute()

	body := scrape(t, m)
	assert.Contains(t, body, "ccn_nonces_issued_total 2")
	assert.Contains(t, body, "ccn_nonce_resyncs_total 1")
	assert.Contains(t, body, "ccn_channel_disputes_total 1")
}

func TestMetrics_ChannelTransitionTracksOpenGauge(t *testing.T) {
	m := New("ccn")

	m.ChannelTransition("UNFUNDED", "OPEN")
	m.ChannelTransition("UNFUNDED", "OPEN")
	assert.Contains(t, scrape(t, m), "ccn_channels_open 2")

	m.ChannelTransition("OPEN", "PENDING_SETTLEMENT")
	body := scrape(t, m)
	assert.Contains(t, body, "ccn_channels_open 1")
	assert.Contains(t, body, `ccn_channel_transitions_total{state="OPEN"} 2`)
	assert.Contains(t, body, `ccn_channel_transitions_total{state="PENDING_SETTLEMENT"} 1`)
}

func TestMetrics_LedgerTxResult(t *testing.T) {
	m := New("ccn")

	m.LedgerTx("FUND_CHANNEL", nil)
	m.LedgerTx("FUND_CHANNEL", errors.New("boom"))

	body := scrape(t, m)
	assert.Contains(t, body, `ccn_ledger_transactions_total{kind="FUND_CHANNEL",result="ok"} 1`)
	assert.Contains(t, body, `ccn_ledger_transactions_total{kind="FUND_CHANNEL",result="error"} 1`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.NonceIssued()
		m.NonceResynced()
		m.ChannelTransition("UNFUNDED", "OPEN")
		m.LedgerTx("INIT_ACCOUNT", nil)
		m.Dispute()
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
