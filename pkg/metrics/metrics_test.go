package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveDocument(t *testing.T) {
	m := New()
	m.ObserveDocument(Document{
		Method:       "td_bank",
		Confidence:   "high",
		DocumentType: "text_based",
		Transactions: 12,
		Dropped:      3,
		Duration:     150 * time.Millisecond,
	})
	m.ObserveDocument(Document{
		Method:       "unidentified",
		Confidence:   "low",
		DocumentType: "scanned_image",
		Failed:       true,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.documents.WithLabelValues("td_bank", "high", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documents.WithLabelValues("unidentified", "low", "true")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.transactions.WithLabelValues("td_bank")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.dropped.WithLabelValues("td_bank")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveDocument(Document{Method: "ocr"}) })
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveDocument(Document{Method: "ocr", Confidence: "medium", DocumentType: "scanned_image", Transactions: 2})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "statement_extractor_transactions_total")
}
