package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTokenSent(t *testing.T) {
	m := getMetrics()
	before := testutil.ToFloat64(m.tokensSent.WithLabelValues("Pt"))
	beforeBytes := testutil.ToFloat64(m.bytesSent)

	RecordTokenSent("Pt", 52)
	RecordTokenSent("Pt", 52)

	assert.Equal(t, before+2, testutil.ToFloat64(m.tokensSent.WithLabelValues("Pt")))
	assert.Equal(t, beforeBytes+104, testutil.ToFloat64(m.bytesSent))
}

func TestRecordConnectAttempt(t *testing.T) {
	m := getMetrics()
	okBefore := testutil.ToFloat64(m.connectAttempts.WithLabelValues("ok"))
	refusedBefore := testutil.ToFloat64(m.connectAttempts.WithLabelValues("connect"))
	activeBefore := testutil.ToFloat64(m.activeSessions)

	RecordConnectAttempt("ok")
	RecordConnectAttempt("connect")

	assert.Equal(t, okBefore+1, testutil.ToFloat64(m.connectAttempts.WithLabelValues("ok")))
	assert.Equal(t, refusedBefore+1, testutil.ToFloat64(m.connectAttempts.WithLabelValues("connect")))
	assert.Equal(t, activeBefore+1, testutil.ToFloat64(m.activeSessions))

	RecordTransportReleased()
	assert.Equal(t, activeBefore, testutil.ToFloat64(m.activeSessions))
}

func TestRecordFigureRender(t *testing.T) {
	m := getMetrics()
	before := testutil.ToFloat64(m.figureRenders.WithLabelValues("error"))

	RecordFigureRender(10*time.Millisecond, false)

	assert.Equal(t, before+1, testutil.ToFloat64(m.figureRenders.WithLabelValues("error")))
}

func TestMetricsHandler(t *testing.T) {
	RecordWriteError()
	RecordCapturedLine()
	RecordCapturedFrame()

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "plyght_write_errors_total")
	assert.Contains(t, body, "plyght_capture_lines_total")
	assert.Contains(t, body, "plyght_capture_frames_total")
}
