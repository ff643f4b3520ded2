package observability

import (
	"testing"
	"time"

	"github.com/danmuck/courseselect/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog/log"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("GET", "/state", 200, 12*time.Millisecond)
	RecordOutbound("Y")
	RecordNotice("fatal")
	RecordConnect(true)
	RecordConnect(false)

	log.Debug().Msg("observability/metrics: registration idempotent and recording paths executed")
}

func TestRecordInboundFoldsUnknownCommands(t *testing.T) {
	testlog.Start(t)
	before := testutil.ToFloat64(inboundMessages.WithLabelValues("unknown"))
	RecordInbound("FAKE", false)
	RecordInbound("BOGUS", false)
	RecordInbound("HI", true)
	if got := testutil.ToFloat64(inboundMessages.WithLabelValues("unknown")); got != before+2 {
		t.Fatalf("unexpected unknown count: %v", got)
	}
	if got := testutil.ToFloat64(inboundMessages.WithLabelValues("FAKE")); got != 0 {
		t.Fatalf("unknown command leaked into labels: %v", got)
	}
}
