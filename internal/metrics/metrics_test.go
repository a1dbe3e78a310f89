package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordBooking(t *testing.T) {
	before := testutil.ToFloat64(BookingsTotal.WithLabelValues("created"))
	RecordBooking("created")
	assert.Equal(t, before+1, testutil.ToFloat64(BookingsTotal.WithLabelValues("created")))
}

func TestRecordCancellationAndFeedback(t *testing.T) {
	c := testutil.ToFloat64(CancellationsTotal.WithLabelValues("coach"))
	f := testutil.ToFloat64(FeedbacksTotal.WithLabelValues("client"))

	RecordCancellation("coach")
	RecordFeedback("client")

	assert.Equal(t, c+1, testutil.ToFloat64(CancellationsTotal.WithLabelValues("coach")))
	assert.Equal(t, f+1, testutil.ToFloat64(FeedbacksTotal.WithLabelValues("client")))
}

func TestRecordReportRun(t *testing.T) {
	before := testutil.ToFloat64(ReportRunsTotal.WithLabelValues("manual", "skipped"))
	RecordReportRun("manual", "skipped")
	assert.Equal(t, before+1, testutil.ToFloat64(ReportRunsTotal.WithLabelValues("manual", "skipped")))
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/ping", "200"))
	RecordHTTPRequest("GET", "/ping", "200", 0.01)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/ping", "200")))
}
