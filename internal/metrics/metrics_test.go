package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRun(t *testing.T) {
	before := testutil.ToFloat64(RunsTotal.WithLabelValues("quiet"))
	RecordRun("quiet")
	assert.Equal(t, before+1, testutil.ToFloat64(RunsTotal.WithLabelValues("quiet")))
}

func TestRecordConditions(t *testing.T) {
	cold := testutil.ToFloat64(ConditionsTriggered.WithLabelValues("cold"))
	wind := testutil.ToFloat64(ConditionsTriggered.WithLabelValues("wind"))
	rain := testutil.ToFloat64(ConditionsTriggered.WithLabelValues("rain"))

	RecordConditions(true, false, true)

	assert.Equal(t, cold+1, testutil.ToFloat64(ConditionsTriggered.WithLabelValues("cold")))
	assert.Equal(t, wind, testutil.ToFloat64(ConditionsTriggered.WithLabelValues("wind")))
	assert.Equal(t, rain+1, testutil.ToFloat64(ConditionsTriggered.WithLabelValues("rain")))
}

func TestRecordDelivery(t *testing.T) {
	sent := testutil.ToFloat64(DeliveriesTotal.WithLabelValues("sent"))
	failed := testutil.ToFloat64(DeliveriesTotal.WithLabelValues("failed"))

	RecordDelivery(nil)
	RecordDelivery(errors.New("550 mailbox unavailable"))
	RecordDelivery(nil)

	assert.Equal(t, sent+2, testutil.ToFloat64(DeliveriesTotal.WithLabelValues("sent")))
	assert.Equal(t, failed+1, testutil.ToFloat64(DeliveriesTotal.WithLabelValues("failed")))
}

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueriesTotal.WithLabelValues("INSERT", "metrics", "error"))
	RecordDBQuery("INSERT", "metrics", 3*time.Millisecond, errors.New("deadlock"))
	assert.Equal(t, before+1, testutil.ToFloat64(DBQueriesTotal.WithLabelValues("INSERT", "metrics", "error")))
}

func TestPush(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	RecordRun("alerted")
	require.NoError(t, Push(context.Background(), srv.URL, "weatheralert"))

	assert.Equal(t, "/metrics/job/weatheralert", gotPath)
	assert.True(t, strings.Contains(gotBody, "weatheralert_runs_total"), "pushed body should carry the run counter")
}

func TestPush_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := Push(context.Background(), srv.URL, "weatheralert")
	assert.Error(t, err)
}
