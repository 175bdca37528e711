package stream

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/AnikaLegal/caseflow/internal/dispatch"
	"github.com/AnikaLegal/caseflow/internal/metrics"
)

type stubHandler struct{ err error }

func (h *stubHandler) Handle(context.Context, *Message) error { return h.err }

func newBatchConsumer(t *testing.T, m *metrics.Metrics, handler TopicHandler) *Consumer {
	t.Helper()
	router := NewRouter(slog.Default())
	router.Register("caseflow.change-records", handler)

	d := dispatch.New(1, 8, slog.Default())
	d.Start()
	t.Cleanup(d.Stop)

	return &Consumer{router: router, dispatcher: d, metrics: m, logger: slog.Default()}
}

func TestProcessBatch_HandlerFailureCountedAndPropagated(t *testing.T) {
	m := metrics.NewForTest()
	c := newBatchConsumer(t, m, &stubHandler{err: errors.New("insert task event: connection refused")})

	err := c.processBatch(context.Background(), []*kgo.Record{
		{Topic: "caseflow.change-records", Key: []byte("task-1"), Value: []byte("{}")},
		{Topic: "caseflow.change-records", Key: []byte("task-2"), Value: []byte("{}")},
	})
	require.Error(t, err)
	assert.Equal(t, 2.0,
		testutil.ToFloat64(m.ProcessingFailures.WithLabelValues("caseflow.change-records")))
}

func TestProcessBatch_SuccessCountsNoFailures(t *testing.T) {
	m := metrics.NewForTest()
	c := newBatchConsumer(t, m, &stubHandler{})

	err := c.processBatch(context.Background(), []*kgo.Record{
		{Topic: "caseflow.change-records", Key: []byte("task-1"), Value: []byte("{}")},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0,
		testutil.ToFloat64(m.ProcessingFailures.WithLabelValues("caseflow.change-records")))
}
