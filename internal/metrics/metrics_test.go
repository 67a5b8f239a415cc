package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.DocumentProcessed("ready")
	m.DocumentProcessed("ready")
	m.DocumentProcessed("failed")
	m.OCRFallback()
	m.ChunksStored(7)
	m.Question("retrieval")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.documents.WithLabelValues("ready")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documents.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ocrFallbacks))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.chunksStored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.questions.WithLabelValues("retrieval")))
}

func TestHistograms(t *testing.T) {
	m := New()
	m.ObserveStage("chunking", time.Now())
	m.ObserveGeneration("answer", time.Now().Add(-time.Second))

	assert.Equal(t, 1, testutil.CollectAndCount(m.stageDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(m.generation))
}

func TestHandler(t *testing.T) {
	m := New()
	m.Question("shortcut")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `docqa_questions_total{route="shortcut"} 1`))
}

func TestNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.DocumentProcessed("ready")
		m.OCRFallback()
		m.ChunksStored(1)
		m.Question("none")
		m.ObserveStage("x", time.Now())
		m.ObserveGeneration("x", time.Now())
		_ = m.Handler()
		_ = m.Registry()
	})
}
