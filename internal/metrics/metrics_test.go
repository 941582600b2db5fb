package metrics

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersOnInjectedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SnapshotHits.Inc()
	m.ProductWrites.WithLabelValues("create").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProductWrites.WithLabelValues("create")))

	// a second set on another registry must not collide
	assert.NotPanics(t, func() { New(prometheus.NewRegistry()) })
}

func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.EmbeddingFailures.Add(3)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, reg))
	assert.Contains(t, buf.String(), "inventory_embedding_failures_total 3")
}
