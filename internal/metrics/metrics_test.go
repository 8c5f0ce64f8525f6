package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Generations.WithLabelValues("question", "ok").Inc()
	m.ValidationRejections.WithLabelValues("rights_order").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generations.WithLabelValues("question", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ValidationRejections.WithLabelValues("rights_order")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 2)

	assert.Panics(t, func() { New(reg) }, "registering twice must fail")
}

func TestNopIsUnregistered(t *testing.T) {
	a, b := Nop(), Nop()
	a.HTTPRequests.WithLabelValues("/x", "GET", "200").Inc()
	assert.Zero(t, testutil.ToFloat64(b.HTTPRequests.WithLabelValues("/x", "GET", "200")))
}
