package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveFetch(t *testing.T) {
	before := testutil.ToFloat64(fetches.WithLabelValues("subgraph", "error"))
	ObserveFetch("subgraph", errors.New("boom"), 10*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(fetches.WithLabelValues("subgraph", "error")))
}

func TestSetDepletion(t *testing.T) {
	ts := int64(1_700_000_100)
	SetDepletion("new", &ts)
	assert.Equal(t, float64(ts), testutil.ToFloat64(depletion.WithLabelValues("new")))

	SetDepletion("new", nil)
	assert.Equal(t, float64(0), testutil.ToFloat64(depletion.WithLabelValues("new")))
}
