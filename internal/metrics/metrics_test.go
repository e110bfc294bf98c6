package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeOK, Outcome(nil))
	assert.Equal(t, OutcomeError, Outcome(errors.New("boom")))
}

func TestObserveLookup(t *testing.T) {
	before := testutil.ToFloat64(SEOLookups.WithLabelValues("serp", OutcomeError))
	ObserveLookup("serp", time.Now(), errors.New("boom"))
	assert.InDelta(t, before+1, testutil.ToFloat64(SEOLookups.WithLabelValues("serp", OutcomeError)), 0.001)
}
