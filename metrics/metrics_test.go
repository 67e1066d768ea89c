package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestVMCountersIncrement(t *testing.T) {
	v := NoOp()
	v.Instructions.Add(3)
	v.GCRuns.Inc()

	m := &dto.Metric{}
	if err := v.Instructions.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if got := m.GetCounter().GetValue(); got != 3 {
		t.Errorf("Instructions = %v, want 3", got)
	}
}
