package diagnostics

import (
	"testing"
	"time"
)

func TestCollect(t *testing.T) {
	c := NewCollector()

	first := c.Collect()
	// First sample has no CPU delta yet.
	if first.CPUPercent != 0 {
		t.Errorf("first CPUPercent = %v, want 0", first.CPUPercent)
	}
	if first.MemTotalMB <= 0 {
		t.Errorf("MemTotalMB = %v, want > 0", first.MemTotalMB)
	}
	if first.MemPercent < 0 || first.MemPercent > 100 {
		t.Errorf("MemPercent = %v out of range", first.MemPercent)
	}

	time.Sleep(10 * time.Millisecond)
	second := c.Collect()
	if second.CPUPercent < 0 || second.CPUPercent > 100 {
		t.Errorf("CPUPercent = %v out of range", second.CPUPercent)
	}
	if second.CPUCores <= 0 {
		t.Errorf("CPUCores = %d, want > 0", second.CPUCores)
	}
}

func TestAsMap(t *testing.T) {
	m := SystemMetrics{CPUPercent: 12.5, MemUsedMB: 2048}.AsMap()
	if m["cpu_percent"] != 12.5 {
		t.Errorf("cpu_percent = %v, want 12.5", m["cpu_percent"])
	}
	if m["mem_used_mb"] != 2048 {
		t.Errorf("mem_used_mb = %v, want 2048", m["mem_used_mb"])
	}
	if _, ok := m["mem_percent"]; !ok {
		t.Error("mem_percent missing")
	}
}
