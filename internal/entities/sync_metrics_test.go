package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncMetrics_RecordBatch(t *testing.T) {
	var m SyncMetrics

	m.RecordBatch(120, 50)
	m.RecordBatch(80, 30)

	assert.Equal(t, 80, m.TotalItemsProcessed)
	assert.Equal(t, int64(200), m.TotalDurationMs)
	assert.Equal(t, 2, m.BatchCount)
	assert.Equal(t, []int64{120, 80}, m.BatchDurationsMs)
}

func TestSyncMetrics_SampleListIsBounded(t *testing.T) {
	var m SyncMetrics

	for i := 0; i < MaxBatchSamples+20; i++ {
		m.RecordBatch(10, 1)
	}

	assert.Len(t, m.BatchDurationsMs, MaxBatchSamples)
	assert.Equal(t, MaxBatchSamples+20, m.BatchCount)
	// Totals are preserved even though the oldest samples were dropped.
	assert.Equal(t, int64(10*(MaxBatchSamples+20)), m.TotalDurationMs)
}

func TestSyncMetrics_AverageBatchMs(t *testing.T) {
	var m SyncMetrics
	assert.Equal(t, int64(0), m.AverageBatchMs())

	m.RecordBatch(100, 10)
	m.RecordBatch(200, 10)
	assert.Equal(t, int64(150), m.AverageBatchMs())
}

func TestSyncMetrics_SamplesReconstruction(t *testing.T) {
	t.Run("granular samples survive round trip", func(t *testing.T) {
		var m SyncMetrics
		m.RecordBatch(30, 1)
		m.RecordBatch(70, 1)

		assert.Equal(t, []int64{30, 70}, m.Samples())
	})

	t.Run("lost samples redistribute the total evenly", func(t *testing.T) {
		// Only the aggregates survived persistence; the per-batch list is
		// gone. The even split is a documented, accepted approximation.
		m := SyncMetrics{
			TotalItemsProcessed: 100,
			TotalDurationMs:     100,
			BatchCount:          3,
		}

		samples := m.Samples()
		assert.Len(t, samples, 3)

		var sum int64
		for _, s := range samples {
			sum += s
		}
		assert.Equal(t, m.TotalDurationMs, sum, "reconstruction must preserve the total duration")
		assert.Equal(t, int64(33), samples[0])
		assert.Equal(t, int64(34), samples[2])
	})

	t.Run("zero batches yields no samples", func(t *testing.T) {
		var m SyncMetrics
		assert.Nil(t, m.Samples())
	})
}

func TestSyncMetrics_SlowBatches(t *testing.T) {
	var m SyncMetrics
	m.RecordBatch(50, 1)
	m.RecordBatch(500, 1)
	m.RecordBatch(2000, 1)

	assert.Equal(t, 2, m.SlowBatches(100))
	assert.Equal(t, 0, m.SlowBatches(5000))
}
