// usage.go accumulates per-model AI usage telemetry. Counters are
// read-modify-write without locking; a lost update between concurrent
// writers is accepted for telemetry.
package datastore

import (
	"time"

	"gorm.io/gorm"

	"github.com/gardenbase/seedvault/internal/errors"
)

// RecordModelUsage increments the counters for one model call. Average
// latency is maintained incrementally so nothing grows with call count.
func (ds *DataStore) RecordModelUsage(modelID string, inputTokens, outputTokens int64, latency time.Duration) error {
	var usage ModelUsage
	err := ds.DB.Where("model_id = ?", modelID).First(&usage).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		usage = ModelUsage{ModelID: modelID}
	case err != nil:
		return classifyDBError(err, "record_model_usage")
	}

	usage.Calls++
	usage.InputTokens += inputTokens
	usage.OutputTokens += outputTokens
	usage.TotalTokens += inputTokens + outputTokens

	sample := float64(latency.Milliseconds())
	usage.AvgLatencyMs = (usage.AvgLatencyMs*float64(usage.Calls-1) + sample) / float64(usage.Calls)
	usage.LastUsedAt = time.Now()

	if err := ds.DB.Save(&usage).Error; err != nil {
		return classifyDBError(err, "record_model_usage")
	}

	getLogger().Debug("model usage recorded",
		"model_id", modelID,
		"calls", usage.Calls,
		"avg_latency_ms", usage.AvgLatencyMs)
	return nil
}

// GetModelUsage returns the accumulated counters for every model that has
// been used.
func (ds *DataStore) GetModelUsage() ([]ModelUsage, error) {
	var usage []ModelUsage
	if err := ds.DB.Order("model_id ASC").Find(&usage).Error; err != nil {
		return nil, classifyDBError(err, "get_model_usage")
	}
	return usage, nil
}

// ResetModelUsage clears all counters. Only an explicit admin action
// calls this.
func (ds *DataStore) ResetModelUsage() error {
	if err := ds.DB.Where("1 = 1").Delete(&ModelUsage{}).Error; err != nil {
		return classifyDBError(err, "reset_model_usage")
	}
	getLogger().Info("model usage statistics reset")
	return nil
}
