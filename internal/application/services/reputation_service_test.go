package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astren/core/internal/domain/entities"
	"github.com/astren/core/internal/infrastructure/logger"
)

func TestRecordImpactAppendsHistoryAndLevels(t *testing.T) {
	store := newTestStore(t)
	svc := NewReputationService(store, logger.NewNop())

	require.NoError(t, svc.RecordImpact(1, 20, "task completed"))
	require.NoError(t, svc.RecordImpact(2, 20, "task completed"))
	require.NoError(t, svc.RecordImpact(3, 20, "task completed"))

	rep := svc.Current()
	assert.Equal(t, 60, rep.TotalPoints)
	assert.Equal(t, entities.ReputationSilver, rep.Level)

	history := svc.History()
	require.Len(t, history, 3)
	// Newest first.
	assert.Equal(t, int64(3), history[0].TaskID)
}

func TestRecordImpactNeverGoesNegative(t *testing.T) {
	store := newTestStore(t)
	svc := NewReputationService(store, logger.NewNop())

	require.NoError(t, svc.RecordImpact(1, 4, "task completed"))
	require.NoError(t, svc.RecordImpact(1, -20, "completion reversed"))

	rep := svc.Current()
	assert.Equal(t, 0, rep.TotalPoints)
	assert.Equal(t, entities.ReputationBronze, rep.Level)
}

func TestRecordImpactIgnoresZero(t *testing.T) {
	store := newTestStore(t)
	svc := NewReputationService(store, logger.NewNop())

	require.NoError(t, svc.RecordImpact(1, 0, "noop"))
	assert.Empty(t, svc.History())
}
