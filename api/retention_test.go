package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/refund-engine/api/mocks"
	"github.com/warp/refund-engine/refund"
	"github.com/warp/refund-engine/store/sqlite"
)

func TestRetention_RunOncePurgesOldRuns(t *testing.T) {
	// GIVEN: Runs created 40, 20 and 1 days ago
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	assessments, err := refund.EvaluateBatch(ctx, refund.DefaultEvaluator(), refund.SampleTrades()[:2], 1)
	require.NoError(t, err)
	for id, age := range map[string]int{"old": 40, "recent": 20, "fresh": 1} {
		run := sqlite.NewRun(id, refund.StandardPolicyID, now.AddDate(0, 0, -age), assessments)
		require.NoError(t, store.SaveRun(ctx, run))
	}

	// WHEN: Retention of 30 days runs
	rs := NewRetentionScheduler(store, "@daily", 30, zerolog.Nop())
	n, err := rs.RunOnce(ctx, now)

	// THEN: Only the 40-day-old run is gone
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	ids := []string{}
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{"recent", "fresh"}, ids)
}

func TestRetention_Cutoff(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	store.EXPECT().PurgeRunsBefore(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cutoff time.Time) (int64, error) {
			assert.True(t, cutoff.Equal(time.Date(2024, 3, 3, 8, 0, 0, 0, time.UTC)), "cutoff %s", cutoff)
			return 5, nil
		})

	rs := NewRetentionScheduler(store, "@daily", 7, zerolog.Nop())
	n, err := rs.RunOnce(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestRetention_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().PurgeRunsBefore(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("locked"))

	rs := NewRetentionScheduler(store, "@daily", 7, zerolog.Nop())
	_, err := rs.RunOnce(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestRetention_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl) // no calls expected

	rs := NewRetentionScheduler(store, "@daily", 0, zerolog.Nop())
	require.NoError(t, rs.Start())

	n, err := rs.RunOnce(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
	rs.Stop()
}

func TestRetention_StartStop(t *testing.T) {
	rs := NewRetentionScheduler(nil, "not a schedule", 30, zerolog.Nop())
	assert.Error(t, rs.Start())

	rs = NewRetentionScheduler(nil, "@daily", 30, zerolog.Nop())
	require.NoError(t, rs.Start())
	rs.Stop()
}
