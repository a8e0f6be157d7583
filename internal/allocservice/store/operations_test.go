//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/stackhaus/internal/allocservice/models"
)

type fakeMetrics struct {
	reconciliations int
	transitions     []string
}

func (f *fakeMetrics) ObserveReconciliation(duration time.Duration, err error) {
	f.reconciliations++
}

func (f *fakeMetrics) RecordAssignmentTransition(state string) {
	f.transitions = append(f.transitions, state)
}

func createTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(&Config{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: ":memory:"},
	})
	require.NoError(t, err)
	return st
}

func TestNextStackIDIsMonotonic(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()

	first, err := st.NextStackID(ctx)
	require.NoError(t, err)
	second, err := st.NextStackID(ctx)
	require.NoError(t, err)
	third, err := st.NextStackID(ctx)
	require.NoError(t, err)

	require.Equal(t, first+1, second)
	require.Equal(t, second+1, third)
}

func TestRegisterStackSourceUnionsLocations(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.RegisterStackSource(ctx, 1, []string{"node-a", "node-b"}))
	require.NoError(t, st.RegisterStackSource(ctx, 1, []string{"node-b", "node-c"}))

	locations, err := st.QueryRegisteredSource(ctx, 1)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"node-a", "node-b", "node-c"}, locations)
}

func TestDeRegisterStackSourceSubtractsLocations(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.RegisterStackSource(ctx, 2, []string{"node-a", "node-b", "node-c"}))
	require.NoError(t, st.DeRegisterStackSource(ctx, 2, []string{"node-b"}))

	locations, err := st.QueryRegisteredSource(ctx, 2)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"node-a", "node-c"}, locations)
}

func TestQueryRegisteredSourceNotFound(t *testing.T) {
	st := createTestStore(t)
	_, err := st.QueryRegisteredSource(context.Background(), 999)
	require.Error(t, err)
}

func TestPreLoadInsertsWhenBelowTarget(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()

	assignments, err := st.PreLoad(ctx, 3, 3)
	require.NoError(t, err)
	require.Len(t, assignments, 3)
	for _, a := range assignments {
		require.Equal(t, models.PreloadInit, a.State)
	}
}

func TestPreLoadIsNoopWhenAtTarget(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()

	first, err := st.PreLoad(ctx, 4, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := st.PreLoad(ctx, 4, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	require.ElementsMatch(t, idsOf(first), idsOf(second))
}

func TestPreLoadDeletesExcessWhenAboveTarget(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()

	_, err := st.PreLoad(ctx, 5, 4)
	require.NoError(t, err)

	reduced, err := st.PreLoad(ctx, 5, 1)
	require.NoError(t, err)
	require.Len(t, reduced, 1)

	located, err := st.LocateStack(ctx, 5)
	require.NoError(t, err)
	require.Len(t, located, 1)
}

func TestPreLoadClampsToMaxReplicas(t *testing.T) {
	st := createTestStore(t)
	assignments, err := st.PreLoad(context.Background(), 6, 100)
	require.NoError(t, err)
	require.Len(t, assignments, MaxPreloadReplicas)
}

func TestUnPreLoadMarksDeleting(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()

	_, err := st.PreLoad(ctx, 7, 2)
	require.NoError(t, err)
	require.NoError(t, st.UnPreLoad(ctx, 7))

	located, err := st.LocateStack(ctx, 7)
	require.NoError(t, err)
	require.Len(t, located, 2)
	for _, a := range located {
		require.Equal(t, models.PreloadDeleting, a.State)
	}

	// A subsequent PreLoad ignores Deleting entries and allocates fresh ones.
	fresh, err := st.PreLoad(ctx, 7, 1)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	require.Equal(t, models.PreloadInit, fresh[0].State)
}

func TestUpdateAssignmentStateTransitionsLifecycle(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()

	assignments, err := st.PreLoad(ctx, 8, 1)
	require.NoError(t, err)
	require.Len(t, assignments, 1)

	require.NoError(t, st.UpdateAssignmentState(ctx, assignments[0].ID, models.PreloadLoading))
	require.NoError(t, st.UpdateAssignmentState(ctx, assignments[0].ID, models.PreloadLoaded))

	located, err := st.LocateStack(ctx, 8)
	require.NoError(t, err)
	require.Len(t, located, 1)
	require.Equal(t, models.PreloadLoaded, located[0].State)
}

func TestUpdateAssignmentStateUnknownIDFails(t *testing.T) {
	st := createTestStore(t)
	err := st.UpdateAssignmentState(context.Background(), "does-not-exist", models.PreloadLoading)
	require.Error(t, err)
}

func TestMetricsRecordReconciliationAndTransitions(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()
	fm := &fakeMetrics{}
	st.SetMetrics(fm)

	assignments, err := st.PreLoad(ctx, 11, 1)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.NoError(t, st.UpdateAssignmentState(ctx, assignments[0].ID, models.PreloadLoading))

	require.Equal(t, 1, fm.reconciliations)
	require.Equal(t, []string{"Loading"}, fm.transitions)
}

func idsOf(assignments []models.PreloadAssignment) []string {
	ids := make([]string, len(assignments))
	for i, a := range assignments {
		ids[i] = a.ID
	}
	return ids
}
