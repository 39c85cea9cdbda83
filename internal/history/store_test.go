package history

import (
	"context"
	"testing"
	"time"

	"github.com/tinytelemetry/wingo-live/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore(\"\") failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordSnapshot_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	err := store.RecordSnapshot(ctx, model.Snapshot{
		CommittedAt:  base,
		Session:      "run-a",
		Seq:          3,
		UseModel:     true,
		Method:       "xgboost",
		Size:         "Big",
		Color:        "Green",
		Numbers:      []int{6, 7, 8},
		LatestIssue:  "20261001-0042",
		LatestNumber: model.IntNumber(4),
	})
	if err != nil {
		t.Fatalf("RecordSnapshot: %v", err)
	}
	err = store.RecordSnapshot(ctx, model.Snapshot{
		CommittedAt: base.Add(5 * time.Second),
		Seq:         4,
		Method:      "heuristic",
		Size:        "Small",
		Color:       "Red",
	})
	if err != nil {
		t.Fatalf("RecordSnapshot: %v", err)
	}

	snaps, err := store.RecentSnapshots(ctx, 10)
	if err != nil {
		t.Fatalf("RecentSnapshots: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(snaps))
	}

	newest, oldest := snaps[0], snaps[1]
	if newest.Seq != 4 || newest.Numbers != nil || newest.LatestNumber.Valid {
		t.Errorf("newest = %+v, want seq 4 with no numbers and no latest draw", newest)
	}
	if oldest.Seq != 3 || oldest.Session != "run-a" || !oldest.UseModel || oldest.Method != "xgboost" {
		t.Errorf("oldest = %+v", oldest)
	}
	if len(oldest.Numbers) != 3 || oldest.Numbers[2] != 8 {
		t.Errorf("oldest numbers = %v, want [6 7 8]", oldest.Numbers)
	}
	if !oldest.LatestNumber.Valid || oldest.LatestNumber.Value != 4 || oldest.LatestIssue != "20261001-0042" {
		t.Errorf("oldest latest draw = %+v / %q", oldest.LatestNumber, oldest.LatestIssue)
	}
	if !oldest.CommittedAt.Equal(base) {
		t.Errorf("committed at = %v, want %v", oldest.CommittedAt, base)
	}
}

func TestRecentSnapshots_Limit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		snap := model.Snapshot{CommittedAt: base.Add(time.Duration(i) * time.Second), Seq: uint64(i + 1), Method: "heuristic", Size: "Big", Color: "Red"}
		if err := store.RecordSnapshot(ctx, snap); err != nil {
			t.Fatalf("RecordSnapshot: %v", err)
		}
	}

	snaps, err := store.RecentSnapshots(ctx, 2)
	if err != nil {
		t.Fatalf("RecentSnapshots: %v", err)
	}
	if len(snaps) != 2 || snaps[0].Seq != 5 || snaps[1].Seq != 4 {
		t.Fatalf("snapshots = %+v, want seq 5 then 4", snaps)
	}
}

func TestDeleteBefore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	old := model.Snapshot{CommittedAt: now.Add(-48 * time.Hour), Seq: 1, Method: "heuristic", Size: "Big", Color: "Red"}
	fresh := model.Snapshot{CommittedAt: now, Seq: 2, Method: "heuristic", Size: "Small", Color: "Green"}
	for _, s := range []model.Snapshot{old, fresh} {
		if err := store.RecordSnapshot(ctx, s); err != nil {
			t.Fatalf("RecordSnapshot: %v", err)
		}
	}

	n, err := store.DeleteBefore(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if n != 1 {
		t.Fatalf("deleted = %d, want 1", n)
	}

	snaps, err := store.RecentSnapshots(ctx, 10)
	if err != nil {
		t.Fatalf("RecentSnapshots: %v", err)
	}
	if len(snaps) != 1 || snaps[0].Seq != 2 {
		t.Fatalf("remaining = %+v, want only seq 2", snaps)
	}
}

func TestRetentionCleaner_StopIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	cleaner := NewRetentionCleaner(store, 1)
	if cleaner == nil {
		t.Fatal("expected non-nil retention cleaner")
	}

	cleaner.Stop()
	cleaner.Stop()
}

func TestRetentionCleaner_DisabledIsNil(t *testing.T) {
	store := newTestStore(t)
	cleaner := NewRetentionCleaner(store, 0)
	if cleaner != nil {
		t.Fatal("expected nil cleaner when retention is disabled")
	}
	cleaner.Stop()
}

func TestRetentionCleaner_DeletesOnStart(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	for i, at := range []time.Time{now.Add(-72 * time.Hour), now} {
		snap := model.Snapshot{CommittedAt: at, Seq: uint64(i + 1), Method: "heuristic", Size: "Big"}
		if err := store.RecordSnapshot(ctx, snap); err != nil {
			t.Fatalf("RecordSnapshot: %v", err)
		}
	}

	cleaner := NewRetentionCleaner(store, 1)
	defer cleaner.Stop()

	snaps, err := store.RecentSnapshots(ctx, 10)
	if err != nil {
		t.Fatalf("RecentSnapshots: %v", err)
	}
	if len(snaps) != 1 || snaps[0].Seq != 2 {
		t.Fatalf("remaining = %+v, want only seq 2", snaps)
	}
}
