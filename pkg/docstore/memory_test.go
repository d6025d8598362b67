package docstore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemory_SetGetResolvesServerTimestamp(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	coll := NewMemory(WithClock(func() time.Time { return now })).Collection("events")
	ctx := context.Background()

	err := coll.Set(ctx, "a", Fields{"title": "Launch", "createdAt": ServerTimestamp})
	if err != nil {
		t.Fatalf("set: %v", err)
	}

	snap, err := coll.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !snap.Exists {
		t.Fatalf("expected document to exist")
	}
	if snap.Data["title"] != "Launch" {
		t.Fatalf("expected title Launch, got %v", snap.Data["title"])
	}
	if got, ok := snap.Data["createdAt"].(time.Time); !ok || !got.Equal(now) {
		t.Fatalf("expected createdAt %v, got %v", now, snap.Data["createdAt"])
	}
}

func TestMemory_GetMissing(t *testing.T) {
	t.Parallel()

	snap, err := NewMemory().Collection("events").Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if snap.Exists || snap.Data != nil {
		t.Fatalf("expected missing snapshot, got %+v", snap)
	}
	if snap.ID != "nope" {
		t.Fatalf("expected id nope, got %q", snap.ID)
	}
}

func TestMemory_UpdateMergesFields(t *testing.T) {
	t.Parallel()

	coll := NewMemory().Collection("events")
	ctx := context.Background()

	if err := coll.Set(ctx, "a", Fields{"title": "Launch", "description": nil}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := coll.Update(ctx, "a", Fields{"description": "rooftop", "updatedAt": ServerTimestamp}); err != nil {
		t.Fatalf("update: %v", err)
	}

	snap, _ := coll.Get(ctx, "a")
	if snap.Data["title"] != "Launch" {
		t.Fatalf("title changed: %v", snap.Data["title"])
	}
	if snap.Data["description"] != "rooftop" {
		t.Fatalf("expected description rooftop, got %v", snap.Data["description"])
	}
	if _, ok := snap.Data["updatedAt"].(time.Time); !ok {
		t.Fatalf("expected updatedAt resolved to time, got %T", snap.Data["updatedAt"])
	}

	if err := coll.Update(ctx, "missing", Fields{"title": "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemory_ReturnedDataIsACopy(t *testing.T) {
	t.Parallel()

	coll := NewMemory().Collection("events")
	ctx := context.Background()
	_ = coll.Set(ctx, "a", Fields{"title": "Launch"})

	snap, _ := coll.Get(ctx, "a")
	snap.Data["title"] = "mutated"

	again, _ := coll.Get(ctx, "a")
	if again.Data["title"] != "Launch" {
		t.Fatalf("stored document was mutated through a snapshot")
	}
}

func TestMemory_Delete(t *testing.T) {
	t.Parallel()

	coll := NewMemory().Collection("events")
	ctx := context.Background()
	_ = coll.Set(ctx, "a", Fields{"title": "Launch"})

	if err := coll.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	snap, _ := coll.Get(ctx, "a")
	if snap.Exists {
		t.Fatalf("expected document to be gone")
	}
}

func TestMemory_OrderedScan(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	nov := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	oct := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)

	t.Run("orders by time field", func(t *testing.T) {
		coll := NewMemory().Collection("events")
		_ = coll.Set(ctx, "a", Fields{"date": nov})
		_ = coll.Set(ctx, "b", Fields{"date": oct})

		snaps, err := coll.OrderedScan(ctx, "date")
		if err != nil {
			t.Fatalf("ordered scan: %v", err)
		}
		if len(snaps) != 2 || snaps[0].ID != "b" || snaps[1].ID != "a" {
			t.Fatalf("unexpected order: %v, %v", snaps[0].ID, snaps[1].ID)
		}
	})

	t.Run("unavailable when a value is not a time", func(t *testing.T) {
		coll := NewMemory().Collection("events")
		_ = coll.Set(ctx, "a", Fields{"date": nov})
		_ = coll.Set(ctx, "b", Fields{"date": "2025-10-01T00:00:00Z"})

		if _, err := coll.OrderedScan(ctx, "date"); !errors.Is(err, ErrOrderingUnavailable) {
			t.Fatalf("expected ErrOrderingUnavailable, got %v", err)
		}

		snaps, err := coll.Scan(ctx)
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		if len(snaps) != 2 {
			t.Fatalf("expected 2 documents, got %d", len(snaps))
		}
	})
}

func TestMemory_CollectionsAreIsolated(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()
	_ = store.Collection("events").Set(ctx, "a", Fields{"title": "x"})

	snaps, err := store.Collection("other").Scan(ctx)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(snaps) != 0 {
		t.Fatalf("expected empty collection, got %d", len(snaps))
	}
}

func TestMemory_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewMemory().Collection("events").Get(ctx, "a"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStampExpr(t *testing.T) {
	t.Parallel()

	expr, args := stampExpr("$3::jsonb", 4, []string{"createdAt", "updatedAt"})
	want := "jsonb_set(jsonb_set($3::jsonb, ARRAY[$4::text], to_jsonb(now())), ARRAY[$5::text], to_jsonb(now()))"
	if expr != want {
		t.Fatalf("unexpected expr:\n got %s\nwant %s", expr, want)
	}
	if len(args) != 2 || args[0] != "createdAt" || args[1] != "updatedAt" {
		t.Fatalf("unexpected args: %v", args)
	}

	expr, args = stampExpr("$3::jsonb", 4, nil)
	if expr != "$3::jsonb" || len(args) != 0 {
		t.Fatalf("expected base expression untouched, got %s %v", expr, args)
	}
}

func TestSplitSentinels(t *testing.T) {
	t.Parallel()

	plain, stamps := splitSentinels(Fields{"title": "x", "updatedAt": ServerTimestamp, "createdAt": ServerTimestamp})
	if len(plain) != 1 || plain["title"] != "x" {
		t.Fatalf("unexpected plain fields: %v", plain)
	}
	if len(stamps) != 2 || stamps[0] != "createdAt" || stamps[1] != "updatedAt" {
		t.Fatalf("unexpected stamps: %v", stamps)
	}
}
