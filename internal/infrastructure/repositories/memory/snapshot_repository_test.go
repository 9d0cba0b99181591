package memory

import (
	"context"
	"testing"
	"time"

	"streamgrid/internal/core/domain"
)

func testSnapshot(name string) *domain.LayoutSnapshot {
	return &domain.LayoutSnapshot{
		Name:          name,
		TemplateID:    domain.TemplateGrid2x2,
		ContainerSize: domain.Size{Width: 1280, Height: 720},
		Slots: []domain.Slot{
			{StreamID: "a", Frame: domain.NewRect(0, 0, 636, 356), ZIndex: 1},
		},
		SavedAt: time.Now(),
	}
}

func TestSnapshotRepository_SaveGet(t *testing.T) {
	repo := NewMemorySnapshotRepository()
	ctx := context.Background()

	if err := repo.Save(ctx, testSnapshot("evening")); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := repo.Get(ctx, "evening")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "evening" || len(got.Slots) != 1 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestSnapshotRepository_GetMissing(t *testing.T) {
	repo := NewMemorySnapshotRepository()

	_, err := repo.Get(context.Background(), "nope")
	if err != domain.ErrSnapshotNotFound {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestSnapshotRepository_SaveOverwrites(t *testing.T) {
	repo := NewMemorySnapshotRepository()
	ctx := context.Background()

	first := testSnapshot("setup")
	if err := repo.Save(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := testSnapshot("setup")
	second.TemplateID = domain.TemplateStack
	if err := repo.Save(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(ctx, "setup")
	if err != nil {
		t.Fatal(err)
	}
	if got.TemplateID != domain.TemplateStack {
		t.Fatalf("expected overwrite, got template %q", got.TemplateID)
	}
}

func TestSnapshotRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemorySnapshotRepository()
	ctx := context.Background()

	snap := testSnapshot("setup")
	if err := repo.Save(ctx, snap); err != nil {
		t.Fatal(err)
	}

	// Mutating the saved value or a read value must not leak into the store.
	snap.Slots[0].StreamID = "tampered"

	got, err := repo.Get(ctx, "setup")
	if err != nil {
		t.Fatal(err)
	}
	if got.Slots[0].StreamID != "a" {
		t.Fatal("store leaked caller mutation")
	}

	got.Slots[0].StreamID = "tampered-again"
	again, _ := repo.Get(ctx, "setup")
	if again.Slots[0].StreamID != "a" {
		t.Fatal("store leaked read mutation")
	}
}

func TestSnapshotRepository_ListSorted(t *testing.T) {
	repo := NewMemorySnapshotRepository()
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := repo.Save(ctx, testSnapshot(name)); err != nil {
			t.Fatal(err)
		}
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(list))
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, snap := range list {
		if snap.Name != want[i] {
			t.Fatalf("expected sorted order %v, got %q at %d", want, snap.Name, i)
		}
	}
}

func TestSnapshotRepository_Delete(t *testing.T) {
	repo := NewMemorySnapshotRepository()
	ctx := context.Background()

	if err := repo.Save(ctx, testSnapshot("gone")); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "gone"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, "gone"); err != domain.ErrSnapshotNotFound {
		t.Fatalf("expected ErrSnapshotNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, "gone"); err != domain.ErrSnapshotNotFound {
		t.Fatalf("expected ErrSnapshotNotFound for double delete, got %v", err)
	}
}
