package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"customsdesk/internal/model"
)

func testState(n int) SessionState {
	items := make([]model.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, model.Item{ID: int64(i + 1), Designation: "АВП 25.0" + string(rune('1'+i)), Name: "Деталь"})
	}
	return SessionState{
		Items: items,
		Meta:  model.ReportMeta{Supplier: "Acme", CountryOfOrigin: "Китай"},
		Docs:  model.DocSelection{GenTechDesc: true},
	}
}

func TestSessions_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := Sessions{Dir: t.TempDir()}

	id, err := s.Save(ctx, "", "Инвойс от 28.08", testState(2))
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("empty session id")
	}

	got, err := s.Load(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Инвойс от 28.08" {
		t.Fatalf("name = %q", got.Name)
	}
	if len(got.State.Items) != 2 || got.State.Items[0].Designation != "АВП 25.01" {
		t.Fatalf("items = %+v", got.State.Items)
	}
	if got.State.Meta.Supplier != "Acme" || !got.State.Docs.GenTechDesc {
		t.Fatalf("state = %+v", got.State)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("timestamps missing")
	}
}

func TestSessions_SaveWithIDUpdatesInPlace(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := Sessions{Dir: t.TempDir()}

	id, err := s.Save(ctx, "", "v1", testState(1))
	if err != nil {
		t.Fatal(err)
	}
	id2, err := s.Save(ctx, id, "v2", testState(3))
	if err != nil {
		t.Fatal(err)
	}
	if id2 != id {
		t.Fatalf("update created a new session: %s vs %s", id2, id)
	}

	infos, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 {
		t.Fatalf("sessions = %d; want 1", len(infos))
	}
	if infos[0].Name != "v2" || infos[0].ItemCount != 3 {
		t.Fatalf("info = %+v", infos[0])
	}
}

func TestSessions_SaveUnknownIDFails(t *testing.T) {
	t.Parallel()
	s := Sessions{Dir: t.TempDir()}

	_, err := s.Save(context.Background(), "no-such-id", "x", testState(0))
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestSessions_ListOrdersByUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := Sessions{Dir: t.TempDir()}

	idA, err := s.Save(ctx, "", "a", testState(1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(ctx, "", "b", testState(1)); err != nil {
		t.Fatal(err)
	}
	// Touch "a" so it becomes the most recent. The sleep keeps the two
	// updated_at timestamps in different milliseconds.
	time.Sleep(5 * time.Millisecond)
	if _, err := s.Save(ctx, idA, "a", testState(2)); err != nil {
		t.Fatal(err)
	}

	infos, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 || infos[0].Name != "a" {
		t.Fatalf("order = %+v", infos)
	}
}

func TestSessions_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := Sessions{Dir: t.TempDir()}

	id, err := s.Save(ctx, "", "doomed", testState(1))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("load after delete: %v", err)
	}
	if err := s.Delete(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("double delete: %v", err)
	}
}
