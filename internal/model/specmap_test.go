package model

import (
	"encoding/json"
	"testing"
)

func keysOf(m SpecMap) []string {
	out := make([]string, 0, len(m))
	for _, e := range m {
		out = append(out, e.Key)
	}
	return out
}

func TestSpecMap_SetPreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	var m SpecMap
	m = m.Set("Напряжение", "12В")
	m = m.Set("Ток", "2А")
	m = m.Set("Напряжение", "24В") // in-place update, no reorder

	want := []string{"Напряжение", "Ток"}
	got := keysOf(m)
	if len(got) != len(want) {
		t.Fatalf("keys = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys = %v; want %v", got, want)
		}
	}
	if v, _ := m.Get("Напряжение"); v != "24В" {
		t.Fatalf("value = %q; want 24В", v)
	}
}

func TestSpecMap_RenameMovesToEnd(t *testing.T) {
	t.Parallel()

	var m SpecMap
	m = m.Set("a", "1")
	m = m.Set("b", "2")
	m = m.Set("c", "3")

	m = m.Rename("a", "d")
	got := keysOf(m)
	want := []string{"b", "c", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys after rename = %v; want %v", got, want)
		}
	}
	if v, _ := m.Get("d"); v != "1" {
		t.Fatalf("renamed value = %q; want 1", v)
	}
}

func TestSpecMap_RenameCollisionLastWriteWins(t *testing.T) {
	t.Parallel()

	var m SpecMap
	m = m.Set("a", "1")
	m = m.Set("b", "2")

	// Renaming a onto b overwrites b's value and drops a.
	m = m.Rename("a", "b")
	if m.Len() != 1 {
		t.Fatalf("len = %d; want 1", m.Len())
	}
	if v, _ := m.Get("b"); v != "1" {
		t.Fatalf("b = %q; want 1", v)
	}
}

func TestSpecMap_PlaceholderKeySkipsCollisions(t *testing.T) {
	t.Parallel()

	var m SpecMap
	if got := m.NextPlaceholderKey(); got != "Параметр 1" {
		t.Fatalf("placeholder = %q", got)
	}
	m = m.Set("Параметр 1", "")
	m = m.Set("Параметр 2", "x")
	if got := m.NextPlaceholderKey(); got != "Параметр 3" {
		t.Fatalf("placeholder = %q", got)
	}
	m = m.Remove("Параметр 1")
	// len+1 == 2 collides with the surviving entry, so the counter bumps.
	if got := m.NextPlaceholderKey(); got != "Параметр 3" {
		t.Fatalf("placeholder after remove = %q", got)
	}
}

func TestSpecMap_JSONRoundTripKeepsOrder(t *testing.T) {
	t.Parallel()

	in := []byte(`{"Мощность":100,"Корпус":"DIP-8","Вывод":null}`)
	var m SpecMap
	if err := json.Unmarshal(in, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := keysOf(m)
	want := []string{"Мощность", "Корпус", "Вывод"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys = %v; want %v", got, want)
		}
	}
	if v, _ := m.Get("Мощность"); v != "100" {
		t.Fatalf("numeric value = %q; want 100", v)
	}

	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"Мощность":"100","Корпус":"DIP-8","Вывод":""}` {
		t.Fatalf("marshal = %s", out)
	}
}

func TestSpecMap_EmptyMarshalsAsNull(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal(SpecMap{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "null" {
		t.Fatalf("empty specs = %s; want null", out)
	}
}
