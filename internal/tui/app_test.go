package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"customsdesk/internal/api"
	"customsdesk/internal/model"
	"customsdesk/internal/store"
)

func testModel(t *testing.T, items []model.Item) Model {
	t.Helper()
	cfg := store.DefaultConfig()
	client := api.NewClient("http://localhost:0", nil)
	m := New(cfg, client, store.Sessions{}, nil, &store.SessionState{Items: items})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func sampleItems(n int) []model.Item {
	items := make([]model.Item, n)
	for i := range items {
		rec := model.NewItem(int64(i + 1))
		rec.Designation = "АБВ-" + strings.Repeat("0", 3) + string(rune('0'+i%10))
		rec.Name = "Клапан"
		items[i] = rec
	}
	return items
}

func TestDeleteDeclinedKeepsCollection(t *testing.T) {
	t.Parallel()
	m := testModel(t, sampleItems(3))

	m = press(m, "d")
	if m.modal != modalConfirmDelete {
		t.Fatalf("modal = %v, want confirm delete", m.modal)
	}
	m = press(m, "esc")
	if m.modal != modalNone {
		t.Fatalf("modal = %v after decline, want none", m.modal)
	}
	if len(m.items) != 3 {
		t.Fatalf("len(items) = %d after declined delete, want 3", len(m.items))
	}

	// Enter on the focused cancel button declines too.
	m = press(m, "d", "enter")
	if len(m.items) != 3 {
		t.Fatalf("len(items) = %d, default confirm focus must be cancel", len(m.items))
	}
}

func TestDeleteConfirmedRemovesRow(t *testing.T) {
	t.Parallel()
	m := testModel(t, sampleItems(3))

	m = press(m, "j", "d", "y")
	if len(m.items) != 2 {
		t.Fatalf("len(items) = %d after confirmed delete, want 2", len(m.items))
	}
	if m.items[0].ID != 1 || m.items[1].ID != 3 {
		t.Fatalf("wrong row removed: ids %d, %d", m.items[0].ID, m.items[1].ID)
	}
}

func TestClearConfirmedEmptiesAndDropsSession(t *testing.T) {
	t.Parallel()
	m := testModel(t, sampleItems(2))
	m.sessionID = "abc"

	m = press(m, "C", "y")
	if len(m.items) != 0 {
		t.Fatalf("len(items) = %d after clear, want 0", len(m.items))
	}
	if m.sessionID != "" {
		t.Fatalf("sessionID = %q after clear, want empty", m.sessionID)
	}
}

func TestUploadErrorLeavesStateUntouched(t *testing.T) {
	t.Parallel()
	m := testModel(t, sampleItems(2))
	before := m.items

	next, _ := m.Update(uploadDoneMsg{err: errors.New("backend down")})
	m = next.(Model)

	if m.modal != modalError {
		t.Fatalf("modal = %v, want error modal", m.modal)
	}
	if len(m.items) != 2 {
		t.Fatalf("len(items) = %d, upload failure must not change the collection", len(m.items))
	}
	for i := range before {
		if m.items[i].ID != before[i].ID {
			t.Fatalf("row %d changed on failed upload", i)
		}
	}
}

func TestUploadSuccessMergesAndBackfillsMeta(t *testing.T) {
	t.Parallel()
	m := testModel(t, sampleItems(1))

	batch := []model.Item{{Name: "Фланец"}, {Name: "Прокладка", Manufacturer: "ООО Ромашка"}}
	resp := &model.UploadResponse{
		Items:    batch,
		Metadata: &model.BatchMeta{Supplier: "Shanghai Valve Co", InvoiceNumber: "INV-77", InvoiceDate: "2026-01-15"},
	}
	next, _ := m.Update(uploadDoneMsg{resp: resp})
	m = next.(Model)

	if len(m.items) != 3 {
		t.Fatalf("len(items) = %d after merge, want 3", len(m.items))
	}
	if m.items[1].Manufacturer != "Shanghai Valve Co" {
		t.Fatalf("manufacturer = %q, want batch supplier backfilled", m.items[1].Manufacturer)
	}
	if m.items[2].Manufacturer != "ООО Ромашка" {
		t.Fatalf("manufacturer = %q, parsed value must win over supplier", m.items[2].Manufacturer)
	}
	meta := m.form.meta()
	if meta.ContractNo != "INV-77" || meta.ContractDate != "2026-01-15" {
		t.Fatalf("meta not backfilled: %+v", meta)
	}
	if m.g.vl.Count() != 3 {
		t.Fatalf("window count = %d, want 3", m.g.vl.Count())
	}
}

func TestUploadSuccessKeepsEditedMeta(t *testing.T) {
	t.Parallel()
	m := testModel(t, nil)
	m.form.inputs[1].SetValue("К-2026/5") // contract number filled by hand

	resp := &model.UploadResponse{
		Items:    []model.Item{{Name: "Вал"}},
		Metadata: &model.BatchMeta{InvoiceNumber: "INV-1"},
	}
	next, _ := m.Update(uploadDoneMsg{resp: resp})
	m = next.(Model)

	if got := m.form.meta().ContractNo; got != "К-2026/5" {
		t.Fatalf("ContractNo = %q, manual edit must survive upload", got)
	}
}

func TestInlineEditCommit(t *testing.T) {
	t.Parallel()
	m := testModel(t, sampleItems(2))

	m = press(m, "enter")
	if !m.g.editing {
		t.Fatal("enter must open the inline editor")
	}
	m.g.input.SetValue("НОВ-001")
	m = press(m, "enter")
	if m.g.editing {
		t.Fatal("commit must close the inline editor")
	}
	if m.items[0].Designation != "НОВ-001" {
		t.Fatalf("designation = %q after commit, want НОВ-001", m.items[0].Designation)
	}
}

func TestInlineEditCancelRestores(t *testing.T) {
	t.Parallel()
	m := testModel(t, sampleItems(1))
	orig := m.items[0].Designation

	m = press(m, "enter")
	m.g.input.SetValue("мусор")
	m = press(m, "esc")
	if m.items[0].Designation != orig {
		t.Fatalf("designation = %q after cancel, want %q", m.items[0].Designation, orig)
	}
}

func TestInvalidNumericEditKeepsRecord(t *testing.T) {
	t.Parallel()
	m := testModel(t, sampleItems(1))
	m.items[0].Weight = 2.5

	m = press(m, "l", "l", "l", "l") // move to the weight column
	if gridColumns[m.g.col].title != "Вес, кг" {
		t.Fatalf("cursor on %q, want weight column", gridColumns[m.g.col].title)
	}
	m = press(m, "enter")
	m.g.input.SetValue("тяжёлый")
	m = press(m, "enter")
	if m.items[0].Weight != 2.5 {
		t.Fatalf("weight = %v after invalid edit, want 2.5", m.items[0].Weight)
	}
}

func TestAddRowPrepends(t *testing.T) {
	t.Parallel()
	m := testModel(t, sampleItems(2))
	m = press(m, "j", "a")
	if len(m.items) != 3 {
		t.Fatalf("len(items) = %d after add, want 3", len(m.items))
	}
	if m.items[1].ID != 1 || m.items[2].ID != 2 {
		t.Fatal("existing rows must shift down unchanged")
	}
	if m.items[0].ID == 0 {
		t.Fatal("new row must get a fresh id")
	}
	if m.g.row != 0 {
		t.Fatalf("cursor row = %d after add, want 0", m.g.row)
	}
}

func TestPartSaveFailureKeepsModalEditing(t *testing.T) {
	t.Parallel()
	m := testModel(t, nil)
	code := "8481"
	m.detail.open(model.Part{ID: 7, Designation: "АБВ-1", TnvedCode: &code})
	m.modal = modalDetail
	m = press(m, "e")
	m.detail.inputs[0].SetValue("сталь")
	m = press(m, "ctrl+s")

	next, _ := m.Update(partSavedMsg{err: errors.New("409 conflict")})
	m = next.(Model)

	if m.modal != modalDetail {
		t.Fatalf("modal = %v, save failure must keep the detail open", m.modal)
	}
	if m.detail.ed.Draft().Material != "сталь" {
		t.Fatal("draft must be retained after a failed save")
	}
}

func TestGridViewLineBudget(t *testing.T) {
	t.Parallel()
	m := testModel(t, sampleItems(500))

	out := m.g.view(m.items)
	lines := strings.Split(out, "\n")
	want := m.g.viewportLines() + 1 // header
	if len(lines) != want {
		t.Fatalf("grid rendered %d lines, want %d", len(lines), want)
	}
}

func TestUploadControlDisabledWhileInFlight(t *testing.T) {
	t.Parallel()
	m := testModel(t, nil)
	m.isUploading = true

	m = press(m, "u")
	if m.modal != modalNone {
		t.Fatal("upload modal must not open while an upload is in flight")
	}

	// A modal left open when the upload started must not submit a second one.
	m.upload = newUploadModal("gemini", "")
	m.upload.files = []string{"invoice.pdf"}
	m.modal = modalUpload
	next, cmd := m.Update(key("enter"))
	m = next.(Model)
	if cmd != nil {
		t.Fatal("second concurrent upload request issued")
	}
	if !m.isUploading {
		t.Fatal("in-flight flag must stay set")
	}
}

func TestResizeRemeasuresRowHeights(t *testing.T) {
	t.Parallel()
	items := sampleItems(3)
	items[0].Name = strings.Repeat("н", 20)
	m := testModel(t, items)

	_ = m.g.view(m.items)
	if got := m.g.vl.Height(0); got != 1 {
		t.Fatalf("height at width 120 = %d, want 1", got)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 40})
	m = next.(Model)
	_ = m.g.view(m.items)
	want := m.g.rowHeight(m.items[0])
	if want < 2 {
		t.Fatalf("narrow width must wrap the name, rowHeight = %d", want)
	}
	if got := m.g.vl.Height(0); got != want {
		t.Fatalf("height after resize = %d, want remeasured %d", got, want)
	}
}

func TestLookupOnlyForCatalogRows(t *testing.T) {
	t.Parallel()
	items := sampleItems(2)
	items[1].FoundInDB = true
	m := testModel(t, items)

	_, cmd := m.Update(key("o"))
	if cmd != nil {
		t.Fatal("lookup must not fire for rows the parser did not match")
	}

	m = press(m, "j")
	if _, cmd = m.Update(key("o")); cmd == nil {
		t.Fatal("lookup must fire for a catalog row")
	}
}

func TestLookupFailureIsSilent(t *testing.T) {
	t.Parallel()
	m := testModel(t, sampleItems(1))

	next, _ := m.Update(partLookupMsg{designation: "АБВ-0000", err: errors.New("boom")})
	m = next.(Model)
	if m.modal != modalNone {
		t.Fatalf("modal = %v, lookup failure must not interrupt", m.modal)
	}
	if m.status != "" {
		t.Fatalf("status = %q, lookup failure must be log-only", m.status)
	}
}

func TestGenerateIgnoredOnEmptyCollection(t *testing.T) {
	t.Parallel()
	m := testModel(t, nil)
	next, cmd := m.Update(key("g"))
	m = next.(Model)
	if m.isGenerating || cmd != nil {
		t.Fatal("generate must be a no-op with no rows")
	}
}
