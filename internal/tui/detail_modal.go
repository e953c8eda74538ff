package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"customsdesk/internal/editor"
	"customsdesk/internal/model"
)

// The detail modal shows one catalog part. It wraps the editor state machine:
// read-only view, edit mode on a draft, save with the draft retained on
// failure.

type detailAction int

const (
	detailNone detailAction = iota
	detailClose
	detailSave
)

var detailScalarLabels = []string{
	"Материал",
	"Габариты",
	"Вес",
	"Ед. веса",
	"Описание",
	"Производитель",
	"Состояние",
	"Код ТН ВЭД",
	"Описание ТН ВЭД",
}

const detailScalarCount = 9

type detailModal struct {
	ed editor.Editor

	inputs   []textinput.Model
	specKeys []textinput.Model
	specVals []textinput.Model
	focus    int
	formErr  string
}

func (d *detailModal) open(p model.Part) {
	d.ed.Open(p)
	d.formErr = ""
}

func (d *detailModal) close() {
	d.ed.Close()
	d.inputs = nil
	d.specKeys = nil
	d.specVals = nil
	d.focus = 0
	d.formErr = ""
}

func (d *detailModal) startEdit() {
	d.ed.StartEdit()
	if d.ed.State() != editor.Editing {
		return
	}
	d.buildInputs()
	d.focusStop(0)
}

// buildInputs rebuilds the edit widgets from the current draft. Called on
// edit start and after any spec add/remove.
func (d *detailModal) buildInputs() {
	draft := d.ed.Draft()
	vals := []string{
		draft.Material, draft.Dimensions, formatFloat(draft.Weight),
		draft.WeightUnit, draft.Description, draft.Manufacturer,
		draft.Condition, draft.TnvedCode, draft.TnvedDescription,
	}
	d.inputs = make([]textinput.Model, detailScalarCount)
	for i := range d.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 1024
		in.SetValue(vals[i])
		d.inputs[i] = in
	}

	specs := draft.Specs
	d.specKeys = make([]textinput.Model, specs.Len())
	d.specVals = make([]textinput.Model, specs.Len())
	for i, entry := range specs {
		k := textinput.New()
		k.Prompt = ""
		k.CharLimit = 256
		k.SetValue(entry.Key)
		d.specKeys[i] = k

		v := textinput.New()
		v.Prompt = ""
		v.CharLimit = 512
		v.SetValue(entry.Value)
		d.specVals[i] = v
	}
}

func (d *detailModal) stopCount() int {
	return detailScalarCount + 2*len(d.specKeys)
}

func (d *detailModal) focusStop(i int) {
	n := d.stopCount()
	if n == 0 {
		return
	}
	if i < 0 {
		i = n - 1
	}
	if i >= n {
		i = 0
	}

	d.commitSpecEdit()
	d.focus = i
	for j := range d.inputs {
		d.inputs[j].Blur()
	}
	for j := range d.specKeys {
		d.specKeys[j].Blur()
		d.specVals[j].Blur()
	}
	if in := d.focusedInput(); in != nil {
		in.Focus()
		in.CursorEnd()
	}
}

func (d *detailModal) focusedInput() *textinput.Model {
	if d.focus < detailScalarCount {
		return &d.inputs[d.focus]
	}
	i := d.focus - detailScalarCount
	row, valSide := i/2, i%2 == 1
	if row >= len(d.specKeys) {
		return nil
	}
	if valSide {
		return &d.specVals[row]
	}
	return &d.specKeys[row]
}

// commitSpecEdit pushes the focused spec input's text into the draft before
// focus moves elsewhere. Renames go through the editor so collisions keep
// last-write-wins semantics.
func (d *detailModal) commitSpecEdit() {
	if d.focus < detailScalarCount {
		return
	}
	i := d.focus - detailScalarCount
	row, valSide := i/2, i%2 == 1
	if row >= len(d.specKeys) {
		return
	}
	specs := d.ed.Draft().Specs
	if row >= specs.Len() {
		return
	}
	oldKey := specs[row].Key
	if valSide {
		d.ed.SetSpecValue(oldKey, d.specVals[row].Value())
		return
	}
	newKey := strings.TrimSpace(d.specKeys[row].Value())
	if newKey != "" && newKey != oldKey {
		d.ed.RenameSpec(oldKey, newKey)
		// A rename moves the entry to the end; rebuild so widget order
		// matches the draft again.
		d.buildInputs()
		d.focus = d.stopCount() - 2
		if in := d.focusedInput(); in != nil {
			in.Focus()
		}
	}
}

// syncScalars copies the scalar inputs into the draft. Returns false when a
// numeric field does not parse.
func (d *detailModal) syncScalars() bool {
	draft := d.ed.Draft()
	w := strings.TrimSpace(d.inputs[2].Value())
	if w != "" {
		parsed, err := strconv.ParseFloat(w, 64)
		if err != nil || parsed < 0 {
			d.formErr = "Вес должен быть неотрицательным числом"
			return false
		}
		draft.Weight = parsed
	} else {
		draft.Weight = 0
	}
	draft.Material = d.inputs[0].Value()
	draft.Dimensions = d.inputs[1].Value()
	draft.WeightUnit = d.inputs[3].Value()
	draft.Description = d.inputs[4].Value()
	draft.Manufacturer = d.inputs[5].Value()
	draft.Condition = d.inputs[6].Value()
	draft.TnvedCode = strings.TrimSpace(d.inputs[7].Value())
	draft.TnvedDescription = d.inputs[8].Value()
	d.formErr = ""
	return true
}

// update handles keys while the modal is open. A detailSave action hands the
// patch and part ID to the caller, which owns the save request.
func (d *detailModal) update(msg tea.Msg) (detailAction, model.PartPatch, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return detailNone, model.PartPatch{}, nil
	}

	switch d.ed.State() {
	case editor.Viewing:
		switch key.String() {
		case "esc", "q":
			return detailClose, model.PartPatch{}, nil
		case "e":
			d.startEdit()
		}
		return detailNone, model.PartPatch{}, nil

	case editor.Saving:
		// Inputs are frozen while the request is in flight.
		return detailNone, model.PartPatch{}, nil

	case editor.Editing:
		switch key.String() {
		case "esc":
			d.ed.Cancel()
			d.formErr = ""
			return detailNone, model.PartPatch{}, nil
		case "tab", "down":
			d.focusStop(d.focus + 1)
			return detailNone, model.PartPatch{}, nil
		case "shift+tab", "up":
			d.focusStop(d.focus - 1)
			return detailNone, model.PartPatch{}, nil
		case "ctrl+n":
			d.commitSpecEdit()
			if _, ok := d.ed.AddSpec(); ok {
				d.buildInputs()
				d.focusStop(d.stopCount() - 2)
			}
			return detailNone, model.PartPatch{}, nil
		case "ctrl+d":
			if d.focus >= detailScalarCount {
				row := (d.focus - detailScalarCount) / 2
				specs := d.ed.Draft().Specs
				if row < specs.Len() {
					d.ed.RemoveSpec(specs[row].Key)
					d.buildInputs()
					d.focusStop(detailScalarCount - 1)
				}
			}
			return detailNone, model.PartPatch{}, nil
		case "ctrl+s":
			d.commitSpecEdit()
			if !d.syncScalars() {
				return detailNone, model.PartPatch{}, nil
			}
			patch, ok := d.ed.BeginSave()
			if !ok {
				return detailNone, model.PartPatch{}, nil
			}
			return detailSave, patch, nil
		}
		var cmd tea.Cmd
		if in := d.focusedInput(); in != nil {
			*in, cmd = in.Update(msg)
		}
		return detailNone, model.PartPatch{}, cmd
	}

	// Closed.
	return detailNone, model.PartPatch{}, nil
}

func (d *detailModal) saveSucceeded(saved model.Part) {
	d.ed.SaveSucceeded(saved)
}

func (d *detailModal) saveFailed(msg string) {
	d.ed.SaveFailed(msg)
}

func (d *detailModal) view(width int) string {
	p := d.ed.Part()
	title := p.Designation
	if p.Name != "" {
		title += " · " + p.Name
	}

	switch d.ed.State() {
	case editor.Viewing:
		return renderModalBox(width, title, d.viewReadOnly(width))
	case editor.Editing, editor.Saving:
		return renderModalBox(width, title, d.viewEditing(width))
	}
	return ""
}

func (d *detailModal) viewReadOnly(width int) string {
	p := d.ed.Part()
	bodyW := modalBodyWidth(width)
	styleLabel := lipgloss.NewStyle().Foreground(colorChromeMutedFg)

	row := func(label, value string) string {
		if strings.TrimSpace(value) == "" {
			value = "—"
		}
		return styleLabel.Render(padLine(label, 18)) + " " + truncate(value, bodyW-19)
	}

	weight := ""
	if p.Weight > 0 {
		weight = formatFloat(p.Weight)
		if p.WeightUnit != "" {
			weight += " " + p.WeightUnit
		}
	}
	tnved := ""
	if p.TnvedCode != nil {
		tnved = *p.TnvedCode
	}

	lines := []string{
		row("Материал", p.Material),
		row("Габариты", p.Dimensions),
		row("Вес", weight),
		row("Производитель", p.Manufacturer),
		row("Состояние", p.Condition),
		row("Код ТН ВЭД", tnved),
	}

	if p.ShowsSpecs() {
		lines = append(lines, "", styleLabel.Render("Характеристики"))
		if p.Specs.Len() == 0 {
			lines = append(lines, styleMuted().Render("  нет данных"))
		}
		for _, entry := range p.Specs {
			lines = append(lines, truncate("  "+entry.Key+": "+entry.Value, bodyW))
		}
	}

	if strings.TrimSpace(p.Description) != "" {
		lines = append(lines, "", renderMarkdown(p.Description, bodyW))
	}

	lines = append(lines, "", styleMuted().Render("e: редактировать   esc: закрыть"))
	return strings.Join(lines, "\n")
}

func (d *detailModal) viewEditing(width int) string {
	bodyW := modalBodyWidth(width)
	styleLabel := lipgloss.NewStyle().Foreground(colorChromeMutedFg)
	styleFocus := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	inputW := bodyW - 20
	if inputW < 12 {
		inputW = 12
	}

	var lines []string
	for i, label := range detailScalarLabels {
		st := styleLabel
		if d.focus == i {
			st = styleFocus
		}
		lines = append(lines, st.Render(padLine(label, 18))+" "+truncate(renderInputLine(inputW, d.inputs[i].View()), inputW))
	}

	lines = append(lines, "", styleLabel.Render("Характеристики (ctrl+n добавить, ctrl+d удалить)"))
	for i := range d.specKeys {
		kw := 24
		if kw > bodyW/2 {
			kw = bodyW / 2
		}
		keyStop := detailScalarCount + 2*i
		keyView := truncate(renderInputLine(kw, d.specKeys[i].View()), kw)
		valView := truncate(renderInputLine(inputW-kw, d.specVals[i].View()), inputW-kw)
		marker := "  "
		if d.focus == keyStop || d.focus == keyStop+1 {
			marker = styleFocus.Render("▸ ")
		}
		lines = append(lines, marker+keyView+" "+valView)
	}

	if d.formErr != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(colorErrorFg).Render(truncate(d.formErr, bodyW)))
	} else if msg := d.ed.ErrMsg(); msg != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(colorErrorFg).Render(truncate("Не удалось сохранить: "+msg, bodyW)))
	}

	help := "tab: поле   ctrl+s: сохранить   esc: отменить"
	if d.ed.State() == editor.Saving {
		help = "Сохранение..."
	}
	lines = append(lines, "", styleMuted().Render(help))
	return strings.Join(lines, "\n")
}
