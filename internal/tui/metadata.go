package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"customsdesk/internal/model"
)

// The metadata form collects the report-level fields sent with the generate
// request, plus the document selection checkboxes.

var metaLabels = []string{
	"Страна происхождения",
	"Номер контракта",
	"Дата контракта",
	"Поставщик",
	"Номер инвойса",
	"Дата инвойса",
	"Номер накладной",
}

var docLabels = []string{
	"Техническое описание",
	"Письмо о нестраховании",
	"Уведомление по Решению 130",
	"Добавить факсимиле",
}

const (
	metaFieldCount = 7
	docFieldCount  = 4
)

type metaForm struct {
	inputs []textinput.Model
	docs   model.DocSelection
	// focus indexes inputs first, then checkboxes; -1 means unfocused.
	focus int
}

func newMetaForm(meta model.ReportMeta) metaForm {
	f := metaForm{focus: -1}
	f.inputs = make([]textinput.Model, metaFieldCount)
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		f.inputs[i] = in
	}
	f.setMeta(meta)
	return f
}

func (f *metaForm) setMeta(meta model.ReportMeta) {
	vals := []string{
		meta.CountryOfOrigin, meta.ContractNo, meta.ContractDate,
		meta.Supplier, meta.InvoiceNo, meta.InvoiceDate, meta.WaybillNo,
	}
	for i, v := range vals {
		f.inputs[i].SetValue(v)
	}
}

func (f *metaForm) meta() model.ReportMeta {
	return model.ReportMeta{
		CountryOfOrigin: f.inputs[0].Value(),
		ContractNo:      f.inputs[1].Value(),
		ContractDate:    f.inputs[2].Value(),
		Supplier:        f.inputs[3].Value(),
		InvoiceNo:       f.inputs[4].Value(),
		InvoiceDate:     f.inputs[5].Value(),
		WaybillNo:       f.inputs[6].Value(),
	}
}

func (f *metaForm) focused() bool { return f.focus >= 0 }

func (f *metaForm) focusFirst() {
	f.setFocus(0)
}

func (f *metaForm) blur() {
	f.setFocus(-1)
}

func (f *metaForm) setFocus(idx int) {
	f.focus = idx
	for i := range f.inputs {
		if i == idx {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

// cycle moves focus by delta and reports whether focus left the form.
func (f *metaForm) cycle(delta int) bool {
	next := f.focus + delta
	if next < 0 || next >= metaFieldCount+docFieldCount {
		f.blur()
		return true
	}
	f.setFocus(next)
	return false
}

func (f *metaForm) toggleDoc(idx int) {
	switch idx {
	case 0:
		f.docs.GenTechDesc = !f.docs.GenTechDesc
	case 1:
		f.docs.GenNonInsurance = !f.docs.GenNonInsurance
	case 2:
		f.docs.GenDecision130 = !f.docs.GenDecision130
	case 3:
		f.docs.AddFacsimile = !f.docs.AddFacsimile
	}
}

func (f *metaForm) update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok && f.focus >= metaFieldCount {
		if key.String() == " " || key.Type == tea.KeySpace || key.Type == tea.KeyEnter {
			f.toggleDoc(f.focus - metaFieldCount)
		}
		return nil
	}
	if f.focus < 0 || f.focus >= metaFieldCount {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *metaForm) view(width int) string {
	labelW := 0
	for _, l := range metaLabels {
		if w := lipgloss.Width(l); w > labelW {
			labelW = w
		}
	}
	inputW := width - labelW - 3
	if inputW < 12 {
		inputW = 12
	}

	styleLabel := lipgloss.NewStyle().Foreground(colorChromeMutedFg)
	styleFocus := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	var b strings.Builder
	for i, label := range metaLabels {
		st := styleLabel
		if f.focus == i {
			st = styleFocus
		}
		b.WriteString(st.Render(padLine(label, labelW)))
		b.WriteString("  ")
		b.WriteString(truncate(renderInputLine(inputW, f.inputs[i].View()), inputW))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	checks := []bool{f.docs.GenTechDesc, f.docs.GenNonInsurance, f.docs.GenDecision130, f.docs.AddFacsimile}
	for i, label := range docLabels {
		mark := "[ ]"
		if checks[i] {
			mark = "[x]"
		}
		line := mark + " " + label
		if f.focus == metaFieldCount+i {
			line = styleFocus.Render(line)
		}
		b.WriteString(truncate(line, width))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
