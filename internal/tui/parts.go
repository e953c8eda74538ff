package tui

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"customsdesk/internal/model"
)

// The parts browser lists the whole catalog with an incremental search.
// Matches filter by substring and rank by edit distance to the query, so a
// designation typo still surfaces the intended part near the top.

type partsState struct {
	all      []model.Part
	filtered []int
	search   textinput.Model
	// searching is true while the search input has focus.
	searching bool
	idx, top  int
	loading   bool
	errMsg    string
}

func newPartsState() partsState {
	in := textinput.New()
	in.Prompt = "/"
	in.Placeholder = "поиск по обозначению или наименованию"
	in.CharLimit = 128
	return partsState{search: in}
}

func (p *partsState) setParts(parts []model.Part) {
	p.all = parts
	p.loading = false
	p.errMsg = ""
	p.refilter()
}

// refilter recomputes the visible subset for the current query.
func (p *partsState) refilter() {
	query := strings.ToLower(strings.TrimSpace(p.search.Value()))
	p.filtered = p.filtered[:0]
	if query == "" {
		for i := range p.all {
			p.filtered = append(p.filtered, i)
		}
	} else {
		for i := range p.all {
			hay := strings.ToLower(p.all[i].Designation + " " + p.all[i].Name)
			if strings.Contains(hay, query) {
				p.filtered = append(p.filtered, i)
			}
		}
		sort.SliceStable(p.filtered, func(a, b int) bool {
			da := levenshtein.ComputeDistance(query, strings.ToLower(p.all[p.filtered[a]].Designation))
			db := levenshtein.ComputeDistance(query, strings.ToLower(p.all[p.filtered[b]].Designation))
			return da < db
		})
	}
	if p.idx >= len(p.filtered) {
		p.idx = len(p.filtered) - 1
	}
	if p.idx < 0 {
		p.idx = 0
	}
	p.top = 0
}

func (p *partsState) selected() *model.Part {
	if p.idx < 0 || p.idx >= len(p.filtered) {
		return nil
	}
	return &p.all[p.filtered[p.idx]]
}

// replace swaps in the authoritative record after a save so the listing
// reflects the backend without a refetch.
func (p *partsState) replace(saved model.Part) {
	for i := range p.all {
		if p.all[i].ID == saved.ID {
			p.all[i] = saved
			return
		}
	}
}

func (p *partsState) move(delta, viewRows int) {
	p.idx += delta
	if p.idx < 0 {
		p.idx = 0
	}
	if p.idx >= len(p.filtered) {
		p.idx = len(p.filtered) - 1
	}
	if p.idx < 0 {
		p.idx = 0
	}
	if p.idx < p.top {
		p.top = p.idx
	}
	if viewRows > 0 && p.idx >= p.top+viewRows {
		p.top = p.idx - viewRows + 1
	}
}

func (p *partsState) updateSearch(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	p.refilter()
	return cmd
}

func (p *partsState) view(width, height int) string {
	styleHeader := lipgloss.NewStyle().Bold(true).Foreground(colorChromeMutedFg)
	styleSel := lipgloss.NewStyle().
		Foreground(colorSelectedFg).
		Background(colorSelectedBg)

	var b strings.Builder
	b.WriteString(truncate(p.search.View(), width))
	b.WriteByte('\n')

	desigW := 18
	tnvedW := 16
	nameW := width - desigW - tnvedW - 2
	if nameW < 10 {
		nameW = 10
	}
	b.WriteString(styleHeader.Render(
		padLine("Обозначение", desigW) + " " + padLine("Наименование", nameW) + " " + padLine("ТН ВЭД", tnvedW)))
	b.WriteByte('\n')

	viewRows := height - 3
	if viewRows < 1 {
		viewRows = 1
	}

	switch {
	case p.loading:
		b.WriteString(styleMuted().Render("Загрузка каталога..."))
	case p.errMsg != "":
		b.WriteString(lipgloss.NewStyle().Foreground(colorErrorFg).Render(truncate(p.errMsg, width)))
	case len(p.filtered) == 0:
		b.WriteString(styleMuted().Render("Ничего не найдено"))
	}

	end := p.top + viewRows
	if end > len(p.filtered) {
		end = len(p.filtered)
	}
	for i := p.top; i < end; i++ {
		part := p.all[p.filtered[i]]
		tnved := ""
		if part.TnvedCode != nil {
			tnved = *part.TnvedCode
		}
		line := padLine(truncate(part.Designation, desigW), desigW) + " " +
			padLine(truncate(part.Name, nameW), nameW) + " " +
			padLine(truncate(tnved, tnvedW), tnvedW)
		if i == p.idx {
			line = styleSel.Render(line)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
