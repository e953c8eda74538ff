package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"customsdesk/internal/model"
	"customsdesk/internal/review"
	"customsdesk/internal/vlist"
)

// The review grid renders only the rows intersecting the viewport (plus
// overscan) out of a collection that can hold thousands of entries. Row
// heights vary with content wrapping, so offsets are tracked by the windowing
// engine and refined as rows get measured during render.

type gridColumn struct {
	title string
	field review.Field
	width int
	// flex columns absorb the leftover terminal width.
	flex bool
}

var gridColumns = []gridColumn{
	{title: "Обозначение", field: review.FieldDesignation, width: 16},
	{title: "Наименование", field: review.FieldName, width: 18, flex: true},
	{title: "Кол-во", field: review.FieldQuantity, width: 7},
	{title: "Материал", field: review.FieldMaterial, width: 14},
	{title: "Вес, кг", field: review.FieldWeight, width: 8},
	{title: "Габариты", field: review.FieldDimensions, width: 13},
	{title: "Производитель", field: review.FieldManufacturer, width: 15},
	{title: "Цена", field: review.FieldPrice, width: 9},
	{title: "Сумма", field: review.FieldAmount, width: 10},
}

// maxRowLines caps how tall a single row can grow from wrapping.
const maxRowLines = 3

type grid struct {
	vl        *vlist.List
	scrollTop int
	row, col  int
	editing   bool
	input     textinput.Model

	width, height int
	colWidths     []int
}

func newGrid(count, estimate, overscan int) grid {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 512
	return grid{
		vl:    vlist.New(count, func(int) int { return estimate }, overscan),
		input: in,
	}
}

// setSize distributes the terminal width over the columns. Every column gets
// its minimum; flex columns split whatever remains. One column of separator
// space sits between neighbours.
func (g *grid) setSize(width, height int) {
	widthChanged := width != g.width
	g.width = width
	g.height = height

	g.colWidths = make([]int, len(gridColumns))
	used := len(gridColumns) - 1 // separators
	flexN := 0
	for i, c := range gridColumns {
		g.colWidths[i] = c.width
		used += c.width
		if c.flex {
			flexN++
		}
	}
	extra := width - used
	if extra > 0 && flexN > 0 {
		per := extra / flexN
		for i, c := range gridColumns {
			if c.flex {
				g.colWidths[i] += per
			}
		}
	}

	// Row heights depend on column widths; drop the measurements so the next
	// render remeasures against the new wrapping.
	if widthChanged {
		g.vl.Reset(g.vl.Count())
	}
}

func (g *grid) viewportLines() int {
	// One line of header above the windowed rows.
	h := g.height - 1
	if h < 1 {
		h = 1
	}
	return h
}

// rowHeight computes the wrapped height of one record under the current
// column widths.
func (g *grid) rowHeight(rec model.Item) int {
	h := 1
	for i := range gridColumns {
		n := len(wrapPlain(cellValue(rec, gridColumns[i].field), g.colWidths[i]))
		if n > h {
			h = n
		}
	}
	if h > maxRowLines {
		h = maxRowLines
	}
	return h
}

func cellValue(rec model.Item, f review.Field) string {
	switch f {
	case review.FieldDesignation:
		return rec.Designation
	case review.FieldName:
		return rec.Name
	case review.FieldQuantity:
		return rec.Quantity.String()
	case review.FieldMaterial:
		return rec.Material
	case review.FieldWeight:
		return formatFloat(rec.Weight)
	case review.FieldDimensions:
		return rec.Dimensions
	case review.FieldManufacturer:
		return rec.Manufacturer
	case review.FieldDescription:
		return rec.Description
	case review.FieldCondition:
		return rec.Condition
	case review.FieldPrice:
		return formatFloat(rec.Price)
	case review.FieldAmount:
		return formatFloat(rec.Amount)
	}
	return ""
}

func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// startEdit opens the inline editor on the current cell.
func (g *grid) startEdit(rec model.Item) {
	g.editing = true
	g.input.SetValue(cellValue(rec, gridColumns[g.col].field))
	g.input.CursorEnd()
	g.input.Focus()
}

// commitEdit closes the editor and reports the edit target and new value.
func (g *grid) commitEdit() (row int, field review.Field, value string) {
	g.editing = false
	g.input.Blur()
	return g.row, gridColumns[g.col].field, g.input.Value()
}

func (g *grid) cancelEdit() {
	g.editing = false
	g.input.Blur()
}

// moveCursor clamps the cell cursor and keeps the row in view.
func (g *grid) moveCursor(dRow, dCol, count int) {
	g.row += dRow
	if g.row < 0 {
		g.row = 0
	}
	if g.row >= count {
		g.row = count - 1
	}
	if g.row < 0 {
		g.row = 0
	}
	g.col += dCol
	if g.col < 0 {
		g.col = 0
	}
	if g.col >= len(gridColumns) {
		g.col = len(gridColumns) - 1
	}
	g.ensureVisible()
}

// ensureVisible scrolls just enough to bring the cursor row fully into the
// viewport.
func (g *grid) ensureVisible() {
	if g.vl.Count() == 0 {
		g.scrollTop = 0
		return
	}
	top := g.vl.Offset(g.row)
	bottom := top + g.vl.Height(g.row)
	viewH := g.viewportLines()
	if top < g.scrollTop {
		g.scrollTop = top
	} else if bottom > g.scrollTop+viewH {
		g.scrollTop = bottom - viewH
	}
	g.scrollTop = g.vl.ClampScroll(g.scrollTop, viewH)
}

func (g *grid) pageMove(dir int, count int) {
	g.moveCursor(dir*g.viewportLines(), 0, count)
}

// view renders the header and the visible window of rows.
func (g *grid) view(items []model.Item) string {
	var b strings.Builder
	b.WriteString(g.renderHeader())

	viewH := g.viewportLines()
	g.scrollTop = g.vl.ClampScroll(g.scrollTop, viewH)

	// Measure the window first so offsets are exact before slicing lines out
	// of it. Measuring above the viewport shifts scrollTop with the content.
	start, end := g.vl.Visible(g.scrollTop, viewH)
	for i := start; i < end; i++ {
		if !g.vl.Measured(i) {
			delta := g.vl.Measure(i, g.rowHeight(items[i]))
			g.scrollTop = g.vl.ScrollAdjust(g.scrollTop, i, delta)
		}
	}
	start, end = g.vl.Visible(g.scrollTop, viewH)

	var lines []string
	for i := start; i < end; i++ {
		lines = append(lines, g.renderRow(items[i], i)...)
	}

	// Trim to the slice of lines the scroll position exposes.
	skip := 0
	if start < g.vl.Count() {
		skip = g.scrollTop - g.vl.Offset(start)
	}
	if skip < 0 {
		skip = 0
	}
	if skip > len(lines) {
		skip = len(lines)
	}
	lines = lines[skip:]
	if len(lines) > viewH {
		lines = lines[:viewH]
	}

	for _, ln := range lines {
		b.WriteByte('\n')
		b.WriteString(ln)
	}
	for i := len(lines); i < viewH; i++ {
		b.WriteByte('\n')
	}
	return b.String()
}

func (g *grid) renderHeader() string {
	styleHeader := lipgloss.NewStyle().Bold(true).Foreground(colorChromeMutedFg)
	cells := make([]string, len(gridColumns))
	for i, c := range gridColumns {
		cells[i] = padLine(truncate(c.title, g.colWidths[i]), g.colWidths[i])
	}
	return styleHeader.Render(strings.Join(cells, " "))
}

// renderRow renders one record as rowHeight lines of aligned cells.
func (g *grid) renderRow(rec model.Item, idx int) []string {
	height := g.rowHeight(rec)
	selected := idx == g.row

	// Wrap every cell, then compose line by line.
	wrapped := make([][]string, len(gridColumns))
	for i := range gridColumns {
		wrapped[i] = wrapPlain(cellValue(rec, gridColumns[i].field), g.colWidths[i])
	}

	styleCell := lipgloss.NewStyle()
	if rec.FoundInDB {
		styleCell = styleCell.Foreground(colorFoundFg)
	}
	styleCursor := lipgloss.NewStyle().
		Foreground(colorSelectedFg).
		Background(colorSelectedBg)
	styleRowSel := lipgloss.NewStyle().Bold(true)

	out := make([]string, height)
	for ln := 0; ln < height; ln++ {
		cells := make([]string, len(gridColumns))
		for i := range gridColumns {
			text := ""
			if ln < len(wrapped[i]) {
				text = wrapped[i][ln]
			}
			cell := padLine(truncate(text, g.colWidths[i]), g.colWidths[i])
			switch {
			case selected && i == g.col && g.editing && ln == 0:
				cell = renderInputLine(g.colWidths[i], g.input.View())
				cell = padLine(cell, g.colWidths[i])
			case selected && i == g.col:
				cell = styleCursor.Render(cell)
			case selected:
				cell = styleRowSel.Render(cell)
			default:
				cell = styleCell.Render(cell)
			}
			cells[i] = cell
		}
		out[ln] = strings.Join(cells, " ")
	}
	return out
}
