package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// Modal rendering.
//
// Modals are drawn as a titled box centered over a dimmed base view. Borders
// are avoided inside the box: some terminals show background artifacts when
// nesting bordered components inside a surface with a background color.

const modalMaxWidth = 76

// modalWidth picks the box width for the current terminal width.
func modalWidth(termWidth int) int {
	w := termWidth - 8
	if w > modalMaxWidth {
		w = modalMaxWidth
	}
	if w < 24 {
		w = 24
	}
	return w
}

// modalBodyWidth is the content width inside the box padding.
func modalBodyWidth(width int) int {
	return width - 4
}

// renderModalBox renders a titled modal surface of the given outer width.
func renderModalBox(width int, title string, content string) string {
	bodyW := modalBodyWidth(width)

	header := lipgloss.NewStyle().
		Width(bodyW).
		Padding(0, 1).
		Bold(true).
		Foreground(colorModalHeaderFg).
		Background(colorModalHeaderBg).
		Render(truncate(title, bodyW-2))

	body := lipgloss.NewStyle().
		Width(bodyW).
		Padding(0, 1).
		Foreground(colorModalSurfaceFg).
		Background(colorModalSurfaceBg).
		Render(content)

	box := lipgloss.JoinVertical(lipgloss.Left, header, "", body, "")
	return lipgloss.NewStyle().
		Padding(0, 1).
		Background(colorModalSurfaceBg).
		Render(box)
}

// overlayCenter draws the modal over the base view, centered, dimming what
// remains visible around it.
func overlayCenter(base, modal string, width, height int) string {
	dimmed := styleMuted().Render(stripANSIEscapes(base))
	baseLines := strings.Split(normalizePane(dimmed, width, height), "\n")

	modalLines := strings.Split(modal, "\n")
	modalW := 0
	for _, ln := range modalLines {
		if w := xansi.StringWidth(ln); w > modalW {
			modalW = w
		}
	}

	top := (height - len(modalLines)) / 2
	if top < 0 {
		top = 0
	}
	left := (width - modalW) / 2
	if left < 0 {
		left = 0
	}

	for i, ml := range modalLines {
		y := top + i
		if y >= len(baseLines) {
			break
		}
		bl := baseLines[y]
		prefix := xansi.Cut(bl, 0, left)
		suffix := ""
		if left+modalW < width {
			suffix = xansi.Cut(bl, left+modalW, width)
		}
		baseLines[y] = prefix + padLine(ml, modalW) + "\x1b[0m" + suffix
	}
	return strings.Join(baseLines, "\n")
}
