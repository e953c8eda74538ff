package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and
// height lines tall. This keeps composed views stable under
// lipgloss.JoinHorizontal.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")

	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i := range lines {
		lines[i] = padLine(lines[i], width)
	}

	return strings.Join(lines, "\n")
}

// padLine truncates or pads one line to exactly width columns, ANSI-aware.
func padLine(ln string, width int) string {
	// Fast path: avoid computing StringWidth on extremely long lines. If the
	// raw string is huge it is almost certainly wider than the pane; cut it
	// early so subsequent width computations are bounded.
	if width > 0 && len(ln) > 8192 {
		if width == 1 {
			ln = xansi.Cut(ln, 0, 1)
		} else {
			ln = xansi.Cut(ln, 0, width-1) + "…"
		}
	}

	w := xansi.StringWidth(ln)
	if w > width {
		switch {
		case width <= 0:
			ln = ""
		case width == 1:
			ln = xansi.Cut(ln, 0, 1)
		default:
			ln = xansi.Cut(ln, 0, width-1) + "…"
		}
		w = xansi.StringWidth(ln)
	}
	if w < width {
		ln += strings.Repeat(" ", width-w)
	}
	return ln
}

// truncate cuts s to at most width columns, appending an ellipsis when
// anything was dropped.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return xansi.Cut(s, 0, 1)
	}
	return xansi.Cut(s, 0, width-1) + "…"
}

// wrapPlain soft-wraps plain text into lines of at most width columns,
// breaking on spaces where possible. Returns at least one line.
func wrapPlain(s string, width int) []string {
	if width <= 0 {
		return []string{""}
	}
	s = strings.TrimRight(s, " ")
	if s == "" {
		return []string{""}
	}

	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := ""
		for _, w := range words {
			for xansi.StringWidth(w) > width {
				// A single token wider than the column hard-breaks.
				if cur != "" {
					lines = append(lines, cur)
					cur = ""
				}
				lines = append(lines, xansi.Cut(w, 0, width))
				w = xansi.Cut(w, width, xansi.StringWidth(w))
			}
			switch {
			case cur == "":
				cur = w
			case xansi.StringWidth(cur)+1+xansi.StringWidth(w) <= width:
				cur += " " + w
			default:
				lines = append(lines, cur)
				cur = w
			}
		}
		if cur != "" {
			lines = append(lines, cur)
		}
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}
