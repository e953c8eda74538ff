package tui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// The upload modal picks a PDF from the working directory, the parsing
// method, and an optional API key for the parser.

const uploadListRows = 8

const (
	uploadFocusFiles = iota
	uploadFocusMethod
	uploadFocusKey
)

type uploadModal struct {
	files  []string
	idx    int
	top    int
	method string
	apiKey textinput.Model
	focus  int
	errMsg string
}

func newUploadModal(method, apiKey string) uploadModal {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = "необязательно"
	in.EchoMode = textinput.EchoPassword
	in.CharLimit = 128
	in.SetValue(apiKey)

	m := uploadModal{method: method, apiKey: in}
	m.files = listPDFs(".")
	return m
}

// listPDFs finds PDF files directly under dir, sorted by name.
func listPDFs(dir string) []string {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out
}

func (u *uploadModal) selected() string {
	if u.idx < 0 || u.idx >= len(u.files) {
		return ""
	}
	return u.files[u.idx]
}

func (u *uploadModal) toggleMethod() {
	if u.method == "gemini" {
		u.method = "tesseract"
	} else {
		u.method = "gemini"
	}
}

// update handles keys while the modal is open. It reports a submit through
// the returned bool; the app owns the actual upload command.
func (u *uploadModal) update(msg tea.Msg) (submit bool, cmd tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return false, nil
	}
	switch key.String() {
	case "tab":
		u.focus = (u.focus + 1) % 3
		if u.focus == uploadFocusKey {
			u.apiKey.Focus()
		} else {
			u.apiKey.Blur()
		}
		return false, nil
	case "enter":
		if u.selected() == "" {
			u.errMsg = "Нет PDF-файлов в текущем каталоге"
			return false, nil
		}
		return true, nil
	}

	switch u.focus {
	case uploadFocusFiles:
		switch key.String() {
		case "up", "k":
			if u.idx > 0 {
				u.idx--
			}
		case "down", "j":
			if u.idx < len(u.files)-1 {
				u.idx++
			}
		}
		if u.idx < u.top {
			u.top = u.idx
		}
		if u.idx >= u.top+uploadListRows {
			u.top = u.idx - uploadListRows + 1
		}
	case uploadFocusMethod:
		switch key.String() {
		case "left", "right", "h", "l", " ":
			u.toggleMethod()
		}
	case uploadFocusKey:
		var c tea.Cmd
		u.apiKey, c = u.apiKey.Update(msg)
		return false, c
	}
	return false, nil
}

func (u *uploadModal) view(width int) string {
	bodyW := modalBodyWidth(width)

	styleSel := lipgloss.NewStyle().
		Foreground(colorSelectedFg).
		Background(colorSelectedBg)
	styleFocus := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	var b strings.Builder
	if len(u.files) == 0 {
		b.WriteString(styleMuted().Render("Нет PDF-файлов в текущем каталоге"))
		b.WriteByte('\n')
	}
	end := u.top + uploadListRows
	if end > len(u.files) {
		end = len(u.files)
	}
	for i := u.top; i < end; i++ {
		name := truncate(filepath.Base(u.files[i]), bodyW-2)
		switch {
		case i == u.idx && u.focus == uploadFocusFiles:
			b.WriteString(styleSel.Render("▸ " + name))
		case i == u.idx:
			b.WriteString("▸ " + name)
		default:
			b.WriteString("  " + name)
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	methodLine := "Метод разбора: " + u.method + "  (←/→ переключить)"
	if u.focus == uploadFocusMethod {
		methodLine = styleFocus.Render(methodLine)
	}
	b.WriteString(methodLine)
	b.WriteByte('\n')

	keyLabel := "API-ключ: "
	if u.focus == uploadFocusKey {
		keyLabel = styleFocus.Render(keyLabel)
	}
	b.WriteString(keyLabel)
	b.WriteString(renderInputLine(bodyW-lipgloss.Width("API-ключ: "), u.apiKey.View()))
	b.WriteByte('\n')

	if u.errMsg != "" {
		b.WriteByte('\n')
		b.WriteString(lipgloss.NewStyle().Foreground(colorErrorFg).Render(truncate(u.errMsg, bodyW)))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(styleMuted().Render("tab: фокус   enter: загрузить   esc: отмена"))

	return renderModalBox(width, "Загрузка инвойса", b.String())
}
