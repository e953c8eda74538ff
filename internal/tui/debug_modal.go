package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"customsdesk/internal/model"
)

// renderDebugModal shows the parser diagnostics from the last upload: which
// method ran, token accounting, and per-key attempts when the backend rotated
// through several API keys.
func renderDebugModal(width int, info *model.DebugInfo) string {
	bodyW := modalBodyWidth(width)
	styleLabel := lipgloss.NewStyle().Foreground(colorChromeMutedFg)

	var lines []string
	if info == nil {
		lines = append(lines, styleMuted().Render("Нет диагностики: загрузите инвойс."))
	} else {
		lines = append(lines, styleLabel.Render("Метод: ")+info.MethodUsed)
		if info.GeminiModel != "" {
			lines = append(lines, styleLabel.Render("Модель: ")+info.GeminiModel)
		}
		if tu := info.TokenUsage; tu != nil {
			completion := tu.CompletionTokens
			if completion == 0 {
				completion = tu.CandidatesTokens
			}
			lines = append(lines, fmt.Sprintf("Токены: %d запрос, %d ответ, %d всего",
				tu.PromptTokens, completion, tu.TotalTokens))
		}
		if info.Error != "" {
			lines = append(lines, lipgloss.NewStyle().Foreground(colorErrorFg).Render(truncate("Ошибка: "+info.Error, bodyW)))
		}
		if len(info.KeyAttempts) > 0 {
			lines = append(lines, "", styleLabel.Render("Попытки по ключам"))
			for _, at := range info.KeyAttempts {
				line := fmt.Sprintf("  стр. %d  ключ %d  %s  %s", at.Page, at.KeyIdx, at.Model, at.Status)
				if at.Error != "" {
					line += "  " + at.Error
				}
				lines = append(lines, truncate(line, bodyW))
			}
		}
	}

	lines = append(lines, "", styleMuted().Render("esc: закрыть"))
	return renderModalBox(width, "Диагностика разбора", strings.Join(lines, "\n"))
}
