package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"customsdesk/internal/api"
	"customsdesk/internal/model"
	"customsdesk/internal/review"
	"customsdesk/internal/store"
)

// metaFormHeight is the fixed height of the metadata pane under the grid:
// seven inputs, a separator, four checkboxes.
const metaFormHeight = 12

type Model struct {
	cfg      store.Config
	client   *api.Client
	sessions store.Sessions
	logger   *zap.Logger
	gen      *review.IDGen

	width, height int
	ready         bool
	view          view
	modal         modalKind

	items []model.Item
	g     grid
	form  metaForm

	upload uploadModal
	parts  partsState
	detail detailModal
	debug  *model.DebugInfo

	// confirmIdx is the row pending deletion while the confirm modal is open.
	confirmIdx   int
	confirmFocus confirmModalFocus

	sessionID string

	spin         spinner.Model
	isUploading  bool
	isGenerating bool
	status       string
	errMsg       string
}

func New(cfg store.Config, client *api.Client, sessions store.Sessions, logger *zap.Logger, state *store.SessionState) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	meta := model.ReportMeta{
		CountryOfOrigin: cfg.CountryOfOrigin,
		Supplier:        cfg.Supplier,
	}
	var items []model.Item
	docs := model.DocSelection{}
	if state != nil {
		items = state.Items
		meta = state.Meta
		docs = state.Docs
	}

	form := newMetaForm(meta)
	form.docs = docs

	m := Model{
		cfg:      cfg,
		client:   client,
		sessions: sessions,
		logger:   logger,
		gen:      review.NewIDGen(),
		items:    items,
		g:        newGrid(len(items), cfg.RowEstimate, cfg.Overscan),
		form:     form,
		parts:    newPartsState(),
		spin:     sp,
	}
	return m
}

// Run starts the interactive review program.
func Run(cfg store.Config, client *api.Client, sessions store.Sessions, logger *zap.Logger, state *store.SessionState) error {
	applyColorProfilePreference()
	applyThemePreference()
	m := New(cfg, client, sessions, logger, state)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

func (m Model) busy() bool {
	return m.isUploading || m.isGenerating
}

func (m Model) gridViewHeight() int {
	// Header bar + status line + metadata pane around the grid.
	h := m.height - metaFormHeight - 3
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.g.setSize(m.width, m.gridViewHeight())
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case uploadDoneMsg:
		return m.onUploadDone(msg)

	case generateDoneMsg:
		m.isGenerating = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			m.modal = modalError
			return m, nil
		}
		m.status = "Документы сохранены: " + msg.path
		return m, nil

	case partsLoadedMsg:
		if msg.err != nil {
			m.parts.loading = false
			m.parts.errMsg = msg.err.Error()
			return m, nil
		}
		m.parts.setParts(msg.parts)
		return m, nil

	case partLookupMsg:
		if msg.err != nil {
			// Lookup is a convenience; failure leaves the grid alone.
			m.logger.Warn("part lookup failed",
				zap.String("designation", msg.designation), zap.Error(msg.err))
			return m, nil
		}
		if msg.part == nil {
			m.status = "Деталь не найдена в базе: " + msg.designation
			return m, nil
		}
		m.detail.open(*msg.part)
		m.modal = modalDetail
		return m, nil

	case partSavedMsg:
		if msg.err != nil {
			m.detail.saveFailed(msg.err.Error())
			return m, nil
		}
		m.detail.saveSucceeded(*msg.part)
		m.parts.replace(*msg.part)
		m.status = "Деталь сохранена: " + msg.part.Designation
		return m, nil

	case sessionSavedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			m.modal = modalError
			return m, nil
		}
		m.sessionID = msg.id
		m.status = "Сессия сохранена"
		return m, nil

	case tea.KeyMsg:
		return m.onKey(msg)
	}
	return m, nil
}

// onUploadDone merges the parsed batch into the review collection. On error
// the collection and metadata stay exactly as they were.
func (m Model) onUploadDone(msg uploadDoneMsg) (tea.Model, tea.Cmd) {
	m.isUploading = false
	if msg.err != nil {
		m.logger.Warn("upload failed", zap.Error(msg.err))
		m.errMsg = msg.err.Error()
		m.modal = modalError
		return m, nil
	}

	m.debug = msg.resp.DebugInfo
	merged, meta := review.MergeBatch(m.items, msg.resp.Items, msg.resp.Metadata, m.form.meta(), m.gen)
	added := len(merged) - len(m.items)
	m.items = merged
	m.form.setMeta(meta)
	m.g.vl.Append(added)
	m.modal = modalNone
	m.status = fmt.Sprintf("Добавлено позиций: %d", added)
	m.logger.Debug("batch merged", zap.Int("added", added), zap.Int("total", len(m.items)))
	return m, nil
}

func (m Model) onKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.modal {
	case modalError, modalDebugInfo:
		switch key.String() {
		case "esc", "enter", "q":
			m.modal = modalNone
		}
		return m, nil

	case modalConfirmDelete, modalConfirmClear:
		return m.onConfirmKey(key)

	case modalUpload:
		if key.String() == "esc" {
			m.modal = modalNone
			return m, nil
		}
		submit, cmd := m.upload.update(key)
		if submit && !m.isUploading {
			m.modal = modalNone
			m.isUploading = true
			m.status = ""
			return m, tea.Batch(m.spin.Tick,
				uploadCmd(m.client, m.upload.selected(), m.upload.method, m.upload.apiKey.Value()))
		}
		return m, cmd

	case modalDetail:
		action, patch, cmd := m.detail.update(key)
		switch action {
		case detailClose:
			m.detail.close()
			m.modal = modalNone
			return m, nil
		case detailSave:
			return m, savePartCmd(m.client, m.detail.ed.Part().ID, patch)
		}
		return m, cmd
	}

	switch m.view {
	case viewParts:
		return m.onPartsKey(key)
	default:
		return m.onReviewKey(key)
	}
}

func (m Model) onConfirmKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc", "n":
		m.modal = modalNone
		return m, nil
	case "tab", "left", "right":
		if m.confirmFocus == confirmFocusConfirm {
			m.confirmFocus = confirmFocusCancel
		} else {
			m.confirmFocus = confirmFocusConfirm
		}
		return m, nil
	case "y":
		return m.confirmAccepted()
	case "enter":
		if m.confirmFocus == confirmFocusConfirm {
			return m.confirmAccepted()
		}
		m.modal = modalNone
		return m, nil
	}
	return m, nil
}

func (m Model) confirmAccepted() (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalConfirmDelete:
		m.items = review.Remove(m.items, m.confirmIdx)
		m.g.vl.Reset(len(m.items))
		m.g.moveCursor(0, 0, len(m.items))
		m.status = "Позиция удалена"
	case modalConfirmClear:
		m.items = review.Clear()
		m.g.vl.Reset(0)
		m.g.row, m.g.col, m.g.scrollTop = 0, 0, 0
		m.sessionID = ""
		m.status = "Таблица очищена"
	}
	m.modal = modalNone
	return m, nil
}

func (m Model) onReviewKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Inline cell editing captures everything except commit/cancel.
	if m.g.editing {
		switch key.String() {
		case "enter":
			row, field, value := m.g.commitEdit()
			m.items = review.UpdateField(m.items, row, field, value)
			delta := m.g.vl.Measure(row, m.g.rowHeight(m.items[row]))
			m.g.scrollTop = m.g.vl.ScrollAdjust(m.g.scrollTop, row, delta)
			return m, nil
		case "esc":
			m.g.cancelEdit()
			return m, nil
		}
		var cmd tea.Cmd
		m.g.input, cmd = m.g.input.Update(key)
		return m, cmd
	}

	// Metadata form focus.
	if m.form.focused() {
		switch key.String() {
		case "esc":
			m.form.blur()
			return m, nil
		case "tab":
			m.form.cycle(1)
			return m, nil
		case "shift+tab":
			m.form.cycle(-1)
			return m, nil
		}
		return m, m.form.update(key)
	}

	switch key.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.g.moveCursor(-1, 0, len(m.items))
	case "down", "j":
		m.g.moveCursor(1, 0, len(m.items))
	case "left", "h":
		m.g.moveCursor(0, -1, len(m.items))
	case "right", "l":
		m.g.moveCursor(0, 1, len(m.items))
	case "pgup":
		m.g.pageMove(-1, len(m.items))
	case "pgdown":
		m.g.pageMove(1, len(m.items))
	case "enter":
		if len(m.items) > 0 {
			m.g.startEdit(m.items[m.g.row])
			return m, m.g.input.Focus()
		}
	case "a":
		m.items = review.Prepend(m.items, model.NewItem(0), m.gen)
		m.g.vl.Prepend()
		m.g.row, m.g.scrollTop = 0, 0
		m.status = "Добавлена пустая позиция"
	case "d":
		if len(m.items) > 0 {
			m.confirmIdx = m.g.row
			m.confirmFocus = confirmFocusCancel
			m.modal = modalConfirmDelete
		}
	case "C":
		if len(m.items) > 0 {
			m.confirmFocus = confirmFocusCancel
			m.modal = modalConfirmClear
		}
	case "u":
		if m.isUploading {
			return m, nil
		}
		m.upload = newUploadModal(m.cfg.Method, m.cfg.APIKey)
		m.modal = modalUpload
	case "g":
		if len(m.items) == 0 || m.isGenerating {
			return m, nil
		}
		m.isGenerating = true
		m.status = ""
		req := model.NewGenerateRequest(m.items, m.form.meta(), m.form.docs)
		return m, tea.Batch(m.spin.Tick, generateCmd(m.client, req, "."))
	case "o":
		// Only rows the parser matched against the catalog have a record
		// behind them.
		if len(m.items) > 0 && m.items[m.g.row].FoundInDB {
			desig := strings.TrimSpace(m.items[m.g.row].Designation)
			if desig != "" {
				return m, lookupPartCmd(m.client, desig)
			}
		}
	case "p":
		m.view = viewParts
		if len(m.parts.all) == 0 && !m.parts.loading {
			m.parts.loading = true
			return m, loadPartsCmd(m.client)
		}
	case "i":
		m.modal = modalDebugInfo
	case "tab":
		m.form.focusFirst()
		return m, nil
	case "ctrl+s":
		name := "Сессия " + time.Now().Format("02.01.2006 15:04")
		state := store.SessionState{Items: m.items, Meta: m.form.meta(), Docs: m.form.docs}
		return m, saveSessionCmd(m.sessions, m.sessionID, name, state)
	}
	return m, nil
}

func (m Model) onPartsKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.parts.searching {
		switch key.String() {
		case "esc", "enter":
			m.parts.searching = false
			m.parts.search.Blur()
			return m, nil
		}
		return m, m.parts.updateSearch(key)
	}

	viewRows := m.height - 4
	switch key.String() {
	case "esc", "p":
		m.view = viewReview
	case "q":
		return m, tea.Quit
	case "/":
		m.parts.searching = true
		return m, m.parts.search.Focus()
	case "up", "k":
		m.parts.move(-1, viewRows)
	case "down", "j":
		m.parts.move(1, viewRows)
	case "pgup":
		m.parts.move(-viewRows, viewRows)
	case "pgdown":
		m.parts.move(viewRows, viewRows)
	case "r":
		m.parts.loading = true
		return m, loadPartsCmd(m.client)
	case "enter":
		if part := m.parts.selected(); part != nil {
			m.detail.open(*part)
			m.modal = modalDetail
		}
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Загрузка..."
	}

	var base string
	switch m.view {
	case viewParts:
		base = m.viewPartsPage()
	default:
		base = m.viewReviewPage()
	}
	base = normalizePane(base, m.width, m.height)

	switch m.modal {
	case modalUpload:
		return overlayCenter(base, m.upload.view(modalWidth(m.width)), m.width, m.height)
	case modalConfirmDelete:
		body := "Удалить выбранную позицию?"
		if m.confirmIdx < len(m.items) && m.items[m.confirmIdx].Name != "" {
			body = "Удалить позицию «" + m.items[m.confirmIdx].Name + "»?"
		}
		return overlayCenter(base,
			renderConfirmModal(modalWidth(m.width), "Удаление позиции", body, "Удалить", "Отмена", m.confirmFocus),
			m.width, m.height)
	case modalConfirmClear:
		return overlayCenter(base,
			renderConfirmModal(modalWidth(m.width), "Очистка таблицы",
				"Удалить все позиции и начать заново?", "Очистить", "Отмена", m.confirmFocus),
			m.width, m.height)
	case modalDetail:
		return overlayCenter(base, m.detail.view(modalWidth(m.width)), m.width, m.height)
	case modalError:
		return overlayCenter(base,
			renderConfirmModal(modalWidth(m.width), "Ошибка",
				lipgloss.NewStyle().Foreground(colorErrorFg).Render(m.errMsg),
				"Закрыть", "Закрыть", confirmFocusConfirm),
			m.width, m.height)
	case modalDebugInfo:
		return overlayCenter(base, renderDebugModal(modalWidth(m.width), m.debug), m.width, m.height)
	}
	return base
}

func (m Model) viewReviewPage() string {
	title := lipgloss.NewStyle().Bold(true).Render("Проверка инвойса")
	count := styleMuted().Render(fmt.Sprintf("  позиций: %d", len(m.items)))
	header := truncate(title+count, m.width)

	gridView := m.g.view(m.items)

	status := m.statusLine()

	return strings.Join([]string{
		header,
		gridView,
		status,
		m.form.view(m.width),
	}, "\n")
}

func (m Model) viewPartsPage() string {
	header := lipgloss.NewStyle().Bold(true).Render("База деталей")
	hint := styleMuted().Render("  /: поиск   enter: открыть   r: обновить   esc: назад")
	return truncate(header+hint, m.width) + "\n" + m.parts.view(m.width, m.height-1)
}

func (m Model) statusLine() string {
	switch {
	case m.isUploading:
		return m.spin.View() + " Разбор инвойса..."
	case m.isGenerating:
		return m.spin.View() + " Формирование документов..."
	case m.status != "":
		return styleMuted().Render(truncate(m.status, m.width))
	}
	return styleMuted().Render(truncate(
		"a: добавить   d: удалить   u: загрузить PDF   g: документы   o: деталь   p: база   i: диагностика   ctrl+s: сессия   q: выход",
		m.width))
}
