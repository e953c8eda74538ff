package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"customsdesk/internal/api"
	"customsdesk/internal/model"
	"customsdesk/internal/store"
)

type view int

const (
	viewReview view = iota
	viewParts
)

type modalKind int

const (
	modalNone modalKind = iota
	modalUpload
	modalConfirmDelete
	modalConfirmClear
	modalDetail
	modalError
	modalDebugInfo
)

// Async results delivered back into Update.

type uploadDoneMsg struct {
	resp *model.UploadResponse
	err  error
}

type generateDoneMsg struct {
	path string
	err  error
}

type partsLoadedMsg struct {
	parts []model.Part
	err   error
}

type partLookupMsg struct {
	designation string
	part        *model.Part
	err         error
}

type partSavedMsg struct {
	part *model.Part
	err  error
}

type sessionSavedMsg struct {
	id  string
	err error
}

func uploadCmd(client *api.Client, path, method, apiKey string) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.UploadInvoice(context.Background(), path, method, apiKey)
		return uploadDoneMsg{resp: resp, err: err}
	}
}

func generateCmd(client *api.Client, req model.GenerateRequest, outDir string) tea.Cmd {
	return func() tea.Msg {
		path, err := client.GenerateDocuments(context.Background(), req, outDir)
		return generateDoneMsg{path: path, err: err}
	}
}

func loadPartsCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		parts, err := client.ListParts(context.Background(), "", 1000)
		return partsLoadedMsg{parts: parts, err: err}
	}
}

func lookupPartCmd(client *api.Client, designation string) tea.Cmd {
	return func() tea.Msg {
		part, err := client.LookupPart(context.Background(), designation)
		return partLookupMsg{designation: designation, part: part, err: err}
	}
}

func savePartCmd(client *api.Client, id int64, patch model.PartPatch) tea.Cmd {
	return func() tea.Msg {
		part, err := client.SavePart(context.Background(), id, patch)
		return partSavedMsg{part: part, err: err}
	}
}

func saveSessionCmd(sessions store.Sessions, id, name string, state store.SessionState) tea.Cmd {
	return func() tea.Msg {
		savedID, err := sessions.Save(context.Background(), id, name, state)
		return sessionSavedMsg{id: savedID, err: err}
	}
}
