package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"customsdesk/internal/api"
	"customsdesk/internal/format"
	"customsdesk/internal/logging"
	"customsdesk/internal/store"
	"customsdesk/internal/tui"
)

type App struct {
	APIURL     string
	PrettyJSON bool
	SessionID  string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "customsdesk",
		Short:        "Invoice review TUI + customs document CLI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive review TUI
  customsdesk

  # Resume a saved review session
  customsdesk --session 5f0c...

  # Scriptable commands
  customsdesk upload invoice.pdf
  customsdesk parts list --search "АБВ"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", envOr("CUSTOMSDESK_API_URL", ""), "Backend base URL (default: api_url from config.toml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().StringVar(&app.SessionID, "session", "", "Session id to resume in the TUI")

	cmd.AddCommand(newUploadCmd(app))
	cmd.AddCommand(newGenerateCmd(app))
	cmd.AddCommand(newPartsCmd(app))
	cmd.AddCommand(newSessionsCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(app *App) error {
	cfg, err := store.LoadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client := api.NewClient(apiURL(app, cfg), logger)
	sessions, err := store.OpenSessions()
	if err != nil {
		return err
	}

	var state *store.SessionState
	if app.SessionID != "" {
		sess, err := sessions.Load(context.Background(), app.SessionID)
		if err != nil {
			return err
		}
		state = &sess.State
	}
	return tui.Run(cfg, client, sessions, logger, state)
}

// clientFor builds the API client for a scriptable command, resolving the
// base URL from the flag, the environment, then config.toml.
func clientFor(app *App) (*api.Client, store.Config, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, store.Config{}, err
	}
	return api.NewClient(apiURL(app, cfg), nil), cfg, nil
}

func apiURL(app *App, cfg store.Config) string {
	if app.APIURL != "" {
		return app.APIURL
	}
	return cfg.APIURL
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
