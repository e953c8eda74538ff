package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"customsdesk/internal/model"
	"customsdesk/internal/store"
)

func newGenerateCmd(app *App) *cobra.Command {
	var sessionID string
	var outDir string
	var techDesc, nonInsurance, decision130, facsimile bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate customs documents from a saved review session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" {
				return writeErr(cmd, errors.New("--session is required (run `customsdesk sessions list`)"))
			}
			sessions, err := store.OpenSessions()
			if err != nil {
				return writeErr(cmd, err)
			}
			sess, err := sessions.Load(cmd.Context(), sessionID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if len(sess.State.Items) == 0 {
				return writeErr(cmd, errors.New("session has no positions"))
			}

			sel := sess.State.Docs
			if cmd.Flags().Changed("tech-desc") {
				sel.GenTechDesc = techDesc
			}
			if cmd.Flags().Changed("non-insurance") {
				sel.GenNonInsurance = nonInsurance
			}
			if cmd.Flags().Changed("decision130") {
				sel.GenDecision130 = decision130
			}
			if cmd.Flags().Changed("facsimile") {
				sel.AddFacsimile = facsimile
			}

			client, _, err := clientFor(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			req := model.NewGenerateRequest(sess.State.Items, sess.State.Meta, sel)
			path, err := client.GenerateDocuments(cmd.Context(), req, outDir)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": path}})
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session id to generate from")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory to write the generated file into")
	cmd.Flags().BoolVar(&techDesc, "tech-desc", false, "Include the technical description")
	cmd.Flags().BoolVar(&nonInsurance, "non-insurance", false, "Include the non-insurance letter")
	cmd.Flags().BoolVar(&decision130, "decision130", false, "Include the Decision 130 notification")
	cmd.Flags().BoolVar(&facsimile, "facsimile", false, "Stamp the facsimile onto generated documents")

	return cmd
}
