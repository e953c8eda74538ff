package cli

import (
	"github.com/spf13/cobra"
)

func newUploadCmd(app *App) *cobra.Command {
	var method string
	var apiKey string

	cmd := &cobra.Command{
		Use:   "upload <invoice.pdf>",
		Short: "Parse a PDF invoice and print the extracted positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := clientFor(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if method == "" {
				method = cfg.Method
			}
			resp, err := client.UploadInvoice(cmd.Context(), args[0], method, apiKey)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": resp})
		},
	}

	cmd.Flags().StringVar(&method, "method", "", "Parsing method (gemini|tesseract; default: method from config.toml)")
	cmd.Flags().StringVar(&apiKey, "api-key", envOr("CUSTOMSDESK_PARSER_KEY", ""), "Parser API key override")

	return cmd
}
