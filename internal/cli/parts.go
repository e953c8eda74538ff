package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"customsdesk/internal/model"
)

func newPartsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parts",
		Short: "Browse and edit the parts catalog",
	}
	cmd.AddCommand(newPartsListCmd(app))
	cmd.AddCommand(newPartsGetCmd(app))
	cmd.AddCommand(newPartsSetCmd(app))
	return cmd
}

func newPartsListCmd(app *App) *cobra.Command {
	var search string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog parts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := clientFor(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			parts, err := client.ListParts(cmd.Context(), search, limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"parts": parts}})
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by designation or name")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of parts to return")
	return cmd
}

func newPartsGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <designation>",
		Short: "Show one part by exact designation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := clientFor(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			part, err := client.LookupPart(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if part == nil {
				return writeErr(cmd, errNotFound("part", args[0]))
			}
			return writeOut(cmd, app, map[string]any{"data": part})
		},
	}
}

func newPartsSetCmd(app *App) *cobra.Command {
	var material, dimensions, weight, manufacturer, condition, tnvedCode, description string

	cmd := &cobra.Command{
		Use:   "set <part-id>",
		Short: "Update fields of a catalog part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return writeErr(cmd, errNotFound("part", args[0]))
			}

			var patch model.PartPatch
			if cmd.Flags().Changed("material") {
				patch.Material = &material
			}
			if cmd.Flags().Changed("dimensions") {
				patch.Dimensions = &dimensions
			}
			if cmd.Flags().Changed("weight") {
				w, err := strconv.ParseFloat(weight, 64)
				if err != nil || w < 0 {
					return writeErr(cmd, errInvalidValue("weight", weight))
				}
				patch.Weight = &w
			}
			if cmd.Flags().Changed("manufacturer") {
				patch.Manufacturer = &manufacturer
			}
			if cmd.Flags().Changed("condition") {
				patch.Condition = &condition
			}
			if cmd.Flags().Changed("tnved-code") {
				patch.TnvedCode = &tnvedCode
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}

			client, _, err := clientFor(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			saved, err := client.SavePart(cmd.Context(), id, patch)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": saved})
		},
	}

	cmd.Flags().StringVar(&material, "material", "", "Material")
	cmd.Flags().StringVar(&dimensions, "dimensions", "", "Dimensions")
	cmd.Flags().StringVar(&weight, "weight", "", "Weight in kilograms")
	cmd.Flags().StringVar(&manufacturer, "manufacturer", "", "Manufacturer")
	cmd.Flags().StringVar(&condition, "condition", "", "Condition")
	cmd.Flags().StringVar(&tnvedCode, "tnved-code", "", "Customs nomenclature code")
	cmd.Flags().StringVar(&description, "description", "", "Markdown description")

	return cmd
}
