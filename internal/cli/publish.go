package cli

import (
	"errors"
	"fmt"
	"strings"

	"teamtz/internal/publish"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var (
		toDir           string
		includeContacts bool
		sections        bool
		overwrite       bool
		stdout          bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Export the board as Markdown (derived, not canonical)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, done, err := openTeam(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			b := t.Board()
			if stdout {
				_, err := fmt.Fprint(cmd.OutOrStdout(), publish.RenderBoardMarkdown(b, publish.RenderOptions{IncludeContacts: includeContacts}))
				return err
			}
			toDir = strings.TrimSpace(toDir)
			if toDir == "" {
				return writeErr(cmd, errors.New("missing --to (or use --stdout)"))
			}
			res, err := publish.WriteBoard(b, toDir, publish.WriteOptions{
				IncludeContacts: includeContacts,
				Overwrite:       overwrite,
				Sections:        sections,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&toDir, "to", "", "Output directory")
	cmd.Flags().BoolVar(&includeContacts, "include-contacts", false, "Include designation, email and phone")
	cmd.Flags().BoolVar(&sections, "sections", false, "Also write one page per category under categories/")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print team.md to stdout instead of writing files")

	return cmd
}
