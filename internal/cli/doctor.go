package cli

import (
	"time"

	"teamtz/internal/store"

	"github.com/spf13/cobra"
)

func newDoctorCmd(app *App) *cobra.Command {
	var fail bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check stored state for problems loading would silently repair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveDir(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			kv, err := (store.Store{Dir: dir, Log: app.log}).OpenKV(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer kv.Close()

			report := store.Doctor(cmd.Context(), kv)
			updated, err := kv.Keys(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			keys := map[string]string{}
			for k, at := range updated {
				keys[k] = at.UTC().Format(time.RFC3339)
			}

			meta := map[string]any{
				"dir":       dir,
				"issues":    len(report.Issues),
				"hasErrors": report.HasErrors(),
				"updatedAt": keys,
			}
			if err := writeOut(cmd, app, map[string]any{"data": report, "meta": meta}); err != nil {
				return err
			}

			if fail && report.HasErrors() {
				return store.ErrDoctorIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if errors are found")
	return cmd
}
