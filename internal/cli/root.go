package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"teamtz/internal/format"
	"teamtz/internal/logging"
	"teamtz/internal/store"
	"teamtz/internal/team"
	"teamtz/internal/tui"
	"teamtz/internal/zone"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Format     string
	LogLevel   string

	cfg *store.Config
	log zerolog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "teamtz",
		Short:        "Team timezones: colleagues' local times, grouped and reorderable",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board
  teamtz

  # Scriptable commands
  teamtz add Ana Asia/Manila --email ana@example.com
  teamtz home Asia/Kathmandu
  teamtz list --format text

  # Direct lookup (shortcut for: teamtz show Ana)
  teamtz @Ana
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := store.LoadConfig()
		if err != nil {
			// A broken config should not lock the user out of every command.
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: ignoring config: %v\n", err)
			cfg = &store.Config{}
		}
		app.cfg = cfg
		level := app.LogLevel
		if level == "" {
			level = cfg.LogLevel
		}
		app.log = logging.New(cmd.ErrOrStderr(), logging.ParseLevel(level, zerolog.WarnLevel))
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("TEAMTZ_DIR", ""), "Path to data dir (overrides config.toml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TEAMTZ_FORMAT", "json"), "Output format (json|edn|text)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("TEAMTZ_LOG_LEVEL", ""), "Log level (debug|info|warn|error)")

	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newFavCmd(app))
	cmd.AddCommand(newSetCategoryCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newWatchCmd(app))
	cmd.AddCommand(newHomeCmd(app))
	cmd.AddCommand(newCategoriesCmd(app))
	cmd.AddCommand(newPingCmd(app))
	cmd.AddCommand(newZonesCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newDoctorCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	dir, err := resolveDir(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(tui.Options{
		Dir:    dir,
		Config: app.cfg,
		Level:  logging.ParseLevel(firstNonEmpty(app.LogLevel, app.cfg.LogLevel), zerolog.InfoLevel),
	})
}

func resolveDir(app *App) (string, error) {
	dir, err := store.ResolveDir(app.Dir, app.cfg)
	if err != nil {
		return "", err
	}
	app.Dir = dir
	return dir, nil
}

// openTeam opens the data dir and loads state. The returned func closes the
// store.
func openTeam(ctx context.Context, app *App) (*team.Controller, func(), error) {
	dir, err := resolveDir(app)
	if err != nil {
		return nil, nil, err
	}
	s := store.Store{Dir: dir, Log: app.log}
	kv, err := s.OpenKV(ctx)
	if err != nil {
		return nil, nil, err
	}
	t := team.New(ctx, kv, zone.SystemClock{}, app.log)
	if app.cfg != nil && app.cfg.TUI != nil && app.cfg.TUI.ShowSeconds {
		t.Engine().Layout = zone.ClockLayoutSeconds
	}
	return t, func() { _ = kv.Close() }, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
