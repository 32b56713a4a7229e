package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"teamtz/internal/dnd"
	"teamtz/internal/model"
	"teamtz/internal/mutate"
	"teamtz/internal/store"
	"teamtz/internal/zone"

	"github.com/spf13/cobra"
)

func newHomeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "home [timezone]",
		Short: "Show or set the home timezone offsets are measured against",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, done, err := openTeam(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			if len(args) == 1 {
				if err := t.SetHomeTimezone(cmd.Context(), args[0]); err != nil {
					return writeErr(cmd, err)
				}
			}
			home := t.DB().HomeTimezone
			data := map[string]any{"timezone": home}
			if home != "" {
				data["label"] = zone.FriendlyName(home)
				data["localTime"] = t.Engine().LocalTime(home)
			}
			return writeOut(cmd, app, map[string]any{"data": data})
		},
	}
}

type categoryView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Builtin bool   `json:"builtin"`
	Members int    `json:"members"`
}

type categoryList []categoryView

func (l categoryList) Text() string {
	var sb strings.Builder
	for _, c := range l {
		tag := ""
		if c.Builtin {
			tag = " (built-in)"
		}
		fmt.Fprintf(&sb, "%-12s %-20s %s  %d member(s)%s\n", c.ID, c.Name, c.Color, c.Members, tag)
	}
	return sb.String()
}

func categoryViews(db *store.DB) categoryList {
	out := make(categoryList, 0, len(db.Categories))
	for _, c := range db.Categories {
		out = append(out, categoryView{
			ID:      c.ID,
			Name:    c.Name,
			Color:   c.Color,
			Builtin: model.IsBuiltin(c.ID),
			Members: mutate.MemberCount(db, c.ID),
		})
	}
	return out
}

func newCategoriesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage categories",
	}
	cmd.AddCommand(newCategoriesListCmd(app))
	cmd.AddCommand(newCategoriesAddCmd(app))
	cmd.AddCommand(newCategoriesEditCmd(app))
	cmd.AddCommand(newCategoriesRemoveCmd(app))
	cmd.AddCommand(newCategoriesMoveCmd(app))
	return cmd
}

func newCategoriesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories in display order with member counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, done, err := openTeam(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()
			return writeOut(cmd, app, map[string]any{"data": categoryViews(t.DB())})
		},
	}
}

func newCategoriesAddCmd(app *App) *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, done, err := openTeam(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			c, err := t.AddCategory(cmd.Context(), args[0], color)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": c})
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "Hex color (#rgb or #rrggbb; default "+model.DefaultCategoryColor+")")
	return cmd
}

func newCategoriesEditCmd(app *App) *cobra.Command {
	var name, color string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Rename or recolor a category (ids never change)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(name) == "" && strings.TrimSpace(color) == "" {
				return writeErr(cmd, errors.New("nothing to change: pass --name and/or --color"))
			}
			t, done, err := openTeam(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			c, ok, err := t.UpdateCategory(cmd.Context(), args[0], name, color)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeErr(cmd, mutate.NotFoundError{Kind: "category", ID: args[0]})
			}
			return writeOut(cmd, app, map[string]any{"data": c})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&color, "color", "", "New hex color")
	return cmd
}

func newCategoriesRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a category (members move to General)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, done, err := openTeam(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			n, err := t.DeleteCategory(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": args[0], "deleted": true, "reassigned": n}})
		},
	}
}

func newCategoriesMoveCmd(app *App) *cobra.Command {
	var before, after string

	cmd := &cobra.Command{
		Use:   "move <id> (--before <id> | --after <id>)",
		Short: "Reorder a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (before == "") == (after == "") {
				return writeErr(cmd, errors.New("exactly one of --before or --after is required"))
			}
			t, done, err := openTeam(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			target, pos := after, dnd.After
			if before != "" {
				target, pos = before, dnd.Before
			}
			if err := t.MoveCategory(cmd.Context(), args[0], target, pos, false); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": t.DB().CategoryOrder()})
		},
	}

	cmd.Flags().StringVar(&before, "before", "", "Place before this category id")
	cmd.Flags().StringVar(&after, "after", "", "Place after this category id")
	return cmd
}

type zoneView struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Country   string `json:"country"`
	LocalTime string `json:"localTime"`
}

type zoneList []zoneView

func (l zoneList) Text() string {
	var sb strings.Builder
	for _, z := range l {
		fmt.Fprintf(&sb, "%-22s %-14s %s  %s\n", z.ID, z.Label, z.Country, z.LocalTime)
	}
	return sb.String()
}

func newZonesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "zones",
		Short: "List commonly used timezones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := zone.NewEngine(zone.SystemClock{}, app.log)
			out := zoneList{}
			for _, id := range zone.CommonZones() {
				out = append(out, zoneView{
					ID:        id,
					Label:     zone.FriendlyName(id),
					Country:   zone.CountryCode(id),
					LocalTime: eng.LocalTime(id),
				})
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change config.toml",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := store.ConfigPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": app.cfg,
				"meta": map[string]any{"path": path},
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config key (dir, log_level, slack_team_id, tui.glyphs, tui.show_seconds, tui.compact)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *app.cfg
			if err := setConfigKey(&cfg, args[0], args[1]); err != nil {
				return writeErr(cmd, err)
			}
			if err := store.SaveConfig(&cfg); err != nil {
				return writeErr(cmd, err)
			}
			app.cfg = &cfg
			return writeOut(cmd, app, map[string]any{"data": app.cfg})
		},
	})

	return cmd
}

func setConfigKey(cfg *store.Config, key, value string) error {
	value = strings.TrimSpace(value)
	tui := func() *store.TUIConfig {
		if cfg.TUI == nil {
			cfg.TUI = &store.TUIConfig{}
		} else {
			cp := *cfg.TUI
			cfg.TUI = &cp
		}
		return cfg.TUI
	}
	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("%s: want true or false, got %q", key, value)
		}
		return b, nil
	}

	switch strings.ToLower(strings.TrimSpace(key)) {
	case "dir":
		cfg.Dir = value
	case "log_level":
		cfg.LogLevel = value
	case "slack_team_id":
		cfg.SlackTeamID = value
	case "tui.glyphs":
		if value != "" && value != "unicode" && value != "ascii" {
			return fmt.Errorf("tui.glyphs: want unicode or ascii, got %q", value)
		}
		tui().Glyphs = value
	case "tui.show_seconds":
		b, err := parseBool()
		if err != nil {
			return err
		}
		tui().ShowSeconds = b
	case "tui.compact":
		b, err := parseBool()
		if err != nil {
			return err
		}
		tui().Compact = b
	default:
		return fmt.Errorf("unknown config key: %q", key)
	}
	return nil
}
