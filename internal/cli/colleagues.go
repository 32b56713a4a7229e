package cli

import (
	"errors"
	"fmt"
	"strings"

	"teamtz/internal/dnd"
	"teamtz/internal/model"
	"teamtz/internal/mutate"
	"teamtz/internal/team"

	"github.com/spf13/cobra"
)

// lookupName maps user input to the stored name (case-insensitive).
func lookupName(t *team.Controller, name string) (string, error) {
	c, ok := t.DB().FindColleagueFold(strings.TrimSpace(name))
	if !ok {
		return "", mutate.NotFoundError{Kind: "colleague", ID: name}
	}
	return c.Name, nil
}

func newAddCmd(app *App) *cobra.Command {
	var f model.ColleagueFields

	cmd := &cobra.Command{
		Use:   "add <name> <timezone>",
		Short: "Add a colleague",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, done, err := openTeam(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			f.Name, f.Timezone = args[0], args[1]
			c, err := t.AddColleague(cmd.Context(), f)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": c})
		},
	}

	cmd.Flags().StringVar(&f.Designation, "designation", "", "Role or title")
	cmd.Flags().StringVar(&f.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&f.Email, "email", "", "Email address (used for Teams/Slack links)")
	return cmd
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Remove a colleague",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, done, err := openTeam(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			name := args[0]
			if n, err := lookupName(t, name); err == nil {
				name = n
			}
			removed, err := t.RemoveColleague(cmd.Context(), name)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"name": name, "removed": removed}})
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	var f model.ColleagueFields

	cmd := &cobra.Command{
		Use:   "edit <name>",
		Short: "Edit a colleague (only the given flags change)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, done, err := openTeam(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			name, err := lookupName(t, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			cur, _ := t.DB().FindColleague(name)
			next := model.ColleagueFields{
				Name:        cur.Name,
				Timezone:    cur.Timezone,
				Designation: cur.Designation,
				Phone:       cur.Phone,
				Email:       cur.Email,
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				next.Name = f.Name
			}
			if flags.Changed("timezone") {
				next.Timezone = f.Timezone
			}
			if flags.Changed("designation") {
				next.Designation = f.Designation
			}
			if flags.Changed("phone") {
				next.Phone = f.Phone
			}
			if flags.Changed("email") {
				next.Email = f.Email
			}

			c, err := t.EditColleague(cmd.Context(), name, next)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": c})
		},
	}

	cmd.Flags().StringVar(&f.Name, "name", "", "New name")
	cmd.Flags().StringVar(&f.Timezone, "timezone", "", "New timezone")
	cmd.Flags().StringVar(&f.Designation, "designation", "", "Role or title")
	cmd.Flags().StringVar(&f.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&f.Email, "email", "", "Email address")
	return cmd
}

func newFavCmd(app *App) *cobra.Command {
	var on, off bool

	cmd := &cobra.Command{
		Use:   "fav <name>",
		Short: "Toggle (or set with --on/--off) a colleague's favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if on && off {
				return writeErr(cmd, errors.New("--on and --off are mutually exclusive"))
			}
			t, done, err := openTeam(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			name, err := lookupName(t, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var c model.Colleague
			switch {
			case on || off:
				c, _, err = t.SetFavorite(cmd.Context(), name, on)
			default:
				c, _, err = t.ToggleFavorite(cmd.Context(), name)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": c})
		},
	}

	cmd.Flags().BoolVar(&on, "on", false, "Mark as favorite")
	cmd.Flags().BoolVar(&off, "off", false, "Unmark as favorite")
	return cmd
}

func newSetCategoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-category <name> <category-id>",
		Short: "Assign a colleague to a category (\"favorites\" marks as favorite instead)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, done, err := openTeam(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			name, err := lookupName(t, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := t.SetCategory(cmd.Context(), name, args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": c})
		},
	}
}

func newMoveCmd(app *App) *cobra.Command {
	var to, from, before, after string

	cmd := &cobra.Command{
		Use:   "move <name> --to <category-id> [--before <name> | --after <name>]",
		Short: "Reorder or re-categorize a colleague (same rules as drag-and-drop)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if before != "" && after != "" {
				return writeErr(cmd, errors.New("--before and --after are mutually exclusive"))
			}
			t, done, err := openTeam(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			name, err := lookupName(t, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			cur, _ := t.DB().FindColleague(name)
			if strings.TrimSpace(from) == "" {
				from = cur.Category
			}
			if strings.TrimSpace(to) == "" {
				to = cur.Category
			}
			target := dnd.Target{Group: strings.TrimSpace(to), Position: dnd.After}
			switch {
			case before != "":
				target.Position = dnd.Before
				if target.Key, err = lookupName(t, before); err != nil {
					return writeErr(cmd, err)
				}
			case after != "":
				if target.Key, err = lookupName(t, after); err != nil {
					return writeErr(cmd, err)
				}
			}
			if target.Key == name {
				return writeErr(cmd, fmt.Errorf("cannot move %s relative to itself", name))
			}

			if err := t.DropColleague(cmd.Context(), name, strings.TrimSpace(from), target); err != nil {
				return writeErr(cmd, err)
			}
			c, _ := t.DB().FindColleague(name)
			return writeOut(cmd, app, map[string]any{
				"data": c,
				"meta": map[string]any{"order": colleagueNames(t)},
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Target section id (favorites, general, or a category id)")
	cmd.Flags().StringVar(&from, "from", "", "Section the colleague is dragged out of (default: its category)")
	cmd.Flags().StringVar(&before, "before", "", "Insert before this colleague")
	cmd.Flags().StringVar(&after, "after", "", "Insert after this colleague (default: end of section)")
	return cmd
}

func colleagueNames(t *team.Controller) []string {
	out := make([]string, 0, len(t.DB().Colleagues))
	for _, c := range t.DB().Colleagues {
		out = append(out, c.Name)
	}
	return out
}
