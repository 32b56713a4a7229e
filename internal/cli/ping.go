package cli

import (
	"fmt"
	"strings"

	"teamtz/internal/contact"

	"github.com/spf13/cobra"
)

type pingView struct {
	Name     string `json:"name"`
	Channel  string `json:"channel"`
	Opened   string `json:"opened,omitempty"`
	FellBack bool   `json:"fellBack"`
	Notice   string `json:"notice,omitempty"`
	Message  string `json:"message"`
}

func (p pingView) Text() string {
	if p.Notice != "" {
		return p.Message + "\n" + p.Notice
	}
	return p.Message
}

func newPingCmd(app *App) *cobra.Command {
	var dryRun bool

	names := make([]string, 0, len(contact.Channels()))
	for _, c := range contact.Channels() {
		names = append(names, string(c))
	}

	cmd := &cobra.Command{
		Use:       "ping <name> <channel>",
		Short:     "Open a chat, mail or call with a colleague (" + strings.Join(names, "|") + ")",
		Args:      cobra.ExactArgs(2),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := contact.ParseChannel(args[1])
			if err != nil {
				return writeErr(cmd, err)
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
			col, _ := t.DB().FindColleague(name)

			var slackTeam string
			if app.cfg != nil {
				slackTeam = app.cfg.SlackTeamID
			}

			if dryRun {
				inv, err := contact.Plan(*col, ch, slackTeam)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{
					"name":    name,
					"channel": string(ch),
					"appUrl":  inv.AppURL,
					"webUrl":  inv.WebURL,
					"notice":  inv.Notice,
				}})
			}

			d := contact.NewDispatcher(nil, slackTeam, app.log)
			res, err := d.Dispatch(cmd.Context(), *col, ch)
			if err != nil {
				return writeErr(cmd, fmt.Errorf("ping %s: %w", name, err))
			}
			return writeOut(cmd, app, map[string]any{"data": pingView{
				Name:     name,
				Channel:  string(ch),
				Opened:   res.Opened,
				FellBack: res.FellBack,
				Notice:   res.Notice,
				Message:  res.Message(name),
			}})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the URLs instead of opening them")
	return cmd
}
