package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"teamtz/internal/board"
	"teamtz/internal/team"

	"github.com/charmbracelet/lipgloss"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

type cardView struct {
	Name        string  `json:"name"`
	Timezone    string  `json:"timezone"`
	LocalTime   string  `json:"localTime"`
	Zone        string  `json:"zone"`
	Country     string  `json:"country"`
	OffsetHours float64 `json:"offsetHours"`
	Offset      string  `json:"offset,omitempty"`
	Category    string  `json:"category"`
	Favorite    bool    `json:"favorite"`
	Designation string  `json:"designation,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Email       string  `json:"email,omitempty"`
}

type sectionView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Color      string     `json:"color"`
	Colleagues []cardView `json:"colleagues"`
}

type boardView struct {
	Home      string        `json:"home,omitempty"`
	HomeLabel string        `json:"homeLabel,omitempty"`
	At        time.Time     `json:"at"`
	Empty     bool          `json:"empty"`
	Sections  []sectionView `json:"sections"`
}

func newCardView(c board.Card, homeLabel string) cardView {
	return cardView{
		Name:        c.Name,
		Timezone:    c.Timezone,
		LocalTime:   c.LocalTime,
		Zone:        c.ZoneLabel,
		Country:     c.Country,
		OffsetHours: c.OffsetHours,
		Offset:      c.Diff(homeLabel),
		Category:    c.CategoryID,
		Favorite:    c.Favorite,
		Designation: c.Designation,
		Phone:       c.Phone,
		Email:       c.Email,
	}
}

func newBoardView(b board.Board) boardView {
	v := boardView{
		Home:      b.HomeTimezone,
		HomeLabel: b.HomeLabel,
		At:        b.At,
		Empty:     b.Empty,
		Sections:  []sectionView{},
	}
	for _, s := range b.Sections {
		sv := sectionView{
			ID:         s.Category.ID,
			Name:       s.Category.Name,
			Color:      s.Category.Color,
			Colleagues: make([]cardView, 0, len(s.Cards)),
		}
		for _, c := range s.Cards {
			sv.Colleagues = append(sv.Colleagues, newCardView(c, b.HomeLabel))
		}
		v.Sections = append(v.Sections, sv)
	}
	return v
}

func (v boardView) Text() string {
	if v.Empty {
		return "No colleagues yet. Add one with: teamtz add <name> <timezone>"
	}
	var sb strings.Builder
	if v.HomeLabel != "" {
		fmt.Fprintf(&sb, "Home: %s (%s)\n\n", v.HomeLabel, v.Home)
	}
	for i, s := range v.Sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(s.Color)).Render(s.Name)
		fmt.Fprintf(&sb, "%s (%d)\n", title, len(s.Colleagues))
		if len(s.Colleagues) == 0 {
			sb.WriteString("  (empty)\n")
			continue
		}
		for _, c := range s.Colleagues {
			sb.WriteString("  " + c.line() + "\n")
		}
	}
	return sb.String()
}

func (c cardView) line() string {
	star := " "
	if c.Favorite {
		star = "*"
	}
	parts := []string{star + " " + c.Name, c.LocalTime, fmt.Sprintf("%s (%s)", c.Zone, c.Country)}
	if c.Offset != "" {
		parts = append(parts, c.Offset)
	}
	if c.Designation != "" {
		parts = append(parts, c.Designation)
	}
	return strings.Join(parts, "  ")
}

func (c cardView) Text() string {
	var sb strings.Builder
	sb.WriteString(c.line() + "\n")
	fmt.Fprintf(&sb, "  timezone: %s\n", c.Timezone)
	fmt.Fprintf(&sb, "  category: %s\n", c.Category)
	if c.Email != "" {
		fmt.Fprintf(&sb, "  email:    %s\n", c.Email)
	}
	if c.Phone != "" {
		fmt.Fprintf(&sb, "  phone:    %s\n", c.Phone)
	}
	return sb.String()
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one colleague's local time and details",
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
			b := t.Board()
			c, _ := b.Find(name)
			return writeOut(cmd, app, map[string]any{"data": newCardView(c, b.HomeLabel)})
		},
	}
}

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List colleagues grouped by category",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, done, err := openTeam(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			b := t.Board()
			return writeOut(cmd, app, map[string]any{
				"data": newBoardView(b),
				"meta": map[string]any{"count": len(t.DB().Colleagues)},
			})
		},
	}
}

func newWatchCmd(app *App) *cobra.Command {
	var (
		interval time.Duration
		once     bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-print the board on a schedule (default every minute)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval < time.Second {
				return writeErr(cmd, fmt.Errorf("--interval must be at least 1s (got %s)", interval))
			}
			t, done, err := openTeam(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := renderBoard(ctx, cmd, app, t, false); err != nil {
				return err
			}
			if once {
				return nil
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			var mu sync.Mutex
			c := cron.New()
			if _, err := c.AddFunc("@every "+interval.String(), func() {
				mu.Lock()
				defer mu.Unlock()
				if err := renderBoard(ctx, cmd, app, t, true); err != nil {
					app.log.Warn().Err(err).Msg("watch render failed")
				}
			}); err != nil {
				return writeErr(cmd, err)
			}
			c.Start()
			<-ctx.Done()
			<-c.Stop().Done()
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "Refresh interval")
	cmd.Flags().BoolVar(&once, "once", false, "Print once and exit")
	return cmd
}

// renderBoard writes the current board. reload picks up changes made by
// other processes since the last render.
func renderBoard(ctx context.Context, cmd *cobra.Command, app *App, t *team.Controller, reload bool) error {
	if reload {
		t.Reload(ctx)
	}
	return writeOut(cmd, app, map[string]any{"data": newBoardView(t.Board())})
}
