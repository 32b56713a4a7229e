package tui

import (
	"errors"
	"strconv"
	"strings"

	"teamtz/internal/dnd"
	"teamtz/internal/docs"
	"teamtz/internal/model"
	"teamtz/internal/mutate"
	"teamtz/internal/team"
	"teamtz/internal/zone"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// settingsPanel edits the home timezone and the managed category list.
// Favorites is not listed; it keeps its slot when others are reordered.
type settingsPanel struct {
	cursor int
}

func (m appModel) managedCategories() []model.Category {
	var out []model.Category
	for _, c := range m.team.DB().Categories {
		if c.ID != model.FavoritesID {
			out = append(out, c)
		}
	}
	return out
}

func (m *appModel) openSettings() {
	m.mode = modeSettings
	if n := len(m.managedCategories()); m.settings.cursor >= n {
		m.settings.cursor = n - 1
	}
	if m.settings.cursor < 0 {
		m.settings.cursor = 0
	}
}

func (m appModel) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	cats := m.managedCategories()
	cur := m.settings.cursor
	var sel model.Category
	if cur >= 0 && cur < len(cats) {
		sel = cats[cur]
	}

	switch {
	case key.Matches(msg, k.Cancel), key.Matches(msg, k.Settings), msg.String() == "q":
		m.mode = modeBoard
		m.relayout()
	case key.Matches(msg, k.MoveUp):
		if cur <= 0 {
			return m, nil
		}
		err := m.team.MoveCategory(m.ctx, sel.ID, cats[cur-1].ID, dnd.Before, true)
		if moved(err) {
			m.settings.cursor--
		}
		cmd := m.afterMutation(err, "")
		return m, cmd
	case key.Matches(msg, k.MoveDown):
		if cur >= len(cats)-1 {
			return m, nil
		}
		err := m.team.MoveCategory(m.ctx, sel.ID, cats[cur+1].ID, dnd.After, true)
		if moved(err) {
			m.settings.cursor++
		}
		cmd := m.afterMutation(err, "")
		return m, cmd
	case key.Matches(msg, k.Up):
		if cur > 0 {
			m.settings.cursor--
		}
	case key.Matches(msg, k.Down):
		if cur < len(cats)-1 {
			m.settings.cursor++
		}
	case key.Matches(msg, k.Home):
		m.form = newHomeForm(m.team.DB().HomeTimezone, modeSettings)
		m.mode = modeForm
	case key.Matches(msg, k.NewCategory):
		m.form = newCategoryForm(nil, modeSettings)
		m.mode = modeForm
	case key.Matches(msg, k.Edit), msg.String() == "enter":
		if sel.ID == "" {
			return m, nil
		}
		m.form = newCategoryForm(&sel, modeSettings)
		m.mode = modeForm
	case key.Matches(msg, k.Delete):
		if sel.ID == "" {
			return m, nil
		}
		if model.IsBuiltin(sel.ID) {
			cmd := m.flash(sel.Name+" is built in and can't be deleted", true)
			return m, cmd
		}
		body := "Delete " + sel.Name + "?"
		if n := mutate.MemberCount(m.team.DB(), sel.ID); n > 0 {
			body += " " + plural(n, "colleague") + " will move to General."
		}
		m.confirm = &confirmDialog{
			kind:    confirmDeleteCategory,
			subject: sel.ID,
			title:   "Delete category",
			body:    body,
			label:   "Delete",
			back:    modeSettings,
		}
		m.mode = modeConfirm
	}
	return m, nil
}

// moved reports whether a mutation took effect in memory, saved or not.
func moved(err error) bool {
	var pe *team.PersistError
	return err == nil || errors.As(err, &pe)
}

func (m appModel) settingsView() string {
	bodyW := modalBodyWidth(m.width)
	db := m.team.DB()
	var b strings.Builder

	home := styleMuted().Render("not set")
	if db.HomeTimezone != "" {
		home = zone.FriendlyName(db.HomeTimezone) + " " + styleMuted().Render("("+db.HomeTimezone+")")
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Home timezone") + "  " + home + "\n\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Categories") + "\n")

	for i, c := range m.managedCategories() {
		swatch := lipgloss.NewStyle().Foreground(categoryColor(c.Color)).Render(glyphSwatch())
		line := " " + swatch + " " + c.Name + styleMuted().Render(" ("+strconv.Itoa(mutate.MemberCount(db, c.ID))+")")
		if model.IsBuiltin(c.ID) {
			line += styleMuted().Render("  built in")
		}
		line = fitWidth(line, bodyW)
		if i == m.settings.cursor {
			line = lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorSelectedFg).Render(line)
		}
		b.WriteString(line + "\n")
	}
	if m.minibufferText != "" {
		st := lipgloss.NewStyle().Foreground(colorAccent)
		if m.minibufferErr {
			st = styleError()
		}
		b.WriteString("\n" + st.Width(bodyW).Render(m.minibufferText) + "\n")
	}
	h := m.help
	h.Width = bodyW
	b.WriteString("\n" + h.View(settingsKeys{m.keys}))
	return renderModalBox(m.width, "Settings", b.String())
}

func (m appModel) helpView() string {
	bodyW := modalBodyWidth(m.width)
	md, _ := docs.Get("keys")
	content := renderMarkdown(md, bodyW)
	h := m.help
	h.Width = bodyW
	content += "\n\n" + h.FullHelpView(boardKeys{m.keys}.FullHelp())

	lines := strings.Split(content, "\n")
	maxH := m.height - 6
	if maxH < 3 {
		maxH = 3
	}
	start := m.helpScroll
	if start > len(lines)-1 {
		start = len(lines) - 1
	}
	if start < 0 {
		start = 0
	}
	end := start + maxH
	if end > len(lines) {
		end = len(lines)
	}
	return renderModalBox(m.width, "Help", strings.Join(lines[start:end], "\n"))
}
