package tui

import (
	"context"
	"strconv"
	"strings"

	"teamtz/internal/contact"
	"teamtz/internal/model"
	"teamtz/internal/store"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type pickerKind int

const (
	pickChannel pickerKind = iota
	pickCategory
)

type pickerItem struct {
	// shortcut selects the item directly; empty means none.
	shortcut string
	label    string
	value    string
	color    string
}

type picker struct {
	kind    pickerKind
	title   string
	subject string
	items   []pickerItem
	cursor  int
}

var channelShortcuts = map[contact.Channel]string{
	contact.Teams:   "t",
	contact.Slack:   "s",
	contact.Discord: "d",
	contact.Email:   "m",
	contact.Phone:   "c",
}

func newChannelPicker(name string) *picker {
	p := &picker{kind: pickChannel, title: "Ping " + name, subject: name}
	for _, ch := range contact.Channels() {
		label := string(ch)
		if ch == contact.Phone {
			label = "phone (call)"
		}
		p.items = append(p.items, pickerItem{shortcut: channelShortcuts[ch], label: label, value: string(ch)})
	}
	return p
}

// newCategoryPicker lists the categories a colleague can belong to;
// favorites is an overlay and not offered.
func newCategoryPicker(name string, db *store.DB, current string) *picker {
	p := &picker{kind: pickCategory, title: "Category for " + name, subject: name}
	for _, c := range db.Categories {
		if c.ID == model.FavoritesID {
			continue
		}
		if c.ID == current {
			p.cursor = len(p.items)
		}
		p.items = append(p.items, pickerItem{label: c.Name, value: c.ID, color: c.Color})
	}
	return p
}

func (p *picker) view(width int) string {
	bodyW := modalBodyWidth(width)
	var b strings.Builder
	for i, it := range p.items {
		prefix := "    "
		if it.shortcut != "" {
			prefix = "[" + it.shortcut + "] "
		}
		label := it.label
		if it.color != "" {
			label = lipgloss.NewStyle().Foreground(categoryColor(it.color)).Render(glyphSwatch()) + " " + label
		}
		line := fitWidth(" "+prefix+label, bodyW)
		if i == p.cursor {
			line = lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorSelectedFg).Bold(true).Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + styleMuted().Width(bodyW).Render("j/k: move   enter: choose   esc: cancel"))
	return renderModalBox(width, p.title, b.String())
}

func (m appModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.picker
	switch {
	case key.Matches(msg, m.keys.Cancel), msg.String() == "q":
		m.mode, m.picker = modeBoard, nil
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if p.cursor < len(p.items)-1 {
			p.cursor++
		}
		return m, nil
	case msg.String() == "enter":
		return m.choose(p.items[p.cursor])
	}
	for _, it := range p.items {
		if it.shortcut != "" && msg.String() == it.shortcut {
			return m.choose(it)
		}
	}
	return m, nil
}

func (m appModel) choose(it pickerItem) (tea.Model, tea.Cmd) {
	p := m.picker
	m.mode, m.picker = modeBoard, nil
	switch p.kind {
	case pickChannel:
		col, ok := m.team.DB().FindColleague(p.subject)
		if !ok {
			return m, nil
		}
		return m, pingCmd(m.ctx, m.dispatcher, *col, contact.Channel(it.value))
	case pickCategory:
		_, err := m.team.SetCategory(m.ctx, p.subject, it.value)
		cmd := m.afterMutation(err, "Moved "+p.subject+" to "+it.label)
		return m, cmd
	}
	return m, nil
}

func pingCmd(ctx context.Context, d *contact.Dispatcher, c model.Colleague, ch contact.Channel) tea.Cmd {
	return func() tea.Msg {
		res, err := d.Dispatch(ctx, c, ch)
		return pingDoneMsg{name: c.Name, res: res, err: err}
	}
}

type confirmKind int

const (
	confirmRemoveColleague confirmKind = iota
	confirmDeleteCategory
)

type confirmDialog struct {
	kind    confirmKind
	subject string
	title   string
	body    string
	label   string
	focus   confirmModalFocus
	back    mode
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.confirm
	switch msg.String() {
	case "esc", "ctrl+g", "n", "q":
		m.mode, m.confirm = c.back, nil
		return m, nil
	case "tab", "shift+tab", "left", "right", "h", "l":
		if c.focus == confirmFocusConfirm {
			c.focus = confirmFocusCancel
		} else {
			c.focus = confirmFocusConfirm
		}
		return m, nil
	case "enter":
		if c.focus == confirmFocusCancel {
			m.mode, m.confirm = c.back, nil
			return m, nil
		}
	case "y":
	default:
		return m, nil
	}

	m.mode, m.confirm = c.back, nil
	var (
		err error
		ok  string
	)
	switch c.kind {
	case confirmRemoveColleague:
		_, err = m.team.RemoveColleague(m.ctx, c.subject)
		delete(m.expanded, c.subject)
		ok = "Removed " + c.subject
	case confirmDeleteCategory:
		var n int
		n, err = m.team.DeleteCategory(m.ctx, c.subject)
		ok = "Deleted category"
		if n > 0 {
			ok += "; " + plural(n, "colleague") + " moved to General"
		}
		if m.settings.cursor > 0 {
			m.settings.cursor--
		}
	}
	cmd := m.afterMutation(err, ok)
	return m, cmd
}

func plural(n int, word string) string {
	s := strconv.Itoa(n) + " " + word
	if n != 1 {
		s += "s"
	}
	return s
}
