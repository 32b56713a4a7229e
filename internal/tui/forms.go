package tui

import (
	"errors"
	"strings"

	"teamtz/internal/model"
	"teamtz/internal/mutate"
	"teamtz/internal/team"
	"teamtz/internal/zone"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formKind int

const (
	formAddColleague formKind = iota
	formEditColleague
	formAddCategory
	formEditCategory
	formHome
)

type formField struct {
	label string
	input textinput.Model
}

type form struct {
	kind  formKind
	title string
	// subject is the colleague name or category id being edited.
	subject string
	fields  []formField
	focus   int
	err     string
	back    mode
}

func newInput(placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.SetValue(value)
	return in
}

func newTimezoneInput(value string) textinput.Model {
	in := newInput("e.g. Asia/Kathmandu or UTC+5:45", value, 64)
	in.ShowSuggestions = true
	in.SetSuggestions(zone.CommonZones())
	return in
}

func newColleagueForm(c *model.Colleague, back mode) *form {
	f := &form{kind: formAddColleague, title: "Add colleague", back: back}
	var cur model.Colleague
	if c != nil {
		f.kind, f.title, f.subject = formEditColleague, "Edit "+c.Name, c.Name
		cur = *c
	}
	f.fields = []formField{
		{label: "Name", input: newInput("Ana", cur.Name, 64)},
		{label: "Timezone", input: newTimezoneInput(cur.Timezone)},
		{label: "Designation", input: newInput("optional", cur.Designation, 64)},
		{label: "Phone", input: newInput("optional", cur.Phone, 32)},
		{label: "Email", input: newInput("optional; used for Teams/Slack", cur.Email, 128)},
	}
	f.setFocus(0)
	return f
}

func newCategoryForm(c *model.Category, back mode) *form {
	f := &form{kind: formAddCategory, title: "New category", back: back}
	var cur model.Category
	if c != nil {
		f.kind, f.title, f.subject = formEditCategory, "Edit category "+c.Name, c.ID
		cur = *c
	}
	f.fields = []formField{
		{label: "Name", input: newInput("at least 2 characters", cur.Name, 40)},
		{label: "Color", input: newInput(model.DefaultCategoryColor, cur.Color, 7)},
	}
	f.setFocus(0)
	return f
}

func newHomeForm(current string, back mode) *form {
	f := &form{kind: formHome, title: "Home timezone", back: back}
	f.fields = []formField{{label: "Timezone", input: newTimezoneInput(current)}}
	f.setFocus(0)
	return f
}

func (f *form) setFocus(i int) {
	if i < 0 {
		i = len(f.fields) - 1
	}
	if i >= len(f.fields) {
		i = 0
	}
	for j := range f.fields {
		if j == i {
			f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
	f.focus = i
}

func (f *form) value(i int) string {
	if i < 0 || i >= len(f.fields) {
		return ""
	}
	return strings.TrimSpace(f.fields[i].input.Value())
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

// pendingSuggestion reports whether tab should complete the focused input
// rather than move focus.
func (f *form) pendingSuggestion() bool {
	in := f.fields[f.focus].input
	if !in.ShowSuggestions {
		return false
	}
	s := in.CurrentSuggestion()
	return s != "" && s != in.Value()
}

func (f *form) view(width int) string {
	bodyW := modalBodyWidth(width)
	label := lipgloss.NewStyle().Bold(true)
	var b strings.Builder
	for i, fld := range f.fields {
		if i > 0 {
			b.WriteString("\n")
		}
		l := fld.label
		if i == f.focus {
			l = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(l)
		} else {
			l = label.Render(l)
		}
		b.WriteString(l + "\n")
		b.WriteString(renderInputLine(bodyW, fld.input.View()))
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString("\n" + styleError().Width(bodyW).Render(f.err) + "\n")
	}
	b.WriteString("\n" + styleMuted().Width(bodyW).Render("tab: next field   enter: save   esc: cancel"))
	return renderModalBox(width, f.title, b.String())
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch msg.String() {
	case "esc", "ctrl+g":
		m.mode, m.form = f.back, nil
		return m, nil
	case "enter", "ctrl+s":
		return m.submitForm()
	case "tab":
		if f.pendingSuggestion() {
			return m, f.update(msg)
		}
		f.setFocus(f.focus + 1)
		return m, nil
	case "down":
		f.setFocus(f.focus + 1)
		return m, nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return m, nil
	}
	return m, f.update(msg)
}

// submitForm applies the form. Validation errors keep the form open with the
// message; anything else closes it.
func (m appModel) submitForm() (tea.Model, tea.Cmd) {
	f := m.form
	ctx := m.ctx
	var (
		err error
		ok  string
	)
	switch f.kind {
	case formAddColleague, formEditColleague:
		fields := model.ColleagueFields{
			Name:        f.value(0),
			Timezone:    f.value(1),
			Designation: f.value(2),
			Phone:       f.value(3),
			Email:       f.value(4),
		}
		var c model.Colleague
		if f.kind == formAddColleague {
			c, err = m.team.AddColleague(ctx, fields)
			ok = "Added " + fields.Name
		} else {
			c, err = m.team.EditColleague(ctx, f.subject, fields)
			ok = "Updated " + fields.Name
		}
		if c.Name != "" {
			m.sel = slot{Group: c.Category, Name: c.Name}
		}
	case formAddCategory:
		_, err = m.team.AddCategory(ctx, f.value(0), f.value(1))
		ok = "Added category " + f.value(0)
	case formEditCategory:
		var found bool
		_, found, err = m.team.UpdateCategory(ctx, f.subject, f.value(0), f.value(1))
		if err == nil && !found {
			err = mutate.NotFoundError{Kind: "category", ID: f.subject}
		}
		ok = "Updated category " + f.value(0)
	case formHome:
		err = m.team.SetHomeTimezone(ctx, f.value(0))
		ok = "Home timezone set to " + f.value(0)
	}

	var pe *team.PersistError
	if err != nil && !errors.As(err, &pe) {
		f.err = err.Error()
		return m, nil
	}
	m.mode, m.form = f.back, nil
	cmd := m.afterMutation(err, ok)
	return m, cmd
}
