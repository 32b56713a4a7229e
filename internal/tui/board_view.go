package tui

import (
	"strconv"
	"strings"

	"teamtz/internal/board"
	"teamtz/internal/dnd"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// headerHeight is the number of screen rows above the scrolled board.
const headerHeight = 2

// slot is one keyboard-selectable row: a card, or the anchor of an empty
// section (Name == "").
type slot struct {
	Group string
	Name  string
}

func (s slot) anchor() bool { return s.Name == "" }

// cardAction is a clickable control inside a card, in content rows.
type cardAction struct {
	Row    int
	X0, X1 int
	Action string
	Group  string
	Name   string
}

// boardLayout is the rendered board plus everything needed to map screen
// positions back to elements. It is rebuilt after every state change.
type boardLayout struct {
	lines []string
	slots []slot
	// slotTop/slotBottom are the content rows occupied by each slot.
	slotTop    []int
	slotBottom []int

	// boxes holds card boxes and empty-section anchors for colleague drags.
	boxes []dnd.Box
	// sections spans each whole section for category drags; the header row
	// is the box Top.
	sections []dnd.Box
	actions  []cardAction
}

func (l boardLayout) actionAt(x, y int) (cardAction, bool) {
	for _, a := range l.actions {
		if a.Row == y && x >= a.X0 && x < a.X1 {
			return a, true
		}
	}
	return cardAction{}, false
}

// sectionHeaderAt returns the section whose header row is y.
func (l boardLayout) sectionHeaderAt(y int) (dnd.Box, bool) {
	for _, b := range l.sections {
		if b.Top == y {
			return b, true
		}
	}
	return dnd.Box{}, false
}

func (m appModel) boardWidth() int {
	w := m.width
	if w > 96 {
		w = 96
	}
	if w < 32 {
		w = 32
	}
	return w
}

type cardOptions struct {
	selected    bool
	expanded    bool
	placeholder bool
	drop        *dnd.Position
	compact     bool
}

func (m appModel) computeLayout() boardLayout {
	var l boardLayout
	if m.board.Empty {
		l.lines = []string{
			"",
			styleMuted().Render("  No colleagues yet. Press a to add one, or s for settings."),
		}
		return l
	}

	w := m.boardWidth()
	compact := m.cfg != nil && m.cfg.TUI != nil && m.cfg.TUI.Compact
	dropT, hasDrop := m.drag.Target()
	catT, hasCatDrop := m.catDrag.Target()
	cur := m.sel

	for si, sec := range m.board.Sections {
		if si > 0 {
			l.lines = append(l.lines, "")
		}
		secTop := len(l.lines)
		var catDrop *dnd.Position
		if hasCatDrop && catT.Key == sec.Category.ID {
			p := catT.Position
			catDrop = &p
		}
		l.lines = append(l.lines, renderSectionHeader(sec, w, m.catDrag.Key() == sec.Category.ID, catDrop))

		if len(sec.Cards) == 0 {
			top := len(l.lines)
			s := slot{Group: sec.Category.ID}
			targeted := hasDrop && dropT.Key == "" && dropT.Group == sec.Category.ID
			l.lines = append(l.lines, renderAnchor(w, cur == s, targeted))
			l.addSlot(s, top, top+1)
			l.boxes = append(l.boxes, dnd.Box{Group: sec.Category.ID, Top: top, Height: 1})
		}

		for ci, c := range sec.Cards {
			if ci > 0 && !compact {
				l.lines = append(l.lines, "")
			}
			s := slot{Group: sec.Category.ID, Name: c.Name}
			opts := cardOptions{
				selected:    cur == s,
				expanded:    m.expanded[c.Name],
				placeholder: m.drag.IsPlaceholder(c.Name, sec.Category.ID),
				compact:     compact,
			}
			if hasDrop && dropT.Key == c.Name && dropT.Group == sec.Category.ID {
				p := dropT.Position
				opts.drop = &p
			}
			body, acts := renderCard(c, m.board.HomeLabel, w, opts)
			top := len(l.lines)
			lines := strings.Split(body, "\n")
			l.lines = append(l.lines, lines...)
			l.addSlot(s, top, top+len(lines))

			box := dnd.Box{Key: c.Name, Group: sec.Category.ID, Top: top, Height: len(lines)}
			for _, a := range acts {
				a.Row += top
				a.Group, a.Name = s.Group, s.Name
				l.actions = append(l.actions, a)
				box.Actions = append(box.Actions, dnd.Span{Row: a.Row, X0: a.X0, X1: a.X1})
			}
			l.boxes = append(l.boxes, box)
		}
		l.sections = append(l.sections, dnd.Box{Key: sec.Category.ID, Top: secTop, Height: len(l.lines) - secTop})
	}
	return l
}

// boardSlots lists the selectable slots of b in render order.
func boardSlots(b board.Board) []slot {
	var out []slot
	for _, sec := range b.Sections {
		if len(sec.Cards) == 0 {
			out = append(out, slot{Group: sec.Category.ID})
			continue
		}
		for _, c := range sec.Cards {
			out = append(out, slot{Group: sec.Category.ID, Name: c.Name})
		}
	}
	return out
}

// resolveSelection keeps sel when it still exists, then tries the same
// colleague in another section, then the slot at the previous index. An
// empty selection lands on the first card.
func resolveSelection(slots []slot, sel slot, prevIdx int) (slot, int) {
	if len(slots) == 0 {
		return slot{}, 0
	}
	if sel != (slot{}) {
		for i, s := range slots {
			if s == sel {
				return s, i
			}
		}
		if !sel.anchor() {
			for i, s := range slots {
				if s.Name == sel.Name {
					return s, i
				}
			}
		}
		i := prevIdx
		if i >= len(slots) {
			i = len(slots) - 1
		}
		if i < 0 {
			i = 0
		}
		return slots[i], i
	}
	for i, s := range slots {
		if !s.anchor() {
			return s, i
		}
	}
	return slots[0], 0
}

func (l *boardLayout) addSlot(s slot, top, bottom int) {
	l.slots = append(l.slots, s)
	l.slotTop = append(l.slotTop, top)
	l.slotBottom = append(l.slotBottom, bottom)
}

func renderSectionHeader(sec board.Section, w int, dragging bool, drop *dnd.Position) string {
	swatch := lipgloss.NewStyle().Foreground(categoryColor(sec.Category.Color)).Render(glyphSwatch())
	name := lipgloss.NewStyle().Bold(true).Render(sec.Category.Name)
	count := styleMuted().Render(" (" + strconv.Itoa(len(sec.Cards)) + ")")
	line := swatch + " " + name + count
	if dragging {
		line = styleMuted().Render(glyphSwatch() + " " + sec.Category.Name + " (moving)")
	}
	if drop != nil {
		marker := glyphDropBefore() + " drop above"
		if *drop == dnd.After {
			marker = glyphDropAfter() + " drop below"
		}
		line += "  " + lipgloss.NewStyle().Foreground(colorAccent).Render(marker)
	}
	return truncate(line, w)
}

func renderAnchor(w int, selected, targeted bool) string {
	text := "  (empty) drag colleagues here"
	st := styleMuted()
	if targeted {
		text = "  " + glyphArrow() + " drop here"
		st = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	}
	if selected {
		st = st.Background(colorSelectedBg)
	}
	return st.Render(truncate(text, w))
}

// renderCard renders one colleague card and returns the clickable actions
// with rows relative to the card's first line.
func renderCard(c board.Card, homeLabel string, w int, opts cardOptions) (string, []cardAction) {
	innerW := w - 4
	if innerW < 10 {
		innerW = 10
	}

	name := c.Name
	if c.Favorite {
		name = lipgloss.NewStyle().Foreground(colorFavorite).Render(glyphStar()) + " " + name
	}
	twisty := glyphTwistyCollapsed()
	if opts.expanded {
		twisty = glyphTwistyExpanded()
	}
	left := twisty + " " + lipgloss.NewStyle().Bold(true).Render(name)
	if c.Designation != "" {
		left += styleMuted().Render(" " + glyphBullet() + " " + c.Designation)
	}
	right := lipgloss.NewStyle().Bold(true).Render(c.LocalTime)
	if opts.drop != nil {
		marker := glyphDropBefore()
		if *opts.drop == dnd.After {
			marker = glyphDropAfter()
		}
		right = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(marker) + " " + right
	}
	lines := []string{spread(left, right, innerW)}

	where := c.ZoneLabel + " (" + c.Country + ")"
	if d := c.Diff(homeLabel); d != "" {
		where += " " + glyphBullet() + " " + d
	}
	badge := lipgloss.NewStyle().Foreground(categoryColor(c.CategoryColor)).Render(glyphSwatch() + " " + c.CategoryName)
	lines = append(lines, spread(styleMuted().Render(where), badge, innerW))

	if opts.expanded {
		detail := func(label, v string) string {
			if strings.TrimSpace(v) == "" {
				v = "-"
			}
			return truncate(styleMuted().Render(label)+" "+v, innerW)
		}
		lines = append(lines,
			detail("timezone", c.Timezone),
			detail("category", c.CategoryName+"  (c to change)"),
			detail("email   ", c.Email),
			detail("phone   ", c.Phone),
		)
	}

	var acts []cardAction
	if !opts.compact || opts.expanded || opts.selected {
		fav := "fav"
		if c.Favorite {
			fav = "unfav"
		}
		more := "more"
		if opts.expanded {
			more = "less"
		}
		row := len(lines) + 1 // +1 for the top border
		var sb strings.Builder
		x := 2 // border + padding
		for i, a := range []struct{ key, label, action string }{
			{"p", "ping", "ping"},
			{"f", fav, "favorite"},
			{"e", "edit", "edit"},
			{"x", "remove", "remove"},
			{"enter", more, "expand"},
		} {
			if i > 0 {
				sb.WriteString("  ")
				x += 2
			}
			seg := "[" + a.key + "] " + a.label
			sb.WriteString(seg)
			acts = append(acts, cardAction{Row: row, X0: x, X1: x + xansi.StringWidth(seg), Action: a.action})
			x += xansi.StringWidth(seg)
		}
		lines = append(lines, styleMuted().Render(truncate(sb.String(), innerW)))
	}

	border := lipgloss.RoundedBorder()
	borderColor := categoryColor(c.CategoryColor)
	if opts.selected {
		border = lipgloss.ThickBorder()
		borderColor = colorSelectedBorder
	}
	if opts.drop != nil {
		borderColor = colorAccent
	}
	st := lipgloss.NewStyle().
		Border(border).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(w - 2)
	body := strings.Join(lines, "\n")
	if opts.placeholder {
		st = st.Faint(true)
		body = styleMuted().Render(xansi.Strip(body))
	}
	return st.Render(body), acts
}

// spread places left and right at the edges of a width-w line.
func spread(left, right string, w int) string {
	rw := xansi.StringWidth(right)
	left = truncate(left, w-rw-1)
	gap := w - xansi.StringWidth(left) - rw
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
