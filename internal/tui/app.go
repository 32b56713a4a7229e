package tui

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"teamtz/internal/board"
	"teamtz/internal/contact"
	"teamtz/internal/dnd"
	"teamtz/internal/store"
	"teamtz/internal/team"
	"teamtz/internal/zone"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

const minibufferTTL = 4 * time.Second

type mode int

const (
	modeBoard mode = iota
	modeGrab
	modeForm
	modeConfirm
	modePicker
	modeSettings
	modeHelp
)

type (
	refreshTickMsg     time.Time
	minibufferClearMsg struct{ seq int }
	pingDoneMsg        struct {
		name string
		res  contact.Result
		err  error
	}
)

// openFunc opens the key-value store. The closer is released when the TUI
// exits.
type openFunc func(ctx context.Context) (store.KV, io.Closer, error)

type appDeps struct {
	open   openFunc
	clock  zone.Clock
	log    zerolog.Logger
	cfg    *store.Config
	state  store.Store
	opener contact.Opener
}

type appModel struct {
	ctx   context.Context
	open  openFunc
	clock zone.Clock
	log   zerolog.Logger
	cfg   *store.Config
	state store.Store

	team    *team.Controller
	closer  io.Closer
	initErr error

	width  int
	height int

	board  board.Board
	layout boardLayout
	sel    slot
	selIdx int
	scroll int

	expanded map[string]bool

	mode     mode
	drag     dnd.Controller
	catDrag  dnd.Controller
	form     *form
	confirm  *confirmDialog
	picker   *picker
	settings settingsPanel

	keys       keyMap
	help       help.Model
	helpScroll int

	dispatcher *contact.Dispatcher

	minibufferText string
	minibufferErr  bool
	minibufferSeq  int
}

func newAppModel(ctx context.Context, d appDeps) appModel {
	if d.cfg == nil {
		d.cfg = &store.Config{}
	}
	m := appModel{
		ctx:      ctx,
		open:     d.open,
		clock:    d.clock,
		log:      d.log,
		cfg:      d.cfg,
		state:    d.state,
		expanded: map[string]bool{},
		keys:     defaultKeyMap(),
		help:     help.New(),
	}
	m.dispatcher = contact.NewDispatcher(d.opener, d.cfg.SlackTeamID, d.log)
	m.load()

	if st, err := m.state.LoadTUIState(); err != nil {
		m.log.Warn().Err(err).Msg("tui state unavailable")
	} else {
		if st.Selected != "" {
			m.sel = slot{Name: st.Selected}
		}
		for _, n := range st.Expanded {
			m.expanded[n] = true
		}
		if st.ShowSettings && m.initErr == nil {
			m.mode = modeSettings
		}
	}
	m.relayout()
	return m
}

// load opens the store and reads state. Failures are kept in initErr and
// shown instead of the board.
func (m *appModel) load() {
	if m.closer != nil {
		_ = m.closer.Close()
		m.closer = nil
	}
	kv, closer, err := m.open(m.ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("open store")
		m.initErr = err
		m.team = nil
		return
	}
	m.initErr = nil
	m.closer = closer
	m.team = team.New(m.ctx, kv, m.clock, m.log)
	if m.cfg.TUI != nil && m.cfg.TUI.ShowSeconds {
		m.team.Engine().Layout = zone.ClockLayoutSeconds
	}
	if bad := m.team.InvalidTimezones(); len(bad) > 0 {
		m.log.Warn().Int("count", len(bad)).Msg("colleagues with unresolvable timezones")
	}
	m.board = m.team.Board()
}

func (m appModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(zone.RefreshInterval, func(t time.Time) tea.Msg { return refreshTickMsg(t) })
}

func (m *appModel) rebuild() {
	if m.team == nil {
		return
	}
	m.board = m.team.Board()
	m.relayout()
}

func (m *appModel) relayout() {
	slots := boardSlots(m.board)
	m.sel, m.selIdx = resolveSelection(slots, m.sel, m.selIdx)
	m.layout = m.computeLayout()
	m.ensureVisible()
}

func (m appModel) bodyHeight() int {
	h := m.height - headerHeight - 1
	if h < 1 {
		h = 1
	}
	return h
}

// ensureVisible scrolls so the selected slot (or the drop target during a
// keyboard grab) is on screen.
func (m *appModel) ensureVisible() {
	top, bottom := -1, -1
	if m.mode == modeGrab {
		if t, ok := m.drag.Target(); ok {
			for _, b := range m.layout.boxes {
				if b.Key == t.Key && b.Group == t.Group {
					top, bottom = b.Top, b.Bottom()
					break
				}
			}
		}
	}
	if top < 0 && m.selIdx >= 0 && m.selIdx < len(m.layout.slotTop) {
		top, bottom = m.layout.slotTop[m.selIdx], m.layout.slotBottom[m.selIdx]
		// Keep the section header in view for the first slot of a section.
		for _, s := range m.layout.sections {
			if s.Top == top-1 {
				top--
				break
			}
		}
	}
	h := m.bodyHeight()
	if top >= 0 {
		if top < m.scroll {
			m.scroll = top
		}
		if bottom > m.scroll+h {
			m.scroll = bottom - h
		}
	}
	m.clampScroll()
}

func (m *appModel) clampScroll() {
	maxScroll := len(m.layout.lines) - m.bodyHeight()
	if maxScroll < 0 {
		maxScroll = 0
	}
	if m.scroll > maxScroll {
		m.scroll = maxScroll
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

func (m *appModel) flash(text string, isErr bool) tea.Cmd {
	m.minibufferSeq++
	m.minibufferText, m.minibufferErr = text, isErr
	seq := m.minibufferSeq
	return tea.Tick(minibufferTTL, func(time.Time) tea.Msg { return minibufferClearMsg{seq: seq} })
}

// afterMutation rebuilds the board and reports the outcome. A persist
// failure keeps the in-memory change and says so.
func (m *appModel) afterMutation(err error, ok string) tea.Cmd {
	m.rebuild()
	var pe *team.PersistError
	switch {
	case err == nil:
		if ok == "" {
			return nil
		}
		return m.flash(ok, false)
	case errors.As(err, &pe):
		return m.flash(ok+" (not saved: "+pe.Err.Error()+")", true)
	default:
		return m.flash(err.Error(), true)
	}
}

func (m appModel) saveTUIState() {
	st := &store.TUIState{
		Version:      1,
		Selected:     m.sel.Name,
		ShowSettings: m.mode == modeSettings,
	}
	for n, open := range m.expanded {
		if open {
			st.Expanded = append(st.Expanded, n)
		}
	}
	sort.Strings(st.Expanded)
	if err := m.state.SaveTUIState(st); err != nil {
		m.log.Warn().Err(err).Msg("save tui state")
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.relayout()
		return m, nil

	case refreshTickMsg:
		if m.team != nil {
			board.RefreshTimes(&m.board, m.team.Engine())
			m.relayout()
		}
		return m, tickCmd()

	case minibufferClearMsg:
		if msg.seq == m.minibufferSeq {
			m.minibufferText, m.minibufferErr = "", false
		}
		return m, nil

	case pingDoneMsg:
		if msg.err != nil {
			cmd := m.flash(msg.err.Error(), true)
			return m, cmd
		}
		text := msg.res.Message(msg.name)
		if msg.res.Notice != "" {
			text = msg.res.Notice
		} else if msg.res.FellBack {
			text += " (web)"
		}
		cmd := m.flash(text, false)
		return m, cmd

	case clipboardDoneMsg:
		if msg.err != nil {
			cmd := m.flash("copy failed: "+msg.err.Error(), true)
			return m, cmd
		}
		cmd := m.flash("Copied: "+msg.text, false)
		return m, cmd

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		if m.initErr != nil {
			return m.updateInitError(msg)
		}
		switch m.mode {
		case modeGrab:
			return m.updateGrab(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		case modePicker:
			return m.updatePicker(msg)
		case modeSettings:
			return m.updateSettings(msg)
		case modeHelp:
			return m.updateHelp(msg)
		default:
			return m.updateBoard(msg)
		}
	}
	return m, nil
}

func (m appModel) updateInitError(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Reload):
		m.load()
		m.relayout()
		if m.initErr != nil {
			cmd := m.flash("still failing: "+m.initErr.Error(), true)
			return m, cmd
		}
		cmd := m.flash("Loaded", false)
		return m, cmd
	case key.Matches(msg, m.keys.Quit), msg.String() == "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m appModel) selectedColleague() (board.Card, bool) {
	if m.sel.anchor() {
		return board.Card{}, false
	}
	return m.board.Find(m.sel.Name)
}

func (m *appModel) moveSelection(delta int) {
	n := len(m.layout.slots)
	if n == 0 {
		return
	}
	i := m.selIdx + delta
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	m.selIdx = i
	m.sel = m.layout.slots[i]
	m.relayout()
}

func (m appModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		m.saveTUIState()
		return m, tea.Quit
	case key.Matches(msg, k.Up):
		m.moveSelection(-1)
	case key.Matches(msg, k.Down):
		m.moveSelection(1)
	case key.Matches(msg, k.PageUp):
		m.moveSelection(-5)
	case key.Matches(msg, k.PageDown):
		m.moveSelection(5)
	case key.Matches(msg, k.Expand):
		if !m.sel.anchor() {
			m.toggleExpanded(m.sel.Name)
		}
	case key.Matches(msg, k.Add):
		m.form = newColleagueForm(nil, modeBoard)
		m.mode = modeForm
	case key.Matches(msg, k.Settings):
		m.openSettings()
	case key.Matches(msg, k.Help):
		m.mode, m.helpScroll = modeHelp, 0
	case key.Matches(msg, k.Reload):
		m.team.Reload(m.ctx)
		cmd := m.afterMutation(nil, "Reloaded")
		return m, cmd
	default:
		if c, ok := m.selectedColleague(); ok {
			return m.runAction(actionForKey(k, msg), c)
		}
	}
	return m, nil
}

func actionForKey(k keyMap, msg tea.KeyMsg) string {
	switch {
	case key.Matches(msg, k.Ping):
		return "ping"
	case key.Matches(msg, k.Favorite):
		return "favorite"
	case key.Matches(msg, k.Edit):
		return "edit"
	case key.Matches(msg, k.Remove):
		return "remove"
	case key.Matches(msg, k.Category):
		return "category"
	case key.Matches(msg, k.Move):
		return "move"
	case key.Matches(msg, k.Copy):
		return "copy"
	}
	return ""
}

// runAction performs a card action for c, from a key or a click.
func (m appModel) runAction(action string, c board.Card) (tea.Model, tea.Cmd) {
	switch action {
	case "ping":
		m.picker = newChannelPicker(c.Name)
		m.mode = modePicker
	case "favorite":
		col, _, err := m.team.ToggleFavorite(m.ctx, c.Name)
		ok := "Removed " + c.Name + " from favorites"
		if col.Favorite {
			ok = "Added " + c.Name + " to favorites"
		}
		cmd := m.afterMutation(err, ok)
		return m, cmd
	case "edit":
		col, found := m.team.DB().FindColleague(c.Name)
		if !found {
			return m, nil
		}
		m.form = newColleagueForm(col, modeBoard)
		m.mode = modeForm
	case "remove":
		m.confirm = &confirmDialog{
			kind:    confirmRemoveColleague,
			subject: c.Name,
			title:   "Remove colleague",
			body:    "Remove " + c.Name + " from the board?",
			label:   "Remove",
			back:    modeBoard,
		}
		m.mode = modeConfirm
	case "category":
		m.picker = newCategoryPicker(c.Name, m.team.DB(), c.CategoryID)
		m.mode = modePicker
	case "expand":
		m.toggleExpanded(c.Name)
	case "move":
		m.startGrab(c)
	case "copy":
		return m, copyCmd(cardText(c, m.board.HomeLabel))
	}
	return m, nil
}

func (m *appModel) toggleExpanded(name string) {
	if m.expanded[name] {
		delete(m.expanded, name)
	} else {
		m.expanded[name] = true
	}
	m.relayout()
}

func cardText(c board.Card, homeLabel string) string {
	s := c.Name + ": " + c.LocalTime + " (" + c.ZoneLabel + ", " + c.Country + ")"
	if d := c.Diff(homeLabel); d != "" {
		s += ", " + d
	}
	return s
}

// grabTargets lists every insertion point for the keyboard grab in render
// order: before each other card, after the last one, or the anchor of a
// section with no other cards.
func (m appModel) grabTargets() []dnd.Target {
	key := m.drag.Key()
	var out []dnd.Target
	for _, sec := range m.board.Sections {
		var others []string
		for _, c := range sec.Cards {
			if c.Name != key {
				others = append(others, c.Name)
			}
		}
		if len(others) == 0 {
			out = append(out, dnd.Target{Group: sec.Category.ID})
			continue
		}
		for _, n := range others {
			out = append(out, dnd.Target{Key: n, Group: sec.Category.ID, Position: dnd.Before})
		}
		out = append(out, dnd.Target{Key: others[len(others)-1], Group: sec.Category.ID, Position: dnd.After})
	}
	return out
}

// homeTarget is the insertion point that leaves the grabbed card where it is.
func (m appModel) homeTarget() dnd.Target {
	key, origin := m.drag.Key(), m.drag.Origin()
	for _, sec := range m.board.Sections {
		if sec.Category.ID != origin {
			continue
		}
		var prev string
		for i, c := range sec.Cards {
			if c.Name != key {
				prev = c.Name
				continue
			}
			if i+1 < len(sec.Cards) {
				return dnd.Target{Key: sec.Cards[i+1].Name, Group: origin, Position: dnd.Before}
			}
			if prev != "" {
				return dnd.Target{Key: prev, Group: origin, Position: dnd.After}
			}
		}
	}
	return dnd.Target{Group: origin}
}

func (m *appModel) startGrab(c board.Card) {
	group := m.sel.Group
	if group == "" {
		group = c.CategoryID
	}
	if !m.drag.Grab(c.Name, group) {
		return
	}
	m.drag.SetTarget(m.homeTarget())
	m.mode = modeGrab
	m.relayout()
}

func (m appModel) updateGrab(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Cancel):
		m.drag.Cancel()
		m.mode = modeBoard
		m.relayout()
		return m, nil
	case key.Matches(msg, k.Drop):
		key, origin, t, ok := m.drag.Drop()
		m.mode = modeBoard
		if !ok {
			m.relayout()
			return m, nil
		}
		err := m.team.DropColleague(m.ctx, key, origin, t)
		m.sel = slot{Group: t.Group, Name: key}
		m.log.Debug().Str("name", key).Str("from", origin).Str("to", t.Group).Str("anchor", t.Key).Stringer("pos", t.Position).Msg("drop")
		cmd := m.afterMutation(err, "Moved "+key)
		return m, cmd
	}

	targets := m.grabTargets()
	if len(targets) == 0 {
		return m, nil
	}
	cur, _ := m.drag.Target()
	i := 0
	for j, t := range targets {
		if t == cur {
			i = j
			break
		}
	}
	switch {
	case key.Matches(msg, k.Up):
		i--
	case key.Matches(msg, k.Down):
		i++
	case msg.String() == "[":
		i = sectionJump(targets, i, -1)
	case msg.String() == "]":
		i = sectionJump(targets, i, 1)
	default:
		return m, nil
	}
	if i < 0 {
		i = 0
	}
	if i >= len(targets) {
		i = len(targets) - 1
	}
	m.drag.SetTarget(targets[i])
	m.relayout()
	return m, nil
}

// sectionJump returns the first target of the section before (dir < 0) or
// after (dir > 0) the one holding targets[i].
func sectionJump(targets []dnd.Target, i, dir int) int {
	group := targets[i].Group
	if dir > 0 {
		for j := i + 1; j < len(targets); j++ {
			if targets[j].Group != group {
				return j
			}
		}
		return i
	}
	j := i
	for j > 0 && targets[j-1].Group == group {
		j--
	}
	if j == 0 {
		return i
	}
	prev := targets[j-1].Group
	for j > 0 && targets[j-1].Group == prev {
		j--
	}
	return j
}

func (m appModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.initErr != nil || (m.mode != modeBoard && m.mode != modeGrab) {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scroll -= 3
		m.clampScroll()
		return m, nil
	case tea.MouseButtonWheelDown:
		m.scroll += 3
		m.clampScroll()
		return m, nil
	}

	y := msg.Y - headerHeight + m.scroll
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || m.mode != modeBoard || msg.Y < headerHeight {
			return m, nil
		}
		if a, ok := m.layout.actionAt(msg.X, y); ok {
			m.sel = slot{Group: a.Group, Name: a.Name}
			m.relayout()
			c, found := m.board.Find(a.Name)
			if !found {
				return m, nil
			}
			return m.runAction(a.Action, c)
		}
		if sec, ok := m.layout.sectionHeaderAt(y); ok {
			m.catDrag.Start(sec, msg.X, y)
			m.relayout()
			return m, nil
		}
		if b, ok := dnd.BoxAt(m.layout.boxes, y); ok {
			m.sel = slot{Group: b.Group, Name: b.Key}
			m.drag.Start(b, msg.X, y)
			m.relayout()
		}
		return m, nil

	case tea.MouseActionMotion:
		switch {
		case m.drag.Dragging():
			m.drag.Over(y, m.layout.boxes)
		case m.catDrag.Dragging():
			m.catDrag.Over(y, m.layout.sections)
		default:
			return m, nil
		}
		m.relayout()
		return m, nil

	case tea.MouseActionRelease:
		if m.drag.Dragging() {
			key, origin, t, ok := m.drag.Drop()
			if !ok {
				m.relayout()
				return m, nil
			}
			err := m.team.DropColleague(m.ctx, key, origin, t)
			m.sel = slot{Group: t.Group, Name: key}
			cmd := m.afterMutation(err, "Moved "+key)
			return m, cmd
		}
		if m.catDrag.Dragging() {
			key, _, t, ok := m.catDrag.Drop()
			if !ok || t.Key == key {
				m.relayout()
				return m, nil
			}
			err := m.team.MoveCategory(m.ctx, key, t.Key, t.Position, false)
			cmd := m.afterMutation(err, "Moved category")
			return m, cmd
		}
	}
	return m, nil
}

func (m appModel) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Help), msg.String() == "q":
		m.mode = modeBoard
	case key.Matches(msg, m.keys.Up):
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	case key.Matches(msg, m.keys.Down):
		m.helpScroll++
	}
	return m, nil
}

func (m appModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}
	if m.initErr != nil {
		body := styleError().Render(m.initErr.Error()) + "\n\n" +
			styleMuted().Render("press r to retry, q to quit")
		return m.placeCentered(renderModalBox(m.width, "Could not open team data", body))
	}

	switch m.mode {
	case modeForm:
		return m.placeCentered(m.form.view(m.width))
	case modeConfirm:
		c := m.confirm
		return m.placeCentered(renderConfirmModal(m.width, c.title, c.body, c.label, "Cancel", c.focus))
	case modePicker:
		return m.placeCentered(m.picker.view(m.width))
	case modeSettings:
		return m.placeCentered(m.settingsView())
	case modeHelp:
		return m.placeCentered(m.helpView())
	}

	lines := m.layout.lines
	h := m.bodyHeight()
	start := m.scroll
	if start > len(lines) {
		start = len(lines)
	}
	end := start + h
	if end > len(lines) {
		end = len(lines)
	}
	body := normalizePane(strings.Join(lines[start:end], "\n"), m.width, h)

	return m.headerView() + "\n\n" + body + "\n" + m.footerView()
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("Team timezones")
	home := styleMuted().Render("no home timezone (s to set)")
	if m.board.HomeTimezone != "" {
		home = "Home: " + m.board.HomeLabel + " " + styleMuted().Render("("+m.board.HomeTimezone+")")
	}
	right := ""
	if !m.board.At.IsZero() {
		right = styleMuted().Render(m.board.At.Format("Mon " + zone.ClockLayout))
	}
	return fitWidth(spread(title+"  "+home, right, m.width), m.width)
}

func (m appModel) footerView() string {
	if m.minibufferText != "" {
		st := lipgloss.NewStyle().Foreground(colorAccent)
		if m.minibufferErr {
			st = styleError()
		}
		return fitWidth(st.Render(m.minibufferText), m.width)
	}
	if m.mode == modeGrab {
		return fitWidth(m.help.View(grabKeys{m.keys}), m.width)
	}
	return fitWidth(m.help.View(boardKeys{m.keys}), m.width)
}
