package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"teamtz/internal/board"
	"teamtz/internal/contact"
	"teamtz/internal/dnd"
	"teamtz/internal/model"
	"teamtz/internal/store"
	"teamtz/internal/team"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time { return c.t }

type failingKV struct{ *store.MemoryKV }

func (failingKV) Put(context.Context, map[string]string) error { return errors.New("disk full") }

func seedKV(t *testing.T, colleagues ...model.ColleagueFields) *store.MemoryKV {
	t.Helper()
	kv := store.NewMemoryKV()
	tc := team.New(context.Background(), kv, &stepClock{}, zerolog.Nop())
	for _, f := range colleagues {
		if f.Timezone == "" {
			f.Timezone = "UTC"
		}
		if _, err := tc.AddColleague(context.Background(), f); err != nil {
			t.Fatalf("seed %s: %v", f.Name, err)
		}
	}
	return kv
}

func names(ns ...string) []model.ColleagueFields {
	out := make([]model.ColleagueFields, 0, len(ns))
	for _, n := range ns {
		out = append(out, model.ColleagueFields{Name: n})
	}
	return out
}

func newTestModel(t *testing.T, kv store.KV, clock *stepClock, opener contact.Opener) appModel {
	t.Helper()
	if clock == nil {
		clock = &stepClock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	}
	m := newAppModel(context.Background(), appDeps{
		open:   func(context.Context) (store.KV, io.Closer, error) { return kv, nil, nil },
		clock:  clock,
		log:    zerolog.Nop(),
		opener: opener,
	})
	return send(m, tea.WindowSizeMsg{Width: 80, Height: 40})
}

func send(m appModel, msgs ...tea.Msg) appModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(appModel)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
)

func sectionNames(m appModel, id string) []string {
	for _, s := range m.board.Sections {
		if s.Category.ID != id {
			continue
		}
		out := []string{}
		for _, c := range s.Cards {
			out = append(out, c.Name)
		}
		return out
	}
	return nil
}

func boxFor(t *testing.T, m appModel, name, group string) dnd.Box {
	t.Helper()
	for _, b := range m.layout.boxes {
		if b.Key == name && b.Group == group {
			return b
		}
	}
	t.Fatalf("no box for %s in %s", name, group)
	return dnd.Box{}
}

func screenY(m appModel, contentRow int) int {
	return contentRow + headerHeight - m.scroll
}

func TestEmptyBoardShowsHint(t *testing.T) {
	m := newTestModel(t, store.NewMemoryKV(), nil, nil)
	if !m.board.Empty {
		t.Fatalf("expected empty board")
	}
	if v := m.View(); !strings.Contains(v, "No colleagues yet") {
		t.Fatalf("expected empty hint, got:\n%s", v)
	}
}

func TestAddColleagueThroughForm(t *testing.T) {
	m := newTestModel(t, store.NewMemoryKV(), nil, nil)

	m = send(m, runes("a"))
	if m.mode != modeForm || m.form == nil {
		t.Fatalf("expected add form, mode=%v", m.mode)
	}
	m = send(m, runes("Ana"), tab, runes("Mars/Base"), enter)
	if m.mode != modeForm || !strings.Contains(m.form.err, "invalid timezone") {
		t.Fatalf("expected validation error to keep the form open, mode=%v err=%q", m.mode, m.form.err)
	}

	for range "Mars/Base" {
		m = send(m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m = send(m, runes("UTC"), enter)
	if m.mode != modeBoard {
		t.Fatalf("expected board after submit, mode=%v", m.mode)
	}
	if got := m.team.DB().Colleagues; len(got) != 1 || got[0].Name != "Ana" || got[0].Timezone != "UTC" {
		t.Fatalf("unexpected colleagues: %+v", got)
	}
	if m.sel.Name != "Ana" {
		t.Fatalf("expected new colleague selected, got %+v", m.sel)
	}
	if !strings.Contains(m.minibufferText, "Added Ana") {
		t.Fatalf("expected confirmation, got %q", m.minibufferText)
	}
}

func TestFavoriteToggleAddsToFavoritesSection(t *testing.T) {
	m := newTestModel(t, seedKV(t, names("Ana")...), nil, nil)
	if m.sel != (slot{Group: model.GeneralID, Name: "Ana"}) {
		t.Fatalf("expected Ana selected, got %+v", m.sel)
	}

	m = send(m, runes("f"))
	col, _ := m.team.DB().FindColleague("Ana")
	if !col.Favorite || col.Category != model.GeneralID {
		t.Fatalf("expected favorite in general, got %+v", col)
	}
	if got := sectionNames(m, model.FavoritesID); len(got) != 1 || got[0] != "Ana" {
		t.Fatalf("expected Ana under favorites, got %v", got)
	}

	m = send(m, runes("f"))
	if got := sectionNames(m, model.FavoritesID); len(got) != 0 {
		t.Fatalf("expected empty favorites, got %v", got)
	}
}

func TestRemoveAsksFirst(t *testing.T) {
	m := newTestModel(t, seedKV(t, names("Ana")...), nil, nil)

	m = send(m, runes("x"))
	if m.mode != modeConfirm {
		t.Fatalf("expected confirm, mode=%v", m.mode)
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if len(m.team.DB().Colleagues) != 1 {
		t.Fatalf("esc must not remove")
	}

	m = send(m, runes("x"), runes("y"))
	if len(m.team.DB().Colleagues) != 0 || !m.board.Empty {
		t.Fatalf("expected colleague removed")
	}
}

func TestKeyboardGrabReorders(t *testing.T) {
	m := newTestModel(t, seedKV(t, names("Ana", "Bo", "Cy")...), nil, nil)

	m = send(m, runes("m"))
	if m.mode != modeGrab || m.drag.Key() != "Ana" {
		t.Fatalf("expected Ana grabbed, mode=%v key=%q", m.mode, m.drag.Key())
	}
	tgt, _ := m.drag.Target()
	if tgt != (dnd.Target{Key: "Bo", Group: model.GeneralID, Position: dnd.Before}) {
		t.Fatalf("expected grab to start in place, got %+v", tgt)
	}

	m = send(m, runes("j"), enter)
	if m.mode != modeBoard {
		t.Fatalf("expected board after drop, mode=%v", m.mode)
	}
	if got := strings.Join(sectionNames(m, model.GeneralID), ","); got != "Bo,Ana,Cy" {
		t.Fatalf("unexpected order: %s", got)
	}
	if m.sel.Name != "Ana" {
		t.Fatalf("expected moved card to stay selected, got %+v", m.sel)
	}
}

func TestKeyboardGrabIntoFavorites(t *testing.T) {
	m := newTestModel(t, seedKV(t, names("Ana", "Bo")...), nil, nil)

	m = send(m, runes("m"), runes("k"), enter)
	col, _ := m.team.DB().FindColleague("Ana")
	if !col.Favorite || col.Category != model.GeneralID {
		t.Fatalf("expected favorite kept in general, got %+v", col)
	}
	if got := strings.Join(sectionNames(m, model.GeneralID), ","); got != "Ana,Bo" {
		t.Fatalf("general order changed: %s", got)
	}
}

func TestKeyboardGrabCancel(t *testing.T) {
	m := newTestModel(t, seedKV(t, names("Ana", "Bo")...), nil, nil)

	m = send(m, runes("m"), runes("j"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeBoard || m.drag.Dragging() {
		t.Fatalf("expected drag cancelled")
	}
	if got := strings.Join(sectionNames(m, model.GeneralID), ","); got != "Ana,Bo" {
		t.Fatalf("cancel must not reorder: %s", got)
	}
}

func TestMouseDragReorders(t *testing.T) {
	m := newTestModel(t, seedKV(t, names("Ana", "Bo", "Cy")...), nil, nil)

	ana := boxFor(t, m, "Ana", model.GeneralID)
	cy := boxFor(t, m, "Cy", model.GeneralID)
	m = send(m,
		tea.MouseMsg{X: 5, Y: screenY(m, ana.Top), Button: tea.MouseButtonLeft, Action: tea.MouseActionPress},
	)
	if !m.drag.Dragging() {
		t.Fatalf("expected drag to start")
	}
	m = send(m,
		tea.MouseMsg{X: 5, Y: screenY(m, cy.Bottom()-1), Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion},
	)
	tgt, ok := m.drag.Target()
	if !ok || tgt.Key != "Cy" || tgt.Position != dnd.After {
		t.Fatalf("expected after Cy, got %+v ok=%v", tgt, ok)
	}
	m = send(m,
		tea.MouseMsg{X: 5, Y: screenY(m, cy.Bottom()-1), Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease},
	)
	if got := strings.Join(sectionNames(m, model.GeneralID), ","); got != "Bo,Cy,Ana" {
		t.Fatalf("unexpected order: %s", got)
	}
}

func TestMouseClickWithoutMoveOnlySelects(t *testing.T) {
	m := newTestModel(t, seedKV(t, names("Ana", "Bo")...), nil, nil)

	bo := boxFor(t, m, "Bo", model.GeneralID)
	y := screenY(m, bo.Top)
	m = send(m,
		tea.MouseMsg{X: 5, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress},
		tea.MouseMsg{X: 5, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease},
	)
	if m.sel.Name != "Bo" {
		t.Fatalf("expected Bo selected, got %+v", m.sel)
	}
	if got := strings.Join(sectionNames(m, model.GeneralID), ","); got != "Ana,Bo" {
		t.Fatalf("click must not reorder: %s", got)
	}
}

func TestCardButtonDoesNotStartDrag(t *testing.T) {
	m := newTestModel(t, seedKV(t, names("Ana")...), nil, nil)

	var fav cardAction
	for _, a := range m.layout.actions {
		if a.Name == "Ana" && a.Action == "favorite" {
			fav = a
		}
	}
	if fav.Action == "" {
		t.Fatalf("favorite button not rendered")
	}
	m = send(m, tea.MouseMsg{X: fav.X0, Y: screenY(m, fav.Row), Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if m.drag.Dragging() {
		t.Fatalf("button press must not start a drag")
	}
	col, _ := m.team.DB().FindColleague("Ana")
	if !col.Favorite {
		t.Fatalf("expected button to toggle favorite")
	}
}

func TestCardShowsCategoryBadge(t *testing.T) {
	c := board.Card{Name: "Ana", ZoneLabel: "Nepal", Country: "NP", CategoryName: "Sales", CategoryColor: "#ff0000", Favorite: true, InFavorites: true}
	out, _ := renderCard(c, "", 60, cardOptions{})
	lines := strings.Split(out, "\n")
	if len(lines) < 3 || !strings.Contains(lines[2], "Nepal") || !strings.Contains(lines[2], "Sales") {
		t.Fatalf("expected category badge on the zone line, got:\n%s", out)
	}
}

func TestCardExpandButton(t *testing.T) {
	m := newTestModel(t, seedKV(t, names("Ana")...), nil, nil)

	var more cardAction
	for _, a := range m.layout.actions {
		if a.Name == "Ana" && a.Action == "expand" {
			more = a
		}
	}
	if more.Action == "" {
		t.Fatalf("expand button not rendered")
	}
	m = send(m, tea.MouseMsg{X: more.X0, Y: screenY(m, more.Row), Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if m.drag.Dragging() || !m.expanded["Ana"] {
		t.Fatalf("expected expand without drag: expanded=%v", m.expanded)
	}
	if !strings.Contains(strings.Join(m.layout.lines, "\n"), "timezone") {
		t.Fatalf("expected detail rows after expanding")
	}
}

func TestInitErrorRetry(t *testing.T) {
	kv := seedKV(t, names("Ana")...)
	calls := 0
	m := newAppModel(context.Background(), appDeps{
		open: func(context.Context) (store.KV, io.Closer, error) {
			calls++
			if calls == 1 {
				return nil, nil, errors.New("database is locked")
			}
			return kv, nil, nil
		},
		clock: &stepClock{},
		log:   zerolog.Nop(),
	})
	m = send(m, tea.WindowSizeMsg{Width: 80, Height: 30})
	if v := m.View(); !strings.Contains(v, "database is locked") {
		t.Fatalf("expected error panel, got:\n%s", v)
	}

	m = send(m, runes("r"))
	if m.initErr != nil || m.team == nil {
		t.Fatalf("expected reload to succeed: %v", m.initErr)
	}
	if _, ok := m.board.Find("Ana"); !ok {
		t.Fatalf("expected board loaded after retry")
	}
}

func TestRefreshTickUpdatesTimes(t *testing.T) {
	clock := &stepClock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	m := newTestModel(t, seedKV(t, names("Ana")...), clock, nil)

	before, _ := m.board.Find("Ana")
	clock.t = clock.t.Add(time.Minute)
	next, cmd := m.Update(refreshTickMsg(clock.t))
	m = next.(appModel)
	if cmd == nil {
		t.Fatalf("expected the tick to be rescheduled")
	}
	after, _ := m.board.Find("Ana")
	if before.LocalTime == after.LocalTime {
		t.Fatalf("expected local time to change, still %q", after.LocalTime)
	}
}

func TestPingOpensChannel(t *testing.T) {
	kv := seedKV(t, model.ColleagueFields{Name: "Ana", Email: "ana@example.com"})
	var opened []string
	opener := contact.FuncOpener(func(_ context.Context, target string) error {
		opened = append(opened, target)
		return nil
	})
	m := newTestModel(t, kv, nil, opener)

	m = send(m, runes("p"))
	if m.mode != modePicker || m.picker == nil || m.picker.kind != pickChannel {
		t.Fatalf("expected channel picker")
	}
	next, cmd := m.Update(runes("m"))
	m = next.(appModel)
	if cmd == nil {
		t.Fatalf("expected ping command")
	}
	m = send(m, cmd())
	if len(opened) != 1 || !strings.HasPrefix(opened[0], "mailto:ana@example.com") {
		t.Fatalf("unexpected open calls: %v", opened)
	}
	if !strings.Contains(m.minibufferText, "Opening email for Ana") {
		t.Fatalf("unexpected message: %q", m.minibufferText)
	}
}

func TestPingEmailWithoutAddress(t *testing.T) {
	opener := contact.FuncOpener(func(context.Context, string) error {
		t.Fatalf("nothing should be opened")
		return nil
	})
	m := newTestModel(t, seedKV(t, names("Ana")...), nil, opener)

	next, cmd := send(m, runes("p")).Update(runes("m"))
	m = send(next.(appModel), cmd())
	if !m.minibufferErr || !strings.Contains(m.minibufferText, "email address") {
		t.Fatalf("expected missing email error, got %q", m.minibufferText)
	}
}

func TestCategoryPickerMovesColleague(t *testing.T) {
	kv := seedKV(t, names("Ana")...)
	tc := team.New(context.Background(), kv, &stepClock{}, zerolog.Nop())
	if _, err := tc.AddCategory(context.Background(), "Design", ""); err != nil {
		t.Fatalf("add category: %v", err)
	}
	m := newTestModel(t, kv, nil, nil)

	m = send(m, runes("c"))
	if m.mode != modePicker || m.picker.kind != pickCategory {
		t.Fatalf("expected category picker")
	}
	for _, it := range m.picker.items {
		if it.value == model.FavoritesID {
			t.Fatalf("favorites must not be offered")
		}
	}
	m = send(m, runes("j"), enter)
	col, _ := m.team.DB().FindColleague("Ana")
	if col.Category != "design" {
		t.Fatalf("expected design, got %q", col.Category)
	}
	if got := sectionNames(m, "design"); len(got) != 1 {
		t.Fatalf("expected Ana under Design, got %v", got)
	}
}

func TestSettingsAddCategoryAndHome(t *testing.T) {
	m := newTestModel(t, seedKV(t, names("Ana")...), nil, nil)

	m = send(m, runes("s"))
	if m.mode != modeSettings {
		t.Fatalf("expected settings, mode=%v", m.mode)
	}
	m = send(m, runes("n"), runes("Design"), enter)
	if m.mode != modeSettings {
		t.Fatalf("expected back in settings, mode=%v", m.mode)
	}
	if _, ok := m.team.DB().FindCategory("design"); !ok {
		t.Fatalf("expected design category")
	}

	m = send(m, runes("h"), runes("UTC+5:45"), enter)
	if got := m.team.DB().HomeTimezone; got != "UTC+5:45" {
		t.Fatalf("expected home timezone, got %q", got)
	}
	if !strings.Contains(m.settingsView(), "Design") {
		t.Fatalf("settings view should list the new category")
	}
}

func TestSettingsMoveCategoryFollowsCursor(t *testing.T) {
	m := newTestModel(t, seedKV(t, names("Ana")...), nil, nil)

	m = send(m, runes("s"), runes("n"), runes("Design"), enter)
	if m.settings.cursor != 0 {
		t.Fatalf("expected cursor on General, got %d", m.settings.cursor)
	}
	m = send(m, runes("J"))
	if got := strings.Join(m.team.DB().CategoryOrder(), ","); got != "favorites,design,general" {
		t.Fatalf("order: %s", got)
	}
	if m.settings.cursor != 1 {
		t.Fatalf("cursor should follow the moved row, got %d", m.settings.cursor)
	}

	if moved(errors.New("category not found")) {
		t.Fatalf("a failed move must not shift the cursor")
	}
	if !moved(&team.PersistError{Keys: []string{store.KeyCategoryOrder}, Err: errors.New("disk full")}) {
		t.Fatalf("an unsaved move still happened in memory")
	}
}

func TestSettingsRefusesBuiltinDelete(t *testing.T) {
	m := newTestModel(t, seedKV(t, names("Ana")...), nil, nil)

	m = send(m, runes("s"), runes("d"))
	if m.mode != modeSettings {
		t.Fatalf("expected to stay in settings, mode=%v", m.mode)
	}
	if !m.minibufferErr {
		t.Fatalf("expected an error for deleting General")
	}
	if _, ok := m.team.DB().FindCategory(model.GeneralID); !ok {
		t.Fatalf("general must survive")
	}
}

func TestPersistFailureKeepsChange(t *testing.T) {
	kv := failingKV{seedKV(t, names("Ana")...)}
	m := newTestModel(t, kv, nil, nil)

	m = send(m, runes("f"))
	col, _ := m.team.DB().FindColleague("Ana")
	if !col.Favorite {
		t.Fatalf("in-memory change should be kept")
	}
	if !m.minibufferErr || !strings.Contains(m.minibufferText, "not saved") {
		t.Fatalf("expected persist warning, got %q", m.minibufferText)
	}
}

func TestResolveSelection(t *testing.T) {
	slots := []slot{{Group: "favorites"}, {Group: "general", Name: "Ana"}, {Group: "general", Name: "Bo"}}

	s, i := resolveSelection(slots, slot{}, 0)
	if s.Name != "Ana" || i != 1 {
		t.Fatalf("empty selection should land on the first card, got %+v %d", s, i)
	}
	s, _ = resolveSelection(slots, slot{Group: "favorites", Name: "Bo"}, 0)
	if s != (slot{Group: "general", Name: "Bo"}) {
		t.Fatalf("expected fallback by name, got %+v", s)
	}
	s, i = resolveSelection(slots, slot{Group: "general", Name: "Zed"}, 5)
	if i != 2 || s.Name != "Bo" {
		t.Fatalf("expected clamp to last slot, got %+v %d", s, i)
	}
}

func TestCardTextForClipboard(t *testing.T) {
	c := board.Card{Name: "Ana", LocalTime: "09:00 AM", ZoneLabel: "Nepal", Country: "NP", OffsetText: "2 hrs ahead"}
	if got := cardText(c, "London"); got != "Ana: 09:00 AM (Nepal, NP), 2 hrs ahead London" {
		t.Fatalf("unexpected text: %q", got)
	}
}
