package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// newEnv isolates config and data dirs. The returned func runs a command
// against the data dir and fails the test on error.
func newEnv(t *testing.T) (dir string, run func(args ...string) map[string]any) {
	t.Helper()

	t.Setenv("TEAMTZ_CONFIG_DIR", t.TempDir())
	t.Setenv("TEAMTZ_DIR", "")
	t.Setenv("TEAMTZ_FORMAT", "")
	dir = filepath.Join(t.TempDir(), "data")

	run = func(args ...string) map[string]any {
		t.Helper()
		out, errOut, err := runCLI(t, append([]string{"--dir", dir}, args...))
		if err != nil {
			t.Fatalf("%v: %v\nstderr: %s", args, err, string(errOut))
		}
		var env map[string]any
		if err := json.Unmarshal(out, &env); err != nil {
			t.Fatalf("%v: decode: %v\n%s", args, err, string(out))
		}
		return env
	}
	return dir, run
}

func sectionNames(t *testing.T, env map[string]any) map[string][]string {
	t.Helper()
	data := env["data"].(map[string]any)
	out := map[string][]string{}
	secs, _ := data["sections"].([]any)
	for _, s := range secs {
		sec := s.(map[string]any)
		names := []string{}
		for _, c := range sec["colleagues"].([]any) {
			names = append(names, c.(map[string]any)["name"].(string))
		}
		out[sec["id"].(string)] = names
	}
	return out
}

func TestCLI_AddListRemove(t *testing.T) {
	dir, run := newEnv(t)

	env := run("list")
	if env["data"].(map[string]any)["empty"] != true {
		t.Fatalf("expected empty board, got %#v", env)
	}

	env = run("add", "Ana", "Asia/Manila", "--email", "ana@example.com")
	if env["data"].(map[string]any)["category"] != "general" {
		t.Fatalf("add: %#v", env)
	}

	_, stderr, err := runCLI(t, []string{"--dir", dir, "add", "ana", "Europe/London"})
	if err == nil || !strings.Contains(string(stderr), "already exists") {
		t.Fatalf("expected duplicate error, err=%v stderr=%s", err, string(stderr))
	}

	secs := sectionNames(t, run("list"))
	if got := secs["general"]; len(got) != 1 || got[0] != "Ana" {
		t.Fatalf("general: %#v", secs)
	}
	if got, ok := secs["favorites"]; !ok || len(got) != 0 {
		t.Fatalf("favorites should be present and empty: %#v", secs)
	}

	env = run("rm", "ANA")
	if env["data"].(map[string]any)["removed"] != true {
		t.Fatalf("rm: %#v", env)
	}
	if run("list")["data"].(map[string]any)["empty"] != true {
		t.Fatalf("expected empty after rm")
	}
}

func TestCLI_InvalidTimezoneRejected(t *testing.T) {
	dir, run := newEnv(t)

	_, _, err := runCLI(t, []string{"--dir", dir, "add", "Bo", "Moon/Base"})
	if err == nil {
		t.Fatalf("expected invalid timezone error")
	}
	if run("list")["data"].(map[string]any)["empty"] != true {
		t.Fatalf("failed add must not store anything")
	}
}

func TestCLI_HomeOffsetAndShow(t *testing.T) {
	_, run := newEnv(t)

	run("add", "Ana", "Asia/Manila")
	env := run("home", "Asia/Kathmandu")
	if env["data"].(map[string]any)["timezone"] != "Asia/Kathmandu" {
		t.Fatalf("home: %#v", env)
	}

	card := run("show", "ana")["data"].(map[string]any)
	if card["name"] != "Ana" || card["offsetHours"] != 2.25 {
		t.Fatalf("show: %#v", card)
	}
	if !strings.Contains(card["offset"].(string), "Nepal") {
		t.Fatalf("offset should mention home label: %#v", card)
	}
}

func TestCLI_FavoritesAndCategories(t *testing.T) {
	_, run := newEnv(t)

	run("add", "Ana", "UTC")
	run("add", "Bo", "UTC")
	run("categories", "add", "Sales", "--color", "#F00")
	run("set-category", "Bo", "sales")
	run("fav", "Bo")

	secs := sectionNames(t, run("list"))
	if got := secs["favorites"]; len(got) != 1 || got[0] != "Bo" {
		t.Fatalf("favorites: %#v", secs)
	}
	if got := secs["sales"]; len(got) != 1 || got[0] != "Bo" {
		t.Fatalf("sales: %#v", secs)
	}

	cats := run("categories", "list")["data"].([]any)
	var sales map[string]any
	for _, c := range cats {
		if m := c.(map[string]any); m["id"] == "sales" {
			sales = m
		}
	}
	if sales == nil || sales["color"] != "#ff0000" || sales["members"] != float64(1) {
		t.Fatalf("sales category: %#v", cats)
	}

	run("categories", "edit", "sales", "--name", "Revenue")
	env := run("categories", "rm", "sales")
	if env["data"].(map[string]any)["reassigned"] != float64(1) {
		t.Fatalf("rm category: %#v", env)
	}
	secs = sectionNames(t, run("list"))
	if _, ok := secs["sales"]; ok {
		t.Fatalf("sales should be gone: %#v", secs)
	}
	if got := secs["general"]; len(got) != 2 {
		t.Fatalf("general: %#v", secs)
	}
	// Favorite flag survives the category delete.
	if got := secs["favorites"]; len(got) != 1 || got[0] != "Bo" {
		t.Fatalf("favorites after delete: %#v", secs)
	}
}

func TestCLI_ProtectedCategories(t *testing.T) {
	dir, _ := newEnv(t)

	for _, args := range [][]string{
		{"categories", "rm", "general"},
		{"categories", "rm", "favorites"},
		{"categories", "edit", "favorites", "--color", "#000"},
		{"categories", "edit", "general", "--name", "Other"},
	} {
		if _, _, err := runCLI(t, append([]string{"--dir", dir}, args...)); err == nil {
			t.Fatalf("%v: expected error", args)
		}
	}
}

func TestCLI_MoveFollowsDropRules(t *testing.T) {
	_, run := newEnv(t)

	for _, n := range []string{"Ana", "Bo", "Cy"} {
		run("add", n, "UTC")
	}
	run("move", "Cy", "--to", "general", "--before", "Ana")
	secs := sectionNames(t, run("list"))
	if got := strings.Join(secs["general"], ","); got != "Cy,Ana,Bo" {
		t.Fatalf("general order: %s", got)
	}

	env := run("move", "Bo", "--to", "favorites")
	if env["data"].(map[string]any)["favorite"] != true || env["data"].(map[string]any)["category"] != "general" {
		t.Fatalf("into favorites: %#v", env)
	}

	run("categories", "add", "Ops")
	env = run("move", "Bo", "--from", "favorites", "--to", "ops")
	d := env["data"].(map[string]any)
	if d["favorite"] != false || d["category"] != "ops" {
		t.Fatalf("out of favorites: %#v", d)
	}
}

func TestCLI_CategoryMove(t *testing.T) {
	_, run := newEnv(t)

	run("categories", "add", "Sales")
	env := run("categories", "move", "sales", "--before", "favorites")
	order := env["data"].([]any)
	if len(order) != 3 || order[0] != "sales" {
		t.Fatalf("order: %#v", order)
	}
}

func TestCLI_PingDryRun(t *testing.T) {
	dir, run := newEnv(t)

	run("add", "Ana", "UTC", "--email", "ana@example.com")
	d := run("ping", "Ana", "teams", "--dry-run")["data"].(map[string]any)
	if d["appUrl"] != "msteams://teams.microsoft.com/l/chat/0/0?users=ana%40example.com" {
		t.Fatalf("teams: %#v", d)
	}

	_, stderr, err := runCLI(t, []string{"--dir", dir, "ping", "Ana", "phone", "--dry-run"})
	if err == nil || !strings.Contains(string(stderr), "phone number") {
		t.Fatalf("expected missing phone, err=%v stderr=%s", err, string(stderr))
	}
	if _, _, err := runCLI(t, []string{"--dir", dir, "ping", "Ana", "pager"}); err == nil {
		t.Fatalf("expected unknown channel error")
	}
}

func TestCLI_TextFormat(t *testing.T) {
	dir, run := newEnv(t)

	run("add", "Ana", "Asia/Manila", "--designation", "Engineer")
	out, _, err := runCLI(t, []string{"--dir", dir, "--format", "text", "list"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "General") || !strings.Contains(s, "(1)") || !strings.Contains(s, "Ana") || !strings.Contains(s, "Engineer") {
		t.Fatalf("unexpected text output:\n%s", s)
	}
}

func TestCLI_WatchOnce(t *testing.T) {
	dir, run := newEnv(t)

	run("add", "Ana", "UTC")
	out, _, err := runCLI(t, []string{"--dir", dir, "watch", "--once"})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if !bytes.Contains(out, []byte(`"Ana"`)) {
		t.Fatalf("watch output: %s", string(out))
	}
	if _, _, err := runCLI(t, []string{"--dir", dir, "watch", "--once", "--interval", "10ms"}); err == nil {
		t.Fatalf("expected interval validation error")
	}
}

func TestCLI_ConfigSet(t *testing.T) {
	_, run := newEnv(t)

	env := run("config", "set", "slack_team_id", "T42")
	if env["data"].(map[string]any)["SlackTeamID"] != "T42" {
		t.Fatalf("config: %#v", env)
	}
	env = run("config", "set", "tui.show_seconds", "true")
	tui := env["data"].(map[string]any)["TUI"].(map[string]any)
	if tui["ShowSeconds"] != true {
		t.Fatalf("tui config: %#v", env)
	}
	if run("config", "show")["data"].(map[string]any)["SlackTeamID"] != "T42" {
		t.Fatalf("config not persisted")
	}
}

func TestCLI_DocsAndDoctor(t *testing.T) {
	dir, run := newEnv(t)

	topics := run("docs")["data"].(map[string]any)["topics"].([]any)
	if len(topics) == 0 {
		t.Fatalf("expected docs topics")
	}
	out, _, err := runCLI(t, []string{"--dir", dir, "docs", "keys", "--raw"})
	if err != nil || !strings.HasPrefix(string(out), "#") {
		t.Fatalf("docs raw: err=%v out=%q", err, string(out))
	}

	run("add", "Ana", "UTC")
	env := run("doctor", "--fail")
	if env["meta"].(map[string]any)["hasErrors"] != false {
		t.Fatalf("doctor: %#v", env)
	}
}

func TestCLI_Publish(t *testing.T) {
	dir, run := newEnv(t)
	run("add", "Ana", "Asia/Kathmandu", "--email", "ana@example.com")

	outDir := filepath.Join(t.TempDir(), "site")
	env := run("publish", "--to", outDir, "--sections")
	written, _ := env["data"].(map[string]any)["written"].([]any)
	if len(written) != 3 {
		t.Fatalf("expected team.md plus two category pages, got %v", written)
	}
	b, err := os.ReadFile(filepath.Join(outDir, "team.md"))
	if err != nil {
		t.Fatalf("read team.md: %v", err)
	}
	if !strings.Contains(string(b), "| Ana |") {
		t.Fatalf("unexpected team.md:\n%s", b)
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "publish", "--to", outDir}); err == nil {
		t.Fatalf("expected file exists error without --overwrite")
	}
}
