package main

import (
	"os"
	"strings"

	"teamtz/internal/cli"

	"github.com/joho/godotenv"
)

func isDirectLookup(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "@") && len(s) > 1
}

// rewriteDirectLookupArgs turns `teamtz @Ana` into `teamtz show Ana`.
// Persistent flags may come first, so the first positional token is what
// matters, not argv[1].
func rewriteDirectLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":       true,
		"--format":    true,
		"--log-level": true,
	}

	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "show", strings.TrimPrefix(strings.TrimSpace(argv[i]), "@"))
		out = append(out, argv[i+1:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isDirectLookup(argv[i+1]) {
				return rewrite(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if isDirectLookup(a) {
			return rewrite(i)
		}
		return argv
	}
	return argv
}

func main() {
	// TEAMTZ_* settings may live in a local .env; a missing file is fine.
	_ = godotenv.Load()

	os.Args = rewriteDirectLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
