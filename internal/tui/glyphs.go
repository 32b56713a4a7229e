package tui

import (
	"os"
	"strings"
	"sync"

	"teamtz/internal/store"
)

// Terminals can't change the user's font, so the TUI picks between a Unicode
// and an ASCII glyph set for stars, twisties and markers.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

// applyGlyphPreference reads TEAMTZ_TUI_GLYPHS, then [tui] glyphs from the
// config. Unknown values are ignored.
func applyGlyphPreference(cfg *store.Config) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("TEAMTZ_TUI_GLYPHS")))
	if v == "" && cfg != nil && cfg.TUI != nil {
		v = strings.ToLower(strings.TrimSpace(cfg.TUI.Glyphs))
	}
	switch v {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func glyphStar() string {
	if glyphs() == glyphSetASCII {
		return "*"
	}
	return "★"
}

func glyphTwistyCollapsed() string {
	if glyphs() == glyphSetASCII {
		return ">"
	}
	return "▸"
}

func glyphTwistyExpanded() string {
	if glyphs() == glyphSetASCII {
		return "v"
	}
	return "▾"
}

func glyphBullet() string {
	if glyphs() == glyphSetASCII {
		return "*"
	}
	return "•"
}

func glyphSwatch() string {
	if glyphs() == glyphSetASCII {
		return "#"
	}
	return "■"
}

func glyphDropBefore() string {
	if glyphs() == glyphSetASCII {
		return "^"
	}
	return "▲"
}

func glyphDropAfter() string {
	if glyphs() == glyphSetASCII {
		return "v"
	}
	return "▼"
}

func glyphArrow() string {
	if glyphs() == glyphSetASCII {
		return "->"
	}
	return "→"
}
