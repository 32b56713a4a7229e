// Package publish exports the board as markdown files.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"teamtz/internal/board"
)

type WriteOptions struct {
	IncludeContacts bool
	Overwrite       bool
	// Sections also writes one page per category under categories/.
	Sections bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteBoard writes <toDir>/team.md and, with Sections, one
// categories/<id>.md per section.
func WriteBoard(b board.Board, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)
	if err := os.MkdirAll(toDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	ro := RenderOptions{IncludeContacts: opt.IncludeContacts}

	indexPath := filepath.Join(toDir, "team.md")
	if err := writeFile(indexPath, []byte(RenderBoardMarkdown(b, ro)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	written := []string{indexPath}
	if !opt.Sections || b.Empty {
		return WriteResult{Written: written}, nil
	}

	catDir := filepath.Join(toDir, "categories")
	if err := os.MkdirAll(catDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	// Stop on the first error; earlier files stay written.
	for _, sec := range b.Sections {
		p := filepath.Join(catDir, sec.Category.ID+".md")
		if err := writeFile(p, []byte(RenderSectionMarkdown(b, sec, ro)), opt.Overwrite); err != nil {
			return WriteResult{Written: written}, err
		}
		written = append(written, p)
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
