package publish

import (
	"bytes"
	"fmt"
	"strings"

	"teamtz/internal/board"
)

type RenderOptions struct {
	// IncludeContacts adds designation, email and phone to each entry.
	IncludeContacts bool
}

// RenderBoardMarkdown renders every section of b as one document.
func RenderBoardMarkdown(b board.Board, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# Team timezones")
	writeLn("")
	writeMeta(writeLn, b)

	if b.Empty {
		writeLn("No colleagues.")
		return buf.String()
	}
	for _, sec := range b.Sections {
		writeLn("## " + sec.Category.Name)
		writeLn("")
		writeSection(writeLn, b, sec, opt)
	}
	return buf.String()
}

// RenderSectionMarkdown renders a single category page.
func RenderSectionMarkdown(b board.Board, sec board.Section, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + sec.Category.Name)
	writeLn("")
	writeMeta(writeLn, b)
	writeLn("- Category: " + sec.Category.ID + " (" + sec.Category.Color + ")")
	writeLn("")
	writeSection(writeLn, b, sec, opt)
	return buf.String()
}

func writeMeta(writeLn func(string), b board.Board) {
	if b.HomeTimezone != "" {
		writeLn("- Home: " + b.HomeLabel + " (" + b.HomeTimezone + ")")
	}
	writeLn("- Generated: " + b.At.UTC().Format("2006-01-02 15:04 MST"))
	writeLn("")
}

func writeSection(writeLn func(string), b board.Board, sec board.Section, opt RenderOptions) {
	if len(sec.Cards) == 0 {
		writeLn("_(empty)_")
		writeLn("")
		return
	}
	writeLn("| Name | Local time | Zone | Offset |")
	writeLn("|---|---|---|---|")
	for _, c := range sec.Cards {
		name := escapeCell(c.Name)
		if c.Favorite {
			name += " ★"
		}
		offset := "-"
		if b.HomeTimezone != "" {
			offset = c.Diff(b.HomeLabel)
		}
		writeLn(fmt.Sprintf("| %s | %s | %s (%s) | %s |",
			name, c.LocalTime, escapeCell(c.ZoneLabel), c.Country, escapeCell(offset)))
	}
	writeLn("")

	if !opt.IncludeContacts {
		return
	}
	for _, c := range sec.Cards {
		var parts []string
		if v := strings.TrimSpace(c.Designation); v != "" {
			parts = append(parts, v)
		}
		if v := strings.TrimSpace(c.Email); v != "" {
			parts = append(parts, "<"+v+">")
		}
		if v := strings.TrimSpace(c.Phone); v != "" {
			parts = append(parts, "tel: "+v)
		}
		if len(parts) == 0 {
			continue
		}
		writeLn("- **" + c.Name + "**: " + strings.Join(parts, ", "))
	}
	writeLn("")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "|", `\|`)
}

