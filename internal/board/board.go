// Package board derives the grouped-by-category view from state.
//
// The favorites section is a query over the colleague list: a favorited
// colleague appears under favorites and under its own category. Rendering is
// a pure function of the state; nothing here is persisted.
package board

import (
	"time"

	"teamtz/internal/model"
	"teamtz/internal/store"
	"teamtz/internal/zone"
)

// Group is one category with the names of its members in colleague order.
type Group struct {
	ID    string
	Names []string
}

// Groups returns every category in display order with its members,
// including empty categories. A colleague whose category is unknown is
// listed under general.
func Groups(db *store.DB) []Group {
	out := make([]Group, 0, len(db.Categories))
	idx := make(map[string]int, len(db.Categories))
	for _, c := range db.Categories {
		idx[c.ID] = len(out)
		out = append(out, Group{ID: c.ID, Names: []string{}})
	}
	for _, c := range db.Colleagues {
		cat := c.Category
		if _, ok := idx[cat]; !ok || cat == model.FavoritesID {
			cat = model.GeneralID
		}
		if i, ok := idx[cat]; ok {
			out[i].Names = append(out[i].Names, c.Name)
		}
		if c.Favorite {
			if i, ok := idx[model.FavoritesID]; ok {
				out[i].Names = append(out[i].Names, c.Name)
			}
		}
	}
	return out
}

type Card struct {
	Name     string
	Timezone string

	LocalTime string
	// ZoneLabel is the friendly name of Timezone ("Nepal", "London").
	ZoneLabel string
	Country   string

	// OffsetHours is relative to the home timezone; positive is ahead.
	OffsetHours float64
	OffsetText  string

	CategoryID    string
	CategoryName  string
	CategoryColor string

	Favorite bool
	// InFavorites is set on the copy of the card listed under favorites.
	InFavorites bool

	Designation string
	Phone       string
	Email       string
}

// Diff renders the offset line, e.g. "2 hrs ahead Nepal". Empty when no home
// timezone is configured.
func (c Card) Diff(homeLabel string) string {
	if homeLabel == "" {
		return ""
	}
	return c.OffsetText + " " + homeLabel
}

type Section struct {
	Category model.Category
	Cards    []Card
}

type Board struct {
	Sections []Section
	// Empty is set when there are no colleagues at all; Sections is nil then.
	Empty bool

	HomeTimezone string
	HomeLabel    string
	At           time.Time
}

// Build renders the full board. Non-built-in categories without members are
// omitted; favorites and general are always present.
func Build(db *store.DB, eng *zone.Engine) Board {
	b := Board{
		HomeTimezone: db.HomeTimezone,
		At:           eng.Now(),
	}
	if db.HomeTimezone != "" {
		b.HomeLabel = zone.FriendlyName(db.HomeTimezone)
	}
	if len(db.Colleagues) == 0 {
		b.Empty = true
		return b
	}

	byName := make(map[string]model.Colleague, len(db.Colleagues))
	for _, c := range db.Colleagues {
		if _, dup := byName[c.Name]; !dup {
			byName[c.Name] = c
		}
	}
	for _, g := range Groups(db) {
		if len(g.Names) == 0 && !model.IsBuiltin(g.ID) {
			continue
		}
		cat, _ := db.FindCategory(g.ID)
		sec := Section{Category: *cat, Cards: make([]Card, 0, len(g.Names))}
		for _, name := range g.Names {
			sec.Cards = append(sec.Cards, card(db, byName[name], g.ID == model.FavoritesID, eng))
		}
		b.Sections = append(b.Sections, sec)
	}
	return b
}

func card(db *store.DB, c model.Colleague, inFavorites bool, eng *zone.Engine) Card {
	out := Card{
		Name:        c.Name,
		Timezone:    c.Timezone,
		ZoneLabel:   zone.FriendlyName(c.Timezone),
		Country:     zone.CountryCode(c.Timezone),
		CategoryID:  c.Category,
		Favorite:    c.Favorite,
		InFavorites: inFavorites,
		Designation: c.Designation,
		Phone:       c.Phone,
		Email:       c.Email,
	}
	cat, ok := db.FindCategory(c.Category)
	if !ok || c.Category == model.FavoritesID {
		g := model.GeneralCategory()
		cat = &g
		out.CategoryID = g.ID
	}
	out.CategoryName = cat.Name
	out.CategoryColor = cat.Color
	fillTimes(&out, db.HomeTimezone, eng)
	return out
}

func fillTimes(c *Card, home string, eng *zone.Engine) {
	c.LocalTime = eng.LocalTime(c.Timezone)
	c.OffsetHours = eng.Offset(c.Timezone, home)
	c.OffsetText = zone.FormatOffset(c.OffsetHours)
}

// RefreshTimes patches the time-dependent fields in place. Section and card
// structure is left untouched.
func RefreshTimes(b *Board, eng *zone.Engine) {
	b.At = eng.Now()
	for si := range b.Sections {
		for ci := range b.Sections[si].Cards {
			fillTimes(&b.Sections[si].Cards[ci], b.HomeTimezone, eng)
		}
	}
}

// Find returns the first card for name, searching sections in order.
func (b Board) Find(name string) (Card, bool) {
	for _, s := range b.Sections {
		for _, c := range s.Cards {
			if c.Name == name {
				return c, true
			}
		}
	}
	return Card{}, false
}

// Count is the number of cards across all sections, duplicates included.
func (b Board) Count() int {
	n := 0
	for _, s := range b.Sections {
		n += len(s.Cards)
	}
	return n
}
