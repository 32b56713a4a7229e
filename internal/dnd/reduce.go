package dnd

import (
	"fmt"

	"teamtz/internal/board"
	"teamtz/internal/model"
	"teamtz/internal/store"
)

// ApplyColleagueDrop moves colleague name, dragged out of group from, to
// target. Membership follows the drop:
//   - into favorites: favorite=true, category kept
//   - out of favorites: favorite=false
//   - into another concrete category: category set, favorite=false
//
// The colleague sequence is then rebuilt from the grouped lists, target
// group first, keeping the first occurrence of each name. A favorited member
// is listed under favorites too, so the target's order has to win.
func ApplyColleagueDrop(db *store.DB, name, from string, t Target) error {
	c, ok := db.FindColleague(name)
	if !ok {
		return fmt.Errorf("drop: colleague not found: %s", name)
	}
	if _, ok := db.FindCategory(t.Group); !ok {
		return fmt.Errorf("drop: category not found: %s", t.Group)
	}

	fav, cat := c.Favorite, c.Category
	if t.Group == model.FavoritesID {
		fav = true
	} else {
		if from == model.FavoritesID {
			fav = false
		}
		if cat != t.Group {
			cat = t.Group
			fav = false
		}
	}

	groups := board.Groups(db)
	for i := range groups {
		g := &groups[i]
		switch {
		case g.ID == from || g.ID == t.Group:
			g.Names = without(g.Names, name)
		case g.ID == model.FavoritesID && !fav:
			g.Names = without(g.Names, name)
		case g.ID != model.FavoritesID && cat != c.Category:
			// Leaving the old home category.
			g.Names = without(g.Names, name)
		}
	}
	for i := range groups {
		if groups[i].ID == t.Group {
			groups[i].Names = insertAt(groups[i].Names, name, t.Key, t.Position)
		}
	}

	c.Favorite, c.Category = fav, cat
	db.Colleagues = rebuild(db.Colleagues, groups, t.Group)
	return nil
}

// rebuild orders colleagues by their first appearance in groups, reading
// group first before the rest. Colleagues that appear in no group keep their
// relative order at the end.
func rebuild(cs []model.Colleague, groups []board.Group, first string) []model.Colleague {
	byName := make(map[string]model.Colleague, len(cs))
	for _, c := range cs {
		if _, ok := byName[c.Name]; !ok {
			byName[c.Name] = c
		}
	}
	ordered := make([]board.Group, 0, len(groups))
	for _, g := range groups {
		if g.ID == first {
			ordered = append(ordered, g)
		}
	}
	for _, g := range groups {
		if g.ID != first {
			ordered = append(ordered, g)
		}
	}
	seen := make(map[string]bool, len(cs))
	out := make([]model.Colleague, 0, len(cs))
	for _, g := range ordered {
		for _, n := range g.Names {
			if seen[n] {
				continue
			}
			if c, ok := byName[n]; ok {
				seen[n] = true
				out = append(out, c)
			}
		}
	}
	for _, c := range cs {
		if !seen[c.Name] {
			seen[c.Name] = true
			out = append(out, c)
		}
	}
	return out
}

func without(names []string, name string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// insertAt places name before/after anchor. A missing or empty anchor
// appends.
func insertAt(names []string, name, anchor string, pos Position) []string {
	idx := -1
	if anchor != "" {
		for i, n := range names {
			if n == anchor {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return append(names, name)
	}
	if pos == After {
		idx++
	}
	out := make([]string, 0, len(names)+1)
	out = append(out, names[:idx]...)
	out = append(out, name)
	out = append(out, names[idx:]...)
	return out
}

// MoveCategory moves dragged next to target in ids and returns the new
// sequence. The destination index is computed after the source is removed,
// so moving an earlier element forward lands exactly next to the target.
// Unknown ids, or dragged == target, return a copy of ids.
func MoveCategory(ids []string, dragged, target string, pos Position) []string {
	out := append([]string(nil), ids...)
	from, to := indexOf(out, dragged), indexOf(out, target)
	if from < 0 || to < 0 || dragged == target {
		return out
	}
	out = append(out[:from], out[from+1:]...)
	to = indexOf(out, target)
	if pos == After {
		to++
	}
	out = append(out, "")
	copy(out[to+1:], out[to:])
	out[to] = dragged
	return out
}

// MoveManagedCategory reorders the category-management list, which hides
// favorites. Favorites keeps its current slot in the full order.
func MoveManagedCategory(ids []string, dragged, target string, pos Position) []string {
	if dragged == model.FavoritesID || target == model.FavoritesID {
		return append([]string(nil), ids...)
	}
	favAt := indexOf(ids, model.FavoritesID)
	visible := without(ids, model.FavoritesID)
	moved := MoveCategory(visible, dragged, target, pos)
	if favAt < 0 {
		return moved
	}
	if favAt > len(moved) {
		favAt = len(moved)
	}
	out := make([]string, 0, len(ids))
	out = append(out, moved[:favAt]...)
	out = append(out, model.FavoritesID)
	out = append(out, moved[favAt:]...)
	return out
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
