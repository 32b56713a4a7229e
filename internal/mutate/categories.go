package mutate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"teamtz/internal/model"
	"teamtz/internal/store"

	"github.com/google/uuid"
)

var hexColorRE = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

const minCategoryName = 2

// NormalizeColor returns the default color for blank input and validates
// anything else.
func NormalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return model.DefaultCategoryColor, nil
	}
	if !hexColorRE.MatchString(color) {
		return "", InvalidColorError{Color: color}
	}
	return strings.ToLower(color), nil
}

// AddCategory appends a category whose id is derived from name. When the
// slug is still held by a category that has since been renamed, the new id
// gets a short random suffix.
func AddCategory(db *store.DB, name, color string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(db, name, ""); err != nil {
		return nil, err
	}
	id := model.CategorySlug(name)
	if held, exists := db.FindCategory(id); exists {
		if model.CategorySlug(held.Name) == id {
			return nil, DuplicateCategoryError{Name: name}
		}
		id += "-" + uuid.NewString()[:8]
	}
	c, err := NormalizeColor(color)
	if err != nil {
		return nil, err
	}
	db.Categories = append(db.Categories, model.Category{ID: id, Name: name, Color: c})
	return &db.Categories[len(db.Categories)-1], nil
}

// UpdateCategory renames and recolors a category. Favorites is read-only;
// General keeps its name but may be recolored. Unknown ids are a no-op.
// Members keep referencing the unchanged id.
func UpdateCategory(db *store.DB, id, name, color string) (*model.Category, error) {
	id = strings.TrimSpace(id)
	if id == model.FavoritesID {
		return nil, ErrProtectedCategory
	}
	cat, ok := db.FindCategory(id)
	if !ok {
		return nil, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = cat.Name
	}
	if id == model.GeneralID && name != cat.Name {
		return nil, ErrProtectedCategory
	}
	if err := validateCategoryName(db, name, id); err != nil {
		return nil, err
	}
	c := cat.Color
	if strings.TrimSpace(color) != "" {
		var err error
		if c, err = NormalizeColor(color); err != nil {
			return nil, err
		}
	}
	cat.Name = name
	cat.Color = c
	return cat, nil
}

// DeleteCategory removes a category and moves its members to General.
// It returns the number of reassigned colleagues.
func DeleteCategory(db *store.DB, id string) (int, error) {
	id = strings.TrimSpace(id)
	if model.IsBuiltin(id) {
		return 0, ErrProtectedCategory
	}
	if _, ok := db.FindCategory(id); !ok {
		return 0, NotFoundError{Kind: "category", ID: id}
	}
	moved := 0
	for i := range db.Colleagues {
		if db.Colleagues[i].Category == id {
			db.Colleagues[i].Category = model.GeneralID
			moved++
		}
	}
	out := db.Categories[:0]
	for _, c := range db.Categories {
		if c.ID != id {
			out = append(out, c)
		}
	}
	db.Categories = out
	return moved, nil
}

// SetCategoryOrder reorders the category list to match ids. Unlisted
// categories keep their relative order at the end.
func SetCategoryOrder(db *store.DB, ids []string) {
	db.ApplyCategoryOrder(ids)
	db.EnsureBuiltins()
}

// MemberCount returns how many colleagues are listed under id. For
// favorites that is the number of favorited colleagues.
func MemberCount(db *store.DB, id string) int {
	n := 0
	for _, c := range db.Colleagues {
		if id == model.FavoritesID {
			if c.Favorite {
				n++
			}
			continue
		}
		if c.Category == id {
			n++
		}
	}
	return n
}

func validateCategoryName(db *store.DB, name, self string) error {
	if utf8.RuneCountInString(name) < minCategoryName {
		return ErrCategoryNameTooShort
	}
	for _, c := range db.Categories {
		if c.ID == self {
			continue
		}
		if model.SameName(c.Name, name) {
			return DuplicateCategoryError{Name: name}
		}
	}
	return nil
}
