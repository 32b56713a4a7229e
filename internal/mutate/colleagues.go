package mutate

import (
	"strings"

	"teamtz/internal/model"
	"teamtz/internal/store"
	"teamtz/internal/zone"
)

// AddColleague validates fields and appends a new colleague with
// favorite=false and category=general. On error db is unchanged.
func AddColleague(db *store.DB, f model.ColleagueFields) (*model.Colleague, error) {
	f = trimFields(f)
	if err := validateFields(db, f, ""); err != nil {
		return nil, err
	}
	db.Colleagues = append(db.Colleagues, model.Colleague{
		Name:        f.Name,
		Timezone:    f.Timezone,
		Favorite:    false,
		Category:    model.GeneralID,
		Designation: f.Designation,
		Phone:       f.Phone,
		Email:       f.Email,
	})
	return &db.Colleagues[len(db.Colleagues)-1], nil
}

// RemoveColleague drops every colleague named exactly name. Missing names
// are a no-op.
func RemoveColleague(db *store.DB, name string) bool {
	out := db.Colleagues[:0]
	removed := false
	for _, c := range db.Colleagues {
		if c.Name == name {
			removed = true
			continue
		}
		out = append(out, c)
	}
	db.Colleagues = out
	return removed
}

// EditColleague replaces the editable fields of oldName in place. Favorite
// and category are kept.
func EditColleague(db *store.DB, oldName string, f model.ColleagueFields) (*model.Colleague, error) {
	c, ok := db.FindColleague(oldName)
	if !ok {
		return nil, NotFoundError{Kind: "colleague", ID: oldName}
	}
	f = trimFields(f)
	if err := validateFields(db, f, oldName); err != nil {
		return nil, err
	}
	c.Name = f.Name
	c.Timezone = f.Timezone
	c.Designation = f.Designation
	c.Phone = f.Phone
	c.Email = f.Email
	return c, nil
}

// ToggleFavorite flips the favorite flag. Category is never touched.
func ToggleFavorite(db *store.DB, name string) (*model.Colleague, bool) {
	c, ok := db.FindColleague(name)
	if !ok {
		return nil, false
	}
	c.Favorite = !c.Favorite
	return c, true
}

// SetFavorite sets the flag to an explicit value.
func SetFavorite(db *store.DB, name string, favorite bool) (*model.Colleague, bool) {
	c, ok := db.FindColleague(name)
	if !ok {
		return nil, false
	}
	c.Favorite = favorite
	return c, true
}

// SetCategory assigns a colleague to a category. The favorites id marks the
// colleague as favorite and leaves its category alone.
func SetCategory(db *store.DB, name, categoryID string) (*model.Colleague, error) {
	c, ok := db.FindColleague(name)
	if !ok {
		return nil, NotFoundError{Kind: "colleague", ID: name}
	}
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == model.FavoritesID {
		c.Favorite = true
		return c, nil
	}
	if _, ok := db.FindCategory(categoryID); !ok {
		return nil, NotFoundError{Kind: "category", ID: categoryID}
	}
	c.Category = categoryID
	return c, nil
}

func SetHomeTimezone(db *store.DB, tz string) error {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return ErrTimezoneRequired
	}
	if err := zone.Validate(tz); err != nil {
		return err
	}
	db.HomeTimezone = tz
	return nil
}

func trimFields(f model.ColleagueFields) model.ColleagueFields {
	return model.ColleagueFields{
		Name:        strings.TrimSpace(f.Name),
		Timezone:    strings.TrimSpace(f.Timezone),
		Designation: strings.TrimSpace(f.Designation),
		Phone:       strings.TrimSpace(f.Phone),
		Email:       strings.TrimSpace(f.Email),
	}
}

// validateFields checks required fields, timezone resolvability and name
// uniqueness. self is the current name of the colleague being edited.
func validateFields(db *store.DB, f model.ColleagueFields, self string) error {
	if f.Name == "" {
		return ErrNameRequired
	}
	if f.Timezone == "" {
		return ErrTimezoneRequired
	}
	if err := zone.Validate(f.Timezone); err != nil {
		return err
	}
	for _, c := range db.Colleagues {
		if self != "" && c.Name == self {
			continue
		}
		if model.SameName(c.Name, f.Name) {
			return DuplicateNameError{Name: f.Name}
		}
	}
	return nil
}
