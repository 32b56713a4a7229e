package mutate

import (
	"errors"
	"fmt"

	"teamtz/internal/zone"
)

var (
	ErrNameRequired         = errors.New("name is required")
	ErrTimezoneRequired     = errors.New("timezone is required")
	ErrCategoryNameTooShort = errors.New("category name must be at least 2 characters")
	ErrProtectedCategory    = errors.New("built-in category cannot be changed")
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// DuplicateNameError is returned when a colleague name collides with an
// existing one, ignoring case.
type DuplicateNameError struct {
	Name string
}

func (e DuplicateNameError) Error() string {
	return fmt.Sprintf("a colleague named %q already exists", e.Name)
}

type DuplicateCategoryError struct {
	Name string
}

func (e DuplicateCategoryError) Error() string {
	return fmt.Sprintf("a category named %q already exists", e.Name)
}

type InvalidColorError struct {
	Color string
}

func (e InvalidColorError) Error() string {
	return fmt.Sprintf("invalid color %q (want #rgb or #rrggbb)", e.Color)
}

// IsValidation reports whether err is a user input error (as opposed to a
// storage failure).
func IsValidation(err error) bool {
	if err == nil {
		return false
	}
	var (
		nf  NotFoundError
		dn  DuplicateNameError
		dc  DuplicateCategoryError
		ic  InvalidColorError
		itz zone.InvalidTimezoneError
	)
	switch {
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrTimezoneRequired),
		errors.Is(err, ErrCategoryNameTooShort),
		errors.Is(err, ErrProtectedCategory),
		errors.As(err, &nf),
		errors.As(err, &dn),
		errors.As(err, &dc),
		errors.As(err, &ic),
		errors.As(err, &itz):
		return true
	}
	return false
}
