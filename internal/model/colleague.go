package model

// Built-in category ids. Both are always present and cannot be deleted;
// neither can be renamed.
const (
	FavoritesID = "favorites"
	GeneralID   = "general"
)

const DefaultCategoryColor = "#6c757d"

// Colleague is one tracked person.
//
// Favorite is an overlay: a favorited colleague is listed under Favorites and
// under its own Category at the same time. Category never holds FavoritesID.
type Colleague struct {
	Name        string `json:"name"`
	Timezone    string `json:"timezone"`
	Favorite    bool   `json:"favorite"`
	Category    string `json:"category"`
	Designation string `json:"designation"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func FavoritesCategory() Category {
	return Category{ID: FavoritesID, Name: "Favorites", Color: "#ffd700"}
}

func GeneralCategory() Category {
	return Category{ID: GeneralID, Name: "General", Color: DefaultCategoryColor}
}

// IsBuiltin reports whether id is one of the protected categories.
func IsBuiltin(id string) bool {
	return id == FavoritesID || id == GeneralID
}

// ColleagueFields carries the editable attributes of a colleague.
type ColleagueFields struct {
	Name        string
	Timezone    string
	Designation string
	Phone       string
	Email       string
}
