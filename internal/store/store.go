package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"teamtz/internal/model"

	"github.com/rs/zerolog"
)

// Persisted keys. Each is an independent record; category order is kept
// apart from category content and applied after it on load.
const (
	KeyColleagues    = "team_timezones"
	KeyHomeTimezone  = "home_timezone"
	KeyCategories    = "team_categories"
	KeyCategoryOrder = "category_order"
)

// AllKeys lists every persisted key in write order.
var AllKeys = []string{KeyColleagues, KeyHomeTimezone, KeyCategories, KeyCategoryOrder}

// DB is the in-memory application state.
type DB struct {
	Colleagues   []model.Colleague `json:"colleagues"`
	Categories   []model.Category  `json:"categories"`
	HomeTimezone string            `json:"homeTimezone"`
}

// NewDB returns an empty state with the built-in categories.
func NewDB() *DB {
	db := &DB{Colleagues: []model.Colleague{}, Categories: []model.Category{}}
	db.EnsureBuiltins()
	return db
}

// Store is the workspace-backed persistence handle (SQLite key-value file
// under Dir).
type Store struct {
	Dir string
	Log zerolog.Logger
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

// Load reads the full state. Per-key read failures are logged and replaced
// by defaults; only a failure to open the store is returned.
func (s Store) Load() (*DB, error) {
	return s.LoadContext(context.Background())
}

func (s Store) LoadContext(ctx context.Context) (*DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	kv, err := s.OpenKV(ctx)
	if err != nil {
		return nil, err
	}
	defer kv.Close()
	return LoadDB(ctx, kv, s.Log), nil
}

// Save writes every key.
func (s Store) Save(db *DB) error {
	return s.SaveKeys(context.Background(), db, AllKeys...)
}

func (s Store) SaveKeys(ctx context.Context, db *DB, keys ...string) error {
	kv, err := s.OpenKV(ctx)
	if err != nil {
		return err
	}
	defer kv.Close()
	return SaveDB(ctx, kv, db, keys...)
}

// DefaultDir is where state lives when no --dir/TEAMTZ_DIR/config dir is set.
func DefaultDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

// FindColleague returns the colleague with exactly this name.
func (db *DB) FindColleague(name string) (*model.Colleague, bool) {
	for i := range db.Colleagues {
		if db.Colleagues[i].Name == name {
			return &db.Colleagues[i], true
		}
	}
	return nil, false
}

// FindColleagueFold matches name case-insensitively. Used by the CLI, where
// exact casing is easy to get wrong.
func (db *DB) FindColleagueFold(name string) (*model.Colleague, bool) {
	if c, ok := db.FindColleague(name); ok {
		return c, true
	}
	for i := range db.Colleagues {
		if model.SameName(db.Colleagues[i].Name, name) {
			return &db.Colleagues[i], true
		}
	}
	return nil, false
}

func (db *DB) FindCategory(id string) (*model.Category, bool) {
	id = strings.TrimSpace(id)
	for i := range db.Categories {
		if db.Categories[i].ID == id {
			return &db.Categories[i], true
		}
	}
	return nil, false
}

// CategoryOrder returns the category ids in display order.
func (db *DB) CategoryOrder() []string {
	out := make([]string, 0, len(db.Categories))
	for _, c := range db.Categories {
		out = append(out, c.ID)
	}
	return out
}

// ApplyCategoryOrder sorts Categories by order. Ids missing from order keep
// their relative position after the ordered ones.
func (db *DB) ApplyCategoryOrder(order []string) {
	if len(order) == 0 {
		return
	}
	pos := make(map[string]int, len(order))
	for i, id := range order {
		if _, dup := pos[id]; !dup {
			pos[id] = i
		}
	}
	ordered := make([]model.Category, 0, len(db.Categories))
	rest := []model.Category{}
	byID := map[string]model.Category{}
	for _, c := range db.Categories {
		if _, ok := pos[c.ID]; ok {
			byID[c.ID] = c
		} else {
			rest = append(rest, c)
		}
	}
	for _, id := range order {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
			delete(byID, id)
		}
	}
	db.Categories = append(ordered, rest...)
}

// EnsureBuiltins inserts Favorites (first) and General (last) when missing.
func (db *DB) EnsureBuiltins() bool {
	changed := false
	if _, ok := db.FindCategory(model.FavoritesID); !ok {
		db.Categories = append([]model.Category{model.FavoritesCategory()}, db.Categories...)
		changed = true
	}
	if _, ok := db.FindCategory(model.GeneralID); !ok {
		db.Categories = append(db.Categories, model.GeneralCategory())
		changed = true
	}
	return changed
}
