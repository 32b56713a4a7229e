package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"teamtz/internal/model"

	"github.com/rs/zerolog"
)

// KV is the persistent key-value storage the state is written to.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	// Put writes all entries atomically.
	Put(ctx context.Context, entries map[string]string) error
}

// wireColleague mirrors the stored record. Pointer fields distinguish
// "absent" (older records) from an explicit zero value.
type wireColleague struct {
	Name        string  `json:"name"`
	Timezone    string  `json:"timezone"`
	Favorite    *bool   `json:"favorite"`
	Category    *string `json:"category"`
	Designation *string `json:"designation"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
}

func (w wireColleague) toModel() model.Colleague {
	c := model.Colleague{
		Name:     w.Name,
		Timezone: w.Timezone,
		Category: model.GeneralID,
	}
	if w.Favorite != nil {
		c.Favorite = *w.Favorite
	}
	if w.Category != nil && strings.TrimSpace(*w.Category) != "" {
		c.Category = strings.TrimSpace(*w.Category)
	}
	if w.Designation != nil {
		c.Designation = *w.Designation
	}
	if w.Phone != nil {
		c.Phone = *w.Phone
	}
	if w.Email != nil {
		c.Email = *w.Email
	}
	// Favorites is an overlay, never a stored category.
	if c.Category == model.FavoritesID {
		c.Favorite = true
		c.Category = model.GeneralID
	}
	return c
}

func decodeColleagues(raw string) ([]model.Colleague, error) {
	var ws []wireColleague
	if err := json.Unmarshal([]byte(raw), &ws); err != nil {
		return nil, err
	}
	out := make([]model.Colleague, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toModel())
	}
	return out, nil
}

// LoadDB reads state from kv. It never fails: unreadable keys are logged
// and replaced by defaults. Records are normalized in memory only; storage
// is rewritten on the next save.
func LoadDB(ctx context.Context, kv KV, log zerolog.Logger) *DB {
	db := NewDB()
	db.Categories = nil

	if raw, ok := readKey(ctx, kv, KeyCategories, log); ok {
		var cats []model.Category
		if err := json.Unmarshal([]byte(raw), &cats); err != nil {
			log.Warn().Err(err).Str("key", KeyCategories).Msg("discarding unreadable categories")
		} else {
			db.Categories = cats
		}
	}
	if raw, ok := readKey(ctx, kv, KeyCategoryOrder, log); ok {
		var order []string
		if err := json.Unmarshal([]byte(raw), &order); err != nil {
			log.Warn().Err(err).Str("key", KeyCategoryOrder).Msg("ignoring unreadable category order")
		} else {
			db.ApplyCategoryOrder(order)
		}
	}
	if db.Categories == nil {
		db.Categories = []model.Category{}
	}
	db.EnsureBuiltins()

	if raw, ok := readKey(ctx, kv, KeyColleagues, log); ok {
		cs, err := decodeColleagues(raw)
		if err != nil {
			log.Warn().Err(err).Str("key", KeyColleagues).Msg("discarding unreadable colleague list")
		} else {
			db.Colleagues = cs
		}
	}
	for i := range db.Colleagues {
		c := &db.Colleagues[i]
		if _, ok := db.FindCategory(c.Category); !ok {
			log.Debug().Str("colleague", c.Name).Str("category", c.Category).Msg("unknown category; using general")
			c.Category = model.GeneralID
		}
	}

	if raw, ok := readKey(ctx, kv, KeyHomeTimezone, log); ok {
		db.HomeTimezone = strings.TrimSpace(raw)
	}
	return db
}

func readKey(ctx context.Context, kv KV, key string, log zerolog.Logger) (string, bool) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("storage read failed")
		return "", false
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return "", false
	}
	return raw, true
}

// SaveDB encodes the requested keys and writes them in one batch.
func SaveDB(ctx context.Context, kv KV, db *DB, keys ...string) error {
	if db == nil {
		return fmt.Errorf("save: nil db")
	}
	if len(keys) == 0 {
		keys = AllKeys
	}
	entries := make(map[string]string, len(keys))
	for _, k := range keys {
		v, err := encodeKey(db, k)
		if err != nil {
			return fmt.Errorf("encode %s: %w", k, err)
		}
		entries[k] = v
	}
	return kv.Put(ctx, entries)
}

func encodeKey(db *DB, key string) (string, error) {
	var v any
	switch key {
	case KeyColleagues:
		cs := db.Colleagues
		if cs == nil {
			cs = []model.Colleague{}
		}
		v = cs
	case KeyCategories:
		cats := db.Categories
		if cats == nil {
			cats = []model.Category{}
		}
		v = cats
	case KeyCategoryOrder:
		v = db.CategoryOrder()
	case KeyHomeTimezone:
		return db.HomeTimezone, nil
	default:
		return "", fmt.Errorf("unknown key %q", key)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MemoryKV is an in-process KV. Fail* make the next calls error, which lets
// callers exercise the storage-failure paths.
type MemoryKV struct {
	Data    map[string]string
	FailGet error
	FailPut error
	Puts    int
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{Data: map[string]string{}}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	if m.FailGet != nil {
		return "", false, m.FailGet
	}
	v, ok := m.Data[key]
	return v, ok, nil
}

func (m *MemoryKV) Put(_ context.Context, entries map[string]string) error {
	if m.FailPut != nil {
		return m.FailPut
	}
	if m.Data == nil {
		m.Data = map[string]string{}
	}
	for k, v := range entries {
		m.Data[k] = v
	}
	m.Puts++
	return nil
}
