// Package team owns the application state and persists every mutation.
package team

import (
	"context"
	"fmt"

	"teamtz/internal/board"
	"teamtz/internal/dnd"
	"teamtz/internal/model"
	"teamtz/internal/mutate"
	"teamtz/internal/store"
	"teamtz/internal/zone"

	"github.com/rs/zerolog"
)

// PersistError reports that a mutation was applied in memory but could not
// be written. It is not fatal; the next successful save catches up.
type PersistError struct {
	Keys []string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("could not save changes: %v", e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Controller is the single owner of the state. It is not safe for
// concurrent use; callers serialize access (the TUI update loop, or one CLI
// command).
type Controller struct {
	db     *store.DB
	kv     store.KV
	engine *zone.Engine
	log    zerolog.Logger
}

// New loads state from kv. Load never fails; unreadable keys fall back to
// defaults and are logged.
func New(ctx context.Context, kv store.KV, clock zone.Clock, log zerolog.Logger) *Controller {
	return &Controller{
		db:     store.LoadDB(ctx, kv, log),
		kv:     kv,
		engine: zone.NewEngine(clock, log),
		log:    log,
	}
}

// DB exposes the state for read-only use by renderers.
func (c *Controller) DB() *store.DB { return c.db }

func (c *Controller) Engine() *zone.Engine { return c.engine }

// Reload replaces the in-memory state with what is stored.
func (c *Controller) Reload(ctx context.Context) {
	c.db = store.LoadDB(ctx, c.kv, c.log)
}

func (c *Controller) Board() board.Board {
	return board.Build(c.db, c.engine)
}

func (c *Controller) persist(ctx context.Context, op string, keys ...string) error {
	if err := store.SaveDB(ctx, c.kv, c.db, keys...); err != nil {
		c.log.Error().Err(err).Str("op", op).Strs("keys", keys).Msg("persist failed")
		return &PersistError{Keys: keys, Err: err}
	}
	c.log.Debug().Str("op", op).Strs("keys", keys).Msg("persisted")
	return nil
}

func (c *Controller) AddColleague(ctx context.Context, f model.ColleagueFields) (model.Colleague, error) {
	col, err := mutate.AddColleague(c.db, f)
	if err != nil {
		return model.Colleague{}, err
	}
	out := *col
	return out, c.persist(ctx, "add", store.KeyColleagues)
}

func (c *Controller) RemoveColleague(ctx context.Context, name string) (bool, error) {
	removed := mutate.RemoveColleague(c.db, name)
	return removed, c.persist(ctx, "remove", store.KeyColleagues)
}

func (c *Controller) EditColleague(ctx context.Context, oldName string, f model.ColleagueFields) (model.Colleague, error) {
	col, err := mutate.EditColleague(c.db, oldName, f)
	if err != nil {
		return model.Colleague{}, err
	}
	out := *col
	return out, c.persist(ctx, "edit", store.KeyColleagues)
}

func (c *Controller) ToggleFavorite(ctx context.Context, name string) (model.Colleague, bool, error) {
	col, ok := mutate.ToggleFavorite(c.db, name)
	if !ok {
		return model.Colleague{}, false, nil
	}
	out := *col
	return out, true, c.persist(ctx, "favorite", store.KeyColleagues)
}

func (c *Controller) SetFavorite(ctx context.Context, name string, favorite bool) (model.Colleague, bool, error) {
	col, ok := mutate.SetFavorite(c.db, name, favorite)
	if !ok {
		return model.Colleague{}, false, nil
	}
	out := *col
	return out, true, c.persist(ctx, "favorite", store.KeyColleagues)
}

func (c *Controller) SetCategory(ctx context.Context, name, categoryID string) (model.Colleague, error) {
	col, err := mutate.SetCategory(c.db, name, categoryID)
	if err != nil {
		return model.Colleague{}, err
	}
	out := *col
	return out, c.persist(ctx, "set-category", store.KeyColleagues)
}

func (c *Controller) SetHomeTimezone(ctx context.Context, tz string) error {
	if err := mutate.SetHomeTimezone(c.db, tz); err != nil {
		return err
	}
	return c.persist(ctx, "home", store.KeyHomeTimezone)
}

func (c *Controller) AddCategory(ctx context.Context, name, color string) (model.Category, error) {
	cat, err := mutate.AddCategory(c.db, name, color)
	if err != nil {
		return model.Category{}, err
	}
	out := *cat
	return out, c.persist(ctx, "category-add", store.KeyCategories, store.KeyCategoryOrder)
}

// UpdateCategory returns ok=false when id does not exist.
func (c *Controller) UpdateCategory(ctx context.Context, id, name, color string) (model.Category, bool, error) {
	cat, err := mutate.UpdateCategory(c.db, id, name, color)
	if err != nil {
		return model.Category{}, false, err
	}
	if cat == nil {
		return model.Category{}, false, nil
	}
	out := *cat
	return out, true, c.persist(ctx, "category-update", store.KeyCategories)
}

func (c *Controller) DeleteCategory(ctx context.Context, id string) (int, error) {
	n, err := mutate.DeleteCategory(c.db, id)
	if err != nil {
		return 0, err
	}
	return n, c.persist(ctx, "category-delete", store.KeyColleagues, store.KeyCategories, store.KeyCategoryOrder)
}

// DropColleague applies a finished colleague drag.
func (c *Controller) DropColleague(ctx context.Context, name, from string, t dnd.Target) error {
	if err := dnd.ApplyColleagueDrop(c.db, name, from, t); err != nil {
		return err
	}
	return c.persist(ctx, "drop", store.KeyColleagues)
}

// MoveCategory applies a finished category drag. managed selects the
// category-management list semantics, where favorites is hidden and keeps
// its slot.
func (c *Controller) MoveCategory(ctx context.Context, dragged, target string, pos dnd.Position, managed bool) error {
	if _, ok := c.db.FindCategory(dragged); !ok {
		return mutate.NotFoundError{Kind: "category", ID: dragged}
	}
	if _, ok := c.db.FindCategory(target); !ok {
		return mutate.NotFoundError{Kind: "category", ID: target}
	}
	ids := c.db.CategoryOrder()
	if managed {
		ids = dnd.MoveManagedCategory(ids, dragged, target, pos)
	} else {
		ids = dnd.MoveCategory(ids, dragged, target, pos)
	}
	mutate.SetCategoryOrder(c.db, ids)
	return c.persist(ctx, "category-move", store.KeyCategories, store.KeyCategoryOrder)
}

// InvalidTimezones lists colleagues (and the home timezone, as "") whose
// timezone no longer resolves.
func (c *Controller) InvalidTimezones() map[string]error {
	out := map[string]error{}
	if c.db.HomeTimezone != "" {
		if err := zone.Validate(c.db.HomeTimezone); err != nil {
			out[""] = err
		}
	}
	for _, col := range c.db.Colleagues {
		if err := zone.Validate(col.Timezone); err != nil {
			out[col.Name] = err
		}
	}
	return out
}
