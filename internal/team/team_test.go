package team

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"teamtz/internal/dnd"
	"teamtz/internal/model"
	"teamtz/internal/mutate"
	"teamtz/internal/store"
	"teamtz/internal/zone"

	"github.com/rs/zerolog"
)

var noon = zone.FixedClock{T: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}

func newController(t *testing.T) (*Controller, *store.MemoryKV) {
	t.Helper()
	kv := store.NewMemoryKV()
	return New(context.Background(), kv, noon, zerolog.Nop()), kv
}

func storedColleagues(t *testing.T, kv *store.MemoryKV) []model.Colleague {
	t.Helper()
	var out []model.Colleague
	if err := json.Unmarshal([]byte(kv.Data[store.KeyColleagues]), &out); err != nil {
		t.Fatalf("decode stored colleagues: %v", err)
	}
	return out
}

func TestEndToEnd_AddDuplicateRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, kv := newController(t)

	if len(c.DB().Colleagues) != 0 {
		t.Fatalf("expected empty start")
	}
	if _, err := c.AddColleague(ctx, model.ColleagueFields{Name: "Ana", Timezone: "Asia/Manila"}); err != nil {
		t.Fatalf("add Ana: %v", err)
	}
	got := storedColleagues(t, kv)
	if len(got) != 1 || got[0].Name != "Ana" || got[0].Favorite || got[0].Category != model.GeneralID {
		t.Fatalf("persisted: %#v", got)
	}

	_, err := c.AddColleague(ctx, model.ColleagueFields{Name: "ana", Timezone: "Europe/London"})
	var dup mutate.DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if len(storedColleagues(t, kv)) != 1 {
		t.Fatalf("failed add must not change storage")
	}

	if _, err := c.RemoveColleague(ctx, "Ana"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(c.DB().Colleagues) != 0 || len(storedColleagues(t, kv)) != 0 {
		t.Fatalf("expected empty list after remove")
	}
	if !c.Board().Empty {
		t.Fatalf("board should show empty state")
	}
}

func TestToggleFavoriteTwice_PersistsAndKeepsCategory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, kv := newController(t)
	if _, err := c.AddCategory(ctx, "Sales", ""); err != nil {
		t.Fatalf("add category: %v", err)
	}
	_, _ = c.AddColleague(ctx, model.ColleagueFields{Name: "Ana", Timezone: "UTC"})
	if _, err := c.SetCategory(ctx, "Ana", "sales"); err != nil {
		t.Fatalf("set category: %v", err)
	}

	for i, want := range []bool{true, false} {
		col, ok, err := c.ToggleFavorite(ctx, "Ana")
		if err != nil || !ok {
			t.Fatalf("toggle %d: ok=%v err=%v", i, ok, err)
		}
		stored := storedColleagues(t, kv)[0]
		if col.Favorite != want || stored.Favorite != want || stored.Category != "sales" {
			t.Fatalf("toggle %d: mem=%#v stored=%#v", i, col, stored)
		}
	}
}

func TestDeleteCategory_PersistsAllThreeKeys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, kv := newController(t)
	_, _ = c.AddCategory(ctx, "Sales", "#ff0000")
	for _, n := range []string{"Ana", "Bo", "Cy"} {
		_, _ = c.AddColleague(ctx, model.ColleagueFields{Name: n, Timezone: "UTC"})
	}
	_, _ = c.SetCategory(ctx, "Ana", "sales")
	_, _ = c.SetCategory(ctx, "Cy", "sales")

	n, err := c.DeleteCategory(ctx, "sales")
	if err != nil || n != 2 {
		t.Fatalf("delete: n=%d err=%v", n, err)
	}
	for _, col := range storedColleagues(t, kv) {
		if col.Category != model.GeneralID {
			t.Fatalf("%s still in %s", col.Name, col.Category)
		}
	}
	if kv.Data[store.KeyCategoryOrder] != `["favorites","general"]` {
		t.Fatalf("order: %s", kv.Data[store.KeyCategoryOrder])
	}
	var cats []model.Category
	_ = json.Unmarshal([]byte(kv.Data[store.KeyCategories]), &cats)
	if len(cats) != 2 {
		t.Fatalf("categories: %#v", cats)
	}
}

func TestDropColleague_FavoritesRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, kv := newController(t)
	_, _ = c.AddCategory(ctx, "Sales", "")
	_, _ = c.AddColleague(ctx, model.ColleagueFields{Name: "Ana", Timezone: "UTC"})
	_, _ = c.AddColleague(ctx, model.ColleagueFields{Name: "Bo", Timezone: "UTC"})
	_, _ = c.SetCategory(ctx, "Bo", "sales")

	if err := c.DropColleague(ctx, "Ana", model.GeneralID, dnd.Target{Group: model.FavoritesID}); err != nil {
		t.Fatalf("drop into favorites: %v", err)
	}
	ana := storedColleagues(t, kv)[0]
	if !ana.Favorite || ana.Category != model.GeneralID {
		t.Fatalf("into favorites: %#v", ana)
	}

	if err := c.DropColleague(ctx, "Ana", model.FavoritesID, dnd.Target{Key: "Bo", Group: "sales", Position: dnd.Before}); err != nil {
		t.Fatalf("drop into sales: %v", err)
	}
	got := storedColleagues(t, kv)
	if got[0].Name != "Ana" || got[0].Favorite || got[0].Category != "sales" {
		t.Fatalf("into sales: %#v", got)
	}
}

func TestMoveCategory_PersistsOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, kv := newController(t)
	_, _ = c.AddCategory(ctx, "Sales", "")
	_, _ = c.AddCategory(ctx, "Ops", "")

	if err := c.MoveCategory(ctx, "ops", "favorites", dnd.Before, false); err != nil {
		t.Fatalf("move: %v", err)
	}
	if kv.Data[store.KeyCategoryOrder] != `["ops","favorites","general","sales"]` {
		t.Fatalf("order: %s", kv.Data[store.KeyCategoryOrder])
	}
	if err := c.MoveCategory(ctx, "sales", "general", dnd.Before, true); err != nil {
		t.Fatalf("managed move: %v", err)
	}
	if want := []string{"ops", "favorites", "sales", "general"}; !reflect.DeepEqual(c.DB().CategoryOrder(), want) {
		t.Fatalf("managed order: %v", c.DB().CategoryOrder())
	}

	// Reload sees the same order.
	c2 := New(ctx, kv, noon, zerolog.Nop())
	if !reflect.DeepEqual(c2.DB().CategoryOrder(), c.DB().CategoryOrder()) {
		t.Fatalf("reload order: %v", c2.DB().CategoryOrder())
	}
}

func TestPersistFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, kv := newController(t)
	kv.FailPut = errors.New("disk full")

	_, err := c.AddColleague(ctx, model.ColleagueFields{Name: "Ana", Timezone: "UTC"})
	var pe *PersistError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistError, got %v", err)
	}
	if mutate.IsValidation(err) {
		t.Fatalf("persist errors are not validation errors")
	}
	if len(c.DB().Colleagues) != 1 {
		t.Fatalf("in-memory state should keep the change")
	}

	kv.FailPut = nil
	if err := c.SetHomeTimezone(ctx, "Asia/Kathmandu"); err != nil {
		t.Fatalf("home: %v", err)
	}
	if kv.Data[store.KeyHomeTimezone] != "Asia/Kathmandu" {
		t.Fatalf("home not stored")
	}
}

func TestLoadWithoutCategoryField_DefaultsWithoutRewrite(t *testing.T) {
	t.Parallel()

	kv := store.NewMemoryKV()
	raw := `[{"name":"Ana","timezone":"Asia/Manila"}]`
	kv.Data[store.KeyColleagues] = raw

	c := New(context.Background(), kv, noon, zerolog.Nop())
	if c.DB().Colleagues[0].Category != model.GeneralID {
		t.Fatalf("category: %q", c.DB().Colleagues[0].Category)
	}
	if kv.Data[store.KeyColleagues] != raw {
		t.Fatalf("load must not rewrite")
	}
	if _, err := c.RemoveColleague(context.Background(), "Nobody"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if kv.Data[store.KeyColleagues] == raw {
		t.Fatalf("next save should rewrite the record")
	}
}

func TestInvalidTimezones(t *testing.T) {
	t.Parallel()

	kv := store.NewMemoryKV()
	kv.Data[store.KeyColleagues] = `[{"name":"Ana","timezone":"Asia/Manila"},{"name":"Bo","timezone":"Moon/Base"}]`
	kv.Data[store.KeyHomeTimezone] = "Nowhere/Land"

	bad := New(context.Background(), kv, noon, zerolog.Nop()).InvalidTimezones()
	if len(bad) != 2 {
		t.Fatalf("expected 2 invalid entries, got %v", bad)
	}
	if _, ok := bad["Bo"]; !ok {
		t.Fatalf("Bo should be invalid")
	}
	if _, ok := bad[""]; !ok {
		t.Fatalf("home should be invalid")
	}
}
