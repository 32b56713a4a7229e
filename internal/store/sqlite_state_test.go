package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"teamtz/internal/model"
)

func TestStore_SaveLoad_SQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := Store{Dir: dir}

	db := NewDB()
	db.HomeTimezone = "Asia/Kathmandu"
	db.Categories = append(db.Categories, model.Category{ID: "eng", Name: "Eng", Color: "#123456"})
	db.Colleagues = []model.Colleague{
		{Name: "Ana", Timezone: "Europe/Lisbon", Category: "eng", Favorite: true, Email: "ana@example.com"},
		{Name: "Bo", Timezone: "UTC+5:30", Category: model.GeneralID},
	}
	if err := s.Save(db); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, sqliteFileName)); err != nil {
		t.Fatalf("expected sqlite file: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.HomeTimezone != "Asia/Kathmandu" {
		t.Fatalf("home: %q", got.HomeTimezone)
	}
	if len(got.Colleagues) != 2 || got.Colleagues[0].Name != "Ana" || !got.Colleagues[0].Favorite {
		t.Fatalf("colleagues: %#v", got.Colleagues)
	}
	if got.Colleagues[0].Category != "eng" {
		t.Fatalf("category: %q", got.Colleagues[0].Category)
	}
	if _, ok := got.FindCategory("eng"); !ok {
		t.Fatalf("expected eng category")
	}
}

func TestStore_SaveKeys_OnlyTouchesRequestedKeys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	db := NewDB()
	db.HomeTimezone = "UTC"
	if err := s.SaveKeys(ctx, db, KeyHomeTimezone); err != nil {
		t.Fatalf("SaveKeys: %v", err)
	}

	kv, err := s.OpenKV(ctx)
	if err != nil {
		t.Fatalf("OpenKV: %v", err)
	}
	defer kv.Close()

	keys, err := kv.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected 1 key, got %v", keys)
	}
	if _, ok := keys[KeyHomeTimezone]; !ok {
		t.Fatalf("missing %s: %v", KeyHomeTimezone, keys)
	}
	if _, ok, err := kv.Get(ctx, KeyColleagues); err != nil || ok {
		t.Fatalf("expected colleagues key absent (ok=%v err=%v)", ok, err)
	}
}

func TestStore_LoadFreshDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "data")
	db, err := (Store{Dir: dir}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(db.Categories) != 2 || len(db.Colleagues) != 0 {
		t.Fatalf("unexpected fresh state: %#v", db)
	}
}
