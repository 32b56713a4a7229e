package dnd

import (
	"testing"

	"teamtz/internal/board"
	"teamtz/internal/model"
	"teamtz/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dropDB() *store.DB {
	db := store.NewDB()
	db.Categories = append(db.Categories, model.Category{ID: "sales", Name: "Sales", Color: "#ff0000"})
	db.Colleagues = []model.Colleague{
		{Name: "Ana", Timezone: "UTC", Category: model.GeneralID},
		{Name: "Bo", Timezone: "UTC", Category: model.GeneralID},
		{Name: "Cy", Timezone: "UTC", Category: "sales"},
		{Name: "Dee", Timezone: "UTC", Category: "sales", Favorite: true},
	}
	return db
}

func names(db *store.DB) []string {
	out := []string{}
	for _, c := range db.Colleagues {
		out = append(out, c.Name)
	}
	return out
}

func TestApplyColleagueDrop_IntoFavoritesKeepsCategory(t *testing.T) {
	t.Parallel()

	db := dropDB()
	err := ApplyColleagueDrop(db, "Ana", model.GeneralID, Target{Key: "Dee", Group: model.FavoritesID, Position: Before})
	require.NoError(t, err)

	ana, _ := db.FindColleague("Ana")
	assert.True(t, ana.Favorite)
	assert.Equal(t, model.GeneralID, ana.Category)
	// Favorites is first in order, so its list decides the sequence head.
	assert.Equal(t, []string{"Ana", "Dee", "Bo", "Cy"}, names(db))
}

func TestApplyColleagueDrop_OutOfFavoritesIntoConcreteCategory(t *testing.T) {
	t.Parallel()

	db := dropDB()
	db.Colleagues[0].Favorite = true // Ana, general

	err := ApplyColleagueDrop(db, "Ana", model.FavoritesID, Target{Key: "Cy", Group: "sales", Position: After})
	require.NoError(t, err)

	ana, _ := db.FindColleague("Ana")
	assert.False(t, ana.Favorite)
	assert.Equal(t, "sales", ana.Category)
	assert.Equal(t, []string{"Cy", "Ana", "Dee", "Bo"}, names(db))
}

func TestApplyColleagueDrop_OutOfFavoritesIntoOwnCategory(t *testing.T) {
	t.Parallel()

	db := dropDB()
	err := ApplyColleagueDrop(db, "Dee", model.FavoritesID, Target{Key: "Cy", Group: "sales", Position: Before})
	require.NoError(t, err)

	dee, _ := db.FindColleague("Dee")
	assert.False(t, dee.Favorite)
	assert.Equal(t, "sales", dee.Category)
	assert.Equal(t, []string{"Dee", "Cy", "Ana", "Bo"}, names(db))
}

func TestApplyColleagueDrop_ReorderWithinCategory(t *testing.T) {
	t.Parallel()

	db := dropDB()
	err := ApplyColleagueDrop(db, "Bo", model.GeneralID, Target{Key: "Ana", Group: model.GeneralID, Position: Before})
	require.NoError(t, err)

	bo, _ := db.FindColleague("Bo")
	assert.False(t, bo.Favorite)
	assert.Equal(t, model.GeneralID, bo.Category)
	assert.Equal(t, []string{"Bo", "Ana", "Dee", "Cy"}, names(db))
}

func groupNames(db *store.DB, id string) []string {
	for _, g := range board.Groups(db) {
		if g.ID == id {
			return g.Names
		}
	}
	return nil
}

func TestApplyColleagueDrop_BeforeFavoritedMemberKeepsPosition(t *testing.T) {
	t.Parallel()

	db := dropDB()
	// Dee is favorited, so she is listed under favorites as well as sales.
	err := ApplyColleagueDrop(db, "Cy", "sales", Target{Key: "Dee", Group: "sales", Position: Before})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cy", "Dee"}, groupNames(db, "sales"))

	err = ApplyColleagueDrop(db, "Dee", "sales", Target{Key: "Cy", Group: "sales", Position: After})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cy", "Dee"}, groupNames(db, "sales"), "drop in place is a no-op")

	err = ApplyColleagueDrop(db, "Dee", "sales", Target{Key: "Cy", Group: "sales", Position: Before})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dee", "Cy"}, groupNames(db, "sales"))
	assert.Equal(t, []string{"Ana", "Bo"}, groupNames(db, model.GeneralID))
	assert.Len(t, db.Colleagues, 4)
}

func TestApplyColleagueDrop_CrossCategoryClearsFavorite(t *testing.T) {
	t.Parallel()

	db := dropDB()
	// Dee is a favorite in sales, dragged from the sales list into general.
	err := ApplyColleagueDrop(db, "Dee", "sales", Target{Key: "Bo", Group: model.GeneralID, Position: After})
	require.NoError(t, err)

	dee, _ := db.FindColleague("Dee")
	assert.Equal(t, model.GeneralID, dee.Category)
	assert.False(t, dee.Favorite)
	assert.Equal(t, []string{"Ana", "Bo", "Dee", "Cy"}, names(db))
}

func TestApplyColleagueDrop_EmptyGroupAppends(t *testing.T) {
	t.Parallel()

	db := dropDB()
	db.Categories = append(db.Categories, model.Category{ID: "ops", Name: "Ops"})

	err := ApplyColleagueDrop(db, "Ana", model.GeneralID, Target{Group: "ops"})
	require.NoError(t, err)

	ana, _ := db.FindColleague("Ana")
	assert.Equal(t, "ops", ana.Category)
	assert.Equal(t, []string{"Ana", "Dee", "Bo", "Cy"}, names(db))
	assert.Len(t, db.Colleagues, 4, "no duplicates")
}

func TestApplyColleagueDrop_UnknownInputs(t *testing.T) {
	t.Parallel()

	db := dropDB()
	assert.Error(t, ApplyColleagueDrop(db, "Nobody", model.GeneralID, Target{Group: model.GeneralID}))
	assert.Error(t, ApplyColleagueDrop(db, "Ana", model.GeneralID, Target{Group: "ghost"}))
	assert.Equal(t, []string{"Ana", "Bo", "Cy", "Dee"}, names(db))
}
