package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/streetr/ordering-backend/internal/domain/catalog"
	"github.com/streetr/ordering-backend/internal/domain/favorites"
	"github.com/stretchr/testify/assert"
)

type fakeFavorites struct {
	added   []uint
	removed []uint
	items   []catalog.Item
	addErr  error
}

func (f *fakeFavorites) Add(_, itemID uint) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, itemID)
	return nil
}

func (f *fakeFavorites) Remove(_, itemID uint) error {
	f.removed = append(f.removed, itemID)
	return nil
}

func (f *fakeFavorites) List(_ uint) ([]catalog.Item, error) {
	return f.items, nil
}

func favoritesRequest(method, path, body string, userID uint) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", userID)
	return c, w
}

func TestAddFavorite_Created(t *testing.T) {
	fake := &fakeFavorites{}
	h := &FavoritesHandler{favorites: fake}

	c, w := favoritesRequest(http.MethodPost, "/favorites", `{"item_id":9}`, 42)
	h.AddFavorite(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []uint{9}, fake.added)
}

func TestAddFavorite_UnknownItem_NotFound(t *testing.T) {
	fake := &fakeFavorites{addErr: favorites.ErrItemNotFound}
	h := &FavoritesHandler{favorites: fake}

	c, w := favoritesRequest(http.MethodPost, "/favorites", `{"item_id":9}`, 42)
	h.AddFavorite(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemoveFavorite_AbsentId_StillOK(t *testing.T) {
	fake := &fakeFavorites{}
	h := &FavoritesHandler{favorites: fake}

	c, w := favoritesRequest(http.MethodDelete, "/favorites/9", "", 42)
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	h.RemoveFavorite(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uint{9}, fake.removed)
}

func TestGetFavorites_ReturnsItems(t *testing.T) {
	fake := &fakeFavorites{items: []catalog.Item{{ID: 9, Name: "Vada Pav"}}}
	h := &FavoritesHandler{favorites: fake}

	c, w := favoritesRequest(http.MethodGet, "/favorites", "", 42)
	h.GetFavorites(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Vada Pav")
	assert.Contains(t, w.Body.String(), `"count":1`)
}
