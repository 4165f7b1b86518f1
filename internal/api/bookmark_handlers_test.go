package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yomu-reader/yomu-go/internal/models"
	"github.com/yomu-reader/yomu-go/internal/testutil/servertest"
)

func TestBookmarkHandlers(t *testing.T) {
	server, _ := servertest.SetupTestServer(t)
	router := server.Router()

	createBookmark := func(t *testing.T, title, url string) *models.Bookmark {
		t.Helper()
		payload, _ := json.Marshal(map[string]string{"title": title, "url": url})
		req, _ := http.NewRequest("POST", "/api/bookmarks", bytes.NewBuffer(payload))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("Failed to create bookmark: got status %d: %s", rr.Code, rr.Body.String())
		}
		var b models.Bookmark
		json.Unmarshal(rr.Body.Bytes(), &b)
		return &b
	}

	t.Run("Create And List", func(t *testing.T) {
		createBookmark(t, "Series A", "https://komiku.id/manga/series-a/")
		createBookmark(t, "Series B", "https://komiku.id/manga/series-b/")

		req, _ := http.NewRequest("GET", "/api/bookmarks", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}
		var list []*models.Bookmark
		json.Unmarshal(rr.Body.Bytes(), &list)
		if len(list) != 2 {
			t.Fatalf("Expected 2 bookmarks, got %d", len(list))
		}
	})

	t.Run("Upsert Same URL Does Not Duplicate", func(t *testing.T) {
		first := createBookmark(t, "Series C", "https://komiku.id/manga/series-c/")
		second := createBookmark(t, "Series C Renamed", "https://komiku.id/manga/series-c/")
		if first.ID != second.ID {
			t.Errorf("Expected the same bookmark ID, got %d and %d", first.ID, second.ID)
		}
		if second.Title != "Series C Renamed" {
			t.Errorf("Expected the title to be updated, got %q", second.Title)
		}
	})

	t.Run("Missing Fields Rejected", func(t *testing.T) {
		payload := []byte(`{"title":"No URL"}`)
		req, _ := http.NewRequest("POST", "/api/bookmarks", bytes.NewBuffer(payload))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("Expected status 400, got %d", rr.Code)
		}
	})

	t.Run("Favorite And Filter", func(t *testing.T) {
		b := createBookmark(t, "Favorite Series", "https://komiku.id/manga/favorite/")

		payload := []byte(`{"favorite":true}`)
		req, _ := http.NewRequest("POST", fmt.Sprintf("/api/bookmarks/%d/favorite", b.ID), bytes.NewBuffer(payload))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}

		req, _ = http.NewRequest("GET", "/api/bookmarks?favorites=true", nil)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		var list []*models.Bookmark
		json.Unmarshal(rr.Body.Bytes(), &list)
		if len(list) != 1 || list[0].ID != b.ID {
			t.Fatalf("Expected only the favorited bookmark, got %d entries", len(list))
		}
	})

	t.Run("Set Tags", func(t *testing.T) {
		b := createBookmark(t, "Tagged Series", "https://komiku.id/manga/tagged/")

		payload := []byte(`{"tags":"action,ongoing"}`)
		req, _ := http.NewRequest("POST", fmt.Sprintf("/api/bookmarks/%d/tags", b.ID), bytes.NewBuffer(payload))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		b := createBookmark(t, "Doomed Series", "https://komiku.id/manga/doomed/")

		req, _ := http.NewRequest("DELETE", fmt.Sprintf("/api/bookmarks/%d", b.ID), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}

		req, _ = http.NewRequest("DELETE", fmt.Sprintf("/api/bookmarks/%d", b.ID), nil)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("Expected status 404 for a deleted bookmark, got %d", rr.Code)
		}
	})

	t.Run("Favorite Unknown Bookmark", func(t *testing.T) {
		payload := []byte(`{"favorite":true}`)
		req, _ := http.NewRequest("POST", "/api/bookmarks/99999/favorite", bytes.NewBuffer(payload))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("Expected status 404, got %d", rr.Code)
		}
	})
}
