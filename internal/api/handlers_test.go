package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yomu-reader/yomu-go/internal/testutil/servertest"
)

func TestVersionHandler(t *testing.T) {
	server, _ := servertest.SetupTestServer(t)
	router := server.Router()

	req, _ := http.NewRequest("GET", "/api/version", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Version handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}
	var body map[string]string
	json.Unmarshal(rr.Body.Bytes(), &body)
	if body["version"] != "test" {
		t.Errorf("Expected version 'test', got %q", body["version"])
	}
}

func TestPageScriptHandler(t *testing.T) {
	server, _ := servertest.SetupTestServer(t)
	router := server.Router()

	t.Run("By Host", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/pagescript?host=komikcast.li", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/javascript") {
			t.Errorf("Expected a javascript content type, got %q", ct)
		}
		if !strings.Contains(rr.Body.String(), `"komikcast"`) {
			t.Error("Expected the komikcast profile to be baked into the script")
		}
	})

	t.Run("By Full URL", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/pagescript?url="+
			"https%3A%2F%2Fkomikcast.li%2Fchapter%2Fone-piece-chapter-1100%2F", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"komikcast"`) {
			t.Error("Expected the komikcast profile to be baked into the script")
		}
	})

	t.Run("Unknown Host Gets Generic Profile", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/pagescript?host=example.org", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "IS_GENERIC = true") {
			t.Error("Expected the generic profile for an unknown host")
		}
	})

	t.Run("Missing Parameter", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/pagescript", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("Expected status 400, got %d", rr.Code)
		}
	})
}

func TestListSitesHandler(t *testing.T) {
	server, _ := servertest.SetupTestServer(t)
	router := server.Router()

	req, _ := http.NewRequest("GET", "/api/sites", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var sites []struct {
		ID        string   `json:"id"`
		Fragments []string `json:"fragments"`
	}
	json.Unmarshal(rr.Body.Bytes(), &sites)
	if len(sites) == 0 {
		t.Fatal("Expected at least one registered site")
	}
	found := false
	for _, s := range sites {
		if s.ID == "komikcast" {
			found = true
		}
	}
	if !found {
		t.Error("Expected komikcast in the site list")
	}
}

func TestPostMessageHandler(t *testing.T) {
	server, app := servertest.SetupTestServer(t)
	router := server.Router()

	t.Run("Bookmark Add Frame", func(t *testing.T) {
		frame := `{"type":"BOOKMARK_ADD","title":"One Piece","url":"https://komikcast.li/manga/one-piece/"}`
		req, _ := http.NewRequest("POST", "/api/messages", bytes.NewBufferString(frame))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}
		b, err := app.Store.GetBookmarkByURL("https://komikcast.li/manga/one-piece/")
		if err != nil {
			t.Fatalf("Expected the bookmark to be persisted: %v", err)
		}
		if b.Title != "One Piece" {
			t.Errorf("Expected title 'One Piece', got %q", b.Title)
		}
	})

	t.Run("Malformed Frame", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/api/messages", bytes.NewBufferString("{{{"))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("Expected status 400, got %d", rr.Code)
		}
	})
}

func TestJobHandlers(t *testing.T) {
	server, _ := servertest.SetupTestServer(t)
	router := server.Router()

	t.Run("Status", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/jobs/status", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}
	})

	t.Run("Run Unknown Job", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/api/jobs/run?name=no-such-job", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusConflict {
			t.Fatalf("Expected status 409, got %d", rr.Code)
		}
	})

	t.Run("Run Without Name", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/api/jobs/run", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("Expected status 400, got %d", rr.Code)
		}
	})
}
