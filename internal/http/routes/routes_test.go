package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
)

func TestRegisterRoutesGreeting(t *testing.T) {
	router := chi.NewRouter()
	Register(humachi.New(router, huma.DefaultConfig("RoutesTest", "test")))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestRegisterRoutesOnlyRoot(t *testing.T) {
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("RoutesTest", "test"))
	Register(api)

	if n := len(api.OpenAPI().Paths); n != 1 {
		t.Fatalf("expected exactly one documented path, got %d", n)
	}
}
