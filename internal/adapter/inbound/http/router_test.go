package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeStaticSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>spa</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1);"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestRouter_ProtectedPrefixGoesToProxy(t *testing.T) {
	t.Parallel()

	proxy := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	router := NewRouter("/v1/", writeStaticSite(t), "index.html", proxy)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/search?q=x", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want proxy's 418", rec.Code)
	}
}

func TestRouter_PathWithDotServesStaticAsset(t *testing.T) {
	t.Parallel()

	proxy := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("proxy called for a static asset path")
	})
	router := NewRouter("/v1/", writeStaticSite(t), "index.html", proxy)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "console.log(1);" {
		t.Errorf("body = %q, want the asset bytes", rec.Body.String())
	}
}

func TestRouter_ExtensionlessPathServesSPAPage(t *testing.T) {
	t.Parallel()

	proxy := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("proxy called for a client-side route")
	})
	router := NewRouter("/v1/", writeStaticSite(t), "index.html", proxy)

	for _, path := range []string{"/", "/search", "/detail/some-doc"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, rec.Code)
			continue
		}
		if rec.Body.String() != "<html>spa</html>" {
			t.Errorf("%s: body = %q, want the SPA page", path, rec.Body.String())
		}
	}
}

func TestRouter_MissingAssetIs404(t *testing.T) {
	t.Parallel()

	router := NewRouter("/v1/", writeStaticSite(t), "index.html", http.NotFoundHandler())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing.css", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRouter_NoStaticDirFallsBackTo404(t *testing.T) {
	t.Parallel()

	router := NewRouter("/v1/", "", "index.html", http.NotFoundHandler())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when no static site is configured", rec.Code)
	}
}
