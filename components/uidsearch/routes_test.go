package uidsearch

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMountPath_JoinsBasePath(t *testing.T) {
	cases := map[[2]string]string{
		{"/admin", "/autocomplete/uid"}: "/admin/autocomplete/uid",
		{"admin", "autocomplete/uid"}:   "/admin/autocomplete/uid",
		{"/docs/", "/uids"}:             "/docs/uids",
		{"", "/autocomplete/uid"}:       "/autocomplete/uid",
		{"/", ""}:                       "/",
	}
	for in, want := range cases {
		if got := MountPath(in[0], in[1]); got != want {
			t.Fatalf("MountPath(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}
}

func TestComponent_RegisterRoutes(t *testing.T) {
	mux := http.NewServeMux()
	component := New(WithEntries(sampleEntries), WithRoutePath("/uids"))
	pattern, err := component.RegisterRoutes(mux, "/admin")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pattern != "/admin/uids" {
		t.Fatalf("unexpected registered pattern: %q", pattern)
	}
	if got := component.Options().RoutePath; got != "/uids" {
		t.Fatalf("unexpected route path %q", got)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, pattern+"?q=sw", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	if _, err := component.RegisterRoutes(nil, "/"); err == nil {
		t.Fatal("expected an error for a nil mux")
	}
}
