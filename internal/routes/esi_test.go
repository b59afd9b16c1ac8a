package routes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestESIRouteSource_Jumps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("flag") != "secure" {
			t.Errorf("flag = %q, want secure", r.URL.Query().Get("flag"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[30000001, 30000005, 30000009]"))
	}))
	defer srv.Close()

	src := NewESIRouteSource()
	src.SetBaseURL(srv.URL)

	jumps, err := src.Jumps(context.Background(), 30000001, 30000009, "secure")
	if err != nil {
		t.Fatalf("Jumps: %v", err)
	}
	// Three systems on the route means two gate jumps.
	if jumps != 2 {
		t.Errorf("jumps = %d, want 2", jumps)
	}
}

func TestESIRouteSource_NoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no route found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	src := NewESIRouteSource()
	src.SetBaseURL(srv.URL)

	_, err := src.Jumps(context.Background(), 1, 2, "secure")
	if !errors.Is(err, ErrNoRoute) {
		t.Errorf("err = %v, want ErrNoRoute", err)
	}
}

func TestESIRouteSource_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewESIRouteSource()
	src.SetBaseURL(srv.URL)

	_, err := src.Jumps(context.Background(), 1, 2, "secure")
	if err == nil {
		t.Fatal("500 response should be an error")
	}
	if errors.Is(err, ErrNoRoute) {
		t.Error("500 must not be treated as an authoritative no-route answer")
	}
}
