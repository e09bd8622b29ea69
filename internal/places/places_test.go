package places

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"synqAPI/internal/httpclient"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		if !strings.Contains(q, "Bar One") || !strings.Contains(q, "Sofia") {
			t.Errorf("Query should contain name and location, got %q", q)
		}
		fmt.Fprint(w, `{"status":"OK","results":[{"name":"Bar One","rating":4.6,"formatted_address":"1 Main St","photos":[{"photo_reference":"ref123"}]}]}`)
	}))
	defer srv.Close()

	svc := NewServiceWithEndpoint(httpclient.New(httpclient.Config{}), srv.URL, "test-key")
	place, err := svc.Search(context.Background(), "Bar One", "Sofia")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if place.Rating != 4.6 || place.Address != "1 Main St" {
		t.Errorf("Unexpected place: %+v", place)
	}
	if !strings.Contains(place.PhotoURL, "ref123") {
		t.Errorf("Photo URL should embed the reference, got %q", place.PhotoURL)
	}
}

func TestSearchZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
	}))
	defer srv.Close()

	svc := NewServiceWithEndpoint(httpclient.New(httpclient.Config{}), srv.URL, "test-key")
	if _, err := svc.Search(context.Background(), "Nowhere", "Sofia"); err == nil {
		t.Fatalf("Expected error for zero results")
	}
}

func TestSearchNoPhoto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"OK","results":[{"name":"Bar Two","rating":0,"formatted_address":"2 Side St"}]}`)
	}))
	defer srv.Close()

	svc := NewServiceWithEndpoint(httpclient.New(httpclient.Config{}), srv.URL, "test-key")
	place, err := svc.Search(context.Background(), "Bar Two", "Sofia")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if place.PhotoURL != "" {
		t.Errorf("Expected empty photo URL, got %q", place.PhotoURL)
	}
	if place.Rating != 0 {
		t.Errorf("Expected zero rating passed through, got %v", place.Rating)
	}
}
