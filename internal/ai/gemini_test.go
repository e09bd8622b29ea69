package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"synqAPI/internal/httpclient"
)

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`["A","B"]`, `["A","B"]`},
		{"```json\n[\"A\",\"B\"]\n```", `["A","B"]`},
		{"```JSON\n[\"A\",\"B\"]\n```", `["A","B"]`},
		{"```\n[\"A\",\"B\"]\n```", `["A","B"]`},
		{"  \n```json\n[\"A\"]\n```\n  ", `["A"]`},
	}
	for _, c := range cases {
		if got := StripCodeFences(c.in); got != c.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseNameListFencedAndBareAgree(t *testing.T) {
	bare, err := ParseNameList(`["Bar One", "Bar Two", ""]`)
	if err != nil {
		t.Fatalf("ParseNameList bare failed: %v", err)
	}
	fenced, err := ParseNameList("```json\n[\"Bar One\", \"Bar Two\", \"\"]\n```")
	if err != nil {
		t.Fatalf("ParseNameList fenced failed: %v", err)
	}
	want := []string{"Bar One", "Bar Two"}
	if !reflect.DeepEqual(bare, want) || !reflect.DeepEqual(fenced, want) {
		t.Errorf("bare=%v fenced=%v, want %v", bare, fenced, want)
	}
}

func TestParseNameListRejectsProse(t *testing.T) {
	if _, err := ParseNameList("Sure! Here are some venues you might like."); err == nil {
		t.Errorf("Expected error for non-JSON output")
	}
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("Missing api key header")
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Bad request body: %v", err)
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"[\"Bar One\"]"}]}}]}`)
	}))
	defer srv.Close()

	svc := NewGeminiServiceWithEndpoint(httpclient.New(httpclient.Config{}), srv.URL, "test-key")
	out, err := svc.Generate(context.Background(), "suggest bars")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != `["Bar One"]` {
		t.Errorf("Expected candidate text, got %q", out)
	}
}

func TestGenerateNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	svc := NewGeminiServiceWithEndpoint(httpclient.New(httpclient.Config{}), srv.URL, "test-key")
	if _, err := svc.Generate(context.Background(), "suggest bars"); err == nil {
		t.Errorf("Expected error for empty candidate list")
	}
}
