package exchange

import (
	"testing"
)

func TestHeaders_GetCaseInsensitive(t *testing.T) {
	h := Headers{{Name: "Content-Type", Value: "application/json"}}
	if got := h.Get("content-type"); got != "application/json" {
		t.Errorf("Get = %q, want application/json", got)
	}
	if got := h.Get("X-Missing"); got != "" {
		t.Errorf("Get for absent header = %q, want empty", got)
	}
}

func TestHeaders_SetReplacesInPlace(t *testing.T) {
	h := Headers{
		{Name: "Accept", Value: "*/*"},
		{Name: "X-Token", Value: "old"},
	}
	h = h.Set("x-token", "new")
	if len(h) != 2 {
		t.Fatalf("expected 2 headers, got %d", len(h))
	}
	// Replacement keeps the original name casing and position.
	if h[1].Name != "X-Token" || h[1].Value != "new" {
		t.Errorf("got %+v, want X-Token=new in place", h[1])
	}
}

func TestHeaders_SetAppendsNew(t *testing.T) {
	var h Headers
	h = h.Set("User-Agent", "seclab")
	if len(h) != 1 || h[0].Name != "User-Agent" {
		t.Errorf("unexpected headers: %+v", h)
	}
}

func TestNewRequest(t *testing.T) {
	req, err := NewRequest("post", "https://app.example.com/api/users?limit=10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ID == "" {
		t.Error("expected an assigned ID")
	}
	if req.Method != "POST" {
		t.Errorf("method = %q, want POST", req.Method)
	}
	if req.Scheme != "https" || req.Host != "app.example.com" {
		t.Errorf("unexpected URL parts: %s://%s", req.Scheme, req.Host)
	}
	if req.Path != "/api/users" || req.Query != "limit=10" {
		t.Errorf("path=%q query=%q", req.Path, req.Query)
	}
	if req.CapturedAt.IsZero() {
		t.Error("expected capture timestamp")
	}
}

func TestRequest_URLRoundTrip(t *testing.T) {
	raw := "http://example.com/search?q=test"
	req, err := NewRequest("GET", raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.URL(); got != raw {
		t.Errorf("URL() = %q, want %q", got, raw)
	}
}

func TestRequest_CloneIsDeep(t *testing.T) {
	req, _ := NewRequest("GET", "http://example.com/")
	req.Headers = req.Headers.Set("X-Test", "a")
	req.Body = []byte("body")
	req.Tags = []string{"tag"}

	clone := req.Clone()
	clone.Headers = clone.Headers.Set("X-Test", "b")
	clone.Body[0] = 'x'
	clone.Tags[0] = "changed"

	if req.Headers.Get("X-Test") != "a" {
		t.Error("clone shares header storage with original")
	}
	if string(req.Body) != "body" {
		t.Error("clone shares body storage with original")
	}
	if req.Tags[0] != "tag" {
		t.Error("clone shares tag storage with original")
	}
	if clone.ID != req.ID {
		t.Error("clone must keep the same ID")
	}
}
