package apischema

import (
	"sort"
	"testing"
)

const sampleJSON = `{
  "openapi": "3.0.0",
  "paths": {
    "/users": {
      "get": {
        "summary": "List users",
        "parameters": [
          {"name": "limit", "in": "query", "required": false}
        ]
      },
      "post": {"summary": "Create user"}
    },
    "/users/{id}": {
      "parameters": [
        {"name": "id", "in": "path", "required": true}
      ],
      "get": {
        "parameters": [
          {"name": "expand", "in": "query"}
        ]
      },
      "delete": {}
    }
  }
}`

const sampleYAML = `
openapi: "3.0.0"
paths:
  /health:
    get:
      summary: Health check
`

func endpointKey(e Endpoint) string { return e.Method + " " + e.Path }

func TestParseOpenAPI_JSON(t *testing.T) {
	endpoints, err := ParseOpenAPI([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(endpoints) != 4 {
		t.Fatalf("got %d endpoints, want 4", len(endpoints))
	}

	keys := make([]string, 0, len(endpoints))
	byKey := map[string]Endpoint{}
	for _, e := range endpoints {
		keys = append(keys, endpointKey(e))
		byKey[endpointKey(e)] = e
	}
	sort.Strings(keys)
	want := []string{"DELETE /users/{id}", "GET /users", "GET /users/{id}", "POST /users"}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("endpoint %d = %q, want %q", i, keys[i], k)
		}
	}

	list := byKey["GET /users"]
	if list.Summary != "List users" {
		t.Errorf("summary = %q", list.Summary)
	}
	if len(list.Parameters) != 1 || list.Parameters[0].Name != "limit" {
		t.Errorf("parameters = %+v", list.Parameters)
	}
}

func TestParseOpenAPI_MergesPathLevelParameters(t *testing.T) {
	endpoints, err := ParseOpenAPI([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, e := range endpoints {
		if endpointKey(e) != "GET /users/{id}" {
			continue
		}
		if len(e.Parameters) != 2 {
			t.Fatalf("parameters = %+v, want operation + path merged", e.Parameters)
		}
		names := map[string]Param{}
		for _, p := range e.Parameters {
			names[p.Name] = p
		}
		if !names["id"].Required || names["id"].In != "path" {
			t.Errorf("path parameter not inherited: %+v", names["id"])
		}
		if names["expand"].In != "query" {
			t.Errorf("operation parameter lost: %+v", names["expand"])
		}
	}
}

func TestParseOpenAPI_YAML(t *testing.T) {
	endpoints, err := ParseOpenAPI([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(endpoints) != 1 {
		t.Fatalf("got %d endpoints, want 1", len(endpoints))
	}
	if endpoints[0].Method != "GET" || endpoints[0].Path != "/health" {
		t.Errorf("unexpected endpoint: %+v", endpoints[0])
	}
}

func TestParseOpenAPI_NoPaths(t *testing.T) {
	if _, err := ParseOpenAPI([]byte(`{"openapi":"3.0.0"}`)); err == nil {
		t.Error("expected error for spec without paths")
	}
	if _, err := ParseOpenAPI([]byte(`not: [valid`)); err == nil {
		t.Error("expected error for malformed document")
	}
}
