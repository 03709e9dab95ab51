package apischema

import (
	"testing"

	"github.com/seclab/seclab/pkg/finding"
)

const introspectionEnabled = `{
  "data": {
    "__schema": {
      "types": [
        {"name": "__Type", "kind": "OBJECT", "fields": [{"name": "apiToken"}]},
        {"name": "User", "kind": "OBJECT", "fields": [
          {"name": "email"},
          {"name": "passwordHash"},
          {"name": "apiKey"}
        ]},
        {"name": "Query", "kind": "OBJECT", "fields": [{"name": "users"}]}
      ]
    }
  }
}`

func TestAnalyzeIntrospection_Disabled(t *testing.T) {
	findings, err := AnalyzeIntrospection("http://example.com/graphql",
		[]byte(`{"data":{"__schema":null}}`))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("got %d findings, want none when introspection is disabled", len(findings))
	}
}

func TestAnalyzeIntrospection_Enabled(t *testing.T) {
	findings, err := AnalyzeIntrospection("http://example.com/graphql",
		[]byte(introspectionEnabled))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	// One base finding plus two sensitive fields (passwordHash, apiKey);
	// meta types starting with "__" are skipped.
	if len(findings) != 3 {
		t.Fatalf("got %d findings, want 3: %+v", len(findings), findings)
	}

	base := findings[0]
	if base.Title != "GraphQL introspection enabled" || base.Severity != finding.Medium {
		t.Errorf("unexpected base finding: %+v", base)
	}
	if !base.Confirmed {
		t.Error("introspection finding is directly observed and must be confirmed")
	}
	for _, f := range findings {
		// Schema exposure fits none of the scan classes; leave the
		// class empty rather than borrowing an unrelated one.
		if f.Type != finding.Class("") {
			t.Errorf("finding %q carries class %q, want none", f.Title, f.Type)
		}
	}

	evidence := map[string]bool{}
	for _, f := range findings[1:] {
		if f.Severity != finding.High {
			t.Errorf("sensitive field severity = %q, want high", f.Severity)
		}
		evidence[f.Evidence] = true
	}
	if !evidence["User.passwordHash"] || !evidence["User.apiKey"] {
		t.Errorf("sensitive fields missed: %v", evidence)
	}
}

func TestAnalyzeIntrospection_MalformedJSON(t *testing.T) {
	if _, err := AnalyzeIntrospection("http://example.com/graphql", []byte(`{`)); err == nil {
		t.Error("expected parse error")
	}
}
