package apischema

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seclab/seclab/pkg/finding"
)

// sensitiveTerms flag field names that should never be reachable via an
// exposed schema.
var sensitiveTerms = []string{"password", "secret", "token", "apikey"}

// introspectionResponse is the standard GraphQL introspection shape.
type introspectionResponse struct {
	Data struct {
		Schema *struct {
			Types []struct {
				Name   string `json:"name"`
				Kind   string `json:"kind"`
				Fields []struct {
					Name string `json:"name"`
				} `json:"fields"`
			} `json:"types"`
		} `json:"__schema"`
	} `json:"data"`
}

// AnalyzeIntrospection reviews a GraphQL introspection response. Two
// conditions are always worth reporting: introspection being enabled
// at all, and any field whose name contains a sensitive term. A
// response without __schema data yields no findings: introspection is
// disabled, which is the desired state.
func AnalyzeIntrospection(targetURL string, data []byte) ([]finding.Vulnerability, error) {
	var resp introspectionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("apischema: parse introspection: %w", err)
	}
	if resp.Data.Schema == nil {
		return nil, nil
	}

	now := time.Now()
	findings := []finding.Vulnerability{{
		ID:          uuid.New().String(),
		Severity:    finding.Medium,
		Title:       "GraphQL introspection enabled",
		Description: "The GraphQL endpoint answers introspection queries, exposing the entire schema to anyone who can reach it.",
		Remediation: "Disable introspection in production, or restrict it to authenticated internal clients.",
		URL:         targetURL,
		Confirmed:   true,
		DiscoveredAt: now,
	}}

	for _, typ := range resp.Data.Schema.Types {
		// Meta types always appear in introspection output.
		if strings.HasPrefix(typ.Name, "__") {
			continue
		}
		for _, field := range typ.Fields {
			if term := sensitiveTerm(field.Name); term != "" {
				findings = append(findings, finding.Vulnerability{
					ID:          uuid.New().String(),
					Severity:    finding.High,
					Title:       "Sensitive field exposed in GraphQL schema",
					Description: fmt.Sprintf("Type %q exposes field %q, which matches the sensitive term %q.", typ.Name, field.Name, term),
					Evidence:    typ.Name + "." + field.Name,
					Remediation: "Remove credential material from the public schema or mask the field behind access control.",
					URL:         targetURL,
					Parameter:   field.Name,
					Confirmed:   true,
					DiscoveredAt: now,
				})
			}
		}
	}
	return findings, nil
}

func sensitiveTerm(name string) string {
	lower := strings.ToLower(name)
	for _, term := range sensitiveTerms {
		if strings.Contains(lower, term) {
			return term
		}
	}
	return ""
}
