// Package apischema provides stateless API schema analyzers: OpenAPI
// endpoint extraction and GraphQL introspection review. Both are
// consumed by the scan orchestrator and usable standalone.
package apischema

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Param is one declared endpoint parameter.
type Param struct {
	Name     string `json:"name"`
	In       string `json:"in"` // query, path, header, cookie
	Required bool   `json:"required"`
}

// Endpoint is one (path, HTTP method) pair extracted from a spec.
type Endpoint struct {
	Path       string  `json:"path"`
	Method     string  `json:"method"`
	Summary    string  `json:"summary,omitempty"`
	Parameters []Param `json:"parameters,omitempty"`
}

// openAPISpec is the subset of an OpenAPI document the analyzer needs.
type openAPISpec struct {
	OpenAPI string                  `json:"openapi" yaml:"openapi"`
	Swagger string                  `json:"swagger" yaml:"swagger"`
	Paths   map[string]openAPIPath  `json:"paths" yaml:"paths"`
}

type openAPIPath struct {
	Get        *openAPIOperation `json:"get,omitempty" yaml:"get,omitempty"`
	Post       *openAPIOperation `json:"post,omitempty" yaml:"post,omitempty"`
	Put        *openAPIOperation `json:"put,omitempty" yaml:"put,omitempty"`
	Delete     *openAPIOperation `json:"delete,omitempty" yaml:"delete,omitempty"`
	Patch      *openAPIOperation `json:"patch,omitempty" yaml:"patch,omitempty"`
	Options    *openAPIOperation `json:"options,omitempty" yaml:"options,omitempty"`
	Head       *openAPIOperation `json:"head,omitempty" yaml:"head,omitempty"`
	Parameters []openAPIParam    `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

type openAPIOperation struct {
	Summary    string         `json:"summary,omitempty" yaml:"summary,omitempty"`
	Parameters []openAPIParam `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

type openAPIParam struct {
	Name     string `json:"name" yaml:"name"`
	In       string `json:"in" yaml:"in"`
	Required bool   `json:"required" yaml:"required"`
}

// ParseOpenAPI parses a JSON or YAML OpenAPI document and extracts one
// Endpoint per (path, method) pair with its declared parameters.
// Path-level parameters are merged into every operation; operation
// parameters override path parameters with the same name and location.
func ParseOpenAPI(data []byte) ([]Endpoint, error) {
	var spec openAPISpec
	if json.Valid(data) {
		if err := json.Unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("apischema: parse openapi json: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("apischema: parse openapi yaml: %w", err)
	}
	if len(spec.Paths) == 0 {
		return nil, fmt.Errorf("apischema: no paths in spec")
	}

	var endpoints []Endpoint
	for path, item := range spec.Paths {
		add := func(method string, op *openAPIOperation) {
			if op == nil {
				return
			}
			endpoints = append(endpoints, Endpoint{
				Path:       path,
				Method:     method,
				Summary:    op.Summary,
				Parameters: mergeParams(item.Parameters, op.Parameters),
			})
		}
		add("GET", item.Get)
		add("POST", item.Post)
		add("PUT", item.Put)
		add("DELETE", item.Delete)
		add("PATCH", item.Patch)
		add("OPTIONS", item.Options)
		add("HEAD", item.Head)
	}
	return endpoints, nil
}

func mergeParams(pathParams, opParams []openAPIParam) []Param {
	seen := make(map[string]bool, len(opParams))
	out := make([]Param, 0, len(opParams)+len(pathParams))
	for _, p := range opParams {
		seen[strings.ToLower(p.In+":"+p.Name)] = true
		out = append(out, Param{Name: p.Name, In: p.In, Required: p.Required})
	}
	for _, p := range pathParams {
		if !seen[strings.ToLower(p.In+":"+p.Name)] {
			out = append(out, Param{Name: p.Name, In: p.In, Required: p.Required})
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
