package fuzz

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/seclab/seclab/pkg/exchange"
	"github.com/seclab/seclab/pkg/regexcache"
)

// InsertionType is where in the request a payload is substituted.
type InsertionType string

const (
	InsertQuery  InsertionType = "query"  // query parameter value
	InsertBody   InsertionType = "body"   // JSON or form body field
	InsertHeader InsertionType = "header" // header value
	InsertPath   InsertionType = "path"   // {key} path placeholder
)

// InsertionPoint selects the mutation target within a request.
type InsertionPoint struct {
	Type InsertionType `json:"type"`
	Key  string        `json:"key"`
}

// ErrBadInsertionPoint is returned for an unrecognized insertion type
// or an empty key.
var ErrBadInsertionPoint = errors.New("fuzz: invalid insertion point")

// mutate builds a fresh request with the payload inserted at the given
// point. The base request is never modified; each mutation gets its own
// identifier so responses correlate per payload.
func mutate(base *exchange.Request, point InsertionPoint, payload string) (*exchange.Request, error) {
	if point.Key == "" {
		return nil, ErrBadInsertionPoint
	}

	req := base.Clone()
	req.ID = uuid.New().String() // each mutation correlates its own response

	switch point.Type {
	case InsertQuery:
		values, err := url.ParseQuery(req.Query)
		if err != nil {
			values = url.Values{}
		}
		values.Set(point.Key, payload)
		req.Query = values.Encode()

	case InsertHeader:
		req.Headers = req.Headers.Set(point.Key, payload)

	case InsertPath:
		req.Path = strings.ReplaceAll(req.Path, "{"+point.Key+"}", payload)

	case InsertBody:
		req.Body = mutateBody(req.Body, point.Key, payload)

	default:
		return nil, ErrBadInsertionPoint
	}

	return req, nil
}

// mutateBody first attempts a structured JSON mutation of the field;
// when the body is not valid JSON it falls back to a literal key=value
// substring replacement. Malformed bodies are common fuzz targets, so
// the fallback path is load-bearing, not defensive.
func mutateBody(body []byte, key, payload string) []byte {
	if gjson.ValidBytes(body) {
		if mutated, err := sjson.SetBytes(body, key, payload); err == nil {
			return mutated
		}
	}
	return replaceFormField(body, key, payload)
}

// replaceFormField rewrites the first key=value pair in a form-style
// body, or appends one when the key is absent.
func replaceFormField(body []byte, key, payload string) []byte {
	re := formFieldPattern(key)
	if re.Match(body) {
		return re.ReplaceAll(body, []byte(key+"="+payload))
	}
	if len(body) == 0 {
		return []byte(key + "=" + payload)
	}
	return append(append(body, '&'), []byte(key+"="+payload)...)
}

func formFieldPattern(key string) *regexp.Regexp {
	return regexcache.MustGet(regexp.QuoteMeta(key) + `=[^&]*`)
}
