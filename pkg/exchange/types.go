// Package exchange holds captured HTTP request/response pairs and the
// per-exchange wait handles used by the interception proxy to suspend
// and resume traffic.
package exchange

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Header is one request or response header. Names are unique within a
// header list and preserve their original casing.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Headers is an ordered, case-preserving header list.
type Headers []Header

// Get returns the value of the named header, matching case-insensitively.
func (h Headers) Get(name string) string {
	for _, hdr := range h {
		if strings.EqualFold(hdr.Name, name) {
			return hdr.Value
		}
	}
	return ""
}

// Set replaces the named header in place or appends it, keeping names
// unique. The stored name keeps the caller's casing on insert and the
// original casing on replace.
func (h Headers) Set(name, value string) Headers {
	for i, hdr := range h {
		if strings.EqualFold(hdr.Name, name) {
			h[i].Value = value
			return h
		}
	}
	return append(h, Header{Name: name, Value: value})
}

// Clone returns a deep copy.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	out := make(Headers, len(h))
	copy(out, h)
	return out
}

// Request is a captured HTTP request. Once a response is attached it is
// treated as immutable except for fields deliberately rewritten during
// interception (method, headers, body, URL parts).
type Request struct {
	ID          string    `json:"id"`
	Method      string    `json:"method"`
	Scheme      string    `json:"scheme"`
	Host        string    `json:"host"`
	Path        string    `json:"path"`
	Query       string    `json:"query"`
	Headers     Headers   `json:"headers,omitempty"`
	Body        []byte    `json:"body,omitempty"`
	CapturedAt  time.Time `json:"captured_at"`
	Intercepted bool      `json:"intercepted"`
	Tags        []string  `json:"tags,omitempty"`
	Note        string    `json:"note,omitempty"`
}

// NewRequest builds a Request from a method and raw URL, assigning a
// fresh identifier and capture timestamp.
func NewRequest(method, rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return &Request{
		ID:         uuid.New().String(),
		Method:     strings.ToUpper(method),
		Scheme:     u.Scheme,
		Host:       u.Host,
		Path:       u.Path,
		Query:      u.RawQuery,
		CapturedAt: time.Now(),
	}, nil
}

// URL reassembles the request URL.
func (r *Request) URL() string {
	u := url.URL{
		Scheme:   r.Scheme,
		Host:     r.Host,
		Path:     r.Path,
		RawQuery: r.Query,
	}
	return u.String()
}

// Clone returns a deep copy with the same identifier.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	out := *r
	out.Headers = r.Headers.Clone()
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	if r.Tags != nil {
		out.Tags = append([]string(nil), r.Tags...)
	}
	return &out
}

// Response is a captured HTTP response. Exactly one response may be
// attached to a request.
type Response struct {
	ID         string        `json:"id"`
	RequestID  string        `json:"request_id"`
	StatusCode int           `json:"status_code"`
	StatusText string        `json:"status_text,omitempty"`
	Headers    Headers       `json:"headers,omitempty"`
	Body       []byte        `json:"body,omitempty"`
	Latency    time.Duration `json:"latency"`
	ReceivedAt time.Time     `json:"received_at"`
}

// Exchange pairs one request with zero or one response. Highlight is
// UI-only metadata carried through untouched.
type Exchange struct {
	Request   *Request  `json:"request"`
	Response  *Response `json:"response,omitempty"`
	Highlight string    `json:"highlight,omitempty"`
}
