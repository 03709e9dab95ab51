// Package iohelper provides helpers for reading HTTP response bodies
// with size limits and for draining connections so they can be reused.
package iohelper

import (
	"io"
	"log/slog"
)

// Body size limits.
const (
	// SmallMaxBodySize is for header probes and status pages (8KB).
	SmallMaxBodySize int64 = 8 * 1024

	// DefaultMaxBodySize is for general responses (1MB).
	DefaultMaxBodySize int64 = 1024 * 1024
)

// ReadBody reads from r with a size limit. A nil reader yields an empty
// slice. The limit prevents memory exhaustion from oversized responses.
func ReadBody(r io.Reader, maxSize int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// ReadBodyDefault reads from r with the default 1MB limit.
func ReadBodyDefault(r io.Reader) ([]byte, error) {
	return ReadBody(r, DefaultMaxBodySize)
}

// ReadBodyOrLog reads the body with the default limit and logs any error.
// Returns the bytes read so far (possibly nil).
func ReadBodyOrLog(r io.Reader, logger *slog.Logger) []byte {
	data, err := ReadBodyDefault(r)
	if err != nil && logger != nil {
		logger.Warn("body read failed", slog.String("error", err.Error()))
	}
	return data
}

// DrainAndClose reads any remaining data from r and closes it if it is a
// ReadCloser. Always returns nil so it can be used in defer.
func DrainAndClose(r io.Reader) error {
	if r == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 64*1024))
	if rc, ok := r.(io.ReadCloser); ok {
		rc.Close()
	}
	return nil
}
