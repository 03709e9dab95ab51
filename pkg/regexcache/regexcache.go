// Package regexcache provides a thread-safe cache for compiled regular
// expressions. Intercept rules and fuzz heuristics compile the same
// patterns repeatedly; caching keeps matching off the compile path.
package regexcache

import (
	"regexp"
	"sync"
)

var cache sync.Map

// Get returns a compiled regexp for the given pattern, compiling and
// caching it on first use. Invalid patterns return an error.
func Get(pattern string) (*regexp.Regexp, error) {
	if cached, ok := cache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	actual, _ := cache.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}

// MustGet returns a compiled regexp and panics on an invalid pattern.
// Use only for patterns fixed at build time.
func MustGet(pattern string) *regexp.Regexp {
	re, err := Get(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

// Clear removes all cached expressions. Primarily for tests.
func Clear() {
	cache.Range(func(key, _ any) bool {
		cache.Delete(key)
		return true
	})
}
