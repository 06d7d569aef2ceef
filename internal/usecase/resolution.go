package usecase

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Resolution is the outcome of extracting structured data from free-form
// model output: either the parsed value or a substituted fallback.
type Resolution[T any] struct {
	Value T
	// Err explains why the fallback was used; nil for parsed values.
	Err error
}

// Parsed wraps a successfully extracted value.
func Parsed[T any](v T) Resolution[T] {
	return Resolution[T]{Value: v}
}

// Fallback wraps a default value together with the reason it was needed.
func Fallback[T any](v T, reason error) Resolution[T] {
	if reason == nil {
		reason = fmt.Errorf("fallback used")
	}
	return Resolution[T]{Value: v, Err: reason}
}

// IsFallback reports whether the value is a substitute.
func (r Resolution[T]) IsFallback() bool {
	return r.Err != nil
}

// resolveJSON decodes raw as T, runs check on the result and falls back to
// def on any failure.
func resolveJSON[T any](raw string, check func(T) (T, error), def T) Resolution[T] {
	var v T
	if err := json.Unmarshal([]byte(unwrapFence(raw)), &v); err != nil {
		return Fallback(def, fmt.Errorf("decode json: %w", err))
	}
	if check != nil {
		checked, err := check(v)
		if err != nil {
			return Fallback(def, err)
		}
		v = checked
	}
	return Parsed(v)
}

// unwrapFence strips a surrounding Markdown code fence such as ```json.
func unwrapFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimLeft(s, "abcdefghijklmnopqrstuvwxyzJSON")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
