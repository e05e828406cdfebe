package validation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ListKey is the key used for errors that concern the whole field list
// rather than one entry of it.
const ListKey = "fields"

// Errors collects validation messages keyed by input path
// ("name", "fields.3.options", "12", "fields"). Messages accumulate: adding
// a second message under the same key keeps the first one.
type Errors struct {
	messages map[string][]string
	order    []string // key insertion order, for stable output
}

// New returns an empty collector.
func New() *Errors {
	return &Errors{messages: make(map[string][]string)}
}

// Add appends a message under key.
func (e *Errors) Add(key, message string) {
	if e.messages == nil {
		e.messages = make(map[string][]string)
	}
	if _, ok := e.messages[key]; !ok {
		e.order = append(e.order, key)
	}
	e.messages[key] = append(e.messages[key], message)
}

// Addf is Add with formatting.
func (e *Errors) Addf(key, format string, args ...any) {
	e.Add(key, fmt.Sprintf(format, args...))
}

// Merge copies every message of other into e.
func (e *Errors) Merge(other *Errors) {
	if other == nil {
		return
	}
	for _, key := range other.order {
		for _, msg := range other.messages[key] {
			e.Add(key, msg)
		}
	}
}

// Has reports whether any message is recorded under key.
func (e *Errors) Has(key string) bool {
	if e == nil {
		return false
	}
	return len(e.messages[key]) > 0
}

// Get returns the messages recorded under key.
func (e *Errors) Get(key string) []string {
	if e == nil {
		return nil
	}
	return e.messages[key]
}

// Keys returns the keys in the order they were first added.
func (e *Errors) Keys() []string {
	if e == nil {
		return nil
	}
	return append([]string(nil), e.order...)
}

// Empty reports whether nothing was collected.
func (e *Errors) Empty() bool {
	return e == nil || len(e.order) == 0
}

// Len returns the number of distinct keys.
func (e *Errors) Len() int {
	if e == nil {
		return 0
	}
	return len(e.order)
}

// Map returns a copy of the collected messages.
func (e *Errors) Map() map[string][]string {
	out := make(map[string][]string, e.Len())
	if e == nil {
		return out
	}
	for k, v := range e.messages {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// OrNil returns e as an error, or nil when nothing was collected, so callers
// can write `return errs.OrNil()`.
func (e *Errors) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

// Error implements error.
func (e *Errors) Error() string {
	if e.Empty() {
		return "validation failed"
	}
	keys := e.Keys()
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.messages[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// MarshalJSON renders the collector as a plain object of message lists.
func (e *Errors) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Map())
}
