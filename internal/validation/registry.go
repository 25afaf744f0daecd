// Package validation holds the per-field rules shared by the form, the API
// and the CLI. Rules are registered by field name; unregistered fields are
// only required to be non-blank.
package validation

import (
	"strings"
	"sync"
	"time"

	"github.com/pablogoliveira/personia-hub/internal/models"
)

// Registry maps field names to rules
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule
	now   func() time.Time
}

// Option configures a Registry
type Option func(*Registry)

// WithClock sets the clock used by date rules
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry returns a registry holding the person rules
func NewRegistry(opts ...Option) *Registry {
	r := NewEmptyRegistry(opts...)
	for _, rule := range PersonRules() {
		r.Register(rule)
	}
	return r
}

// NewEmptyRegistry returns a registry without rules
func NewEmptyRegistry(opts ...Option) *Registry {
	r := &Registry{
		rules: make(map[string]Rule),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds or replaces the rule for rule.Field
func (r *Registry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.Field] = rule
}

// Rule returns the rule registered for field
func (r *Registry) Rule(field string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[field]
	return rule, ok
}

// ValidateField returns the message for the first failed check of field, or
// "" when value is valid
func (r *Registry) ValidateField(field, value string) string {
	rule, ok := r.Rule(field)
	blank := strings.TrimSpace(value) == ""
	if !ok {
		if blank {
			return MsgFieldRequired
		}
		return ""
	}

	if blank {
		if rule.Optional {
			return ""
		}
		return rule.RequiredMessage
	}

	now := r.now()
	for _, check := range rule.Checks {
		if msg := check.run(value, now); msg != "" {
			return msg
		}
	}
	return ""
}

// ValidatePerson validates every person field
func (r *Registry) ValidatePerson(p models.PersonInput) models.FieldErrors {
	errs := models.FieldErrors{}
	for _, field := range models.FieldNames() {
		value, _ := p.Field(field)
		if msg := r.ValidateField(field, value); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}

var defaultRegistry = NewRegistry()

// Default returns the shared registry with the person rules
func Default() *Registry {
	return defaultRegistry
}

// ValidateField validates field with the default registry
func ValidateField(field, value string) string {
	return defaultRegistry.ValidateField(field, value)
}

// ValidatePerson validates p with the default registry
func ValidatePerson(p models.PersonInput) models.FieldErrors {
	return defaultRegistry.ValidatePerson(p)
}
