package models

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Error constants for person operations. Messages are user-facing.
var (
	ErrPersonNotFound     = errors.New("Pessoa não encontrada")
	ErrCPFAlreadyExists   = errors.New("CPF já cadastrado")
	ErrEmailAlreadyExists = errors.New("E-mail já cadastrado")
	ErrCEPNotFound        = errors.New("CEP não encontrado")
	ErrInvalidCEP         = errors.New("CEP inválido")
)

// ConflictField returns the person field a uniqueness error refers to, or ""
func ConflictField(err error) string {
	switch {
	case errors.Is(err, ErrCPFAlreadyExists):
		return FieldCPF
	case errors.Is(err, ErrEmailAlreadyExists):
		return FieldEmail
	default:
		return ""
	}
}

// FieldErrors maps a field name to its validation message. A missing key
// means the field is valid.
type FieldErrors map[string]string

// Details returns the errors as a list sorted by field name
func (fe FieldErrors) Details() []ValidationError {
	out := make([]ValidationError, 0, len(fe))
	for field, msg := range fe {
		out = append(out, ValidationError{Field: field, Message: msg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// ValidationError describes one invalid field
type ValidationError struct {
	Field   string `json:"field" example:"cpf"`
	Message string `json:"message" example:"CPF inválido"`
}

// APIError is the error body returned by the API and the BFF
type APIError struct {
	Status    int               `json:"status" example:"409"`
	ErrorCode string            `json:"error" example:"Conflict"`
	Message   string            `json:"message" example:"CPF já cadastrado"`
	Field     string            `json:"field,omitempty" example:"cpf"`
	Details   []ValidationError `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Error implements error
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%d %s: %s (%s)", e.Status, e.ErrorCode, e.Message, e.Field)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.ErrorCode, e.Message)
}

// FieldErrors returns the details as a FieldErrors map
func (e *APIError) FieldErrors() FieldErrors {
	out := make(FieldErrors, len(e.Details))
	for _, d := range e.Details {
		out[d.Field] = d.Message
	}
	return out
}
