// Package records talks to the record tables that back the inventory service.
// A RecordClient speaks the generic record shape of the hosted platform; the
// typed adapters in package repo map those records onto application models.
package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	TableInventory  = "inventory"
	TableRequests   = "requests"
	TableCategories = "categories"
)

// IDField is the key under which every record carries its identifier.
const IDField = "Id"

// Record is a single row of a remote table, keyed by remote field name.
type Record map[string]any

// ID returns the integer identifier of the record, or 0 if it has none.
func (r Record) ID() int {
	n, err := ToInt(r[IDField])
	if err != nil {
		return 0
	}
	return n
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

type Operator string

const (
	OpExactMatch        Operator = "ExactMatch"
	OpLessThanOrEqualTo Operator = "LessThanOrEqualTo"
)

// Condition restricts a fetch. Compare against another field of the same
// record by setting ValueField instead of Value.
type Condition struct {
	FieldName  string   `json:"FieldName"`
	Operator   Operator `json:"Operator"`
	Value      any      `json:"Value,omitempty"`
	ValueField string   `json:"ValueField,omitempty"`
}

type Query struct {
	Where []Condition `json:"where,omitempty"`
}

// RecordClient is the contract of the hosted record platform.
type RecordClient interface {
	FetchRecords(ctx context.Context, table string, q Query) ([]Record, error)
	GetRecordByID(ctx context.Context, table string, id int) (Record, error)
	CreateRecord(ctx context.Context, table string, fields Record) (Record, error)
	UpdateRecord(ctx context.Context, table string, id int, fields Record) (Record, error)
	DeleteRecord(ctx context.Context, table string, id int) error
}

var (
	// ErrNotFound is returned when a record id is absent from its table.
	ErrNotFound = errors.New("record not found")

	// ErrBackend is returned when a call failed or the platform reported an unsuccessful status.
	ErrBackend = errors.New("record backend failure")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level rejections, either from the platform
// or from decoding a record whose shape does not match the expected schema.
type ValidationError struct {
	Table  string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Table, strings.Join(parts, "; "))
}

func backendError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBackend, fmt.Sprintf(format, args...))
}
