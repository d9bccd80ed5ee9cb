// Package models defines the records shared by the signup and login flows
// and the JSON shape they are persisted in.
package models

import "fmt"

// FieldDefinition is a custom attribute a user declares at signup.
// Two definitions are the same field when both Label and Type match.
type FieldDefinition struct {
	Label string `json:"label" validate:"required"`
	Type  string `json:"type" validate:"required"`
}

// Equal reports whether both definitions name the same field.
func (f FieldDefinition) Equal(other FieldDefinition) bool {
	return f.Label == other.Label && f.Type == other.Type
}

// UserRecord is one signed-up user. Password holds whatever the configured
// password hasher produced, plaintext by default.
type UserRecord struct {
	Name     string            `json:"name"`
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Fields   []FieldDefinition `json:"fields"`
}

// Clone returns a deep copy, so callers can't mutate a flow's list through
// a returned record.
func (u UserRecord) Clone() UserRecord {
	c := u
	c.Fields = make([]FieldDefinition, len(u.Fields))
	copy(c.Fields, u.Fields)
	return c
}

func (u UserRecord) String() string {
	return fmt.Sprintf("%s <%s> fields=%d", u.Name, u.Email, len(u.Fields))
}

// DynamicField is a distinct field definition with the synthetic control
// name the login form keys its input by.
type DynamicField struct {
	Label       string `json:"label"`
	Type        string `json:"type"`
	ControlName string `json:"controlName"`
}

// CloneRecords deep-copies a record list. The result is never nil.
func CloneRecords(records []UserRecord) []UserRecord {
	out := make([]UserRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// DistinctFields returns every field definition found across records, once
// per (label, type) pair, in first-seen order.
func DistinctFields(records []UserRecord) []FieldDefinition {
	fields := make([]FieldDefinition, 0)
	for _, r := range records {
		for _, f := range r.Fields {
			if indexOfField(fields, f) == -1 {
				fields = append(fields, f)
			}
		}
	}
	return fields
}

func indexOfField(fields []FieldDefinition, f FieldDefinition) int {
	for i, existing := range fields {
		if existing.Equal(f) {
			return i
		}
	}
	return -1
}
