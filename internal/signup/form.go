package signup

import (
	"fmt"

	"github.com/dmitrijs2005/userforms/internal/common"
	"github.com/dmitrijs2005/userforms/internal/models"
	"github.com/dmitrijs2005/userforms/internal/validation"
)

// Form is the input of a signup or an edit. Fields are the custom field
// slots; every slot needs both a label and a type.
type Form struct {
	Name     string                   `json:"name" validate:"required"`
	Email    string                   `json:"email" validate:"required,ngemail"`
	Password string                   `json:"password" validate:"required,minlength=6"`
	Fields   []models.FieldDefinition `json:"fields" validate:"dive"`
}

// AddFieldSlot appends an empty slot and returns its index.
func (f *Form) AddFieldSlot() int {
	f.Fields = append(f.Fields, models.FieldDefinition{})
	return len(f.Fields) - 1
}

// RemoveFieldSlot drops slot i and shifts later slots down.
func (f *Form) RemoveFieldSlot(i int) error {
	if i < 0 || i >= len(f.Fields) {
		return fmt.Errorf("field slot %d of %d: %w", i, len(f.Fields), common.ErrIndexOutOfRange)
	}
	f.Fields = append(f.Fields[:i], f.Fields[i+1:]...)
	return nil
}

// SetFieldSlot fills slot i with a label and a type.
func (f *Form) SetFieldSlot(i int, label, typ string) error {
	if i < 0 || i >= len(f.Fields) {
		return fmt.Errorf("field slot %d of %d: %w", i, len(f.Fields), common.ErrIndexOutOfRange)
	}
	f.Fields[i] = models.FieldDefinition{Label: label, Type: typ}
	return nil
}

// Validate reports every failed constraint as a *validation.ValidationError.
func (f Form) Validate() error {
	return validation.Struct(f)
}

func (f Form) clone() Form {
	c := f
	c.Fields = append(make([]models.FieldDefinition, 0, len(f.Fields)), f.Fields...)
	return c
}

// formFromRecord fills a form with a stored record, as the edit buffer does.
func formFromRecord(u models.UserRecord) Form {
	return Form{
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
		Fields:   append(make([]models.FieldDefinition, 0, len(u.Fields)), u.Fields...),
	}
}
