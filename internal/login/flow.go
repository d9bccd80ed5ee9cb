// Package login authenticates a login attempt against the signed-up users
// and exposes the custom fields found across them as dynamic form controls.
package login

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/userforms/internal/common"
	"github.com/dmitrijs2005/userforms/internal/logging"
	"github.com/dmitrijs2005/userforms/internal/models"
	"github.com/dmitrijs2005/userforms/internal/password"
	"github.com/dmitrijs2005/userforms/internal/users"
	"github.com/dmitrijs2005/userforms/internal/validation"
)

// Messages a Notifier receives after a login attempt.
const (
	MessageSuccess = "Login successful!"
	MessageFailure = "Invalid email or password."
)

// Notifier shows the outcome of a login attempt to the user.
type Notifier interface {
	Notify(ctx context.Context, msg string)
}

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(ctx context.Context, msg string)

func (f NotifyFunc) Notify(ctx context.Context, msg string) { f(ctx, msg) }

// LoginForm is a login attempt. Dynamic holds one value per derived field,
// keyed by control name.
type LoginForm struct {
	Email    string            `json:"email" validate:"required,ngemail"`
	Password string            `json:"password" validate:"required"`
	Dynamic  map[string]string `json:"dynamic"`
}

type Flow struct {
	repo   users.Repository
	hasher password.Hasher
	logger logging.Logger

	users  []models.UserRecord
	schema []models.DynamicField
}

func NewFlow(repo users.Repository, hasher password.Hasher, logger logging.Logger) *Flow {
	return &Flow{
		repo:   repo,
		hasher: hasher,
		logger: logger,
		users:  make([]models.UserRecord, 0),
		schema: make([]models.DynamicField, 0),
	}
}

// Load reads the stored users and recomputes the field schema.
func (f *Flow) Load(ctx context.Context) ([]models.UserRecord, error) {
	list, err := f.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	f.users = list
	f.schema = DeriveFieldSchema(list)

	f.logger.Debug(ctx, "login loaded", "users", len(list), "dynamic_fields", len(f.schema))
	return models.CloneRecords(list), nil
}

// DeriveFieldSchema returns one control per distinct (label, type) pair
// across records, in first-seen order, named dynamic_0, dynamic_1, ...
func DeriveFieldSchema(records []models.UserRecord) []models.DynamicField {
	fields := models.DistinctFields(records)

	schema := make([]models.DynamicField, len(fields))
	for i, fd := range fields {
		schema[i] = models.DynamicField{
			Label:       fd.Label,
			Type:        fd.Type,
			ControlName: fmt.Sprintf("dynamic_%d", i),
		}
	}
	return schema
}

func (f *Flow) Schema() []models.DynamicField {
	return append(make([]models.DynamicField, 0, len(f.schema)), f.schema...)
}

// Authenticate returns the first loaded user whose email matches exactly and
// whose stored password accepts candidate. Any mismatch is
// common.ErrInvalidCredentials.
func (f *Flow) Authenticate(email, candidate string) (models.UserRecord, error) {
	for _, u := range f.users {
		if u.Email == email && f.hasher.Verify(u.Password, candidate) {
			return u.Clone(), nil
		}
	}
	return models.UserRecord{}, common.ErrInvalidCredentials
}

// Validate checks the login form the way it is rendered: email and
// password plus a non-empty value for every derived control.
func (f *Flow) Validate(form LoginForm) error {
	verr := &validation.ValidationError{}
	if err := validation.Collect(form, verr); err != nil {
		return err
	}
	for _, c := range f.schema {
		if form.Dynamic[c.ControlName] == "" {
			verr.Add("dynamic."+c.ControlName, "required")
		}
	}
	return verr.OrNil()
}

// Submit validates form, authenticates it and notifies n of the outcome.
// Nothing is notified when validation fails. Dynamic values are required by
// the form but play no part in authentication.
func (f *Flow) Submit(ctx context.Context, form LoginForm, n Notifier) (models.UserRecord, error) {
	if err := f.Validate(form); err != nil {
		return models.UserRecord{}, err
	}

	u, err := f.Authenticate(form.Email, form.Password)
	if err != nil {
		f.logger.Info(ctx, "login failed", "email", form.Email)
		n.Notify(ctx, MessageFailure)
		return models.UserRecord{}, err
	}

	f.logger.Info(ctx, "login succeeded", "email", u.Email)
	n.Notify(ctx, MessageSuccess)
	return u, nil
}
