// Package signup implements the signup side of the user forms: creating,
// listing, editing and deleting signed-up users.
//
// A Flow is used from one goroutine at a time. It keeps the last loaded
// user list, the signup draft and at most one edit buffer.
package signup

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/userforms/internal/common"
	"github.com/dmitrijs2005/userforms/internal/logging"
	"github.com/dmitrijs2005/userforms/internal/models"
	"github.com/dmitrijs2005/userforms/internal/password"
	"github.com/dmitrijs2005/userforms/internal/users"
)

// DeletePrompt is the question a Confirmer is asked before a user is removed.
const DeletePrompt = "Are you sure you want to delete this user?"

// Confirmer answers a yes/no question, blocking until the user decides.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

type editState struct {
	index    int
	form     Form
	password string
}

type Flow struct {
	repo   users.Repository
	hasher password.Hasher
	logger logging.Logger

	users []models.UserRecord
	draft Form
	edit  *editState
}

func NewFlow(repo users.Repository, hasher password.Hasher, logger logging.Logger) *Flow {
	return &Flow{
		repo:   repo,
		hasher: hasher,
		logger: logger,
		users:  make([]models.UserRecord, 0),
	}
}

// LoadAll reads the stored list. It also offers every distinct field other
// users declared as a slot of the signup draft.
func (f *Flow) LoadAll(ctx context.Context) ([]models.UserRecord, error) {
	list, err := f.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	f.users = list

	for _, field := range models.DistinctFields(list) {
		if !hasField(f.draft.Fields, field) {
			f.draft.Fields = append(f.draft.Fields, field)
		}
	}

	f.logger.Debug(ctx, "users loaded", "count", len(list), "slots", len(f.draft.Fields))
	return models.CloneRecords(list), nil
}

// Users returns a copy of the list as last loaded or written.
func (f *Flow) Users() []models.UserRecord {
	return models.CloneRecords(f.users)
}

// Draft is the signup form front ends fill in before Submit.
func (f *Flow) Draft() *Form {
	return &f.draft
}

// Submit validates form and appends a new user. On a validation failure
// nothing is stored and the error is a *validation.ValidationError.
func (f *Flow) Submit(ctx context.Context, form Form) (models.UserRecord, error) {
	if err := form.Validate(); err != nil {
		return models.UserRecord{}, err
	}

	hashed, err := f.hasher.Hash(form.Password)
	if err != nil {
		return models.UserRecord{}, fmt.Errorf("hash password: %w", err)
	}

	u := models.UserRecord{
		Name:     form.Name,
		Email:    form.Email,
		Password: hashed,
		Fields:   form.clone().Fields,
	}

	list, err := f.repo.Append(ctx, u)
	if err != nil {
		return models.UserRecord{}, fmt.Errorf("save user: %w", err)
	}
	f.users = list

	f.logger.Info(ctx, "user signed up", "index", len(list)-1, "email", u.Email, "fields", len(u.Fields))
	return u.Clone(), nil
}

// BeginEdit copies user i into the edit buffer. An edit already in progress
// is discarded.
func (f *Flow) BeginEdit(ctx context.Context, i int) error {
	if i < 0 || i >= len(f.users) {
		return fmt.Errorf("edit user %d of %d: %w", i, len(f.users), common.ErrIndexOutOfRange)
	}

	if f.edit != nil {
		f.logger.Info(ctx, "edit discarded", "index", f.edit.index, "replaced_by", i)
	}

	u := f.users[i]
	f.edit = &editState{index: i, form: formFromRecord(u), password: u.Password}
	return nil
}

// EditForm returns the edit buffer, or nil when no edit is in progress.
func (f *Flow) EditForm() *Form {
	if f.edit == nil {
		return nil
	}
	return &f.edit.form
}

// EditingIndex reports which user is being edited.
func (f *Flow) EditingIndex() (int, bool) {
	if f.edit == nil {
		return 0, false
	}
	return f.edit.index, true
}

// SubmitEdit validates the edit buffer and overwrites the user being
// edited. A password left as loaded is stored unchanged. The buffer is kept
// when validation fails and cleared on success.
func (f *Flow) SubmitEdit(ctx context.Context) (models.UserRecord, error) {
	if f.edit == nil {
		return models.UserRecord{}, common.ErrNoEditInProgress
	}

	form := f.edit.form
	if err := form.Validate(); err != nil {
		return models.UserRecord{}, err
	}

	pw := f.edit.password
	if form.Password != f.edit.password {
		hashed, err := f.hasher.Hash(form.Password)
		if err != nil {
			return models.UserRecord{}, fmt.Errorf("hash password: %w", err)
		}
		pw = hashed
	}

	u := models.UserRecord{
		Name:     form.Name,
		Email:    form.Email,
		Password: pw,
		Fields:   form.clone().Fields,
	}

	list, err := f.repo.UpdateAt(ctx, f.edit.index, u)
	if err != nil {
		return models.UserRecord{}, fmt.Errorf("save user: %w", err)
	}
	f.users = list

	f.logger.Info(ctx, "user edited", "index", f.edit.index, "email", u.Email)
	f.edit = nil
	return u.Clone(), nil
}

// CancelEdit drops the edit buffer without saving it.
func (f *Flow) CancelEdit() {
	f.edit = nil
}

// DeleteUser removes user i once c confirms. A declined confirmation
// returns false and changes nothing.
func (f *Flow) DeleteUser(ctx context.Context, i int, c Confirmer) (bool, error) {
	if i < 0 || i >= len(f.users) {
		return false, fmt.Errorf("delete user %d of %d: %w", i, len(f.users), common.ErrIndexOutOfRange)
	}

	ok, err := c.Confirm(ctx, DeletePrompt)
	if err != nil {
		return false, fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		return false, nil
	}

	list, err := f.repo.RemoveAt(ctx, i)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	f.users = list

	if f.edit != nil {
		switch {
		case f.edit.index == i:
			f.logger.Info(ctx, "edit discarded", "index", i, "reason", "user deleted")
			f.edit = nil
		case f.edit.index > i:
			f.edit.index--
		}
	}

	f.logger.Info(ctx, "user deleted", "index", i)
	return true, nil
}

// ClearAll empties the list and removes the stored entry.
func (f *Flow) ClearAll(ctx context.Context) error {
	if err := f.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	f.users = make([]models.UserRecord, 0)
	f.edit = nil

	f.logger.Info(ctx, "users cleared")
	return nil
}

func hasField(fields []models.FieldDefinition, field models.FieldDefinition) bool {
	for _, existing := range fields {
		if existing.Equal(field) {
			return true
		}
	}
	return false
}
