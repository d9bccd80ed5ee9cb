package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/userforms/internal/common"
	"github.com/dmitrijs2005/userforms/internal/models"
	"github.com/dmitrijs2005/userforms/internal/signup"
)

// getSimpleText, getPassword and getLines are indirections used to
// facilitate testing. They point to the interactive input helpers.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getLines      = GetLines
)

var errBadIndex = errors.New("expected a user number")

// Signup fills the signup draft from prompts and submits it. Slots offered
// from other users' fields can be kept, changed or removed.
func (a *App) Signup(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	draft := a.signup.Draft()

	var err error
	if draft.Name, err = getSimpleText(a.reader, "Enter name", a.out); err != nil {
		return err
	}
	if draft.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}

	pw, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	draft.Password = string(pw)
	common.WipeByteArray(pw)
	defer func() { draft.Password = "" }()

	if err := a.editSlots(draft); err != nil {
		return err
	}

	u, err := a.signup.Submit(ctx, *draft)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Signed up %s\n", u)
	return nil
}

// List reloads the stored users and prints them, numbered from 1.
func (a *App) List(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	list, err := a.signup.LoadAll(ctx)
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No users yet.")
		return nil
	}
	for i, u := range list {
		fmt.Fprintf(a.out, "#%d %s <%s>%s\n", i+1, u.Name, u.Email, formatFields(u.Fields))
	}
	return nil
}

// Edit starts editing user args[0], or continues the edit in progress when
// no number is given. A failed submission keeps the edit open.
func (a *App) Edit(ctx context.Context, args []string) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if len(args) > 0 || a.signup.EditForm() == nil {
		i, err := a.userIndex(args, "Enter number of the user to edit")
		if err != nil {
			return err
		}
		if err := a.signup.BeginEdit(ctx, i); err != nil {
			return err
		}
	}

	ef := a.signup.EditForm()

	var err error
	if ef.Name, err = a.keepOrReplace("Name", ef.Name); err != nil {
		return err
	}
	if ef.Email, err = a.keepOrReplace("Email", ef.Email); err != nil {
		return err
	}

	change, err := a.Confirm(ctx, "Change password?")
	if err != nil {
		return err
	}
	if change {
		pw, err := getPassword(a.reader, "Enter new password", a.out)
		if err != nil {
			return err
		}
		ef.Password = string(pw)
		common.WipeByteArray(pw)
	}

	if err := a.editSlots(ef); err != nil {
		return err
	}

	u, err := a.signup.SubmitEdit(ctx)
	if err != nil {
		if i, ok := a.signup.EditingIndex(); ok {
			fmt.Fprintf(a.out, "Edit of #%d kept; run 'edit' to continue or 'cancel' to drop it.\n", i+1)
		}
		return err
	}

	fmt.Fprintf(a.out, "Saved %s\n", u)
	return nil
}

func (a *App) CancelEdit(context.Context) error {
	if _, ok := a.signup.EditingIndex(); !ok {
		return common.ErrNoEditInProgress
	}
	a.signup.CancelEdit()
	fmt.Fprintln(a.out, "Edit cancelled.")
	return nil
}

// Delete removes user args[0] after asking for confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	i, err := a.userIndex(args, "Enter number of the user to delete")
	if err != nil {
		return err
	}

	deleted, err := a.signup.DeleteUser(ctx, i, a)
	if err != nil {
		return err
	}
	if deleted {
		fmt.Fprintln(a.out, "Deleted.")
	} else {
		fmt.Fprintln(a.out, "Kept.")
	}
	return nil
}

func (a *App) Clear(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.signup.ClearAll(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "All users removed.")
	return nil
}

// Confirm asks a y/N question; anything but y or yes is a no.
func (a *App) Confirm(_ context.Context, prompt string) (bool, error) {
	ans, err := getSimpleText(a.reader, prompt+" [y/N]", a.out)
	if err != nil {
		return false, err
	}
	ans = strings.ToLower(ans)
	return ans == "y" || ans == "yes", nil
}

var _ signup.Confirmer = (*App)(nil)

// editSlots walks the existing field slots (Enter keeps, "-" removes,
// label:type replaces) and then collects new ones.
func (a *App) editSlots(form *signup.Form) error {
	for i := 0; i < len(form.Fields); {
		cur := form.Fields[i]
		prompt := fmt.Sprintf("Field %d [%s:%s] (Enter keeps, '-' removes, or label:type)", i+1, cur.Label, cur.Type)
		in, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return err
		}

		switch in {
		case "":
			i++
		case "-":
			if err := form.RemoveFieldSlot(i); err != nil {
				return err
			}
		default:
			label, typ := parseSlot(in)
			if err := form.SetFieldSlot(i, label, typ); err != nil {
				return err
			}
			i++
		}
	}

	lines, err := getLines(a.reader, "New fields as label:type", a.out)
	if err != nil {
		return err
	}
	for _, l := range lines {
		label, typ := parseSlot(l)
		if err := form.SetFieldSlot(form.AddFieldSlot(), label, typ); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) keepOrReplace(name, current string) (string, error) {
	in, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s] (Enter keeps)", name, current), a.out)
	if err != nil {
		return "", err
	}
	if in == "" {
		return current, nil
	}
	return in, nil
}

// userIndex turns a 1-based user number from args, or from a prompt when
// args is empty, into a list index.
func (a *App) userIndex(args []string, prompt string) (int, error) {
	var s string
	if len(args) > 0 {
		s = args[0]
	} else {
		var err error
		if s, err = getSimpleText(a.reader, prompt, a.out); err != nil {
			return 0, err
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w, got %q", errBadIndex, s)
	}
	return n - 1, nil
}

func parseSlot(s string) (string, string) {
	label, typ, _ := strings.Cut(s, ":")
	return strings.TrimSpace(label), strings.TrimSpace(typ)
}

func formatFields(fields []models.FieldDefinition) string {
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Label + ":" + f.Type
	}
	return " [" + strings.Join(parts, ", ") + "]"
}
