package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/userforms/internal/common"
	"github.com/dmitrijs2005/userforms/internal/login"
)

// Login reloads the users, asks for email, password and every dynamic
// field, and submits the login form. The outcome is printed by Notify.
func (a *App) Login(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if _, err := a.login.Load(ctx); err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	pw, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	form := login.LoginForm{Email: email, Password: string(pw), Dynamic: map[string]string{}}
	for _, f := range a.login.Schema() {
		v, err := getSimpleText(a.reader, fmt.Sprintf("%s (%s)", f.Label, f.Type), a.out)
		if err != nil {
			return err
		}
		form.Dynamic[f.ControlName] = v
	}

	u, err := a.login.Submit(ctx, form, a)
	if err != nil {
		return err
	}

	a.current = &u
	return nil
}

// Fields prints the dynamic login fields derived from the stored users.
func (a *App) Fields(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if _, err := a.login.Load(ctx); err != nil {
		return err
	}

	schema := a.login.Schema()
	if len(schema) == 0 {
		fmt.Fprintln(a.out, "No custom fields.")
		return nil
	}
	for _, f := range schema {
		fmt.Fprintf(a.out, "%s  %s (%s)\n", f.ControlName, f.Label, f.Type)
	}
	return nil
}

// Notify prints a login outcome.
func (a *App) Notify(_ context.Context, msg string) {
	fmt.Fprintln(a.out, msg)
}

var _ login.Notifier = (*App)(nil)
