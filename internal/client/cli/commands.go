package cli

import (
	"context"
	"fmt"

	"github.com/sethnnections/authkeeper/internal/api"
	"github.com/sethnnections/authkeeper/internal/cryptox"
)

// getSimpleText and getPassword point at the interactive helpers and are
// swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// argOrPrompt returns args[i] when present and asks for it otherwise.
func (a *App) argOrPrompt(args []string, i int, prompt string) (string, error) {
	if i < len(args) {
		return args[i], nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

func (a *App) promptPassword() (string, error) {
	pw, err := getPassword(a.out)
	if err != nil {
		return "", err
	}
	defer cryptox.Wipe(pw)
	return string(pw), nil
}

func printUser(u *api.User) {
	printlnFn(fmt.Sprintf("id:       %s", u.ID))
	printlnFn(fmt.Sprintf("name:     %s", u.Name))
	printlnFn(fmt.Sprintf("email:    %s", u.Email))
	printlnFn(fmt.Sprintf("role:     %s", u.Role))
	printlnFn(fmt.Sprintf("active:   %t", u.IsActive))
	printlnFn(fmt.Sprintf("verified: %t", u.IsEmailVerified))
}

// Register prompts for name, email and password and creates the account.
// The server mails a verification link to the address.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.promptPassword()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	u, err := a.client.Register(ctx, name, email, password)
	if err != nil {
		return err
	}

	printlnFn("Registered", u.Email+", check the inbox for a verification link")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.promptPassword()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	u, err := a.client.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.setEmail(u.Email)
	printlnFn("Logged in as", u.Email)
	return nil
}

// Logout revokes the session. Local state is cleared even if the server
// call fails.
func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	err := a.client.Logout(ctx)
	a.setEmail("")
	if err != nil {
		return err
	}

	printlnFn("Logged out")
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.client.Refresh(ctx); err != nil {
		return err
	}
	printlnFn("Access token refreshed")
	return nil
}

func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.client.ForgotPassword(ctx, email); err != nil {
		return err
	}
	printlnFn("Check the inbox for a reset link")
	return nil
}

func (a *App) ResetPassword(ctx context.Context, args []string) error {
	token, err := a.argOrPrompt(args, 0, "Enter reset token")
	if err != nil {
		return err
	}
	password, err := a.promptPassword()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.client.ResetPassword(ctx, token, password); err != nil {
		return err
	}
	printlnFn("Password changed, log in again")
	return nil
}

func (a *App) VerifyEmail(ctx context.Context, args []string) error {
	token, err := a.argOrPrompt(args, 0, "Enter verification token")
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.client.VerifyEmail(ctx, token); err != nil {
		return err
	}
	printlnFn("Email verified")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	u, err := a.client.Me(ctx)
	if err != nil {
		return err
	}
	printUser(u)
	return nil
}

func (a *App) ShowUser(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, 0, "Enter user id")
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	u, err := a.client.GetUser(ctx, id)
	if err != nil {
		return err
	}
	printUser(u)
	return nil
}

func (a *App) SetRole(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, 0, "Enter user id")
	if err != nil {
		return err
	}
	role, err := a.argOrPrompt(args, 1, "Enter role")
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	u, err := a.client.SetRole(ctx, id, role)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("User %s is now %s", u.ID, u.Role))
	return nil
}

func (a *App) setActive(ctx context.Context, args []string, call func(context.Context, string) (*api.User, error), done string) error {
	id, err := a.argOrPrompt(args, 0, "Enter user id")
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	u, err := call(ctx, id)
	if err != nil {
		return err
	}
	printlnFn("User", u.ID, done)
	return nil
}

func (a *App) Suspend(ctx context.Context, args []string) error {
	return a.setActive(ctx, args, a.client.SuspendUser, "suspended")
}

func (a *App) Activate(ctx context.Context, args []string) error {
	return a.setActive(ctx, args, a.client.ActivateUser, "activated")
}
