package cli

import (
	"context"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// credentials prompts for an email and a password.
func (a *App) credentials() (string, string, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", "", err
	}
	pw, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	defer wipe(pw)
	return email, string(pw), nil
}

// Register prompts for an email and password and creates an account.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	if err := a.repo.SignUp(ctx, email, password); err != nil {
		a.report(err)
		return err
	}
	a.println("Success!")
	return nil
}

// Login prompts for an email and password and signs in.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	if err := a.repo.LogInWithEmailAndPassword(ctx, email, password); err != nil {
		a.report(err)
		return err
	}
	a.println("Login successful")
	return nil
}

// Google runs the federated sign-in.
func (a *App) Google(ctx context.Context) error {
	if err := a.repo.LogInWithGoogle(ctx); err != nil {
		a.report(err)
		return err
	}
	a.println("Login successful")
	return nil
}

// Phone starts phone sign-in and prints the flow's events as they arrive.
func (a *App) Phone(ctx context.Context) error {
	country, err := getSimpleText(a.reader, "Enter country code (e.g. +1)", a.out)
	if err != nil {
		return err
	}
	number, err := getSimpleText(a.reader, "Enter phone number", a.out)
	if err != nil {
		return err
	}

	if err := a.repo.LogInWithPhoneNumber(ctx, country, number); err != nil {
		a.report(err)
		return err
	}
	go a.watchPhone(ctx, a.repo.PhoneEvents())
	return nil
}

// Verify submits the SMS code of the current phone flow.
func (a *App) Verify(ctx context.Context) error {
	code, err := getSimpleText(a.reader, "Enter SMS code", a.out)
	if err != nil {
		return err
	}
	ok, err := a.repo.VerifyOTP(ctx, code)
	if err != nil {
		a.report(err)
		return err
	}
	if ok {
		a.println("Login successful")
	} else {
		a.println("Code accepted but no session was created")
	}
	return nil
}

// WhoAmI prints the cached current user.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.repo.CurrentUser(ctx)
	if u.IsEmpty() {
		a.println("Not logged in")
		return nil
	}
	a.println("id:   ", u.ID)
	if u.Email != "" {
		a.println("email:", u.Email)
	}
	if u.Phone != "" {
		a.println("phone:", u.Phone)
	}
	if u.Name != "" {
		a.println("name: ", u.Name)
	}
	return nil
}

// Logout signs out everywhere.
func (a *App) Logout(ctx context.Context) error {
	if err := a.repo.LogOut(ctx); err != nil {
		a.report(err)
		return err
	}
	a.println("Logged out")
	return nil
}
