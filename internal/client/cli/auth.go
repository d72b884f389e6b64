package cli

import (
	"context"
	"errors"
	"os"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for an email and password and attempts to create
// a new account on the server.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.authService.Register(ctx, email, password); err != nil {
		printlnFn(common.UserMessage(err))
		return err
	}

	printlnFn("Account created. You can log in now.")
	return nil
}

// Login prompts for credentials and authenticates. An online login is
// attempted first; if the server is unreachable an offline login against the
// locally cached credentials grants read access to local state until the
// connection is back.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	session, err := a.authService.OnlineLogin(ctx, email, password)
	if err == nil {
		a.session = session
		a.setMode(ModeOnline)

		a.startRealtime(ctx)
		if n, mErr := a.migration.Run(ctx); mErr != nil {
			printlnFn("Legacy data import failed:", mErr.Error())
		} else if n > 0 {
			printlnFn("Imported", n, "record(s) from the old app; they will sync shortly.")
			a.syncer.Drain(ctx)
		}
		printlnFn("Logged in.")
		return nil
	}

	if !errors.Is(err, common.ErrUnavailable) {
		printlnFn(common.UserMessage(err))
		return err
	}

	printlnFn("Server unavailable, trying offline login...")
	if offErr := a.authService.OfflineLogin(ctx, email, password); offErr != nil {
		printlnFn(common.UserMessage(offErr))
		return offErr
	}

	a.session = nil
	a.offlineUser = email
	a.setMode(ModeOffline)
	printlnFn("Offline login successful. Changes will be queued until the server is reachable.")
	return nil
}

// Logout clears locally cached credentials and the in-memory session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.ClearOfflineData(ctx); err != nil {
		return err
	}
	a.listener.Cleanup()
	a.session = nil
	a.offlineUser = ""
	printlnFn("Logged out.")
	return nil
}
