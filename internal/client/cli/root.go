package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

// Root prints the banner and runs the REPL against stdin.
func (a *App) Root(ctx context.Context) {
	printlnFn("Gokulsweets Cost Analytics (type 'help' for commands)")

	statusFn := func() string {
		who := "not logged in"
		if a.session != nil {
			who = a.session.Email
		} else if a.offlineUser != "" {
			who = a.offlineUser
		}
		return fmt.Sprintf("%s [%s]", who, a.Mode)
	}

	runREPL(ctx, a, statusFn, bufio.NewScanner(os.Stdin))
}
