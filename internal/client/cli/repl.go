package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = func(a ...any) { fmt.Println(a...) }

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	AddIngredient(ctx context.Context) error
	EditIngredient(ctx context.Context) error
	DeleteIngredient(ctx context.Context) error
	ListIngredients(ctx context.Context) error
	AddRecipe(ctx context.Context) error
	ListRecipes(ctx context.Context) error
	AddStaff(ctx context.Context) error
	ListStaff(ctx context.Context) error
	Report(ctx context.Context) error
	QueueStatus(ctx context.Context) error
	SyncNow(ctx context.Context) error
	Audit(ctx context.Context) error
	AttachReceipt(ctx context.Context) error
}

// runREPL starts the read-eval-print loop for the cost analytics CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers print
// their own messages. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("costbook> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: ingredients, addingredient, editingredient, delingredient,")
				printlnFn("  recipes, addrecipe, staff, addstaff, report, queue, sync, audit, attach, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "i", "ingredients":
			_ = a.ListIngredients(ctx)

		case "addingredient":
			_ = a.AddIngredient(ctx)

		case "editingredient":
			_ = a.EditIngredient(ctx)

		case "delingredient":
			_ = a.DeleteIngredient(ctx)

		case "r", "recipes":
			_ = a.ListRecipes(ctx)

		case "addrecipe":
			_ = a.AddRecipe(ctx)

		case "staff":
			_ = a.ListStaff(ctx)

		case "addstaff":
			_ = a.AddStaff(ctx)

		case "report":
			_ = a.Report(ctx)

		case "queue":
			_ = a.QueueStatus(ctx)

		case "sync":
			_ = a.SyncNow(ctx)

		case "audit":
			_ = a.Audit(ctx)

		case "attach":
			_ = a.AttachReceipt(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
