package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubExec records which commands the REPL dispatched.
type stubExec struct {
	loggedIn bool
	calls    []string
}

func (s *stubExec) record(name string) error {
	s.calls = append(s.calls, name)
	return nil
}

func (s *stubExec) isLoggedIn() bool                           { return s.loggedIn }
func (s *stubExec) Register(ctx context.Context) error         { return s.record("register") }
func (s *stubExec) Login(ctx context.Context) error            { return s.record("login") }
func (s *stubExec) Logout(ctx context.Context) error           { return s.record("logout") }
func (s *stubExec) AddIngredient(ctx context.Context) error    { return s.record("addingredient") }
func (s *stubExec) EditIngredient(ctx context.Context) error   { return s.record("editingredient") }
func (s *stubExec) DeleteIngredient(ctx context.Context) error { return s.record("delingredient") }
func (s *stubExec) ListIngredients(ctx context.Context) error  { return s.record("ingredients") }
func (s *stubExec) AddRecipe(ctx context.Context) error        { return s.record("addrecipe") }
func (s *stubExec) ListRecipes(ctx context.Context) error      { return s.record("recipes") }
func (s *stubExec) AddStaff(ctx context.Context) error         { return s.record("addstaff") }
func (s *stubExec) ListStaff(ctx context.Context) error        { return s.record("staff") }
func (s *stubExec) Report(ctx context.Context) error           { return s.record("report") }
func (s *stubExec) QueueStatus(ctx context.Context) error      { return s.record("queue") }
func (s *stubExec) SyncNow(ctx context.Context) error          { return s.record("sync") }
func (s *stubExec) Audit(ctx context.Context) error            { return s.record("audit") }
func (s *stubExec) AttachReceipt(ctx context.Context) error    { return s.record("attach") }

func runScript(t *testing.T, exec *stubExec, script string) []string {
	t.Helper()

	var out []string
	orig := printlnFn
	printlnFn = func(a ...any) {
		out = append(out, fmt.Sprintln(a...))
	}
	defer func() { printlnFn = orig }()

	scanner := bufio.NewScanner(strings.NewReader(script))
	runREPL(context.Background(), exec, func() string { return "tester" }, scanner)
	return out
}

func TestREPL_DispatchesCommands(t *testing.T) {
	exec := &stubExec{loggedIn: true}
	runScript(t, exec, "ingredients\naddrecipe\nreport\nsync\nexit\n")

	assert.Equal(t, []string{"ingredients", "addrecipe", "report", "sync"}, exec.calls)
}

func TestREPL_ShortAliases(t *testing.T) {
	exec := &stubExec{loggedIn: true}
	runScript(t, exec, "i\nr\nquit\n")

	assert.Equal(t, []string{"ingredients", "recipes"}, exec.calls)
}

func TestREPL_UnknownCommandReported(t *testing.T) {
	exec := &stubExec{}
	out := runScript(t, exec, "frobnicate\nexit\n")

	joined := strings.Join(out, "\n")
	assert.Contains(t, joined, "Unknown command")
	assert.Empty(t, exec.calls)
}

func TestREPL_ExitsOnEOF(t *testing.T) {
	exec := &stubExec{}
	runScript(t, exec, "login\n")

	assert.Equal(t, []string{"login"}, exec.calls)
}

func TestREPL_BlankLinesIgnored(t *testing.T) {
	exec := &stubExec{}
	runScript(t, exec, "\n\nregister\nexit\n")

	assert.Equal(t, []string{"register"}, exec.calls)
}
