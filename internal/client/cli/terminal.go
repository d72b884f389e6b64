package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/ui"
)

// terminalUI implements the sync layer's UI surfaces against the terminal:
// toasts, save statuses and the interactive conflict prompt.
type terminalUI struct {
	reader *bufio.Reader
}

func (t *terminalUI) Notify(level ui.Level, message string) {
	printlnFn(fmt.Sprintf("[%s] %s", level, message))
}

func (t *terminalUI) SaveStatus(status ui.SaveStatus) {
	switch status {
	case ui.StatusOffline:
		printlnFn("Saved locally; will sync when the server is reachable.")
	case ui.StatusError:
		// the accompanying toast carries the message
	}
}

func (t *terminalUI) QueueLength(n int) {
	if n > 0 {
		printlnFn(fmt.Sprintf("%d change(s) waiting to sync", n))
	}
}

// Choose shows both snapshots and asks the user to pick a resolution.
// Any unreadable or unrecognized answer falls back to auto-resolution.
func (t *terminalUI) Choose(collection string, local, remote *models.Record) (string, bool) {
	printlnFn("This record was changed elsewhere while you were editing.")
	printlnFn("  your version:  ", summarizeFields(local))
	printlnFn("  their version: ", summarizeFields(remote))
	printlnFn("Keep (m)ine, keep (t)heirs, or (c)ombine? [t]")
	fmt.Print("> ")

	if t.reader == nil {
		return "", false
	}
	line, err := t.reader.ReadString('\n')
	if err != nil {
		return "", false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "m", "mine":
		return "use_local", true
	case "t", "theirs", "":
		return "use_remote", true
	case "c", "combine", "merge":
		return "merge", true
	}
	return "", false
}

func summarizeFields(rec *models.Record) string {
	if rec == nil || len(rec.Fields) == 0 {
		return "(empty)"
	}
	parts := make([]string, 0, len(rec.Fields))
	for k, v := range rec.Fields {
		if models.IsSystemField(k) {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, ", ")
}
