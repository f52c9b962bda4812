package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"regexp"
	"testing"

	"github.com/pterm/pterm"

	"github.com/butterflysky/elgato-keylight/internal/control/controltest"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// captureStdout captures stdout during the execution of f, disables pterm color, and strips ANSI codes from the output.
func captureStdout(f func()) string {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	// Save original pterm settings and default table writer
	oldPrintColor := pterm.PrintColor
	oldOutput := pterm.Output
	oldDefaultTableWriter := pterm.DefaultTable.Writer

	pterm.PrintColor = false
	pterm.Output = true
	pterm.DefaultTable.Writer = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	f()

	w.Close()
	os.Stdout = oldStdout

	// Restore pterm
	pterm.PrintColor = oldPrintColor
	pterm.Output = oldOutput
	pterm.DefaultTable.Writer = oldDefaultTableWriter

	out := <-outC
	return ansiRegex.ReplaceAllString(out, "")
}

// execute runs the root command against the fixture's controller.
func execute(t *testing.T, f *controltest.Fixture, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand("1.2.3", "abc123", "2026-01-01")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(WithService(context.Background(), f.Controller))
	return stdout.String(), stderr.String(), err
}
