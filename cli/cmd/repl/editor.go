package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/ardnew/san/lang"
	"github.com/ardnew/san/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand] for the session
// edit-parse-retry loop. It formats the session source to a temp file, opens
// the user's editor, and re-parses and re-evaluates the result. On error the
// user is prompted to re-edit; declining exits the program.
type editCommand struct {
	session  *Session
	ctxFunc  func() context.Context
	replaced bool
	logger   log.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-parse-retry loop. If the user declines to re-edit, it
// returns [ErrEditDeclined].
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	var buf bytes.Buffer
	if err := c.session.Source().Format(ctx, &buf, 2); err != nil {
		return fmt.Errorf("format session: %w", err)
	}

	content := buf.String()

	f, err := os.CreateTemp(os.TempDir(), "san-repl-*.san")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		// An empty file cancels the edit.
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}

		mod, err := lang.Parse(ctx, unitName, string(data), c.session.opts...)
		if err == nil {
			err = c.session.Replace(ctx, mod)
		}

		c.logger.TraceContext(
			ctx,
			"editor attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", err == nil),
		)

		if err == nil {
			c.replaced = true

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", err)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		content = string(data)
	}
}

// runEditor launches the user's editor on the given file path and returns the
// edited file content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) ([]byte, error) {
	cmd := exec.CommandContext(ctx, env.Str("EDITOR", defaultEditor), path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
