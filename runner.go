package rewind

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/ports"
)

// ErrUnknownCommand is returned by ParseCommand for input it does not understand.
var ErrUnknownCommand = errors.New("unknown command")

// errExit signals that the user asked to leave the loop.
var errExit = errors.New("exit")

// Runner handles the interactive loop over a session using provided IO.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input  io.Reader
	Output io.Writer
	// Headless prints one JSON view per line and no banner or prompt.
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner over the given IO.
func NewRunner(in io.Reader, out io.Writer) *Runner {
	return &Runner{Input: in, Output: out}
}

// Run reads commands line by line and dispatches them to the session until
// EOF, "exit" or "quit". The session is created if it does not exist.
func (r *Runner) Run(ctx context.Context, svc ports.HistoryService, sessionID string) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lineReader := bufio.NewReader(r.Input)

	view, err := svc.Open(ctx, sessionID, nil)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}

	if !r.Headless {
		fmt.Fprintf(r.Output, "--- Rewind REPL (session %s) ---\n", view.SessionID)
		fmt.Fprintln(r.Output, "Type 'help' for commands.")
	}
	r.show(view)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}

		text, readErr := lineReader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("input error: %w", readErr)
		}

		next, done, err := r.handle(ctx, svc, view, strings.TrimSpace(text))
		if err != nil {
			return err
		}
		view = next
		if done || readErr != nil {
			return nil
		}
	}
}

// handle executes one input line and reports whether the loop should stop.
func (r *Runner) handle(ctx context.Context, svc ports.HistoryService, view domain.View, line string) (domain.View, bool, error) {
	switch line {
	case "":
		return view, false, nil
	case "help":
		fmt.Fprint(r.Output, Help)
		return view, false, nil
	}

	action, err := ParseCommand(line)
	if errors.Is(err, errExit) {
		if !r.Headless {
			fmt.Fprintln(r.Output, "Bye!")
		}
		return view, true, nil
	}
	if err != nil {
		fmt.Fprintf(r.Output, "Error: %v\n", err)
		return view, false, nil
	}

	next, err := svc.Dispatch(ctx, view.SessionID, action)
	if errors.Is(err, domain.ErrInvalidAction) {
		fmt.Fprintf(r.Output, "Error: %v\n", err)
		return view, false, nil
	}
	if err != nil {
		return view, true, fmt.Errorf("dispatch error: %w", err)
	}
	r.show(next)
	return next, false, nil
}

func (r *Runner) show(view domain.View) {
	if r.Headless {
		data, _ := json.Marshal(view)
		fmt.Fprintln(r.Output, string(data))
		return
	}

	output := FormatView(view)
	if r.Renderer != nil {
		if rendered, err := r.Renderer(output); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(output))
}

// Help lists the commands understood by ParseCommand.
const Help = `Commands:
  undo | redo         move through history
  add [n]             add n (default 1) to the counter
  subtract [n]        subtract n (default 1) from the counter
  set <key> <value>   set a field
  unset <key>         remove a field
  note <text>         append a note
  clear               empty fields and notes
  exit | quit         leave
`

// ParseCommand turns one REPL line into an action.
func ParseCommand(line string) (domain.Action, error) {
	verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "exit", "quit":
		return domain.Action{}, errExit

	case domain.ActionUndo, domain.ActionRedo, domain.ActionClear:
		return domain.NewAction(verb, nil), nil

	case domain.ActionAdd, domain.ActionSubtract:
		if rest == "" {
			return domain.NewAction(verb, nil), nil
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			return domain.Action{}, fmt.Errorf("%s: invalid amount %q", verb, rest)
		}
		return domain.NewAction(verb, map[string]any{"amount": n}), nil

	case domain.ActionSet:
		key, value, ok := strings.Cut(rest, " ")
		if !ok || key == "" {
			return domain.Action{}, fmt.Errorf("usage: set <key> <value>")
		}
		return domain.NewAction(verb, map[string]any{"key": key, "value": parseValue(strings.TrimSpace(value))}), nil

	case domain.ActionUnset:
		if rest == "" {
			return domain.Action{}, fmt.Errorf("usage: unset <key>")
		}
		return domain.NewAction(verb, map[string]any{"key": rest}), nil

	case domain.ActionNote:
		if rest == "" {
			return domain.Action{}, fmt.Errorf("usage: note <text>")
		}
		return domain.NewAction(verb, map[string]any{"text": rest}), nil
	}

	return domain.Action{}, fmt.Errorf("%w: %s", ErrUnknownCommand, verb)
}

// parseValue reads JSON scalars (numbers, booleans, quoted strings) and keeps
// anything else as a plain string.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		switch v.(type) {
		case map[string]any, []any, nil:
		default:
			return v
		}
	}
	return s
}

// FormatView renders a view as markdown: a position line followed by the
// active document as a JSON block.
func FormatView(view domain.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Step %d of %d**", view.Cursor+1, view.Length)
	fmt.Fprintf(&b, " (undo: %s, redo: %s)\n\n", yesNo(view.CanUndo), yesNo(view.CanRedo))

	data, err := json.MarshalIndent(view.State, "", "  ")
	if err != nil {
		fmt.Fprintf(&b, "_unprintable state: %v_\n", err)
		return b.String()
	}
	b.WriteString("```json\n")
	b.Write(data)
	b.WriteString("\n```\n")
	return b.String()
}

func yesNo(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
