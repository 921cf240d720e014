package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL drives. The real App satisfies
// it; tests provide a stub.
type execIface interface {
	execute(ctx context.Context, args []string) error
}

// runREPL reads one line at a time from reader, splits it into fields and
// hands them to a. The prompt shows statusFn's answer. The loop ends on EOF,
// on "exit" or "quit", or when ctx is canceled.
//
// Command errors never end the loop: they are printed as friendly text and
// the next line is read. Command prompts share reader, so answers typed for
// a prompt are never mistaken for commands.
func runREPL(ctx context.Context, a execIface, statusFn func(context.Context) string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "journal (%s)> ", statusFn(ctx))

		line, err := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				fmt.Fprintln(w)
				return
			}
			continue
		}

		switch parts[0] {
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		}

		if cerr := a.execute(ctx, parts); cerr != nil {
			var uerr *usageError
			if errors.As(cerr, &uerr) {
				fmt.Fprintln(w, uerr.Error())
			} else {
				fmt.Fprintln(w, friendly(cerr))
			}
		}

		if err != nil {
			return
		}
	}
}
