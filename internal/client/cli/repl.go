package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/dmitrijs2005/userforms/internal/common"
	"github.com/dmitrijs2005/userforms/internal/validation"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App satisfies
// it; tests use a stub.
type execIface interface {
	Signup(ctx context.Context) error
	List(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	CancelEdit(ctx context.Context) error
	Delete(ctx context.Context, args []string) error
	Clear(ctx context.Context) error
	Fields(ctx context.Context) error
	Login(ctx context.Context) error
}

const helpText = "Available commands: signup, list, edit [n], cancel, delete [n], clear, fields, login, exit"

// runREPL reads one command per line from reader and dispatches it to a.
// It returns on end of input or on "exit"/"quit". Command errors are
// reported and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("uf %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpText)
		case "signup":
			cmdErr = a.Signup(ctx)
		case "l", "list":
			cmdErr = a.List(ctx)
		case "edit":
			cmdErr = a.Edit(ctx, args)
		case "cancel":
			cmdErr = a.CancelEdit(ctx)
		case "delete":
			cmdErr = a.Delete(ctx, args)
		case "clear":
			cmdErr = a.Clear(ctx)
		case "fields":
			cmdErr = a.Fields(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			report(cmdErr)
		}
	}
}

// report shows validation problems one per line and logs anything else.
// Failed logins were already announced by the notifier.
func report(err error) {
	var verr *validation.ValidationError
	switch {
	case errors.As(err, &verr):
		for _, v := range verr.Violations {
			printlnFn(" - " + v.String())
		}
	case errors.Is(err, common.ErrInvalidCredentials):
	default:
		log.Printf("error: %v", err)
	}
}
