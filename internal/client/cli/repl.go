package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context, args []string) error
	VerifyEmail(ctx context.Context, args []string) error
	Me(ctx context.Context) error
	ShowUser(ctx context.Context, args []string) error
	SetRole(ctx context.Context, args []string) error
	Suspend(ctx context.Context, args []string) error
	Activate(ctx context.Context, args []string) error
}

const (
	helpGuest    = "Available commands: register, login, forgot, reset [token], verify [token], exit"
	helpLoggedIn = "Available commands: me, user [id], role [id] [role], suspend [id], activate [id], refresh, logout, verify [token], exit"
)

// runREPL reads one command per line from reader and dispatches it to a.
// Command errors are printed and the loop goes on. It returns on EOF or on
// "exit"/"quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ak %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
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
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "refresh":
			cmdErr = a.Refresh(ctx)
		case "forgot":
			cmdErr = a.ForgotPassword(ctx)
		case "reset":
			cmdErr = a.ResetPassword(ctx, args)
		case "verify":
			cmdErr = a.VerifyEmail(ctx, args)
		case "me":
			cmdErr = a.Me(ctx)
		case "user":
			cmdErr = a.ShowUser(ctx, args)
		case "role":
			cmdErr = a.SetRole(ctx, args)
		case "suspend":
			cmdErr = a.Suspend(ctx, args)
		case "activate":
			cmdErr = a.Activate(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
