package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/auth"
	"github.com/dmitrijs2005/gophauth/internal/failures"
	"github.com/dmitrijs2005/gophauth/internal/federated"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/models"
)

type App struct {
	repo   auth.Repository
	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger

	// outMu serialises writes from the REPL and the watcher goroutines.
	outMu sync.Mutex
}

func NewApp(repo auth.Repository, in io.Reader, out io.Writer, log logging.Logger) *App {
	if log == nil {
		log = logging.Nop()
	}
	return &App{repo: repo, reader: bufio.NewReader(in), out: out, log: log}
}

// Run prints auth-state changes in the background and blocks in the REPL
// until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.repo.Close()

	a.println("Welcome to gophauth CLI (type 'help' for commands)")

	go a.watchUser(ctx, a.repo.User(ctx))

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return !a.repo.CurrentUser(context.Background()).IsEmpty()
}

func (a *App) getStatus() string {
	label := a.repo.CurrentUser(context.Background()).Label()
	if label == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", label)
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

// report prints err for the user: failures show their message, anything
// else its text.
func (a *App) report(err error) {
	a.log.Debug(context.Background(), "command failed", "error", err)

	var f *failures.Failure
	if errors.As(err, &f) {
		a.println("Error:", f.Message)
		return
	}
	a.println("Error:", err.Error())
}

func (a *App) watchUser(ctx context.Context, users <-chan models.User) {
	var last *models.User
	for {
		select {
		case u, ok := <-users:
			if !ok {
				return
			}
			if last != nil && *last == u {
				continue
			}
			last = &u
			if u.IsEmpty() {
				a.println("[auth] signed out")
			} else {
				a.println("[auth] signed in as", u.Label())
			}
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) watchPhone(ctx context.Context, events <-chan models.PhoneAuthCred) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			a.printPhoneEvent(ev)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) printPhoneEvent(ev models.PhoneAuthCred) {
	switch ev.Phase() {
	case models.PhaseCodeSent:
		a.println("[phone] code sent, enter it with 'verify'")
	case models.PhaseTimedOut:
		a.println("[phone] auto-retrieval timed out, enter the code with 'verify'")
	case models.PhaseAutoVerified:
		a.println("[phone] code retrieved automatically")
	case models.PhaseFailed:
		a.report(ev.Err)
	}
}

// DevicePrompt returns a federated.Prompt that prints device-flow
// instructions to w.
func DevicePrompt(w io.Writer) federated.Prompt {
	return func(uri, code string) {
		fmt.Fprintf(w, "Open %s and enter code %s\n", uri, code)
	}
}
