package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/idilsaglam/circles/internal/notify"
)

func OK(w io.Writer, msg string)   { fmt.Fprintln(w, Current().Success.Render(Current().SymOK+" "+msg)) }
func Fail(w io.Writer, msg string) { fmt.Fprintln(w, Current().Error.Render(Current().SymFail+" "+msg)) }

// Console is a notify.Notifier for one-shot commands: loading messages go
// to err, results to out.
type Console struct {
	Out, Err io.Writer
}

var _ notify.Notifier = Console{}

func NewConsole() Console { return Console{Out: os.Stdout, Err: os.Stderr} }

func (c Console) Loading(text string) func() {
	fmt.Fprintln(c.Err, Current().Muted.Render(Current().SymBusy+" "+text+"..."))
	return func() {}
}

func (c Console) Success(text string) { OK(c.Out, text) }

func (c Console) Error(text string) { Fail(c.Err, text) }
