package msg

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

func report(w io.Writer, label, format string, a ...any) {
	fmt.Fprint(w, label)
	fmt.Fprint(w, ": ")
	fmt.Fprintf(w, format, a...)
	fmt.Fprint(w, "\n")
}

func Error(format string, a ...any) {
	report(os.Stderr, color.HiRedString("error"), format, a...)
}

func Warn(format string, a ...any) {
	report(os.Stderr, color.YellowString("warn"), format, a...)
}

func Fatal(format string, a ...any) {
	report(os.Stderr, color.RedString("fatal"), format, a...)
	os.Exit(1)
}

func Info(format string, a ...any) {
	report(os.Stdout, color.HiGreenString("info"), format, a...)
}

// IndentWriter prefixes every line written through it, which keeps
// subprocess and clone output visually nested under our own messages.
type IndentWriter struct {
	Indent    string
	W         io.Writer
	didIndent bool
}

func (w *IndentWriter) Write(p []byte) (n int, err error) {
	var buf []byte
	for _, c := range p {
		if !w.didIndent {
			buf = append(buf, w.Indent...)
			w.didIndent = true
		}
		buf = append(buf, c)
		if c == '\n' || c == '\r' {
			w.didIndent = false
		}
	}
	if _, err := w.W.Write(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}
