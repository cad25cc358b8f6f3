package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

type logLevel int

const (
	SilentLevel logLevel = iota
	MajorLevel
	MinorLevel
	DebugLevel
)

var (
	majorPrefix = ""
	minorPrefix = "  "
	debugPrefix = "   Dbg:"

	mu    sync.Mutex // Protects out and level. Lookups log from many go-routines.
	out   io.Writer
	level logLevel
)

func init() {
	out = os.Stdout
}

func (t logLevel) String() string {
	switch t {
	case MajorLevel:
		return "Major"
	case MinorLevel:
		return "Minor"
	case DebugLevel:
		return "Debug"
	}

	return "Silent"
}

// ParseLevel converts the String() form of a level back to a level. Case is ignored.
func ParseLevel(s string) (logLevel, error) {
	for l := SilentLevel; l <= DebugLevel; l++ {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}

	return SilentLevel, fmt.Errorf("log level '%s' is not one of Silent, Major, Minor or Debug", s)
}

// SetOut changes the output of logging to the supplied io.Writer. The default is
// os.Stdout. The supplied io.Writer must never be nil.
func SetOut(w io.Writer) {
	if w == nil {
		panic("log.SetOut() called with a nil io.Writer")
	}
	mu.Lock()
	out = w
	mu.Unlock()
}

// Out returns the current io.Writer for specialist output which is not controlled by log
// levels, such as usage messages. The return value will never be nil.
func Out() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}

// SetLevel sets the current logging level.
func SetLevel(l logLevel) {
	mu.Lock()
	level = l
	mu.Unlock()
}

// Level returns current level
func Level() logLevel {
	mu.Lock()
	defer mu.Unlock()
	return level
}

// IfMajor returns true if Major logging is written to the output stream. Callers use the
// If* functions when evaluating the log arguments is expensive.
func IfMajor() bool {
	return Level() >= MajorLevel
}

func IfMinor() bool {
	return Level() >= MinorLevel
}

func IfDebug() bool {
	return Level() >= DebugLevel
}

// Majorf provides an approximate fmt.Printf equivalent interface to logging. Output is
// only generated if the level is >= Major. A newline is always added to the end of the
// output so the caller should not have one in their format string.
func Majorf(format string, a ...interface{}) (n int, err error) {
	return logf(MajorLevel, majorPrefix, format, a...)
}

// Major provides a fmt.Print like interface to logging. Output is only generated if the
// level is >= Major. Major uses fmt.Sprint to generate the output line thus it inherits
// the feature whereby spaces are added between operands when neither is a string.
func Major(a ...interface{}) (n int, err error) {
	return logp(MajorLevel, majorPrefix, a...)
}

// Minorf is Majorf for the Minor level.
func Minorf(format string, a ...interface{}) (n int, err error) {
	return logf(MinorLevel, minorPrefix, format, a...)
}

// Minor is Major for the Minor level.
func Minor(a ...interface{}) (n int, err error) {
	return logp(MinorLevel, minorPrefix, a...)
}

// Debugf is Majorf for the Debug level.
func Debugf(format string, a ...interface{}) (n int, err error) {
	return logf(DebugLevel, debugPrefix, format, a...)
}

// Debug is Major for the Debug level.
func Debug(a ...interface{}) (n int, err error) {
	return logp(DebugLevel, debugPrefix, a...)
}

func logf(l logLevel, prefix, format string, a ...interface{}) (int, error) {
	mu.Lock()
	defer mu.Unlock()
	if level < l {
		return 0, nil
	}

	return prefixAndPrintLines(fmt.Sprintf(format, a...), prefix)
}

func logp(l logLevel, prefix string, a ...interface{}) (int, error) {
	mu.Lock()
	defer mu.Unlock()
	if level < l {
		return 0, nil
	}

	return prefixAndPrintLines(fmt.Sprint(a...), prefix)
}

// prefixAndPrintLines takes potentially multiple lines and sends them to the out stream
// with each line prefixed. Trailing empty lines are dropped. Caller must hold mu.
func prefixAndPrintLines(lines, prefix string) (int, error) {
	if !strings.Contains(lines, "\n") { // The common case
		return fmt.Fprint(out, prefix, lines, "\n")
	}

	ar := strings.Split(lines, "\n")
	for len(ar) > 0 && len(ar[len(ar)-1]) == 0 {
		ar = ar[:len(ar)-1]
	}

	s := strings.Join(ar, "\n"+prefix) // Line1 \nprefix Line2 \nprefix Line3

	return fmt.Fprint(out, prefix, s, "\n")
}
