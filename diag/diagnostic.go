package diag

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/duna-lang/duna/source"
)

type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelNote
	LevelInfo
	LevelHelp
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelNote:
		return "note"
	case LevelInfo:
		return "info"
	case LevelHelp:
		return "help"
	default:
		panic("unreachable")
	}
}

var printer = message.NewPrinter(language.AmericanEnglish)

// Msgf formats a diagnostic message. It goes through x/text so that
// messages with counts read correctly.
func Msgf(format string, args ...any) string {
	return printer.Sprintf(format, args...)
}

type Label struct {
	Level   Level
	Span    source.Span
	Message string
}

type Diagnostic struct {
	Level    Level
	Span     source.Span
	Message  string
	Labels   []Label
	Children []*Diagnostic
}

func New(level Level, span source.Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{Level: level, Span: span, Message: Msgf(format, args...)}
}

func Error(span source.Span, format string, args ...any) *Diagnostic {
	return New(LevelError, span, format, args...)
}

func (d *Diagnostic) Label(level Level, span source.Span, format string, args ...any) *Diagnostic {
	d.Labels = append(d.Labels, Label{Level: level, Span: span, Message: Msgf(format, args...)})
	return d
}

func (d *Diagnostic) Child(child *Diagnostic) *Diagnostic {
	d.Children = append(d.Children, child)
	return d
}

// Reported is a token proving that a diagnostic has been recorded with a
// Queue. Error-variant terms can only be constructed from a Reported, so a
// user-facing error cannot be swallowed silently.
type Reported struct {
	d *Diagnostic
}

// Reported implements error so checking code can thread it through
// ordinary (T, error) returns.
func (r Reported) Error() string {
	return "error already reported: " + r.d.Message
}

func (r Reported) Span() source.Span {
	return r.d.Span
}

func (r Reported) Diagnostic() *Diagnostic {
	return r.d
}

// Queue is the diagnostic sink for a check run. Safe for concurrent use;
// obligations report from many tasks.
type Queue struct {
	mu    sync.Mutex
	diags []*Diagnostic
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Report(d *Diagnostic) Reported {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.diags = append(q.diags, d)
	return Reported{d: d}
}

func (q *Queue) Diagnostics() []*Diagnostic {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*Diagnostic(nil), q.diags...)
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.diags)
}

// AsReported extracts the Reported token from an error produced by checking
// code. All user-facing failures are Reported values; anything else is a
// checker bug.
func AsReported(err error) (Reported, bool) {
	r, ok := err.(Reported)
	return r, ok
}
