package source

import "fmt"

// Span identifies a half-open byte range [Start, End) within a file.
// Every AST node, symbol, and diagnostic carries one.
type Span struct {
	File  string
	Start int
	End   int
}

func NewSpan(file string, start, end int) Span {
	return Span{File: file, Start: start, End: end}
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d..%d", s.File, s.Start, s.End)
}

// To joins two spans from the same file into one covering both.
func (s Span) To(other Span) Span {
	result := s
	if other.Start < result.Start {
		result.Start = other.Start
	}
	if other.End > result.End {
		result.End = other.End
	}
	return result
}

// AtEnd returns the zero-width span at the end of s.
func (s Span) AtEnd() Span {
	return Span{File: s.File, Start: s.End, End: s.End}
}
