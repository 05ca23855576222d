package command

import (
	"fmt"
	"strings"
	"unicode"
)

// Result is the terminal verdict of a handler invocation.
type Result string

const (
	ResultCompleted Result = "completed"
	ResultFailed    Result = "failed"
)

// Status maps a result onto the command status it reports.
func (r Result) Status() Status {
	if r == ResultCompleted {
		return StatusCompleted
	}
	return StatusFailed
}

const (
	separator   = ":"
	emptyDetail = "no detail"
)

// Outcome is what a handler hands back for a single command.
type Outcome struct {
	Kind   Kind
	Result Result
	Detail string
}

// Completed builds a successful outcome.
func Completed(kind Kind, detail string) Outcome {
	return Outcome{Kind: kind, Result: ResultCompleted, Detail: SanitizeDetail(detail)}
}

// Completedf builds a successful outcome from a format string.
func Completedf(kind Kind, format string, args ...any) Outcome {
	return Completed(kind, fmt.Sprintf(format, args...))
}

// Failed builds a failed outcome.
func Failed(kind Kind, detail string) Outcome {
	return Outcome{Kind: kind, Result: ResultFailed, Detail: SanitizeDetail(detail)}
}

// Failedf builds a failed outcome from a format string.
func Failedf(kind Kind, format string, args ...any) Outcome {
	return Failed(kind, fmt.Sprintf(format, args...))
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool { return o.Result == ResultCompleted }

// Encode renders "<kind>:<result>:<detail>".
func (o Outcome) Encode() string {
	detail := SanitizeDetail(o.Detail)
	return string(o.Kind) + separator + string(o.Result) + separator + detail
}

func (o Outcome) String() string { return o.Encode() }

// DecodeOutcome splits an encoded outcome on its first two separators.
func DecodeOutcome(s string) (Outcome, error) {
	parts := strings.SplitN(s, separator, 3)
	if len(parts) != 3 {
		return Outcome{}, fmt.Errorf("malformed outcome %q", s)
	}
	result := Result(parts[1])
	if result != ResultCompleted && result != ResultFailed {
		return Outcome{}, fmt.Errorf("malformed outcome %q: unknown result %q", s, parts[1])
	}
	return Outcome{Kind: Kind(parts[0]), Result: result, Detail: parts[2]}, nil
}

// SanitizeDetail strips the separator and control characters so the encoded
// form stays splittable. An empty detail is replaced with a placeholder.
func SanitizeDetail(detail string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == ':':
			return '-'
		case unicode.IsControl(r):
			return ' '
		}
		return r
	}, detail)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return emptyDetail
	}
	return cleaned
}
