package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindEmptyInput means there was nothing to summarize.
	KindEmptyInput
	// KindInvalidInput means the request parameters or the text cannot be
	// summarized as given.
	KindInvalidInput
	// KindLibraryFailure means the ranker or the rewriter failed.
	KindLibraryFailure
)

func (k Kind) String() string {
	switch k {
	case KindEmptyInput:
		return "empty_input"
	case KindInvalidInput:
		return "invalid_input"
	case KindLibraryFailure:
		return "library_failure"
	default:
		return "unknown"
	}
}

var (
	ErrEmptyInput    = errors.New("input text is empty")
	ErrInputTooLarge = errors.New("input text is too large")
)

// Error is returned by Pipeline.Run for every failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind of err, or KindUnknown when err did not come from
// the pipeline.
func KindOf(err error) Kind {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Kind
	}
	return KindUnknown
}

// UserMessage renders err for display next to the summaries.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var pErr *Error
	if errors.As(err, &pErr) {
		if pErr.Kind == KindEmptyInput {
			return EmptyInputMessage
		}
		return "An error occurred: " + pErr.Err.Error()
	}

	return "An error occurred: " + err.Error()
}

func fail(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
