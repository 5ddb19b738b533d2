package wikitext

import (
	"errors"
	"fmt"
)

var (
	// ErrPosition is returned when the start position does not leave room for "{{".
	ErrPosition = errors.New("position does not exist")

	// ErrMalformed is the parent of the errors describing a broken template head.
	ErrMalformed = errors.New("malformed template")

	// ErrInvalidStart is returned when the text at the start position is not "{{".
	ErrInvalidStart = fmt.Errorf("%w: invalid template start", ErrMalformed)

	// ErrNoName is returned when the template name is empty after trimming.
	ErrNoName = fmt.Errorf("%w: no template name", ErrMalformed)

	// ErrUnclosed is returned when the text ends before the closing "}}".
	ErrUnclosed = errors.New("the template is missing closing braces")

	// ErrInvalidOptions is returned by OptionsFromMap for values it cannot decode.
	ErrInvalidOptions = errors.New("invalid scan options")

	// ErrNoProgress is an internal consistency error: a nested extraction
	// returned a position that is not past its start.
	ErrNoProgress = errors.New("nested extraction did not advance")

	// ErrTooDeep is returned when templates nest deeper than MaxNestingDepth.
	ErrTooDeep = errors.New("templates nested too deeply")
)

// ScanError records where in the text a scan failed.
type ScanError struct {
	Pos int
	Err error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("wikitext: %v at offset %d", e.Err, e.Pos)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

func failAt(pos int, err error) error {
	return &ScanError{Pos: pos, Err: err}
}
