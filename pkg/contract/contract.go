// Package contract holds the types shared across the index, reader,
// tokenizer and dialect packages: the error taxonomy, the progress
// callback shape, and the tokenizer parameter triple. Nothing here
// touches a file or a goroutine; it exists so those packages can agree
// on vocabulary without importing one another.
package contract

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by LineIndex construction and retrieval.
// Use errors.Is to test for them; ReadFailedError and OutOfRangeError
// carry extra fields and implement Unwrap/Is accordingly.
var (
	ErrFileMissing      = errors.New("rowdex: file does not exist")
	ErrNotRegular       = errors.New("rowdex: path is not a regular file")
	ErrEmptyFile        = errors.New("rowdex: file is empty")
	ErrOpenFailed       = errors.New("rowdex: failed to open file")
	ErrOutOfRange       = errors.New("rowdex: line index out of range")
	ErrInvalidSeparator = errors.New("rowdex: separator must not be the null character")
)

// ReadFailedError reports a mid-scan stream error that is neither EOF
// nor a user cancellation. Column is the rune length of the last
// successfully decoded line, plus one, matching the behavior of the
// original implementation this index was distilled from.
type ReadFailedError struct {
	Line   int
	Column int
	Err    error
}

func (e *ReadFailedError) Error() string {
	return fmt.Sprintf("rowdex: read failed at line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *ReadFailedError) Unwrap() error { return e.Err }

// OutOfRangeError reports a request for a line at or past the current
// line count.
type OutOfRangeError struct {
	Requested int
	LineCount int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("rowdex: line %d out of range (have %d lines)", e.Requested, e.LineCount)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// ProgressFunc reports scan progress as (lines seen so far, percent
// complete). It is invoked from the scanning goroutine and must be
// non-blocking and safe to call without external synchronization; the
// index never calls it concurrently with itself, but it may run
// concurrently with calls the receiving goroutine makes against the
// index from another goroutine.
type ProgressFunc func(linesSeen, percent int)

// TokenizerParams is the (escape, separator, quote) triple used by the
// escaped-list tokenizer. Separator must never be the null rune;
// Escape == 0 disables escaping; Quote == 0 disables quoting.
type TokenizerParams struct {
	Escape    rune
	Separator rune
	Quote     rune
}

// DefaultTokenizerParams matches the defaults of the original
// implementation: no escape character, comma separator, double quote.
func DefaultTokenizerParams() TokenizerParams {
	return TokenizerParams{Escape: 0, Separator: ',', Quote: '"'}
}
