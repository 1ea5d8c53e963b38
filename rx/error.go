package rx

import (
	"errors"
	"fmt"
)

// Sentinel errors a caller can match with errors.Is.
var (
	// ErrUnterminatedGroup indicates a "(" with no matching ")".
	ErrUnterminatedGroup = errors.New("unterminated group")
	// ErrUnterminatedClass indicates a "[" with no matching "]".
	ErrUnterminatedClass = errors.New("unterminated character class")
	// ErrDanglingOperator indicates ?, * or + with nothing before it to
	// repeat. A "{" in that position is compiled as a literal character.
	ErrDanglingOperator = errors.New("operator has nothing to repeat")
	// ErrBadRepetitionRange indicates a {n,m} with max < min.
	ErrBadRepetitionRange = errors.New("repetition range has max < min")
	// ErrTooDeep indicates group nesting beyond MaxNesting.
	ErrTooDeep = errors.New("pattern nesting too deep")
	// ErrSubroutineUnsupported indicates a "(?&name)" subroutine call: Rx
	// compiles a single self-contained program with no subroutine-call
	// instruction, so these are rejected at compile time rather than
	// silently accepted and mismatched at match time.
	ErrSubroutineUnsupported = errors.New("subroutine calls (?&name) are not supported")
	// ErrFeatureDisabled indicates syntax that is valid but excluded by the
	// Feature mask passed to Compile.
	ErrFeatureDisabled = errors.New("feature not enabled")
	// ErrFeatureRejected indicates syntax explicitly excluded by the
	// reject mask passed to Compile.
	ErrFeatureRejected = errors.New("feature rejected")
)

// MaxNesting bounds how deeply groups may nest in a single pattern.
const MaxNesting = 12

// CompileError wraps a compilation failure with the pattern and the byte
// offset within it where the failure was detected.
type CompileError struct {
	Pattern string
	Offset  int
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("rx: compile %q at offset %d: %v", e.Pattern, e.Offset, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }
