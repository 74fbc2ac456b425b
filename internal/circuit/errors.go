package circuit

import (
	"fmt"
)

const (
	SideSource      = "source"
	SideDestination = "destination"
)

// ParseError reports content that is not well-formed markup.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnitNotFoundError reports a unit name missing from one side of a transfer.
type UnitNotFoundError struct {
	Name string
	Side string
}

func (e *UnitNotFoundError) Error() string {
	return fmt.Sprintf("circuit %q not found in %s", e.Name, e.Side)
}

// IOError reports a failed filesystem operation on a document.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// BatchError reports the transfer that stopped a batch. Transfers before
// Index were applied.
type BatchError struct {
	Name  string
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("transfer %d (%s) failed: %v", e.Index+1, e.Name, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
