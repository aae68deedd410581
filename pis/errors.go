package pis

import "fmt"

// FormatError reports a module whose bytes do not match the PIS layout.
type FormatError struct {
	Offset int64  // Byte offset where parsing stopped
	Reason string // Human readable cause
	Err    error  // Underlying error, if any (io.ErrUnexpectedEOF for truncation)
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pis: format error at offset %d: %s: %v", e.Offset, e.Reason, e.Err)
	}
	return fmt.Sprintf("pis: format error at offset %d: %s", e.Offset, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// IOError reports a module file that could not be opened, read or unpacked.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("pis: cannot read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
