package persistence

import "fmt"

// CorruptionError means a journal file could not be read back. Startup must
// stop rather than continue with missing data.
type CorruptionError struct {
	Path string
	Err  error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("corrupt database file %s: %v", e.Path, e.Err)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}
