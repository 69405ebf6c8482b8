package structure

import "github.com/roach88/nestedset/internal/engine"

// Succeeded translates a verb's error into a boolean result.
//
// Missing nodes and vetoed moves are expected outcomes: they report false
// with a nil error. Every other error is returned as is.
func Succeeded(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case engine.IsNotFound(err), engine.IsVetoed(err):
		return false, nil
	default:
		return false, err
	}
}
