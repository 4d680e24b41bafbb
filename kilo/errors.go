package kilo

// FatalError is an unrecoverable failure. Op names the failing operation
// the way the diagnostic reports it (tcgetattr, read, fopen, ...).
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *FatalError) Unwrap() error { return e.Err }

func fatal(op string, err error) error {
	return &FatalError{Op: op, Err: err}
}
