package emulator

import (
	"errors"

	"github.com/ezrec/mipssim/translate"
)

var f = translate.From

var (
	ErrCycleLimit = errors.New(f("cycle limit exceeded"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Cycle int
	Addr  int
	Err   error
}

func (err *ErrRuntime) Error() string {
	return f("cycle %d address %d %v", err.Cycle, err.Addr, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
