package middleware

import (
	"fmt"
	"runtime/debug"

	"dexscout/utils"
)

// PanicError carries a recovered panic value out of a goroutine.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic recovered: %v", e.Value)
}

// Recover runs fn and converts a panic into a *PanicError so that one failing
// logical call cannot take down its siblings.
func Recover(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			utils.Logger.Errorw("Panic recovered",
				"task", name,
				"error", r,
				"stack", string(stack))
			err = &PanicError{Value: r, Stack: stack}
		}
	}()
	return fn()
}
