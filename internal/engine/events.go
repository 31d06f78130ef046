package engine

import (
	"github.com/mlanoe/chorus/internal/errmsg"
)

// ErrorEvent is emitted when a side effect fails. Nothing the engine
// reports through it is fatal; the previous audio state is kept and the
// user can retry with a new command.
type ErrorEvent struct {
	Op  errmsg.Op
	Err error
}

// Message returns the user-facing description.
func (e ErrorEvent) Message() string {
	return errmsg.Format(e.Op, e.Err)
}
