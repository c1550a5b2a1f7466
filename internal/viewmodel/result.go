package viewmodel

import "github.com/idilsaglam/tada/internal/model"

// Op names the operation a Result settles.
type Op int

const (
	OpLoad Op = iota + 1
	OpAdd
	OpToggle
	OpDelete
)

// User-facing failure messages, one per operation.
const (
	MsgLoadFailed   = "Failed to load todos"
	MsgAddFailed    = "Failed to add todo"
	MsgUpdateFailed = "Failed to update todo"
	MsgDeleteFailed = "Failed to delete todo"
)

func (o Op) String() string {
	switch o {
	case OpLoad:
		return "load"
	case OpAdd:
		return "add"
	case OpToggle:
		return "toggle"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// FailureMessage is what the error slot shows when o fails.
func (o Op) FailureMessage() string {
	switch o {
	case OpLoad:
		return MsgLoadFailed
	case OpAdd:
		return MsgAddFailed
	case OpToggle:
		return MsgUpdateFailed
	case OpDelete:
		return MsgDeleteFailed
	default:
		return ""
	}
}

// Result is the tea.Msg a controller command resolves to.
type Result struct {
	Op  Op
	Seq uint64
	// ID is the target of a toggle or delete.
	ID model.ID
	// Items is set by a successful load, Item by add and toggle.
	Items []model.Item
	Item  model.Item
	Err   error
}
