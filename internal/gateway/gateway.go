// Package gateway defines the persistence contract the board engine talks to.
//
// Every operation is atomic on the server side. A *Failure is the server saying "no"
// (validation or business rule); any other error means the call itself did not
// complete (transport, timeout, crash). Callers that only care whether the mutation
// stuck can treat both the same way.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"kanban-cli/internal/model"
)

type Op string

const (
	OpCreateBoard  Op = "createBoard"
	OpRenameBoard  Op = "renameBoard"
	OpDeleteBoard  Op = "deleteBoard"
	OpListBoards   Op = "listBoards"
	OpLoadBoard    Op = "loadBoard"
	OpCreateList   Op = "createList"
	OpRenameList   Op = "renameList"
	OpReorderLists Op = "reorderLists"
	OpDeleteList   Op = "deleteList"
	OpCreateCard   Op = "createCard"
	OpRenameCard   Op = "renameCard"
	OpReorderCard  Op = "reorderCard"
	OpDeleteCard   Op = "deleteCard"
)

type Gateway interface {
	CreateBoard(ctx context.Context, req CreateBoardRequest) (model.Board, error)
	RenameBoard(ctx context.Context, req RenameBoardRequest) error
	DeleteBoard(ctx context.Context, req DeleteBoardRequest) error
	ListBoards(ctx context.Context, req ListBoardsRequest) ([]model.Board, error)
	LoadBoard(ctx context.Context, req LoadBoardRequest) (model.Board, []model.List, error)

	CreateList(ctx context.Context, req CreateListRequest) (model.List, error)
	RenameList(ctx context.Context, req RenameListRequest) error
	ReorderLists(ctx context.Context, req ReorderListsRequest) error
	DeleteList(ctx context.Context, req DeleteListRequest) error

	CreateCard(ctx context.Context, req CreateCardRequest) (model.Card, error)
	RenameCard(ctx context.Context, req RenameCardRequest) error
	ReorderCard(ctx context.Context, req ReorderCardRequest) error
	DeleteCard(ctx context.Context, req DeleteCardRequest) error
}

// Failure is the `{error: string}` result of an operation.
type Failure struct {
	Op      Op
	Message string
}

func (e *Failure) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func Fail(op Op, msg string) *Failure {
	return &Failure{Op: op, Message: msg}
}

// IsFailure reports whether err carries a server-side {error} result.
func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}

// Message returns the user-facing text for err: the server's message for a Failure,
// a generic sentence for everything else.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var f *Failure
	if errors.As(err, &f) && f.Message != "" {
		return f.Message
	}
	return "An unexpected error occurred."
}

// FailureMessage is the generic server-side message for an operation that failed after
// validation (storage error, constraint violation, ...).
func FailureMessage(op Op) string {
	switch op {
	case OpCreateBoard:
		return "createBoard failed!"
	case OpRenameBoard:
		return "renameBoard failed!"
	case OpDeleteBoard:
		return "deleteBoard failed!"
	case OpListBoards, OpLoadBoard:
		return "Failed to load boards."
	case OpCreateList:
		return "Failed to create list."
	case OpRenameList:
		return "Failed to rename list."
	case OpReorderLists:
		return "Failed to reorder lists."
	case OpDeleteList:
		return "Failed to delete list."
	case OpCreateCard:
		return "Failed to create card."
	case OpRenameCard:
		return "Failed to rename card."
	case OpReorderCard:
		return "Failed to reorder card."
	case OpDeleteCard:
		return "Failed to delete card."
	default:
		return "Operation failed."
	}
}
