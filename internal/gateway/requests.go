package gateway

import "strings"

// Owner-scoped board requests. Owner stands in for the signed-in user; authentication
// itself happens outside this package.

type CreateBoardRequest struct {
	Owner string `json:"owner"`
	Title string `json:"title"`
}

func (r CreateBoardRequest) Validate() error {
	if blank(r.Owner) {
		return Fail(OpCreateBoard, "Unauthorized")
	}
	if blank(r.Title) {
		return Fail(OpCreateBoard, "Title is required.")
	}
	return nil
}

type RenameBoardRequest struct {
	Owner   string `json:"owner"`
	BoardID string `json:"boardId"`
	Title   string `json:"title"`
}

func (r RenameBoardRequest) Validate() error {
	if blank(r.Owner) {
		return Fail(OpRenameBoard, "Unauthorized")
	}
	if blank(r.BoardID) || blank(r.Title) {
		return Fail(OpRenameBoard, "Missing required fields.")
	}
	return nil
}

type DeleteBoardRequest struct {
	Owner   string `json:"owner"`
	BoardID string `json:"boardId"`
}

func (r DeleteBoardRequest) Validate() error {
	if blank(r.Owner) {
		return Fail(OpDeleteBoard, "Unauthorized")
	}
	if blank(r.BoardID) {
		return Fail(OpDeleteBoard, "Missing board ID.")
	}
	return nil
}

type ListBoardsRequest struct {
	Owner string `json:"owner"`
}

func (r ListBoardsRequest) Validate() error {
	if blank(r.Owner) {
		return Fail(OpListBoards, "Unauthorized")
	}
	return nil
}

type LoadBoardRequest struct {
	Owner   string `json:"owner"`
	BoardID string `json:"boardId"`
}

func (r LoadBoardRequest) Validate() error {
	if blank(r.Owner) {
		return Fail(OpLoadBoard, "Unauthorized")
	}
	if blank(r.BoardID) {
		return Fail(OpLoadBoard, "Missing board ID.")
	}
	return nil
}

// List and card requests. IDs for creations are generated by the client and are
// canonical: the server stores them as-is.

type CreateListRequest struct {
	ID      string `json:"id"`
	BoardID string `json:"boardId"`
	Title   string `json:"title"`
}

func (r CreateListRequest) Validate() error {
	if blank(r.ID) || blank(r.BoardID) || blank(r.Title) {
		return Fail(OpCreateList, "Client ID, Board ID, and title are required.")
	}
	return nil
}

type RenameListRequest struct {
	ListID  string `json:"listId"`
	BoardID string `json:"boardId"`
	Title   string `json:"title"`
}

func (r RenameListRequest) Validate() error {
	if blank(r.ListID) || blank(r.BoardID) || blank(r.Title) {
		return Fail(OpRenameList, "Missing required fields.")
	}
	return nil
}

type ReorderListsRequest struct {
	BoardID    string   `json:"boardId"`
	OrderedIDs []string `json:"orderedIds"`
}

func (r ReorderListsRequest) Validate() error {
	if blank(r.BoardID) {
		return Fail(OpReorderLists, "Missing board ID.")
	}
	return nil
}

type DeleteListRequest struct {
	ListID  string `json:"listId"`
	BoardID string `json:"boardId"`
}

func (r DeleteListRequest) Validate() error {
	if blank(r.ListID) || blank(r.BoardID) {
		return Fail(OpDeleteList, "Missing required fields.")
	}
	return nil
}

type CreateCardRequest struct {
	ID      string `json:"id"`
	ListID  string `json:"listId"`
	BoardID string `json:"boardId"`
	Title   string `json:"title"`
}

func (r CreateCardRequest) Validate() error {
	if blank(r.ID) || blank(r.ListID) || blank(r.BoardID) || blank(r.Title) {
		return Fail(OpCreateCard, "Missing required fields.")
	}
	return nil
}

type RenameCardRequest struct {
	CardID  string `json:"cardId"`
	BoardID string `json:"boardId"`
	Title   string `json:"title"`
}

func (r RenameCardRequest) Validate() error {
	if blank(r.CardID) || blank(r.BoardID) || blank(r.Title) {
		return Fail(OpRenameCard, "Missing required fields.")
	}
	return nil
}

// ReorderCardRequest carries the complete post-move sequences of both lists. For a move
// within one list SourceListID == DestListID and both sequences are the same.
type ReorderCardRequest struct {
	BoardID       string   `json:"boardId"`
	SourceListID  string   `json:"sourceListId"`
	DestListID    string   `json:"destListId"`
	SourceCardIDs []string `json:"sourceCardIds"`
	DestCardIDs   []string `json:"destCardIds"`
}

func (r ReorderCardRequest) Validate() error {
	if blank(r.BoardID) || blank(r.SourceListID) || blank(r.DestListID) {
		return Fail(OpReorderCard, "Missing required fields for card reordering.")
	}
	return nil
}

// SameList reports whether the reorder stays within one list.
func (r ReorderCardRequest) SameList() bool {
	return strings.TrimSpace(r.SourceListID) == strings.TrimSpace(r.DestListID)
}

type DeleteCardRequest struct {
	CardID  string `json:"cardId"`
	BoardID string `json:"boardId"`
}

func (r DeleteCardRequest) Validate() error {
	if blank(r.CardID) || blank(r.BoardID) {
		return Fail(OpDeleteCard, "Missing required fields.")
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// CleanIDs drops empty entries, the same way the form-encoded API used to split
// comma separated id lists.
func CleanIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
