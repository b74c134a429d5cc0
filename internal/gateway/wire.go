package gateway

import "kanban-cli/internal/model"

// HTTP wire shapes shared by the server and the HTTP client.

// Response is the body of every API response: {data}, {success: true} or {error}.
type Response[T any] struct {
	Data    T      `json:"data,omitempty"`
	Success bool   `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

type BoardPayload struct {
	Board model.Board  `json:"board"`
	Lists []model.List `json:"lists"`
}

// TitleBody is the body of create and rename requests that only carry a title (and,
// for creations, the client id).
type TitleBody struct {
	ID     string `json:"id,omitempty"`
	ListID string `json:"listId,omitempty"`
	Title  string `json:"title"`
}

type ReorderListsBody struct {
	OrderedIDs []string `json:"orderedIds"`
}

type ReorderCardBody struct {
	SourceListID  string   `json:"sourceListId"`
	DestListID    string   `json:"destListId"`
	SourceCardIDs []string `json:"sourceCardIds"`
	DestCardIDs   []string `json:"destCardIds"`
}

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
	HeaderOwner          = "X-Kanban-Owner"
)
