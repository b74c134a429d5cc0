package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanban-cli/internal/dedupe"
	"kanban-cli/internal/gateway"
	"kanban-cli/internal/model"
)

func quiet() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestServer(t *testing.T, opts Options) (*Server, *gateway.Memory) {
	t.Helper()
	gw := gateway.NewMemory()
	if opts.Logger == nil {
		opts.Logger = quiet()
	}
	return New(gw, opts), gw
}

func do(t *testing.T, s *Server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) gateway.Response[T] {
	t.Helper()
	var out gateway.Response[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBoardLifecycle(t *testing.T) {
	s, _ := newTestServer(t, Options{Owner: "me"})

	rec := do(t, s, http.MethodPost, "/api/boards", `{"title":"Roadmap"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	b := decode[model.Board](t, rec).Data
	assert.Equal(t, "Roadmap", b.Title)
	assert.Equal(t, "me", b.Owner)

	rec = do(t, s, http.MethodPost, "/api/boards/"+b.ID+"/lists", `{"id":"L1","title":"Todo"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0, decode[model.List](t, rec).Data.Order)

	rec = do(t, s, http.MethodPost, "/api/boards/"+b.ID+"/cards", `{"id":"C1","listId":"L1","title":"Ship"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodPatch, "/api/boards/"+b.ID+"/cards/C1", `{"title":"Ship it"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[any](t, rec).Success)

	rec = do(t, s, http.MethodGet, "/api/boards/"+b.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decode[gateway.BoardPayload](t, rec).Data
	require.Len(t, payload.Lists, 1)
	require.Len(t, payload.Lists[0].Cards, 1)
	assert.Equal(t, "Ship it", payload.Lists[0].Cards[0].Title)

	rec = do(t, s, http.MethodGet, "/api/boards", "")
	assert.Len(t, decode[[]model.Board](t, rec).Data, 1)

	rec = do(t, s, http.MethodGet, "/api/boards", "", gateway.HeaderOwner, "someone-else")
	assert.Len(t, decode[[]model.Board](t, rec).Data, 0)

	rec = do(t, s, http.MethodDelete, "/api/boards/"+b.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodGet, "/api/boards/"+b.ID, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Board not found.", decode[any](t, rec).Error)
}

func TestReorderRoutes(t *testing.T) {
	s, gw := newTestServer(t, Options{Owner: "me"})
	ctx := context.Background()
	b, err := gw.CreateBoard(ctx, gateway.CreateBoardRequest{Owner: "me", Title: "b"})
	require.NoError(t, err)
	for _, id := range []string{"L1", "L2"} {
		_, err := gw.CreateList(ctx, gateway.CreateListRequest{ID: id, BoardID: b.ID, Title: id})
		require.NoError(t, err)
	}
	for _, id := range []string{"C1", "C2", "C3"} {
		_, err := gw.CreateCard(ctx, gateway.CreateCardRequest{ID: id, ListID: "L1", BoardID: b.ID, Title: id})
		require.NoError(t, err)
	}

	rec := do(t, s, http.MethodPut, "/api/boards/"+b.ID+"/lists/order", `{"orderedIds":["L2","L1"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, s, http.MethodPut, "/api/boards/"+b.ID+"/cards/order",
		`{"sourceListId":"L1","destListId":"L1","sourceCardIds":["C2","C3","C1"],"destCardIds":["C2","C3","C1"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	_, lists, err := gw.LoadBoard(ctx, gateway.LoadBoardRequest{Owner: "me", BoardID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, "L2", lists[0].ID)
	var ids []string
	for _, c := range lists[1].Cards {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"C2", "C3", "C1"}, ids)
}

func TestErrors(t *testing.T) {
	s, gw := newTestServer(t, Options{Owner: "me"})

	rec := do(t, s, http.MethodPost, "/api/boards/b1/lists", `{"title":"no id"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Client ID, Board ID, and title are required.", decode[any](t, rec).Error)

	rec = do(t, s, http.MethodPost, "/api/boards/b1/lists", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[any](t, rec).Error)

	gw.ErrNext(gateway.OpListBoards, context.DeadlineExceeded)
	rec = do(t, s, http.MethodGet, "/api/boards", "")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)

	gw.ErrNext(gateway.OpListBoards, io.ErrUnexpectedEOF)
	rec = do(t, s, http.MethodGet, "/api/boards", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An unexpected error occurred.", decode[any](t, rec).Error)

	rec = do(t, s, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIdempotentReplay(t *testing.T) {
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s, gw := newTestServer(t, Options{Owner: "me", Dedupe: dedupe.NewRedis(client, time.Minute)})

	first := do(t, s, http.MethodPost, "/api/boards", `{"title":"Once"}`, gateway.HeaderIdempotencyKey, "k1")
	require.Equal(t, http.StatusOK, first.Code)
	calls := gw.CallCount()

	again := do(t, s, http.MethodPost, "/api/boards", `{"title":"Once"}`, gateway.HeaderIdempotencyKey, "k1")
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, "true", again.Header().Get(gateway.HeaderReplayed))
	assert.JSONEq(t, first.Body.String(), again.Body.String())
	assert.Equal(t, calls, gw.CallCount(), "replay must not reach the gateway")
}

func TestIdempotencyReleasedOnFailure(t *testing.T) {
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s, gw := newTestServer(t, Options{Owner: "me", Dedupe: dedupe.NewRedis(client, time.Minute)})

	gw.FailNext(gateway.OpCreateBoard, "createBoard failed!")
	rec := do(t, s, http.MethodPost, "/api/boards", `{"title":"Retry me"}`, gateway.HeaderIdempotencyKey, "k2")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/boards", `{"title":"Retry me"}`, gateway.HeaderIdempotencyKey, "k2")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Header().Get(gateway.HeaderReplayed))
}

func TestIdempotencyDegradesWithoutRedis(t *testing.T) {
	m, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	s, _ := newTestServer(t, Options{Owner: "me", Dedupe: dedupe.NewRedis(client, time.Minute)})
	m.Close()

	rec := do(t, s, http.MethodPost, "/api/boards", `{"title":"Still works"}`, gateway.HeaderIdempotencyKey, "k3")
	assert.Equal(t, http.StatusOK, rec.Code)
}
