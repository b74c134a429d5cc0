package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"kanban-cli/internal/gateway"
	"kanban-cli/internal/model"
)

func ok(c echo.Context) error {
	return c.JSON(http.StatusOK, gateway.Response[any]{Success: true})
}

func data[T any](c echo.Context, v T) error {
	return c.JSON(http.StatusOK, gateway.Response[T]{Data: v})
}

func (s *Server) listBoards(c echo.Context) error {
	boards, err := s.gw.ListBoards(c.Request().Context(), gateway.ListBoardsRequest{Owner: s.owner(c)})
	if err != nil {
		return err
	}
	return data(c, boards)
}

func (s *Server) createBoard(c echo.Context) error {
	var body gateway.TitleBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	b, err := s.gw.CreateBoard(c.Request().Context(), gateway.CreateBoardRequest{Owner: s.owner(c), Title: body.Title})
	if err != nil {
		return err
	}
	return data(c, b)
}

func (s *Server) loadBoard(c echo.Context) error {
	b, lists, err := s.gw.LoadBoard(c.Request().Context(), gateway.LoadBoardRequest{Owner: s.owner(c), BoardID: c.Param("boardId")})
	if err != nil {
		return err
	}
	if lists == nil {
		lists = []model.List{}
	}
	return data(c, gateway.BoardPayload{Board: b, Lists: lists})
}

func (s *Server) renameBoard(c echo.Context) error {
	var body gateway.TitleBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	err := s.gw.RenameBoard(c.Request().Context(), gateway.RenameBoardRequest{Owner: s.owner(c), BoardID: c.Param("boardId"), Title: body.Title})
	if err != nil {
		return err
	}
	return ok(c)
}

func (s *Server) deleteBoard(c echo.Context) error {
	if err := s.gw.DeleteBoard(c.Request().Context(), gateway.DeleteBoardRequest{Owner: s.owner(c), BoardID: c.Param("boardId")}); err != nil {
		return err
	}
	return ok(c)
}

func (s *Server) createList(c echo.Context) error {
	var body gateway.TitleBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	l, err := s.gw.CreateList(c.Request().Context(), gateway.CreateListRequest{ID: body.ID, BoardID: c.Param("boardId"), Title: body.Title})
	if err != nil {
		return err
	}
	return data(c, l)
}

func (s *Server) renameList(c echo.Context) error {
	var body gateway.TitleBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	err := s.gw.RenameList(c.Request().Context(), gateway.RenameListRequest{ListID: c.Param("listId"), BoardID: c.Param("boardId"), Title: body.Title})
	if err != nil {
		return err
	}
	return ok(c)
}

func (s *Server) reorderLists(c echo.Context) error {
	var body gateway.ReorderListsBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	err := s.gw.ReorderLists(c.Request().Context(), gateway.ReorderListsRequest{BoardID: c.Param("boardId"), OrderedIDs: body.OrderedIDs})
	if err != nil {
		return err
	}
	return ok(c)
}

func (s *Server) deleteList(c echo.Context) error {
	if err := s.gw.DeleteList(c.Request().Context(), gateway.DeleteListRequest{ListID: c.Param("listId"), BoardID: c.Param("boardId")}); err != nil {
		return err
	}
	return ok(c)
}

func (s *Server) createCard(c echo.Context) error {
	var body gateway.TitleBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	card, err := s.gw.CreateCard(c.Request().Context(), gateway.CreateCardRequest{
		ID: body.ID, ListID: body.ListID, BoardID: c.Param("boardId"), Title: body.Title,
	})
	if err != nil {
		return err
	}
	return data(c, card)
}

func (s *Server) renameCard(c echo.Context) error {
	var body gateway.TitleBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	err := s.gw.RenameCard(c.Request().Context(), gateway.RenameCardRequest{CardID: c.Param("cardId"), BoardID: c.Param("boardId"), Title: body.Title})
	if err != nil {
		return err
	}
	return ok(c)
}

func (s *Server) reorderCard(c echo.Context) error {
	var body gateway.ReorderCardBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	err := s.gw.ReorderCard(c.Request().Context(), gateway.ReorderCardRequest{
		BoardID:       c.Param("boardId"),
		SourceListID:  body.SourceListID,
		DestListID:    body.DestListID,
		SourceCardIDs: body.SourceCardIDs,
		DestCardIDs:   body.DestCardIDs,
	})
	if err != nil {
		return err
	}
	return ok(c)
}

func (s *Server) deleteCard(c echo.Context) error {
	if err := s.gw.DeleteCard(c.Request().Context(), gateway.DeleteCardRequest{CardID: c.Param("cardId"), BoardID: c.Param("boardId")}); err != nil {
		return err
	}
	return ok(c)
}
