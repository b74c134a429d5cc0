package cli

import (
	"context"

	"github.com/spf13/cobra"

	"kanban-cli/internal/dispatch"
	"kanban-cli/internal/session"
)

// mutate applies one action to boardID the same way the interactive board does, waits
// for the store to settle it, and prints the board. A rejected action prints its
// notice and fails the command.
func mutate(cmd *cobra.Command, app *App, boardID, name string, act session.Action) error {
	ctx := cmd.Context()
	gw, release, err := openGateway(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer release()

	s, err := openSession(ctx, app, gw, boardID)
	if err != nil {
		return writeErr(cmd, err)
	}
	res, err := s.Do(ctx, name, act)

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.closeTimeout())
	defer cancel()
	if cerr := s.Close(closeCtx); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return writeErr(cmd, err)
	}
	if n, ok := noticeFor(s, res.OpID); ok {
		return writeErr(cmd, rolledBackError{notice: n})
	}

	v := s.View()
	return writeOut(cmd, app, envelope{Data: boardOutput{
		Board:   v.Board,
		Lists:   v.State.Denormalize(),
		Changed: res.EntityID,
		Noop:    res.Noop,
	}})
}

// noticeFor drains the session's notices looking for the one raised by opID.
func noticeFor(s *session.Session, opID uint64) (dispatch.Notice, bool) {
	if opID == 0 {
		return dispatch.Notice{}, false
	}
	for {
		select {
		case n := <-s.Notices():
			if n.OpID == opID {
				return n, true
			}
		default:
			return dispatch.Notice{}, false
		}
	}
}
