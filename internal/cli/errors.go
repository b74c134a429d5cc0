package cli

import (
	"fmt"
	"strconv"

	"kanban-cli/internal/dispatch"
)

// rolledBackError is returned when the store rejected a mutation and the local
// change was undone.
type rolledBackError struct {
	notice dispatch.Notice
}

func (e rolledBackError) Error() string {
	return fmt.Sprintf("%s (rolled back %s)", e.notice.Message, e.notice.Action)
}

func (e rolledBackError) Unwrap() error { return e.notice.Err }

type badArgError struct {
	name  string
	value string
}

func (e badArgError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.name, e.value)
}

func parseIndex(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, badArgError{name: name, value: value}
	}
	return n, nil
}
