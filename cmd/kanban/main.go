package main

import (
	"os"
	"strings"

	"github.com/google/uuid"

	"kanban-cli/internal/cli"
)

func isBoardID(s string) bool {
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil
}

// rewriteBoardShortcut makes `kanban <board-id>` work like `kanban board <board-id>`.
//
// Cobra treats the first positional token as a subcommand, so argv is rewritten before
// parsing. Persistent flags may come first (`kanban --db x.sqlite <board-id>`), so the
// first positional token is searched for, skipping flag values.
func rewriteBoardShortcut(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--server":    true,
		"--db":        true,
		"--driver":    true,
		"--owner":     true,
		"--format":    true,
		"--log-level": true,
	}

	insert := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "board")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isBoardID(argv[i+1]) {
				return insert(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if isBoardID(a) {
			return insert(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteBoardShortcut(os.Args)

	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
