package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"kanban-cli/internal/model"
)

func sample() (model.Board, []model.List) {
	b := model.Board{ID: "b1", Title: "Launch", CreatedAt: time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)}
	lists := []model.List{
		{ID: "l1", Title: "Todo", Cards: []model.Card{{ID: "c1", Title: "Write *docs*"}, {ID: "c2", Title: "Tag\nrelease"}}},
		{ID: "l2", Title: "Done"},
	}
	return b, lists
}

func TestRenderBoardMarkdown(t *testing.T) {
	t.Parallel()

	b, lists := sample()
	got := RenderBoardMarkdown(b, lists)
	want := strings.Join([]string{
		"# Launch",
		"",
		"_Created 2025-12-20_",
		"",
		"## Todo",
		"",
		`1. Write \*docs\*`,
		"2. Tag release",
		"",
		"## Done",
		"",
		"_No cards._",
		"",
	}, "\n") + "\n"
	if got != want {
		t.Fatalf("unexpected markdown:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteBoard_RefusesOverwrite(t *testing.T) {
	t.Parallel()

	b, lists := sample()
	to := t.TempDir()
	res, err := WriteBoard(b, lists, to, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteBoard: %v", err)
	}
	p := filepath.Join(to, "boards", "b1.md")
	if len(res.Written) != 1 || res.Written[0] != p {
		t.Fatalf("expected %s written; got %v", p, res.Written)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("stat: %v", err)
	}

	if _, err := WriteBoard(b, lists, to, WriteOptions{}); err == nil {
		t.Fatalf("expected second write without overwrite to fail")
	}
	if _, err := WriteBoard(b, lists, to, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("expected overwrite to succeed: %v", err)
	}
}
