package publish

import (
	"bytes"
	"fmt"
	"strings"

	"kanban-cli/internal/model"
)

// RenderBoardMarkdown renders a board as one heading per list with its cards as a
// numbered list, in board order.
func RenderBoardMarkdown(b model.Board, lists []model.List) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	title := strings.TrimSpace(b.Title)
	if title == "" {
		title = b.ID
	}
	writeLn("# " + escapeInline(title))
	writeLn("")
	if !b.CreatedAt.IsZero() {
		writeLn("_Created " + b.CreatedAt.UTC().Format("2006-01-02") + "_")
		writeLn("")
	}
	if len(lists) == 0 {
		writeLn("_No lists._")
		return buf.String()
	}

	for _, l := range lists {
		writeLn(fmt.Sprintf("## %s", escapeInline(l.Title)))
		writeLn("")
		if len(l.Cards) == 0 {
			writeLn("_No cards._")
			writeLn("")
			continue
		}
		for i, c := range l.Cards {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, escapeInline(c.Title))
		}
		writeLn("")
	}
	return buf.String()
}

// escapeInline keeps a title on one line and stops it from being read as markup.
func escapeInline(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "#", `\#`)
	return r.Replace(s)
}
