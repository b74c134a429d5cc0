// Package publish writes boards out as Markdown files.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"kanban-cli/internal/model"
)

type WriteOptions struct {
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteBoard writes <toDir>/boards/<board-id>.md.
func WriteBoard(b model.Board, lists []model.List, toDir string, opt WriteOptions) (WriteResult, error) {
	if strings.TrimSpace(b.ID) == "" {
		return WriteResult{}, errors.New("missing board id")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	dir := filepath.Join(filepath.Clean(toDir), "boards")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return WriteResult{}, err
	}
	p := filepath.Join(dir, b.ID+".md")
	if err := writeFile(p, []byte(RenderBoardMarkdown(b, lists)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: []string{p}}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
