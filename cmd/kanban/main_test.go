package main

import (
	"reflect"
	"testing"
)

func TestRewriteBoardShortcut(t *testing.T) {
	t.Parallel()

	const id = "3f1c2a9e-7b1d-4c55-9a3e-2f6d8b0c1e42"
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"kanban"},
			want: []string{"kanban"},
		},
		{
			name: "board id first token",
			in:   []string{"kanban", id},
			want: []string{"kanban", "board", id},
		},
		{
			name: "board id after value flag",
			in:   []string{"kanban", "--db", "./tmp.sqlite", id},
			want: []string{"kanban", "--db", "./tmp.sqlite", "board", id},
		},
		{
			name: "board id after equals flag",
			in:   []string{"kanban", "--db=./tmp.sqlite", id},
			want: []string{"kanban", "--db=./tmp.sqlite", "board", id},
		},
		{
			name: "board id after bool flag",
			in:   []string{"kanban", "--pretty", id},
			want: []string{"kanban", "--pretty", "board", id},
		},
		{
			name: "board id after double dash",
			in:   []string{"kanban", "--", id},
			want: []string{"kanban", "--", "board", id},
		},
		{
			name: "subcommand untouched",
			in:   []string{"kanban", "show", id},
			want: []string{"kanban", "show", id},
		},
		{
			name: "uuid as flag value untouched",
			in:   []string{"kanban", "--owner", id, "boards", "list"},
			want: []string{"kanban", "--owner", id, "boards", "list"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteBoardShortcut(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteBoardShortcut(%v) = %v; want %v", tt.in, got, tt.want)
			}
		})
	}
}
