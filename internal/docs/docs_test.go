package docs

import (
	"reflect"
	"strings"
	"testing"
)

func TestTopics(t *testing.T) {
	got := Topics()
	want := []string{"config", "ordering", "server", "sync"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Topics() = %v; want %v", got, want)
	}
}

func TestGet(t *testing.T) {
	body, ok := Get(" Ordering ")
	if !ok || !strings.HasPrefix(body, "# Ordering") {
		t.Fatalf("expected ordering topic; got ok=%v body=%q", ok, body)
	}
	for _, topic := range []string{"", "nope", "../docs"} {
		if _, ok := Get(topic); ok {
			t.Fatalf("expected %q to be unknown", topic)
		}
	}
}
