package template

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/starford/vaultlink/internal/apperr"
	"github.com/starford/vaultlink/internal/testutil"
)

var clock = WithClock(func() time.Time {
	return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
})

func TestList(t *testing.T) {
	_, store := testutil.TestVault(t, map[string]string{
		"TEMPLATE/daily.md":         "---\ndescription: Daily journal\n---\n# {{date}}\n{{mood}} {{mood}} {{weather}}",
		"TEMPLATE/meeting.md":       "# {{title}}",
		"TEMPLATE/notes.txt":        "{{ignored}}",
		"TEMPLATE/nested/deeper.md": "{{x}}",
		"other.md":                  "{{y}}",
	})
	got, err := NewEngine(store, "TEMPLATE").List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("templates = %+v, want daily and meeting", got)
	}

	daily := got[0]
	if daily.Name != "daily" || daily.Path != "TEMPLATE/daily.md" || daily.Description != "Daily journal" {
		t.Errorf("daily = %+v", daily)
	}
	var names []string
	for _, v := range daily.Variables {
		names = append(names, v.Name)
		if !v.Required {
			t.Errorf("variable %s should be required", v.Name)
		}
	}
	if strings.Join(names, ",") != "date,mood,weather" {
		t.Errorf("variables = %v", names)
	}
	if got[1].Name != "meeting" || got[1].Description != "" {
		t.Errorf("meeting = %+v", got[1])
	}
}

func TestList_MissingDir(t *testing.T) {
	_, store := testutil.TestVault(t, nil)
	got, err := NewEngine(store, "TEMPLATE").List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty list", got)
	}
}

func TestRender(t *testing.T) {
	_, store := testutil.TestVault(t, map[string]string{
		"TEMPLATE/note.md": "# {{title}}\n{{date}} {{time}}\n{{datetime}}\nslug={{slug}}\n{{unknown}}\nn={{count}}",
	})
	got, err := NewEngine(store, "TEMPLATE", clock).Render(context.Background(), "note", map[string]any{
		"title": "Hello World",
		"date":  "ignored",
		"count": 3,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "# Hello World\n2024-01-02 03:04:05\n2024-01-02 03:04:05\nslug=hello-world\n{{unknown}}\nn=3"
	if got != want {
		t.Errorf("Render =\n%s\nwant\n%s", got, want)
	}
}

func TestRender_UUID(t *testing.T) {
	_, store := testutil.TestVault(t, map[string]string{"tpl/id.md": "{{uuid}}"})
	e := NewEngine(store, "tpl")

	got, err := e.Render(context.Background(), "id.md", nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, err := uuid.Parse(got); err != nil {
		t.Errorf("uuid = %q: %v", got, err)
	}

	fixed, err := e.Render(context.Background(), "id", map[string]any{"uuid": "abc"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if fixed != "abc" {
		t.Errorf("caller uuid = %q, want abc", fixed)
	}
}

func TestRender_Errors(t *testing.T) {
	_, store := testutil.TestVault(t, nil)
	e := NewEngine(store, "TEMPLATE")
	ctx := context.Background()

	if _, err := e.Render(ctx, "missing", nil); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}
	for _, name := range []string{"", "../secret", "a/b"} {
		if _, err := e.Render(ctx, name, nil); !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("Render(%q) err = %v, want ErrInvalidArgument", name, err)
		}
	}
}

func TestExpand(t *testing.T) {
	got := Expand("{{a}}{{b}} {{ a }} {{a-b}}", map[string]string{"a": "1", "b": ""})
	if got != "1 {{ a }} {{a-b}}" {
		t.Errorf("Expand = %q", got)
	}
}
