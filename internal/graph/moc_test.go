package graph

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/starford/vaultlink/internal/apperr"
	"github.com/starford/vaultlink/internal/testutil"
)

var fixedClock = WithClock(func() time.Time {
	return time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
})

func TestCreateMOC_NoGrouping(t *testing.T) {
	dir, store := testutil.TestVault(t, map[string]string{
		"alpha.md":        "---\ndescription: First note\n---\n# Alpha\n",
		"notes/beta.md":   "# Beta\n\nBeta body text.",
		"assets/logo.png": "png",
	})
	res, err := NewEngine(store, fixedClock).CreateMOC(context.Background(), MOCOptions{
		Title:              "Index",
		TargetPath:         "maps/index.md",
		IncludeDescription: true,
	})
	if err != nil {
		t.Fatalf("CreateMOC: %v", err)
	}
	if res.Count != 2 || res.Groups != 1 {
		t.Errorf("result = %+v", res)
	}

	got := testutil.ReadFile(t, dir, "maps/index.md")
	want := "# Index\n\n" +
		"*This map of contents was generated automatically - 2024-03-09*\n\n" +
		"## Contents\n\n" +
		"- [[alpha|alpha]] - First note\n" +
		"- [[notes/beta|beta]] - Beta body text.\n\n"
	if got != want {
		t.Errorf("content:\n%s\nwant:\n%s", got, want)
	}
}

func TestCreateMOC_ByFolder(t *testing.T) {
	dir, store := testutil.TestVault(t, map[string]string{
		"top.md":        "x",
		"work/a.md":     "x",
		"work/b.md":     "x",
		"home/c.md":     "x",
		"work/moc.md":   "old map",
		"archive/z.txt": "not a document",
	})
	res, err := NewEngine(store, fixedClock).CreateMOC(context.Background(), MOCOptions{
		Title:      "Folders",
		TargetPath: "work/moc.md",
		GroupBy:    GroupFolder,
	})
	if err != nil {
		t.Fatalf("CreateMOC: %v", err)
	}
	if res.Count != 4 || res.Groups != 3 {
		t.Errorf("result = %+v, want 4 notes in 3 groups", res)
	}
	got := testutil.ReadFile(t, dir, "work/moc.md")
	for _, s := range []string{"## Root\n\n- [[top|top]]", "## work\n\n- [[work/a|a]]\n- [[work/b|b]]", "## home\n\n- [[home/c|c]]"} {
		if !strings.Contains(got, s) {
			t.Errorf("missing %q in:\n%s", s, got)
		}
	}
	if strings.Contains(got, "[[work/moc") {
		t.Error("map must not list itself")
	}
}

func TestCreateMOC_ByTag(t *testing.T) {
	dir, store := testutil.TestVault(t, map[string]string{
		"one.md":   "#go #db",
		"two.md":   "---\ntags: [go]\n---\nbody",
		"three.md": "no tags at all",
	})
	_, err := NewEngine(store, fixedClock).CreateMOC(context.Background(), MOCOptions{
		Title:      "Tags",
		TargetPath: "tags.md",
		GroupBy:    GroupTag,
	})
	if err != nil {
		t.Fatalf("CreateMOC: %v", err)
	}
	got := testutil.ReadFile(t, dir, "tags.md")

	// A document with N tags is listed N times, untagged ones once.
	if n := strings.Count(got, "[[one|one]]"); n != 2 {
		t.Errorf("one.md listed %d times, want 2", n)
	}
	if n := strings.Count(got, "[[two|two]]"); n != 1 {
		t.Errorf("two.md listed %d times, want 1", n)
	}
	if !strings.Contains(got, "## Untagged\n\n- [[three|three]]") {
		t.Errorf("untagged group missing:\n%s", got)
	}
	if !strings.Contains(got, "## #go\n\n- [[one|one]]\n- [[two|two]]") {
		t.Errorf("#go group wrong:\n%s", got)
	}
}

func TestCreateMOC_SourcePattern(t *testing.T) {
	dir, store := testutil.TestVault(t, map[string]string{
		"projects/app.md": "x",
		"projects/cli.md": "x",
		"journal/day.md":  "x",
	})
	res, err := NewEngine(store, fixedClock).CreateMOC(context.Background(), MOCOptions{
		Title:         "Projects",
		TargetPath:    "projects.md",
		SourcePattern: "projects/",
	})
	if err != nil {
		t.Fatalf("CreateMOC: %v", err)
	}
	if res.Count != 2 {
		t.Errorf("count = %d, want 2", res.Count)
	}
	if strings.Contains(testutil.ReadFile(t, dir, "projects.md"), "journal") {
		t.Error("filter should exclude journal/day.md")
	}
}

func TestCreateMOC_Invalid(t *testing.T) {
	_, store := testutil.TestVault(t, nil)
	e := NewEngine(store)
	ctx := context.Background()

	cases := []MOCOptions{
		{TargetPath: "x.md"},
		{Title: "x"},
		{Title: "x", TargetPath: "x.md", GroupBy: "color"},
	}
	for _, opts := range cases {
		if _, err := e.CreateMOC(ctx, opts); !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("%+v: err = %v, want ErrInvalidArgument", opts, err)
		}
	}
	if _, err := e.CreateMOC(ctx, MOCOptions{Title: "x", TargetPath: "../x.md"}); !errors.Is(err, apperr.ErrInvalidPath) {
		t.Errorf("escaping target err = %v, want ErrInvalidPath", err)
	}
}
