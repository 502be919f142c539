package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ngclient/ngutils/pkg/headtags"
)

func TestRenderHead(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	tags := []headtags.ContributedTag{
		*headtags.ViewportTag(headtags.ViewportDefault),
		{TagName: "link", Attrs: []headtags.Attr{{Name: "rel", Value: "icon"}, {Name: "href", Value: "/favicon.ico"}}},
		{TagName: "script", Attrs: []headtags.Attr{{Name: "src", Value: "/app.js"}}},
	}

	got, err := renderer.RenderHeadString(tags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <link rel="icon" href="/favicon.ico">
  <script src="/app.js"></script>
`
	if got != want {
		t.Errorf("RenderHead =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderHeadEscapesValues(t *testing.T) {
	renderer := NewRenderer(RendererConfig{Indent: "\t"})

	tags := []headtags.ContributedTag{
		{TagName: "meta", Attrs: []headtags.Attr{{Name: "content", Value: `"><script>alert(1)</script>`}}},
	}

	got, err := renderer.RenderHeadString(tags)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("value not escaped: %q", got)
	}
	if v := extractAttrValue(t, got, "content"); v != "&quot;&gt;&lt;script&gt;alert(1)&lt;/script&gt;" {
		t.Errorf("content = %q", v)
	}
	if !strings.HasPrefix(got, "\t<meta") {
		t.Errorf("indent not applied: %q", got)
	}
}

func TestRenderHeadSkipsInvalidNames(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	tags := []headtags.ContributedTag{
		{TagName: "bad tag", Attrs: []headtags.Attr{{Name: "a", Value: "b"}}},
		{TagName: "meta", Attrs: []headtags.Attr{{Name: "on load", Value: "x"}, {Name: "name", Value: "ok"}}},
	}

	got, err := renderer.RenderHeadString(tags)
	if err != nil {
		t.Fatal(err)
	}
	if got != "  <meta name=\"ok\">\n" {
		t.Errorf("RenderHead = %q", got)
	}
}

func TestRenderHeadMarker(t *testing.T) {
	renderer := NewRenderer(RendererConfig{Mark: true})

	got, err := renderer.RenderHeadString([]headtags.ContributedTag{
		{TagName: "meta", Attrs: []headtags.Attr{{Name: "name", Value: "x"}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, ` `+MarkerAttr+`>`) {
		t.Errorf("marker missing: %q", got)
	}
}

func TestRenderPage(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	page := PageData{
		Title:     "Orders & Co",
		FormName:  "orders",
		FormClass: "red bold",
		Body:      "<p>hi</p>",
	}

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, page); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	html := buf.String()

	if !strings.HasPrefix(html, "<!DOCTYPE html>") {
		t.Errorf("should start with DOCTYPE, got %q", html)
	}
	if !strings.Contains(html, `<html lang="en">`) {
		t.Errorf("should contain html tag with lang, got %q", html)
	}
	if !strings.Contains(html, "<title>Orders &amp; Co</title>") {
		t.Errorf("title not escaped: %q", html)
	}
	if !strings.Contains(html, defaultViewport) {
		t.Errorf("default viewport missing: %q", html)
	}
	if !strings.Contains(html, `<div class="svy-form red bold" data-form="orders"><p>hi</p></div>`) {
		t.Errorf("form container missing: %q", html)
	}
	if strings.Contains(html, "data-watch") {
		t.Errorf("watch script should not be injected: %q", html)
	}
}

func TestRenderPageContributedViewportWins(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	page := PageData{
		Lang:     "nl",
		Tags:     []headtags.ContributedTag{*headtags.ViewportTag(headtags.ViewportDenyZoom)},
		WatchURL: "/api/clients/c1/watch",
	}

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, page); err != nil {
		t.Fatal(err)
	}
	html := buf.String()

	if strings.Count(html, `name="viewport"`) != 1 {
		t.Errorf("want exactly one viewport meta: %q", html)
	}
	if !strings.Contains(html, `<html lang="nl">`) {
		t.Errorf("lang not applied: %q", html)
	}
	if v := extractAttrValue(t, html, "data-watch"); v != "/api/clients/c1/watch" {
		t.Errorf("data-watch = %q", v)
	}
}

func TestRenderPageMarksBuiltinViewportWhenWatched(t *testing.T) {
	renderer := NewRenderer(RendererConfig{Mark: true})

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, PageData{WatchURL: "/api/clients/c1/watch"}); err != nil {
		t.Fatal(err)
	}
	html := buf.String()

	want := `<meta name="viewport" content="width=device-width, initial-scale=1" ` + DefaultMarkerAttr + `>`
	if !strings.Contains(html, want) {
		t.Errorf("built-in viewport not marked: %q", html)
	}
	if strings.Count(html, `name="viewport"`) != 1 {
		t.Errorf("want exactly one viewport meta: %q", html)
	}
	if !strings.Contains(WatchClientScript, "["+DefaultMarkerAttr+"]") {
		t.Error("watch client does not look up the built-in viewport")
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in       string
		wantHTML string
		wantAttr string
	}{
		{"plain", "plain", "plain"},
		{"a&b", "a&amp;b", "a&amp;b"},
		{"<'\">", "&lt;&#39;&quot;&gt;", "&lt;&#39;&quot;&gt;"},
		{"a\nb\tc", "a\nb\tc", "a&#10;b&#9;c"},
	}
	for _, tt := range tests {
		if got := escapeHTML(tt.in); got != tt.wantHTML {
			t.Errorf("escapeHTML(%q) = %q, want %q", tt.in, got, tt.wantHTML)
		}
		if got := escapeAttr(tt.in); got != tt.wantAttr {
			t.Errorf("escapeAttr(%q) = %q, want %q", tt.in, got, tt.wantAttr)
		}
	}
}
