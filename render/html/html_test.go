package html_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jafranjemal/aavanamkit/doctpl"
	"github.com/jafranjemal/aavanamkit/render"
	"github.com/jafranjemal/aavanamkit/render/html"
	"github.com/jafranjemal/aavanamkit/render/rendertest"
)

func attr(n *nethtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findAll(n *nethtml.Node, match func(*nethtml.Node) bool) []*nethtml.Node {
	var out []*nethtml.Node
	var walk func(*nethtml.Node)
	walk = func(n *nethtml.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func isAtom(a atom.Atom) func(*nethtml.Node) bool {
	return func(n *nethtml.Node) bool { return n.Type == nethtml.ElementNode && n.DataAtom == a }
}

func textOf(n *nethtml.Node) string {
	var sb strings.Builder
	for _, t := range findAll(n, func(n *nethtml.Node) bool { return n.Type == nethtml.TextNode }) {
		sb.WriteString(t.Data)
	}
	return sb.String()
}

func render1(t *testing.T, tpl *doctpl.Template, data any) (*nethtml.Node, render.Stats) {
	t.Helper()
	b := html.New(nil)
	doc := rendertest.Prepare(t, b, tpl, data)
	var buf bytes.Buffer
	stats, err := b.Render(context.Background(), doc, &buf)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "<!DOCTYPE html>") {
		t.Errorf("missing doctype: %.40q", buf.String())
	}
	root, err := nethtml.Parse(&buf)
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}
	return root, stats
}

func TestRenderPages(t *testing.T) {
	root, stats := render1(t, rendertest.Invoice(), rendertest.Data(10))

	pages := findAll(root, func(n *nethtml.Node) bool {
		return n.Type == nethtml.ElementNode && attr(n, "class") == "page"
	})
	if len(pages) != 3 || stats.Pages != 3 {
		t.Fatalf("pages = %d (stats %d), want 3", len(pages), stats.Pages)
	}

	wantRows := []int{4, 4, 2}
	for i, p := range pages {
		if !strings.Contains(attr(p, "style"), "height:842pt") {
			t.Errorf("page %d style = %q", i+1, attr(p, "style"))
		}
		if got := len(findAll(p, isAtom(atom.Th))); got != 3 {
			t.Errorf("page %d: header cells = %d, want 3", i+1, got)
		}
		body := findAll(p, isAtom(atom.Tbody))
		if len(body) != 1 {
			t.Fatalf("page %d: tbody count = %d", i+1, len(body))
		}
		if got := len(findAll(body[0], isAtom(atom.Tr))); got != wantRows[i] {
			t.Errorf("page %d: rows = %d, want %d", i+1, got, wantRows[i])
		}
	}

	// Static items repeat on every page under data-id; the DOM keeps no
	// duplicate id attributes.
	for _, id := range []string{"title", "logo", "rule", "code", "items"} {
		if n := findAll(root, func(n *nethtml.Node) bool { return attr(n, "data-id") == id }); len(n) != 3 {
			t.Errorf("%s drawn %d times, want once per page", id, len(n))
		}
	}
	seen := map[string]bool{}
	for _, n := range findAll(root, func(n *nethtml.Node) bool { return n.Type == nethtml.ElementNode && attr(n, "id") != "" }) {
		if seen[attr(n, "id")] {
			t.Errorf("duplicate id %q", attr(n, "id"))
		}
		seen[attr(n, "id")] = true
	}

	first := textOf(findAll(pages[2], isAtom(atom.Tbody))[0])
	if !strings.Contains(first, "Item 9") || !strings.Contains(first, "Item 10") {
		t.Errorf("last page rows = %q", first)
	}
}

func TestRenderItems(t *testing.T) {
	root, _ := render1(t, rendertest.Invoice(), rendertest.Data(1))

	byID := map[string]*nethtml.Node{}
	for _, n := range findAll(root, func(n *nethtml.Node) bool { return attr(n, "data-id") != "" }) {
		if _, dup := byID[attr(n, "data-id")]; !dup {
			byID[attr(n, "data-id")] = n
		}
	}

	if got := textOf(byID["title"]); got != "Acme Trading" {
		t.Errorf("bound title = %q", got)
	}
	if style := attr(byID["title"], "style"); !strings.Contains(style, "font-weight:bold") ||
		!strings.Contains(style, "color:#000080") || !strings.Contains(style, "left:20pt") {
		t.Errorf("title style = %q", style)
	}
	if _, ok := byID["paid"]; !ok {
		t.Error("conditional text should be visible when paid is true")
	}
	if src := attr(byID["logo"], "src"); !strings.HasPrefix(src, "data:image/png;base64,") {
		t.Errorf("logo src = %.40q", src)
	}
	if src := attr(byID["stamp"], "src"); src != rendertest.BrokenURL {
		t.Errorf("unfetched image src = %q, want original URL", src)
	}
	if src := attr(byID["code"], "src"); !strings.HasPrefix(src, "data:image/png;base64,") {
		t.Errorf("barcode src = %.40q", src)
	}
	if style := attr(byID["rule"], "style"); !strings.Contains(style, "border-top:1pt solid #000000") {
		t.Errorf("rule style = %q", style)
	}
}

func TestRenderHiddenElement(t *testing.T) {
	data := rendertest.Data(1)
	data["paid"] = false
	root, _ := render1(t, rendertest.Invoice(), data)
	if n := findAll(root, func(n *nethtml.Node) bool { return attr(n, "data-id") == "paid" }); len(n) != 0 {
		t.Error("conditional text should be hidden when paid is false")
	}
}

func TestRenderRoll(t *testing.T) {
	tpl := rendertest.Invoice()
	tpl.PageSettings = doctpl.PageSettings{Mode: doctpl.ModeRoll, Size: doctpl.SizeCustom, Width: 226}
	root, stats := render1(t, tpl, rendertest.Data(30))
	if stats.Pages != 1 {
		t.Errorf("roll pages = %d, want 1", stats.Pages)
	}
	pages := findAll(root, func(n *nethtml.Node) bool { return attr(n, "class") == "page" })
	if len(pages) != 1 || !strings.Contains(attr(pages[0], "style"), "min-height:") {
		t.Errorf("roll page should use min-height")
	}
	if got := len(findAll(pages[0], isAtom(atom.Tr))); got != 31 {
		t.Errorf("rows = %d, want 30 plus header", got)
	}
}

func TestEscapesText(t *testing.T) {
	b := html.New(nil)
	data := rendertest.Data(1)
	data["customer"] = map[string]any{"name": "<script>alert(1)</script>"}
	doc := rendertest.Prepare(t, b, rendertest.Invoice(), data)
	var buf bytes.Buffer
	if _, err := b.Render(context.Background(), doc, &buf); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Error("text content was not escaped")
	}
}

func TestMeasureTextHeight(t *testing.T) {
	b := html.New(nil)
	if h := b.MeasureTextHeight("", 100, 10); h != 0 {
		t.Errorf("empty = %v", h)
	}
	if h := b.MeasureTextHeight("one line", 200, 10); h != 12 {
		t.Errorf("one line = %v, want 12", h)
	}
}
