package htmlq

import (
	"strings"
	"testing"

	"golang.org/x/net/html/atom"
)

const page = `<html><body>
<h3>Ämnesord och genre</h3>
<div>
  <a href="/s/1">Obligationsrätt</a> <span class="beskrivning">sao</span>
  <a href="/s/2">Avtalsrätt</a>
</div>
<ul class="pagination main"><li><a class="page-link" href="?p=1">2</a></li></ul>
</body></html>`

func TestFindAndText(t *testing.T) {
	doc, err := Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	h := Find(doc, TagText(atom.H3, "Ämnesord"))
	if h == nil {
		t.Fatal("Find(h3) returned nil")
	}
	div := Next(h, Tag(atom.Div))
	if div == nil {
		t.Fatal("Next(div) returned nil")
	}

	links := FindAll(div, Tag(atom.A))
	if len(links) != 2 {
		t.Fatalf("FindAll(a) = %d, want 2", len(links))
	}
	if got := Text(links[0]); got != "Obligationsrätt" {
		t.Errorf("Text() = %q, want Obligationsrätt", got)
	}
	span := NextSibling(links[0], TagClass(atom.Span, "beskrivning"))
	if span == nil || Text(span) != "sao" {
		t.Errorf("NextSibling(span.beskrivning) = %v, want sao", span)
	}
	if NextSibling(links[1], TagClass(atom.Span, "beskrivning")) != nil {
		t.Error("NextSibling() found a span after the last link")
	}
}

func TestHasClassAndAttr(t *testing.T) {
	doc, err := Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	ul := Find(doc, TagClass(atom.Ul, "pagination"))
	if ul == nil {
		t.Fatal("Find(ul.pagination) returned nil")
	}
	a := Find(ul, AttrContains(atom.A, "href", "p=1"))
	if a == nil {
		t.Fatal("Find(a[href*=p=1]) returned nil")
	}
	if v, ok := Attr(a, "class"); !ok || v != "page-link" {
		t.Errorf("Attr(class) = %q, %v", v, ok)
	}
	if len(Children(ul)) != 1 {
		t.Errorf("Children(ul) = %d, want 1", len(Children(ul)))
	}
}
