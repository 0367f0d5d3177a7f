// Package htmlq provides small query helpers over golang.org/x/net/html trees.
package htmlq

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Match reports whether a node is wanted.
type Match func(*html.Node) bool

// Parse parses an HTML document.
func Parse(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// Tag matches elements with the given tag.
func Tag(a atom.Atom) Match {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	}
}

// TagClass matches elements with the given tag carrying class cls.
func TagClass(a atom.Atom, cls string) Match {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a && HasClass(n, cls)
	}
}

// TagText matches elements with the given tag whose trimmed text contains s.
func TagText(a atom.Atom, s string) Match {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a && strings.Contains(Text(n), s)
	}
}

// AttrContains matches elements with the given tag whose attribute key
// contains s.
func AttrContains(a atom.Atom, key, s string) Match {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != a {
			return false
		}
		v, ok := Attr(n, key)
		return ok && strings.Contains(v, s)
	}
}

// Find returns the first descendant of root (excluding root) that matches.
func Find(root *html.Node, m Match) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if m(c) {
			return c
		}
		if found := Find(c, m); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant of root that matches, in document order.
func FindAll(root *html.Node, m Match) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if m(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// Next returns the first node after n in document order that matches,
// searching n's descendants first and then everything that follows n.
func Next(n *html.Node, m Match) *html.Node {
	if found := Find(n, m); found != nil {
		return found
	}
	for cur := n; cur != nil; cur = cur.Parent {
		for s := cur.NextSibling; s != nil; s = s.NextSibling {
			if m(s) {
				return s
			}
			if found := Find(s, m); found != nil {
				return found
			}
		}
	}
	return nil
}

// NextSibling returns the first following sibling element of n that matches.
func NextSibling(n *html.Node, m Match) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if m(s) {
			return s
		}
	}
	return nil
}

// Children returns the element children of n.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the value of attribute key.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasClass reports whether n's class attribute includes cls.
func HasClass(n *html.Node, cls string) bool {
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == cls {
			return true
		}
	}
	return false
}

// Text returns the text content of n with whitespace collapsed.
func Text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
