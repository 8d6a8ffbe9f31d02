package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

// walk visits root and every descendant in depth-first pre-order. The
// callback must not detach the visited node; mutation passes collect first
// and modify afterwards.
func walk(root *html.Node, fn func(*html.Node)) {
	fn(root)
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		walk(child, fn)
	}
}

// elements collects every descendant element whose tag is in names.
func elements(root *html.Node, names ...string) []*html.Node {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	var found []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type == html.ElementNode && set[n.Data] {
			found = append(found, n)
		}
	})
	return found
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

// detach removes n from its parent. Safe to call on already-detached nodes.
func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// unwrap replaces n with its children.
func unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for n.FirstChild != nil {
		child := n.FirstChild
		n.RemoveChild(child)
		parent.InsertBefore(child, n)
	}
	parent.RemoveChild(n)
}

// replaceWith swaps n for replacement in the tree.
func replaceWith(n, replacement *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	detach(replacement)
	parent.InsertBefore(replacement, n)
	parent.RemoveChild(n)
}

// insertBefore places n immediately before ref.
func insertBefore(ref, n *html.Node) {
	if ref.Parent == nil {
		return
	}
	detach(n)
	ref.Parent.InsertBefore(n, ref)
}

// insertAfter places n immediately after ref.
func insertAfter(ref, n *html.Node) {
	if ref.Parent == nil {
		return
	}
	detach(n)
	if ref.NextSibling != nil {
		ref.Parent.InsertBefore(n, ref.NextSibling)
	} else {
		ref.Parent.AppendChild(n)
	}
}

// textContent recursively collects all text within n.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(textContent(child))
	}
	return sb.String()
}

func isElement(n *html.Node, name string) bool {
	return n.Type == html.ElementNode && n.Data == name
}

func newElement(name string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: name}
}

func newText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}
