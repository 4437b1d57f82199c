// internal/heuristics/snapshot.go
package heuristics

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/restyle-dev/restyle-cli/api/schemas"
	"github.com/restyle-dev/restyle-cli/internal/style"
)

// SnapshotFromHTML builds an ElementSnapshot from an HTML fragment whose
// first element is the target. Inline style attributes stand in for computed
// styles; remaining children of the fragment root become siblings. This is
// the offline path for callers that have markup but no live page.
func SnapshotFromHTML(fragment string) (schemas.ElementSnapshot, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), bodyContext())
	if err != nil {
		return schemas.ElementSnapshot{}, fmt.Errorf("failed to parse HTML fragment: %w", err)
	}

	var elements []*html.Node
	for _, n := range nodes {
		collectElements(n, &elements)
	}
	if len(elements) == 0 {
		return schemas.ElementSnapshot{}, fmt.Errorf("fragment contains no elements")
	}

	target := elements[0]
	snap := snapshotElement(target)
	for _, sib := range elements[1:] {
		if sib.Parent == target.Parent {
			snap.Siblings = append(snap.Siblings, siblingOf(sib))
		}
	}
	return snap, nil
}

func bodyContext() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
}

func collectElements(n *html.Node, out *[]*html.Node) {
	if n.Type == html.ElementNode {
		*out = append(*out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectElements(c, out)
	}
}

func snapshotElement(n *html.Node) schemas.ElementSnapshot {
	styles := inlineStyles(n)
	snap := schemas.ElementSnapshot{
		Tag:    n.Data,
		Text:   strings.TrimSpace(textOf(n)),
		Role:   DetectRole(n.Data),
		Styles: styles,
	}
	if src := attr(n, "src"); src != "" {
		snap.ImageSource = src
	}
	if w, ok := styles["width"]; ok {
		snap.Box.Width = style.ParsePx(w)
	}
	if h, ok := styles["height"]; ok {
		snap.Box.Height = style.ParsePx(h)
	}
	if id := attr(n, "id"); id != "" {
		snap.Selector = "#" + id
	} else if class := attr(n, "class"); class != "" {
		snap.Selector = n.Data + "." + strings.Join(strings.Fields(class), ".")
	} else {
		snap.Selector = n.Data
	}
	return snap
}

func siblingOf(n *html.Node) schemas.SiblingSnapshot {
	styles := inlineStyles(n)
	sib := schemas.SiblingSnapshot{
		Tag:  n.Data,
		Role: DetectRole(n.Data),
	}
	if w, ok := styles["width"]; ok {
		sib.Width = style.ParsePx(w)
	}
	if m, ok := styles["margin-bottom"]; ok {
		sib.MarginBottom = style.ParsePx(m)
	}
	return sib
}

func inlineStyles(n *html.Node) map[string]string {
	raw := attr(n, "style")
	if raw == "" {
		return map[string]string{}
	}
	return style.DeclarationsToMap(raw)
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
