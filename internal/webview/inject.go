package webview

import (
	"bytes"
	"errors"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CanvasID is the id of the network mount point
const CanvasID = "mynetwork"

// VisNetworkURL is the network library loaded by every page
const VisNetworkURL = "https://unpkg.com/vis-network@9.1.9/standalone/umd/vis-network.min.js"

const assetAttr = "data-aqs-asset"

type headAsset struct {
	name  string
	tag   atom.Atom
	src   string // external script
	asset string // embedded file inlined as the element text
}

// head assets in insertion order; the bundled script needs vis-network first
var headAssets = []headAsset{
	{name: "style", tag: atom.Style, asset: "assets/aqs.css"},
	{name: "vis-network", tag: atom.Script, src: VisNetworkURL},
	{name: "script", tag: atom.Script, asset: "assets/aqs.js"},
}

// ErrNoCanvas is returned for documents without a network mount point
var ErrNoCanvas = errors.New("document has no #" + CanvasID + " element")

// InjectHead adds the page style and scripts to the document head. Assets are
// marked with data-aqs-asset and never added twice, so injecting an already
// injected document returns it unchanged. Duplicate canvas elements are
// removed, keeping the first.
func InjectHead(doc []byte) ([]byte, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	head := find(root, func(n *html.Node) bool { return n.DataAtom == atom.Head })
	if head == nil {
		return nil, errors.New("document has no head")
	}

	present := make(map[string]bool)
	walk(root, func(n *html.Node) {
		if v, ok := attr(n, assetAttr); ok {
			present[v] = true
		}
	})
	for _, a := range headAssets {
		if present[a.name] {
			continue
		}
		el, err := a.node()
		if err != nil {
			return nil, err
		}
		head.AppendChild(el)
	}

	var canvases []*html.Node
	walk(root, func(n *html.Node) {
		if id, _ := attr(n, "id"); n.Type == html.ElementNode && id == CanvasID {
			canvases = append(canvases, n)
		}
	})
	if len(canvases) == 0 {
		return nil, ErrNoCanvas
	}
	for _, extra := range canvases[1:] {
		extra.Parent.RemoveChild(extra)
	}

	var out bytes.Buffer
	if err := html.Render(&out, root); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return out.Bytes(), nil
}

func (a headAsset) node() (*html.Node, error) {
	el := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a.tag,
		Data:     a.tag.String(),
		Attr:     []html.Attribute{{Key: assetAttr, Val: a.name}},
	}
	if a.src != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: "src", Val: a.src})
		return el, nil
	}
	body, err := assets.ReadFile(a.asset)
	if err != nil {
		return nil, err
	}
	el.AppendChild(&html.Node{Type: html.TextNode, Data: string(body)})
	return el, nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}
