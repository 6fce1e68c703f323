package query

import "github.com/arturoeanton/xmlcore/tree"

// treeNode adapts *tree.Node to the Node interface this package queries
// over, since tree.Node exposes Name/Attrs as plain fields rather than
// methods.
type treeNode struct{ n *tree.Node }

// Wrap adapts a *tree.Node (typically doc.Root) for use with Get/All.
func Wrap(n *tree.Node) Node {
	if n == nil {
		return nil
	}
	return treeNode{n}
}

func (w treeNode) Name() string { return w.n.Name }

func (w treeNode) Attr(name string) (string, bool) { return w.n.Attr(name) }

func (w treeNode) Text() string { return w.n.Text() }

func (w treeNode) ChildrenNamed(name string) []Node {
	var out []Node
	for _, c := range w.n.Children {
		if c.Kind == tree.KindElement && c.Name == name {
			out = append(out, treeNode{c})
		}
	}
	return out
}
