package docck

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// voidElements are the tags without closing tag from section 12.1.2 of the
// HTML standard. They are closed immediately after being opened.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"menuitem": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// Node is one element of a parsed document. Character data is kept in the
// ElementTree fashion: Text holds the data up to the first child, Tail the
// data following the node inside its parent.
type Node struct {
	Tag  string
	Attr map[string]string
	Text string
	Kids []*Node
	Tail string
}

// Flatten returns the node's complete character data with all child
// elements stripped, i.e. Text followed by each child's flattened text and
// Tail in document order.
func (n *Node) Flatten() string {
	var sb strings.Builder
	n.flatten(&sb)
	return sb.String()
}

func (n *Node) flatten(sb *strings.Builder) {
	sb.WriteString(n.Text)
	for _, k := range n.Kids {
		k.flatten(sb)
		sb.WriteString(k.Tail)
	}
}

// Tree is the parsed form of one document. Root is a synthetic document
// node with an empty Tag whose Kids are the top level elements. A Tree is
// not modified after parsing.
type Tree struct {
	Root    *Node
	parents map[*Node]*Node
}

// Parent returns the parent of n, the synthetic root for top level
// elements and nil for the root itself and for nodes of other trees.
func (t *Tree) Parent(n *Node) *Node { return t.parents[n] }

// ParseError reports a document that cannot be turned into a well-formed
// tree. Unlike a failed or invalid directive this aborts a whole check
// run, the target file itself is broken.
type ParseError struct {
	Name string
	msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Cannot parse an HTML file %q: %s", e.Name, e.msg)
}

// ParseTree parses a document into a Tree. The parser is deliberately
// permissive in what it scans, the input is near-well-formed generated
// markup and not arbitrary HTML: entity references are decoded, void
// elements and explicit self-closing syntax close immediately and
// attributes without a value get the empty string. Mismatched or unclosed
// tags are a *ParseError.
func ParseTree(name string, r io.Reader) (*Tree, error) {
	t := &Tree{
		Root:    new(Node),
		parents: make(map[*Node]*Node),
	}
	stack := []*Node{t.Root}
	addText := func(s string) {
		top := stack[len(stack)-1]
		if len(top.Kids) == 0 {
			top.Text += s
		} else {
			last := top.Kids[len(top.Kids)-1]
			last.Tail += s
		}
	}
	open := func(tok *html.Token) *Node {
		n := &Node{Tag: tok.Data, Attr: make(map[string]string, len(tok.Attr))}
		for _, a := range tok.Attr {
			n.Attr[a.Key] = a.Val
		}
		top := stack[len(stack)-1]
		top.Kids = append(top.Kids, n)
		t.parents[n] = top
		return n
	}
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, &ParseError{Name: name, msg: err.Error()}
			}
			if len(stack) > 1 {
				return nil, &ParseError{
					Name: name,
					msg:  fmt.Sprintf("unclosed element <%s>", stack[len(stack)-1].Tag),
				}
			}
			return t, nil
		case html.TextToken:
			tok := z.Token()
			// The generated markup writes &nbsp; for layout only, so
			// non-breaking spaces count as ordinary spaces.
			addText(strings.ReplaceAll(tok.Data, "\u00a0", " "))
		case html.StartTagToken:
			tok := z.Token()
			n := open(&tok)
			if !voidElements[n.Tag] {
				stack = append(stack, n)
			}
		case html.SelfClosingTagToken:
			tok := z.Token()
			open(&tok)
		case html.EndTagToken:
			tok := z.Token()
			if len(stack) == 1 {
				return nil, &ParseError{
					Name: name,
					msg:  fmt.Sprintf("unexpected closing tag </%s>", tok.Data),
				}
			}
			if top := stack[len(stack)-1]; top.Tag != tok.Data {
				return nil, &ParseError{
					Name: name,
					msg:  fmt.Sprintf("closing tag </%s> for open element <%s>", tok.Data, top.Tag),
				}
			}
			stack = stack[:len(stack)-1]
		}
	}
}

// ParseTreeString is ParseTree on a string, mostly for tests and tools.
func ParseTreeString(name, doc string) (*Tree, error) {
	return ParseTree(name, strings.NewReader(doc))
}
