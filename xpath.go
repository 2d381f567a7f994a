package docck

import (
	"fmt"
	"strconv"
	"strings"
)

// Path is a parsed, restricted path query over a Tree. The supported
// fragment is what checking generated documents needs:
//
//	//tag  .//tag          absolute start, required
//	tag  *  .  ..  //      steps
//	[@attr]  [@attr='v']   attribute predicates
//	[tag]                  child element predicate
//	[POS]  [last()]  [last()-POS]
//	                       1-based position among same-tag siblings
//	/text()                terminal, same as leaving it out
//	/@attr                 terminal, switch to attribute extraction
//
// Everything else is rejected by ParsePath.
type Path struct {
	query string
	steps []pathStep
	attr  string
}

// PathError reports a query outside the supported fragment.
type PathError struct {
	Query string
	msg   string
}

func (e *PathError) Error() string { return e.msg }

func pathErrorf(query, format string, args ...any) *PathError {
	return &PathError{Query: query, msg: fmt.Sprintf(format, args...)}
}

type stepKind int

const (
	stepTag stepKind = iota
	stepSelf
	stepParent
)

type pathStep struct {
	descend bool // step was preceded by '//'
	kind    stepKind
	tag     string // tag name or "*", stepTag only
	preds   []pathPred
}

type predKind int

const (
	predAttrExists predKind = iota
	predAttrEquals
	predChildTag
	predPosition
)

type pathPred struct {
	kind     predKind
	name     string // attribute or child tag name
	value    string // predAttrEquals only
	pos      int    // 1-based position, or offset back from last()
	fromLast bool
}

// Query returns the original query text the path was parsed from.
func (p *Path) Query() string { return p.query }

// Attr returns the attribute name of a '/@attr' terminal or "" for
// element and text queries.
func (p *Path) Attr() string { return p.attr }

// ParsePath parses a path query. Only absolute queries starting with '//'
// or './/' are accepted; any construct outside the documented fragment is
// a *PathError, not a best-effort match.
func ParsePath(query string) (*Path, error) {
	p := &Path{query: query}
	q := query
	if rest, attr, ok := strings.Cut(q, "/@"); ok {
		if attr == "" || strings.ContainsAny(attr, "/[]") {
			return nil, pathErrorf(query, "invalid attribute selector '/@%s'", attr)
		}
		q, p.attr = rest, attr
	} else {
		q = strings.TrimSuffix(q, "/text()")
	}
	switch {
	case strings.HasPrefix(q, ".//"):
		q = q[3:]
	case strings.HasPrefix(q, "//"):
		q = q[2:]
	default:
		return nil, pathErrorf(query, "Non-absolute XPath is not supported")
	}
	if q == "" {
		return nil, pathErrorf(query, "empty path after '//'")
	}
	prs := pathParser{path: query, s: q}
	descend := true
	for {
		st, err := prs.step()
		if err != nil {
			return nil, err
		}
		st.descend = descend
		p.steps = append(p.steps, st)
		if prs.done() {
			return p, nil
		}
		descend, err = prs.separator()
		if err != nil {
			return nil, err
		}
	}
}

type pathParser struct {
	path string // complete query, for error messages
	s    string
	i    int
}

func (pp *pathParser) done() bool { return pp.i >= len(pp.s) }

// separator consumes '/' or '//' between steps.
func (pp *pathParser) separator() (descend bool, err error) {
	if pp.s[pp.i] != '/' {
		return false, pathErrorf(pp.path, "unexpected %q in path", pp.s[pp.i:])
	}
	pp.i++
	if pp.i < len(pp.s) && pp.s[pp.i] == '/' {
		pp.i++
		descend = true
	}
	if pp.done() {
		return false, pathErrorf(pp.path, "path must not end with '/'")
	}
	return descend, nil
}

func (pp *pathParser) step() (st pathStep, err error) {
	name := pp.name()
	switch name {
	case "":
		return st, pathErrorf(pp.path, "empty step in path")
	case ".":
		st.kind = stepSelf
	case "..":
		st.kind = stepParent
	case "*":
		st.kind, st.tag = stepTag, "*"
	default:
		if !validName(name) {
			return st, pathErrorf(pp.path, "invalid step %q", name)
		}
		st.kind, st.tag = stepTag, name
	}
	for !pp.done() && pp.s[pp.i] == '[' {
		body, err := pp.predicateBody()
		if err != nil {
			return st, err
		}
		pred, err := pp.parsePred(body)
		if err != nil {
			return st, err
		}
		st.preds = append(st.preds, pred)
	}
	return st, nil
}

func (pp *pathParser) name() string {
	i := pp.i
	for i < len(pp.s) && pp.s[i] != '/' && pp.s[i] != '[' {
		i++
	}
	name := pp.s[pp.i:i]
	pp.i = i
	return name
}

// predicateBody consumes "[...]" and returns the bracket content. A ']'
// inside a quoted attribute value does not end the predicate.
func (pp *pathParser) predicateBody() (string, error) {
	start := pp.i + 1
	var quote byte
	for j := start; j < len(pp.s); j++ {
		c := pp.s[j]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case ']':
			pp.i = j + 1
			return pp.s[start:j], nil
		}
	}
	return "", pathErrorf(pp.path, "unterminated predicate")
}

func (pp *pathParser) parsePred(body string) (pred pathPred, err error) {
	body = strings.TrimSpace(body)
	switch {
	case body == "":
		return pred, pathErrorf(pp.path, "empty predicate")
	case body[0] == '@':
		name, value, eq := strings.Cut(body[1:], "=")
		name = strings.TrimSpace(name)
		if !validName(name) {
			return pred, pathErrorf(pp.path, "invalid attribute name %q", name)
		}
		if !eq {
			return pathPred{kind: predAttrExists, name: name}, nil
		}
		value = strings.TrimSpace(value)
		if len(value) < 2 || (value[0] != '\'' && value[0] != '"') ||
			value[len(value)-1] != value[0] {
			return pred, pathErrorf(pp.path, "attribute value %s must be quoted", value)
		}
		return pathPred{
			kind:  predAttrEquals,
			name:  name,
			value: value[1 : len(value)-1],
		}, nil
	case body[0] >= '0' && body[0] <= '9':
		pos, err := strconv.Atoi(body)
		if err != nil || pos < 1 {
			return pred, pathErrorf(pp.path, "invalid position predicate [%s]", body)
		}
		return pathPred{kind: predPosition, pos: pos}, nil
	case strings.HasPrefix(body, "last()"):
		rest := strings.TrimSpace(body[len("last()"):])
		if rest == "" {
			return pathPred{kind: predPosition, fromLast: true}, nil
		}
		if rest[0] != '-' {
			return pred, pathErrorf(pp.path, "invalid position predicate [%s]", body)
		}
		off, err := strconv.Atoi(strings.TrimSpace(rest[1:]))
		if err != nil || off < 0 {
			return pred, pathErrorf(pp.path, "invalid position predicate [%s]", body)
		}
		return pathPred{kind: predPosition, pos: off, fromLast: true}, nil
	default:
		if !validName(body) {
			return pred, pathErrorf(pp.path, "unsupported predicate [%s]", body)
		}
		return pathPred{kind: predChildTag, name: body}, nil
	}
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == ':':
		default:
			return false
		}
	}
	return true
}

// Find evaluates the path over t and returns the matching elements in
// document order. For attribute queries the returned nodes still have to
// be narrowed to the ones carrying the attribute, see Attr.
func (p *Path) Find(t *Tree) []*Node {
	cur := []*Node{t.Root}
	for i := range p.steps {
		cur = p.steps[i].apply(t, cur)
		if len(cur) == 0 {
			return nil
		}
	}
	return cur
}

// Count returns the number of path matches in t. For attribute queries it
// counts the matched elements that carry the attribute.
func (p *Path) Count(t *Tree) int {
	nodes := p.Find(t)
	if p.attr == "" {
		return len(nodes)
	}
	n := 0
	for _, node := range nodes {
		if _, ok := node.Attr[p.attr]; ok {
			n++
		}
	}
	return n
}

func (st *pathStep) apply(t *Tree, in []*Node) (out []*Node) {
	if st.descend && st.kind != stepTag {
		var exp []*Node
		for _, n := range in {
			exp = selfAndDescendants(n, exp)
		}
		in = exp
	}
	switch st.kind {
	case stepSelf:
		for _, n := range in {
			if n != t.Root {
				out = append(out, n)
			}
		}
	case stepParent:
		seen := make(map[*Node]bool)
		for _, n := range in {
			p := t.Parent(n)
			if p == nil || p == t.Root || seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	case stepTag:
		// A '//' step must keep document order: expanding the input to
		// all descendants first and then taking their children would
		// emit a deeply nested match after a later, shallower one. So
		// matches are collected during the walk instead.
		if st.descend {
			for _, n := range in {
				out = matchingDescendants(n, st.tag, out)
			}
			break
		}
		for _, n := range in {
			for _, kid := range n.Kids {
				if st.tag == "*" || kid.Tag == st.tag {
					out = append(out, kid)
				}
			}
		}
	}
	for i := range st.preds {
		out = st.preds[i].filter(t, out)
		if len(out) == 0 {
			return nil
		}
	}
	return out
}

func selfAndDescendants(n *Node, acc []*Node) []*Node {
	acc = append(acc, n)
	for _, kid := range n.Kids {
		acc = selfAndDescendants(kid, acc)
	}
	return acc
}

// matchingDescendants collects the proper descendants of n with the given
// tag, or all of them for "*", in document order.
func matchingDescendants(n *Node, tag string, acc []*Node) []*Node {
	for _, kid := range n.Kids {
		if tag == "*" || kid.Tag == tag {
			acc = append(acc, kid)
		}
		acc = matchingDescendants(kid, tag, acc)
	}
	return acc
}

func (pd *pathPred) filter(t *Tree, in []*Node) (out []*Node) {
	for _, n := range in {
		if pd.holds(t, n) {
			out = append(out, n)
		}
	}
	return out
}

func (pd *pathPred) holds(t *Tree, n *Node) bool {
	switch pd.kind {
	case predAttrExists:
		_, ok := n.Attr[pd.name]
		return ok
	case predAttrEquals:
		return n.Attr[pd.name] == pd.value
	case predChildTag:
		for _, kid := range n.Kids {
			if kid.Tag == pd.name {
				return true
			}
		}
		return false
	case predPosition:
		parent := t.Parent(n)
		if parent == nil {
			return false
		}
		var siblings []*Node
		for _, kid := range parent.Kids {
			if kid.Tag == n.Tag {
				siblings = append(siblings, kid)
			}
		}
		idx := pd.pos - 1
		if pd.fromLast {
			idx = len(siblings) - 1 - pd.pos
		}
		return idx >= 0 && idx < len(siblings) && siblings[idx] == n
	}
	return false
}
