// Package markup is the tree layer used by customtag and its transforms.
// It builds trees from the golang.org/x/net/html tokenizer without the HTML5
// tree construction rules, walks nodes in document order and offers the
// small set of node mutations the rewriter and the default transforms need.
package markup

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// voidElements never have children, so the parser does not keep them open.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// literalElements hold text that is rendered without escaping.
var literalElements = map[string]bool{
	"iframe": true, "noembed": true, "noframes": true, "noscript": true,
	"plaintext": true, "script": true, "style": true, "xmp": true,
}

const spaceChars = " \t\n\f\r"

// Parse reads HTML from r into a tree that mirrors the markup as written.
// Tag and attribute names keep their case, elements stay where they were
// opened and no html, head or body elements are implied. An end tag closes
// the innermost open element of the same name; end tags matching no open
// element are dropped, and elements still open at the end of the input are
// closed there. The nodes of the input are the children of a document node.
func Parse(r io.Reader) (*html.Node, error) {
	doc := &html.Node{Type: html.DocumentNode}
	open := []*html.Node{doc}
	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		parent := open[len(open)-1]
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, err
			}
			return doc, nil
		case html.TextToken:
			text := &html.Node{Type: html.TextNode, Data: string(z.Text())}
			// The renderer adds a newline before a leading one in these.
			if parent.FirstChild == nil && strings.HasPrefix(text.Data, "\n") {
				switch strings.ToLower(parent.Data) {
				case "pre", "listing", "textarea":
					text.Type, text.Data = html.RawNode, html.EscapeString(text.Data)
				}
			}
			parent.AppendChild(text)
		case html.CommentToken:
			parent.AppendChild(&html.Node{Type: html.CommentNode, Data: string(z.Text())})
		case html.DoctypeToken:
			parent.AppendChild(&html.Node{Type: html.DoctypeNode, Data: string(z.Text())})
		case html.StartTagToken, html.SelfClosingTagToken:
			n := element(z)
			parent.AppendChild(n)
			if tt == html.StartTagToken && !voidElements[n.Data] {
				open = append(open, n)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			for i := len(open) - 1; i > 0; i-- {
				if strings.EqualFold(open[i].Data, string(name)) {
					open = open[:i]
					break
				}
			}
		}
	}
}

// element builds the element of the current start tag token. The tokenizer
// lower-cases names, so their original spelling is taken from the raw text.
func element(z *html.Tokenizer) *html.Node {
	raw := string(z.Raw())
	name, more := z.TagName()
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     asWritten(strings.TrimPrefix(raw, "<"), string(name)),
		DataAtom: atom.Lookup(name),
	}
	// The renderer knows void and raw text elements by their lower-case names.
	if voidElements[string(name)] || literalElements[string(name)] {
		n.Data = string(name)
	}

	var keys []string
	if len(raw) >= 1+len(name) {
		keys = rawAttrKeys(raw[1+len(name):])
	}
	for i := 0; more; i++ {
		var key, val []byte
		key, val, more = z.TagAttr()
		k := string(key)
		if i < len(keys) {
			k = asWritten(keys[i], k)
		}
		n.Attr = append(n.Attr, html.Attribute{Key: k, Val: string(val)})
	}
	return n
}

// asWritten returns the prefix of raw spelling lower, or lower itself.
func asWritten(raw, lower string) string {
	if len(raw) >= len(lower) && strings.EqualFold(raw[:len(lower)], lower) {
		return raw[:len(lower)]
	}
	return lower
}

// rawAttrKeys lists the attribute names of the rest of a start tag, after
// its name, in order.
func rawAttrKeys(s string) []string {
	var keys []string
	for {
		s = strings.TrimLeft(s, spaceChars+"/")
		if s == "" || s[0] == '>' {
			return keys
		}
		// A name may start with "=".
		i := 1
		for i < len(s) && !strings.ContainsRune(spaceChars+"/=>", rune(s[i])) {
			i++
		}
		keys = append(keys, s[:i])

		s = strings.TrimLeft(s[i:], spaceChars)
		if s == "" || s[0] != '=' {
			continue
		}
		s = strings.TrimLeft(s[1:], spaceChars)
		switch {
		case s == "":
		case s[0] == '"' || s[0] == '\'':
			if end := strings.IndexByte(s[1:], s[0]); end >= 0 {
				s = s[end+2:]
			} else {
				s = ""
			}
		default:
			i := 0
			for i < len(s) && !strings.ContainsRune(spaceChars+">", rune(s[i])) {
				i++
			}
			s = s[i:]
		}
	}
}

// ParseString is Parse over a string.
func ParseString(s string) (*html.Node, error) {
	return Parse(strings.NewReader(s))
}

// Render writes n and its descendants to w.
func Render(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}

// RenderString renders n to a string.
func RenderString(n *html.Node) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Walk visits n and its descendants in document order (pre-order). fn may
// rename or re-attribute the visited node; it must not detach it.
func Walk(n *html.Node, fn func(*html.Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := Walk(c, fn); err != nil {
			return err
		}
	}
	return nil
}

// Match calls fn for every element under n (n included) whose tag name
// matches pattern, in document order. The first error stops the walk.
func Match(n *html.Node, pattern *regexp.Regexp, fn func(*html.Node) error) error {
	return Walk(n, func(node *html.Node) error {
		if node.Type != html.ElementNode || !pattern.MatchString(node.Data) {
			return nil
		}
		return fn(node)
	})
}

// FindAll returns the descendants of n (n excluded) named tag, in document order.
func FindAll(n *html.Node, tag string) []*html.Node {
	var found []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = Walk(c, func(node *html.Node) error {
			if node.Type == html.ElementNode && strings.EqualFold(node.Data, tag) {
				found = append(found, node)
			}
			return nil
		})
	}
	return found
}

// Attr returns the value of the attribute key on n. Keys match
// case-insensitively.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets key to val on n, replacing an existing value in place.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// Rename changes the tag name of n and keeps its atom in sync.
func Rename(n *html.Node, tag string) {
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

// DetachChildren removes and returns the children of n.
func DetachChildren(n *html.Node) []*html.Node {
	var children []*html.Node
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		children = append(children, c)
		c = next
	}
	return children
}

// AppendChildren appends detached nodes to n.
func AppendChildren(n *html.Node, nodes []*html.Node) {
	for _, c := range nodes {
		n.AppendChild(c)
	}
}

// PrependChildren inserts detached nodes before the first child of n.
func PrependChildren(n *html.Node, nodes []*html.Node) {
	first := n.FirstChild
	for _, c := range nodes {
		if first == nil {
			n.AppendChild(c)
			continue
		}
		n.InsertBefore(c, first)
	}
}

// ReplaceWith puts the detached nodes where n is and removes n.
func ReplaceWith(n *html.Node, nodes []*html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for _, c := range nodes {
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

// Unwrap replaces n by its own children.
func Unwrap(n *html.Node) {
	ReplaceWith(n, DetachChildren(n))
}

// Clone returns a deep copy of n, detached from any tree.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}

// CloneAll deep-copies every node in nodes.
func CloneAll(nodes []*html.Node) []*html.Node {
	out := make([]*html.Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Clone(n))
	}
	return out
}
