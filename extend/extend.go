// Package extend implements layout extension: an <extends src="..."> element
// is replaced by the referenced layout, whose <block name="..."> elements are
// filled with the same-named blocks given inside <extends>.
package extend

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grahms/customtag/internal/markup"
	"github.com/spf13/afero"
	"golang.org/x/net/html"
)

// Block modes, taken from the type attribute of a block inside <extends>.
const (
	ModeReplace = "replace"
	ModeAppend  = "append"
	ModePrepend = "prepend"
)

// Options configures the extend transform.
type Options struct {
	// Root is the directory layout paths are resolved against.
	Root string `mapstructure:"root"`

	// Tag is the extending element. Defaults to "extends".
	Tag string `mapstructure:"tag"`

	// Attribute holds the layout path. Defaults to "src".
	Attribute string `mapstructure:"attribute"`

	// BlockTag names block elements. Defaults to "block".
	BlockTag string `mapstructure:"blockTag"`

	// MaxDepth limits layouts extending layouts. Defaults to 16.
	MaxDepth int `mapstructure:"maxDepth"`
}

// DefaultOptions returns Options with every default applied.
func DefaultOptions() Options {
	return Options{
		Root:      "./",
		Tag:       "extends",
		Attribute: "src",
		BlockTag:  "block",
		MaxDepth:  16,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Root == "" {
		o.Root = d.Root
	}
	if abs, err := filepath.Abs(o.Root); err == nil {
		o.Root = abs
	}
	if o.Tag == "" {
		o.Tag = d.Tag
	}
	if o.Attribute == "" {
		o.Attribute = d.Attribute
	}
	if o.BlockTag == "" {
		o.BlockTag = d.BlockTag
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = d.MaxDepth
	}
	return o
}

type extender struct {
	fs   afero.Fs
	opts Options
}

// New returns a transform that expands every extends element of a tree.
// Layout files are read from fsys.
func New(fsys afero.Fs, opts Options) func(*html.Node) (*html.Node, error) {
	x := &extender{fs: fsys, opts: opts.withDefaults()}
	return func(tree *html.Node) (*html.Node, error) {
		if err := x.expand(tree, 0); err != nil {
			return nil, err
		}
		return tree, nil
	}
}

func (x *extender) expand(parent *html.Node, depth int) error {
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		if err := x.expand(c, depth); err != nil {
			return err
		}
		if c.Type == html.ElementNode && strings.EqualFold(c.Data, x.opts.Tag) {
			nodes, err := x.apply(c, depth)
			if err != nil {
				return err
			}
			markup.ReplaceWith(c, nodes)
		}
		c = next
	}
	return nil
}

func (x *extender) apply(n *html.Node, depth int) ([]*html.Node, error) {
	if depth >= x.opts.MaxDepth {
		return nil, fmt.Errorf("layout nesting exceeds %d levels", x.opts.MaxDepth)
	}
	src, ok := markup.Attr(n, x.opts.Attribute)
	if !ok || src == "" {
		return nil, fmt.Errorf("<%s> element without %s attribute", x.opts.Tag, x.opts.Attribute)
	}

	layout, err := x.load(src, depth)
	if err != nil {
		return nil, err
	}

	given := map[string]*html.Node{}
	for _, b := range markup.FindAll(n, x.opts.BlockTag) {
		name, _ := markup.Attr(b, "name")
		if _, seen := given[name]; !seen {
			given[name] = b
		}
	}

	for _, slot := range markup.FindAll(layout, x.opts.BlockTag) {
		name, _ := markup.Attr(slot, "name")
		b, ok := given[name]
		if !ok {
			continue
		}
		mode, _ := markup.Attr(b, "type")
		content := markup.CloneAll(childNodes(b))
		switch mode {
		case ModeAppend:
			markup.AppendChildren(slot, content)
		case ModePrepend:
			markup.PrependChildren(slot, content)
		default:
			markup.DetachChildren(slot)
			markup.AppendChildren(slot, content)
		}
	}

	// Layouts loaded by other layouts keep their blocks so the outer
	// extends can still fill them.
	if depth == 0 {
		for _, slot := range markup.FindAll(layout, x.opts.BlockTag) {
			markup.Unwrap(slot)
		}
	}
	return markup.DetachChildren(layout), nil
}

func (x *extender) load(src string, depth int) (*html.Node, error) {
	path := filepath.Join(x.opts.Root, src)
	data, err := afero.ReadFile(x.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading layout %s: %w", src, err)
	}
	layout, err := markup.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing layout %s: %w", src, err)
	}
	if err := x.expand(layout, depth+1); err != nil {
		return nil, err
	}
	return layout, nil
}

func childNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}
