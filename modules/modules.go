// Package modules inlines <module href="..."> elements with the content of
// the referenced template file. A <content> element inside the template
// receives the children of the module element.
package modules

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grahms/customtag/internal/markup"
	"github.com/spf13/afero"
	"golang.org/x/net/html"
)

// Options configures the inlining transform.
type Options struct {
	// Root is the directory hrefs starting with "/" (and top-level relative
	// hrefs) are resolved against.
	Root string `mapstructure:"root"`

	// Tag is the element name to inline. Defaults to "module".
	Tag string `mapstructure:"tag"`

	// Attribute holds the template path. Defaults to "href".
	Attribute string `mapstructure:"attribute"`

	// Slot is the element in a template replaced by the module's children.
	// Defaults to "content".
	Slot string `mapstructure:"slot"`

	// MaxDepth limits nested module expansion. Defaults to 16.
	MaxDepth int `mapstructure:"maxDepth"`
}

// DefaultOptions returns Options with every default applied.
func DefaultOptions() Options {
	return Options{
		Root:      "./",
		Tag:       "module",
		Attribute: "href",
		Slot:      "content",
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
	if o.Slot == "" {
		o.Slot = d.Slot
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = d.MaxDepth
	}
	return o
}

type inliner struct {
	fs   afero.Fs
	opts Options
}

// New returns a transform that inlines every module element of a tree.
// Template files are read from fsys.
func New(fsys afero.Fs, opts Options) func(*html.Node) (*html.Node, error) {
	in := &inliner{fs: fsys, opts: opts.withDefaults()}
	return func(tree *html.Node) (*html.Node, error) {
		if err := in.expand(tree, in.opts.Root, 0); err != nil {
			return nil, err
		}
		return tree, nil
	}
}

// expand inlines the module elements below parent. dir is the directory
// relative hrefs are resolved against.
func (in *inliner) expand(parent *html.Node, dir string, depth int) error {
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		if err := in.expand(c, dir, depth); err != nil {
			return err
		}
		if c.Type == html.ElementNode && strings.EqualFold(c.Data, in.opts.Tag) {
			nodes, err := in.inline(c, dir, depth)
			if err != nil {
				return err
			}
			markup.ReplaceWith(c, nodes)
		}
		c = next
	}
	return nil
}

func (in *inliner) inline(n *html.Node, dir string, depth int) ([]*html.Node, error) {
	if depth >= in.opts.MaxDepth {
		return nil, fmt.Errorf("module nesting exceeds %d levels", in.opts.MaxDepth)
	}
	href, ok := markup.Attr(n, in.opts.Attribute)
	if !ok || href == "" {
		return nil, fmt.Errorf("<%s> element without %s attribute", in.opts.Tag, in.opts.Attribute)
	}

	path := filepath.Join(dir, href)
	if strings.HasPrefix(href, "/") {
		path = filepath.Join(in.opts.Root, href)
	}
	src, err := afero.ReadFile(in.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading module %s: %w", href, err)
	}
	doc, err := markup.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parsing module %s: %w", href, err)
	}
	if err := in.expand(doc, filepath.Dir(path), depth+1); err != nil {
		return nil, err
	}

	children := markup.DetachChildren(n)
	for _, slot := range markup.FindAll(doc, in.opts.Slot) {
		markup.ReplaceWith(slot, markup.CloneAll(children))
	}
	return markup.DetachChildren(doc), nil
}
