package customtag

import (
	"fmt"

	"github.com/grahms/customtag/extend"
	"github.com/grahms/customtag/modules"
	"github.com/spf13/afero"
	"golang.org/x/net/html"
)

// Transform consumes a tree and returns the tree handed to the next stage.
type Transform func(tree *html.Node) (*html.Node, error)

// Pipeline is an ordered list of transforms.
type Pipeline []Transform

// Apply threads tree through every transform in order. The first failing
// transform stops the pipeline.
func (p Pipeline) Apply(tree *html.Node) (*html.Node, error) {
	for i, t := range p {
		next, err := t(tree)
		if err != nil {
			return nil, fmt.Errorf("transform %d: %w", i, err)
		}
		tree = next
	}
	return tree, nil
}

// DefaultTransforms builds the transforms for the modules and extends
// shorthands: module inlining first, then extension. Nil options are skipped.
func DefaultTransforms(fsys afero.Fs, m *modules.Options, e *extend.Options) Pipeline {
	var p Pipeline
	if m != nil {
		p = append(p, modules.New(fsys, *m))
	}
	if e != nil {
		p = append(p, extend.New(fsys, *e))
	}
	return p
}
