package customtag

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/grahms/customtag/internal/markup"
	"github.com/spf13/afero"
	"golang.org/x/net/html"
)

// Plugin rewrites custom tags of a tree into ReplaceTagNameWith elements
// carrying the resolved template path, then runs the configured transforms.
type Plugin struct {
	cfg    *Config
	fs     afero.Fs
	logger *log.Logger
}

// New normalizes and validates opts and returns a ready Plugin. Invalid
// options are reported as a *ConfigError.
func New(opts Options, fns ...func(*Plugin)) (*Plugin, error) {
	p := &Plugin{
		fs:     afero.NewOsFs(),
		logger: log.New(io.Discard),
	}
	for _, fn := range fns {
		fn(p)
	}
	cfg, err := opts.Normalize(p.fs)
	if err != nil {
		return nil, err
	}
	p.cfg = cfg
	return p, nil
}

// WithFs sets the filesystem templates are looked up in.
func WithFs(fsys afero.Fs) func(*Plugin) {
	return func(p *Plugin) { p.fs = fsys }
}

// WithLogger sets the logger resolutions are reported to.
func WithLogger(logger *log.Logger) func(*Plugin) {
	return func(p *Plugin) { p.logger = logger }
}

// Config returns the normalized configuration.
func (p *Plugin) Config() *Config { return p.cfg }

// Resolver returns a fresh Resolver bound to the plugin's configuration.
func (p *Plugin) Resolver() *Resolver {
	return NewResolver(p.cfg, p.fs, p.logger)
}

// Process rewrites every custom tag of tree in document order. A resolved
// node gets the path attribute and the new tag name together; an unresolved
// node is left untouched unless the config is strict, in which case the
// error aborts processing. The rewritten tree then runs through the pipeline.
func (p *Plugin) Process(tree *html.Node) (*html.Node, error) {
	r := p.Resolver()
	err := markup.Match(tree, p.cfg.tagPattern, func(n *html.Node) error {
		path, found, err := r.Resolve(n.Data)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}
		markup.SetAttr(n, p.cfg.Attribute, path)
		markup.Rename(n, p.cfg.ReplaceTagNameWith)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.cfg.Pipeline.Apply(tree)
}

// Transform exposes Process as a pipeline stage.
func (p *Plugin) Transform() Transform {
	return p.Process
}

// ProcessReader parses HTML from r, processes it and renders the result to w.
func (p *Plugin) ProcessReader(r io.Reader, w io.Writer) error {
	tree, err := markup.Parse(r)
	if err != nil {
		return err
	}
	out, err := p.Process(tree)
	if err != nil {
		return err
	}
	return markup.Render(w, out)
}

// ProcessString is ProcessReader over strings.
func (p *Plugin) ProcessString(input string) (string, error) {
	var sb strings.Builder
	if err := p.ProcessReader(strings.NewReader(input), &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
