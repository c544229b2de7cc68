package customtag

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/grahms/customtag/extend"
	"github.com/grahms/customtag/modules"
	"github.com/spf13/afero"
)

// folderSeparator splits a tag name into folders.
const folderSeparator = "."

// moduleTagName is the tag name the module-inlining transform consumes.
// Rewriting to it makes namespaced paths absolute by default.
const moduleTagName = "module"

// Namespace is a named alternate root selected with the namespace separator,
// as in <x-theme-dark::button>.
type Namespace struct {
	// Name is the namespace as written in tags, without the tag prefix.
	Name string `mapstructure:"name"`

	// Root is the directory searched for the namespace's templates.
	Root string `mapstructure:"root"`

	// Fallback is searched when Root has no matching template.
	Fallback string `mapstructure:"fallback"`

	// Custom overrides Root: it is searched first.
	Custom string `mapstructure:"custom"`
}

// Options holds the user-supplied configuration. Start from DefaultOptions:
// zero strings and empty lists are defaulted by Normalize, but Strict is a
// plain bool and stays false on a zero Options.
type Options struct {
	// Root is the base directory every search root is relative to.
	Root string `mapstructure:"root"`

	// Roots are the directories searched, in order, for non-namespaced tags.
	Roots []string `mapstructure:"roots"`

	// Namespaces are the namespaces tags may reference.
	Namespaces []Namespace `mapstructure:"namespaces"`

	// NamespaceSeparator separates the namespace from the rest of the tag.
	NamespaceSeparator string `mapstructure:"namespaceSeparator"`

	// NamespaceFallback lets a namespace miss retry through Roots.
	NamespaceFallback bool `mapstructure:"namespaceFallback"`

	// FileExtension is appended to the file name built from the tag.
	FileExtension string `mapstructure:"fileExtension"`

	// TagPrefix identifies candidate tags and is stripped from the file name.
	TagPrefix string `mapstructure:"tagPrefix"`

	// Strict makes unresolved tags an error instead of leaving them unchanged.
	Strict bool `mapstructure:"strict"`

	// ReplaceTagNameWith is the tag name given to resolved tags.
	ReplaceTagNameWith string `mapstructure:"replaceTagNameWith"`

	// Attribute receives the resolved path.
	Attribute string `mapstructure:"attribute"`

	// Absolute keeps the leading separator of namespaced paths. When nil it
	// is true iff ReplaceTagNameWith is "module".
	Absolute *bool `mapstructure:"absolute"`

	// Transforms run, in order, on the tree after all tags are rewritten.
	Transforms []Transform `mapstructure:"-"`

	// Modules, when set, adds a module-inlining transform.
	// Setting Modules or Extends replaces Transforms.
	Modules *modules.Options `mapstructure:"modules"`

	// Extends, when set, adds an extend transform after the modules one.
	Extends *extend.Options `mapstructure:"extends"`
}

// DefaultOptions returns Options with the default value of every option.
func DefaultOptions() Options {
	return Options{
		Root:               "./",
		Roots:              []string{"/"},
		Namespaces:         []Namespace{},
		NamespaceSeparator: "::",
		NamespaceFallback:  false,
		FileExtension:      "html",
		TagPrefix:          "x-",
		Strict:             true,
		ReplaceTagNameWith: moduleTagName,
		Attribute:          "href",
	}
}

// DecodeOptions decodes a loosely typed map, as read from a config file, over
// DefaultOptions. A single root string becomes a one-element Roots list and a
// single namespace record a one-element Namespaces list. Unknown keys are
// reported as errors.
func DecodeOptions(raw map[string]any) (Options, error) {
	opts := DefaultOptions()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		ZeroFields:       true,
	})
	if err != nil {
		return Options{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Options{}, fmt.Errorf("decoding custom tag options: %w", err)
	}
	return opts, nil
}

// Config is the normalized, validated form of Options. It is read-only once
// built; per-traversal state lives in Resolver.
type Config struct {
	Root               string
	Roots              []string
	Namespaces         []Namespace
	NamespaceSeparator string
	NamespaceFallback  bool
	FileExtension      string
	TagPrefix          string
	Strict             bool
	ReplaceTagNameWith string
	Attribute          string
	Absolute           bool
	Pipeline           Pipeline

	namespaceIndex map[string]int
	tagPattern     *regexp.Regexp
}

// Namespace returns the namespace called name.
func (c *Config) Namespace(name string) (Namespace, bool) {
	i, ok := c.namespaceIndex[name]
	if !ok {
		return Namespace{}, false
	}
	return c.Namespaces[i], true
}

// MatchesTag reports whether tag carries the tag prefix (case-insensitive).
func (c *Config) MatchesTag(tag string) bool {
	return c.tagPattern.MatchString(tag)
}

// Normalize applies defaults, resolves every directory to an absolute path,
// derives Absolute, builds the transform pipeline and validates the result.
// fsys backs the default transforms built from Modules and Extends.
func (o Options) Normalize(fsys afero.Fs) (*Config, error) {
	d := DefaultOptions()
	if o.Root == "" {
		o.Root = d.Root
	}
	if len(o.Roots) == 0 {
		o.Roots = d.Roots
	}
	if o.NamespaceSeparator == "" {
		o.NamespaceSeparator = d.NamespaceSeparator
	}
	if o.FileExtension == "" {
		o.FileExtension = d.FileExtension
	}
	if o.TagPrefix == "" {
		o.TagPrefix = d.TagPrefix
	}
	if o.ReplaceTagNameWith == "" {
		o.ReplaceTagNameWith = d.ReplaceTagNameWith
	}
	if o.Attribute == "" {
		o.Attribute = d.Attribute
	}

	if problems := validate(&o); len(problems) > 0 {
		return nil, &ConfigError{Problems: problems}
	}

	root, err := filepath.Abs(o.Root)
	if err != nil {
		return nil, &ConfigError{Problems: []Problem{{Field: "root", Message: err.Error()}}}
	}

	cfg := &Config{
		Root:               root,
		Roots:              append([]string(nil), o.Roots...),
		Namespaces:         make([]Namespace, 0, len(o.Namespaces)),
		NamespaceSeparator: o.NamespaceSeparator,
		NamespaceFallback:  o.NamespaceFallback,
		FileExtension:      o.FileExtension,
		TagPrefix:          o.TagPrefix,
		Strict:             o.Strict,
		ReplaceTagNameWith: o.ReplaceTagNameWith,
		Attribute:          o.Attribute,
		Absolute:           o.ReplaceTagNameWith == moduleTagName,
		namespaceIndex:     make(map[string]int, len(o.Namespaces)),
		tagPattern:         regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(o.TagPrefix)),
	}
	if o.Absolute != nil {
		cfg.Absolute = *o.Absolute
	}

	var problems []Problem
	for i, ns := range o.Namespaces {
		var err error
		field := fmt.Sprintf("namespaces[%d]", i)
		if ns.Root, err = filepath.Abs(ns.Root); err != nil {
			problems = append(problems, Problem{Field: field + ".root", Message: err.Error()})
		}
		if ns.Fallback != "" {
			if ns.Fallback, err = filepath.Abs(ns.Fallback); err != nil {
				problems = append(problems, Problem{Field: field + ".fallback", Message: err.Error()})
			}
		}
		if ns.Custom != "" {
			if ns.Custom, err = filepath.Abs(ns.Custom); err != nil {
				problems = append(problems, Problem{Field: field + ".custom", Message: err.Error()})
			}
		}
		cfg.namespaceIndex[ns.Name] = len(cfg.Namespaces)
		cfg.Namespaces = append(cfg.Namespaces, ns)
	}
	if len(problems) > 0 {
		return nil, &ConfigError{Problems: problems}
	}

	cfg.Pipeline = append(Pipeline(nil), o.Transforms...)
	if o.Modules != nil || o.Extends != nil {
		cfg.Pipeline = DefaultTransforms(fsys, o.Modules, o.Extends)
	}
	return cfg, nil
}

// FileNameFromTag translates a tag name into a relative file name: the tag
// prefix is stripped, dots become path separators and the file extension is
// appended. With the defaults "x-forms.button" becomes "forms/button.html".
func (c *Config) FileNameFromTag(tag string) string {
	name := tag
	if len(name) >= len(c.TagPrefix) && strings.EqualFold(name[:len(c.TagPrefix)], c.TagPrefix) {
		name = name[len(c.TagPrefix):]
	}
	return strings.Join(strings.Split(name, folderSeparator), string(filepath.Separator)) +
		folderSeparator + c.FileExtension
}

// IndexFileName turns "forms/button.html" into "forms/button/index.html".
func (c *Config) IndexFileName(fileName string) string {
	return strings.TrimSuffix(fileName, folderSeparator+c.FileExtension) +
		string(filepath.Separator) + "index" + folderSeparator + c.FileExtension
}
