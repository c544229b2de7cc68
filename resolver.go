package customtag

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// Resolver maps tag names to template paths for one traversal.
//
// When a namespace's custom or fallback directory serves a template, that
// directory becomes the namespace's active root: later tags of the same
// namespace check it before the configured root. The active roots live only
// as long as the Resolver; Config is never mutated. A Resolver is not safe
// for concurrent use.
type Resolver struct {
	cfg    *Config
	fs     afero.Fs
	logger *log.Logger
	active map[string]string
}

// NewResolver creates a Resolver over cfg using fsys as the existence oracle.
// A nil logger discards output.
func NewResolver(cfg *Config, fsys afero.Fs, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{
		cfg:    cfg,
		fs:     fsys,
		logger: logger,
		active: map[string]string{},
	}
}

// ActiveRoot returns the directory the namespace currently resolves against.
func (r *Resolver) ActiveRoot(namespace string) (string, bool) {
	if dir, ok := r.active[namespace]; ok {
		return dir, true
	}
	ns, ok := r.cfg.Namespace(namespace)
	if !ok {
		return "", false
	}
	return ns.Root, true
}

// Resolve returns the path of the template tag refers to. found is false when
// nothing matched and the config is not strict; in strict mode the miss is
// returned as an *UnknownNamespaceError or a *TemplateNotFoundError.
func (r *Resolver) Resolve(tag string) (path string, found bool, err error) {
	fileName := r.cfg.FileNameFromTag(tag)
	if strings.Contains(tag, r.cfg.NamespaceSeparator) {
		path, found, err = r.findByNamespace(tag, fileName)
	} else {
		path, found, err = r.findByRoot(tag, fileName)
	}
	if found {
		r.logger.Debug("resolved custom tag", "tag", tag, "path", path)
	}
	return path, found, err
}

func (r *Resolver) findByRoot(tag, fileName string) (string, bool, error) {
	if root, ok := r.searchRoots(fileName); ok {
		return filepath.Join(root, fileName), true, nil
	}

	// tag-name/index.<ext>
	indexName := r.cfg.IndexFileName(fileName)
	if root, ok := r.searchRoots(indexName); ok {
		return filepath.Join(root, indexName), true, nil
	}

	return r.miss(NewRootNotFoundError(tag, r.cfg.Roots))
}

func (r *Resolver) searchRoots(fileName string) (string, bool) {
	for _, root := range r.cfg.Roots {
		if r.exists(filepath.Join(r.cfg.Root, root, fileName)) {
			return root, true
		}
	}
	return "", false
}

func (r *Resolver) findByNamespace(tag, fileName string) (string, bool, error) {
	parts := strings.SplitN(fileName, r.cfg.NamespaceSeparator, 2)
	if len(parts) < 2 {
		return r.findByRoot(tag, fileName)
	}
	name, fileName := parts[0], parts[1]

	ns, ok := r.cfg.Namespace(name)
	if !ok {
		return r.miss(NewUnknownNamespaceError(tag, name))
	}
	root, _ := r.ActiveRoot(name)
	indexName := r.cfg.IndexFileName(fileName)

	switch {
	case ns.Custom != "" && r.exists(filepath.Join(ns.Custom, fileName)):
		root = r.activate(name, ns.Custom)
	case ns.Custom != "" && r.exists(filepath.Join(ns.Custom, indexName)):
		root = r.activate(name, ns.Custom)
		fileName = indexName
	case r.exists(filepath.Join(root, fileName)):
	case r.exists(filepath.Join(root, indexName)):
		fileName = indexName
	case ns.Fallback != "" && r.exists(filepath.Join(ns.Fallback, fileName)):
		root = r.activate(name, ns.Fallback)
	case ns.Fallback != "" && r.exists(filepath.Join(ns.Fallback, indexName)):
		root = r.activate(name, ns.Fallback)
		fileName = indexName
	case r.cfg.NamespaceFallback:
		_, rest, _ := strings.Cut(tag, r.cfg.NamespaceSeparator)
		path, found, err := r.findByRoot(rest, fileName)
		if err != nil {
			return "", false, NewNamespaceNotFoundError(tag, name, root, r.searched(ns, root), true)
		}
		return path, found, nil
	default:
		return r.miss(NewNamespaceNotFoundError(tag, name, root, r.searched(ns, root), false))
	}

	return r.namespacePath(root, fileName), true, nil
}

// namespacePath strips the base root from dir, and its leading separator too
// unless paths are absolute, then appends fileName. A dir outside the base
// root is kept whole.
func (r *Resolver) namespacePath(dir, fileName string) string {
	sep := string(filepath.Separator)
	base := strings.TrimSuffix(r.cfg.Root, sep)
	if dir != r.cfg.Root && !strings.HasPrefix(dir, base+sep) {
		return filepath.Join(dir, fileName)
	}
	rel := strings.TrimSuffix(strings.TrimPrefix(dir, base), sep)
	if !r.cfg.Absolute {
		rel = strings.TrimPrefix(rel, sep)
	}
	return rel + sep + fileName
}

func (r *Resolver) activate(namespace, dir string) string {
	r.active[namespace] = dir
	return dir
}

func (r *Resolver) searched(ns Namespace, root string) []string {
	dirs := make([]string, 0, 3)
	for _, d := range []string{ns.Custom, root, ns.Fallback} {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

func (r *Resolver) miss(err error) (string, bool, error) {
	if r.cfg.Strict {
		return "", false, err
	}
	r.logger.Warn("custom tag left unchanged", "err", err)
	return "", false, nil
}

// exists treats any stat error as absence.
func (r *Resolver) exists(path string) bool {
	ok, err := afero.Exists(r.fs, path)
	return err == nil && ok
}
