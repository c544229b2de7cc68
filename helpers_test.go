package customtag

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// newFs creates an in-memory filesystem holding files (path -> content).
func newFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

// touch lists files with placeholder content.
func touch(paths ...string) map[string]string {
	files := make(map[string]string, len(paths))
	for _, p := range paths {
		files[p] = "<p></p>"
	}
	return files
}

// siteOptions are the defaults rooted at /site.
func siteOptions() Options {
	opts := DefaultOptions()
	opts.Root = "/site"
	return opts
}

func newResolver(t *testing.T, opts Options, fs afero.Fs) *Resolver {
	t.Helper()
	cfg, err := opts.Normalize(fs)
	require.NoError(t, err)
	return NewResolver(cfg, fs, nil)
}

func darkTheme() Namespace {
	return Namespace{Name: "theme-dark", Root: "/site/theme-dark/modules"}
}
