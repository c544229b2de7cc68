package customtag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FileNameFromTag(t *testing.T) {
	cfg, err := siteOptions().Normalize(nil)
	require.NoError(t, err)

	t.Run("should strip the prefix and turn dots into folders", func(t *testing.T) {
		assert.Equal(t, "forms/button.html", cfg.FileNameFromTag("x-forms.button"))
		assert.Equal(t, "button.html", cfg.FileNameFromTag("x-button"))
	})

	t.Run("should strip the prefix case-insensitively", func(t *testing.T) {
		assert.Equal(t, "Forms/Button.html", cfg.FileNameFromTag("X-Forms.Button"))
	})

	t.Run("should keep the namespace separator", func(t *testing.T) {
		assert.Equal(t, "theme-dark::forms/button.html", cfg.FileNameFromTag("x-theme-dark::forms.button"))
	})

	t.Run("should build the index file name", func(t *testing.T) {
		assert.Equal(t, "forms/button/index.html", cfg.IndexFileName("forms/button.html"))
	})

	t.Run("should honour prefix and extension options", func(t *testing.T) {
		opts := siteOptions()
		opts.TagPrefix = "ui-"
		opts.FileExtension = "tpl"
		cfg, err := opts.Normalize(nil)
		require.NoError(t, err)
		assert.Equal(t, "card/header.tpl", cfg.FileNameFromTag("ui-card.header"))
		assert.Equal(t, "card/header/index.tpl", cfg.IndexFileName("card/header.tpl"))
	})
}

func Test_Resolver_Roots(t *testing.T) {
	t.Run("should find the file in a search root", func(t *testing.T) {
		fs := newFs(t, touch("/site/modules/button.html"))
		opts := siteOptions()
		opts.Roots = []string{"modules/"}
		path, found, err := newResolver(t, opts, fs).Resolve("x-button")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "modules/button.html", path)
	})

	t.Run("should fall back to the index file", func(t *testing.T) {
		fs := newFs(t, touch("/site/modules/button/index.html"))
		opts := siteOptions()
		opts.Roots = []string{"modules/"}
		path, found, err := newResolver(t, opts, fs).Resolve("x-button")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "modules/button/index.html", path)
	})

	t.Run("should prefer a direct file in a later root over an index file in an earlier one", func(t *testing.T) {
		fs := newFs(t, touch("/site/a/button/index.html", "/site/b/button.html"))
		opts := siteOptions()
		opts.Roots = []string{"a", "b"}
		path, _, err := newResolver(t, opts, fs).Resolve("x-button")
		require.NoError(t, err)
		assert.Equal(t, "b/button.html", path)
	})

	t.Run("should try roots in order", func(t *testing.T) {
		fs := newFs(t, touch("/site/a/button.html", "/site/b/button.html"))
		opts := siteOptions()
		opts.Roots = []string{"b", "a"}
		path, _, err := newResolver(t, opts, fs).Resolve("x-button")
		require.NoError(t, err)
		assert.Equal(t, "b/button.html", path)
	})

	t.Run("should keep the case of the tag in the file name", func(t *testing.T) {
		fs := newFs(t, touch("/site/Card.html", "/site/forms/TextInput/index.html"))
		r := newResolver(t, siteOptions(), fs)
		path, found, err := r.Resolve("x-Card")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "/Card.html", path)

		path, _, err = r.Resolve("X-forms.TextInput")
		require.NoError(t, err)
		assert.Equal(t, "/forms/TextInput/index.html", path)
	})

	t.Run("should resolve folders from dotted tags under the default root", func(t *testing.T) {
		fs := newFs(t, touch("/site/forms/button.html"))
		path, found, err := newResolver(t, siteOptions(), fs).Resolve("x-forms.button")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "/forms/button.html", path)
	})

	t.Run("should fail in strict mode when nothing matches", func(t *testing.T) {
		opts := siteOptions()
		opts.Roots = []string{"modules/", "layouts/"}
		_, found, err := newResolver(t, opts, newFs(t, nil)).Resolve("x-button")
		require.Error(t, err)
		assert.False(t, found)
		assert.True(t, errors.Is(err, ErrTemplateNotFound))

		var notFound *TemplateNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "x-button", notFound.Tag)
		assert.Equal(t, []string{"modules/", "layouts/"}, notFound.Searched)
		assert.Contains(t, err.Error(), "modules/, layouts/")
	})

	t.Run("should report not found without error when not strict", func(t *testing.T) {
		opts := siteOptions()
		opts.Strict = false
		path, found, err := newResolver(t, opts, newFs(t, nil)).Resolve("x-button")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, path)
	})
}

func Test_Resolver_Namespaces(t *testing.T) {
	t.Run("should fail on an unknown namespace in strict mode", func(t *testing.T) {
		opts := siteOptions()
		opts.Namespaces = []Namespace{darkTheme()}
		_, _, err := newResolver(t, opts, newFs(t, nil)).Resolve("x-foo::bar")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownNamespace))

		var unknown *UnknownNamespaceError
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, "foo", unknown.Namespace)
		assert.Equal(t, "x-foo::bar", unknown.Tag)
	})

	t.Run("should report an unknown namespace as not found when not strict", func(t *testing.T) {
		opts := siteOptions()
		opts.Strict = false
		_, found, err := newResolver(t, opts, newFs(t, nil)).Resolve("x-foo::bar")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("should resolve an absolute path for modules", func(t *testing.T) {
		fs := newFs(t, touch("/site/theme-dark/modules/button.html"))
		opts := siteOptions()
		opts.Namespaces = []Namespace{darkTheme()}
		path, found, err := newResolver(t, opts, fs).Resolve("x-theme-dark::button")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "/theme-dark/modules/button.html", path)
	})

	t.Run("should resolve a relative path when rewriting to another tag", func(t *testing.T) {
		fs := newFs(t, touch("/site/theme-dark/layouts/base-layout.html"))
		opts := siteOptions()
		opts.ReplaceTagNameWith = "extends"
		opts.Attribute = "src"
		opts.Namespaces = []Namespace{{Name: "theme-dark", Root: "/site/theme-dark/layouts/"}}
		path, _, err := newResolver(t, opts, fs).Resolve("x-theme-dark::base-layout")
		require.NoError(t, err)
		assert.Equal(t, "theme-dark/layouts/base-layout.html", path)
	})

	t.Run("should let an explicit absolute option win", func(t *testing.T) {
		fs := newFs(t, touch("/site/theme-dark/modules/button.html"))
		opts := siteOptions()
		absolute := false
		opts.Absolute = &absolute
		opts.Namespaces = []Namespace{darkTheme()}
		path, _, err := newResolver(t, opts, fs).Resolve("x-theme-dark::button")
		require.NoError(t, err)
		assert.Equal(t, "theme-dark/modules/button.html", path)
	})

	t.Run("should keep a namespace directory outside the root whole", func(t *testing.T) {
		fs := newFs(t, touch("/site2/theme/button.html"))
		opts := siteOptions()
		opts.Namespaces = []Namespace{{Name: "theme", Root: "/site2/theme"}}
		path, found, err := newResolver(t, opts, fs).Resolve("x-theme::button")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "/site2/theme/button.html", path)

		absolute := false
		opts.Absolute = &absolute
		path, _, err = newResolver(t, opts, fs).Resolve("x-theme::button")
		require.NoError(t, err)
		assert.Equal(t, "/site2/theme/button.html", path)
	})

	t.Run("should strip a root of / from namespace directories", func(t *testing.T) {
		fs := newFs(t, touch("/theme/button.html"))
		opts := siteOptions()
		opts.Root = "/"
		opts.Namespaces = []Namespace{{Name: "theme", Root: "/theme"}}
		path, _, err := newResolver(t, opts, fs).Resolve("x-theme::button")
		require.NoError(t, err)
		assert.Equal(t, "/theme/button.html", path)
	})

	t.Run("should match namespace names as written", func(t *testing.T) {
		fs := newFs(t, touch("/site/Theme/Button.html"))
		opts := siteOptions()
		opts.Namespaces = []Namespace{{Name: "Theme", Root: "/site/Theme"}}
		r := newResolver(t, opts, fs)
		path, found, err := r.Resolve("x-Theme::Button")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "/Theme/Button.html", path)

		_, _, err = r.Resolve("x-theme::Button")
		assert.True(t, errors.Is(err, ErrUnknownNamespace))
	})

	t.Run("should use the namespace index file", func(t *testing.T) {
		fs := newFs(t, touch("/site/theme-dark/modules/label/index.html"))
		opts := siteOptions()
		opts.Namespaces = []Namespace{darkTheme()}
		path, _, err := newResolver(t, opts, fs).Resolve("x-theme-dark::label")
		require.NoError(t, err)
		assert.Equal(t, "/theme-dark/modules/label/index.html", path)
	})

	t.Run("should prefer the custom directory over the root", func(t *testing.T) {
		fs := newFs(t, touch(
			"/site/theme-dark/modules/button.html",
			"/site/custom/theme-dark/modules/button.html",
		))
		opts := siteOptions()
		ns := darkTheme()
		ns.Custom = "/site/custom/theme-dark/modules"
		opts.Namespaces = []Namespace{ns}
		r := newResolver(t, opts, fs)

		path, _, err := r.Resolve("x-theme-dark::button")
		require.NoError(t, err)
		assert.Equal(t, "/custom/theme-dark/modules/button.html", path)

		active, ok := r.ActiveRoot("theme-dark")
		require.True(t, ok)
		assert.Equal(t, "/site/custom/theme-dark/modules", active)
	})

	t.Run("should use the custom directory index file", func(t *testing.T) {
		fs := newFs(t, touch(
			"/site/theme-dark/modules/label/index.html",
			"/site/custom/theme-dark/modules/label/index.html",
		))
		opts := siteOptions()
		ns := darkTheme()
		ns.Custom = "/site/custom/theme-dark/modules"
		opts.Namespaces = []Namespace{ns}
		path, _, err := newResolver(t, opts, fs).Resolve("x-theme-dark::label")
		require.NoError(t, err)
		assert.Equal(t, "/custom/theme-dark/modules/label/index.html", path)
	})

	t.Run("should use the namespace fallback directory", func(t *testing.T) {
		fs := newFs(t, touch("/site/modules/input.html", "/site/modules/select/index.html"))
		opts := siteOptions()
		ns := darkTheme()
		ns.Fallback = "/site/modules"
		opts.Namespaces = []Namespace{ns}
		r := newResolver(t, opts, fs)

		path, _, err := r.Resolve("x-theme-dark::input")
		require.NoError(t, err)
		assert.Equal(t, "/modules/input.html", path)

		path, _, err = r.Resolve("x-theme-dark::select")
		require.NoError(t, err)
		assert.Equal(t, "/modules/select/index.html", path)
	})

	t.Run("should keep the switched root for later tags of the namespace", func(t *testing.T) {
		fs := newFs(t, touch("/site/modules/input.html", "/site/theme-dark/modules/button.html"))
		opts := siteOptions()
		ns := darkTheme()
		ns.Fallback = "/site/modules"
		opts.Namespaces = []Namespace{ns}

		r := newResolver(t, opts, fs)
		_, _, err := r.Resolve("x-theme-dark::input")
		require.NoError(t, err)
		active, _ := r.ActiveRoot("theme-dark")
		assert.Equal(t, "/site/modules", active)

		// The configured root is no longer searched in this traversal.
		_, _, err = r.Resolve("x-theme-dark::button")
		assert.True(t, errors.Is(err, ErrTemplateNotFound))

		// A new resolver starts from the configured root again.
		path, _, err := newResolver(t, opts, fs).Resolve("x-theme-dark::button")
		require.NoError(t, err)
		assert.Equal(t, "/theme-dark/modules/button.html", path)
	})

	t.Run("should fall back to the search roots when enabled", func(t *testing.T) {
		fs := newFs(t, touch("/site/modules/select/index.html"))
		opts := siteOptions()
		opts.Roots = []string{"modules/"}
		opts.NamespaceFallback = true
		opts.Namespaces = []Namespace{darkTheme()}
		path, found, err := newResolver(t, opts, fs).Resolve("x-theme-dark::select")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "modules/select/index.html", path)
	})

	t.Run("should report the namespace root when the root fallback also misses", func(t *testing.T) {
		opts := siteOptions()
		opts.Roots = []string{"modules/"}
		opts.NamespaceFallback = true
		opts.Namespaces = []Namespace{{Name: "empty-namespace", Root: "/site/empty-namespace"}}
		_, _, err := newResolver(t, opts, newFs(t, nil)).Resolve("x-empty-namespace::button")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTemplateNotFound))

		var notFound *TemplateNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "empty-namespace", notFound.Namespace)
		assert.Contains(t, err.Error(), "/site/empty-namespace")
		assert.Contains(t, err.Error(), "nor in any defined root path")
	})

	t.Run("should fail without root fallback", func(t *testing.T) {
		fs := newFs(t, touch("/site/modules/button.html"))
		opts := siteOptions()
		opts.Roots = []string{"modules/"}
		opts.Namespaces = []Namespace{{Name: "empty-namespace", Root: "/site/empty-namespace"}}
		_, _, err := newResolver(t, opts, fs).Resolve("x-empty-namespace::button")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTemplateNotFound))
		assert.Contains(t, err.Error(), "namespace's path /site/empty-namespace")
	})

	t.Run("should report a namespace miss as not found when not strict", func(t *testing.T) {
		opts := siteOptions()
		opts.Strict = false
		opts.NamespaceFallback = true
		opts.Namespaces = []Namespace{darkTheme()}
		_, found, err := newResolver(t, opts, newFs(t, nil)).Resolve("x-theme-dark::button")
		require.NoError(t, err)
		assert.False(t, found)
	})
}
