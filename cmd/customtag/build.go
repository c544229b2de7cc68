package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/grahms/customtag"
	"github.com/grahms/customtag/extend"
	"github.com/grahms/customtag/modules"
	"github.com/natefinch/atomic"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	buildSrc     string
	buildOut     string
	buildExclude []string
	buildModules bool
	buildExtends bool
)

var buildCmd = &cobra.Command{
	Use:   "build [glob...]",
	Short: "Rewrite custom tags in every matching file and write the results",
	Long: `Rewrite custom tags in every file under --src matching one of the globs
(default "**/*.html") and write each result to the same relative path under
--out. Globs support ** and are relative to --src.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildSrc, "src", ".", "directory the globs are matched in")
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "dist", "output directory")
	buildCmd.Flags().StringSliceVar(&buildExclude, "exclude", nil, "globs of files to skip")
	buildCmd.Flags().BoolVar(&buildModules, "modules", false, "inline <module> tags after rewriting")
	buildCmd.Flags().BoolVar(&buildExtends, "extends", false, "apply <extends> layouts after rewriting")
}

func runBuild(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if buildModules && opts.Modules == nil {
		opts.Modules = &modules.Options{Root: opts.Root}
	}
	if buildExtends && opts.Extends == nil {
		opts.Extends = &extend.Options{Root: opts.Root}
	}

	logger := newLogger()
	osFs := afero.NewOsFs()
	plugin, err := customtag.New(opts, customtag.WithFs(osFs), customtag.WithLogger(logger))
	if err != nil {
		return err
	}

	patterns := args
	if len(patterns) == 0 {
		patterns = []string{"**/*.html"}
	}
	src, err := filepath.Abs(buildSrc)
	if err != nil {
		return err
	}
	files, err := matchFiles(afero.NewIOFS(afero.NewBasePathFs(osFs, src)), patterns, buildExclude)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warn("no files matched", "src", buildSrc, "patterns", patterns)
		return nil
	}

	for _, name := range files {
		if err := buildFile(plugin, osFs, name); err != nil {
			return err
		}
		logger.Info("built", "file", name)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
		SuccessStyle.Render(fmt.Sprintf("built %d file(s)", len(files))),
		PathStyle.Render(buildOut))
	return nil
}

// matchFiles returns the sorted, de-duplicated files of fsys matching any
// pattern and no exclude glob.
func matchFiles(fsys fs.FS, patterns, exclude []string) ([]string, error) {
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("exclude %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}

	seen := map[string]bool{}
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, filepath.ToSlash(pattern), doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("matching %q: %w", pattern, err)
		}
		for _, name := range matches {
			if seen[name] || excluded(name, exclude) {
				continue
			}
			seen[name] = true
			files = append(files, name)
		}
	}
	sort.Strings(files)
	return files, nil
}

func excluded(name string, exclude []string) bool {
	for _, pattern := range exclude {
		if doublestar.MatchUnvalidated(pattern, name) {
			return true
		}
	}
	return false
}

func buildFile(plugin *customtag.Plugin, fsys afero.Fs, name string) error {
	src := filepath.Join(buildSrc, filepath.FromSlash(name))
	data, err := afero.ReadFile(fsys, src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}

	out, err := plugin.ProcessString(string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}

	dst := filepath.Join(buildOut, filepath.FromSlash(name))
	if err := fsys.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}
	if err := atomic.WriteFile(dst, strings.NewReader(out)); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}
