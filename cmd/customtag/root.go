package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"

	// verbose enables debug logging
	verbose bool
	// cfgFile is an optional YAML, TOML or JSON options file
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "customtag",
		Short: "Rewrite custom template tags into module and extends references",
		Long: TagStyle.Render("customtag") + MutedStyle.Render(" - resolve custom tags to template files") + `

Tags such as <x-forms.button> or <x-theme-dark::button> are resolved to
template files under the configured roots and namespaces, then rewritten
into <module href="..."> (or any other tag and attribute). The default
module and extends transforms can inline the referenced files.

Examples:
  customtag resolve x-forms.button --roots modules/
  customtag build 'pages/**/*.html' --out dist --roots modules/ --modules
  customtag build --config customtag.yaml`,
		SilenceUsage: true,
	}
)

// optionFlags maps option keys to the persistent flags that set them.
var optionFlags = map[string]string{
	"root":               "root",
	"roots":              "roots",
	"tagPrefix":          "tag-prefix",
	"namespaceSeparator": "namespace-separator",
	"namespaceFallback":  "namespace-fallback",
	"fileExtension":      "extension",
	"strict":             "strict",
	"replaceTagNameWith": "replace-tag",
	"attribute":          "attribute",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&cfgFile, "config", "", "options file (yaml, toml or json)")

	pf.String("root", "./", "base directory of every search root")
	pf.StringSlice("roots", []string{"/"}, "search roots, relative to --root, tried in order")
	pf.String("tag-prefix", "x-", "prefix identifying custom tags")
	pf.String("namespace-separator", "::", "separator between namespace and tag")
	pf.Bool("namespace-fallback", false, "retry namespace misses in the search roots")
	pf.String("extension", "html", "template file extension")
	pf.Bool("strict", true, "fail on unresolved tags instead of leaving them unchanged")
	pf.String("replace-tag", "module", "tag name given to resolved tags")
	pf.String("attribute", "href", "attribute receiving the resolved path")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(resolveCmd)
}

// Execute runs the root command.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "customtag",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
