package main

import (
	"fmt"
	"strings"

	"github.com/grahms/customtag"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve TAG...",
	Short: "Print the template path each tag resolves to",
	Long: `Print the template path each tag resolves to, in order, with the same
resolver a build uses: a namespace root switched by one tag applies to the
tags after it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	plugin, err := customtag.New(opts, customtag.WithFs(afero.NewOsFs()), customtag.WithLogger(newLogger()))
	if err != nil {
		return err
	}

	r := plugin.Resolver()
	out := cmd.OutOrStdout()
	failed := 0
	for _, arg := range args {
		tag := strings.Trim(arg, "<>/ ")
		path, found, err := r.Resolve(tag)
		switch {
		case err != nil:
			failed++
			fmt.Fprintf(out, "%s %s\n", TagStyle.Render(tag), ErrorStyle.Render(err.Error()))
		case !found:
			fmt.Fprintf(out, "%s %s\n", TagStyle.Render(tag), WarningStyle.Render("unresolved"))
		default:
			fmt.Fprintf(out, "%s %s %s\n", TagStyle.Render(tag), MutedStyle.Render("->"), PathStyle.Render(path))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d tags could not be resolved", failed, len(args))
	}
	return nil
}
