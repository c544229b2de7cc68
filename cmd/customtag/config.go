package main

import (
	"fmt"
	"strings"

	"github.com/grahms/customtag"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadOptions merges, from lowest to highest precedence, the flag defaults,
// the --config file, CUSTOMTAG_* environment variables and the flags set on
// the command line.
func loadOptions(cmd *cobra.Command) (customtag.Options, error) {
	v := viper.New()
	v.SetEnvPrefix("CUSTOMTAG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, name := range optionFlags {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			return customtag.Options{}, fmt.Errorf("flag --%s is not defined", name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return customtag.Options{}, fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return customtag.Options{}, fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
	}

	return customtag.DecodeOptions(v.AllSettings())
}
