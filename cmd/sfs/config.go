package main

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/sfs/clientcli"
)

// Ambient settings. Operation parameters are resolved by clientcli and never
// read from viper.
const (
	keyOutput   = "output"
	keyQuiet    = "quiet"
	keyTimeout  = "timeout"
	keyLogLevel = "log-level"
	keyEnv      = "env"
)

func bindSettings(v *viper.Viper, flags *pflag.FlagSet) {
	flags.String(keyOutput, clientcli.FormatHuman, "output format: human, json, yaml (env: SFS_OUTPUT)")
	flags.BoolP(keyQuiet, "q", false, "suppress output of successful put, get and delete")
	flags.Duration(keyTimeout, clientcli.DefaultTimeout, "HTTP request timeout (env: SFS_TIMEOUT)")
	flags.String(keyLogLevel, "", "log level: debug, info, warn, error (env: SFS_LOG_LEVEL)")
	flags.String(keyEnv, "dev", "environment: dev or prod; prod logs JSON (env: SFS_ENV)")

	for _, key := range []string{keyOutput, keyQuiet, keyTimeout, keyLogLevel, keyEnv} {
		_ = v.BindPFlag(key, flags.Lookup(key))
	}

	v.SetEnvPrefix("SFS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}
