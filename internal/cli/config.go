package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/routegen/internal/gen"
)

// DefaultConfigName is the config file looked up in the working directory
// when --config is not given.
const DefaultConfigName = "routegen"

// EnvPrefix prefixes environment overrides, e.g. ROUTEGEN_SDK_PACKAGE.
const EnvPrefix = "ROUTEGEN"

// Config holds generation settings. Values come from, in increasing
// precedence: the config file, ROUTEGEN_* environment variables and
// explicitly set flags.
type Config struct {
	Out          string   `mapstructure:"out"`
	SDKPackage   string   `mapstructure:"sdk_package"`
	Header       []string `mapstructure:"header"`
	StrictUnions bool     `mapstructure:"strict_unions"`
	Ledger       string   `mapstructure:"ledger"`
}

// configFlags maps config keys to the flag names that override them.
var configFlags = map[string]string{
	"out":           "out",
	"sdk_package":   "sdk-package",
	"header":        "header",
	"strict_unions": "strict-unions",
	"ledger":        "ledger",
}

// LoadConfig reads the config file at path, or ./routegen.yaml when path is
// empty and that file exists, and overlays flags from fs. Flags absent
// from fs are ignored.
func LoadConfig(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if fs != nil {
		for key, name := range configFlags {
			flag := fs.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// GenOptions returns the emitter options the config selects.
func (c *Config) GenOptions() gen.Options {
	return gen.Options{
		SDKPackage:   c.SDKPackage,
		Header:       c.Header,
		StrictUnions: c.StrictUnions,
	}.WithDefaults()
}
