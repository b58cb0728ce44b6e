// Package config assembles the immutable provision record from defaults,
// an optional config file, environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/meadow-cloud/sitectl/internal/models"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "SITECTL"
	ConfigName = "sitectl"

	DefaultHostname        = "websrv"
	DefaultMemoryMB        = 512
	DefaultDiskGB          = 8
	DefaultCores           = 1
	DefaultStorage         = "local-lvm"
	DefaultTemplateStorage = "local"
	DefaultBridge          = "vmbr0"
	DefaultIP              = models.NetworkModeDHCP
	DefaultRepo            = "https://github.com/meadow-cloud/demo-site.git"
	DefaultProbeHost       = "deb.debian.org"
)

// Load merges configuration sources with flags taking precedence over
// environment variables over the config file over defaults.
func Load(flags *pflag.FlagSet) (models.Provision, error) {
	v := viper.New()

	for key, value := range map[string]any{
		"vmid":             0,
		"hostname":         DefaultHostname,
		"memory":           DefaultMemoryMB,
		"disk":             DefaultDiskGB,
		"cores":            DefaultCores,
		"storage":          DefaultStorage,
		"template-storage": DefaultTemplateStorage,
		"bridge":           DefaultBridge,
		"ip":               DefaultIP,
		"gateway":          "",
		"repo":             DefaultRepo,
		"branch":           "",
		"probe-host":       DefaultProbeHost,
	} {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return models.Provision{}, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/sitectl")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return models.Provision{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := models.Provision{}

	if err := v.Unmarshal(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
		))); err != nil {
		return models.Provision{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}
