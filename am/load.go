package am

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"github.com/teranos/folio/errors"
)

// ConfigFileName is the file searched for upward from the working directory.
const ConfigFileName = "folio.toml"

// EnvPrefix prefixes environment overrides: FOLIO_CAMERA_MAX_SCALE=6.
const EnvPrefix = "FOLIO"

// ConfigSource names where a setting came from.
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceUser        ConfigSource = "user"    // ~/.folio/folio.toml
	SourceProject     ConfigSource = "project" // folio.toml found upward from cwd
	SourceFile        ConfigSource = "file"    // explicit --config path
	SourceEnvironment ConfigSource = "environment"
)

// SettingInfo is one effective setting and its origin.
type SettingInfo struct {
	Key    string       `json:"key"`
	Value  interface{}  `json:"value"`
	Source ConfigSource `json:"source"`
	Path   string       `json:"path,omitempty"`
}

var (
	mu            sync.Mutex
	globalConfig  *Config
	viperInstance *viper.Viper
	sources       map[string]SettingInfo
	explicitFile  string
)

// Load reads the configuration once and caches it until Reset.
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()
	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	globalConfig = cfg
	return globalConfig, nil
}

// LoadWithViper decodes configuration from a prepared viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// LoadFromFile loads defaults overlaid with one TOML file. Environment
// variables are not consulted.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}
	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", configPath)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", configPath)
	}
	return cfg, nil
}

// UseFile makes the next Load read path on top of the user and project files.
func UseFile(path string) {
	mu.Lock()
	defer mu.Unlock()
	explicitFile = path
	globalConfig = nil
	viperInstance = nil
}

// Reset clears the cached configuration (useful for testing and reloads).
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	globalConfig = nil
	viperInstance = nil
	sources = nil
}

// Files returns the config files merged by the last Load, lowest precedence first.
func Files() []string {
	mu.Lock()
	defer mu.Unlock()
	return configPaths()
}

// Settings lists every effective setting with its source, sorted by key.
func Settings() ([]SettingInfo, error) {
	if _, err := Load(); err != nil {
		return nil, err
	}
	mu.Lock()
	defer mu.Unlock()
	settings := make([]SettingInfo, 0, len(sources))
	for key, info := range sources {
		info.Key = key
		info.Value = viperInstance.Get(key)
		if env := envName(key); os.Getenv(env) != "" {
			info.Source = SourceEnvironment
			info.Path = env
		}
		settings = append(settings, info)
	}
	sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return settings, nil
}

func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	sources = make(map[string]SettingInfo)
	for _, key := range v.AllKeys() {
		sources[key] = SettingInfo{Source: SourceDefault}
	}
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// findProjectConfig walks up from the working directory looking for folio.toml.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// UserConfigPath is ~/.folio/folio.toml.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".folio", ConfigFileName)
}

type sourcedPath struct {
	path   string
	source ConfigSource
}

func sourcedPaths() []sourcedPath {
	var out []sourcedPath
	if p := UserConfigPath(); p != "" {
		out = append(out, sourcedPath{p, SourceUser})
	}
	if p := findProjectConfig(); p != "" {
		out = append(out, sourcedPath{p, SourceProject})
	}
	if explicitFile != "" {
		out = append(out, sourcedPath{explicitFile, SourceFile})
	}
	return out
}

func configPaths() []string {
	var out []string
	for _, sp := range sourcedPaths() {
		if _, err := os.Stat(sp.path); err == nil {
			out = append(out, sp.path)
		}
	}
	return out
}

// mergeConfigFiles merges files into viper's config layer in precedence order
// user < project < explicit. Environment variables still win over all files.
func mergeConfigFiles(v *viper.Viper) {
	for _, sp := range sourcedPaths() {
		if _, err := os.Stat(sp.path); err != nil {
			continue
		}
		tmp := viper.New()
		tmp.SetConfigFile(sp.path)
		tmp.SetConfigType("toml")
		if err := tmp.ReadInConfig(); err != nil {
			continue
		}
		if err := v.MergeConfigMap(tmp.AllSettings()); err != nil {
			continue
		}
		for _, key := range tmp.AllKeys() {
			sources[key] = SettingInfo{Source: sp.source, Path: sp.path}
		}
	}
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	mu.Lock()
	defer mu.Unlock()
	return initViper().Get(key)
}

// GetString returns a configuration value as string using dot notation
func GetString(key string) string {
	mu.Lock()
	defer mu.Unlock()
	return initViper().GetString(key)
}
