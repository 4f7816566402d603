package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables before they are mapped
// onto config paths.
const EnvPrefix = "DESK_"

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Storage StorageConfig `koanf:"storage"`
	Link    LinkConfig    `koanf:"link"`
	Log     LogConfig     `koanf:"log"`
}

type ServerConfig struct {
	Addr string `koanf:"addr" validate:"required"`
}

type StorageConfig struct {
	Driver      string `koanf:"driver"       validate:"oneof=memory file redis sqlite"`
	Path        string `koanf:"path"         validate:"required_if=Driver file,required_if=Driver sqlite"`
	RedisAddr   string `koanf:"redis_addr"   validate:"required_if=Driver redis"`
	RedisPrefix string `koanf:"redis_prefix"`
}

type LinkConfig struct {
	BaseURL       string `koanf:"base_url"        validate:"omitempty,url"`
	ReportBaseURL string `koanf:"report_base_url" validate:"required,url"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Storage: StorageConfig{
			Driver:      "file",
			Path:        "data/recipes.json",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "recipe-desk:",
		},
		Link: LinkConfig{
			ReportBaseURL: "https://gchq.github.io/CyberChef/",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, then environment variables,
// then overrides (flag values keyed by config path, e.g. "server.addr").
func Load(environ []string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	opt := env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnv,
	}
	if environ != nil {
		opt.EnvironFunc = func() []string { return environ }
	}
	if err := k.Load(env.Provider(".", opt), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for path, v := range overrides {
		if err := k.Set(path, v); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", path, err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

// transformEnv maps DESK_STORAGE_REDIS_ADDR to storage.redis_addr. The first
// segment is the section; the rest is the field name.
func transformEnv(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	parts := strings.FieldsFunc(key, func(r rune) bool { return r == '_' })
	if len(parts) < 2 {
		return "", nil
	}
	return parts[0] + "." + strings.Join(parts[1:], "_"), value
}
