// Package config は環境変数と設定ファイルから設定を読み込みます
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"passwatch/internal/domain/model"
	"passwatch/internal/infrastructure/filesystem"
)

// StoreDirEnv はストアのルートを上書きする環境変数です
const StoreDirEnv = "PASSWORD_STORE_DIR"

// EnvPrefix はその他の設定項目の環境変数プレフィックスです
const EnvPrefix = "PASSWATCH"

// Config はアプリケーション設定です
type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Watch  WatchConfig  `mapstructure:"watch"`
	Log    LogConfig    `mapstructure:"log"`
	Output OutputConfig `mapstructure:"output"`
}

// StoreConfig はストアの設定です。Dir が空ならホーム配下の既定値を使います
type StoreConfig struct {
	Dir string `mapstructure:"dir"`
}

// WatchConfig はライブ監視の設定です
type WatchConfig struct {
	Debounce     time.Duration `mapstructure:"debounce"`
	SuffixFilter bool          `mapstructure:"suffix_filter"`
	IgnoreDirs   []string      `mapstructure:"ignore_dirs"`
}

// LogConfig はログの設定です
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig は消費者側の出力設定です
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// Load は設定を読み込みます。path が空なら環境変数と既定値のみを使います
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("store.dir", "")
	v.SetDefault("watch.debounce", filesystem.DefaultDebounce)
	v.SetDefault("watch.suffix_filter", false)
	v.SetDefault("watch.ignore_dirs", []string{".git"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("output.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("store.dir", StoreDirEnv); err != nil {
		return nil, fmt.Errorf("環境変数の登録に失敗しました: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, model.NewError(model.CodeConfiguration, "read config", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, model.NewError(model.CodeConfiguration, "decode config", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate は設定値の整合性を確認します
func (c *Config) Validate() error {
	if c.Watch.Debounce <= 0 {
		return model.NewError(model.CodeConfiguration, "validate config", "",
			fmt.Errorf("watch.debounce は正の値である必要があります: %s", c.Watch.Debounce))
	}
	switch strings.ToLower(c.Output.Format) {
	case "text", "json":
	default:
		return model.NewError(model.CodeConfiguration, "validate config", "",
			fmt.Errorf("未知の出力形式です: %q", c.Output.Format))
	}
	return nil
}
