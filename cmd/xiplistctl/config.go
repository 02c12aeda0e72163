package main

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// fileConfig 是 YAML 配置文件的结构。
type fileConfig struct {
	// ListFile 前缀列表文件路径。
	ListFile string `koanf:"list_file"`
	// Normalize 规范化主机位非零的 CIDR。
	Normalize bool `koanf:"normalize"`
	// Strict 严格错误模式。
	Strict bool `koanf:"strict"`
	// CacheSize 查询结果缓存容量，0 为禁用。
	CacheSize int `koanf:"cache_size"`
}

// defaultFileConfig 返回默认配置。
func defaultFileConfig() *fileConfig {
	return &fileConfig{}
}

// loadConfig 从 YAML 文件加载配置。
func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg := defaultFileConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	return cfg, nil
}
