package xiplist

import "log/slog"

// Option 定义 [List] 的可选配置函数类型。
type Option func(*options)

// options 内部配置。
type options struct {
	normalize bool
	strict    bool
	logger    *slog.Logger
	cacheSize int
}

// defaultOptions 返回默认配置：不规范化、不抛错、丢弃日志、无查询缓存。
func defaultOptions() options {
	return options{
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithNormalize 开启无效 CIDR 规范化：主机位非零的前缀被改写为
// 同长度的网络前缀（如 "10.10.10.10/8" → 10.0.0.0/8），而不是丢弃。
func WithNormalize() Option {
	return func(o *options) {
		o.normalize = true
	}
}

// WithStrictErrors 开启严格错误模式：解析/校验失败以错误返回并中止
// 当前操作（批量操作在首个失败项处停止，不做部分应用；查询对无效
// 输入返回错误而非未命中；移除不存在的前缀返回 [ErrPrefixNotFound]）。
func WithStrictErrors() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithLogger 设置诊断日志器，输出 Debug 级别的内部步骤描述
// （规范化改写、丢弃原因、索引重建统计）。对数据结果无影响。
// nil 会被忽略，默认丢弃所有日志。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLookupCache 为每个索引快照附加容量为 size 的 LRU 查询结果缓存。
// 缓存随快照发布、随快照废弃，命中与未命中结果都会被缓存。
// size <= 0 表示禁用（默认）。
func WithLookupCache(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}
