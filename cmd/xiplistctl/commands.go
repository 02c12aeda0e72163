package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/omeyang/xiplist/pkg/xiplist"
)

// checkConcurrency check 命令的并发查询上限。
const checkConcurrency = 8

// exitError 表示需要非零退出码但已完成输出的场景。
// 命令内部已完成所有输出，main 只需设置退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "" }

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "xiplistctl",
		Usage:   "xiplist 前缀列表命令行工具",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "前缀列表文件（每行一个 IP/CIDR）",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML 配置文件",
			},
			&cli.BoolFlag{
				Name:  "normalize",
				Usage: "规范化主机位非零的 CIDR",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "严格错误模式",
			},
			&cli.IntFlag{
				Name:  "cache",
				Usage: "查询结果缓存容量（0 为禁用）",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "输出 Debug 级诊断日志",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "日志写入文件（带轮转），默认 stderr",
			},
		},
		Commands: []*cli.Command{
			createCheckCommand(),
			createListCommand(),
			createStatsCommand(),
		},
		DefaultCommand: "help",
		Authors: []any{
			"XKit Team",
		},
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，
		// 由 run() 统一处理退出码映射，确保与文档退出码契约一致。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

// createCheckCommand 创建 check 子命令。
func createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "查询地址是否被列表覆盖",
		ArgsUsage: "<addr...>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			addrs := cmd.Args().Slice()
			if len(addrs) == 0 {
				return fmt.Errorf("check: at least one address is required")
			}
			l, err := buildList(cmd)
			if err != nil {
				return err
			}

			type checkResult struct {
				cidr string
				ok   bool
			}
			results := make([]checkResult, len(addrs))
			g, _ := errgroup.WithContext(ctx)
			g.SetLimit(checkConcurrency)
			for i, addr := range addrs {
				g.Go(func() error {
					cidr, ok, cerr := l.Check(addr)
					if cerr != nil {
						return cerr
					}
					results[i] = checkResult{cidr: cidr, ok: ok}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			missed := false
			for i, addr := range addrs {
				if results[i].ok {
					fmt.Printf("%s  %s\n", addr, results[i].cidr)
				} else {
					fmt.Printf("%s  not found\n", addr)
					missed = true
				}
			}
			if missed {
				return &exitError{code: 1}
			}
			return nil
		},
	}
}

// createListCommand 创建 list 子命令。
func createListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "打印规范化后的前缀列表",
		Action: func(_ context.Context, cmd *cli.Command) error {
			l, err := buildList(cmd)
			if err != nil {
				return err
			}
			for _, p := range l.Prefixes() {
				fmt.Println(p)
			}
			return nil
		},
	}
}

// createStatsCommand 创建 stats 子命令。
func createStatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "打印索引统计与丢弃记录",
		Action: func(_ context.Context, cmd *cli.Command) error {
			l, err := buildList(cmd)
			if err != nil {
				return err
			}
			st := l.Stats()
			fmt.Printf("ipv4 prefixes:  %d (%d chunks)\n", st.IPv4, st.IPv4Chunks)
			fmt.Printf("ipv6 prefixes:  %d (%d chunks)\n", st.IPv6, st.IPv6Chunks)
			fmt.Printf("fingerprint:    %016x\n", st.Fingerprint)
			disc := l.Discarded()
			fmt.Printf("discarded:      %d\n", len(disc))
			for _, d := range disc {
				fmt.Printf("  %-10s %s\n", d.Cause, d.Input)
			}
			return nil
		},
	}
}

// buildList 按配置文件与命令行标志构建前缀列表。
// 标志显式设置时覆盖配置文件的同名配置。
func buildList(cmd *cli.Command) (*xiplist.List, error) {
	cfg := defaultFileConfig()
	if path := cmd.String("config"); path != "" {
		loaded, err := loadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cmd.IsSet("list") {
		cfg.ListFile = cmd.String("list")
	}
	if cmd.IsSet("normalize") {
		cfg.Normalize = cmd.Bool("normalize")
	}
	if cmd.IsSet("strict") {
		cfg.Strict = cmd.Bool("strict")
	}
	if cmd.IsSet("cache") {
		cfg.CacheSize = cmd.Int("cache")
	}
	if cfg.ListFile == "" {
		return nil, fmt.Errorf("no prefix list file: use --list or list_file in config")
	}

	entries, err := readListFile(cfg.ListFile)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd)
	opts := []xiplist.Option{xiplist.WithLogger(logger)}
	if cfg.Normalize {
		opts = append(opts, xiplist.WithNormalize())
	}
	if cfg.Strict {
		opts = append(opts, xiplist.WithStrictErrors())
	}
	if cfg.CacheSize > 0 {
		opts = append(opts, xiplist.WithLookupCache(cfg.CacheSize))
	}

	l, err := xiplist.New(entries, opts...)
	if err != nil {
		return nil, fmt.Errorf("build list from %s: %w", cfg.ListFile, err)
	}
	for _, d := range l.Discarded() {
		logger.Warn("discarded input",
			slog.String("input", d.Input), slog.String("cause", d.Cause.String()))
	}
	return l, nil
}

// readListFile 读取前缀列表文件：每行一个条目，空行与 # 注释跳过。
func readListFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open list file: %w", err)
	}
	defer f.Close()

	var entries []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read list file: %w", err)
	}
	return entries, nil
}

// loggerOnce 确保日志器只初始化一次（多个子命令路径共享）。
var (
	loggerOnce sync.Once
	logger     *slog.Logger
)

// newLogger 按全局标志构建 slog 日志器。
// --log-file 指定时写入轮转文件，否则写 stderr。
func newLogger(cmd *cli.Command) *slog.Logger {
	loggerOnce.Do(func() {
		var w io.Writer = os.Stderr
		if path := cmd.String("log-file"); path != "" {
			w = &lumberjack.Logger{
				Filename:   path,
				MaxSize:    50, // MB
				MaxBackups: 3,
				MaxAge:     28, // 天
			}
		}
		level := slog.LevelInfo
		if cmd.Bool("verbose") {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	})
	return logger
}
