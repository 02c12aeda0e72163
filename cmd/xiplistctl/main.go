// xiplistctl 是 xiplist 前缀列表的命令行工具。
//
// 用法:
//
//	xiplistctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-l, --list      前缀列表文件（每行一个 IP/CIDR，# 开头为注释）
//	-c, --config    YAML 配置文件
//	    --normalize 规范化主机位非零的 CIDR（默认丢弃）
//	    --strict    严格错误模式（首个错误即中止）
//	    --cache     查询结果缓存容量（0 为禁用）
//	-v, --verbose   输出 Debug 级诊断日志
//	    --log-file  日志写入文件（带轮转），默认 stderr
//
// 命令:
//
//	check <addr...> 查询地址是否被列表覆盖
//	list            打印规范化后的前缀列表
//	stats           打印索引统计与丢弃记录
//
// 配置文件键（标志优先于配置文件）:
//
//	list_file, normalize, strict, cache_size
//
// 退出码:
//
//	0: 成功（check 命令: 所有地址均被覆盖）
//	1: check 命令存在未被覆盖的地址
//	2: 参数或输入错误（文件不可读、无效配置等）
//
// 示例:
//
//	xiplistctl -l allow.txt check 10.0.0.42 2001:db8::1
//	xiplistctl -l allow.txt --normalize list
//	xiplistctl -c xiplist.yaml stats
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	app := createApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		var xe *exitError
		if errors.As(err, &xe) {
			return xe.code
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return 0
}
