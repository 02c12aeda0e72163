// Package xcidr 提供 CIDR 解析、校验与规范化的基础工具。
//
// xcidr 基于 Go 标准库 [net/netip] 和社区库 [go4.org/netipx] 构建，
// 是 pkg/xiplist 的数值基础层：地址编解码、前缀校验/规范化、范围分解。
//
// # 核心功能
//
//   - family.go: 地址族类型 [Family] 及 [AddrFamily] 判断函数
//   - convert.go: uint32/big.Int 与 [netip.Addr] 互转（两个独立的整数域）
//   - parse.go: [ParseAddr] 地址解析、[ParsePrefix] CIDR 校验与规范化
//   - format.go: [FormatAddr] 最短压缩形式、[ExpandAddr] 全长展开形式
//   - iprange.go: [ParseRange] 多格式范围解析、[RangeToPrefixes] CIDR 分解
//
// # 两个整数域
//
// IPv4 与 IPv6 是两个独立的定宽整数域（32 位与 128 位），xcidr 不会把
// 它们合并到一个整数空间：uint32 转换仅对 IPv4 有效，big.Int 转换必须
// 显式指定目标 [Family] 并做宽度校验。这避免了跨族比较类错误。
//
// # 前缀校验与规范化
//
// [ParsePrefix] 接受 "addr" 或 "addr/len" 两种形式。缺省长度按族补全
// （IPv4 为 /32，IPv6 为 /128）。主机位非零的前缀：
//
//	ParsePrefix("10.10.10.10/8", false)  // ErrHostBitsSet
//	ParsePrefix("10.10.10.10/8", true)   // 10.0.0.0/8
//
// # IPv6 Zone ID 处理
//
// 所有解析入口拒绝包含 IPv6 zone ID 的地址（如 "fe80::1%eth0"）。
// 原因：整数化比较会静默丢弃 zone 信息，导致后续集合匹配误判。
//
// # IPv4-mapped IPv6 地址处理
//
// [ParseAddr] 将 IPv4-mapped IPv6 统一归一化为纯 IPv4。
// [ParsePrefix] 对 bits ≥ 96 的 mapped 前缀转换为纯 IPv4 前缀，
// bits < 96 时拒绝（无法用单一地址族表达）。
//
// # 错误处理
//
// 预定义错误变量支持 errors.Is 判断：
//
//	_, err := xcidr.ParsePrefix("10.0.0.0/99", false)
//	if errors.Is(err, xcidr.ErrInvalidPrefixLength) {
//	    // 前缀长度越界
//	}
package xcidr
