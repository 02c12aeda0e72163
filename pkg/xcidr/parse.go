package xcidr

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// ParseAddr 解析 IPv4/IPv6 地址字符串。
// 输入会自动去除首尾空白字符；IPv4-mapped IPv6 地址归一化为纯 IPv4。
//
// 设计决策: 拒绝包含 IPv6 zone ID 的输入（如 fe80::1%eth0）。
// 整数化比较会静默丢弃 zone 信息，导致集合匹配误判
// （ACL/白名单/黑名单场景属于高风险正确性问题）。
// 在 IP 地址字符串中 '%' 仅用作 zone 分隔符，因此检查 '%' 即可。
func ParseAddr(s string) (netip.Addr, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "%") {
		return netip.Addr{}, fmt.Errorf("%w: IPv6 zone ID is not supported: %s", ErrInvalidAddress, s)
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return addr.Unmap(), nil
}

// ParsePrefix 解析并校验 CIDR 字符串，返回主机位全零的网络前缀。
//
// 接受两种形式：
//   - "addr"：按地址族补全为主机长度前缀（IPv4 /32、IPv6 /128）
//   - "addr/len"：len 必须在 [0, 32]（IPv4）或 [0, 128]（IPv6）内
//
// 主机位非零时的行为由 normalize 控制：
//   - normalize=false: 返回 [ErrHostBitsSet]（如 "10.0.0.10/8"）
//   - normalize=true: 清零主机位后返回（"10.0.0.10/8" → 10.0.0.0/8）
//
// IPv4-mapped IPv6 前缀在 bits ≥ 96 时转换为纯 IPv4 前缀（bits-96），
// bits < 96 时拒绝：这样的前缀跨越了纯 IPv6 空间，无法归入单一地址族。
func ParsePrefix(s string, normalize bool) (netip.Prefix, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Prefix{}, fmt.Errorf("%w: empty input", ErrInvalidCIDR)
	}
	if strings.Contains(s, "%") {
		return netip.Prefix{}, fmt.Errorf("%w: IPv6 zone ID is not supported: %s", ErrInvalidAddress, s)
	}

	idx := strings.Index(s, "/")
	if idx < 0 {
		// 无 "/len" 后缀：补全为主机长度前缀，主机位必然合法。
		addr, err := ParseAddr(s)
		if err != nil {
			return netip.Prefix{}, err
		}
		return netip.PrefixFrom(addr, addr.BitLen()), nil
	}

	addrPart := strings.TrimSpace(s[:idx])
	lenPart := strings.TrimSpace(s[idx+1:])

	addr, err := netip.ParseAddr(addrPart)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	// strconv.ParseUint 不接受 '+' 前缀和空白，天然满足严格解析要求。
	n, err := strconv.ParseUint(lenPart, 10, 16)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return netip.Prefix{}, fmt.Errorf("%w: %s", ErrInvalidPrefixLength, lenPart)
		}
		return netip.Prefix{}, fmt.Errorf("%w: bad prefix length %q", ErrInvalidCIDR, lenPart)
	}
	bits := int(n)

	// IPv4-mapped IPv6 归一化为纯 IPv4，长度换算到 32 位域。
	if addr.Is4In6() {
		if bits < 96 {
			return netip.Prefix{}, fmt.Errorf("%w: IPv4-mapped prefix length %d below 96", ErrInvalidPrefixLength, bits)
		}
		addr = addr.Unmap()
		bits -= 96
	}

	if bits > addr.BitLen() {
		return netip.Prefix{}, fmt.Errorf("%w: /%d exceeds %s width", ErrInvalidPrefixLength, bits, AddrFamily(addr))
	}

	p := netip.PrefixFrom(addr, bits)
	masked := p.Masked()
	if masked.Addr() != addr {
		if !normalize {
			return netip.Prefix{}, fmt.Errorf("%w: %s", ErrHostBitsSet, s)
		}
		return masked, nil
	}
	return p, nil
}

// FormatPrefix 返回前缀的规范文本形式 "base/len"。
// base 使用最短压缩形式（IPv6 小写十六进制、最长零段折叠为 "::"）。
// 无效前缀返回空字符串。
func FormatPrefix(p netip.Prefix) string {
	if !p.IsValid() {
		return ""
	}
	return p.String()
}
