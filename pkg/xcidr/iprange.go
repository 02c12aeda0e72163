package xcidr

import (
	"fmt"
	"net/netip"
	"strings"

	"go4.org/netipx"
)

// ParseRange 从字符串解析 IP 范围。支持 4 种格式：
//   - 单 IP: "192.168.1.1"
//   - CIDR: "192.168.1.0/24"
//   - 掩码: "192.168.1.0/255.255.255.0"（仅 IPv4）
//   - 范围: "192.168.1.1-192.168.1.100"
//
// 输入会自动去除首尾空白字符。CIDR 形式总是按网络地址掩码处理
// （范围表达的是覆盖区间，不适用主机位严格校验）。
// 与 [ParseAddr] 一致，拒绝 IPv6 zone ID。
func ParseRange(s string) (netipx.IPRange, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "%") {
		return netipx.IPRange{}, fmt.Errorf("%w: IPv6 zone ID is not supported: %s", ErrInvalidRange, s)
	}

	// 格式 4: 显式范围 "start-end"
	if idx := strings.Index(s, "-"); idx >= 0 {
		start, startErr := ParseAddr(s[:idx])
		end, endErr := ParseAddr(s[idx+1:])
		if startErr == nil && endErr == nil {
			r := netipx.IPRangeFrom(start, end)
			if !r.IsValid() {
				return netipx.IPRange{}, fmt.Errorf("%w: %s", ErrInvalidRange, s)
			}
			return r, nil
		}
		if startErr == nil {
			return netipx.IPRange{}, fmt.Errorf("%w: invalid range end: %s", ErrInvalidRange, s[idx+1:])
		}
		if endErr == nil {
			return netipx.IPRange{}, fmt.Errorf("%w: invalid range start: %s", ErrInvalidRange, s[:idx])
		}
		// 两侧都不可解析 → 可能不是范围格式，回退到下面的分支。
	}

	// 格式 2/3: CIDR 或掩码 "addr/len" 或 "addr/mask"
	if idx := strings.Index(s, "/"); idx >= 0 {
		maskStr := strings.TrimSpace(s[idx+1:])
		if strings.Contains(maskStr, ".") {
			return parseRangeWithMask(strings.TrimSpace(s[:idx]), maskStr)
		}
		p, err := ParsePrefix(s, true)
		if err != nil {
			return netipx.IPRange{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
		}
		return netipx.RangeOfPrefix(p), nil
	}

	// 格式 1: 单 IP
	addr, err := ParseAddr(s)
	if err != nil {
		return netipx.IPRange{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return netipx.IPRangeFrom(addr, addr), nil
}

// parseRangeWithMask 解析掩码格式的 IP 范围（仅 IPv4），包含掩码连续性校验。
// 非连续掩码（如 "255.0.255.0"）会返回 ErrInvalidRange。
func parseRangeWithMask(addrStr, maskStr string) (netipx.IPRange, error) {
	addr, err := ParseAddr(addrStr)
	if err != nil {
		return netipx.IPRange{}, fmt.Errorf("%w: invalid address: %v", ErrInvalidRange, err)
	}
	mask, err := ParseAddr(maskStr)
	if err != nil {
		return netipx.IPRange{}, fmt.Errorf("%w: invalid mask: %v", ErrInvalidRange, err)
	}
	addrU, ok1 := AddrToUint32(addr)
	maskU, ok2 := AddrToUint32(mask)
	if !ok1 || !ok2 {
		return netipx.IPRange{}, fmt.Errorf("%w: mask notation only supports IPv4", ErrInvalidRange)
	}

	// 合法掩码为前缀全 1 后缀全 0。
	inverted := ^maskU
	if inverted&(inverted+1) != 0 {
		return netipx.IPRange{}, fmt.Errorf("%w: non-contiguous mask: %s", ErrInvalidRange, maskStr)
	}

	start := addrU & maskU
	end := start | inverted
	return netipx.IPRangeFrom(AddrFromUint32(start), AddrFromUint32(end)), nil
}

// RangeToPrefixes 将 IP 范围分解为最少数量的 CIDR 前缀。
// 任何 IP 范围都可以表示为若干 CIDR 块的并集。
// 无效范围返回 nil。
func RangeToPrefixes(r netipx.IPRange) []netip.Prefix {
	if !r.IsValid() {
		return nil
	}
	return r.Prefixes()
}
