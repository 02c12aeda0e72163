package xcidr

import "net/netip"

// Family 表示 IP 地址族。
type Family uint8

const (
	// F0 表示无效或未知的地址族。
	F0 Family = 0
	// F4 表示 IPv4。
	F4 Family = 4
	// F6 表示 IPv6。
	F6 Family = 6
)

// String 返回地址族的字符串表示。
func (f Family) String() string {
	switch f {
	case F4:
		return "IPv4"
	case F6:
		return "IPv6"
	default:
		return "unknown"
	}
}

// Bits 返回地址族的位宽（IPv4 为 32，IPv6 为 128）。
// 无效地址族返回 0。
func (f Family) Bits() int {
	switch f {
	case F4:
		return 32
	case F6:
		return 128
	default:
		return 0
	}
}

// AddrFamily 返回 addr 的地址族（F4 或 F6）。
// IPv4-mapped IPv6 地址视为 F4。
// 无效地址返回 F0。
func AddrFamily(addr netip.Addr) Family {
	if addr.Is4() || addr.Is4In6() {
		return F4
	}
	if addr.IsValid() {
		return F6
	}
	return F0
}

// PrefixFamily 返回前缀的地址族。
// 无效前缀返回 F0。
func PrefixFamily(p netip.Prefix) Family {
	if !p.IsValid() {
		return F0
	}
	return AddrFamily(p.Addr())
}
