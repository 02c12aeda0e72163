package xcidr

import (
	"encoding/binary"
	"math/big"
	"net/netip"
)

// AddrFromUint32 从 IPv4 的 uint32 表示创建 [netip.Addr]。
// 使用网络字节序（大端）。
func AddrFromUint32(v uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b)
}

// AddrToUint32 将 IPv4 地址转换为 uint32（网络字节序）。
// 非 IPv4 地址返回 (0, false)。
func AddrToUint32(addr netip.Addr) (uint32, bool) {
	if !addr.Is4() && !addr.Is4In6() {
		return 0, false
	}
	b := addr.Unmap().As4()
	return binary.BigEndian.Uint32(b[:]), true
}

// AddrFromBigInt 从 [*big.Int] 创建 [netip.Addr]。
// 需显式指定目标地址族，整数超出该族的 [0, 2^bits-1] 范围时
// 返回 ErrInvalidAddress。IPv4 与 IPv6 是两个独立的整数域，
// 同一个整数在不同地址族下对应不同的地址。
func AddrFromBigInt(v *big.Int, fam Family) (netip.Addr, error) {
	if v == nil {
		return netip.Addr{}, ErrInvalidAddress
	}
	switch fam {
	case F4:
		if v.Sign() < 0 || v.BitLen() > 32 {
			return netip.Addr{}, ErrInvalidAddress
		}
		// 按字节构建，与 F6 路径保持一致，避免 uint64→uint32 类型收窄。
		var b [4]byte
		vBytes := v.Bytes()
		copy(b[4-len(vBytes):], vBytes)
		return netip.AddrFrom4(b), nil
	case F6:
		if v.Sign() < 0 || v.BitLen() > 128 {
			return netip.Addr{}, ErrInvalidAddress
		}
		var b [16]byte
		vBytes := v.Bytes()
		copy(b[16-len(vBytes):], vBytes)
		return netip.AddrFrom16(b), nil
	default:
		return netip.Addr{}, ErrInvalidAddress
	}
}

// AddrToBigInt 将地址转换为 [*big.Int]。
// IPv4（含 IPv4-mapped IPv6）产出 32 位域的值，IPv6 产出 128 位域的值。
// 无效地址返回零值 big.Int。
func AddrToBigInt(addr netip.Addr) *big.Int {
	if !addr.IsValid() {
		return new(big.Int)
	}
	if addr.Is4() || addr.Is4In6() {
		v, _ := AddrToUint32(addr)
		return new(big.Int).SetUint64(uint64(v))
	}
	b := addr.As16()
	return new(big.Int).SetBytes(b[:])
}
