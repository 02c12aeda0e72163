package xcidr

import "net/netip"

// FormatAddr 返回地址的规范文本形式。
// IPv4 为点分十进制；IPv6 为 RFC 5952 最短压缩形式
// （最长零段折叠为 "::"，小写十六进制，段内无前导零）。
// IPv4-mapped IPv6 输出为纯 IPv4。无效地址返回空字符串。
func FormatAddr(addr netip.Addr) string {
	if !addr.IsValid() {
		return ""
	}
	return addr.Unmap().String()
}

// ExpandAddr 返回地址的全长展开形式。
// IPv4: 每段 3 位十进制，带前导零（如 "192.168.001.001"）。
// IPv6: 8 个 4 位十六进制段，冒号分隔（如 "2001:0db8:0000:...:0001"）。
// 无效地址返回空字符串。
func ExpandAddr(addr netip.Addr) string {
	if !addr.IsValid() {
		return ""
	}
	if addr.Is4() || addr.Is4In6() {
		b := addr.Unmap().As4()
		// 手写格式化避免 fmt.Sprintf 的反射开销和额外分配。
		var buf [15]byte // "xxx.xxx.xxx.xxx"
		for i := 0; i < 4; i++ {
			off := i * 4
			if i > 0 {
				buf[off-1] = '.'
			}
			buf[off+0] = '0' + b[i]/100
			buf[off+1] = '0' + (b[i]/10)%10
			buf[off+2] = '0' + b[i]%10
		}
		return string(buf[:])
	}
	b := addr.As16()
	const hexdigits = "0123456789abcdef"
	var buf [39]byte // 8 段 * 4 字符 + 7 个冒号
	for i := 0; i < 8; i++ {
		off := i * 5
		if i > 0 {
			buf[off-1] = ':'
		}
		hi, lo := b[i*2], b[i*2+1]
		buf[off+0] = hexdigits[hi>>4]
		buf[off+1] = hexdigits[hi&0xf]
		buf[off+2] = hexdigits[lo>>4]
		buf[off+3] = hexdigits[lo&0xf]
	}
	return string(buf[:])
}
