package xcidr

import "errors"

var (
	// ErrInvalidAddress 表示无效的 IP 地址（文本不可解析或整数越界）。
	ErrInvalidAddress = errors.New("xcidr: invalid IP address")

	// ErrInvalidCIDR 表示格式错误的 CIDR 字符串。
	ErrInvalidCIDR = errors.New("xcidr: invalid CIDR syntax")

	// ErrInvalidPrefixLength 表示前缀长度超出地址族的合法范围。
	ErrInvalidPrefixLength = errors.New("xcidr: invalid prefix length")

	// ErrHostBitsSet 表示前缀的主机位非零且未开启规范化。
	ErrHostBitsSet = errors.New("xcidr: host bits set in prefix")

	// ErrInvalidRange 表示无效的 IP 范围格式。
	ErrInvalidRange = errors.New("xcidr: invalid IP range")
)
