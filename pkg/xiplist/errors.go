package xiplist

import "errors"

var (
	// ErrPrefixNotFound 表示严格模式下要移除的前缀不在集合中。
	ErrPrefixNotFound = errors.New("xiplist: prefix not found in list")
)
