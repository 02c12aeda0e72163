package xiplist

import (
	"net/netip"
	"slices"

	"go4.org/netipx"
)

// entry 是规范集合中的一个前缀条目。
// start/end 是前缀覆盖区间的闭区间端点，text 是预先计算的规范 CIDR 文本。
type entry struct {
	prefix netip.Prefix
	start  netip.Addr
	end    netip.Addr
	text   string
}

// newEntry 从已规范化（主机位全零）的前缀构建条目。
func newEntry(p netip.Prefix) entry {
	r := netipx.RangeOfPrefix(p)
	return entry{
		prefix: p,
		start:  r.From(),
		end:    r.To(),
		text:   p.String(),
	}
}

// cmpEntry 按 (start 升序, 前缀长度升序) 排序。
// 同一起点时更宽的网络（更小的长度、更大的 end）在前，
// 保证扫描时包含者先于被包含者被处理。
func cmpEntry(a, b entry) int {
	if c := a.start.Compare(b.start); c != 0 {
		return c
	}
	return a.prefix.Bits() - b.prefix.Bits()
}

// buildCanonical 将同一地址族的工作列表收敛为规范集合。
//
// 稳定排序后从左到右平面扫描，维护已覆盖区间的右端点 covEnd：
// 起点落在 [.., covEnd] 内的条目必然被已保留条目的并集完全包含
// （排序保证包含者先被处理），作为冗余丢弃；其余保留并推进 covEnd。
// 产出的 kept 满足严格不重叠不变量：任意相邻条目 b.start > a.end。
//
// 排序使用稳定算法：完全相同的 (start, 长度) 对中，工作列表里靠前的
// 条目胜出（调用方将已存条目排在新候选之前，实现 first-kept-wins）。
func buildCanonical(work []entry) (kept, redundant []entry) {
	if len(work) == 0 {
		return nil, nil
	}
	slices.SortStableFunc(work, cmpEntry)

	kept = make([]entry, 0, len(work))
	var covEnd netip.Addr
	for _, e := range work {
		if covEnd.IsValid() && e.start.Compare(covEnd) <= 0 {
			redundant = append(redundant, e)
			continue
		}
		kept = append(kept, e)
		covEnd = e.end
	}
	return kept, redundant
}
