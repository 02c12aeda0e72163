package xiplist

import (
	"net/netip"
	"sort"

	"github.com/omeyang/xiplist/pkg/xcidr"
)

// 均衡分块的尺寸区间。块数与块大小相互制衡：
// 两级二分的代价为 log(块数) + log(块大小)，在两者接近时最小。
const (
	minChunkSize = 100
	maxChunkSize = 5000
)

// familyIndex 是单一地址族的分块二分索引。
//
// entries 为规范集合（有序、无重叠），offsets[i] 是第 i 块在 entries
// 中的起始下标，bounds[i] 是该块首条目的 start。查询先在 bounds 中
// 二分定位块，再在块内二分定位条目。
//
// IPv4 族额外持有 boundsU/startsU/endsU 三个平行 uint32 切片，
// 查询全程走整数比较快路径。
type familyIndex struct {
	entries []entry
	offsets []int
	bounds  []netip.Addr

	// 仅 IPv4 填充
	boundsU []uint32
	startsU []uint32
	endsU   []uint32
}

// buildFamilyIndex 在规范集合上构建分块索引。entries 必须已排序。
func buildFamilyIndex(fam xcidr.Family, entries []entry) familyIndex {
	n := len(entries)
	if n == 0 {
		return familyIndex{}
	}
	size := balancedChunkSize(n)
	numChunks := (n + size - 1) / size

	fi := familyIndex{
		entries: entries,
		offsets: make([]int, 0, numChunks),
		bounds:  make([]netip.Addr, 0, numChunks),
	}
	for off := 0; off < n; off += size {
		fi.offsets = append(fi.offsets, off)
		fi.bounds = append(fi.bounds, entries[off].start)
	}

	if fam == xcidr.F4 {
		fi.startsU = make([]uint32, n)
		fi.endsU = make([]uint32, n)
		for i, e := range entries {
			fi.startsU[i], _ = xcidr.AddrToUint32(e.start)
			fi.endsU[i], _ = xcidr.AddrToUint32(e.end)
		}
		fi.boundsU = make([]uint32, len(fi.offsets))
		for i, off := range fi.offsets {
			fi.boundsU[i] = fi.startsU[off]
		}
	}
	return fi
}

// balancedChunkSize 为 n 个条目选择均衡的块大小，使块数与块大小的
// 差值最小。n 不超过 minChunkSize 时不分块（单块即可）。
func balancedChunkSize(n int) int {
	if n <= minChunkSize {
		return n
	}
	best, bestDiff := 1, n
	for size := 1; size <= maxChunkSize; size++ {
		q := (n + size - 1) / size
		diff := size - q
		if diff < 0 {
			diff = -diff
		}
		if diff <= 1 {
			return size
		}
		if diff < bestDiff {
			bestDiff, best = diff, size
		}
	}
	return best
}

// numChunks 返回块数。
func (fi *familyIndex) numChunks() int {
	return len(fi.offsets)
}

// chunkRange 返回第 ci 块在 entries 中的区间 [lo, hi)。
func (fi *familyIndex) chunkRange(ci int) (lo, hi int) {
	lo = fi.offsets[ci]
	hi = len(fi.entries)
	if ci+1 < len(fi.offsets) {
		hi = fi.offsets[ci+1]
	}
	return lo, hi
}

// lookup 返回覆盖 addr 的前缀文本。addr 必须与本索引同族。
// 两级二分：先定位最后一个 bound <= addr 的块，再在块内定位
// 最后一个 start <= addr 的条目，最后验证 addr <= end。
func (fi *familyIndex) lookup(addr netip.Addr) (string, bool) {
	if len(fi.entries) == 0 {
		return "", false
	}
	if fi.startsU != nil {
		if u, ok := xcidr.AddrToUint32(addr); ok {
			return fi.lookupV4(u)
		}
		return "", false
	}

	ci := sort.Search(len(fi.bounds), func(i int) bool {
		return fi.bounds[i].Compare(addr) > 0
	}) - 1
	if ci < 0 {
		return "", false
	}
	lo, hi := fi.chunkRange(ci)
	ei := lo + sort.Search(hi-lo, func(i int) bool {
		return fi.entries[lo+i].start.Compare(addr) > 0
	}) - 1
	if ei < lo {
		return "", false
	}
	if addr.Compare(fi.entries[ei].end) <= 0 {
		return fi.entries[ei].text, true
	}
	return "", false
}

// lookupV4 是 IPv4 的 uint32 快路径，与 lookup 的逻辑一致。
func (fi *familyIndex) lookupV4(u uint32) (string, bool) {
	ci := sort.Search(len(fi.boundsU), func(i int) bool {
		return fi.boundsU[i] > u
	}) - 1
	if ci < 0 {
		return "", false
	}
	lo, hi := fi.chunkRange(ci)
	ei := lo + sort.Search(hi-lo, func(i int) bool {
		return fi.startsU[lo+i] > u
	}) - 1
	if ei < lo {
		return "", false
	}
	if u <= fi.endsU[ei] {
		return fi.entries[ei].text, true
	}
	return "", false
}
