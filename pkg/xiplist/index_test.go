package xiplist

import (
	"fmt"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xiplist/pkg/xcidr"
)

func TestBalancedChunkSize(t *testing.T) {
	t.Run("small list is a single chunk", func(t *testing.T) {
		assert.Equal(t, 1, balancedChunkSize(1))
		assert.Equal(t, 50, balancedChunkSize(50))
		assert.Equal(t, 100, balancedChunkSize(100))
	})

	t.Run("chunk count and size stay balanced", func(t *testing.T) {
		for _, n := range []int{101, 500, 1000, 9999, 10000, 123456} {
			size := balancedChunkSize(n)
			require.Positive(t, size, "n=%d", n)
			q := (n + size - 1) / size
			diff := size - q
			if diff < 0 {
				diff = -diff
			}
			// 平衡目标：块数与块大小近似相等（即都接近 sqrt(n)）
			assert.LessOrEqual(t, diff, 1, "n=%d size=%d chunks=%d", n, size, q)
		}
	})

	t.Run("perfect square", func(t *testing.T) {
		size := balancedChunkSize(10000)
		assert.Equal(t, 100, size)
	})
}

// buildV4Index 构建 n 个互不重叠的 /24 条目的 IPv4 索引。
func buildV4Index(t *testing.T, n int) familyIndex {
	t.Helper()
	entries := make([]entry, 0, n)
	for i := 0; i < n; i++ {
		// 10.x.y.0/24，严格递增
		p := netip.MustParsePrefix(fmt.Sprintf("10.%d.%d.0/24", i/256, i%256))
		entries = append(entries, newEntry(p))
	}
	return buildFamilyIndex(xcidr.F4, entries)
}

func TestFamilyIndexLookup(t *testing.T) {
	fi := buildV4Index(t, 1000)
	require.Greater(t, fi.numChunks(), 1, "expected multiple chunks")

	t.Run("hits", func(t *testing.T) {
		for _, s := range []string{"10.0.0.0", "10.0.5.77", "10.1.200.255", "10.3.231.1"} {
			text, ok := fi.lookup(netip.MustParseAddr(s))
			require.True(t, ok, s)
			p := netip.MustParsePrefix(text)
			assert.True(t, p.Contains(netip.MustParseAddr(s)), "%s not in %s", s, text)
		}
	})

	t.Run("below first entry", func(t *testing.T) {
		_, ok := fi.lookup(netip.MustParseAddr("9.255.255.255"))
		assert.False(t, ok)
	})

	t.Run("above last entry", func(t *testing.T) {
		_, ok := fi.lookup(netip.MustParseAddr("10.3.232.0"))
		assert.False(t, ok)
		_, ok = fi.lookup(netip.MustParseAddr("200.0.0.1"))
		assert.False(t, ok)
	})

	t.Run("chunk boundaries", func(t *testing.T) {
		// 每个块的首条目与末条目都必须命中自身
		for ci := 0; ci < fi.numChunks(); ci++ {
			lo, hi := fi.chunkRange(ci)
			for _, idx := range []int{lo, hi - 1} {
				e := fi.entries[idx]
				text, ok := fi.lookup(e.start)
				require.True(t, ok)
				assert.Equal(t, e.text, text)
				text, ok = fi.lookup(e.end)
				require.True(t, ok)
				assert.Equal(t, e.text, text)
			}
		}
	})

	t.Run("gap between entries", func(t *testing.T) {
		// 条目覆盖 .0-.255，条目之间无空隙；族外地址未命中
		_, ok := fi.lookup(netip.MustParseAddr("11.0.0.1"))
		assert.False(t, ok)
	})
}

func TestFamilyIndexLookupIPv6(t *testing.T) {
	entries := make([]entry, 0, 300)
	for i := 0; i < 300; i++ {
		p := netip.MustParsePrefix(fmt.Sprintf("2001:db8:%x::/48", i))
		entries = append(entries, newEntry(p))
	}
	fi := buildFamilyIndex(xcidr.F6, entries)
	require.Greater(t, fi.numChunks(), 1)
	assert.Nil(t, fi.startsU, "IPv6 index must not carry uint32 arrays")

	text, ok := fi.lookup(netip.MustParseAddr("2001:db8:2a:1234::1"))
	require.True(t, ok)
	assert.Equal(t, "2001:db8:2a::/48", text)

	_, ok = fi.lookup(netip.MustParseAddr("2001:db7::1"))
	assert.False(t, ok)
	_, ok = fi.lookup(netip.MustParseAddr("2001:db8:12c::"))
	assert.False(t, ok)
}

func TestFamilyIndexEmpty(t *testing.T) {
	var fi familyIndex
	_, ok := fi.lookup(netip.MustParseAddr("10.0.0.1"))
	assert.False(t, ok)
	assert.Equal(t, 0, fi.numChunks())
}

// TestFamilyIndexV4FastPath 验证 uint32 快路径与通用路径结果一致。
func TestFamilyIndexV4FastPath(t *testing.T) {
	fi := buildV4Index(t, 500)
	require.NotNil(t, fi.startsU)

	generic := familyIndex{entries: fi.entries, offsets: fi.offsets, bounds: fi.bounds}
	for _, s := range []string{"10.0.0.0", "10.1.77.3", "10.1.243.255", "9.0.0.1", "10.2.0.0", "255.255.255.255"} {
		addr := netip.MustParseAddr(s)
		fastText, fastOK := fi.lookup(addr)
		genText, genOK := generic.lookup(addr)
		assert.Equal(t, genOK, fastOK, s)
		assert.Equal(t, genText, fastText, s)
	}
}
