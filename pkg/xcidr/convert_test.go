package xcidr

import (
	"math/big"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddrUint32RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want uint32
	}{
		{name: "zero", addr: "0.0.0.0", want: 0},
		{name: "loopback", addr: "127.0.0.1", want: 0x7f000001},
		{name: "private", addr: "192.168.1.1", want: 0xc0a80101},
		{name: "max", addr: "255.255.255.255", want: 0xffffffff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := netip.MustParseAddr(tt.addr)
			v, ok := AddrToUint32(addr)
			require.True(t, ok)
			assert.Equal(t, tt.want, v)
			assert.Equal(t, addr, AddrFromUint32(v))
		})
	}
}

func TestAddrToUint32NonIPv4(t *testing.T) {
	_, ok := AddrToUint32(netip.MustParseAddr("2001:db8::1"))
	assert.False(t, ok)
	_, ok = AddrToUint32(netip.Addr{})
	assert.False(t, ok)

	// IPv4-mapped IPv6 按 IPv4 处理
	v, ok := AddrToUint32(netip.MustParseAddr("::ffff:1.2.3.4"))
	require.True(t, ok)
	assert.Equal(t, uint32(0x01020304), v)
}

func TestAddrBigIntRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		addr string
		fam  Family
	}{
		{name: "IPv4 zero", addr: "0.0.0.0", fam: F4},
		{name: "IPv4 max", addr: "255.255.255.255", fam: F4},
		{name: "IPv6 loopback", addr: "::1", fam: F6},
		{name: "IPv6 doc", addr: "2001:db8::1", fam: F6},
		{name: "IPv6 max", addr: "ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff", fam: F6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := netip.MustParseAddr(tt.addr)
			v := AddrToBigInt(addr)
			back, err := AddrFromBigInt(v, tt.fam)
			require.NoError(t, err)
			assert.Equal(t, addr, back)
		})
	}
}

func TestAddrFromBigIntOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		v    *big.Int
		fam  Family
	}{
		{name: "nil", v: nil, fam: F4},
		{name: "negative", v: big.NewInt(-1), fam: F4},
		{name: "exceeds 32 bits", v: new(big.Int).Lsh(big.NewInt(1), 32), fam: F4},
		{name: "exceeds 128 bits", v: new(big.Int).Lsh(big.NewInt(1), 128), fam: F6},
		{name: "unknown family", v: big.NewInt(1), fam: F0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddrFromBigInt(tt.v, tt.fam)
			assert.ErrorIs(t, err, ErrInvalidAddress)
		})
	}
}

func TestTwoIntegerDomains(t *testing.T) {
	// 同一个整数在两个地址族下对应不同地址，域之间不可互换。
	v := big.NewInt(1)
	a4, err := AddrFromBigInt(v, F4)
	require.NoError(t, err)
	a6, err := AddrFromBigInt(v, F6)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.1", a4.String())
	assert.Equal(t, "::1", a6.String())
	assert.NotEqual(t, a4, a6)
}
