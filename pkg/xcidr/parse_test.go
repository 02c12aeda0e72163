package xcidr

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddr(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "IPv4",
			input: "192.168.1.1",
			want:  "192.168.1.1",
		},
		{
			name:  "IPv4 with whitespace",
			input: "  10.0.0.1\t",
			want:  "10.0.0.1",
		},
		{
			name:  "IPv6",
			input: "2001:db8::1",
			want:  "2001:db8::1",
		},
		{
			name:  "IPv4-mapped IPv6 unmapped",
			input: "::ffff:192.168.1.1",
			want:  "192.168.1.1",
		},
		{
			name:    "octet out of range",
			input:   "100.200.300.400",
			wantErr: true,
		},
		{
			name:    "not an address",
			input:   "a.b.c.d",
			wantErr: true,
		},
		{
			name:    "zone ID rejected",
			input:   "fe80::1%eth0",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "too few groups",
			input:   "1.2.3",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := ParseAddr(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAddress)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, addr.String())
		})
	}
}

func TestParsePrefix(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		normalize bool
		want      string
		wantErr   error
	}{
		{
			name:  "valid IPv4 CIDR",
			input: "1.0.0.0/24",
			want:  "1.0.0.0/24",
		},
		{
			name:  "host prefix with explicit length",
			input: "1.1.1.1/32",
			want:  "1.1.1.1/32",
		},
		{
			name:  "bare IPv4 gets host length",
			input: "10.10.10.10",
			want:  "10.10.10.10/32",
		},
		{
			name:  "bare IPv6 gets host length",
			input: "2001:db8::1",
			want:  "2001:db8::1/128",
		},
		{
			name:  "valid IPv6 CIDR",
			input: "2001:db8::/32",
			want:  "2001:db8::/32",
		},
		{
			name:    "host bits set without normalize",
			input:   "10.10.10.10/8",
			wantErr: ErrHostBitsSet,
		},
		{
			name:      "host bits set with normalize",
			input:     "10.10.10.10/8",
			normalize: true,
			want:      "10.0.0.0/8",
		},
		{
			name:    "IPv6 host bits set without normalize",
			input:   "2001:db8::1/64",
			wantErr: ErrHostBitsSet,
		},
		{
			name:      "IPv6 host bits set with normalize",
			input:     "2001:db8::1/64",
			normalize: true,
			want:      "2001:db8::/64",
		},
		{
			name:    "IPv4 length out of range",
			input:   "10.0.0.0/33",
			wantErr: ErrInvalidPrefixLength,
		},
		{
			name:    "IPv6 length out of range",
			input:   "2001:db8::/129",
			wantErr: ErrInvalidPrefixLength,
		},
		{
			name:    "negative length",
			input:   "10.0.0.0/-1",
			wantErr: ErrInvalidCIDR,
		},
		{
			name:    "plus-prefixed length",
			input:   "10.0.0.0/+8",
			wantErr: ErrInvalidCIDR,
		},
		{
			name:    "empty length",
			input:   "10.0.0.0/",
			wantErr: ErrInvalidCIDR,
		},
		{
			name:    "missing address",
			input:   "/24",
			wantErr: ErrInvalidAddress,
		},
		{
			name:    "unparsable address",
			input:   "a.b.c.d/24",
			wantErr: ErrInvalidAddress,
		},
		{
			name:    "empty input",
			input:   "   ",
			wantErr: ErrInvalidCIDR,
		},
		{
			name:    "zone ID rejected",
			input:   "fe80::1%eth0/64",
			wantErr: ErrInvalidAddress,
		},
		{
			name:  "zero length covers everything",
			input: "0.0.0.0/0",
			want:  "0.0.0.0/0",
		},
		{
			name:  "IPv4-mapped prefix converts to IPv4",
			input: "::ffff:192.168.1.0/120",
			want:  "192.168.1.0/24",
		},
		{
			name:    "IPv4-mapped prefix below 96 rejected",
			input:   "::ffff:192.168.1.0/95",
			wantErr: ErrInvalidPrefixLength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePrefix(tt.input, tt.normalize)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.String())
			// 产出的前缀主机位必须全零
			assert.Equal(t, p.Masked(), p)
		})
	}
}

func TestFormatPrefix(t *testing.T) {
	p := netip.MustParsePrefix("2001:db8::/32")
	assert.Equal(t, "2001:db8::/32", FormatPrefix(p))
	assert.Equal(t, "", FormatPrefix(netip.Prefix{}))
}
