// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/policy-engine/pkg/types"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"8", 8, true},
		{"１２", 12, true},
		{"一", 1, true},
		{"十", 10, true},
		{"十二", 12, true},
		{"二十", 20, true},
		{"九十九", 99, true},
		{"一百零五", 105, true},
		{"一百一十", 110, true},
		{"两百", 200, true},
		{"一千二百三十四", 1234, true},
		{"三万", 30000, true},
		{"壹拾贰", 12, true},
		{"二〇二〇", 2020, true},
		{"零", 0, true},
		{"", 0, false},
		{"八a", 0, false},
		{"条", 0, false},
		{"-3", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseNumKey(t *testing.T) {
	tests := []struct {
		in   string
		want types.NumKey
		ok   bool
	}{
		{"八", types.NumKey{Major: 8}, true},
		{"（八）", types.NumKey{Major: 8}, true},
		{"(8)", types.NumKey{Major: 8}, true},
		{"第八", types.NumKey{Major: 8}, true},
		{"九之一", types.NumKey{Major: 9, Sub: 1}, true},
		{"9之2", types.NumKey{Major: 9, Sub: 2}, true},
		{"（十）之三", types.NumKey{Major: 10, Sub: 3}, true},
		{"之一", types.NumKey{}, false},
		{"甲", types.NumKey{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumKey(tt.in)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParenthesizedAndPlainAgree(t *testing.T) {
	for _, pair := range [][2]string{{"（八）", "八"}, {"(8)", "八"}, {"８", "八"}, {"（二十一）", "21"}} {
		a, ok := ParseNumKey(pair[0])
		require.True(t, ok)
		b, ok := ParseNumKey(pair[1])
		require.True(t, ok)
		assert.Equal(t, a, b, "%s vs %s", pair[0], pair[1])
	}
}

func TestIntToChinese(t *testing.T) {
	tests := map[int]string{
		0:    "零",
		7:    "七",
		10:   "十",
		15:   "十五",
		20:   "二十",
		21:   "二十一",
		105:  "一百零五",
		110:  "一百一十",
		1000: "一千",
		1001: "一千零一",
	}
	for n, want := range tests {
		assert.Equal(t, want, IntToChinese(n), "n=%d", n)
	}
}

func TestIntToChineseRoundTrip(t *testing.T) {
	for n := 0; n <= 2000; n++ {
		got, ok := ParseNumber(IntToChinese(n))
		require.True(t, ok, "n=%d", n)
		require.Equal(t, n, got, "n=%d rendered %s", n, IntToChinese(n))
	}
}

func TestIsNumeralRune(t *testing.T) {
	for _, r := range "0９一十百千万两壹〇" {
		assert.True(t, IsNumeralRune(r), string(r))
	}
	for _, r := range "条款项第(a" {
		assert.False(t, IsNumeralRune(r), string(r))
	}
}
