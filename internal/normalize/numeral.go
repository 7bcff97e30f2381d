// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/policy-engine/pkg/types"
)

var cnDigits = map[rune]int{
	'零': 0, '〇': 0, '○': 0,
	'一': 1, '壹': 1, '幺': 1,
	'二': 2, '贰': 2, '两': 2, '俩': 2,
	'三': 3, '叁': 3,
	'四': 4, '肆': 4,
	'五': 5, '伍': 5,
	'六': 6, '陆': 6,
	'七': 7, '柒': 7,
	'八': 8, '捌': 8,
	'九': 9, '玖': 9,
}

var cnUnits = map[rune]int{
	'十': 10, '拾': 10,
	'百': 100, '佰': 100,
	'千': 1000, '仟': 1000,
}

// IsNumeralRune reports whether r can appear inside a number ParseNumber
// accepts.
func IsNumeralRune(r rune) bool {
	r = FoldRune(r)
	if r >= '0' && r <= '9' {
		return true
	}
	if _, ok := cnDigits[r]; ok {
		return true
	}
	_, ok := cnUnits[r]
	return ok || r == '万'
}

// ParseNumber parses Arabic (half or full width) and Chinese numerals,
// including financial forms and positional digit strings such as "二〇二〇".
func ParseNumber(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	folded := string(FoldRunes(s))
	if n, err := strconv.Atoi(folded); err == nil {
		return n, n >= 0
	}
	return parseChinese(folded)
}

func parseChinese(s string) (int, bool) {
	hasUnit := false
	for _, r := range s {
		if _, ok := cnUnits[r]; ok || r == '万' {
			hasUnit = true
			continue
		}
		if _, ok := cnDigits[r]; !ok {
			return 0, false
		}
	}
	if !hasUnit {
		// Positional form: each rune is one decimal digit.
		n := 0
		for _, r := range s {
			n = n*10 + cnDigits[r]
		}
		return n, true
	}

	total, section, num := 0, 0, 0
	seen := false
	for _, r := range s {
		if d, ok := cnDigits[r]; ok {
			num = d
			seen = true
			continue
		}
		if r == '万' {
			section += num
			if section == 0 {
				section = 1
			}
			total += section * 10000
			section, num = 0, 0
			continue
		}
		unit := cnUnits[r]
		if num == 0 && !seen {
			// Leading 十 as in 十二.
			num = 1
		}
		section += num * unit
		num = 0
		seen = true
	}
	return total + section + num, true
}

// ParseNumKey parses a clause number such as "八", "（八）", "(8)", "9之1"
// or "九之一" into a NumKey. A leading 第 is accepted.
func ParseNumKey(s string) (types.NumKey, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "第")
	s = trimParens(s)
	major, sub := s, ""
	if i := strings.Index(s, "之"); i >= 0 {
		major, sub = s[:i], s[i+len("之"):]
	}
	n, ok := ParseNumber(trimParens(major))
	if !ok {
		return types.NumKey{}, false
	}
	key := types.NumKey{Major: n}
	if sub != "" {
		m, ok := ParseNumber(sub)
		if !ok {
			return types.NumKey{}, false
		}
		key.Sub = m
	}
	return key, true
}

func trimParens(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	first, _ := utf8.DecodeRuneInString(s)
	last, _ := utf8.DecodeLastRuneInString(s)
	if (first == '(' || first == '（') && (last == ')' || last == '）') {
		s = strings.TrimPrefix(s, string(first))
		s = strings.TrimSuffix(s, string(last))
	}
	return strings.TrimSpace(s)
}

var cnRenderDigits = []string{"零", "一", "二", "三", "四", "五", "六", "七", "八", "九"}

// IntToChinese renders n (0 through 99999) in the conventional form used in
// article labels: 10 is 十, 21 is 二十一, 105 is 一百零五.
func IntToChinese(n int) string {
	if n < 0 || n > 99999 {
		return strconv.Itoa(n)
	}
	if n < 10 {
		return cnRenderDigits[n]
	}
	if n < 20 {
		s := "十"
		if n > 10 {
			s += cnRenderDigits[n-10]
		}
		return s
	}
	units := []struct {
		value int
		name  string
	}{{10000, "万"}, {1000, "千"}, {100, "百"}, {10, "十"}}
	var b strings.Builder
	zero := false
	started := false
	for _, u := range units {
		d := n / u.value
		n %= u.value
		if d == 0 {
			if started {
				zero = true
			}
			continue
		}
		if zero {
			b.WriteString("零")
			zero = false
		}
		b.WriteString(cnRenderDigits[d])
		b.WriteString(u.name)
		started = true
	}
	if n > 0 {
		if zero {
			b.WriteString("零")
		}
		b.WriteString(cnRenderDigits[n])
	}
	return b.String()
}
