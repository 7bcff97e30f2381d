// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"full-width digits", "第１２条", "第12条"},
		{"full-width punctuation", "第八条，第三款；", "第八条,第三款;"},
		{"book-title marks preserved", "《中华人民共和国反洗钱法》", "《中华人民共和国反洗钱法》"},
		{"ideographic space and breaks collapse", "第一条　　总则\r\n\n内容", "第一条 总则 内容"},
		{"trims", "  abc  ", "abc"},
		{"lower-cases latin", "ＡＢＣ Law", "abc law"},
		{"full-width parens", "（八）", "(八)"},
		{"cjk period and brackets", "银发〔2020〕1号。", "银发(2020)1号."},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"《中华人民共和国反洗钱法》第一条，第三条\n《证券法》第八条，第三款",
		"　第（八）条　金融机构应当……",
		"ＡＢＣ１２３，。；：“引号”【括号】",
		"mixed\t\tWhite space",
		"第九条之一　本办法自２０２４年１月１日起施行。",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestFoldRune(t *testing.T) {
	assert.Equal(t, '1', FoldRune('１'))
	assert.Equal(t, ',', FoldRune('，'))
	assert.Equal(t, 'a', FoldRune('Ａ'))
	assert.Equal(t, ' ', FoldRune('　'))
	assert.Equal(t, '《', FoldRune('《'))
	assert.Equal(t, '条', FoldRune('条'))
}

func TestFoldRunesKeepsLength(t *testing.T) {
	in := "第１条，ＡＢ　测试"
	assert.Len(t, FoldRunes(in), len([]rune(in)))
}

func TestFoldMapped(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		offsets []int
	}{
		{"plain", "可疑交易", "可疑交易", []int{0, 1, 2, 3}},
		{"full-width", "第１条", "第1条", []int{0, 1, 2}},
		{"parenthesized number", "第⑴项", "第(1)项", []int{0, 1, 1, 1, 2}},
		{"roman numeral", "附件Ⅻ", "附件xii", []int{0, 1, 2, 2, 2}},
		{"circled number", "①报告", "1报告", []int{0, 1, 2}},
		{"empty", "", "", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folded, offsets := FoldMapped(tt.in)
			assert.Equal(t, tt.want, string(folded))
			assert.Equal(t, tt.offsets, offsets)
		})
	}
}

func TestFoldTextMatchesNormalizeForCompatibilityForms(t *testing.T) {
	for _, in := range []string{"⑴", "Ⅻ", "①", "㈠"} {
		assert.Equal(t, Normalize(in), FoldText(in), "input %q", in)
	}
}

func TestTitleKey(t *testing.T) {
	assert.Equal(t, "中华人民共和国反洗钱法", TitleKey("《中华人民共和国反洗钱法》"))
	assert.Equal(t, TitleKey("《反洗钱法》"), TitleKey(" 反洗钱法 "))
	assert.Equal(t, "关于xx的通知", TitleKey("“关于 ＸＸ 的通知”"))
}

func TestStripBookMarks(t *testing.T) {
	assert.Equal(t, "反洗钱法", StripBookMarks(" 《反洗钱法》 "))
	assert.Equal(t, "反洗钱法", StripBookMarks("反洗钱法"))
}
