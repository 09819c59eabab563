package parser

import (
	"regexp"
	"strings"
)

// splitYearRegex 上游PDF文本提取会在年份数字中间插入空白，例如 "202 6"、"20 2 5"
var splitYearRegex = regexp.MustCompile(`^20[ \t]*2[ \t]*[0-9]`)

var blankRemover = strings.NewReplacer(" ", "", "\t", "")

// NormalizeSplitYears 把被空白拆开的 202x 年份合并为连续的4位数字。
// 前后紧挨数字的片段不合并，"Team of 20 2024" 中的 2024 保持原样。
// 只处理这一种上游提取瑕疵，不做任何通用日期解析；上游修复后可单独移除。
func NormalizeSplitYears(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		if i == 0 || !isASCIIDigit(text[i-1]) {
			if loc := splitYearRegex.FindStringIndex(text[i:]); loc != nil {
				end := i + loc[1]
				if end == len(text) || !isASCIIDigit(text[end]) {
					b.WriteString(blankRemover.Replace(text[i:end]))
					i = end
					continue
				}
			}
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String()
}

func isASCIIDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
