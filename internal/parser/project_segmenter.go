package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

var (
	// 标题行中的合作类型标记，例如 "(Freelance)"
	engagementMarkerRegex = regexp.MustCompile(`(?i)\(\s*(?:Freelance|Personal|Client|Contract|Side\s*Project|Academic|Course)\s*\)`)

	// 关键词策略: "developed a ... system" 一类短语
	projectPhraseRegex = regexp.MustCompile(`(?i)(?:developed|built|created|implemented|designed)\s+(?:a|an|the)?\s*[\w\s]+?(?:system|application|app|platform|website|tool|api)`)

	// 技术标签行: "Tech:" / "Technologies:" / "Technology:" / "Technologies Used:"
	techLabelRegex = regexp.MustCompile(`(?im)^[ \t•*\-]*(?:tech(?:nolog(?:ies|y))?|technologies\s+used)\s*:`)
)

// 描述/动作前缀，带这些前缀的行即使含有括号标记也不是标题
var actionPrefixes = []string{
	"integrated", "developed", "built", "created", "designed",
	"implemented", "used", "utilized", "tech:", "technologies:",
	"worked", "deployed", "configured", "managed", "led", "added",
}

// SegmentStrategy 一种独立的分段策略
type SegmentStrategy struct {
	Name  string
	Split func(region string) []string
}

// ProjectSegmenter 按策略链把章节文本切分为候选项目块
type ProjectSegmenter struct {
	strategies    []SegmentStrategy
	minCandidates int
	minBlockChars int
	maxNameLength int
	logger        zerolog.Logger
}

// NewProjectSegmenter 创建分段器，策略顺序: 标题标记 → 关键词片段 → 技术标签
func NewProjectSegmenter(opts Options) *ProjectSegmenter {
	return &ProjectSegmenter{
		strategies: []SegmentStrategy{
			{Name: "title_marker", Split: TitleMarkerStrategy(opts.MinTitleBlockLines)},
			{Name: "keyword_span", Split: KeywordSpanStrategy(opts.KeywordWindowBefore, opts.KeywordWindowAfter)},
			{Name: "tech_label", Split: TechLabelStrategy(opts.TechLabelLookahead)},
		},
		minCandidates: opts.MinCandidateBlocks,
		minBlockChars: opts.MinBlockChars,
		maxNameLength: opts.MaxNameLength,
		logger:        opts.Logger,
	}
}

// Segment 依次执行各策略，候选块数量达到阈值后跳过剩余策略，最后去重
func (s *ProjectSegmenter) Segment(region string) []string {
	var blocks []string
	for _, strategy := range s.strategies {
		if len(blocks) >= s.minCandidates {
			break
		}
		found := 0
		for _, block := range strategy.Split(region) {
			if utf8.RuneCountInString(strings.TrimSpace(block)) < s.minBlockChars {
				continue
			}
			blocks = append(blocks, block)
			found++
		}
		s.logger.Debug().Str("strategy", strategy.Name).Int("blocks", found).Int("total", len(blocks)).Msg("分段策略完成")
	}

	deduped := DeduplicateBlocks(blocks, s.maxNameLength)
	if len(deduped) != len(blocks) {
		s.logger.Debug().Int("before", len(blocks)).Int("after", len(deduped)).Msg("去除重复项目块")
	}
	return deduped
}

// TitleMarkerStrategy 以带合作类型标记的标题行为边界切分
func TitleMarkerStrategy(minLines int) func(string) []string {
	return func(region string) []string {
		var blocks []string
		var current []string

		flush := func() {
			if len(current) >= minLines {
				blocks = append(blocks, strings.Join(current, "\n"))
			}
			current = nil
		}

		for _, line := range strings.Split(region, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if isTitleLine(trimmed) {
				flush()
				current = []string{trimmed}
				continue
			}
			// 第一个标题之前的内容不属于任何项目
			if current != nil {
				current = append(current, line)
			}
		}
		flush()
		return blocks
	}
}

// isTitleLine 含合作类型标记，且去掉项目符号后不以动作前缀开头
func isTitleLine(trimmed string) bool {
	if !engagementMarkerRegex.MatchString(trimmed) {
		return false
	}
	lower := strings.ToLower(strings.TrimLeft(trimmed, "•*- \t"))
	for _, prefix := range actionPrefixes {
		if hasWordPrefix(lower, prefix) {
			return false
		}
	}
	return true
}

// hasWordPrefix 前缀后不能紧跟字母，避免 "led" 命中 "Ledger"
func hasWordPrefix(s, prefix string) bool {
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	if len(s) == len(prefix) || strings.HasSuffix(prefix, ":") {
		return true
	}
	next := s[len(prefix)]
	return !(next >= 'a' && next <= 'z')
}

// KeywordSpanStrategy 围绕 "built a ... platform" 类短语截取上下文窗口
func KeywordSpanStrategy(before, after int) func(string) []string {
	return func(region string) []string {
		var blocks []string
		for _, loc := range projectPhraseRegex.FindAllStringIndex(region, -1) {
			start := runeFloor(region, loc[0]-before)
			end := runeCeil(region, loc[1]+after)
			blocks = append(blocks, region[start:end])
		}
		return blocks
	}
}

// TechLabelStrategy 以技术标签行为项目结尾切分:
// 每块从上一块结束处（或区域开头）延伸到当前标签行行尾，行尾查找最多向后 lookahead 个字节
func TechLabelStrategy(lookahead int) func(string) []string {
	return func(region string) []string {
		var blocks []string
		prev := 0
		for _, loc := range techLabelRegex.FindAllStringIndex(region, -1) {
			if loc[0] < prev {
				continue
			}
			end := len(region)
			if nl := strings.IndexByte(region[loc[1]:], '\n'); nl != -1 {
				end = loc[1] + nl
			}
			if end-loc[1] > lookahead {
				end = runeCeil(region, loc[1]+lookahead)
			}
			block := strings.TrimSpace(region[prev:end])
			if block != "" {
				blocks = append(blocks, block)
			}
			prev = end
		}
		return blocks
	}
}

// DeduplicateBlocks 按首行名称去重：名称互为子串（忽略大小写）即视为重复，保留先出现的块。
// 对已去重的结果再次执行结果不变。
func DeduplicateBlocks(blocks []string, maxNameLength int) []string {
	if len(blocks) <= 1 {
		return blocks
	}
	kept := make([]string, 0, len(blocks))
	seen := make([]string, 0, len(blocks))
	for _, block := range blocks {
		name := strings.ToLower(blockName(block, maxNameLength))
		duplicate := false
		for _, s := range seen {
			if strings.Contains(s, name) || strings.Contains(name, s) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		kept = append(kept, block)
		seen = append(seen, name)
	}
	return kept
}

// blockName 块的首个非空行，截断到 maxLen 个字符
func blockName(block string, maxLen int) string {
	for _, line := range strings.Split(block, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return truncateRunes(trimmed, maxLen)
		}
	}
	return ""
}

func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// runeFloor 把字节下标向前对齐到字符边界并限制在 [0, len]
func runeFloor(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// runeCeil 把字节下标向后对齐到字符边界并限制在 [0, len]
func runeCeil(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
