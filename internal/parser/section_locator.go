package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"freelancer-trust/internal/tracing"

	"github.com/rs/zerolog"
)

const (
	// maxHeaderLineLen 章节标题行的最大长度
	maxHeaderLineLen = 50
	// collapsedMaxLines 换行丢失判定：行数上限
	collapsedMaxLines = 3
	// collapsedMinChars 换行丢失判定：文本长度下限
	collapsedMinChars = 500
)

var (
	// 项目/经历章节标题，整行匹配，允许前导项目符号和结尾冒号
	projectHeaderRegex = regexp.MustCompile(`^[\s•*\-]*(?:projects?|key\s+projects?|major\s+projects?|relevant\s+projects?|selected\s+projects?|portfolio|work\s+samples?|technical\s+projects?|professional\s+projects?|work\s+experience|experience|professional\s+experience|freelance\s+experience)\s*:?\s*$`)

	// 实习类结束标题优先判断
	internshipTerminatorRegex = regexp.MustCompile(`^internships?\s*:?\s*$`)
	sectionTerminatorRegex    = regexp.MustCompile(`^(?:training|work\s*experience|education|academic|skills|technical\s*skills|certifications?|awards?|references?|hobbies|languages?|interests?)\s*:?\s*$`)
	educationTerminatorRegex  = regexp.MustCompile(`^education\s*:?\s*$`)

	// 单行文本（换行丢失）时的行内关键词
	inlineHeaderRegex     = regexp.MustCompile(`(?i)\b(?:Projects?|Experience|Work Experience|Professional Experience)\b`)
	inlineTerminatorRegex = regexp.MustCompile(`(?i)\b(?:Internships?|Education|Academic|Skills|Technical Skills|Certifications?)\b`)
)

// SectionLocator 定位简历中项目/经历章节所在的文本区域
type SectionLocator struct {
	logger zerolog.Logger
}

// NewSectionLocator 创建章节定位器
func NewSectionLocator(l zerolog.Logger) *SectionLocator {
	return &SectionLocator{logger: l}
}

// LocateProjectSection 返回可能包含项目列表的子串，最坏情况返回全文
func (s *SectionLocator) LocateProjectSection(text string) string {
	lines := strings.Split(text, "\n")

	if len(lines) <= collapsedMaxLines && utf8.RuneCountInString(text) > collapsedMinChars {
		if region, ok := locateCollapsedSection(text); ok {
			s.logger.Debug().
				Int("region_chars", len(region)).
				Str("preview", tracing.SafeResumeContent(region)).
				Msg("单行文本：通过关键词定位项目章节")
			return region
		}
		s.logger.Warn().Msg("单行文本中未找到项目章节关键词，回退到逐行扫描")
	}

	start := -1
	for i, line := range lines {
		if isHeaderCandidate(line) && projectHeaderRegex.MatchString(strings.ToLower(strings.TrimSpace(line))) {
			start = i + 1
			s.logger.Debug().Int("line", i).Str("header", strings.TrimSpace(line)).Msg("找到项目章节标题")
			break
		}
	}

	end := len(lines)
	if start == -1 {
		s.logger.Debug().Msg("未找到项目章节标题，使用全文")
		start = 0
		for i, line := range lines {
			if isHeaderCandidate(line) && educationTerminatorRegex.MatchString(strings.ToLower(strings.TrimSpace(line))) {
				end = i
				break
			}
		}
	} else {
		for i := start; i < len(lines); i++ {
			if isSectionTerminator(lines[i]) {
				end = i
				s.logger.Debug().Int("line", i).Str("terminator", strings.TrimSpace(lines[i])).Msg("项目章节结束")
				break
			}
		}
	}

	if start >= end {
		return ""
	}
	region := strings.Join(lines[start:end], "\n")
	s.logger.Debug().
		Int("start_line", start).
		Int("end_line", end).
		Int("region_chars", len(region)).
		Str("preview", tracing.SafeResumeContent(region)).
		Msg("项目章节范围")
	return region
}

// isHeaderCandidate 非空且足够短的行才可能是章节标题
func isHeaderCandidate(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed != "" && utf8.RuneCountInString(trimmed) < maxHeaderLineLen
}

// isSectionTerminator 判断某行是否为结束项目章节的标题行
func isSectionTerminator(line string) bool {
	if !isHeaderCandidate(line) {
		return false
	}
	lower := strings.ToLower(strings.TrimSpace(line))
	if internshipTerminatorRegex.MatchString(lower) {
		return true
	}
	return sectionTerminatorRegex.MatchString(lower)
}

// locateCollapsedSection 在换行丢失的文本中按关键词直接查找章节范围
func locateCollapsedSection(text string) (string, bool) {
	loc := inlineHeaderRegex.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	end := len(text)
	if term := inlineTerminatorRegex.FindStringIndex(text[loc[1]:]); term != nil {
		end = loc[1] + term[0]
	}
	return text[loc[0]:end], true
}
