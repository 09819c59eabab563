package parser

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"freelancer-trust/internal/tracing"
	"freelancer-trust/internal/types"
	"freelancer-trust/pkg/utils"

	"github.com/rs/zerolog"
)

var (
	digitRunRegex = regexp.MustCompile(`\d+`)

	// 合作类型标记后紧跟年份，例如 "(Freelance) 2025"、"(Client) | 2024"
	markerYearRegex = regexp.MustCompile(`(?i)\(\s*(?:Freelance|Personal|Client|Contract)\s*\)\s*[|,\-–]?\s*(\d{4})`)

	// 显式时长短语，按 月 > 年 > 周 的优先级尝试
	monthsPhraseRegex = regexp.MustCompile(`(?i)\b(\d+)\s*(?:months?|mos?)\b`)
	yearsPhraseRegex  = regexp.MustCompile(`(?i)\b(\d+)\s*(?:years?|yrs?)\b`)
	weeksPhraseRegex  = regexp.MustCompile(`(?i)\b(\d+)\s*(?:weeks?|wks?)\b`)

	urlRegex      = regexp.MustCompile("https?://[^\\s<>\"\\[\\]{}|\\\\^`]+")
	repoRefRegex  = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?((?:github\.com|gitlab\.com|bitbucket\.org)/[\w.\-]+/[\w.\-]+)`)
	urlTrailChars = ".,;:)"
)

// EntryParser 把单个项目文本块解析为项目记录
type EntryParser struct {
	opts   Options
	vocab  *TechVocabulary
	logger zerolog.Logger
}

// NewEntryParser 创建条目解析器
func NewEntryParser(opts Options, vocab *TechVocabulary) *EntryParser {
	if vocab == nil {
		vocab = DefaultTechVocabulary()
	}
	return &EntryParser{opts: opts, vocab: vocab, logger: opts.Logger}
}

// ParseEntry 解析项目块；去除首尾空白后过短的块视为分段噪声，返回nil
func (p *EntryParser) ParseEntry(block string) *types.ProjectRecord {
	trimmed := strings.TrimSpace(block)
	if utf8.RuneCountInString(trimmed) < p.opts.MinBlockChars {
		p.logger.Debug().Str("block", tracing.SafeResumeContent(trimmed)).Msg("丢弃过短的项目块")
		return nil
	}

	lines := nonEmptyLines(block)
	record := &types.ProjectRecord{
		Name:    truncateRunes(lines[0], p.opts.MaxNameLength),
		RawText: block,
	}

	years := p.yearsFromTitle(lines)
	switch {
	case len(years) >= 2:
		record.StartYear, record.EndYear = utils.IntPtr(years[0]), utils.IntPtr(years[len(years)-1])
	case len(years) == 1:
		record.EndYear = utils.IntPtr(years[0])
	}

	record.DurationMonths = p.ExtractDuration(record.StartYear, record.EndYear, block)
	record.Technologies = p.ExtractTechnologies(block)
	record.Links = ExtractLinks(block)

	p.logger.Debug().
		Str("name", tracing.SafeResumeContent(record.Name)).
		Ints("years", years).
		Float64("duration_months", record.DurationMonths).
		Int("technologies", len(record.Technologies)).
		Int("links", len(record.Links)).
		Msg("解析项目条目")
	return record
}

// yearsFromTitle 先在标题行中找年份，找不到再看前两行
func (p *EntryParser) yearsFromTitle(lines []string) []int {
	years := p.ExtractYears(lines[0])
	if len(years) == 0 && len(lines) >= 2 {
		years = p.ExtractYears(lines[0] + " " + lines[1])
	}
	return years
}

// ExtractYears 返回文本中 [MinProjectYear, 当前年份+1] 范围内的不同年份（升序）
func (p *EntryParser) ExtractYears(text string) []int {
	minYear, maxYear := p.opts.MinProjectYear, p.opts.maxProjectYear()
	set := make(map[int]struct{})

	normalized := NormalizeSplitYears(text)
	for _, run := range digitRunRegex.FindAllString(normalized, -1) {
		if len(run) != 4 {
			continue
		}
		if y, err := strconv.Atoi(run); err == nil && y >= minYear && y <= maxYear {
			set[y] = struct{}{}
		}
	}

	// 兜底：标记后紧跟年份
	if len(set) == 0 {
		for _, m := range markerYearRegex.FindAllStringSubmatch(text, -1) {
			if y, err := strconv.Atoi(m[1]); err == nil && y >= minYear && y <= maxYear {
				set[y] = struct{}{}
			}
		}
	}

	years := make([]int, 0, len(set))
	for y := range set {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// ExtractDuration 计算项目时长（月）：有完整起止年份时按天数折算，
// 否则查找显式时长短语，都没有则使用默认值
func (p *EntryParser) ExtractDuration(start, end *int, text string) float64 {
	if start != nil && end != nil {
		from := time.Date(*start, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(*end, time.January, 1, 0, 0, 0, 0, time.UTC)
		days := to.Sub(from).Hours() / 24
		return math.Max(1.0, days/p.opts.DaysPerMonth)
	}

	if n, ok := firstNumber(monthsPhraseRegex, text); ok && n > 0 {
		return n
	}
	if n, ok := firstNumber(yearsPhraseRegex, text); ok && n > 0 {
		return n * 12
	}
	if n, ok := firstNumber(weeksPhraseRegex, text); ok && n > 0 {
		return n / p.opts.WeeksPerMonth
	}
	return p.opts.DefaultDurationMonths
}

// ExtractTechnologies 按整词匹配技术词表
func (p *EntryParser) ExtractTechnologies(text string) []string {
	return p.vocab.Match(text)
}

// ExtractLinks 提取URL以及缺少协议的代码仓库引用（统一补全为 https://），去重排序
func ExtractLinks(text string) []string {
	set := make(map[string]struct{})
	for _, u := range urlRegex.FindAllString(text, -1) {
		u = strings.TrimRight(u, urlTrailChars)
		if u != "" {
			set[u] = struct{}{}
		}
	}
	for _, m := range repoRefRegex.FindAllStringSubmatch(text, -1) {
		if strings.HasPrefix(strings.ToLower(m[0]), "http") {
			continue
		}
		ref := strings.TrimRight(m[1], urlTrailChars)
		set["https://"+ref] = struct{}{}
	}

	links := make([]string, 0, len(set))
	for u := range set {
		links = append(links, u)
	}
	sort.Strings(links)
	return links
}

func firstNumber(re *regexp.Regexp, text string) (float64, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return float64(n), true
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
