package parser

import (
	"fmt"
	"time"

	"freelancer-trust/internal/config"
	"freelancer-trust/internal/logger"
	"freelancer-trust/pkg/utils"

	"github.com/rs/zerolog"
)

// OverlapPolicy 项目时间重叠的边界判定策略
type OverlapPolicy string

const (
	// OverlapInclusive 边界相接也算重叠 (start1 <= end2 && start2 <= end1)
	OverlapInclusive OverlapPolicy = "inclusive"
	// OverlapExclusive 边界相接不算重叠 (start1 < end2 && start2 < end1)
	OverlapExclusive OverlapPolicy = "exclusive"
)

// ConsistencyWeights 技术一致性评分公式中的经验常数
type ConsistencyWeights struct {
	ReuseWeight            float64 // reuse 分量权重
	FocusWeight            float64 // focus 分量权重
	ReuseProjectFactor     float64 // reuse 归一化分母中的项目系数
	ReuseFloor             float64 // reuse 归一化分母下限
	ExpectedTechPerProject float64 // 每个项目的期望技术数
	NeutralScore           float64 // 有项目但未识别出任何技术时的中性分
}

// Options 项目指标提取的全部可调参数
type Options struct {
	MinCandidateBlocks    int // 达到该候选块数量后跳过后续分段策略
	MinTitleBlockLines    int // 标题策略中块的最少行数
	MinBlockChars         int // 去除首尾空白后短于该长度的块视为噪声
	MaxNameLength         int // 项目名称最大长度（字符）
	KeywordWindowBefore   int // 关键词策略：匹配前取的字符数
	KeywordWindowAfter    int // 关键词策略：匹配后取的字符数
	TechLabelLookahead    int // 技术标签策略：向后查找换行的最大字符数
	DefaultDurationMonths float64
	DaysPerMonth          float64
	WeeksPerMonth         float64
	MinProjectYear        int
	OverlapPolicy         OverlapPolicy
	Consistency           ConsistencyWeights

	// Now 返回当前时间，用于确定年份上限 (current_year + 1)
	Now func() time.Time
	// Logger 调试日志
	Logger zerolog.Logger
}

// ExtractorOption 提取器选项函数
type ExtractorOption func(*Options)

// DefaultOptions 返回默认参数
func DefaultOptions() Options {
	return Options{
		MinCandidateBlocks:    3,
		MinTitleBlockLines:    3,
		MinBlockChars:         20,
		MaxNameLength:         100,
		KeywordWindowBefore:   100,
		KeywordWindowAfter:    200,
		TechLabelLookahead:    200,
		DefaultDurationMonths: 3.0,
		DaysPerMonth:          30.44,
		WeeksPerMonth:         4.33,
		MinProjectYear:        2020,
		OverlapPolicy:         OverlapInclusive,
		Consistency: ConsistencyWeights{
			ReuseWeight:            0.6,
			FocusWeight:            0.4,
			ReuseProjectFactor:     0.3,
			ReuseFloor:             2,
			ExpectedTechPerProject: 3,
			NeutralScore:           0.5,
		},
		Now:    time.Now,
		Logger: logger.Logger,
	}
}

// WithExtractionConfig 使用配置文件中的提取参数。配置校验失败时保留原有参数并记录告警。
func WithExtractionConfig(cfg config.ExtractionConfig) ExtractorOption {
	return func(o *Options) {
		if err := cfg.Validate(); err != nil {
			o.Logger.Warn().Err(err).Msg("提取参数无效，使用默认参数")
			return
		}
		o.MinCandidateBlocks = cfg.MinCandidateBlocks
		o.MinTitleBlockLines = cfg.MinTitleBlockLines
		o.MinBlockChars = cfg.MinBlockChars
		o.MaxNameLength = cfg.MaxNameLength
		o.KeywordWindowBefore = cfg.KeywordWindowBefore
		o.KeywordWindowAfter = cfg.KeywordWindowAfter
		o.TechLabelLookahead = cfg.TechLabelLookahead
		o.DefaultDurationMonths = cfg.DefaultDurationMonths
		o.DaysPerMonth = cfg.DaysPerMonth
		o.WeeksPerMonth = cfg.WeeksPerMonth
		o.MinProjectYear = cfg.MinProjectYear
		o.OverlapPolicy = OverlapPolicy(cfg.OverlapPolicy)
		o.Consistency = ConsistencyWeights{
			ReuseWeight:            cfg.Consistency.ReuseWeight,
			FocusWeight:            cfg.Consistency.FocusWeight,
			ReuseProjectFactor:     cfg.Consistency.ReuseProjectFactor,
			ReuseFloor:             cfg.Consistency.ReuseFloor,
			ExpectedTechPerProject: cfg.Consistency.ExpectedTechPerProject,
			NeutralScore:           cfg.Consistency.NeutralScore,
		}
	}
}

// WithClock 设置时钟（测试中固定当前年份）
func WithClock(now func() time.Time) ExtractorOption {
	return func(o *Options) {
		if now != nil {
			o.Now = now
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(l zerolog.Logger) ExtractorOption {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithOverlapPolicy 设置重叠边界策略
func WithOverlapPolicy(p OverlapPolicy) ExtractorOption {
	return func(o *Options) {
		o.OverlapPolicy = p
	}
}

// maxProjectYear 可接受的最大年份: 当前年份+1
func (o Options) maxProjectYear() int {
	return o.Now().Year() + 1
}

// fingerprint 影响提取结果的全部参数摘要，包括当前的年份上限
func (o Options) fingerprint(vocabSize int) string {
	c := o.Consistency
	raw := fmt.Sprintf("%d|%d|%d|%d|%d|%d|%d|%g|%g|%g|%d|%d|%s|%g|%g|%g|%g|%g|%g|%d",
		o.MinCandidateBlocks, o.MinTitleBlockLines, o.MinBlockChars, o.MaxNameLength,
		o.KeywordWindowBefore, o.KeywordWindowAfter, o.TechLabelLookahead,
		o.DefaultDurationMonths, o.DaysPerMonth, o.WeeksPerMonth,
		o.MinProjectYear, o.maxProjectYear(), o.OverlapPolicy,
		c.ReuseWeight, c.FocusWeight, c.ReuseProjectFactor, c.ReuseFloor, c.ExpectedTechPerProject, c.NeutralScore,
		vocabSize,
	)
	return utils.CalculateMD5([]byte(raw))
}
