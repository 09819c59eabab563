package parser

import (
	"freelancer-trust/internal/types"

	"github.com/rs/zerolog"
)

// ProjectExtractor 项目指标提取流水线:
// 原始文本 → 章节区域 → 项目块 → 项目记录 → 指标 → 特征向量。
// 只持有编译好的正则与参数，构造后不再修改，可在多个 goroutine 间共享。
type ProjectExtractor struct {
	opts       Options
	vocab      *TechVocabulary
	locator    *SectionLocator
	segmenter  *ProjectSegmenter
	parser     *EntryParser
	aggregator *IndicatorAggregator
	logger     zerolog.Logger
}

// NewProjectExtractor 创建提取器
func NewProjectExtractor(opts ...ExtractorOption) *ProjectExtractor {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	vocab := DefaultTechVocabulary()
	return &ProjectExtractor{
		opts:       o,
		vocab:      vocab,
		locator:    NewSectionLocator(o.Logger),
		segmenter:  NewProjectSegmenter(o),
		parser:     NewEntryParser(o, vocab),
		aggregator: NewIndicatorAggregator(o),
		logger:     o.Logger,
	}
}

// Fingerprint 返回当前参数下提取结果的版本摘要。参数或年份上限变化时摘要随之变化，
// 结果缓存按它区分。
func (e *ProjectExtractor) Fingerprint() string {
	return e.opts.fingerprint(e.vocab.Size())
}

// Extract 对一份简历文本执行完整提取。任何输入都返回完整填充的结果，不会失败。
func (e *ProjectExtractor) Extract(text string) *types.ExtractionResult {
	region := e.locator.LocateProjectSection(text)
	blocks := e.segmenter.Segment(region)

	projects := make([]types.ProjectRecord, 0, len(blocks))
	for _, block := range blocks {
		if record := e.parser.ParseEntry(block); record != nil {
			projects = append(projects, *record)
		}
	}

	indicators := e.aggregator.Aggregate(projects)
	if indicators.YearsMissing {
		e.logger.Warn().Int("total_projects", indicators.TotalProjects).Msg("项目中未找到任何年份")
	}
	e.logger.Debug().
		Int("total_projects", indicators.TotalProjects).
		Float64("total_years", indicators.TotalYears).
		Float64("avg_duration_months", indicators.AverageDurationMonths).
		Int("overlapping", indicators.OverlappingCount).
		Float64("tech_consistency", indicators.TechnologyConsistency).
		Float64("link_ratio", indicators.LinkRatio).
		Msg("项目指标提取完成")

	return &types.ExtractionResult{
		Indicators:    indicators,
		FeatureVector: BuildFeatureVector(indicators),
		Projects:      projects,
	}
}
