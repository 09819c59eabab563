package parser

import (
	"math"

	"freelancer-trust/internal/types"
)

// IndicatorAggregator 把全部项目记录归约为一条指标记录
type IndicatorAggregator struct {
	policy  OverlapPolicy
	weights ConsistencyWeights
}

// NewIndicatorAggregator 创建指标聚合器
func NewIndicatorAggregator(opts Options) *IndicatorAggregator {
	return &IndicatorAggregator{policy: opts.OverlapPolicy, weights: opts.Consistency}
}

// Aggregate 计算六项指标。没有项目时所有指标为零值且 YearsMissing 为 false。
func (a *IndicatorAggregator) Aggregate(records []types.ProjectRecord) types.IndicatorRecord {
	totalYears, anyYear := TotalYears(records)
	return types.IndicatorRecord{
		TotalProjects:         len(records),
		TotalYears:            roundTo(totalYears, 2),
		AverageDurationMonths: roundTo(AverageDuration(records), 2),
		OverlappingCount:      CountOverlapping(records, a.policy),
		TechnologyConsistency: roundTo(TechnologyConsistency(records, a.weights), 3),
		LinkRatio:             roundTo(LinkRatio(records), 3),
		YearsMissing:          len(records) > 0 && !anyYear,
	}
}

// TotalYears 所有已解析年份的跨度（max-min），不是各项目年份之和。
// 只有一个不同年份时返回 1.0；没有年份时返回 0.0，第二个返回值为 false。
func TotalYears(records []types.ProjectRecord) (float64, bool) {
	minYear, maxYear := math.MaxInt, math.MinInt
	found := false
	observe := func(y *int) {
		if y == nil {
			return
		}
		found = true
		minYear = min(minYear, *y)
		maxYear = max(maxYear, *y)
	}
	for i := range records {
		if !records[i].HasYears() {
			continue
		}
		observe(records[i].StartYear)
		observe(records[i].EndYear)
	}

	if !found {
		return 0.0, false
	}
	if maxYear == minYear {
		return 1.0, true
	}
	return float64(maxYear - minYear), true
}

// AverageDuration 平均项目时长（月）
func AverageDuration(records []types.ProjectRecord) float64 {
	if len(records) == 0 {
		return 0.0
	}
	var sum float64
	for i := range records {
		sum += records[i].DurationMonths
	}
	return sum / float64(len(records))
}

// CountOverlapping 统计起止年份都已解析的项目两两之间时间重叠的对数，
// 缺少任一年份的项目不参与比较
func CountOverlapping(records []types.ProjectRecord, policy OverlapPolicy) int {
	dated := make([]types.ProjectRecord, 0, len(records))
	for i := range records {
		if records[i].HasDateRange() {
			dated = append(dated, records[i])
		}
	}

	count := 0
	for i := 0; i < len(dated); i++ {
		for j := i + 1; j < len(dated); j++ {
			if overlaps(dated[i], dated[j], policy) {
				count++
			}
		}
	}
	return count
}

func overlaps(a, b types.ProjectRecord, policy OverlapPolicy) bool {
	s1, e1 := *a.StartYear, *a.EndYear
	s2, e2 := *b.StartYear, *b.EndYear
	if policy == OverlapExclusive {
		return s1 < e2 && s2 < e1
	}
	return s1 <= e2 && s2 <= e1
}

// TechnologyConsistency 技术一致性评分，结果在 [0,1] 内:
//
//	reuse = min(1, (M/U) / max(floor, factor*P))
//	focus = 1 - min(1, max(0, (U - k*P) / (k*P)))
//	score = clamp(wr*reuse + wf*focus, 0, 1)
//
// P=0 时为 0；P>0 但未识别出任何技术时为中性分。
func TechnologyConsistency(records []types.ProjectRecord, w ConsistencyWeights) float64 {
	p := float64(len(records))
	if p == 0 {
		return 0.0
	}

	counts := make(map[string]int)
	mentions := 0
	for i := range records {
		for _, tech := range records[i].Technologies {
			counts[tech]++
			mentions++
		}
	}
	u := float64(len(counts))
	if u == 0 {
		return w.NeutralScore
	}

	reuse := math.Min(1, (float64(mentions)/u)/math.Max(w.ReuseFloor, w.ReuseProjectFactor*p))

	expected := w.ExpectedTechPerProject * p
	focus := 1.0
	if expected > 0 {
		focus = 1 - math.Min(1, math.Max(0, (u-expected)/expected))
	}

	return clamp01(w.ReuseWeight*reuse + w.FocusWeight*focus)
}

// LinkRatio 至少包含一个链接的项目所占比例
func LinkRatio(records []types.ProjectRecord) float64 {
	if len(records) == 0 {
		return 0.0
	}
	withLinks := 0
	for i := range records {
		if len(records[i].Links) > 0 {
			withLinks++
		}
	}
	return float64(withLinks) / float64(len(records))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
