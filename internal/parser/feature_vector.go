package parser

import "freelancer-trust/internal/types"

// BuildFeatureVector 按固定顺序把指标投影为特征向量
func BuildFeatureVector(ind types.IndicatorRecord) types.FeatureVector {
	return types.FeatureVector{
		float32(ind.TotalProjects),
		float32(ind.TotalYears),
		float32(ind.AverageDurationMonths),
		float32(ind.OverlappingCount),
		float32(ind.TechnologyConsistency),
		float32(ind.LinkRatio),
	}
}
