package types

// FeatureCount 特征向量的固定长度
const FeatureCount = 6

// ProjectRecord 从单个项目文本块解析出的项目记录
// 每次提取调用内创建，创建后不再修改
type ProjectRecord struct {
	Name           string   `json:"name"`                 // 项目名称（首个非空行，最长100字符）
	StartYear      *int     `json:"start_year,omitempty"` // 开始年份，未解析时为nil
	EndYear        *int     `json:"end_year,omitempty"`   // 结束年份，未解析时为nil
	DurationMonths float64  `json:"duration_months"`      // 持续时间（月），始终大于0
	Technologies   []string `json:"technologies"`         // 规范化后的技术词（已去重、排序）
	Links          []string `json:"links"`                // 链接（已去重、排序）
	RawText        string   `json:"-"`                    // 原始文本块，不参与序列化
}

// HasYears 是否至少解析出一个年份
func (p *ProjectRecord) HasYears() bool {
	return p.StartYear != nil || p.EndYear != nil
}

// HasDateRange 开始和结束年份是否都已解析
func (p *ProjectRecord) HasDateRange() bool {
	return p.StartYear != nil && p.EndYear != nil
}

// IndicatorRecord 由全部项目记录聚合得到的六个项目指标
type IndicatorRecord struct {
	TotalProjects         int     `json:"total_projects"`
	TotalYears            float64 `json:"total_years"` // 年份跨度（max-min），不是求和
	AverageDurationMonths float64 `json:"average_project_duration_months"`
	OverlappingCount      int     `json:"overlapping_projects_count"`
	TechnologyConsistency float64 `json:"technology_consistency_score"`
	LinkRatio             float64 `json:"project_to_link_ratio"`
	// YearsMissing 仅当存在项目但没有任何项目解析出年份时为true
	YearsMissing bool `json:"years_missing"`
}

// FeatureVector 下游信任模型使用的固定顺序特征向量:
// [total_projects, total_years, average_duration_months, overlapping_count, technology_consistency, link_ratio]
type FeatureVector [FeatureCount]float32

// ExtractionResult 一次提取调用的完整输出
type ExtractionResult struct {
	Indicators    IndicatorRecord `json:"indicators"`
	FeatureVector FeatureVector   `json:"feature_vector"`
	Projects      []ProjectRecord `json:"projects_details"`
}
