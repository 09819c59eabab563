package parser

import (
	"strings"
	"sync"
	"testing"
	"time"

	"freelancer-trust/internal/config"
	"freelancer-trust/internal/types"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threeProjectResume = `John Doe
Full Stack Developer

Projects
AMJ Academy (Freelance) | 2025
• Developed a learning management system for an academy
• Tech: React, Node.js, Express, PostgreSQL
Hani Industries (Freelance) | 202 6
• Built an inventory platform with role based access
• Tech: React, Node.js, Express, MongoDB
Dishy (Personal) | 2025
• Recipe sharing site with user accounts
• Tech: React, CSS, MongoDB

Education
BSc Computer Science, 2019
`

func newTestExtractor(opts ...ExtractorOption) *ProjectExtractor {
	base := []ExtractorOption{WithClock(fixedNow), WithLogger(zerolog.Nop())}
	return NewProjectExtractor(append(base, opts...)...)
}

func TestExtract_ThreeMarkedProjects(t *testing.T) {
	result := newTestExtractor().Extract(threeProjectResume)
	require.NotNil(t, result)

	ind := result.Indicators
	assert.Equal(t, 3, ind.TotalProjects)
	assert.Equal(t, 1.0, ind.TotalYears, "年份跨度 2026-2025，不能是求和")
	assert.Equal(t, 3.0, ind.AverageDurationMonths)
	assert.Equal(t, 0, ind.OverlappingCount, "没有完整起止年份的项目不参与重叠比较")
	// U=6, M=11, P=3: reuse=(11/6)/2, focus=1
	assert.Equal(t, 0.95, ind.TechnologyConsistency)
	assert.Equal(t, 0.0, ind.LinkRatio)
	assert.False(t, ind.YearsMissing)

	require.Len(t, result.Projects, 3)
	assert.Equal(t, "AMJ Academy (Freelance) | 2025", result.Projects[0].Name)
	assert.Equal(t, 2026, *result.Projects[1].EndYear, "拆开的年份应被合并")
	assert.Equal(t, []string{"css", "mongodb", "react"}, result.Projects[2].Technologies)
	for _, p := range result.Projects {
		assert.NotContains(t, p.RawText, "Education")
	}

	assert.Equal(t, types.FeatureVector{3, 1, 3, 0, 0.95, 0}, result.FeatureVector)
}

func TestExtract_SingleProjectWithoutYears(t *testing.T) {
	text := "Projects\nInventory Tracker (Personal)\n• Built an inventory dashboard for a small shop over 3 months.\n• Tech: Python, Flask, SQLite\n"
	result := newTestExtractor().Extract(text)

	ind := result.Indicators
	assert.Equal(t, 1, ind.TotalProjects)
	require.Len(t, result.Projects, 1)
	assert.Equal(t, 3.0, result.Projects[0].DurationMonths, "时长来自显式短语")
	assert.True(t, ind.YearsMissing)
	assert.Equal(t, 0.0, ind.TotalYears)
	assert.Equal(t, 0.7, ind.TechnologyConsistency)
}

func TestExtract_NoProjects(t *testing.T) {
	extractor := newTestExtractor()

	for _, text := range []string{"", "   \n\n  ", "Jane Roe\nEducation\nBSc 2019", "short"} {
		result := extractor.Extract(text)
		require.NotNil(t, result)

		assert.Equal(t, types.IndicatorRecord{}, result.Indicators, "input: %q", text)
		assert.False(t, result.Indicators.YearsMissing)
		assert.Len(t, result.FeatureVector, types.FeatureCount)
		assert.Equal(t, types.FeatureVector{}, result.FeatureVector)
		assert.Empty(t, result.Projects)
	}
}

func TestExtract_DatedRangesAndLinks(t *testing.T) {
	text := strings.Join([]string{
		"Experience",
		"Clinic Booking (Client) 2022 - 2024",
		"• Appointment scheduling for a dental clinic",
		"• Repo: github.com/jdoe/clinic",
		"Fleet Tracker (Contract) 2024 - 2025",
		"• GPS dashboards for delivery vans",
		"• Tech: Go, Redis, Docker",
		"Side Blog (Personal) 2023",
		"• Markdown blog engine",
		"• Live at https://blog.jdoe.dev",
		"Skills",
		"Go, Python",
	}, "\n")

	result := newTestExtractor().Extract(text)
	ind := result.Indicators

	assert.Equal(t, 3, ind.TotalProjects)
	assert.Equal(t, 3.0, ind.TotalYears)
	assert.Equal(t, 1, ind.OverlappingCount, "2022-2024 与 2024-2025 边界相接")
	assert.Equal(t, 0.667, ind.LinkRatio)

	exclusive := newTestExtractor(WithOverlapPolicy(OverlapExclusive)).Extract(text)
	assert.Equal(t, 0, exclusive.Indicators.OverlappingCount)
}

func TestExtract_WithExtractionConfig(t *testing.T) {
	cfg := config.DefaultExtractionConfig()
	cfg.DefaultDurationMonths = 6
	result := newTestExtractor(WithExtractionConfig(cfg)).Extract(threeProjectResume)
	assert.Equal(t, 6.0, result.Indicators.AverageDurationMonths)
}

func TestExtract_InvalidExtractionConfigKeepsDefaults(t *testing.T) {
	o := testOptions()
	WithExtractionConfig(config.ExtractionConfig{})(&o)
	assert.Equal(t, 3, o.MinCandidateBlocks)
	assert.Equal(t, OverlapInclusive, o.OverlapPolicy)

	result := newTestExtractor(WithExtractionConfig(config.ExtractionConfig{})).Extract(threeProjectResume)
	assert.Equal(t, 3, result.Indicators.TotalProjects)
}

func TestFingerprint(t *testing.T) {
	base := newTestExtractor().Fingerprint()
	assert.Len(t, base, 32)
	assert.Equal(t, base, newTestExtractor().Fingerprint(), "相同参数摘要相同")

	assert.NotEqual(t, base, newTestExtractor(WithOverlapPolicy(OverlapExclusive)).Fingerprint())

	cfg := config.DefaultExtractionConfig()
	cfg.Consistency.NeutralScore = 0.4
	assert.NotEqual(t, base, newTestExtractor(WithExtractionConfig(cfg)).Fingerprint())

	nextYear := func() time.Time { return fixedNow().AddDate(1, 0, 0) }
	assert.NotEqual(t, base, newTestExtractor(WithClock(nextYear)).Fingerprint(), "年份上限变化后摘要应变化")
}

func TestExtract_ConcurrentUse(t *testing.T) {
	extractor := newTestExtractor()
	expected := extractor.Extract(threeProjectResume)

	var wg sync.WaitGroup
	results := make([]*types.ExtractionResult, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = extractor.Extract(threeProjectResume)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, expected, r)
	}
}
