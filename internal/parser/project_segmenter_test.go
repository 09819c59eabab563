package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleMarkerStrategy(t *testing.T) {
	region := strings.Join([]string{
		"Intro line that is not a project",
		"AMJ Academy (Freelance) | 2025",
		"• Integrated Supabase (Client) auth",
		"• Tech: React, Node.js",
		"",
		"Hani Industries (Contract) 2026",
		"• Built an ERP",
		"• Tech: Vue",
		"Tiny (Personal)",
		"only one line",
	}, "\n")

	blocks := TitleMarkerStrategy(3)(region)
	require.Len(t, blocks, 2, "不足3行的块应被丢弃")

	assert.True(t, strings.HasPrefix(blocks[0], "AMJ Academy (Freelance) | 2025"))
	assert.Contains(t, blocks[0], "Integrated Supabase (Client) auth", "以动作前缀开头的行不是标题")
	assert.NotContains(t, blocks[0], "Intro line", "第一个标题之前的内容应被忽略")
	assert.True(t, strings.HasPrefix(blocks[1], "Hani Industries (Contract) 2026"))
	assert.NotContains(t, blocks[1], "Tiny")
}

func TestIsTitleLine(t *testing.T) {
	testCases := []struct {
		line     string
		expected bool
	}{
		{"Dishy (Personal) | 2025", true},
		{"Portfolio site ( side project )", true},
		{"ML course work (Course)", true},
		{"Developed dashboards (Client)", false},
		{"• Integrated Supabase (PostgreSQL) (Client)", false},
		{"Ledger App (Personal)", true},
		{"tech: react (personal)", false},
		{"Acme Corp 2024", false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, isTitleLine(tc.line), tc.line)
	}
}

func TestKeywordSpanStrategy(t *testing.T) {
	prefix := strings.Repeat("x", 150)
	suffix := strings.Repeat("y", 300)
	region := prefix + " Developed a booking system " + suffix

	blocks := KeywordSpanStrategy(100, 200)(region)
	require.Len(t, blocks, 1)

	block := blocks[0]
	assert.Contains(t, block, "Developed a booking system")
	assert.Equal(t, strings.Repeat("x", 99)+" ", block[:100], "匹配前取100个字符")
	assert.Equal(t, 100+len("Developed a booking system")+200, len(block))
}

func TestKeywordSpanStrategy_ClampsToRegion(t *testing.T) {
	region := "Built an API gateway"
	blocks := KeywordSpanStrategy(100, 200)(region)
	require.Len(t, blocks, 1)
	assert.Equal(t, region, blocks[0])
}

func TestTechLabelStrategy(t *testing.T) {
	region := strings.Join([]string{
		"Alpha store for a bakery",
		"Tech: Django, PostgreSQL",
		"Beta analytics dashboard",
		"  • Technologies Used: React, D3",
		"trailing notes",
	}, "\n")

	blocks := TechLabelStrategy(200)(region)
	require.Len(t, blocks, 2)
	assert.Equal(t, "Alpha store for a bakery\nTech: Django, PostgreSQL", blocks[0])
	assert.Equal(t, "Beta analytics dashboard\n  • Technologies Used: React, D3", blocks[1])
}

func TestTechLabelStrategy_LookaheadCap(t *testing.T) {
	region := "Gamma\nTech:" + strings.Repeat("z", 500)
	blocks := TechLabelStrategy(200)(region)
	require.Len(t, blocks, 1)
	assert.Equal(t, len("Gamma\nTech:")+200, len(blocks[0]))
}

func TestDeduplicateBlocks(t *testing.T) {
	blocks := []string{
		"Shop Platform (Freelance)\nline",
		"shop platform (freelance) v2\nline",
		"Platform\nline",
		"Blog Engine (Personal)\nline",
		"Shop Platform (Freelance)\nother",
	}

	deduped := DeduplicateBlocks(blocks, 100)
	assert.Equal(t, []string{
		"Shop Platform (Freelance)\nline",
		"Blog Engine (Personal)\nline",
	}, deduped)

	// 幂等
	assert.Equal(t, deduped, DeduplicateBlocks(deduped, 100))
}

func TestProjectSegmenter_StopsAtMinimumCandidates(t *testing.T) {
	region := strings.Join([]string{
		"One (Freelance) 2024",
		"Developed a booking system for a clinic",
		"Tech: Go",
		"Two (Personal) 2025",
		"Created a recipe app for friends",
		"Tech: Python",
		"Three (Client) 2025",
		"Implemented a payments api",
		"Tech: Java",
	}, "\n")

	blocks := NewProjectSegmenter(testOptions()).Segment(region)
	require.Len(t, blocks, 3, "标题策略已满足阈值，后续策略不应执行")
	assert.True(t, strings.HasPrefix(blocks[0], "One (Freelance)"))
	assert.True(t, strings.HasPrefix(blocks[2], "Three (Client)"))
}

func TestProjectSegmenter_FallsBackToTechLabels(t *testing.T) {
	region := strings.Join([]string{
		"Inventory Tracker for retail",
		"Tech: Python, Flask",
		"Chat service for a clinic",
		"Tech: Go, Redis",
	}, "\n")

	blocks := NewProjectSegmenter(testOptions()).Segment(region)
	require.Len(t, blocks, 2)
	assert.True(t, strings.HasPrefix(blocks[0], "Inventory Tracker"))
	assert.True(t, strings.HasPrefix(blocks[1], "Chat service"))
}

func TestProjectSegmenter_DropsNoiseBlocks(t *testing.T) {
	region := "x\nTech: Go"
	blocks := NewProjectSegmenter(testOptions()).Segment(region)
	assert.Empty(t, blocks)
}
