package parser

import (
	"regexp"
	"sort"
	"strings"
)

// TechCategory 技术词表分类
type TechCategory string

const (
	TechLanguages  TechCategory = "languages"
	TechFrameworks TechCategory = "frameworks"
	TechDatabases  TechCategory = "databases"
	TechTools      TechCategory = "tools"
)

// defaultTechKeywords 内置技术词表，全部为规范化小写形式
var defaultTechKeywords = map[TechCategory][]string{
	TechLanguages: {
		"python", "java", "javascript", "typescript", "c++", "c#", "ruby", "php",
		"go", "rust", "swift", "kotlin", "scala", "r", "matlab", "perl", "shell",
		"bash", "powershell", "sql", "html", "css",
	},
	TechFrameworks: {
		"react", "angular", "vue", "django", "flask", "fastapi", "spring", "express",
		"nodejs", "node.js", "laravel", "rails", "asp.net", ".net", "tensorflow",
		"pytorch", "keras", "scikit-learn", "pandas", "numpy", "jquery", "bootstrap",
		"tailwind", "next.js", "nuxt", "gatsby",
	},
	TechDatabases: {
		"mysql", "postgresql", "mongodb", "redis", "sqlite", "oracle", "sql server",
		"dynamodb", "cassandra", "elasticsearch", "firebase", "mariadb",
	},
	TechTools: {
		"docker", "kubernetes", "git", "jenkins", "aws", "azure", "gcp", "heroku",
		"nginx", "apache", "linux", "unix", "jira", "confluence", "slack",
	},
}

type techTerm struct {
	canonical string
	pattern   *regexp.Regexp
}

// TechVocabulary 编译后的技术词表，只读，可并发使用
type TechVocabulary struct {
	terms []techTerm
}

// NewTechVocabulary 编译词表。匹配按整词进行：词前后不能紧邻字母、数字或下划线，
// 因此 "go" 不会命中 "google"，"java" 不会命中 "javascript"。
func NewTechVocabulary(keywords map[TechCategory][]string) *TechVocabulary {
	v := &TechVocabulary{}
	seen := make(map[string]bool)
	categories := make([]string, 0, len(keywords))
	for c := range keywords {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)

	for _, c := range categories {
		for _, kw := range keywords[TechCategory(c)] {
			canonical := strings.ToLower(strings.TrimSpace(kw))
			if canonical == "" || seen[canonical] {
				continue
			}
			seen[canonical] = true
			v.terms = append(v.terms, techTerm{
				canonical: canonical,
				pattern:   regexp.MustCompile(`(?:^|[^a-z0-9_])` + regexp.QuoteMeta(canonical) + `(?:$|[^a-z0-9_])`),
			})
		}
	}
	return v
}

// DefaultTechVocabulary 内置词表
func DefaultTechVocabulary() *TechVocabulary {
	return NewTechVocabulary(defaultTechKeywords)
}

// Match 返回文本中出现的规范化技术词（去重、排序）
func (v *TechVocabulary) Match(text string) []string {
	lower := strings.ToLower(text)
	found := make([]string, 0)
	for _, term := range v.terms {
		if term.pattern.MatchString(lower) {
			found = append(found, term.canonical)
		}
	}
	sort.Strings(found)
	return found
}

// Size 词表中的词条数量
func (v *TechVocabulary) Size() int {
	return len(v.terms)
}
