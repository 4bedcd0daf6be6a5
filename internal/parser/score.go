package parser

import (
	"math"
	"strings"

	"resume-parser-go/internal/taxonomy"
	"resume-parser-go/internal/types"
)

const (
	scoreWeight        = 0.25
	skillTarget        = 10.0
	experienceTarget   = 120.0 // 月
	projectTarget      = 5.0
	minIndicatorLength = 10
)

// CompletenessScore 四项各占0.25：技术技能数、是否有学历、经历月数、项目数。
// 项目数取项目条目数与项目关键词行数中的较大值。
func CompletenessScore(p *types.CandidateProfile, projectIndicators int) float64 {
	if p == nil {
		return 0
	}
	skills := math.Min(float64(p.TechnicalSkillCount())/skillTarget, 1)

	edu := 0.0
	if len(p.Education) > 0 {
		edu = 1
	}

	exp := math.Min(math.Max(float64(p.ExperienceMonthsTotal), 0)/experienceTarget, 1)

	projects := len(p.Projects)
	if projectIndicators > projects {
		projects = projectIndicators
	}
	proj := math.Min(float64(projects)/projectTarget, 1)

	score := scoreWeight * (skills + edu + exp + proj)
	score = math.Round(score*100) / 100
	return math.Max(0, math.Min(1, score))
}

// CountProjectIndicators 统计包含项目关键词（github、built、developed 等）的行数。
// 有 projects 章节时只看该章节，否则看全文。
func CountProjectIndicators(doc *Document, tax *taxonomy.Taxonomy) int {
	lines, ok := doc.Section(types.SectionProjects)
	if !ok {
		lines = doc.Lines
	}
	count := 0
	for _, line := range lines {
		if len(line) <= minIndicatorLength {
			continue
		}
		lower := strings.ToLower(line)
		for _, ind := range tax.ProjectIndicators {
			if strings.Contains(lower, ind) {
				count++
				break
			}
		}
	}
	return count
}
