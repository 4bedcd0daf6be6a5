// Package insights 基于结构化画像生成报告、岗位匹配和候选人排序
package insights

import (
	"math"
	"time"

	"resume-parser-go/internal/types"
)

// 质量评级
const (
	RatingExcellent        = "Excellent"
	RatingVeryGood         = "Very Good"
	RatingGood             = "Good"
	RatingFair             = "Fair"
	RatingNeedsImprovement = "Needs Improvement"
)

// Suggestion 一条画像改进建议
type Suggestion struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

// Summary 报告概要
type Summary struct {
	Completeness    float64 `json:"completeness"`
	Quality         string  `json:"quality"`
	TotalSkills     int     `json:"total_skills"`
	TotalEducation  int     `json:"total_education"`
	ExperienceYears float64 `json:"experience_years"`
	Projects        int     `json:"projects"`
}

// SkillsReport 技能部分
type SkillsReport struct {
	TopSkills  []string            `json:"top_skills"`
	Total      int                 `json:"total"`
	Categories map[string][]string `json:"categories"`
}

// ExperienceReport 经验部分
type ExperienceReport struct {
	Months         int     `json:"months"`
	Years          float64 `json:"years"`
	Interpretation string  `json:"interpretation"`
}

// AchievementsReport 项目部分
type AchievementsReport struct {
	Projects       int    `json:"projects"`
	Interpretation string `json:"interpretation"`
}

// Recommendations 改进建议与后续步骤
type Recommendations struct {
	Score       float64      `json:"score"`
	Rating      string       `json:"rating"`
	Suggestions []Suggestion `json:"suggestions"`
	NextSteps   []string     `json:"next_steps"`
}

// Report 候选人画像报告
type Report struct {
	Summary         Summary            `json:"summary"`
	Skills          SkillsReport       `json:"skills"`
	Experience      ExperienceReport   `json:"experience"`
	Achievements    AchievementsReport `json:"achievements"`
	Recommendations Recommendations    `json:"recommendations"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

const topSkillsLimit = 10

// BuildReport 生成画像报告
func BuildReport(p *types.CandidateProfile) Report {
	return buildReport(p, time.Now().UTC())
}

func buildReport(p *types.CandidateProfile, now time.Time) Report {
	if p == nil {
		p = types.EmptyProfile()
	}
	technical := technicalSkills(p)
	years := round(float64(p.ExperienceMonthsTotal)/12, 1)

	categories := make(map[string][]string)
	for _, c := range append(append([]types.SkillCategory{}, types.TechnicalCategories...), types.CategorySoft) {
		if skills := p.SkillsByCategory(c); len(skills) > 0 {
			categories[string(c)] = skills
		}
	}

	top := technical
	if len(top) > topSkillsLimit {
		top = top[:topSkillsLimit]
	}

	return Report{
		Summary: Summary{
			Completeness:    p.CompletenessScore,
			Quality:         RateQuality(p.CompletenessScore),
			TotalSkills:     len(technical),
			TotalEducation:  len(p.Education),
			ExperienceYears: years,
			Projects:        len(p.Projects),
		},
		Skills: SkillsReport{
			TopSkills:  append([]string{}, top...),
			Total:      len(technical),
			Categories: categories,
		},
		Experience: ExperienceReport{
			Months:         p.ExperienceMonthsTotal,
			Years:          years,
			Interpretation: InterpretExperience(p.ExperienceMonthsTotal),
		},
		Achievements: AchievementsReport{
			Projects:       len(p.Projects),
			Interpretation: InterpretProjects(len(p.Projects)),
		},
		Recommendations: suggest(p, len(technical)),
		GeneratedAt:     now,
	}
}

func suggest(p *types.CandidateProfile, skillCount int) Recommendations {
	rec := Recommendations{
		Score:       p.CompletenessScore,
		Rating:      RateQuality(p.CompletenessScore),
		Suggestions: []Suggestion{},
		NextSteps:   []string{},
	}

	if skillCount < 5 {
		rec.Suggestions = append(rec.Suggestions, Suggestion{
			Type:    "skills",
			Message: "Add more technical skills to improve visibility",
			Action:  "Add at least 10 relevant skills",
		})
	}
	if len(p.Education) == 0 {
		rec.Suggestions = append(rec.Suggestions, Suggestion{
			Type:    "education",
			Message: "Add your education details",
			Action:  "Upload resume with education section",
		})
	}
	if p.ExperienceMonthsTotal == 0 {
		rec.Suggestions = append(rec.Suggestions, Suggestion{
			Type:    "experience",
			Message: "Add your work experience",
			Action:  "Upload resume with experience section",
		})
	}
	if len(p.Projects) == 0 {
		rec.Suggestions = append(rec.Suggestions, Suggestion{
			Type:    "projects",
			Message: "Highlight your projects and achievements",
			Action:  "Add a projects section to your resume",
		})
	}

	score := p.CompletenessScore
	if score < 0.6 {
		rec.NextSteps = append(rec.NextSteps, "Complete basic resume sections")
	}
	if score < 0.8 {
		rec.NextSteps = append(rec.NextSteps, "Add quantifiable metrics to achievements")
	}
	if score < 0.9 {
		rec.NextSteps = append(rec.NextSteps, "Include certifications and awards")
	}
	return rec
}

// RateQuality 按完整度评分给出质量评级
func RateQuality(score float64) string {
	switch {
	case score >= 0.95:
		return RatingExcellent
	case score >= 0.85:
		return RatingVeryGood
	case score >= 0.75:
		return RatingGood
	case score >= 0.60:
		return RatingFair
	}
	return RatingNeedsImprovement
}

// InterpretExperience 按工作年限给出级别
func InterpretExperience(months int) string {
	years := float64(months) / 12
	switch {
	case years < 1:
		return "Entry Level"
	case years < 3:
		return "Junior"
	case years < 5:
		return "Mid-Level"
	case years < 10:
		return "Senior"
	}
	return "Principal/Lead"
}

// InterpretProjects 项目数量描述
func InterpretProjects(count int) string {
	switch {
	case count == 0:
		return "No projects listed"
	case count == 1:
		return "One project listed"
	case count < 5:
		return "Few projects highlighted"
	}
	return "Multiple projects showcased"
}

func technicalSkills(p *types.CandidateProfile) []string {
	var out []string
	for _, c := range types.TechnicalCategories {
		out = append(out, p.SkillsByCategory(c)...)
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
