package insights

import (
	"sort"
	"strings"

	"resume-parser-go/internal/types"
)

// Candidate 一份已解析的简历
type Candidate struct {
	Name    string                  `json:"filename"`
	Profile *types.CandidateProfile `json:"profile"`
}

// RankedCandidate 排名后的候选人
type RankedCandidate struct {
	Rank             int                     `json:"rank"`
	Name             string                  `json:"filename"`
	Score            float64                 `json:"score"`
	ExperienceMonths int                     `json:"experience_months"`
	TechnicalSkills  int                     `json:"technical_skills_count"`
	Quality          string                  `json:"quality"`
	Profile          *types.CandidateProfile `json:"profile"`
}

// Criteria 候选人筛选条件，零值表示不限
type Criteria struct {
	RequiredSkills      []string `json:"required_skills"`
	MinExperienceMonths int      `json:"min_experience_months"`
	MinCompleteness     float64  `json:"min_completeness"`
}

// RankCandidates 按完整度降序排名，同分按名称升序，名次从1开始
func RankCandidates(cands []Candidate) []RankedCandidate {
	out := make([]RankedCandidate, 0, len(cands))
	for _, c := range cands {
		p := c.Profile
		if p == nil {
			p = types.EmptyProfile()
		}
		out = append(out, RankedCandidate{
			Name:             c.Name,
			Score:            p.CompletenessScore,
			ExperienceMonths: p.ExperienceMonthsTotal,
			TechnicalSkills:  p.TechnicalSkillCount(),
			Quality:          RateQuality(p.CompletenessScore),
			Profile:          p,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// FilterCandidates 返回满足全部条件的候选人，保持输入顺序。
// 必需技能按小写子串匹配任一分类中的技能。
func FilterCandidates(cands []Candidate, c Criteria) []Candidate {
	out := make([]Candidate, 0, len(cands))
	for _, cand := range cands {
		if cand.Profile == nil {
			continue
		}
		if cand.Profile.ExperienceMonthsTotal < c.MinExperienceMonths {
			continue
		}
		if cand.Profile.CompletenessScore < c.MinCompleteness {
			continue
		}
		if !hasAllSkills(cand.Profile, c.RequiredSkills) {
			continue
		}
		out = append(out, cand)
	}
	return out
}

func hasAllSkills(p *types.CandidateProfile, required []string) bool {
	skills := p.AllSkills()
	for _, r := range required {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		found := false
		for _, s := range skills {
			if strings.Contains(strings.ToLower(s), r) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ParseSkillList 解析逗号分隔的技能列表
func ParseSkillList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
