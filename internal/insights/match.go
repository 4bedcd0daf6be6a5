package insights

import (
	"math"
	"sort"
	"strings"

	"resume-parser-go/internal/types"
)

// 匹配权重
const (
	skillsWeight     = 0.5
	experienceWeight = 0.3
	degreeWeight     = 0.2
)

// JobRequirements 岗位要求
type JobRequirements struct {
	RequiredSkills      []string `json:"required_skills"`
	MinExperienceMonths int      `json:"min_experience_months"`
	RequiredDegree      string   `json:"required_degree,omitempty"`
}

// MatchDetails 各维度的匹配情况
type MatchDetails struct {
	SkillsMatch     float64  `json:"skills_match"`
	ExperienceMatch float64  `json:"experience_match"`
	EducationMatch  float64  `json:"education_match"`
	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
	Recommendation  string   `json:"recommendation"`
}

// MatchResult 画像与岗位的匹配结果
type MatchResult struct {
	MatchScore float64      `json:"match_score"`
	Details    MatchDetails `json:"details"`
}

// MatchJob 计算画像与岗位要求的匹配度。
// 技能按小写精确比较，学位按子串比较。
func MatchJob(p *types.CandidateProfile, job JobRequirements) MatchResult {
	if p == nil {
		p = types.EmptyProfile()
	}
	details := MatchDetails{MatchedSkills: []string{}, MissingSkills: []string{}}
	score := 0.0

	candidate := make(map[string]bool)
	for _, s := range p.AllSkills() {
		candidate[strings.ToLower(s)] = true
	}
	required := make(map[string]bool)
	for _, s := range job.RequiredSkills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			required[s] = true
		}
	}
	for s := range required {
		if candidate[s] {
			details.MatchedSkills = append(details.MatchedSkills, s)
		} else {
			details.MissingSkills = append(details.MissingSkills, s)
		}
	}
	sort.Strings(details.MatchedSkills)
	sort.Strings(details.MissingSkills)
	if len(required) > 0 {
		details.SkillsMatch = float64(len(details.MatchedSkills)) / float64(len(required))
		score += details.SkillsMatch * skillsWeight
	}

	if p.ExperienceMonthsTotal >= job.MinExperienceMonths {
		details.ExperienceMatch = 1
	} else {
		details.ExperienceMatch = float64(p.ExperienceMonthsTotal) / math.Max(float64(job.MinExperienceMonths), 1)
	}
	score += details.ExperienceMatch * experienceWeight

	if degree := strings.ToLower(strings.TrimSpace(job.RequiredDegree)); degree != "" {
		for _, e := range p.Education {
			if strings.Contains(strings.ToLower(e.Degree), degree) {
				details.EducationMatch = 1
				score += degreeWeight
				break
			}
		}
	}

	score = math.Min(score, 1)
	details.Recommendation = recommend(score)
	return MatchResult{MatchScore: round(score, 2), Details: details}
}

func recommend(score float64) string {
	switch {
	case score >= 0.85:
		return "Strong match - Highly recommended"
	case score >= 0.7:
		return "Good match - Apply"
	case score >= 0.5:
		return "Moderate match - Consider applying"
	}
	return "Weak match - May not meet requirements"
}

// Job 一个可推荐的岗位
type Job struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Company string `json:"company"`
	JobRequirements
}

// JobRecommendation 岗位推荐条目
type JobRecommendation struct {
	JobID          string   `json:"job_id"`
	JobTitle       string   `json:"job_title"`
	Company        string   `json:"company"`
	MatchScore     float64  `json:"match_score"`
	Recommendation string   `json:"recommendation"`
	MissingSkills  []string `json:"missing_skills"`
}

// RecommendJobs 按匹配度排序返回前 limit 个岗位，limit<=0 时默认10
func RecommendJobs(p *types.CandidateProfile, jobs []Job, limit int) []JobRecommendation {
	if limit <= 0 {
		limit = 10
	}
	out := make([]JobRecommendation, 0, len(jobs))
	for _, job := range jobs {
		m := MatchJob(p, job.JobRequirements)
		missing := m.Details.MissingSkills
		if len(missing) > 3 {
			missing = missing[:3]
		}
		out = append(out, JobRecommendation{
			JobID:          job.ID,
			JobTitle:       job.Title,
			Company:        job.Company,
			MatchScore:     m.MatchScore,
			Recommendation: m.Details.Recommendation,
			MissingSkills:  missing,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MatchScore > out[j].MatchScore })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
