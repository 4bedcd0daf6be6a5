package insights

import (
	"testing"
	"time"

	"resume-parser-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfile() *types.CandidateProfile {
	p := types.EmptyProfile()
	p.ProgrammingLanguages = []string{"Go", "Python"}
	p.ToolsPlatforms = []string{"Docker"}
	p.Databases = []string{"PostgreSQL"}
	p.SoftSkills = []string{"Leadership"}
	p.Experience = []types.ExperienceEntry{{Role: "Engineer", Company: "Acme", DurationMonths: 49}}
	p.ExperienceMonthsTotal = 49
	p.Projects = []types.ProjectEntry{{Title: "Resume Parser"}}
	p.Education = []types.EducationEntry{{Degree: "Bachelor of Technology", Field: "Computer Science"}}
	p.CompletenessScore = 0.65
	return p
}

func TestBuildReport(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	r := buildReport(sampleProfile(), now)

	assert.Equal(t, RatingFair, r.Summary.Quality)
	assert.Equal(t, 4, r.Summary.TotalSkills)
	assert.Equal(t, 1, r.Summary.TotalEducation)
	assert.InDelta(t, 4.1, r.Summary.ExperienceYears, 1e-9)
	assert.Equal(t, "Mid-Level", r.Experience.Interpretation)
	assert.Equal(t, "One project listed", r.Achievements.Interpretation)
	assert.Equal(t, []string{"Go", "Python", "Docker", "PostgreSQL"}, r.Skills.TopSkills)
	assert.Equal(t, []string{"Leadership"}, r.Skills.Categories["soft_skills"])
	assert.NotContains(t, r.Skills.Categories, "frameworks_libraries")
	assert.Equal(t, now, r.GeneratedAt)

	require.Len(t, r.Recommendations.Suggestions, 1)
	assert.Equal(t, "skills", r.Recommendations.Suggestions[0].Type)
	assert.Equal(t, []string{
		"Add quantifiable metrics to achievements",
		"Include certifications and awards",
	}, r.Recommendations.NextSteps)
}

func TestBuildReportEmptyProfile(t *testing.T) {
	r := BuildReport(nil)
	assert.Equal(t, RatingNeedsImprovement, r.Summary.Quality)
	assert.Equal(t, "Entry Level", r.Experience.Interpretation)
	assert.Equal(t, "No projects listed", r.Achievements.Interpretation)
	assert.Empty(t, r.Skills.TopSkills)
	assert.Len(t, r.Recommendations.Suggestions, 4)
	assert.Len(t, r.Recommendations.NextSteps, 3)
	assert.False(t, r.GeneratedAt.IsZero())
}

func TestRateQuality(t *testing.T) {
	cases := map[float64]string{
		1.0:  RatingExcellent,
		0.95: RatingExcellent,
		0.9:  RatingVeryGood,
		0.75: RatingGood,
		0.6:  RatingFair,
		0.59: RatingNeedsImprovement,
		0:    RatingNeedsImprovement,
	}
	for score, want := range cases {
		assert.Equal(t, want, RateQuality(score), "score %v", score)
	}
}

func TestInterpretExperience(t *testing.T) {
	assert.Equal(t, "Entry Level", InterpretExperience(11))
	assert.Equal(t, "Junior", InterpretExperience(12))
	assert.Equal(t, "Mid-Level", InterpretExperience(36))
	assert.Equal(t, "Senior", InterpretExperience(60))
	assert.Equal(t, "Principal/Lead", InterpretExperience(120))
	assert.Equal(t, "Few projects highlighted", InterpretProjects(4))
	assert.Equal(t, "Multiple projects showcased", InterpretProjects(5))
}

func TestMatchJob(t *testing.T) {
	res := MatchJob(sampleProfile(), JobRequirements{
		RequiredSkills:      []string{"Python", "docker", "Kubernetes", "Terraform"},
		MinExperienceMonths: 12,
		RequiredDegree:      "bachelor",
	})

	assert.InDelta(t, 0.75, res.MatchScore, 1e-9)
	assert.Equal(t, []string{"docker", "python"}, res.Details.MatchedSkills)
	assert.Equal(t, []string{"kubernetes", "terraform"}, res.Details.MissingSkills)
	assert.InDelta(t, 0.5, res.Details.SkillsMatch, 1e-9)
	assert.Equal(t, 1.0, res.Details.ExperienceMatch)
	assert.Equal(t, 1.0, res.Details.EducationMatch)
	assert.Equal(t, "Good match - Apply", res.Details.Recommendation)
}

func TestMatchJobTiers(t *testing.T) {
	strong := MatchJob(sampleProfile(), JobRequirements{
		RequiredSkills: []string{"go", "python"},
		RequiredDegree: "Technology",
	})
	assert.Equal(t, 1.0, strong.MatchScore)
	assert.Equal(t, "Strong match - Highly recommended", strong.Details.Recommendation)

	partial := MatchJob(sampleProfile(), JobRequirements{MinExperienceMonths: 98, RequiredDegree: "master"})
	assert.InDelta(t, 0.15, partial.MatchScore, 1e-9)
	assert.InDelta(t, 0.5, partial.Details.ExperienceMatch, 1e-9)
	assert.Equal(t, 0.0, partial.Details.EducationMatch)

	weak := MatchJob(nil, JobRequirements{RequiredSkills: []string{"rust"}, MinExperienceMonths: 12})
	assert.Equal(t, 0.0, weak.MatchScore)
	assert.Equal(t, []string{"rust"}, weak.Details.MissingSkills)
	assert.Equal(t, "Weak match - May not meet requirements", weak.Details.Recommendation)
}

func TestRecommendJobs(t *testing.T) {
	jobs := []Job{
		{ID: "1", Title: "Rust Dev", JobRequirements: JobRequirements{RequiredSkills: []string{"rust", "wasm", "c", "zig"}}},
		{ID: "2", Title: "Go Dev", JobRequirements: JobRequirements{RequiredSkills: []string{"go"}}},
		{ID: "3", Title: "Data", JobRequirements: JobRequirements{RequiredSkills: []string{"python", "spark"}}},
	}
	recs := RecommendJobs(sampleProfile(), jobs, 2)
	require.Len(t, recs, 2)
	assert.Equal(t, "2", recs[0].JobID)
	assert.Equal(t, "3", recs[1].JobID)

	all := RecommendJobs(sampleProfile(), jobs, 0)
	require.Len(t, all, 3)
	assert.Len(t, all[2].MissingSkills, 3)
}

func TestRankCandidates(t *testing.T) {
	mk := func(score float64) *types.CandidateProfile {
		p := types.EmptyProfile()
		p.CompletenessScore = score
		return p
	}
	ranked := RankCandidates([]Candidate{
		{Name: "c.pdf", Profile: mk(0.5)},
		{Name: "b.pdf", Profile: mk(0.8)},
		{Name: "a.pdf", Profile: mk(0.5)},
		{Name: "d.pdf"},
	})
	require.Len(t, ranked, 4)
	names := []string{ranked[0].Name, ranked[1].Name, ranked[2].Name, ranked[3].Name}
	assert.Equal(t, []string{"b.pdf", "a.pdf", "c.pdf", "d.pdf"}, names)
	for i, r := range ranked {
		assert.Equal(t, i+1, r.Rank)
	}
	assert.NotNil(t, ranked[3].Profile)
}

func TestFilterCandidates(t *testing.T) {
	senior := sampleProfile()
	junior := types.EmptyProfile()
	junior.ProgrammingLanguages = []string{"Java"}
	junior.ExperienceMonthsTotal = 6
	junior.CompletenessScore = 0.3
	cands := []Candidate{{Name: "senior", Profile: senior}, {Name: "junior", Profile: junior}, {Name: "broken"}}

	assert.Len(t, FilterCandidates(cands, Criteria{}), 2)

	got := FilterCandidates(cands, Criteria{RequiredSkills: []string{"post", "GO"}})
	require.Len(t, got, 1)
	assert.Equal(t, "senior", got[0].Name)

	assert.Empty(t, FilterCandidates(cands, Criteria{MinExperienceMonths: 60}))
	got = FilterCandidates(cands, Criteria{MinCompleteness: 0.3})
	assert.Len(t, got, 2)
	got = FilterCandidates(cands, Criteria{MinCompleteness: 0.31})
	require.Len(t, got, 1)
	assert.Equal(t, "senior", got[0].Name)
}

func TestParseSkillList(t *testing.T) {
	assert.Equal(t, []string{"Go", "Docker", "SQL"}, ParseSkillList(" Go, Docker,,SQL "))
	assert.Empty(t, ParseSkillList(""))
}
