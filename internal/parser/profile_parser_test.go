package parser

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"resume-parser-go/internal/taxonomy"
	"resume-parser-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileKeys = []string{
	"technical_skills", "programming_languages", "frameworks_libraries", "tools_platforms",
	"databases", "soft_skills", "experience", "experience_months_total", "projects",
	"education", "certifications", "resume_completeness_score",
}

func TestParseEmptyInput(t *testing.T) {
	p := newTestParser()
	for _, in := range []string{"", "   \n\t\n "} {
		res := p.ParseDetailed(in)
		assert.Equal(t, types.EmptyProfile(), res.Profile)
		assert.True(t, res.SkillsWarning)
		require.Len(t, res.Diagnostics.Errors, 1)
		assert.ErrorIs(t, res.Diagnostics.Errors[0], ErrExtraction)

		data, err := json.Marshal(res.Profile)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		assert.Len(t, m, len(profileKeys))
		for _, k := range profileKeys {
			assert.Contains(t, m, k)
		}
		assert.Equal(t, []any{}, m["experience"])
		assert.Equal(t, 0.0, m["resume_completeness_score"])
	}
}

func TestParseFullResume(t *testing.T) {
	res := newTestParser().ParseDetailed(sampleResume)
	p := res.Profile

	assert.Equal(t, []string{"Go", "Python", "SQL"}, p.ProgrammingLanguages)
	assert.ElementsMatch(t, []string{"Django", "React", "spaCy"}, p.FrameworksLibraries)
	assert.ElementsMatch(t, []string{"Airflow", "Docker", "Git", "Kubernetes"}, p.ToolsPlatforms)
	assert.Equal(t, []string{"PostgreSQL", "Redis"}, p.Databases)
	assert.Equal(t, []string{"REST API"}, p.TechnicalSkills)
	assert.Equal(t, []string{"Leadership"}, p.SoftSkills)

	require.Len(t, p.Experience, 2)
	assert.Equal(t, "Acme Corp", p.Experience[0].Company)
	assert.Equal(t, 42, p.Experience[0].DurationMonths)
	assert.Equal(t, types.ExperienceInternship, p.Experience[1].Type)
	assert.Equal(t, 49, p.ExperienceMonthsTotal)

	require.Len(t, p.Projects, 1)
	assert.Equal(t, "Resume Parser", p.Projects[0].Title)

	require.Len(t, p.Education, 1)
	assert.Equal(t, "Bachelor of Technology", p.Education[0].Degree)
	assert.Equal(t, "Computer Science", p.Education[0].Field)
	assert.Equal(t, "ABC Institute of Technology", p.Education[0].Institution)
	assert.Equal(t, "2016", p.Education[0].StartYear)
	assert.Equal(t, "2020", p.Education[0].EndYear)
	assert.Equal(t, "8.50/10", p.Education[0].CGPA)

	assert.Equal(t, []string{"AWS Certified Developer"}, p.Certifications)
	assert.InDelta(t, 0.65, p.CompletenessScore, 1e-9)

	assert.False(t, res.SkillsWarning)
	assert.True(t, res.Diagnostics.HeadingsDetected)
	assert.Equal(t, 1, res.Diagnostics.ProjectIndicatorCount)
	assert.Empty(t, res.Diagnostics.Errors)
}

func TestParseProfileInvariants(t *testing.T) {
	inputs := []string{
		sampleResume,
		"Python developer, built 3 projects",
		"Skills\nJava, Spring Boot, MySQL\n\nExperience\nEngineer\nAcme Corp\n2015 - 2018\n- Communicated with stakeholders",
		"EDUCATION\nB.Sc Physics, St. Xavier's College, 2012\n\nWORK HISTORY\nTeacher, Sunrise School\nJun 2013 - May 2016",
		"garbage ### %%% 12345 \x00 (cid:3)(cid:4)",
	}
	p := newTestParser()
	for _, in := range inputs {
		profile := p.Parse(in)
		lower := strings.ToLower(NormalizeText(in))

		assert.GreaterOrEqual(t, profile.CompletenessScore, 0.0)
		assert.LessOrEqual(t, profile.CompletenessScore, 1.0)

		sum := 0
		for _, e := range profile.Experience {
			sum += e.DurationMonths
			assert.Positive(t, e.DurationMonths)
		}
		assert.Equal(t, sum, profile.ExperienceMonthsTotal)

		seen := make(map[string]types.SkillCategory)
		for _, c := range append(append([]types.SkillCategory{}, types.TechnicalCategories...), types.CategorySoft) {
			for _, s := range profile.SkillsByCategory(c) {
				k := strings.ToLower(s)
				prev, dup := seen[k]
				assert.False(t, dup, "%q 同时出现在 %s 和 %s", s, prev, c)
				seen[k] = c
			}
		}

		for _, s := range profile.AllSkills() {
			// 软技能可以由职责动词推断
			if contains(profile.SoftSkills, s) {
				continue
			}
			assert.True(t, groundedIn(lower, s), "技能 %q 不在原文中", s)
		}
	}
}

// groundedIn 展示名本身或其任一原文写法按词边界出现在文本中
func groundedIn(lower, skill string) bool {
	tx := taxonomy.Default()
	if taxonomy.WordBoundary(skill).MatchString(lower) {
		return true
	}
	for _, src := range tx.Sources(skill) {
		if taxonomy.WordBoundary(src).MatchString(lower) {
			return true
		}
	}
	for _, m := range tx.MLMethods {
		if m.Name == skill && m.Re.MatchString(lower) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestParseNoHeadingsFallback(t *testing.T) {
	res := newTestParser().ParseDetailed("Python developer, built 3 projects")

	assert.Contains(t, res.Profile.ProgrammingLanguages, "Python")
	assert.GreaterOrEqual(t, res.Diagnostics.ProjectIndicatorCount, 1)
	assert.False(t, res.Diagnostics.HeadingsDetected)
	assert.Positive(t, res.Profile.CompletenessScore)
}

func TestParseIdempotent(t *testing.T) {
	p := newTestParser()
	first, err := json.Marshal(p.Parse(sampleResume))
	require.NoError(t, err)
	second, err := json.Marshal(p.Parse(sampleResume))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestParseConcurrentlyMatchesSequential(t *testing.T) {
	p := newTestParser()
	for _, in := range []string{sampleResume, "Python developer, built 3 projects", ""} {
		assert.Equal(t, p.Parse(in), p.ParseConcurrently(in).Profile)
	}
}

func TestParseSegmentationFailure(t *testing.T) {
	boom := NewSectionSegmenterWithRules([]HeadingRule{{
		Name:     "boom",
		Priority: 1,
		Match:    func(LineContext) (types.SectionKey, bool) { panic("boom") },
	}})
	p := NewProfileParser(nil, WithClock(fixedClock), WithSegmenter(boom))

	res := p.ParseDetailed("Python developer, built 3 projects")
	assert.Contains(t, res.Profile.ProgrammingLanguages, "Python")
	assert.False(t, res.Diagnostics.HeadingsDetected)

	found := false
	for _, e := range res.Diagnostics.Errors {
		if errors.Is(e, ErrSegmentation) {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBestEffortRecovers(t *testing.T) {
	res := bestEffort("skills", 7, func() (int, error) { panic("boom") })
	assert.Equal(t, 7, res.value)
	require.NotNil(t, res.err)
	assert.ErrorIs(t, res.err, ErrFieldExtraction)
	assert.Equal(t, "skills", res.err.Field)

	res = bestEffort("education", 0, func() (int, error) { return 3, errors.New("bad") })
	assert.Equal(t, 0, res.value)
	assert.ErrorIs(t, res.err, ErrFieldExtraction)

	res = bestEffort("projects", 0, func() (int, error) { return 3, nil })
	assert.Equal(t, 3, res.value)
	assert.Nil(t, res.err)
}
