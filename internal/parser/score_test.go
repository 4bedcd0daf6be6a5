package parser

import (
	"testing"

	"resume-parser-go/internal/taxonomy"
	"resume-parser-go/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestCompletenessScore(t *testing.T) {
	assert.Equal(t, 0.0, CompletenessScore(nil, 0))
	assert.Equal(t, 0.0, CompletenessScore(types.EmptyProfile(), 0))

	full := types.EmptyProfile()
	full.ProgrammingLanguages = []string{"Go", "Python", "Java", "Rust", "C"}
	full.ToolsPlatforms = []string{"Docker", "Git", "AWS", "Linux", "Kafka", "Helm"}
	full.Education = []types.EducationEntry{{Degree: "Bachelor of Science"}}
	full.ExperienceMonthsTotal = 150
	full.Projects = make([]types.ProjectEntry, 6)
	assert.Equal(t, 1.0, CompletenessScore(full, 0))

	partial := types.EmptyProfile()
	partial.ProgrammingLanguages = []string{"Go", "Python", "Java", "Rust", "C"}
	partial.SoftSkills = []string{"Leadership", "Communication"}
	partial.ExperienceMonthsTotal = 60
	// 0.25 * (0.5 + 0 + 0.5 + 0.2)
	assert.InDelta(t, 0.3, CompletenessScore(partial, 1), 1e-9)
}

func TestCountProjectIndicators(t *testing.T) {
	tax := taxonomy.Default()
	assert.Equal(t, 1, CountProjectIndicators(newTestDocument("Python developer, built 3 projects"), tax))
	assert.Equal(t, 0, CountProjectIndicators(newTestDocument("Skills\nPython"), tax))

	doc := newTestDocument("Projects\nPortfolio site on GitHub\nshort\n- Developed a CLI for log search")
	assert.Equal(t, 2, CountProjectIndicators(doc, tax))
}
