package parser

import (
	"strings"
	"testing"

	"resume-parser-go/internal/taxonomy"
	"resume-parser-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func segment(text string) *Sections {
	seg := NewSectionSegmenter(taxonomy.Default())
	return seg.Segment(strings.Split(NormalizeText(text), "\n"))
}

func TestSegmentBasicSections(t *testing.T) {
	s := segment("John Doe\njohn@example.com\n\nSKILLS\nPython, Go\n\nWork Experience\nEngineer at Acme\nEducation:\nB.Tech")

	require.True(t, s.Detected)
	assert.Equal(t, []types.SectionKey{types.SectionHeader, types.SectionSkills, types.SectionExperience, types.SectionEducation}, s.Order)
	assert.Equal(t, []string{"John Doe", "john@example.com"}, s.Lines(types.SectionHeader))
	assert.Equal(t, []string{"Python, Go"}, s.Lines(types.SectionSkills))
	assert.Equal(t, []string{"Engineer at Acme"}, s.Lines(types.SectionExperience))
	assert.Equal(t, []string{"B.Tech"}, s.Lines(types.SectionEducation))

	require.Len(t, s.Headings, 3)
	assert.Equal(t, "keyword-exact", s.Headings[0].Rule)
	assert.Equal(t, types.SectionSkills, s.Headings[0].Key)
}

func TestSegmentInlineHeading(t *testing.T) {
	s := segment("Skills: Python, Go\n\nExperience\nEngineer at Acme\nTechnologies: React, Node")

	assert.Equal(t, []string{"Python, Go"}, s.Lines(types.SectionSkills))
	// 经历中的 "Technologies:" 不开启新章节
	assert.Equal(t, []string{"Engineer at Acme", "Technologies: React, Node"}, s.Lines(types.SectionExperience))
}

func TestSegmentSeparatorPreceded(t *testing.T) {
	s := segment("Summary text here\n-----\nProjects\nResume Parser")

	require.Len(t, s.Headings, 1)
	assert.Equal(t, "separator-preceded", s.Headings[0].Rule)
	assert.Equal(t, []string{"Resume Parser"}, s.Lines(types.SectionProjects))
	assert.Equal(t, []string{"Summary text here"}, s.Lines(types.SectionHeader))
}

func TestSegmentRepeatedSectionAppends(t *testing.T) {
	s := segment("Skills\nPython\n\nEducation\nMIT\n\nSkills\nGo")
	assert.Equal(t, []string{"Python", "Go"}, s.Lines(types.SectionSkills))
}

func TestSegmentNoHeadings(t *testing.T) {
	s := segment("Python developer, built 3 projects")

	assert.False(t, s.Detected)
	assert.True(t, s.Has(types.SectionBody))
	assert.Equal(t, []string{"Python developer, built 3 projects"}, s.Lines(types.SectionBody))
	assert.Empty(t, s.Headings)
}

func TestClassifyRejectsSentences(t *testing.T) {
	seg := NewSectionSegmenter(taxonomy.Default())
	lines := []string{
		"I have experience working on many projects.",
		"Responsible for education outreach programs across several regional schools and districts",
		"- Led migration of services to Kubernetes",
	}
	for _, line := range lines {
		_, _, ok := seg.Classify(NewLineContext(line, false, false, types.SectionExperience))
		assert.False(t, ok, line)
	}

	key, rule, ok := seg.Classify(NewLineContext("PROFESSIONAL EXPERIENCE", false, true, types.SectionHeader))
	require.True(t, ok)
	assert.Equal(t, types.SectionExperience, key)
	assert.Equal(t, "keyword-exact", rule)

	key, rule, ok = seg.Classify(NewLineContext("Projects & Publications", false, true, types.SectionSkills))
	require.True(t, ok)
	assert.Equal(t, types.SectionProjects, key)
	assert.Equal(t, "keyword-prefix", rule)
}

func TestCustomHeadingRules(t *testing.T) {
	rules := []HeadingRule{{
		Name:     "hash-prefixed",
		Priority: 1,
		Match: func(ctx LineContext) (types.SectionKey, bool) {
			if strings.HasPrefix(ctx.Line, "# ") {
				return types.SectionSkills, true
			}
			return "", false
		},
	}}
	seg := NewSectionSegmenterWithRules(rules)
	s := seg.Segment([]string{"# Stuff", "Python"})
	assert.Equal(t, []string{"Python"}, s.Lines(types.SectionSkills))
}

func TestDocumentSectionFallback(t *testing.T) {
	doc := newTestDocument("Python developer\nbuilt things")
	_, ok := doc.Section(types.SectionExperience)
	assert.False(t, ok)
	assert.True(t, doc.BodyFallback())
	assert.Equal(t, doc.Lines, doc.SectionOr(types.SectionExperience))

	doc = newTestDocument("Skills\nPython")
	assert.False(t, doc.BodyFallback())
	assert.Nil(t, doc.SectionOr(types.SectionExperience))
}

func TestDocumentSegmentationPanic(t *testing.T) {
	boom := NewSectionSegmenterWithRules([]HeadingRule{{
		Name:     "boom",
		Priority: 1,
		Match:    func(LineContext) (types.SectionKey, bool) { panic("boom") },
	}})
	doc := NewDocument("Skills\nPython", boom)

	s := doc.Sections()
	assert.False(t, s.Detected)
	assert.Equal(t, []string{"Skills", "Python"}, s.Lines(types.SectionBody))

	diags := doc.diagnostics()
	require.Len(t, diags, 1)
	assert.ErrorIs(t, diags[0], ErrSegmentation)
}
