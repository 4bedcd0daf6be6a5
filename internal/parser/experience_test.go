package parser

import (
	"errors"
	"testing"

	"resume-parser-go/internal/taxonomy"
	"resume-parser-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseExperience(t *testing.T, text string) ([]types.ExperienceEntry, *Document) {
	t.Helper()
	doc := newTestDocument(text)
	entries, err := NewExperienceParser(taxonomy.Default(), fixedClock).Parse(doc)
	require.NoError(t, err)
	return entries, doc
}

func TestFindDateRange(t *testing.T) {
	cases := []struct {
		line       string
		start, end string
		months     int
		present    bool
	}{
		{"Jan 2020 - Dec 2021", "2020-01", "2021-12", 24, false},
		{"Mar 2019 to Aug 2019", "2019-03", "2019-08", 6, false},
		{"Sept 2020 - Jan 2021", "2020-09", "2021-01", 5, false},
		{"01/2020 - 12/2021", "2020-01", "2021-12", 24, false},
		{"2019 - 2020", "2019-01", "2020-12", 24, false},
		{"2018 - Present", "2018-01", "2024-06", 78, true},
		{"Jan 2022 till date", "2022-01", "2024-06", 30, true},
		{"Software Engineer, June 2023 - Current", "2023-06", "2024-06", 13, true},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			r, found, err := findDateRange(tc.line, testNow)
			require.True(t, found)
			require.NoError(t, err)
			assert.Equal(t, tc.start, r.StartDate())
			assert.Equal(t, tc.end, r.EndDate())
			assert.Equal(t, tc.months, r.Months())
			assert.Equal(t, tc.present, r.Present)
		})
	}

	_, found, _ := findDateRange("Worked on 3 projects", testNow)
	assert.False(t, found)

	_, found, err := findDateRange("Dec 2021 - Jan 2020", testNow)
	assert.True(t, found)
	assert.ErrorIs(t, err, ErrFormatMismatch)

	_, found, err = findDateRange("13/2020 - 05/2021", testNow)
	assert.True(t, found)
	assert.ErrorIs(t, err, ErrFormatMismatch)
}

func TestExperienceRoleCompanyAbove(t *testing.T) {
	entries, _ := parseExperience(t, "Experience\nSenior Engineer\nTech Corp\nJan 2020 - Dec 2021")

	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "Senior Engineer", e.Role)
	assert.Equal(t, "Tech Corp", e.Company)
	assert.Equal(t, types.ExperienceFullTime, e.Type)
	assert.Equal(t, 24, e.DurationMonths)
	assert.Equal(t, "2020-01", e.StartDate)
	assert.Equal(t, "2021-12", e.EndDate)
	assert.Empty(t, e.Responsibilities)
	assert.NotNil(t, e.Responsibilities)
}

func TestExperienceRoleCompanySameLine(t *testing.T) {
	entries, _ := parseExperience(t, "Experience\nData Analyst, Acme Inc\n2019 - 2020\n- Built dashboards in Tableau")

	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "Data Analyst", e.Role)
	assert.Equal(t, "Acme Inc", e.Company)
	assert.Equal(t, 24, e.DurationMonths)
	assert.Equal(t, []string{"Built dashboards in Tableau"}, e.Responsibilities)
}

func TestExperienceMultipleEntries(t *testing.T) {
	text := "Experience\nSenior Software Engineer\nAcme Corp\nJan 2021 - Present\n- Led migration of services to Kubernetes\n- Built REST API endpoints in Django\n\n" +
		"Software Engineer Intern\nGlobex Labs\nJun 2020 - Dec 2020\n- Developed data pipelines with Python and Airflow"
	entries, _ := parseExperience(t, text)

	require.Len(t, entries, 2)
	assert.Equal(t, "Senior Software Engineer", entries[0].Role)
	assert.Equal(t, "Acme Corp", entries[0].Company)
	assert.Equal(t, 42, entries[0].DurationMonths)
	assert.Equal(t, "2024-06", entries[0].EndDate)
	assert.Len(t, entries[0].Responsibilities, 2)

	assert.Equal(t, "Software Engineer Intern", entries[1].Role)
	assert.Equal(t, "Globex Labs", entries[1].Company)
	assert.Equal(t, types.ExperienceInternship, entries[1].Type)
	assert.Equal(t, 7, entries[1].DurationMonths)
	assert.Equal(t, []string{"Developed data pipelines with Python and Airflow"}, entries[1].Responsibilities)
}

func TestExperienceWithoutDates(t *testing.T) {
	entries, _ := parseExperience(t, "Experience\nMarketing Intern\nInitech Solutions\n- Ran social campaigns")

	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "Marketing Intern", e.Role)
	assert.Equal(t, "Initech Solutions", e.Company)
	assert.Equal(t, types.ExperienceInternship, e.Type)
	assert.Equal(t, 6, e.DurationMonths)
	assert.Empty(t, e.StartDate)
	assert.Equal(t, []string{"Ran social campaigns"}, e.Responsibilities)
}

func TestExperienceInvalidRangeFallsBack(t *testing.T) {
	entries, doc := parseExperience(t, "Experience\nEngineer\nAcme Corp\nDec 2021 - Jan 2020")

	require.Len(t, entries, 1)
	assert.Equal(t, "Engineer", entries[0].Role)
	assert.Equal(t, 12, entries[0].DurationMonths)
	assert.Empty(t, entries[0].StartDate)
	assert.Empty(t, entries[0].EndDate)

	diags := doc.diagnostics()
	require.NotEmpty(t, diags)
	assert.True(t, errors.Is(diags[0], ErrFormatMismatch))
}

func TestExperienceBulletYearsStayResponsibilities(t *testing.T) {
	entries, _ := parseExperience(t, "EXPERIENCE\nSoftware Engineer\nAcme Corp\nJan 2021 - Dec 2021\n"+
		"- Led the 2015 - 2020 archive migration to AWS\n- Built APIs")

	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "Software Engineer", e.Role)
	assert.Equal(t, "Acme Corp", e.Company)
	assert.Equal(t, 12, e.DurationMonths)
	assert.Equal(t, []string{"Led the 2015 - 2020 archive migration to AWS", "Built APIs"}, e.Responsibilities)
}

func TestExperienceBodySkipsDegreeLines(t *testing.T) {
	entries, doc := parseExperience(t, "Jane Doe\nBachelor of Technology in CSE, XYZ University 2016 - 2020\n"+
		"Software Engineer at Foo Inc 2020 - 2023")
	require.True(t, doc.BodyFallback())

	require.Len(t, entries, 1)
	assert.Equal(t, "Software Engineer", entries[0].Role)
	assert.Equal(t, "Foo Inc", entries[0].Company)
	assert.Equal(t, 48, entries[0].DurationMonths)
}

func TestExperienceBodyWithoutDatesIsEmpty(t *testing.T) {
	entries, _ := parseExperience(t, "Python developer, built 3 projects")
	assert.Empty(t, entries)
}

func TestClassifyExperience(t *testing.T) {
	assert.Equal(t, types.ExperienceInternship, classifyExperience("Summer Intern"))
	assert.Equal(t, types.ExperienceTraining, classifyExperience("Graduate Trainee"))
	assert.Equal(t, types.ExperienceFreelance, classifyExperience("Freelance Designer"))
	assert.Equal(t, types.ExperienceContract, classifyExperience("Contract Developer"))
	assert.Equal(t, types.ExperienceFullTime, classifyExperience("Backend Engineer"))
}
