package parser

import (
	"time"

	"resume-parser-go/internal/taxonomy"
)

var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestDocument(text string) *Document {
	return NewDocument(text, NewSectionSegmenter(taxonomy.Default()))
}

func newTestParser() *ProfileParser {
	return NewProfileParser(nil, WithClock(fixedClock))
}

const sampleResume = `Jane Smith
jane.smith@example.com | +1 555 123 4567

SUMMARY
Backend engineer with a focus on distributed systems.

SKILLS
Languages: Python, Go, SQL
Frameworks: Django, React
Tools: Docker, Kubernetes, Git
Databases: PostgreSQL, Redis

EXPERIENCE
Senior Software Engineer
Acme Corp
Jan 2021 - Present
- Led migration of services to Kubernetes
- Built REST API endpoints in Django

Software Engineer Intern
Globex Labs
Jun 2020 - Dec 2020
- Developed data pipelines with Python and Airflow

PROJECTS
Resume Parser (Python, spaCy)
- Built a resume parser using TF-IDF and spaCy

EDUCATION
Bachelor of Technology in Computer Science
ABC Institute of Technology, 2016 - 2020
CGPA: 8.5/10

CERTIFICATIONS
- AWS Certified Developer (2022)
`
