package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"resume-parser-go/internal/taxonomy"
	"resume-parser-go/internal/types"
)

const (
	maxProjects         = 20
	maxDescriptionRunes = 300
	maxTitleRunes       = 80
	untitledTitleRunes  = 60
)

var (
	techLabelPattern  = regexp.MustCompile(`(?i)^(?:tech(?:nologies|nology|\s+stack)?|tools(?:\s+used)?|stack|built\s+with|skills(?:\s+used)?|environment)\s*[:\-]`)
	titleSplitPattern = regexp.MustCompile(`\s+-\s+`)
	dateRangeStrip    = regexp.MustCompile(`(?i)\(?\s*(?:` + monthNamePattern + `\s*,?\s*)?(?:19|20)\d{2}(?:\s*(?:-|to)\s*(?:(?:` + monthNamePattern + `\s*,?\s*)?(?:19|20)\d{2}|present|current|ongoing))?\s*\)?`)
)

type projectBlock struct {
	title string
	desc  []string
	tech  []string
}

// ProjectExtractor 项目经历提取，只处理 projects 章节
type ProjectExtractor struct {
	tax    *taxonomy.Taxonomy
	skills *SkillExtractor
}

// NewProjectExtractor 复用技能提取器识别项目中使用的技术
func NewProjectExtractor(tax *taxonomy.Taxonomy, skills *SkillExtractor) *ProjectExtractor {
	return &ProjectExtractor{tax: tax, skills: skills}
}

// Extract 把章节行分成 (标题, 描述) 块
func (e *ProjectExtractor) Extract(doc *Document) ([]types.ProjectEntry, error) {
	out := []types.ProjectEntry{}
	lines, ok := doc.Section(types.SectionProjects)
	if !ok {
		return out, nil
	}

	var cur *projectBlock
	flush := func() {
		if cur == nil {
			return
		}
		if entry, ok := e.finish(cur); ok && len(out) < maxProjects {
			out = append(out, entry)
		}
		cur = nil
	}

	for _, line := range lines {
		desc := e.isDescription(line)
		switch {
		case !desc && hasDateToken(line):
			flush()
			cur = newProjectBlock(line)
		case cur == nil && !desc:
			cur = newProjectBlock(line)
		case cur == nil:
			cur = &projectBlock{desc: []string{stripBullet(line)}}
		case desc:
			cur.desc = append(cur.desc, stripBullet(line))
		case techLabelPattern.MatchString(line):
			cur.tech = append(cur.tech, line)
		case utf8.RuneCountInString(line) < maxTitleRunes && !strings.HasSuffix(line, "."):
			flush()
			cur = newProjectBlock(line)
		default:
			cur.desc = append(cur.desc, line)
		}
	}
	flush()
	return out, nil
}

// isDescription 项目符号行或以动作动词开头的行
func (e *ProjectExtractor) isDescription(line string) bool {
	if isBulletLine(line) {
		return true
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	return e.tax.IsActionVerb(strings.Trim(fields[0], ",.:;"))
}

// newProjectBlock "Title - tagline"、"Title (React, Node)" 只保留标题部分，其余作为技术列表
func newProjectBlock(line string) *projectBlock {
	b := &projectBlock{}
	title := dateRangeStrip.ReplaceAllString(line, " ")
	for _, m := range parenGroupPattern.FindAllStringSubmatch(title, -1) {
		b.tech = append(b.tech, m[1])
	}
	title = parenGroupPattern.ReplaceAllString(title, " ")
	if parts := titleSplitPattern.Split(title, 2); len(parts) == 2 {
		title = parts[0]
		b.tech = append(b.tech, parts[1])
	}
	b.title = strings.Trim(multiSpacePattern.ReplaceAllString(title, " "), edgeTrimChars+".")
	return b
}

func (e *ProjectExtractor) finish(b *projectBlock) (types.ProjectEntry, bool) {
	description := strings.TrimSpace(strings.Join(b.desc, " "))
	title := b.title
	if title == "" {
		if description == "" {
			return types.ProjectEntry{}, false
		}
		title = truncateRunes(description, untitledTitleRunes)
	}

	textLines := append(append([]string{}, b.desc...), b.tech...)
	tools := e.skills.DetectTools(textLines)
	lower := strings.ToLower(strings.Join(textLines, "\n"))
	seen := make(map[string]bool, len(tools))
	for _, t := range tools {
		seen[strings.ToLower(t)] = true
	}
	for _, m := range e.tax.MLMethods {
		if m.Re.MatchString(lower) && !seen[strings.ToLower(m.Name)] {
			seen[strings.ToLower(m.Name)] = true
			tools = append(tools, m.Name)
		}
	}
	if tools == nil {
		tools = []string{}
	}
	sortSkills(tools)

	return types.ProjectEntry{
		Title:            title,
		Description:      truncateRunes(description, maxDescriptionRunes),
		ToolsMethodsUsed: tools,
	}, true
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n]))
}
