package parser

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"resume-parser-go/internal/taxonomy"
	"resume-parser-go/internal/types"
)

const (
	minEducationYear = 1950
	maxBlockLines    = 4 // 学位行及其后3行
)

var (
	labeledCGPAPattern = regexp.MustCompile(`(?i)\b(?:cgpa|gpa|grade)\s*[:\-]?\s*(\d+(?:\.\d+)?)(?:\s*/\s*(\d+(?:\.\d+)?))?`)
	bareCGPAPattern    = regexp.MustCompile(`\b(\d{1,2}(?:\.\d+)?)\s*/\s*(10\.0|10|4\.0|4|5\.0|5)\b`)
	fieldLeadPattern   = regexp.MustCompile(`(?i)^\s*(?:in|of)\s+`)
	fieldStopPattern   = regexp.MustCompile(`(?i)[,|(;]|\s-\s|\b(?:cgpa|gpa|grade|percentage)\b|\b(?:19|20)\d{2}\b`)
	instSplitPattern   = regexp.MustCompile(`(?i)\s*,\s*|\s+-\s+|\s+from\s+|\s+at\s+`)
	instNoisePattern   = regexp.MustCompile(`(?i)\b(?:cgpa|gpa|grade|percentage)\b.*$|\b(?:19|20)\d{2}\b|\(\s*\)`)
)

// EducationExtractor 教育经历提取
type EducationExtractor struct {
	tax         *taxonomy.Taxonomy
	now         func() time.Time
	institution *regexp.Regexp
	blocklist   *regexp.Regexp
	locations   map[string]bool
}

// NewEducationExtractor now 为空时使用当前时间
func NewEducationExtractor(tax *taxonomy.Taxonomy, now func() time.Time) *EducationExtractor {
	if now == nil {
		now = time.Now
	}
	return &EducationExtractor{
		tax:         tax,
		now:         now,
		institution: keywordAlternation(tax.InstitutionKeywords),
		blocklist:   keywordAlternation(tax.InstitutionBlocklist),
		locations:   toLowerSet(tax.LocationNames),
	}
}

type degreeHit struct {
	idx  int
	name string
	loc  []int
}

// stopAtDatedHeader 纯文本模式下，日期前还有文字的行（例如一条工作经历）结束学历块
func (e *EducationExtractor) stopAtDatedHeader(lines []string, start, end int) int {
	now := e.now()
	for j := start + 1; j < end; j++ {
		if r, found, _ := findDateRange(lines[j], now); found && dateRangePrefix(lines[j], r) != "" {
			return j
		}
	}
	return end
}

// Extract 每个命中学位的行开始一条记录，按 (学位, 学校) 去重
func (e *EducationExtractor) Extract(doc *Document) ([]types.EducationEntry, error) {
	entries := []types.EducationEntry{}
	lines := doc.SectionOr(types.SectionEducation)
	if len(lines) == 0 {
		return entries, nil
	}

	var hits []degreeHit
	for i, line := range lines {
		for _, d := range e.tax.Degrees {
			if loc := d.Re.FindStringIndex(line); loc != nil {
				hits = append(hits, degreeHit{idx: i, name: d.Name, loc: loc})
				break
			}
		}
	}

	if len(hits) == 0 {
		// 只有学校没有学位
		for _, line := range lines {
			if inst := e.institutionFromLine(line); inst != "" {
				entry := types.EducationEntry{Institution: inst}
				e.applyYears(doc, &entry, lines)
				entry.CGPA = e.cgpa(doc, strings.Join(lines, "\n"))
				entries = append(entries, entry)
				break
			}
		}
		return entries, nil
	}

	// 只有一条学历时，块内找不到的年份和成绩可以取整个教育章节
	sectionWide := len(hits) == 1 && !doc.BodyFallback()
	seen := make(map[string]bool)
	for k, h := range hits {
		end := len(lines)
		if k+1 < len(hits) {
			end = hits[k+1].idx
		}
		if end > h.idx+maxBlockLines {
			end = h.idx + maxBlockLines
		}
		if doc.BodyFallback() {
			end = e.stopAtDatedHeader(lines, h.idx, end)
		}
		block := lines[h.idx:end]
		line := lines[h.idx]

		entry := types.EducationEntry{
			Degree: h.name,
			Field:  e.field(line[h.loc[1]:]),
		}

		entry.Institution = e.institutionFromDegreeLine(line, h.loc)
		if entry.Institution == "" {
			for _, l := range block[1:] {
				if inst := e.institutionFromLine(l); inst != "" {
					entry.Institution = inst
					break
				}
			}
		}
		yearLines := block
		if entry.Institution == "" && h.idx > 0 && (k == 0 || hits[k-1].idx < h.idx-1) {
			// 学校写在学位前一行
			if inst := e.institutionFromLine(lines[h.idx-1]); inst != "" {
				entry.Institution = inst
				yearLines = lines[h.idx-1 : end]
			}
		}

		if !e.applyYears(doc, &entry, yearLines) && sectionWide {
			e.applyYears(doc, &entry, lines)
		}
		entry.CGPA = e.cgpa(doc, strings.Join(block, "\n"))
		if entry.CGPA == "" && sectionWide {
			entry.CGPA = e.cgpa(doc, strings.Join(lines, "\n"))
		}

		key := strings.ToLower(entry.Degree) + "|" + strings.ToLower(entry.Institution)
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, entry)
	}
	return entries, nil
}

// field 学位之后 in/of 引出的专业，遇到分隔符、成绩或年份截止
func (e *EducationExtractor) field(after string) string {
	if loc := fieldLeadPattern.FindStringIndex(after); loc != nil {
		after = after[loc[1]:]
	} else if !strings.HasPrefix(after, " ") && !strings.HasPrefix(after, "\t") {
		return ""
	}
	if loc := fieldStopPattern.FindStringIndex(after); loc != nil {
		after = after[:loc[0]]
	}
	f := strings.Trim(after, edgeTrimChars+".")
	lf := strings.ToLower(f)
	if f == "" || e.institution.MatchString(f) || strings.HasPrefix(lf, "from ") || strings.HasPrefix(lf, "at ") {
		return ""
	}
	return f
}

// institutionFromDegreeLine 学位所在行包含院校关键词时，从学位前后文字中取学校
func (e *EducationExtractor) institutionFromDegreeLine(line string, loc []int) string {
	if !e.institution.MatchString(line) || e.blocklist.MatchString(line) {
		return ""
	}
	if before := line[:loc[0]]; e.institution.MatchString(before) {
		return e.pickInstitution(before, true)
	}
	return e.pickInstitution(line[loc[1]:], false)
}

// institutionFromLine 独立的院校行，活动类关键词（hackathon、workshop 等）排除
func (e *EducationExtractor) institutionFromLine(line string) string {
	if !e.institution.MatchString(line) || e.blocklist.MatchString(line) {
		return ""
	}
	return e.pickInstitution(line, false)
}

// pickInstitution 取包含院校关键词的片段，后面紧跟地点时一并保留
func (e *EducationExtractor) pickInstitution(text string, last bool) string {
	parts := instSplitPattern.Split(text, -1)
	pick := -1
	for i, p := range parts {
		if e.institution.MatchString(p) {
			pick = i
			if !last {
				break
			}
		}
	}
	if pick < 0 {
		return ""
	}
	inst := cleanInstitution(parts[pick])
	if pick+1 < len(parts) {
		next := cleanInstitution(parts[pick+1])
		if e.locations[strings.ToLower(next)] {
			inst += ", " + next
		}
	}
	return inst
}

func cleanInstitution(s string) string {
	s = instNoisePattern.ReplaceAllString(s, "")
	s = multiSpacePattern.ReplaceAllString(s, " ")
	return strings.Trim(s, edgeTrimChars+".;")
}

// applyYears 多个年份取最小/最大值，只有一个年份时只填结束年份。返回是否找到年份
func (e *EducationExtractor) applyYears(doc *Document, entry *types.EducationEntry, lines []string) bool {
	maxYear := e.now().Year() + 5
	set := make(map[int]bool)
	for _, line := range lines {
		for _, m := range anyYearPattern.FindAllString(line, -1) {
			y, err := strconv.Atoi(m)
			if err != nil || y < minEducationYear || y > maxYear {
				doc.note(NewFormatMismatchError("education.year", m))
				continue
			}
			set[y] = true
		}
	}
	if len(set) == 0 {
		return false
	}
	years := make([]int, 0, len(set))
	for y := range set {
		years = append(years, y)
	}
	sort.Ints(years)
	entry.EndYear = strconv.Itoa(years[len(years)-1])
	if len(years) > 1 {
		entry.StartYear = strconv.Itoa(years[0])
	}
	return true
}

// cgpa 统一换算为10分制
func (e *EducationExtractor) cgpa(doc *Document, text string) string {
	var value, scale string
	if m := labeledCGPAPattern.FindStringSubmatch(text); m != nil {
		value, scale = m[1], m[2]
	} else if m := bareCGPAPattern.FindStringSubmatch(text); m != nil {
		value, scale = m[1], m[2]
	} else {
		return ""
	}
	out, err := NormalizeCGPA(value, scale)
	if err != nil {
		doc.note(asFieldError(err))
		return ""
	}
	return out
}

// NormalizeCGPA 4分制乘2.5，5分制乘2，没有分制时按数值推断
func NormalizeCGPA(value, scale string) (string, error) {
	raw := value
	if scale != "" {
		raw += "/" + scale
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || v < 0 {
		return "", NewFormatMismatchError("education.cgpa", raw)
	}

	var out float64
	if scale != "" {
		s, err := strconv.ParseFloat(scale, 64)
		if err != nil || s <= 0 || v > s {
			return "", NewFormatMismatchError("education.cgpa", raw)
		}
		switch s {
		case 4:
			out = v * 2.5
		case 5:
			out = v * 2
		case 10:
			out = v
		default:
			out = v / s * 10
		}
	} else {
		switch {
		case v > 10:
			return "", NewFormatMismatchError("education.cgpa", raw)
		case v <= 4:
			out = v * 2.5
		case v <= 5:
			out = v * 2
		default:
			out = v
		}
	}
	out = math.Round(out*100) / 100
	if out > 10 {
		return "", NewFormatMismatchError("education.cgpa", raw)
	}
	return fmt.Sprintf("%.2f/10", out), nil
}
