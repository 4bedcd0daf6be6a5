package parser

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"resume-parser-go/internal/taxonomy"
	"resume-parser-go/internal/types"
)

const (
	minResponsibilityRunes = 40
	maxRoleRunes           = 30
	maxHeaderRunes         = 60
	headerLookback         = 4
	defaultInternMonths    = 6
	defaultMonths          = 12
)

const edgeTrimChars = " \t-,|()@:"

var headerSplitPattern = regexp.MustCompile(`\s+-\s+|\s*,\s*|\s+at\s+|\s+@\s+`)

// ExperienceParser 工作经历时间线解析
type ExperienceParser struct {
	tax       *taxonomy.Taxonomy
	now       func() time.Time
	indicator *regexp.Regexp
	locations map[string]bool
}

// NewExperienceParser now 为空时使用当前时间
func NewExperienceParser(tax *taxonomy.Taxonomy, now func() time.Time) *ExperienceParser {
	if now == nil {
		now = time.Now
	}
	return &ExperienceParser{
		tax:       tax,
		now:       now,
		indicator: keywordAlternation(tax.CompanyIndicators),
		locations: toLowerSet(tax.LocationNames),
	}
}

// keywordAlternation 构造一组关键词的词边界正则
func keywordAlternation(words []string) *regexp.Regexp {
	if len(words) == 0 {
		return regexp.MustCompile(`$^`)
	}
	parts := make([]string, 0, len(words))
	for _, w := range words {
		q := regexp.QuoteMeta(w)
		last, _ := utf8.DecodeLastRuneInString(w)
		if isWordRune(last) {
			q += `\b`
		}
		parts = append(parts, q)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(parts, "|") + `)`)
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func toLowerSet(list []string) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, s := range list {
		out[strings.ToLower(s)] = true
	}
	return out
}

// isBulletLine 以 - * • · 或 "1." "2)" 开头的行
func isBulletLine(line string) bool {
	return bulletPrefixPattern.MatchString(line)
}

var contactPattern = regexp.MustCompile(`(?i)@|https?://|www\.|linkedin|\+?\d[\d\s()-]{8,}\d`)

// isContactLine 邮箱、链接、电话等联系方式行
func isContactLine(line string) bool {
	return contactPattern.MatchString(line)
}

func stripBullet(line string) string {
	return strings.TrimSpace(bulletPrefixPattern.ReplaceAllString(line, ""))
}

type datedLine struct {
	idx   int
	r     DateRange
	err   error
	after []int // 日期行之后被当作职位/公司的行
}

// Parse 解析经历章节；没有经历章节且没有识别到标题时使用全文
func (p *ExperienceParser) Parse(doc *Document) ([]types.ExperienceEntry, error) {
	lines := doc.SectionOr(types.SectionExperience)
	entries := []types.ExperienceEntry{}
	if len(lines) == 0 {
		return entries, nil
	}

	now := p.now()
	// 纯文本模式下学历行的年份不属于经历
	bodyMode := doc.BodyFallback()
	var dates []datedLine
	for i, line := range lines {
		// 已有经历时，项目符号行中的年份属于职责描述
		if len(dates) > 0 && isBulletLine(line) {
			continue
		}
		if bodyMode && p.isDegreeLine(line) {
			continue
		}
		if r, found, err := findDateRange(line, now); found {
			dates = append(dates, datedLine{idx: i, r: r, err: err})
		}
	}
	if len(dates) == 0 {
		// 纯文本模式下没有日期不猜测经历
		if _, ok := doc.Section(types.SectionExperience); !ok {
			return entries, nil
		}
		return p.parseBlocks(doc), nil
	}

	used := make([]bool, len(lines))
	for _, d := range dates {
		used[d.idx] = true
	}

	// 每条经历向前最多看4行，不越过上一条经历的日期行，遇到职责行就停止
	headers := make([][]int, len(dates))
	for k, d := range dates {
		lowerBound := -1
		if k > 0 {
			lowerBound = dates[k-1].idx
		}
		for j := d.idx - 1; j > lowerBound && len(headers[k]) < headerLookback; j-- {
			if used[j] || isBulletLine(lines[j]) || isContactLine(lines[j]) || utf8.RuneCountInString(lines[j]) >= maxHeaderRunes {
				break
			}
			if bodyMode && p.isDegreeLine(lines[j]) {
				break
			}
			headers[k] = append(headers[k], j)
			used[j] = true
		}
	}

	for k := range dates {
		d := &dates[k]
		if len(headers[k]) > 0 || p.datePrefix(lines[d.idx], d.r) != "" {
			continue
		}
		// 日期写在职位之前的版式
		for j := d.idx + 1; j < len(lines) && len(d.after) < 2; j++ {
			if used[j] || isBulletLine(lines[j]) || utf8.RuneCountInString(lines[j]) >= maxHeaderRunes {
				break
			}
			d.after = append(d.after, j)
			used[j] = true
		}
	}

	for k, d := range dates {
		end := len(lines)
		if k+1 < len(dates) {
			end = dates[k+1].idx
		}
		var headerLines []string
		for _, j := range headers[k] {
			headerLines = append(headerLines, lines[j])
		}
		for _, j := range d.after {
			headerLines = append(headerLines, lines[j])
		}
		role, company := p.resolveRoleCompany(p.datePrefix(lines[d.idx], d.r), headerLines)

		entry := types.ExperienceEntry{
			Role:             role,
			Company:          company,
			Type:             classifyExperience(role),
			Responsibilities: collectResponsibilities(lines[d.idx+1:end], used[d.idx+1:end]),
		}
		if d.err != nil {
			doc.note(asFieldError(d.err))
			entry.DurationMonths = defaultDuration(role)
		} else {
			entry.DurationMonths = d.r.Months()
			entry.StartDate = d.r.StartDate()
			entry.EndDate = d.r.EndDate()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (p *ExperienceParser) isDegreeLine(line string) bool {
	for _, d := range p.tax.Degrees {
		if d.Re.MatchString(line) {
			return true
		}
	}
	return false
}

// datePrefix 日期行中日期之前的文字
func (p *ExperienceParser) datePrefix(line string, r DateRange) string {
	return dateRangePrefix(line, r)
}

func dateRangePrefix(line string, r DateRange) string {
	if r.Start <= 0 || r.Start > len(line) {
		return ""
	}
	return strings.Trim(line[:r.Start], edgeTrimChars)
}

type headerInfo struct {
	text      string
	role      string // 同一行同时包含职位和公司时
	company   string
	isCompany bool
	location  bool // 整行只有地点
}

func (p *ExperienceParser) analyzeHeader(line string) headerInfo {
	var kept []string
	hadLocation := false
	for _, part := range headerSplitPattern.Split(line, -1) {
		part = strings.Trim(part, edgeTrimChars)
		if part == "" {
			continue
		}
		if p.locations[strings.ToLower(part)] {
			hadLocation = true
			continue
		}
		kept = append(kept, part)
	}
	switch len(kept) {
	case 0:
		return headerInfo{text: line, location: true}
	case 1:
		return headerInfo{text: kept[0], isCompany: hadLocation || p.indicator.MatchString(kept[0])}
	}
	a, b := kept[0], kept[1]
	if p.indicator.MatchString(a) && !p.indicator.MatchString(b) {
		a, b = b, a
	}
	return headerInfo{text: line, role: a, company: b}
}

// resolveRoleCompany 先用日期行前缀，再用上方的行：
// 含公司标识或地点的行是公司（取最近的），短行是职位（取最远的），剩余空位按位置补齐。
// headerLines 按离日期行由近到远排列。
func (p *ExperienceParser) resolveRoleCompany(prefix string, headerLines []string) (role, company string) {
	if prefix != "" {
		h := p.analyzeHeader(prefix)
		switch {
		case h.role != "" || h.company != "":
			role, company = h.role, h.company
		case h.location:
		case h.isCompany:
			company = h.text
		default:
			role = h.text
		}
	}

	infos := make([]headerInfo, 0, len(headerLines))
	for _, l := range headerLines {
		infos = append(infos, p.analyzeHeader(l))
	}
	taken := make([]bool, len(infos))

	for i, h := range infos {
		if h.role != "" || h.company != "" {
			if role == "" {
				role = h.role
			}
			if company == "" {
				company = h.company
			}
			taken[i] = true
		}
	}
	if company == "" {
		for i, h := range infos {
			if !taken[i] && h.isCompany {
				company, taken[i] = h.text, true
				break
			}
		}
	}
	if role == "" {
		for i := len(infos) - 1; i >= 0; i-- {
			h := infos[i]
			if !taken[i] && !h.location && !h.isCompany && utf8.RuneCountInString(h.text) < maxRoleRunes {
				role, taken[i] = h.text, true
				break
			}
		}
	}
	if role == "" {
		for i := len(infos) - 1; i >= 0; i-- {
			if !taken[i] && !infos[i].location {
				role, taken[i] = infos[i].text, true
				break
			}
		}
	}
	if company == "" {
		for i, h := range infos {
			if !taken[i] && !h.location {
				company, taken[i] = h.text, true
				break
			}
		}
	}
	return role, company
}

// collectResponsibilities 优先取项目符号行，没有时取较长的描述行
func collectResponsibilities(lines []string, used []bool) []string {
	out := []string{}
	for i, l := range lines {
		if !used[i] && isBulletLine(l) {
			if s := stripBullet(l); s != "" {
				out = append(out, s)
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	for i, l := range lines {
		if !used[i] && utf8.RuneCountInString(l) >= minResponsibilityRunes {
			out = append(out, l)
		}
	}
	return out
}

// parseBlocks 经历章节中完全没有日期时按段落切分
func (p *ExperienceParser) parseBlocks(doc *Document) []types.ExperienceEntry {
	blocks := doc.SectionBlocks(types.SectionExperience)
	if len(blocks) == 1 {
		blocks = splitBeforeHeaders(blocks[0])
	}
	entries := []types.ExperienceEntry{}
	for _, block := range blocks {
		var header []string
		for _, l := range block {
			if isBulletLine(l) || len(header) == 3 {
				break
			}
			header = append(header, l)
		}
		if len(header) == 0 || utf8.RuneCountInString(header[0]) >= 80 {
			continue
		}
		closestFirst := make([]string, len(header))
		for i, l := range header {
			closestFirst[len(header)-1-i] = l
		}
		role, company := p.resolveRoleCompany("", closestFirst)
		if role == "" && company == "" {
			continue
		}
		used := make([]bool, len(block))
		for i := range header {
			used[i] = true
		}
		entries = append(entries, types.ExperienceEntry{
			Role:             role,
			Company:          company,
			Type:             classifyExperience(role),
			DurationMonths:   defaultDuration(role),
			Responsibilities: collectResponsibilities(block, used),
		})
	}
	return entries
}

// splitBeforeHeaders 一串项目符号之后出现的非项目符号行开始新的一段
func splitBeforeHeaders(lines []string) [][]string {
	var blocks [][]string
	var cur []string
	prevBullet := false
	for _, l := range lines {
		bullet := isBulletLine(l)
		if !bullet && prevBullet && len(cur) > 0 {
			blocks = append(blocks, cur)
			cur = nil
		}
		cur = append(cur, l)
		prevBullet = bullet
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

func defaultDuration(role string) int {
	if strings.Contains(strings.ToLower(role), "intern") {
		return defaultInternMonths
	}
	return defaultMonths
}

// classifyExperience 根据职位名称判断经历类型
func classifyExperience(role string) types.ExperienceType {
	r := strings.ToLower(role)
	switch {
	case strings.Contains(r, "intern"):
		return types.ExperienceInternship
	case strings.Contains(r, "trainee"), strings.Contains(r, "training"):
		return types.ExperienceTraining
	case strings.Contains(r, "freelance"):
		return types.ExperienceFreelance
	case strings.Contains(r, "contract"):
		return types.ExperienceContract
	}
	return types.ExperienceFullTime
}

func asFieldError(err error) *FieldError {
	if fe, ok := err.(*FieldError); ok {
		return fe
	}
	return &FieldError{Field: "experience", Op: "convert", BaseErr: ErrFormatMismatch, Detail: err.Error()}
}
