package parser

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"resume-parser-go/internal/taxonomy"
	"resume-parser-go/internal/types"
)

const (
	maxHeadingChars = 100
	maxHeadingWords = 8
)

var (
	separatorLinePattern = regexp.MustCompile(`^[=\-_*~]{3,}$`)
	nonLetterPattern     = regexp.MustCompile(`[^\p{L} ]+`)
	multiSpacePattern    = regexp.MustCompile(`\s+`)
)

// LineContext 标题规则判断所需的行及其上下文
type LineContext struct {
	Line          string // 原始行
	Head          string // 冒号之前的部分，没有冒号时等于整行
	Inline        string // 冒号之后的内联内容
	Normalized    string // Head 转小写后只保留字母和空格
	ColonEnded    bool   // 行以冒号结尾
	PrevSeparator bool   // 上一行是 ==== / ---- 之类的分隔线
	PrevBlank     bool
	Active        types.SectionKey // 当前所在章节
}

// HeadingRule 一条标题识别规则，Priority 越小越先判断
type HeadingRule struct {
	Name     string
	Priority int
	Match    func(ctx LineContext) (types.SectionKey, bool)
}

// NewLineContext 构建单行的判断上下文
func NewLineContext(line string, prevSeparator, prevBlank bool, active types.SectionKey) LineContext {
	ctx := LineContext{
		Line:          line,
		Head:          line,
		PrevSeparator: prevSeparator,
		PrevBlank:     prevBlank,
		Active:        active,
	}
	if strings.HasSuffix(line, ":") {
		ctx.ColonEnded = true
		ctx.Head = strings.TrimSpace(strings.TrimSuffix(line, ":"))
	} else if i := strings.Index(line, ":"); i > 0 {
		if rest := strings.TrimSpace(line[i+1:]); rest != "" {
			ctx.Head = strings.TrimSpace(line[:i])
			ctx.Inline = rest
		}
	}
	ctx.Normalized = normalizeHeading(ctx.Head)
	return ctx
}

func normalizeHeading(s string) string {
	s = nonLetterPattern.ReplaceAllString(strings.ToLower(s), " ")
	return strings.TrimSpace(multiSpacePattern.ReplaceAllString(s, " "))
}

// isCandidateHeading 过长、词数过多或由多句组成的行不可能是标题
func isCandidateHeading(ctx LineContext) bool {
	if ctx.Normalized == "" || len(ctx.Head) >= maxHeadingChars {
		return false
	}
	if len(strings.Fields(ctx.Head)) > maxHeadingWords {
		return false
	}
	parts := 0
	for _, p := range strings.Split(ctx.Head, ".") {
		if strings.TrimSpace(p) != "" {
			parts++
		}
	}
	return parts <= 2
}

var headingSmallWords = map[string]bool{"and": true, "of": true, "&": true, "in": true, "the": true, "for": true, "to": true, "-": true}

// titleLike 标题式写法：全大写，或每个实词首字母大写
func titleLike(s string) bool {
	if s == "" || strings.HasSuffix(s, ".") {
		return false
	}
	if strings.ToUpper(s) == s {
		return true
	}
	for _, w := range strings.Fields(s) {
		if headingSmallWords[strings.ToLower(w)] {
			continue
		}
		r := []rune(w)[0]
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

type keywordEntry struct {
	key     types.SectionKey
	keyword string
}

// keywordTable 按长度降序排列的章节关键词，同长度保持章节优先级顺序
type keywordTable []keywordEntry

func newKeywordTable(tax *taxonomy.Taxonomy) keywordTable {
	var table keywordTable
	for _, key := range types.KnownSections {
		for _, kw := range tax.SectionKeywords(key) {
			table = append(table, keywordEntry{key: key, keyword: normalizeHeading(kw)})
		}
	}
	sort.SliceStable(table, func(i, j int) bool { return len(table[i].keyword) > len(table[j].keyword) })
	return table
}

func (t keywordTable) exact(norm string) (types.SectionKey, bool) {
	for _, e := range t {
		if norm == e.keyword {
			return e.key, true
		}
	}
	return "", false
}

func (t keywordTable) prefix(norm string) (types.SectionKey, bool) {
	for _, e := range t {
		if strings.HasPrefix(norm, e.keyword+" ") {
			return e.key, true
		}
	}
	return "", false
}

func (t keywordTable) contains(norm string) (types.SectionKey, bool) {
	padded := " " + norm + " "
	for _, e := range t {
		if strings.Contains(padded, " "+e.keyword+" ") {
			return e.key, true
		}
	}
	return "", false
}

func isSectionName(norm string) (types.SectionKey, bool) {
	for _, key := range types.KnownSections {
		name := string(key)
		if norm == name || norm == strings.TrimSuffix(name, "s") {
			return key, true
		}
	}
	return "", false
}

// inlineAllowed "Skills: Python, Go" 这类内联标题只在段落开头或全大写时生效，
// 避免经历中的 "Technologies: ..." 被当成新章节
func inlineAllowed(ctx LineContext) bool {
	if ctx.Inline == "" {
		return true
	}
	return ctx.PrevBlank || ctx.PrevSeparator || ctx.Active == types.SectionHeader ||
		strings.ToUpper(ctx.Head) == ctx.Head
}

// DefaultHeadingRules 按优先级排列的标题规则表
func DefaultHeadingRules(tax *taxonomy.Taxonomy) []HeadingRule {
	kw := newKeywordTable(tax)
	rules := []HeadingRule{
		{
			Name:     "separator-preceded",
			Priority: 1,
			Match: func(ctx LineContext) (types.SectionKey, bool) {
				if !ctx.PrevSeparator {
					return "", false
				}
				if key, ok := kw.exact(ctx.Normalized); ok {
					return key, true
				}
				return kw.prefix(ctx.Normalized)
			},
		},
		{
			Name:     "keyword-exact",
			Priority: 2,
			Match: func(ctx LineContext) (types.SectionKey, bool) {
				if !inlineAllowed(ctx) {
					return "", false
				}
				return kw.exact(ctx.Normalized)
			},
		},
		{
			Name:     "keyword-prefix",
			Priority: 3,
			Match: func(ctx LineContext) (types.SectionKey, bool) {
				if ctx.Inline != "" {
					return "", false
				}
				if ctx.ColonEnded || titleLike(ctx.Head) {
					return kw.prefix(ctx.Normalized)
				}
				return "", false
			},
		},
		{
			Name:     "colon-terminated",
			Priority: 4,
			Match: func(ctx LineContext) (types.SectionKey, bool) {
				if !ctx.ColonEnded {
					return "", false
				}
				return kw.contains(ctx.Normalized)
			},
		},
		{
			Name:     "separator-generic",
			Priority: 5,
			Match: func(ctx LineContext) (types.SectionKey, bool) {
				if !ctx.PrevSeparator {
					return "", false
				}
				return isSectionName(ctx.Normalized)
			},
		},
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })
	return rules
}
