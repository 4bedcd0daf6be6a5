package parser

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"resume-parser-go/internal/taxonomy"
	"resume-parser-go/internal/types"
)

// candidateSource 技能候选的来源策略
type candidateSource string

const (
	sourceSection    candidateSource = "section"
	sourceDictionary candidateSource = "dictionary"
	sourceFallback   candidateSource = "fallback"
	sourceHarvest    candidateSource = "harvest"
	sourceSoft       candidateSource = "soft"
	sourceInferred   candidateSource = "inferred"
)

// candidate 各策略产出的技能候选，统一在 mergeCandidates 中校验与归并
type candidate struct {
	raw      string // 文本中出现的小写形式
	key      string // 折叠后的字典键
	category types.SkillCategory
	display  string // 仅软技能使用
	source   candidateSource
}

// SkillSet 按分类整理后的技能
type SkillSet struct {
	Skills  map[types.SkillCategory][]string
	Warning bool
}

// Apply 写入画像
func (s SkillSet) Apply(p *types.CandidateProfile) {
	for _, c := range append(append([]types.SkillCategory{}, types.TechnicalCategories...), types.CategorySoft) {
		p.SetSkills(c, s.Skills[c])
	}
}

var (
	bulletPrefixPattern = regexp.MustCompile(`^(?:[-*•·]|\d+[.)])\s+`)
	parenGroupPattern   = regexp.MustCompile(`\(([^()]*)\)`)
	tokenSplitPattern   = regexp.MustCompile(`(?i)\s*(?:[,;&]|\s+and\s+|\s+-\s+)\s*`)
	prepositionObject   = regexp.MustCompile(`\b(?:with|using|in)\s+([a-z][a-z0-9+#.]+)`)
	standaloneSplit     = regexp.MustCompile(`(?i)\s*(?:[,;/&()]|\s+and\s+|\s+-\s+)\s*`)
)

const (
	minTokenRunes = 2
	maxTokenRunes = 50
)

// SkillExtractor 多策略技能提取：章节分词、字典匹配、全文回退扫描、经历/项目补充、软技能
type SkillExtractor struct {
	tax       *taxonomy.Taxonomy
	scanOrder []*taxonomy.Term // 长术语优先，用于消除被包含的短术语
	patterns  sync.Map         // raw -> *regexp.Regexp
}

// NewSkillExtractor 创建技能提取器
func NewSkillExtractor(tax *taxonomy.Taxonomy) *SkillExtractor {
	terms := append([]*taxonomy.Term(nil), tax.Terms()...)
	sort.SliceStable(terms, func(i, j int) bool {
		if len(terms[i].Key) != len(terms[j].Key) {
			return len(terms[i].Key) > len(terms[j].Key)
		}
		return terms[i].Key < terms[j].Key
	})
	return &SkillExtractor{tax: tax, scanOrder: terms}
}

// Extract 按固定顺序运行各策略，最后统一归并
func (e *SkillExtractor) Extract(doc *Document) (SkillSet, error) {
	var cands []candidate

	if lines, ok := doc.Section(types.SectionSkills); ok {
		cands = append(cands, e.dictionaryCandidates(e.tokenize(lines))...)
	} else {
		cands = append(cands, e.scan(doc.Lines, sourceFallback)...)
	}
	cands = append(cands, e.harvest(doc)...)
	cands = append(cands, e.softCandidates(doc)...)

	set := e.mergeCandidates(cands, doc.Lower())
	return set, nil
}

// tokenize 把技能章节的行拆成词元
func (e *SkillExtractor) tokenize(lines []string) []string {
	var tokens []string
	for _, line := range lines {
		line = bulletPrefixPattern.ReplaceAllString(line, "")

		segments := []string{}
		for _, m := range parenGroupPattern.FindAllStringSubmatch(line, -1) {
			segments = append(segments, m[1])
		}
		line = parenGroupPattern.ReplaceAllString(line, ",")
		segments = append([]string{line}, segments...)

		for _, seg := range segments {
			seg = stripLabel(seg)
			for _, piece := range tokenSplitPattern.Split(seg, -1) {
				piece = strings.TrimSpace(piece)
				if piece == "" {
					continue
				}
				var parts []string
				if strings.Contains(piece, "/") && !e.known(piece) {
					parts = strings.Split(piece, "/")
				} else {
					parts = []string{piece}
				}
				for _, p := range parts {
					if tok := e.normalizeToken(p); tok != "" {
						tokens = append(tokens, tok)
					}
				}
			}
		}
	}
	return tokens
}

// stripLabel 去掉 "Languages:" 之类的前缀标签
func stripLabel(s string) string {
	i := strings.Index(s, ":")
	if i <= 0 {
		return s
	}
	if len(strings.Fields(s[:i])) > 4 {
		return s
	}
	return strings.TrimSpace(s[i+1:])
}

func (e *SkillExtractor) known(token string) bool {
	_, _, ok := e.tax.Lookup(token)
	return ok
}

// normalizeToken 清理单个词元，不合格时返回空串
func (e *SkillExtractor) normalizeToken(tok string) string {
	tok = e.tax.StripNoise(tok)
	tok = strings.Trim(tok, " \t\"'`*()[]{}<>:;,!?")
	tok = strings.TrimRight(tok, ".")
	if tok == "" {
		return ""
	}
	lower := strings.ToLower(tok)
	n := utf8.RuneCountInString(tok)
	if (n < minTokenRunes && lower != "c" && lower != "r") || n > maxTokenRunes {
		return ""
	}
	if !strings.ContainsFunc(tok, unicode.IsLetter) {
		return ""
	}
	if !strings.Contains(lower, " ") && e.tax.IsHeadingWord(lower) {
		return ""
	}
	if e.tax.IsInvalid(lower) {
		return ""
	}
	if _, soft := e.tax.SoftSkill(lower); soft {
		return ""
	}
	return tok
}

// dictionaryCandidates 词元先按别名和字典精确查找，找不到再在词元内部扫描
func (e *SkillExtractor) dictionaryCandidates(tokens []string) []candidate {
	var out []candidate
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		if term, _, ok := e.tax.Lookup(lower); ok {
			out = append(out, candidate{raw: lower, key: term.Target, category: term.Category, source: sourceDictionary})
			continue
		}
		standalone := map[string]bool{lower: true}
		for _, term := range e.matchTerms(lower, standalone) {
			out = append(out, candidate{raw: term.Key, key: term.Target, category: term.Category, source: sourceSection})
		}
	}
	return out
}

// scan 在若干行中扫描全部字典术语
func (e *SkillExtractor) scan(lines []string, source candidateSource) []candidate {
	if len(lines) == 0 {
		return nil
	}
	text := strings.ToLower(strings.Join(lines, "\n"))
	var out []candidate
	for _, term := range e.matchTerms(text, standaloneTokens(lines)) {
		out = append(out, candidate{raw: term.Key, key: term.Target, category: term.Category, source: source})
	}
	return out
}

// matchTerms 长术语优先匹配，命中后抹掉其出现位置，
// 这样 "spring boot" 不会再带出 "spring"。短的歧义术语必须以独立词元出现。
func (e *SkillExtractor) matchTerms(text string, standalone map[string]bool) []*taxonomy.Term {
	work := []byte(text)
	var found []*taxonomy.Term
	for _, term := range e.scanOrder {
		re := term.Matcher()
		if !re.Match(work) {
			continue
		}
		if e.tax.IsContextSensitive(term.Key) && !standalone[term.Key] {
			continue
		}
		found = append(found, term)
		for {
			loc := re.FindIndex(work)
			if loc == nil {
				break
			}
			inner := strings.Index(string(work[loc[0]:loc[1]]), term.Key)
			if inner < 0 {
				break
			}
			for i := loc[0] + inner; i < loc[0]+inner+len(term.Key); i++ {
				work[i] = ' '
			}
		}
	}
	return found
}

// standaloneTokens 按列表分隔符切出的完整词元
func standaloneTokens(lines []string) map[string]bool {
	out := make(map[string]bool)
	for _, line := range lines {
		line = strings.ToLower(bulletPrefixPattern.ReplaceAllString(line, ""))
		for _, seg := range []string{line, stripLabel(line)} {
			for _, piece := range standaloneSplit.Split(seg, -1) {
				piece = strings.TrimRight(strings.Trim(piece, " \t\"'`*[]{}<>:;,!?"), ".")
				if piece != "" {
					out[piece] = true
				}
			}
		}
		// "with spark" / "using rust" 这类介词宾语也视为独立词元，单字母除外
		for _, m := range prepositionObject.FindAllStringSubmatch(line, -1) {
			out[strings.TrimRight(m[1], ".")] = true
		}
	}
	return out
}

// harvest 补充经历职责与项目描述中提到的技能
func (e *SkillExtractor) harvest(doc *Document) []candidate {
	var lines []string
	for _, key := range []types.SectionKey{types.SectionExperience, types.SectionProjects} {
		section, ok := doc.Section(key)
		if !ok {
			continue
		}
		for _, line := range section {
			if isBulletLine(line) || utf8.RuneCountInString(line) >= minResponsibilityRunes {
				lines = append(lines, line)
			}
		}
	}
	return e.scan(lines, sourceHarvest)
}

// softCandidates 全文匹配软技能词汇，找不到时根据职责动词推断
func (e *SkillExtractor) softCandidates(doc *Document) []candidate {
	var out []candidate
	found := e.tax.FindSoftSkills(doc.Lower())
	for _, name := range found {
		out = append(out, candidate{display: name, category: types.CategorySoft, source: sourceSoft})
	}
	if len(found) > 0 {
		return out
	}
	var resp []string
	for _, line := range doc.SectionOr(types.SectionExperience) {
		if isBulletLine(line) {
			resp = append(resp, line)
		}
	}
	for _, name := range e.tax.InferSoftSkills(strings.ToLower(strings.Join(resp, "\n"))) {
		out = append(out, candidate{display: name, category: types.CategorySoft, source: sourceInferred})
	}
	return out
}

type resolvedSkill struct {
	display  string
	category types.SkillCategory
	rank     int
}

// mergeCandidates 唯一的归并出口：原文校验、同义词折叠、黑名单过滤、
// 按优先级确定唯一分类、生成展示名、排序去重
func (e *SkillExtractor) mergeCandidates(cands []candidate, lowerText string) SkillSet {
	best := make(map[string]*resolvedSkill)
	var order []string

	for _, c := range cands {
		var display string
		if c.category == types.CategorySoft {
			// 软技能是特质而不是技能名，不做原文校验
			display = c.display
		} else {
			if !e.grounded(c.raw, lowerText) {
				continue
			}
			if e.tax.IsVague(c.key) || e.tax.IsInvalid(c.key) {
				continue
			}
			display = e.tax.Display(c.key)
		}
		if display == "" {
			continue
		}
		k := strings.ToLower(display)
		rank := e.tax.Rank(c.key, c.category)
		cur, ok := best[k]
		if !ok {
			best[k] = &resolvedSkill{display: display, category: c.category, rank: rank}
			order = append(order, k)
			continue
		}
		if rank < cur.rank {
			cur.category = c.category
			cur.rank = rank
			cur.display = display
		}
	}

	set := SkillSet{Skills: make(map[types.SkillCategory][]string)}
	for _, k := range order {
		r := best[k]
		set.Skills[r.category] = append(set.Skills[r.category], r.display)
	}
	total := 0
	for c := range set.Skills {
		sortSkills(set.Skills[c])
		total += len(set.Skills[c])
	}
	set.Warning = total == 0
	return set
}

func (e *SkillExtractor) grounded(raw, lowerText string) bool {
	if raw == "" {
		return false
	}
	if v, ok := e.patterns.Load(raw); ok {
		return v.(*regexp.Regexp).MatchString(lowerText)
	}
	re := taxonomy.WordBoundary(raw)
	e.patterns.Store(raw, re)
	return re.MatchString(lowerText)
}

// DetectTools 在一段描述中识别技能，返回展示名（不含软技能）
func (e *SkillExtractor) DetectTools(lines []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range e.scan(lines, sourceHarvest) {
		if e.tax.IsVague(c.key) || e.tax.IsInvalid(c.key) {
			continue
		}
		d := e.tax.Display(c.key)
		if !seen[strings.ToLower(d)] {
			seen[strings.ToLower(d)] = true
			out = append(out, d)
		}
	}
	return out
}

// sortSkills 忽略大小写排序，保证输出稳定
func sortSkills(s []string) {
	sort.SliceStable(s, func(i, j int) bool {
		a, b := strings.ToLower(s[i]), strings.ToLower(s[j])
		if a != b {
			return a < b
		}
		return s[i] < s[j]
	})
}
