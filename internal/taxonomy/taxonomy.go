package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"resume-parser-go/internal/types"

	"gopkg.in/yaml.v3"
)

//go:embed default_taxonomy.yaml
var defaultTaxonomyYAML []byte

// ErrInvalidTaxonomy 分类表内容不合法
var ErrInvalidTaxonomy = errors.New("invalid taxonomy")

// hardwarePriority 优先级表中代表嵌入式/硬件术语的占位名
const hardwarePriority = "hardware"

// PatternName 正则模式及其规范展示名
type PatternName struct {
	Pattern string `yaml:"pattern"`
	Name    string `yaml:"name"`
}

// Document 分类表的YAML结构
type Document struct {
	Version               string              `yaml:"version"`
	SectionKeywords       map[string][]string `yaml:"section_keywords"`
	Categories            map[string][]string `yaml:"categories"`
	CategoryOverrides     map[string]string   `yaml:"category_overrides"`
	TechnicalConcepts     []string            `yaml:"technical_concepts"`
	CanonicalNames        map[string]string   `yaml:"canonical_names"`
	Aliases               map[string]string   `yaml:"aliases"`
	SynonymCollapse       map[string]string   `yaml:"synonym_collapse"`
	ContextSensitiveTerms []string            `yaml:"context_sensitive_terms"`
	SoftSkills            map[string]string   `yaml:"soft_skills"`
	SoftSkillInference    map[string]string   `yaml:"soft_skill_inference"`
	VagueConcepts         []string            `yaml:"vague_concepts"`
	InvalidTokens         []string            `yaml:"invalid_tokens"`
	CategoryPriority      []string            `yaml:"category_priority"`
	HardwareTerms         []string            `yaml:"hardware_terms"`
	Acronyms              []string            `yaml:"acronyms"`
	Degrees               []PatternName       `yaml:"degrees"`
	InstitutionKeywords   []string            `yaml:"institution_keywords"`
	InstitutionBlocklist  []string            `yaml:"institution_blocklist"`
	CompanyIndicators     []string            `yaml:"company_indicators"`
	LocationNames         []string            `yaml:"location_names"`
	MLMethods             []PatternName       `yaml:"ml_methods"`
	NoisePhrases          []string            `yaml:"noise_phrases"`
	ActionVerbs           []string            `yaml:"action_verbs"`
	ProjectIndicators     []string            `yaml:"project_indicators"`
}

// NamedPattern 编译后的模式
type NamedPattern struct {
	Name string
	Re   *regexp.Regexp
}

// Term 字典中的一个技能术语
type Term struct {
	Key      string              // 小写术语
	Target   string              // 同义词折叠后的术语
	Category types.SkillCategory // 折叠后术语所属分类
	matcher  *regexp.Regexp
}

// MatchIn 在小写文本中做词边界匹配
func (t *Term) MatchIn(lowerText string) bool {
	return t.matcher.MatchString(lowerText)
}

// Matcher 返回该术语的词边界正则
func (t *Term) Matcher() *regexp.Regexp {
	return t.matcher
}

// Taxonomy 编译后的分类表，加载后只读，可在多个解析器间共享
type Taxonomy struct {
	Version string

	sectionKeywords map[types.SectionKey][]string
	headingWords    map[string]bool

	terms      []*Term
	termIndex  map[string]*Term
	aliases    map[string]string
	canonical  map[string]string
	acronyms   map[string]string
	priority   map[string]int
	hardware   map[string]bool
	vague      map[string]bool
	invalid    map[string]bool
	contextual map[string]bool

	softSkills    []softSkill
	softInference []softSkill

	Degrees              []NamedPattern
	MLMethods            []NamedPattern
	InstitutionKeywords  []string
	InstitutionBlocklist []string
	CompanyIndicators    []string
	LocationNames        []string
	ProjectIndicators    []string

	noisePhrases []string
	actionVerbs  map[string]bool
}

type softSkill struct {
	phrase  string
	name    string
	matcher *regexp.Regexp
}

var (
	defaultOnce     sync.Once
	defaultTaxonomy *Taxonomy
	defaultDocument *Document
)

// Default 返回内置分类表
func Default() *Taxonomy {
	defaultOnce.Do(func() {
		doc, err := decode(defaultTaxonomyYAML)
		if err != nil {
			panic(fmt.Sprintf("内置分类表解析失败: %v", err))
		}
		t, err := Compile(doc)
		if err != nil {
			panic(fmt.Sprintf("内置分类表编译失败: %v", err))
		}
		defaultDocument = doc
		defaultTaxonomy = t
	})
	return defaultTaxonomy
}

// Load 加载自定义分类表并合并到内置表之上；path为空时返回内置表
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取分类表文件失败: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes 从YAML内容加载分类表，合并到内置表之上
func LoadBytes(data []byte) (*Taxonomy, error) {
	Default()
	override, err := decode(data)
	if err != nil {
		return nil, err
	}
	return Compile(merge(defaultDocument, override))
}

func decode(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: 解析YAML失败: %v", ErrInvalidTaxonomy, err)
	}
	return &doc, nil
}

// merge 列表按键整体替换，映射逐项合并
func merge(base, over *Document) *Document {
	out := *base
	if over.Version != "" {
		out.Version = over.Version
	}
	out.SectionKeywords = mergeListMap(base.SectionKeywords, over.SectionKeywords)
	out.Categories = mergeListMap(base.Categories, over.Categories)
	out.CategoryOverrides = mergeMap(base.CategoryOverrides, over.CategoryOverrides)
	out.CanonicalNames = mergeMap(base.CanonicalNames, over.CanonicalNames)
	out.Aliases = mergeMap(base.Aliases, over.Aliases)
	out.SynonymCollapse = mergeMap(base.SynonymCollapse, over.SynonymCollapse)
	out.SoftSkills = mergeMap(base.SoftSkills, over.SoftSkills)
	out.SoftSkillInference = mergeMap(base.SoftSkillInference, over.SoftSkillInference)

	replace := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	replace(&out.TechnicalConcepts, over.TechnicalConcepts)
	replace(&out.ContextSensitiveTerms, over.ContextSensitiveTerms)
	replace(&out.VagueConcepts, over.VagueConcepts)
	replace(&out.InvalidTokens, over.InvalidTokens)
	replace(&out.CategoryPriority, over.CategoryPriority)
	replace(&out.HardwareTerms, over.HardwareTerms)
	replace(&out.Acronyms, over.Acronyms)
	replace(&out.InstitutionKeywords, over.InstitutionKeywords)
	replace(&out.InstitutionBlocklist, over.InstitutionBlocklist)
	replace(&out.CompanyIndicators, over.CompanyIndicators)
	replace(&out.LocationNames, over.LocationNames)
	replace(&out.NoisePhrases, over.NoisePhrases)
	replace(&out.ActionVerbs, over.ActionVerbs)
	replace(&out.ProjectIndicators, over.ProjectIndicators)
	if len(over.Degrees) > 0 {
		out.Degrees = over.Degrees
	}
	if len(over.MLMethods) > 0 {
		out.MLMethods = over.MLMethods
	}
	return &out
}

func mergeMap(base, over map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

func mergeListMap(base, over map[string][]string) map[string][]string {
	out := make(map[string][]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// categoryOrder 术语分类的解析顺序：覆盖表之后依次为语言、框架、工具、数据库
var categoryOrder = []types.SkillCategory{
	types.CategoryLanguages,
	types.CategoryFrameworks,
	types.CategoryTools,
	types.CategoryDatabases,
}

// Compile 校验并编译分类表
func Compile(doc *Document) (*Taxonomy, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: 文档为空", ErrInvalidTaxonomy)
	}
	if strings.TrimSpace(doc.Version) == "" {
		return nil, fmt.Errorf("%w: 缺少version", ErrInvalidTaxonomy)
	}
	for cat := range doc.Categories {
		if !types.IsKnownCategory(cat) || types.SkillCategory(cat) == types.CategorySoft {
			return nil, fmt.Errorf("%w: 未知分类 %q", ErrInvalidTaxonomy, cat)
		}
	}
	for term, cat := range doc.CategoryOverrides {
		if !types.IsKnownCategory(cat) {
			return nil, fmt.Errorf("%w: 术语 %q 的覆盖分类 %q 未知", ErrInvalidTaxonomy, term, cat)
		}
	}

	t := &Taxonomy{
		Version:              doc.Version,
		sectionKeywords:      make(map[types.SectionKey][]string),
		headingWords:         make(map[string]bool),
		termIndex:            make(map[string]*Term),
		aliases:              lowerMap(doc.Aliases),
		canonical:            lowerKeys(doc.CanonicalNames),
		acronyms:             make(map[string]string),
		priority:             make(map[string]int),
		hardware:             toSet(doc.HardwareTerms),
		vague:                toSet(doc.VagueConcepts),
		invalid:              toSet(doc.InvalidTokens),
		contextual:           toSet(doc.ContextSensitiveTerms),
		InstitutionKeywords:  lowerList(doc.InstitutionKeywords),
		InstitutionBlocklist: lowerList(doc.InstitutionBlocklist),
		CompanyIndicators:    lowerList(doc.CompanyIndicators),
		LocationNames:        lowerList(doc.LocationNames),
		ProjectIndicators:    lowerList(doc.ProjectIndicators),
		actionVerbs:          toSet(doc.ActionVerbs),
	}

	for key, words := range doc.SectionKeywords {
		sk := types.SectionKey(key)
		if !isKnownSection(sk) {
			return nil, fmt.Errorf("%w: 未知章节 %q", ErrInvalidTaxonomy, key)
		}
		kws := lowerList(words)
		// 长关键词优先
		sort.SliceStable(kws, func(i, j int) bool { return len(kws[i]) > len(kws[j]) })
		t.sectionKeywords[sk] = kws
		for _, kw := range kws {
			for _, w := range strings.Fields(kw) {
				t.headingWords[w] = true
			}
		}
	}

	for i, p := range doc.CategoryPriority {
		if p != hardwarePriority && !types.IsKnownCategory(p) {
			return nil, fmt.Errorf("%w: 优先级表中的分类 %q 未知", ErrInvalidTaxonomy, p)
		}
		t.priority[p] = i
	}

	for _, a := range doc.Acronyms {
		t.acronyms[strings.ToLower(a)] = a
	}

	// 字典术语：每个术语只属于一个分类
	resolved := make(map[string]types.SkillCategory)
	for term, cat := range doc.CategoryOverrides {
		resolved[strings.ToLower(term)] = types.SkillCategory(cat)
	}
	addTerm := func(key string, cat types.SkillCategory) {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return
		}
		if _, exists := t.termIndex[key]; exists {
			return
		}
		if override, ok := resolved[key]; ok {
			cat = override
		}
		term := &Term{Key: key, Target: key, Category: cat, matcher: wordBoundary(key)}
		t.terms = append(t.terms, term)
		t.termIndex[key] = term
	}
	for _, cat := range categoryOrder {
		for _, term := range doc.Categories[string(cat)] {
			addTerm(term, cat)
		}
	}
	for _, term := range doc.TechnicalConcepts {
		addTerm(term, types.CategoryTechnical)
	}

	// 同义词折叠：来源术语也参与匹配，但归并为目标术语
	collapseKeys := make([]string, 0, len(doc.SynonymCollapse))
	for src := range doc.SynonymCollapse {
		collapseKeys = append(collapseKeys, src)
	}
	sort.Strings(collapseKeys)
	for _, src := range collapseKeys {
		target := strings.ToLower(doc.SynonymCollapse[src])
		targetTerm, ok := t.termIndex[target]
		if !ok {
			return nil, fmt.Errorf("%w: 折叠目标 %q 不在字典中", ErrInvalidTaxonomy, target)
		}
		key := strings.ToLower(src)
		if existing, ok := t.termIndex[key]; ok {
			existing.Target = target
			existing.Category = targetTerm.Category
			continue
		}
		term := &Term{Key: key, Target: target, Category: targetTerm.Category, matcher: wordBoundary(key)}
		t.terms = append(t.terms, term)
		t.termIndex[key] = term
	}

	for alias, target := range t.aliases {
		if _, ok := t.termIndex[target]; !ok {
			return nil, fmt.Errorf("%w: 别名 %q 指向未知术语 %q", ErrInvalidTaxonomy, alias, target)
		}
	}

	t.softSkills = compileSoft(doc.SoftSkills)
	t.softInference = compileSoft(doc.SoftSkillInference)

	var err error
	if t.Degrees, err = compilePatterns(doc.Degrees); err != nil {
		return nil, err
	}
	if t.MLMethods, err = compilePatterns(doc.MLMethods); err != nil {
		return nil, err
	}

	t.noisePhrases = lowerList(doc.NoisePhrases)
	sort.SliceStable(t.noisePhrases, func(i, j int) bool { return len(t.noisePhrases[i]) > len(t.noisePhrases[j]) })

	return t, nil
}

func isKnownSection(k types.SectionKey) bool {
	for _, s := range types.KnownSections {
		if s == k {
			return true
		}
	}
	return false
}

func compilePatterns(in []PatternName) ([]NamedPattern, error) {
	out := make([]NamedPattern, 0, len(in))
	for _, p := range in {
		re, err := regexp.Compile(`(?i)` + p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: 模式 %q 编译失败: %v", ErrInvalidTaxonomy, p.Pattern, err)
		}
		out = append(out, NamedPattern{Name: p.Name, Re: re})
	}
	return out, nil
}

func compileSoft(m map[string]string) []softSkill {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// 长短语优先，保证顺序稳定
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	out := make([]softSkill, 0, len(keys))
	for _, k := range keys {
		lk := strings.ToLower(k)
		out = append(out, softSkill{phrase: lk, name: m[k], matcher: wordBoundary(lk)})
	}
	return out
}

// wordBoundary 构造适配 c++ / c# / node.js 的词边界正则
func wordBoundary(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^a-z0-9+#.])` + regexp.QuoteMeta(term) + `(?:[^a-z0-9+#]|$)`)
}

// WordBoundary 导出给其他包使用的词边界匹配
func WordBoundary(term string) *regexp.Regexp {
	return wordBoundary(strings.ToLower(term))
}

func toSet(list []string) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, s := range list {
		out[strings.ToLower(strings.TrimSpace(s))] = true
	}
	return out
}

func lowerList(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func lowerMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = strings.ToLower(v)
	}
	return out
}

func lowerKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}
