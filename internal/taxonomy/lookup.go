package taxonomy

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-parser-go/internal/types"
)

// SectionKeywords 返回某章节的标题关键词（小写，长词优先）
func (t *Taxonomy) SectionKeywords(key types.SectionKey) []string {
	return t.sectionKeywords[key]
}

// IsHeadingWord 判断是否是标题关键词中的单词
func (t *Taxonomy) IsHeadingWord(word string) bool {
	return t.headingWords[strings.ToLower(word)]
}

// Terms 返回全部可扫描术语，包括同义词折叠的来源术语
func (t *Taxonomy) Terms() []*Term {
	return t.terms
}

// Term 按小写键查找字典术语
func (t *Taxonomy) Term(key string) (*Term, bool) {
	term, ok := t.termIndex[strings.ToLower(key)]
	return term, ok
}

// Lookup 解析技能章节中的单个词元：先别名，再字典。
// 第二个返回值表示是否经过了别名或折叠。
func (t *Taxonomy) Lookup(token string) (*Term, bool, bool) {
	key := strings.ToLower(strings.TrimSpace(token))
	viaAlias := false
	if target, ok := t.aliases[key]; ok {
		key = target
		viaAlias = true
	}
	term, ok := t.termIndex[key]
	if !ok {
		return nil, false, false
	}
	return term, viaAlias || term.Target != term.Key, true
}

// Display 返回折叠后术语的展示形式
func (t *Taxonomy) Display(key string) string {
	key = strings.ToLower(key)
	if term, ok := t.termIndex[key]; ok {
		key = term.Target
	}
	if name, ok := t.canonical[key]; ok {
		return name
	}
	return t.TitleCase(key)
}

// Sources 返回展示名对应的所有原文写法：字典术语以及指向它的别名
func (t *Taxonomy) Sources(name string) []string {
	var out []string
	for _, term := range t.terms {
		if t.Display(term.Key) == name {
			out = append(out, term.Key)
		}
	}
	for alias, target := range t.aliases {
		if t.Display(target) == name {
			out = append(out, alias)
		}
	}
	return out
}

// TitleCase 首字母大写，保留缩写词的全大写形式
func (t *Taxonomy) TitleCase(s string) string {
	var b strings.Builder
	word := strings.Builder{}
	flush := func() {
		if word.Len() == 0 {
			return
		}
		w := word.String()
		if acr, ok := t.acronyms[strings.ToLower(w)]; ok {
			b.WriteString(acr)
		} else {
			r, size := utf8.DecodeRuneInString(w)
			b.WriteRune(unicode.ToUpper(r))
			b.WriteString(w[size:])
		}
		word.Reset()
	}
	for _, r := range s {
		switch r {
		case ' ', '/', '-':
			flush()
			b.WriteRune(r)
		default:
			word.WriteRune(r)
		}
	}
	flush()
	return b.String()
}

// Rank 跨分类冲突时的优先级，数值越小越优先
func (t *Taxonomy) Rank(key string, cat types.SkillCategory) int {
	if cat == types.CategoryTechnical && t.IsHardware(key) {
		if r, ok := t.priority[hardwarePriority]; ok {
			return r
		}
	}
	if r, ok := t.priority[string(cat)]; ok {
		return r
	}
	if cat == types.CategorySoft {
		return len(t.priority) + 1
	}
	return len(t.priority)
}

// IsHardware 嵌入式/硬件术语
func (t *Taxonomy) IsHardware(key string) bool {
	return t.hardware[strings.ToLower(key)]
}

// IsVague 过于宽泛的概念词不作为技能
func (t *Taxonomy) IsVague(key string) bool {
	return t.vague[strings.ToLower(key)]
}

// IsInvalid 无效词元（动词、代词、格式噪声等）
func (t *Taxonomy) IsInvalid(key string) bool {
	return t.invalid[strings.ToLower(key)]
}

// IsContextSensitive 需要独立词元上下文才接受的短术语
func (t *Taxonomy) IsContextSensitive(key string) bool {
	return t.contextual[strings.ToLower(key)]
}

// IsActionVerb 常见的职责描述动词
func (t *Taxonomy) IsActionVerb(word string) bool {
	return t.actionVerbs[strings.ToLower(word)]
}

// StripNoise 去掉词元首尾的噪声短语，如 "proficient in"、"experience with"
func (t *Taxonomy) StripNoise(token string) string {
	s := strings.TrimSpace(token)
	changed := true
	for changed {
		changed = false
		lower := strings.ToLower(s)
		for _, p := range t.noisePhrases {
			if strings.HasPrefix(lower, p+" ") {
				s = strings.TrimSpace(s[len(p):])
				changed = true
				break
			}
			if strings.HasSuffix(lower, " "+p) {
				s = strings.TrimSpace(s[:len(s)-len(p)])
				changed = true
				break
			}
			if lower == p {
				return ""
			}
		}
	}
	return s
}

// SoftSkill 按精确词元查找软技能
func (t *Taxonomy) SoftSkill(token string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(token))
	for _, s := range t.softSkills {
		if s.phrase == key {
			return s.name, true
		}
	}
	return "", false
}

// FindSoftSkills 在小写文本中查找软技能短语
func (t *Taxonomy) FindSoftSkills(lowerText string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range t.softSkills {
		if !seen[s.name] && s.matcher.MatchString(lowerText) {
			seen[s.name] = true
			out = append(out, s.name)
		}
	}
	return out
}

// InferSoftSkills 根据职责/项目描述中的动词推断软技能
func (t *Taxonomy) InferSoftSkills(lowerText string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range t.softInference {
		if !seen[s.name] && s.matcher.MatchString(lowerText) {
			seen[s.name] = true
			out = append(out, s.name)
		}
	}
	return out
}

// Stats 各类条目数量，供命令行展示
func (t *Taxonomy) Stats() map[string]int {
	counts := map[string]int{
		"terms":          len(t.terms),
		"aliases":        len(t.aliases),
		"soft_skills":    len(t.softSkills),
		"degrees":        len(t.Degrees),
		"ml_methods":     len(t.MLMethods),
		"institution_kw": len(t.InstitutionKeywords),
	}
	for _, term := range t.terms {
		counts["category:"+string(term.Category)]++
	}
	return counts
}

// TermsByCategory 按分类列出字典术语的展示形式（已排序去重）
func (t *Taxonomy) TermsByCategory() map[types.SkillCategory][]string {
	out := make(map[types.SkillCategory][]string)
	seen := make(map[string]bool)
	for _, term := range t.terms {
		d := t.Display(term.Key)
		if seen[d] {
			continue
		}
		seen[d] = true
		out[term.Category] = append(out[term.Category], d)
	}
	for c := range out {
		sort.Strings(out[c])
	}
	return out
}
