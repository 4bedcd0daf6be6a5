package parser

import (
	"resume-parser-go/internal/taxonomy"
	"resume-parser-go/internal/types"
)

// HeadingHit 识别出的一个章节标题
type HeadingHit struct {
	Line int              `json:"line"`
	Text string           `json:"text"`
	Key  types.SectionKey `json:"key"`
	Rule string           `json:"rule"`
}

// Sections 章节切分结果。章节内保留单个空行作为段落分隔。
type Sections struct {
	byKey    map[types.SectionKey][]string
	Order    []types.SectionKey
	Headings []HeadingHit
	Detected bool
}

func newSections() *Sections {
	return &Sections{byKey: make(map[types.SectionKey][]string)}
}

func bodyOnly(lines []string) *Sections {
	s := newSections()
	if body := trimBlankEdges(lines); len(body) > 0 {
		s.byKey[types.SectionBody] = body
		s.Order = []types.SectionKey{types.SectionBody}
	}
	return s
}

func (s *Sections) add(key types.SectionKey, lines []string) {
	lines = trimBlankEdges(lines)
	if len(lines) == 0 {
		return
	}
	existing, ok := s.byKey[key]
	if !ok {
		s.Order = append(s.Order, key)
		s.byKey[key] = append([]string(nil), lines...)
		return
	}
	// 重复出现的章节追加到原有内容之后
	s.byKey[key] = append(append(existing, ""), lines...)
}

// Has 是否存在某章节
func (s *Sections) Has(key types.SectionKey) bool {
	_, ok := s.byKey[key]
	return ok
}

// Lines 某章节的非空行
func (s *Sections) Lines(key types.SectionKey) []string {
	return nonBlank(s.byKey[key])
}

// Map 章节名到非空行的映射，供命令行和接口展示
func (s *Sections) Map() map[string][]string {
	out := make(map[string][]string, len(s.byKey))
	for k, v := range s.byKey {
		out[string(k)] = nonBlank(v)
	}
	return out
}

func trimBlankEdges(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && lines[start] == "" {
		start++
	}
	for end > start && lines[end-1] == "" {
		end--
	}
	return lines[start:end]
}

// SectionSegmenter 基于规则表的单遍章节切分器，配置创建后只读
type SectionSegmenter struct {
	rules []HeadingRule
}

// NewSectionSegmenter 使用分类表中的章节关键词创建切分器
func NewSectionSegmenter(tax *taxonomy.Taxonomy) *SectionSegmenter {
	return &SectionSegmenter{rules: DefaultHeadingRules(tax)}
}

// NewSectionSegmenterWithRules 使用自定义规则表
func NewSectionSegmenterWithRules(rules []HeadingRule) *SectionSegmenter {
	return &SectionSegmenter{rules: rules}
}

// Classify 判断一行是否为章节标题，返回章节和命中的规则名
func (s *SectionSegmenter) Classify(ctx LineContext) (types.SectionKey, string, bool) {
	if !isCandidateHeading(ctx) {
		return "", "", false
	}
	for _, rule := range s.rules {
		if key, ok := rule.Match(ctx); ok {
			return key, rule.Name, true
		}
	}
	return "", "", false
}

// Segment 切分文本行（可包含空行）。第一个标题之前的内容归入 header，
// 没有识别到任何标题时整篇归入 body。
func (s *SectionSegmenter) Segment(lines []string) *Sections {
	res := newSections()
	active := types.SectionHeader
	var buf []string
	prevSep, prevBlank := false, true

	for i, line := range lines {
		if line == "" {
			buf = append(buf, "")
			prevBlank = true
			continue
		}
		if separatorLinePattern.MatchString(line) {
			prevSep = true
			continue
		}

		ctx := NewLineContext(line, prevSep, prevBlank, active)
		if key, rule, ok := s.Classify(ctx); ok {
			res.add(active, buf)
			buf = nil
			active = key
			res.Detected = true
			res.Headings = append(res.Headings, HeadingHit{Line: i, Text: line, Key: key, Rule: rule})
			if ctx.Inline != "" {
				buf = append(buf, ctx.Inline)
			}
		} else {
			buf = append(buf, line)
		}
		prevSep, prevBlank = false, false
	}
	res.add(active, buf)

	if !res.Detected {
		return bodyOnly(lines)
	}
	return res
}
