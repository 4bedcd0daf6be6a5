package parser

import (
	"fmt"
	"strings"
	"sync"

	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/types"
)

// Document 一份简历的规范化文本，创建后只读。
// 章节切分结果在首次访问时计算并缓存，只对本文档有效。
type Document struct {
	Raw   string
	Text  string   // 规范化后的文本
	Lines []string // 非空、已去除首尾空白的行

	lower     string
	segmenter *SectionSegmenter

	once     sync.Once
	sections *Sections

	diagMu sync.Mutex
	diags  []*FieldError
}

// NewDocument 规范化原始文本并构建文档
func NewDocument(raw string, segmenter *SectionSegmenter) *Document {
	text := NormalizeText(raw)
	doc := &Document{
		Raw:       raw,
		Text:      text,
		lower:     strings.ToLower(text),
		segmenter: segmenter,
	}
	for _, line := range strings.Split(text, "\n") {
		if line != "" {
			doc.Lines = append(doc.Lines, line)
		}
	}
	return doc
}

// Empty 没有可用文本
func (d *Document) Empty() bool {
	return len(d.Lines) == 0
}

// Lower 小写的规范化文本，用于词边界匹配
func (d *Document) Lower() string {
	return d.lower
}

// Sections 返回章节切分结果；切分过程中出现panic时退化为整篇body
func (d *Document) Sections() *Sections {
	d.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				d.sections = bodyOnly(d.allLinesWithBlanks())
				d.note(NewSegmentationError(fmt.Sprint(r)))
			}
		}()
		if d.segmenter == nil {
			d.sections = bodyOnly(d.allLinesWithBlanks())
			return
		}
		d.sections = d.segmenter.Segment(d.allLinesWithBlanks())
	})
	return d.sections
}

func (d *Document) allLinesWithBlanks() []string {
	if d.Text == "" {
		return nil
	}
	return strings.Split(d.Text, "\n")
}

// Section 返回某章节的非空行
func (d *Document) Section(key types.SectionKey) ([]string, bool) {
	s := d.Sections()
	raw, ok := s.byKey[key]
	if !ok {
		return nil, false
	}
	return nonBlank(raw), true
}

// SectionOr 返回章节内容；章节不存在且整篇没有识别到任何标题时返回全部行
func (d *Document) SectionOr(key types.SectionKey) []string {
	if lines, ok := d.Section(key); ok {
		return lines
	}
	if d.BodyFallback() {
		return d.Lines
	}
	return nil
}

// SectionBlocks 按空行把章节切成段落
func (d *Document) SectionBlocks(key types.SectionKey) [][]string {
	s := d.Sections()
	raw, ok := s.byKey[key]
	if !ok {
		if !d.BodyFallback() {
			return nil
		}
		raw = d.allLinesWithBlanks()
	}
	var blocks [][]string
	var cur []string
	for _, line := range raw {
		if line == "" {
			if len(cur) > 0 {
				blocks = append(blocks, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

// BodyFallback 没有识别到任何章节标题
func (d *Document) BodyFallback() bool {
	return !d.Sections().Detected
}

// note 记录一条诊断，可被并发的提取器调用
func (d *Document) note(err *FieldError) {
	if err == nil {
		return
	}
	logger.Diag().Str("field", err.Field).Str("op", err.Op).Msg(err.Error())
	d.diagMu.Lock()
	d.diags = append(d.diags, err)
	d.diagMu.Unlock()
}

func (d *Document) diagnostics() []*FieldError {
	d.diagMu.Lock()
	defer d.diagMu.Unlock()
	out := make([]*FieldError, len(d.diags))
	copy(out, d.diags)
	return out
}

func nonBlank(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
