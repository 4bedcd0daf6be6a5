package parser

import (
	"fmt"
	"sync"
	"time"

	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/taxonomy"
	"resume-parser-go/internal/types"
)

// Diagnostics 解析过程的诊断信息，不会写入画像
type Diagnostics struct {
	Errors                []*FieldError `json:"errors,omitempty"`
	ProjectIndicatorCount int           `json:"project_indicator_count"`
	HeadingsDetected      bool          `json:"headings_detected"`
	Headings              []HeadingHit  `json:"headings,omitempty"`
	Elapsed               time.Duration `json:"elapsed"`
}

// ParseResult 画像及其附带信息
type ParseResult struct {
	Profile       *types.CandidateProfile `json:"profile"`
	SkillsWarning bool                    `json:"skills_warning"`
	Diagnostics   Diagnostics             `json:"-"`
}

// Option ProfileParser 的配置项
type Option func(*ProfileParser)

// WithClock 指定 "Present" 对应的当前时间，测试中使用
func WithClock(now func() time.Time) Option {
	return func(p *ProfileParser) {
		p.now = now
	}
}

// WithSegmenter 使用自定义章节切分器
func WithSegmenter(s *SectionSegmenter) Option {
	return func(p *ProfileParser) {
		p.segmenter = s
	}
}

// ProfileParser 简历结构化解析入口。只持有只读配置，可在多个goroutine间共享。
type ProfileParser struct {
	tax        *taxonomy.Taxonomy
	now        func() time.Time
	segmenter  *SectionSegmenter
	skills     *SkillExtractor
	experience *ExperienceParser
	education  *EducationExtractor
	projects   *ProjectExtractor
}

// NewProfileParser tax 为空时使用内置分类表
func NewProfileParser(tax *taxonomy.Taxonomy, opts ...Option) *ProfileParser {
	if tax == nil {
		tax = taxonomy.Default()
	}
	p := &ProfileParser{tax: tax, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.segmenter == nil {
		p.segmenter = NewSectionSegmenter(tax)
	}
	p.skills = NewSkillExtractor(tax)
	p.experience = NewExperienceParser(tax, p.now)
	p.education = NewEducationExtractor(tax, p.now)
	p.projects = NewProjectExtractor(tax, p.skills)
	return p
}

// Taxonomy 当前使用的分类表
func (p *ProfileParser) Taxonomy() *taxonomy.Taxonomy {
	return p.tax
}

// NewDocument 用本解析器的切分规则构建文档
func (p *ProfileParser) NewDocument(text string) *Document {
	return NewDocument(text, p.segmenter)
}

// Parse 返回结构固定的画像，任何输入都不会panic
func (p *ProfileParser) Parse(text string) *types.CandidateProfile {
	return p.ParseDetailed(text).Profile
}

// ParseDetailed 顺序运行各提取器
func (p *ProfileParser) ParseDetailed(text string) *ParseResult {
	return p.run(text, false)
}

// ParseConcurrently 各提取器在独立goroutine中运行，全部完成后再评分
func (p *ProfileParser) ParseConcurrently(text string) *ParseResult {
	return p.run(text, true)
}

// fieldResult 单个字段的提取结果，失败时携带错误并使用默认值
type fieldResult[T any] struct {
	value T
	err   *FieldError
}

// bestEffort 捕获提取器的错误和panic，失败时返回默认值
func bestEffort[T any](field string, def T, fn func() (T, error)) (res fieldResult[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = fieldResult[T]{value: def, err: NewFieldExtractionError(field, fmt.Sprint(r))}
		}
	}()
	v, err := fn()
	if err != nil {
		return fieldResult[T]{value: def, err: NewFieldExtractionError(field, err.Error())}
	}
	return fieldResult[T]{value: v}
}

func (p *ProfileParser) run(text string, concurrent bool) (res *ParseResult) {
	start := time.Now()
	res = &ParseResult{Profile: types.EmptyProfile(), SkillsWarning: true}
	defer func() {
		if r := recover(); r != nil {
			res = &ParseResult{Profile: types.EmptyProfile(), SkillsWarning: true}
			res.Diagnostics.Errors = []*FieldError{NewExtractionError(fmt.Sprint(r))}
		}
		res.Diagnostics.Elapsed = time.Since(start)
		p.logDiagnostics(res)
	}()

	doc := p.NewDocument(text)
	if doc.Empty() {
		res.Diagnostics.Errors = []*FieldError{NewExtractionError("输入文本为空")}
		return res
	}
	sections := doc.Sections()

	var (
		skills     fieldResult[SkillSet]
		experience fieldResult[[]types.ExperienceEntry]
		education  fieldResult[[]types.EducationEntry]
		projects   fieldResult[[]types.ProjectEntry]
		certs      fieldResult[[]string]
	)
	tasks := []func(){
		func() {
			skills = bestEffort("skills", SkillSet{Warning: true}, func() (SkillSet, error) { return p.skills.Extract(doc) })
		},
		func() {
			experience = bestEffort("experience", []types.ExperienceEntry{}, func() ([]types.ExperienceEntry, error) { return p.experience.Parse(doc) })
		},
		func() {
			education = bestEffort("education", []types.EducationEntry{}, func() ([]types.EducationEntry, error) { return p.education.Extract(doc) })
		},
		func() {
			projects = bestEffort("projects", []types.ProjectEntry{}, func() ([]types.ProjectEntry, error) { return p.projects.Extract(doc) })
		},
		func() {
			certs = bestEffort("certifications", []string{}, func() ([]string, error) { return ExtractCertifications(doc) })
		},
	}
	if concurrent {
		var wg sync.WaitGroup
		for _, task := range tasks {
			wg.Add(1)
			go func(run func()) {
				defer wg.Done()
				run()
			}(task)
		}
		wg.Wait()
	} else {
		for _, task := range tasks {
			task()
		}
	}

	profile := types.EmptyProfile()
	skills.value.Apply(profile)
	profile.Experience = nonNil(experience.value)
	profile.Education = nonNil(education.value)
	profile.Projects = nonNil(projects.value)
	profile.Certifications = nonNil(certs.value)
	for _, e := range profile.Experience {
		profile.ExperienceMonthsTotal += e.DurationMonths
	}

	indicators := CountProjectIndicators(doc, p.tax)
	profile.CompletenessScore = CompletenessScore(profile, indicators)

	res.Profile = profile
	res.SkillsWarning = skills.value.Warning || skills.err != nil
	res.Diagnostics.ProjectIndicatorCount = indicators
	res.Diagnostics.HeadingsDetected = sections.Detected
	res.Diagnostics.Headings = sections.Headings
	for _, fe := range []*FieldError{skills.err, experience.err, education.err, projects.err, certs.err} {
		if fe != nil {
			res.Diagnostics.Errors = append(res.Diagnostics.Errors, fe)
		}
	}
	res.Diagnostics.Errors = append(res.Diagnostics.Errors, doc.diagnostics()...)
	return res
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (p *ProfileParser) logDiagnostics(res *ParseResult) {
	if !logger.DiagnosticsEnabled() {
		return
	}
	for _, fe := range res.Diagnostics.Errors {
		logger.Diag().Str("field", fe.Field).Str("op", fe.Op).Msg(fe.Error())
	}
	logger.Diag().
		Bool("headings_detected", res.Diagnostics.HeadingsDetected).
		Int("headings", len(res.Diagnostics.Headings)).
		Int("project_indicators", res.Diagnostics.ProjectIndicatorCount).
		Bool("skills_warning", res.SkillsWarning).
		Float64("score", res.Profile.CompletenessScore).
		Dur("elapsed", res.Diagnostics.Elapsed).
		Msg("简历解析完成")
}
