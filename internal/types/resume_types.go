package types

// SectionKey 表示简历章节类型
type SectionKey string

const (
	// SectionSkills 技能章节
	SectionSkills SectionKey = "skills"
	// SectionEducation 教育经历章节
	SectionEducation SectionKey = "education"
	// SectionExperience 工作经历章节
	SectionExperience SectionKey = "experience"
	// SectionProjects 项目经历章节
	SectionProjects SectionKey = "projects"
	// SectionCertifications 证书章节
	SectionCertifications SectionKey = "certifications"
	// SectionSummary 个人简介章节
	SectionSummary SectionKey = "summary"
	// SectionHeader 第一个标题之前的内容（姓名、联系方式等）
	SectionHeader SectionKey = "header"
	// SectionBody 未检测到任何标题时的完整文本
	SectionBody SectionKey = "body"
)

// KnownSections 可被标题识别的章节，按优先级排序
var KnownSections = []SectionKey{
	SectionSkills,
	SectionEducation,
	SectionExperience,
	SectionProjects,
	SectionCertifications,
	SectionSummary,
}

// SkillCategory 技能分类
type SkillCategory string

const (
	CategoryLanguages  SkillCategory = "programming_languages"
	CategoryFrameworks SkillCategory = "frameworks_libraries"
	CategoryTools      SkillCategory = "tools_platforms"
	CategoryDatabases  SkillCategory = "databases"
	CategoryTechnical  SkillCategory = "technical_skills"
	CategorySoft       SkillCategory = "soft_skills"
)

// TechnicalCategories 参与完整度评分的技术类分类
var TechnicalCategories = []SkillCategory{
	CategoryLanguages,
	CategoryFrameworks,
	CategoryTools,
	CategoryDatabases,
	CategoryTechnical,
}

// IsKnownCategory 判断分类名是否合法
func IsKnownCategory(c string) bool {
	switch SkillCategory(c) {
	case CategoryLanguages, CategoryFrameworks, CategoryTools, CategoryDatabases, CategoryTechnical, CategorySoft:
		return true
	}
	return false
}

// ExperienceType 工作经历类型
type ExperienceType string

const (
	ExperienceFullTime   ExperienceType = "full-time"
	ExperienceInternship ExperienceType = "internship"
	ExperienceTraining   ExperienceType = "training"
	ExperienceFreelance  ExperienceType = "freelance"
	ExperienceContract   ExperienceType = "contract"
)

// ExperienceEntry 一段工作经历
type ExperienceEntry struct {
	Role             string         `json:"role"`
	Company          string         `json:"company"`
	DurationMonths   int            `json:"duration_months"`
	Type             ExperienceType `json:"type"`
	Responsibilities []string       `json:"responsibilities"`
	StartDate        string         `json:"start_date"` // YYYY-MM，无法解析时为空
	EndDate          string         `json:"end_date"`
}

// EducationEntry 一段教育经历
type EducationEntry struct {
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Institution string `json:"institution"`
	StartYear   string `json:"start_year"`
	EndYear     string `json:"end_year"`
	CGPA        string `json:"cgpa"` // "value/10" 或空
}

// ProjectEntry 一个项目
type ProjectEntry struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ToolsMethodsUsed []string `json:"tools_methods_used"`
}

// CandidateProfile 结构化的候选人画像，JSON字段集合固定
type CandidateProfile struct {
	TechnicalSkills       []string          `json:"technical_skills"`
	ProgrammingLanguages  []string          `json:"programming_languages"`
	FrameworksLibraries   []string          `json:"frameworks_libraries"`
	ToolsPlatforms        []string          `json:"tools_platforms"`
	Databases             []string          `json:"databases"`
	SoftSkills            []string          `json:"soft_skills"`
	Experience            []ExperienceEntry `json:"experience"`
	ExperienceMonthsTotal int               `json:"experience_months_total"`
	Projects              []ProjectEntry    `json:"projects"`
	Education             []EducationEntry  `json:"education"`
	Certifications        []string          `json:"certifications"`
	CompletenessScore     float64           `json:"resume_completeness_score"`
}

// EmptyProfile 返回所有字段为空值的画像，切片均为非nil，序列化为 []
func EmptyProfile() *CandidateProfile {
	return &CandidateProfile{
		TechnicalSkills:      []string{},
		ProgrammingLanguages: []string{},
		FrameworksLibraries:  []string{},
		ToolsPlatforms:       []string{},
		Databases:            []string{},
		SoftSkills:           []string{},
		Experience:           []ExperienceEntry{},
		Projects:             []ProjectEntry{},
		Education:            []EducationEntry{},
		Certifications:       []string{},
	}
}

// SkillsByCategory 返回指定分类的技能列表
func (p *CandidateProfile) SkillsByCategory(c SkillCategory) []string {
	switch c {
	case CategoryLanguages:
		return p.ProgrammingLanguages
	case CategoryFrameworks:
		return p.FrameworksLibraries
	case CategoryTools:
		return p.ToolsPlatforms
	case CategoryDatabases:
		return p.Databases
	case CategoryTechnical:
		return p.TechnicalSkills
	case CategorySoft:
		return p.SoftSkills
	}
	return nil
}

// SetSkills 设置指定分类的技能列表
func (p *CandidateProfile) SetSkills(c SkillCategory, skills []string) {
	if skills == nil {
		skills = []string{}
	}
	switch c {
	case CategoryLanguages:
		p.ProgrammingLanguages = skills
	case CategoryFrameworks:
		p.FrameworksLibraries = skills
	case CategoryTools:
		p.ToolsPlatforms = skills
	case CategoryDatabases:
		p.Databases = skills
	case CategoryTechnical:
		p.TechnicalSkills = skills
	case CategorySoft:
		p.SoftSkills = skills
	}
}

// TechnicalSkillCount 技术类技能总数
func (p *CandidateProfile) TechnicalSkillCount() int {
	n := 0
	for _, c := range TechnicalCategories {
		n += len(p.SkillsByCategory(c))
	}
	return n
}

// AllSkills 所有分类技能的并集（含软技能），按分类顺序
func (p *CandidateProfile) AllSkills() []string {
	var out []string
	for _, c := range append(append([]SkillCategory{}, TechnicalCategories...), CategorySoft) {
		out = append(out, p.SkillsByCategory(c)...)
	}
	return out
}
