package models

import (
	"time"

	"gorm.io/datatypes"
)

// ResumeSubmission 简历提交记录
type ResumeSubmission struct {
	SubmissionUUID      string    `gorm:"type:char(36);primaryKey"`
	SubmissionTimestamp time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_rs_submission_timestamp"`
	SourceChannel       string    `gorm:"type:varchar(100)"`
	OriginalFilename    string    `gorm:"type:varchar(255)"`
	OriginalFilePathOSS string    `gorm:"type:varchar(1024)"`
	RawFileMD5          string    `gorm:"type:char(32);index:idx_rs_raw_file_md5"`
	RawTextMD5          string    `gorm:"type:char(32);index:idx_rs_raw_text_md5"`
	ProcessingStatus    string    `gorm:"type:varchar(50);default:'PENDING_PARSING';index:idx_rs_processing_status"`
	ErrorMessage        string    `gorm:"type:text"`
	ParserVersion       string    `gorm:"type:varchar(50)"`
	CreatedAt           time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt           time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	Profile *ParsedProfile `gorm:"foreignKey:SubmissionUUID;references:SubmissionUUID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (ResumeSubmission) TableName() string {
	return "resume_submissions"
}

// ParsedProfile 结构化画像，一份提交对应一条
type ParsedProfile struct {
	SubmissionUUID        string         `gorm:"type:char(36);primaryKey"`
	ProfileJSON           datatypes.JSON `gorm:"type:json;not null"`
	ProfilePathOSS        string         `gorm:"type:varchar(1024)"`
	CompletenessScore     float64        `gorm:"type:float;index:idx_pp_completeness_score"`
	ExperienceMonthsTotal int            `gorm:"type:int;index:idx_pp_experience_months"`
	TechnicalSkillCount   int            `gorm:"type:int"`
	SkillsWarning         bool           `gorm:"type:tinyint(1)"`
	TaxonomyVersion       string         `gorm:"type:varchar(50)"`
	ParserVersion         string         `gorm:"type:varchar(50)"`
	FromCache             bool           `gorm:"type:tinyint(1)"`
	CreatedAt             time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt             time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (ParsedProfile) TableName() string {
	return "parsed_profiles"
}

// 发件箱消息状态
const (
	OutboxStatusPending = "PENDING"
	OutboxStatusSent    = "SENT"
	OutboxStatusFailed  = "FAILED"
)

// OutboxMessage 与画像写入同一事务的待发布事件，由 outbox.Relay 投递
type OutboxMessage struct {
	ID               uint64         `gorm:"primaryKey;autoIncrement"`
	AggregateID      string         `gorm:"type:char(36);index:idx_ob_aggregate_id"`
	EventType        string         `gorm:"type:varchar(100)"`
	Payload          datatypes.JSON `gorm:"type:json;not null"`
	TargetExchange   string         `gorm:"type:varchar(255)"`
	TargetRoutingKey string         `gorm:"type:varchar(255)"`
	Status           string         `gorm:"type:varchar(20);default:'PENDING';index:idx_ob_status_created,priority:1"`
	RetryCount       int            `gorm:"type:int;default:0"`
	ErrorMessage     string         `gorm:"type:text"`
	CreatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_ob_status_created,priority:2"`
	ProcessedAt      *time.Time     `gorm:"type:datetime(6)"`
}

func (OutboxMessage) TableName() string {
	return "outbox_messages"
}
