package storage

import "time"

// ResumeUploadMessage 简历上传完成后发布的消息
type ResumeUploadMessage struct {
	SubmissionUUID      string    `json:"submission_uuid"`
	SubmissionTimestamp time.Time `json:"submission_timestamp"`
	SourceChannel       string    `json:"source_channel,omitempty"`
	OriginalFilename    string    `json:"original_filename"`
	OriginalFilePathOSS string    `json:"original_file_path_oss"` // MinIO中的对象键
	RawFileMD5          string    `json:"raw_file_md5,omitempty"` // 失败时用于回滚去重集合
}

// ResumeParsedMessage 画像生成后发布的消息
type ResumeParsedMessage struct {
	SubmissionUUID    string  `json:"submission_uuid"`
	ProcessingStatus  string  `json:"processing_status"`
	ProfilePathOSS    string  `json:"profile_path_oss,omitempty"`
	RawTextMD5        string  `json:"raw_text_md5,omitempty"`
	CompletenessScore float64 `json:"resume_completeness_score"`
	ExperienceMonths  int     `json:"experience_months_total"`
	ParserVersion     string  `json:"parser_version,omitempty"`
	ProcessingTime    int64   `json:"processing_time"` // Unix毫秒
	Error             string  `json:"error,omitempty"`
}
