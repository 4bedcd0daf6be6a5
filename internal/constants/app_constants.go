package constants

import "time"

const (
	// DefaultParserVer 写入画像记录的解析器版本，配置未指定时使用
	DefaultParserVer = "rule-based-v1"

	// ProfileCacheDuration 画像缓存默认过期时间
	ProfileCacheDuration = 7 * 24 * time.Hour
	// DefaultParseTimeout 单份简历解析默认超时
	DefaultParseTimeout = 30 * time.Second
)

// 提交处理状态
const (
	StatusPendingParsing       = "PENDING_PARSING"
	StatusTextExtracted        = "TEXT_EXTRACTED"
	StatusTextExtractionFailed = "TEXT_EXTRACTION_FAILED"
	StatusParsed               = "PARSED"
	StatusParsedFromCache      = "PARSED_FROM_CACHE"
	StatusParseFailed          = "PARSE_FAILED"
	StatusDuplicate            = "DUPLICATE_FILE"
	StatusUploadFailed         = "UPLOAD_FAILED"
)
