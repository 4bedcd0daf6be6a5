package processor

import (
	"context"
	"io"
	"time"

	"resume-parser-go/internal/extractor"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/storage/models"
)

//
// 存储相关接口，默认实现位于 internal/storage
//

// ObjectStore 原始文件和画像JSON的对象存储
type ObjectStore interface {
	// UploadOriginal 流式上传原始文件，返回对象键和文件MD5
	UploadOriginal(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, fileSize int64) (string, string, error)
	DownloadOriginal(ctx context.Context, objectName string) ([]byte, error)
	DeleteOriginal(ctx context.Context, objectName string) error
	UploadProfile(ctx context.Context, submissionUUID string, data []byte) (string, error)
}

// ProfileCache 去重集合和按文本MD5缓存的画像
type ProfileCache interface {
	CheckAndAddRawFileMD5(ctx context.Context, md5Hex string) (bool, error)
	RemoveRawFileMD5(ctx context.Context, md5Hex string) error
	CheckAndAddTextMD5(ctx context.Context, md5Hex string) (bool, error)
	SetSubmissionForMD5(ctx context.Context, md5Hex, submissionUUID string) error
	GetSubmissionForMD5(ctx context.Context, md5Hex string) (string, error)
	GetCachedProfile(ctx context.Context, textMD5 string) ([]byte, bool, error)
	CacheProfile(ctx context.Context, textMD5 string, data []byte, ttl time.Duration) error
}

// ProfileRepository 提交记录和画像的持久化
type ProfileRepository interface {
	CreateSubmission(ctx context.Context, sub *models.ResumeSubmission) error
	UpdateSubmissionStatus(ctx context.Context, submissionUUID, status, detail string) error
	UpdateSubmissionTextMD5(ctx context.Context, submissionUUID, textMD5 string) error
	SaveProfile(ctx context.Context, profile *models.ParsedProfile) error
	GetProfile(ctx context.Context, submissionUUID string) (*models.ParsedProfile, error)
}

// OutboxStore 画像与解析事件同事务写入
type OutboxStore interface {
	SaveProfileWithEvent(ctx context.Context, profile *models.ParsedProfile, event *models.OutboxMessage) error
}

// EventPublisher 简历事件的发布与消费
type EventPublisher interface {
	EnsureExchange(exchangeName, exchangeType string, durable bool) error
	EnsureQueue(queueName string, durable bool) error
	BindQueue(queueName, exchangeName, routingKey string) error
	PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}) error
	StartConsumer(ctx context.Context, queueName string, prefetchCount, workers int, handler storage.MessageHandler) (<-chan struct{}, error)
}

//
// 文本提取接口
//

// TextExtractor 按文件名选择格式并提取文本
type TextExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, map[string]interface{}, error)
}

// FormatExtractor 基于 internal/extractor 的默认实现
type FormatExtractor struct{}

// Extract 实现 TextExtractor
func (FormatExtractor) Extract(ctx context.Context, filename string, data []byte) (string, map[string]interface{}, error) {
	return extractor.Extract(ctx, filename, data)
}

var (
	_ ObjectStore       = (*storage.MinIO)(nil)
	_ ProfileCache      = (*storage.Redis)(nil)
	_ ProfileRepository = (*storage.MySQL)(nil)
	_ OutboxStore       = (*storage.MySQL)(nil)
	_ EventPublisher    = (*storage.RabbitMQ)(nil)
	_ TextExtractor     = FormatExtractor{}
)
