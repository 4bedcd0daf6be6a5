package processor

import (
	"errors"
	"fmt"

	"resume-parser-go/internal/storage"
)

// 定义基础错误类型
var (
	ErrResumeDownloadFailed = errors.New("下载简历失败")
	ErrExtractTextFailed    = errors.New("提取简历文本失败")
	ErrParseProfileFailed   = errors.New("结构化解析简历失败")
	ErrStoreProfileFailed   = errors.New("保存画像失败")
	ErrPublishMessageFailed = errors.New("发布简历事件失败")
	ErrDatabaseFailed       = errors.New("数据库操作失败")
	ErrUploadFailed         = errors.New("上传简历失败")

	ErrUnsupportedFile = errors.New("不支持的文件类型")
	ErrEmptyInput      = errors.New("简历内容为空")
	ErrParseTimeout    = errors.New("解析超时")
	ErrNotConfigured   = errors.New("异步流水线未配置")

	// ErrProfileNotFound 提交不存在或尚未生成画像
	ErrProfileNotFound = storage.ErrProfileNotFound
)

// ProfileProcessError 包含详细错误信息的自定义错误
type ProfileProcessError struct {
	SubmissionUUID string
	Op             string
	BaseErr        error
	Detail         string
}

func (e *ProfileProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, UUID:%s): %s", e.BaseErr, e.Op, e.SubmissionUUID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, UUID:%s)", e.BaseErr, e.Op, e.SubmissionUUID)
}

func (e *ProfileProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ProfileProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

func newProcessError(op string, base error, uuid, detail string) error {
	return &ProfileProcessError{SubmissionUUID: uuid, Op: op, BaseErr: base, Detail: detail}
}

// 错误构造函数
func NewDownloadError(uuid, detail string) error {
	return newProcessError("download", ErrResumeDownloadFailed, uuid, detail)
}

func NewExtractError(uuid, detail string) error {
	return newProcessError("extract", ErrExtractTextFailed, uuid, detail)
}

func NewParseError(uuid, detail string) error {
	return newProcessError("parse", ErrParseProfileFailed, uuid, detail)
}

func NewStoreError(uuid, detail string) error {
	return newProcessError("store", ErrStoreProfileFailed, uuid, detail)
}

func NewPublishError(uuid, detail string) error {
	return newProcessError("publish", ErrPublishMessageFailed, uuid, detail)
}

func NewDatabaseError(uuid, detail string) error {
	return newProcessError("database", ErrDatabaseFailed, uuid, detail)
}

func NewUploadError(uuid, detail string) error {
	return newProcessError("upload", ErrUploadFailed, uuid, detail)
}

// requeue 标记为可重试，消费者会将消息重新入队
func requeue(err error) error {
	return errors.Join(storage.ErrRequeue, err)
}
