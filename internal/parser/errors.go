package parser

import (
	"errors"
	"fmt"
)

// 解析错误分类
var (
	ErrExtraction      = errors.New("无可用简历文本")
	ErrSegmentation    = errors.New("章节切分失败")
	ErrFieldExtraction = errors.New("字段提取失败")
	ErrFormatMismatch  = errors.New("数值格式不匹配")
)

// FieldError 单个字段的解析错误，只进入诊断信息，不影响画像输出
type FieldError struct {
	Field   string
	Op      string
	BaseErr error
	Detail  string
}

func (e *FieldError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (字段:%s, 操作:%s): %s", e.BaseErr, e.Field, e.Op, e.Detail)
	}
	return fmt.Sprintf("%s (字段:%s, 操作:%s)", e.BaseErr, e.Field, e.Op)
}

func (e *FieldError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *FieldError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

func NewExtractionError(detail string) *FieldError {
	return &FieldError{Field: "text", Op: "normalize", BaseErr: ErrExtraction, Detail: detail}
}

func NewSegmentationError(detail string) *FieldError {
	return &FieldError{Field: "sections", Op: "segment", BaseErr: ErrSegmentation, Detail: detail}
}

func NewFieldExtractionError(field, detail string) *FieldError {
	return &FieldError{Field: field, Op: "extract", BaseErr: ErrFieldExtraction, Detail: detail}
}

func NewFormatMismatchError(field, value string) *FieldError {
	return &FieldError{Field: field, Op: "convert", BaseErr: ErrFormatMismatch, Detail: fmt.Sprintf("无法识别的值 %q", value)}
}
