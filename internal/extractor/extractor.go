// Package extractor 把简历文件（txt/pdf/docx）转换为纯文本，供结构化解析使用
package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resume-parser-go/internal/logger"
)

// 定义基础错误类型
var (
	ErrUnsupportedFormat = errors.New("不支持的文件格式")
	ErrReadFailed        = errors.New("读取文件失败")
	ErrDecodeFailed      = errors.New("解析文件内容失败")
	ErrNoText            = errors.New("文件中没有可提取的文本")
)

// ExtractError 文本提取错误
type ExtractError struct {
	URI     string
	Format  string
	BaseErr error
	Detail  string
}

func (e *ExtractError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (格式:%s, 文件:%s): %s", e.BaseErr, e.Format, e.URI, e.Detail)
	}
	return fmt.Sprintf("%s (格式:%s, 文件:%s)", e.BaseErr, e.Format, e.URI)
}

func (e *ExtractError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ExtractError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

func newError(base error, format, uri, detail string) error {
	return &ExtractError{URI: uri, Format: format, BaseErr: base, Detail: detail}
}

// TextExtractor 文本提取器接口。返回提取的文本和元数据
type TextExtractor interface {
	// Format 文件格式名，如 "pdf"
	Format() string

	// ExtractFromFile 从本地文件提取文本
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)

	// ExtractTextFromReader 从 io.Reader 提取文本，uri 仅用于日志和元数据
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error)

	// ExtractTextFromBytes 从字节数组提取文本
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error)
}

// SupportedExtensions 支持的文件扩展名
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".text": true,
	".pdf":  true,
	".docx": true,
}

// IsSupported 判断文件扩展名是否受支持
func IsSupported(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ForFile 按扩展名返回对应的提取器
func ForFile(filename string) (TextExtractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".text":
		return NewPlainTextExtractor(), nil
	case ".pdf":
		return NewPDFExtractor(), nil
	case ".docx":
		return NewDocxExtractor(), nil
	}
	return nil, newError(ErrUnsupportedFormat, strings.TrimPrefix(ext, "."), filename, "仅支持 .txt/.pdf/.docx")
}

// Extract 根据文件名选择提取器并提取字节内容
func Extract(ctx context.Context, filename string, data []byte) (string, map[string]interface{}, error) {
	ex, err := ForFile(filename)
	if err != nil {
		return "", nil, err
	}
	return ex.ExtractTextFromBytes(ctx, data, filename)
}

// readAll 先检查ctx再读取全部内容，各格式共用
func readAll(ctx context.Context, reader io.Reader, format, uri string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, newError(ErrReadFailed, format, uri, err.Error())
	}
	return data, nil
}

func extractFile(ctx context.Context, ex TextExtractor, filePath string) (string, map[string]interface{}, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", nil, newError(ErrReadFailed, ex.Format(), filePath, err.Error())
	}
	return ex.ExtractTextFromBytes(ctx, data, filePath)
}

// finish 记录耗时并生成通用元数据
func finish(format, uri string, text string, start time.Time, extra map[string]interface{}) (string, map[string]interface{}, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil, newError(ErrNoText, format, uri, "")
	}
	duration := time.Since(start)
	meta := map[string]interface{}{
		"source_uri":             uri,
		"format":                 format,
		"text_length":            len(text),
		"processing_duration_ms": duration.Milliseconds(),
	}
	for k, v := range extra {
		meta[k] = v
	}
	logger.Debug().
		Str("uri", uri).
		Str("format", format).
		Int("chars", len(text)).
		Dur("duration", duration).
		Msg("文本提取完成")
	return text, meta, nil
}
