package extractor

import (
	"bytes"
	"context"
	"io"
	"time"
	"unicode/utf8"
)

// PlainTextExtractor 纯文本文件，非UTF-8字节按 Latin-1 处理
type PlainTextExtractor struct{}

// NewPlainTextExtractor 创建纯文本提取器
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

func (e *PlainTextExtractor) Format() string { return "txt" }

func (e *PlainTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	return extractFile(ctx, e, filePath)
}

func (e *PlainTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error) {
	data, err := readAll(ctx, reader, e.Format(), uri)
	if err != nil {
		return "", nil, err
	}
	return e.ExtractTextFromBytes(ctx, data, uri)
}

func (e *PlainTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	text := string(data)
	transcoded := false
	if !utf8.Valid(data) {
		runes := make([]rune, len(data))
		for i, b := range data {
			runes[i] = rune(b)
		}
		text = string(runes)
		transcoded = true
	}
	return finish(e.Format(), uri, text, start, map[string]interface{}{"latin1_fallback": transcoded})
}
