package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fumiama/go-docx"
)

// DocxExtractor 基于 fumiama/go-docx，按段落输出文本。
// 标题样式的段落前后加空行，便于章节切分识别。
type DocxExtractor struct{}

// NewDocxExtractor 创建docx提取器
func NewDocxExtractor() *DocxExtractor {
	return &DocxExtractor{}
}

func (e *DocxExtractor) Format() string { return "docx" }

func (e *DocxExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	return extractFile(ctx, e, filePath)
}

func (e *DocxExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error) {
	data, err := readAll(ctx, reader, e.Format(), uri)
	if err != nil {
		return "", nil, err
	}
	return e.ExtractTextFromBytes(ctx, data, uri)
}

func (e *DocxExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (text string, meta map[string]interface{}, err error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			text, meta = "", nil
			err = newError(ErrDecodeFailed, e.Format(), uri, fmt.Sprint(r))
		}
	}()

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, newError(ErrDecodeFailed, e.Format(), uri, err.Error())
	}

	var buf strings.Builder
	paragraphs, headings := 0, 0
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		line := paragraphText(para)
		if line == "" {
			buf.WriteString("\n")
			continue
		}
		paragraphs++
		if isHeadingStyle(para) {
			headings++
			buf.WriteString("\n")
			buf.WriteString(line)
			buf.WriteString("\n")
			continue
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}

	return finish(e.Format(), uri, buf.String(), start, map[string]interface{}{
		"paragraph_count": paragraphs,
		"heading_count":   headings,
	})
}

func isHeadingStyle(para *docx.Paragraph) bool {
	if para.Properties == nil || para.Properties.Style == nil {
		return false
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	return strings.HasPrefix(style, "heading") || style == "title"
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
