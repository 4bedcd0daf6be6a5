package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor 基于 ledongthuc/pdf 的逐页纯文本提取
type PDFExtractor struct {
	// PageSeparator 页与页之间插入的分隔
	PageSeparator string
}

// NewPDFExtractor 创建PDF提取器，页之间用空行分隔
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{PageSeparator: "\n\n"}
}

func (e *PDFExtractor) Format() string { return "pdf" }

func (e *PDFExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	return extractFile(ctx, e, filePath)
}

func (e *PDFExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error) {
	data, err := readAll(ctx, reader, e.Format(), uri)
	if err != nil {
		return "", nil, err
	}
	return e.ExtractTextFromBytes(ctx, data, uri)
}

// ExtractTextFromBytes 单页解析失败时跳过该页；库内部panic转换为错误
func (e *PDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (text string, meta map[string]interface{}, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			text, meta = "", nil
			err = newError(ErrDecodeFailed, e.Format(), uri, fmt.Sprint(r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, newError(ErrDecodeFailed, e.Format(), uri, err.Error())
	}

	var buf strings.Builder
	numPages := reader.NumPage()
	skipped := 0
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			skipped++
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			skipped++
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString(e.PageSeparator)
		}
		buf.WriteString(pageText)
	}

	return finish(e.Format(), uri, buf.String(), start, map[string]interface{}{
		"page_count":    numPages,
		"skipped_pages": skipped,
	})
}
