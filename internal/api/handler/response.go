package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel/trace"

	"resume-parser-go/internal/extractor"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/tracing"
)

var (
	errFileMissing   = errors.New("文件未找到")
	errFileTooLarge  = errors.New("文件超过大小限制")
	errTooManyFiles  = errors.New("文件数量超过限制")
	errInvalidJSON   = errors.New("请求体不是有效的JSON")
	errMissingFields = errors.New("缺少必要字段")
)

// statusFor 错误到HTTP状态码的映射
func statusFor(err error) int {
	switch {
	case errors.Is(err, errFileMissing),
		errors.Is(err, errTooManyFiles),
		errors.Is(err, errInvalidJSON),
		errors.Is(err, errMissingFields),
		errors.Is(err, processor.ErrEmptyInput),
		errors.Is(err, processor.ErrUnsupportedFile),
		errors.Is(err, extractor.ErrUnsupportedFormat):
		return consts.StatusBadRequest
	case errors.Is(err, errFileTooLarge):
		return consts.StatusRequestEntityTooLarge
	case errors.Is(err, extractor.ErrNoText),
		errors.Is(err, extractor.ErrDecodeFailed):
		return consts.StatusUnprocessableEntity
	case errors.Is(err, processor.ErrProfileNotFound):
		return consts.StatusNotFound
	case errors.Is(err, processor.ErrParseTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return consts.StatusGatewayTimeout
	case errors.Is(err, processor.ErrNotConfigured):
		return consts.StatusServiceUnavailable
	case errors.Is(err, processor.ErrUploadFailed),
		errors.Is(err, processor.ErrPublishMessageFailed):
		return consts.StatusBadGateway
	default:
		return consts.StatusInternalServerError
	}
}

// writeError 返回 {"error": "..."}，错误记到请求 span 上，5xx 另记错误日志
func writeError(c context.Context, ctx *app.RequestContext, err error) {
	code := statusFor(err)
	tracing.RecordHTTPError(trace.SpanFromContext(c), err, code)
	if code >= consts.StatusInternalServerError {
		hlog.CtxErrorf(c, "请求处理失败 %s %s: %v", ctx.Method(), ctx.Path(), err)
	}
	ctx.JSON(code, utils.H{"error": err.Error()})
}

// readFormFile 读取上传文件，超过 limit 字节时返回 errFileTooLarge
func readFormFile(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	if limit > 0 && fh.Size > limit {
		return nil, fmt.Errorf("%w: %s", errFileTooLarge, fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("打开文件失败: %w", err)
	}
	defer f.Close()

	r := io.Reader(f)
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s", errFileTooLarge, fh.Filename)
	}
	return data, nil
}

// formFiles 取出 files[] 或 files 字段的全部文件
func formFiles(ctx *app.RequestContext, max int) ([]*multipart.FileHeader, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errFileMissing, err)
	}
	files := append([]*multipart.FileHeader{}, form.File["files[]"]...)
	files = append(files, form.File["files"]...)
	if len(files) == 0 {
		return nil, errFileMissing
	}
	if max > 0 && len(files) > max {
		return nil, fmt.Errorf("%w: 最多 %d 个", errTooManyFiles, max)
	}
	return files, nil
}
