package handler

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/insights"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/types"
)

const (
	defaultMaxUploadMB = 10
	maxBatchFiles      = 50
	defaultSource      = "web_upload"
)

// ResumeHandler 简历解析、上传和画像查询
type ResumeHandler struct {
	service        *processor.ProfileService
	parseTimeout   time.Duration
	maxUploadBytes int64
}

// NewResumeHandler 创建简历处理器
func NewResumeHandler(service *processor.ProfileService, cfg config.ServerConfig) *ResumeHandler {
	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = defaultMaxUploadMB
	}
	return &ResumeHandler{
		service:        service,
		parseTimeout:   config.GetDuration(cfg.ParseTimeout, 10*time.Second),
		maxUploadBytes: int64(maxMB) << 20,
	}
}

// ParseResponse 同步解析的响应
type ParseResponse struct {
	Profile       *types.CandidateProfile `json:"profile"`
	SkillsWarning bool                    `json:"skills_warning"`
	Report        insights.Report         `json:"report"`
}

type parseTextRequest struct {
	Text string `json:"text"`
}

func (h *ResumeHandler) withTimeout(c context.Context) (context.Context, context.CancelFunc) {
	if h.parseTimeout <= 0 {
		return context.WithCancel(c)
	}
	return context.WithTimeout(c, h.parseTimeout)
}

// Parse POST /api/v1/resume/parse
// 支持 multipart 的 file 字段、{"text": ...} JSON 和 text/plain 三种请求体
func (h *ResumeHandler) Parse(c context.Context, ctx *app.RequestContext) {
	pc, cancel := h.withTimeout(c)
	defer cancel()

	var (
		outcome *processor.ParseOutcome
		err     error
	)
	contentType := string(ctx.ContentType())
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		fh, ferr := ctx.FormFile("file")
		if ferr != nil {
			writeError(c, ctx, errFileMissing)
			return
		}
		data, rerr := readFormFile(fh, h.maxUploadBytes)
		if rerr != nil {
			writeError(c, ctx, rerr)
			return
		}
		outcome, err = h.service.ParseFile(pc, fh.Filename, data)
	case strings.HasPrefix(contentType, "application/json"):
		var req parseTextRequest
		if jerr := json.Unmarshal(ctx.Request.Body(), &req); jerr != nil {
			writeError(c, ctx, errInvalidJSON)
			return
		}
		outcome, err = h.service.ParseText(pc, req.Text)
	default:
		outcome, err = h.service.ParseText(pc, string(ctx.Request.Body()))
	}
	if err != nil {
		writeError(c, ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, ParseResponse{
		Profile:       outcome.Profile,
		SkillsWarning: outcome.SkillsWarning,
		Report:        insights.BuildReport(outcome.Profile),
	})
}

// ParseBatch POST /api/v1/resume/parse-batch
func (h *ResumeHandler) ParseBatch(c context.Context, ctx *app.RequestContext) {
	inputs, err := h.readBatch(ctx)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	pc, cancel := h.withTimeout(c)
	defer cancel()

	ctx.JSON(consts.StatusOK, h.service.ParseFiles(pc, inputs))
}

// readBatch 读取批量上传的文件，单个文件过大时整批拒绝
func (h *ResumeHandler) readBatch(ctx *app.RequestContext) ([]processor.FileInput, error) {
	files, err := formFiles(ctx, maxBatchFiles)
	if err != nil {
		return nil, err
	}
	inputs := make([]processor.FileInput, 0, len(files))
	for _, fh := range files {
		data, err := readFormFile(fh, h.maxUploadBytes)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, processor.FileInput{Filename: fh.Filename, Data: data})
	}
	return inputs, nil
}

// Upload POST /api/v1/resume/upload，异步解析
func (h *ResumeHandler) Upload(c context.Context, ctx *app.RequestContext) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		writeError(c, ctx, errFileMissing)
		return
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		writeError(c, ctx, errFileTooLarge)
		return
	}
	sourceChannel := ctx.PostForm("source_channel")
	if sourceChannel == "" {
		sourceChannel = defaultSource
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	defer file.Close()

	res, err := h.service.Submit(c, processor.SubmitRequest{
		Reader:        file,
		Size:          fh.Size,
		Filename:      fh.Filename,
		SourceChannel: sourceChannel,
	})
	if err != nil {
		if res != nil {
			ctx.JSON(statusFor(err), utils.H{"submission_uuid": res.SubmissionUUID, "status": res.Status, "error": err.Error()})
			return
		}
		writeError(c, ctx, err)
		return
	}
	if res.Duplicate {
		ctx.JSON(consts.StatusConflict, res)
		return
	}
	ctx.JSON(consts.StatusAccepted, res)
}

// GetProfile GET /api/v1/resume/:uuid/profile
func (h *ResumeHandler) GetProfile(c context.Context, ctx *app.RequestContext) {
	id := ctx.Param("uuid")
	if id == "" {
		writeError(c, ctx, errMissingFields)
		return
	}
	stored, err := h.service.GetProfile(c, id)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, stored)
}

// Health GET /health
func (h *ResumeHandler) Health(c context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, utils.H{
		"status":           "ok",
		"taxonomy_version": h.service.Parser().Taxonomy().Version,
		"async_enabled":    h.service.AsyncEnabled(),
	})
}

// parseErrorsOf 批量结果中解析失败的部分，日志用
func parseErrorsOf(c context.Context, results []processor.FileResult) []processor.FileResult {
	var failed []processor.FileResult
	for _, r := range results {
		if r.Error != "" {
			failed = append(failed, processor.FileResult{Filename: r.Filename, Error: r.Error})
		}
	}
	if len(failed) > 0 {
		hlog.CtxWarnf(c, "批量解析中 %d/%d 个文件失败", len(failed), len(results))
	}
	return failed
}
