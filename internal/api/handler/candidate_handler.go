package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"resume-parser-go/internal/insights"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/types"
)

var errProfileRequired = errors.New("缺少 profile 字段")

// CandidateHandler 多份简历的排名、筛选和岗位匹配
type CandidateHandler struct {
	resumes *ResumeHandler
}

// NewCandidateHandler 复用 ResumeHandler 的解析和上传限制
func NewCandidateHandler(resumes *ResumeHandler) *CandidateHandler {
	return &CandidateHandler{resumes: resumes}
}

// AnalyzeResponse 排名结果
type AnalyzeResponse struct {
	Candidates []insights.RankedCandidate `json:"candidates"`
	Failed     []processor.FileResult     `json:"failed,omitempty"`
}

// FilterResponse 筛选结果
type FilterResponse struct {
	Criteria   insights.Criteria      `json:"criteria"`
	Total      int                    `json:"total"`
	Matched    int                    `json:"matched"`
	Candidates []insights.Candidate   `json:"candidates"`
	Failed     []processor.FileResult `json:"failed,omitempty"`
}

type matchRequest struct {
	Profile *types.CandidateProfile  `json:"profile"`
	Job     insights.JobRequirements `json:"job"`
}

// parseCandidates 解析上传的简历，返回成功的候选人和失败的文件
func (h *CandidateHandler) parseCandidates(c context.Context, ctx *app.RequestContext) ([]insights.Candidate, []processor.FileResult, error) {
	inputs, err := h.resumes.readBatch(ctx)
	if err != nil {
		return nil, nil, err
	}
	pc, cancel := h.resumes.withTimeout(c)
	defer cancel()

	results := h.resumes.service.ParseFiles(pc, inputs)
	cands := make([]insights.Candidate, 0, len(results))
	for _, r := range results {
		if r.Error == "" {
			cands = append(cands, insights.Candidate{Name: r.Filename, Profile: r.Profile})
		}
	}
	return cands, parseErrorsOf(c, results), nil
}

// Analyze POST /api/v1/candidates/analyze
func (h *CandidateHandler) Analyze(c context.Context, ctx *app.RequestContext) {
	cands, failed, err := h.parseCandidates(c, ctx)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, AnalyzeResponse{Candidates: insights.RankCandidates(cands), Failed: failed})
}

// Filter POST /api/v1/candidates/filter
func (h *CandidateHandler) Filter(c context.Context, ctx *app.RequestContext) {
	criteria, err := criteriaFromForm(ctx)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	cands, failed, err := h.parseCandidates(c, ctx)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	matched := insights.FilterCandidates(cands, criteria)
	ctx.JSON(consts.StatusOK, FilterResponse{
		Criteria:   criteria,
		Total:      len(cands),
		Matched:    len(matched),
		Candidates: matched,
		Failed:     failed,
	})
}

func criteriaFromForm(ctx *app.RequestContext) (insights.Criteria, error) {
	c := insights.Criteria{RequiredSkills: insights.ParseSkillList(ctx.PostForm("required_skills"))}
	if v := strings.TrimSpace(ctx.PostForm("min_experience_months")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c, fmt.Errorf("%w: min_experience_months=%q", errMissingFields, v)
		}
		c.MinExperienceMonths = n
	}
	if v := strings.TrimSpace(ctx.PostForm("min_completeness")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return c, fmt.Errorf("%w: min_completeness=%q", errMissingFields, v)
		}
		c.MinCompleteness = f
	}
	return c, nil
}

// Match POST /api/v1/candidates/match
func (h *CandidateHandler) Match(c context.Context, ctx *app.RequestContext) {
	var req matchRequest
	if err := json.Unmarshal(ctx.Request.Body(), &req); err != nil {
		writeError(c, ctx, errInvalidJSON)
		return
	}
	if req.Profile == nil {
		writeError(c, ctx, fmt.Errorf("%w: %v", errMissingFields, errProfileRequired))
		return
	}
	ctx.JSON(consts.StatusOK, insights.MatchJob(req.Profile, req.Job))
}
