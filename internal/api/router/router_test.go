package router_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/api/router"
	"resume-parser-go/internal/config"
	"resume-parser-go/internal/insights"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/types"
)

const seniorResume = `Jane Smith
jane.smith@example.com | +1 555 123 4567

SKILLS
Languages: Python, Go, SQL
Tools: Docker, Kubernetes, Git
Databases: PostgreSQL, Redis

EXPERIENCE
Senior Software Engineer
Acme Corp
Jan 2019 - Present
- Led migration of services to Kubernetes

EDUCATION
Bachelor of Technology in Computer Science
ABC Institute of Technology, 2014 - 2018
`

const juniorResume = `John Doe
john.doe@example.com

SKILLS
Languages: Java

EXPERIENCE
Intern
Globex Labs
Jun 2023 - Dec 2023
- Wrote unit tests
`

var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, apiKey string) *server.Hertz {
	t.Helper()
	return newTestServerWithOptions(t, router.Options{APIKey: apiKey})
}

func newTestServerWithOptions(t *testing.T, opts router.Options) *server.Hertz {
	t.Helper()
	p := parser.NewProfileParser(nil, parser.WithClock(func() time.Time { return testNow }))
	svc := processor.NewProfileService(p)
	resumes := handler.NewResumeHandler(svc, config.ServerConfig{ParseTimeout: "5s", MaxUploadMB: 1})
	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	router.RegisterRoutes(h, resumes, handler.NewCandidateHandler(resumes), opts)
	return h
}

type formFile struct {
	field, name, content string
}

func multipartBody(t *testing.T, files []formFile, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func perform(h *server.Hertz, method, url string, body []byte, headers ...ut.Header) *ut.ResponseRecorder {
	return ut.PerformRequest(h.Engine, method, url, &ut.Body{Body: bytes.NewReader(body), Len: len(body)}, headers...)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, "secret")
	resp := perform(h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "2024.1", body["taxonomy_version"])
	assert.Equal(t, false, body["async_enabled"])
	assert.NotEmpty(t, resp.Result().Header.Get(router.HeaderRequestID))
}

func TestRequestIDPassthrough(t *testing.T) {
	h := newTestServer(t, "")
	resp := perform(h, http.MethodGet, "/health", nil, ut.Header{Key: router.HeaderRequestID, Value: "req-42"})
	assert.Equal(t, "req-42", resp.Result().Header.Get(router.HeaderRequestID))
}

func TestParseJSONText(t *testing.T) {
	h := newTestServer(t, "")
	payload, err := json.Marshal(map[string]string{"text": seniorResume})
	require.NoError(t, err)

	resp := perform(h, http.MethodPost, "/api/v1/resume/parse", payload, ut.Header{Key: "Content-Type", Value: "application/json"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var out struct {
		Profile       types.CandidateProfile `json:"profile"`
		SkillsWarning bool                   `json:"skills_warning"`
		Report        insights.Report        `json:"report"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.Equal(t, []string{"Go", "Python", "SQL"}, out.Profile.ProgrammingLanguages)
	assert.Equal(t, []string{"PostgreSQL", "Redis"}, out.Profile.Databases)
	assert.NotEmpty(t, out.Report.Summary.Quality)
}

func TestParsePlainText(t *testing.T) {
	h := newTestServer(t, "")
	resp := perform(h, http.MethodPost, "/api/v1/resume/parse", []byte(seniorResume), ut.Header{Key: "Content-Type", Value: "text/plain"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"programming_languages"`)
}

func TestParseRejectsBadInput(t *testing.T) {
	h := newTestServer(t, "")

	resp := perform(h, http.MethodPost, "/api/v1/resume/parse", []byte("   "), ut.Header{Key: "Content-Type", Value: "text/plain"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = perform(h, http.MethodPost, "/api/v1/resume/parse", []byte("{not json"), ut.Header{Key: "Content-Type", Value: "application/json"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	body, ct := multipartBody(t, []formFile{{"file", "resume.exe", "MZ"}}, nil)
	resp = perform(h, http.MethodPost, "/api/v1/resume/parse", body.Bytes(), ut.Header{Key: "Content-Type", Value: ct})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "error")

	body, ct = multipartBody(t, []formFile{{"file", "big.txt", strings.Repeat("a", 2<<20)}}, nil)
	resp = perform(h, http.MethodPost, "/api/v1/resume/parse", body.Bytes(), ut.Header{Key: "Content-Type", Value: ct})
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
}

func TestParseMultipartFile(t *testing.T) {
	h := newTestServer(t, "")
	body, ct := multipartBody(t, []formFile{{"file", "jane.txt", seniorResume}}, nil)
	resp := perform(h, http.MethodPost, "/api/v1/resume/parse", body.Bytes(), ut.Header{Key: "Content-Type", Value: ct})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "Kubernetes")
}

func TestParseBatch(t *testing.T) {
	h := newTestServer(t, "")
	body, ct := multipartBody(t, []formFile{
		{"files[]", "jane.txt", seniorResume},
		{"files[]", "notes.exe", "MZ"},
	}, nil)
	resp := perform(h, http.MethodPost, "/api/v1/resume/parse-batch", body.Bytes(), ut.Header{Key: "Content-Type", Value: ct})
	require.Equal(t, http.StatusOK, resp.Code)

	var results []processor.FileResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "jane.txt", results[0].Filename)
	assert.NotNil(t, results[0].Profile)
	assert.Equal(t, "notes.exe", results[1].Filename)
	assert.NotEmpty(t, results[1].Error)

	resp = perform(h, http.MethodPost, "/api/v1/resume/parse-batch", nil, ut.Header{Key: "Content-Type", Value: "multipart/form-data; boundary=x"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCandidatesAnalyzeAndFilter(t *testing.T) {
	h := newTestServer(t, "")
	files := []formFile{
		{"files", "john.txt", juniorResume},
		{"files", "jane.txt", seniorResume},
	}

	body, ct := multipartBody(t, files, nil)
	resp := perform(h, http.MethodPost, "/api/v1/candidates/analyze", body.Bytes(), ut.Header{Key: "Content-Type", Value: ct})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var analyzed handler.AnalyzeResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &analyzed))
	require.Len(t, analyzed.Candidates, 2)
	assert.Equal(t, 1, analyzed.Candidates[0].Rank)
	assert.GreaterOrEqual(t, analyzed.Candidates[0].Score, analyzed.Candidates[1].Score)

	body, ct = multipartBody(t, files, map[string]string{"required_skills": "go, sql", "min_experience_months": "12"})
	resp = perform(h, http.MethodPost, "/api/v1/candidates/filter", body.Bytes(), ut.Header{Key: "Content-Type", Value: ct})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var filtered handler.FilterResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &filtered))
	assert.Equal(t, 2, filtered.Total)
	require.Equal(t, 1, filtered.Matched)
	assert.Equal(t, "jane.txt", filtered.Candidates[0].Name)

	body, ct = multipartBody(t, files, map[string]string{"min_completeness": "abc"})
	resp = perform(h, http.MethodPost, "/api/v1/candidates/filter", body.Bytes(), ut.Header{Key: "Content-Type", Value: ct})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCandidatesMatch(t *testing.T) {
	h := newTestServer(t, "")
	profile := types.EmptyProfile()
	profile.ProgrammingLanguages = []string{"Go", "Python"}
	profile.ExperienceMonthsTotal = 36
	payload, err := json.Marshal(map[string]interface{}{
		"profile": profile,
		"job":     insights.JobRequirements{RequiredSkills: []string{"Go", "Rust"}, MinExperienceMonths: 24},
	})
	require.NoError(t, err)

	resp := perform(h, http.MethodPost, "/api/v1/candidates/match", payload, ut.Header{Key: "Content-Type", Value: "application/json"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var res insights.MatchResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.Equal(t, []string{"go"}, res.Details.MatchedSkills)
	assert.Equal(t, []string{"rust"}, res.Details.MissingSkills)
	assert.Equal(t, 1.0, res.Details.ExperienceMatch)

	resp = perform(h, http.MethodPost, "/api/v1/candidates/match", []byte(`{"job":{}}`), ut.Header{Key: "Content-Type", Value: "application/json"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAsyncEndpointsWithoutStorage(t *testing.T) {
	h := newTestServer(t, "")
	body, ct := multipartBody(t, []formFile{{"file", "jane.pdf", "%PDF-1.4"}}, nil)
	resp := perform(h, http.MethodPost, "/api/v1/resume/upload", body.Bytes(), ut.Header{Key: "Content-Type", Value: ct})
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)

	resp = perform(h, http.MethodGet, "/api/v1/resume/0190a1b2-0000-7000-8000-000000000000/profile", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	h := newTestServer(t, "secret")
	payload := []byte(`{"text":"SKILLS\nLanguages: Go"}`)
	jsonHeader := ut.Header{Key: "Content-Type", Value: "application/json"}

	resp := perform(h, http.MethodPost, "/api/v1/resume/parse", payload, jsonHeader)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = perform(h, http.MethodPost, "/api/v1/resume/parse", payload, jsonHeader, ut.Header{Key: router.HeaderAPIKey, Value: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = perform(h, http.MethodPost, "/api/v1/resume/parse", payload, jsonHeader, ut.Header{Key: router.HeaderAPIKey, Value: "secret"})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRateLimit(t *testing.T) {
	h := newTestServerWithOptions(t, router.Options{RateLimitQPM: 1, RateLimitBurst: 2})
	payload := []byte(`{"text":"SKILLS\nLanguages: Go"}`)
	jsonHeader := ut.Header{Key: "Content-Type", Value: "application/json"}

	assert.Equal(t, http.StatusOK, perform(h, http.MethodPost, "/api/v1/resume/parse", payload, jsonHeader).Code)
	assert.Equal(t, http.StatusOK, perform(h, http.MethodPost, "/api/v1/resume/parse", payload, jsonHeader).Code)

	resp := perform(h, http.MethodPost, "/api/v1/resume/parse", payload, jsonHeader)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.NotEmpty(t, resp.Result().Header.Get("Retry-After"))

	// 健康检查不限流
	assert.Equal(t, http.StatusOK, perform(h, http.MethodGet, "/health", nil).Code)
}
