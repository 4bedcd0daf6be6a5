package processor

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/extractor"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/storage/models"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"
)

var tracer = otel.Tracer("resume-parser-go/processor")

// ParseOutcome 一次解析的结果
type ParseOutcome struct {
	Profile       *types.CandidateProfile `json:"profile"`
	SkillsWarning bool                    `json:"skills_warning"`
	TextMD5       string                  `json:"-"`
	FromCache     bool                    `json:"-"`
}

// cachedProfile 写入Redis的画像缓存格式
type cachedProfile struct {
	Profile       *types.CandidateProfile `json:"profile"`
	SkillsWarning bool                    `json:"skills_warning"`
}

// SubmitRequest 一次异步上传
type SubmitRequest struct {
	Reader        io.Reader
	Size          int64
	Filename      string
	SourceChannel string
}

// SubmitResult 上传的受理结果
type SubmitResult struct {
	SubmissionUUID string `json:"submission_uuid"`
	Status         string `json:"status"`
	Duplicate      bool   `json:"duplicate,omitempty"`
}

// StoredProfile 已持久化的画像
type StoredProfile struct {
	SubmissionUUID  string                  `json:"submission_uuid"`
	Profile         *types.CandidateProfile `json:"profile"`
	SkillsWarning   bool                    `json:"skills_warning"`
	ProfilePathOSS  string                  `json:"profile_path_oss,omitempty"`
	TaxonomyVersion string                  `json:"taxonomy_version"`
	ParserVersion   string                  `json:"parser_version"`
	FromCache       bool                    `json:"from_cache"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// FileInput 批量解析中的一个文件
type FileInput struct {
	Filename string
	Data     []byte
}

// FileResult 批量解析中一个文件的结果，失败时只有 Error
type FileResult struct {
	Filename      string                  `json:"filename"`
	Profile       *types.CandidateProfile `json:"profile,omitempty"`
	SkillsWarning bool                    `json:"skills_warning,omitempty"`
	Error         string                  `json:"error,omitempty"`
}

// ProfileService 串联文本提取、解析、缓存和存储。
// 同步解析只需要 parser；异步上传流水线还需要对象存储、持久化和消息队列。
type ProfileService struct {
	parser    *parser.ProfileParser
	extractor TextExtractor
	objects   ObjectStore
	cache     ProfileCache
	repo      ProfileRepository
	events    EventPublisher
	outbox    OutboxStore
	settings  Settings
	newID     func() (uuid.UUID, error)
	now       func() time.Time
}

// NewProfileService p 为空时使用内置分类表的解析器
func NewProfileService(p *parser.ProfileParser, opts ...Option) *ProfileService {
	if p == nil {
		p = parser.NewProfileParser(nil)
	}
	s := &ProfileService{
		parser:    p,
		extractor: FormatExtractor{},
		settings:  DefaultSettings(),
		newID:     uuid.NewV7,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parser 当前使用的解析器
func (s *ProfileService) Parser() *parser.ProfileParser {
	return s.parser
}

// AsyncEnabled 上传流水线的组件是否齐备
func (s *ProfileService) AsyncEnabled() bool {
	return s.objects != nil && s.repo != nil && s.events != nil
}

// ExtractText 从上传文件中提取文本
func (s *ProfileService) ExtractText(ctx context.Context, filename string, data []byte) (string, error) {
	text, _, err := s.extractor.Extract(ctx, filename, data)
	if err != nil {
		if errors.Is(err, extractor.ErrUnsupportedFormat) {
			return "", fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
		}
		return "", err
	}
	return text, nil
}

// ParseText 同步解析文本，优先使用按文本MD5缓存的画像。缓存读写失败不影响解析。
func (s *ProfileService) ParseText(ctx context.Context, text string) (*ParseOutcome, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	text = truncateText(text, s.settings.MaxTextBytes)
	return s.resolveProfile(ctx, text, TextMD5(text))
}

// ParseFile 提取并解析单个文件
func (s *ProfileService) ParseFile(ctx context.Context, filename string, data []byte) (*ParseOutcome, error) {
	text, err := s.ExtractText(ctx, filename, data)
	if err != nil {
		return nil, err
	}
	return s.ParseText(ctx, text)
}

// ParseFiles 并发解析多个文件，结果顺序与输入一致
func (s *ProfileService) ParseFiles(ctx context.Context, files []FileInput) []FileResult {
	results := make([]FileResult, len(files))
	concurrency := s.settings.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	semaphore := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(i int, f FileInput) {
			defer wg.Done()
			defer func() { <-semaphore }()

			res := FileResult{Filename: f.Filename}
			outcome, err := s.ParseFile(ctx, f.Filename, f.Data)
			if err != nil {
				res.Error = err.Error()
			} else {
				res.Profile = outcome.Profile
				res.SkillsWarning = outcome.SkillsWarning
			}
			results[i] = res
		}(i, f)
	}
	wg.Wait()
	return results
}

// resolveProfile 命中缓存时直接返回，否则解析并回写缓存
func (s *ProfileService) resolveProfile(ctx context.Context, text, textMD5 string) (*ParseOutcome, error) {
	if cached := s.lookupCache(ctx, textMD5); cached != nil {
		return cached, nil
	}

	res, err := s.parseWithTimeout(ctx, text)
	if err != nil {
		return nil, err
	}
	outcome := &ParseOutcome{Profile: res.Profile, SkillsWarning: res.SkillsWarning, TextMD5: textMD5}
	s.storeCache(ctx, outcome)
	return outcome, nil
}

func (s *ProfileService) lookupCache(ctx context.Context, textMD5 string) *ParseOutcome {
	if s.cache == nil {
		return nil
	}
	data, hit, err := s.cache.GetCachedProfile(ctx, textMD5)
	if err != nil {
		logger.Warn().Err(err).Str("text_md5", textMD5).Msg("读取画像缓存失败，继续解析")
		return nil
	}
	if !hit {
		return nil
	}
	var c cachedProfile
	if err := json.Unmarshal(data, &c); err != nil || c.Profile == nil {
		logger.Warn().Err(err).Str("text_md5", textMD5).Msg("画像缓存内容无效，忽略")
		return nil
	}
	return &ParseOutcome{Profile: c.Profile, SkillsWarning: c.SkillsWarning, TextMD5: textMD5, FromCache: true}
}

func (s *ProfileService) storeCache(ctx context.Context, outcome *ParseOutcome) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(cachedProfile{Profile: outcome.Profile, SkillsWarning: outcome.SkillsWarning})
	if err != nil {
		logger.Warn().Err(err).Msg("序列化画像缓存失败")
		return
	}
	if err := s.cache.CacheProfile(ctx, outcome.TextMD5, data, s.settings.CacheTTL); err != nil {
		logger.Warn().Err(err).Str("text_md5", outcome.TextMD5).Msg("写入画像缓存失败")
	}
}

// parseWithTimeout 解析本身不可取消，超时后放弃等待结果
func (s *ProfileService) parseWithTimeout(ctx context.Context, text string) (*parser.ParseResult, error) {
	if s.settings.ParseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.ParseTimeout)
		defer cancel()
	}
	_, span := tracer.Start(ctx, "ProfileService.Parse",
		trace.WithAttributes(
			attribute.Int("resume.text_length", len(text)),
			attribute.String("resume.preview", tracing.SafeResumeContent(text)),
		))
	defer span.End()

	done := make(chan *parser.ParseResult, 1)
	go func() {
		done <- s.parser.ParseDetailed(text)
	}()

	select {
	case res := <-done:
		span.SetAttributes(
			attribute.Float64("resume.completeness_score", res.Profile.CompletenessScore),
			attribute.Int("resume.field_errors", len(res.Diagnostics.Errors)),
		)
		span.SetStatus(codes.Ok, "")
		return res, nil
	case <-ctx.Done():
		err := fmt.Errorf("%w: %v", ErrParseTimeout, ctx.Err())
		tracing.RecordError(span, err, tracing.ErrorTypeParse)
		return nil, err
	}
}

// Submit 上传原始文件并发布上传事件，解析由消费者异步完成。
// 同一文件重复上传时删除新对象并返回已有提交的UUID。
func (s *ProfileService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if s.objects == nil || s.events == nil {
		return nil, ErrNotConfigured
	}
	ext := strings.ToLower(filepath.Ext(req.Filename))
	if !extractor.IsSupported(req.Filename) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}

	ctx, span := tracer.Start(ctx, "ProfileService.Submit",
		trace.WithAttributes(attribute.String("file.name", tracing.SafeFilename(req.Filename))))
	defer span.End()

	id, err := s.newID()
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, fmt.Errorf("生成提交UUID失败: %w", err)
	}
	submissionUUID := id.String()
	span.SetAttributes(attribute.String("submission.uuid", submissionUUID))

	if err := s.events.EnsureExchange(s.settings.Exchange, "direct", true); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
		return nil, NewPublishError(submissionUUID, err.Error())
	}

	objectKey, fileMD5, err := s.objects.UploadOriginal(ctx, submissionUUID, ext, req.Reader, req.Size)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return &SubmitResult{SubmissionUUID: submissionUUID, Status: constants.StatusUploadFailed},
			NewUploadError(submissionUUID, err.Error())
	}

	if s.cache != nil {
		exists, err := s.cache.CheckAndAddRawFileMD5(ctx, fileMD5)
		switch {
		case err != nil:
			logger.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("文件MD5去重失败，按新文件处理")
		case exists:
			return s.duplicate(ctx, span, objectKey, fileMD5), nil
		default:
			if err := s.cache.SetSubmissionForMD5(ctx, fileMD5, submissionUUID); err != nil {
				logger.Warn().Err(err).Msg("记录MD5到提交UUID的映射失败")
			}
		}
	}

	msg := storage.ResumeUploadMessage{
		SubmissionUUID:      submissionUUID,
		SubmissionTimestamp: s.now(),
		SourceChannel:       req.SourceChannel,
		OriginalFilename:    req.Filename,
		OriginalFilePathOSS: objectKey,
		RawFileMD5:          fileMD5,
	}
	if err := s.events.PublishJSON(ctx, s.settings.Exchange, s.settings.UploadedRoutingKey, msg); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
		s.rollbackFileMD5(ctx, fileMD5)
		if delErr := s.objects.DeleteOriginal(ctx, objectKey); delErr != nil {
			logger.Warn().Err(delErr).Str("object", objectKey).Msg("清理原始文件失败")
		}
		return &SubmitResult{SubmissionUUID: submissionUUID, Status: constants.StatusUploadFailed},
			NewPublishError(submissionUUID, err.Error())
	}

	logger.Info().
		Str("submission_uuid", submissionUUID).
		Str("file", tracing.SafeFilename(req.Filename)).
		Int64("size", req.Size).
		Msg("简历已受理，等待解析")
	span.SetStatus(codes.Ok, "")
	return &SubmitResult{SubmissionUUID: submissionUUID, Status: constants.StatusPendingParsing}, nil
}

func (s *ProfileService) duplicate(ctx context.Context, span trace.Span, objectKey, fileMD5 string) *SubmitResult {
	if err := s.objects.DeleteOriginal(ctx, objectKey); err != nil {
		logger.Warn().Err(err).Str("object", objectKey).Msg("删除重复上传的文件失败")
	}
	existing, err := s.cache.GetSubmissionForMD5(ctx, fileMD5)
	if err != nil {
		logger.Warn().Err(err).Msg("查询已有提交UUID失败")
	}
	span.SetAttributes(attribute.Bool("file.duplicate", true), attribute.String("submission.existing_uuid", existing))
	span.SetStatus(codes.Ok, "duplicate")
	logger.Info().Str("file_md5", fileMD5).Str("existing_uuid", existing).Msg("检测到重复上传")
	return &SubmitResult{SubmissionUUID: existing, Status: constants.StatusDuplicate, Duplicate: true}
}

// HandleUpload 处理一条上传事件：建档、下载、提取文本、解析、保存并发布解析事件。
// 返回包含 storage.ErrRequeue 的错误时消息会重新入队。
func (s *ProfileService) HandleUpload(ctx context.Context, msg storage.ResumeUploadMessage) error {
	if s.objects == nil || s.repo == nil {
		return ErrNotConfigured
	}
	id := msg.SubmissionUUID
	ctx, span := tracer.Start(ctx, "ProfileService.HandleUpload",
		trace.WithAttributes(
			attribute.String("submission.uuid", id),
			attribute.String("file.name", tracing.SafeFilename(msg.OriginalFilename)),
		))
	defer span.End()

	submittedAt := msg.SubmissionTimestamp
	if submittedAt.IsZero() {
		submittedAt = s.now()
	}
	sub := &models.ResumeSubmission{
		SubmissionUUID:      id,
		SubmissionTimestamp: submittedAt,
		SourceChannel:       msg.SourceChannel,
		OriginalFilename:    msg.OriginalFilename,
		OriginalFilePathOSS: msg.OriginalFilePathOSS,
		RawFileMD5:          msg.RawFileMD5,
		ProcessingStatus:    constants.StatusPendingParsing,
		ParserVersion:       s.settings.ParserVersion,
	}
	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB, stageAttr("create_submission"))
		return requeue(NewDatabaseError(id, err.Error()))
	}

	data, err := s.objects.DownloadOriginal(ctx, msg.OriginalFilePathOSS)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore, stageAttr("download"))
		return s.fail(ctx, msg, constants.StatusTextExtractionFailed, NewDownloadError(id, err.Error()))
	}

	text, _, err := s.extractor.Extract(ctx, msg.OriginalFilename, data)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction, stageAttr("extract"))
		return s.fail(ctx, msg, constants.StatusTextExtractionFailed, NewExtractError(id, err.Error()))
	}
	text = truncateText(text, s.settings.MaxTextBytes)
	textMD5 := TextMD5(text)
	if err := s.repo.UpdateSubmissionTextMD5(ctx, id, textMD5); err != nil {
		logger.Warn().Err(err).Str("submission_uuid", id).Msg("记录文本MD5失败")
	}
	s.setStatus(ctx, id, constants.StatusTextExtracted, "")

	if s.cache != nil {
		if seen, err := s.cache.CheckAndAddTextMD5(ctx, textMD5); err == nil && seen {
			logger.Info().Str("submission_uuid", id).Str("text_md5", textMD5).Msg("文本内容与历史提交重复")
		}
	}

	outcome, err := s.resolveProfile(ctx, text, textMD5)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeParse, stageAttr("parse"))
		return s.fail(ctx, msg, constants.StatusParseFailed, NewParseError(id, err.Error()))
	}

	payload, err := json.Marshal(outcome.Profile)
	if err != nil {
		return s.fail(ctx, msg, constants.StatusParseFailed, NewParseError(id, err.Error()))
	}
	profilePath, err := s.objects.UploadProfile(ctx, id, payload)
	if err != nil {
		// MySQL 中仍保存完整画像
		logger.Warn().Err(err).Str("submission_uuid", id).Msg("上传画像JSON失败")
	}

	record := &models.ParsedProfile{
		SubmissionUUID:        id,
		ProfileJSON:           payload,
		ProfilePathOSS:        profilePath,
		CompletenessScore:     outcome.Profile.CompletenessScore,
		ExperienceMonthsTotal: outcome.Profile.ExperienceMonthsTotal,
		TechnicalSkillCount:   outcome.Profile.TechnicalSkillCount(),
		SkillsWarning:         outcome.SkillsWarning,
		TaxonomyVersion:       s.parser.Taxonomy().Version,
		ParserVersion:         s.settings.ParserVersion,
		FromCache:             outcome.FromCache,
	}
	status := constants.StatusParsed
	if outcome.FromCache {
		status = constants.StatusParsedFromCache
	}
	parsed := storage.ResumeParsedMessage{
		SubmissionUUID:    id,
		ProcessingStatus:  status,
		ProfilePathOSS:    profilePath,
		RawTextMD5:        textMD5,
		CompletenessScore: outcome.Profile.CompletenessScore,
		ExperienceMonths:  outcome.Profile.ExperienceMonthsTotal,
		ParserVersion:     s.settings.ParserVersion,
		ProcessingTime:    s.now().UnixMilli(),
	}
	if err := s.saveProfile(ctx, record, parsed); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB, stageAttr("save_profile"))
		return requeue(NewStoreError(id, err.Error()))
	}
	s.setStatus(ctx, id, status, "")

	logger.Info().
		Str("submission_uuid", id).
		Str("status", status).
		Float64("completeness", outcome.Profile.CompletenessScore).
		Msg("简历解析完成")
	span.SetAttributes(attribute.String("submission.status", status))
	span.SetStatus(codes.Ok, "")
	return nil
}

func stageAttr(stage string) attribute.KeyValue {
	return attribute.String("submission.stage", stage)
}

// saveProfile 配置了发件箱时画像和解析事件同事务写入，否则保存后直接发布
func (s *ProfileService) saveProfile(ctx context.Context, record *models.ParsedProfile, parsed storage.ResumeParsedMessage) error {
	if s.outbox == nil {
		if err := s.repo.SaveProfile(ctx, record); err != nil {
			return err
		}
		s.publishParsed(ctx, parsed)
		return nil
	}
	payload, err := json.Marshal(parsed)
	if err != nil {
		return fmt.Errorf("序列化解析事件失败: %w", err)
	}
	return s.outbox.SaveProfileWithEvent(ctx, record, &models.OutboxMessage{
		AggregateID:      parsed.SubmissionUUID,
		EventType:        s.settings.ParsedRoutingKey,
		Payload:          payload,
		TargetExchange:   s.settings.Exchange,
		TargetRoutingKey: s.settings.ParsedRoutingKey,
		Status:           models.OutboxStatusPending,
	})
}

// fail 记录失败状态，回滚文件MD5以便重新上传，并发布失败事件
func (s *ProfileService) fail(ctx context.Context, msg storage.ResumeUploadMessage, status string, err error) error {
	logger.Error().Err(err).Str("submission_uuid", msg.SubmissionUUID).Str("status", status).Msg("简历处理失败")
	s.setStatus(ctx, msg.SubmissionUUID, status, err.Error())
	s.rollbackFileMD5(ctx, msg.RawFileMD5)
	s.publishParsed(ctx, storage.ResumeParsedMessage{
		SubmissionUUID:   msg.SubmissionUUID,
		ProcessingStatus: status,
		ParserVersion:    s.settings.ParserVersion,
		ProcessingTime:   s.now().UnixMilli(),
		Error:            err.Error(),
	})
	return err
}

func (s *ProfileService) setStatus(ctx context.Context, id, status, detail string) {
	if err := s.repo.UpdateSubmissionStatus(ctx, id, status, detail); err != nil {
		logger.Warn().Err(err).Str("submission_uuid", id).Str("status", status).Msg("更新处理状态失败")
	}
}

func (s *ProfileService) rollbackFileMD5(ctx context.Context, fileMD5 string) {
	if s.cache == nil || fileMD5 == "" {
		return
	}
	if err := s.cache.RemoveRawFileMD5(ctx, fileMD5); err != nil {
		logger.Warn().Err(err).Str("file_md5", fileMD5).Msg("回滚文件MD5失败")
	}
}

func (s *ProfileService) publishParsed(ctx context.Context, msg storage.ResumeParsedMessage) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(ctx, s.settings.Exchange, s.settings.ParsedRoutingKey, msg); err != nil {
		logger.Warn().Err(err).Str("submission_uuid", msg.SubmissionUUID).Msg("发布解析事件失败")
	}
}

// GetProfile 读取已保存的画像
func (s *ProfileService) GetProfile(ctx context.Context, submissionUUID string) (*StoredProfile, error) {
	if s.repo == nil {
		return nil, ErrNotConfigured
	}
	rec, err := s.repo.GetProfile(ctx, submissionUUID)
	if err != nil {
		return nil, err
	}
	profile := types.EmptyProfile()
	if err := json.Unmarshal([]byte(rec.ProfileJSON), profile); err != nil {
		return nil, NewDatabaseError(submissionUUID, fmt.Sprintf("画像JSON无效: %v", err))
	}
	return &StoredProfile{
		SubmissionUUID:  rec.SubmissionUUID,
		Profile:         profile,
		SkillsWarning:   rec.SkillsWarning,
		ProfilePathOSS:  rec.ProfilePathOSS,
		TaxonomyVersion: rec.TaxonomyVersion,
		ParserVersion:   rec.ParserVersion,
		FromCache:       rec.FromCache,
		UpdatedAt:       rec.UpdatedAt,
	}, nil
}

// SetupTopology 声明交换机、上传队列及其绑定
func (s *ProfileService) SetupTopology() error {
	if s.events == nil {
		return ErrNotConfigured
	}
	if err := s.events.EnsureExchange(s.settings.Exchange, "direct", true); err != nil {
		return err
	}
	if err := s.events.EnsureQueue(s.settings.UploadQueue, true); err != nil {
		return err
	}
	return s.events.BindQueue(s.settings.UploadQueue, s.settings.Exchange, s.settings.UploadedRoutingKey)
}

// StartUploadConsumer 启动上传事件消费者，ctx 取消后停止
func (s *ProfileService) StartUploadConsumer(ctx context.Context) (<-chan struct{}, error) {
	if !s.AsyncEnabled() {
		return nil, ErrNotConfigured
	}
	if err := s.SetupTopology(); err != nil {
		return nil, fmt.Errorf("初始化消息拓扑失败: %w", err)
	}
	return s.events.StartConsumer(ctx, s.settings.UploadQueue, s.settings.PrefetchCount, s.settings.ConsumerWorkers, s.handleMessage)
}

func (s *ProfileService) handleMessage(ctx context.Context, body []byte) error {
	var msg storage.ResumeUploadMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("无效的上传消息: %w", err)
	}
	if msg.SubmissionUUID == "" || msg.OriginalFilePathOSS == "" {
		return fmt.Errorf("上传消息缺少必要字段")
	}
	return s.HandleUpload(ctx, msg)
}

// TextMD5 文本内容的MD5
func TextMD5(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// truncateText 截断到 limit 字节以内且不切断UTF-8字符
func truncateText(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	n := limit
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}
