package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/tracing"
)

var minioTracer = otel.Tracer("resume-parser-go/storage/minio")

// MinIO 保存原始简历文件和画像JSON
type MinIO struct {
	client          *minio.Client
	cfg             *config.MinIOConfig
	originalsBucket string
	profilesBucket  string
}

// NewMinIO 创建MinIO客户端并确保存储桶存在
func NewMinIO(cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client:          client,
		cfg:             cfg,
		originalsBucket: bucketOrDefault(cfg.OriginalsBucket, "resume-originals"),
		profilesBucket:  bucketOrDefault(cfg.ProfilesBucket, "resume-profiles"),
	}

	ctx := context.Background()
	for _, bucket := range []string{m.originalsBucket, m.profilesBucket} {
		if err := m.ensureBucketExists(ctx, bucket, cfg.Location); err != nil {
			return nil, err
		}
	}

	if cfg.OriginalFileExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.originalsBucket, "expire-originals", cfg.OriginalFileExpireDays); err != nil {
			// 生命周期规则失败不影响读写
			logger.Warn().Err(err).Str("bucket", m.originalsBucket).Msg("设置生命周期规则失败")
		}
	}

	logger.Info().
		Str("endpoint", cfg.Endpoint).
		Str("originals_bucket", m.originalsBucket).
		Str("profiles_bucket", m.profilesBucket).
		Msg("MinIO客户端初始化成功")
	return m, nil
}

func bucketOrDefault(name, def string) string {
	if name == "" {
		return def
	}
	return name
}

func (m *MinIO) ensureBucketExists(ctx context.Context, bucketName, location string) error {
	exists, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
	}
	logger.Info().Str("bucket", bucketName).Msg("已创建存储桶")
	return nil
}

func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	cfg := lifecycle.NewConfiguration()
	cfg.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}
	return m.client.SetBucketLifecycle(ctx, bucketName, cfg)
}

// OriginalObjectKey 原始文件的对象键，例如 resume/{uuid}/original.pdf
func OriginalObjectKey(submissionUUID, fileExt string) string {
	return fmt.Sprintf("resume/%s/original%s", submissionUUID, strings.ToLower(fileExt))
}

// ProfileObjectKey 画像JSON的对象键
func ProfileObjectKey(submissionUUID string) string {
	return fmt.Sprintf("resume/%s/profile.json", submissionUUID)
}

// UploadOriginal 流式上传原始文件并同时计算MD5，返回对象键和MD5
func (m *MinIO) UploadOriginal(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, fileSize int64) (string, string, error) {
	objectName := OriginalObjectKey(submissionUUID, fileExt)
	ctx, span := m.startSpan(ctx, "MinIO.UploadOriginal", m.originalsBucket, objectName)
	defer span.End()

	md5Hash := md5.New()
	info, err := m.client.PutObject(ctx, m.originalsBucket, objectName, io.TeeReader(reader, md5Hash),
		fileSize, minio.PutObjectOptions{ContentType: getContentType(fileExt)})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return "", "", fmt.Errorf("流式上传文件到MinIO失败: %w", err)
	}

	md5Hex := hex.EncodeToString(md5Hash.Sum(nil))
	span.SetAttributes(attribute.Int64("object.size", info.Size))
	span.SetStatus(codes.Ok, "")
	return objectName, md5Hex, nil
}

// DownloadOriginal 读取原始文件内容
func (m *MinIO) DownloadOriginal(ctx context.Context, objectName string) ([]byte, error) {
	return m.download(ctx, "MinIO.DownloadOriginal", m.originalsBucket, objectName)
}

// DeleteOriginal 删除原始文件，用于上传流程失败后的清理
func (m *MinIO) DeleteOriginal(ctx context.Context, objectName string) error {
	ctx, span := m.startSpan(ctx, "MinIO.DeleteOriginal", m.originalsBucket, objectName)
	defer span.End()
	if err := m.client.RemoveObject(ctx, m.originalsBucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return fmt.Errorf("删除对象 %s 失败: %w", objectName, err)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// UploadProfile 保存画像JSON，返回对象键
func (m *MinIO) UploadProfile(ctx context.Context, submissionUUID string, data []byte) (string, error) {
	objectName := ProfileObjectKey(submissionUUID)
	ctx, span := m.startSpan(ctx, "MinIO.UploadProfile", m.profilesBucket, objectName)
	defer span.End()

	_, err := m.client.PutObject(ctx, m.profilesBucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return "", fmt.Errorf("上传画像 %s 到存储桶 %s 失败: %w", objectName, m.profilesBucket, err)
	}
	span.SetAttributes(attribute.Int("object.size", len(data)))
	span.SetStatus(codes.Ok, "")
	return objectName, nil
}

// GetProfileObject 读取画像JSON
func (m *MinIO) GetProfileObject(ctx context.Context, objectName string) ([]byte, error) {
	return m.download(ctx, "MinIO.GetProfileObject", m.profilesBucket, objectName)
}

func (m *MinIO) download(ctx context.Context, spanName, bucketName, objectName string) ([]byte, error) {
	ctx, span := m.startSpan(ctx, spanName, bucketName, objectName)
	defer span.End()

	obj, err := m.client.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", bucketName, objectName, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return nil, fmt.Errorf("读取对象 %s/%s 数据失败: %w", bucketName, objectName, err)
	}
	span.SetAttributes(attribute.Int("object.size", len(data)))
	span.SetStatus(codes.Ok, "")
	return data, nil
}

func (m *MinIO) startSpan(ctx context.Context, name, bucket, objectName string) (context.Context, trace.Span) {
	return minioTracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("object_store.system", "minio"),
			attribute.String("object_store.bucket", bucket),
			attribute.String("object_store.key", objectName),
		))
}

// 根据扩展名获取内容类型
func getContentType(ext string) string {
	switch strings.ToLower(path.Ext("f" + ext)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt", ".text":
		return "text/plain; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
