package storage

import (
	"context"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	gormlogger "gorm.io/gorm/logger"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
)

func TestObjectKeys(t *testing.T) {
	assert.Equal(t, "resume/abc/original.pdf", OriginalObjectKey("abc", ".PDF"))
	assert.Equal(t, "resume/abc/profile.json", ProfileObjectKey("abc"))
}

func TestGetContentType(t *testing.T) {
	tests := map[string]string{
		".pdf":  "application/pdf",
		".DOCX": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".txt":  "text/plain; charset=utf-8",
		".json": "application/json",
		".exe":  "application/octet-stream",
		"":      "application/octet-stream",
	}
	for ext, want := range tests {
		assert.Equal(t, want, getContentType(ext), ext)
	}
}

func TestExpireDurations(t *testing.T) {
	assert.Equal(t, 365*24*time.Hour, MD5ExpireDuration(nil))
	assert.Equal(t, 30*24*time.Hour, MD5ExpireDuration(&config.RedisConfig{MD5RecordExpireDays: 30}))

	assert.Equal(t, constants.ProfileCacheDuration, ProfileCacheTTL(nil))
	assert.Equal(t, constants.ProfileCacheDuration, ProfileCacheTTL(&config.RedisConfig{}))
	assert.Equal(t, 12*time.Hour, ProfileCacheTTL(&config.RedisConfig{ProfileCacheTTLHours: 12}))
}

func TestDSN(t *testing.T) {
	dsn := DSN(&config.MySQLConfig{
		Host: "db", Port: 3306, Username: "u", Password: "p", Database: "resume_parser",
		ConnectTimeoutSeconds: 5, ReadTimeoutSeconds: 3, WriteTimeoutSeconds: 3,
	})
	assert.Equal(t, "u:p@tcp(db:3306)/resume_parser?charset=utf8mb4&parseTime=True&loc=Local&timeout=5s&readTimeout=3s&writeTimeout=3s", dsn)
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, gormLogLevel(1))
	assert.Equal(t, gormlogger.Error, gormLogLevel(2))
	assert.Equal(t, gormlogger.Warn, gormLogLevel(3))
	assert.Equal(t, gormlogger.Info, gormLogLevel(4))
}

func TestHeaderCarrierRoundTrip(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	headers := amqp.Table{}
	prop := propagation.TraceContext{}
	prop.Inject(ctx, HeaderCarrier(headers))
	require.Contains(t, headers, "traceparent")

	extracted := prop.Extract(context.Background(), HeaderCarrier(headers))
	assert.Equal(t, span.SpanContext().TraceID(), trace.SpanContextFromContext(extracted).TraceID())

	assert.Equal(t, "", HeaderCarrier(amqp.Table{"n": 1}).Get("n"))
	assert.ElementsMatch(t, []string{"traceparent"}, HeaderCarrier(headers).Keys())
}

func TestNewStorageWithoutComponents(t *testing.T) {
	_, err := NewStorage(context.Background(), nil)
	require.Error(t, err)

	s, err := NewStorage(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, s.MinIO)
	assert.Nil(t, s.Redis)
	assert.False(t, s.AsyncReady())
	s.Close()
}
