package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/tracing"
)

// ErrNotFound 键不存在
var ErrNotFound = redis.Nil

var redisTracer = otel.Tracer("resume-parser-go/storage/redis")

// 原子地检查并加入集合，返回加入前是否已存在
var checkAndAddScript = redis.NewScript(`
local exists = redis.call('SISMEMBER', KEYS[1], ARGV[1])
redis.call('SADD', KEYS[1], ARGV[1])
redis.call('EXPIRE', KEYS[1], ARGV[2])
return exists
`)

// Redis 去重集合和画像缓存
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter 创建Redis客户端并检查连通性
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		MaxRetries:   cfg.MaxRetries,
	})

	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	logger.Info().Str("address", cfg.Address).Msg("成功连接到Redis")
	return &Redis{Client: client, config: cfg}, nil
}

// Close 关闭连接
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping 检查连接
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// MD5ExpireDuration 去重集合的过期时间，默认一年
func MD5ExpireDuration(cfg *config.RedisConfig) time.Duration {
	days := 0
	if cfg != nil {
		days = cfg.MD5RecordExpireDays
	}
	if days <= 0 {
		days = 365
	}
	return time.Duration(days) * 24 * time.Hour
}

// ProfileCacheTTL 画像缓存的过期时间
func ProfileCacheTTL(cfg *config.RedisConfig) time.Duration {
	if cfg == nil || cfg.ProfileCacheTTLHours <= 0 {
		return constants.ProfileCacheDuration
	}
	return time.Duration(cfg.ProfileCacheTTLHours) * time.Hour
}

// CheckAndAddRawFileMD5 原子地检查并记录原始文件MD5
func (r *Redis) CheckAndAddRawFileMD5(ctx context.Context, md5Hex string) (bool, error) {
	return r.checkAndAdd(ctx, "Redis.CheckAndAddRawFileMD5", constants.KeyFileMD5Set, md5Hex)
}

// CheckAndAddTextMD5 原子地检查并记录提取文本MD5
func (r *Redis) CheckAndAddTextMD5(ctx context.Context, md5Hex string) (bool, error) {
	return r.checkAndAdd(ctx, "Redis.CheckAndAddTextMD5", constants.KeyTextMD5Set, md5Hex)
}

func (r *Redis) checkAndAdd(ctx context.Context, spanName, key, md5Hex string) (exists bool, err error) {
	ctx, span := redisTracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.operation", "EVAL"),
		attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
		attribute.String("db.redis.member", md5Hex),
	)

	if r.Client == nil {
		err = fmt.Errorf("redis client is not initialized")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	expiry := int64(MD5ExpireDuration(r.config).Seconds())
	res, err := checkAndAddScript.Run(ctx, r.Client, []string{key}, md5Hex, expiry).Int64()
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return false, fmt.Errorf("执行原子检查和添加操作失败: %w", err)
	}

	exists = res == 1
	span.SetAttributes(attribute.Bool("already_exists", exists))
	span.SetStatus(codes.Ok, "")
	return exists, nil
}

// RemoveRawFileMD5 在上传失败时回滚文件MD5
func (r *Redis) RemoveRawFileMD5(ctx context.Context, md5Hex string) error {
	ctx, span := redisTracer.Start(ctx, "Redis.RemoveRawFileMD5", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.operation", "SREM"),
		attribute.String("db.redis.member", md5Hex),
	)

	if err := r.Client.SRem(ctx, constants.KeyFileMD5Set, md5Hex).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("移除文件MD5失败: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// SetSubmissionForMD5 记录文件MD5对应的提交，供重复上传时返回已有UUID
func (r *Redis) SetSubmissionForMD5(ctx context.Context, md5Hex, submissionUUID string) error {
	return r.Client.Set(ctx, constants.SubmissionByMD5Key(md5Hex), submissionUUID, MD5ExpireDuration(r.config)).Err()
}

// GetSubmissionForMD5 查询文件MD5对应的提交UUID，不存在时返回空串
func (r *Redis) GetSubmissionForMD5(ctx context.Context, md5Hex string) (string, error) {
	val, err := r.Client.Get(ctx, constants.SubmissionByMD5Key(md5Hex)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// GetCachedProfile 读取文本MD5对应的画像JSON
func (r *Redis) GetCachedProfile(ctx context.Context, textMD5 string) ([]byte, bool, error) {
	ctx, span := redisTracer.Start(ctx, "Redis.GetCachedProfile", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	key := constants.ProfileCacheKey(textMD5)
	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.operation", "GET"),
		attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
	)

	data, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.Bool("cache.hit", false))
		span.SetStatus(codes.Ok, "")
		return nil, false, nil
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, false, fmt.Errorf("读取画像缓存失败: %w", err)
	}
	span.SetAttributes(attribute.Bool("cache.hit", true), attribute.Int("cache.size", len(data)))
	span.SetStatus(codes.Ok, "")
	return data, true, nil
}

// CacheProfile 缓存画像JSON，ttl 不大于0时使用配置值
func (r *Redis) CacheProfile(ctx context.Context, textMD5 string, data []byte, ttl time.Duration) error {
	ctx, span := redisTracer.Start(ctx, "Redis.CacheProfile", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	if ttl <= 0 {
		ttl = ProfileCacheTTL(r.config)
	}
	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.operation", "SET"),
		attribute.Int("cache.size", len(data)),
		attribute.String("cache.ttl", ttl.String()),
	)

	if err := r.Client.Set(ctx, constants.ProfileCacheKey(textMD5), data, ttl).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("写入画像缓存失败: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
