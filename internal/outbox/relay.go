// Package outbox 发件箱模式：事件与业务数据同事务写入 outbox_messages，由 Relay 轮询投递
package outbox

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/storage/models"
	"resume-parser-go/internal/tracing"
)

const (
	defaultPollingInterval = 5 * time.Second
	defaultBatchSize       = 10
	maxRetryCount          = 5
)

// Publisher 消息发布，默认实现是 storage.RabbitMQ
type Publisher interface {
	PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error
}

// Relay 轮询待发布的发件箱消息并投递到消息队列
type Relay struct {
	db              *gorm.DB
	publisher       Publisher
	pollingInterval time.Duration
	batchSize       int
	tracer          trace.Tracer
	now             func() time.Time
}

// Option Relay 选项
type Option func(*Relay)

// WithPollingInterval 设置轮询间隔
func WithPollingInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.pollingInterval = d
		}
	}
}

// WithBatchSize 设置每批消息数
func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// NewRelay 创建消息中继
func NewRelay(db *gorm.DB, publisher Publisher, opts ...Option) *Relay {
	r := &Relay{
		db:              db,
		publisher:       publisher,
		pollingInterval: defaultPollingInterval,
		batchSize:       defaultBatchSize,
		tracer:          otel.Tracer("resume-parser-go/outbox"),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start 在后台轮询，ctx 取消后停止，返回的通道在退出时关闭
func (r *Relay) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	logger.Info().Dur("interval", r.pollingInterval).Int("batch_size", r.batchSize).Msg("发件箱中继启动")

	go func() {
		defer close(done)
		ticker := time.NewTicker(r.pollingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Info().Msg("发件箱中继已停止")
				return
			case <-ticker.C:
				if _, err := r.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
					logger.Error().Err(err).Msg("处理发件箱消息失败")
				}
			}
		}
	}()
	return done
}

// ProcessBatch 取一批待发布消息并投递，返回本批处理的消息数。
// FOR UPDATE SKIP LOCKED 让多个实例可以同时运行。
func (r *Relay) ProcessBatch(ctx context.Context) (int, error) {
	var messages []models.OutboxMessage

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return 0, tx.Error
	}
	defer tx.Rollback()

	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", models.OutboxStatusPending).
		Order("created_at asc").
		Limit(r.batchSize).
		Find(&messages).Error
	if err != nil {
		return 0, err
	}
	// 空轮询不创建span
	if len(messages) == 0 {
		return 0, tx.Commit().Error
	}

	ctx, span := r.tracer.Start(ctx, "outbox.ProcessBatch",
		trace.WithAttributes(attribute.Int("messaging.batch.message_count", len(messages))))
	defer span.End()

	for i := range messages {
		msg := &messages[i]
		pubErr := r.publisher.PublishMessage(ctx, msg.TargetExchange, msg.TargetRoutingKey, msg.Payload, true)
		if pubErr != nil {
			logger.Warn().Err(pubErr).
				Uint64("outbox_id", msg.ID).
				Str("aggregate_id", msg.AggregateID).
				Int("retry", msg.RetryCount+1).
				Msg("发布发件箱消息失败")
		}
		applyPublishResult(msg, pubErr, r.now())

		// 更新失败时整批回滚，下次轮询重新拾取
		if err := tx.Save(msg).Error; err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeDB)
			return 0, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return 0, err
	}
	span.SetStatus(codes.Ok, "")
	return len(messages), nil
}

// applyPublishResult 根据发布结果更新消息状态，达到重试上限后标记为失败
func applyPublishResult(msg *models.OutboxMessage, err error, now time.Time) {
	if err != nil {
		msg.RetryCount++
		msg.ErrorMessage = err.Error()
		if msg.RetryCount >= maxRetryCount {
			msg.Status = models.OutboxStatusFailed
		}
		return
	}
	msg.Status = models.OutboxStatusSent
	msg.ProcessedAt = &now
	msg.ErrorMessage = ""
}
