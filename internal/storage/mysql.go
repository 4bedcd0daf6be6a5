package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/storage/models"
	"resume-parser-go/internal/tracing"
)

var mysqlTracer = otel.Tracer("resume-parser-go/storage/mysql")

// ErrProfileNotFound 提交不存在或尚未生成画像
var ErrProfileNotFound = errors.New("画像不存在")

type gormSpanKey struct{}

// GormTracingPlugin 是一个GORM插件，为每条SQL操作创建追踪span
type GormTracingPlugin struct {
	tracer trace.Tracer
	dbName string
}

// NewGormTracingPlugin 创建一个新的GORM追踪插件
func NewGormTracingPlugin(dbName string) *GormTracingPlugin {
	return &GormTracingPlugin{tracer: mysqlTracer, dbName: dbName}
}

// Name 返回插件名称
func (p *GormTracingPlugin) Name() string {
	return "GormOpenTelemetryPlugin"
}

// Initialize 注册GORM回调以启用追踪
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		op     string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
		name   string
	}{
		{"CREATE", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register, "create"},
		{"SELECT", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register, "query"},
		{"UPDATE", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register, "update"},
		{"DELETE", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register, "delete"},
		{"RAW", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register, "raw"},
	}
	for _, h := range hooks {
		if err := h.before("otel:before_"+h.name, p.before(h.op)); err != nil {
			return err
		}
		if err := h.after("otel:after_"+h.name, p.after()); err != nil {
			return err
		}
	}
	return nil
}

func (p *GormTracingPlugin) before(operation string) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		if db.Statement.SkipHooks {
			return
		}
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		tableName := db.Statement.Table
		if tableName == "" {
			tableName = "unknown"
		}

		newCtx, span := p.tracer.Start(ctx, fmt.Sprintf("%s %s", operation, tableName),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemMySQL,
				attribute.String("db.name", p.dbName),
				attribute.String("db.operation", operation),
				attribute.String("db.sql.table", tableName),
			))
		db.Statement.Context = context.WithValue(newCtx, gormSpanKey{}, span)
	}
}

func (p *GormTracingPlugin) after() func(db *gorm.DB) {
	return func(db *gorm.DB) {
		span, ok := db.Statement.Context.Value(gormSpanKey{}).(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if sql := db.Statement.SQL.String(); sql != "" {
			span.SetAttributes(attribute.String("db.statement", tracing.SafeSQL(sql)))
		}

		switch {
		case db.Error == nil:
			span.SetStatus(codes.Ok, "")
		case errors.Is(db.Error, gorm.ErrRecordNotFound):
			// 记录不存在是正常业务分支
			span.SetAttributes(attribute.String("error.type", "record_not_found"))
			span.SetStatus(codes.Ok, "record not found")
		default:
			tracing.RecordError(span, db.Error, tracing.ErrorTypeDB)
		}
	}
}

// MySQL 提交记录和画像的持久化
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

func gormLogLevel(level int) gormlogger.LogLevel {
	switch level {
	case 1:
		return gormlogger.Silent
	case 2:
		return gormlogger.Error
	case 3:
		return gormlogger.Warn
	}
	return gormlogger.Info
}

// DSN 根据配置构建MySQL连接串
func DSN(cfg *config.MySQLConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		cfg.ConnectTimeoutSeconds, cfg.ReadTimeoutSeconds, cfg.WriteTimeoutSeconds)
}

// NewMySQL 连接MySQL并迁移表结构
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	db, err := gorm.Open(mysql.Open(DSN(cfg)), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		PrepareStmt:                              true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute)

	if err := db.Use(NewGormTracingPlugin(cfg.Database)); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("注册追踪插件失败: %w", err)
	}

	silent := db.Session(&gorm.Session{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err := silent.AutoMigrate(&models.ResumeSubmission{}, &models.ParsedProfile{}, &models.OutboxMessage{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
	}

	logger.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("成功连接到MySQL并迁移表结构")
	return &MySQL{db: db, cfg: cfg}, nil
}

// NewMySQLWithDB 复用已有的 gorm 连接，不做迁移
func NewMySQLWithDB(db *gorm.DB, cfg *config.MySQLConfig) *MySQL {
	return &MySQL{db: db, cfg: cfg}
}

// DB 返回GORM数据库连接实例
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return sqlDB.Close()
}

// CreateSubmission 插入提交记录，主键冲突时保持幂等
func (m *MySQL) CreateSubmission(ctx context.Context, sub *models.ResumeSubmission) error {
	return m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "submission_uuid"}},
		DoUpdates: clause.AssignmentColumns([]string{"submission_uuid"}),
	}).Create(sub).Error
}

// UpdateSubmissionStatus 更新处理状态，detail 非空时写入错误信息
func (m *MySQL) UpdateSubmissionStatus(ctx context.Context, submissionUUID, status, detail string) error {
	updates := map[string]interface{}{"processing_status": status}
	if detail != "" {
		updates["error_message"] = detail
	}
	return m.db.WithContext(ctx).Model(&models.ResumeSubmission{}).
		Where("submission_uuid = ?", submissionUUID).
		Updates(updates).Error
}

// UpdateSubmissionTextMD5 记录提取文本的MD5
func (m *MySQL) UpdateSubmissionTextMD5(ctx context.Context, submissionUUID, textMD5 string) error {
	if textMD5 == "" {
		return nil
	}
	return m.db.WithContext(ctx).Model(&models.ResumeSubmission{}).
		Where("submission_uuid = ?", submissionUUID).
		Update("raw_text_md5", textMD5).Error
}

// SaveProfile 写入或覆盖提交对应的画像
func (m *MySQL) SaveProfile(ctx context.Context, profile *models.ParsedProfile) error {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.SaveProfile", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		semconv.DBSystemMySQL,
		attribute.String("db.operation", "UPSERT"),
		attribute.String("db.sql.table", models.ParsedProfile{}.TableName()),
		attribute.String("submission.uuid", profile.SubmissionUUID),
	)

	if err := upsertProfile(m.db.WithContext(ctx), profile); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return fmt.Errorf("保存画像失败: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// SaveProfileWithEvent 在同一事务中保存画像并写入发件箱事件
func (m *MySQL) SaveProfileWithEvent(ctx context.Context, profile *models.ParsedProfile, event *models.OutboxMessage) error {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.SaveProfileWithEvent", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		semconv.DBSystemMySQL,
		attribute.String("db.operation", "TRANSACTION"),
		attribute.String("submission.uuid", profile.SubmissionUUID),
		attribute.String("outbox.event_type", event.EventType),
	)

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertProfile(tx, profile); err != nil {
			return err
		}
		if event.Status == "" {
			event.Status = models.OutboxStatusPending
		}
		return tx.Create(event).Error
	})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return fmt.Errorf("保存画像及发件箱事件失败: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func upsertProfile(db *gorm.DB, profile *models.ParsedProfile) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "submission_uuid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"profile_json", "profile_path_oss", "completeness_score", "experience_months_total",
			"technical_skill_count", "skills_warning", "taxonomy_version", "parser_version",
			"from_cache", "updated_at",
		}),
	}).Create(profile).Error
}

// GetProfile 按提交UUID读取画像
func (m *MySQL) GetProfile(ctx context.Context, submissionUUID string) (*models.ParsedProfile, error) {
	var profile models.ParsedProfile
	err := m.db.WithContext(ctx).Where("submission_uuid = ?", submissionUUID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询画像失败: %w", err)
	}
	return &profile, nil
}

// GetSubmission 按UUID读取提交记录
func (m *MySQL) GetSubmission(ctx context.Context, submissionUUID string) (*models.ResumeSubmission, error) {
	var sub models.ResumeSubmission
	err := m.db.WithContext(ctx).Where("submission_uuid = ?", submissionUUID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
