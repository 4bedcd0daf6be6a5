package logger // 全局日志组件，解析器诊断信息也从这里输出

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DiagnosticsEnv 打开解析诊断输出的环境变量
const DiagnosticsEnv = "RESUME_PARSER_DEBUG"

var (
	// Logger 默认的全局日志实例
	Logger = log.Logger

	// diagLogger 诊断日志，始终写到标准错误，不与画像JSON混在一起
	diagLogger  = zerolog.New(os.Stderr).With().Timestamp().Str("channel", "diagnostics").Logger()
	diagEnabled atomic.Bool
)

func init() {
	diagEnabled.Store(envDiagnostics())
}

// Config 日志配置
type Config struct {
	Level        string `json:"level" yaml:"level"`                 // debug, info, warn, error
	Format       string `json:"format" yaml:"format"`               // json 或 pretty
	TimeFormat   string `json:"time_format" yaml:"time_format"`     // 时间戳格式
	ReportCaller bool   `json:"report_caller" yaml:"report_caller"` // 是否记录调用位置
	Output       string `json:"output" yaml:"output"`               // stdout（默认）或 stderr
}

// Init 根据配置初始化全局日志
func Init(config Config) {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stdout
	if strings.EqualFold(config.Output, "stderr") {
		out = os.Stderr
	}
	if config.Format == "pretty" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: config.TimeFormat}
	}

	if config.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	builder := zerolog.New(out).Level(level).With().Timestamp()
	if config.ReportCaller {
		builder = builder.Caller()
	}
	Logger = builder.Logger()
	log.Logger = Logger

	// debug 级别同时打开诊断输出
	if level <= zerolog.DebugLevel {
		diagEnabled.Store(true)
	}
}

func envDiagnostics() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(DiagnosticsEnv)))
	return v == "1" || v == "true" || v == "yes"
}

// DiagnosticsEnabled 是否输出解析诊断
func DiagnosticsEnabled() bool {
	return diagEnabled.Load()
}

// SetDiagnostics 显式开关诊断输出（命令行 --debug）
func SetDiagnostics(enabled bool) {
	diagEnabled.Store(enabled)
}

// Diag 返回一条诊断事件，未开启时返回空事件，调用方无需判断
func Diag() *zerolog.Event {
	if !diagEnabled.Load() {
		return nil
	}
	// 不受全局日志级别限制
	return diagLogger.Log().Str("level", "diag")
}

// Debug 调试级别日志
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info 信息级别日志
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn 警告级别日志
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error 错误级别日志
func Error() *zerolog.Event {
	return Logger.Error()
}

// Fatal 记录后程序退出
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}

// Ctx 从上下文中获取日志记录器
func Ctx(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext 将全局日志记录器放入上下文
func WithContext(ctx context.Context) context.Context {
	return Logger.WithContext(ctx)
}
