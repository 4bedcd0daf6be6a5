package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzerolog "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/api/router"
	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/outbox"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/taxonomy"
	"resume-parser-go/internal/tracing"
)

var version = "1.0.0" //nolint:gochecknoglobals

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径，为空时按默认位置查找")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置失败")
	}
	logger.Init(cfg.Logger)
	hlog.SetLogger(hertzzerolog.From(logger.Logger))
	logger.Info().Str("version", version).Msg("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitProvider(ctx, cfg.Tracing, version)
	if err != nil {
		logger.Warn().Err(err).Msg("初始化链路追踪失败，继续运行")
	}

	tax := taxonomy.Default()
	if cfg.Parser.TaxonomyPath != "" {
		tax, err = taxonomy.Load(cfg.Parser.TaxonomyPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.Parser.TaxonomyPath).Msg("加载技能分类表失败")
		}
	}
	logger.Info().Str("taxonomy_version", tax.Version).Msg("技能分类表就绪")

	// 外部存储部分不可用时仍提供同步解析
	st, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("存储服务不可用，仅提供同步解析")
		st = &storage.Storage{}
	}
	defer st.Close()

	opts := []processor.Option{
		processor.WithStorage(st),
		processor.WithSettings(processor.SettingsFromConfig(cfg)),
	}
	var relayDone <-chan struct{}
	if cfg.RabbitMQ.OutboxEnabled && st.MySQL != nil && st.RabbitMQ != nil {
		opts = append(opts, processor.WithOutbox(st.MySQL))
		relay := outbox.NewRelay(st.MySQL.DB(), st.RabbitMQ,
			outbox.WithPollingInterval(config.GetDuration(cfg.RabbitMQ.OutboxPollInterval, 5*time.Second)))
		relayDone = relay.Start(ctx)
	}
	service := processor.NewProfileService(parser.NewProfileParser(tax), opts...)

	var consumerDone <-chan struct{}
	if service.AsyncEnabled() {
		consumerDone, err = service.StartUploadConsumer(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("启动简历上传消费者失败")
		}
		logger.Info().Msg("简历上传消费者已启动")
	} else {
		logger.Warn().Msg("MinIO/MySQL/RabbitMQ 未全部就绪，异步上传不可用")
	}

	maxUploadMB := cfg.Server.MaxUploadMB
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		// 批量接口一次上传多个文件
		server.WithMaxRequestBodySize((maxUploadMB*8)<<20),
		tracer,
	)

	resumeHandler := handler.NewResumeHandler(service, cfg.Server)
	router.RegisterRoutes(h, resumeHandler, handler.NewCandidateHandler(resumeHandler), router.Options{
		APIKey:         cfg.Server.APIKey,
		RateLimitQPM:   cfg.Server.RateLimitQPM,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		Middlewares:    []app.HandlerFunc{hertztracing.ServerMiddleware(tracerCfg)},
	})
	if cfg.Server.APIKey == "" {
		logger.Warn().Msg("未配置 server.api_key，API 不做鉴权")
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address).Msg("HTTP 服务器启动中")
		if err := h.Run(); err != nil {
			logger.Fatal().Err(err).Msg("启动HTTP服务器失败")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP服务器关闭失败")
	}

	// 停止消费并等待进行中的消息处理完
	cancel()
	for _, done := range []<-chan struct{}{consumerDone, relayDone} {
		if done == nil {
			continue
		}
		select {
		case <-done:
		case <-shutdownCtx.Done():
			logger.Warn().Msg("等待后台任务退出超时")
		}
	}

	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("关闭链路追踪失败")
		}
	}
	logger.Info().Msg("优雅退出完成")
}
