package storage

import (
	"context"
	"fmt"
	"strings"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
)

// Storage 存储管理器，聚合所有存储相关依赖。未配置或初始化失败的组件为 nil。
type Storage struct {
	MinIO    *MinIO
	RabbitMQ *RabbitMQ
	MySQL    *MySQL
	Redis    *Redis
}

// NewStorage 创建存储管理器。部分组件失败时仍返回，全部失败时返回错误。
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	s := &Storage{}
	var err error
	var initErrors []string
	record := func(name string, err error) {
		logger.Warn().Err(err).Str("component", name).Msg("初始化存储组件失败")
		initErrors = append(initErrors, fmt.Sprintf("%s: %v", name, err))
	}

	if cfg.MinIO.Endpoint != "" {
		if s.MinIO, err = NewMinIO(&cfg.MinIO); err != nil {
			record("MinIO", err)
		}
	}

	if cfg.RabbitMQ.URL != "" {
		if s.RabbitMQ, err = NewRabbitMQ(&cfg.RabbitMQ); err != nil {
			record("RabbitMQ", err)
		}
	}

	if cfg.MySQL.Host != "" {
		if s.MySQL, err = NewMySQL(&cfg.MySQL); err != nil {
			record("MySQL", err)
		}
	}

	if cfg.Redis.Address != "" {
		if s.Redis, err = NewRedisAdapter(&cfg.Redis); err != nil {
			record("Redis", err)
		}
	} else {
		logger.Info().Msg("Redis未配置, 跳过初始化")
	}

	if s.MinIO == nil && s.RabbitMQ == nil && s.MySQL == nil && s.Redis == nil {
		if len(initErrors) == 0 {
			return s, nil
		}
		return nil, fmt.Errorf("所有存储组件初始化失败: %s", strings.Join(initErrors, "; "))
	}
	if len(initErrors) > 0 {
		logger.Warn().Str("errors", strings.Join(initErrors, "; ")).Msg("部分存储组件初始化失败")
	}
	return s, nil
}

// AsyncReady 上传流水线所需的组件是否齐备
func (s *Storage) AsyncReady() bool {
	return s != nil && s.MinIO != nil && s.RabbitMQ != nil && s.MySQL != nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	if s.MySQL != nil {
		if err := s.MySQL.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭MySQL连接失败")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭Redis连接失败")
		}
	}
}
