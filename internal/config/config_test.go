package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644), "无法写入临时配置文件")
	return configPath
}

// TestLoadConfigWithCorrectMapSyntax 验证当 YAML 语法正确时，配置能否被成功加载
func TestLoadConfigWithCorrectMapSyntax(t *testing.T) {
	configPath := writeConfig(t, `
rabbitmq:
  url: "amqp://guest:guest@mq:5672/"
  prefetch_count: 20
  consumer_workers:
    upload_consumer_workers: 5
    parse_consumer_workers: 3
`)

	config, err := LoadConfig(configPath)
	require.NoError(t, err, "加载具有正确语法的配置不应返回错误")
	require.NotNil(t, config)

	assert.Equal(t, map[string]int{
		"upload_consumer_workers": 5,
		"parse_consumer_workers":  3,
	}, config.RabbitMQ.ConsumerWorkers)
	assert.Equal(t, 20, config.RabbitMQ.PrefetchCount)
	assert.Equal(t, 5, config.ConsumerWorkers("upload_consumer_workers", 1))
	assert.Equal(t, 2, config.ConsumerWorkers("unknown", 2))

	// 文件中未出现的字段保留默认值
	assert.Equal(t, ":8080", config.Server.Address)
	assert.Equal(t, "resume-profiles", config.MinIO.ProfilesBucket)
	assert.Equal(t, "q.resume_uploaded", config.RabbitMQ.UploadQueue)
}

// TestLoadConfigWithIncorrectMapSyntax 验证当 YAML 缩进错误时，map 字段无法被正确解析
func TestLoadConfigWithIncorrectMapSyntax(t *testing.T) {
	configPath := writeConfig(t, `
rabbitmq:
  prefetch_count: 10
  consumer_workers: # map类型
  upload_consumer_workers: 5
`)

	config, err := LoadConfig(configPath)
	// go-yaml/v3 不会报错，consumer_workers 被解析为空值
	require.NoError(t, err)
	assert.Empty(t, config.RabbitMQ.ConsumerWorkers)
	assert.Equal(t, 4, config.ConsumerWorkers("upload_consumer_workers", 4))
}

func TestLoadConfigSections(t *testing.T) {
	configPath := writeConfig(t, `
server:
  address: ":9090"
  api_key: "file-key"
  parse_timeout: "3s"
  rate_limit_qpm: 120
parser:
  taxonomy_path: "/etc/resume/taxonomy.yaml"
  concurrency: 8
redis:
  address: "redis:6379"
  profile_cache_ttl_hours: 12
minio:
  originalsBucket: "orig"
  profilesBucket: "prof"
tracing:
  endpoint: "otel:4317"
  sample_ratio: 0.5
logger:
  level: "debug"
  format: "json"
`)

	config, err := LoadConfigFromFileOnly(configPath)
	require.NoError(t, err)
	assert.Equal(t, ":9090", config.Server.Address)
	assert.Equal(t, "file-key", config.Server.APIKey)
	assert.Equal(t, 3*time.Second, GetDuration(config.Server.ParseTimeout, time.Second))
	assert.Equal(t, 120, config.Server.RateLimitQPM)
	assert.Zero(t, config.Server.RateLimitBurst)
	assert.Equal(t, "/etc/resume/taxonomy.yaml", config.Parser.TaxonomyPath)
	assert.Equal(t, 8, config.Parser.Concurrency)
	assert.Equal(t, "rule-based-v1", config.Parser.ParserVersion)
	assert.Equal(t, 12, config.Redis.ProfileCacheTTLHours)
	assert.Equal(t, "orig", config.MinIO.OriginalsBucket)
	assert.Equal(t, "prof", config.MinIO.ProfilesBucket)
	assert.Equal(t, "otel:4317", config.Tracing.Endpoint)
	assert.Equal(t, 0.5, config.Tracing.SampleRatio)
	assert.Equal(t, "debug", config.Logger.Level)
	assert.Equal(t, "json", config.Logger.Format)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	configPath := writeConfig(t, `
server:
  api_key: "file-key"
redis:
  address: "redis:6379"
`)
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvRedisAddress, "cache:6380")
	t.Setenv(EnvRabbitMQURL, "amqp://u:p@broker:5672/")
	t.Setenv(EnvMySQLPassword, "secret")
	t.Setenv(EnvMinIOSecretKey, "minio-secret")

	config, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "env-key", config.Server.APIKey)
	assert.Equal(t, "cache:6380", config.Redis.Address)
	assert.Equal(t, "amqp://u:p@broker:5672/", config.RabbitMQ.URL)
	assert.Equal(t, "secret", config.MySQL.Password)
	assert.Equal(t, "minio-secret", config.MinIO.SecretAccessKey)

	// 仅从文件加载时不应用环境变量
	fileOnly, err := LoadConfigFromFileOnly(configPath)
	require.NoError(t, err)
	assert.Equal(t, "file-key", fileOnly.Server.APIKey)
}

func TestLoadConfigMissingFileInTest(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "server: [unclosed")
	_, err := LoadConfig(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "解析配置文件失败")
}

func TestCreateSampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, CreateSampleConfig(path))

	loaded, err := LoadConfigFromFileOnly(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)

	assert.Error(t, CreateSampleConfig(path), "已存在的文件不应被覆盖")
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, GetDuration("", 5*time.Second))
	assert.Equal(t, 5*time.Second, GetDuration("bogus", 5*time.Second))
	assert.Equal(t, 250*time.Millisecond, GetDuration("250ms", time.Second))
}
