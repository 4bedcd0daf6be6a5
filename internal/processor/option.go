package processor

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/storage"
)

// Settings 服务的运行参数
type Settings struct {
	ParseTimeout  time.Duration
	MaxTextBytes  int
	Concurrency   int
	ParserVersion string
	CacheTTL      time.Duration

	Exchange           string
	UploadedRoutingKey string
	ParsedRoutingKey   string
	UploadQueue        string
	PrefetchCount      int
	ConsumerWorkers    int
}

// DefaultSettings 未提供配置时的参数
func DefaultSettings() Settings {
	return Settings{
		ParseTimeout:       constants.DefaultParseTimeout,
		MaxTextBytes:       2 << 20,
		Concurrency:        4,
		ParserVersion:      constants.DefaultParserVer,
		CacheTTL:           constants.ProfileCacheDuration,
		Exchange:           "resume.events.exchange",
		UploadedRoutingKey: "resume.uploaded",
		ParsedRoutingKey:   "resume.parsed",
		UploadQueue:        "q.resume_uploaded",
		PrefetchCount:      10,
		ConsumerWorkers:    4,
	}
}

// SettingsFromConfig 从应用配置读取参数，缺省项保留默认值
func SettingsFromConfig(cfg *config.Config) Settings {
	s := DefaultSettings()
	if cfg == nil {
		return s
	}
	s.ParseTimeout = config.GetDuration(cfg.Parser.ParseTimeout, s.ParseTimeout)
	if cfg.Parser.MaxTextBytes > 0 {
		s.MaxTextBytes = cfg.Parser.MaxTextBytes
	}
	if cfg.Parser.Concurrency > 0 {
		s.Concurrency = cfg.Parser.Concurrency
	}
	if cfg.Parser.ParserVersion != "" {
		s.ParserVersion = cfg.Parser.ParserVersion
	}
	s.CacheTTL = storage.ProfileCacheTTL(&cfg.Redis)

	mq := cfg.RabbitMQ
	if mq.ResumeEventsExchange != "" {
		s.Exchange = mq.ResumeEventsExchange
	}
	if mq.UploadedRoutingKey != "" {
		s.UploadedRoutingKey = mq.UploadedRoutingKey
	}
	if mq.ParsedRoutingKey != "" {
		s.ParsedRoutingKey = mq.ParsedRoutingKey
	}
	if mq.UploadQueue != "" {
		s.UploadQueue = mq.UploadQueue
	}
	if mq.PrefetchCount > 0 {
		s.PrefetchCount = mq.PrefetchCount
	}
	s.ConsumerWorkers = cfg.ConsumerWorkers("upload_consumer_workers", s.ConsumerWorkers)
	return s
}

// Option ProfileService 选项
type Option func(*ProfileService)

// WithObjectStore 设置对象存储
func WithObjectStore(store ObjectStore) Option {
	return func(s *ProfileService) {
		s.objects = store
	}
}

// WithProfileCache 设置缓存
func WithProfileCache(cache ProfileCache) Option {
	return func(s *ProfileService) {
		s.cache = cache
	}
}

// WithRepository 设置持久化
func WithRepository(repo ProfileRepository) Option {
	return func(s *ProfileService) {
		s.repo = repo
	}
}

// WithPublisher 设置消息队列
func WithPublisher(pub EventPublisher) Option {
	return func(s *ProfileService) {
		s.events = pub
	}
}

// WithOutbox 解析完成事件写入发件箱，由 outbox.Relay 投递
func WithOutbox(store OutboxStore) Option {
	return func(s *ProfileService) {
		s.outbox = store
	}
}

// WithExtractor 设置文本提取器
func WithExtractor(ex TextExtractor) Option {
	return func(s *ProfileService) {
		if ex != nil {
			s.extractor = ex
		}
	}
}

// WithSettings 设置运行参数
func WithSettings(settings Settings) Option {
	return func(s *ProfileService) {
		s.settings = settings
	}
}

// WithIDGenerator 自定义提交UUID生成，测试中使用
func WithIDGenerator(gen func() (uuid.UUID, error)) Option {
	return func(s *ProfileService) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithClock 自定义当前时间
func WithClock(now func() time.Time) Option {
	return func(s *ProfileService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStorage 从存储管理器中取出已初始化的组件
func WithStorage(st *storage.Storage) Option {
	return func(s *ProfileService) {
		if st == nil {
			return
		}
		if st.MinIO != nil {
			s.objects = st.MinIO
		}
		if st.Redis != nil {
			s.cache = st.Redis
		}
		if st.MySQL != nil {
			s.repo = st.MySQL
		}
		if st.RabbitMQ != nil {
			s.events = st.RabbitMQ
		}
	}
}
