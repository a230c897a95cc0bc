package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Store       StoreConfig       `yaml:"store"`
	LLM         LLMConfig         `yaml:"llm"`
	Agent       AgentConfig       `yaml:"agent"`
	Storage     StorageConfig     `yaml:"storage"`
	EventBus    EventBusConfig    `yaml:"eventbus"`
	API         APIConfig         `yaml:"api"`
	Inspiration InspirationConfig `yaml:"inspiration"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	// Format: json | text
	Format string `yaml:"format"`
}

// StoreConfig 는 문서 저장소(에이전트 설정, 포스트, 관리자 목록) 백엔드를 고른다.
// driver: mongo | firestore | memory
type StoreConfig struct {
	Driver           string `yaml:"driver"`
	MongoURI         string `yaml:"mongo_uri"`
	MongoDBName      string `yaml:"mongo_db"`
	FirestoreProject string `yaml:"firestore_project"`
}

type LLMConfig struct {
	Provider   string `yaml:"provider"`
	TextModel  string `yaml:"text_model"`
	ImageModel string `yaml:"image_model"`
	// APIKeyEnv 는 API 키를 읽을 환경변수 이름이다. 비어 있으면 GEMINI_API_KEY.
	APIKeyEnv string `yaml:"api_key_env"`
}

// AgentConfig 는 스케줄 실행 루틴의 배포 단위 설정이다.
// 페르소나 자체는 문서 저장소의 aiAgents/{id} 문서에 있다.
type AgentConfig struct {
	ID string `yaml:"id"`
	// Cooldown 은 연속된 성공 실행 사이의 최소 간격이다.
	Cooldown time.Duration `yaml:"cooldown"`
	// ImageDelay 는 연속된 이미지 호출 사이의 대기 시간이다. 0 이면 대기하지 않는다.
	ImageDelay time.Duration `yaml:"image_delay"`
	// NotifyTimeout 은 post.generated 발행 한 번에 허용하는 시간이다.
	NotifyTimeout time.Duration `yaml:"notify_timeout"`
	// ImageQuota 는 이미지 생성 호출의 분당/일일 한도다.
	ImageQuota QuotaConfig `yaml:"image_quota"`
}

// QuotaConfig 는 LLM 호출에 대한 속도/일일 한도를 정의한다.
type QuotaConfig struct {
	// RequestsPerMinute 는 분당 최대 요청 수이다. 0 이하면 제한 없음으로 간주한다.
	RequestsPerMinute int `yaml:"requests_per_minute"`
	// RequestsPerDay 는 일일 최대 요청 수이다. 0 이하면 제한 없음으로 간주한다.
	RequestsPerDay int `yaml:"requests_per_day"`
}

// StorageConfig driver: gridfs | gcs | memory
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	// PublicBaseURL 은 이 API 의 외부 주소다. gridfs/memory 이미지는 /api/v1/images 로 서빙된다.
	PublicBaseURL string `yaml:"public_base_url"`
	// GCSBaseURL 은 gcs 객체 앞에 붙일 공개 주소(예: https://storage.googleapis.com/<bucket>).
	// 비어 있으면 Firebase 다운로드 토큰 URL 을 쓴다.
	GCSBaseURL string `yaml:"gcs_base_url"`
}

// ObjectBaseURL 은 드라이버가 이미지 URL 을 만들 때 쓰는 기준 주소다.
func (s StorageConfig) ObjectBaseURL() string {
	if s.Driver == "gcs" {
		return s.GCSBaseURL
	}
	return s.PublicBaseURL
}

// EventBusConfig driver: kafka | nats | none
type EventBusConfig struct {
	Driver string `yaml:"driver"`
	Topic  string `yaml:"topic"`
}

type APIConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// InspirationConfig 는 프롬프트에 붙일 "오늘 본 것들" 헤드라인 피드 목록이다.
type InspirationConfig struct {
	Feeds    []string      `yaml:"feeds"`
	MaxItems int           `yaml:"max_items"`
	Timeout  time.Duration `yaml:"timeout"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	config = c
}

// Parse 는 config.yaml 내용을 읽어 기본값을 채운 AppConfig 를 돌려준다.
func Parse(data []byte) (*AppConfig, error) {
	var c AppConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return &c, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "mongo"
	}
	if c.Store.MongoDBName == "" {
		c.Store.MongoDBName = "marlang"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "google"
	}
	if c.LLM.ImageModel == "" {
		c.LLM.ImageModel = "imagen-4.0-fast-generate-001"
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = "GEMINI_API_KEY"
	}
	if c.Agent.ID == "" {
		c.Agent.ID = "main"
	}
	if c.Agent.Cooldown <= 0 {
		c.Agent.Cooldown = time.Hour
	}
	if c.Agent.NotifyTimeout <= 0 {
		c.Agent.NotifyTimeout = 10 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "gridfs"
	}
	if c.Storage.Prefix == "" {
		c.Storage.Prefix = "post-images"
	}
	if c.EventBus.Driver == "" {
		c.EventBus.Driver = "none"
	}
	if c.EventBus.Topic == "" {
		c.EventBus.Topic = "post.events"
	}
	if c.API.Addr == "" {
		c.API.Addr = ":8080"
	}
	if c.Inspiration.MaxItems <= 0 {
		c.Inspiration.MaxItems = 5
	}
	if c.Inspiration.Timeout <= 0 {
		c.Inspiration.Timeout = 15 * time.Second
	}
}

// MongoURI 는 환경변수 MONGO_URI 를 우선하고, 없으면 config.yaml 값을 쓴다.
func (c AppConfig) MongoURI() string {
	if v := os.Getenv("MONGO_URI"); v != "" {
		return v
	}
	return c.Store.MongoURI
}

// FirestoreProject 는 GOOGLE_CLOUD_PROJECT 환경변수를 우선한다.
func (c AppConfig) FirestoreProject() string {
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	return c.Store.FirestoreProject
}

func (c AppConfig) LLMAPIKey() string {
	return os.Getenv(c.LLM.APIKeyEnv)
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
