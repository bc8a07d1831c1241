package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// AWS / Bedrock
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	CanvasModelID      string
	ReelModelID        string
	ReelOutputS3URI    string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Server
	Port string

	// Reel polling
	PollIntervalSeconds int
	ReelTimeoutMinutes  int

	// Media normalizer
	StrictNormalize bool
}

var globalConfig *Config

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	// Redis UseTLS 파싱
	useTLS := true // 기본값
	if tlsStr := os.Getenv("REDIS_USE_TLS"); tlsStr != "" {
		if parsed, err := strconv.ParseBool(tlsStr); err == nil {
			useTLS = parsed
		}
	}

	// Normalizer strict 모드 파싱 (기본 lenient)
	strictNormalize := false
	if strictStr := os.Getenv("NORMALIZE_STRICT"); strictStr != "" {
		if parsed, err := strconv.ParseBool(strictStr); err == nil {
			strictNormalize = parsed
		}
	}

	// 폴링 간격 파싱 (초 단위, 기본 10초)
	pollInterval := 10
	if pollStr := os.Getenv("REEL_POLL_INTERVAL_SECONDS"); pollStr != "" {
		if parsed, err := strconv.Atoi(pollStr); err == nil && parsed > 0 {
			pollInterval = parsed
		}
	}

	// 비디오 생성 타임아웃 파싱 (분 단위, 0 = 무제한)
	reelTimeout := 0
	if timeoutStr := os.Getenv("REEL_TIMEOUT_MINUTES"); timeoutStr != "" {
		if parsed, err := strconv.Atoi(timeoutStr); err == nil && parsed >= 0 {
			reelTimeout = parsed
		}
	}

	globalConfig = &Config{
		// AWS / Bedrock
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		CanvasModelID:      getEnv("CANVAS_MODEL_ID", "amazon.nova-canvas-v1:0"),
		ReelModelID:        getEnv("REEL_MODEL_ID", "amazon.nova-reel-v1:0"),
		ReelOutputS3URI:    getEnv("REEL_OUTPUT_S3_URI", ""),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   useTLS,

		// Server
		Port: getEnv("PORT", "8080"),

		// Reel polling
		PollIntervalSeconds: pollInterval,
		ReelTimeoutMinutes:  reelTimeout,

		// Media normalizer
		StrictNormalize: strictNormalize,
	}

	// 필수 환경변수 검증
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   AWS Region: %s", globalConfig.AWSRegion)
	log.Printf("   Canvas Model: %s", globalConfig.CanvasModelID)
	log.Printf("   Reel Model: %s", globalConfig.ReelModelID)
	log.Printf("   Reel Output: %s", globalConfig.ReelOutputS3URI)
	log.Printf("   Redis: %s:%s (TLS: %v)", globalConfig.RedisHost, globalConfig.RedisPort, globalConfig.RedisUseTLS)
	log.Printf("   Poll Interval: %ds (Timeout: %dm)", globalConfig.PollIntervalSeconds, globalConfig.ReelTimeoutMinutes)

	return globalConfig, nil
}

// GetConfig - 로드된 설정 가져오기
func GetConfig() *Config {
	if globalConfig == nil {
		log.Fatal("❌ Config not loaded. Call LoadConfig() first.")
	}
	return globalConfig
}

// validate - 필수 환경변수 검증
func (c *Config) validate() error {
	if c.AWSRegion == "" {
		return fmt.Errorf("AWS_REGION is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.ReelOutputS3URI == "" {
		return fmt.Errorf("REEL_OUTPUT_S3_URI is required")
	}
	return nil
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
