package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server needs from the environment so main
// stays lean. Empty infrastructure URLs mean "not configured" and main falls
// back to in-memory implementations, which keeps local development dockerless.
type Config struct {
	Addr string

	// AdminToken guards the tenant-provisioning endpoint. Empty disables it.
	AdminToken string

	PostgresURL string
	RedisURL    string

	Kafka  KafkaConfig
	Object ObjectStoreConfig

	Pipeline PipelineConfig
}

// KafkaConfig drives the status-event publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// ObjectStoreConfig points at an S3-compatible endpoint for document blobs.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// PipelineConfig holds the verification thresholds and engine locations.
type PipelineConfig struct {
	// OCRMinConfidence rejects extractions below this recognizer confidence
	// (0-100). Below it the caller is asked for a better photo instead of the
	// pipeline guessing.
	OCRMinConfidence float64
	// FaceMatchThreshold is the similarity score (0-1) at or above which a
	// submission is auto-verified; below it goes to manual review.
	FaceMatchThreshold float64
	// PlaceholderEmailDomain is used when a tenant omits contact email.
	PlaceholderEmailDomain string
	// FaceModelsDir holds the dlib model files for the face matcher.
	FaceModelsDir string

	// LockTTL bounds how long a per-submission mutation lock may be held.
	LockTTL time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:        envOr("KYC_ADDR", ":8080"),
		AdminToken:  os.Getenv("KYC_ADMIN_TOKEN"),
		PostgresURL: os.Getenv("KYC_POSTGRES_URL"),
		RedisURL:    os.Getenv("KYC_REDIS_URL"),
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("KYC_KAFKA_BROKERS")),
			Topic:   envOr("KYC_KAFKA_TOPIC", "kyc.submission.status"),
		},
		Object: ObjectStoreConfig{
			Endpoint:  os.Getenv("KYC_OBJECT_ENDPOINT"),
			AccessKey: os.Getenv("KYC_OBJECT_ACCESS_KEY"),
			SecretKey: os.Getenv("KYC_OBJECT_SECRET_KEY"),
			Bucket:    envOr("KYC_OBJECT_BUCKET", "kyc-documents"),
			UseSSL:    os.Getenv("KYC_OBJECT_USE_SSL") == "true",
		},
		Pipeline: PipelineConfig{
			OCRMinConfidence:       envFloat("KYC_OCR_MIN_CONFIDENCE", 60),
			FaceMatchThreshold:     envFloat("KYC_FACE_MATCH_THRESHOLD", 0.6),
			PlaceholderEmailDomain: envOr("KYC_PLACEHOLDER_EMAIL_DOMAIN", "placeholder.enxt.ai"),
			FaceModelsDir:          envOr("KYC_FACE_MODELS_DIR", "models"),
			LockTTL:                envDuration("KYC_SUBMISSION_LOCK_TTL", 15*time.Second),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
