package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port string

	// Public base URL guests open; share links and QR codes point here
	BaseURL     string
	FrontendURL string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTAccessSecret    string
	JWTRefreshSecret   string
	JWTAccessTTLHours  int
	JWTRefreshTTLHours int

	// ✅ Redis Config
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ✅ Kafka Config (empty brokers disables the durable change stream)
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// ✅ SMTP Config
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromName  string
	SMTPFromEmail string

	// ✅ Firebase Storage Config
	FirebaseCredentialsPath string
	FirebaseProjectID       string
	FirebaseBucket          string

	// "local" or "firebase"
	StorageDriver  string
	UploadDir      string
	MaxUploadBytes int64

	// limiter formatted rates, e.g. "100-M"
	RateLimit       string
	SubmitRateLimit string

	GeocodeURL       string
	GeocodeUserAgent string
	GeocodeRPS       float64

	PhoneRegion string
	CORSOrigins []string
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	accessTTL, _ := strconv.Atoi(envOrDefault("JWT_ACCESS_TTL_HOURS", "1"))
	refreshTTL, _ := strconv.Atoi(envOrDefault("JWT_REFRESH_TTL_HOURS", "168"))
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	maxUpload, _ := strconv.ParseInt(envOrDefault("MAX_UPLOAD_BYTES", "5242880"), 10, 64)
	geocodeRPS, _ := strconv.ParseFloat(envOrDefault("GEOCODE_RPS", "1"), 64)

	port := envOrDefault("PORT", "8080")

	return &Config{
		Env:  envOrDefault("APP_ENV", "development"),
		Port: port,

		BaseURL:     strings.TrimRight(envOrDefault("BASE_URL", "http://localhost:"+port), "/"),
		FrontendURL: strings.TrimRight(envOrDefault("FRONTEND_URL", "http://localhost:5173"), "/"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     envOrDefault("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  envOrDefault("DB_SSLMODE", "disable"),

		JWTAccessSecret:    os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret:   os.Getenv("JWT_REFRESH_SECRET"),
		JWTAccessTTLHours:  accessTTL,
		JWTRefreshTTLHours: refreshTTL,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "rsvp.changes"),
		KafkaGroupID: envOrDefault("KAFKA_GROUP_ID", "rsvp-notifications"),

		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      envOrDefault("SMTP_PORT", "587"),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFromName:  os.Getenv("SMTP_FROM_NAME"),
		SMTPFromEmail: os.Getenv("SMTP_FROM_EMAIL"),

		FirebaseCredentialsPath: envOrDefault("FIREBASE_CREDENTIALS_PATH", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseBucket:          os.Getenv("FIREBASE_STORAGE_BUCKET"),

		StorageDriver:  envOrDefault("STORAGE_DRIVER", "local"),
		UploadDir:      envOrDefault("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes: maxUpload,

		RateLimit:       envOrDefault("RATE_LIMIT", "100-M"),
		SubmitRateLimit: envOrDefault("SUBMIT_RATE_LIMIT", "20-M"),

		GeocodeURL:       envOrDefault("GEOCODE_URL", "https://nominatim.openstreetmap.org"),
		GeocodeUserAgent: envOrDefault("GEOCODE_USER_AGENT", "invitation-rsvp-backend/1.0"),
		GeocodeRPS:       geocodeRPS,

		PhoneRegion: envOrDefault("PHONE_REGION", "US"),
		CORSOrigins: splitList(envOrDefault("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
	}
}

// IsProduction reports whether APP_ENV is "production"
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
