package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// External doctor backend
	BackendBaseURL string
	BackendTimeout time.Duration

	// Redis (list cache, submit locks, rate limits). Empty addr disables Redis.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ListCacheTTL  time.Duration
	SubmitLockTTL time.Duration

	// Add-doctor rate limit per client IP
	AddDoctorRateLimit     int
	AddDoctorRateWindow    time.Duration
	RateLimitBypassPrivate bool

	// Pages
	DefaultListingSlug string
	RedirectDelay      time.Duration

	// Google Cloud Storage, optional doctor photo uploads
	GCSBucket              string
	GCSCredentialsJSONPath string // optional; if empty, Application Default Credentials are used

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Reverse proxies whose X-Forwarded-For / X-Real-IP are trusted. Empty trusts none.
	TrustedProxies  string // comma-separated IPs or CIDRs
	TrustCloudflare bool   // trust CF-Connecting-IP; only safe when reachable solely through Cloudflare

	// RabbitMQ (doctor.added events). Empty URL disables publishing.
	RabbitMQURL         string
	RabbitMQDoctorQueue string

	// Elasticsearch. Empty addrs disables search.
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESDoctorsIndex     string

	// Mailgun, used by the index worker for new doctor notices
	MailgunDomain string
	MailgunAPIKey string
	MailgunSender string
	NotifyEmail   string

	// Debug metrics (/api/debug/vars)
	DebugMetricsEnabled bool

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "doctor-directory"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "8080"),
		GinMode: getenv("GIN_MODE", "release"),

		BackendBaseURL: strings.TrimRight(getenv("BACKEND_BASE_URL", "https://codecollabhub-beld.onrender.com"), "/"),
		BackendTimeout: getdur("BACKEND_TIMEOUT", 15*time.Second),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		ListCacheTTL:  getdur("LIST_CACHE_TTL", time.Minute),
		SubmitLockTTL: getdur("SUBMIT_LOCK_TTL", 10*time.Minute),

		AddDoctorRateLimit:     getint("ADD_DOCTOR_RATE_LIMIT", 20),
		AddDoctorRateWindow:    getdur("ADD_DOCTOR_RATE_WINDOW", time.Minute),
		RateLimitBypassPrivate: getbool("RATE_LIMIT_BYPASS_PRIVATE", false),

		DefaultListingSlug: getenv("DEFAULT_LISTING_SLUG", "general-physician-internal-medicine"),
		RedirectDelay:      getdur("REDIRECT_DELAY", 1500*time.Millisecond),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", ""),

		TrustedProxies:  getenv("TRUSTED_PROXIES", ""),
		TrustCloudflare: getbool("TRUST_CLOUDFLARE", false),

		RabbitMQURL:         getenv("RABBITMQ_URL", ""),
		RabbitMQDoctorQueue: getenv("RABBITMQ_DOCTOR_QUEUE", "doctor_events"),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESDoctorsIndex:     getenv("ES_DOCTORS_INDEX", "doctors"),

		MailgunDomain: getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey: getenv("MAILGUN_API_KEY", ""),
		MailgunSender: getenv("MAILGUN_SENDER", ""),
		NotifyEmail:   getenv("NOTIFY_EMAIL", ""),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", true),

		// HTTP access log toggle (default false; enable when needed)
		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
	}
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// TrustedProxyList returns the trusted proxies as slice
func (c *Config) TrustedProxyList() []string {
	return splitList(c.TrustedProxies)
}

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string {
	return splitList(c.ElasticsearchAddrs)
}

// MailEnabled reports whether new doctor notices can be sent.
func (c *Config) MailEnabled() bool {
	return c.MailgunDomain != "" && c.MailgunAPIKey != "" && c.MailgunSender != "" && c.NotifyEmail != ""
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
