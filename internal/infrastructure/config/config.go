package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Upstream  UpstreamConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Session   SessionConfig
	Resolver  ResolverConfig
	Printing  PrintingConfig
	Storage   StorageConfig
	Archive   ArchiveConfig
	Docs      DocsConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	Version string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests float64 // sustained requests per second per client
	RateLimitBurst    int
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// UpstreamConfig holds the base URLs and client policy of the JASS services
type UpstreamConfig struct {
	GatewayURL        string
	UsersURL          string
	OrganizationsURL  string
	PaymentsURL       string
	DistributionURL   string
	QualityURL        string
	InfrastructureURL string
	ReniecURL         string
	ReniecToken       string
	Timeout           time.Duration
	MaxRetries        int
	RetryInterval     time.Duration // initial backoff interval
	RetryMaxInterval  time.Duration
	RatePerSecond     float64 // per upstream service, 0 disables limiting
	Burst             int
	// DirectHosts are hosts of microservices called directly instead of
	// through the gateway. A 401 from these does not end the UI session.
	DirectHosts []string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig controls how upstream access tokens are inspected
type JWTConfig struct {
	Secret          string
	VerifySignature bool
}

// SessionConfig holds UI session settings
type SessionConfig struct {
	TTL          time.Duration
	CookieName   string
	HeaderName   string
	CookieSecure bool
	CookieDomain string
	LoginPath    string // where the UI is sent after the session is cleared
}

// ResolverConfig holds the shared lookup cache settings
type ResolverConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// PrintingConfig holds the headless Chrome settings
type PrintingConfig struct {
	ChromePath    string
	Timeout       time.Duration
	MaxConcurrent int
	NoSandbox     bool
}

// StorageConfig holds the S3-compatible object storage settings
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PresignExpiry   time.Duration
}

// DocsConfig guards the OpenAPI browser under /swagger
type DocsConfig struct {
	Enabled     bool
	RequireAuth bool     // only callers with a session may read the docs
	AllowedIPs  []string // single addresses or CIDR ranges, empty allows all
}

// ArchiveConfig holds the report archive database settings
type ArchiveConfig struct {
	Enabled         bool
	Driver          string // postgres or sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	LogLevel        string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	TraceArchive      bool          // spans for report archive queries
	SlowQuery         time.Duration // archive queries above this are flagged on their span
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with JASS_ prefix (e.g., JASS_UPSTREAM_GATEWAY_URL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("JASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setZeroableDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			Version: v.GetString("app.version"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetFloat64("http.rate_limit_requests"),
			RateLimitBurst:    v.GetInt("http.rate_limit_burst"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Upstream: UpstreamConfig{
			GatewayURL:        v.GetString("upstream.gateway_url"),
			UsersURL:          v.GetString("upstream.users_url"),
			OrganizationsURL:  v.GetString("upstream.organizations_url"),
			PaymentsURL:       v.GetString("upstream.payments_url"),
			DistributionURL:   v.GetString("upstream.distribution_url"),
			QualityURL:        v.GetString("upstream.quality_url"),
			InfrastructureURL: v.GetString("upstream.infrastructure_url"),
			ReniecURL:         v.GetString("upstream.reniec_url"),
			ReniecToken:       v.GetString("upstream.reniec_token"),
			Timeout:           v.GetDuration("upstream.timeout"),
			MaxRetries:        v.GetInt("upstream.max_retries"),
			RetryInterval:     v.GetDuration("upstream.retry_interval"),
			RetryMaxInterval:  v.GetDuration("upstream.retry_max_interval"),
			RatePerSecond:     v.GetFloat64("upstream.rate_per_second"),
			Burst:             v.GetInt("upstream.burst"),
			DirectHosts:       v.GetStringSlice("upstream.direct_hosts"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("jwt.secret"),
			VerifySignature: v.GetBool("jwt.verify_signature"),
		},
		Session: SessionConfig{
			TTL:          v.GetDuration("session.ttl"),
			CookieName:   v.GetString("session.cookie_name"),
			HeaderName:   v.GetString("session.header_name"),
			CookieSecure: v.GetBool("session.cookie_secure"),
			CookieDomain: v.GetString("session.cookie_domain"),
			LoginPath:    v.GetString("session.login_path"),
		},
		Resolver: ResolverConfig{
			CacheEnabled: v.GetBool("resolver.cache_enabled"),
			CacheTTL:     v.GetDuration("resolver.cache_ttl"),
		},
		Printing: PrintingConfig{
			ChromePath:    v.GetString("printing.chrome_path"),
			Timeout:       v.GetDuration("printing.timeout"),
			MaxConcurrent: v.GetInt("printing.max_concurrent"),
			NoSandbox:     v.GetBool("printing.no_sandbox"),
		},
		Storage: StorageConfig{
			Enabled:         v.GetBool("storage.enabled"),
			Endpoint:        v.GetString("storage.endpoint"),
			Region:          v.GetString("storage.region"),
			Bucket:          v.GetString("storage.bucket"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			PresignExpiry:   v.GetDuration("storage.presign_expiry"),
		},
		Archive: ArchiveConfig{
			Enabled:         v.GetBool("archive.enabled"),
			Driver:          v.GetString("archive.driver"),
			Host:            v.GetString("archive.host"),
			Port:            v.GetInt("archive.port"),
			User:            v.GetString("archive.user"),
			Password:        v.GetString("archive.password"),
			DBName:          v.GetString("archive.dbname"),
			SSLMode:         v.GetString("archive.sslmode"),
			SQLitePath:      v.GetString("archive.sqlite_path"),
			MaxOpenConns:    v.GetInt("archive.max_open_conns"),
			MaxIdleConns:    v.GetInt("archive.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("archive.conn_max_lifetime"),
			LogLevel:        v.GetString("archive.log_level"),
		},
		Docs: DocsConfig{
			Enabled:     v.GetBool("docs.enabled"),
			RequireAuth: v.GetBool("docs.require_auth"),
			AllowedIPs:  v.GetStringSlice("docs.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			TraceArchive:      v.GetBool("telemetry.trace_archive"),
			SlowQuery:         v.GetDuration("telemetry.slow_query"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setZeroableDefaults registers the defaults of settings where zero is a
// meaningful value: max_retries 0 disables retries and rate_per_second 0
// disables client-side limiting. They are resolved by viper so an explicit
// zero in config.toml or the environment is kept.
func setZeroableDefaults(v *viper.Viper) {
	v.SetDefault("upstream.max_retries", 2)
	v.SetDefault("upstream.rate_per_second", 50)
	v.SetDefault("upstream.burst", 100)
	v.SetDefault("docs.enabled", true)
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "jass-bff"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "dev"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// PDF rendering can take a while
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 20
	}
	if cfg.HTTP.RateLimitBurst == 0 {
		cfg.HTTP.RateLimitBurst = 40
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Session-ID"}
	}

	up := &cfg.Upstream
	if up.GatewayURL == "" {
		up.GatewayURL = "http://localhost:9000"
	}
	if up.UsersURL == "" {
		up.UsersURL = "https://lab.vallegrande.edu.pe/jass/ms-users"
	}
	if up.OrganizationsURL == "" {
		up.OrganizationsURL = "https://lab.vallegrande.edu.pe/jass/ms-organization"
	}
	if up.PaymentsURL == "" {
		up.PaymentsURL = "https://lab.vallegrande.edu.pe/jass/ms-payments"
	}
	if up.DistributionURL == "" {
		up.DistributionURL = "https://lab.vallegrande.edu.pe/jass/ms-distribution"
	}
	if up.QualityURL == "" {
		up.QualityURL = "https://lab.vallegrande.edu.pe/jass/ms-water-quality"
	}
	if up.InfrastructureURL == "" {
		up.InfrastructureURL = "https://lab.vallegrande.edu.pe/jass/ms-infrastructure"
	}
	if up.ReniecURL == "" {
		up.ReniecURL = "https://api.apis.net.pe/v2"
	}
	if up.Timeout == 0 {
		up.Timeout = 15 * time.Second
	}
	if up.RetryInterval == 0 {
		up.RetryInterval = 200 * time.Millisecond
	}
	if up.RetryMaxInterval == 0 {
		up.RetryMaxInterval = 2 * time.Second
	}
	if len(up.DirectHosts) == 0 {
		up.DirectHosts = []string{"lab.vallegrande.edu.pe"}
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 12 * time.Hour
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "jass_session"
	}
	if cfg.Session.HeaderName == "" {
		cfg.Session.HeaderName = "X-Session-ID"
	}
	if cfg.Session.LoginPath == "" {
		cfg.Session.LoginPath = "/auth/login"
	}

	if cfg.Resolver.CacheTTL == 0 {
		cfg.Resolver.CacheTTL = 60 * time.Second
	}

	if cfg.Printing.Timeout == 0 {
		cfg.Printing.Timeout = 30 * time.Second
	}
	if cfg.Printing.MaxConcurrent == 0 {
		cfg.Printing.MaxConcurrent = 2
	}

	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "jass-reports"
	}
	if cfg.Storage.PresignExpiry == 0 {
		cfg.Storage.PresignExpiry = 15 * time.Minute
	}

	ar := &cfg.Archive
	if ar.Driver == "" {
		ar.Driver = "postgres"
	}
	if ar.Host == "" {
		ar.Host = "localhost"
	}
	if ar.Port == 0 {
		ar.Port = 5432
	}
	if ar.User == "" {
		ar.User = "postgres"
	}
	if ar.DBName == "" {
		ar.DBName = "jass_reports"
	}
	if ar.SSLMode == "" {
		ar.SSLMode = "disable"
	}
	if ar.SQLitePath == "" {
		ar.SQLitePath = "jass_reports.db"
	}
	if ar.MaxOpenConns == 0 {
		ar.MaxOpenConns = 10
	}
	if ar.MaxIdleConns == 0 {
		ar.MaxIdleConns = 2
	}
	if ar.ConnMaxLifetime == 0 {
		ar.ConnMaxLifetime = 60
	}
	if ar.LogLevel == "" {
		ar.LogLevel = "warn"
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.SlowQuery == 0 {
		cfg.Telemetry.SlowQuery = 200 * time.Millisecond
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	for name, raw := range c.Upstream.baseURLs() {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("upstream.%s_url is not an absolute URL: %q", name, raw)
		}
	}
	if c.Upstream.MaxRetries < 0 {
		return fmt.Errorf("upstream.max_retries cannot be negative")
	}

	if c.Archive.Enabled {
		if c.Archive.Driver != "postgres" && c.Archive.Driver != "sqlite" {
			return fmt.Errorf("archive.driver must be postgres or sqlite, got %q", c.Archive.Driver)
		}
		if !c.Storage.Enabled {
			return fmt.Errorf("archive.enabled requires storage.enabled")
		}
		if c.Archive.MaxIdleConns > c.Archive.MaxOpenConns {
			return fmt.Errorf("archive.max_idle_conns (%d) cannot exceed archive.max_open_conns (%d)",
				c.Archive.MaxIdleConns, c.Archive.MaxOpenConns)
		}
	}

	if c.JWT.VerifySignature && c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required when jwt.verify_signature is enabled")
	}

	if c.App.Env == "production" {
		if c.JWT.VerifySignature && len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if !c.Session.CookieSecure {
			return fmt.Errorf("session.cookie_secure must be true in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Docs.Enabled && !c.Docs.RequireAuth && len(c.Docs.AllowedIPs) == 0 {
			return fmt.Errorf("docs must be disabled, require a session, or restrict allowed_ips in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

func (u UpstreamConfig) baseURLs() map[string]string {
	return map[string]string{
		"gateway":        u.GatewayURL,
		"users":          u.UsersURL,
		"organizations":  u.OrganizationsURL,
		"payments":       u.PaymentsURL,
		"distribution":   u.DistributionURL,
		"quality":        u.QualityURL,
		"infrastructure": u.InfrastructureURL,
		"reniec":         u.ReniecURL,
	}
}

// DSN returns the postgres connection string with properly escaped values
func (a *ArchiveConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(a.User, a.Password),
		Host:   fmt.Sprintf("%s:%d", a.Host, a.Port),
		Path:   a.DBName,
	}
	q := u.Query()
	q.Set("sslmode", a.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
