package config

import "time"

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Lending  LendingConfig  `yaml:"lending"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// LendingConfig holds the lending and fine rules. Loaded once at startup
// and treated as immutable for the process lifetime.
type LendingConfig struct {
	MaxLoansPerMember   int   `yaml:"max_loans_per_member"   env:"LENDING_MAX_LOANS_PER_MEMBER"   env-default:"3"`
	LoanPeriodDays      int   `yaml:"loan_period_days"       env:"LENDING_LOAN_PERIOD_DAYS"       env-default:"14"`
	MaxLoanPeriodDays   int   `yaml:"max_loan_period_days"   env:"LENDING_MAX_LOAN_PERIOD_DAYS"   env-default:"30"`
	MaxExtensions       int   `yaml:"max_extensions"         env:"LENDING_MAX_EXTENSIONS"         env-default:"2"`
	ExtensionDays       int   `yaml:"extension_days"         env:"LENDING_EXTENSION_DAYS"         env-default:"7"`
	MaxExtensionDays    int   `yaml:"max_extension_days"     env:"LENDING_MAX_EXTENSION_DAYS"     env-default:"14"`
	FinePerDayCents     int64 `yaml:"fine_per_day_cents"     env:"LENDING_FINE_PER_DAY_CENTS"     env-default:"50"`
	GracePeriodDays     int   `yaml:"grace_period_days"      env:"LENDING_GRACE_PERIOD_DAYS"      env-default:"0"`
	MaxFineCents        int64 `yaml:"max_fine_cents"         env:"LENDING_MAX_FINE_CENTS"         env-default:"2000"`
	AllowLoansWithFines bool  `yaml:"allow_loans_with_fines" env:"LENDING_ALLOW_LOANS_WITH_FINES" env-default:"false"`
	ScanConcurrency     int   `yaml:"scan_concurrency"       env:"LENDING_SCAN_CONCURRENCY"       env-default:"8"`
}
