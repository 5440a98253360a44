package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	RunAddr              string
	LogLevel             string
	DataBaseDSN          string
	RedisAddr            string
	JWTSecret            string
	PaymentsAPIAddr      string
	PaymentsAPITimeout   time.Duration
	AdminBalanceCurrency string
	DepositAddresses     map[string]string
	SubmitGuardTTL       time.Duration
	RateLimit            int
	AllowedOrigins       []string
}

func ParseFlags() *Config {
	return parse(flag.CommandLine, os.Args[1:])
}

func parse(fs *flag.FlagSet, args []string) *Config {
	// .env is optional; real env vars still win over it
	_ = godotenv.Load()

	cfg := &Config{}

	runAddr := fs.String("a", ":8080", "address and port to run server")
	logLevel := fs.String("l", "INFO", "log level")
	dataBaseDSN := fs.String("d", "", "connect to postgres")
	redisAddr := fs.String("r", "localhost:6379", "redis address for the submit guard")
	jwtSecret := fs.String("s", "", "secret key used to verify bearer tokens")
	paymentsAPI := fs.String("payments-api", "http://localhost:8081", "payments API base address")
	paymentsTimeout := fs.Duration("payments-timeout", 15*time.Second, "payments API request timeout")
	balanceCurrency := fs.String("balance-currency", "usdttrc20", "currency reported on the admin payout balance")
	depositAddresses := fs.String("deposit-addresses", "", "deposit addresses as COIN:NETWORK=address,...")
	guardTTL := fs.Duration("guard-ttl", 10*time.Second, "window in which identical submissions are rejected")
	rateLimit := fs.Int("rate-limit", 10, "mutating requests allowed per user per minute")
	origins := fs.String("origins", "*", "comma separated CORS origins")

	fs.Parse(args)

	cfg.RunAddr = getEnvOrDefault("RUN_ADDRESS", *runAddr)
	cfg.LogLevel = strings.ToUpper(getEnvOrDefault("LOG_LEVEL", *logLevel))
	cfg.DataBaseDSN = getEnvOrDefault("DATABASE_URI", *dataBaseDSN)
	cfg.RedisAddr = getEnvOrDefault("REDIS_ADDRESS", *redisAddr)
	cfg.JWTSecret = getEnvOrDefault("JWT_SECRET", *jwtSecret)
	cfg.PaymentsAPIAddr = strings.TrimRight(getEnvOrDefault("PAYMENTS_API_ADDRESS", *paymentsAPI), "/")
	cfg.PaymentsAPITimeout = getDurationOrDefault("PAYMENTS_API_TIMEOUT", *paymentsTimeout)
	cfg.AdminBalanceCurrency = getEnvOrDefault("ADMIN_BALANCE_CURRENCY", *balanceCurrency)
	cfg.DepositAddresses = ParseDepositAddresses(getEnvOrDefault("DEPOSIT_ADDRESSES", *depositAddresses))
	cfg.SubmitGuardTTL = getDurationOrDefault("SUBMIT_GUARD_TTL", *guardTTL)
	cfg.RateLimit = getIntOrDefault("RATE_LIMIT", *rateLimit)
	cfg.AllowedOrigins = splitList(getEnvOrDefault("ALLOWED_ORIGINS", *origins))

	return cfg
}

// ParseDepositAddresses reads "USDT:TRC20=T...,BTC:BTC=bc1..." into a map
// keyed by "COIN:NETWORK" in upper case. Malformed entries are skipped.
func ParseDepositAddresses(raw string) map[string]string {
	out := make(map[string]string)
	for _, entry := range splitList(raw) {
		key, addr, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(addr) == "" || !strings.Contains(key, ":") {
			continue
		}
		out[strings.ToUpper(strings.TrimSpace(key))] = strings.TrimSpace(addr)
	}
	return out
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(envName, defaultValue string) string {
	if envValue := os.Getenv(envName); envValue != "" {
		return envValue
	}
	return defaultValue
}

func getDurationOrDefault(envName string, defaultValue time.Duration) time.Duration {
	if envValue := os.Getenv(envName); envValue != "" {
		if d, err := time.ParseDuration(envValue); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(envName string, defaultValue int) int {
	if envValue := os.Getenv(envName); envValue != "" {
		if n, err := strconv.Atoi(envValue); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
