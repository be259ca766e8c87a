package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kareem3680/akhdar-erp/internal/core/domain"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	JWTSecret         string
	JWTExpiryDuration time.Duration

	// RateLimit is the request budget per client IP, in limiter notation
	// (e.g. "100-M" for 100 requests per minute).
	RateLimit string

	// SweepInterval is how often the loan sweeps (overdue, default,
	// reminder) run in the background.
	SweepInterval time.Duration

	// LedgerRoles binds well-known posting roles to account/journal IDs.
	// Unbound roles make the corresponding postings no-ops.
	LedgerRoles domain.LedgerRoles
}

// roleEnvVars maps each posting role to the environment variable that
// carries its binding.
var roleEnvVars = map[domain.LedgerRole]string{
	domain.RoleCashAccount:             "ROLE_CASH_ACCOUNT_ID",
	domain.RoleInventoryAccount:        "ROLE_INVENTORY_ACCOUNT_ID",
	domain.RoleSalesRevenueAccount:     "ROLE_SALES_REVENUE_ACCOUNT_ID",
	domain.RolePurchasesExpenseAccount: "ROLE_PURCHASES_EXPENSE_ACCOUNT_ID",
	domain.RoleShippingExpenseAccount:  "ROLE_SHIPPING_EXPENSE_ACCOUNT_ID",
	domain.RoleLoanPayableAccount:      "ROLE_LOAN_PAYABLE_ACCOUNT_ID",
	domain.RoleSalesJournal:            "ROLE_SALES_JOURNAL_ID",
	domain.RolePurchasesJournal:        "ROLE_PURCHASES_JOURNAL_ID",
	domain.RoleLoanJournal:             "ROLE_LOAN_JOURNAL_ID",
	domain.RolePaymentJournal:          "ROLE_PAYMENT_JOURNAL_ID",
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("SWEEP_INTERVAL", "1h")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	sweepIntervalStr := viper.GetString("SWEEP_INTERVAL")
	sweepInterval, err := time.ParseDuration(sweepIntervalStr)
	if err != nil {
		sweepInterval = time.Hour
		log.Printf("Warning: Invalid value for SWEEP_INTERVAL ('%s'). Defaulting to %s.\n", sweepIntervalStr, sweepInterval.String())
	}
	cfg.SweepInterval = sweepInterval

	cfg.LedgerRoles = loadLedgerRoles()

	return cfg, nil
}

// loadLedgerRoles reads role bindings from the environment. Missing
// bindings are allowed; the posting engine skips postings through them.
func loadLedgerRoles() domain.LedgerRoles {
	roles := make(domain.LedgerRoles, len(roleEnvVars))
	for role, envVar := range roleEnvVars {
		if id := viper.GetString(envVar); id != "" {
			roles[role] = id
		}
	}
	if len(roles) == 0 {
		log.Println("Warning: no ledger role bindings configured; business postings will be skipped.")
	}
	return roles
}
