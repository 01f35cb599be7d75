package config

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/utils"
)

type Config struct {
	OrganizationName string
	AppName          string
	Env              string
	AppPort          string
	AppUrl           string

	// Remote catalog
	CatalogBaseURL  string
	CatalogAPIToken string
	CatalogTimeout  time.Duration

	// Optional run audit; empty disables it
	DBUrl            string
	RunRetentionDays int

	// Notifications; empty credentials disable the channel
	SendGridAPIKey   string
	TwilioAccountSID string
	TwilioAuthToken  string
	OpsNotifyEmail   string
	OpsNotifyPhone   string

	ViewCacheTTL time.Duration

	// Auth
	RSAPublicKey *rsa.PublicKey

	// LaunchDarkly flags
	LDFlag_StructurePreflight         bool
	LDFlag_StructureRollbackOnFailure bool
	LDFlag_SendgridFromEmail          string
	LDFlag_SendgridSandboxMode        bool
	LDFlag_TwilioFromPhone            string
	LDFlag_CORSHighSecurity           bool

	// flagClient is the LaunchDarkly client, open until Close.
	flagClient io.Closer
}

const (
	OrganizationName    = utils.OrganizationName
	LDConnectionTimeout = 5 * time.Second

	defaultCatalogTimeout   = 30 * time.Second
	defaultViewCacheTTL     = 5 * time.Minute
	defaultRunRetentionDays = 30
	defaultFromEmail        = "no-reply@thepoofapp.com"
	defaultFromPhone        = "+10005550006"
)

// build-time overrides
var (
	AppName             string
	LDServerContextKey  string
	LDServerContextKind string
)

// FlagSource is the part of the LaunchDarkly client read at startup.
type FlagSource interface {
	BoolVariation(key string, context ldcontext.Context, defaultVal bool) (bool, error)
	StringVariation(key string, context ldcontext.Context, defaultVal string) (string, error)
}

func LoadConfig() *Config {
	if AppName == "" {
		utils.Logger.Fatal("AppName ldflag missing")
	}
	utils.Logger.Info("Loading config for app: ", AppName)

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}

	ldSDKKey := os.Getenv("LD_SDK_KEY")
	if ldSDKKey == "" {
		utils.Logger.Warn("LD_SDK_KEY is empty, using default flag values")
		return cfg
	}
	if LDServerContextKey == "" || LDServerContextKind == "" {
		utils.Logger.Fatal("LD context ldflags missing")
	}

	ldClient, err := ld.MakeClient(ldSDKKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	if !ldClient.Initialized() {
		ldClient.Close()
		utils.Logger.Fatal("LaunchDarkly client failed to initialize")
	}
	cfg.flagClient = ldClient

	ctx := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey)
	if err := cfg.ApplyFlags(ldClient, ctx); err != nil {
		cfg.Close()
		utils.Logger.WithError(err).Fatal("Error retrieving LaunchDarkly flags")
	}
	return cfg
}

// FromEnv builds a Config with default flag values from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		OrganizationName:           OrganizationName,
		AppName:                    AppName,
		Env:                        getenv("ENV"),
		AppPort:                    getenv("APP_PORT"),
		AppUrl:                     getenv("APP_URL_FROM_ANYWHERE"),
		CatalogBaseURL:             getenv("CATALOG_BASE_URL"),
		CatalogAPIToken:            getenv("CATALOG_API_TOKEN"),
		DBUrl:                      getenv("DB_URL"),
		SendGridAPIKey:             getenv("SENDGRID_API_KEY"),
		TwilioAccountSID:           getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:            getenv("TWILIO_AUTH_TOKEN"),
		OpsNotifyEmail:             getenv("OPS_NOTIFY_EMAIL"),
		OpsNotifyPhone:             getenv("OPS_NOTIFY_PHONE"),
		LDFlag_SendgridFromEmail:   defaultFromEmail,
		LDFlag_TwilioFromPhone:     defaultFromPhone,
		LDFlag_SendgridSandboxMode: false,
	}

	for name, val := range map[string]string{
		"ENV":                   cfg.Env,
		"APP_PORT":              cfg.AppPort,
		"APP_URL_FROM_ANYWHERE": cfg.AppUrl,
		"CATALOG_BASE_URL":      cfg.CatalogBaseURL,
		"CATALOG_API_TOKEN":     cfg.CatalogAPIToken,
	} {
		if val == "" {
			return nil, fmt.Errorf("%s env var is missing", name)
		}
	}

	var err error
	if cfg.CatalogTimeout, err = durationOr(getenv("CATALOG_TIMEOUT"), defaultCatalogTimeout); err != nil {
		return nil, fmt.Errorf("CATALOG_TIMEOUT: %w", err)
	}
	if cfg.ViewCacheTTL, err = durationOr(getenv("VIEW_CACHE_TTL"), defaultViewCacheTTL); err != nil {
		return nil, fmt.Errorf("VIEW_CACHE_TTL: %w", err)
	}

	cfg.RunRetentionDays = defaultRunRetentionDays
	if raw := getenv("RUN_RETENTION_DAYS"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 1 {
			return nil, fmt.Errorf("RUN_RETENTION_DAYS must be a positive integer, got %q", raw)
		}
		cfg.RunRetentionDays = days
	}

	pubB64 := getenv("RSA_PUBLIC_KEY_PEM_BASE64")
	if pubB64 == "" {
		return nil, errors.New("RSA_PUBLIC_KEY_PEM_BASE64 env var is missing")
	}
	if cfg.RSAPublicKey, err = ParseRSAPublicKey(pubB64); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyFlags snapshots the LaunchDarkly flags into cfg.
func (c *Config) ApplyFlags(flags FlagSource, ctx ldcontext.Context) error {
	var err error
	if c.LDFlag_StructurePreflight, err = flags.BoolVariation("structure_generator_preflight", ctx, false); err != nil {
		return fmt.Errorf("structure_generator_preflight: %w", err)
	}
	utils.Logger.Debugf("structure_generator_preflight flag: %t", c.LDFlag_StructurePreflight)

	if c.LDFlag_StructureRollbackOnFailure, err = flags.BoolVariation("structure_generator_rollback_on_failure", ctx, false); err != nil {
		return fmt.Errorf("structure_generator_rollback_on_failure: %w", err)
	}
	utils.Logger.Debugf("structure_generator_rollback_on_failure flag: %t", c.LDFlag_StructureRollbackOnFailure)

	fromEmail, err := flags.StringVariation("sendgrid_from_email", ctx, "")
	if err != nil {
		return fmt.Errorf("sendgrid_from_email: %w", err)
	}
	if fromEmail == "" {
		utils.Logger.Warnf("sendgrid_from_email flag is empty, defaulting to %s", defaultFromEmail)
		fromEmail = defaultFromEmail
	}
	c.LDFlag_SendgridFromEmail = fromEmail

	if c.LDFlag_SendgridSandboxMode, err = flags.BoolVariation("sendgrid_sandbox_mode", ctx, false); err != nil {
		return fmt.Errorf("sendgrid_sandbox_mode: %w", err)
	}

	fromPhone, err := flags.StringVariation("twilio_from_phone", ctx, "")
	if err != nil {
		return fmt.Errorf("twilio_from_phone: %w", err)
	}
	if fromPhone == "" {
		utils.Logger.Warnf("twilio_from_phone flag is empty, defaulting to %s", defaultFromPhone)
		fromPhone = defaultFromPhone
	}
	c.LDFlag_TwilioFromPhone = fromPhone

	if c.LDFlag_CORSHighSecurity, err = flags.BoolVariation("cors_high_security", ctx, false); err != nil {
		return fmt.Errorf("cors_high_security: %w", err)
	}
	utils.Logger.Debugf("cors_high_security flag: %t", c.LDFlag_CORSHighSecurity)
	return nil
}

// ParseRSAPublicKey decodes a base64-wrapped PEM public key.
func ParseRSAPublicKey(b64 string) (*rsa.PublicKey, error) {
	pubPEM, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("RSA public key is not valid base64: %w", err)
	}
	if block, _ := pem.Decode(pubPEM); block == nil {
		return nil, errors.New("failed to decode PEM block for public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
	}
	return pubKey, nil
}

func durationOr(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", raw)
	}
	return d, nil
}

// Close shuts the LaunchDarkly client down, flushing pending analytics
// events. It is safe to call more than once.
func (c *Config) Close() {
	if c.flagClient == nil {
		return
	}
	if err := c.flagClient.Close(); err != nil {
		utils.Logger.WithError(err).Warn("Failed to close LaunchDarkly client")
	}
	c.flagClient = nil
}
