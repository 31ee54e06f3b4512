package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	Email    EmailConfig
	Social   SocialConfig

	FrontendURL string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL string
}

type JWTConfig struct {
	Secret string
}

// StripeConfig is threaded through the payment gateway at construction.
// Nothing in the codebase sets the process-wide stripe key.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string

	// Recurring price ids per product tier plus the social posting add-on.
	PriceStandard string
	PriceFeatured string
	PriceSocial   string
}

type EmailConfig struct {
	APIKey string
	From   string
}

type SocialConfig struct {
	MetaAccessToken string
	FacebookPageID  string
	InstagramUserID string
}

func Load() *Config {
	godotenv.Load() // .env dosyasını yükle

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "cuserentals-dev-secret"),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			PriceStandard: getEnv("STRIPE_PRICE_STANDARD", getEnv("STRIPE_SUBSCRIPTION_PRICE_ID", "")),
			PriceFeatured: getEnv("STRIPE_PRICE_FEATURED", ""),
			PriceSocial:   getEnv("STRIPE_PRICE_SOCIAL", ""),
		},
		Email: EmailConfig{
			APIKey: getEnv("RESEND_API_KEY", ""),
			From:   getEnv("EMAIL_FROM", "CuseRentals <noreply@cuserentals.com>"),
		},
		Social: SocialConfig{
			MetaAccessToken: getEnv("META_ACCESS_TOKEN", ""),
			FacebookPageID:  getEnv("META_FACEBOOK_PAGE_ID", ""),
			InstagramUserID: getEnv("META_INSTAGRAM_USER_ID", ""),
		},
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
	}
}

// PriceForProductType resolves the recurring price for a checkout product
// type. Empty string means the tier is not configured.
func (s StripeConfig) PriceForProductType(productType string) (string, error) {
	var price string
	switch productType {
	case "", "standard":
		price = s.PriceStandard
	case "featured":
		price = s.PriceFeatured
	default:
		return "", fmt.Errorf("unknown product type %q", productType)
	}
	if price == "" {
		return "", fmt.Errorf("price for %q not configured", productType)
	}
	return price, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
