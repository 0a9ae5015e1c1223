package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/recurcart/recurcart/internal/domain/scheme"
	"github.com/recurcart/recurcart/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Logging     LoggingConfig     `validate:"required"`
	Pricing     PricingConfig     `validate:"required"`
	CartSchemes CartSchemesConfig
	Catalog     CatalogConfig `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PricingConfig struct {
	// Precision is the store decimal precision for rounded discount prices
	Precision int `validate:"gte=0,lte=8"`

	// DiscountFromRegular computes scheme discounts from the regular price
	// instead of the current (possibly sale) price
	DiscountFromRegular bool
}

type CartSchemesConfig struct {
	// Enabled turns site-wide cart-level schemes on. They still apply only
	// to carts where no item carries product-level schemes.
	Enabled bool

	// DefaultToSubscription makes the cart-level picker default to the
	// first scheme instead of one-time purchase
	DefaultToSubscription bool

	// Definitions are the site-wide scheme definitions, in display order
	Definitions []scheme.StoredDefinition
}

type CatalogConfig struct {
	// SupportedProductTypes is the allow-list of host product types that
	// may carry schemes. Anything else resolves to no schemes, not an error.
	SupportedProductTypes []string `validate:"required,min=1"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/recurcart")

	v.SetEnvPrefix("RECURCART")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("pricing.precision", types.DefaultPricePrecision)
	v.SetDefault("catalog.supportedproducttypes", []string{"simple", "variable", "variation"})
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a configuration for tests and scripts that do
// not load a config file.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Logging: LoggingConfig{Level: types.LogLevelDebug},
		Pricing: PricingConfig{Precision: types.DefaultPricePrecision},
		Catalog: CatalogConfig{
			SupportedProductTypes: []string{"simple", "variable", "variation", "bundle", "composite"},
		},
	}
}

// PricingOptions maps the configured flags into the price engine's options
func (c *Configuration) PricingOptions() scheme.PricingOptions {
	return scheme.PricingOptions{
		Precision:           c.Pricing.Precision,
		DiscountFromRegular: c.Pricing.DiscountFromRegular,
	}
}
