package appconfig

import (
	"bytes"
	"errors"
	"html/template"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// Config holds all configuration details
type Config struct {
	Host     string         `yaml:"host"`
	BasePath string         `yaml:"basePath"`
	DocsPath string         `yaml:"docsPath"`
	Database DatabaseConfig `yaml:"database"`
	Pulsar   PulsarConfig   `yaml:"pulsar"`
	AWS      AWSConfig      `yaml:"aws"`
	Stripe   StripeConfig   `yaml:"stripe"`
	Mail     MailConfig     `yaml:"mail"`
	Requests RequestsConfig `yaml:"requests"`
}

// DatabaseConfig defines the database connection details
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Source string `yaml:"source"`
}

// PulsarConfig defines the messaging system connection details
type PulsarConfig struct {
	URL           string `yaml:"url"`
	TopicProducer string `yaml:"topicProducer"`
	TopicConsumer string `yaml:"topicConsumer"`
	Subscription  string `yaml:"subscription"`
}

// AWSConfig defines the AWS region and notification email sender.
type AWSConfig struct {
	Region      string `yaml:"region"`
	SenderEmail string `yaml:"senderEmail"`
}

// StripeConfig defines the payment processor credentials. When SecretName
// is set the API key is fetched from AWS Secrets Manager instead.
type StripeConfig struct {
	APIKey     string `yaml:"apiKey"`
	SecretName string `yaml:"secretName"`
}

// MailConfig defines the inbound mail webhook settings.
type MailConfig struct {
	// InboundDomain is the domain requests receive agency mail on,
	// e.g. requests.example.com.
	InboundDomain string `yaml:"inboundDomain"`
	SigningKey    string `yaml:"signingKey"`
}

// RequestsConfig holds request lifecycle tuning.
type RequestsConfig struct {
	// StaleDays is how many days of agency silence on open requests
	// marks an agency stale.
	StaleDays int `yaml:"staleDays"`
	// EmbargoDays is the default embargo length on completed requests.
	EmbargoDays int `yaml:"embargoDays"`
}

// LoadConfig loads and parses the configuration from a given file path
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		err := errors.New("config file path is required")
		log.Fatal().Err(err).Msg("config file not provided")
		return nil, err
	}

	// Parse the template file
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		log.Fatal().Err(err).Msg("error parsing config file template")
		return nil, err
	}

	// Create a map of environment variables
	envVars := loadEnvVars()

	// Execute the template with environment variables
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, envVars)
	if err != nil {
		log.Fatal().Err(err).Msg("error executing config file template")
		return nil, err
	}

	// Load and unmarshal the YAML
	var config Config
	if err := yaml.Unmarshal(buf.Bytes(), &config); err != nil {
		log.Fatal().Err(err).Msg("failed to unmarshal config YAML")
		return nil, err
	}

	if config.Requests.StaleDays == 0 {
		config.Requests.StaleDays = 120
	}
	if config.Requests.EmbargoDays == 0 {
		config.Requests.EmbargoDays = 30
	}

	return &config, nil
}

// loadEnvVars loads environment variables into a map
func loadEnvVars() map[string]string {
	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		kv := strings.SplitN(env, "=", 2)
		if len(kv) == 2 {
			envVars[kv[0]] = kv[1]
		}
	}
	return envVars
}
