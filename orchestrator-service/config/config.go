package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds the orchestrator service settings.
type Config struct {
	ServiceName string `mapstructure:"service_name"`
	Env         string `mapstructure:"env"`
	Port        string `mapstructure:"port"`
	AWS         AWS    `mapstructure:"aws"`
	OTLP        OTLP   `mapstructure:"otlp"`
}

// AWS holds messaging endpoints.
type AWS struct {
	Region      string `mapstructure:"region"`
	SNSTopicArn string `mapstructure:"sns_topic_arn"`
	SQSQueueURL string `mapstructure:"sqs_queue_url"`
}

// OTLP holds the telemetry collector endpoint.
type OTLP struct {
	Endpoint string `mapstructure:"endpoint"`
}

// ReadConfig loads configuration from defaults, an optional config file and
// ORCHESTRATOR_-prefixed environment variables.
func ReadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("orchestrator")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvPrefix("ORCHESTRATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("service_name", "orchestrator-service")
	v.SetDefault("env", "local")
	v.SetDefault("port", "8080")
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.sns_topic_arn", "arn:aws:sns:us-east-1:000000000000:order-saga-events")
	v.SetDefault("aws.sqs_queue_url", "http://localhost:4566/000000000000/orchestrator-service")
	v.SetDefault("otlp.endpoint", "localhost:4318")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "error reading config file")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling config")
	}
	return &config, nil
}
