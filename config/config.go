package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "ONBOARDING_CONFIG_FILE"

// defaultMaxMessageBytes leaves room for inline product photos.
const defaultMaxMessageBytes = 16 << 20

const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"

	SinkHTTP  = "http"
	SinkKafka = "kafka"
)

type draft struct {
	Backend     string `mapstructure:"backend"`
	FilePath    string `mapstructure:"file_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisKey    string `mapstructure:"redis_key"`
}

type tls struct {
	CAFile   string `mapstructure:"ca_file"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// Enabled reports whether all the files of a mutual TLS setup are set.
func (t tls) Enabled() bool {
	return t.CAFile != "" && t.CertFile != "" && t.KeyFile != ""
}

type kafka struct {
	SeedBrokers        []string `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string `mapstructure:"schema_registry_urls"`
	Topic              string   `mapstructure:"topic"`
	MaxMessageBytes    int32    `mapstructure:"max_message_bytes"`
	TLS                tls      `mapstructure:"tls"`
}

type submit struct {
	Sink     string        `mapstructure:"sink"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Kafka    kafka         `mapstructure:"kafka"`
}

type Config struct {
	LogLevel       slog.Level `mapstructure:"log_level"`
	HTTPServerAddr string     `mapstructure:"http_server_addr"`
	Draft          draft      `mapstructure:"draft"`
	Submit         submit     `mapstructure:"submit"`
}

// Load reads the file named by ONBOARDING_CONFIG_FILE or --config.
// Without either, defaults are used.
func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads path on top of the defaults. An empty path yields the
// defaults alone.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", "127.0.0.1:8085")
	v.SetDefault("draft.backend", BackendFile)
	v.SetDefault("draft.file_path", defaultDraftPath())
	v.SetDefault("draft.postgres_dsn", "")
	v.SetDefault("draft.redis_addr", "127.0.0.1:6379")
	v.SetDefault("draft.redis_key", "onboarding:registration_data")
	v.SetDefault("submit.sink", SinkHTTP)
	v.SetDefault("submit.endpoint", "https://tools.onxtasks.com/api/registration")
	v.SetDefault("submit.timeout", 30*time.Second)
	v.SetDefault("submit.kafka.seed_brokers", []string{})
	v.SetDefault("submit.kafka.schema_registry_urls", []string{})
	v.SetDefault("submit.kafka.topic", "registrations")
	v.SetDefault("submit.kafka.max_message_bytes", defaultMaxMessageBytes)
	v.SetDefault("submit.kafka.tls.ca_file", "")
	v.SetDefault("submit.kafka.tls.cert_file", "")
	v.SetDefault("submit.kafka.tls.key_file", "")
}

func defaultDraftPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return dir + "/onboarding/registration_data.json"
}

func (c Config) validate() error {
	switch c.Draft.Backend {
	case BackendFile, BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.Draft.PostgresDSN == "" {
			return fmt.Errorf("draft.postgres_dsn is required for %q backend",
				BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown draft.backend %q", c.Draft.Backend)
	}

	switch c.Submit.Sink {
	case SinkHTTP:
		if c.Submit.Endpoint == "" {
			return fmt.Errorf("submit.endpoint is required for %q sink", SinkHTTP)
		}
	case SinkKafka:
		if len(c.Submit.Kafka.SeedBrokers) == 0 {
			return fmt.Errorf("submit.kafka.seed_brokers is required for %q sink",
				SinkKafka)
		}
		if c.Submit.Kafka.MaxMessageBytes <= 0 {
			return fmt.Errorf(
				"submit.kafka.max_message_bytes must be positive, got %d",
				c.Submit.Kafka.MaxMessageBytes)
		}
		if len(c.Submit.Kafka.SchemaRegistryURLs) == 0 {
			return fmt.Errorf(
				"submit.kafka.schema_registry_urls is required for %q sink",
				SinkKafka)
		}
	default:
		return fmt.Errorf("unknown submit.sink %q", c.Submit.Sink)
	}

	if c.Submit.Timeout <= 0 {
		return fmt.Errorf("submit.timeout must be positive, got %s",
			c.Submit.Timeout)
	}
	return nil
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q

	Draft:
	Backend=%q
	FilePath=%q
	RedisAddr=%q
	RedisKey=%q

	Submit:
	Sink=%q
	Endpoint=%q
	Timeout=%q
	Kafka:
		SeedBrokers=%q
		SchemaRegistryURLs=%q
		Topic=%q
		MaxMessageBytes=%d
		TLS=%t

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.Draft.Backend,
		c.Draft.FilePath,
		c.Draft.RedisAddr,
		c.Draft.RedisKey,
		c.Submit.Sink,
		c.Submit.Endpoint,
		c.Submit.Timeout,
		c.Submit.Kafka.SeedBrokers,
		c.Submit.Kafka.SchemaRegistryURLs,
		c.Submit.Kafka.Topic,
		c.Submit.Kafka.MaxMessageBytes,
		c.Submit.Kafka.TLS.Enabled(),
	)
}
