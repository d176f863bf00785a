package merchant

// Config is a configuration for the merchant application
type Config struct {
	HTTPAddr string `mapstructure:"http_addr"`
	// Timezone is an IANA zone name used to display dates (e.g., "America/Sao_Paulo").
	Timezone string `mapstructure:"timezone"`
	Language string `mapstructure:"language"`

	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	QR      QRConfig      `mapstructure:"qr"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StorageConfig struct {
	// Backend is one of mem, postgres, sqlite, mongo or redis.
	Backend string `mapstructure:"backend"`
	// DSN is the connection string, file path or address of the backend.
	DSN      string `mapstructure:"dsn"`
	Database string `mapstructure:"database"`
	Password string `mapstructure:"password"`
	// HistoryLimit caps history listings when the caller does not ask for a limit.
	HistoryLimit int `mapstructure:"history_limit"`
}

type QRConfig struct {
	Size int `mapstructure:"size"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

func DefaultConfig() *Config {
	return &Config{
		HTTPAddr: "localhost:9090",
		Timezone: "America/Sao_Paulo",
		Language: "pt-BR",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Storage: StorageConfig{
			Backend:      "sqlite",
			DSN:          "brcode.db",
			Database:     "brcode",
			HistoryLimit: 50,
		},
		QR: QRConfig{
			Size: 256,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "brcode.payments",
		},
	}
}
