package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	ListenerPoll     = "poll"
	ListenerPGNotify = "pgnotify"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultAPIAddress    = "127.0.0.1:7400"
	defaultEnv           = EnvLocal
	defaultConfigDir     = ".gophregister"
	defaultDeviceName    = "register"
	defaultLocale        = "es-CO"
)

type Config struct {
	Env           string `mapstructure:"app_env"`
	ServerAddress string `mapstructure:"server_address"`
	EnableTLS     bool   `mapstructure:"enable_tls"`
	APIAddress    string `mapstructure:"api_address"`
	ConfigDir     string `mapstructure:"config_dir"`
	DataPath      string `mapstructure:"data_path"`
	TokenPath     string `mapstructure:"token_path"`
	APITokenPath  string `mapstructure:"api_token_path"`
	StatePath     string `mapstructure:"state_path"`
	LogFile       string `mapstructure:"log_file"`
	Locale        string `mapstructure:"locale"`

	BranchID         string `mapstructure:"branch_id"`
	OperatorID       string `mapstructure:"operator_id"`
	DeviceName       string `mapstructure:"device_name"`
	DevicePassphrase string `mapstructure:"device_passphrase"`

	PullInterval      time.Duration `mapstructure:"pull_interval_seconds"`
	PushInterval      time.Duration `mapstructure:"push_interval_seconds"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval_seconds"`
	SyncMaxBackoff    time.Duration `mapstructure:"sync_max_backoff_seconds"`
	SyncWindowDays    int           `mapstructure:"sync_window_days"`
	RetentionDays     int           `mapstructure:"retention_days"`

	Listener     string        `mapstructure:"listener"`
	ListenerDSN  string        `mapstructure:"listener_dsn"`
	PollInterval time.Duration `mapstructure:"poll_interval_seconds"`
}

// MustLoad загружает конфигурацию кассы из .env, переменных окружения и
// конфигурационного файла, если он был подключен через viper.
func MustLoad() *Config {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	viper.SetDefault("ENABLE_TLS", true)
	viper.SetDefault("API_ADDRESS", defaultAPIAddress)
	viper.SetDefault("CONFIG_DIR", defaultConfigDir)
	viper.SetDefault("LOCALE", defaultLocale)
	viper.SetDefault("DEVICE_NAME", defaultDeviceName)
	viper.SetDefault("PULL_INTERVAL_SECONDS", 300)
	viper.SetDefault("PUSH_INTERVAL_SECONDS", 30)
	viper.SetDefault("HEARTBEAT_INTERVAL_SECONDS", 60)
	viper.SetDefault("SYNC_MAX_BACKOFF_SECONDS", 900)
	viper.SetDefault("SYNC_WINDOW_DAYS", 30)
	viper.SetDefault("RETENTION_DAYS", 30)
	viper.SetDefault("LISTENER", ListenerPoll)
	viper.SetDefault("POLL_INTERVAL_SECONDS", 15)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		fmt.Printf("Ошибка создания директории конфигурации: %v\n", err)
	}

	dataPath := viper.GetString("DATA_PATH")
	if dataPath == "" {
		dataPath = filepath.Join(configDir, "register.db")
	}

	config := &Config{
		Env:               viper.GetString("APP_ENV"),
		ServerAddress:     viper.GetString("SERVER_ADDRESS"),
		EnableTLS:         viper.GetBool("ENABLE_TLS"),
		APIAddress:        viper.GetString("API_ADDRESS"),
		ConfigDir:         configDir,
		DataPath:          dataPath,
		TokenPath:         filepath.Join(configDir, "device.token"),
		APITokenPath:      filepath.Join(configDir, "local_api_token"),
		StatePath:         filepath.Join(configDir, "state.json"),
		LogFile:           viper.GetString("LOG_FILE"),
		Locale:            viper.GetString("LOCALE"),
		BranchID:          viper.GetString("BRANCH_ID"),
		OperatorID:        viper.GetString("OPERATOR_ID"),
		DeviceName:        viper.GetString("DEVICE_NAME"),
		DevicePassphrase:  viper.GetString("DEVICE_PASSPHRASE"),
		PullInterval:      seconds("PULL_INTERVAL_SECONDS"),
		PushInterval:      seconds("PUSH_INTERVAL_SECONDS"),
		HeartbeatInterval: seconds("HEARTBEAT_INTERVAL_SECONDS"),
		SyncMaxBackoff:    seconds("SYNC_MAX_BACKOFF_SECONDS"),
		SyncWindowDays:    viper.GetInt("SYNC_WINDOW_DAYS"),
		RetentionDays:     viper.GetInt("RETENTION_DAYS"),
		Listener:          viper.GetString("LISTENER"),
		ListenerDSN:       viper.GetString("LISTENER_DSN"),
		PollInterval:      seconds("POLL_INTERVAL_SECONDS"),
	}

	if err := config.validate(); err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}

	return config
}

func seconds(key string) time.Duration {
	return time.Duration(viper.GetInt(key)) * time.Second
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address не может быть пустым")
	}
	if c.APIAddress == "" {
		return fmt.Errorf("api_address не может быть пустым")
	}
	if c.PullInterval <= 0 || c.PushInterval <= 0 || c.HeartbeatInterval <= 0 {
		return fmt.Errorf("интервалы синхронизации должны быть положительными")
	}
	if c.SyncMaxBackoff < c.PushInterval {
		c.SyncMaxBackoff = c.PushInterval
	}
	if c.RetentionDays <= 0 {
		return fmt.Errorf("retention_days должен быть положительным")
	}
	switch c.Listener {
	case ListenerPoll:
	case ListenerPGNotify:
		if c.ListenerDSN == "" {
			return fmt.Errorf("listener_dsn обязателен для listener=%s", ListenerPGNotify)
		}
	default:
		return fmt.Errorf("неизвестный listener: %s", c.Listener)
	}
	return nil
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == EnvProd
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal || c.Env == ""
}
