package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	App          App          `mapstructure:",squash"`
	Server       Server       `mapstructure:",squash"`
	API          API          `mapstructure:",squash"`
	Storage      Storage      `mapstructure:",squash"`
	Refresh      Refresh      `mapstructure:",squash"`
	SessionWatch SessionWatch `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
	Env      string `mapstructure:"app_env"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// API aponta para o serviço externo de identidade e métricas
type API struct {
	BaseURL string        `mapstructure:"api_base_url"`
	Timeout time.Duration `mapstructure:"api_timeout"`
}

type Storage struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"storage_driver"`
	Path     string `mapstructure:"storage_path"`
	URL      string `mapstructure:"storage_url"`
	User     string `mapstructure:"storage_user"`
	Password string `mapstructure:"storage_password"`
}

type Refresh struct {
	CronSchedule string `mapstructure:"dashboard_refresh_cron"`
	Enabled      bool   `mapstructure:"dashboard_refresh_enabled"`
}

type SessionWatch struct {
	CronSchedule string `mapstructure:"session_watch_cron"`
	Enabled      bool   `mapstructure:"session_watch_enabled"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 4001)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")

	viper.SetDefault("API_BASE_URL", "http://localhost:8000")
	viper.SetDefault("API_TIMEOUT", "30s")

	viper.SetDefault("STORAGE_DRIVER", DriverSQLite)
	viper.SetDefault("STORAGE_PATH", defaultStoragePath())
	viper.SetDefault("STORAGE_URL", "localhost:5432/dashboard")
	viper.SetDefault("STORAGE_USER", "postgres")
	viper.SetDefault("STORAGE_PASSWORD", "root")

	viper.SetDefault("DASHBOARD_REFRESH_CRON", "*/5 * * * *") // a cada 5 minutos
	viper.SetDefault("DASHBOARD_REFRESH_ENABLED", false)

	viper.SetDefault("SESSION_WATCH_CRON", "* * * * *") // a cada minuto
	viper.SetDefault("SESSION_WATCH_ENABLED", true)

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
}

func NewConfig() (*Config, error) {
	return Load(nil)
}

// Load monta a configuração a partir de .env, variáveis de ambiente e flags
// opcionais. Flags têm precedência sobre o ambiente.
func Load(flags *pflag.FlagSet) (*Config, error) {
	loadEnvFile()

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env): ", err)
	}

	if flags != nil {
		if err := bindFlags(flags); err != nil {
			return nil, err
		}
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.API.BaseURL = strings.TrimRight(config.API.BaseURL, "/")
	if config.API.Timeout <= 0 {
		config.API.Timeout = 30 * time.Second
	}

	switch config.Storage.Driver {
	case DriverSQLite:
		config.Storage.DSN = config.Storage.Path
	case DriverPostgres:
		config.Storage.DSN = fmt.Sprintf(
			"postgres://%s:%s@%s",
			config.Storage.User,
			config.Storage.Password,
			config.Storage.URL,
		)
	default:
		return nil, fmt.Errorf("config: storage driver não suportado: %q", config.Storage.Driver)
	}

	return config, nil
}

// bindFlags registra apenas as flags alteradas pelo usuário, para que os
// valores padrão das flags não sobrescrevam o ambiente.
func bindFlags(flags *pflag.FlagSet) error {
	var bindErr error
	flags.Visit(func(f *pflag.Flag) {
		key := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if err := viper.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	return bindErr
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "metrics-dashboard.db"
	}
	return filepath.Join(dir, "metrics-dashboard", "session.db")
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Debug("Arquivo .env carregado de: ", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando apenas variáveis de ambiente")
}
