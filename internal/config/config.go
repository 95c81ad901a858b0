package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type SettlementConfig struct {
	Env string 	    `yaml:"env"`
	HTTPServer 	    `yaml:"http_server"`
	SettlementDB    `yaml:"settlement_db"`
	LogConfig 	    `yaml:"log_config"`
	ChainService    `yaml:"chain-service"`
	WalletService   `yaml:"wallet-service"`
	ExchangeService `yaml:"exchange-service"`
	BillpayService  `yaml:"billpay-service"`
	CustodyService  `yaml:"custody-service"`
	KafkaService    `yaml:"kafka-service"`
	Reconciler      `yaml:"reconciler"`
	Custody         `yaml:"custody"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type SettlementDB struct {
	Dsn           string `yaml:"dsn"`
	MigrationPath string `yaml:"migration_path"`
}

type LogConfig struct {
	LogLevel 	string 	`yaml:"log_level"`
	LogFormat 	string 	`yaml:"log_format"`
	LogOutput 	string 	`yaml:"log_output"`
}

type ChainService struct {
	BundlerURL string `yaml:"bundler_url"`
}

type WalletService struct {
	BaseURL          string `yaml:"base_url"`
	APIKey           string `yaml:"api_key" env:"WALLET_API_KEY"`
	PullingAccountID string `yaml:"pulling_account_id"`
}

type ExchangeService struct {
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key" env:"EXCHANGE_API_KEY"`
	APISecret string `yaml:"api_secret" env:"EXCHANGE_API_SECRET"`
	Market    string `yaml:"market"`
}

type BillpayService struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	APIKey   string `yaml:"api_key" env:"BILLPAY_API_KEY"`
}

type CustodyService struct {
	BaseURL string `yaml:"base_url"`
}

type KafkaService struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic"`
}

type Reconciler struct {
	Interval      time.Duration `yaml:"interval" env-default:"15s"`
	BatchSize     int           `yaml:"batch_size" env-default:"10"`
	PendingWindow time.Duration `yaml:"pending_window" env-default:"30m"`
}

// Custody holds the platform-controlled address, signing key and fiat
// wallet used for intermediate settlement legs. Injected into the rail
// adapters, never read from package-level state.
type Custody struct {
	Address         string `yaml:"address"`
	SigningKey      string `yaml:"signing_key" env:"CUSTODY_SIGNING_KEY"`
	FiatWalletID    string `yaml:"fiat_wallet_id"`
	SettlementToken string `yaml:"settlement_token"`
}

func MustLoad() *SettlementConfig {

	// Processing env config variable and file
	configPath := os.Getenv("SETTLEMENT_CONFIG_PATH")

	if configPath == ""{
		log.Fatalf("SETTLEMENT_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil{
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg SettlementConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil{
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
