package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	ApiServer        ServerConfigs    `toml:"api_server"`
	RPCServer        RPCServerConfigs `toml:"rpc_server"`
	PrometheusServer ServerConfigs    `toml:"prometheus_server"`

	Database DatabaseConfigs `toml:"database"`
	Redis    RedisConfigs    `toml:"redis"`
	Kafka    KafkaConfigs    `toml:"kafka"`
	Auth     AuthConfigs     `toml:"auth"`

	Raffle RaffleConfigs `toml:"raffle"`
	VRF    VRFConfigs    `toml:"vrf"`
	Eth    ChainConfig   `toml:"eth"`
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`

	AllowCORS []string `toml:"allow_cors"`
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type RPCServerConfigs struct {
	ServerConfigs
	RPCName  string `toml:"rpc_name"`
	Endpoint string `toml:"endpoint"`
}

type DatabaseConfigs struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type KafkaConfigs struct {
	Addr    string `toml:"addr"`
	Topic   string `toml:"topic"`
	GroupID string `toml:"group_id"`
}

type AuthConfigs struct {
	TokenSecret string        `toml:"token_secret"`
	Expiration  time.Duration `toml:"expiration"`
}

// RaffleConfigs holds the per-deployment raffle parameters. Amounts are wei
// in decimal notation.
type RaffleConfigs struct {
	EntranceFee string        `toml:"entrance_fee"`
	Interval    time.Duration `toml:"interval"`

	// Operator may force a stuck raffle back to OPEN after GracePeriod.
	Operator    string        `toml:"operator"`
	GracePeriod time.Duration `toml:"grace_period"`

	// KeeperPeriod is how often the keeper polls checkUpkeep.
	KeeperPeriod time.Duration `toml:"keeper_period"`
}

type VRFConfigs struct {
	Coordinator          string `toml:"coordinator"`
	CoordinatorEndpoint  string `toml:"coordinator_endpoint"`
	CoordinatorRPCName   string `toml:"coordinator_rpc_name"`
	KeyHash              string `toml:"key_hash"`
	SubscriptionID       uint64 `toml:"subscription_id"`
	CallbackGasLimit     uint32 `toml:"callback_gas_limit"`
	RequestConfirmations uint16 `toml:"request_confirmations"`

	// Server is where the coordinator command serves requestRandomWords.
	Server ServerConfigs `toml:"server"`

	// UseMock runs an in-process coordinator instead of calling the endpoint.
	UseMock        bool          `toml:"use_mock"`
	MockPrivateKey string        `toml:"mock_private_key"`
	MockDelay      time.Duration `toml:"mock_delay"`
}

type ChainConfig struct {
	Chain      string   `toml:"chain" json:"chain"`
	ChainID    int64    `toml:"chain_id" json:"chain_id"`
	Rpcs       []string `toml:"rpcs" json:"rpcs"`
	PrivateKey string   `toml:"private_key" json:"-"`

	// UseLedger pays winners from an in-memory ledger instead of the chain.
	UseLedger bool `toml:"use_ledger" json:"use_ledger"`
}

func Default() Configs {
	return Configs{
		Env:              "local",
		LogLevel:         "info",
		ApiServer:        ServerConfigs{Port: "8080", AllowCORS: []string{"*"}},
		RPCServer:        RPCServerConfigs{ServerConfigs: ServerConfigs{Port: "8081"}, RPCName: "raffle"},
		PrometheusServer: ServerConfigs{Port: "9090"},
		Kafka:            KafkaConfigs{Topic: "raffle_event", GroupID: "raffle_indexer"},
		Auth:             AuthConfigs{Expiration: time.Hour},
		Raffle: RaffleConfigs{
			EntranceFee:  "10000000000000000",
			Interval:     30 * time.Second,
			GracePeriod:  time.Hour,
			KeeperPeriod: 5 * time.Second,
		},
		VRF: VRFConfigs{
			CoordinatorRPCName:   "vrf",
			MockDelay:            time.Second,
			Server:               ServerConfigs{Port: "8082"},
			CallbackGasLimit:     500000,
			RequestConfirmations: 3,
		},
	}
}

// Load reads the TOML file on top of the defaults. Secrets can be overridden
// from the environment so they stay out of the file.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Configs{}, err
		}
	}

	overrideFromEnv(&cfg.Database.Password, "DB_PASSWORD")
	overrideFromEnv(&cfg.Auth.TokenSecret, "TOKEN_SECRET")
	overrideFromEnv(&cfg.Eth.PrivateKey, "ETH_PRIVATE_KEY")
	overrideFromEnv(&cfg.VRF.MockPrivateKey, "VRF_MOCK_PRIVATE_KEY")

	return cfg, nil
}

func overrideFromEnv(field *string, key string) {
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}
