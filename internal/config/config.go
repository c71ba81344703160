package config

import (
	"fmt"
	"net"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel    string        `yaml:"log-level" env:"CONNECT4_LOG_LEVEL" env-default:"info"`
	Host        string        `yaml:"host" env:"CONNECT4_HOST" env-default:"0.0.0.0"`
	SocketPort  string        `yaml:"socket-port" env:"CONNECT4_SOCKET_PORT" env-default:"4730"`
	Subprotocol string        `yaml:"subprotocol" env:"CONNECT4_SUBPROTOCOL" env-default:"connect4"`
	ReadTimeout time.Duration `yaml:"read-timeout" env:"CONNECT4_READ_TIMEOUT" env-default:"0s"`
	Redis       Redis         `yaml:"redis"`
}

type Redis struct {
	Host       string        `yaml:"host" env:"CONNECT4_REDIS_HOST" env-default:"localhost"`
	Port       string        `yaml:"port" env:"CONNECT4_REDIS_PORT" env-default:"6379"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"CONNECT4_REDIS_SESSION_TTL" env-default:"1h"`
}

// MustLoad - load all configurations in config.yml file, environment variables take precedence.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Config) GetListenAddr() string {
	return net.JoinHostPort(that.Host, that.SocketPort)
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" || that.Port == "" {
		return ""
	}

	return net.JoinHostPort(that.Host, that.Port)
}
