package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// Game holds the defaults a fresh session starts with and the knobs of the
// computer opponent.
type Game struct {
	ComputerMoveDelayMS int    `yaml:"computer-move-delay-ms" env-default:"700"`
	DefaultMode         string `yaml:"default-mode" env-default:"pvc"`
	DefaultComputerMark string `yaml:"default-computer-mark" env-default:"O"`
	SessionTTLMinutes   int    `yaml:"session-ttl-minutes" env-default:"30"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// ComputerMoveDelay returns the pause before a deferred computer move fires.
func (that *Game) ComputerMoveDelay() time.Duration {
	return time.Duration(that.ComputerMoveDelayMS) * time.Millisecond
}

// SessionTTL returns how long an untouched session snapshot stays in storage.
func (that *Game) SessionTTL() time.Duration {
	return time.Duration(that.SessionTTLMinutes) * time.Minute
}
