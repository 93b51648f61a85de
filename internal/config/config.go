package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string `yaml:"log-level" env-default:"info"`
	HTTPPort          string `yaml:"http-port" env-default:"9090"`
	SocketPort        string `yaml:"socket-port" env-default:"5555"`
	Redis             Redis  `yaml:"redis"`
	SQLiteStoragePath string `yaml:"sqlite-storage-path" env-default:"ai_data.db"`
	Game              Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

type Game struct {
	// Difficulty applied to newly created bot games.
	Difficulty string `yaml:"difficulty" env-default:"medium"`

	// MoveTimeout is the inactivity window after which the relay asks the
	// engine for a computer move. Zero disables the timer.
	MoveTimeout time.Duration `yaml:"move-timeout" env-default:"5s"`

	// TwoPlayerMode relays games between two humans instead of against the bot.
	TwoPlayerMode bool `yaml:"two-player-mode" env-default:"false"`

	EnablePowerups bool `yaml:"enable-powerups" env-default:"true"`

	Levels Levels `yaml:"levels"`
}

type Levels struct {
	Easy   Level `yaml:"easy"`
	Medium Level `yaml:"medium"`
	Hard   Level `yaml:"hard"`
}

// Level - view radius bounding the AI candidate search; search depth applies
// to hard play only.
type Level struct {
	ViewRadius  int `yaml:"view-radius" env-default:"5"`
	SearchDepth int `yaml:"search-depth" env-default:"0"`
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
