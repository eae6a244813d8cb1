package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Speech SpeechConfig `mapstructure:"speech"`
	Motion MotionConfig `mapstructure:"motion"`
	Scale  ScaleConfig  `mapstructure:"scale"`
	Debug  DebugConfig  `mapstructure:"debug"`
}

type SpeechConfig struct {
	Engine       string `mapstructure:"engine"`
	ModelPath    string `mapstructure:"model_path"`
	QuietTimeMs  int    `mapstructure:"quiet_time_ms"`
	MaxSessionMs int    `mapstructure:"max_session_ms"`
}

type MotionConfig struct {
	Threshold  float64 `mapstructure:"threshold"` // rad/s
	IntervalMs int     `mapstructure:"interval_ms"`
}

type ScaleConfig struct {
	Initial float64 `mapstructure:"initial"`
}

type DebugConfig struct {
	DumpUtterances bool `mapstructure:"dump_utterances"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	viper.SetDefault("speech.engine", "whisper")
	viper.SetDefault("speech.quiet_time_ms", 200)
	viper.SetDefault("speech.max_session_ms", 10000)

	viper.SetDefault("motion.threshold", 0.5)
	viper.SetDefault("motion.interval_ms", 100)

	viper.SetDefault("scale.initial", 1.0)

	viper.SetDefault("debug.dump_utterances", false)

	// Allow environment variables
	viper.SetEnvPrefix("SCALECTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, use defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
