package providers

import (
	"fmt"
	"path/filepath"
	"pcsd/internal/structures"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("database.busyTimeout", 10000)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("graph.enabled", true)
	v.SetDefault("graph.width", 900)
	v.SetDefault("graph.height", 400)
	v.SetDefault("acquisition.timeout", 10*time.Second)

	v.BindEnv("logger.level", "PCSD_LOG_LEVEL")
	v.BindEnv("database.path", "PCSD_DB_PATH")
	v.BindEnv("acquisition.url", "PCSD_ACQUISITION_URL")
	v.BindEnv("cache.enabled", "PCSD_CACHE_ENABLED")
	v.BindEnv("cache.size", "PCSD_CACHE_SIZE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "PlayerCountStatisticDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
