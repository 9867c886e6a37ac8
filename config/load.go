package config

import (
	"github.com/kelseyhightower/envconfig"
)

func Load() (App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return App{}, err
	}
	return cfg, nil
}
