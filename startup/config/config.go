package config

import "os"

type Config struct {
	Port            string
	CarRentalDBHost string
	CarRentalDBPort string
	TokenCacheHost  string
	TokenCachePort  string
	ImageCDNURL     string
	JaegerAddress   string
}

func NewConfig() *Config {
	return &Config{
		Port:            os.Getenv("CARRENTAL_SERVICE_PORT"),
		CarRentalDBHost: os.Getenv("CARRENTAL_DB_HOST"),
		CarRentalDBPort: os.Getenv("CARRENTAL_DB_PORT"),
		TokenCacheHost:  os.Getenv("TOKEN_CACHE_HOST"),
		TokenCachePort:  os.Getenv("TOKEN_CACHE_PORT"),
		ImageCDNURL:     os.Getenv("IMAGE_CDN_URL"),
		JaegerAddress:   os.Getenv("JAEGER_ADDRESS"),
	}
}
