package crmleadcreate

import "time"

type Config struct {
	Timeout    time.Duration
	LeadSource string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    15 * time.Second,
		LeadSource: "magnet-wizard",
	}
}
