// Package config loads configuration structs from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: the
// default .env file is loaded once per process (if present), then `env`
// struct tags drive parsing with documented defaults. Every package in the
// gateway declares its own Config struct next to the code it configures;
// cmd/gateway loads them all at startup and fails fast on the required ones.
package config
