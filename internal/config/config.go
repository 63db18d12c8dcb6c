// Package config resolves the listen port from flags, the environment and
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/akamensky/argparse"
	"github.com/joho/godotenv"
)

const (
	// DefaultPort is used when neither --port nor PORT is set.
	DefaultPort = 8080
	// DefaultEnvFile is loaded when present; its absence is not an error.
	DefaultEnvFile = ".env"

	portEnv = "PORT"
)

// ErrInvalidPort reports a port outside 1..65535 or a non-numeric value,
// whether it came from --port or PORT.
var ErrInvalidPort = errors.New("invalid port")

// Config holds the server settings.
type Config struct {
	Port    int
	EnvFile string
}

// Addr returns the listen address on all interfaces.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Load parses args (args[0] is the program name) and resolves the port.
// Precedence: --port flag, then PORT (process env or env file), then DefaultPort.
// Variables already set in the process env are not overridden by the env file.
func Load(args []string) (Config, error) {
	parser := argparse.NewParser("greeting-server", "serves a static JSON greeting on GET /")
	port := parser.String("p", "port", &argparse.Options{
		Help: fmt.Sprintf("TCP port to listen on (default %d, or $%s)", DefaultPort, portEnv),
	})
	envFile := parser.String("", "env-file", &argparse.Options{
		Help: "dotenv file to load before reading the environment (default " + DefaultEnvFile + ")",
	})
	if err := parser.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	cfg := Config{Port: DefaultPort, EnvFile: *envFile}
	if err := loadEnvFile(cfg.EnvFile); err != nil {
		return Config{}, err
	}
	if cfg.EnvFile == "" {
		cfg.EnvFile = DefaultEnvFile
	}

	if v := os.Getenv(portEnv); v != "" {
		p, err := parsePort("$"+portEnv, v)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = p
	}
	if *port != "" {
		p, err := parsePort("--port", *port)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = p
	}
	return cfg, nil
}

// parsePort converts and range-checks a port taken from source.
func parsePort(source, v string) (int, error) {
	p, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidPort, source, v)
	}
	if err := validatePort(p); err != nil {
		return 0, fmt.Errorf("%s: %w", source, err)
	}
	return p, nil
}

// loadEnvFile loads path, or DefaultEnvFile when path is empty.
// A missing DefaultEnvFile is ignored; a missing explicit file is an error.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	err := godotenv.Load(path)
	switch {
	case err == nil:
		return nil
	case !explicit && errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("load env file %s: %w", path, err)
	}
}

func validatePort(p int) error {
	if p < 1 || p > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, p)
	}
	return nil
}
