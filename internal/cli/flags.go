package cli

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// flagEnv maps a global flag to the environment variable it overrides
var flagEnv = map[string]string{
	"env":          "ENV",
	"port":         "PORT",
	"data":         "FOLDER",
	"config":       "CONSOLE_CONFIG",
	"store":        "STORE_BACKEND",
	"redis-addr":   "REDIS_ADDR",
	"redis-prefix": "REDIS_PREFIX",
	"auth":         "AUTH_BACKEND",
	"auth-url":     "AUTH_LOGIN_URL",
}

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.String("env", "", "environment name, DEV enables development logging (ENV)")
	fs.String("port", "", "listen port (PORT)")
	fs.String("data", "", "data folder for the file store (FOLDER)")
	fs.StringP("config", "c", "", "YAML file with permission and route overrides (CONSOLE_CONFIG)")
	fs.String("store", "", "session store backend: memory, file or redis (STORE_BACKEND)")
	fs.String("redis-addr", "", "redis address (REDIS_ADDR)")
	fs.String("redis-prefix", "", "redis key prefix (REDIS_PREFIX)")
	fs.String("auth", "", "login backend: remote or local (AUTH_BACKEND)")
	fs.String("auth-url", "", "remote login endpoint (AUTH_LOGIN_URL)")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
}

// applyFlagOverrides copies every flag set on the command line into its
// environment variable, where the config package reads it.
func applyFlagOverrides(fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		envName, ok := flagEnv[f.Name]
		if !ok || err != nil {
			return
		}
		if setErr := os.Setenv(envName, f.Value.String()); setErr != nil {
			err = fmt.Errorf("[applyFlagOverrides] %s: %w", envName, setErr)
		}
	})
	return err
}
