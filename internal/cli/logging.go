package cli

import (
	"os"
	"time"

	"github.com/jrsteele09/crm-console/internal/config"
	apperrors "github.com/jrsteele09/crm-console/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// setupLogging writes human readable logs in DEV and JSON everywhere else
func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidConfig, "log level %q", level)
	}
	zerolog.SetGlobalLevel(lvl)

	if config.New().IsDev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return nil
}
