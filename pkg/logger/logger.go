package logger

import (
	"os"

	"github.com/ethanbaker/ytchat/pkg/utils"
	"github.com/sirupsen/logrus"
)

// New initializes a logrus logger from configuration.
// LOG_LEVEL sets the minimum level (default info), LOG_JSON switches to
// structured JSON output for log aggregation.
func New(cfg *utils.Config) *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stdout

	level, err := logrus.ParseLevel(cfg.GetWithDefault("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.GetBoolWithDefault("LOG_JSON", false) {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			PadLevelText:  true,
		})
	}

	return log
}
