package session

import "github.com/sirupsen/logrus"

func logrusTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}
