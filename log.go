package sqle

import (
	"os"

	"github.com/sirupsen/logrus"
)

const (
	// QueryLogField is the log field holding the query being run.
	QueryLogField = "query"
	// ErrorLogField is the log field holding an error.
	ErrorLogField = "error"
)

const logLevelKey = "SQLEXPR_LOG_LEVEL"

func init() {
	lvl, ok := os.LookupEnv(logLevelKey)
	if !ok {
		return
	}

	level, err := logrus.ParseLevel(lvl)
	if err != nil {
		logrus.WithField(ErrorLogField, err).Warnf("invalid %s, using %s", logLevelKey, logrus.GetLevel())
		return
	}
	logrus.SetLevel(level)
}
