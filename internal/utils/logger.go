package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// appNameHook tags every entry with the service name: as a message prefix for
// text output, as the "app" field for JSON output.
type appNameHook struct {
	appName string
	asField bool
}

func (h *appNameHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *appNameHook) Fire(entry *logrus.Entry) error {
	if h.asField {
		entry.Data["app"] = h.appName
		return nil
	}
	entry.Message = "[" + h.appName + "] " + entry.Message
	return nil
}

// isDevEnv covers "dev" and its variants such as "dev-test".
func isDevEnv(env string) bool {
	return env == "" || strings.HasPrefix(strings.ToLower(env), "dev")
}

// newFormatter picks human-readable text locally and JSON everywhere else.
func newFormatter(env string) logrus.Formatter {
	if isDevEnv(env) {
		return &logrus.TextFormatter{FullTimestamp: true}
	}
	return &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
			logrus.FieldKeyMsg:  "message",
		},
	}
}

func InitLogger(appName string) {
	Logger.SetOutput(os.Stdout)

	logLevelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		Logger.Warnf("Invalid LOG_LEVEL '%s', defaulting to INFO", logLevelStr)
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	env := os.Getenv("ENV")
	Logger.SetFormatter(newFormatter(env))
	Logger.AddHook(&appNameHook{appName: appName, asField: !isDevEnv(env)})
}
