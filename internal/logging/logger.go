package logging

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/zzenonn/zscrub/internal/config"
	"github.com/zzenonn/zscrub/internal/domain"
)

// InitLogger sets the log level and format based on the provided configuration.
// Diagnostics go to stderr so they never interleave with the scrub report on stdout.
func InitLogger(cfg *config.Config) {
	setLogLevel(strings.ToLower(cfg.LogLevel))
	log.SetOutput(os.Stderr)
	log.SetFormatter(formatter(strings.ToLower(cfg.LogFormat)))
}

// InitFromEnv initializes logging from environment variables
func InitFromEnv() {
	logLevel := strings.ToLower(os.Getenv("LOG_LEVEL"))
	setLogLevel(logLevel)
}

// ForObject returns a log entry carrying the object's URI and, once known,
// its expected and computed checksums.
func ForObject(record domain.ObjectRecord) *log.Entry {
	fields := log.Fields{"object": record.URI}
	if record.ExpectedChecksum != "" {
		fields["expected"] = record.ExpectedChecksum
	}
	if record.ComputedChecksum != "" {
		fields["computed"] = record.ComputedChecksum
	}
	return log.WithFields(fields)
}

// formatter picks the logrus formatter; json suits log shippers on scrub hosts.
func formatter(format string) log.Formatter {
	if format == "json" {
		return &log.JSONFormatter{}
	}
	return &log.TextFormatter{
		FullTimestamp: true,
	}
}

// setLogLevel sets the log level based on string input
func setLogLevel(logLevel string) {
	switch logLevel {
	case "trace":
		log.SetLevel(log.TraceLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn", "warning":
		log.SetLevel(log.WarnLevel)
	default:
		log.SetLevel(log.ErrorLevel)
	}
}

func init() {
	InitFromEnv()
}
