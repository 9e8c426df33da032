package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zerodha/logf"
)

var (
	globalLogger logf.Logger
	once         sync.Once
	logFile      *os.File
	defaultOpts  = logf.Opts{
		EnableCaller:    true,
		TimestampFormat: "15:04:05",
		EnableColor:     false,
		Level:           logf.InfoLevel,
	}
	// UserCurrentFunc holds the function used to resolve the current user's
	// home directory; exported so tests can mock it.
	UserCurrentFunc = user.Current
)

// GetDefaultOpts returns a copy of the default logger options, useful for
// tests that need to construct a logger instance without touching the
// process-wide singleton.
func GetDefaultOpts() logf.Opts {
	return defaultOpts
}

// InitFileLogger sets up the global logger with file output under
// ~/.nbodysim/logs, creating the directory and a timestamped log file.
func InitFileLogger(configuredLevel string, appName string) (*logf.Logger, error) {
	usr, err := UserCurrentFunc()
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	homedir := usr.HomeDir
	outputBase := filepath.Join(homedir, ".nbodysim")
	logsDir := filepath.Join(outputBase, "logs")

	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory '%s': %w", logsDir, err)
	}

	currentTime := time.Now().Format("2006-01-02_15-04-05")
	logFileName := fmt.Sprintf("%s-%s.log", appName, currentTime)
	fullLogFilePath := filepath.Join(logsDir, logFileName)

	lg := GetLogger(configuredLevel, fullLogFilePath)
	lg.Info("file logger initialized", "app", appName, "path", fullLogFilePath, "level", configuredLevel)
	return lg, nil
}

// GetLogger returns the singleton logger instance. If filePath is
// provided (typically by InitFileLogger), it attempts to set up file
// logging in addition to stdout. The level and filePath parameters only
// take effect on the first call that initializes the logger.
func GetLogger(level string, filePath ...string) *logf.Logger {
	once.Do(func() {
		currentOpts := GetDefaultOpts()
		var logLevel logf.Level
		switch level {
		case "debug":
			logLevel = logf.DebugLevel
		case "info":
			logLevel = logf.InfoLevel
		case "warn":
			logLevel = logf.WarnLevel
		case "error":
			logLevel = logf.ErrorLevel
		case "fatal":
			logLevel = logf.FatalLevel
		default:
			logLevel = currentOpts.Level
		}
		currentOpts.Level = logLevel

		var writers []io.Writer
		writers = append(writers, os.Stdout)

		if len(filePath) > 0 && filePath[0] != "" {
			var err error
			actualLogFilePath := filePath[0]
			logFile, err = os.OpenFile(actualLogFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				log.Printf("[logger] failed to open log file '%s': %v. continuing with stdout only.", actualLogFilePath, err)
			} else {
				writers = append(writers, logFile)
			}
		}
		currentOpts.Writer = io.MultiWriter(writers...)
		globalLogger = logf.New(currentOpts)
	})
	return &globalLogger
}

// LoggingMiddleware returns a Gin middleware that logs every HTTP request
// made against the status/diagnostics server.
func LoggingMiddleware(log *logf.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		method := c.Request.Method
		clientIP := c.ClientIP()
		userAgent := c.Request.UserAgent()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		log.Info("http request",
			"status", status,
			"method", method,
			"path", path,
			"query", query,
			"ip", clientIP,
			"latency", latency.String(),
			"user_agent", userAgent,
		)
	}
}

// Reset clears the logger singleton, for test isolation.
func Reset() {
	once = sync.Once{}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	globalLogger = logf.Logger{}
}
