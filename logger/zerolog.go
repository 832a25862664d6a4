package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

var (
	log  Logger
	once sync.Once
)

// InitLogger initializes the process-wide file logger under ~/.manimation.
func InitLogger() {
	once.Do(func() {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic("Failed to get user home directory: " + err.Error())
		}

		logDir := filepath.Join(homeDir, ".manimation")
		err = os.MkdirAll(logDir, 0755)
		if err != nil {
			panic("Failed to create .manimation directory: " + err.Error())
		}

		logFile, err := os.OpenFile(filepath.Join(logDir, "manimation.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
		if err != nil {
			panic("Failed to open log file: " + err.Error())
		}

		log = NewZerologAdapter(logFile)
	})
}

// GetLogger returns the logger instance
func GetLogger() Logger {
	if log == nil {
		return NewNullLogger()
	}
	return log
}

// NewZerologAdapter creates a logger writing JSON lines to w.
func NewZerologAdapter(w io.Writer) Logger {
	zl := zerolog.New(w).With().Timestamp().Logger()
	return &ZerologAdapter{logger: &zl}
}

// NewConsoleLogger creates a human-readable logger for server mode.
func NewConsoleLogger() Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	return &ZerologAdapter{logger: &zl}
}

// ZerologAdapter adapts zerolog.Logger to our Logger interface
type ZerologAdapter struct {
	logger *zerolog.Logger
}

func (z *ZerologAdapter) Debug(msg string) { z.logger.Debug().Msg(msg) }
func (z *ZerologAdapter) Info(msg string)  { z.logger.Info().Msg(msg) }
func (z *ZerologAdapter) Warn(msg string)  { z.logger.Warn().Msg(msg) }
func (z *ZerologAdapter) Error(msg string) { z.logger.Error().Msg(msg) }
func (z *ZerologAdapter) Fatal(msg string) { z.logger.Fatal().Msg(msg) }
func (z *ZerologAdapter) WithField(key string, value interface{}) Logger {
	newLogger := z.logger.With().Interface(key, value).Logger()
	return &ZerologAdapter{logger: &newLogger}
}
