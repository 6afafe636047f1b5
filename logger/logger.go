package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  = logrus.New()
	WarnLogger  = logrus.New()
	ErrorLogger = logrus.New()
)

// InitLoggers attaches rotating file outputs to the package loggers.
// Before this is called the loggers write to stderr only, which is what
// tests rely on.
func InitLoggers() {
	InfoLogger.SetLevel(logrus.InfoLevel)
	WarnLogger.SetLevel(logrus.WarnLevel)
	ErrorLogger.SetLevel(logrus.ErrorLevel)

	InfoLogger.SetOutput(newOutput("logs/info.log"))
	WarnLogger.SetOutput(newOutput("logs/warn.log"))
	ErrorLogger.SetOutput(newOutput("logs/error.log"))

	formatter := &logrus.TextFormatter{FullTimestamp: true}
	InfoLogger.SetFormatter(formatter)
	WarnLogger.SetFormatter(formatter)
	ErrorLogger.SetFormatter(formatter)
}

func newOutput(filename string) io.Writer {
	rotator := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	return io.MultiWriter(os.Stdout, rotator)
}
