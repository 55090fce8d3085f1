// Package logger — централизованная обёртка над zap для всего приложения.
// Позволяет задать уровень, переназначить консольные потоки (stdout/stderr) на
// буферы readline и, при необходимости, продублировать записи в файл с ротацией
// (lumberjack). Использует zap.AtomicLevel и mutex для потокобезопасности.

package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// mu защищает глобальное состояние логгера от одновременных изменений.
	mu sync.Mutex
	// log — текущий экземпляр zap.Logger.
	log *zap.Logger
	// logLevel — динамический уровень консольного вывода.
	logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	// stdoutWriter — поток консольных логов.
	stdoutWriter = zapcore.Lock(zapcore.AddSync(os.Stdout))
	// stderrWriter — поток внутренних ошибок zap.
	stderrWriter = zapcore.Lock(zapcore.AddSync(os.Stderr))
	// fileWriter и fileLevel активны, только если задан LOG_FILE.
	fileWriter *lumberjack.Logger
	fileLevel  = zap.NewAtomicLevelAt(zap.DebugLevel)
)

// FileOptions описывает файловый вывод с ротацией.
type FileOptions struct {
	Path       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// consoleEncoderConfig — консольный encoder с цветами и коротким caller.
func consoleEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// fileEncoderConfig — то же без ANSI-цветов, чтобы файл читался grep'ом.
func fileEncoderConfig() zapcore.EncoderConfig {
	cfg := consoleEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// rebuildLoggerLocked пересоздаёт глобальный логгер. Вызывающий держит mu.
func rebuildLoggerLocked() {
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig()), stdoutWriter, logLevel),
	}
	if fileWriter != nil {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(fileEncoderConfig()),
			zapcore.AddSync(fileWriter),
			fileLevel,
		))
	}
	if log != nil {
		_ = log.Sync()
	}
	log = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1), zap.ErrorOutput(stderrWriter))
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// Init задаёт уровень консольного вывода: debug, info (по умолчанию), warn, error.
func Init(level string) {
	mu.Lock()
	defer mu.Unlock()

	logLevel.SetLevel(parseLevel(level))
	rebuildLoggerLocked()
}

// InitFile подключает файловый вывод с ротацией. Пустой Path отключает его.
func InitFile(opts FileOptions) {
	mu.Lock()
	defer mu.Unlock()

	if fileWriter != nil {
		_ = fileWriter.Close()
		fileWriter = nil
	}
	if strings.TrimSpace(opts.Path) != "" {
		fileWriter = &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		fileLevel.SetLevel(parseLevel(opts.Level))
	}
	rebuildLoggerLocked()
}

// SetWriters переназначает консольные потоки. Nil означает os.Stdout/os.Stderr.
func SetWriters(stdout, stderr io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	if stdout == nil {
		stdoutWriter = zapcore.Lock(zapcore.AddSync(os.Stdout))
	} else {
		stdoutWriter = zapcore.Lock(zapcore.AddSync(stdout))
	}
	if stderr == nil {
		stderrWriter = zapcore.Lock(zapcore.AddSync(os.Stderr))
	} else {
		stderrWriter = zapcore.Lock(zapcore.AddSync(stderr))
	}

	rebuildLoggerLocked()
}

// Close сбрасывает буферы и закрывает файловый вывод.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if log != nil {
		_ = log.Sync()
	}
	if fileWriter != nil {
		_ = fileWriter.Close()
	}
}

// Logger возвращает текущий zap.Logger, лениво создавая его при первом обращении.
func Logger() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()

	if log == nil {
		rebuildLoggerLocked()
	}
	return log
}

// IsDebugEnabled проверяет, включён ли debug хотя бы в одном из выводов.
func IsDebugEnabled() bool {
	return Logger().Core().Enabled(zap.DebugLevel)
}

// Debug пишет структурированное сообщение уровня Debug.
func Debug(msg string, fields ...zap.Field) { Logger().Debug(msg, fields...) }

// Info пишет структурированное сообщение уровня Info.
func Info(msg string, fields ...zap.Field) { Logger().Info(msg, fields...) }

// Warn пишет структурированное предупреждение уровня Warn.
func Warn(msg string, fields ...zap.Field) { Logger().Warn(msg, fields...) }

// Error пишет структурированное сообщение об ошибке уровня Error.
func Error(msg string, fields ...zap.Field) { Logger().Error(msg, fields...) }

// Debugf форматирует сообщение через fmt.Sprintf.
func Debugf(msg string, a ...any) { Logger().Debug(fmt.Sprintf(msg, a...)) }
