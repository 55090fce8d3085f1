// Пакет config собирает конфигурацию запуска утилиты чистки чатов.
// Он:
//  1. читает переменные окружения из .env (через godotenv), если файл есть,
//  2. нормализует и валидирует значения, подставляя дефолты для необязательных,
//  3. копит предупреждения о подставленных дефолтах, чтобы вывести их после
//     инициализации логгера.
//
// Результат — неизменяемое значение Config, которое явно передаётся в приложение.
// Глобального состояния пакет не держит.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

// EnvConfig описывает параметры, приходящие из окружения (.env): учётные данные
// MTProto, файл сессии, ключевое слово папок, темп операций, логирование.
type EnvConfig struct {
	APIID             int
	APIHash           string
	PhoneNumber       string
	SessionFile       string
	FolderKeyword     string
	ActionDelay       time.Duration
	ConnectionRetries int
	ThrottleRPS       int
	FloodWaitEnable   bool
	AllowEmptyKeep    bool
	TestDC            bool
	JournalFile       string
	LogLevel          string
	// Файловое логирование
	LogFile           string
	LogFileLevel      string
	LogFileMaxSize    int
	LogFileMaxBackups int
	LogFileMaxAge     int
	LogFileCompress   bool
}

// Config — снимок конфигурации и предупреждения, накопленные при чтении.
type Config struct {
	Env      EnvConfig
	warnings []string
}

// Значения по умолчанию.
const (
	defaultSessionFile       = "session.txt"
	defaultFolderKeyword     = "keep"
	defaultActionDelayMS     = 1000
	defaultConnectionRetries = 5
	defaultThrottleRPS       = 10
	defaultLogLevel          = "info"
	// Файловое логирование (LOG_FILE не имеет дефолта - должен быть явно указан для активации)
	defaultLogFileLevel      = "debug"
	defaultLogFileMaxSize    = 50
	defaultLogFileMaxBackups = 3
	defaultLogFileMaxAge     = 7
	defaultLogFileCompress   = true
)

// Load читает .env по пути envPath (отсутствие файла — лишь предупреждение) и
// собирает Config из окружения процесса.
func Load(envPath string) (*Config, error) {
	var warnings []string

	if path := strings.TrimSpace(envPath); path != "" {
		if err := godotenv.Load(path); err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.Wrap(err, "failed to load .env")
			}
			appendWarningf(&warnings, ".env file %q not found; using process environment", path)
		}
	}

	return fromEnv(warnings)
}

// fromEnv выполняет фактическую валидацию без чтения файлов. Удобно для тестов.
func fromEnv(warnings []string) (*Config, error) {
	apiID, err := parseRequiredInt("API_ID")
	if err != nil {
		return nil, err
	}

	apiHash := strings.TrimSpace(os.Getenv("API_HASH"))
	if apiHash == "" {
		return nil, errors.New("env API_HASH must be set")
	}

	phone := strings.TrimSpace(os.Getenv("PHONE_NUMBER"))
	if phone == "" {
		return nil, errors.New("env PHONE_NUMBER must be set")
	}

	sessionFile := sanitizeString("SESSION_FILE", defaultSessionFile, &warnings)
	keyword := sanitizeString("FOLDER_KEYWORD", defaultFolderKeyword, &warnings)
	delayMS := parseIntDefault("ACTION_DELAY_MS", defaultActionDelayMS, nonNegative, &warnings)
	retries := parseIntDefault("CONNECTION_RETRIES", defaultConnectionRetries, greaterThanZero, &warnings)
	throttleRPS := parseIntDefault("THROTTLE_RPS", defaultThrottleRPS, greaterThanZero, &warnings)
	floodWait := parseBoolDefault("FLOOD_WAIT_ENABLE", false, &warnings)
	allowEmpty := parseBoolDefault("ALLOW_EMPTY_KEEP", false, &warnings)
	testDC := strings.EqualFold(strings.TrimSpace(os.Getenv("TEST_DC")), "true")
	journalFile := strings.TrimSpace(os.Getenv("JOURNAL_FILE"))
	logLevel := sanitizeLogLevel("LOG_LEVEL", defaultLogLevel, &warnings)
	logFile := strings.TrimSpace(os.Getenv("LOG_FILE"))
	logFileLevel := sanitizeLogLevel("LOG_FILE_LEVEL", defaultLogFileLevel, &warnings)
	logFileMaxSize := parseIntDefault("LOG_FILE_MAX_SIZE_MB", defaultLogFileMaxSize, greaterThanZero, &warnings)
	logFileMaxBackups := parseIntDefault("LOG_FILE_MAX_BACKUPS", defaultLogFileMaxBackups, nonNegative, &warnings)
	logFileMaxAge := parseIntDefault("LOG_FILE_MAX_AGE_DAYS", defaultLogFileMaxAge, nonNegative, &warnings)
	logFileCompress := parseBoolDefault("LOG_FILE_COMPRESS", defaultLogFileCompress, &warnings)

	env := EnvConfig{
		APIID:             apiID,
		APIHash:           apiHash,
		PhoneNumber:       phone,
		SessionFile:       sessionFile,
		FolderKeyword:     keyword,
		ActionDelay:       time.Duration(delayMS) * time.Millisecond,
		ConnectionRetries: retries,
		ThrottleRPS:       throttleRPS,
		FloodWaitEnable:   floodWait,
		AllowEmptyKeep:    allowEmpty,
		TestDC:            testDC,
		JournalFile:       journalFile,
		LogLevel:          logLevel,
		LogFile:           logFile,
		LogFileLevel:      logFileLevel,
		LogFileMaxSize:    logFileMaxSize,
		LogFileMaxBackups: logFileMaxBackups,
		LogFileMaxAge:     logFileMaxAge,
		LogFileCompress:   logFileCompress,
	}

	return &Config{Env: env, warnings: warnings}, nil
}

// GetEnv возвращает копию EnvConfig.
func (c *Config) GetEnv() EnvConfig {
	return c.Env
}

// Warnings возвращает копию накопленных предупреждений.
func (c *Config) Warnings() []string {
	result := make([]string, len(c.warnings))
	copy(result, c.warnings)
	return result
}

// parseRequiredInt читает обязательную целочисленную переменную окружения name.
func parseRequiredInt(name string) (int, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return 0, errors.Errorf("env %s must be set", name)
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "env %s must be a valid integer", name)
	}
	return v, nil
}

// parseIntDefault читает name как int. Если пусто/некорректно/не проходит
// validator — возвращает defaultVal и пишет предупреждение.
func parseIntDefault(name string, defaultVal int, validator func(int) bool, warnings *[]string) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		appendWarningf(warnings, "env %s is not set; using default %d", name, defaultVal)
		return defaultVal
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		appendWarningf(warnings, "env %s value %q is not a valid integer; using default %d", name, value, defaultVal)
		return defaultVal
	}
	if validator != nil && !validator(v) {
		appendWarningf(warnings, "env %s value %d does not satisfy constraints; using default %d", name, v, defaultVal)
		return defaultVal
	}
	return v
}

// parseBoolDefault читает name как bool. Пустое значение молча даёт defaultVal,
// некорректное — defaultVal с предупреждением.
func parseBoolDefault(name string, defaultVal bool, warnings *[]string) bool {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return defaultVal
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		appendWarningf(warnings, "env %s value %q is not a valid boolean; using default %v", name, value, defaultVal)
		return defaultVal
	}
	return v
}

// sanitizeLogLevel ограничивает значения набором {debug, info, warn, error}.
func sanitizeLogLevel(name, defaultVal string, warnings *[]string) string {
	raw := os.Getenv(name)
	lvl := strings.ToLower(strings.TrimSpace(raw))
	if lvl == "" {
		return defaultVal
	}
	switch lvl {
	case "debug", "info", "warn", "error":
		return lvl
	default:
		appendWarningf(warnings, "env %s value %q is invalid; using default %q", name, raw, defaultVal)
		return defaultVal
	}
}

// sanitizeString возвращает непустое значение переменной или fallback с предупреждением.
func sanitizeString(name, fallback string, warnings *[]string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		appendWarningf(warnings, "env %s is not set; using default %q", name, fallback)
		return fallback
	}
	return v
}

func appendWarningf(warnings *[]string, format string, args ...any) {
	if warnings == nil {
		return
	}
	*warnings = append(*warnings, fmt.Sprintf(format, args...))
}

func greaterThanZero(v int) bool { return v > 0 }
func nonNegative(v int) bool     { return v >= 0 }
