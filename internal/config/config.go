package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/ivlev/slideshow/internal/logger"
)

// Config stores the application configuration. Load fills it from the
// environment (optionally via a .env file); command flags override it.
type Config struct {
	DeckPath string // deck YAML; empty means the newest file in DeckDir
	DeckDir  string
	MediaDir string // exported backgrounds, served under /media/

	Addr         string
	TickInterval time.Duration

	AutoPlay           bool
	IntersectionGate   bool
	SettleDelay        time.Duration
	TransitionDuration time.Duration
	SwipeThreshold     float64
	VerticalSwipe      bool
	WatchDeck          bool
	ReloadDebounce     time.Duration

	// deck building
	SlideDuration time.Duration
	Detector      string
	MaxWidth      int
	DPI           int
	QRURL         string // adds a closing QR slide when set

	LogLevel      string
	LogFile       string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogConsole    bool
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("750ms") or bare milliseconds ("750").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Millisecond
	}
	return fallback
}

// Load reads .env (if present; it never overrides the real environment)
// and returns the resulting configuration.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not load .env", logger.ErrorField(err))
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	return &Config{
		DeckPath: getEnv("SLIDESHOW_DECK", ""),
		DeckDir:  getEnv("SLIDESHOW_DECK_DIR", "decks"),
		MediaDir: getEnv("SLIDESHOW_MEDIA_DIR", "media"),

		Addr:         getEnv("SLIDESHOW_ADDR", ":8080"),
		TickInterval: getEnvDuration("SLIDESHOW_TICK", 50*time.Millisecond),

		AutoPlay:           getEnvBool("SLIDESHOW_AUTOPLAY", true),
		IntersectionGate:   getEnvBool("SLIDESHOW_INTERSECTION_GATE", false),
		SettleDelay:        getEnvDuration("SLIDESHOW_SETTLE_DELAY", 500*time.Millisecond),
		TransitionDuration: getEnvDuration("SLIDESHOW_TRANSITION", 600*time.Millisecond),
		SwipeThreshold:     getEnvFloat("SLIDESHOW_SWIPE_THRESHOLD", 50),
		VerticalSwipe:      getEnvBool("SLIDESHOW_VERTICAL_SWIPE", false),
		WatchDeck:          getEnvBool("SLIDESHOW_WATCH", true),
		ReloadDebounce:     getEnvDuration("SLIDESHOW_RELOAD_DEBOUNCE", 200*time.Millisecond),

		SlideDuration: getEnvDuration("SLIDESHOW_SLIDE_DURATION", 5*time.Second),
		Detector:      getEnv("SLIDESHOW_DETECTOR", "contrast"),
		MaxWidth:      getEnvInt("SLIDESHOW_MAX_WIDTH", 1920),
		DPI:           getEnvInt("SLIDESHOW_DPI", 150),
		QRURL:         getEnv("SLIDESHOW_QR_URL", ""),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", "logs/slideshow.log"),
		LogMaxSize:    getEnvInt("LOG_MAX_SIZE", 50),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAge:     getEnvInt("LOG_MAX_AGE", 14),
		LogConsole:    getEnvBool("LOG_CONSOLE", false),
	}
}

// Logger converts the logging fields into a logger configuration.
func (c *Config) Logger() logger.Config {
	return logger.Config{
		Level:      logger.LogLevel(c.LogLevel),
		OutputPath: c.LogFile,
		MaxSize:    c.LogMaxSize,
		MaxBackups: c.LogMaxBackups,
		MaxAge:     c.LogMaxAge,
		Compress:   true,
		Console:    c.LogConsole,
	}
}
