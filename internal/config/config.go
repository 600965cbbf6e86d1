package config

import (
	"os"
	"strconv"
	"strings"

	"wallethunter/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DBPath      string
	BotToken    string
	AdminAPIKey string
	AdminIDs    []int64 // telegram ids allowed to use admin commands

	// WebApp URLs opened from the bot menu
	WalletHunterURL string
	DominoURL       string

	// CORS
	CORSAllowedOrigins []string

	// Optional Redis-backed rate limiting for the public API
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	APIRateLimit  int
	APIRateWindow int // seconds

	LogLevel string
	LogJSON  bool
}

// Load reads configuration from the environment. RequireBotToken is set by the
// bot process; the API server can run without a token.
func Load(requireBotToken bool) *Config {
	_ = godotenv.Load()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "bot.db"
	}

	botToken := os.Getenv("BOT_TOKEN")
	if requireBotToken && botToken == "" {
		logger.Fatal("BOT_TOKEN is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	walletHunterURL := os.Getenv("WALLETHUNTER_WEBAPP_URL")
	if walletHunterURL == "" {
		walletHunterURL = "https://kozanostro.github.io/wallet-hunter-miniapp/?v=1"
	}

	dominoURL := os.Getenv("DOMINO_WEBAPP_URL")
	if dominoURL == "" {
		dominoURL = "https://kozanostro.github.io/miniapp/?v=21"
	}

	var origins []string
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"https://kozanostro.github.io"}
	}

	var adminIDs []int64
	for _, idStr := range strings.Split(os.Getenv("ADMIN_IDS"), ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			adminIDs = append(adminIDs, id)
		}
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	apiRateLimit := 60
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateLimit = n
		}
	}

	apiRateWindow := 60
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateWindow = n
		}
	}

	return &Config{
		AppPort:            port,
		DBPath:             dbPath,
		BotToken:           botToken,
		AdminAPIKey:        strings.TrimSpace(os.Getenv("ADMIN_API_KEY")),
		AdminIDs:           adminIDs,
		WalletHunterURL:    walletHunterURL,
		DominoURL:          dominoURL,
		CORSAllowedOrigins: origins,
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            redisDB,
		APIRateLimit:       apiRateLimit,
		APIRateWindow:      apiRateWindow,
		LogLevel:           os.Getenv("LOG_LEVEL"),
		LogJSON:            os.Getenv("LOG_JSON") == "true",
	}
}
