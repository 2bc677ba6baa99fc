package config

import "time"

// Catalog category ids as seeded in the store.
const (
	CategoryDrinks      int64 = 1
	CategorySportDrinks int64 = 2
	CategoryBreakfasts  int64 = 3
	CategoryStarters    int64 = 4
	CategorySeconds     int64 = 5
	CategorySnacks      int64 = 6
)

// Category names as stored. Starters double as the soups of the lunch menu.
const (
	CategoryNameStarters = "Entradas"
	CategoryNameSeconds  = "Segundos"
)

// UnstockedCategories are prepared dishes whose stock is not tracked.
var UnstockedCategories = []string{"Desayunos", "Entradas", "Segundos"}

const (
	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Dispatcher mailbox size per chat
	ChatMailboxSize = 32

	// Idle time after which a chat mailbox goroutine exits
	ChatMailboxIdle = 5 * time.Minute

	// Redis keys
	ProductNamesCacheKey = "mesabot:product_names"
	RateLimitKeyPrefix   = "mesabot:ratelimit:"

	// HTTP server
	ReadHeaderTimeout = 5 * time.Second
	ShutdownTimeout   = 10 * time.Second

	// Feedback author when the user has no username
	DefaultUserName = "Anonimo"
)

// RecommendationMarkers flag a generative reply that recommends products.
var RecommendationMarkers = []string{"recomiendo", "te sugiero", "prueba"}
