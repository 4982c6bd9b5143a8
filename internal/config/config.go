package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"storefront/internal/pricing"
)

var AppEnv Config

type Config struct {
	Environment   string
	Port          string
	MongoURI      string
	DBName        string
	JWTSecret     string
	ShippingRates pricing.Rates
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		Environment:   getEnvOrDefault("APP_ENV", "development"),
		Port:          getEnvOrDefault("PORT", "8080"),
		MongoURI:      getEnvOrDefault("MONGO_URI", ""),
		DBName:        getEnvOrDefault("DB_NAME", "storefront"),
		JWTSecret:     getEnvOrDefault("JWT_SECRET", ""),
		ShippingRates: getShippingRates("SHIPPING_RATES"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getShippingRates parses "method:cost,method:cost" pairs, e.g.
// "inside-dhaka:80,outside-dhaka:130". Malformed pairs are skipped with a
// warning; an empty or fully malformed value falls back to the defaults.
func getShippingRates(key string) pricing.Rates {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return pricing.DefaultRates()
	}

	rates := pricing.Rates{}
	for _, pair := range strings.Split(value, ",") {
		method, costStr, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			log.Printf("%s: skipping malformed pair %q", key, pair)
			continue
		}
		cost, err := strconv.ParseFloat(strings.TrimSpace(costStr), 64)
		if err != nil || cost < 0 {
			log.Printf("%s: skipping invalid cost in %q", key, pair)
			continue
		}
		rates[strings.TrimSpace(method)] = cost
	}
	if len(rates) == 0 {
		return pricing.DefaultRates()
	}
	return rates
}
