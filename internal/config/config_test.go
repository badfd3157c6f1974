package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	for _, key := range []string{"MONGO_DB_NAME", "API_PORT", "INVOICE_DUE_IN_DAYS", "RATE_LIMIT_BUCKET_SIZE", "RATE_LIMIT_REFILL_RATE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "invoices", cfg.MongoDbName)
	assert.Equal(t, "3000", cfg.ApiPort)
	assert.Equal(t, 30, cfg.InvoiceDueInDays)
	assert.Equal(t, 20, cfg.RateLimitBucketSize)
	assert.Equal(t, 10, cfg.RateLimitRefillRate)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("MONGO_DB_NAME", "billing")
	t.Setenv("API_PORT", "8080")
	t.Setenv("INVOICE_DUE_IN_DAYS", "14")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "billing", cfg.MongoDbName)
	assert.Equal(t, "8080", cfg.ApiPort)
	assert.Equal(t, 14, cfg.InvoiceDueInDays)
}

func TestLoad_MissingMongoURI(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	os.Unsetenv("MONGO_URI")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")
}

func TestLoad_InvalidDueInDays(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("INVOICE_DUE_IN_DAYS", "soon")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "INVOICE_DUE_IN_DAYS")
}
