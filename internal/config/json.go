package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/gistvault/gistvault/internal/flagx"
	"github.com/gistvault/gistvault/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for the timeout field, which allows
// parsing both string values such as "10s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, its fields are copied into the
// runtime Config struct.
type JsonConfig struct {
	StoreBackend      string         `json:"store_backend"`
	DatabaseDSN       string         `json:"database_dsn"`
	S3AccessKey       string         `json:"s3_access_key"`
	S3SecretKey       string         `json:"s3_secret_key"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
	MaxBlobBytes      int64          `json:"max_blob_bytes"`
	PinHashIterations int            `json:"pin_hash_iterations"`
	InventoryPageSize int            `json:"inventory_page_size"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config flags; if
// neither is set, no JSON file is loaded. Unset fields keep their defaults.
// If the file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.StoreBackend != "" {
		config.StoreBackend = c.StoreBackend
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.S3AccessKey != "" {
		config.S3AccessKey = c.S3AccessKey
	}
	if c.S3SecretKey != "" {
		config.S3SecretKey = c.S3SecretKey
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.MaxBlobBytes > 0 {
		config.MaxBlobBytes = c.MaxBlobBytes
	}
	if c.PinHashIterations > 0 {
		config.PinHashIterations = c.PinHashIterations
	}
	if c.InventoryPageSize > 0 {
		config.InventoryPageSize = c.InventoryPageSize
	}
	if c.RequestTimeout.Duration > 0 {
		config.RequestTimeout = time.Duration(c.RequestTimeout.Duration)
	}
}
