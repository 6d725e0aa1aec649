package config

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/davecgh/go-spew/spew"
	"github.com/joho/godotenv"
)

// ConfigStruct is the glue for all configuration sections
type ConfigStruct struct {
	Common   Common   `toml:"common"`
	Database Database `toml:"database"`
	Storage  Storage  `toml:"storage"`
	API      API      `toml:"api"`
}

// Common is the data required for all services
type Common struct {
	LogDir    string `toml:"log_dir"`
	FlagsPath string `toml:"flags_path"`
	Debug     bool   `toml:"debug"`
}

// Database is the data required to establish a PostgreSQL connection
type Database struct {
	DSN      string `toml:"dsn"`
	MaxConns int32  `toml:"max_conns"`
}

// Storage describes the S3-compatible bucket images are uploaded to
type Storage struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	Bucket    string `toml:"bucket"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`

	// PublicBaseURL, when set, is prefixed to object keys instead of presigning.
	PublicBaseURL string        `toml:"public_base_url"`
	PresignExpiry time.Duration `toml:"presign_expiry"`
}

type API struct {
	AdminToken    string   `toml:"admin_token"`
	DraftAPIKey   string   `toml:"draft_api_key"`
	AllowedOrigin []string `toml:"allowed_origins"`
}

// C represents the loaded config
var C = ConfigStruct{
	Common: Common{
		LogDir:    "/data/inkwell/logs",
		FlagsPath: "/data/inkwell/flags.json",
	},
	Storage: Storage{
		Bucket: "inkwell",
		UseSSL: true,
	},
}

// Load decodes the toml file at path into C and applies environment overrides on top.
// A missing file is not an error, the environment alone may configure the server.
func Load(path string) error {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			md, err := toml.DecodeFile(path, &C)
			if err != nil {
				return fmt.Errorf("couldn't decode config: %w", err)
			}
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				slog.Warn("There were a few undecoded keys", slog.String("keys", spew.Sdump(undecoded)))
			}
		}
	}
	return LoadEnv(&C)
}

// LoadEnv reads a .env file if present, then lets INKWELL_* variables override secrets in c.
func LoadEnv(c *ConfigStruct) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("couldn't load .env: %w", err)
	}

	c.Database.DSN = cmp.Or(os.Getenv("INKWELL_DB_DSN"), c.Database.DSN)

	c.Storage.Endpoint = cmp.Or(os.Getenv("INKWELL_S3_ENDPOINT"), c.Storage.Endpoint)
	c.Storage.Region = cmp.Or(os.Getenv("INKWELL_S3_REGION"), c.Storage.Region)
	c.Storage.Bucket = cmp.Or(os.Getenv("INKWELL_S3_BUCKET"), c.Storage.Bucket)
	c.Storage.AccessKey = cmp.Or(os.Getenv("INKWELL_S3_ACCESS_KEY"), c.Storage.AccessKey)
	c.Storage.SecretKey = cmp.Or(os.Getenv("INKWELL_S3_SECRET_KEY"), c.Storage.SecretKey)
	c.Storage.PublicBaseURL = cmp.Or(os.Getenv("INKWELL_S3_PUBLIC_URL"), c.Storage.PublicBaseURL)
	if v := os.Getenv("INKWELL_S3_USE_SSL"); v != "" {
		ssl, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid INKWELL_S3_USE_SSL: %w", err)
		}
		c.Storage.UseSSL = ssl
	}

	c.API.AdminToken = cmp.Or(os.Getenv("INKWELL_ADMIN_TOKEN"), c.API.AdminToken)
	c.API.DraftAPIKey = cmp.Or(os.Getenv("INKWELL_DRAFT_API_KEY"), c.API.DraftAPIKey)
	return nil
}
