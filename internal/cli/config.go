package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/seamcarve/pkg/cache"
	errs "github.com/matzehuels/seamcarve/pkg/errors"
)

// Cache backends selectable in the config file.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendMongo = "mongo"
	backendNone  = "none"
)

// defaultAddr is the listen address of "seamcarve serve".
const defaultAddr = ":8080"

// Config mirrors the optional config.toml. Zero values mean "use the
// built-in default"; command-line flags that are set explicitly win over
// anything read from the file.
type Config struct {
	Carve  CarveConfig  `toml:"carve"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CarveConfig holds defaults for carve and energy runs.
type CarveConfig struct {
	Columns     *int   `toml:"columns"` // nil when unset; zero is a valid count
	Direction   string `toml:"direction"`
	Luma        string `toml:"luma"`
	Workers     int    `toml:"workers"`
	Format      string `toml:"format"`
	JPEGQuality int    `toml:"jpeg_quality"`
	MaxPixels   int    `toml:"max_pixels"`
}

// CacheConfig selects and configures the artifact cache.
type CacheConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// loadConfig reads the config file at path. An empty path selects the
// default location, where a missing file is not an error.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	md, err := toml.DecodeFile(path, cfg)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file not found: %s", path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Carve.Columns != nil {
		if err := errs.ValidateColumns(*c.Carve.Columns); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidColumns, err, "carve.columns")
		}
	}
	if c.Carve.MaxPixels < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "carve.max_pixels must not be negative: %d", c.Carve.MaxPixels)
	}
	switch c.Cache.Backend {
	case "", backendFile, backendRedis, backendMongo, backendNone:
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown cache backend %q (must be one of: file, redis, mongo, none)", c.Cache.Backend)
	}
	if c.Cache.Backend == backendRedis && c.Cache.RedisAddr == "" {
		return errs.New(errs.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
	}
	if c.Cache.Backend == backendMongo && c.Cache.MongoURI == "" {
		return errs.New(errs.ErrCodeInvalidInput, "cache.mongo_uri is required for the mongo backend")
	}
	return nil
}

// redisOptions converts the cache section for cache.NewRedisCache.
func (c CacheConfig) redisOptions() cache.RedisOptions {
	return cache.RedisOptions{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		Prefix:   appName + ":",
	}
}

// mongoOptions converts the cache section for cache.NewMongoCache.
func (c CacheConfig) mongoOptions() cache.MongoOptions {
	return cache.MongoOptions{
		URI:        c.MongoURI,
		Database:   c.MongoDatabase,
		Collection: c.MongoCollection,
	}
}

// serverAddr returns the configured listen address.
func (c *Config) serverAddr() string {
	if c.Server.Addr != "" {
		return c.Server.Addr
	}
	return defaultAddr
}
