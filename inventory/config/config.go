package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"github.com/Astemirdum/book-inventory/inventory/internal/repository"
	"github.com/Astemirdum/book-inventory/inventory/internal/scraper"
	"github.com/Astemirdum/book-inventory/pkg/kafka"
	"github.com/Astemirdum/book-inventory/pkg/logger"
	"github.com/Astemirdum/book-inventory/pkg/mongodb"
	"github.com/Astemirdum/book-inventory/pkg/openid"
	"github.com/Astemirdum/book-inventory/pkg/postgres"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"15s"`
	WriteTimeout time.Duration
}

type Storage struct {
	Driver string `yaml:"driver" envconfig:"STORAGE_DRIVER" default:"mongo"`
}

type Session struct {
	Secret string `yaml:"secret" envconfig:"SESSION_SECRET" json:"-"`
	Secure bool   `yaml:"secure" envconfig:"SESSION_SECURE"`
}

type Config struct {
	Server   HTTPServer     `yaml:"server"`
	Storage  Storage        `yaml:"storage"`
	Mongo    mongodb.Config `yaml:"mongo"`
	Postgres postgres.DB    `yaml:"postgres"`
	OAuth    openid.Config  `yaml:"oauth"`
	Session  Session        `yaml:"session"`
	Kafka    kafka.Config   `yaml:"kafka"`
	Scraper  scraper.Config `yaml:"scraper"`
	Log      logger.Log     `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
	})

	return cfg
}

// ValidateStorage checks that the selected store can be reached.
func (c *Config) ValidateStorage() error {
	switch c.Storage.Driver {
	case repository.DriverMongo:
		if c.Mongo.URI == "" {
			return mongodb.ErrNoURI
		}
	case repository.DriverPostgres:
		if c.Postgres.DSN == "" {
			return postgres.ErrNoDSN
		}
	default:
		return errors.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	return nil
}

// ValidateServer checks everything the HTTP server needs before it starts.
func (c *Config) ValidateServer() error {
	if err := c.ValidateStorage(); err != nil {
		return err
	}
	if c.OAuth.ClientID == "" || c.OAuth.ClientSecret == "" {
		return errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}
	if c.Session.Secret == "" {
		return errors.New("SESSION_SECRET must be set")
	}
	return nil
}

// String renders the config with credentials masked.
func (c *Config) String() string {
	masked := *c
	masked.Mongo.URI = mask(masked.Mongo.URI)
	masked.Postgres.DSN = mask(masked.Postgres.DSN)
	masked.OAuth.ClientSecret = mask(masked.OAuth.ClientSecret)
	jscfg, _ := json.MarshalIndent(masked, "", "	") //nolint:errcheck
	return string(jscfg)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return fmt.Sprintf("***(%d)", len(s))
}
