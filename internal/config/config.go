package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`

	// DataDir holds the JSON snapshots (categorias.json, pagos.json) and
	// the optional aref.json surcharge file.
	DataDir string `yaml:"data_dir" env-default:"./data"`

	// RulePack overrides the embedded rule definitions when set.
	RulePack string `yaml:"rule_pack" env:"RULE_PACK"`

	StaticDir string `yaml:"static_dir" env-default:"./static"`

	ScrapeURL     string        `yaml:"scrape_url" env-default:"https://www.afip.gob.ar/monotributo/categorias.asp"`
	ScrapeTimeout time.Duration `yaml:"scrape_timeout" env-default:"20s"`

	// SessionTTL bounds memory: sessions idle longer than this are
	// evicted.
	SessionTTL time.Duration `yaml:"session_ttl" env-default:"30m"`

	CORSOrigins []string `yaml:"cors_origins" env-default:"http://localhost:5173"`

	AdminLogin string `yaml:"admin_login" env:"ADMIN_LOGIN" env-default:"admin"`
	AdminPass  string `yaml:"admin_pass" env:"ADMIN_PASS" env-required:"true"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:8000"`
	Timeout     time.Duration `yaml:"timeout" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

func MustConfig() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/local.yaml"
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config %s: %s", configPath, err)
	}

	return &cfg
}
