package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		AppName      string
		SecretKey    string
		RollbarToken string
		WorkDir      string

		Server   ServerConfig
		Database DatabaseConfig
		Cache    CacheConfig
		Grading  GradingConfig
	}

	ServerConfig struct {
		Host               string
		DebugHost          string
		ReadTimeout        time.Duration
		WriteTimeout       time.Duration
		ShutdownTimeout    time.Duration
		CORSOrigins        []string
		DisableReqLogs     bool
		AuthEnabled        bool
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string // postgres | mongodb | memory
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		MongoURI      string
		Timeout       time.Duration
	}

	CacheConfig struct {
		RedisAddr     string // caching is disabled when empty
		RedisPassword string
		RedisDB       int
		TTL           time.Duration
	}

	// GradingConfig holds the observation band cut points and the pass mark, all on the /10 scale.
	GradingConfig struct {
		BandA    float64
		BandB    float64
		BandC    float64
		PassMark float64
	}
)

const (
	EngineMemory   = "memory"
	EnginePostgres = "postgres"
	EngineMongo    = "mongodb"
)

func (dc DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", dc.Host, dc.Port)
}

// NewConfig loads the configuration of the current ENV (DEV by default) from the environment,
// falling back on `config/.env.<env>` and then on the defaults below.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Carnet")
	v.SetDefault("secretKey", "k2v#9q+x0=wdl$h5!r0s^ghn7c@f1p8&ezu)m4y*3b6t_(oa")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.corsOrigins", []string{"*"})
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("server.authEnabled", false)
	v.SetDefault("server.jwtExpirationDelta", 30*24*time.Hour)

	v.SetDefault("database.engine", EngineMemory)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "carnet")
	v.SetDefault("database.user", "carnet")
	v.SetDefault("database.password", "carnet")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.mongoURI", "mongodb://localhost:27017")
	v.SetDefault("database.timeout", 10*time.Second)

	v.SetDefault("cache.redisAddr", "")
	v.SetDefault("cache.redisPassword", "")
	v.SetDefault("cache.redisDB", 0)
	v.SetDefault("cache.ttl", 10*time.Minute)

	v.SetDefault("grading.bandA", 8.5)
	v.SetDefault("grading.bandB", 7.0)
	v.SetDefault("grading.bandC", 5.0)
	v.SetDefault("grading.passMark", 5.0)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("server.disableReqLogs", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		WorkDir:      wd,
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			DebugHost:          v.GetString("server.debugHost"),
			ReadTimeout:        v.GetDuration("server.readTimeout"),
			WriteTimeout:       v.GetDuration("server.writeTimeout"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			CORSOrigins:        v.GetStringSlice("server.corsOrigins"),
			DisableReqLogs:     v.GetBool("server.disableReqLogs"),
			AuthEnabled:        v.GetBool("server.authEnabled"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        strings.ToLower(v.GetString("database.engine")),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
			MongoURI:      v.GetString("database.mongoURI"),
			Timeout:       v.GetDuration("database.timeout"),
		},
		Cache: CacheConfig{
			RedisAddr:     v.GetString("cache.redisAddr"),
			RedisPassword: v.GetString("cache.redisPassword"),
			RedisDB:       v.GetInt("cache.redisDB"),
			TTL:           v.GetDuration("cache.ttl"),
		},
		Grading: GradingConfig{
			BandA:    v.GetFloat64("grading.bandA"),
			BandB:    v.GetFloat64("grading.bandB"),
			BandC:    v.GetFloat64("grading.bandC"),
			PassMark: v.GetFloat64("grading.passMark"),
		},
	}
}
