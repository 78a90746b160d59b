package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"8080"`
		Host         string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" default:"60s"`
	} `yaml:"server"`

	Catalog struct {
		BaseURL     string `yaml:"base_url" default:"https://www.bestbuy.ca"`
		CategoryURL string `yaml:"category_url"`
		Category    string `yaml:"category" default:"Laptops"`
		TitleMarker string `yaml:"title_marker" default:"best buy"`
		MaxProducts int    `yaml:"max_products" default:"15"`
	} `yaml:"catalog"`

	Scraper struct {
		Engine          string        `yaml:"engine" default:"auto"` // headed, static, auto
		UserAgent       string        `yaml:"user_agent"`
		MaxRetries      int           `yaml:"max_retries" default:"3"`
		RequestTimeout  time.Duration `yaml:"request_timeout" default:"30s"`
		ContentTimeout  time.Duration `yaml:"content_timeout" default:"15s"`
		SelectorTimeout time.Duration `yaml:"selector_timeout" default:"10s"`
		HeadlessMode    bool          `yaml:"headless_mode" default:"true"`
		StealthMode     bool          `yaml:"stealth_mode" default:"true"`
		ScrollBudget    int           `yaml:"scroll_budget" default:"10"`
		Captcha         struct {
			Provider        string        `yaml:"provider" default:"2captcha"`
			APIKey          string        `yaml:"api_key"`
			Timeout         time.Duration `yaml:"timeout" default:"120s"`
			EnableAutoSolve bool          `yaml:"enable_auto_solve" default:"false"`
		} `yaml:"captcha"`
	} `yaml:"scraper"`

	LLM struct {
		Provider     string        `yaml:"provider" default:"groq"`
		APIKey       string        `yaml:"api_key"`
		APIURL       string        `yaml:"api_url" default:"https://api.groq.com/openai/v1/chat/completions"`
		Model        string        `yaml:"model" default:"llama-3.3-70b-versatile"`
		Timeout      time.Duration `yaml:"timeout" default:"45s"`
		RateLimit    int           `yaml:"rate_limit" default:"30"` // requests per minute
		DisableCalls bool          `yaml:"disable_calls" default:"false"`
	} `yaml:"llm"`

	Storage struct {
		FilePath string `yaml:"file_path" default:"products_database.json"`
	} `yaml:"storage"`

	Redis struct {
		URL      string        `yaml:"url"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
	} `yaml:"redis"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	// Expand ${VAR} syntax
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1] // Remove ${ and }
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if env var not found
	})

	// Expand $VAR syntax (but avoid replacing ${VAR} that was already processed)
	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:] // Remove $
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if env var not found
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second

	config.Catalog.BaseURL = "https://www.bestbuy.ca"
	config.Catalog.CategoryURL = "https://www.bestbuy.ca/en-ca/category/laptops/20352"
	config.Catalog.Category = "Laptops"
	config.Catalog.TitleMarker = "best buy"
	config.Catalog.MaxProducts = 15

	config.Scraper.Engine = "auto"
	config.Scraper.MaxRetries = 3
	config.Scraper.RequestTimeout = 30 * time.Second
	config.Scraper.ContentTimeout = 15 * time.Second
	config.Scraper.SelectorTimeout = 10 * time.Second
	config.Scraper.HeadlessMode = true
	config.Scraper.StealthMode = true
	config.Scraper.ScrollBudget = 10

	config.Scraper.Captcha.Provider = "2captcha"
	config.Scraper.Captcha.Timeout = 120 * time.Second
	config.Scraper.Captcha.EnableAutoSolve = false

	config.LLM.Provider = "groq"
	config.LLM.APIURL = "https://api.groq.com/openai/v1/chat/completions"
	config.LLM.Model = "llama-3.3-70b-versatile"
	config.LLM.Timeout = 45 * time.Second
	config.LLM.RateLimit = 30

	config.Storage.FilePath = "products_database.json"

	config.Redis.DB = 0
	config.Redis.Timeout = 5 * time.Second

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.Output = "stdout"

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			// Expand environment variables in the YAML content
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	// Also support GROQ_API_KEY for compatibility with the original deployment
	if apiKey := os.Getenv("GROQ_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if apiURL := os.Getenv("LLM_API_URL"); apiURL != "" {
		c.LLM.APIURL = apiURL
	}

	if categoryURL := os.Getenv("CATALOG_CATEGORY_URL"); categoryURL != "" {
		c.Catalog.CategoryURL = categoryURL
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if captchaAPIKey := os.Getenv("CAPTCHA_API_KEY"); captchaAPIKey != "" {
		c.Scraper.Captcha.APIKey = captchaAPIKey
	}

	// Also support 2CAPTCHA_API_KEY for compatibility
	if captchaAPIKey := os.Getenv("2CAPTCHA_API_KEY"); captchaAPIKey != "" {
		c.Scraper.Captcha.APIKey = captchaAPIKey
	}

	if storagePath := os.Getenv("STORAGE_FILE_PATH"); storagePath != "" {
		c.Storage.FilePath = storagePath
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}
}
