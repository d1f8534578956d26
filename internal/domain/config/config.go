package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
	domainerr "github.com/sayeems/pcc-test-sdk/internal/domain/errors"
)

type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Build   BuildConfig   `yaml:"build"`
	Log     LogConfig     `yaml:"log"`
}

type SiteConfig struct {
	Title          string   `yaml:"title"`
	SiteURL        string   `yaml:"site_url"`
	Description    string   `yaml:"description"`
	ImageFields    []string `yaml:"image_fields"`
	FallbackImages []string `yaml:"fallback_images"`
	Language       string   `yaml:"language"`
}

type SourceKind string

const (
	SourcePCC   SourceKind = "pcc"
	SourceFiles SourceKind = "files"
)

type ContentConfig struct {
	Source                 SourceKind              `yaml:"source"`
	Endpoint               string                  `yaml:"endpoint"`
	SiteID                 string                  `yaml:"site_id"`
	Token                  string                  `yaml:"token"`
	SourceDir              string                  `yaml:"source_dir"`
	DefaultPublishingLevel content.PublishingLevel `yaml:"default_publishing_level"`
	Timeout                time.Duration           `yaml:"timeout"`
}

type BuildConfig struct {
	PublicDir        string `yaml:"public_dir"`
	ThemeDir         string `yaml:"theme_dir"`
	IndexPath        string `yaml:"index_path"`
	ArticlesBasePath string `yaml:"articles_base_path"`
	StaticBasePath   string `yaml:"static_base_path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

const DefaultDescription = "Article hosted using Pantheon Content Cloud"

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title:       "Pantheon Content Cloud",
			SiteURL:     "http://localhost:8080",
			Description: DefaultDescription,
			ImageFields: []string{"Hero Image"},
			Language:    "en",
		},
		Content: ContentConfig{
			Source:                 SourcePCC,
			Endpoint:               "https://gql.prod.pcc.pantheon.io",
			SourceDir:              "content",
			DefaultPublishingLevel: content.LevelProduction,
			Timeout:                30 * time.Second,
		},
		Build: BuildConfig{
			PublicDir:        "public",
			IndexPath:        ".pccsite/paths.db",
			ArticlesBasePath: "/articles",
			StaticBasePath:   "/examples/ssg-isr",
		},
		Log: LogConfig{Level: "info"},
	}
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.Title) == "" {
		ve.Add("site.title", "must not be empty")
	}
	if strings.TrimSpace(c.Site.SiteURL) == "" {
		ve.Add("site.site_url", "must not be empty")
	} else if !isValidAbsURL(c.Site.SiteURL) {
		ve.Add("site.site_url", "must be a valid absolute URL")
	}

	switch c.Content.Source {
	case SourcePCC:
		if !isValidAbsURL(c.Content.Endpoint) {
			ve.Add("content.endpoint", "must be a valid absolute URL")
		}
		if strings.TrimSpace(c.Content.SiteID) == "" {
			ve.Add("content.site_id", "must not be empty")
		}
	case SourceFiles:
		if strings.TrimSpace(c.Content.SourceDir) == "" {
			ve.Add("content.source_dir", "must not be empty")
		}
	default:
		ve.Addf("content.source", "%q must be 'pcc' or 'files'", c.Content.Source)
	}
	if _, err := content.ParseLevel(string(c.Content.DefaultPublishingLevel), content.LevelProduction); err != nil {
		ve.Addf("content.default_publishing_level", "%q must be PRODUCTION or REALTIME", c.Content.DefaultPublishingLevel)
	}
	if c.Content.Timeout < 0 {
		ve.Add("content.timeout", "must not be negative")
	}

	if strings.TrimSpace(c.Build.PublicDir) == "" {
		ve.Add("build.public_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.IndexPath) == "" {
		ve.Add("build.index_path", "must not be empty")
	}
	checkBasePath(&ve, "build.articles_base_path", c.Build.ArticlesBasePath)
	checkBasePath(&ve, "build.static_base_path", c.Build.StaticBasePath)

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		ve.Addf("log.level", "%q must be one of: debug, info, warn, error", c.Log.Level)
	}

	if ve.HasAny() {
		return ve
	}
	return nil
}

func checkBasePath(ve *domainerr.ValidationError, field, bp string) {
	bp = strings.TrimSpace(bp)
	if bp == "" {
		ve.Add(field, "must not be empty")
		return
	}
	if !strings.HasPrefix(bp, "/") {
		ve.Add(field, "must start with '/'")
	}
	if strings.HasSuffix(bp, "/") && bp != "/" {
		ve.Add(field, "must not end with '/'")
	}
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// applyEnv fills credentials left empty in the file from the environment
// and normalizes the publishing level.
func (c *Config) applyEnv() {
	if c.Content.Token == "" {
		c.Content.Token = os.Getenv("PCC_TOKEN")
	}
	if c.Content.SiteID == "" {
		c.Content.SiteID = os.Getenv("PCC_SITE_ID")
	}
	c.Content.DefaultPublishingLevel = content.PublishingLevel(strings.ToUpper(strings.TrimSpace(string(c.Content.DefaultPublishingLevel))))
}

func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	// fields present in the file override the defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func LoadOrDefault(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			if err := cfg.Validate(); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
