// Package config loads hjortron.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config contains directory, window, audio and catalog settings. It is
// read once at startup and not modified afterwards.
type Config struct {
	Directories Directories      `mapstructure:"directories"`
	Catalog     CatalogConfig    `mapstructure:"catalog"`
	Video       VideoConfig      `mapstructure:"video"`
	Audio       AudioConfig      `mapstructure:"audio"`
	Transition  TransitionConfig `mapstructure:"transition"`

	v *viper.Viper
}

type Directories struct {
	Cores  string `mapstructure:"cores"`
	ROMs   string `mapstructure:"roms"`
	System string `mapstructure:"system"`
	Saves  string `mapstructure:"saves"`
	States string `mapstructure:"states"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type VideoConfig struct {
	Title      string `mapstructure:"title"`
	Scale      int    `mapstructure:"scale"`
	Fullscreen bool   `mapstructure:"fullscreen"`
	Width      int    `mapstructure:"width"`
	Height     int    `mapstructure:"height"`
}

type AudioConfig struct {
	SampleRate int           `mapstructure:"sample_rate"`
	Buffer     time.Duration `mapstructure:"buffer"`
	Disabled   bool          `mapstructure:"disabled"`
}

type TransitionConfig struct {
	Duration time.Duration `mapstructure:"duration"`
}

// EnvPrefix is the prefix of environment overrides, e.g. HJORTRON_DIRECTORIES_ROMS.
const EnvPrefix = "HJORTRON"

func setDefaults(v *viper.Viper) {
	data := dataDir()
	v.SetDefault("directories.cores", "/usr/lib/libretro")
	v.SetDefault("directories.roms", "~/Games/emulation")
	v.SetDefault("directories.system", filepath.Join(data, "system"))
	v.SetDefault("directories.saves", filepath.Join(data, "saves"))
	v.SetDefault("directories.states", filepath.Join(data, "states"))
	v.SetDefault("catalog.path", filepath.Join(data, "hjortron.db"))
	v.SetDefault("video.title", "hjortron")
	v.SetDefault("video.scale", 2)
	v.SetDefault("video.fullscreen", false)
	v.SetDefault("video.width", 640)
	v.SetDefault("video.height", 480)
	v.SetDefault("audio.sample_rate", 48000)
	v.SetDefault("audio.buffer", 40*time.Millisecond)
	v.SetDefault("audio.disabled", false)
	v.SetDefault("transition.duration", 500*time.Millisecond)
}

func dataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "hjortron")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "hjortron")
}

// Load reads configuration from path, or from HJORTRON_CONFIG, or from
// hjortron.toml in the working directory or ~/.config/hjortron. A missing
// file is not an error unless it was named explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hjortron")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "hjortron"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	c := &Config{v: v}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Defaults()
	return c, nil
}

// Defaults fills missing fields and expands ~ in directories.
func (c *Config) Defaults() {
	d := &c.Directories
	for _, p := range []*string{&d.Cores, &d.ROMs, &d.System, &d.Saves, &d.States, &c.Catalog.Path} {
		*p = ExpandHome(*p)
	}
	if c.Video.Title == "" {
		c.Video.Title = "hjortron"
	}
	if c.Video.Scale <= 0 {
		c.Video.Scale = 1
	}
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		c.Video.Width, c.Video.Height = 640, 480
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = 48000
	}
	if c.Audio.Buffer <= 0 {
		c.Audio.Buffer = 40 * time.Millisecond
	}
	if c.Transition.Duration < 0 {
		c.Transition.Duration = 0
	}
}

// ExpandHome replaces a leading ~ with the home directory.
func ExpandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		return filepath.Join(os.Getenv("HOME"), strings.TrimPrefix(p, "~"))
	}
	return p
}

// Key converts a slash path such as /hjortron/directories/roms to the dotted
// viper key directories.roms. Dotted keys are returned unchanged.
func Key(pathKey string) string {
	if !strings.HasPrefix(pathKey, "/") {
		return strings.ToLower(pathKey)
	}
	parts := strings.Split(strings.Trim(pathKey, "/"), "/")
	if len(parts) > 0 && parts[0] == "hjortron" {
		parts = parts[1:]
	}
	return strings.ToLower(strings.Join(parts, "."))
}

// Get returns the string at pathKey, or def when the key is unset.
func (c *Config) Get(pathKey, def string) string {
	if c == nil || c.v == nil {
		return def
	}
	k := Key(pathKey)
	if !c.v.IsSet(k) {
		return def
	}
	return c.v.GetString(k)
}

// CoreKey normalises a core name for use as a table name: lower case with
// runs of other characters replaced by _.
func CoreKey(name string) string {
	var b strings.Builder
	under := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			under = false
			continue
		}
		if !under && b.Len() > 0 {
			b.WriteByte('_')
			under = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// CoreOptions returns the variable overrides under [cores.<core>].
func (c *Config) CoreOptions(core string) map[string]string {
	if c == nil || c.v == nil {
		return nil
	}
	return c.v.GetStringMapString("cores." + CoreKey(core))
}
