package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the layout of dates in the config file
const DateLayout = "2006-01-02"

// Config holds the application configuration
type Config struct {
	DataDir       string     `yaml:"data_dir,omitempty"`   // Directory holding the input CSV files
	OutputDir     string     `yaml:"output_dir,omitempty"` // Figures are written to {output_dir}/{city id}
	Database      string     `yaml:"database,omitempty"`   // Render history database
	LogLevel      string     `yaml:"log_level,omitempty"`
	Fonts         FontConfig `yaml:"fonts,omitempty"`
	MQTT          MQTTConfig `yaml:"mqtt,omitempty"`
	HomeAssistant HAConfig   `yaml:"home_assistant,omitempty"`
	Cities        []City     `yaml:"cities"`
}

// FontConfig controls how CJK-capable fonts are located
type FontConfig struct {
	Paths    []string `yaml:"paths,omitempty"`    // Font files tried in order (.ttf, .otf, .ttc)
	Discover bool     `yaml:"discover,omitempty"` // Ask fontconfig for zh fonts
	DPI      int      `yaml:"dpi,omitempty"`
}

// MQTTConfig holds MQTT broker configuration
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`                 // host:port
	TopicPrefix string `yaml:"topic_prefix,omitempty"` // default "epichart"
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
}

// HAConfig holds Home Assistant HTTP API configuration
type HAConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`       // e.g., "http://yourdomain.local:8123"
	Token    string `yaml:"token"`     // Long-lived access token
	EntityID string `yaml:"entity_id"` // prefix, the city id is appended: "sensor.epichart" -> "sensor.epichart_shanghai"
}

// City is the static metadata of one city
type City struct {
	Name          string    `yaml:"name"`
	ID            string    `yaml:"id"` // romanized, used for output paths
	FileDaily     string    `yaml:"file_daily"`
	FileResidents string    `yaml:"file_residents"`
	DateRange     DateRange `yaml:"date_range"`
	Districts     []string  `yaml:"districts,omitempty"`
	Events        []Event   `yaml:"events,omitempty"`
}

// DateRange is an inclusive range of dates
type DateRange struct {
	From Date `yaml:"from"`
	To   Date `yaml:"to"`
}

// Contains reports whether t falls within the range, both ends included
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From.Time) && !t.After(r.To.Time)
}

// Event is a point-in-time or interval annotation on trend charts
type Event struct {
	From  Date   `yaml:"from"`
	To    Date   `yaml:"to,omitempty"`
	Title string `yaml:"title"`
}

// IsSpan reports whether the event covers an interval rather than a single day
func (e Event) IsSpan() bool {
	return !e.To.IsZero()
}

// Date is a calendar day in YAML form "2006-01-02"
type Date struct {
	time.Time
}

// NewDate returns the Date for year, month, day in UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses "2006-01-02"
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// MustDate is like ParseDate but panics on malformed input
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	if node.Value == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid date %q (use YYYY-MM-DD)", node.Line, node.Value)
	}
	*d = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Date) MarshalYAML() (interface{}, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format(DateLayout), nil
}

// String returns the date as "2006-01-02"
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Load reads the config file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Fall back to the built-in cities if file doesn't exist
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// Validate checks city metadata for problems that would only surface while drawing
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for i, city := range c.Cities {
		if city.ID == "" {
			return fmt.Errorf("city #%d (%s): id is required", i+1, city.Name)
		}
		if seen[city.ID] {
			return fmt.Errorf("city %s: duplicate id", city.ID)
		}
		seen[city.ID] = true

		if city.FileDaily == "" {
			return fmt.Errorf("city %s: file_daily is required", city.ID)
		}
		if city.DateRange.From.IsZero() || city.DateRange.To.IsZero() {
			return fmt.Errorf("city %s: date_range needs both from and to", city.ID)
		}
		if city.DateRange.To.Before(city.DateRange.From.Time) {
			return fmt.Errorf("city %s: date_range.to %s is before from %s", city.ID, city.DateRange.To, city.DateRange.From)
		}
		for _, e := range city.Events {
			if e.From.IsZero() {
				return fmt.Errorf("city %s: event %q has no from date", city.ID, e.Title)
			}
			if e.IsSpan() && e.To.Before(e.From.Time) {
				return fmt.Errorf("city %s: event %q ends (%s) before it starts (%s)", city.ID, e.Title, e.To, e.From)
			}
		}
	}
	return nil
}

// City returns the city with the given id
func (c *Config) City(id string) (City, bool) {
	for _, city := range c.Cities {
		if city.ID == id {
			return city, true
		}
	}
	return City{}, false
}

// CityIDs returns the ids of all configured cities, in config order
func (c *Config) CityIDs() []string {
	ids := make([]string, 0, len(c.Cities))
	for _, city := range c.Cities {
		ids = append(ids, city.ID)
	}
	return ids
}

// GetDataDir returns the input directory, default "data"
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return "data"
	}
	return c.DataDir
}

// GetOutputDir returns the figure directory, default "figures"
func (c *Config) GetOutputDir() string {
	if c.OutputDir == "" {
		return "figures"
	}
	return c.OutputDir
}

// GetDatabase returns the render history database path, default "data.db"
func (c *Config) GetDatabase() string {
	if c.Database == "" {
		return "data.db"
	}
	return c.Database
}

// GetLogLevel returns the log level, default "info"
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// GetDPI returns the rendering resolution with a default of 72
func (f FontConfig) GetDPI() int {
	if f.DPI <= 0 {
		return 72
	}
	return f.DPI
}

// GetTopicPrefix returns the MQTT topic prefix with a default of "epichart"
func (m MQTTConfig) GetTopicPrefix() string {
	if m.TopicPrefix == "" {
		return "epichart"
	}
	return m.TopicPrefix
}

// DailyPath resolves the daily aggregate CSV against dataDir
func (c City) DailyPath(dataDir string) string {
	return resolve(dataDir, c.FileDaily)
}

// ResidentsPath resolves the resident CSV against dataDir, empty if none is configured
func (c City) ResidentsPath(dataDir string) string {
	if c.FileResidents == "" {
		return ""
	}
	return resolve(dataDir, c.FileResidents)
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
