package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/sakina/internal/model"
)

// RuntimeConfig is resolved as defaults, then an optional YAML file, then
// SAKINA_* environment variables.
type RuntimeConfig struct {
	Storage   StorageConfig    `yaml:"storage"`
	Log       LogConfig        `yaml:"log"`
	Reminders []ReminderConfig `yaml:"reminders"`

	RolloverInterval     time.Duration `yaml:"rollover_interval"`
	DesktopNotifications bool          `yaml:"desktop_notifications"`
	SchedulerBuffer      int           `yaml:"scheduler_buffer"`
	MetricsAddr          string        `yaml:"metrics_addr"`
	CatalogPath          string        `yaml:"catalog_path"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Key     string `yaml:"key"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type ReminderConfig struct {
	Section string `yaml:"section"`
	At      string `yaml:"at"`
	Enabled bool   `yaml:"enabled"`
}

func Default() RuntimeConfig {
	cfg := RuntimeConfig{
		Storage: StorageConfig{
			Backend: "sqlite",
			Path:    "sakina.db",
			Key:     "sakina-progress",
		},
		Log: LogConfig{
			Level: "info",
			Path:  "sakina.log",
		},
		RolloverInterval: time.Minute,
		SchedulerBuffer:  16,
	}
	for _, rs := range model.DefaultReminderSchedules() {
		cfg.Reminders = append(cfg.Reminders, ReminderConfig{Section: string(rs.Section), At: rs.At, Enabled: rs.Enabled})
	}
	return cfg
}

// LoadFile overlays a YAML file onto base. An empty path returns base as-is.
func LoadFile(path string, base RuntimeConfig) (RuntimeConfig, error) {
	if strings.TrimSpace(path) == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return RuntimeConfig{}, fmt.Errorf("read config file: %w", err)
	}
	cfg := base
	// Reminders merge per section instead of replacing the whole list.
	var overlay struct {
		Reminders []ReminderConfig `yaml:"reminders"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return RuntimeConfig{}, fmt.Errorf("parse config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("parse config file: %w", err)
	}
	cfg.Reminders = mergeReminders(base.Reminders, overlay.Reminders)
	return cfg, nil
}

// FromEnv applies SAKINA_* overrides. Unparseable numeric values are
// ignored; a bad duration is reported.
func FromEnv(base RuntimeConfig) (RuntimeConfig, error) {
	cfg := base
	cfg.Reminders = append([]ReminderConfig(nil), base.Reminders...)
	if v := getEnv("SAKINA_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v := getEnv("SAKINA_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := getEnv("SAKINA_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := getEnv("SAKINA_LOG_PATH"); v != "" {
		cfg.Log.Path = v
	}
	if v := getEnv("SAKINA_ROLLOVER_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return RuntimeConfig{}, fmt.Errorf("invalid SAKINA_ROLLOVER_INTERVAL %q", v)
		}
		cfg.RolloverInterval = d
	}
	if v, ok := getEnvBool("SAKINA_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvInt("SAKINA_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v := getEnv("SAKINA_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := getEnv("SAKINA_CATALOG_PATH"); v != "" {
		cfg.CatalogPath = v
	}
	for _, s := range model.AllSections() {
		name := "SAKINA_REMINDER_" + strings.ToUpper(string(s))
		v := getEnv(name)
		if v == "" {
			continue
		}
		rc := ReminderConfig{Section: string(s), At: v, Enabled: true}
		if strings.EqualFold(v, "off") {
			rc = ReminderConfig{Section: string(s)}
		}
		cfg.Reminders = mergeReminders(cfg.Reminders, []ReminderConfig{rc})
	}
	return cfg, nil
}

// Load resolves the full configuration: defaults, the file named by
// SAKINA_CONFIG_PATH, then the environment.
func Load() (RuntimeConfig, error) {
	cfg, err := LoadFile(getEnv("SAKINA_CONFIG_PATH"), Default())
	if err != nil {
		return RuntimeConfig{}, err
	}
	cfg, err = FromEnv(cfg)
	if err != nil {
		return RuntimeConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return RuntimeConfig{}, err
	}
	return cfg, nil
}

func (c RuntimeConfig) Validate() error {
	switch c.Storage.Backend {
	case "sqlite", "file", "memory":
	default:
		return fmt.Errorf("invalid storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend != "memory" && strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("storage path is required for backend %q", c.Storage.Backend)
	}
	if c.RolloverInterval <= 0 {
		return fmt.Errorf("rollover interval must be positive")
	}
	if _, err := c.ReminderSchedules(); err != nil {
		return err
	}
	return nil
}

// ReminderSchedules turns the configured reminders into validated schedules,
// keeping the default titles.
func (c RuntimeConfig) ReminderSchedules() ([]model.ReminderSchedule, error) {
	defaults := make(map[model.Section]model.ReminderSchedule)
	for _, rs := range model.DefaultReminderSchedules() {
		defaults[rs.Section] = rs
	}
	out := make([]model.ReminderSchedule, 0, len(c.Reminders))
	for _, rc := range c.Reminders {
		section, err := model.ParseSection(rc.Section)
		if err != nil {
			return nil, fmt.Errorf("reminder: %w", err)
		}
		rs := defaults[section]
		rs.At = rc.At
		rs.Enabled = rc.Enabled
		if err := rs.Validate(); err != nil {
			return nil, fmt.Errorf("%s reminder: %w", section, err)
		}
		out = append(out, rs)
	}
	return out, nil
}

func mergeReminders(base, overlay []ReminderConfig) []ReminderConfig {
	out := append([]ReminderConfig(nil), base...)
	for _, o := range overlay {
		replaced := false
		for i := range out {
			if strings.EqualFold(out[i].Section, o.Section) {
				out[i] = o
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, o)
		}
	}
	return out
}

func getEnv(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

func getEnvInt(name string) (int, bool) {
	raw := getEnv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.ToLower(getEnv(name))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
