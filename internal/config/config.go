// File: config.go
// Title: Run Configuration
// Description: Loads and validates the configuration for a batch run from a
//              TOML or YAML file (format detected by extension), turning the
//              raw tables into typed, eagerly validated values: course
//              catalog, holiday rules, rest-gap range, seed, strategy,
//              anchor policy and cutoff.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/softusing/rollcall/internal/calendar"
	"github.com/softusing/rollcall/internal/timex"
	"github.com/softusing/rollcall/pkg/errorx"
)

// HolidayRule is one static exclusion entry in the config file: either an
// exact day or an inclusive from/to day range inside one month.
type HolidayRule struct {
	Year    int `toml:"year" yaml:"year"`
	Month   int `toml:"month" yaml:"month"`
	Day     int `toml:"day" yaml:"day"`
	FromDay int `toml:"from_day" yaml:"from_day"`
	ToDay   int `toml:"to_day" yaml:"to_day"`
}

// CourseEntry is one catalog row: the course id and its clock-string
// length, in scheduling order.
type CourseEntry struct {
	ID     string `toml:"id" yaml:"id"`
	Length string `toml:"length" yaml:"length"`
}

// Config is the full, validated run configuration.
type Config struct {
	Seed     int64  `toml:"seed" yaml:"seed"`
	Strategy string `toml:"strategy" yaml:"strategy"`
	Codec    string `toml:"codec" yaml:"codec"`

	RestMin int `toml:"rest_min" yaml:"rest_min"`
	RestMax int `toml:"rest_max" yaml:"rest_max"`

	// Anchor selects the first-slot policy: "shifted", "morning" or
	// "pool". AnchorFallback is the instant used when a record carries
	// no usable anchor timestamp.
	Anchor         string `toml:"anchor" yaml:"anchor"`
	AnchorFallback string `toml:"anchor_fallback" yaml:"anchor_fallback"`

	// Cutoff is the last allowed calendar date for any scheduled
	// instant, in any accepted timestamp-date form. Empty disables the
	// cutoff shift.
	Cutoff string `toml:"cutoff" yaml:"cutoff"`

	// Revalidate runs the validator over each user's chain after a
	// cutoff shift and reports residual violations. The shift itself is
	// never corrected.
	Revalidate bool `toml:"revalidate" yaml:"revalidate"`

	// AssignSequential reassigns catalog course ids to a user's records
	// by position instead of matching the records' own course ids.
	AssignSequential bool `toml:"assign_sequential" yaml:"assign_sequential"`

	Holidays []HolidayRule `toml:"holiday" yaml:"holiday"`
	Catalog  []CourseEntry `toml:"course" yaml:"course"`

	// GenerateSets is the number of record sets the generate command
	// synthesizes from the catalog.
	GenerateSets int `toml:"generate_sets" yaml:"generate_sets"`

	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`

	// Derived, populated by Load.
	CutoffDate       time.Time `toml:"-" yaml:"-"`
	AnchorFallbackAt time.Time `toml:"-" yaml:"-"`
}

// Defaults returns a config with the values a file may omit.
func Defaults() Config {
	return Config{
		Seed:         456,
		Strategy:     "strict",
		Codec:        "slash",
		RestMin:      2,
		RestMax:      6,
		Anchor:       "shifted",
		GenerateSets: 1,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load reads, decodes and validates a configuration file. The format is
// detected from the extension: .toml decodes as TOML, .yaml/.yml as YAML.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errorx.Wrap(err, "cannot read config file").
			WithCode(errorx.CodeMissingConfig).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	cfg := Defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return nil, errorx.Wrap(err, "cannot decode TOML config").
				WithCode(errorx.CodeInvalidConfig).
				WithOperation("config.Load").
				WithDetail("path", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, errorx.Wrap(err, "cannot decode YAML config").
				WithCode(errorx.CodeInvalidConfig).
				WithOperation("config.Load").
				WithDetail("path", path)
		}
	default:
		return nil, errorx.Newf("unsupported config extension: %s", filepath.Ext(path)).
			WithCode(errorx.CodeInvalidConfig).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks the decoded values eagerly so a bad file fails at load
// time, not in the middle of a batch.
func (c *Config) validate() error {
	op := "config.validate"

	if c.RestMin <= 0 || c.RestMax < c.RestMin {
		return errorx.Newf("invalid rest gap range [%d,%d]", c.RestMin, c.RestMax).
			WithCode(errorx.CodeInvalidConfig).WithOperation(op)
	}

	switch c.Strategy {
	case "strict", "heuristic":
	default:
		return errorx.Newf("unknown strategy: %s", c.Strategy).
			WithCode(errorx.CodeInvalidConfig).WithOperation(op)
	}

	switch c.Anchor {
	case "shifted", "morning", "pool":
	default:
		return errorx.Newf("unknown anchor policy: %s", c.Anchor).
			WithCode(errorx.CodeInvalidConfig).WithOperation(op)
	}

	if _, err := timex.CodecFor(c.Codec); err != nil {
		return err
	}

	if c.Cutoff != "" {
		cutoff, err := parseDateish(c.Cutoff)
		if err != nil {
			return errorx.Wrap(err, "invalid cutoff date").
				WithCode(errorx.CodeInvalidConfig).WithOperation(op)
		}
		c.CutoffDate = cutoff
	}
	if c.Anchor == "pool" && c.CutoffDate.IsZero() {
		return errorx.New("anchor policy \"pool\" requires a cutoff date").
			WithCode(errorx.CodeInvalidConfig).WithOperation(op)
	}

	if c.AnchorFallback != "" {
		at, err := parseDateish(c.AnchorFallback)
		if err != nil {
			return errorx.Wrap(err, "invalid anchor fallback").
				WithCode(errorx.CodeInvalidConfig).WithOperation(op)
		}
		c.AnchorFallbackAt = at
	}

	seen := make(map[string]bool, len(c.Catalog))
	for i, entry := range c.Catalog {
		if entry.ID == "" {
			return errorx.Newf("catalog entry %d has no course id", i).
				WithCode(errorx.CodeInvalidConfig).WithOperation(op)
		}
		if seen[entry.ID] {
			return errorx.Newf("duplicate catalog course id: %s", entry.ID).
				WithCode(errorx.CodeInvalidConfig).WithOperation(op)
		}
		seen[entry.ID] = true
		if entry.Length != "" {
			if _, err := timex.ParseClock(entry.Length); err != nil {
				return errorx.Newf("catalog course %s has invalid length %q", entry.ID, entry.Length).
					WithCode(errorx.CodeInvalidConfig).WithOperation(op)
			}
		}
	}

	if c.GenerateSets < 1 {
		return errorx.Newf("generate_sets must be at least 1, got %d", c.GenerateSets).
			WithCode(errorx.CodeInvalidConfig).WithOperation(op)
	}

	// Holiday rules are validated by the calendar constructor; building
	// one here surfaces bad rules at load time.
	if _, err := c.BuildCalendar(nil); err != nil {
		return err
	}

	return nil
}

// ExclusionRules converts the config holiday entries into calendar rules.
// A rule given as a single day expands to a one-day range.
func (c *Config) ExclusionRules() []calendar.ExclusionRule {
	rules := make([]calendar.ExclusionRule, 0, len(c.Holidays))
	for _, h := range c.Holidays {
		from, to := h.FromDay, h.ToDay
		if h.Day != 0 {
			from, to = h.Day, h.Day
		}
		rules = append(rules, calendar.ExclusionRule{
			Year:    h.Year,
			Month:   time.Month(h.Month),
			FromDay: from,
			ToDay:   to,
		})
	}
	return rules
}

// BuildCalendar constructs the calendar oracle from the configured rules
// and an optional injected jurisdiction holiday table.
func (c *Config) BuildCalendar(table calendar.HolidayTable) (*calendar.Calendar, error) {
	return calendar.New(table, c.ExclusionRules())
}

// CatalogIndex returns the position of each catalog course id, preserving
// the configured scheduling order.
func (c *Config) CatalogIndex() map[string]int {
	idx := make(map[string]int, len(c.Catalog))
	for i, entry := range c.Catalog {
		idx[entry.ID] = i
	}
	return idx
}

// CatalogLengths returns the clock-string length per catalog course id.
func (c *Config) CatalogLengths() map[string]string {
	lengths := make(map[string]string, len(c.Catalog))
	for _, entry := range c.Catalog {
		if entry.Length != "" {
			lengths[entry.ID] = entry.Length
		}
	}
	return lengths
}

// parseDateish accepts a bare date or a full timestamp in the record
// conventions and returns the parsed instant.
func parseDateish(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006/1/2", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return timex.ParseTimestamp(s)
}
