package blocklog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds the renderer settings as read from a TOML or YAML file. Every
// field is optional; DefaultConfig() supplies the defaults and a file only
// overrides what it sets.
//
// PrefixTemplate knows the %prefix%, %level% and %time% placeholders; any
// other '%' is printed literally ("%level% 100%" is valid).
type Config struct {
	OffsetMarker   string            `toml:"offset_marker" yaml:"offset_marker"`
	PrefixTemplate string            `toml:"prefix_template" yaml:"prefix_template"`
	PrefixWidth    int               `toml:"prefix_width" yaml:"prefix_width" validate:"min=0,max=256"`
	LabelWidth     int               `toml:"label_width" yaml:"label_width" validate:"min=0,max=256"`
	LabelDelimiter string            `toml:"label_delimiter" yaml:"label_delimiter"`
	LevelCodes     map[string]string `toml:"level_codes" yaml:"level_codes" validate:"dive,keys,level_name,endkeys,required"`
	Levels         []string          `toml:"levels" yaml:"levels" validate:"dive,level_name"`
	Categories     []string          `toml:"categories" yaml:"categories"`
	Except         []string          `toml:"except" yaml:"except"`
	TimeZone       string            `toml:"time_zone" yaml:"time_zone" validate:"omitempty,timezone"`
}

func DefaultConfig() *Config {
	return &Config{
		OffsetMarker:   DEFAULT_OFFSET_MARKER,
		PrefixTemplate: DEFAULT_PREFIX_TEMPLATE,
		PrefixWidth:    DEFAULT_PREFIX_WIDTH,
		LabelWidth:     DEFAULT_LABEL_WIDTH,
		LabelDelimiter: DEFAULT_LABEL_DELIMITER,
		TimeZone:       "UTC",
	}
}

// Reads a config file on top of the defaults. Files ending in .yaml/.yml are
// decoded as YAML, anything else as TOML. Unknown keys are errors.
func LoadConfig(configPath string) (*Config, error) {
	configFile := filepath.Clean(configPath)
	content, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	format := "toml"
	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	return ParseConfig(content, format)
}

// Decodes config content ("toml" or "yaml") on top of the defaults and
// validates the result.
func ParseConfig(content []byte, format string) (*Config, error) {
	cfg := DefaultConfig()
	switch format {
	case "toml":
		dec := toml.NewDecoder(bytes.NewReader(content))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				row, col := derr.Position()
				return nil, fmt.Errorf("failed to parse config at line %d, column %d: %w", row, col, err)
			}
			var serr *toml.StrictMissingError
			if errors.As(err, &serr) {
				return nil, fmt.Errorf("unknown config keys:\n%s", serr.String())
			}
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format `%s`", format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encodes the config as TOML.
func (c *Config) SerializeConfig() (*bytes.Buffer, error) {
	buf := bytes.Buffer{}
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to serialize config: %w", err)
	}
	return &buf, nil
}

/////////////////////////////////////////////////////////////////////////////////////////

// ValidationError is a single invalid config field.
type ValidationError struct {
	FieldPath string // config key, e.g. "level_codes[fatal]"
	Message   string
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("config validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report config keys instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("level_name", func(fl validator.FieldLevel) bool {
		_, err := ParseLevelName(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "max":
		return fmt.Sprintf("must be <= %s", e.Param())
	case "timezone":
		return "must be a valid IANA time zone name"
	case "level_name":
		return fmt.Sprintf("`%v` is not a level name (expected one of: %s)", e.Value(), strings.Join(LevelNames(), ", "))
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// Validates field ranges, level names, the time zone and the prefix
// template. All problems are returned together as ValidationErrors.
func (c *Config) Validate() error {
	var validationErrors ValidationErrors
	if err := validate.Struct(c); err != nil {
		var validatorErrs validator.ValidationErrors
		if !errors.As(err, &validatorErrs) {
			return err
		}
		for _, e := range validatorErrs {
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: e.Field(),
				Message:   getValidationMessage(e),
			})
		}
	}
	if _, err := NewPrefixer(c.PrefixTemplate, c.PrefixWidth, nil); err != nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "prefix_template",
			Message:   err.Error(),
		})
	}
	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}

// Location for the %time% placeholder; an empty time zone means UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone: %w", err)
	}
	return loc, nil
}

// Default level codes with the configured overrides applied.
func (c *Config) Codes() (LevelCodes, error) {
	codes := maps.Clone(DefaultLevelCodes)
	for name, code := range c.LevelCodes {
		level, err := ParseLevelName(name)
		if err != nil {
			return nil, err
		}
		codes[level] = code
	}
	return codes, nil
}

func (c *Config) FilterSpec() (FilterSpec, error) {
	mask, err := ParseLevelNames(c.Levels)
	if err != nil {
		return FilterSpec{}, err
	}
	return FilterSpec{
		LevelMask: mask,
		Include:   slices.Clone(c.Categories),
		Exclude:   slices.Clone(c.Except),
	}, nil
}
