package blocklog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlConfig = `
offset_marker = "  "
prefix_template = "%level%"
prefix_width = 4
label_width = 10
label_delimiter = " - "
levels = ["error", "warning"]
categories = ["app*"]
except = ["app/noise*"]
time_zone = "Europe/Berlin"

[level_codes]
error = "ERR"
`

const yamlConfig = `
offset_marker: "  "
prefix_template: "%level%"
prefix_width: 4
label_width: 10
label_delimiter: " - "
levels: [error, warning]
categories: ["app*"]
except: ["app/noise*"]
time_zone: Europe/Berlin
level_codes:
  error: ERR
`

func TestParseConfig(t *testing.T) {
	want := &Config{
		OffsetMarker:   "  ",
		PrefixTemplate: "%level%",
		PrefixWidth:    4,
		LabelWidth:     10,
		LabelDelimiter: " - ",
		LevelCodes:     map[string]string{"error": "ERR"},
		Levels:         []string{"error", "warning"},
		Categories:     []string{"app*"},
		Except:         []string{"app/noise*"},
		TimeZone:       "Europe/Berlin",
	}
	for format, content := range map[string]string{"toml": tomlConfig, "yaml": yamlConfig} {
		t.Run(format, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(content), format)
			require.NoError(t, err)
			if diff := cmp.Diff(want, cfg); diff != "" {
				t.Errorf("ParseConfig() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	for _, format := range []string{"toml", "yaml"} {
		cfg, err := ParseConfig(nil, format)
		require.NoError(t, err, format)
		assert.Equal(t, DefaultConfig(), cfg, format)
	}
	cfg, err := ParseConfig([]byte(`label_width = 3`), "toml")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.LabelWidth)
	assert.Equal(t, DEFAULT_PREFIX_TEMPLATE, cfg.PrefixTemplate, "unset keys keep their defaults")
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		content string
		errMsg  []string
	}{
		{"unknown_toml_key", "toml", "colour = true", []string{"unknown config keys", "colour"}},
		{"unknown_yaml_key", "yaml", "colour: true", []string{"colour"}},
		{"toml_syntax", "toml", "label_width = = 1", []string{"line 1"}},
		{"yaml_syntax", "yaml", "levels: [error", []string{"failed to parse config"}},
		{"wrong_type", "toml", `label_width = "wide"`, []string{"failed to parse config"}},
		{"format", "json", "{}", []string{"unsupported config format `json`"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.content), tt.format)
			require.Error(t, err)
			for _, msg := range tt.errMsg {
				assert.ErrorContains(t, err, msg)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		fields []string
	}{
		{"negative_prefix_width", func(c *Config) { c.PrefixWidth = -1 }, []string{"prefix_width"}},
		{"huge_label_width", func(c *Config) { c.LabelWidth = 1000 }, []string{"label_width"}},
		{"unknown_level", func(c *Config) { c.Levels = []string{"info", "fatal"} }, []string{"levels[1]"}},
		{"unknown_level_code_key", func(c *Config) { c.LevelCodes = map[string]string{"fatal": "F"} }, []string{"level_codes[fatal]"}},
		{"empty_level_code", func(c *Config) { c.LevelCodes = map[string]string{"info": ""} }, []string{"level_codes[info]"}},
		{"time_zone", func(c *Config) { c.TimeZone = "Mars/Olympus" }, []string{"time_zone"}},
		{"several", func(c *Config) {
			c.PrefixWidth = -1
			c.TimeZone = "nowhere"
		}, []string{"prefix_width", "time_zone"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %v", err)
			var fields []string
			for _, e := range verrs {
				fields = append(fields, e.FieldPath)
				assert.NotEmpty(t, e.Message)
			}
			assert.ElementsMatch(t, tt.fields, fields)
		})
	}
	assert.NoError(t, DefaultConfig().Validate())
	literal := DefaultConfig()
	literal.PrefixTemplate = "%level% 100%"
	assert.NoError(t, literal.Validate(), "literal percent signs are allowed")
	assert.Equal(t, "no validation errors", ValidationErrors{}.Error())
}

func TestConfig_LevelNameMessage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Levels = []string{"fatal"}
	err := cfg.Validate()
	assert.ErrorContains(t, err, "`fatal` is not a level name")
	assert.ErrorContains(t, err, "error, info, profile")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{"c.toml": tomlConfig, "c.yaml": yamlConfig, "c.yml": yamlConfig, "c.conf": tomlConfig} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		cfg, err := LoadConfig(path)
		require.NoError(t, err, name)
		assert.Equal(t, "ERR", cfg.LevelCodes["error"], name)
	}
	_, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestConfig_SerializeRoundTrip(t *testing.T) {
	cfg, err := ParseConfig([]byte(tomlConfig), "toml")
	require.NoError(t, err)
	buf, err := cfg.SerializeConfig()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Europe/Berlin")

	again, err := ParseConfig(buf.Bytes(), "toml")
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, again, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	buf, err = DefaultConfig().SerializeConfig()
	require.NoError(t, err)
	again, err = ParseConfig(buf.Bytes(), "toml")
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultConfig(), again, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("default round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestConfig_Derived(t *testing.T) {
	cfg, err := ParseConfig([]byte(tomlConfig), "toml")
	require.NoError(t, err)

	codes, err := cfg.Codes()
	require.NoError(t, err)
	assert.Equal(t, "ERR", codes.Name(LVL_ERROR))
	assert.Equal(t, "W", codes.Name(LVL_WARNING))
	assert.Equal(t, "E", DefaultLevelCodes.Name(LVL_ERROR), "defaults modified")

	spec, err := cfg.FilterSpec()
	require.NoError(t, err)
	assert.Equal(t, FilterSpec{
		LevelMask: LVL_ERROR | LVL_WARNING,
		Include:   []string{"app*"},
		Exclude:   []string{"app/noise*"},
	}, spec)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())

	cfg.TimeZone = ""
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestNewFromConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(tomlConfig), "toml")
	require.NoError(t, err)
	cfg.TimeZone = "UTC"
	out := &FakeWriter{}
	r, err := NewFromConfig(cfg, out, nil)
	require.NoError(t, err)

	err = r.Export([]Record{
		{Body: BeginBlock("load"), Level: LVL_ERROR, Category: "app/db"},
		{Body: Text("hidden"), Level: LVL_INFO, Category: "app/db"},
		{Body: Text("noise"), Level: LVL_WARNING, Category: "app/noise/a"},
		{Body: Text("slow"), Level: LVL_WARNING, Category: "app/db"},
	})
	require.NoError(t, err)
	want := lines(
		"ERR "+BANNER_OPEN,
		"ERR   app/db     - load",
		"W     app/db     - slow",
	)
	assert.Equal(t, want, out.String())

	cfg.PrefixWidth = -5
	_, err = NewFromConfig(cfg, out, nil)
	assert.Error(t, err)
}
