package config

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/oneconcern/vcsmigrate/pkg/backend"
	"github.com/oneconcern/vcsmigrate/pkg/config/status"
	"github.com/oneconcern/vcsmigrate/pkg/source"
)

// EnvPrefix prefixes environment variables overriding settings, e.g. VCSMIGRATE_TARGET
const EnvPrefix = "VCSMIGRATE"

// Setting keys
const (
	KeySource               = "source"
	KeySourcePath           = "source_path"
	KeyExclude              = "exclude"
	KeyBackend              = "backend"
	KeyTarget               = "target"
	KeyReset                = "reset"
	KeyContinueAfter        = "continue_after"
	KeyAnyCommentThreshold  = "any_comment_threshold"
	KeySameCommentThreshold = "same_comment_threshold"
	KeyEmailDomain          = "email_domain"
	KeyAuthorMap            = "author_map"
	KeyTranscodeComments    = "transcode_comments"
	KeySourceEncoding       = "source_encoding"
	KeyCommentEncoding      = "comment_encoding"
	KeyDefaultComment       = "default_comment"
	KeyLogLevel             = "log_level"
	KeyLogFile              = "log_file"
	KeyMetrics              = "metrics"
	KeyGCSCredentials       = "gcs_credentials"
	KeyAWSRegion            = "aws_region"
)

// Config is the typed run configuration
type Config struct {
	// Source is the location of the source history, e.g. a local directory or s3://bucket/prefix
	Source     string   `mapstructure:"source"`
	SourcePath string   `mapstructure:"source_path"`
	Exclude    []string `mapstructure:"exclude"`

	Backend       backend.Kind `mapstructure:"backend"`
	Target        string       `mapstructure:"target"`
	Reset         bool         `mapstructure:"reset"`
	ContinueAfter time.Time    `mapstructure:"continue_after"`

	AnyCommentThreshold  time.Duration `mapstructure:"any_comment_threshold"`
	SameCommentThreshold time.Duration `mapstructure:"same_comment_threshold"`

	EmailDomain       string `mapstructure:"email_domain"`
	AuthorMap         string `mapstructure:"author_map"`
	TranscodeComments bool   `mapstructure:"transcode_comments"`
	SourceEncoding    string `mapstructure:"source_encoding"`
	CommentEncoding   string `mapstructure:"comment_encoding"`
	DefaultComment    string `mapstructure:"default_comment"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
	Metrics  bool   `mapstructure:"metrics"`

	GCSCredentials string `mapstructure:"gcs_credentials"`
	AWSRegion      string `mapstructure:"aws_region"`
}

func defaults() map[string]string {
	return map[string]string{
		KeySource:               "",
		KeySourcePath:           source.RootPath,
		KeyExclude:              "",
		KeyBackend:              backend.KindSnapshot.String(),
		KeyTarget:               "",
		KeyReset:                "false",
		KeyContinueAfter:        "",
		KeyAnyCommentThreshold:  "30s",
		KeySameCommentThreshold: "600s",
		KeyEmailDomain:          "",
		KeyAuthorMap:            "authors.txt",
		KeyTranscodeComments:    "false",
		KeySourceEncoding:       "windows-1252",
		KeyCommentEncoding:      "utf-8",
		KeyDefaultComment:       "(no comment)",
		KeyLogLevel:             "info",
		KeyLogFile:              "",
		KeyMetrics:              "false",
		KeyGCSCredentials:       "",
		KeyAWSRegion:            "",
	}
}

// Default settings, as key=value pairs
func Default() map[string]string {
	return defaults()
}

// Load the run configuration from a key=value file.
//
// Settings missing from the file take their default value, and so do all settings when the
// file cannot be read. Environment variables prefixed with VCSMIGRATE_ take precedence over the file.
func Load(fs afero.Fs, pth string, l *zap.Logger) (*Config, error) {
	if l == nil {
		l = zap.NewNop()
	}
	pairs, err := ReadFile(fs, pth)
	if err != nil {
		l.Warn("cannot read settings, using defaults", zap.String("path", pth), zap.Error(err))
		pairs = nil
	}
	return FromSettings(pairs)
}

// FromSettings decodes the run configuration from key=value pairs
func FromSettings(pairs map[string]string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults() {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	settings := make(map[string]interface{}, len(pairs))
	for k, val := range pairs {
		settings[strings.ToLower(k)] = val
	}
	if err := v.MergeConfigMap(settings); err != nil {
		return nil, status.ErrInvalidConfig.Wrap(err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		durationHook,
		timeHook,
		kindHook,
		mapstructure.StringToSliceHookFunc(";"),
	))); err != nil {
		return nil, status.ErrInvalidConfig.Wrap(err)
	}

	exclude := cfg.Exclude[:0]
	for _, pattern := range cfg.Exclude {
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			exclude = append(exclude, pattern)
		}
	}
	cfg.Exclude = exclude

	return &cfg, nil
}

// Validate the configuration
func (c *Config) Validate() error {
	switch {
	case c.Source == "":
		return status.ErrInvalidConfig.WrapMessage("%s is required", KeySource)
	case c.Target == "":
		return status.ErrInvalidConfig.WrapMessage("%s is required", KeyTarget)
	case c.Backend == backend.KindUnknown:
		return status.ErrInvalidConfig.WrapMessage("%s is required", KeyBackend)
	case c.AnyCommentThreshold < 0:
		return status.ErrInvalidConfig.WrapMessage("%s must not be negative", KeyAnyCommentThreshold)
	case c.SameCommentThreshold < c.AnyCommentThreshold:
		return status.ErrInvalidConfig.WrapMessage("%s (%v) must not be shorter than %s (%v)",
			KeySameCommentThreshold, c.SameCommentThreshold, KeyAnyCommentThreshold, c.AnyCommentThreshold)
	}
	return nil
}

// Settings yields the configuration as key=value pairs
func (c *Config) Settings() map[string]string {
	var cursor string
	if !c.ContinueAfter.IsZero() {
		cursor = c.ContinueAfter.Format(time.RFC3339Nano)
	}
	return map[string]string{
		KeySource:               c.Source,
		KeySourcePath:           c.SourcePath,
		KeyExclude:              strings.Join(c.Exclude, ";"),
		KeyBackend:              c.Backend.String(),
		KeyTarget:               c.Target,
		KeyReset:                strconv.FormatBool(c.Reset),
		KeyContinueAfter:        cursor,
		KeyAnyCommentThreshold:  c.AnyCommentThreshold.String(),
		KeySameCommentThreshold: c.SameCommentThreshold.String(),
		KeyEmailDomain:          c.EmailDomain,
		KeyAuthorMap:            c.AuthorMap,
		KeyTranscodeComments:    strconv.FormatBool(c.TranscodeComments),
		KeySourceEncoding:       c.SourceEncoding,
		KeyCommentEncoding:      c.CommentEncoding,
		KeyDefaultComment:       c.DefaultComment,
		KeyLogLevel:             c.LogLevel,
		KeyLogFile:              c.LogFile,
		KeyMetrics:              strconv.FormatBool(c.Metrics),
		KeyGCSCredentials:       c.GCSCredentials,
		KeyAWSRegion:            c.AWSRegion,
	}
}

// Save the configuration as a key=value file
func (c *Config) Save(fs afero.Fs, pth string) error {
	return WriteFile(fs, pth, c.Settings())
}

// durationHook accepts Go durations ("2s") and plain numbers of seconds
func durationHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	if s == "" {
		return time.Duration(0), nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

func timeHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func kindHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(backend.KindUnknown) {
		return data, nil
	}
	return backend.ParseKind(data.(string))
}
