package config

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/zzenonn/zscrub/internal/checksum"
	"github.com/zzenonn/zscrub/internal/discovery"
	zerrors "github.com/zzenonn/zscrub/internal/errors"
)

// BucketConfig represents a remote bucket mirrored by the local data root
type BucketConfig struct {
	BucketName string `yaml:"bucket_name"`
	Platform   string `yaml:"platform"`
}

// Config holds the application configuration
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // text or json
	DataRoot  string `yaml:"data_root"`
	// Layout: where object data and sidecar metadata live under DataRoot,
	// assembled from uri_scheme, metadata_prefix, metadata_file and hidden_marker.
	Layout          discovery.Layout
	BufferSize      int                     `yaml:"buffer_size"`
	ChecksumSources []string                `yaml:"checksum_sources"`
	Workers         int                     `yaml:"workers"`
	ResultsTable    string                  `yaml:"results_table"`
	MetricsFile     string                  `yaml:"metrics_file"`
	Buckets         map[string]BucketConfig `yaml:"buckets"`
	// BucketTag, when set, adds S3 buckets tagged with it to Buckets. The tag
	// value names the local bucket directory; config entries take precedence.
	BucketTag string `yaml:"bucket_tag"`
}

// LoadConfig loads configuration from config.yaml, environment variables, or CLI flags
// Priority: CLI flags > Environment variables > config.yaml > defaults
func LoadConfig(configPath string, rootCmd *cobra.Command) (*Config, error) {
	if err := setupViper(configPath, rootCmd); err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:  viper.GetString("log_level"),
		LogFormat: viper.GetString("log_format"),
		DataRoot:  viper.GetString("data_root"),
		Layout: discovery.Layout{
			Scheme:         viper.GetString("uri_scheme"),
			MetadataPrefix: viper.GetString("metadata_prefix"),
			MetadataFile:   viper.GetString("metadata_file"),
			HiddenMarker:   viper.GetString("hidden_marker"),
		},
		BufferSize:      viper.GetInt("buffer_size"),
		ChecksumSources: getStringList("checksum_sources"),
		Workers:         viper.GetInt("workers"),
		ResultsTable:    viper.GetString("results_table"),
		MetricsFile:     viper.GetString("metrics_file"),
		Buckets:         parseBuckets(),
		BucketTag:       viper.GetString("bucket_tag"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupViper configures Viper with defaults, paths, and bindings
func setupViper(configPath string, rootCmd *cobra.Command) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	}

	setDefaults()
	viper.AutomaticEnv()

	if rootCmd != nil {
		var bindErr error
		rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
			if err := viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return fmt.Errorf("failed to bind flags: %w", bindErr)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	layout := discovery.DefaultLayout()

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("data_root", "/mnt/DISK0/minio")
	viper.SetDefault("uri_scheme", layout.Scheme)
	viper.SetDefault("metadata_prefix", layout.MetadataPrefix)
	viper.SetDefault("metadata_file", layout.MetadataFile)
	viper.SetDefault("hidden_marker", layout.HiddenMarker)
	viper.SetDefault("buffer_size", checksum.DefaultBufferSize)
	viper.SetDefault("checksum_sources", []string{"etag", "s3cmd"})
	viper.SetDefault("workers", 1)
	viper.SetDefault("results_table", "scrub_results")
	viper.SetDefault("metrics_file", "")
	viper.SetDefault("bucket_tag", "")
}

func (c *Config) validate() error {
	if c.DataRoot == "" {
		return zerrors.ConfigNotSetError("data_root")
	}
	if c.Layout.MetadataFile == "" {
		return zerrors.ConfigNotSetError("metadata_file")
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("invalid configuration: buffer_size must be positive, got %d", c.BufferSize)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return nil
}

// LoadAWSConfig loads AWS SDK configuration. Only commands that talk to AWS call it.
func LoadAWSConfig(ctx context.Context) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS SDK config: %v", err)
	}
	return cfg, nil
}

// NewGCSClient creates a Google Cloud Storage client
func NewGCSClient(ctx context.Context) (*storage.Client, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to create GCS client: %v", err)
	}
	return client, nil
}

// parseBuckets parses bucket configuration from Viper
func parseBuckets() map[string]BucketConfig {
	bucketsMap := make(map[string]BucketConfig)
	bucketsRaw := viper.GetStringMap("buckets")

	for key, value := range bucketsRaw {
		if bucketMap, ok := value.(map[string]interface{}); ok {
			bucketsMap[key] = BucketConfig{
				BucketName: getString(bucketMap, "bucket_name", key),
				Platform:   getString(bucketMap, "platform", "s3"),
			}
		}
	}

	return bucketsMap
}

// getString safely extracts string value from map with default
// getStringList reads a list value. Environment values may separate items
// with commas as well as whitespace.
func getStringList(key string) []string {
	var items []string
	for _, value := range viper.GetStringSlice(key) {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}

func getString(m map[string]interface{}, key, defaultValue string) string {
	if value, exists := m[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}
