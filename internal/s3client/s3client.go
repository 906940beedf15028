// Package s3client holds the S3 plumbing shared by the s3 exporter and
// repository: typed configuration, interactive setup, authentication and
// error classification.
package s3client

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"docscribe/internal/model"
	"docscribe/internal/prompt"
	"docscribe/internal/ui"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/go-viper/mapstructure/v2"
)

// Authentication methods accepted in the "method" key.
const (
	MethodProfile = "profile"
	MethodKeys    = "keys"
)

// API is the subset of the S3 client used by the segments.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Factory authenticates with the given config and returns a client.
type Factory func(ctx context.Context, cfg Config) (API, error)

// Config is the typed view of an s3 segment's configuration map.
type Config struct {
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Method          string `mapstructure:"method"`
	ProfileName     string `mapstructure:"profile_name"`
	AccessKeyID     string `mapstructure:"aws_access_key_id"`
	SecretAccessKey string `mapstructure:"aws_secret_access_key"`
	Region          string `mapstructure:"region"`
}

// DecodeConfig decodes and validates a segment configuration map.
func DecodeConfig(raw model.SegmentConfig) (Config, error) {
	var cfg Config
	if err := mapstructure.Decode(map[string]any(raw), &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: invalid s3 configuration: %v", model.ErrValidation, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields required by the chosen authentication method.
func (c Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("%w: s3 configuration requires a bucket", model.ErrValidation)
	}
	switch c.Method {
	case MethodProfile:
		if c.ProfileName == "" {
			return fmt.Errorf("%w: s3 profile method requires profile_name", model.ErrValidation)
		}
	case MethodKeys:
		if c.AccessKeyID == "" || c.SecretAccessKey == "" {
			return fmt.Errorf("%w: s3 keys method requires aws_access_key_id and aws_secret_access_key", model.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown s3 auth method %q (want %s or %s)", model.ErrValidation, c.Method, MethodProfile, MethodKeys)
	}
	return nil
}

// Key returns the object key for name under the configured prefix.
func (c Config) Key(name string) string {
	prefix := strings.Trim(c.Prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// URI returns the s3:// URI for name.
func (c Config) URI(name string) string {
	return "s3://" + c.Bucket + "/" + c.Key(name)
}

// ListPrefix returns the prefix used to list direct children, ending in "/".
func (c Config) ListPrefix() string {
	prefix := strings.Trim(c.Prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// BuildConfig interactively collects the configuration of a new s3 segment.
func BuildConfig(p prompt.Prompter, printer *ui.Printer) (model.SegmentConfig, error) {
	printer.Heading("Please provide the following information to configure S3")
	bucket, err := p.Ask("Enter your bucket name", "")
	if err != nil {
		return nil, err
	}
	prefix, err := p.Ask("Enter your prefix", "")
	if err != nil {
		return nil, err
	}
	result := model.SegmentConfig{"bucket": bucket, "prefix": prefix}

	method, err := p.Choose("Method", []string{MethodProfile, MethodKeys})
	if err != nil {
		return nil, err
	}
	result["method"] = method

	if method == MethodProfile {
		profile, err := p.Ask("Enter your profile name", "")
		if err != nil {
			return nil, err
		}
		result["profile_name"] = profile
		return result, nil
	}

	keyID, err := p.Ask("Enter your AWS access key", "")
	if err != nil {
		return nil, err
	}
	secret, err := p.Ask("Enter your AWS secret key", "")
	if err != nil {
		return nil, err
	}
	result["aws_access_key_id"] = keyID
	result["aws_secret_access_key"] = secret
	return result, nil
}

// NewClient authenticates against AWS with either a shared-config profile or
// static keys and returns an S3 client. It is the default Factory.
func NewClient(ctx context.Context, cfg Config) (API, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	switch cfg.Method {
	case MethodProfile:
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.ProfileName))
	case MethodKeys:
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	default:
		return nil, fmt.Errorf("%w: unknown s3 auth method %q", model.ErrValidation, cfg.Method)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		var profileErr awsconfig.SharedConfigProfileNotExistError
		if errors.As(err, &profileErr) {
			return nil, fmt.Errorf("%w: profile %s not found", model.ErrBackendAuth, cfg.ProfileName)
		}
		return nil, fmt.Errorf("%w: %v", model.ErrBackendAuth, err)
	}
	if awsCfg.Credentials == nil {
		return nil, fmt.Errorf("%w: no AWS credentials found", model.ErrBackendAuth)
	}
	if _, err := awsCfg.Credentials.Retrieve(ctx); err != nil {
		return nil, fmt.Errorf("%w: no AWS credentials found: %v", model.ErrBackendAuth, err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

var authErrorCodes = map[string]bool{
	"AccessDenied":          true,
	"InvalidAccessKeyId":    true,
	"SignatureDoesNotMatch": true,
	"ExpiredToken":          true,
	"InvalidToken":          true,
}

// ClassifyError maps S3 API errors onto the error taxonomy.
func ClassifyError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch {
		case authErrorCodes[apiErr.ErrorCode()]:
			return fmt.Errorf("%w: %s: %s", model.ErrBackendAuth, op, apiErr.ErrorMessage())
		case apiErr.ErrorCode() == "NoSuchBucket" || apiErr.ErrorCode() == "NoSuchKey":
			return fmt.Errorf("%w: %s: %s", model.ErrNotFound, op, apiErr.ErrorMessage())
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// String renders a pointer field from an SDK response.
func String(s *string) string {
	return aws.ToString(s)
}
