package pricing

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// RuleLoader loads a quantity rule table from some source.
type RuleLoader interface {
	Load(ctx context.Context, path string) (*QuantityRules, error)
}

// fileLoader reads a YAML rule file from the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a local file rule loader.
func NewFileLoader(logger zerolog.Logger) RuleLoader {
	return &fileLoader{
		logger: logger.With().Str("component", "pricing-rule-loader").Logger(),
	}
}

func (l *fileLoader) Load(ctx context.Context, path string) (*QuantityRules, error) {
	l.logger.Info().Str("file", path).Msg("loading quantity rules")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open rule file")
		return nil, fmt.Errorf("failed to open rule file %s: %w", path, err)
	}
	defer file.Close()

	rules, err := readRules(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to read rule file")
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("rules_loaded", rules.Len()).
		Msg("quantity rules loaded")

	return rules, nil
}

func readRules(ctx context.Context, r io.Reader) (*QuantityRules, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return ParseQuantityRules(data)
}

// fallbackLoader tries S3 first, then the local file system.
type fallbackLoader struct {
	s3Loader   RuleLoader
	fileLoader RuleLoader
	s3Prefix   string
	s3Enabled  bool
	logger     zerolog.Logger
}

// NewFallbackLoader creates a loader that prefers S3 and falls back to a local file.
// The S3 key is s3Prefix + path; the local path is used as given.
func NewFallbackLoader(s3Loader, fileLoader RuleLoader, s3Prefix string, s3Enabled bool, logger zerolog.Logger) RuleLoader {
	return &fallbackLoader{
		s3Loader:   s3Loader,
		fileLoader: fileLoader,
		s3Prefix:   s3Prefix,
		s3Enabled:  s3Enabled,
		logger:     logger.With().Str("component", "pricing-fallback-loader").Logger(),
	}
}

func (l *fallbackLoader) Load(ctx context.Context, path string) (*QuantityRules, error) {
	if l.s3Enabled && l.s3Loader != nil {
		key := l.s3Prefix + path

		rules, err := l.s3Loader.Load(ctx, key)
		if err == nil {
			return rules, nil
		}

		l.logger.Warn().
			Err(err).
			Str("s3_key", key).
			Msg("failed to load rules from S3, falling back to local file system")
	} else {
		l.logger.Debug().
			Bool("s3_enabled", l.s3Enabled).
			Bool("has_s3_loader", l.s3Loader != nil).
			Msg("S3 disabled or not configured, using local file system")
	}

	return l.fileLoader.Load(ctx, path)
}

// LoadOrDefault loads rules from path, returning the built-in table when path is empty
// or the load fails.
func LoadOrDefault(ctx context.Context, loader RuleLoader, path string, logger zerolog.Logger) *QuantityRules {
	if path == "" || loader == nil {
		return DefaultQuantityRules()
	}

	rules, err := loader.Load(ctx, path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("using built-in quantity rules")
		return DefaultQuantityRules()
	}
	return rules
}
