package secret

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
}

var (
	// ErrNotFound is returned when a provider has no value for a reference.
	ErrNotFound = errors.New("secret: not found")

	// ErrUnknownProvider is returned for a reference naming an unregistered provider.
	ErrUnknownProvider = errors.New("secret: unknown provider")

	// ErrMissingEnv is returned by ExpandEnvStrict for unset ${VAR} references.
	ErrMissingEnv = errors.New("secret: missing environment variables")
)

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// EnvProvider reads secrets from environment variables.
type EnvProvider struct {
	lookup LookupFunc
}

// NewEnvProvider creates an EnvProvider. A nil lookup uses os.LookupEnv.
func NewEnvProvider(lookup LookupFunc) *EnvProvider {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &EnvProvider{lookup: lookup}
}

func (p *EnvProvider) Name() string { return "env" }

func (p *EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := p.lookup(ref)
	if !ok {
		return "", fmt.Errorf("%w: env %s", ErrNotFound, ref)
	}
	return v, nil
}

// FileProvider reads secrets from files, as mounted by container runtimes.
// Surrounding whitespace is trimmed.
type FileProvider struct {
	readFile func(string) ([]byte, error)
}

// NewFileProvider creates a FileProvider.
func NewFileProvider() *FileProvider {
	return &FileProvider{readFile: os.ReadFile}
}

func (p *FileProvider) Name() string { return "file" }

func (p *FileProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := p.readFile(ref)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: file %s", ErrNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("secret: read %s: %w", ref, err)
	}
	return strings.TrimSpace(string(b)), nil
}

// Mask returns a short prefix of v for log lines, or "(unset)" when v is empty.
func Mask(v string) string {
	const visible = 10
	if v == "" {
		return "(unset)"
	}
	if len(v) <= visible {
		return strings.Repeat("*", len(v))
	}
	return v[:visible] + "..."
}
