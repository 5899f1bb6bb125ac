package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vertextester/internal/application/common/slogger"
	"vertextester/internal/domain/errors/domain"
)

// FileCredentialLoader reads a plaintext credential from a well-known file.
// Relative paths are resolved against InstallDir (the directory of the running
// executable when built by NewFileCredentialLoader).
type FileCredentialLoader struct {
	Path       string
	InstallDir string
}

// NewFileCredentialLoader resolves relative paths against the executable's directory.
func NewFileCredentialLoader(path string) *FileCredentialLoader {
	installDir := ""
	if exe, err := os.Executable(); err == nil {
		installDir = filepath.Dir(exe)
	}
	return &FileCredentialLoader{Path: path, InstallDir: installDir}
}

// ResolvedPath returns the absolute location the credential is read from.
func (l *FileCredentialLoader) ResolvedPath() string {
	if filepath.IsAbs(l.Path) || l.InstallDir == "" {
		return l.Path
	}
	return filepath.Join(l.InstallDir, l.Path)
}

// Load reads and trims the credential. Missing, unreadable and empty files all
// yield an error wrapping domain.ErrMissingCredential.
func (l *FileCredentialLoader) Load(ctx context.Context) (string, error) {
	path := l.ResolvedPath()
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: no credential file configured", domain.ErrMissingCredential)
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from local configuration
	if err != nil {
		slogger.Error(ctx, "Failed to read credential file", slogger.Fields{
			"path":  path,
			"error": err.Error(),
		})
		return "", fmt.Errorf("%w: %w", domain.ErrMissingCredential, err)
	}

	credential := strings.TrimSpace(string(data))
	if credential == "" {
		return "", fmt.Errorf("%w: %s is empty", domain.ErrMissingCredential, path)
	}

	slogger.Debug(ctx, "Credential loaded", slogger.Fields{"path": path})
	return credential, nil
}
