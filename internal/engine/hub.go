package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fakellm/internal/alias"
)

// Hub downloads GGUF files from a model hub and caches them on disk.
// Downloads happen once per (repository, file); later loads reuse the
// cached copy.
type Hub struct {
	baseURL  string
	cacheDir string
	client   *http.Client
	log      zerolog.Logger
}

// HubOption customizes a Hub.
type HubOption func(*Hub)

// WithHubBaseURL overrides the hub endpoint (used by tests).
func WithHubBaseURL(u string) HubOption {
	return func(h *Hub) { h.baseURL = strings.TrimRight(u, "/") }
}

// WithHubLogger installs a structured logger.
func WithHubLogger(l zerolog.Logger) HubOption {
	return func(h *Hub) { h.log = l }
}

// NewHub returns a Hub caching under cacheDir. An empty cacheDir falls
// back to <user cache dir>/fakellm/models.
func NewHub(cacheDir string, opts ...HubOption) *Hub {
	if cacheDir == "" {
		if base, err := os.UserCacheDir(); err == nil {
			cacheDir = filepath.Join(base, "fakellm", "models")
		} else {
			cacheDir = filepath.Join(os.TempDir(), "fakellm-models")
		}
	}
	h := &Hub{
		baseURL:  "https://huggingface.co",
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: 15 * time.Minute},
		log:      zerolog.Nop(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Fetch resolves repoID to a local GGUF path, downloading it if absent.
// For repositories in the built-in table the filename is known up front;
// anything else is resolved by listing the repository and preferring a
// q4_k_m quantization.
func (h *Hub) Fetch(ctx context.Context, repoID string) (string, error) {
	filename := ""
	if spec, ok := alias.SpecForRepo(repoID); ok {
		filename = spec.Filename
	} else {
		var err error
		filename, err = h.pickGGUF(ctx, repoID)
		if err != nil {
			return "", err
		}
	}

	local := filepath.Join(h.cacheDir, strings.ReplaceAll(repoID, "/", "--"), filename)
	if _, err := os.Stat(local); err == nil {
		h.log.Debug().Str("repo", repoID).Str("path", local).Msg("model cache hit")
		return local, nil
	}
	if err := h.download(ctx, repoID, filename, local); err != nil {
		return "", err
	}
	return local, nil
}

// pickGGUF lists repository files and chooses the GGUF to fetch.
func (h *Hub) pickGGUF(ctx context.Context, repoID string) (string, error) {
	u := fmt.Sprintf("%s/api/models/%s", h.baseURL, repoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("list repo %s: %w", repoID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("list repo %s: status %d", repoID, resp.StatusCode)
	}
	var meta struct {
		Siblings []struct {
			Rfilename string `json:"rfilename"`
		} `json:"siblings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return "", fmt.Errorf("list repo %s: %w", repoID, err)
	}
	var ggufs []string
	for _, s := range meta.Siblings {
		if strings.HasSuffix(strings.ToLower(s.Rfilename), ".gguf") {
			ggufs = append(ggufs, s.Rfilename)
		}
	}
	if len(ggufs) == 0 {
		return "", fmt.Errorf("no .gguf files found in %s", repoID)
	}
	for _, f := range ggufs {
		if strings.Contains(strings.ToLower(f), "q4_k_m") {
			return f, nil
		}
	}
	return ggufs[0], nil
}

// download streams the file to a temp path and renames it into place so a
// partial download never looks like a cached model.
func (h *Hub) download(ctx context.Context, repoID, filename, dest string) error {
	u := fmt.Sprintf("%s/%s/resolve/main/%s", h.baseURL, repoID, filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	h.log.Info().Str("repo", repoID).Str("file", filename).Msg("downloading model")
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s/%s: %w", repoID, filename, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s/%s: status %d", repoID, filename, resp.StatusCode)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".partial-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("download %s/%s: %w", repoID, filename, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	h.log.Info().Str("repo", repoID).Str("path", dest).Msg("model cached")
	return nil
}
