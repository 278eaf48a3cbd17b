package ota

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

var ErrNoImageURL = errors.New("no image url configured")

// HTTPUpdater downloads the image into StagingPath. Flashing the staged
// image is left to the boot loader.
type HTTPUpdater struct {
	URL         string
	StagingPath string
	Client      *http.Client
	Log         zerolog.Logger
}

func NewHTTPUpdater(url, staging string, log zerolog.Logger) *HTTPUpdater {
	return &HTTPUpdater{
		URL:         url,
		StagingPath: staging,
		Client:      &http.Client{Timeout: 2 * time.Minute},
		Log:         log,
	}
}

func (u *HTTPUpdater) Update(ctx context.Context, runID string) error {
	if u.URL == "" {
		return ErrNoImageURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.URL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "wallcontroller-ota/1.0")
	req.Header.Set("X-Request-ID", runID)

	resp, err := u.Client.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download: HTTP %d", resp.StatusCode)
	}

	dir := filepath.Dir(u.StagingPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("staging dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ota-*")
	if err != nil {
		return fmt.Errorf("staging file: %w", err)
	}
	n, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write image: %w", errors.Join(copyErr, closeErr))
	}
	if n == 0 {
		os.Remove(tmp.Name())
		return errors.New("empty image")
	}
	if err := os.Rename(tmp.Name(), u.StagingPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("stage image: %w", err)
	}
	u.Log.Info().Int64("bytes", n).Str("path", u.StagingPath).Msg("image staged")
	return nil
}
