// Package fonts downloads, validates and caches the fonts used by text
// items, and remembers which ones were used recently.
package fonts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/sync/singleflight"

	"pfoca/internal/card"
	"pfoca/internal/config"
)

const (
	// RecentFontsKey is the store key holding the recently used fonts.
	RecentFontsKey = "recent_fonts"
	// MaxRecent is the length of the recently used list.
	MaxRecent = 10

	maxFontSize = 32 << 20
)

// Service resolves card.FontInfo values to local font files. Each font is
// downloaded at most once at a time: concurrent callers asking for the same
// font share one download. Failed downloads are not retried.
type Service struct {
	cacheDir string
	baseURL  string
	client   *http.Client
	store    card.KeyValueStore
	logger   card.Logger

	group    singleflight.Group
	recentMu sync.Mutex
}

// NewService creates the cache directory and returns a service fetching
// missing fonts from baseURL.
func NewService(cacheDir, baseURL string, client *http.Client, store card.KeyValueStore, logger card.Logger) (*Service, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create font cache directory: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = card.NewNopLogger()
	}
	return &Service{
		cacheDir: cacheDir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   client,
		store:    store,
		logger:   logger,
	}, nil
}

// NewServiceFromConfig creates a Service from the [fonts] config section.
func NewServiceFromConfig(cfg config.FontsConfig, store card.KeyValueStore, logger card.Logger) (*Service, error) {
	if cfg.CacheDir == "" {
		return nil, fmt.Errorf("fonts cache_dir must be set")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultFontBaseURL
	}
	return NewService(cfg.CacheDir, baseURL, &http.Client{Timeout: cfg.Timeout()}, store, logger)
}

// Path returns where f is cached and whether it is there.
func (s *Service) Path(f card.FontInfo) (string, bool) {
	p, err := s.cachePath(f)
	if err != nil {
		return "", false
	}
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return p, true
}

func (s *Service) cachePath(f card.FontInfo) (string, error) {
	if f.File == "" || strings.Contains(f.File, "\\") || path.IsAbs(f.File) {
		return "", fmt.Errorf("invalid font file %q", f.File)
	}
	for _, seg := range strings.Split(f.File, "/") {
		if seg == ".." || seg == "." || seg == "" {
			return "", fmt.Errorf("invalid font file %q", f.File)
		}
	}
	return filepath.Join(s.cacheDir, path.Base(f.File)), nil
}

// Ensure returns the local path of f, downloading it first if needed.
// Cancelling ctx abandons the wait, not the shared download.
func (s *Service) Ensure(ctx context.Context, f card.FontInfo) (string, error) {
	if p, ok := s.Path(f); ok {
		return p, nil
	}
	if _, err := s.cachePath(f); err != nil {
		return "", err
	}

	ch := s.group.DoChan(f.Name, func() (any, error) {
		return s.download(context.WithoutCancel(ctx), f)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (s *Service) download(ctx context.Context, f card.FontInfo) (string, error) {
	// A concurrent download may have finished between Path and DoChan.
	if p, ok := s.Path(f); ok {
		return p, nil
	}
	dest, err := s.cachePath(f)
	if err != nil {
		return "", err
	}

	url := s.baseURL + "/" + f.File
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", f.Name, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", f.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: unexpected status %s", f.Name, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFontSize+1))
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", f.Name, err)
	}
	if len(data) > maxFontSize {
		return "", fmt.Errorf("downloading %s: font exceeds %d bytes", f.Name, maxFontSize)
	}
	if _, err := truetype.Parse(data); err != nil {
		return "", fmt.Errorf("downloaded %s is not a valid font: %w", f.Name, err)
	}

	if err := writeFile(dest, data); err != nil {
		return "", fmt.Errorf("caching %s: %w", f.Name, err)
	}
	s.logger.Info("font downloaded", "font", f.Name, "bytes", len(data))
	return dest, nil
}

// Load parses the cached font file for f. It does not download.
func (s *Service) Load(f card.FontInfo) (*truetype.Font, error) {
	p, ok := s.Path(f)
	if !ok {
		return nil, fmt.Errorf("font %s is not cached", f.Name)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return truetype.Parse(data)
}

// MarkUsed moves f to the front of the recently used list.
func (s *Service) MarkUsed(f card.FontInfo) error {
	s.recentMu.Lock()
	defer s.recentMu.Unlock()

	recent := []card.FontInfo{f}
	for _, r := range s.recent() {
		if r.Name != f.Name && len(recent) < MaxRecent {
			recent = append(recent, r)
		}
	}
	data, err := json.Marshal(recent)
	if err != nil {
		return fmt.Errorf("encoding recent fonts: %w", err)
	}
	if err := s.store.Set(RecentFontsKey, data); err != nil {
		return fmt.Errorf("writing recent fonts: %w", err)
	}
	return nil
}

// Recent returns the recently used fonts, most recent first. An unreadable
// list yields an empty one.
func (s *Service) Recent() []card.FontInfo {
	s.recentMu.Lock()
	defer s.recentMu.Unlock()
	return s.recent()
}

func (s *Service) recent() []card.FontInfo {
	data, ok, err := s.store.Get(RecentFontsKey)
	if err == nil && !ok {
		return []card.FontInfo{}
	}
	var recent []card.FontInfo
	if err == nil {
		err = json.Unmarshal(data, &recent)
		if err != nil {
			err = fmt.Errorf("%w: %s: %w", card.ErrStoreDecode, RecentFontsKey, err)
		}
	}
	if err != nil {
		s.logger.Warn("recent fonts unreadable, using empty list", "error", err)
		return []card.FontInfo{}
	}
	return recent
}

func writeFile(dest string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
