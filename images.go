package spacetraveling

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/eringen/spacetraveling/content"
)

const (
	maxBannerWidth = 1440
	jpegQuality    = 80
	maxBannerSize  = 20 << 20 // 20MB
)

// processBanner decodes an image from src, resizes it to at most
// maxBannerWidth wide, and encodes it as JPEG.
func processBanner(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxBannerWidth {
		newH := h * maxBannerWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxBannerWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// bannerPath returns the disk cache path for slug, or "" when slug cannot be
// used as a file name. Prismic UIDs are lowercase letters, digits, hyphens
// and underscores.
func (a *App) bannerPath(slug string) string {
	if slug == "" {
		return ""
	}
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return ""
		}
	}
	return filepath.Join(a.Config.BannerDir, slug+".jpg")
}

// handleBanner serves the resized banner of a published post, caching the
// JPEG on disk.
func (a *App) handleBanner(c echo.Context) error {
	slug := c.Param("slug")
	path := a.bannerPath(slug)
	if path == "" {
		return echo.ErrNotFound
	}
	if _, err := os.Stat(path); err == nil {
		return c.File(path)
	}

	var detail content.PostDetail
	if snap, err := a.Store.GetSnapshot(slug); err == nil {
		detail = snap.Post
	} else {
		d, err := a.fetchPost(c, "", slug)
		if err != nil {
			return err
		}
		detail = d
	}
	if detail.BannerURL == "" {
		return echo.ErrNotFound
	}

	ctx, cancel := a.fetchContext(c)
	defer cancel()
	data, err := a.downloadBanner(ctx, detail.BannerURL)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "banner unavailable").SetInternal(err)
	}

	if err := writeFileAtomic(path, data); err != nil {
		c.Logger().Warnf("cache banner %q: %v", slug, err)
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}

func (a *App) downloadBanner(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("banner %s: status %d", rawURL, resp.StatusCode)
	}
	data, err := processBanner(io.LimitReader(resp.Body, maxBannerSize))
	if err != nil {
		return nil, fmt.Errorf("banner %s: %w", rawURL, err)
	}
	return data, nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create banner dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".banner-*")
	if err != nil {
		return err
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
