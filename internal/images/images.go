// Package images finds and prepares the title slide picture.
package images

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/gnemet/deckforge/internal/catalog"
	"github.com/gnemet/deckforge/internal/config"
)

// ErrNoAPIKey is returned by Search when no Unsplash key is configured.
var ErrNoAPIKey = errors.New("unsplash API key not configured")

// ErrNotFound is returned by Search when the query has no results.
var ErrNotFound = errors.New("no image found")

// Image is an encoded picture ready to be embedded in a deck.
type Image struct {
	Data   []byte
	Width  int
	Height int
	Ext    string // "jpeg" or "png"
}

type Finder struct {
	cfg        config.ImagesConfig
	httpClient *http.Client
}

func NewFinder(cfg config.ImagesConfig) *Finder {
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = 1600
	}
	return &Finder{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type unsplashResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// Search returns the URL of the first landscape photo for query.
func (f *Finder) Search(ctx context.Context, query string) (string, error) {
	if f.cfg.UnsplashKey == "" {
		return "", ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("orientation", "landscape")
	params.Set("per_page", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.UnsplashEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+f.cfg.UnsplashKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("unsplash request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unsplash request failed with status %d", resp.StatusCode)
	}

	var data unsplashResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to parse unsplash response: %w", err)
	}
	if len(data.Results) == 0 || data.Results[0].URLs.Regular == "" {
		return "", ErrNotFound
	}
	return data.Results[0].URLs.Regular, nil
}

// Fetch downloads the raw bytes at imageURL.
func (f *Finder) Fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 20*1024*1024))
}

// Find searches, downloads and prepares the title image in one step.
func (f *Finder) Find(ctx context.Context, query string) (Image, error) {
	u, err := f.Search(ctx, query)
	if err != nil {
		return Image{}, err
	}
	raw, err := f.Fetch(ctx, u)
	if err != nil {
		return Image{}, err
	}
	return Prepare(raw, f.cfg.MaxWidth)
}

// Prepare decodes raw, scales it down to maxWidth when wider, and re-encodes
// it as JPEG on a white background.
func Prepare(raw []byte, maxWidth int) (Image, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Image{}, fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return Image{}, errors.New("decode image: empty image")
	}
	if maxWidth > 0 && w > maxWidth {
		h = h * maxWidth / w
		if h == 0 {
			h = 1
		}
		w = maxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: 85}); err != nil {
		return Image{}, fmt.Errorf("encode jpeg: %w", err)
	}
	return Image{Data: out.Bytes(), Width: w, Height: h, Ext: "jpeg"}, nil
}

// Banner draws a plain accent banner in the style colours, used when no photo
// is available.
func Banner(style catalog.Style, width, height int) (Image, error) {
	dc := gg.NewContext(width, height)
	dc.SetColor(hexColor(style.Background))
	dc.Clear()

	grad := gg.NewLinearGradient(0, 0, float64(width), 0)
	grad.AddColorStop(0, hexColor(style.Accent))
	grad.AddColorStop(1, hexColor(style.TitleColor))
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, float64(height)*0.55, float64(width), float64(height)*0.45)
	dc.Fill()

	var out bytes.Buffer
	if err := dc.EncodePNG(&out); err != nil {
		return Image{}, fmt.Errorf("encode png: %w", err)
	}
	return Image{Data: out.Bytes(), Width: width, Height: height, Ext: "png"}, nil
}

func hexColor(s string) color.RGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
