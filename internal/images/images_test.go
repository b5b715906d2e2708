package images

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnemet/deckforge/internal/catalog"
	"github.com/gnemet/deckforge/internal/config"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepare_Downscales(t *testing.T) {
	img, err := Prepare(pngBytes(t, 400, 200), 100)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Width)
	assert.Equal(t, 50, img.Height)
	assert.Equal(t, "jpeg", img.Ext)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, cfg.Width)
}

func TestPrepare_KeepsSmallImages(t *testing.T) {
	img, err := Prepare(pngBytes(t, 40, 30), 100)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Width)
	assert.Equal(t, 30, img.Height)
}

func TestPrepare_RejectsGarbage(t *testing.T) {
	_, err := Prepare([]byte("not an image"), 100)
	assert.Error(t, err)
}

func TestBanner(t *testing.T) {
	style, err := catalog.NewProvider().Style("blue")
	require.NoError(t, err)

	img, err := Banner(style, 320, 180)
	require.NoError(t, err)
	assert.Equal(t, "png", img.Ext)

	decoded, err := png.Decode(bytes.NewReader(img.Data))
	require.NoError(t, err)
	assert.Equal(t, 320, decoded.Bounds().Dx())
	r, g, b, _ := decoded.At(5, 5).RGBA()
	assert.Equal(t, [3]uint32{0xff, 0xff, 0xff}, [3]uint32{r >> 8, g >> 8, b >> 8})
}

func TestFind(t *testing.T) {
	photo := pngBytes(t, 64, 32)
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/search/photos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Client-ID key", r.Header.Get("Authorization"))
		assert.Equal(t, "landscape", r.URL.Query().Get("orientation"))
		w.Write([]byte(`{"results": [{"urls": {"regular": "` + srv.URL + `/photo.png"}}]}`))
	})
	mux.HandleFunc("/photo.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(photo)
	})

	f := NewFinder(config.ImagesConfig{UnsplashKey: "key", UnsplashEndpoint: srv.URL + "/search/photos", MaxWidth: 32})
	img, err := f.Find(context.Background(), "coffee")
	require.NoError(t, err)
	assert.Equal(t, 32, img.Width)
	assert.Equal(t, 16, img.Height)
}

func TestSearch_Errors(t *testing.T) {
	_, err := NewFinder(config.ImagesConfig{}).Search(context.Background(), "coffee")
	assert.ErrorIs(t, err, ErrNoAPIKey)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()
	_, err = NewFinder(config.ImagesConfig{UnsplashKey: "k", UnsplashEndpoint: srv.URL}).Search(context.Background(), "coffee")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0x1F, G: 0x3A, B: 0x93, A: 255}, hexColor("#1F3A93"))
	assert.Equal(t, color.RGBA{A: 255}, hexColor("nope"))
}
