package storage

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessKeepsSmallImages(t *testing.T) {
	data := encodePNG(t, 40, 20)
	img, err := Process(bytes.NewReader(data), 1<<20)
	require.NoError(t, err)
	assert.Equal(t, data, img.Data)
	assert.Equal(t, "image/png", img.MIME)
	assert.Equal(t, "png", img.Ext)
	assert.Equal(t, 40, img.Width)
}

func TestProcessDownscales(t *testing.T) {
	img, err := Process(bytes.NewReader(encodePNG(t, 2000, 1000)), 10<<20)
	require.NoError(t, err)
	assert.Equal(t, 1600, img.Width)
	assert.Equal(t, 800, img.Height)

	cfg, err := png.DecodeConfig(bytes.NewReader(img.Data))
	require.NoError(t, err)
	assert.Equal(t, 1600, cfg.Width)
}

func TestProcessDownscalesJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 900, 1800)), nil))

	img, err := Process(&buf, 10<<20)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIME)
	assert.Equal(t, "jpg", img.Ext)
	assert.Equal(t, 800, img.Width)
	assert.Equal(t, 1600, img.Height)
}

// withDimensions rewrites the IHDR of an encoded PNG to declare w x h pixels
func withDimensions(data []byte, w, h uint32) []byte {
	out := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestProcessRejectsHugeDimensions(t *testing.T) {
	data := withDimensions(encodePNG(t, 1, 1), 40000, 40000)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 40000, cfg.Width)

	_, err = Process(bytes.NewReader(data), 10<<20)
	assert.ErrorIs(t, err, ErrTooManyPixels)
}

func TestProcessTooLarge(t *testing.T) {
	data := encodePNG(t, 40, 20)
	_, err := Process(bytes.NewReader(data), int64(len(data)-1))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestProcessRejectsNonImages(t *testing.T) {
	_, err := Process(strings.NewReader("%PDF-1.4 not an image"), 1<<20)
	assert.ErrorIs(t, err, ErrUnsupported)

	// png magic with a broken body
	_, err = Process(strings.NewReader("\x89PNG\r\n\x1a\ngarbage"), 1<<20)
	assert.ErrorIs(t, err, ErrUnsupported)
}
