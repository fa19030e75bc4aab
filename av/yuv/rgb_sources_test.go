package yuv

import (
	"image"
	"image/color"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackedSource_Layouts(t *testing.T) {
	tests := []struct {
		name   string
		layout PixelLayout
		pixel  []byte
	}{
		{"RGB24", LayoutRGB24, []byte{10, 20, 30}},
		{"BGR24", LayoutBGR24, []byte{30, 20, 10}},
		{"RGBA32", LayoutRGBA32, []byte{10, 20, 30, 255}},
		{"BGRA32", LayoutBGRA32, []byte{30, 20, 10, 255}},
		{"ARGB32", LayoutARGB32, []byte{255, 10, 20, 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewPackedSource(tt.pixel, 1, 1, len(tt.pixel), tt.layout)
			require.NoError(t, err)

			r, g, b := src.Pixel(0, 0)
			assert.Equal(t, [3]uint8{10, 20, 30}, [3]uint8{r, g, b})
		})
	}
}

func TestPackedSource_RowPadding(t *testing.T) {
	// 2x2 RGB with one padding byte per row.
	data := []byte{
		1, 1, 1, 2, 2, 2, 0,
		3, 3, 3, 4, 4, 4,
	}
	src, err := NewPackedSource(data, 2, 2, 7, LayoutRGB24)
	require.NoError(t, err)

	r, _, _ := src.Pixel(1, 0)
	assert.Equal(t, uint8(2), r)
	r, _, _ = src.Pixel(0, 1)
	assert.Equal(t, uint8(3), r)
	r, _, _ = src.Pixel(1, 1)
	assert.Equal(t, uint8(4), r)
}

func TestPackedSource_Validation(t *testing.T) {
	_, err := NewRGBSlice(make([]byte, 11), 2, 2)
	assert.ErrorIs(t, err, ErrShortPixelData)

	_, err = NewPackedSource(make([]byte, 100), 4, 2, 8, LayoutRGB24)
	assert.ErrorIs(t, err, ErrInvalidStride)

	_, err = NewBGRASlice(make([]byte, 16), 0, 2)
	assert.Error(t, err)
}

func TestBGRASlice_ConvertsLikeRGB(t *testing.T) {
	bgra := make([]byte, 0, 4*2*4)
	for i := 0; i < 8; i++ {
		bgra = append(bgra, 0, 0, 255, 255) // red in BGRA
	}
	src, err := NewBGRASlice(bgra, 4, 2)
	require.NoError(t, err)

	buf, err := NewBufferFromRGB(src)
	require.NoError(t, err)
	assert.Equal(t, []byte{90, 90}, buf.U())
	assert.Equal(t, []byte{239, 239}, buf.V())
}

func TestImageSource(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	buf, err := NewBufferFromRGB(NewImageSource(img))
	require.NoError(t, err)
	assert.Equal(t, []byte{235, 235, 235, 235}, buf.Y())
}

func TestImageSource_OffsetBounds(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 20, 12, 22))
	img.SetNRGBA(11, 21, color.NRGBA{R: 255, A: 255})

	src := NewImageSource(img)
	w, h := src.Dimensions()
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)

	r, g, b := src.Pixel(1, 1)
	assert.Equal(t, [3]uint8{255, 0, 0}, [3]uint8{r, g, b})
	r, _, _ = src.Pixel(0, 0)
	assert.Equal(t, uint8(0), r)
}

func TestSolidSource(t *testing.T) {
	src, err := NewSolidSourceHex(4, 2, "#ff0000")
	require.NoError(t, err)

	buf, err := NewBufferFromRGB(src)
	require.NoError(t, err)
	assert.Equal(t, []byte{81, 81, 81, 81, 81, 81, 81, 81}, buf.Y())
	assert.Equal(t, []byte{90, 90}, buf.U())
	assert.Equal(t, []byte{239, 239}, buf.V())

	_, err = NewSolidSourceHex(2, 2, "not-a-colour")
	assert.Error(t, err)
}

func TestSolidSource_ClampsOutOfGamut(t *testing.T) {
	src := NewSolidSource(2, 2, colorful.Color{R: 1.5, G: -0.2, B: 0.5})
	r, g, b := src.Pixel(0, 0)
	assert.Equal(t, uint8(255), r)
	assert.Equal(t, uint8(0), g)
	assert.Equal(t, uint8(128), b)
}

func TestGradientSource(t *testing.T) {
	black := colorful.Color{R: 0, G: 0, B: 0}
	white := colorful.Color{R: 1, G: 1, B: 1}

	horizontal := NewGradientSource(8, 2, black, white, false)
	r, g, b := horizontal.Pixel(0, 1)
	assert.Equal(t, [3]uint8{0, 0, 0}, [3]uint8{r, g, b})
	r, g, b = horizontal.Pixel(7, 0)
	assert.Equal(t, [3]uint8{255, 255, 255}, [3]uint8{r, g, b})

	mid, _, _ := horizontal.Pixel(4, 0)
	assert.Greater(t, mid, uint8(0))
	assert.Less(t, mid, uint8(255))

	vertical := NewGradientSource(2, 4, black, white, true)
	r, _, _ = vertical.Pixel(1, 0)
	assert.Equal(t, uint8(0), r)
	r, _, _ = vertical.Pixel(0, 3)
	assert.Equal(t, uint8(255), r)

	buf, err := NewBufferFromRGB(horizontal)
	require.NoError(t, err)
	assert.Equal(t, byte(16), buf.Y()[0])
	assert.Equal(t, byte(235), buf.Y()[7])
}
