package yuv

import (
	"fmt"

	"github.com/opd-ai/yuvstream/limits"
	"github.com/sirupsen/logrus"
)

// Scaler resizes YUV420 frames with bilinear interpolation.
// It is stateless and safe for concurrent use.
type Scaler struct{}

// NewScaler creates a new frame scaler.
func NewScaler() *Scaler {
	return &Scaler{}
}

// Scale resizes src to targetWidth x targetHeight.
//
// Each plane is interpolated independently, honouring the source strides.
// The target dimensions must satisfy limits.ValidateDimensions. When the
// size is unchanged the result is a tight copy of src.
func (s *Scaler) Scale(src Source, targetWidth, targetHeight int) (*Buffer, error) {
	if src == nil {
		return nil, fmt.Errorf("source frame cannot be nil")
	}

	dst, err := NewBuffer(targetWidth, targetHeight)
	if err != nil {
		return nil, fmt.Errorf("scale target: %w", err)
	}

	if !s.IsScalingRequired(src.Width(), src.Height(), targetWidth, targetHeight) {
		if err := dst.CopyFrom(src); err != nil {
			return nil, err
		}
		return dst, nil
	}

	xFactor, yFactor := s.GetScaleFactors(src.Width(), src.Height(), targetWidth, targetHeight)
	logrus.WithFields(logrus.Fields{
		"function":   "Scaler.Scale",
		"src_width":  src.Width(),
		"src_height": src.Height(),
		"dst_width":  targetWidth,
		"dst_height": targetHeight,
		"x_factor":   xFactor,
		"y_factor":   yFactor,
	}).Debug("Scaling YUV420 frame")

	if err := scalePlane(src.Y(), src.Width(), src.Height(), src.YStride(),
		dst.Y(), targetWidth, targetHeight, dst.YStride()); err != nil {
		return nil, fmt.Errorf("failed to scale Y plane: %w", err)
	}

	scw, sch := src.Width()/limits.ChromaSubsampling, src.Height()/limits.ChromaSubsampling
	dcw, dch := targetWidth/limits.ChromaSubsampling, targetHeight/limits.ChromaSubsampling
	if err := scalePlane(src.U(), scw, sch, src.UStride(), dst.U(), dcw, dch, dst.UStride()); err != nil {
		return nil, fmt.Errorf("failed to scale U plane: %w", err)
	}
	if err := scalePlane(src.V(), scw, sch, src.VStride(), dst.V(), dcw, dch, dst.VStride()); err != nil {
		return nil, fmt.Errorf("failed to scale V plane: %w", err)
	}

	return dst, nil
}

// scalePlane scales a single plane using bilinear interpolation.
func scalePlane(src []byte, srcWidth, srcHeight, srcStride int,
	dst []byte, dstWidth, dstHeight, dstStride int) error {

	if srcWidth <= 0 || srcHeight <= 0 {
		return fmt.Errorf("%w: source plane %dx%d", limits.ErrInvalidDimensions, srcWidth, srcHeight)
	}
	if len(src) < (srcHeight-1)*srcStride+srcWidth {
		return fmt.Errorf("%w: %d < %d", ErrShortPlane, len(src), (srcHeight-1)*srcStride+srcWidth)
	}

	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for y := 0; y < dstHeight; y++ {
		srcY := float64(y) * yRatio
		y1 := int(srcY)
		y2 := y1 + 1
		if y2 >= srcHeight {
			y2 = srcHeight - 1
		}
		fy := srcY - float64(y1)

		for x := 0; x < dstWidth; x++ {
			srcX := float64(x) * xRatio
			x1 := int(srcX)
			x2 := x1 + 1
			if x2 >= srcWidth {
				x2 = srcWidth - 1
			}
			fx := srcX - float64(x1)

			p11 := float64(src[y1*srcStride+x1])
			p12 := float64(src[y1*srcStride+x2])
			p21 := float64(src[y2*srcStride+x1])
			p22 := float64(src[y2*srcStride+x2])

			top := p11*(1-fx) + p12*fx
			bottom := p21*(1-fx) + p22*fx
			pixel := top*(1-fy) + bottom*fy

			dst[y*dstStride+x] = byte(pixel + 0.5) // Round to nearest
		}
	}

	return nil
}

// GetScaleFactors returns the horizontal and vertical scaling factors.
func (s *Scaler) GetScaleFactors(srcWidth, srcHeight, dstWidth, dstHeight int) (xFactor, yFactor float64) {
	xFactor = float64(dstWidth) / float64(srcWidth)
	yFactor = float64(dstHeight) / float64(srcHeight)
	return
}

// IsScalingRequired checks if scaling is needed for given dimensions.
func (s *Scaler) IsScalingRequired(srcWidth, srcHeight, dstWidth, dstHeight int) bool {
	return srcWidth != dstWidth || srcHeight != dstHeight
}
