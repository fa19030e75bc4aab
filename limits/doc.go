// Package limits provides centralized frame geometry constants and validation
// functions shared by the YUV conversion and bitstream framing packages.
//
// # Frame Geometry
//
// A planar YUV 4:2:0 frame stores luma at full resolution and each chroma
// plane at half width and half height. Both dimensions must therefore be
// even:
//
//	if err := limits.ValidateDimensions(w, h); err != nil {
//	    // errors.Is(err, limits.ErrOddDimensions) for odd sizes
//	}
//
// The tight buffer size is LumaSize + 2*ChromaSize, available as YUV420Size.
//
// # Frame Payloads
//
// Length-prefixed streams declare payload sizes up front. ValidateFrameSize
// lets readers refuse declared lengths above a cap before allocating:
//
//	err := limits.ValidateFrameSize(n, limits.MaxFramePayload)
//
// # Error Types
//
//   - ErrInvalidDimensions: non-positive or oversized width/height
//   - ErrOddDimensions: width or height not a multiple of 2
//   - ErrFrameTooLarge: declared frame length above the configured cap
package limits
