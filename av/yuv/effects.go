package yuv

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Effect modifies a frame in place.
type Effect interface {
	Apply(frame *Buffer) error
	Name() string
}

// EffectChain applies effects in insertion order. It is safe for
// concurrent use; Add and Clear wait for a running Apply to finish.
type EffectChain struct {
	mu      sync.RWMutex
	effects []Effect
}

// NewEffectChain creates an empty chain.
func NewEffectChain() *EffectChain {
	return &EffectChain{effects: make([]Effect, 0)}
}

// Add appends an effect to the chain.
func (ec *EffectChain) Add(effect Effect) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.effects = append(ec.effects, effect)
}

// Apply runs every effect on frame, stopping at the first failure.
func (ec *EffectChain) Apply(frame *Buffer) error {
	if frame == nil {
		return fmt.Errorf("input frame cannot be nil")
	}
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	for i, effect := range ec.effects {
		if err := effect.Apply(frame); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "EffectChain.Apply",
				"index":    i,
				"effect":   effect.Name(),
				"error":    err.Error(),
			}).Error("Effect failed")
			return fmt.Errorf("effect %d (%s) failed: %w", i, effect.Name(), err)
		}
	}
	return nil
}

// Len returns the number of effects in the chain.
func (ec *EffectChain) Len() int {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	return len(ec.effects)
}

// Clear removes all effects from the chain.
func (ec *EffectChain) Clear() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.effects = nil
}

// BrightnessEffect shifts luma by a fixed amount.
type BrightnessEffect struct {
	adjustment int // -255 to +255
}

// NewBrightnessEffect creates a brightness adjustment, clamped to [-255, 255].
func NewBrightnessEffect(adjustment int) *BrightnessEffect {
	if adjustment < -255 {
		adjustment = -255
	}
	if adjustment > 255 {
		adjustment = 255
	}
	return &BrightnessEffect{adjustment: adjustment}
}

// Apply adjusts the Y plane.
func (be *BrightnessEffect) Apply(frame *Buffer) error {
	if frame == nil {
		return fmt.Errorf("input frame cannot be nil")
	}
	y := frame.Y()
	for i, pixel := range y {
		y[i] = clamp8(int(pixel) + be.adjustment)
	}
	return nil
}

// Name returns the effect name.
func (be *BrightnessEffect) Name() string {
	return fmt.Sprintf("Brightness(%+d)", be.adjustment)
}

// ContrastEffect scales luma around the midpoint.
type ContrastEffect struct {
	factor float64 // 0.0 = flat, 1.0 = unchanged, 3.0 = maximum
}

// NewContrastEffect creates a contrast adjustment, clamped to [0, 3].
func NewContrastEffect(factor float64) *ContrastEffect {
	if factor < 0.0 {
		factor = 0.0
	}
	if factor > 3.0 {
		factor = 3.0
	}
	return &ContrastEffect{factor: factor}
}

// Apply adjusts the Y plane around 128.
func (ce *ContrastEffect) Apply(frame *Buffer) error {
	if frame == nil {
		return fmt.Errorf("input frame cannot be nil")
	}
	const midpoint = 128.0

	y := frame.Y()
	for i, pixel := range y {
		v := midpoint + (float64(pixel)-midpoint)*ce.factor
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		y[i] = byte(v + 0.5)
	}
	return nil
}

// Name returns the effect name.
func (ce *ContrastEffect) Name() string {
	return fmt.Sprintf("Contrast(%.2f)", ce.factor)
}

// GrayscaleEffect neutralises both chroma planes.
type GrayscaleEffect struct{}

// NewGrayscaleEffect creates a grayscale conversion effect.
func NewGrayscaleEffect() *GrayscaleEffect {
	return &GrayscaleEffect{}
}

// Apply sets every U and V sample to 128.
func (ge *GrayscaleEffect) Apply(frame *Buffer) error {
	if frame == nil {
		return fmt.Errorf("input frame cannot be nil")
	}
	u, v := frame.U(), frame.V()
	for i := range u {
		u[i] = 128
	}
	for i := range v {
		v[i] = 128
	}
	return nil
}

// Name returns the effect name.
func (ge *GrayscaleEffect) Name() string {
	return "Grayscale"
}
