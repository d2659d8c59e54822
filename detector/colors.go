package detector

import (
	"image/color"
	"math/rand"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorCache assigns a stable color to every class. The first color chosen
// for a class is kept for the lifetime of the cache.
type ColorCache struct {
	mu     sync.Mutex
	rng    *rand.Rand
	colors map[int]color.Color
}

// NewColorCache creates a cache whose hues are drawn from seed.
func NewColorCache(seed int64) *ColorCache {
	return &ColorCache{
		rng:    rand.New(rand.NewSource(seed)),
		colors: make(map[int]color.Color),
	}
}

// Get returns the color of class, picking a new saturated one on first use.
func (c *ColorCache) Get(class int) color.Color {
	c.mu.Lock()
	defer c.mu.Unlock()

	if col, ok := c.colors[class]; ok {
		return col
	}
	hue := c.rng.Float64() * 360
	col := toRGBA(colorful.Hsv(hue, 0.85, 0.95))
	c.colors[class] = col
	return col
}

// Set assigns col to class if it has no color yet and reports whether it did.
func (c *ColorCache) Set(class int, col color.Color) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.colors[class]; ok {
		return false
	}
	c.colors[class] = col
	return true
}

// Len returns the number of classes with a color.
func (c *ColorCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.colors)
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
