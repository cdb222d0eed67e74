package imaging

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ImageCache keeps decoded images in memory, keyed by file path.
//
// Stills that are metered or histogrammed repeatedly are decoded once. Paths
// that stand in for a live feed, where the file is rewritten between ticks,
// go through Reload instead of Load so each tick sees the current contents.
//
// ImageCache is safe for concurrent use by multiple goroutines.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cachedImage
}

type cachedImage struct {
	img    image.Image
	format string
}

// NewImageCache creates an empty cache ready for concurrent use.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cachedImage),
	}
}

// Load returns the cached image for path, decoding it from disk on first use.
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP.
func (c *ImageCache) Load(path string) (image.Image, error) {
	entry, err := c.load(path, false)
	if err != nil {
		return nil, err
	}
	return entry.img, nil
}

// Reload decodes path from disk unconditionally and replaces any cached copy.
func (c *ImageCache) Reload(path string) (image.Image, error) {
	entry, err := c.load(path, true)
	if err != nil {
		return nil, err
	}
	return entry.img, nil
}

func (c *ImageCache) load(path string, fresh bool) (cachedImage, error) {
	if !fresh {
		c.mu.RLock()
		entry, ok := c.images[path]
		c.mu.RUnlock()
		if ok {
			return entry, nil
		}
	}

	img, format, err := decodeFile(path)
	if err != nil {
		return cachedImage{}, err
	}

	entry := cachedImage{img: img, format: format}
	c.mu.Lock()
	c.images[path] = entry
	c.mu.Unlock()

	return entry, nil
}

// Evict removes a single path from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Clear drops every cached image.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cachedImage)
	c.mu.Unlock()
}

func decodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// LoadFrame loads path through the cache and converts it to a Frame.
// When fresh is true the file is re-read even if it is cached.
func LoadFrame(cache *ImageCache, path string, fresh bool) (*Frame, error) {
	entry, err := cache.load(path, fresh)
	if err != nil {
		return nil, err
	}
	return FrameFromImage(entry.img), nil
}

// FrameInfo describes an image file as the meter will see it.
type FrameInfo struct {
	// Width and Height are the source dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is the decoder that recognised the file: "png", "jpeg", "webp" and so on.
	Format string `json:"format"`

	// WorkingWidth and WorkingHeight are the dimensions after the frame is
	// fitted into the working buffer cap.
	WorkingWidth  int `json:"working_width"`
	WorkingHeight int `json:"working_height"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadFrameInfo loads path into the cache and reports its dimensions, format
// and working-buffer size.
func LoadFrameInfo(cache *ImageCache, path string) (*FrameInfo, error) {
	entry, err := cache.load(path, false)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	frame := FrameFromImage(entry.img)
	work := WorkingBuffer(frame)

	return &FrameInfo{
		Width:         frame.Width,
		Height:        frame.Height,
		Format:        entry.format,
		WorkingWidth:  work.Bounds().Dx(),
		WorkingHeight: work.Bounds().Dy(),
		FileSizeBytes: stat.Size(),
	}, nil
}

// FileSource serves frames from an image file that is re-read on every call,
// standing in for a camera feed that another process keeps overwriting.
type FileSource struct {
	Path string
}

// Frame decodes the current contents of the file. A missing or half-written
// file is reported as an error and the runner skips that tick.
func (s FileSource) Frame(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := decodeFile(s.Path)
	if err != nil {
		return nil, err
	}
	return FrameFromImage(img), nil
}
