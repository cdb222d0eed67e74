package imaging

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/image/bmp"
)

// createTestImage creates a PNG file filled with c and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	return writeTestImage(t, filepath.Join(t.TempDir(), "test-image.png"), width, height, c)
}

func writeTestImage(t *testing.T, path string, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.images == nil {
		t.Fatal("NewImageCache did not initialize images map")
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 100, 100, color.RGBA{255, 0, 0, 255})

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x100", bounds.Dx(), bounds.Dy())
	}

	// Second load should return cached image
	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
}

func TestImageCache_Reload(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 10, 10, color.RGBA{0, 0, 0, 255})

	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Overwrite the file the way a live feed would.
	writeTestImage(t, imgPath, 20, 5, color.RGBA{255, 255, 255, 255})

	stale, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if stale.Bounds().Dx() != 10 {
		t.Errorf("Load should serve the cached copy, got width %d", stale.Bounds().Dx())
	}

	fresh, err := cache.Reload(imgPath)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if fresh.Bounds().Dx() != 20 {
		t.Errorf("Reload width: got %d, want 20", fresh.Bounds().Dx())
	}

	// Reload replaces the cached copy.
	again, _ := cache.Load(imgPath)
	if again != fresh {
		t.Error("Reload did not update the cache")
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	if _, err := cache.Load("/nonexistent/path/to/image.png"); err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	cache := NewImageCache()
	path := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := cache.Load(path); err == nil {
		t.Error("Load should fail for invalid image data")
	}
}

func TestImageCache_ClearAndEvict(t *testing.T) {
	cache := NewImageCache()
	a := createTestImage(t, 8, 8, color.RGBA{0, 255, 0, 255})
	b := createTestImage(t, 8, 8, color.RGBA{0, 0, 255, 255})

	for _, p := range []string{a, b} {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}

	cache.Evict(a)
	cache.Evict("/nonexistent/path")

	cache.mu.RLock()
	_, hasA := cache.images[a]
	_, hasB := cache.images[b]
	cache.mu.RUnlock()
	if hasA || !hasB {
		t.Errorf("after Evict: hasA=%v hasB=%v, want false true", hasA, hasB)
	}

	cache.Clear()
	cache.mu.RLock()
	count := len(cache.images)
	cache.mu.RUnlock()
	if count != 0 {
		t.Errorf("Clear did not empty cache: %d images remain", count)
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{128, 128, 128, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 40)

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := cache.Reload(imgPath); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent load error: %v", err)
	}
}

func TestLoadFrame(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 30, 20, color.RGBA{10, 20, 30, 255})

	f, err := LoadFrame(cache, imgPath, false)
	if err != nil {
		t.Fatalf("LoadFrame failed: %v", err)
	}
	if !f.Ready() {
		t.Fatal("loaded frame not ready")
	}
	if f.Width != 30 || f.Height != 20 || f.Channels != 4 {
		t.Errorf("frame geometry: got %dx%dx%d", f.Width, f.Height, f.Channels)
	}
	if f.Pix[0] != 10 || f.Pix[1] != 20 || f.Pix[2] != 30 || f.Pix[3] != 255 {
		t.Errorf("first pixel: got %v", f.Pix[:4])
	}
}

func TestLoadFrameInfo(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 1280, 720, color.RGBA{255, 255, 255, 255})

	info, err := LoadFrameInfo(cache, imgPath)
	if err != nil {
		t.Fatalf("LoadFrameInfo failed: %v", err)
	}
	if info.Width != 1280 || info.Height != 720 {
		t.Errorf("dimensions: got %dx%d", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %s, want png", info.Format)
	}
	if info.WorkingWidth != 640 || info.WorkingHeight != 360 {
		t.Errorf("working size: got %dx%d, want 640x360", info.WorkingWidth, info.WorkingHeight)
	}
	if info.FileSizeBytes <= 0 {
		t.Error("file size should be positive")
	}
}

func TestLoadFrameInfo_JPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.jpg")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	if err := jpeg.Encode(f, img, nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	f.Close()

	info, err := LoadFrameInfo(NewImageCache(), path)
	if err != nil {
		t.Fatalf("LoadFrameInfo failed: %v", err)
	}
	if info.Format != "jpeg" {
		t.Errorf("format: got %s, want jpeg", info.Format)
	}
}

func TestLoadFrame_BMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.bmp")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 90, 90, 90, 255
	}
	if err := bmp.Encode(f, img); err != nil {
		t.Fatalf("failed to encode bmp: %v", err)
	}
	f.Close()

	cache := NewImageCache()
	info, err := LoadFrameInfo(cache, path)
	if err != nil {
		t.Fatalf("LoadFrameInfo failed: %v", err)
	}
	if info.Format != "bmp" {
		t.Errorf("format: got %s, want bmp", info.Format)
	}

	frame, err := LoadFrame(cache, path, false)
	if err != nil {
		t.Fatalf("LoadFrame failed: %v", err)
	}
	if frame.Width != 8 || frame.Height != 6 {
		t.Errorf("size: got %dx%d, want 8x6", frame.Width, frame.Height)
	}
	if frame.Pix[0] != 90 {
		t.Errorf("red: got %d, want 90", frame.Pix[0])
	}
}

func TestFileSource(t *testing.T) {
	imgPath := createTestImage(t, 4, 4, color.RGBA{0, 0, 0, 255})
	src := FileSource{Path: imgPath}

	f, err := src.Frame(context.Background())
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if f.Pix[0] != 0 {
		t.Errorf("first frame red: got %d, want 0", f.Pix[0])
	}

	writeTestImage(t, imgPath, 4, 4, color.RGBA{200, 0, 0, 255})
	f, err = src.Frame(context.Background())
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if f.Pix[0] != 200 {
		t.Errorf("source did not re-read the file: red %d, want 200", f.Pix[0])
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Frame(ctx); err == nil {
		t.Error("Frame should fail on a cancelled context")
	}
	if _, err := (FileSource{Path: "/nonexistent.png"}).Frame(context.Background()); err == nil {
		t.Error("Frame should fail for a missing file")
	}
}
