package screenshotter

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/draw"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"
	"time"

	"Nemo/internal/config"
	imgsvc "Nemo/internal/service/image"

	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

// ErrNoDisplays: нет активных мониторов.
var ErrNoDisplays = errors.New("screenshot: no active displays")

const maxWidth = 1280

// Shot: снятый кадр всего рабочего стола.
type Shot struct {
	JPEG []byte
	Path string // пусто, если сохранить на диск не удалось
}

// Screenshotter снимает экран по запросу ассистента и чистит старые кадры.
type Screenshotter struct {
	dir     string
	ttl     time.Duration
	debug   bool
	cleaner *imgsvc.Cleaner
	logger  *zap.SugaredLogger
}

func New(cfg *config.Config, logger *zap.SugaredLogger) *Screenshotter {
	return &Screenshotter{
		dir:     cfg.ScreenshotDir,
		ttl:     cfg.ScreenshotTTL,
		debug:   cfg.DebugMode,
		cleaner: imgsvc.NewCleaner(logger),
		logger:  logger,
	}
}

// Run периодически удаляет скриншоты старше TTL. В режиме дебага кадры сохраняются.
func (s *Screenshotter) Run(ctx context.Context) {
	if s.debug || s.ttl <= 0 {
		s.logger.Infow("Screenshot cleanup disabled", "debug", s.debug, "ttl", s.ttl.String())
		return
	}
	t := time.NewTicker(max(s.ttl/2, time.Second))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.cleaner.Clean(s.dir, s.ttl, now)
		}
	}
}

// Capture снимает все мониторы одним кадром, ужимает до maxWidth и кодирует в JPEG.
func (s *Screenshotter) Capture() (Shot, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return Shot{}, ErrNoDisplays
	}

	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}

	canvas := image.NewRGBA(union)
	for i := range n {
		b := screenshot.GetDisplayBounds(i)
		img, err := screenshot.CaptureRect(b)
		if err != nil {
			s.logger.Errorw("Failed to capture display", "index", i, "error", err)
			continue
		}
		dstPoint := image.Pt(b.Min.X-union.Min.X, b.Min.Y-union.Min.Y)
		draw.Draw(canvas, image.Rectangle{Min: dstPoint, Max: dstPoint.Add(b.Size())}, img, image.Point{}, draw.Src)
	}

	out := Fit(canvas, maxWidth)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: 90}); err != nil {
		return Shot{}, err
	}
	shot := Shot{JPEG: buf.Bytes()}
	shot.Path = s.save(shot.JPEG)
	return shot, nil
}

func (s *Screenshotter) save(data []byte) string {
	if s.dir == "" {
		return ""
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.logger.Warnw("Failed to create screenshot dir", "dir", s.dir, "error", err)
		return ""
	}
	path := filepath.Join(s.dir, time.Now().Format("2006-01-02_15-04-05-000")+".jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Warnw("Failed to save screenshot", "path", path, "error", err)
		return ""
	}
	return path
}

// Fit уменьшает изображение до ширины width с сохранением пропорций.
func Fit(src image.Image, width int) image.Image {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if w <= width {
		return src
	}
	scale := float64(width) / float64(w)
	return resizeNearest(src, width, max(1, int(math.Round(float64(h)*scale))))
}

// resizeNearest масштабирует методом ближайшего соседа.
func resizeNearest(src image.Image, width int, height int) *image.RGBA {
	srcBounds := src.Bounds()
	srcW, srcH := srcBounds.Dx(), srcBounds.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if srcW == 0 || srcH == 0 {
		return dst
	}
	for y := range height {
		srcY := srcBounds.Min.Y + y*srcH/height
		for x := range width {
			srcX := srcBounds.Min.X + x*srcW/width
			dst.Set(x, y, src.At(srcX, srcY))
		}
	}
	return dst
}
