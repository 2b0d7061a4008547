package image

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Cleaner удаляет старые изображения по TTL в заданной директории.
type Cleaner struct {
	logger *zap.SugaredLogger
	exts   []string
}

func NewCleaner(logger *zap.SugaredLogger) *Cleaner {
	return &Cleaner{logger: logger, exts: []string{".jpg", ".jpeg"}}
}

// Clean удаляет файлы изображений старше ttl из dir и возвращает число удалённых.
func (c *Cleaner) Clean(dir string, ttl time.Duration, now time.Time) int {
	if ttl <= 0 || dir == "" {
		return 0
	}
	deadline := now.Add(-ttl)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger.Warnw("Не удалось прочитать директорию для очистки", "dir", dir, "error", err)
		}
		return 0
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		lower := strings.ToLower(e.Name())
		if !slices.ContainsFunc(c.exts, func(ext string) bool { return strings.HasSuffix(lower, ext) }) {
			continue
		}
		fi, statErr := e.Info()
		if statErr != nil {
			c.logger.Warnw("Не удалось получить информацию о файле при очистке", "name", e.Name(), "error", statErr)
			continue
		}
		if fi.ModTime().Before(deadline) {
			full := filepath.Join(dir, e.Name())
			if err := os.Remove(full); err != nil {
				c.logger.Warnw("Не удалось удалить старый файл", "path", full, "error", err)
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debugw("Старые скриншоты удалены", "dir", dir, "removed", removed)
	}
	return removed
}
