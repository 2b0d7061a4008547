package sink

import (
	"Nemo/internal/service/rewind"

	"go.uber.org/zap"
)

// Ensure interface compliance
var _ rewind.Sink = (*DryRun)(nil)

// DryRun только логирует действия. Для отладки без синтеза нажатий.
type DryRun struct {
	logger *zap.SugaredLogger
}

func NewDryRun(logger *zap.SugaredLogger) *DryRun { return &DryRun{logger: logger} }

func (d *DryRun) Apply(a rewind.Action) error {
	d.logger.Infow("Dry-run inverse", "action", a.String(), "strokes", len(PlanLocal(a)))
	return nil
}

func (d *DryRun) Type(text string) error {
	d.logger.Infow("Dry-run type", "chars", len([]rune(text)))
	return nil
}

func (d *DryRun) Copy() error {
	d.logger.Infow("Dry-run copy")
	return nil
}
