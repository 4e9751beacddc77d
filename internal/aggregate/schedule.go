package aggregate

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Schedule runs the rollup of the previous UTC day on a cron spec until ctx
// is done. The spec uses the standard five fields and is read in UTC.
func (aggregator *Aggregator) Schedule(ctx context.Context, spec string, now func() time.Time) error {
	runner := cron.New(cron.WithLocation(time.UTC))

	_, err := runner.AddFunc(spec, func() {
		day := now().UTC().AddDate(0, 0, -1)
		summaries, err := aggregator.RunDay(ctx, day)

		if err != nil {
			aggregator.log.Error("daily rollup failed", zap.Time("day", day), zap.Error(err))

			return
		}

		aggregator.log.Info("daily rollup finished", zap.Time("day", day), zap.Int("pairs", len(summaries)))
	})

	if err != nil {
		return err
	}

	runner.Start()
	aggregator.log.Info("rollup scheduled", zap.String("spec", spec))
	<-ctx.Done()
	<-runner.Stop().Done()

	return nil
}
