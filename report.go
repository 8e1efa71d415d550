package dispatch

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// report logs the end-of-run summary (elapsed wall time, cumulative CPU
// time, their ratio, and the average per-job running time) and sends a
// notification email when WithNotifyEmail was set.
func report(s *session) {
	wall := time.Since(s.started)

	cpu, err := s.handle.Client().TotalTime()
	if err != nil {
		s.logger().Warn("fetching cumulative cpu time failed", zap.Error(err))
		cpu = 0
	}

	var ratio float64
	if wall > 0 {
		ratio = cpu.Seconds() / wall.Seconds()
	}
	var avg time.Duration
	if s.total > 0 {
		avg = cpu / time.Duration(s.total)
	}

	s.logger().Info("run complete",
		zap.Duration("wall_time", wall),
		zap.Duration("cpu_time", cpu),
		zap.Float64("cpu_to_wall_ratio", ratio),
		zap.Duration("avg_job_time", avg),
		zap.Int("total", s.total),
	)

	if s.cfg.Notify == nil {
		return
	}
	body := fmt.Sprintf(
		"dispatch run %s (%s) complete\ntotal jobs: %d\nwall time: %s\ncpu time: %s\ncpu/wall ratio: %.3f\navg job time: %s\n",
		s.runID, s.kind, s.total, wall, cpu, ratio, avg,
	)
	if err := sendNotification(*s.cfg.Notify, body); err != nil {
		s.logger().Warn("sending notification email failed", zap.Error(err))
	}
}
