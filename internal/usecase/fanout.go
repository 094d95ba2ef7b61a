package usecase

import (
	"context"

	"github.com/rs/zerolog"
)

// The client fan-out keeps several denormalized locations in sync without a
// multi-document transaction. It runs as an ordered list of named steps and
// reports per-step outcomes: a failed critical step aborts the operation,
// a failed non-critical step (mirror writes) is logged and tolerated.

type fanoutStep struct {
	Name     string
	Critical bool
	Run      func(ctx context.Context) error
}

// StepResult records one fan-out step's outcome.
type StepResult struct {
	Name string `json:"etapa"`
	OK   bool   `json:"ok"`
	Err  string `json:"erro,omitempty"`
}

// FanoutReport enumerates which sub-writes succeeded.
type FanoutReport struct {
	Steps []StepResult `json:"etapas"`
}

// Failed returns the names of the steps that did not succeed.
func (r FanoutReport) Failed() []string {
	var out []string
	for _, s := range r.Steps {
		if !s.OK {
			out = append(out, s.Name)
		}
	}
	return out
}

// runFanout executes the steps in order. It returns the report plus the
// first critical error, if any; steps after a critical failure are not run.
func runFanout(ctx context.Context, log *zerolog.Logger, steps []fanoutStep) (FanoutReport, error) {
	var report FanoutReport
	for _, step := range steps {
		err := step.Run(ctx)
		res := StepResult{Name: step.Name, OK: err == nil}
		if err != nil {
			res.Err = err.Error()
		}
		report.Steps = append(report.Steps, res)
		if err == nil {
			continue
		}
		if step.Critical {
			log.Error().Err(err).Str("step", step.Name).Msg("fanout: critical step failed")
			return report, err
		}
		log.Warn().Err(err).Str("step", step.Name).Msg("fanout: non-critical step failed, continuing")
	}
	return report, nil
}
