// Package pipeline orchestrates the panel build: source normalization, the
// balanced-panel assembly and merges, the imputation rules, classification,
// and the report and export outputs.
package pipeline

import (
	"context"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/classify"
	"github.com/sells-group/vaxpanel/internal/config"
	"github.com/sells-group/vaxpanel/internal/export"
	"github.com/sells-group/vaxpanel/internal/model"
	"github.com/sells-group/vaxpanel/internal/panel"
	"github.com/sells-group/vaxpanel/internal/report"
	"github.com/sells-group/vaxpanel/internal/rules"
	"github.com/sells-group/vaxpanel/internal/store"
)

// Pipeline runs the full country-year panel build.
type Pipeline struct {
	cfg      *config.Config
	store    store.Store
	exporter *export.Exporter
}

// New creates a Pipeline. Store and exporter are optional; without a store
// the run is not recorded, without an exporter the Postgres load is skipped.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// SetStore attaches run-history persistence.
func (p *Pipeline) SetStore(st store.Store) { p.store = st }

// SetExporter attaches the Postgres panel export.
func (p *Pipeline) SetExporter(e *export.Exporter) { p.exporter = e }

// PanelDiags collects the assembly and merge diagnostics.
type PanelDiags struct {
	Assemble panel.AssembleDiag `json:"assemble"`
	Coverage panel.CoverageDiag `json:"coverage"`
	Metadata panel.MetadataDiag `json:"metadata"`
	DTPFirst panel.DTPDiag      `json:"dtp_first"`
	DTPLast  panel.DTPDiag      `json:"dtp_last"`
}

// FinalDiags collects the rule-engine and classification diagnostics.
type FinalDiags struct {
	Rules          rules.Outcome       `json:"rules"`
	RestrictedOut  int                 `json:"restricted_out"`
	Regimes        classify.RegimeDiag `json:"regimes"`
	Trajectories   map[string]int      `json:"trajectories"`
	Segments       map[string]int      `json:"segments"`
	BalanceWarning []string            `json:"balance_warning,omitempty"`
}

// Result summarizes a completed run.
type Result struct {
	RunID       string      `json:"run_id,omitempty"`
	Rows        int         `json:"rows"`
	Countries   int         `json:"countries"`
	FinalPath   string      `json:"final_path"`
	SummaryPath string      `json:"summary_path"`
	Exported    int64       `json:"exported,omitempty"`
	Panel       *PanelDiags `json:"panel,omitempty"`
	Final       *FinalDiags `json:"final,omitempty"`
}

// Run executes every stage in order and records each in the store when one
// is attached. A stage failure fails the run; there is no partial recovery.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	log := zap.L()
	log.Info("pipeline: starting panel build")

	result := &Result{
		FinalPath:   p.cfg.Paths.FinalDataset,
		SummaryPath: p.cfg.Paths.SummaryDataset,
	}

	var runID string
	if p.store != nil {
		run, err := p.store.CreateRun(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: create run")
		}
		runID = run.ID
		result.RunID = runID
	}

	fail := func(err error) (*Result, error) {
		if p.store != nil && runID != "" {
			if failErr := p.store.FailRun(ctx, runID, err.Error()); failErr != nil {
				log.Warn("pipeline: failed to record run failure", zap.Error(failErr))
			}
		}
		return nil, err
	}

	var src *Sources
	err := p.trackStage(ctx, runID, "normalize", func() (any, error) {
		var loadErr error
		src, loadErr = LoadSources(ctx, p.cfg.Paths)
		if loadErr != nil {
			return nil, loadErr
		}
		return map[string]any{
			"income":   src.IncomeDiag,
			"gavi":     src.GaviDiag,
			"coverage": src.CoverageDiag,
			"history":  src.HistoryDiag,
			"metadata": src.MetadataDiag,
			"cervical": src.CervicalDiag,
			"dtp_fd":   src.DTPFirstDiag,
			"dtp_ld":   src.DTPLastDiag,
		}, nil
	})
	if err != nil {
		return fail(err)
	}

	var rows []*model.Row
	var panelDiags *PanelDiags
	err = p.trackStage(ctx, runID, "assemble", func() (any, error) {
		rows, panelDiags = p.BuildPanel(src)
		result.Panel = panelDiags
		return panelDiags, nil
	})
	if err != nil {
		return fail(err)
	}

	if dir := p.cfg.Paths.IntermDir; dir != "" {
		err = p.trackStage(ctx, runID, "write_interm", func() (any, error) {
			path := filepath.Join(dir, "combined_panel.xlsx")
			return map[string]string{"path": path}, report.WritePanel(path, "combined_panel", rows)
		})
		if err != nil {
			return fail(err)
		}
	}

	var finalDiags *FinalDiags
	err = p.trackStage(ctx, runID, "finalize", func() (any, error) {
		var finErr error
		rows, finalDiags, finErr = p.Finalize(rows)
		if finErr != nil {
			return nil, finErr
		}
		result.Final = finalDiags
		return finalDiags, nil
	})
	if err != nil {
		return fail(err)
	}

	err = p.trackStage(ctx, runID, "report", func() (any, error) {
		if writeErr := report.WritePanel(p.cfg.Paths.FinalDataset, "final_panel", rows); writeErr != nil {
			return nil, writeErr
		}
		if writeErr := report.WriteSummary(p.cfg.Paths.SummaryDataset, rows); writeErr != nil {
			return nil, writeErr
		}
		return map[string]string{
			"final":   p.cfg.Paths.FinalDataset,
			"summary": p.cfg.Paths.SummaryDataset,
		}, nil
	})
	if err != nil {
		return fail(err)
	}

	if p.exporter != nil {
		err = p.trackStage(ctx, runID, "export", func() (any, error) {
			n, expErr := p.exporter.Export(ctx, rows)
			if expErr != nil {
				return nil, expErr
			}
			result.Exported = n
			return map[string]int64{"rows": n}, nil
		})
		if err != nil {
			return fail(err)
		}
	}

	result.Rows = len(rows)
	countries := map[string]bool{}
	for _, row := range rows {
		countries[row.CountryCode] = true
	}
	result.Countries = len(countries)

	if p.store != nil && runID != "" {
		if err := p.store.CompleteRun(ctx, runID); err != nil {
			log.Warn("pipeline: failed to complete run", zap.Error(err))
		}
	}

	log.Info("pipeline: panel build complete",
		zap.Int("rows", result.Rows),
		zap.Int("countries", result.Countries),
	)
	return result, nil
}

// BuildPanel assembles the balanced panel and applies every merge.
func (p *Pipeline) BuildPanel(src *Sources) ([]*model.Row, *PanelDiags) {
	diags := &PanelDiags{}

	rows, assembleDiag := panel.Assemble(src.Income, src.Gavi, p.cfg.Panel.YearMin, p.cfg.Panel.YearMax)
	diags.Assemble = assembleDiag

	rows, diags.Coverage = panel.MergeCoverage(rows, src.Coverage, src.History)
	diags.Metadata = panel.MergeMetadata(rows, src.Metadata, src.Cervical)
	diags.DTPFirst = panel.MergeDTPFirst(rows, src.DTPFirst)
	diags.DTPLast = panel.MergeDTPLast(rows, src.DTPLast)

	return rows, diags
}

// Finalize restricts the panel to the analysis window, applies the
// imputation rules, and derives every classification column.
func (p *Pipeline) Finalize(rows []*model.Row) ([]*model.Row, *FinalDiags, error) {
	diags := &FinalDiags{}

	engine := rules.New(p.cfg.Panel.AnalysisYearMin, p.cfg.Panel.AnalysisYearMax)
	rows, diags.Rules = engine.Run(rows)

	rows, diags.RestrictedOut = classify.Restrict(rows)

	classify.ApplyIncome(rows)
	diags.Regimes = classify.ClassifyRegimes(rows)

	trajectories, err := classify.AssignTrajectories(rows)
	if err != nil {
		return nil, nil, err
	}
	diags.Trajectories = trajectories

	seg, err := classify.NewSegmenter()
	if err != nil {
		return nil, nil, err
	}
	diags.Segments = seg.Assign(rows)

	// The restriction to observed coverage breaks the full rectangle; the
	// balance check here is a data-quality signal, not an invariant.
	diags.BalanceWarning = panel.CheckBalance(rows, p.cfg.Panel.AnalysisYearMin, p.cfg.Panel.AnalysisYearMax)

	panel.SortRows(rows)
	return rows, diags, nil
}

// trackStage times a stage, serializes its diagnostics, and records both in
// the store when one is attached. Store write failures are logged, never
// fatal; losing a stage record must not fail the build.
func (p *Pipeline) trackStage(ctx context.Context, runID, name string, fn func() (any, error)) error {
	start := time.Now()
	diag, err := fn()
	duration := time.Since(start).Milliseconds()

	status := "completed"
	if err != nil {
		status = "failed"
		zap.L().Error("pipeline: stage failed",
			zap.String("stage", name),
			zap.Int64("duration_ms", duration),
			zap.Error(err),
		)
	} else {
		zap.L().Info("pipeline: stage complete",
			zap.String("stage", name),
			zap.Int64("duration_ms", duration),
		)
	}

	if p.store != nil && runID != "" {
		var diagJSON string
		if diag != nil {
			if b, marshalErr := json.Marshal(diag); marshalErr == nil {
				diagJSON = string(b)
			}
		}
		if _, stageErr := p.store.AddStage(ctx, runID, name, status, duration, diagJSON); stageErr != nil {
			zap.L().Warn("pipeline: failed to record stage",
				zap.String("stage", name), zap.Error(stageErr))
		}
	}

	return err
}
