package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/vaxpanel/internal/config"
	"github.com/sells-group/vaxpanel/internal/model"
	"github.com/sells-group/vaxpanel/internal/source"
)

// Sources holds every normalized input table plus the per-source load
// diagnostics.
type Sources struct {
	Income   []model.IncomeRecord
	Gavi     []model.GaviRecord
	Coverage []model.CoverageRecord
	History  []model.HPVHistRecord
	Metadata []model.MetadataRecord
	Cervical []model.CervicalRecord
	DTPFirst []model.DTPRecord
	DTPLast  []model.DTPRecord

	IncomeDiag   source.LoadDiag
	GaviDiag     source.GaviDiag
	CoverageDiag source.LoadDiag
	HistoryDiag  source.LoadDiag
	MetadataDiag source.LoadDiag
	CervicalDiag source.LoadDiag
	DTPFirstDiag source.LoadDiag
	DTPLastDiag  source.LoadDiag
}

// LoadSources normalizes all eight input extracts. The loads are independent
// file reads, so they run concurrently; the first failure cancels the rest.
func LoadSources(ctx context.Context, paths config.PathsConfig) (*Sources, error) {
	src := &Sources{}
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		src.Income, src.IncomeDiag, err = source.LoadIncome(paths.IncomeHistory, source.DefaultIncomeLayout())
		return err
	})
	g.Go(func() error {
		var err error
		src.Gavi, src.GaviDiag, err = source.LoadGavi(paths.GaviEligibility, paths.GaviMICList, paths.GaviReference)
		return err
	})
	g.Go(func() error {
		var err error
		src.Coverage, src.CoverageDiag, err = source.LoadCoverage(paths.Coverage)
		return err
	})
	g.Go(func() error {
		var err error
		src.History, src.HistoryDiag, err = source.LoadHPVHistory(paths.HPVHistory)
		return err
	})
	g.Go(func() error {
		var err error
		src.Metadata, src.MetadataDiag, err = source.LoadMetadata(paths.VaxMetadata)
		return err
	})
	g.Go(func() error {
		var err error
		src.Cervical, src.CervicalDiag, err = source.LoadCervical(paths.CervicalRates)
		return err
	})
	g.Go(func() error {
		var err error
		src.DTPFirst, src.DTPFirstDiag, err = source.LoadDTP(paths.DTPFirstDose, "dtp first dose", "dtp_data_source", "dtp_fd_cov")
		return err
	})
	g.Go(func() error {
		var err error
		src.DTPLast, src.DTPLastDiag, err = source.LoadDTP(paths.DTPLastDose, "dtp last dose", "dtp_data_source_ld", "dtp_ld_cov")
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return src, nil
}
