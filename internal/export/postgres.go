// Package export loads the final panel into Postgres for downstream
// analysis tooling.
package export

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/db"
	"github.com/sells-group/vaxpanel/internal/model"
)

// Columns is the COPY column order. It must match the DDL in schemaDDL.
var Columns = []string{
	"country_code",
	"country_name",
	"year",
	"income_class",
	"income_group",
	"hic_flag",
	"gavi_spec",
	"gavi_supported",
	"gavi_regime",
	"ever_classic_gavi",
	"ever_supported_by_gavi",
	"gavi_trajectory",
	"gavi_trajectory_code",
	"who_region",
	"vax_fd_cov",
	"vax_int_doses",
	"vax_year_introduction",
	"vax_market_segment",
	"vax_price_2024",
	"cc_crude_rate_2022",
	"dtp_fd_cov",
	"dtp_ld_cov",
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS %s (
	country_code           TEXT NOT NULL,
	country_name           TEXT,
	year                   INTEGER NOT NULL,
	income_class           TEXT,
	income_group           TEXT,
	hic_flag               INTEGER,
	gavi_spec              TEXT,
	gavi_supported         TEXT,
	gavi_regime            TEXT,
	ever_classic_gavi      INTEGER,
	ever_supported_by_gavi INTEGER,
	gavi_trajectory        TEXT,
	gavi_trajectory_code   INTEGER,
	who_region             TEXT,
	vax_fd_cov             DOUBLE PRECISION,
	vax_int_doses          TEXT,
	vax_year_introduction  INTEGER,
	vax_market_segment     TEXT,
	vax_price_2024         DOUBLE PRECISION,
	cc_crude_rate_2022     DOUBLE PRECISION,
	dtp_fd_cov             DOUBLE PRECISION,
	dtp_ld_cov             DOUBLE PRECISION,
	PRIMARY KEY (country_code, year)
)`

// Exporter writes panel rows to Postgres with COPY.
type Exporter struct {
	pool   db.Pool
	schema string
	table  string
}

// New returns an Exporter targeting schema.table over an open pool. An empty
// schema targets the connection's default search path.
func New(pool db.Pool, schema, table string) *Exporter {
	return &Exporter{pool: pool, schema: schema, table: table}
}

func (e *Exporter) qualified() string {
	if e.schema == "" {
		return e.table
	}
	return e.schema + "." + e.table
}

// Export replaces the table contents with the given rows: migrate, truncate,
// then a single COPY.
func (e *Exporter) Export(ctx context.Context, rows []*model.Row) (int64, error) {
	if e.schema != "" {
		if _, err := e.pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+e.schema); err != nil {
			return 0, eris.Wrapf(err, "export: create schema %s", e.schema)
		}
	}
	if _, err := e.pool.Exec(ctx, fmt.Sprintf(schemaDDL, e.qualified())); err != nil {
		return 0, eris.Wrapf(err, "export: create table %s", e.qualified())
	}
	if _, err := e.pool.Exec(ctx, "TRUNCATE "+e.qualified()); err != nil {
		return 0, eris.Wrapf(err, "export: truncate %s", e.qualified())
	}

	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		values = append(values, rowValues(row))
	}

	var n int64
	var err error
	if e.schema == "" {
		n, err = db.CopyFrom(ctx, e.pool, e.table, Columns, values)
	} else {
		n, err = db.CopyFromSchema(ctx, e.pool, e.schema, e.table, Columns, values)
	}
	if err != nil {
		return 0, err
	}
	if n != int64(len(rows)) {
		return n, eris.Errorf("export: copied %d of %d rows", n, len(rows))
	}

	zap.L().Info("export: panel loaded",
		zap.String("table", e.qualified()), zap.Int64("rows", n))
	return n, nil
}

// rowValues maps one panel row to the COPY column order. Raw string cells
// that fail numeric parsing export as NULL; the XLSX output keeps the raw
// text, the relational copy is typed.
func rowValues(r *model.Row) []any {
	var cov any
	if v, ok := r.CoverageValue(); ok {
		cov = v
	}
	var intro any
	if v, ok := r.IntroYear(); ok {
		intro = v
	}

	return []any{
		r.CountryCode,
		nullText(r.CountryName),
		r.Year,
		nullText(r.IncomeClass),
		nullText(r.IncomeGroup),
		r.HICFlag,
		nullText(r.GaviSpec),
		nullText(r.GaviSupported),
		nullText(r.Regime),
		r.EverClassicGavi,
		r.EverSupported,
		nullText(r.Trajectory),
		r.TrajectoryCode,
		nullText(r.WHORegion),
		cov,
		nullText(r.DoseLabel),
		intro,
		nullText(r.MarketSegment),
		nullFloat(r.VaxPrice),
		nullFloat(r.CervicalRate),
		nullFloat(r.DTPFdCov),
		nullFloat(r.DTPLdCov),
	}
}

func nullText(s string) any {
	if model.CleanCell(s) == "" {
		return nil
	}
	return s
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
