package export

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/vaxpanel/internal/model"
)

func testRow() *model.Row {
	price := 2.9
	return &model.Row{
		CountryCode:    "AAA",
		CountryName:    "Alphaland",
		Year:           2020,
		IncomeClass:    "LM",
		IncomeGroup:    model.IncomeGroupNonHIC,
		GaviSupported:  model.GaviSupportedYes,
		Regime:         model.RegimeClassic,
		Trajectory:     model.TrajectoryClassicAlways,
		TrajectoryCode: 1,
		VaxFdCov:       "63.5",
		FirstIntroRaw:  "2018",
		MarketSegment:  model.SegmentGavi73,
		VaxPrice:       &price,
	}
}

func TestExport_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS hpv_panel").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("TRUNCATE hpv_panel").WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"hpv_panel"}, Columns).WillReturnResult(1)

	n, err := New(mock, "", "hpv_panel").Export(context.Background(), []*model.Row{testRow()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExport_SchemaQualified(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE SCHEMA IF NOT EXISTS vaxpanel").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS vaxpanel.hpv_panel").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("TRUNCATE vaxpanel.hpv_panel").WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"vaxpanel", "hpv_panel"}, Columns).WillReturnResult(1)

	n, err := New(mock, "vaxpanel", "hpv_panel").Export(context.Background(), []*model.Row{testRow()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExport_CopyError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS hpv_panel").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("TRUNCATE hpv_panel").WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"hpv_panel"}, Columns).WillReturnError(fmt.Errorf("connection reset"))

	_, err = New(mock, "", "hpv_panel").Export(context.Background(), []*model.Row{testRow()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO hpv_panel")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExport_ShortCopyIsError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS hpv_panel").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("TRUNCATE hpv_panel").WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"hpv_panel"}, Columns).WillReturnResult(1)

	_, err = New(mock, "", "hpv_panel").Export(context.Background(), []*model.Row{testRow(), testRow()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "copied 1 of 2")
}

func TestRowValuesTyping(t *testing.T) {
	r := testRow()
	vals := rowValues(r)
	require.Len(t, vals, len(Columns))

	assert.Equal(t, "AAA", vals[0])
	assert.Equal(t, 63.5, vals[14], "numeric coverage exports typed")
	assert.Equal(t, 2018, vals[16], "introduction year exports typed")
	assert.Equal(t, 2.9, vals[18])

	r.VaxFdCov = "pending"
	r.FirstIntroRaw = ""
	r.VaxPrice = nil
	vals = rowValues(r)
	assert.Nil(t, vals[14], "non-numeric coverage exports NULL")
	assert.Nil(t, vals[16])
	assert.Nil(t, vals[18])
}
