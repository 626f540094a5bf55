package datasource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-steps/internal/logger"
	"github.com/rxtech-lab/argo-steps/internal/types"
	"github.com/stretchr/testify/suite"
)

const seriesCSV = `time,symbol,open,high,low,close,volume
2024-01-02 09:32:00,SPY,101.0,102.5,100.5,102.0,1500.0
2024-01-02 09:30:00,SPY,100.0,101.0,99.5,100.5,1000.0
2024-01-02 09:31:00,SPY,100.5,101.5,100.0,101.0,1200.0
2024-01-02 09:30:00,QQQ,400.0,401.0,399.0,400.5,800.0
`

type DuckDBTestSuite struct {
	suite.Suite
	tempDir string
	csvPath string
}

func TestDuckDBSuite(t *testing.T) {
	suite.Run(t, new(DuckDBTestSuite))
}

func (suite *DuckDBTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "datasource_test")
	suite.Require().NoError(err)
	suite.tempDir = tempDir

	suite.csvPath = filepath.Join(tempDir, "bars.csv")
	suite.Require().NoError(os.WriteFile(suite.csvPath, []byte(seriesCSV), 0o600))
}

func (suite *DuckDBTestSuite) TearDownTest() {
	os.RemoveAll(suite.tempDir)
}

func (suite *DuckDBTestSuite) collect(series PriceSeries, query Query) []types.MarketData {
	var bars []types.MarketData

	for bar, err := range series.ReadAll(query) {
		suite.Require().NoError(err)
		bars = append(bars, bar)
	}

	return bars
}

func (suite *DuckDBTestSuite) assertSeries(series PriceSeries) {
	count, err := series.Count(Query{})
	suite.Require().NoError(err)
	suite.Equal(4, count)

	symbols, err := series.Symbols()
	suite.Require().NoError(err)
	suite.Equal([]string{"QQQ", "SPY"}, symbols)

	spy := suite.collect(series, Query{Symbol: optional.Some("SPY")})
	suite.Require().Len(spy, 3)
	suite.Equal(100.5, spy[0].Close)
	suite.Equal(101.0, spy[1].Close)
	suite.Equal(102.0, spy[2].Close)
	suite.True(spy[0].Time.Before(spy[1].Time))

	start := time.Date(2024, 1, 2, 9, 31, 0, 0, time.UTC)
	ranged, err := series.Count(Query{Symbol: optional.Some("SPY"), Start: optional.Some(start)})
	suite.Require().NoError(err)
	suite.Equal(2, ranged)

	end := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	first := suite.collect(series, Query{End: optional.Some(end)})
	suite.Len(first, 2)
}

func (suite *DuckDBTestSuite) TestCSV() {
	series, err := NewDuckDB(suite.csvPath, logger.NewNopLogger())
	suite.Require().NoError(err)
	defer series.Close()

	suite.assertSeries(series)
}

func (suite *DuckDBTestSuite) TestParquet() {
	csvSeries, err := NewDuckDB(suite.csvPath, logger.NewNopLogger())
	suite.Require().NoError(err)

	bars := suite.collect(csvSeries, Query{})
	suite.Require().NoError(csvSeries.Close())

	parquetPath := filepath.Join(suite.tempDir, "bars.parquet")
	suite.Require().NoError(WriteSeries(parquetPath, bars))

	series, err := NewDuckDB(parquetPath, logger.NewNopLogger())
	suite.Require().NoError(err)
	defer series.Close()

	suite.assertSeries(series)
}

func (suite *DuckDBTestSuite) TestWriteGeneratedCSV() {
	config := DefaultGeneratorConfig()
	config.Count = 1200

	bars := NewGenerator(7).GenerateSymbols([]string{"AAA", "BBB"}, config)
	path := filepath.Join(suite.tempDir, "generated.csv")
	suite.Require().NoError(WriteSeries(path, bars))

	series, err := NewDuckDB(path, logger.NewNopLogger())
	suite.Require().NoError(err)
	defer series.Close()

	count, err := series.Count(Query{Symbol: optional.Some("BBB")})
	suite.Require().NoError(err)
	suite.Equal(1200, count)

	read := suite.collect(series, Query{Symbol: optional.Some("AAA")})
	suite.Require().Len(read, 1200)
	suite.InDelta(bars[0].Close, read[0].Close, 1e-9)
	suite.True(read[0].Time.Equal(bars[0].Time))
}

func (suite *DuckDBTestSuite) TestEarlyStop() {
	series, err := NewDuckDB(suite.csvPath, logger.NewNopLogger())
	suite.Require().NoError(err)
	defer series.Close()

	seen := 0

	for _, err := range series.ReadAll(Query{}) {
		suite.Require().NoError(err)

		seen++

		break
	}

	suite.Equal(1, seen)
}

func (suite *DuckDBTestSuite) TestMissingFile() {
	_, err := NewDuckDB(filepath.Join(suite.tempDir, "missing.parquet"), logger.NewNopLogger())
	suite.Error(err)
}

func (suite *DuckDBTestSuite) TestMemorySeries() {
	var bars []types.MarketData

	for bar, err := range NewMemorySeries(nil).ReadAll(Query{}) {
		suite.Require().NoError(err)
		bars = append(bars, bar)
	}

	suite.Empty(bars)

	t0 := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	series := NewMemorySeries([]types.MarketData{
		{Symbol: "SPY", Time: t0.Add(2 * time.Minute), Close: 102.0},
		{Symbol: "SPY", Time: t0, Close: 100.5},
		{Symbol: "SPY", Time: t0.Add(time.Minute), Close: 101.0},
		{Symbol: "QQQ", Time: t0, Close: 400.5},
	})
	suite.assertSeries(series)
	suite.NoError(series.Close())
}
