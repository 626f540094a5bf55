package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rxtech-lab/argo-steps/internal/datasource"
	"github.com/stretchr/testify/suite"
)

type CLITestSuite struct {
	suite.Suite
	tempDir      string
	settingsPath string
}

func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func (suite *CLITestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()

	stepsFile, err := filepath.Abs(filepath.Join("..", "..", "configs", "steps.yaml"))
	suite.Require().NoError(err)

	strategiesDir, err := filepath.Abs(filepath.Join("..", "..", "configs", "strategies"))
	suite.Require().NoError(err)

	settings := fmt.Sprintf(`
steps_file: %s
strategies_dir: %s
window_size: 100
log:
  level: error
history:
  output: %s
metrics:
  enabled: true
  textfile: %s
`, stepsFile, strategiesDir, suite.path("results", "history.parquet"), suite.path("results", "steps.prom"))

	suite.settingsPath = suite.path("argo.yaml")
	suite.Require().NoError(os.WriteFile(suite.settingsPath, []byte(settings), 0o600))
}

func (suite *CLITestSuite) path(parts ...string) string {
	return filepath.Join(append([]string{suite.tempDir}, parts...)...)
}

// run executes the CLI with args after the global --config flag and returns stdout.
func (suite *CLITestSuite) run(stdin string, args ...string) (string, error) {
	app := newApp()

	var out bytes.Buffer

	app.Writer = &out
	app.Reader = strings.NewReader(stdin)

	err := app.Run(context.Background(), append([]string{"argo-steps", "--config", suite.settingsPath}, args...))

	return out.String(), err
}

func (suite *CLITestSuite) generate(name string, bars int, symbols ...string) string {
	output := suite.path(name)
	args := []string{"generate", "--output", output, "--bars", fmt.Sprint(bars)}

	for _, symbol := range symbols {
		args = append(args, "--symbol", symbol)
	}

	out, err := suite.run("", args...)
	suite.Require().NoError(err)
	suite.Contains(out, fmt.Sprintf("wrote %d bars", bars*len(symbols)))

	return output
}

func (suite *CLITestSuite) TestRunWritesHistoryAndMetrics() {
	data := suite.generate("bars.parquet", 60, "AAA", "BBB")

	out, err := suite.run("", "run", "--strategy", "momentum", "--data", data, "--no-progress")
	suite.Require().NoError(err)

	suite.Contains(out, "Strategy momentum")
	suite.Contains(out, "AAA")
	suite.Contains(out, "BBB")
	suite.Contains(out, "trend=")
	suite.Contains(out, "quantity=")

	_, err = os.Stat(suite.path("results", "history.parquet"))
	suite.NoError(err)

	prom, err := os.ReadFile(suite.path("results", "steps.prom"))
	suite.Require().NoError(err)
	suite.Contains(string(prom), `argo_steps_bars_total{strategy="momentum",symbol="AAA"} 60`)
	suite.Contains(string(prom), `kind="reevaluation"`)
}

func (suite *CLITestSuite) TestRunSingleSymbolWithoutData() {
	_, err := suite.run("", "run", "--strategy", "momentum")
	suite.ErrorContains(err, "no price series")

	data := suite.generate("bars.csv", 40, "AAA", "BBB")

	out, err := suite.run("", "run", "--strategy", "wide_range", "--data", data, "--symbol", "BBB", "--no-progress")
	suite.Require().NoError(err)
	suite.Contains(out, "BBB")
	suite.NotContains(out, "AAA")
}

func (suite *CLITestSuite) TestRunUnknownStrategy() {
	_, err := suite.run("", "run", "--strategy", "missing", "--data", suite.path("none.parquet"))
	suite.Error(err)
}

func (suite *CLITestSuite) TestValidateAndSteps() {
	out, err := suite.run("", "validate")
	suite.Require().NoError(err)
	suite.Contains(out, "9 step definitions")
	suite.Contains(out, "momentum")
	suite.Contains(out, "wide_range")
	suite.Contains(out, "atr_stop")

	out, err = suite.run("", "validate", "--strategy", "wide_range")
	suite.Require().NoError(err)
	suite.NotContains(out, "momentum")

	out, err = suite.run("", "steps")
	suite.Require().NoError(err)
	suite.Contains(out, "technical.wide_range_bar")
	suite.Contains(out, "stop<-runtime:stop")
	suite.Contains(out, "series_length->wrb_length")
}

func (suite *CLITestSuite) TestSchema() {
	dir := suite.path("schemas")

	out, err := suite.run("", "schema", "--output", dir)
	suite.Require().NoError(err)

	for _, name := range []string{"argo.schema.json", "steps.schema.json", "strategy.schema.json"} {
		suite.Contains(out, name)

		content, err := os.ReadFile(filepath.Join(dir, name))
		suite.Require().NoError(err)
		suite.True(json.Valid(content), name)
	}
}

func (suite *CLITestSuite) TestLive() {
	config := datasource.DefaultGeneratorConfig()
	config.Count = 3
	bars := datasource.NewGenerator(1).Generate(config)

	var stdin strings.Builder

	for _, bar := range []int{0, 1, 0, 2} {
		line, err := json.Marshal(bars[bar])
		suite.Require().NoError(err)
		stdin.Write(line)
		stdin.WriteString("\n\n")
	}

	out, err := suite.run(stdin.String(), "live", "--strategy", "momentum")
	suite.Require().NoError(err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	// the out-of-order bar is skipped
	suite.Require().Len(lines, 3)

	var runID string

	for i, line := range lines {
		var report reportLine
		suite.Require().NoError(json.Unmarshal([]byte(line), &report))

		if i == 0 {
			runID = report.RunID
		}

		suite.Equal(runID, report.RunID)
		suite.Equal(config.Symbol, report.Symbol)
		suite.Equal("detect_trend", report.HaltedAt)
		suite.Require().Len(report.Attempts, 1)
		suite.False(report.Attempts[0].Success)
	}

	var last reportLine
	suite.Require().NoError(json.Unmarshal([]byte(lines[2]), &last))
	suite.True(last.Time.Equal(bars[2].Time))

	_, err = suite.run("not json\n", "live", "--strategy", "momentum")
	suite.ErrorContains(err, "failed to decode bar")
}
