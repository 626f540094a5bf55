package strategy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/argo-steps/internal/step"
	"github.com/rxtech-lab/argo-steps/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type CatalogTestSuite struct {
	suite.Suite
	tempDir  string
	registry *step.Registry
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogTestSuite))
}

func (suite *CatalogTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "strategy_catalog_test")
	suite.Require().NoError(err)
	suite.tempDir = tempDir
	suite.registry = newTestRegistry()
}

func (suite *CatalogTestSuite) TearDownTest() {
	os.RemoveAll(suite.tempDir)
}

func (suite *CatalogTestSuite) write(name, content string) {
	suite.Require().NoError(os.WriteFile(filepath.Join(suite.tempDir, name), []byte(content), 0o600))
}

const momentumStrategy = `
name: momentum
description: momentum with a confirming reevaluation
steps:
  - id: a
    config_bindings:
      period: 14
    runtime_bindings:
      input: close
  - id: b
    reevaluates: [a]
`

func (suite *CatalogTestSuite) TestGetCaches() {
	suite.write("momentum.yaml", momentumStrategy)
	catalog := NewCatalog(suite.tempDir, suite.registry)

	first, err := catalog.Get("momentum")
	suite.Require().NoError(err)
	suite.Equal("momentum", first.Name())

	period, ok := first.Steps()[0].ConfigValue("period")
	suite.True(ok)
	suite.Equal(14, period)

	second, err := catalog.Get("momentum")
	suite.Require().NoError(err)
	suite.Same(first, second)

	catalog.ClearCache()

	third, err := catalog.Get("momentum")
	suite.Require().NoError(err)
	suite.NotSame(first, third)
}

func (suite *CatalogTestSuite) TestGetAll() {
	suite.write("momentum.yaml", momentumStrategy)
	suite.write("basic.yaml", "name: basic\nsteps:\n  - id: c\n")
	suite.write("notes.txt", "not a strategy")
	suite.Require().NoError(os.Mkdir(filepath.Join(suite.tempDir, "nested"), 0o755))

	all, err := NewCatalog(suite.tempDir, suite.registry).GetAll()
	suite.Require().NoError(err)
	suite.Require().Len(all, 2)
	suite.Equal("basic", all[0].Name())
	suite.Equal("momentum", all[1].Name())
}

func (suite *CatalogTestSuite) TestGetAllPropagatesHydrationErrors() {
	suite.write("loop.yaml", "name: loop\nsteps:\n  - id: a\n    reevaluates: [a]\n")

	_, err := NewCatalog(suite.tempDir, suite.registry).GetAll()
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeCycleError, errors.GetCode(err))
}

func (suite *CatalogTestSuite) TestGetErrors() {
	catalog := NewCatalog(suite.tempDir, suite.registry)

	_, err := catalog.Get("missing")
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeStrategyNotFound, errors.GetCode(err))

	_, err = catalog.Get("../escape")
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))

	suite.write("empty.yaml", "name: empty\nsteps: []\n")
	_, err = catalog.Get("empty")
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeStrategyConfigError, errors.GetCode(err))

	_, err = NewCatalog(filepath.Join(suite.tempDir, "nope"), suite.registry).GetAll()
	suite.Require().Error(err)
}
