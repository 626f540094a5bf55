package execution

import (
	"fmt"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-steps/internal/step"
	"github.com/rxtech-lab/argo-steps/internal/strategy"
	"github.com/rxtech-lab/argo-steps/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ContextTestSuite struct {
	suite.Suite
	ctx  *Context
	a    *strategy.StepInstance
	b    *strategy.StepInstance
	bar1 time.Time
	bar2 time.Time
}

func TestContextSuite(t *testing.T) {
	suite.Run(t, new(ContextTestSuite))
}

func (suite *ContextTestSuite) SetupTest() {
	suite.ctx = NewContext()
	suite.a = strategy.NewStepInstance("a", nil, nil, nil)
	suite.b = strategy.NewStepInstance("b", nil, nil, nil)
	suite.bar1 = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	suite.bar2 = suite.bar1.Add(time.Minute)
}

func (suite *ContextTestSuite) success(ts time.Time, outputs step.Outputs) StepEvaluationResult {
	return Success(optional.Some(ts), outputs)
}

func (suite *ContextTestSuite) TestLatestOutputTracksLastSuccess() {
	suite.True(suite.ctx.LatestOutput("sma").IsNone())

	suite.Require().NoError(suite.ctx.AddResult(suite.bar1, suite.a, suite.success(suite.bar1, step.Outputs{"sma": 1.5})))
	suite.Equal(1.5, suite.ctx.LatestOutput("sma").Unwrap())

	suite.Require().NoError(suite.ctx.AddResult(suite.bar2, suite.a, Failure(optional.Some(suite.bar2), "boom", nil)))
	suite.Equal(1.5, suite.ctx.LatestOutput("sma").Unwrap(), "a failure must not clear the cached value")

	suite.Require().NoError(suite.ctx.AddResult(suite.bar2, suite.a, suite.success(suite.bar2, step.Outputs{"sma": 2.5})))
	suite.Equal(2.5, suite.ctx.LatestOutput("sma").Unwrap())
}

func (suite *ContextTestSuite) TestFailedAttemptByOtherInstanceKeepsValue() {
	suite.Require().NoError(suite.ctx.AddResult(suite.bar1, suite.a, suite.success(suite.bar1, step.Outputs{"trend": "UP"})))
	suite.Require().NoError(suite.ctx.AddResult(suite.bar1, suite.b, Failure(optional.Some(suite.bar1), "", fmt.Errorf("no data"))))

	suite.Equal("UP", suite.ctx.LatestOutput("trend").Unwrap())
	suite.Equal(2, suite.ctx.Len())
}

func (suite *ContextTestSuite) TestCollisionLeavesStateUnchanged() {
	suite.Require().NoError(suite.ctx.AddResult(suite.bar1, suite.a, suite.success(suite.bar1, step.Outputs{"signal": "BUY", "score": 1})))

	historyBefore := suite.ctx.History()
	snapshotBefore := suite.ctx.Snapshot()

	err := suite.ctx.AddResult(suite.bar1, suite.b, suite.success(suite.bar1, step.Outputs{"other": 7, "signal": "SELL"}))
	suite.Require().Error(err)
	suite.True(errors.IsOutputCollision(err))

	var collision *errors.OutputCollisionError
	suite.Require().True(errors.As(err, &collision))
	suite.Equal("signal", collision.Output)
	suite.Equal("a", collision.Existing)
	suite.Equal("b", collision.Incoming)
	suite.Equal(errors.ErrCodeOutputCollision, errors.GetCode(err))

	suite.Equal(historyBefore, suite.ctx.History())
	suite.Equal(snapshotBefore, suite.ctx.Snapshot())
	suite.True(suite.ctx.LatestOutput("other").IsNone())
	suite.Empty(suite.ctx.HistoryFor(suite.b))
}

func (suite *ContextTestSuite) TestCollisionAgainstEarlierValue() {
	suite.Require().NoError(suite.ctx.AddResult(suite.bar1, suite.a, suite.success(suite.bar1, step.Outputs{"level": 10})))
	suite.Require().NoError(suite.ctx.AddResult(suite.bar2, suite.a, suite.success(suite.bar2, step.Outputs{"level": 11})))

	// b agrees with a's latest value, but a once published 10 under the same name.
	err := suite.ctx.AddResult(suite.bar2, suite.b, suite.success(suite.bar2, step.Outputs{"level": 11}))
	suite.True(errors.IsOutputCollision(err))
}

func (suite *ContextTestSuite) TestLedgerStaysBoundedOverLongRuns() {
	const bars = 50000

	start := time.Now()

	for i := range bars {
		ts := suite.bar1.Add(time.Duration(i) * time.Minute)
		suite.Require().NoError(suite.ctx.AddResult(ts, suite.a, suite.success(ts, step.Outputs{"sma": float64(i) + 0.5})))
	}

	suite.Less(time.Since(start), 10*time.Second)
	suite.Len(suite.ctx.producers["sma"], 1)
	suite.Equal(0.5, suite.ctx.producers["sma"][suite.a].first)
	suite.True(suite.ctx.producers["sma"][suite.a].multi)
	suite.Equal(bars, suite.ctx.Len())

	// a has published many values, so any value from b collides.
	err := suite.ctx.AddResult(suite.bar2, suite.b, suite.success(suite.bar2, step.Outputs{"sma": float64(bars) - 0.5}))
	suite.True(errors.IsOutputCollision(err))
}

func (suite *ContextTestSuite) TestSingleValuedProducerComparedByValue() {
	suite.Require().NoError(suite.ctx.AddResult(suite.bar1, suite.a, suite.success(suite.bar1, step.Outputs{"level": 10})))
	suite.Require().NoError(suite.ctx.AddResult(suite.bar2, suite.a, suite.success(suite.bar2, step.Outputs{"level": 10})))
	suite.False(suite.ctx.producers["level"][suite.a].multi)

	suite.Require().NoError(suite.ctx.AddResult(suite.bar2, suite.b, suite.success(suite.bar2, step.Outputs{"level": 10})))

	err := suite.ctx.AddResult(suite.bar2, suite.b, suite.success(suite.bar2, step.Outputs{"level": 12}))
	suite.True(errors.IsOutputCollision(err))
}

func (suite *ContextTestSuite) TestCollisionErrorIsDeterministic() {
	c := strategy.NewStepInstance("c", nil, nil, nil)

	for range 20 {
		ctx := NewContext()
		suite.Require().NoError(ctx.AddResult(suite.bar1, suite.b, suite.success(suite.bar1, step.Outputs{"x": 1, "y": 1, "z": 1})))
		suite.Require().NoError(ctx.AddResult(suite.bar1, suite.a, suite.success(suite.bar1, step.Outputs{"x": 2, "y": 2, "z": 2})))

		err := ctx.AddResult(suite.bar1, c, suite.success(suite.bar1, step.Outputs{"z": 3, "y": 3, "x": 3}))

		var collision *errors.OutputCollisionError
		suite.Require().True(errors.As(err, &collision))
		suite.Equal("x", collision.Output)
		suite.Equal("a", collision.Existing)
		suite.Equal("c", collision.Incoming)
	}
}

func (suite *ContextTestSuite) TestSameValueFromTwoInstancesIsAllowed() {
	suite.Require().NoError(suite.ctx.AddResult(suite.bar1, suite.a, suite.success(suite.bar1, step.Outputs{"levels": []float64{1, 2}})))
	suite.Require().NoError(suite.ctx.AddResult(suite.bar1, suite.b, suite.success(suite.bar1, step.Outputs{"levels": []float64{1, 2}})))

	suite.Equal([]float64{1, 2}, suite.ctx.LatestOutput("levels").Unwrap())
}

func (suite *ContextTestSuite) TestSameInstanceMayChangeValue() {
	suite.Require().NoError(suite.ctx.AddResult(suite.bar1, suite.a, suite.success(suite.bar1, step.Outputs{"x": 1})))
	suite.Require().NoError(suite.ctx.AddResult(suite.bar2, suite.a, suite.success(suite.bar2, step.Outputs{"x": 2})))
	suite.Equal(2, suite.ctx.LatestOutput("x").Unwrap())
}

func (suite *ContextTestSuite) TestAttemptsWithinOneBar() {
	suite.Require().NoError(suite.ctx.AddResult(suite.bar1, suite.a, suite.success(suite.bar1, step.Outputs{"x": 1})))
	suite.Require().NoError(suite.ctx.AddResult(suite.bar1, suite.b, suite.success(suite.bar1, step.Outputs{"y": 1})))
	suite.Require().NoError(suite.ctx.AddResult(suite.bar1, suite.a, suite.success(suite.bar1, step.Outputs{"x": 1})))
	suite.Require().NoError(suite.ctx.AddResult(suite.bar2, suite.a, suite.success(suite.bar2, step.Outputs{"x": 1})))

	history := suite.ctx.HistoryFor(suite.a)
	suite.Require().Len(history, 3)
	suite.Equal(HistoryKey{Timestamp: suite.bar1, Step: "a", Attempt: 1}, history[0].Key)
	suite.Equal(HistoryKey{Timestamp: suite.bar1, Step: "a", Attempt: 2}, history[1].Key)
	suite.Equal(HistoryKey{Timestamp: suite.bar2, Step: "a", Attempt: 1}, history[2].Key)
	suite.NotEqual(history[0].Key, history[1].Key)

	suite.Len(suite.ctx.HistoryAt(suite.bar1, suite.a), 2)
	suite.Len(suite.ctx.HistoryAt(suite.bar2, suite.a), 1)
	suite.Len(suite.ctx.HistoryAt(suite.bar2, suite.b), 0)

	all := suite.ctx.History()
	suite.Require().Len(all, 4)
	suite.Same(suite.b, all[1].Step)
}

func (suite *ContextTestSuite) TestAttemptCounterIgnoresLocation() {
	local := suite.bar1.In(time.FixedZone("EST", -5*60*60))

	suite.Require().NoError(suite.ctx.AddResult(suite.bar1, suite.a, suite.success(suite.bar1, nil)))
	suite.Require().NoError(suite.ctx.AddResult(local, suite.a, suite.success(local, nil)))

	history := suite.ctx.HistoryFor(suite.a)
	suite.Equal(2, history[1].Key.Attempt)
}

func (suite *ContextTestSuite) TestNilInstance() {
	err := suite.ctx.AddResult(suite.bar1, nil, suite.success(suite.bar1, nil))
	suite.Error(err)
	suite.Equal(0, suite.ctx.Len())
}

func (suite *ContextTestSuite) TestSnapshotIsACopy() {
	suite.Require().NoError(suite.ctx.AddResult(suite.bar1, suite.a, suite.success(suite.bar1, step.Outputs{"x": 1})))

	snapshot := suite.ctx.Snapshot()
	snapshot["x"] = 100

	suite.Equal(1, suite.ctx.LatestOutput("x").Unwrap())
}

type ResultTestSuite struct {
	suite.Suite
}

func TestResultSuite(t *testing.T) {
	suite.Run(t, new(ResultTestSuite))
}

func (suite *ResultTestSuite) TestSuccess() {
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	outputs := step.Outputs{"x": 1}
	result := Success(optional.Some(ts), outputs)

	outputs["x"] = 2
	suite.True(result.IsSuccess())
	suite.Empty(result.Message())
	suite.Equal(ts, result.Timestamp().Unwrap())

	value, ok := result.Output("x")
	suite.True(ok)
	suite.Equal(1, value)

	copied := result.Outputs()
	copied["x"] = 3
	suite.Equal(step.Outputs{"x": 1}, result.Outputs())
	suite.NoError(result.Err())
}

func (suite *ResultTestSuite) TestFailure() {
	cause := fmt.Errorf("division by zero")
	result := Failure(optional.None[time.Time](), "", cause).WithStack("goroutine 1")

	suite.False(result.IsSuccess())
	suite.Equal("division by zero", result.Message())
	suite.True(result.Timestamp().IsNone())
	suite.Empty(result.Outputs())
	suite.Equal(cause, result.Err())
	suite.Equal("goroutine 1", result.Stack())

	explicit := Failure(optional.None[time.Time](), "custom", cause)
	suite.Equal("custom", explicit.Message())
}
