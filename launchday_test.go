package launchsim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func greenBoard() LaunchDayInput {
	return LaunchDayInput{
		Weather:   SeveritySafe,
		Stability: SeveritySafe,
		Flutter:   SeveritySafe,
		Recovery:  SeveritySafe,
		Waiver:    SeveritySafe,
		Checklist: []ChecklistItem{
			{"motor retention", true, true},
			{"recovery armed", true, true},
			{"rail buttons", false, true},
		},
	}
}

func TestGoVerdict(t *testing.T) {
	res := EvaluateLaunchDay(greenBoard())
	require.Equal(t, Go, res.Verdict)
	require.Equal(t, 100.0, res.Score)
	require.Empty(t, res.Blockers)
}

func TestDangerForcesNoGo(t *testing.T) {
	in := greenBoard()
	in.Weather = SeverityDanger
	res := EvaluateLaunchDay(in)
	require.Equal(t, NoGo, res.Verdict)
	require.Contains(t, res.Blockers, "weather")
	require.Less(t, res.Score, 100.0)
}

func TestMissingCriticalChecklistHolds(t *testing.T) {
	in := greenBoard()
	in.Checklist[1].Done = false
	res := EvaluateLaunchDay(in)
	require.Equal(t, Hold, res.Verdict)
	require.Contains(t, res.Blockers, "recovery armed")
}

func TestNoGoOutranksHold(t *testing.T) {
	in := greenBoard()
	in.Stability = SeverityDanger
	in.Checklist[0].Done = false
	res := EvaluateLaunchDay(in)
	require.Equal(t, NoGo, res.Verdict)
}

func TestCautionsOnlyCostScore(t *testing.T) {
	in := greenBoard()
	in.Weather = SeverityCaution
	in.Flutter = SeverityWarning
	res := EvaluateLaunchDay(in)
	require.Equal(t, Go, res.Verdict)
	require.InDelta(t, 100-1.5*5-1.0*15, res.Score, 1e-9)
}

func TestScoreFloor(t *testing.T) {
	in := LaunchDayInput{
		Weather:   SeverityDanger,
		Stability: SeverityDanger,
		Flutter:   SeverityDanger,
		Recovery:  SeverityDanger,
		Waiver:    SeverityDanger,
	}
	res := EvaluateLaunchDay(in)
	require.Equal(t, NoGo, res.Verdict)
	require.Equal(t, 0.0, res.Score)
}

func TestSeverityGrading(t *testing.T) {
	require.Equal(t, SeveritySafe, WindSeverity(3))
	require.Equal(t, SeverityCaution, WindSeverity(6))
	require.Equal(t, SeverityWarning, WindSeverity(9))
	require.Equal(t, SeverityDanger, WindSeverity(15))

	require.Equal(t, SeveritySafe, StabilitySeverity(Stable))
	require.Equal(t, SeverityDanger, StabilitySeverity(Unstable))

	require.Equal(t, SeveritySafe, FlutterSeverity(FlutterGood))
	require.Equal(t, SeverityDanger, FlutterSeverity(FlutterUnsafe))

	require.Equal(t, SeveritySafe, RecoverySeverity(4))
	require.Equal(t, SeverityDanger, RecoverySeverity(14))
}
