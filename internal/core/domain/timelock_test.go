package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/swaplock/swapd/internal/core/domain"
)

var testDurations = domain.PhaseDurations{
	Withdrawal:       10,
	PublicWithdrawal: 100,
	Cancellation:     50,
}

func TestNewTimelock(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		timelock, err := domain.NewTimelock(1000, domain.SourceRole, testDurations)
		require.NoError(t, err)
		require.Equal(t, int64(1000), timelock.CreatedAt)
		require.Equal(t, domain.SourceRole, timelock.Role)
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := domain.NewTimelock(1000, domain.UndefinedRole, testDurations)
		require.Error(t, err)
	})

	t.Run("invalid durations", func(t *testing.T) {
		_, err := domain.NewTimelock(1000, domain.SourceRole, domain.PhaseDurations{
			Withdrawal: 10, PublicWithdrawal: 100,
		})
		require.Error(t, err)

		// destination role never uses the cancellation duration
		_, err = domain.NewTimelock(1000, domain.DestinationRole, domain.PhaseDurations{
			Withdrawal: 10, PublicWithdrawal: 100,
		})
		require.NoError(t, err)
	})
}

func TestFinalityLock(t *testing.T) {
	durations := testDurations
	durations.FinalityLock = 12

	for _, role := range []domain.TimelockRole{domain.SourceRole, domain.DestinationRole} {
		timelock, err := domain.NewTimelock(1000, role, durations)
		require.NoError(t, err)

		require.Equal(t, domain.FinalityLockPhase, timelock.Phase(1000))
		require.Equal(t, domain.FinalityLockPhase, timelock.Phase(1011))
		require.Equal(t, domain.WithdrawalPhase, timelock.Phase(1012))
		require.False(t, timelock.IsWithdrawalAllowed(1000))
		require.True(t, timelock.IsWithdrawalAllowed(1012))
		require.Equal(t, int64(12), timelock.RemainingTime(1000))
	}

	t.Run("negative duration", func(t *testing.T) {
		durations := testDurations
		durations.FinalityLock = -1
		_, err := domain.NewTimelock(1000, domain.SourceRole, durations)
		require.Error(t, err)
	})
}

func TestPhaseBoundaries(t *testing.T) {
	timelock, err := domain.NewTimelock(1000, domain.SourceRole, testDurations)
	require.NoError(t, err)
	require.Equal(t, []int64{1010, 1110, 1160}, timelock.PhaseBoundaries())

	dest, err := domain.NewTimelock(1000, domain.DestinationRole, testDurations)
	require.NoError(t, err)
	require.Equal(t, []int64{1010, 1110}, dest.PhaseBoundaries())

	durations := testDurations
	durations.FinalityLock = 5
	locked, err := domain.NewTimelock(1000, domain.SourceRole, durations)
	require.NoError(t, err)
	require.Equal(t, []int64{1005, 1015, 1115, 1165}, locked.PhaseBoundaries())
}

func TestRoleForChain(t *testing.T) {
	require.Equal(t, domain.SourceRole, domain.RoleForChain(1, 1))
	require.Equal(t, domain.DestinationRole, domain.RoleForChain(2, 1))
}

func TestSourcePhases(t *testing.T) {
	timelock, err := domain.NewTimelock(1000, domain.SourceRole, testDurations)
	require.NoError(t, err)

	fixtures := []struct {
		now      int64
		expected domain.TimelockPhase
	}{
		{1000, domain.WithdrawalPhase},
		{1009, domain.WithdrawalPhase},
		{1010, domain.PublicWithdrawalPhase}, // boundary is inclusive at start
		{1109, domain.PublicWithdrawalPhase},
		{1110, domain.CancellationPhase},
		{1159, domain.CancellationPhase},
		{1160, domain.PublicCancellationPhase},
		{100000, domain.PublicCancellationPhase}, // sticky
	}

	for _, f := range fixtures {
		require.Equal(t, f.expected, timelock.Phase(f.now), "at %d", f.now)
	}
}

func TestDestinationPhases(t *testing.T) {
	timelock, err := domain.NewTimelock(1000, domain.DestinationRole, testDurations)
	require.NoError(t, err)

	fixtures := []struct {
		now      int64
		expected domain.TimelockPhase
	}{
		{1000, domain.WithdrawalPhase},
		{1009, domain.WithdrawalPhase},
		{1010, domain.PublicWithdrawalPhase},
		{1109, domain.PublicWithdrawalPhase},
		{1110, domain.CancellationPhase},
		{100000, domain.CancellationPhase}, // sticky, never public
	}

	for _, f := range fixtures {
		require.Equal(t, f.expected, timelock.Phase(f.now), "at %d", f.now)
		require.False(t, timelock.IsPublicCancellation(f.now))
	}
}

func TestPhaseMonotonicity(t *testing.T) {
	timelock, err := domain.NewTimelock(1000, domain.SourceRole, testDurations)
	require.NoError(t, err)

	last := domain.UndefinedPhase
	for now := int64(1000); now <= 1200; now++ {
		phase := timelock.Phase(now)
		require.GreaterOrEqual(t, int(phase), int(last), "phase regressed at %d", now)
		last = phase
	}
}

func TestRemainingTime(t *testing.T) {
	timelock, err := domain.NewTimelock(1000, domain.SourceRole, testDurations)
	require.NoError(t, err)

	require.Equal(t, int64(10), timelock.RemainingTime(1000))
	require.Equal(t, int64(1), timelock.RemainingTime(1009))
	require.Equal(t, int64(100), timelock.RemainingTime(1010))
	require.Equal(t, int64(0), timelock.RemainingTime(1160))
	require.Equal(t, int64(0), timelock.RemainingTime(999999))
}

func TestExpirationTime(t *testing.T) {
	source, err := domain.NewTimelock(1000, domain.SourceRole, testDurations)
	require.NoError(t, err)
	require.Equal(t, int64(1160), source.ExpirationTime())

	dest, err := domain.NewTimelock(1000, domain.DestinationRole, testDurations)
	require.NoError(t, err)
	require.Equal(t, int64(1110), dest.ExpirationTime())
}

func TestWithdrawalAndCancellationWindows(t *testing.T) {
	timelock, err := domain.NewTimelock(1000, domain.SourceRole, testDurations)
	require.NoError(t, err)

	require.True(t, timelock.IsWithdrawalAllowed(1000))
	require.True(t, timelock.IsWithdrawalAllowed(1109))
	require.False(t, timelock.IsWithdrawalAllowed(1110))

	require.False(t, timelock.IsCancellationAllowed(1109))
	require.True(t, timelock.IsCancellationAllowed(1110))
	require.True(t, timelock.IsCancellationAllowed(999999))

	require.False(t, timelock.IsPublicCancellation(1159))
	require.True(t, timelock.IsPublicCancellation(1160))
}
