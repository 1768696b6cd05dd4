package domain

import "fmt"

const (
	UndefinedRole TimelockRole = iota
	SourceRole
	DestinationRole
)

// TimelockRole selects which phase-boundary table applies to an escrow. The
// source leg is the chain where the user staged the asset, the destination leg
// is where the resolver delivers the counter asset.
type TimelockRole int

func (r TimelockRole) String() string {
	switch r {
	case SourceRole:
		return "SOURCE"
	case DestinationRole:
		return "DESTINATION"
	default:
		return "UNDEFINED"
	}
}

const (
	UndefinedPhase TimelockPhase = iota
	FinalityLockPhase
	WithdrawalPhase
	PublicWithdrawalPhase
	CancellationPhase
	PublicCancellationPhase
)

// TimelockPhase is a named, time-bounded segment of an escrow's life. Phases
// are strictly ordered and never regress as time advances.
type TimelockPhase int

func (p TimelockPhase) String() string {
	switch p {
	case FinalityLockPhase:
		return "FINALITY_LOCK"
	case WithdrawalPhase:
		return "WITHDRAWAL"
	case PublicWithdrawalPhase:
		return "PUBLIC_WITHDRAWAL"
	case CancellationPhase:
		return "CANCELLATION"
	case PublicCancellationPhase:
		return "PUBLIC_CANCELLATION"
	default:
		return "UNDEFINED"
	}
}

// PhaseDurations holds the length in seconds of each bounded phase. The
// finality lock is an optional window right after creation during which no
// funds move at all; a zero value means withdrawal opens immediately. For the
// source role the three following phases are bounded and public cancellation
// is the sticky final phase. For the destination role Cancellation is the
// sticky final phase and its duration is ignored: destination escrows never
// become publicly cancellable, only the funding resolver may reclaim them.
type PhaseDurations struct {
	FinalityLock     int64
	Withdrawal       int64
	PublicWithdrawal int64
	Cancellation     int64
}

func (d PhaseDurations) validate(role TimelockRole) error {
	if d.FinalityLock < 0 {
		return fmt.Errorf("finality lock duration must not be negative")
	}
	if d.Withdrawal <= 0 || d.PublicWithdrawal <= 0 {
		return fmt.Errorf("phase durations must be positive")
	}
	if role == SourceRole && d.Cancellation <= 0 {
		return fmt.Errorf("phase durations must be positive")
	}
	return nil
}

// Timelock is the phase clock of an escrow. It is fixed at creation and the
// current phase is a pure function of the time elapsed since then. Durations
// are captured into the timelock so a persisted escrow replays identically
// even if the service configuration changes.
type Timelock struct {
	CreatedAt int64
	Role      TimelockRole
	Durations PhaseDurations
}

func NewTimelock(createdAt int64, role TimelockRole, durations PhaseDurations) (Timelock, error) {
	if role != SourceRole && role != DestinationRole {
		return Timelock{}, fmt.Errorf("invalid timelock role: %d", role)
	}
	if err := durations.validate(role); err != nil {
		return Timelock{}, err
	}
	return Timelock{
		CreatedAt: createdAt,
		Role:      role,
		Durations: durations,
	}, nil
}

// RoleForChain returns the timelock role of an escrow given the destination
// chain carried by the originating request. An escrow takes the source role
// exactly when the request targets the home chain.
func RoleForChain(chainId, homeChainId uint64) TimelockRole {
	if chainId == homeChainId {
		return SourceRole
	}
	return DestinationRole
}

// Phase returns the phase at the given unix time. Boundaries are half-open and
// inclusive at start: at exactly the withdrawal boundary the timelock is
// already in public withdrawal.
func (t Timelock) Phase(now int64) TimelockPhase {
	elapsed := now - t.CreatedAt
	if elapsed < t.Durations.FinalityLock {
		return FinalityLockPhase
	}
	elapsed -= t.Durations.FinalityLock
	if elapsed < t.Durations.Withdrawal {
		return WithdrawalPhase
	}
	elapsed -= t.Durations.Withdrawal
	if elapsed < t.Durations.PublicWithdrawal {
		return PublicWithdrawalPhase
	}
	if t.Role == DestinationRole {
		return CancellationPhase
	}
	elapsed -= t.Durations.PublicWithdrawal
	if elapsed < t.Durations.Cancellation {
		return CancellationPhase
	}
	return PublicCancellationPhase
}

// RemainingTime returns the seconds until the next phase boundary, or 0 once
// the sticky final phase is reached.
func (t Timelock) RemainingTime(now int64) int64 {
	elapsed := now - t.CreatedAt
	boundary := int64(0)
	for _, d := range t.boundaries() {
		boundary += d
		if elapsed < boundary {
			return boundary - elapsed
		}
	}
	return 0
}

// TotalDuration returns the sum of the bounded phase durations for the role.
func (t Timelock) TotalDuration() int64 {
	tot := int64(0)
	for _, d := range t.boundaries() {
		tot += d
	}
	return tot
}

// ExpirationTime is the unix time at which the timelock enters its sticky
// final phase.
func (t Timelock) ExpirationTime() int64 {
	return t.CreatedAt + t.TotalDuration()
}

func (t Timelock) IsWithdrawalAllowed(now int64) bool {
	phase := t.Phase(now)
	return phase == WithdrawalPhase || phase == PublicWithdrawalPhase
}

func (t Timelock) IsCancellationAllowed(now int64) bool {
	phase := t.Phase(now)
	return phase == CancellationPhase || phase == PublicCancellationPhase
}

// IsPublicCancellation reports whether recovery is open to any caller. This is
// only ever true on the source leg.
func (t Timelock) IsPublicCancellation(now int64) bool {
	return t.Phase(now) == PublicCancellationPhase
}

// PhaseBoundaries returns the absolute unix times at which the timelock moves
// to a next phase, in order. Zero-length segments produce no boundary.
func (t Timelock) PhaseBoundaries() []int64 {
	boundaries := make([]int64, 0, 4)
	at := t.CreatedAt
	for _, d := range t.boundaries() {
		if d <= 0 {
			continue
		}
		at += d
		boundaries = append(boundaries, at)
	}
	return boundaries
}

func (t Timelock) boundaries() []int64 {
	if t.Role == DestinationRole {
		return []int64{
			t.Durations.FinalityLock, t.Durations.Withdrawal, t.Durations.PublicWithdrawal,
		}
	}
	return []int64{
		t.Durations.FinalityLock, t.Durations.Withdrawal,
		t.Durations.PublicWithdrawal, t.Durations.Cancellation,
	}
}
