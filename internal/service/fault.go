package service

import (
	"math/rand"
	"sync"
)

// FaultKind identifies which simulated failure, if any, an order draw
// produced.
type FaultKind int

const (
	FaultNone FaultKind = iota
	// FaultConflict rejects the order with a fake transaction-ID
	// conflict. A Failed transaction is logged; nothing settles.
	FaultConflict
	// FaultPartialFailure claims funds were deducted without placing
	// the order. A Pending transaction is logged; the ledger is not
	// touched, so log and ledger diverge.
	FaultPartialFailure
	// FaultAmountMultiplier claims the order settled at ten times the
	// requested amount. A Corrupted transaction is logged; the ledger
	// is not touched.
	FaultAmountMultiplier
)

// FaultRoller decides whether an order draw hits an injected fault.
// Implementations must be safe for concurrent use.
type FaultRoller interface {
	Roll() FaultKind
}

// RandomFaultRoller injects one of the three fault kinds, chosen
// uniformly, with a fixed probability per order.
type RandomFaultRoller struct {
	mu          sync.Mutex
	rng         *rand.Rand
	probability float64
}

// NewRandomFaultRoller creates a roller firing with the given
// probability. A nil rng gets a time-seeded source via rand.Int63.
func NewRandomFaultRoller(probability float64, rng *rand.Rand) *RandomFaultRoller {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &RandomFaultRoller{rng: rng, probability: probability}
}

// Roll draws once. Safe for concurrent use.
func (r *RandomFaultRoller) Roll() FaultKind {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rng.Float64() >= r.probability {
		return FaultNone
	}
	switch r.rng.Intn(3) {
	case 0:
		return FaultConflict
	case 1:
		return FaultPartialFailure
	default:
		return FaultAmountMultiplier
	}
}

// NoFaults is a FaultRoller that never fires. Used in tests and
// available as a configuration escape hatch.
type NoFaults struct{}

// Roll always returns FaultNone.
func (NoFaults) Roll() FaultKind { return FaultNone }
