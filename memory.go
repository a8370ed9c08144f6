package ultrasonic

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Memory is the contract's state store: unspent destructible cells plus the
// append-only immutable log, both keyed by CellAddr (spec §4.4).
type Memory struct {
	mu           sync.RWMutex
	destructible map[CellAddr]StateCell
	immutable    map[CellAddr]StateData
}

// NewMemory returns an empty Memory ready to accept a Genesis.
func NewMemory() *Memory {
	return &Memory{
		destructible: make(map[CellAddr]StateCell),
		immutable:    make(map[CellAddr]StateData),
	}
}

// Resolve returns the unspent destructible cell at addr, or
// UnresolvedInputError if it was never produced or already consumed.
func (m *Memory) Resolve(addr CellAddr) (StateCell, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cell, ok := m.destructible[addr]
	if !ok {
		return StateCell{}, &UnresolvedInputError{Addr: addr}
	}
	return cell, nil
}

// ResolveImmutable returns the immutable cell at addr, or
// UnresolvedInputError if it was never produced.
func (m *Memory) ResolveImmutable(addr CellAddr) (StateData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.immutable[addr]
	if !ok {
		return StateData{}, &UnresolvedInputError{Addr: addr}
	}
	return data, nil
}

// consumeLocked removes a destructible entry exactly once; callers must hold
// m.mu. It fails with DoubleSpendError if the entry is already absent.
func (m *Memory) consumeLocked(addr CellAddr) (StateCell, error) {
	cell, ok := m.destructible[addr]
	if !ok {
		return StateCell{}, &DoubleSpendError{Addr: addr}
	}
	delete(m.destructible, addr)
	return cell, nil
}

// Apply validates and commits op atomically: either every destructible input
// resolves and is consumed and every output is inserted, or the memory is
// left entirely unchanged (spec §4.4, §5, P-commit).
func (m *Memory) Apply(op *Operation) error {
	log := logrus.WithField("contract_id", op.ContractID.String())

	m.mu.Lock()
	defer m.mu.Unlock()

	opid, err := op.Opid()
	if err != nil {
		return fmt.Errorf("ultrasonic: deriving opid: %w", err)
	}

	// Validate every destructible input resolves, without mutating state,
	// so a failure partway through never leaves a partial consumption. An
	// operation listing the same address twice must also be rejected here:
	// otherwise the first commit-phase consume would succeed and the second
	// would fail after the cell is already gone, breaking atomicity.
	seen := make(map[CellAddr]struct{}, len(op.DestructibleIn))
	for _, in := range op.DestructibleIn {
		if _, dup := seen[in.Addr]; dup {
			log.WithField("addr", in.Addr.String()).Warn("apply: double spend")
			return &DoubleSpendError{Addr: in.Addr}
		}
		seen[in.Addr] = struct{}{}
		if _, ok := m.destructible[in.Addr]; !ok {
			log.WithField("addr", in.Addr.String()).Warn("apply: double spend")
			return &DoubleSpendError{Addr: in.Addr}
		}
	}
	for _, addr := range op.ImmutableIn {
		if _, ok := m.immutable[addr]; !ok {
			log.WithField("addr", addr.String()).Warn("apply: unresolved immutable input")
			return &UnresolvedInputError{Addr: addr}
		}
	}

	// All inputs validated: commit is now infallible, so consume and insert
	// without further error paths.
	for _, in := range op.DestructibleIn {
		if _, err := m.consumeLocked(in.Addr); err != nil {
			return fmt.Errorf("ultrasonic: consuming validated input: %w", err)
		}
	}
	for i, cell := range op.DestructibleOut {
		addr := CellAddr{Opid: opid, Pos: uint16(i)}
		m.destructible[addr] = cell
	}
	for i, data := range op.ImmutableOut {
		addr := CellAddr{Opid: opid, Pos: uint16(i)}
		m.immutable[addr] = data
	}

	log.WithField("opid", opid.String()).Debug("apply: committed")
	return nil
}

// ApplyGenesis seeds memory with a contract's initial cells. A genesis has no
// inputs to resolve; the only error is a failure to derive its GenesisId
// (an output list over the 2^16-1 bound). The returned ContractId carries
// the GenesisId bytes; it is not the Contract.ContractId of an enclosing
// contract.
func (m *Memory) ApplyGenesis(g *Genesis) (ContractId, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gid, err := g.GenesisId()
	if err != nil {
		return ContractId{}, fmt.Errorf("ultrasonic: deriving genesis id: %w", err)
	}
	contractID := ContractId(gid)

	for i, cell := range g.DestructibleOut {
		addr := CellAddr{Opid: Opid(gid), Pos: uint16(i)}
		m.destructible[addr] = cell
	}
	for i, data := range g.ImmutableOut {
		addr := CellAddr{Opid: Opid(gid), Pos: uint16(i)}
		m.immutable[addr] = data
	}
	return contractID, nil
}
