package ultrasonic

import (
	"errors"
	"testing"
)

func seedMemory(t *testing.T) (*Memory, ContractId, CellAddr) {
	t.Helper()
	m := NewMemory()
	genesis := Genesis{
		CodexID: CodexId{1},
		DestructibleOut: []StateCell{
			{Data: SingleValue(FE128{1}), Seal: FE128{2}},
		},
	}
	contractID, err := m.ApplyGenesis(&genesis)
	if err != nil {
		t.Fatalf("ApplyGenesis failed: %v", err)
	}
	gid, err := genesis.GenesisId()
	if err != nil {
		t.Fatalf("GenesisId failed: %v", err)
	}
	return m, contractID, CellAddr{Opid: Opid(gid), Pos: 0}
}

func TestMemoryResolveUnknownAddrFails(t *testing.T) {
	m := NewMemory()
	_, err := m.Resolve(CellAddr{Opid: Opid{9}, Pos: 0})
	var ue *UnresolvedInputError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnresolvedInputError, got %v", err)
	}
}

func TestMemoryApplyConsumesAndCommits(t *testing.T) {
	m, contractID, addr := seedMemory(t)

	op := &Operation{
		ContractID:     contractID,
		CallID:         CallId{1},
		DestructibleIn: []Input{{Addr: addr, Witness: NoneValue()}},
		DestructibleOut: []StateCell{
			{Data: SingleValue(FE128{3}), Seal: FE128{4}},
		},
	}
	if err := m.Apply(op); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if _, err := m.Resolve(addr); err == nil {
		t.Fatalf("expected consumed input to be unresolved")
	}

	opid, err := op.Opid()
	if err != nil {
		t.Fatalf("Opid failed: %v", err)
	}
	outAddr := CellAddr{Opid: opid, Pos: 0}
	cell, err := m.Resolve(outAddr)
	if err != nil {
		t.Fatalf("expected new output to resolve: %v", err)
	}
	if e, _ := cell.Data.Get(0); e != (FE128{3}) {
		t.Fatalf("unexpected output cell data")
	}
}

func TestMemoryApplyDoubleSpendLeavesStateUnchanged(t *testing.T) {
	m, contractID, addr := seedMemory(t)

	first := &Operation{
		ContractID:     contractID,
		CallID:         CallId{1},
		DestructibleIn: []Input{{Addr: addr, Witness: NoneValue()}},
	}
	if err := m.Apply(first); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}

	second := &Operation{
		ContractID:     contractID,
		CallID:         CallId{2},
		DestructibleIn: []Input{{Addr: addr, Witness: NoneValue()}},
		DestructibleOut: []StateCell{
			{Data: SingleValue(FE128{99}), Seal: FE128{99}},
		},
	}
	err := m.Apply(second)
	var dse *DoubleSpendError
	if !errors.As(err, &dse) {
		t.Fatalf("expected DoubleSpendError, got %v", err)
	}

	secondOpid, err := second.Opid()
	if err != nil {
		t.Fatalf("Opid failed: %v", err)
	}
	if _, err := m.Resolve(CellAddr{Opid: secondOpid, Pos: 0}); err == nil {
		t.Fatalf("rejected operation must not have committed any outputs")
	}
}

func TestMemoryApplyDuplicateInputWithinOperationLeavesStateUnchanged(t *testing.T) {
	m, contractID, addr := seedMemory(t)

	op := &Operation{
		ContractID: contractID,
		CallID:     CallId{1},
		DestructibleIn: []Input{
			{Addr: addr, Witness: NoneValue()},
			{Addr: addr, Witness: NoneValue()},
		},
		DestructibleOut: []StateCell{
			{Data: SingleValue(FE128{99}), Seal: FE128{99}},
		},
	}
	err := m.Apply(op)
	var dse *DoubleSpendError
	if !errors.As(err, &dse) {
		t.Fatalf("expected DoubleSpendError, got %v", err)
	}

	if _, err := m.Resolve(addr); err != nil {
		t.Fatalf("rejected operation must not have consumed its input: %v", err)
	}
	opid, err := op.Opid()
	if err != nil {
		t.Fatalf("Opid failed: %v", err)
	}
	if _, err := m.Resolve(CellAddr{Opid: opid, Pos: 0}); err == nil {
		t.Fatalf("rejected operation must not have committed any outputs")
	}
}

func TestMemoryApplyUnresolvedImmutableInputFails(t *testing.T) {
	m := NewMemory()
	op := &Operation{
		ContractID:  ContractId{1},
		CallID:      CallId{1},
		ImmutableIn: []CellAddr{{Opid: Opid{9}, Pos: 0}},
	}
	err := m.Apply(op)
	var ue *UnresolvedInputError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnresolvedInputError, got %v", err)
	}
}
