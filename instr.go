package ultrasonic

import "github.com/holiman/uint256"

// CtrlOp enumerates the base ISA's control-flow opcodes consumed by this
// module (spec §6's "CtrlInstr for branching/halting"). The base register
// machine itself is out of scope; this is the minimal subset needed to run
// a verifier program and the documented masm example.
type CtrlOp uint8

const (
	CtrlNop CtrlOp = iota
	CtrlChk
	CtrlTest
	CtrlNot
	CtrlJif
	CtrlMov
	CtrlClr
	CtrlEq
	CtrlHalt
)

func (op CtrlOp) String() string {
	switch op {
	case CtrlNop:
		return "nop"
	case CtrlChk:
		return "chk"
	case CtrlTest:
		return "test"
	case CtrlNot:
		return "not"
	case CtrlJif:
		return "jif"
	case CtrlMov:
		return "mov"
	case CtrlClr:
		return "clr"
	case CtrlEq:
		return "eq"
	case CtrlHalt:
		return "halt"
	default:
		return "ctrl?"
	}
}

// CtrlInstr is one control-flow instruction. Not every field is meaningful
// for every Op: Dst/Src address the register file, Target addresses an
// instruction index within the enclosing Lib for jif.
type CtrlInstr struct {
	Op     CtrlOp
	Dst    uint8
	Src    uint8
	Target uint16
}

// Exec runs the instruction against the base register file only, reporting
// whether it halted the machine. Ctrl instructions never touch the USONIC
// iterator registers or VmContext (dispatch purity, spec §4.6).
func (in CtrlInstr) Exec(base *BaseCore) (halt bool) {
	switch in.Op {
	case CtrlNop:
	case CtrlChk:
		base.SetCK(base.CO)
	case CtrlTest:
		if base.Regs[in.Dst] != (FE128{}) {
			base.CO = StatusOk
		} else {
			base.CO = StatusFail
		}
	case CtrlNot:
		if base.CO == StatusOk {
			base.CO = StatusFail
		} else {
			base.CO = StatusOk
		}
	case CtrlJif:
		if base.CO == StatusOk {
			base.PC = in.Target
			return false
		}
	case CtrlMov:
		base.Regs[in.Dst] = base.Regs[in.Src]
	case CtrlClr:
		base.Regs[in.Dst] = FE128{}
	case CtrlEq:
		if base.Regs[in.Dst] == base.Regs[in.Src] {
			base.CO = StatusOk
		} else {
			base.CO = StatusFail
		}
	case CtrlHalt:
		return true
	}
	base.PC++
	return false
}

// FieldOp enumerates the modular-arithmetic opcodes consumed by this module
// (spec §6's "FieldInstr for modular arithmetic over the configured prime").
type FieldOp uint8

const (
	FieldAdd FieldOp = iota
	FieldMul
	FieldNeg
)

func (op FieldOp) String() string {
	switch op {
	case FieldAdd:
		return "add"
	case FieldMul:
		return "mul"
	case FieldNeg:
		return "neg"
	default:
		return "gfa?"
	}
}

// FieldInstr is one modular-arithmetic instruction: Dst = A op B (Neg
// ignores B).
type FieldInstr struct {
	Op  FieldOp
	Dst uint8
	A   uint8
	B   uint8
}

// Exec runs the instruction modulo base.Prime's order, against the base
// register file only.
func (in FieldInstr) Exec(base *BaseCore) (halt bool) {
	order := base.Prime.Order()
	a := fe128ToUint256(base.Regs[in.A])
	b := fe128ToUint256(base.Regs[in.B])
	var res uint256.Int
	switch in.Op {
	case FieldAdd:
		res.AddMod(a, b, order)
	case FieldMul:
		res.MulMod(a, b, order)
	case FieldNeg:
		if a.IsZero() {
			res.Clear()
		} else {
			res.Sub(order, a)
			res.Mod(&res, order)
		}
	}
	base.Regs[in.Dst] = uint256ToFE128(&res)
	base.PC++
	return false
}

// fe128ToUint256 zero-extends a 128-bit field element into a 256-bit
// integer for arithmetic; values are always reduced back into FE128's low
// 128 bits afterward. This is a simplification of the full 256-bit register
// file the base machine exposes (spec §6), scoped down to what FE128 needs.
func fe128ToUint256(e FE128) *uint256.Int {
	var buf [32]byte
	copy(buf[16:], e[:])
	return new(uint256.Int).SetBytes(buf[:])
}

func uint256ToFE128(v *uint256.Int) FE128 {
	b := v.Bytes32()
	var out FE128
	copy(out[:], b[16:])
	return out
}

// UsonicInstr enumerates the twelve zero-operand ISA-USONIC opcodes (spec
// §4.6). The category is fused into the opcode; none consume further
// program bytes.
type UsonicInstr uint8

const (
	CknxiDestructible UsonicInstr = iota
	CknxiImmutable
	CknxoDestructible
	CknxoImmutable
	LdiDestructible
	LdiImmutable
	LdoDestructible
	LdoImmutable
	RstiDestructible
	RstiImmutable
	RstoDestructible
	RstoImmutable
)

func (in UsonicInstr) String() string {
	switch in {
	case CknxiDestructible:
		return "cknxi:destructible"
	case CknxiImmutable:
		return "cknxi:immutable"
	case CknxoDestructible:
		return "cknxo:destructible"
	case CknxoImmutable:
		return "cknxo:immutable"
	case LdiDestructible:
		return "ldi:destructible"
	case LdiImmutable:
		return "ldi:immutable"
	case LdoDestructible:
		return "ldo:destructible"
	case LdoImmutable:
		return "ldo:immutable"
	case RstiDestructible:
		return "rsti:destructible"
	case RstiImmutable:
		return "rsti:immutable"
	case RstoDestructible:
		return "rsto:destructible"
	case RstoImmutable:
		return "rsto:immutable"
	default:
		return "usonic?"
	}
}

// SrcRegs and DstRegs report which base registers an instruction reads from
// or writes to. Every
// USONIC opcode returns an empty set for both: none of them address the
// named register file directly (their side effects are the iterator
// registers and CO, not EA..ED by name), so neither query should be relied
// on to return non-empty for a USONIC instruction.
func (in UsonicInstr) SrcRegs() []uint8 { return nil }
func (in UsonicInstr) DstRegs() []uint8 { return nil }

// ioCatOf maps a USONIC opcode to the iterator category it addresses.
func (in UsonicInstr) ioCatOf() IoCat {
	switch in {
	case CknxiDestructible, LdiDestructible, RstiDestructible:
		return InRO
	case CknxiImmutable, LdiImmutable, RstiImmutable:
		return InAO
	case CknxoDestructible, LdoDestructible, RstoDestructible:
		return OutRO
	case CknxoImmutable, LdoImmutable, RstoImmutable:
		return OutAO
	default:
		return InRO
	}
}

// Exec runs the instruction against the full Core and the current
// VmContext: USONIC is the only family allowed to do so (spec §4.6).
func (in UsonicInstr) Exec(core *Core, ctx *VmContext) {
	cat := in.ioCatOf()
	switch in {
	case CknxiDestructible, CknxiImmutable, CknxoDestructible, CknxoImmutable:
		if core.UsonicCore.HasNext(cat, ctx) {
			core.BaseCore.CO = StatusOk
		} else {
			core.BaseCore.CO = StatusFail
		}
	case LdiDestructible, LdiImmutable, LdoDestructible, LdoImmutable:
		core.UsonicCore.Load(cat, ctx, &core.BaseCore)
	case RstiDestructible, RstiImmutable, RstoDestructible, RstoImmutable:
		core.UsonicCore.Reset(cat)
	}
	core.BaseCore.PC++
}

// InstrKind tags the outer Instr union (spec §4.6's Ctrl | Gfa | Usonic |
// Reserved).
type InstrKind uint8

const (
	InstrCtrl InstrKind = iota
	InstrGfa
	InstrUsonic
	InstrReserved
)

// Instr is the dispatch-level tagged union the assembler emits and the
// machine steps through.
type Instr struct {
	Kind   InstrKind
	Ctrl   CtrlInstr
	Gfa    FieldInstr
	Usonic UsonicInstr
}

// Exec dispatches in against core, enforcing the purity rule: Ctrl, Gfa, and
// Reserved instructions run against the base register file alone and never
// observe or mutate the USONIC extension; only Usonic instructions may
// touch ctx or the iterator registers (spec §4.6).
func (in Instr) Exec(core *Core, ctx *VmContext) (halt bool) {
	switch in.Kind {
	case InstrCtrl:
		return in.Ctrl.Exec(&core.BaseCore)
	case InstrGfa:
		return in.Gfa.Exec(&core.BaseCore)
	case InstrUsonic:
		in.Usonic.Exec(core, ctx)
		return false
	case InstrReserved:
		core.BaseCore.PC++
		return false
	default:
		core.BaseCore.SetCK(StatusFail)
		return true
	}
}
