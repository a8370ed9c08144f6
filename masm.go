package ultrasonic

import (
	"fmt"
	"strconv"
	"strings"
)

// Lib is an assembled sequence of instructions plus the identifier derived
// from its canonical bytecode.
type Lib struct {
	Instrs []Instr
}

// Encode writes the canonical bytecode for a Lib: one tagged record per
// instruction, in program order. The layout is internal to this
// implementation (the wire format for libraries is out of this module's
// scope) but must be deterministic for LibId to be stable.
func (l *Lib) Encode() []byte {
	out := make([]byte, 0, len(l.Instrs)*6)
	for _, in := range l.Instrs {
		out = append(out, byte(in.Kind))
		switch in.Kind {
		case InstrCtrl:
			out = append(out, byte(in.Ctrl.Op), in.Ctrl.Dst, in.Ctrl.Src)
			out = appendUint16LE(out, in.Ctrl.Target)
		case InstrGfa:
			out = append(out, byte(in.Gfa.Op), in.Gfa.Dst, in.Gfa.A, in.Gfa.B)
		case InstrUsonic:
			out = append(out, byte(in.Usonic))
		case InstrReserved:
			// no operands
		}
	}
	return out
}

// LibId derives this library's identifier from its canonical bytecode. This
// reuses the tagged-hash construction of §4.2 under the codex tag family,
// since the base library commitment scheme itself is out of this module's
// scope.
func (l *Lib) LibId() LibId {
	return LibId(taggedID(tagCodexID, l.Encode()))
}

// maxVMSteps bounds a single verification run so a buggy or adversarial
// verifier program cannot loop forever; the real step limit is configured
// per-codex and out of this module's scope (spec §5).
const maxVMSteps = 1 << 20

// RunVM executes lib starting at offset against core and ctx until the
// machine halts, runs off the end of the program, or exceeds maxVMSteps; any
// of the latter two poison CK. repo is accepted to match the base machine's
// exec signature (spec §6) though this minimal core never crosses into
// another library. The final CK is the verdict.
func RunVM(core *Core, lib *Lib, offset uint16, ctx *VmContext, repo LibRepo) Status {
	core.BaseCore.PC = offset
	for steps := 0; ; steps++ {
		if steps >= maxVMSteps {
			core.BaseCore.SetCK(StatusFail)
			break
		}
		pc := core.BaseCore.PC
		if int(pc) >= len(lib.Instrs) {
			core.BaseCore.SetCK(StatusFail)
			break
		}
		if lib.Instrs[pc].Exec(core, ctx) {
			break
		}
	}
	return core.BaseCore.CK
}

// regIndex resolves a register token (EA, EB, EC, ED, or R<n>) to its index
// in BaseCore.Regs.
func regIndex(tok string) (uint8, error) {
	switch strings.ToUpper(tok) {
	case "EA":
		return RegEA, nil
	case "EB":
		return RegEB, nil
	case "EC":
		return RegEC, nil
	case "ED":
		return RegED, nil
	}
	if strings.HasPrefix(strings.ToUpper(tok), "R") {
		n, err := strconv.Atoi(tok[1:])
		if err == nil && n >= 0 && n < NumFieldRegs {
			return uint8(n), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown register %q", ErrInvalidTag, tok)
}

// Assemble parses mnemonic masm text into a Lib. One instruction per
// non-blank, non-comment line; '#' starts a line comment. The USONIC
// mnemonics (cknxi|cknxo|ldi|ldo|rsti|rsto, each suffixed :destructible or
// :immutable) resolve to the twelve fused opcodes; every other mnemonic
// passes through to the minimal base assembler (spec §6).
func Assemble(text string) (*Lib, error) {
	lib := &Lib{}
	for lineNo, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		mnemonic := strings.ToLower(fields[0])
		args := fields[1:]

		if usonic, ok := usonicMnemonics[mnemonic]; ok {
			lib.Instrs = append(lib.Instrs, Instr{Kind: InstrUsonic, Usonic: usonic})
			continue
		}

		instr, err := assembleCtrlOrGfa(mnemonic, args)
		if err != nil {
			return nil, fmt.Errorf("ultrasonic: masm line %d: %w", lineNo+1, err)
		}
		lib.Instrs = append(lib.Instrs, instr)
	}
	return lib, nil
}

var usonicMnemonics = map[string]UsonicInstr{
	"cknxi:destructible": CknxiDestructible,
	"cknxi:immutable":    CknxiImmutable,
	"cknxo:destructible": CknxoDestructible,
	"cknxo:immutable":    CknxoImmutable,
	"ldi:destructible":   LdiDestructible,
	"ldi:immutable":      LdiImmutable,
	"ldo:destructible":   LdoDestructible,
	"ldo:immutable":      LdoImmutable,
	"rsti:destructible":  RstiDestructible,
	"rsti:immutable":     RstiImmutable,
	"rsto:destructible":  RstoDestructible,
	"rsto:immutable":     RstoImmutable,
}

func assembleCtrlOrGfa(mnemonic string, args []string) (Instr, error) {
	switch mnemonic {
	case "nop":
		return Instr{Kind: InstrCtrl, Ctrl: CtrlInstr{Op: CtrlNop}}, nil
	case "chk":
		return Instr{Kind: InstrCtrl, Ctrl: CtrlInstr{Op: CtrlChk}}, nil
	case "halt":
		return Instr{Kind: InstrCtrl, Ctrl: CtrlInstr{Op: CtrlHalt}}, nil
	case "not":
		return Instr{Kind: InstrCtrl, Ctrl: CtrlInstr{Op: CtrlNot}}, nil
	case "test":
		r, err := requireReg(args, 0)
		if err != nil {
			return Instr{}, err
		}
		return Instr{Kind: InstrCtrl, Ctrl: CtrlInstr{Op: CtrlTest, Dst: r}}, nil
	case "jif":
		if len(args) < 1 {
			return Instr{}, fmt.Errorf("jif: missing target")
		}
		n, err := strconv.ParseUint(args[0], 10, 16)
		if err != nil {
			return Instr{}, fmt.Errorf("jif: bad target %q: %w", args[0], err)
		}
		return Instr{Kind: InstrCtrl, Ctrl: CtrlInstr{Op: CtrlJif, Target: uint16(n)}}, nil
	case "mov":
		dst, src, err := requireRegPair(args)
		if err != nil {
			return Instr{}, err
		}
		return Instr{Kind: InstrCtrl, Ctrl: CtrlInstr{Op: CtrlMov, Dst: dst, Src: src}}, nil
	case "clr":
		r, err := requireReg(args, 0)
		if err != nil {
			return Instr{}, err
		}
		return Instr{Kind: InstrCtrl, Ctrl: CtrlInstr{Op: CtrlClr, Dst: r}}, nil
	case "eq":
		dst, src, err := requireRegPair(args)
		if err != nil {
			return Instr{}, err
		}
		return Instr{Kind: InstrCtrl, Ctrl: CtrlInstr{Op: CtrlEq, Dst: dst, Src: src}}, nil
	case "add", "mul":
		if len(args) < 3 {
			return Instr{}, fmt.Errorf("%s: expected 3 registers", mnemonic)
		}
		dst, err := regIndex(args[0])
		if err != nil {
			return Instr{}, err
		}
		a, err := regIndex(args[1])
		if err != nil {
			return Instr{}, err
		}
		b, err := regIndex(args[2])
		if err != nil {
			return Instr{}, err
		}
		op := FieldAdd
		if mnemonic == "mul" {
			op = FieldMul
		}
		return Instr{Kind: InstrGfa, Gfa: FieldInstr{Op: op, Dst: dst, A: a, B: b}}, nil
	case "neg":
		dst, src, err := requireRegPair(args)
		if err != nil {
			return Instr{}, err
		}
		return Instr{Kind: InstrGfa, Gfa: FieldInstr{Op: FieldNeg, Dst: dst, A: src}}, nil
	default:
		return Instr{}, fmt.Errorf("%w: unknown mnemonic %q", ErrInvalidTag, mnemonic)
	}
}

func requireReg(args []string, i int) (uint8, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing register operand")
	}
	return regIndex(args[i])
}

func requireRegPair(args []string) (uint8, uint8, error) {
	if len(args) < 2 {
		return 0, 0, fmt.Errorf("expected 2 registers")
	}
	dst, err := regIndex(args[0])
	if err != nil {
		return 0, 0, err
	}
	src, err := regIndex(args[1])
	if err != nil {
		return 0, 0, err
	}
	return dst, src, nil
}
