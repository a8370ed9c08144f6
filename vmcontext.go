package ultrasonic

// VmContext is a read-only, borrowed view into the operation currently under
// verification. The register machine never copies or mutates these slices;
// it only walks them via the UI_* iterator registers (spec §4.5).
type VmContext struct {
	ReadOnceInput   []StateValue
	ImmutableInput  []StateValue
	ReadOnceOutput  []StateCell
	ImmutableOutput []StateData
}

// IoCat selects one of the four iterator categories driven by ISA-USONIC.
type IoCat uint8

const (
	InRO IoCat = iota
	InAO
	OutRO
	OutAO
)

func (c IoCat) String() string {
	switch c {
	case InRO:
		return "destructible-in"
	case InAO:
		return "immutable-in"
	case OutRO:
		return "destructible-out"
	case OutAO:
		return "immutable-out"
	default:
		return "unknown-io-cat"
	}
}

// Len returns the length of the slice backing category c.
func (ctx *VmContext) Len(cat IoCat) int {
	switch cat {
	case InRO:
		return len(ctx.ReadOnceInput)
	case InAO:
		return len(ctx.ImmutableInput)
	case OutRO:
		return len(ctx.ReadOnceOutput)
	case OutAO:
		return len(ctx.ImmutableOutput)
	default:
		return 0
	}
}

// valueAt returns the StateValue category c holds at index i, per the
// per-category projection in spec §4.5 (StateCell.Data / StateData.Value for
// the output categories).
func (ctx *VmContext) valueAt(cat IoCat, i int) StateValue {
	switch cat {
	case InRO:
		return ctx.ReadOnceInput[i]
	case InAO:
		return ctx.ImmutableInput[i]
	case OutRO:
		return ctx.ReadOnceOutput[i].Data
	case OutAO:
		return ctx.ImmutableOutput[i].Value
	default:
		return StateValue{}
	}
}
