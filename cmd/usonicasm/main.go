// Command usonicasm is a small operator tool around the ultrasonic package:
// assembling masm text, formatting/parsing ids, and running a codex verifier
// against a JSON genesis+operation fixture.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crisdut/ultrasonic"
)

func main() {
	rootCmd := &cobra.Command{Use: "usonicasm"}
	rootCmd.AddCommand(asmCmd())
	rootCmd.AddCommand(idCmd())
	rootCmd.AddCommand(verifyCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func asmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "asm <file>",
		Short: "assemble masm text and print the resulting LibId",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			lib, err := ultrasonic.Assemble(string(text))
			if err != nil {
				return err
			}
			fmt.Printf("lib_id: %s\ninstructions: %d\n", lib.LibId(), len(lib.Instrs))
			return nil
		},
	}
}

func idCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "id", Short: "parse and re-render a Baid64 id"}
	cmd.AddCommand(&cobra.Command{
		Use:   "opid <baid64>",
		Short: "round-trip an Opid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ultrasonic.ParseOpid(args[0])
			if err != nil {
				return err
			}
			fmt.Println(id.String())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "contract <baid64>",
		Short: "round-trip a ContractId",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ultrasonic.ParseContractId(args[0])
			if err != nil {
				return err
			}
			fmt.Println(id.String())
			return nil
		},
	})
	return cmd
}

// verifyFixture is the JSON shape the verify subcommand reads: a library
// source to assemble, a call-to-entry-point table, an optional genesis to
// seed memory, and the operation to check against a codex verifier. It is a
// CLI convenience format, not a persistence format (spec §6 names none in
// scope for the core).
type verifyFixture struct {
	Lib        string            `json:"lib"`
	FieldOrder string            `json:"field_order"`
	Verifiers  map[string]uint16 `json:"verifiers"`
	Genesis    *genesisFixture   `json:"genesis,omitempty"`
	Operation  *operationFixture `json:"operation"`
}

type genesisFixture struct {
	Timestamp       int64 `json:"timestamp"`
	DestructibleOut int   `json:"destructible_out_count"`
	ImmutableOut    int   `json:"immutable_out_count"`
}

// operationFixture is enough of an Operation to drive Codex.Verify against
// real memory-resolved inputs: the addresses it spends/reads, and how many
// fresh cells it produces.
type operationFixture struct {
	ContractID      string   `json:"contract_id"`
	CallID          string   `json:"call_id"`
	Nonce           uint64   `json:"nonce"`
	DestructibleIn  []string `json:"destructible_in"`
	ImmutableIn     []string `json:"immutable_in"`
	DestructibleOut int      `json:"destructible_out_count"`
	ImmutableOut    int      `json:"immutable_out_count"`
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <fixture.json>",
		Short: "assemble a library and run its codex verifier against a genesis+operation fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var fixture verifyFixture
			if err := json.Unmarshal(raw, &fixture); err != nil {
				return fmt.Errorf("parsing fixture: %w", err)
			}
			if fixture.Operation == nil {
				return fmt.Errorf("fixture missing required \"operation\" field")
			}

			lib, err := ultrasonic.Assemble(fixture.Lib)
			if err != nil {
				return fmt.Errorf("assembling lib: %w", err)
			}

			var selector ultrasonic.FieldOrderSelector
			switch fixture.FieldOrder {
			case "", "curve25519":
				selector = ultrasonic.FieldCurve25519
			case "stark":
				selector = ultrasonic.FieldStark
			case "secp256k1":
				selector = ultrasonic.FieldSecp
			default:
				return fmt.Errorf("unknown field_order %q", fixture.FieldOrder)
			}

			verifiers := make(map[ultrasonic.CallId]ultrasonic.LibSite, len(fixture.Verifiers))
			for callHex, offset := range fixture.Verifiers {
				callID, err := ultrasonic.ParseCallId(callHex)
				if err != nil {
					return fmt.Errorf("parsing call id %q: %w", callHex, err)
				}
				verifiers[callID] = ultrasonic.LibSite{LibID: lib.LibId(), Offset: offset}
			}

			codex := ultrasonic.Codex{
				Name:               "cli-fixture",
				FieldOrderSelector: selector,
				Verifiers:          verifiers,
			}
			repo := ultrasonic.MapLibRepo{lib.LibId(): lib}

			memory := ultrasonic.NewMemory()
			if fixture.Genesis != nil {
				genesis := ultrasonic.Genesis{
					Timestamp:       fixture.Genesis.Timestamp,
					DestructibleOut: make([]ultrasonic.StateCell, fixture.Genesis.DestructibleOut),
					ImmutableOut:    make([]ultrasonic.StateData, fixture.Genesis.ImmutableOut),
				}
				contractID, err := memory.ApplyGenesis(&genesis)
				if err != nil {
					return fmt.Errorf("applying genesis: %w", err)
				}
				fmt.Printf("contract_id: %s\n", contractID)
			}

			op, err := buildOperationFixture(fixture.Operation)
			if err != nil {
				return fmt.Errorf("parsing operation: %w", err)
			}

			status := ultrasonic.StatusOk
			verifyErr := codex.Verify(op, memory, repo)
			if verifyErr != nil {
				status = ultrasonic.StatusFail
			}
			fmt.Printf("call_id: %s status: %s\n", op.CallID, status)
			if verifyErr != nil {
				return fmt.Errorf("verify rejected: %w", verifyErr)
			}
			return nil
		},
	}
}

// buildOperationFixture parses an operationFixture's textual addresses into
// a real ultrasonic.Operation. Witnesses and produced cells are left at
// their zero value: this fixture format exercises call dispatch and input
// resolution, not witness/state-value content.
func buildOperationFixture(f *operationFixture) (*ultrasonic.Operation, error) {
	contractID, err := ultrasonic.ParseContractId(f.ContractID)
	if err != nil {
		return nil, fmt.Errorf("parsing contract_id %q: %w", f.ContractID, err)
	}
	callID, err := ultrasonic.ParseCallId(f.CallID)
	if err != nil {
		return nil, fmt.Errorf("parsing call_id %q: %w", f.CallID, err)
	}

	destructibleIn := make([]ultrasonic.Input, len(f.DestructibleIn))
	for i, text := range f.DestructibleIn {
		addr, err := ultrasonic.ParseCellAddr(text)
		if err != nil {
			return nil, fmt.Errorf("parsing destructible_in[%d] %q: %w", i, text, err)
		}
		destructibleIn[i] = ultrasonic.Input{Addr: addr}
	}

	immutableIn := make([]ultrasonic.CellAddr, len(f.ImmutableIn))
	for i, text := range f.ImmutableIn {
		addr, err := ultrasonic.ParseCellAddr(text)
		if err != nil {
			return nil, fmt.Errorf("parsing immutable_in[%d] %q: %w", i, text, err)
		}
		immutableIn[i] = addr
	}

	return &ultrasonic.Operation{
		ContractID:      contractID,
		CallID:          callID,
		Nonce:           f.Nonce,
		DestructibleIn:  destructibleIn,
		ImmutableIn:     immutableIn,
		DestructibleOut: make([]ultrasonic.StateCell, f.DestructibleOut),
		ImmutableOut:    make([]ultrasonic.StateData, f.ImmutableOut),
	}, nil
}
