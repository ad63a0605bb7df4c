package main

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	circlestark "github.com/ZippelLabs/ZP1/pkg/circlestark"
)

// AsmInstruction mirrors trace.Instruction in a JSON-friendly shape:
// mnemonic plus whichever of rd/rs1/rs2/imm that mnemonic uses.
type AsmInstruction struct {
	Op  string `json:"op"`
	RD  int    `json:"rd,omitempty"`
	RS1 int    `json:"rs1,omitempty"`
	RS2 int    `json:"rs2,omitempty"`
	Imm int32  `json:"imm,omitempty"`
}

// ProgramInput is line 1 of stdin: the assembled program to execute and prove.
type ProgramInput struct {
	Instructions []AsmInstruction `json:"instructions"`
	MaxSteps     int              `json:"max_steps"`
	PublicInputs string           `json:"public_inputs_hex"`
}

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)

	if !scanner.Scan() {
		fatal("failed to read program from stdin")
	}
	var input ProgramInput
	if err := json.Unmarshal(scanner.Bytes(), &input); err != nil {
		fatal(fmt.Sprintf("failed to parse program: %v", err))
	}

	prog, err := convertProgram(input.Instructions)
	if err != nil {
		fatal(fmt.Sprintf("failed to assemble program: %v", err))
	}

	publicInputs, err := hex.DecodeString(input.PublicInputs)
	if err != nil {
		fatal(fmt.Sprintf("invalid public_inputs_hex: %v", err))
	}

	maxSteps := input.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 4096
	}

	log.Info().Int("instructions", len(prog.Instructions)).Msg("running program")
	tr, err := circlestark.Run(prog, maxSteps)
	if err != nil {
		fatal(fmt.Sprintf("execution failed: %v", err))
	}
	log.Info().Int("rows", len(tr.Rows)).Msg("execution complete, generating proof")

	cfg := circlestark.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		fatal(fmt.Sprintf("invalid security configuration: %v", err))
	}

	proof, err := circlestark.Prove(tr, publicInputs, cfg)
	if err != nil {
		fatal(fmt.Sprintf("proof generation failed: %v", err))
	}
	log.Info().Msg("proof generated, writing to stdout")

	os.Stdout.Write(circlestark.Encode(proof))
	os.Stdout.Write([]byte("\n"))
}

func convertProgram(insts []AsmInstruction) (*circlestark.Program, error) {
	out := make([]circlestark.Instruction, 0, len(insts))
	for i, in := range insts {
		inst, err := decodeAsm(in)
		if err != nil {
			return nil, fmt.Errorf("instruction %d (%s): %w", i, in.Op, err)
		}
		out = append(out, inst)
	}
	return circlestark.NewProgram(out...), nil
}

func decodeAsm(in AsmInstruction) (circlestark.Instruction, error) {
	switch in.Op {
	case "add":
		return circlestark.Add(in.RD, in.RS1, in.RS2), nil
	case "addi":
		return circlestark.Addi(in.RD, in.RS1, in.Imm), nil
	case "sub":
		return circlestark.Sub(in.RD, in.RS1, in.RS2), nil
	case "and":
		return circlestark.And(in.RD, in.RS1, in.RS2), nil
	case "or":
		return circlestark.Or(in.RD, in.RS1, in.RS2), nil
	case "xor":
		return circlestark.Xor(in.RD, in.RS1, in.RS2), nil
	case "sll":
		return circlestark.Sll(in.RD, in.RS1, in.Imm), nil
	case "slt":
		return circlestark.Slt(in.RD, in.RS1, in.RS2), nil
	case "sltu":
		return circlestark.Sltu(in.RD, in.RS1, in.RS2), nil
	case "beq":
		return circlestark.Beq(in.RS1, in.RS2, in.Imm), nil
	case "jal":
		return circlestark.Jal(in.RD, in.Imm), nil
	case "jalr":
		return circlestark.Jalr(in.RD, in.RS1, in.Imm), nil
	case "mul":
		return circlestark.Mul(in.RD, in.RS1, in.RS2), nil
	case "mulh":
		return circlestark.Mulh(in.RD, in.RS1, in.RS2), nil
	case "div":
		return circlestark.Div(in.RD, in.RS1, in.RS2), nil
	case "divu":
		return circlestark.Divu(in.RD, in.RS1, in.RS2), nil
	case "rem":
		return circlestark.Rem(in.RD, in.RS1, in.RS2), nil
	case "lw":
		return circlestark.Lw(in.RD, in.RS1, in.Imm), nil
	case "lh":
		return circlestark.Lh(in.RD, in.RS1, in.Imm), nil
	case "lb":
		return circlestark.Lb(in.RD, in.RS1, in.Imm), nil
	case "sw":
		return circlestark.Sw(in.RS1, in.RS2, in.Imm), nil
	default:
		return circlestark.Instruction{}, fmt.Errorf("unknown opcode %q", in.Op)
	}
}

func fatal(msg string) {
	log.Error().Msg(msg)
	os.Exit(1)
}
