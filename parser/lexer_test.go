package parser_test

import (
	"testing"

	"github.com/Bandock/bandchip-assembler/parser"
)

func TestScanLine_Instruction(t *testing.T) {
	st, err := parser.ScanLine("LD V0, 0x2A", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Kind != parser.StatementInstruction || st.Mnemonic != "LD" {
		t.Errorf("expected LD instruction, got %v %q", st.Kind, st.Mnemonic)
	}
	if len(st.Operands) != 2 {
		t.Fatalf("expected 2 operands, got %d", len(st.Operands))
	}
	if st.Operands[0].Kind != parser.OperandRegister || st.Operands[0].Text != "V0" {
		t.Errorf("operand 0: expected register V0, got %v %q", st.Operands[0].Kind, st.Operands[0].Text)
	}
	if st.Operands[1].Kind != parser.OperandImmediate || st.Operands[1].Text != "0x2A" {
		t.Errorf("operand 1: expected immediate 0x2A, got %v %q", st.Operands[1].Kind, st.Operands[1].Text)
	}
}

func TestScanLine_OperandClassification(t *testing.T) {
	tests := []struct {
		input string
		kinds []parser.OperandKind
	}{
		{"LD I, 0x300", []parser.OperandKind{parser.OperandAddressRegister, parser.OperandImmediate}},
		{"LD V3, DT", []parser.OperandKind{parser.OperandRegister, parser.OperandDelayTimer}},
		{"LD DT, V3", []parser.OperandKind{parser.OperandDelayTimer, parser.OperandRegister}},
		{"LD ST, V1", []parser.OperandKind{parser.OperandSoundTimer, parser.OperandRegister}},
		{"LD V4, K", []parser.OperandKind{parser.OperandRegister, parser.OperandKey}},
		{"LD F, V2", []parser.OperandKind{parser.OperandLoResFont, parser.OperandRegister}},
		{"LD HF, V2", []parser.OperandKind{parser.OperandHiResFont, parser.OperandRegister}},
		{"LD B, V9", []parser.OperandKind{parser.OperandBCD, parser.OperandRegister}},
		{"LD R, V0", []parser.OperandKind{parser.OperandUserRPL, parser.OperandRegister}},
		{"LD [I], V5", []parser.OperandKind{parser.OperandPointer, parser.OperandRegister}},
		{"JP start", []parser.OperandKind{parser.OperandLabel}},
		{"JP [I+V5]", []parser.OperandKind{parser.OperandPointer}},
		{"DRW V0, V1, 5", []parser.OperandKind{parser.OperandRegister, parser.OperandRegister, parser.OperandImmediate}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			st, err := parser.ScanLine(tt.input, 1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(st.Operands) != len(tt.kinds) {
				t.Fatalf("expected %d operands, got %d", len(tt.kinds), len(st.Operands))
			}
			for i, kind := range tt.kinds {
				if st.Operands[i].Kind != kind {
					t.Errorf("operand %d: expected kind %v, got %v (%q)",
						i, kind, st.Operands[i].Kind, st.Operands[i].Text)
				}
			}
		})
	}
}

func TestScanLine_CaseInsensitiveMnemonics(t *testing.T) {
	st, err := parser.ScanLine("ld v5, va", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Mnemonic != "LD" {
		t.Errorf("expected mnemonic LD, got %q", st.Mnemonic)
	}
	if st.Operands[0].Text != "V5" || st.Operands[1].Text != "VA" {
		t.Errorf("registers not upper-cased: %q %q", st.Operands[0].Text, st.Operands[1].Text)
	}
}

func TestScanLine_Labels(t *testing.T) {
	st, err := parser.ScanLine("start: JP start", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.Labels) != 1 || st.Labels[0].Name != "start" {
		t.Fatalf("expected label 'start', got %v", st.Labels)
	}
	if st.Kind != parser.StatementInstruction || st.Mnemonic != "JP" {
		t.Errorf("expected JP after label, got %v %q", st.Kind, st.Mnemonic)
	}
}

func TestScanLine_BareLabel(t *testing.T) {
	st, err := parser.ScanLine("loop:", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Kind != parser.StatementNone {
		t.Errorf("expected no statement, got %v", st.Kind)
	}
	if len(st.Labels) != 1 || st.Labels[0].Name != "loop" {
		t.Errorf("expected label 'loop', got %v", st.Labels)
	}
}

func TestScanLine_LabelCaseSensitive(t *testing.T) {
	st, err := parser.ScanLine("Main: RET", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Labels[0].Name != "Main" {
		t.Errorf("label case not preserved: %q", st.Labels[0].Name)
	}
}

func TestScanLine_ReservedLabels(t *testing.T) {
	for _, input := range []string{"JP:", "DB:", "I:", "ld:"} {
		t.Run(input, func(t *testing.T) {
			_, err := parser.ScanLine(input, 1)
			if err == nil {
				t.Fatal("expected error for reserved label")
			}
			if err.Kind != parser.ErrorReservedToken {
				t.Errorf("expected ReservedToken, got %v", err.Kind)
			}
		})
	}
}

func TestScanLine_Comments(t *testing.T) {
	tests := []struct {
		input string
		kind  parser.StatementKind
	}{
		{"; just a comment", parser.StatementNone},
		{"CLS ; clear the screen", parser.StatementInstruction},
		{"", parser.StatementNone},
		{"   ", parser.StatementNone},
	}

	for _, tt := range tests {
		st, err := parser.ScanLine(tt.input, 1)
		if err != nil {
			t.Errorf("input %q: unexpected error: %v", tt.input, err)
			continue
		}
		if st.Kind != tt.kind {
			t.Errorf("input %q: expected kind %v, got %v", tt.input, tt.kind, st.Kind)
		}
	}
}

func TestScanLine_Directives(t *testing.T) {
	tests := []struct {
		input string
		kind  parser.StatementKind
	}{
		{"OUTPUT BINARY", parser.StatementOutput},
		{"EXTENSION XOCHIP", parser.StatementExtension},
		{"ALIGN OFF", parser.StatementAlign},
		{"ORG 0x300", parser.StatementOrigin},
		{"INCBIN \"data.bin\"", parser.StatementBinaryInclude},
		{"DB 1, 2", parser.StatementDataByte},
		{"DW 0x1234", parser.StatementDataWord},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			st, err := parser.ScanLine(tt.input, 1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if st.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, st.Kind)
			}
		})
	}
}

func TestScanLine_DataArgs(t *testing.T) {
	st, err := parser.ScanLine("DW mylabel, 0x1234", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Operands[0].Kind != parser.OperandLabel || st.Operands[0].Text != "mylabel" {
		t.Errorf("operand 0: expected label, got %v %q", st.Operands[0].Kind, st.Operands[0].Text)
	}
	if st.Operands[1].Kind != parser.OperandImmediate {
		t.Errorf("operand 1: expected immediate, got %v", st.Operands[1].Kind)
	}
}

func TestScanLine_Strings(t *testing.T) {
	st, err := parser.ScanLine(`DB 0x41, "Bc", 0x44`, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.Operands) != 3 {
		t.Fatalf("expected 3 operands, got %d", len(st.Operands))
	}
	if st.Operands[1].Kind != parser.OperandString || st.Operands[1].Text != "Bc" {
		t.Errorf("expected string 'Bc', got %v %q", st.Operands[1].Kind, st.Operands[1].Text)
	}
}

func TestScanLine_StringEscapes(t *testing.T) {
	// a backslash escapes the following character to its literal byte
	st, err := parser.ScanLine(`DB "a\"b\\c;d"`, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Operands[0].Text != `a"b\c;d` {
		t.Errorf("escape decoding wrong: %q", st.Operands[0].Text)
	}
}

func TestScanLine_StringWithSpacesAndComma(t *testing.T) {
	st, err := parser.ScanLine(`DB "a b, c"`, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Operands[0].Text != "a b, c" {
		t.Errorf("string content wrong: %q", st.Operands[0].Text)
	}
}

func TestScanLine_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  parser.ErrorKind
	}{
		{"unknown first token", "FROB V0", parser.ErrorInvalidToken},
		{"digit-leading first token", "1UP", parser.ErrorInvalidToken},
		{"unterminated string", `DB "abc`, parser.ErrorInvalidToken},
		{"string outside DB or INCBIN", `ORG "0x300"`, parser.ErrorInvalidToken},
		{"nested pointer", "JP [[I+V0]]", parser.ErrorInvalidToken},
		{"comment inside pointer", "JP [I;+V0]", parser.ErrorInvalidToken},
		{"comma in ORG", "ORG 0x200, 0x300", parser.ErrorInvalidToken},
		{"empty label", ": CLS", parser.ErrorInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ScanLine(tt.input, 1)
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v (%s)", tt.kind, err.Kind, err.Message)
			}
		})
	}
}

func TestScanLine_PartialLabelsOnError(t *testing.T) {
	// labels scanned before the error still bind
	st, err := parser.ScanLine("here: FROB", 3)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(st.Labels) != 1 || st.Labels[0].Name != "here" {
		t.Errorf("expected partial label 'here', got %v", st.Labels)
	}
}

func TestRegisterIndex(t *testing.T) {
	if idx, ok := parser.RegisterIndex("VF"); !ok || idx != 0xF {
		t.Errorf("VF: expected 15, got %d %v", idx, ok)
	}
	if _, ok := parser.RegisterIndex("V"); ok {
		t.Error("V should not be a register")
	}
	if _, ok := parser.RegisterIndex("VG"); ok {
		t.Error("VG should not be a register")
	}
}
