package chain

import (
	"strings"
	"testing"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress(" 0x1111111111111111111111111111111111111111 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.Hex() != "0x1111111111111111111111111111111111111111" {
		t.Fatalf("address mismatch: %s", addr.Hex())
	}

	if _, err := ParseAddress("0x1234"); err == nil {
		t.Fatalf("expected error for short address")
	}
}

func TestParseOptionalAddress(t *testing.T) {
	_, ok, err := ParseOptionalAddress("")
	if err != nil || ok {
		t.Fatalf("empty input should be absent: %v %v", ok, err)
	}
	if _, _, err := ParseOptionalAddress("nope"); err == nil {
		t.Fatalf("expected error for invalid address")
	}
}

func TestParseTxHash(t *testing.T) {
	valid := "0x" + strings.Repeat("ab", 32)
	hash, err := ParseTxHash(valid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash.Hex() != valid {
		t.Fatalf("hash mismatch: %s", hash.Hex())
	}

	if _, err := ParseTxHash("0xabcd"); err == nil {
		t.Fatalf("expected error for short hash")
	}
	if _, err := ParseTxHash("not-hex"); err == nil {
		t.Fatalf("expected error for non-hex hash")
	}
}
