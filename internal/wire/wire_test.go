package wire

import (
	"bytes"
	"testing"
)

func TestBuilderDecodeRoundTrip(t *testing.T) {
	var b Builder
	b.PutInt32(-7).PutUint32(42).PutFixed(FixedFromFloat(1.5)).PutString("hello").PutObject(ObjectID(9)).PutArray([]byte{1, 2, 3})

	args, err := Decode("iufsoa", b.Bytes(), nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(args) != 6 {
		t.Fatalf("got %d args, want 6", len(args))
	}
	if args[0].(int32) != -7 {
		t.Errorf("arg0 = %v, want -7", args[0])
	}
	if args[1].(uint32) != 42 {
		t.Errorf("arg1 = %v, want 42", args[1])
	}
	if got := args[2].(Fixed).ToFloat(); got != 1.5 {
		t.Errorf("arg2 = %v, want 1.5", got)
	}
	if args[3].(string) != "hello" {
		t.Errorf("arg3 = %q, want hello", args[3])
	}
	if args[4].(ObjectID) != 9 {
		t.Errorf("arg4 = %v, want 9", args[4])
	}
	if !bytes.Equal(args[5].([]byte), []byte{1, 2, 3}) {
		t.Errorf("arg5 = %v, want [1 2 3]", args[5])
	}
}

func TestDecodeNullableObject(t *testing.T) {
	var b Builder
	b.PutObject(0)
	args, err := Decode("?o", b.Bytes(), nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if args[0].(ObjectID) != 0 {
		t.Errorf("nullable object arg = %v, want 0", args[0])
	}
}

func TestDecodeRejectsNonNullableNullObject(t *testing.T) {
	var b Builder
	b.PutObject(0)
	if _, err := Decode("o", b.Bytes(), nil); err == nil {
		t.Fatal("expected error for non-nullable null object, got nil")
	}
}

func TestDecodeFD(t *testing.T) {
	args, err := Decode("h", nil, []int{5})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if args[0].(int) != 5 {
		t.Errorf("fd arg = %v, want 5", args[0])
	}
}

func TestDecodeShortReadErrors(t *testing.T) {
	if _, err := Decode("u", []byte{1, 2}, nil); err == nil {
		t.Fatal("expected short-read error, got nil")
	}
}

func TestStringPadding(t *testing.T) {
	var b Builder
	b.PutString("ab") // len 3 incl NUL, pads to 4
	if len(b.Bytes())%4 != 0 {
		t.Fatalf("builder output not 4-byte aligned: %d bytes", len(b.Bytes()))
	}
	args, err := Decode("s", b.Bytes(), nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if args[0].(string) != "ab" {
		t.Errorf("string = %q, want ab", args[0])
	}
}
