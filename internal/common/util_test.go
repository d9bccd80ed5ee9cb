package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte("secret1")
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

func TestSentinels_MatchThroughWrapping(t *testing.T) {
	sentinels := []error{
		ErrorValidation,
		ErrInvalidCredentials,
		ErrStoreCorrupted,
		ErrIndexOutOfRange,
		ErrNoEditInProgress,
	}
	for _, s := range sentinels {
		wrapped := fmt.Errorf("outer: %w", s)
		if !errors.Is(wrapped, s) {
			t.Fatalf("errors.Is failed for %v", s)
		}
	}
}
