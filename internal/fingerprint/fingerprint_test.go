package fingerprint

import (
	"errors"
	"strings"
	"testing"
)

// SHA-256 of the empty input, a fixed reference value.
const emptyDigest = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func TestSumBytes(t *testing.T) {
	t.Run("empty input has known digest", func(t *testing.T) {
		if got := SumBytes(nil); got != emptyDigest {
			t.Errorf("SumBytes(nil) = %s, want %s", got, emptyDigest)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		data := []byte("scanned document bytes")
		first := SumBytes(data)
		for i := 0; i < 10; i++ {
			if got := SumBytes(data); got != first {
				t.Fatalf("SumBytes() = %s on run %d, want %s", got, i, first)
			}
		}
	})

	t.Run("different content yields different digest", func(t *testing.T) {
		if SumBytes([]byte("a")) == SumBytes([]byte("b")) {
			t.Error("SumBytes() returned identical digests for different content")
		}
	})
}

func TestSum(t *testing.T) {
	t.Run("matches SumBytes", func(t *testing.T) {
		data := "some file content"
		digest, n, err := Sum(strings.NewReader(data))
		if err != nil {
			t.Fatalf("Sum() error = %v", err)
		}
		if n != int64(len(data)) {
			t.Errorf("Sum() n = %d, want %d", n, len(data))
		}
		if want := SumBytes([]byte(data)); digest != want {
			t.Errorf("Sum() = %s, want %s", digest, want)
		}
	})

	t.Run("propagates read errors without partial digest", func(t *testing.T) {
		digest, _, err := Sum(&failingReader{})
		if err == nil {
			t.Fatal("Sum() expected error from failing reader")
		}
		if digest != "" {
			t.Errorf("Sum() returned partial digest %q on error", digest)
		}
	})
}

type failingReader struct{}

func (*failingReader) Read([]byte) (int, error) {
	return 0, errors.New("unreadable bytes")
}
