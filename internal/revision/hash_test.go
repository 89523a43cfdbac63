package revision

import (
	"testing"
	"time"

	"github.com/rickgao/econ-etl/internal/model"
)

func TestHashStable(t *testing.T) {
	payload := []byte(`[{"date":"2024-01-01","value":"3.7"}]`)

	first := Hash(payload)
	second := Hash(payload)

	if first != second {
		t.Errorf("Hash not deterministic: %q vs %q", first, second)
	}
	if len(first) != 64 {
		t.Errorf("len(Hash) = %d, want 64 hex chars", len(first))
	}
}

func TestHashSensitiveToSingleByte(t *testing.T) {
	a := []byte(`[{"date":"2024-01-01","value":"3.7"}]`)
	b := []byte(`[{"date":"2024-01-01","value":"3.8"}]`)

	if Hash(a) == Hash(b) {
		t.Errorf("Hash(%q) == Hash(%q), want different digests", a, b)
	}
}

func TestHashEmptyInput(t *testing.T) {
	if Hash(nil) != Hash([]byte{}) {
		t.Errorf("Hash(nil) != Hash(empty), want equal")
	}
}

func TestHashWindowNilSinceCoversAll(t *testing.T) {
	obs := []model.RawObservation{
		{Date: "2024-01-01", Token: "3.7"},
		{Date: "2024-02-01", Token: "3.8"},
	}

	if got, want := HashWindow(obs, nil), Hash(model.CanonicalRaw(obs)); got != want {
		t.Errorf("HashWindow(obs, nil) = %q, want full-payload hash %q", got, want)
	}
}

func TestHashWindowMatchesRefetchedTail(t *testing.T) {
	full := []model.RawObservation{
		{Date: "2024-01-01", Token: "3.7"},
		{Date: "2024-02-01", Token: "3.8"},
		{Date: "2024-03-01", Token: "3.9"},
	}
	// What a provider returns when asked for observations from the
	// cutoff onward. The cutoff itself is included.
	tail := full[1:]
	cutoff := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	if HashWindow(full, &cutoff) != HashWindow(tail, &cutoff) {
		t.Error("full payload and refetched tail hash differently over the same window")
	}
	if HashWindow(full, &cutoff) == HashWindow(full, nil) {
		t.Error("windowed hash equals full hash, window not applied")
	}
}
