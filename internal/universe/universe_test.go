package universe

import (
	"os"
	"path/filepath"
	"testing"
)

const validUniverseYAML = `meta:
  universe_id: test-universe
  description: ten names for tests
symbols:
  - symbol: AAPL
    name: Apple Inc.
    sector: Technology
  - symbol: MSFT
    name: Microsoft Corporation
    sector: Technology
  - symbol: BRK.B
    name: Berkshire Hathaway
    sector: Financial Services
  - symbol: JNJ
    sector: Healthcare
  - symbol: XOM
`

func writeUniverse(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "universe.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write universe: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	u, err := Load(writeUniverse(t, validUniverseYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if u.Meta.UniverseID != "test-universe" {
		t.Errorf("expected universe_id=test-universe, got %s", u.Meta.UniverseID)
	}
	if u.Len() != 5 {
		t.Fatalf("expected 5 symbols, got %d", u.Len())
	}

	tickers := u.Tickers()
	if tickers[0] != "AAPL" || tickers[2] != "BRK.B" || tickers[4] != "XOM" {
		t.Errorf("file order not preserved: %v", tickers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "gone.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadUnknownField(t *testing.T) {
	yaml := `meta:
  universe_id: typo
symbols:
  - symbol: AAPL
    weight: 0.5
`
	if _, err := Load(writeUniverse(t, yaml)); err == nil {
		t.Error("expected unknown field to fail")
	}
}

func TestLoadRejections(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			"missing universe id",
			"meta:\n  description: x\nsymbols:\n  - symbol: AAPL\n",
		},
		{
			"no symbols",
			"meta:\n  universe_id: empty\nsymbols: []\n",
		},
		{
			"blank symbol",
			"meta:\n  universe_id: blank\nsymbols:\n  - name: Nameless\n",
		},
		{
			"lowercase symbol",
			"meta:\n  universe_id: case\nsymbols:\n  - symbol: aapl\n",
		},
		{
			"duplicate symbol",
			"meta:\n  universe_id: dup\nsymbols:\n  - symbol: AAPL\n  - symbol: AAPL\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeUniverse(t, tc.yaml)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestPosition(t *testing.T) {
	u, err := Load(writeUniverse(t, validUniverseYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := u.Position("AAPL"); got != 0 {
		t.Errorf("Position(AAPL) = %d, want 0", got)
	}
	if got := u.Position("XOM"); got != 4 {
		t.Errorf("Position(XOM) = %d, want 4", got)
	}
	if got := u.Position("TSLA"); got != -1 {
		t.Errorf("Position(TSLA) = %d, want -1", got)
	}
}

func TestFind(t *testing.T) {
	u, err := Load(writeUniverse(t, validUniverseYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	e := u.Find("BRK.B")
	if e == nil {
		t.Fatal("expected to find BRK.B")
	}
	if e.Sector != "Financial Services" {
		t.Errorf("unexpected sector %q", e.Sector)
	}

	if u.Find("ZZZZ") != nil {
		t.Error("expected nil for unknown symbol")
	}
}
