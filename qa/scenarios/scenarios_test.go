package scenarios

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScenarios(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenario files found")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestSignalExpansion(t *testing.T) {
	sc := Scenario{Segments: []SegmentDef{{PowerKW: 100, Steps: 3}, {PowerKW: 0, Steps: 2}}}
	sig := sc.Signal()
	if len(sig) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(sig))
	}
	if sig[0] != 100e3 || sig[4] != 0 {
		t.Fatalf("unexpected samples: %v", sig)
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	tmp, err := os.CreateTemp(t.TempDir(), "bad*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.WriteString(":"); err != nil {
		t.Fatal(err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmp.Name()); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
