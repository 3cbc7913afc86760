package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validScenario = `
name: test
population: [10000, 20000]
seed_age: 1
contacts:
  home:
    - [2.0, 1.0]
    - [1.0, 3.0]
  work:
    - [1.0, 0.5]
    - [0.5, 2.0]
  school:
    - [0.5, 0.2]
    - [0.2, 1.0]
  other:
    - [1.5, 0.8]
    - [0.8, 2.5]
stages:
  e: 2
  i: 3
  h: 1
  ic: 2
  icr: 1
  v: 2
params:
  alpha: 0.2
  gamma: 0.2
  gamma_h: 0.1
  gamma_c: 0.08
  gamma_cr: 0.1
  psi: 0.01
  beta: 0.05
  h: 0.1
  xi: 0.2
  mu: 0.3
  rho: 0.8
  t_start: 10
  T: 30
  daily_vaccines: [100, 200]
columns:
  - name: beta_0
    calibrated: true
  - name: alpha
    lower: 0.15
    upper: 0.35
  - name: h
    lower: 0.05
    upper: 0.2
`

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

func TestLoadValidScenario(t *testing.T) {
	sc, err := Load(writeScenario(t, validScenario))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if sc.Name != "test" {
		t.Errorf("Name = %q, want test", sc.Name)
	}
	if sc.NAge() != 2 {
		t.Errorf("NAge = %d, want 2", sc.NAge())
	}
	if sc.SeedAge != 1 {
		t.Errorf("SeedAge = %d, want 1", sc.SeedAge)
	}
	if sc.Stages.E != 2 || sc.Stages.I != 3 || sc.Stages.V != 2 {
		t.Errorf("Stages = %+v", sc.Stages)
	}

	p := sc.ModelParams()
	if p.Alpha != 0.2 || p.TWindow != 30 {
		t.Errorf("Params not mapped: alpha=%v T=%v", p.Alpha, p.TWindow)
	}
	// susc omitted: defaults to ones.
	if len(p.Susc) != 2 || p.Susc[0] != 1 || p.Susc[1] != 1 {
		t.Errorf("Default susc = %v, want [1 1]", p.Susc)
	}
	if p.DailyVaccines[1] != 200 {
		t.Errorf("DailyVaccines = %v", p.DailyVaccines)
	}

	names := sc.ColumnNames()
	want := []string{"beta_0", "alpha", "h"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Column %d = %q, want %q", i, names[i], want[i])
		}
	}
	if !sc.HasCalibratedColumn() {
		t.Error("Expected a calibrated column")
	}
}

func TestTotalContacts(t *testing.T) {
	sc, err := Load(writeScenario(t, validScenario))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	total, err := sc.TotalContacts()
	if err != nil {
		t.Fatalf("TotalContacts failed: %v", err)
	}
	// 2.0 + 1.0 + 0.5 + 1.5 at [0][0]
	if total[0][0] != 5.0 {
		t.Errorf("Total[0][0] = %v, want 5", total[0][0])
	}
	// 3.0 + 2.0 + 1.0 + 2.5 at [1][1]
	if total[1][1] != 8.5 {
		t.Errorf("Total[1][1] = %v, want 8.5", total[1][1])
	}
}

func TestBounds(t *testing.T) {
	sc, err := Load(writeScenario(t, validScenario))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	b, err := sc.Bounds(0.01, 0.05)
	if err != nil {
		t.Fatalf("Bounds failed: %v", err)
	}
	if b.Lower[0] != 0.01 || b.Upper[0] != 0.05 {
		t.Errorf("Calibrated column bounds = [%v,%v], want [0.01,0.05]", b.Lower[0], b.Upper[0])
	}
	if b.Lower[1] != 0.15 || b.Upper[1] != 0.35 {
		t.Errorf("Literal column bounds = [%v,%v], want [0.15,0.35]", b.Lower[1], b.Upper[1])
	}

	if _, err := sc.Bounds(0, 0); err == nil {
		t.Error("Expected error for invalid calibrated interval")
	}
	if _, err := sc.Bounds(0.05, 0.01); err == nil {
		t.Error("Expected error for inverted calibrated interval")
	}
}

func TestLoadValidationFailures(t *testing.T) {
	cases := []struct {
		name    string
		mangle  func(string) string
		wantSub string
	}{
		{
			"missing contact setting",
			func(s string) string { return strings.Replace(s, "school", "park", 1) },
			"contact matrix",
		},
		{
			"bad seed age",
			func(s string) string { return strings.Replace(s, "seed_age: 1", "seed_age: 7", 1) },
			"seed_age",
		},
		{
			"zero stage count",
			func(s string) string { return strings.Replace(s, "i: 3", "i: 0", 1) },
			"stage count",
		},
		{
			"missing rate parameter",
			func(s string) string { return strings.Replace(s, "gamma: 0.2", "gamma: 0", 1) },
			"gamma",
		},
		{
			"column without bounds",
			func(s string) string { return strings.Replace(s, "    lower: 0.15\n    upper: 0.35\n", "", 1) },
			"bounds",
		},
		{
			"empty population",
			func(s string) string { return strings.Replace(s, "population: [10000, 20000]", "population: []", 1) },
			"population",
		},
	}
	for _, c := range cases {
		_, err := Load(writeScenario(t, c.mangle(validScenario)))
		if err == nil {
			t.Errorf("%s: expected error", c.name)
			continue
		}
		if !strings.Contains(err.Error(), c.wantSub) {
			t.Errorf("%s: error %q does not mention %q", c.name, err, c.wantSub)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	if _, err := Load(writeScenario(t, "population: [1000\n  bad")); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}
