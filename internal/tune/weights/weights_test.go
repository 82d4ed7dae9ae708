package weights

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	m := Defaults()
	if m.Prior() != 0.55 {
		t.Errorf("prior = %v, want 0.55", m.Prior())
	}
	if m.Factor("volume_anomaly") != 1.0 {
		t.Errorf("volume_anomaly = %v, want 1.0", m.Factor("volume_anomaly"))
	}
	if m.Factor("fv_extension") != 0.7 {
		t.Errorf("fv_extension = %v, want 0.7", m.Factor("fv_extension"))
	}
}

func TestFactorFallsBackToOne(t *testing.T) {
	m := Map{}
	if m.Factor("never_seen") != 1.0 {
		t.Errorf("unknown factor weight = %v, want 1.0", m.Factor("never_seen"))
	}
	if m.Prior() != 0.55 {
		t.Errorf("missing prior = %v, want default 0.55", m.Prior())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := Defaults()
	c := m.Clone()
	c[PriorKey] = 0.9
	if m.Prior() == 0.9 {
		t.Error("mutating the clone changed the original")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.json")
	store := NewStore(path)

	m := Defaults()
	m["factor.volume_anomaly"] = 1.4
	if err := store.Save(m); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := store.Load()
	if loaded.Factor("volume_anomaly") != 1.4 {
		t.Errorf("loaded volume_anomaly = %v, want 1.4", loaded.Factor("volume_anomaly"))
	}

	// No stray temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("weights dir has %d entries, want only the weights file", len(entries))
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.json"))
	m := store.Load()
	if m.Prior() != 0.55 {
		t.Errorf("missing file prior = %v, want defaults", m.Prior())
	}
}

func TestLoadCorruptFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	m := NewStore(path).Load()
	if m.Prior() != 0.55 {
		t.Errorf("corrupt file prior = %v, want defaults", m.Prior())
	}
}

func outcomeBatch(n int, win bool, factor string) []Outcome {
	out := make([]Outcome, n)
	for i := range out {
		out[i] = Outcome{
			IsWin: win,
			Why:   []string{factor + ": v=0.80 c=0.90 w=1.00"},
		}
	}
	return out
}

func TestUpdateRequiresMinimumSamples(t *testing.T) {
	m := Defaults()
	// 10 winning outcomes are below the minimum sample gate, so the only
	// change is decay.
	updated := Update(m, outcomeBatch(10, true, "volume_anomaly"))
	want := m.Factor("volume_anomaly") * learnDecay
	if updated.Factor("volume_anomaly") != want {
		t.Errorf("thin sample weight = %v, want decay only (%v)", updated.Factor("volume_anomaly"), want)
	}
}

func TestUpdateMovesDivergentFactors(t *testing.T) {
	m := Defaults()
	batch := append(outcomeBatch(40, true, "volume_anomaly"), outcomeBatch(40, false, "fv_extension")...)
	updated := Update(m, batch)

	if updated.Factor("volume_anomaly") <= m.Factor("volume_anomaly")*learnDecay {
		t.Errorf("winning factor did not move up: %v", updated.Factor("volume_anomaly"))
	}
	if updated.Factor("fv_extension") >= m.Factor("fv_extension") {
		t.Errorf("losing factor did not move down: %v", updated.Factor("fv_extension"))
	}
}

func TestUpdateClampsWeights(t *testing.T) {
	m := Map{PriorKey: 0.55, "factor.volume_anomaly": weightCeil}
	updated := Update(m, outcomeBatch(100, true, "volume_anomaly"))
	if updated.Factor("volume_anomaly") > weightCeil {
		t.Errorf("weight %v above ceiling %v", updated.Factor("volume_anomaly"), weightCeil)
	}

	m = Map{PriorKey: 0.55, "factor.fv_extension": weightFloor}
	batch := append(outcomeBatch(50, false, "fv_extension"), outcomeBatch(50, true, "volume_anomaly")...)
	updated = Update(m, batch)
	if updated.Factor("fv_extension") < weightFloor {
		t.Errorf("weight %v below floor %v", updated.Factor("fv_extension"), weightFloor)
	}
}

func TestUpdateEmptyOutcomesIsIdentity(t *testing.T) {
	m := Defaults()
	updated := Update(m, nil)
	for k, v := range m {
		if updated[k] != v {
			t.Errorf("key %q changed: %v -> %v", k, v, updated[k])
		}
	}
}
