package flow

import (
	"testing"

	"github.com/stagehand-io/stagehand/internal/config"
)

func testBuilder(marker string) Builder {
	return func(cfg *config.Config, designDir string, opts ...Option) (*Flow, error) {
		opts = append(opts, WithName(marker))
		return New(cfg, designDir, NewSequential(), opts...)
	}
}

func TestRegisterAndLookup(t *testing.T) {
	Register("TestRegistryFlow", testBuilder("marker-a"))

	builder, ok := Lookup("TestRegistryFlow")
	if !ok {
		t.Fatal("Lookup returned false for registered name")
	}
	f, err := builder(&config.Config{}, t.TempDir())
	if err != nil {
		t.Fatalf("builder: %v", err)
	}
	defer f.Close()
	if f.Name() != "marker-a" {
		t.Errorf("built flow name = %q, want marker-a", f.Name())
	}
}

func TestLookup_Unregistered(t *testing.T) {
	builder, ok := Lookup("Unregistered")
	if ok || builder != nil {
		t.Errorf("Lookup(Unregistered) = (%v, %v), want (nil, false)", builder, ok)
	}
}

func TestRegister_Overwrites(t *testing.T) {
	Register("TestOverwriteFlow", testBuilder("first"))
	Register("TestOverwriteFlow", testBuilder("second"))

	builder, ok := Lookup("TestOverwriteFlow")
	if !ok {
		t.Fatal("Lookup returned false")
	}
	f, err := builder(&config.Config{}, t.TempDir())
	if err != nil {
		t.Fatalf("builder: %v", err)
	}
	defer f.Close()
	if f.Name() != "second" {
		t.Errorf("flow name = %q, want second (overwrite)", f.Name())
	}
}

func TestList_NoDuplicates(t *testing.T) {
	Register("TestListFlow", testBuilder("x"))
	Register("TestListFlow", testBuilder("y"))
	Register("TestListFlow", testBuilder("z"))

	seen := make(map[string]int)
	for _, name := range List() {
		seen[name]++
	}
	if seen["TestListFlow"] != 1 {
		t.Errorf("TestListFlow appears %d times in List", seen["TestListFlow"])
	}
}

func TestRegisterBuiltins(t *testing.T) {
	RegisterBuiltins()

	builder, ok := Lookup("Sequential")
	if !ok {
		t.Fatal("Sequential not registered")
	}
	cfg := &config.Config{
		Steps: []config.StepConfig{{ID: "synth", Command: []string{"true"}}},
	}
	f, err := builder(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("builder: %v", err)
	}
	defer f.Close()
	if f.Name() != "Sequential" {
		t.Errorf("flow name = %q, want Sequential", f.Name())
	}
}
