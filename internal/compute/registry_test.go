package compute

import "testing"

func TestRegistryBuiltins(t *testing.T) {
	kinds := Kinds()
	if len(kinds) < 2 || kinds[0] != "exec" || kinds[1] != "lj" {
		t.Fatalf("builtin kinds = %v", kinds)
	}

	factory, ok := Lookup("lj")
	if !ok {
		t.Fatalf("lj factory missing")
	}
	eval, err := factory(Params{Epsilon: 2.5})
	if err != nil {
		t.Fatalf("build lj: %v", err)
	}
	lj, ok := eval.(LennardJones)
	if !ok {
		t.Fatalf("lj factory returned %T", eval)
	}
	if lj.Epsilon != 2.5 || lj.Sigma != 1.0 {
		t.Fatalf("params not applied: %+v", lj)
	}

	if _, ok := Lookup("dft"); ok {
		t.Fatalf("unexpected dft factory")
	}
}

func TestRegistryExecRequiresCommand(t *testing.T) {
	factory, ok := Lookup("exec")
	if !ok {
		t.Fatalf("exec factory missing")
	}
	if _, err := factory(Params{}); err == nil {
		t.Fatalf("expected missing command error")
	}
}
