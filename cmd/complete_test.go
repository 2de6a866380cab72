package cmd

import "testing"

func TestCompletion(t *testing.T) {
	c := Completion()
	for _, name := range []string{"holdings", "realized", "perf", "alloc", "tax", "iis", "fmt", "rm", "topic"} {
		if _, ok := c.Sub[name]; !ok {
			t.Errorf("subcommand %q has no completion", name)
		}
	}
	if _, ok := c.Sub["tax"].Flags["no-positions"]; !ok {
		t.Error("tax flags are not completed")
	}
	if _, ok := c.Flags["config"]; !ok {
		t.Error("global flags are not completed")
	}
}

func TestCompletion_Topics(t *testing.T) {
	got := Completion().Sub["topic"].Args.Predict("")
	for _, want := range []string{"ledger", "tax"} {
		found := false
		for _, g := range got {
			found = found || g == want
		}
		if !found {
			t.Errorf("topic %q not completed in %v", want, got)
		}
	}
}
