package brands

import "testing"

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry([]string{" Aurel ", "nuvia", "aurel", ""})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if !reg.IsValid("aurel") || !reg.IsValid("NUVIA") {
		t.Fatal("expected configured brands to validate")
	}
	if reg.IsValid("unknown") {
		t.Fatal("unexpected brand accepted")
	}
	if got := reg.All(); len(got) != 2 || got[0] != "aurel" || got[1] != "nuvia" {
		t.Fatalf("unexpected brand list: %v", got)
	}
}

func TestNewRegistryEmpty(t *testing.T) {
	if _, err := NewRegistry([]string{"", "  "}); err == nil {
		t.Fatal("expected error for empty brand list")
	}
}
