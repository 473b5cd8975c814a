package names

import (
	"strings"
	"testing"
)

func TestDatabaseAddResolveErase(t *testing.T) {
	db := NewDatabase()
	db.Add(32349, "Sirius")
	db.Add(32349, "Dog Star")
	db.Add(71683, "Rigil Kentaurus")
	db.Add(71683, "") // ignored

	if n, ok := db.Resolve("Sirius"); !ok || n != 32349 {
		t.Errorf("Resolve(Sirius) = %d, %v", n, ok)
	}
	if _, ok := db.Resolve("sirius"); ok {
		t.Error("lookup must be case sensitive")
	}

	got := db.Names(32349)
	if len(got) != 2 || got[0] != "Sirius" || got[1] != "Dog Star" {
		t.Errorf("Names = %v, want registration order", got)
	}
	if len(db.Names(71683)) != 1 {
		t.Errorf("empty name was registered")
	}

	db.Erase(32349)
	if _, ok := db.Resolve("Sirius"); ok {
		t.Error("Sirius still resolves after Erase")
	}
	if len(db.Names(32349)) != 0 {
		t.Error("names remain after Erase")
	}
	if _, ok := db.Resolve("Rigil Kentaurus"); !ok {
		t.Error("Erase removed names of another star")
	}
}

func TestEraseKeepsReassignedName(t *testing.T) {
	db := NewDatabase()
	db.Add(1, "Shared")
	db.Add(2, "Shared") // name now points at star 2

	db.Erase(1)
	if n, ok := db.Resolve("Shared"); !ok || n != 2 {
		t.Errorf("Resolve(Shared) = %d, %v; erase of the old owner must not drop it", n, ok)
	}
}

func TestCompletions(t *testing.T) {
	db := NewDatabase()
	db.Add(1, "Altair")
	db.Add(2, "Alderamin")
	db.Add(3, "Vega")

	got := db.Completions("Al")
	if len(got) != 2 || got[0] != "Alderamin" || got[1] != "Altair" {
		t.Errorf("Completions(Al) = %v", got)
	}
	if db.Completions("") != nil {
		t.Error("empty prefix must complete to nothing")
	}
}

func TestLoad(t *testing.T) {
	input := `
# star names
32349:Sirius:Dog Star
71683:Rigil Kentaurus

91262:Vega
`
	db := NewDatabase()
	count, err := Load(strings.NewReader(input), db)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}
	if n, ok := db.Resolve("Dog Star"); !ok || n != 32349 {
		t.Errorf("Resolve(Dog Star) = %d, %v", n, ok)
	}
	if n, ok := db.Resolve("Vega"); !ok || n != 91262 {
		t.Errorf("Resolve(Vega) = %d, %v", n, ok)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no colon", "32349 Sirius"},
		{"bad number", "abc:Sirius"},
		{"invalid number", "4294967295:Nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.input), NewDatabase()); err == nil {
				t.Fatal("Load succeeded, want error")
			}
		})
	}
}
