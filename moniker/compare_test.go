package moniker

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		// Same family, version decides
		{"net5.0", "net6.0", -1},
		{"net6.0", "net5.0", 1},
		{"netcoreapp3.1", "net5.0", -1},
		{"net48", "net472", 1},
		{"netstandard2.1", "netstandard2.0", 1},

		// Absent build compares as 0
		{"netcoreapp2.1", "netcoreapp2.1.0", 0},
		{"netcoreapp2.1", "netcoreapp2.1.1", -1},

		// Family order: net < netcoreapp < netstandard
		{"net8.0", "net48", 1},
		{"net472", "net6.0", -1},
		{"net48", "netstandard1.0", -1},
		{"netstandard2.0", "net6.0", 1},

		// Platform order: Agnostic < Windows < Linux < Unknown
		{"net6.0", "net6.0-windows", -1},
		{"net6.0-windows", "net6.0-linux", -1},
		{"net6.0-linux", "net6.0-android", -1},
		{"net6.0-android", "net6.0-ios", 0},

		// Platform version is not part of the order
		{"net6.0-windows10.0.19041", "net6.0-windows", 0},

		// Identical
		{"net6.0", "net6.0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			got := Compare(MustParse(tt.a), MustParse(tt.b))
			if got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			// Antisymmetry
			if rev := MustParse(tt.b).Compare(MustParse(tt.a)); rev != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, rev, -tt.want)
			}
		})
	}
}

func TestUnifiedRuntimeSharesRank(t *testing.T) {
	modern := MustParse("net6.0")
	unified := modern
	unified.family = UnifiedRuntime
	unified.raw = "unified6.0"

	if got := Compare(modern, unified); got != 0 {
		t.Errorf("Compare(ModernRuntime, UnifiedRuntime) = %d, want 0", got)
	}
	if modern.Equal(unified) {
		t.Error("tied monikers with different raw strings must not be Equal")
	}
}

func TestMax(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  string
		ok    bool
	}{
		{"empty", nil, "", false},
		{"single", []string{"net48"}, "net48", true},
		{"highest version", []string{"netcoreapp3.1", "net5.0", "net6.0"}, "net6.0", true},
		{"order independent", []string{"net6.0", "net5.0", "netcoreapp3.1"}, "net6.0", true},
		{"standard family ranks highest", []string{"net8.0", "netstandard2.0", "net48"}, "netstandard2.0", true},
		{"tie keeps first", []string{"net6", "net6.0"}, "net6", true},
		{"tie keeps first reversed", []string{"net6.0", "net6"}, "net6.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ms []Moniker
			for _, raw := range tt.input {
				ms = append(ms, MustParse(raw))
			}
			got, ok := Max(ms)
			if ok != tt.ok {
				t.Fatalf("Max() ok = %v, want %v", ok, tt.ok)
			}
			if got.Raw() != tt.want {
				t.Errorf("Max() = %q, want %q", got.Raw(), tt.want)
			}
		})
	}
}

func TestSort(t *testing.T) {
	ms := []Moniker{
		MustParse("netstandard2.0"),
		MustParse("net6.0-windows"),
		MustParse("net48"),
		MustParse("net6.0"),
		MustParse("netcoreapp3.1"),
		MustParse("net6"),
	}
	Sort(ms)

	want := []string{"net48", "netcoreapp3.1", "net6.0", "net6", "net6.0-windows", "netstandard2.0"}
	got := Raws(ms)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Sort() = %v, want %v", got, want)
		}
	}
}
