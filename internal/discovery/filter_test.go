package discovery

import (
	"testing"

	"irverify/internal/domain"
)

func TestFilter_FilterByName(t *testing.T) {
	filter := NewFilter()

	tests := []struct {
		name     string
		files    []string
		pattern  string
		expected int // Expected number of matches
	}{
		{
			name:     "empty pattern returns all",
			files:    []string{"div.irsuite.yaml", "mod.irsuite.yaml", "divmod.irsuite.yaml"},
			pattern:  "",
			expected: 3,
		},
		{
			name:     "wildcard pattern matches prefix",
			files:    []string{"div.irsuite.yaml", "mod.irsuite.yaml", "divmod.irsuite.yaml"},
			pattern:  "div*",
			expected: 2,
		},
		{
			name:     "simple contains match",
			files:    []string{"div.irsuite.yaml", "mod.irsuite.yaml", "divmod.irsuite.yaml"},
			pattern:  "mod",
			expected: 2,
		},
		{
			name:     "no matches",
			files:    []string{"div.irsuite.yaml", "mod.irsuite.yaml"},
			pattern:  "*shift*",
			expected: 0,
		},
		{
			name:     "full path with wildcard",
			files:    []string{"/suites/x86/div.irsuite.yaml", "/suites/x86/mod.irsuite.yaml"},
			pattern:  "*mod.irsuite.yaml",
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.FilterByName(tt.files, tt.pattern)
			if len(result) != tt.expected {
				t.Errorf("expected %d matches, got %d", tt.expected, len(result))
			}
		})
	}
}

func TestFilter_FilterCases(t *testing.T) {
	filter := NewFilter()
	cases := []domain.TestCase{
		{Name: "testDivIntFast", Suite: "TestDivSmallPath"},
		{Name: "testModIntFast", Suite: "TestDivSmallPath"},
		{Name: "testDivModLongNormal", Suite: "TestDivSmallPath"},
		{Name: "testDivIntByParam", Suite: "DivConst"},
	}

	tests := []struct {
		name     string
		pattern  string
		expected []string
	}{
		{name: "empty pattern returns all", pattern: "", expected: []string{"testDivIntFast", "testModIntFast", "testDivModLongNormal", "testDivIntByParam"}},
		{name: "exact name", pattern: "testModIntFast", expected: []string{"testModIntFast"}},
		{name: "ordered parts", pattern: "*Mod*Normal", expected: []string{"testDivModLongNormal"}},
		{name: "suite qualified", pattern: "DivConst::*", expected: []string{"testDivIntByParam"}},
		{name: "contains", pattern: "Fast", expected: []string{"testDivIntFast", "testModIntFast"}},
		{name: "parts out of order", pattern: "*Fast*Mod", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.FilterCases(cases, tt.pattern)
			if len(result) != len(tt.expected) {
				t.Fatalf("expected %d matches, got %d", len(tt.expected), len(result))
			}
			for i, tc := range result {
				if tc.Name != tt.expected[i] {
					t.Errorf("expected %s at %d, got %s", tt.expected[i], i, tc.Name)
				}
			}
		})
	}
}

func TestFilter_FilterByName_EdgeCases(t *testing.T) {
	filter := NewFilter()

	t.Run("empty file list", func(t *testing.T) {
		result := filter.FilterByName([]string{}, "*.irsuite.yaml")
		if len(result) != 0 {
			t.Errorf("expected empty result, got %d items", len(result))
		}
	})

	t.Run("pattern with multiple wildcards", func(t *testing.T) {
		files := []string{"int_div.irsuite.yaml", "int_divmod.irsuite.yaml", "long_mod.irsuite.yaml"}
		result := filter.FilterByName(files, "*int*div*")
		if len(result) != 2 {
			t.Errorf("expected 2 matches, got %d", len(result))
		}
	})
}
