package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	v, c, d := Info()
	if v == "" || c == "" || d == "" {
		t.Errorf("build info should not be empty: version=%q commit=%q date=%q", v, c, d)
	}
	if v != GetVersion() || c != GetCommit() || d != GetDate() {
		t.Error("Info and accessors disagree")
	}
}

func TestString(t *testing.T) {
	s := String()
	for _, part := range []string{"version=", "commit=", "date="} {
		if !strings.Contains(s, part) {
			t.Errorf("String() = %q, missing %q", s, part)
		}
	}
}
