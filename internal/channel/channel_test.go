package channel

import "testing"

// TestParse tests channel name validation
func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Channel
		wantErr bool
	}{
		{"release", "release", Release, false},
		{"beta", "beta", Beta, false},
		{"alpha", "alpha", Alpha, false},
		{"unknown", "nightly", "", true},
		{"empty", "", "", true},
		{"case sensitive", "Release", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestAllows tests the stability ordering between channels and version types
func TestAllows(t *testing.T) {
	tests := []struct {
		name        string
		channel     Channel
		versionType string
		want        bool
	}{
		{"release allows release", Release, "release", true},
		{"release rejects beta", Release, "beta", false},
		{"release rejects alpha", Release, "alpha", false},
		{"beta allows release", Beta, "release", true},
		{"beta allows beta", Beta, "beta", true},
		{"beta rejects alpha", Beta, "alpha", false},
		{"alpha allows everything", Alpha, "alpha", true},
		{"unknown type only on alpha", Release, "experimental", false},
		{"unknown type allowed on alpha", Alpha, "experimental", true},
		{"empty type treated as least stable", Beta, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.channel.Allows(tt.versionType); got != tt.want {
				t.Errorf("%s.Allows(%q) = %v, want %v", tt.channel, tt.versionType, got, tt.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	for _, valid := range []string{"release", "beta", "alpha"} {
		if !IsValid(valid) {
			t.Errorf("IsValid(%q) = false, want true", valid)
		}
	}
	for _, invalid := range []string{"", "stable", "dev"} {
		if IsValid(invalid) {
			t.Errorf("IsValid(%q) = true, want false", invalid)
		}
	}
}
