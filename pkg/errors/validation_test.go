package errors

import (
	"testing"
)

func TestValidateSeed(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"numeric id", "1", "1", false},
		{"screen name", "durov", "durov", false},
		{"screen name with dot", "team.vk", "team.vk", false},
		{"id prefix", "id42", "id42", false},
		{"profile url", "https://vk.com/dm", "dm", false},
		{"mobile url", "https://m.vk.com/dm/", "dm", false},
		{"surrounding spaces", "  dm  ", "dm", false},

		{"empty", "", "", true},
		{"blank", "   ", "", true},
		{"zero id", "0", "", true},
		{"group id", "-1", "", true},
		{"too short", "a", "", true},
		{"bad characters", "foo/bar", "", true},
		{"control char", "foo\x01bar", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateSeed(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSeed(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !Is(err, ErrCodeInvalidSeed) {
					t.Errorf("ValidateSeed(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidSeed)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ValidateSeed(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
