package ingest

import "testing"

func TestDOIsInText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "plain doi",
			text: "See doi:10.1093/sysbio/syy032 for details.",
			want: []string{"10.1093/sysbio/syy032"},
		},
		{
			name: "trailing punctuation stripped",
			text: "(available at 10.1371/journal.pcbi.1005030).",
			want: []string{"10.1371/journal.pcbi.1005030"},
		},
		{
			name: "multiple dois",
			text: "refs: 10.1234/first and 10.5678/second-part_three",
			want: []string{"10.1234/first", "10.5678/second-part_three"},
		},
		{
			name: "rejects slashless match",
			text: "version 10.4 of the software",
			want: nil,
		},
		{
			name: "no dois",
			text: "nothing to see here",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := doisInText(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("doisInText() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("doisInText()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestIsValidDOI(t *testing.T) {
	tests := []struct {
		doi  string
		want bool
	}{
		{"10.1093/sysbio/syy032", true},
		{"10.1371/journal.pcbi.1005030", true},
		{"10.1234/", false},
		{"11.1234/nope", false},
		{"10.12/ab", false},
	}

	for _, tt := range tests {
		t.Run(tt.doi, func(t *testing.T) {
			if got := isValidDOI(tt.doi); got != tt.want {
				t.Errorf("isValidDOI(%q) = %v, want %v", tt.doi, got, tt.want)
			}
		})
	}
}
