package helper

import "testing"

func TestSubdomainFromHost(t *testing.T) {
	const base = "sekolahku.id"

	tests := []struct {
		name string
		host string
		want string
	}{
		{"root domain", "sekolahku.id", ""},
		{"subdomain tenant", "sdn1.sekolahku.id", "sdn1"},
		{"subdomain dengan port", "sdn1.sekolahku.id:3000", "sdn1"},
		{"uppercase dinormalisasi", "SDN1.Sekolahku.ID", "sdn1"},
		{"www bukan tenant", "www.sekolahku.id", ""},
		{"app bukan tenant", "app.sekolahku.id", ""},
		{"nested subdomain ditolak", "a.b.sekolahku.id", ""},
		{"domain lain", "sdn1.sekolain.id", ""},
		{"localhost", "localhost:3000", ""},
		{"suffix mirip tapi beda", "xsekolahku.id", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SubdomainFromHost(tt.host, base); got != tt.want {
				t.Fatalf("SubdomainFromHost(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}
