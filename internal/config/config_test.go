package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("APP_ENV", "")
	cfg := Load()
	if cfg.Port != "8080" || cfg.Env != "development" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	t.Setenv("PORT", "9000")
	if got := Load().Port; got != "9000" {
		t.Fatalf("env must win over default: %q", got)
	}
}

func TestParseBool(t *testing.T) {
	cases := []struct {
		val  string
		def  bool
		want bool
	}{
		{"1", false, true},
		{"true", false, true},
		{"0", true, false},
		{"false", true, false},
		{"", false, false},
		{"", true, true},
		{"garbage", true, true}, // invalid falls back to the default
	}
	for _, tc := range cases {
		t.Setenv("CADWEB_TEST_FLAG", tc.val)
		if got := ParseBool("CADWEB_TEST_FLAG", tc.def); got != tc.want {
			t.Errorf("ParseBool(%q, %v) = %v, want %v", tc.val, tc.def, got, tc.want)
		}
	}
}
