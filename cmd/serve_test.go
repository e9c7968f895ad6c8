package cmd

import (
	"testing"
)

func TestNewServeCmdFlags(t *testing.T) {
	cmd := newServeCmd()

	tests := []struct {
		flag        string
		wantDefault string
	}{
		{"http-addr", ":8080"},
		{"metrics-addr", ":9090"},
		{"metrics-enabled", "true"},
		{"debug", "false"},
		{"model", ""},
		{"credentials", ""},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f := cmd.Flags().Lookup(tt.flag)
			if f == nil {
				t.Fatalf("serve command should define the --%s flag", tt.flag)
			}
			if f.DefValue != tt.wantDefault {
				t.Errorf("--%s default = %q, want %q", tt.flag, f.DefValue, tt.wantDefault)
			}
		})
	}
}

func TestNewAuthCmdFlags(t *testing.T) {
	cmd := newAuthCmd()

	for _, flag := range []string{"credentials", "token-file"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("auth command should define the --%s flag", flag)
		}
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	want := map[string]bool{"serve": false, "auth": false, "version": false}

	for _, sub := range rootCmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}

	for name, found := range want {
		if !found {
			t.Errorf("root command should register the %s subcommand", name)
		}
	}
}
