package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-d", "users.db", "-x", "1"},
			allowed: []string{"-d"},
			want:    []string{"-d", "users.db"},
		},
		{
			name:    "equals form",
			args:    []string{"-timeout=300", "-x", "1"},
			allowed: []string{"-timeout"},
			want:    []string{"-timeout=300"},
		},
		{
			name:    "positional arguments are dropped",
			args:    []string{"register", "-d", "x.db", "alice"},
			allowed: []string{"-d"},
			want:    []string{"-d", "x.db"},
		},
		{
			name:    "flag without value at end",
			args:    []string{"-d"},
			allowed: []string{"-d"},
			want:    []string{"-d"},
		},
		{
			name:    "next flag is not a value",
			args:    []string{"-d", "-k", "secret.key"},
			allowed: []string{"-d", "-k"},
			want:    []string{"-d", "-k", "secret.key"},
		},
		{
			name:    "repeated flag keeps order",
			args:    []string{"-c", "one.json", "-c", "two.json"},
			allowed: []string{"-c"},
			want:    []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:    "empty",
			args:    []string{},
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "/etc/sf.json", ConfigPath([]string{"-c", "/etc/sf.json"}))
	assert.Equal(t, "/etc/long.json", ConfigPath([]string{"-config", "/etc/long.json", "-d", "x"}))
	assert.Equal(t, "/etc/eq.json", ConfigPath([]string{"--config=/etc/eq.json"}))
	assert.Equal(t, "/b.json", ConfigPath([]string{"-c", "/a.json", "-config", "/b.json"}))
	assert.Empty(t, ConfigPath([]string{"-x", "1"}))
}
