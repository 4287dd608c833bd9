package flagx

import (
	"os"
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
			args:    []string{"-d", "postgres://x", "-a", ":5000"},
			allowed: []string{"-d"},
			want:    []string{"-d", "postgres://x"},
		},
		{
			name:    "equals form",
			args:    []string{"-a=:8080", "-x=1"},
			allowed: []string{"-a"},
			want:    []string{"-a=:8080"},
		},
		{
			name:    "value that looks like a flag is not consumed",
			args:    []string{"-c", "-d", "dsn"},
			allowed: []string{"-c", "-d"},
			want:    []string{"-c", "-d", "dsn"},
		},
		{
			name:    "positional arguments are dropped",
			args:    []string{"serve", "-a", ":1", "extra"},
			allowed: []string{"-a"},
			want:    []string{"-a", ":1"},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-s"},
			allowed: []string{"-s"},
			want:    []string{"-s"},
		},
		{
			name:    "repeated flags keep order",
			args:    []string{"-c", "one.json", "-c", "two.json"},
			allowed: []string{"-c"},
			want:    []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-a", "1"},
			allowed: nil,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short flag", func(t *testing.T) {
		os.Args = []string{"blogkeeper", "-a", ":5000", "-c", "/etc/blog.json"}
		assert.Equal(t, "/etc/blog.json", ConfigFile())
	})

	t.Run("long flag with equals", func(t *testing.T) {
		os.Args = []string{"blogkeeper", "-config=/etc/other.json"}
		assert.Equal(t, "/etc/other.json", ConfigFile())
	})

	t.Run("last one wins", func(t *testing.T) {
		os.Args = []string{"blogkeeper", "-c", "1.json", "-config", "2.json"}
		assert.Equal(t, "2.json", ConfigFile())
	})

	t.Run("env fallback", func(t *testing.T) {
		os.Args = []string{"blogkeeper"}
		t.Setenv("CONFIG", "/env/blog.json")
		assert.Equal(t, "/env/blog.json", ConfigFile())
	})

	t.Run("nothing set", func(t *testing.T) {
		os.Args = []string{"blogkeeper", "-x", "1"}
		t.Setenv("CONFIG", "")
		assert.Empty(t, ConfigFile())
	})
}
