package flagx

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-d", "/tmp/vault"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=alt.json", "-l", "debug"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "order is preserved",
			args:         []string{"--config=first.json", "-c", "second.json", "-x", "1"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=first.json", "-c", "second.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag without value at end",
			args:         []string{"-d"},
			allowedFlags: []string{"-d"},
			want:         []string{"-d"},
		},
		{
			name:         "next dash token is not a value",
			args:         []string{"-d", "-l", "info"},
			allowedFlags: []string{"-d"},
			want:         []string{"-d"},
		},
		{
			name:         "equals form keeps dash-looking value",
			args:         []string{"--config=--weird.json"},
			allowedFlags: []string{"--config"},
			want:         []string{"--config=--weird.json"},
		},
		{
			name:         "several allowed flags",
			args:         []string{"-d", "/data", "-c", "conf.json", "-l", "warn"},
			allowedFlags: []string{"-d", "-l"},
			want:         []string{"-d", "/data", "-l", "warn"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "repeated flag kept in order",
			args:         []string{"-l", "info", "-l", "debug"},
			allowedFlags: []string{"-l"},
			want:         []string{"-l", "info", "-l", "debug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	t.Run("short -c", func(t *testing.T) {
		assert.Equal(t, "/path/short.json", ConfigFileFlag([]string{"-c", "/path/short.json"}))
	})

	t.Run("long -config", func(t *testing.T) {
		assert.Equal(t, "/path/long.json", ConfigFileFlag([]string{"-config", "/path/long.json"}))
	})

	t.Run("double dash with equals", func(t *testing.T) {
		assert.Equal(t, "/path/eq.json", ConfigFileFlag([]string{"--config=/path/eq.json"}))
	})

	t.Run("other flags ignored", func(t *testing.T) {
		assert.Empty(t, ConfigFileFlag([]string{"-d", "/data", "-l", "debug"}))
	})

	t.Run("last wins", func(t *testing.T) {
		assert.Equal(t, "/path/2.json", ConfigFileFlag([]string{"-c", "/path/1.json", "-config", "/path/2.json"}))
	})
}
