package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCommand(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		wantName string
		wantArgs []string
	}{
		{
			name:     "placeholders substituted",
			command:  "zathura --page={page} {path}",
			wantName: "zathura",
			wantArgs: []string{"--page=3", "/docs/a.pdf"},
		},
		{
			name:     "path appended when template omits it",
			command:  "evince -p {page}",
			wantName: "evince",
			wantArgs: []string{"-p", "3", "/docs/a.pdf"},
		},
		{
			name:     "bare command",
			command:  "okular",
			wantName: "okular",
			wantArgs: []string{"/docs/a.pdf"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, args := buildCommand(tt.command, "/docs/a.pdf", 3)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildCommandEmptyUsesPlatformOpener(t *testing.T) {
	name, args := buildCommand("  ", "/docs/a.pdf", 1)
	assert.NotEmpty(t, name)
	assert.Contains(t, args, "/docs/a.pdf")
}
