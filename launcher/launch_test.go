package launcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://localhost:8501", "http://localhost:8501/?embed=true"},
		{"http://localhost:8501/", "http://localhost:8501/?embed=true"},
		{"https://dash.example.com/app?theme=dark", "https://dash.example.com/app?embed=true&theme=dark"},
	}
	for _, tt := range tests {
		got, err := EmbedURL(tt.base)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestEmbedURL_Invalid(t *testing.T) {
	_, err := EmbedURL("http://[::1")
	assert.Error(t, err)
}

func TestBrowserCommand(t *testing.T) {
	assert.Equal(t, []string{"open", "http://x"}, BrowserCommand("darwin", "http://x"))
	assert.Equal(t, []string{"xdg-open", "http://x"}, BrowserCommand("linux", "http://x"))
	assert.Equal(t, "rundll32", BrowserCommand("windows", "http://x")[0])
}

func TestShellCommand_Quotes(t *testing.T) {
	assert.Equal(t, `'xdg-open' 'http://x/?q='\''a'\'''`, ShellCommand("linux", "http://x/?q='a'"))
}
