package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario("testdata/dry_run.yaml")
	require.NoError(t, err)
	assert.Equal(t, "dry_run", sc.Name)
	assert.Equal(t, "collect", sc.mode())
	require.NotNil(t, sc.Expect.Tasks)
	assert.Empty(t, sc.Expect.Tasks)
}

func TestLoadScenarioDefaultsToExecute(t *testing.T) {
	sc, err := LoadScenario("testdata/create_and_complete.yaml")
	require.NoError(t, err)
	assert.Equal(t, "execute", sc.mode())
}

func TestLoadScenarioValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "program: |\n  list_tasks()\n",
			wantErr: "missing name",
		},
		{
			name:    "missing program",
			content: "name: empty\n",
			wantErr: "missing program",
		},
		{
			name:    "invalid mode",
			content: "name: x\nmode: rehearse\nprogram: |\n  list_tasks()\n",
			wantErr: "invalid mode",
		},
		{
			name:    "malformed yaml",
			content: "name: [unclosed\n",
			wantErr: "parse scenario",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenarioFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenariosSortedByFileName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"),
		[]byte("name: second\nprogram: |\n  list_tasks()\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"),
		[]byte("name: first\nprogram: |\n  list_tasks()\n"), 0o644))

	scenarios, err := LoadScenarios(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "first", scenarios[0].Name)
	assert.Equal(t, "second", scenarios[1].Name)
}
