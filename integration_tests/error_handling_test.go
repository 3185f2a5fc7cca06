package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxkimambo/sitebuild/integration_tests/internal/testutil"
)

func TestErrorHandling(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tests := []struct {
		name          string
		files         map[string]string
		args          []string
		expectedError string
	}{
		{
			name:          "unknown_task",
			files:         testutil.DefaultProject(),
			args:          []string{"run", "deploy"},
			expectedError: "TASK-001",
		},
		{
			name:          "missing_manifest",
			files:         map[string]string{"README.md": "empty"},
			args:          []string{"run", "build"},
			expectedError: "CONFIG-001",
		},
		{
			name: "lint_violation",
			files: func() map[string]string {
				files := testutil.DefaultProject()
				files["gulpfile.js"] = "debugger;\n"
				return files
			}(),
			args:          []string{"run", "build"},
			expectedError: "LINT-001",
		},
		{
			name: "unsupported_archive_format",
			files: map[string]string{
				"package.json": `{"name": "x", "sitebuild": {"archiveFormat": "rar"}}`,
			},
			args:          []string{"run", "archive"},
			expectedError: "unsupported archive format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutil.SetupTestWorkspace(t, tt.files, keepWorkspaces)

			res := testutil.Run(t, dir, tt.args...)
			assert.NotEqual(t, 0, res.ExitCode, "stdout: %s", res.Stdout)
			assert.Contains(t, res.Stderr, tt.expectedError)
		})
	}
}
