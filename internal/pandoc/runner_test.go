// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pandoc

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool
	outputFunc    func(name string, args []string) (stdout, stderr string, code int, err error)
	calls         [][]string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Output(_ context.Context, name string, args ...string) ([]byte, []byte, int, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	if m.outputFunc == nil {
		return nil, nil, 0, nil
	}
	stdout, stderr, code, err := m.outputFunc(name, args)
	return []byte(stdout), []byte(stderr), code, err
}

func TestVersion(t *testing.T) {
	tests := []struct {
		name    string
		exec    *mockExecutor
		want    string
		wantErr error
	}{
		{
			name: "returns first line of version output",
			exec: &mockExecutor{
				availableBins: map[string]bool{"pandoc": true},
				outputFunc: func(string, []string) (string, string, int, error) {
					return "pandoc 3.1.11\nFeatures: +server +lua\n", "", 0, nil
				},
			},
			want: "pandoc 3.1.11",
		},
		{
			name:    "binary missing",
			exec:    &mockExecutor{availableBins: map[string]bool{}},
			wantErr: ErrNotInstalled,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRunner("pandoc", tt.exec)
			got, err := r.Version(context.Background())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			require.Len(t, tt.exec.calls, 1)
			assert.Equal(t, []string{"pandoc", "--version"}, tt.exec.calls[0])
		})
	}
}

func TestVersionProbeFails(t *testing.T) {
	exec := &mockExecutor{
		availableBins: map[string]bool{"pandoc": true},
		outputFunc: func(string, []string) (string, string, int, error) {
			return "", "", 1, errors.New("exit status 1")
		},
	}
	_, err := newRunner("pandoc", exec).Version(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "probing pandoc version")
}

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		exec       *mockExecutor
		wantErr    bool
		wantExit   bool
		wantStderr string
	}{
		{
			name: "success",
			exec: &mockExecutor{
				availableBins: map[string]bool{"pandoc": true},
				outputFunc: func(string, []string) (string, string, int, error) {
					return "", "", 0, nil
				},
			},
		},
		{
			name: "non-zero exit carries stderr",
			exec: &mockExecutor{
				availableBins: map[string]bool{"pandoc": true},
				outputFunc: func(string, []string) (string, string, int, error) {
					return "", "  Could not find data file  \n", 64, errors.New("exit status 64")
				},
			},
			wantErr:    true,
			wantExit:   true,
			wantStderr: "Could not find data file",
		},
		{
			name:    "binary missing",
			exec:    &mockExecutor{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRunner("pandoc", tt.exec)
			err := r.Run(context.Background(), []string{"in.md", "-o", "in.epub"})
			if !tt.wantErr {
				require.NoError(t, err)
				require.Len(t, tt.exec.calls, 1)
				assert.Equal(t, []string{"pandoc", "in.md", "-o", "in.epub"}, tt.exec.calls[0])
				return
			}
			require.Error(t, err)
			var exitErr *ExitError
			if tt.wantExit {
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, 64, exitErr.Code)
				assert.Equal(t, tt.wantStderr, exitErr.Stderr)
				assert.True(t, strings.Contains(err.Error(), "code 64"))
				return
			}
			assert.False(t, errors.As(err, &exitErr))
			assert.ErrorIs(t, err, ErrNotInstalled)
		})
	}
}

func TestRunCancelled(t *testing.T) {
	exec := &mockExecutor{
		availableBins: map[string]bool{"pandoc": true},
		outputFunc: func(string, []string) (string, string, int, error) {
			return "", "", -1, errors.New("signal: killed")
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newRunner("pandoc", exec).Run(ctx, []string{"a.md"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestName(t *testing.T) {
	assert.Equal(t, "/opt/pandoc/bin/pandoc", New("/opt/pandoc/bin/pandoc").Name())
}

func TestInstallHint(t *testing.T) {
	assert.Contains(t, InstallHint("darwin"), "brew")
	assert.Contains(t, InstallHint("linux"), "apt")
	assert.Contains(t, InstallHint("windows"), "pandoc.org")
}
