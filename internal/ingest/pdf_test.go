// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> whether RunSilent succeeds
	runPipedFunc  func(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	if m.runPipedFunc != nil {
		return m.runPipedFunc(name, args, stdin, stdout)
	}
	return nil
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantBin  string
		wantErr  bool
	}{
		{
			name: "docker available",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true},
				runnableCmds:  map[string]bool{"docker info": true},
			},
			wantBin: "docker",
		},
		{
			name: "podman fallback when docker missing",
			exec: &mockExecutor{
				availableBins: map[string]bool{"podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantBin: "podman",
		},
		{
			name: "docker on PATH but info fails, podman works",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantBin: "podman",
		},
		{
			name: "both available, docker preferred",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"docker info": true, "podman info": true},
			},
			wantBin: "docker",
		},
		{
			name:    "neither available",
			exec:    &mockExecutor{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detectRuntime(tt.exec)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "no container runtime available")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBin, rt.bin)
		})
	}
}

func TestNewPDFConverterRequiresImage(t *testing.T) {
	exec := &mockExecutor{
		availableBins: map[string]bool{"docker": true},
		runnableCmds:  map[string]bool{"docker info": true},
	}

	_, err := newPDFConverter(exec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), markitdownImage)

	exec.runnableCmds["docker image inspect "+markitdownImage] = true
	conv, err := newPDFConverter(exec)
	require.NoError(t, err)
	assert.Equal(t, "docker", conv.runtime.bin)
}

func TestNewPDFConverterPodmanImageCheck(t *testing.T) {
	exec := &mockExecutor{
		availableBins: map[string]bool{"podman": true},
		runnableCmds: map[string]bool{
			"podman info": true,
			"podman image exists " + markitdownImage: true,
		},
	}

	conv, err := newPDFConverter(exec)
	require.NoError(t, err)
	assert.Equal(t, "podman", conv.runtime.bin)
}

func TestExtractText(t *testing.T) {
	pdfPath := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("pdf bytes"), 0o644))

	exec := &mockExecutor{
		runPipedFunc: func(name string, args []string, stdin io.Reader, stdout io.Writer) error {
			assert.Equal(t, "docker", name)
			assert.Equal(t, []string{"run", "--rm", "-i", markitdownImage}, args)
			data, err := io.ReadAll(stdin)
			require.NoError(t, err)
			_, _ = stdout.Write([]byte("converted: " + string(data)))
			return nil
		},
	}
	conv := &PDFConverter{runtime: newDockerRuntime(exec)}

	text, err := conv.ExtractText(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "converted: pdf bytes", text)
}

func TestExtractTextErrors(t *testing.T) {
	pdfPath := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("pdf bytes"), 0o644))

	t.Run("missing file", func(t *testing.T) {
		conv := &PDFConverter{runtime: newDockerRuntime(&mockExecutor{})}
		_, err := conv.ExtractText(filepath.Join(t.TempDir(), "nope.pdf"))
		require.Error(t, err)
	})

	t.Run("container failure", func(t *testing.T) {
		exec := &mockExecutor{
			runPipedFunc: func(string, []string, io.Reader, io.Writer) error {
				return errors.New("container exited with code 1")
			},
		}
		conv := &PDFConverter{runtime: newDockerRuntime(exec)}
		_, err := conv.ExtractText(pdfPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "container exited")
	})

	t.Run("empty output", func(t *testing.T) {
		exec := &mockExecutor{
			runPipedFunc: func(string, []string, io.Reader, io.Writer) error { return nil },
		}
		conv := &PDFConverter{runtime: newDockerRuntime(exec)}
		_, err := conv.ExtractText(pdfPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty output")
	})
}
