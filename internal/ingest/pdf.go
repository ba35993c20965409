// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// markitdownImage is the container image used to turn PDFs into text.
const markitdownImage = "markitdown:latest"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	return cmd.Run()
}

var defaultExec executor = &osExecutor{}

// containerRuntime runs a conversion image under docker or podman. The two
// differ only in binary name and the image-existence subcommand.
type containerRuntime struct {
	bin           string
	imageCheckCmd []string
	exec          executor
}

func newDockerRuntime(exec executor) *containerRuntime {
	return &containerRuntime{bin: "docker", imageCheckCmd: []string{"image", "inspect"}, exec: exec}
}

func newPodmanRuntime(exec executor) *containerRuntime {
	return &containerRuntime{bin: "podman", imageCheckCmd: []string{"image", "exists"}, exec: exec}
}

func (r *containerRuntime) available() bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(r.bin, "info") == nil
}

func (r *containerRuntime) imageExists(image string) error {
	args := append(append([]string{}, r.imageCheckCmd...), image)
	if err := r.exec.RunSilent(r.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *containerRuntime) run(image string, stdin io.Reader, stdout io.Writer) error {
	if err := r.exec.RunPiped(r.bin, []string{"run", "--rm", "-i", image}, stdin, stdout); err != nil {
		return fmt.Errorf("running %s container %s: %w", r.bin, image, err)
	}
	return nil
}

// detectRuntime tries docker first, then podman.
func detectRuntime(exec executor) (*containerRuntime, error) {
	docker := newDockerRuntime(exec)
	if docker.available() {
		return docker, nil
	}
	podman := newPodmanRuntime(exec)
	if podman.available() {
		return podman, nil
	}
	return nil, fmt.Errorf("no container runtime available: neither docker nor podman found or operational")
}

// PDFConverter extracts text from PDFs for upload by piping them through
// the markitdown container image.
type PDFConverter struct {
	runtime *containerRuntime
}

// NewPDFConverter detects a container runtime and verifies the markitdown
// image exists locally.
func NewPDFConverter() (*PDFConverter, error) {
	return newPDFConverter(defaultExec)
}

func newPDFConverter(exec executor) (*PDFConverter, error) {
	rt, err := detectRuntime(exec)
	if err != nil {
		return nil, err
	}
	if err := rt.imageExists(markitdownImage); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.bin, err)
	}
	return &PDFConverter{runtime: rt}, nil
}

// ExtractText reads the PDF at pdfPath and returns the extracted text,
// suitable for Ingestor.UploadText.
func (c *PDFConverter) ExtractText(pdfPath string) (string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := c.runtime.run(markitdownImage, f, &out); err != nil {
		return "", fmt.Errorf("converting %s: %w", pdfPath, err)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("conversion produced empty output for %s", pdfPath)
	}
	return out.String(), nil
}
