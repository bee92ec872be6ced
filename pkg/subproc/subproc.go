// Package subproc runs external collaborator binaries (yt-dlp, ffmpeg) and
// keeps a ring of their most recent output lines so failures can be
// diagnosed without streaming everything to the log.
package subproc

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// OutputBuffer stores recent output lines in a fixed-size ring.
type OutputBuffer struct {
	mu       sync.Mutex
	lines    []string
	maxLines int
	index    int
	full     bool
}

// NewOutputBuffer creates a ring buffer holding up to maxLines lines.
func NewOutputBuffer(maxLines int) *OutputBuffer {
	return &OutputBuffer{
		lines:    make([]string, maxLines),
		maxLines: maxLines,
	}
}

// Add stores a new line, evicting the oldest once the ring is full.
func (b *OutputBuffer) Add(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines[b.index] = line
	b.index = (b.index + 1) % b.maxLines
	if b.index == 0 {
		b.full = true
	}
}

// Recent returns the buffered lines, oldest first.
func (b *OutputBuffer) Recent() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []string
	if b.full {
		for i := 0; i < b.maxLines; i++ {
			idx := (b.index + i) % b.maxLines
			if b.lines[idx] != "" {
				out = append(out, b.lines[idx])
			}
		}
		return out
	}
	for i := 0; i < b.index; i++ {
		if b.lines[i] != "" {
			out = append(out, b.lines[i])
		}
	}
	return out
}

// Run executes bin with args and waits for it to finish, capturing the last
// output lines from both streams. On a non-zero exit the returned error
// includes the tail of the process output.
func Run(bin string, args ...string) error {
	cmd := exec.Command(bin, args...)
	buffer := NewOutputBuffer(50)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", bin, err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go scanInto(stdout, buffer, &wg)
	go scanInto(stderr, buffer, &wg)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		tail := buffer.Recent()
		if len(tail) > 10 {
			tail = tail[len(tail)-10:]
		}
		return fmt.Errorf("%s failed: %w\n%s", bin, err, strings.Join(tail, "\n"))
	}
	return nil
}

// RunCapture executes bin with args and returns its stdout. Stderr is
// buffered and included in the error on failure.
func RunCapture(bin string, args ...string) (string, error) {
	cmd := exec.Command(bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s failed: %w\n%s", bin, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Available reports whether a binary can be found on PATH.
func Available(bin string) bool {
	_, err := exec.LookPath(bin)
	return err == nil
}

func scanInto(pipe io.Reader, buffer *OutputBuffer, wg *sync.WaitGroup) {
	defer wg.Done()

	scanner := bufio.NewScanner(pipe)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		buffer.Add(scanner.Text())
	}
}
