package render

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marsian83/ethereum-contract-recommendations/internal/fsutil"
	"github.com/marsian83/ethereum-contract-recommendations/internal/monitoring"
	"github.com/marsian83/ethereum-contract-recommendations/internal/timeutil"
)

// ManifestName is the file listing everything a run produced.
const ManifestName = "manifest.json"

// FormatTimestamp generates a timestamp string for directory naming.
func FormatTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// OutputDir returns <base>/<source name>/<timestamp>.
// An empty source gives <base>/run_<timestamp>.
func OutputDir(base, source string, now time.Time) string {
	ts := FormatTimestamp(now)
	if source == "" {
		return filepath.Join(base, "run_"+ts)
	}
	return filepath.Join(base, runName(source), ts)
}

// runName reduces a source path to its base name without extension, keeping
// ASCII letters, digits, dot, underscore and dash. Other runs collapse to a
// single underscore.
func runName(source string) string {
	name := filepath.Base(source)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	var b strings.Builder
	underscore := false
	for _, r := range name {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
			underscore = r == '_'
		case !underscore:
			b.WriteRune('_')
			underscore = true
		}
	}
	if out := strings.Trim(b.String(), "._"); out != "" {
		return out
	}
	return "run"
}

// Artifact describes one written file.
type Artifact struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Bytes int    `json:"bytes"`
}

// Manifest is the JSON summary written at the end of a run.
type Manifest struct {
	RunID     string     `json:"run_id"`
	Command   string     `json:"command"`
	Source    string     `json:"source,omitempty"`
	Created   time.Time  `json:"created"`
	Artifacts []Artifact `json:"artifacts"`
}

// Output writes a run's artifacts into one timestamped directory.
type Output struct {
	FS  fsutil.FileSystem
	Dir string

	manifest Manifest
}

// NewOutput creates the run directory for command reading source.
func NewOutput(fsys fsutil.FileSystem, clock timeutil.Clock, base, command, source string) (*Output, error) {
	now := clock.Now()
	dir := OutputDir(base, source, now)
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	return &Output{
		FS:  fsys,
		Dir: dir,
		manifest: Manifest{
			RunID:   uuid.NewString(),
			Command: command,
			Source:  source,
			Created: now.UTC(),
		},
	}, nil
}

// RunID identifies this run in logs and the manifest.
func (o *Output) RunID() string { return o.manifest.RunID }

// Artifacts returns what has been written so far.
func (o *Output) Artifacts() []Artifact {
	return append([]Artifact(nil), o.manifest.Artifacts...)
}

// Write stores data as name inside the run directory and returns its path.
func (o *Output) Write(name string, data []byte) (string, error) {
	path := filepath.Join(o.Dir, name)
	if err := o.FS.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	o.manifest.Artifacts = append(o.manifest.Artifacts, Artifact{
		Name:  name,
		Kind:  strings.TrimPrefix(filepath.Ext(name), "."),
		Bytes: len(data),
	})
	monitoring.Logf("Wrote %s (%d bytes)", path, len(data))
	return path, nil
}

// Close writes the manifest.
func (o *Output) Close() error {
	data, err := json.MarshalIndent(o.manifest, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(o.Dir, ManifestName)
	if err := o.FS.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
