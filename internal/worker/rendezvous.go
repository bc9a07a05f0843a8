package worker

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// rendezvousDoc is the on-disk shape of the renderer rendezvous file.
type rendezvousDoc struct {
	Renderer string `toml:"renderer"`
}

// Rendezvous carries the one fact the host is allowed to persist across a
// surface rebuild: which renderer backend the user last asked for. A
// failed SwitchRenderer requires the host to tear the worker down and
// re-init it; the rendezvous file is how the requested type survives that
// teardown.
type Rendezvous struct {
	Path string
}

// NewRendezvous returns a Rendezvous stored at path. An empty path
// disables persistence: Load returns the software default, Save is a
// no-op.
func NewRendezvous(path string) Rendezvous {
	return Rendezvous{Path: path}
}

// Save records t as the preferred renderer.
func (r Rendezvous) Save(t RendererType) error {
	if r.Path == "" {
		return nil
	}
	doc := rendezvousDoc{Renderer: rendererName(t)}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("worker: encode rendezvous: %w", err)
	}
	if dir := filepath.Dir(r.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("worker: create rendezvous dir: %w", err)
		}
	}
	if err := os.WriteFile(r.Path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("worker: write rendezvous %q: %w", r.Path, err)
	}
	return nil
}

// Load returns the persisted renderer preference, or RendererSoftware
// when the file is missing, unreadable or names an unknown backend. A
// missing preference is the normal first-run state, not an error.
func (r Rendezvous) Load() RendererType {
	if r.Path == "" {
		return RendererSoftware
	}
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return RendererSoftware
	}
	var doc rendezvousDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return RendererSoftware
	}
	return rendererTypeByName(doc.Renderer)
}

func rendererName(t RendererType) string {
	if t == RendererGPU {
		return "gpu"
	}
	return "software"
}

func rendererTypeByName(name string) RendererType {
	if name == "gpu" {
		return RendererGPU
	}
	return RendererSoftware
}
