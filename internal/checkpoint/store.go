// Package checkpoint persists trained models: the state dict of a Model, its
// architecture name and its class names, keyed by architecture name.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/convnets/internal/models"
	"github.com/born-ml/convnets/internal/serialization"
	"github.com/born-ml/convnets/internal/tensor"
)

// Ext is the file extension of checkpoints.
const Ext = ".born"

// Metadata keys written into the .born header.
const (
	MetaNumClasses = "num_classes"
	MetaClassNames = "class_names"
	MetaRunID      = "run_id"

	// MetaConfigPrefix prefixes each construction parameter of Model.Config,
	// e.g. "config.version" for a SqueezeNet.
	MetaConfigPrefix = "config."
)

// ErrInvalidCheckpoint is returned for files whose metadata does not
// describe a model that can be rebuilt.
var ErrInvalidCheckpoint = errors.New("invalid checkpoint")

// Model is what the store needs from a model to persist it.
type Model interface {
	Name() string
	NumClasses() int
	Config() map[string]string
	StateDict() map[string]*tensor.RawTensor
}

// Info describes a stored checkpoint.
type Info struct {
	Path         string
	Architecture string
	ClassNames   []string
	RunID        uuid.UUID
	CreatedAt    time.Time
	Config       map[string]string // construction parameters, see models.Rebuild
}

// Store keeps one checkpoint per architecture under Dir, as <Dir>/<Name>.born.
type Store struct {
	Dir string
}

// NewStore creates a store rooted at dir. The directory is created on first Save.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Path returns the checkpoint path for a model name, resolved to its canonical form.
func (s *Store) Path(name string) (string, error) {
	canonical, err := models.CanonicalName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, canonical+Ext), nil
}

// Exists reports whether a checkpoint for name is present.
func (s *Store) Exists(name string) bool {
	path, err := s.Path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Save writes the model's parameters and batch norm buffers together with
// its class names and construction parameters, replacing any previous checkpoint of the same architecture.
// Every save gets a fresh run id.
func (s *Store) Save(m Model, classNames []string) (Info, error) {
	if len(classNames) != m.NumClasses() {
		return Info{}, fmt.Errorf("%s has %d classes, got %d class names", m.Name(), m.NumClasses(), len(classNames))
	}
	path, err := s.Path(m.Name())
	if err != nil {
		return Info{}, err
	}

	names, err := json.Marshal(classNames)
	if err != nil {
		return Info{}, fmt.Errorf("failed to encode class names: %w", err)
	}

	info := Info{
		Path:         path,
		Architecture: m.Name(),
		ClassNames:   append([]string(nil), classNames...),
		RunID:        uuid.New(),
		CreatedAt:    time.Now().UTC(),
		Config:       m.Config(),
	}
	header := serialization.Header{
		Architecture: info.Architecture,
		CreatedAt:    info.CreatedAt,
		Metadata: map[string]string{
			MetaNumClasses: strconv.Itoa(m.NumClasses()),
			MetaClassNames: string(names),
			MetaRunID:      info.RunID.String(),
		},
	}
	for key, value := range info.Config {
		header.Metadata[MetaConfigPrefix+key] = value
	}

	if err := os.MkdirAll(s.Dir, 0o750); err != nil {
		return Info{}, fmt.Errorf("failed to create %s: %w", s.Dir, err)
	}
	if err := serialization.WriteFile(path, m.StateDict(), header); err != nil {
		return Info{}, fmt.Errorf("failed to save %s: %w", m.Name(), err)
	}
	return info, nil
}

// Stat reads the metadata of the checkpoint for name without loading tensors.
// A missing checkpoint yields an error wrapping os.ErrNotExist.
func (s *Store) Stat(name string) (Info, error) {
	reader, err := s.open(name)
	if err != nil {
		return Info{}, err
	}
	defer reader.Close()
	return readInfo(reader)
}

func (s *Store) open(name string) (*serialization.BornReader, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	reader, err := serialization.NewBornReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint: %w", err)
	}
	return reader, nil
}

func readInfo(reader *serialization.BornReader) (Info, error) {
	header := reader.Header()
	info := Info{
		Architecture: header.Architecture,
		CreatedAt:    header.CreatedAt,
	}

	if err := json.Unmarshal([]byte(header.Metadata[MetaClassNames]), &info.ClassNames); err != nil {
		return Info{}, fmt.Errorf("%w: class names: %w", ErrInvalidCheckpoint, err)
	}
	numClasses, err := strconv.Atoi(header.Metadata[MetaNumClasses])
	if err != nil {
		return Info{}, fmt.Errorf("%w: num_classes: %w", ErrInvalidCheckpoint, err)
	}
	if numClasses != len(info.ClassNames) {
		return Info{}, fmt.Errorf("%w: num_classes %d but %d class names", ErrInvalidCheckpoint, numClasses, len(info.ClassNames))
	}
	if info.RunID, err = uuid.Parse(header.Metadata[MetaRunID]); err != nil {
		return Info{}, fmt.Errorf("%w: run id: %w", ErrInvalidCheckpoint, err)
	}
	info.Config = make(map[string]string)
	for key, value := range header.Metadata {
		if name, ok := strings.CutPrefix(key, MetaConfigPrefix); ok {
			info.Config[name] = value
		}
	}
	return info, nil
}

// Load rebuilds the architecture stored for name from its construction
// parameters, with as many classes as it has class names, and loads the
// stored tensors into it.
func Load[B tensor.Backend](s *Store, name string, backend B, opts ...models.Option) (*models.Model[B], Info, error) {
	reader, err := s.open(name)
	if err != nil {
		return nil, Info{}, err
	}
	defer reader.Close()

	info, err := readInfo(reader)
	if err != nil {
		return nil, Info{}, err
	}
	info.Path, _ = s.Path(name)
	if canonical, _ := models.CanonicalName(name); canonical != info.Architecture {
		return nil, Info{}, fmt.Errorf("%w: %s holds %s", ErrInvalidCheckpoint, info.Path, info.Architecture)
	}

	model, err := models.Rebuild(info.Architecture, len(info.ClassNames), info.Config, backend, opts...)
	if err != nil {
		return nil, Info{}, fmt.Errorf("%w: %w", ErrInvalidCheckpoint, err)
	}
	stateDict, err := reader.ReadStateDict(backend)
	if err != nil {
		return nil, Info{}, err
	}
	if err := model.LoadStateDict(stateDict); err != nil {
		return nil, Info{}, fmt.Errorf("%w: %w", ErrInvalidCheckpoint, err)
	}
	return model, info, nil
}
