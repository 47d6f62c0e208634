package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/born-ml/convnets/internal/tensor"
)

// undefinedModels are selector names that have no architecture behind them.
var undefinedModels = map[string]bool{
	"alexnet":      true,
	"shufflenetv2": true,
	"efficientnet": true,
}

// Names returns the canonical names of every buildable architecture.
func Names() []string {
	return []string{VGG19Name, ResNet18Name, MnasNetName, MobileNetV3Name, SqueezeNetName}
}

// CanonicalName resolves a selector name to the canonical architecture name.
// The name is matched case-insensitively after trimming spaces, so "resnet18",
// " ResNet18 " and "RESNET18" all resolve to "ResNet18".
func CanonicalName(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, canonical := range Names() {
		if strings.ToLower(canonical) == key {
			return canonical, nil
		}
	}
	if undefinedModels[key] {
		return "", &ConfigError{Model: name, Detail: "architecture is not defined", Err: tensor.ErrUnsupported}
	}
	return "", configErrorf(name, "unknown model, expected one of %s", strings.Join(Names(), ", "))
}

// New builds the architecture selected by name (see CanonicalName) with
// default hyperparameters.
//
// Example:
//
//	model, err := models.New("resnet18", 10, cpu.New(), models.WithSeed(7))
//	if err != nil {
//	    log.Fatalf("Failed to build model: %v", err)
//	}
func New[B tensor.Backend](name string, numClasses int, backend B, opts ...Option) (*Model[B], error) {
	return Rebuild(name, numClasses, nil, backend, opts...)
}

// Construction parameter keys reported by Model.Config and accepted by Rebuild.
const (
	ConfigVersion    = "version"     // SqueezeNet
	ConfigDropout    = "dropout"     // SqueezeNet
	ConfigKernelSize = "kernel_size" // VGG19
	ConfigPadding    = "padding"     // VGG19
	ConfigStride     = "stride"      // VGG19
)

// Rebuild builds the architecture named by name from the construction
// parameters a Model reported through Config. Missing keys keep their
// defaults; keys the architecture does not take are a ConfigError.
func Rebuild[B tensor.Backend](name string, numClasses int, config map[string]string, backend B, opts ...Option) (*Model[B], error) {
	canonical, err := CanonicalName(name)
	if err != nil {
		return nil, err
	}
	p := configParser{model: canonical, config: config}

	var m *Model[B]
	switch canonical {
	case VGG19Name:
		cfg := DefaultVGGConfig(numClasses)
		p.int(ConfigKernelSize, &cfg.KernelSize)
		p.int(ConfigPadding, &cfg.Padding)
		p.int(ConfigStride, &cfg.Stride)
		if err := p.finish(); err != nil {
			return nil, err
		}
		m, err = NewVGG19(cfg, backend, opts...)
	case SqueezeNetName:
		cfg := DefaultSqueezeNetConfig(numClasses)
		p.string(ConfigVersion, &cfg.Version)
		p.float(ConfigDropout, &cfg.Dropout)
		if err := p.finish(); err != nil {
			return nil, err
		}
		m, err = NewSqueezeNet(cfg, backend, opts...)
	default:
		if err := p.finish(); err != nil {
			return nil, err
		}
		switch canonical {
		case ResNet18Name:
			m, err = NewResNet18(numClasses, backend, opts...)
		case MnasNetName:
			m, err = NewMnasNet(numClasses, backend, opts...)
		default:
			m, err = NewMobileNetV3(numClasses, backend, opts...)
		}
	}
	return m, err
}

// configParser reads construction parameters, remembering the first
// malformed value and which keys were consumed.
type configParser struct {
	model  string
	config map[string]string
	seen   map[string]bool
	err    error
}

func (p *configParser) lookup(key string) (string, bool) {
	v, ok := p.config[key]
	if !ok || p.err != nil {
		return "", false
	}
	if p.seen == nil {
		p.seen = make(map[string]bool)
	}
	p.seen[key] = true
	return v, true
}

func (p *configParser) string(key string, dst *string) {
	if v, ok := p.lookup(key); ok {
		*dst = v
	}
}

func (p *configParser) int(key string, dst *int) {
	if v, ok := p.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.err = &ConfigError{Model: p.model, Detail: fmt.Sprintf("invalid %s %q", key, v), Err: err}
			return
		}
		*dst = n
	}
}

func (p *configParser) float(key string, dst *float64) {
	if v, ok := p.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			p.err = &ConfigError{Model: p.model, Detail: fmt.Sprintf("invalid %s %q", key, v), Err: err}
			return
		}
		*dst = f
	}
}

// finish reports a malformed value, or keys the architecture does not take.
func (p *configParser) finish() error {
	if p.err != nil {
		return p.err
	}
	var unknown []string
	for key := range p.config {
		if !p.seen[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return configErrorf(p.model, "unknown construction parameters: %s", strings.Join(unknown, ", "))
}

// ParseTrained parses the value of the -trained flag, which must be exactly
// "True" or "False".
func ParseTrained(s string) (bool, error) {
	switch s {
	case "True":
		return true, nil
	case "False":
		return false, nil
	default:
		return false, &ConfigError{Detail: fmt.Sprintf("invalid trained value %q: expected True or False", s)}
	}
}
