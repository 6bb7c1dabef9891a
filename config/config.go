// Package config loads device profiles for nvstatectl.
//
// A profile describes the medium backing a simulated device and the elements
// registered on it, in registration order:
//
//	medium:
//	  kind: file          # file, sqlite or memory
//	  path: ${HOME}/dev01.img
//	  size: 4096
//	  fill: 255           # erased byte value
//	storage:
//	  save_period: 5s
//	snapshot:
//	  compression: zstd
//	elements:
//	  - name: relay
//	    kind: switch
//	    restore: last
//	  - name: impulses
//	    kind: counter
//	  - name: setpoint
//	    kind: value
//	    type: float32
//
// Environment variables are expanded in the raw file, a .env file in the
// working directory is loaded first, and NVSTATE_* variables override the
// loaded values (NVSTATE_MEDIUM_PATH, NVSTATE_MEDIUM_SIZE,
// NVSTATE_STORAGE_SAVE_PERIOD, NVSTATE_SNAPSHOT_COMPRESSION, ...).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/nvstate/format"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NVSTATE_"

// Medium kinds.
const (
	MediumFile   = "file"
	MediumSQLite = "sqlite"
	MediumMemory = "memory"
)

// Element kinds.
const (
	ElementCounter = "counter"
	ElementSwitch  = "switch"
	ElementValue   = "value"
	ElementBytes   = "bytes"
)

// DefaultMediumSize is used when a profile does not set medium.size.
const DefaultMediumSize = 4096

// Profile is a device profile.
type Profile struct {
	Medium   MediumConfig    `yaml:"medium" envPrefix:"MEDIUM_"`
	Storage  StorageConfig   `yaml:"storage" envPrefix:"STORAGE_"`
	Snapshot SnapshotConfig  `yaml:"snapshot" envPrefix:"SNAPSHOT_"`
	Elements []ElementConfig `yaml:"elements"`
}

// MediumConfig selects and sizes the medium.
type MediumConfig struct {
	Kind     string `yaml:"kind" env:"KIND"`
	Path     string `yaml:"path" env:"PATH"`
	Size     int64  `yaml:"size" env:"SIZE"`
	Fill     uint8  `yaml:"fill" env:"FILL"`
	PageSize int    `yaml:"page_size" env:"PAGE_SIZE"`
}

// StorageConfig tunes the storage manager.
type StorageConfig struct {
	SavePeriod time.Duration `yaml:"save_period" env:"SAVE_PERIOD"`
}

// SnapshotConfig sets snapshot defaults.
type SnapshotConfig struct {
	Compression string `yaml:"compression" env:"COMPRESSION"`
	Label       string `yaml:"label" env:"LABEL"`
}

// ElementConfig declares one element.
type ElementConfig struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	// Type is the number type of a value element (int8 ... float64).
	Type string `yaml:"type,omitempty"`
	// Size is the byte count of a bytes element.
	Size int `yaml:"size,omitempty"`
	// Restore is the power-on policy of a switch: last, off or on.
	Restore string `yaml:"restore,omitempty"`
}

// Load reads the profile at path, applies environment overrides and
// defaults, and validates the result.
func Load(path string) (*Profile, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	return Parse(data)
}

// Parse decodes a profile from YAML, then applies environment overrides,
// defaults and validation.
func Parse(data []byte) (*Profile, error) {
	expanded := os.ExpandEnv(string(data))

	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}

	if err := env.ParseWithOptions(&p, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	p.applyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

func (p *Profile) applyDefaults() {
	if p.Medium.Kind == "" {
		p.Medium.Kind = MediumFile
	}
	if p.Medium.Size == 0 {
		p.Medium.Size = DefaultMediumSize
	}
	if p.Snapshot.Compression == "" {
		p.Snapshot.Compression = format.CompressionZstd.String()
	}
	for i := range p.Elements {
		if p.Elements[i].Kind == ElementSwitch && p.Elements[i].Restore == "" {
			p.Elements[i].Restore = "last"
		}
	}
}

// CompressionType returns the parsed snapshot compression.
func (p *Profile) CompressionType() format.CompressionType {
	c, _ := format.ParseCompression(p.Snapshot.Compression)
	return c
}
