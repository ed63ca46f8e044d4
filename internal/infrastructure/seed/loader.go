// Package seed reads outlet directory snapshots kept as YAML.
package seed

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

type file struct {
	Outlets []record `yaml:"outlets"`
}

type record struct {
	Name           string   `yaml:"name"`
	Address        string   `yaml:"address"`
	OperatingHours string   `yaml:"operating_hours"`
	Latitude       *float64 `yaml:"latitude"`
	Longitude      *float64 `yaml:"longitude"`
	WazeLink       string   `yaml:"waze_link"`
}

func LoadFile(path string) ([]domain.Outlet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load rejects unknown keys so typos in the snapshot surface early.
func Load(r io.Reader) ([]domain.Outlet, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc file
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.WrapError(domain.ErrInvalidInput, "load seed", errors.New("seed file is empty"))
		}
		return nil, domain.WrapError(domain.ErrInvalidInput, "load seed", err)
	}

	out := make([]domain.Outlet, 0, len(doc.Outlets))
	for i, rec := range doc.Outlets {
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "load seed", fmt.Errorf("outlet #%d has no name", i+1))
		}
		out = append(out, domain.Outlet{
			Name:           name,
			Address:        strings.TrimSpace(rec.Address),
			OperatingHours: strings.TrimSpace(rec.OperatingHours),
			Latitude:       rec.Latitude,
			Longitude:      rec.Longitude,
			WazeLink:       strings.TrimSpace(rec.WazeLink),
		})
	}
	return out, nil
}
