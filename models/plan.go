package models

import (
	"context"

	"github.com/SaugatGautam100/courseplex-sub001/store"
)

// Package is a sellable bundle of courses. CommissionPercent is a percentage
// (58 means 58%) and is optional.
type Package struct {
	ID                string    `json:"-"`
	Name              string    `json:"name"`
	Price             Amount    `json:"price"`
	ImageURL          string    `json:"imageUrl,omitempty"`
	CourseIDs         StringSet `json:"courseIds,omitempty"`
	CommissionPercent *Amount   `json:"commissionPercent,omitempty"`
	Badge             string    `json:"badge,omitempty"`
	Features          []string  `json:"features,omitempty"`
}

func (p *Package) SetID(id string) { p.ID = id }

// SpecialPackage is a hand-assigned package: specialPackages/{id}/assignedUsers/{uid}.
type SpecialPackage struct {
	ID            string         `json:"-"`
	Name          string         `json:"name,omitempty"`
	AssignedUsers map[string]any `json:"assignedUsers,omitempty"`
}

func (p *SpecialPackage) SetID(id string) { p.ID = id }

func LoadPackages(ctx context.Context, st store.Store) ([]Package, error) {
	snap, err := st.Get(ctx, PackagesPath)
	if err != nil {
		return nil, err
	}
	out, _ := DecodeAll[Package](snap)
	return out, nil
}

func PackagesByID(pkgs []Package) map[string]Package {
	out := make(map[string]Package, len(pkgs))
	for _, p := range pkgs {
		out[p.ID] = p
	}
	return out
}

func LoadSpecialPackages(ctx context.Context, st store.Store) ([]SpecialPackage, error) {
	snap, err := st.Get(ctx, SpecialPackagesPath)
	if err != nil {
		return nil, err
	}
	out, _ := DecodeAll[SpecialPackage](snap)
	return out, nil
}
