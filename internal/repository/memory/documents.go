package memory

import (
	"time"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
)

// Document wrappers give every stored type a deep copy and, for upserted
// collections, access to the audit fields.

type userDoc struct{ domain.User }

func (d userDoc) clone() userDoc {
	u := d.User
	u.Birthday = cloneTime(u.Birthday)
	if u.Plan != nil {
		p := *u.Plan
		u.Plan = &p
	}
	u.TestResults = cloneSlice(u.TestResults)
	u.Fields = cloneSlice(u.Fields)
	return userDoc{u}
}

type trainingDoc struct{ domain.Training }

func (d trainingDoc) clone() trainingDoc {
	t := d.Training
	t.Date = cloneTime(t.Date)
	t.MaxDate = cloneTime(t.MaxDate)
	t.TrainingBlocks = cloneSlice(t.TrainingBlocks)
	if t.TrainingBlocks == nil {
		t.TrainingBlocks = []string{}
	}
	return trainingDoc{t}
}

func (d trainingDoc) registryDate() time.Time { return d.RegistryDate }

func (d trainingDoc) stamp(id string, registry, modified time.Time) trainingDoc {
	d.ID, d.RegistryDate, d.LastModified = id, registry, modified
	return d
}

type blockDoc struct{ domain.TrainingBlock }

func (d blockDoc) clone() blockDoc {
	b := d.TrainingBlock
	b.Distance = clonePtr(b.Distance)
	b.Duration = clonePtr(b.Duration)
	b.MaxHR = clonePtr(b.MaxHR)
	b.MinHR = clonePtr(b.MinHR)
	b.MaxSpeed = clonePtr(b.MaxSpeed)
	b.MinSpeed = clonePtr(b.MinSpeed)
	b.Altitude = clonePtr(b.Altitude)
	b.Schema = clonePtr(b.Schema)
	if b.Result != nil {
		samples := make([]domain.ResultSample, len(b.Result))
		for i, s := range b.Result {
			s.Coords.Coordinates = cloneSlice(s.Coords.Coordinates)
			samples[i] = s
		}
		b.Result = samples
	}
	return blockDoc{b}
}

func (d blockDoc) registryDate() time.Time { return d.RegistryDate }

func (d blockDoc) stamp(id string, registry, modified time.Time) blockDoc {
	d.ID, d.RegistryDate, d.LastModified = id, registry, modified
	return d
}

type planDoc struct{ domain.Plan }

func (d planDoc) clone() planDoc {
	p := d.Plan
	if p.TestLocations != nil {
		locs := make([]domain.LocationPoint, len(p.TestLocations))
		for i, l := range p.TestLocations {
			l.Coordinates = cloneSlice(l.Coordinates)
			locs[i] = l
		}
		p.TestLocations = locs
	}
	return planDoc{p}
}

func (d planDoc) registryDate() time.Time { return d.RegistryDate }

func (d planDoc) stamp(id string, registry, modified time.Time) planDoc {
	d.ID, d.RegistryDate, d.LastModified = id, registry, modified
	return d
}

type messageDoc struct{ domain.Message }

func (d messageDoc) clone() messageDoc { return d }

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	return clonePtr(t)
}
