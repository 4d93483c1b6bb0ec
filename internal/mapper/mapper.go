package mapper

import (
	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/model"
)

// Options carries the values Ed-Fi requires but the SIS does not track.
type Options struct {
	// Placeholders is config.PlaceholdersInclude or config.PlaceholdersOmit.
	Placeholders          string
	NameOfCounty          string
	CongressionalDistrict string
	HispanicLatino        bool
	Race                  string
}

func OptionsFromConfig(cfg config.MappingConfig) Options {
	return Options{
		Placeholders:          cfg.Placeholders,
		NameOfCounty:          cfg.NameOfCounty,
		CongressionalDistrict: cfg.CongressionalDist,
		HispanicLatino:        cfg.HispanicLatino,
		Race:                  cfg.Race,
	}
}

// Placeholder is one synthetic value written into every payload of a resource.
type Placeholder struct {
	Resource model.EntityType `json:"resource"`
	Field    string           `json:"field"`
	Value    any              `json:"value"`
}

// Mapper turns SIS records into Ed-Fi payloads. It holds no state besides its
// options and is safe for concurrent use.
type Mapper struct {
	opts Options
}

func New(opts Options) *Mapper {
	return &Mapper{opts: opts}
}

func (m *Mapper) includePlaceholders() bool {
	return m.opts.Placeholders != config.PlaceholdersOmit
}

// Placeholders lists the synthetic values this mapper writes, so they can be
// reported at the start of every run. It is empty under the omit policy.
func (m *Mapper) Placeholders() []Placeholder {
	if !m.includePlaceholders() {
		return nil
	}
	return []Placeholder{
		{Resource: model.EntitySchools, Field: "addresses[].nameOfCounty", Value: m.opts.NameOfCounty},
		{Resource: model.EntityStudents, Field: "addresses[].congressionalDistrict", Value: m.opts.CongressionalDistrict},
		{Resource: model.EntityStudents, Field: "hispanicLatinoEthnicity", Value: m.opts.HispanicLatino},
		{Resource: model.EntityStudents, Field: "races[].raceDescriptor", Value: Descriptor(RaceDescriptor, m.opts.Race)},
	}
}
