package mapper

import (
	"errors"
	"strings"

	"github.com/mcbagz/edSIS/internal/model"
	apperrors "github.com/mcbagz/edSIS/pkg/errors"
)

// MapSchool builds the Ed-Fi schools payload for one SIS school.
func (m *Mapper) MapSchool(school model.SisSchool) (model.EdFiResource, error) {
	key := school.NaturalKey()
	if err := validateSchool(school); err != nil {
		return nil, mappingError(model.EntitySchools, key, "", err)
	}

	schoolType, ok := schoolTypeVocabulary.Lookup(school.Type)
	if !ok {
		_, err := schoolTypeVocabulary.Resolve(school.Type)
		return nil, mappingError(model.EntitySchools, key, "type", err)
	}

	id, _ := school.SchoolID.Int64()
	resource := model.EdFiResource{
		"schoolId":          id,
		"nameOfInstitution": strings.TrimSpace(school.Name),
		"educationOrganizationCategories": []any{
			map[string]any{
				"educationOrganizationCategoryDescriptor": Descriptor(EducationOrganizationCategoryDescriptor, categorySchool),
			},
		},
		"gradeLevels":          gradeLevels(schoolType),
		"schoolTypeDescriptor": Descriptor(SchoolTypeDescriptor, schoolType),
	}

	addr, err := m.address(addressTypePhysical, school.Address, school.City, school.State, school.ZipCode)
	if err != nil {
		return nil, mappingError(model.EntitySchools, key, "state", err)
	}
	if addr != nil {
		if m.includePlaceholders() {
			addr["nameOfCounty"] = m.opts.NameOfCounty
		}
		resource["addresses"] = []any{addr}
	}

	if phone := strings.TrimSpace(school.Phone); phone != "" {
		resource["institutionTelephones"] = []any{map[string]any{
			"institutionTelephoneNumberTypeDescriptor": Descriptor(InstitutionTelephoneNumberTypeDescriptor, telephoneTypeMain),
			"telephoneNumber":                          phone,
		}}
	}

	return resource, nil
}

func gradeLevels(schoolType string) []any {
	grades := gradeLevelsFor(schoolType)
	out := make([]any, 0, len(grades))
	for _, g := range grades {
		out = append(out, map[string]any{"gradeLevelDescriptor": Descriptor(GradeLevelDescriptor, g)})
	}
	return out
}

// address returns nil when the record has no address at all. Missing parts
// are left out rather than sent empty.
func (m *Mapper) address(addrType, street, city, state, zip string) (map[string]any, error) {
	street, city, state, zip = strings.TrimSpace(street), strings.TrimSpace(city), strings.TrimSpace(state), strings.TrimSpace(zip)
	if street == "" && city == "" && state == "" && zip == "" {
		return nil, nil
	}

	addr := map[string]any{
		"addressTypeDescriptor": Descriptor(AddressTypeDescriptor, addrType),
	}
	if state != "" {
		stateURI, err := stateVocabulary.Resolve(state)
		if err != nil {
			return nil, err
		}
		addr["stateAbbreviationDescriptor"] = stateURI
	}
	setIfPresent(addr, "streetNumberName", street)
	setIfPresent(addr, "city", city)
	setIfPresent(addr, "postalCode", zip)
	return addr, nil
}

func setIfPresent(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func mappingError(entity model.EntityType, key, field string, err error) error {
	var ve apperrors.ValidationError
	if field == "" && errors.As(err, &ve) {
		field = ve.Field
	}
	return &apperrors.MappingError{Entity: string(entity), Key: key, Field: field, Err: err}
}
