package mapper

import (
	"strings"

	"github.com/mcbagz/edSIS/internal/model"
)

// MapStudent builds the Ed-Fi students payload for one SIS student.
func (m *Mapper) MapStudent(student model.SisStudent) (model.EdFiResource, error) {
	key := student.NaturalKey()
	if err := validateStudent(student); err != nil {
		return nil, mappingError(model.EntityStudents, key, "", err)
	}

	// The sex vocabulary has a fallback, so Resolve cannot fail.
	sex, _ := sexVocabulary.Resolve(student.Sex())

	resource := model.EdFiResource{
		"studentUniqueId": student.StudentUniqueID,
		"firstName":       strings.TrimSpace(student.FirstName),
		"lastSurname":     strings.TrimSpace(student.Surname()),
		"birthDate":       truncateDate(student.BirthDate),
		"sexDescriptor":   sex,
	}
	if middle := strings.TrimSpace(student.MiddleName); middle != "" {
		resource["middleName"] = middle
	}

	addr, err := m.address(addressTypeHome, student.Address, student.City, student.State, student.ZipCode)
	if err != nil {
		return nil, mappingError(model.EntityStudents, key, "state", err)
	}
	if addr != nil {
		if m.includePlaceholders() {
			addr["congressionalDistrict"] = m.opts.CongressionalDistrict
		}
		resource["addresses"] = []any{addr}
	}

	if email := strings.TrimSpace(student.Email); email != "" {
		resource["electronicMails"] = []any{map[string]any{
			"electronicMailTypeDescriptor": Descriptor(ElectronicMailTypeDescriptor, electronicMailWork),
			"electronicMailAddress":        email,
		}}
	}

	if phone := strings.TrimSpace(student.Phone); phone != "" {
		resource["telephones"] = []any{map[string]any{
			"telephoneNumberTypeDescriptor": Descriptor(TelephoneNumberTypeDescriptor, telephoneTypeMain),
			"telephoneNumber":               phone,
		}}
	}

	if m.includePlaceholders() {
		resource["hispanicLatinoEthnicity"] = m.opts.HispanicLatino
		resource["races"] = []any{map[string]any{
			"raceDescriptor": Descriptor(RaceDescriptor, m.opts.Race),
		}}
	}

	return resource, nil
}
