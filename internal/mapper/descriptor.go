package mapper

const descriptorNamespace = "uri://ed-fi.org/"

// Descriptor builds the Ed-Fi descriptor URI for a code value, e.g.
// Descriptor("SexDescriptor", "Female") is "uri://ed-fi.org/SexDescriptor#Female".
func Descriptor(name, codeValue string) string {
	return descriptorNamespace + name + "#" + codeValue
}

const (
	SexDescriptor                            = "SexDescriptor"
	SchoolTypeDescriptor                     = "SchoolTypeDescriptor"
	GradeLevelDescriptor                     = "GradeLevelDescriptor"
	StateAbbreviationDescriptor              = "StateAbbreviationDescriptor"
	AddressTypeDescriptor                    = "AddressTypeDescriptor"
	TelephoneNumberTypeDescriptor            = "TelephoneNumberTypeDescriptor"
	InstitutionTelephoneNumberTypeDescriptor = "InstitutionTelephoneNumberTypeDescriptor"
	ElectronicMailTypeDescriptor             = "ElectronicMailTypeDescriptor"
	EducationOrganizationCategoryDescriptor  = "EducationOrganizationCategoryDescriptor"
	RaceDescriptor                           = "RaceDescriptor"
)
