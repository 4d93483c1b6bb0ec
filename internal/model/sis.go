package model

import (
	"encoding/json"
	"strings"
)

// SisSchool represents school data from the SIS API
type SisSchool struct {
	SchoolID json.Number `json:"schoolId"`
	Name     string      `json:"name"`
	Address  string      `json:"address"`
	City     string      `json:"city"`
	State    string      `json:"state"`
	ZipCode  string      `json:"zipCode"`
	Phone    string      `json:"phone"`
	Type     string      `json:"type"`
}

func (s SisSchool) NaturalKey() string {
	return s.SchoolID.String()
}

// SisStudent represents student data from the SIS API. Older SIS exports
// use lastSurname/birthSex instead of lastName/gender; both are accepted.
type SisStudent struct {
	StudentUniqueID string `json:"studentUniqueId"`
	FirstName       string `json:"firstName"`
	MiddleName      string `json:"middleName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	LastSurname     string `json:"lastSurname,omitempty"`
	BirthDate       string `json:"birthDate"`
	Gender          string `json:"gender,omitempty"`
	BirthSex        string `json:"birthSex,omitempty"`
	Address         string `json:"address"`
	City            string `json:"city"`
	State           string `json:"state"`
	ZipCode         string `json:"zipCode"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
}

func (s SisStudent) NaturalKey() string {
	return s.StudentUniqueID
}

func (s SisStudent) Surname() string {
	if strings.TrimSpace(s.LastName) != "" {
		return s.LastName
	}
	return s.LastSurname
}

func (s SisStudent) Sex() string {
	if strings.TrimSpace(s.Gender) != "" {
		return s.Gender
	}
	return s.BirthSex
}
