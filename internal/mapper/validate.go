package mapper

import (
	"regexp"
	"strings"
	"time"

	"github.com/mcbagz/edSIS/internal/model"
	"github.com/mcbagz/edSIS/pkg/errors"
)

// Ed-Fi column limits for the natural keys.
const (
	maxUniqueIDLength = 32
	maxNameLength     = 75
)

var uniqueIDRegex = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

func validateSchool(school model.SisSchool) error {
	id, err := school.SchoolID.Int64()
	if err != nil || id <= 0 {
		return errors.ValidationError{
			Field:   "schoolId",
			Value:   school.SchoolID.String(),
			Message: "must be a positive integer",
		}
	}

	if name := strings.TrimSpace(school.Name); name == "" {
		return errors.ValidationError{
			Field:   "name",
			Value:   school.Name,
			Message: "name cannot be empty",
		}
	}

	return nil
}

func validateStudent(student model.SisStudent) error {
	if !uniqueIDRegex.MatchString(student.StudentUniqueID) || len(student.StudentUniqueID) > maxUniqueIDLength {
		return errors.ValidationError{
			Field:   "studentUniqueId",
			Value:   student.StudentUniqueID,
			Message: "must be 1-32 characters of letters, digits, '.', '_' or '-'",
		}
	}

	if first := strings.TrimSpace(student.FirstName); first == "" || len(first) > maxNameLength {
		return errors.ValidationError{
			Field:   "firstName",
			Value:   student.FirstName,
			Message: "firstName cannot be empty",
		}
	}

	if last := strings.TrimSpace(student.Surname()); last == "" || len(last) > maxNameLength {
		return errors.ValidationError{
			Field:   "lastSurname",
			Value:   student.Surname(),
			Message: "lastName cannot be empty",
		}
	}

	if _, err := time.Parse("2006-01-02", truncateDate(student.BirthDate)); err != nil {
		return errors.ValidationError{
			Field:   "birthDate",
			Value:   student.BirthDate,
			Message: "must be an ISO-8601 date or timestamp",
		}
	}

	return nil
}

// truncateDate keeps the date part of an ISO-8601 timestamp.
func truncateDate(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		s = s[:i]
	}
	if len(s) > 10 {
		s = s[:10]
	}
	return s
}
