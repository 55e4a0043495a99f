package models

// Role is the stored users.role value
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// AcademicYear labels the year of study (First/Second/Third/Final)
type AcademicYear string

const (
	YearFE AcademicYear = "FE"
	YearSE AcademicYear = "SE"
	YearTE AcademicYear = "TE"
	YearBE AcademicYear = "BE"
)

// Valid reports whether y is a known year label
func (y AcademicYear) Valid() bool {
	switch y {
	case YearFE, YearSE, YearTE, YearBE:
		return true
	}
	return false
}
