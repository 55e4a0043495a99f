package models

// Student defines the student model based on the 'students' table
type Student struct {
	ID              string       `json:"id" db:"id"`
	UserID          string       `json:"userId" db:"user_id"`
	RollNumber      string       `json:"rollNumber" db:"roll_number"`
	PID             string       `json:"pid" db:"pid"`
	CurrentSemester int          `json:"currentSemester" db:"current_semester"`
	CurrentYear     AcademicYear `json:"currentYear" db:"current_year"`
	Division        string       `json:"division" db:"division"`
	AcademicYear    string       `json:"academicYear" db:"academic_year"`
}

// StudentProfile is a student joined with its backing user
type StudentProfile struct {
	Student Student `json:"students"`
	User    User    `json:"users"`
}
