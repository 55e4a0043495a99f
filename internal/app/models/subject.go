package models

// Subject is a catalog entry in the 'subjects' table
type Subject struct {
	ID          string       `json:"id" db:"id"`
	SubjectCode string       `json:"subjectCode" db:"subject_code"`
	SubjectName string       `json:"subjectName" db:"subject_name"`
	Semester    int          `json:"semester" db:"semester"`
	Year        AcademicYear `json:"year" db:"year"`
}

// TeacherSubject assigns a teacher to a subject for one division and academic year
type TeacherSubject struct {
	ID           string `json:"id" db:"id"`
	TeacherID    string `json:"teacherId" db:"teacher_id"`
	SubjectID    string `json:"subjectId" db:"subject_id"`
	Division     string `json:"division" db:"division"`
	AcademicYear string `json:"academicYear" db:"academic_year"`
}

// TeacherSubjectDetail is a TeacherSubject joined with its Subject
type TeacherSubjectDetail struct {
	ID           string       `json:"id"`
	SubjectID    string       `json:"subjectId"`
	Division     string       `json:"division"`
	AcademicYear string       `json:"academicYear"`
	SubjectName  string       `json:"subjectName"`
	SubjectCode  string       `json:"subjectCode"`
	Semester     int          `json:"semester"`
	Year         AcademicYear `json:"year"`
}
