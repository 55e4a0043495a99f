package dto

// CreateSubjectRequest is the body of POST /subjects
type CreateSubjectRequest struct {
	SubjectCode string `json:"subjectCode" validate:"required"`
	SubjectName string `json:"subjectName" validate:"required"`
	Semester    int    `json:"semester" validate:"required,min=1,max=8"`
	Year        string `json:"year" validate:"required,oneof=FE SE TE BE"`
}

// CreateTeacherSubjectRequest is the body of POST /teacher-subjects
type CreateTeacherSubjectRequest struct {
	TeacherID    string `json:"teacherId" validate:"required"`
	SubjectID    string `json:"subjectId" validate:"required"`
	Division     string `json:"division" validate:"required"`
	AcademicYear string `json:"academicYear" validate:"required"`
}
