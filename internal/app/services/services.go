package services

import "context"

// Services defined in this package:
// - AuthService: credential check and login details
// - RegistrationService: teacher registration and bulk student import
// - CatalogService: subjects and teacher-subject assignments
// - TaskService: task creation with pending submission fan-out
// - SubmissionService: submission uploads and file retrieval
// - GradingService: per-question marks
// - ReportService: dashboards, rosters and task reports

// TxRunner runs fn as one unit of work. Repository calls made with the ctx
// handed to fn take part in it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
