package repositories

import "context"

// Repository aggregates all repository interfaces behind one entry point.
type Repository interface {
	// Result domain
	Attempt() AttemptRepository
	Statistics() StatisticsRepository
	Report() ReportRepository

	// Read-only catalog and submission data owned by other services
	Exam() ExamRepository
	Submission() SubmissionRepository

	// User domain (resolved from the identity provider)
	User() UserRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}
