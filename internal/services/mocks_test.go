package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/edunite/exam-result-service/internal/models"
	"github.com/edunite/exam-result-service/internal/repositories"
	"gorm.io/gorm"
)

// memoryRepository is an in-memory repositories.Repository used by the
// service tests. It mimics the behaviors the services rely on, including
// the unique submission_id constraint and ranking query order.
type memoryRepository struct {
	mu sync.Mutex

	nextID        uint
	attempts      map[uint]*models.ExamAttempt
	statistics    map[uint]*models.ExamStatistics
	reports       map[uint]*models.AnalysisReport // keyed by attempt ID
	submissions   map[uint]*models.ExamSubmission
	exams         map[uint]*models.Exam
	examQuestions map[uint][]*models.Question
	users         map[string]*models.User
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		attempts:      make(map[uint]*models.ExamAttempt),
		statistics:    make(map[uint]*models.ExamStatistics),
		reports:       make(map[uint]*models.AnalysisReport),
		submissions:   make(map[uint]*models.ExamSubmission),
		exams:         make(map[uint]*models.Exam),
		examQuestions: make(map[uint][]*models.Question),
		users:         make(map[string]*models.User),
	}
}

func (m *memoryRepository) allocID() uint {
	m.nextID++
	return m.nextID
}

func (m *memoryRepository) Attempt() repositories.AttemptRepository       { return (*memAttempts)(m) }
func (m *memoryRepository) Statistics() repositories.StatisticsRepository { return (*memStats)(m) }
func (m *memoryRepository) Report() repositories.ReportRepository         { return (*memReports)(m) }
func (m *memoryRepository) Exam() repositories.ExamRepository             { return (*memExams)(m) }
func (m *memoryRepository) Submission() repositories.SubmissionRepository { return (*memSubmissions)(m) }
func (m *memoryRepository) User() repositories.UserRepository             { return (*memUsers)(m) }

func (m *memoryRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *memoryRepository) Ping(ctx context.Context) error { return nil }
func (m *memoryRepository) Close() error                   { return nil }

// ===== SEED HELPERS =====

func (m *memoryRepository) seedExam(exam *models.Exam, questions ...*models.Question) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exams[exam.ID] = exam
	m.examQuestions[exam.ID] = questions
}

func (m *memoryRepository) seedSubmission(sub *models.ExamSubmission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[sub.ID] = sub
}

func (m *memoryRepository) seedUser(user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

// ===== ATTEMPTS =====

type memAttempts memoryRepository

func (m *memAttempts) Create(ctx context.Context, tx *gorm.DB, attempt *models.ExamAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.attempts {
		if existing.SubmissionID == attempt.SubmissionID {
			return gorm.ErrDuplicatedKey
		}
	}
	attempt.ID = (*memoryRepository)(m).allocID()
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}
	stored := *attempt
	m.attempts[attempt.ID] = &stored
	return nil
}

func (m *memAttempts) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.attempts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memAttempts) GetBySubmissionID(ctx context.Context, tx *gorm.DB, submissionID uint) (*models.ExamAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.attempts {
		if a.SubmissionID == submissionID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memAttempts) GetBySubmissionIDWithReport(ctx context.Context, tx *gorm.DB, submissionID uint) (*models.ExamAttempt, error) {
	attempt, err := m.GetBySubmissionID(ctx, tx, submissionID)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if report, ok := m.reports[attempt.ID]; ok {
		cp := *report
		attempt.Report = &cp
	}
	return attempt, nil
}

func (m *memAttempts) sortedByRankOrder() []*models.ExamAttempt {
	attempts := make([]*models.ExamAttempt, 0, len(m.attempts))
	for _, a := range m.attempts {
		attempts = append(attempts, a)
	}
	sort.SliceStable(attempts, func(i, j int) bool {
		if attempts[i].Score != attempts[j].Score {
			return attempts[i].Score > attempts[j].Score
		}
		return attempts[i].CreatedAt.Before(attempts[j].CreatedAt)
	})
	return attempts
}

func (m *memAttempts) GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.ExamAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*models.ExamAttempt
	for _, a := range m.sortedByRankOrder() {
		if a.ExamID == examID {
			cp := *a
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *memAttempts) GetScoresByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]repositories.ScoreSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var samples []repositories.ScoreSample
	for _, a := range m.sortedByRankOrder() {
		if a.ExamID == examID {
			samples = append(samples, repositories.ScoreSample{
				AttemptID: a.ID,
				UserID:    a.UserID,
				Score:     a.Score,
				TimeTaken: a.TimeTaken,
			})
		}
	}
	return samples, nil
}

func (m *memAttempts) GetByUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.AttemptFilters) ([]*models.ExamAttempt, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*models.ExamAttempt
	for _, a := range m.sortedByRankOrder() {
		if a.UserID == userID {
			cp := *a
			result = append(result, &cp)
		}
	}
	return result, int64(len(result)), nil
}

func (m *memAttempts) UpdateRanks(ctx context.Context, tx *gorm.DB, ranks []repositories.AttemptRank) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range ranks {
		if a, ok := m.attempts[r.AttemptID]; ok {
			rank := r.Rank
			percentile := r.Percentile
			a.Rank = &rank
			a.Percentile = &percentile
		}
	}
	return nil
}

func (m *memAttempts) ExistsBySubmissionID(ctx context.Context, tx *gorm.DB, submissionID uint) (bool, error) {
	_, err := m.GetBySubmissionID(ctx, tx, submissionID)
	if err == nil {
		return true, nil
	}
	return false, nil
}

// ===== STATISTICS =====

type memStats memoryRepository

func (m *memStats) Upsert(ctx context.Context, tx *gorm.DB, stats *models.ExamStatistics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *stats
	m.statistics[stats.ExamID] = &cp
	return nil
}

func (m *memStats) GetByExam(ctx context.Context, tx *gorm.DB, examID uint) (*models.ExamStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.statistics[examID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ===== REPORTS =====

type memReports memoryRepository

func (m *memReports) Create(ctx context.Context, tx *gorm.DB, report *models.AnalysisReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[report.ExamAttemptID]; ok {
		return gorm.ErrDuplicatedKey
	}
	report.ID = (*memoryRepository)(m).allocID()
	report.CreatedAt = time.Now()
	cp := *report
	m.reports[report.ExamAttemptID] = &cp
	return nil
}

func (m *memReports) GetByAttemptID(ctx context.Context, tx *gorm.DB, attemptID uint) (*models.AnalysisReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reports[attemptID]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ===== EXAMS =====

type memExams memoryRepository

func (m *memExams) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.exams[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memExams) GetByIDWithCategory(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	return m.GetByID(ctx, tx, id)
}

func (m *memExams) GetQuestions(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.examQuestions[examID], nil
}

func (m *memExams) CountQuestions(ctx context.Context, tx *gorm.DB, examID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.examQuestions[examID])), nil
}

func (m *memExams) Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.exams[id]
	return ok, nil
}

// ===== SUBMISSIONS =====

type memSubmissions memoryRepository

func (m *memSubmissions) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.submissions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memSubmissions) GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSubmission, error) {
	return m.GetByID(ctx, tx, id)
}

// ===== USERS =====

type memUsers memoryRepository

func (m *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUsers) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []*models.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			cp := *u
			users = append(users, &cp)
		}
	}
	return users, nil
}
