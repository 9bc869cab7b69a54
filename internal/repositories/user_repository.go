package repositories

import (
	"context"

	"github.com/edunite/exam-result-service/internal/models"
)

// UserRepository resolves users from the identity provider. It never touches
// the service database, so there is no transaction parameter.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
}
