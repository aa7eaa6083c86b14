package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"posu-analytics/internal/model"
)

type ActorRepository struct {
	db *gorm.DB
}

func NewActorRepository(db *gorm.DB) *ActorRepository {
	return &ActorRepository{db: db}
}

// FindByPrincipal loads the actor behind a token, requiring the stored role to match the claimed one.
func (r *ActorRepository) FindByPrincipal(ctx context.Context, principal model.Principal) (*model.Actor, error) {
	var actor model.Actor
	err := r.db.WithContext(ctx).
		Where("id = ? AND role = ?", principal.ActorID, string(principal.Role)).
		First(&actor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find actor %d: %w", principal.ActorID, err)
	}
	return &actor, nil
}
