package goal

import (
	"context"
	"time"

	"github.com/amirasaad/finshare/infra/repository/model"
	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/dto"
	repo "github.com/amirasaad/finshare/pkg/repository/goal"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const participantGoals = "SELECT goal_id FROM goal_users WHERE user_id IN ?"

type repository struct {
	db *gorm.DB
}

// New creates a goal repository over db.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements goal.Repository.
func (r *repository) Create(ctx context.Context, create dto.GoalCreate) error {
	g := &model.Goal{
		Base:          model.Base{ID: create.ID},
		UserID:        create.UserID,
		Name:          create.Name,
		Description:   create.Description,
		TargetAmount:  create.TargetAmount,
		CurrentAmount: create.CurrentAmount,
		StartDate:     create.StartDate.UTC(),
		TargetDate:    utcPtr(create.TargetDate),
		IsCompleted:   create.IsCompleted,
		Color:         create.Color,
		Icon:          create.Icon,
		Version:       1,
	}
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Create(g).Error
	})
}

// Get implements goal.Repository.
func (r *repository) Get(ctx context.Context, id uuid.UUID) (*dto.GoalRead, error) {
	var g model.Goal
	if err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, model.MapGormErrorToDomain(err)
	}
	return mapModelToDTO(&g), nil
}

// Update implements goal.Repository.
func (r *repository) Update(
	ctx context.Context,
	id uuid.UUID,
	version int64,
	update dto.GoalUpdate,
) error {
	updates := map[string]any{"version": gorm.Expr("version + 1")}
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.TargetAmount != nil {
		updates["target_amount"] = *update.TargetAmount
	}
	if update.CurrentAmount != nil {
		updates["current_amount"] = *update.CurrentAmount
	}
	if update.StartDate != nil {
		updates["start_date"] = update.StartDate.UTC()
	}
	switch {
	case update.ClearTargetDate:
		updates["target_date"] = nil
	case update.TargetDate != nil:
		updates["target_date"] = update.TargetDate.UTC()
	}
	if update.IsCompleted != nil {
		updates["is_completed"] = *update.IsCompleted
	}
	if update.Color != nil {
		updates["color"] = *update.Color
	}
	if update.Icon != nil {
		updates["icon"] = *update.Icon
	}

	res := r.db.WithContext(ctx).
		Model(&model.Goal{}).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)
	if res.Error != nil {
		return model.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&model.Goal{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	return nil
}

// Delete implements goal.Repository. Goals are soft-deleted.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Delete(&model.Goal{}, "id = ?", id).Error
	})
}

// ListVisible implements goal.Repository.
func (r *repository) ListVisible(
	ctx context.Context,
	userIDs []uuid.UUID,
	completed *bool,
) ([]*dto.GoalRead, error) {
	if len(userIDs) == 0 {
		return []*dto.GoalRead{}, nil
	}
	q := r.db.WithContext(ctx).
		Where("user_id IN ? OR id IN ("+participantGoals+")", userIDs, userIDs)
	if completed != nil {
		q = q.Where("is_completed = ?", *completed)
	}
	return r.find(q)
}

// ListSharedWith implements goal.Repository.
func (r *repository) ListSharedWith(
	ctx context.Context,
	userID uuid.UUID,
) ([]*dto.GoalRead, error) {
	q := r.db.WithContext(ctx).
		Where("id IN ("+participantGoals+") AND user_id <> ?", []uuid.UUID{userID}, userID)
	return r.find(q)
}

// ListParticipating implements goal.Repository.
func (r *repository) ListParticipating(
	ctx context.Context,
	userID uuid.UUID,
) ([]*dto.GoalRead, error) {
	q := r.db.WithContext(ctx).
		Where("id IN ("+participantGoals+")", []uuid.UUID{userID})
	return r.find(q)
}

// AddUser implements goal.Repository.
func (r *repository) AddUser(
	ctx context.Context,
	goalID, userID uuid.UUID,
	isOwner bool,
) error {
	gu := &model.GoalUser{
		GoalID:  goalID,
		UserID:  userID,
		IsOwner: isOwner,
		AddedAt: time.Now().UTC(),
	}
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Create(gu).Error
	})
}

// RemoveUser implements goal.Repository.
func (r *repository) RemoveUser(ctx context.Context, goalID, userID uuid.UUID) error {
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("goal_id = ? AND user_id = ?", goalID, userID).
			Delete(&model.GoalUser{}).Error
	})
}

// GetUser implements goal.Repository.
func (r *repository) GetUser(
	ctx context.Context,
	goalID, userID uuid.UUID,
) (*dto.GoalUserRead, error) {
	var rows []participant
	if err := r.participants(ctx).
		Where("goal_users.goal_id = ? AND goal_users.user_id = ?", goalID, userID).
		Limit(1).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return mapParticipant(&rows[0]), nil
}

// ListUsers implements goal.Repository.
func (r *repository) ListUsers(
	ctx context.Context,
	goalID uuid.UUID,
) ([]*dto.GoalUserRead, error) {
	var rows []participant
	if err := r.participants(ctx).
		Where("goal_users.goal_id = ?", goalID).
		Order("goal_users.is_owner DESC, goal_users.added_at").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*dto.GoalUserRead, 0, len(rows))
	for i := range rows {
		result = append(result, mapParticipant(&rows[i]))
	}
	return result, nil
}

type participant struct {
	GoalID   uuid.UUID
	UserID   uuid.UUID
	Username string
	Email    string
	IsOwner  bool
	AddedAt  time.Time
}

func (r *repository) participants(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.GoalUser{}).
		Select(
			"goal_users.goal_id AS goal_id, goal_users.user_id AS user_id, " +
				"users.username AS username, users.email AS email, " +
				"goal_users.is_owner AS is_owner, goal_users.added_at AS added_at",
		).
		Joins("LEFT JOIN users ON users.id = goal_users.user_id")
}

func (r *repository) find(q *gorm.DB) ([]*dto.GoalRead, error) {
	var rows []model.Goal
	if err := q.Order("is_completed, created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*dto.GoalRead, 0, len(rows))
	for i := range rows {
		result = append(result, mapModelToDTO(&rows[i]))
	}
	return result, nil
}

func mapParticipant(p *participant) *dto.GoalUserRead {
	return &dto.GoalUserRead{
		GoalID:   p.GoalID,
		UserID:   p.UserID,
		Username: p.Username,
		Email:    p.Email,
		IsOwner:  p.IsOwner,
		AddedAt:  p.AddedAt.UTC(),
	}
}

func mapModelToDTO(g *model.Goal) *dto.GoalRead {
	return &dto.GoalRead{
		ID:            g.ID,
		UserID:        g.UserID,
		Name:          g.Name,
		Description:   g.Description,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		StartDate:     g.StartDate.UTC(),
		TargetDate:    utcPtr(g.TargetDate),
		IsCompleted:   g.IsCompleted,
		Color:         g.Color,
		Icon:          g.Icon,
		Version:       g.Version,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

var _ repo.Repository = (*repository)(nil)
