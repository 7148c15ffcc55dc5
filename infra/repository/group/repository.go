package group

import (
	"context"
	"time"

	"github.com/amirasaad/finshare/infra/repository/model"
	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/group"
	"github.com/amirasaad/finshare/pkg/dto"
	repo "github.com/amirasaad/finshare/pkg/repository/group"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// liveGroups restricts memberships to groups that are not deleted.
const liveGroups = "JOIN user_groups ON user_groups.id = user_group_members.group_id " +
	"AND user_groups.deleted_at IS NULL"

type repository struct {
	db *gorm.DB
}

// New creates a group repository over db.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// GroupIDsForUser implements scope.Directory.
func (r *repository) GroupIDsForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.UserGroupMember{}).
		Joins(liveGroups).
		Where("user_group_members.user_id = ?", userID).
		Distinct().
		Pluck("user_group_members.group_id", &ids).Error
	return ids, err
}

// MemberIDsOfGroups implements scope.Directory.
func (r *repository) MemberIDsOfGroups(
	ctx context.Context,
	groupIDs []uuid.UUID,
) ([]uuid.UUID, error) {
	if len(groupIDs) == 0 {
		return []uuid.UUID{}, nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.UserGroupMember{}).
		Joins(liveGroups).
		Where("user_group_members.group_id IN ?", groupIDs).
		Distinct().
		Pluck("user_group_members.user_id", &ids).Error
	return ids, err
}

// SharesGroup implements scope.Directory.
func (r *repository) SharesGroup(
	ctx context.Context,
	a, b uuid.UUID,
) (bool, error) {
	groups, err := r.GroupIDsForUser(ctx, a)
	if err != nil || len(groups) == 0 {
		return false, err
	}
	var count int64
	err = r.db.WithContext(ctx).
		Model(&model.UserGroupMember{}).
		Where("group_id IN ? AND user_id = ?", groups, b).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Create(ctx context.Context, create dto.GroupCreate) error {
	g := &model.UserGroup{
		Base:        model.Base{ID: create.ID},
		Name:        create.Name,
		Description: create.Description,
		InviteCode:  create.InviteCode,
		CreatedBy:   create.CreatedBy,
	}
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Create(g).Error
	})
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, update dto.GroupUpdate) error {
	updates := make(map[string]any)
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.InviteCode != nil {
		updates["invite_code"] = *update.InviteCode
	}
	if len(updates) == 0 {
		return nil
	}
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).
			Model(&model.UserGroup{}).
			Where("id = ?", id).
			Updates(updates).Error
	})
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*dto.GroupRead, error) {
	var g model.UserGroup
	if err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, model.MapGormErrorToDomain(err)
	}
	return mapModelToDTO(&g), nil
}

func (r *repository) GetByInviteCode(ctx context.Context, code string) (*dto.GroupRead, error) {
	var g model.UserGroup
	if err := r.db.WithContext(ctx).
		Where("invite_code = ?", group.NormalizeInviteCode(code)).
		First(&g).Error; err != nil {
		return nil, model.MapGormErrorToDomain(err)
	}
	return mapModelToDTO(&g), nil
}

func (r *repository) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserGroup{}).
		Where("invite_code = ?", group.NormalizeInviteCode(code)).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("group_id = ?", id).Delete(&model.UserGroupMember{}).Error; err != nil {
		return model.MapGormErrorToDomain(err)
	}
	return model.WrapError(func() error {
		return db.Delete(&model.UserGroup{}, "id = ?", id).Error
	})
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*dto.GroupRead, error) {
	var rows []model.UserGroup
	if err := r.db.WithContext(ctx).
		Where(
			"id IN (?)",
			r.db.Model(&model.UserGroupMember{}).
				Select("group_id").
				Where("user_id = ?", userID),
		).
		Order("name").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*dto.GroupRead, 0, len(rows))
	for i := range rows {
		result = append(result, mapModelToDTO(&rows[i]))
	}
	return result, nil
}

func (r *repository) AddMember(
	ctx context.Context,
	groupID, userID uuid.UUID,
	role group.Role,
) error {
	m := &model.UserGroupMember{
		GroupID:  groupID,
		UserID:   userID,
		Role:     string(role),
		JoinedAt: time.Now().UTC(),
	}
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Create(m).Error
	})
}

func (r *repository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("group_id = ? AND user_id = ?", groupID, userID).
			Delete(&model.UserGroupMember{}).Error
	})
}

func (r *repository) GetMember(
	ctx context.Context,
	groupID, userID uuid.UUID,
) (*dto.GroupMemberRead, error) {
	var rows []member
	if err := r.members(ctx).
		Where("user_group_members.group_id = ? AND user_group_members.user_id = ?", groupID, userID).
		Limit(1).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return mapMember(&rows[0]), nil
}

func (r *repository) ListMembers(
	ctx context.Context,
	groupID uuid.UUID,
) ([]*dto.GroupMemberRead, error) {
	var rows []member
	if err := r.members(ctx).
		Where("user_group_members.group_id = ?", groupID).
		Order("user_group_members.joined_at").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*dto.GroupMemberRead, 0, len(rows))
	for i := range rows {
		result = append(result, mapMember(&rows[i]))
	}
	return result, nil
}

type member struct {
	ID       uuid.UUID
	GroupID  uuid.UUID
	UserID   uuid.UUID
	Username string
	Email    string
	Role     string
	JoinedAt time.Time
}

func (r *repository) members(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.UserGroupMember{}).
		Select(
			"user_group_members.id AS id, user_group_members.group_id AS group_id, " +
				"user_group_members.user_id AS user_id, users.username AS username, " +
				"users.email AS email, user_group_members.role AS role, " +
				"user_group_members.joined_at AS joined_at",
		).
		Joins("LEFT JOIN users ON users.id = user_group_members.user_id")
}

func mapMember(m *member) *dto.GroupMemberRead {
	return &dto.GroupMemberRead{
		ID:       m.ID,
		GroupID:  m.GroupID,
		UserID:   m.UserID,
		Username: m.Username,
		Email:    m.Email,
		Role:     group.Role(m.Role),
		JoinedAt: m.JoinedAt.UTC(),
	}
}

func mapModelToDTO(g *model.UserGroup) *dto.GroupRead {
	return &dto.GroupRead{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		InviteCode:  g.InviteCode,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

var _ repo.Repository = (*repository)(nil)
