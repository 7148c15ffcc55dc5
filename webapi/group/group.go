package group

import (
	"github.com/amirasaad/finshare/pkg/config"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/amirasaad/finshare/pkg/middleware"
	authsvc "github.com/amirasaad/finshare/pkg/service/auth"
	groupsvc "github.com/amirasaad/finshare/pkg/service/group"
	"github.com/amirasaad/finshare/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// CreateGroupRequest represents the request body for creating a group.
type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateGroupRequest carries the fields to change.
type UpdateGroupRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// JoinGroupRequest carries an invite code.
type JoinGroupRequest struct {
	InviteCode string `json:"invite_code" validate:"required"`
}

// Routes registers the group endpoints.
//
// Routes:
//   - GET    /groups                           : Groups of the caller.
//   - POST   /groups                           : Create a group; the caller becomes admin.
//   - POST   /groups/join                      : Join by invite code.
//   - GET    /groups/:id                       : One group with members.
//   - PUT    /groups/:id                       : Update (admin only).
//   - DELETE /groups/:id                       : Delete (admin only).
//   - POST   /groups/:id/leave                 : Leave a group.
//   - GET    /groups/:id/members               : Members.
//   - DELETE /groups/:id/members/:userId       : Remove a member (admin only).
//   - POST   /groups/:id/regenerate-invite     : Issue a new invite code (admin only).
func Routes(app *fiber.App, groupSvc *groupsvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	r := app.Group("/groups", middleware.JwtProtected(cfg.Auth.Jwt))
	r.Get("/", ListGroups(groupSvc, authSvc))
	r.Post("/", CreateGroup(groupSvc, authSvc))
	r.Post("/join", JoinGroup(groupSvc, authSvc))
	r.Get("/:id", GetGroup(groupSvc, authSvc))
	r.Put("/:id", UpdateGroup(groupSvc, authSvc))
	r.Delete("/:id", DeleteGroup(groupSvc, authSvc))
	r.Post("/:id/leave", LeaveGroup(groupSvc, authSvc))
	r.Get("/:id/members", ListMembers(groupSvc, authSvc))
	r.Delete("/:id/members/:userId", RemoveMember(groupSvc, authSvc))
	r.Post("/:id/regenerate-invite", RegenerateInvite(groupSvc, authSvc))
}

// CreateGroup creates a group with the caller as admin.
// @Summary Create group
// @Tags groups
// @Accept json
// @Produce json
// @Param request body CreateGroupRequest true "Group"
// @Success 201 {object} common.Response
// @Router /groups [post]
// @Security Bearer
func CreateGroup(groupSvc *groupsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[CreateGroupRequest](c)
		if input == nil {
			return err
		}
		created, err := groupSvc.CreateGroup(c.Context(), userID, input.Name, input.Description)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create group", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Group created", created)
	}
}

// ListGroups lists the caller's groups.
// @Summary List groups
// @Tags groups
// @Produce json
// @Success 200 {object} common.Response
// @Router /groups [get]
// @Security Bearer
func ListGroups(groupSvc *groupsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		groups, err := groupSvc.ListGroups(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list groups", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Groups fetched", groups)
	}
}

// JoinGroup adds the caller to the group holding the invite code.
// @Summary Join group
// @Tags groups
// @Accept json
// @Produce json
// @Param request body JoinGroupRequest true "Invite code"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails "Already a member"
// @Router /groups/join [post]
// @Security Bearer
func JoinGroup(groupSvc *groupsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[JoinGroupRequest](c)
		if input == nil {
			return err
		}
		joined, err := groupSvc.Join(c.Context(), userID, input.InviteCode)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to join group", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Joined group", joined)
	}
}

// GetGroup returns a group the caller belongs to.
// @Summary Get group
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Router /groups/{id} [get]
// @Security Bearer
func GetGroup(groupSvc *groupsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		found, err := groupSvc.GetGroup(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get group", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Group fetched", found)
	}
}

// UpdateGroup renames a group. Admin only.
// @Summary Update group
// @Tags groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param request body UpdateGroupRequest true "Fields to change"
// @Success 200 {object} common.Response
// @Router /groups/{id} [put]
// @Security Bearer
func UpdateGroup(groupSvc *groupsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[UpdateGroupRequest](c)
		if input == nil {
			return err
		}
		updated, err := groupSvc.UpdateGroup(c.Context(), userID, id, dto.GroupUpdate{
			Name:        input.Name,
			Description: input.Description,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update group", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Group updated", updated)
	}
}

// DeleteGroup soft-deletes a group and its memberships. Admin only.
// @Summary Delete group
// @Tags groups
// @Param id path string true "Group ID"
// @Success 204
// @Router /groups/{id} [delete]
// @Security Bearer
func DeleteGroup(groupSvc *groupsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		if err := groupSvc.DeleteGroup(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete group", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusNoContent, "Group deleted", nil)
	}
}

// LeaveGroup removes the caller from a group. The creator cannot leave.
// @Summary Leave group
// @Tags groups
// @Param id path string true "Group ID"
// @Success 204
// @Failure 422 {object} common.ProblemDetails
// @Router /groups/{id}/leave [post]
// @Security Bearer
func LeaveGroup(groupSvc *groupsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		if err := groupSvc.Leave(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to leave group", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusNoContent, "Left group", nil)
	}
}

// ListMembers lists the members of a group.
// @Summary Group members
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} common.Response
// @Router /groups/{id}/members [get]
// @Security Bearer
func ListMembers(groupSvc *groupsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		members, err := groupSvc.ListMembers(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list members", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Members fetched", members)
	}
}

// RemoveMember removes a member from a group. Admin only.
// @Summary Remove member
// @Tags groups
// @Param id path string true "Group ID"
// @Param userId path string true "User ID"
// @Success 204
// @Router /groups/{id}/members/{userId} [delete]
// @Security Bearer
func RemoveMember(groupSvc *groupsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		target, ok, err := common.ParamUUID(c, "userId")
		if !ok {
			return err
		}
		if err := groupSvc.RemoveMember(c.Context(), userID, id, target); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to remove member", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusNoContent, "Member removed", nil)
	}
}

// RegenerateInvite replaces the invite code of a group. Admin only.
// @Summary Regenerate invite code
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} common.Response
// @Router /groups/{id}/regenerate-invite [post]
// @Security Bearer
func RegenerateInvite(groupSvc *groupsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		code, err := groupSvc.RegenerateInviteCode(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to regenerate invite code", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Invite code regenerated", fiber.Map{"invite_code": code})
	}
}
