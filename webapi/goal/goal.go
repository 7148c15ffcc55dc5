package goal

import (
	"github.com/amirasaad/finshare/pkg/config"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/amirasaad/finshare/pkg/middleware"
	authsvc "github.com/amirasaad/finshare/pkg/service/auth"
	goalsvc "github.com/amirasaad/finshare/pkg/service/goal"
	"github.com/amirasaad/finshare/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateGoalRequest represents the request body for creating a goal.
type CreateGoalRequest struct {
	Name          string          `json:"name" validate:"required,max=100"`
	Description   string          `json:"description" validate:"max=500"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	StartDate     string          `json:"start_date"`
	TargetDate    string          `json:"target_date"`
	Color         string          `json:"color" validate:"max=7"`
	Icon          string          `json:"icon" validate:"max=50"`
}

// UpdateGoalRequest carries the fields to change. An empty target_date
// clears the target date.
type UpdateGoalRequest struct {
	Name         *string          `json:"name" validate:"omitempty,max=100"`
	Description  *string          `json:"description" validate:"omitempty,max=500"`
	TargetAmount *decimal.Decimal `json:"target_amount"`
	TargetDate   *string          `json:"target_date"`
	Color        *string          `json:"color" validate:"omitempty,max=7"`
	Icon         *string          `json:"icon" validate:"omitempty,max=50"`
}

// ShareGoalRequest lists the users to add to a goal.
type ShareGoalRequest struct {
	UserIDs []uuid.UUID `json:"user_ids" validate:"required,min=1"`
}

// Routes registers the goal endpoints.
//
// Routes:
//   - GET    /goals                      : Goals visible under ?context=.
//   - POST   /goals                      : Create a goal.
//   - GET    /goals/active               : Incomplete goals.
//   - GET    /goals/completed            : Completed goals.
//   - GET    /goals/shared               : Goals other users shared with the caller.
//   - GET    /goals/for-transaction      : Goals the caller may contribute to.
//   - GET    /goals/:id                  : One goal.
//   - PUT    /goals/:id                  : Update (owner only).
//   - DELETE /goals/:id                  : Delete (owner only).
//   - GET    /goals/:id/users            : Participants.
//   - POST   /goals/:id/share            : Share with group co-members.
//   - DELETE /goals/:id/share/:userId    : Remove a participant.
func Routes(app *fiber.App, goalSvc *goalsvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	r := app.Group("/goals", middleware.JwtProtected(cfg.Auth.Jwt))
	r.Get("/", ListGoals(goalSvc, authSvc, goalsvc.FilterAll))
	r.Post("/", CreateGoal(goalSvc, authSvc))
	r.Get("/active", ListGoals(goalSvc, authSvc, goalsvc.FilterActive))
	r.Get("/completed", ListGoals(goalSvc, authSvc, goalsvc.FilterCompleted))
	r.Get("/shared", ListShared(goalSvc, authSvc))
	r.Get("/for-transaction", ListForTransaction(goalSvc, authSvc))
	r.Get("/:id", GetGoal(goalSvc, authSvc))
	r.Put("/:id", UpdateGoal(goalSvc, authSvc))
	r.Delete("/:id", DeleteGoal(goalSvc, authSvc))
	r.Get("/:id/users", ListGoalUsers(goalSvc, authSvc))
	r.Post("/:id/share", ShareGoal(goalSvc, authSvc))
	r.Delete("/:id/share/:userId", UnshareGoal(goalSvc, authSvc))
}

// CreateGoal creates a savings goal owned by the caller.
// @Summary Create goal
// @Tags goals
// @Accept json
// @Produce json
// @Param request body CreateGoalRequest true "Goal"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /goals [post]
// @Security Bearer
func CreateGoal(goalSvc *goalsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[CreateGoalRequest](c)
		if input == nil {
			return err
		}
		in := dto.GoalCreate{
			Name:          input.Name,
			Description:   input.Description,
			TargetAmount:  input.TargetAmount,
			CurrentAmount: input.CurrentAmount,
			Color:         input.Color,
			Icon:          input.Icon,
		}
		start, err := common.ParseDate(input.StartDate)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid start date", err)
		}
		if start != nil {
			in.StartDate = *start
		}
		if in.TargetDate, err = common.ParseDate(input.TargetDate); err != nil {
			return common.ProblemDetailsJSON(c, "Invalid target date", err)
		}
		created, err := goalSvc.CreateGoal(c.Context(), userID, in)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create goal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Goal created", created)
	}
}

// ListGoals lists goals visible under the view context, narrowed by filter.
// @Summary List goals
// @Tags goals
// @Produce json
// @Param context query string false "own | member | all"
// @Param memberUserId query string false "Member user ID for context=member"
// @Success 200 {object} common.Response
// @Router /goals [get]
// @Router /goals/active [get]
// @Router /goals/completed [get]
// @Security Bearer
func ListGoals(goalSvc *goalsvc.Service, authSvc *authsvc.Service, filter goalsvc.Filter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		sc, ok, err := common.ScopeFromQuery(c)
		if !ok {
			return err
		}
		goals, err := goalSvc.ListGoals(c.Context(), userID, sc, filter)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list goals", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Goals fetched", goals)
	}
}

// ListShared lists goals shared with the caller by other users.
// @Summary Goals shared with me
// @Tags goals
// @Produce json
// @Success 200 {object} common.Response
// @Router /goals/shared [get]
// @Security Bearer
func ListShared(goalSvc *goalsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		goals, err := goalSvc.ListSharedWithMe(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list goals", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Goals fetched", goals)
	}
}

// ListForTransaction lists the active goals the caller may move money into.
// @Summary Goals available for a transaction
// @Tags goals
// @Produce json
// @Success 200 {object} common.Response
// @Router /goals/for-transaction [get]
// @Security Bearer
func ListForTransaction(goalSvc *goalsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		goals, err := goalSvc.ListForTransaction(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list goals", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Goals fetched", goals)
	}
}

// GetGoal returns a goal the caller owns or participates in.
// @Summary Get goal
// @Tags goals
// @Produce json
// @Param id path string true "Goal ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /goals/{id} [get]
// @Security Bearer
func GetGoal(goalSvc *goalsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		found, err := goalSvc.GetGoal(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get goal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Goal fetched", found)
	}
}

// UpdateGoal edits a goal. Only the owner may call it.
// @Summary Update goal
// @Tags goals
// @Accept json
// @Produce json
// @Param id path string true "Goal ID"
// @Param request body UpdateGoalRequest true "Fields to change"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /goals/{id} [put]
// @Security Bearer
func UpdateGoal(goalSvc *goalsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[UpdateGoalRequest](c)
		if input == nil {
			return err
		}
		update := dto.GoalUpdate{
			Name:         input.Name,
			Description:  input.Description,
			TargetAmount: input.TargetAmount,
			Color:        input.Color,
			Icon:         input.Icon,
		}
		if input.TargetDate != nil {
			if update.TargetDate, err = common.ParseDate(*input.TargetDate); err != nil {
				return common.ProblemDetailsJSON(c, "Invalid target date", err)
			}
			update.ClearTargetDate = update.TargetDate == nil
		}
		updated, err := goalSvc.UpdateGoal(c.Context(), userID, id, update)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update goal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Goal updated", updated)
	}
}

// DeleteGoal soft-deletes a goal. Only the owner may call it.
// @Summary Delete goal
// @Tags goals
// @Param id path string true "Goal ID"
// @Success 204
// @Failure 403 {object} common.ProblemDetails
// @Router /goals/{id} [delete]
// @Security Bearer
func DeleteGoal(goalSvc *goalsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		if err := goalSvc.DeleteGoal(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete goal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusNoContent, "Goal deleted", nil)
	}
}

// ListGoalUsers lists a goal's participants.
// @Summary Goal participants
// @Tags goals
// @Produce json
// @Param id path string true "Goal ID"
// @Success 200 {object} common.Response
// @Router /goals/{id}/users [get]
// @Security Bearer
func ListGoalUsers(goalSvc *goalsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		users, err := goalSvc.ListGoalUsers(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list goal users", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Goal users fetched", users)
	}
}

// ShareGoal adds group co-members as participants of a goal.
// @Summary Share goal
// @Tags goals
// @Accept json
// @Produce json
// @Param id path string true "Goal ID"
// @Param request body ShareGoalRequest true "Users to add"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails "Not the owner or target outside your groups"
// @Router /goals/{id}/share [post]
// @Security Bearer
func ShareGoal(goalSvc *goalsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[ShareGoalRequest](c)
		if input == nil {
			return err
		}
		users, err := goalSvc.ShareGoal(c.Context(), userID, id, input.UserIDs)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to share goal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Goal shared", users)
	}
}

// UnshareGoal removes a participant from a goal.
// @Summary Unshare goal
// @Tags goals
// @Param id path string true "Goal ID"
// @Param userId path string true "User ID"
// @Success 204
// @Failure 422 {object} common.ProblemDetails "Cannot remove the owner"
// @Router /goals/{id}/share/{userId} [delete]
// @Security Bearer
func UnshareGoal(goalSvc *goalsvc.Service, authSvc *authsvc.Service) fiber.Handler {
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
		if err := goalSvc.UnshareGoal(c.Context(), userID, id, target); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to unshare goal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusNoContent, "Goal unshared", nil)
	}
}
