package category

import (
	"github.com/amirasaad/finshare/pkg/config"
	"github.com/amirasaad/finshare/pkg/domain/category"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/amirasaad/finshare/pkg/middleware"
	authsvc "github.com/amirasaad/finshare/pkg/service/auth"
	categorysvc "github.com/amirasaad/finshare/pkg/service/category"
	"github.com/amirasaad/finshare/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// CreateCategoryRequest represents the request body for creating a category.
type CreateCategoryRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Type  string `json:"type" validate:"required"`
	Color string `json:"color" validate:"max=7"`
	Icon  string `json:"icon" validate:"max=50"`
}

// UpdateCategoryRequest carries the fields to change. The type is fixed.
type UpdateCategoryRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=100"`
	Color *string `json:"color" validate:"omitempty,max=7"`
	Icon  *string `json:"icon" validate:"omitempty,max=50"`
}

func Routes(app *fiber.App, categorySvc *categorysvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	r := app.Group("/categories", middleware.JwtProtected(cfg.Auth.Jwt))
	r.Get("/", ListCategories(categorySvc, authSvc))
	r.Post("/", CreateCategory(categorySvc, authSvc))
	r.Get("/type/:type", ListCategoriesByType(categorySvc, authSvc))
	r.Get("/:id", GetCategory(categorySvc, authSvc))
	r.Put("/:id", UpdateCategory(categorySvc, authSvc))
	r.Delete("/:id", DeleteCategory(categorySvc, authSvc))
}

// CreateCategory creates a category for the caller.
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body CreateCategoryRequest true "Category"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /categories [post]
// @Security Bearer
func CreateCategory(categorySvc *categorysvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[CreateCategoryRequest](c)
		if input == nil {
			return err
		}
		created, err := categorySvc.CreateCategory(c.Context(), userID, dto.CategoryCreate{
			Name:  input.Name,
			Type:  category.Type(input.Type),
			Color: input.Color,
			Icon:  input.Icon,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create category", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Category created", created)
	}
}

// ListCategories lists the caller's categories.
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} common.Response
// @Router /categories [get]
// @Security Bearer
func ListCategories(categorySvc *categorysvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		categories, err := categorySvc.ListCategories(c.Context(), userID, nil)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list categories", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Categories fetched", categories)
	}
}

// ListCategoriesByType lists the caller's income or expense categories.
// @Summary List categories by type
// @Tags categories
// @Produce json
// @Param type path string true "income | expense"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /categories/type/{type} [get]
// @Security Bearer
func ListCategoriesByType(categorySvc *categorysvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		typ, err := category.ParseType(c.Params("type"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid category type", err)
		}
		categories, err := categorySvc.ListCategories(c.Context(), userID, &typ)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list categories", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Categories fetched", categories)
	}
}

// GetCategory returns one of the caller's categories.
// @Summary Get category
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /categories/{id} [get]
// @Security Bearer
func GetCategory(categorySvc *categorysvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		found, err := categorySvc.GetCategory(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get category", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Category fetched", found)
	}
}

// UpdateCategory renames or restyles a category.
// @Summary Update category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param request body UpdateCategoryRequest true "Fields to change"
// @Success 200 {object} common.Response
// @Router /categories/{id} [put]
// @Security Bearer
func UpdateCategory(categorySvc *categorysvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[UpdateCategoryRequest](c)
		if input == nil {
			return err
		}
		updated, err := categorySvc.UpdateCategory(c.Context(), userID, id, dto.CategoryUpdate{
			Name:  input.Name,
			Color: input.Color,
			Icon:  input.Icon,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update category", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Category updated", updated)
	}
}

// DeleteCategory soft-deletes a category.
// @Summary Delete category
// @Tags categories
// @Param id path string true "Category ID"
// @Success 204
// @Router /categories/{id} [delete]
// @Security Bearer
func DeleteCategory(categorySvc *categorysvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		if err := categorySvc.DeleteCategory(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete category", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusNoContent, "Category deleted", nil)
	}
}
