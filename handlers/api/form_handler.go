package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"formfield.app/configs/configslog"
	"formfield.app/middlewares"
	"formfield.app/models"
	"formfield.app/pkg/formschema"
	"formfield.app/pkg/queryparams"
	"formfield.app/services"
)

// FormHandler serves form schemas.
type FormHandler struct {
	service services.IFormService
}

// NewFormHandler returns a FormHandler.
func NewFormHandler() *FormHandler {
	return &FormHandler{service: services.NewFormService()}
}

// ListForms lists the caller's forms.
func (h *FormHandler) ListForms(c *fiber.Ctx) error {
	userID, _ := middlewares.UserID(c)

	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		configslog.Log.Warn("ListForms: query parse error", zap.Error(err))
		params = queryparams.DefaultListParams(queryparams.DefaultSortBy)
	}
	params.Validate()

	result, err := h.service.GetFormsForUser(c.UserContext(), userID, params)
	if err != nil {
		return err
	}
	if forms, ok := result.Data.([]models.Form); ok {
		result.Data = toFormSummaries(forms)
	}
	return c.JSON(result)
}

// CreateForm creates a form owned by the caller.
func (h *FormHandler) CreateForm(c *fiber.Ctx) error {
	userID, _ := middlewares.UserID(c)

	var in formschema.FormInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest("Malformed form body.")
	}

	form, err := h.service.CreateForm(c.UserContext(), userID, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toForm(form, userID))
}

// ShowForm shows a form. Anyone may view it; edit_permitted tells the owner
// apart.
func (h *FormHandler) ShowForm(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	userID, _ := middlewares.UserID(c)

	form, err := h.service.GetFormByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(toForm(form, userID))
}

// UpdateForm applies a schema change. Only the owner may change a form.
func (h *FormHandler) UpdateForm(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	userID, _ := middlewares.UserID(c)

	isOwner, err := h.service.IsOwner(c.UserContext(), id, userID)
	if err != nil {
		return err
	}
	if !isOwner {
		return services.ErrFormForbidden
	}

	var in formschema.FormInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest("Malformed form body.")
	}

	result, err := h.service.MigrateForm(c.UserContext(), id, isOwner, in)
	if err != nil {
		return err
	}
	return c.JSON(toMigration(result, userID))
}

// DeleteForm deletes a form with everything submitted to it.
func (h *FormHandler) DeleteForm(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	userID, _ := middlewares.UserID(c)

	isOwner, err := h.service.IsOwner(c.UserContext(), id, userID)
	if err != nil {
		return err
	}
	if err := h.service.DeleteForm(c.UserContext(), id, isOwner); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
