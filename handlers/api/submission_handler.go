package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"formfield.app/configs/configslog"
	"formfield.app/middlewares"
	"formfield.app/models"
	"formfield.app/pkg/queryparams"
	"formfield.app/services"
)

// SubmissionHandler serves submissions.
type SubmissionHandler struct {
	service services.ISubmissionService
}

// NewSubmissionHandler returns a SubmissionHandler.
func NewSubmissionHandler() *SubmissionHandler {
	return &SubmissionHandler{service: services.NewSubmissionService()}
}

// SubmitForm records a submission. Anonymous callers may submit.
func (h *SubmissionHandler) SubmitForm(c *fiber.Ctx) error {
	formID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req SubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Malformed submission body.")
	}

	var submitter *uint
	userID, ok := middlewares.UserID(c)
	if ok {
		submitter = &userID
	}

	detail, err := h.service.RecordSubmission(c.UserContext(), formID, submitter, req.Fields)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toSubmission(detail, userID))
}

// ListSubmissions lists the caller's submissions.
func (h *SubmissionHandler) ListSubmissions(c *fiber.Ctx) error {
	userID, _ := middlewares.UserID(c)

	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		configslog.Log.Warn("ListSubmissions: query parse error", zap.Error(err))
		params = queryparams.DefaultListParams(queryparams.DefaultSortBy)
	}
	params.Validate()

	result, err := h.service.GetSubmissionsForUser(c.UserContext(), userID, params)
	if err != nil {
		return err
	}
	if subs, ok := result.Data.([]models.Submission); ok {
		result.Data = toSubmissionSummaries(subs)
	}
	return c.JSON(result)
}

// ShowSubmission shows a submission against its form's current fields.
func (h *SubmissionHandler) ShowSubmission(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	userID, _ := middlewares.UserID(c)

	detail, err := h.service.GetSubmission(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(toSubmission(detail, userID))
}

// UpdateSubmission edits answers of the caller's own submission.
func (h *SubmissionHandler) UpdateSubmission(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	userID, _ := middlewares.UserID(c)

	var req SubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Malformed submission body.")
	}

	detail, err := h.service.UpdateSubmission(c.UserContext(), id, userID, req.Fields)
	if err != nil {
		return err
	}
	return c.JSON(toSubmission(detail, userID))
}
