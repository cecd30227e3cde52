package controllers

import (
	"devprep/backend/app"
	"devprep/backend/models"
	"devprep/backend/services"
	"devprep/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ProgressController struct {
	Recorder *services.ProgressRecorder
	Queries  *services.ProgressQueries
}

func NewProgressController(a *app.App) *ProgressController {
	return &ProgressController{Recorder: a.Recorder, Queries: a.Queries}
}

type recordProgressInput struct {
	Status    models.ProgressStatus `json:"status"`
	TimeSpent int                   `json:"time_spent"`
}

// RecordProgress godoc
// @Summary Record question progress
// @Description Sets the user's status for a question; completing it updates daily activity, stats and streaks
// @Tags progress
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /questions/{id}/progress [post]
func (pc *ProgressController) RecordProgress(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	questionID, err := c.ParamsInt("id")
	if err != nil || questionID <= 0 {
		return utils.BadRequest(c, "Invalid question ID")
	}

	var input recordProgressInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	result, err := pc.Recorder.RecordProgress(c.UserContext(), userID, uint(questionID), input.Status, input.TimeSpent)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, result)
}

// GetStats godoc
// @Summary Get user study stats
// @Description Returns totals, per-category and per-difficulty counts and streaks
// @Tags progress
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/stats [get]
func (pc *ProgressController) GetStats(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	stats, err := pc.Queries.Stats(c.UserContext(), userID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, stats)
}

// GetActivity godoc
// @Summary Get daily activity
// @Description Returns one entry per calendar day for the last N days (default 30)
// @Tags progress
// @Produce json
// @Param days query int false "Number of days"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/activity [get]
func (pc *ProgressController) GetActivity(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	days := c.QueryInt("days", 30)
	activity, err := pc.Queries.Activity(c.UserContext(), userID, days)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, activity)
}

// GetQuestionProgress godoc
// @Summary List question progress
// @Description Returns the user's per-question progress, optionally filtered by status
// @Tags progress
// @Produce json
// @Param status query string false "not-started, in-progress or completed"
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /progress/questions [get]
func (pc *ProgressController) GetQuestionProgress(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	rows, err := pc.Queries.QuestionProgress(c.UserContext(), userID, models.ProgressStatus(c.Query("status")))
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, rows)
}
