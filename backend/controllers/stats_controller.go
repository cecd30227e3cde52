package controllers

import (
	"devprep/backend/services"
	"devprep/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type StatsController struct {
	Recomputer *services.Recomputer
}

func NewStatsController(recomputer *services.Recomputer) *StatsController {
	return &StatsController{Recomputer: recomputer}
}

// RecalculateStats godoc
// @Summary Rebuild user stats
// @Description Replays completed progress to rebuild stats and streaks for one user (user_id) or everyone
// @Tags admin
// @Produce json
// @Param user_id query int false "Only this user"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/stats/recalculate [post]
func (sc *StatsController) RecalculateStats(c *fiber.Ctx) error {
	if userID := c.QueryInt("user_id", 0); userID > 0 {
		stats, err := sc.Recomputer.RecomputeUser(c.UserContext(), uint(userID))
		if err != nil {
			return utils.FromError(c, err)
		}
		return utils.Success(c, fiber.StatusOK, services.NewStatsView(uint(userID), stats))
	}

	report, err := sc.Recomputer.RecomputeAll(c.UserContext())
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, report)
}
