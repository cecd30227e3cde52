package controllers

import (
	"errors"
	"strings"

	"devprep/backend/apperr"
	"devprep/backend/models"
	"devprep/backend/repository"
	"devprep/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type QuestionsController struct {
	Questions repository.QuestionRepo
}

func NewQuestionsController(questions repository.QuestionRepo) *QuestionsController {
	return &QuestionsController{Questions: questions}
}

func (qc *QuestionsController) ListQuestions(c *fiber.Ctx) error {
	filter := repository.QuestionFilter{
		Category:   c.Query("category"),
		Difficulty: c.Query("difficulty"),
		Search:     c.Query("search"),
		Page:       c.QueryInt("page", 1),
		PageSize:   c.QueryInt("page_size", 20),
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	questions, total, err := qc.Questions.List(c.UserContext(), nil, filter)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	return utils.Paginate(c, questions, total, filter.Page, filter.PageSize)
}

func (qc *QuestionsController) GetQuestion(c *fiber.Ctx) error {
	questionID, err := c.ParamsInt("id")
	if err != nil || questionID <= 0 {
		return utils.BadRequest(c, "Invalid question ID")
	}

	question, err := qc.Questions.GetByID(c.UserContext(), nil, uint(questionID))
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if question == nil {
		return utils.FromError(c, apperr.NotFound("question %d not found", questionID))
	}
	return utils.Success(c, fiber.StatusOK, question)
}

func (qc *QuestionsController) CreateQuestion(c *fiber.Ctx) error {
	var input struct {
		Slug       string `json:"slug"`
		Title      string `json:"title"`
		Category   string `json:"category"`
		Difficulty string `json:"difficulty"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	input.Slug = strings.TrimSpace(input.Slug)
	input.Title = strings.TrimSpace(input.Title)
	input.Category = strings.ToLower(strings.TrimSpace(input.Category))
	input.Difficulty = strings.ToLower(strings.TrimSpace(input.Difficulty))

	problems := map[string]string{}
	if input.Slug == "" {
		problems["slug"] = "required"
	}
	if input.Title == "" {
		problems["title"] = "required"
	}
	if input.Difficulty != "" && !models.ValidDifficulty(input.Difficulty) {
		problems["difficulty"] = "must be easy, medium or hard"
	}
	if len(problems) > 0 {
		return utils.ValidationError(c, problems)
	}

	question := models.Question{
		Slug:       input.Slug,
		Title:      input.Title,
		Category:   input.Category,
		Difficulty: input.Difficulty,
	}
	if err := qc.Questions.Create(c.UserContext(), nil, &question); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.Error(c, fiber.StatusConflict, fiber.NewError(fiber.StatusConflict, "Question slug already exists"))
		}
		return utils.InternalServerError(c, "Could not create question")
	}

	return utils.Created(c, question)
}
