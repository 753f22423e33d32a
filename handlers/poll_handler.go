package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"polls-backend/models"
	"polls-backend/service"
	"polls-backend/templates"
	"polls-backend/urls"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// ErrorMessageNoChoice is shown when a vote has no valid choice.
const ErrorMessageNoChoice = "You didn't select a choice."

var offered = []string{binding.MIMEHTML, binding.MIMEJSON}

// PollHandler serves the polls pages.
type PollHandler struct {
	svc service.PollService
}

// NewPollHandler 创建投票页面处理程序
func NewPollHandler(svc service.PollService) *PollHandler {
	return &PollHandler{svc: svc}
}

// Index 展示最新发布的问题列表
func (h *PollHandler) Index(c *gin.Context) {
	questions, err := h.svc.Index(c.Request.Context())
	if err != nil {
		internalError(c, "list questions", err)
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}

	render(c, http.StatusOK, templates.IndexPage, gin.H{
		"title":                "Polls",
		"latest_question_list": questions,
	})
}

// Detail shows a published question and its voting form.
func (h *PollHandler) Detail(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}

	question, err := h.svc.Detail(c.Request.Context(), id)
	if err != nil {
		serviceError(c, "get question detail", err)
		return
	}

	render(c, http.StatusOK, templates.DetailPage, gin.H{
		"title":    question.QuestionText,
		"question": question,
	})
}

// Vote records one vote and redirects to the results page.
func (h *PollHandler) Vote(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}

	_, err := h.svc.Vote(c.Request.Context(), id, c.PostForm("choice"))
	var invalid *service.InvalidVoteError
	switch {
	case err == nil:
	case errors.As(err, &invalid):
		// 重新展示投票表单
		render(c, http.StatusOK, templates.DetailPage, gin.H{
			"title":         invalid.Question.QuestionText,
			"question":      invalid.Question,
			"error_message": ErrorMessageNoChoice,
		})
		return
	default:
		serviceError(c, "vote", err)
		return
	}

	c.Redirect(http.StatusFound, urls.MustReverse(urls.ResultsRoute, id))
}

// Results shows the vote counts of a question.
func (h *PollHandler) Results(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}

	question, err := h.svc.Results(c.Request.Context(), id)
	if err != nil {
		serviceError(c, "get question results", err)
		return
	}

	render(c, http.StatusOK, templates.ResultsPage, gin.H{
		"title":    question.QuestionText,
		"question": question,
	})
}

// questionID parses the question path parameter. A malformed id is a 404,
// the same as a route that does not match.
func questionID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(urls.QuestionParam), 10, 0)
	if err != nil {
		NotFound(c)
		return 0, false
	}
	return uint(id), true
}

// render answers with HTML or JSON depending on the Accept header.
// JSON carries the same context keys the page is rendered from.
func render(c *gin.Context, code int, page string, data gin.H) {
	jsonData := gin.H{}
	for k, v := range data {
		if k != "title" {
			jsonData[k] = v
		}
	}
	c.Negotiate(code, gin.Negotiate{
		Offered:  offered,
		HTMLName: page,
		HTMLData: data,
		JSONData: jsonData,
	})
}

func renderError(c *gin.Context, code int, message string) {
	c.Negotiate(code, gin.Negotiate{
		Offered:  offered,
		HTMLName: templates.ErrorPage,
		HTMLData: gin.H{"title": http.StatusText(code), "status": code, "error": message},
		JSONData: gin.H{"error": message},
	})
	c.Abort()
}

// NotFound renders the 404 page.
func NotFound(c *gin.Context) {
	renderError(c, http.StatusNotFound, "Question not found")
}

func serviceError(c *gin.Context, op string, err error) {
	if errors.Is(err, service.ErrQuestionNotFound) {
		NotFound(c)
		return
	}
	internalError(c, op, err)
}

func internalError(c *gin.Context, op string, err error) {
	log.Printf("%s failed: %v", op, err)
	renderError(c, http.StatusInternalServerError, "Internal server error")
}

// PageNotFound handles requests that match no route.
func PageNotFound(c *gin.Context) {
	renderError(c, http.StatusNotFound, "Page not found")
}
