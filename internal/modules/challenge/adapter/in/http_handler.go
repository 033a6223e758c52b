package in

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"detox/internal/modules/challenge/dto"
	challengein "detox/internal/modules/challenge/port/in"
	usagein "detox/internal/modules/usage/port/in"
	"detox/internal/platform/clock"
	"detox/internal/platform/httperr"
)

type challengeResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Difficulty   string `json:"difficulty"`
	WindowDays   int    `json:"window_days"`
	RewardPoints int    `json:"reward_points"`
	Reward       string `json:"reward"`
}

type boardRowResponse struct {
	challengeResponse
	Count      int     `json:"count"`
	Percent    float64 `json:"percent"`
	State      string  `json:"state"`
	Today      string  `json:"today"`
	TodayValue int     `json:"today_minutes"`
	Limit      int     `json:"limit_minutes"`
}

type boardResponse struct {
	User     string             `json:"user"`
	Date     string             `json:"date"`
	Baseline int                `json:"baseline_minutes"`
	Rows     []boardRowResponse `json:"challenges"`
}

type HTTPHandler struct {
	usecase challengein.Usecase
	usage   usagein.Usecase
}

func NewHTTPHandler(usecase challengein.Usecase, usage usagein.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase, usage: usage}
}

func (h HTTPHandler) Register(g *echo.Group) {
	g.GET("/challenges", h.catalog)
	g.GET("/users/:user/challenges", h.board)
}

func (h HTTPHandler) catalog(c echo.Context) error {
	defs := h.usecase.Catalog(c.Request().Context())
	out := make([]challengeResponse, 0, len(defs))
	for _, d := range defs {
		out = append(out, toChallengeResponse(d))
	}
	return c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) board(c echo.Context) error {
	date, err := clock.ParseOptional(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	board, err := loadBoard(c.Request().Context(), h.usecase, h.usage, c.Param("user"), date)
	if err != nil {
		return httperr.From(err)
	}
	resp := boardResponse{User: board.User, Date: clock.FormatDate(board.Date), Baseline: board.Baseline}
	for _, r := range board.Rows {
		resp.Rows = append(resp.Rows, boardRowResponse{
			challengeResponse: toChallengeResponse(r.ChallengeOutput),
			Count:             r.Count,
			Percent:           r.Percent,
			State:             r.State,
			Today:             r.Today,
			TodayValue:        r.TodayValue,
			Limit:             r.Limit,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func toChallengeResponse(d dto.ChallengeOutput) challengeResponse {
	return challengeResponse{
		ID:           d.ID,
		Title:        d.Title,
		Description:  d.Description,
		Difficulty:   d.Difficulty,
		WindowDays:   d.WindowDays,
		RewardPoints: d.RewardPoints,
		Reward:       d.RewardText,
	}
}
