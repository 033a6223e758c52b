package in

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	challengedto "detox/internal/modules/challenge/dto"
	"detox/internal/modules/usage/dto"
	usagein "detox/internal/modules/usage/port/in"
	"detox/internal/platform/clock"
	"detox/internal/platform/httperr"
)

const maxImageBytes = 10 << 20

type scanRequest struct {
	Tokens     []string `json:"tokens"`
	Recognizer string   `json:"recognizer"`
}

type confirmRequest struct {
	Date string `json:"date"`
}

type logRequest struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	YouTube   int    `json:"youtube"`
	Instagram int    `json:"instagram"`
}

type scanResponse struct {
	ScanID     string         `json:"scan_id,omitempty"`
	Recognizer string         `json:"recognizer,omitempty"`
	Tokens     int            `json:"tokens"`
	Detected   bool           `json:"detected"`
	Total      int            `json:"total_minutes"`
	YouTube    int            `json:"youtube_minutes"`
	Instagram  int            `json:"instagram_minutes"`
	Apps       map[string]int `json:"apps"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
}

type dayResponse struct {
	Date      string    `json:"date"`
	Total     int       `json:"total_minutes"`
	YouTube   int       `json:"youtube_minutes"`
	Instagram int       `json:"instagram_minutes"`
	UpdatedAt time.Time `json:"updated_at"`
}

type resultResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Passed          bool   `json:"passed"`
	AlreadyRecorded bool   `json:"already_recorded"`
	Progress        int    `json:"progress"`
	WindowDays      int    `json:"window_days"`
	State           string `json:"state"`
	JustClaimed     bool   `json:"just_claimed"`
	Reward          int    `json:"reward,omitempty"`
}

type logResponse struct {
	Day           dayResponse      `json:"day"`
	Results       []resultResponse `json:"challenges"`
	PointsAwarded int              `json:"points_awarded"`
	Claimed       []string         `json:"claimed,omitempty"`
}

type HTTPHandler struct {
	usecase usagein.Usecase
}

func NewHTTPHandler(usecase usagein.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

func (h HTTPHandler) Register(g *echo.Group) {
	g.POST("/users/:user/scans", h.scan)
	g.POST("/users/:user/scans/:scan/confirm", h.confirm)
	g.POST("/users/:user/logs", h.log)
	g.GET("/users/:user/logs", h.history)
}

// scan accepts a multipart "image" upload or a JSON body of recognized tokens.
func (h HTTPHandler) scan(c echo.Context) error {
	input := dto.ScanInput{User: c.Param("user")}
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		path, cleanup, err := saveUpload(c)
		if err != nil {
			return err
		}
		defer cleanup()
		input.ImagePath = path
		input.Recognizer = c.FormValue("recognizer")
	} else {
		var req scanRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if req.Tokens == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "tokens or image upload required")
		}
		input.Tokens = req.Tokens
		input.Recognizer = req.Recognizer
	}

	out, err := h.usecase.Scan(c.Request().Context(), input)
	if err != nil {
		return httperr.From(err)
	}
	resp := scanResponse{
		ScanID:     out.ScanID,
		Recognizer: out.Recognizer,
		Tokens:     out.Tokens,
		Detected:   out.Detected,
		Total:      out.Total,
		YouTube:    out.YouTube,
		Instagram:  out.Instagram,
		Apps:       out.Apps,
	}
	if !out.ExpiresAt.IsZero() {
		resp.ExpiresAt = &out.ExpiresAt
	}
	return c.JSON(http.StatusOK, resp)
}

func (h HTTPHandler) confirm(c echo.Context) error {
	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	date, err := clock.ParseOptional(req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.usecase.Confirm(c.Request().Context(), dto.ConfirmInput{User: c.Param("user"), ScanID: c.Param("scan"), Date: date})
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, toLogResponse(out))
}

func (h HTTPHandler) log(c echo.Context) error {
	var req logRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	date, err := clock.ParseOptional(req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.usecase.Log(c.Request().Context(), dto.LogInput{
		User:      c.Param("user"),
		Date:      date,
		Total:     req.Total,
		YouTube:   req.YouTube,
		Instagram: req.Instagram,
	})
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, toLogResponse(out))
}

func (h HTTPHandler) history(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}
	days, err := h.usecase.History(c.Request().Context(), dto.HistoryInput{User: c.Param("user"), Limit: limit})
	if err != nil {
		return httperr.From(err)
	}
	out := make([]dayResponse, 0, len(days))
	for _, d := range days {
		out = append(out, toDayResponse(d))
	}
	return c.JSON(http.StatusOK, out)
}

func saveUpload(c echo.Context) (string, func(), error) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "image upload required")
	}
	if file.Size > maxImageBytes {
		return "", nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image too large")
	}
	src, err := file.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "detox-scan-*"+strings.ToLower(filepath.Ext(file.Filename)))
	if err != nil {
		return "", nil, fmt.Errorf("create temp image: %w", err)
	}
	cleanup := func() { _ = os.Remove(dst.Name()) }
	if _, err := io.Copy(dst, io.LimitReader(src, maxImageBytes)); err != nil {
		_ = dst.Close()
		cleanup()
		return "", nil, fmt.Errorf("store upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("store upload: %w", err)
	}
	return dst.Name(), cleanup, nil
}

func toDayResponse(d dto.DayOutput) dayResponse {
	return dayResponse{
		Date:      clock.FormatDate(d.Date),
		Total:     d.Total,
		YouTube:   d.YouTube,
		Instagram: d.Instagram,
		UpdatedAt: d.UpdatedAt,
	}
}

func toLogResponse(out dto.LogOutput) logResponse {
	return logResponse{
		Day:           toDayResponse(out.Day),
		Results:       toResultResponses(out.Evaluation.Results),
		PointsAwarded: out.Evaluation.PointsAwarded,
		Claimed:       out.Evaluation.Claimed(),
	}
}

func toResultResponses(results []challengedto.ChallengeResult) []resultResponse {
	out := make([]resultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, resultResponse{
			ID:              r.ID,
			Title:           r.Title,
			Passed:          r.Passed,
			AlreadyRecorded: r.AlreadyRecorded,
			Progress:        r.Progress,
			WindowDays:      r.WindowDays,
			State:           r.State,
			JustClaimed:     r.JustClaimed,
			Reward:          r.Reward,
		})
	}
	return out
}
