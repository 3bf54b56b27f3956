package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Hoossayn/hottakes-backend/internal/db"
	svcErr "github.com/Hoossayn/hottakes-backend/internal/errors"
	"github.com/Hoossayn/hottakes-backend/internal/repository"
	"github.com/Hoossayn/hottakes-backend/internal/service/takes"
)

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.appCtx.RedisCache.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateTake(c echo.Context) error {
	var in takes.CreateTakeInput
	if err := c.Bind(&in); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}
	if in.To == "" {
		return svcErr.InvalidArgument("to is required")
	}

	take, err := s.svc.CreateTake(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"message": "HotTake Created",
		"data":    take,
		"takeUrl": s.svc.TakeURL(take.ID),
	})
}

func (s *Server) handlePostTake(c echo.Context) error {
	var in takes.PostTakeInput
	if err := c.Bind(&in); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}
	if in.Sender == "" {
		return svcErr.InvalidArgument("sender is required")
	}

	take, err := s.svc.PostTake(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"message": "HotTake Created",
		"data":    take,
		"takeUrl": s.svc.TakeURL(take.ID),
	})
}

func (s *Server) handleCreateMany(c echo.Context) error {
	var inputs []takes.CreateTakeInput
	if err := c.Bind(&inputs); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}

	created, err := s.svc.CreateMany(c.Request().Context(), inputs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"success":    true,
		"totalCount": len(created),
		"data":       created,
	})
}

func (s *Server) handleGetTake(c echo.Context) error {
	take, err := s.svc.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Take Fetched",
		"data":    take,
	})
}

func (s *Server) handleDeleteTake(c echo.Context) error {
	if err := s.svc.DeleteTake(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Take Deleted",
	})
}

type reactRequest struct {
	Reaction string `json:"reaction"`
	Username string `json:"username"`
}

func (s *Server) handleReact(c echo.Context) error {
	var req reactRequest
	if err := c.Bind(&req); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}

	outcome, err := s.svc.React(
		c.Request().Context(),
		c.Param("id"),
		db.ReactionKind(req.Reaction),
		req.Username,
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": req.Reaction + " " + string(outcome),
	})
}

func (s *Server) handlePublicFeed(c echo.Context) error {
	page, err := s.svc.ListPublic(c.Request().Context(), c.Param("username"), listRequest(c))
	if err != nil {
		return err
	}
	return jsonPage(c, page)
}

func (s *Server) handleInbound(c echo.Context) error {
	page, err := s.svc.ListInbound(c.Request().Context(), c.Param("username"), listRequest(c))
	if err != nil {
		return err
	}
	return jsonPage(c, page)
}

func (s *Server) handleMine(c echo.Context) error {
	page, err := s.svc.ListMine(c.Request().Context(), c.Param("username"), listRequest(c))
	if err != nil {
		return err
	}
	return jsonPage(c, page)
}

func (s *Server) handlePreviouslyReacted(c echo.Context) error {
	page, err := s.svc.ListPreviouslyReactedTo(c.Request().Context(), c.Param("username"), listRequest(c))
	if err != nil {
		return err
	}
	return jsonPage(c, page)
}

func (s *Server) handleReceivedCount(c echo.Context) error {
	count, err := s.svc.CountReceived(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"totalCount": count,
	})
}

func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.svc.GetStats(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    stats,
	})
}

// listRequest pulls page/limit/filter query params; zero values let the
// service apply its defaults.
func listRequest(c echo.Context) takes.ListRequest {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return takes.ListRequest{
		Page:  page,
		Limit: limit,
		Mode:  repository.RankMode(c.QueryParam("filter")),
	}
}

func jsonPage(c echo.Context, page *takes.TakePage) error {
	message := "Hot Takes Fetched"
	if len(page.Takes) == 0 {
		message = "No Hot Takes"
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"message":    message,
		"totalCount": page.TotalCount,
		"data":       page.Takes,
	})
}
