package rest

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/critic/internal/core/domain"
)

// PredictRequest is the body of POST /v1/predict. An empty or missing
// text is answered with the fallback prediction.
type PredictRequest struct {
	Text       string `json:"text"`
	ArtifactID string `json:"artifact_id,omitempty"`
}

func (s *Server) handlePredict(c echo.Context) error {
	var req PredictRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	prediction, err := s.ports.Prediction.Predict(c.Request().Context(), req.Text, domain.PredictOptions{
		ArtifactID: req.ArtifactID,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, prediction)
}

func (s *Server) handleListRuns(c echo.Context) error {
	if s.ports.Runs == nil {
		return c.JSON(http.StatusOK, []domain.RunRecord{})
	}
	runs, err := s.ports.Runs.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if runs == nil {
		runs = []domain.RunRecord{}
	}
	return c.JSON(http.StatusOK, runs)
}

func (s *Server) handleGetRun(c echo.Context) error {
	if s.ports.Runs == nil {
		return echo.NewHTTPError(http.StatusNotFound, "run not found")
	}
	run, err := s.ports.Runs.Get(c.Request().Context(), c.Param("runId"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, run)
}

func (s *Server) handleListArtifacts(c echo.Context) error {
	if s.ports.Artifacts == nil {
		return c.JSON(http.StatusOK, []domain.ArtifactInfo{})
	}
	infos, err := s.ports.Artifacts.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if infos == nil {
		infos = []domain.ArtifactInfo{}
	}
	return c.JSON(http.StatusOK, infos)
}

// httpError maps domain errors to HTTP status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotTrained):
		return echo.NewHTTPError(http.StatusConflict, "no trained model; run critic train first")
	case errors.Is(err, domain.ErrProbabilityUnsupported):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
}
