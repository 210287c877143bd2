package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"github.com/T-Watch/T-Watch-Backend/internal/service"
	"github.com/gin-gonic/gin"
)

type TrainingHandler struct {
	trainingService service.TrainingService
	results         *service.ResultCoordinator
}

func NewTrainingHandler(trainingService service.TrainingService, results *service.ResultCoordinator) *TrainingHandler {
	return &TrainingHandler{trainingService: trainingService, results: results}
}

// bindTrainingFilter reads user, coach, completed and since. since accepts
// RFC 3339 timestamps and plain dates.
func bindTrainingFilter(c *gin.Context) (repository.TrainingFilter, error) {
	filter := repository.TrainingFilter{User: c.Query("user"), Coach: c.Query("coach")}
	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("completed: %w", err)
		}
		filter.Completed = &completed
	}
	if raw := c.Query("since"); raw != "" {
		since, err := parseTime(raw)
		if err != nil {
			return filter, fmt.Errorf("since: %w", err)
		}
		filter.Since = &since
	}
	return filter, nil
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}

func bindBlockFilter(c *gin.Context) (repository.BlockFilter, error) {
	filter := repository.BlockFilter{Coach: c.Query("coach")}
	if ids, ok := c.GetQueryArray("ids"); ok {
		filter.IDs = ids
	}
	return filter, nil
}

func (h *TrainingHandler) register(r gin.IRoutes, e endpoint) {
	r.GET("/trainings", serve(e, true, http.StatusOK, bindTrainingFilter, h.trainingService.Trainings))
	r.GET("/trainings/:id", serve(e, true, http.StatusOK, bindParam("id"), h.trainingService.Training))
	r.PUT("/trainings", serve(e, true, http.StatusOK, bindJSON[domain.TrainingInput], h.trainingService.UpsertTraining))
	r.DELETE("/trainings/:id", serve(e, true, http.StatusOK, bindParam("id"), h.trainingService.DeleteTraining))
	r.POST("/trainings/results", serve(e, true, http.StatusOK, bindJSON[[]service.ResultItem], h.SubmitResults))

	r.GET("/training-blocks", serve(e, true, http.StatusOK, bindBlockFilter, h.trainingService.TrainingBlocks))
	r.PUT("/training-blocks", serve(e, true, http.StatusOK, bindJSON[domain.TrainingBlock], h.trainingService.UpsertTrainingBlock))
}

// SubmitResults is the operation behind POST /trainings/results.
func (h *TrainingHandler) SubmitResults(ctx context.Context, items []service.ResultItem) (*service.Submission, error) {
	return h.results.Submit(ctx, items)
}
