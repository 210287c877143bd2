package api

import (
	"net/http"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"github.com/T-Watch/T-Watch-Backend/internal/service"
	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planService    service.PlanService
	messageService service.MessageService
}

func NewPlanHandler(planService service.PlanService, messageService service.MessageService) *PlanHandler {
	return &PlanHandler{planService: planService, messageService: messageService}
}

func bindMessageFilter(c *gin.Context) (repository.MessageFilter, error) {
	return repository.MessageFilter{
		From: c.Query("from"),
		To:   c.Query("to"),
		Type: domain.MessageType(c.Query("type")),
	}, nil
}

func (h *PlanHandler) register(r gin.IRoutes, e endpoint) {
	r.GET("/plans", serve(e, true, http.StatusOK, bindQuery("coach"), h.planService.Plans))
	r.PUT("/plans", serve(e, true, http.StatusOK, bindJSON[domain.Plan], h.planService.UpsertPlan))

	r.GET("/messages", serve(e, true, http.StatusOK, bindMessageFilter, h.messageService.Messages))
	r.POST("/messages", serve(e, true, http.StatusCreated, bindJSON[domain.Message], h.messageService.CreateMessage))
}
