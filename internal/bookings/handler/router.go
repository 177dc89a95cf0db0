package handler

import (
	"github.com/julienschmidt/httprouter"
)

const SlackInteractionsPath = "/api/v1/slack/interactions"

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/requests", h.Submit)
	router.GET("/api/v1/requests", h.GetAll)
	router.GET("/api/v1/requests/id/:id", h.GetByID)

	router.GET("/api/v1/availability", h.CheckAvailability)
	router.GET("/api/v1/blackout-dates", h.BlackoutDates)
	router.GET("/api/v1/customers/vip", h.VIPStatus)

	router.POST(SlackInteractionsPath, h.SlackInteraction)
}
