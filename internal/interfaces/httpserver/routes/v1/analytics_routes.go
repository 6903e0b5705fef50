package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jan-server/services/engage-api/internal/domain/analytics"
	"jan-server/services/engage-api/internal/interfaces/httpserver/handlers"
	"jan-server/services/engage-api/internal/interfaces/httpserver/requests"
	"jan-server/services/engage-api/internal/interfaces/httpserver/responses"
	"jan-server/services/engage-api/internal/utils/platformerrors"
)

// RegisterAnalyticsRoutes registers dashboard routes.
func RegisterAnalyticsRoutes(router gin.IRoutes, handler *handlers.AnalyticsHandler) {
	router.GET("/analytics/overview", analyticsOverview(handler))
	router.GET("/analytics/calls", listCalls(handler))
	router.POST("/analytics/calls", listCalls(handler))
	router.GET("/analytics/messages", listMessages(handler))
	router.POST("/analytics/messages", listMessages(handler))
	router.GET("/analytics/intents", intentDistribution(handler))
	router.POST("/analytics/record-call", recordCall(handler))
	router.POST("/analytics/record-message", recordMessage(handler))
	router.POST("/analytics/record-intent", recordIntent(handler))
}

// analyticsOverview godoc
// @Summary      Analytics overview
// @Tags         Analytics
// @Produce      json
// @Success      200 {object} responses.DataResponse{data=analytics.Overview}
// @Security     BearerAuth
// @Router       /v1/analytics/overview [get]
func analyticsOverview(handler *handlers.AnalyticsHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		overview, err := handler.Overview(c.Request.Context())
		if err != nil {
			responses.HandleError(c, err, "failed to load overview")
			return
		}
		responses.OK(c, overview)
	}
}

// listCalls godoc
// @Summary      List call records
// @Description  Filters may be sent as a JSON body (POST) or as query parameters (GET).
// @Tags         Analytics
// @Accept       json
// @Produce      json
// @Param        request body requests.AnalyticsFilter false "Filter"
// @Success      200 {object} responses.ListResponse{data=[]analytics.CallRecord}
// @Failure      400 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/analytics/calls [post]
func listCalls(handler *handlers.AnalyticsHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := bindFilter(c)
		if !ok {
			return
		}
		calls, err := handler.Calls(c.Request.Context(), filter)
		if err != nil {
			responses.HandleError(c, err, "failed to list calls")
			return
		}
		responses.List(c, calls)
	}
}

// listMessages godoc
// @Summary      List message records
// @Description  Filters may be sent as a JSON body (POST) or as query parameters (GET).
// @Tags         Analytics
// @Accept       json
// @Produce      json
// @Param        request body requests.AnalyticsFilter false "Filter"
// @Success      200 {object} responses.ListResponse{data=[]analytics.MessageRecord}
// @Failure      400 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/analytics/messages [post]
func listMessages(handler *handlers.AnalyticsHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := bindFilter(c)
		if !ok {
			return
		}
		messages, err := handler.Messages(c.Request.Context(), filter)
		if err != nil {
			responses.HandleError(c, err, "failed to list messages")
			return
		}
		responses.List(c, messages)
	}
}

// intentDistribution godoc
// @Summary      Intent distribution
// @Tags         Analytics
// @Produce      json
// @Success      200 {object} responses.DataResponse{data=[]analytics.IntentShare}
// @Security     BearerAuth
// @Router       /v1/analytics/intents [get]
func intentDistribution(handler *handlers.AnalyticsHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		shares, err := handler.Intents(c.Request.Context())
		if err != nil {
			responses.HandleError(c, err, "failed to load intents")
			return
		}
		responses.OK(c, shares)
	}
}

// recordCall godoc
// @Summary      Record call analytics
// @Tags         Analytics
// @Accept       json
// @Produce      json
// @Param        request body requests.RecordCallRequest true "Call record"
// @Success      201 {object} responses.MessageResponse
// @Failure      400 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/analytics/record-call [post]
func recordCall(handler *handlers.AnalyticsHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.RecordCallRequest
		if !bindJSON(c, &req) {
			return
		}
		if _, err := handler.RecordCall(c.Request.Context(), req.Record()); err != nil {
			responses.HandleError(c, err, "failed to record call analytics")
			return
		}
		responses.Message(c, http.StatusCreated, "Call analytics recorded")
	}
}

// recordMessage godoc
// @Summary      Record message analytics
// @Description  Message content is redacted before it is stored.
// @Tags         Analytics
// @Accept       json
// @Produce      json
// @Param        request body requests.RecordMessageRequest true "Message record"
// @Success      201 {object} responses.MessageResponse
// @Failure      400 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/analytics/record-message [post]
func recordMessage(handler *handlers.AnalyticsHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.RecordMessageRequest
		if !bindJSON(c, &req) {
			return
		}
		if _, err := handler.RecordMessage(c.Request.Context(), req.Record()); err != nil {
			responses.HandleError(c, err, "failed to record message analytics")
			return
		}
		responses.Message(c, http.StatusCreated, "Message analytics recorded")
	}
}

// recordIntent godoc
// @Summary      Record intent analytics
// @Tags         Analytics
// @Accept       json
// @Produce      json
// @Param        request body requests.RecordIntentRequest true "Intent record"
// @Success      201 {object} responses.MessageResponse
// @Failure      400 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/analytics/record-intent [post]
func recordIntent(handler *handlers.AnalyticsHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.RecordIntentRequest
		if !bindJSON(c, &req) {
			return
		}
		if _, err := handler.RecordIntent(c.Request.Context(), req.Record()); err != nil {
			responses.HandleError(c, err, "failed to record intent analytics")
			return
		}
		responses.Message(c, http.StatusCreated, "Intent analytics recorded")
	}
}

// bindFilter reads the filter from the JSON body when present, otherwise from the query string.
func bindFilter(c *gin.Context) (analytics.Filter, bool) {
	var req requests.AnalyticsFilter
	var err error
	if c.Request.ContentLength > 0 && c.ContentType() == "application/json" {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBindQuery(&req)
	}
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, requests.ValidationMessage(err))
		return analytics.Filter{}, false
	}
	filter, err := req.ToFilter()
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error())
		return analytics.Filter{}, false
	}
	return filter, true
}
