package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fianchetto/clubtix/internal/domain"
	redisrepo "github.com/fianchetto/clubtix/internal/repository/redis"
	"github.com/fianchetto/clubtix/internal/service"
	"github.com/fianchetto/clubtix/internal/service/admin"
	"github.com/fianchetto/clubtix/internal/service/booking"
	"github.com/fianchetto/clubtix/internal/service/discounts"
	"github.com/fianchetto/clubtix/internal/service/messaging"
	"github.com/fianchetto/clubtix/internal/service/query"
	"github.com/fianchetto/clubtix/internal/service/tickets"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), MetricsMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health + metrics
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/events", handleListEvents(svcs, logger))
		api.GET("/events/:id", handleGetEvent(svcs, logger))
		api.POST("/events/:id/calculate-discounts", handleCalculateDiscounts(svcs, logger))
		api.POST("/events/:id/bookings", handleCreateBooking(svcs, idem, logger))

		api.GET("/bookings/:id", handleGetBooking(svcs, logger))
		api.PATCH("/bookings/:id/status", handleUpdateBookingStatus(svcs, logger))
		api.GET("/bookings/:id/ticket", handleDownloadTicket(svcs, logger))
		api.GET("/bookings/:id/receipt", handleDownloadReceipt(svcs, logger))

		api.GET("/bookings/:id/messages", handleListMessages(svcs, logger))
		api.POST("/bookings/:id/messages", handleSendMessage(svcs, logger))
		api.POST("/messages/:id/read", handleMarkMessageRead(svcs, logger))
	}

	// Admin-API
	// TODO: add admin middleware
	adm := r.Group("/admin")
	{
		adm.POST("/events", handleCreateEvent(svcs, logger))
		adm.PUT("/events/:id", handleUpdateEvent(svcs, logger))
		adm.GET("/events/:id/bookings", handleListBookings(svcs, logger))
		adm.POST("/events/:id/discounts", handleCreateDiscount(svcs, logger))
		adm.GET("/events/:id/discounts", handleListDiscounts(svcs, logger))
		adm.PATCH("/discounts/:id/active", handleSetDiscountActive(svcs, logger))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  List events
// @Param    limit  query  int  false  "page size"
// @Param    offset query  int  false  "offset"
// @Success  200  {array}  EventResponse
// @Router   /api/events [get]
func handleListEvents(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseIntDefault(c.Query("limit"), 100)
		offset := parseIntDefault(c.Query("offset"), 0)

		events, err := svcs.Query.ListEvents(c.Request.Context(), limit, offset)
		if err != nil {
			respondErr(c, err, logger)
			return
		}

		out := make([]EventResponse, 0, len(events))
		for i := range events {
			out = append(out, toEventResponse(&events[i]))
		}
		writeJSONWithCache(c, http.StatusOK, out, "public, max-age=30", true)
	}
}

// @Summary  Get event
// @Param    id  path  int  true  "Event ID"
// @Success  200  {object}  EventResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /api/events/{id} [get]
func handleGetEvent(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		e, err := svcs.Query.GetEvent(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err, logger)
			return
		}
		// ETag + Cache-Control 60s
		writeJSONWithCache(c, http.StatusOK, toEventResponse(e), "public, max-age=60", true)
	}
}

// @Summary  Evaluate discounts for a booking attempt
// @Param    id   path  int                        true  "Event ID"
// @Param    req  body  CalculateDiscountsRequest  true  "booking attempt"
// @Success  200  {object}  CalculateDiscountsResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /api/events/{id}/calculate-discounts [post]
func handleCalculateDiscounts(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req CalculateDiscountsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "malformed request body")
			return
		}
		if err := req.validate(); err != nil {
			badRequest(c, err.Error())
			return
		}

		participants, quantity, baseAmount, err := req.toDomain()
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		quote, err := svcs.Discounts.Calculate(
			c.Request.Context(),
			eventID,
			participants,
			baseAmount,
			quantity,
		)
		if err != nil {
			respondErr(c, err, logger)
			return
		}

		c.JSON(http.StatusOK, toQuoteResponse(quote))
	}
}

// @Summary  Create booking (idempotent)
// @Param    id   path  int                   true  "Event ID"
// @Param    req  body  CreateBookingRequest  true  "payload"
// @Header   201  {string}  Idempotency-Key  "echo"
// @Success  201  {object}  BookingResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse  "discount exhausted / idem in progress"
// @Failure  429  {object}  ErrorResponse  "rate limited"
// @Router   /api/events/{id}/bookings [post]
func handleCreateBooking(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "malformed request body")
			return
		}
		calc := CalculateDiscountsRequest{
			Participants: req.Participants,
			Quantity:     req.Quantity,
			BaseAmount:   req.BaseAmount,
		}
		if err := calc.validate(); err != nil {
			badRequest(c, err.Error())
			return
		}
		participants, quantity, baseAmount, err := calc.toDomain()
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemBooking(eventID, idemKey)

			if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, 60*time.Second)
			if err != nil {
				respondErr(c, err, logger)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		rlKey := "ip:" + c.ClientIP()

		b, err := svcs.Booking.Create(
			c.Request.Context(),
			eventID,
			req.ContactEmail,
			participants,
			baseAmount,
			quantity,
			rlKey,
		)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			if isRateLimitedErr(err) {
				c.Header("Retry-After", "60")
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
				return
			}
			respondErr(c, err, logger)
			return
		}

		resp := toBookingResponse(b)

		if idemStorageKey != "" && idem != nil {
			payload, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(payload))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Get booking with participants
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200  {object}  BookingResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /api/bookings/{id} [get]
func handleGetBooking(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		b, err := svcs.Query.GetBooking(c.Request.Context(), bookingID)
		if err != nil {
			respondErr(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, toBookingResponse(b))
	}
}

// @Summary  Update booking status
// @Param    id   path  string                      true  "Booking ID (uuid)"
// @Param    req  body  UpdateBookingStatusRequest  true  "payload"
// @Success  204
// @Failure  409  {object}  ErrorResponse  "transition not allowed"
// @Router   /api/bookings/{id}/status [patch]
func handleUpdateBookingStatus(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req UpdateBookingStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "malformed request body")
			return
		}
		status := domain.BookingStatus(req.Status)
		switch status {
		case domain.BookingPending, domain.BookingConfirmed,
			domain.BookingVerified, domain.BookingCancelled:
		default:
			badRequest(c, "unknown status")
			return
		}
		if err := svcs.Booking.SetStatus(c.Request.Context(), bookingID, status); err != nil {
			respondErr(c, err, logger)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Download entry ticket
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200  {file}  binary
// @Produce  application/pdf
// @Router   /api/bookings/{id}/ticket [get]
func handleDownloadTicket(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		doc, err := svcs.Tickets.Ticket(c.Request.Context(), bookingID)
		if err != nil {
			respondErr(c, err, logger)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="ticket-`+bookingID.String()+`.pdf"`)
		c.Data(http.StatusOK, "application/pdf", doc)
	}
}

// @Summary  Download receipt
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200  {file}  binary
// @Produce  application/pdf
// @Router   /api/bookings/{id}/receipt [get]
func handleDownloadReceipt(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		doc, err := svcs.Tickets.Receipt(c.Request.Context(), bookingID)
		if err != nil {
			respondErr(c, err, logger)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="receipt-`+bookingID.String()+`.pdf"`)
		c.Data(http.StatusOK, "application/pdf", doc)
	}
}

// @Summary  List booking messages
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200  {array}  MessageResponse
// @Router   /api/bookings/{id}/messages [get]
func handleListMessages(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		msgs, err := svcs.Messaging.Thread(c.Request.Context(), bookingID)
		if err != nil {
			respondErr(c, err, logger)
			return
		}
		out := make([]MessageResponse, 0, len(msgs))
		for i := range msgs {
			out = append(out, toMessageResponse(&msgs[i]))
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Send message
// @Param    id   path  string              true  "Booking ID (uuid)"
// @Param    req  body  SendMessageRequest  true  "payload"
// @Success  201  {object}  SendMessageResponse
// @Router   /api/bookings/{id}/messages [post]
func handleSendMessage(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "malformed request body")
			return
		}
		id, err := svcs.Messaging.Send(
			c.Request.Context(),
			bookingID,
			domain.MessageSender(req.Sender),
			req.Body,
		)
		if err != nil {
			respondErr(c, err, logger)
			return
		}
		c.JSON(http.StatusCreated, SendMessageResponse{MessageID: id})
	}
}

// @Summary  Mark message read
// @Param    id  path  int  true  "Message ID"
// @Success  204
// @Router   /api/messages/{id}/read [post]
func handleMarkMessageRead(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		messageID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		if err := svcs.Messaging.MarkRead(c.Request.Context(), messageID); err != nil {
			respondErr(c, err, logger)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Create event
// @Param    req  body  CreateEventRequest  true  "payload"
// @Success  201  {object}  CreateEventResponse
// @Router   /admin/events [post]
func handleCreateEvent(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "malformed request body")
			return
		}
		starts, err := parseRFC3339(req.StartsAt)
		if err != nil {
			badRequest(c, "invalid startsAt (RFC3339)")
			return
		}
		ends, err := parseRFC3339(req.EndsAt)
		if err != nil {
			badRequest(c, "invalid endsAt (RFC3339)")
			return
		}
		id, err := svcs.Admin.CreateEvent(c.Request.Context(), &domain.Event{
			Title:    req.Title,
			Location: req.Location,
			Starts:   starts,
			Ends:     ends,
		})
		if err != nil {
			respondErr(c, err, logger)
			return
		}
		c.JSON(http.StatusCreated, CreateEventResponse{EventID: id})
	}
}

// @Summary  Update event
// @Param    id   path  int                 true  "Event ID"
// @Param    req  body  UpdateEventRequest  true  "payload"
// @Success  204
// @Router   /admin/events/{id} [put]
func handleUpdateEvent(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req UpdateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "malformed request body")
			return
		}
		starts, err := parseRFC3339(req.StartsAt)
		if err != nil {
			badRequest(c, "invalid startsAt (RFC3339)")
			return
		}
		ends, err := parseRFC3339(req.EndsAt)
		if err != nil {
			badRequest(c, "invalid endsAt (RFC3339)")
			return
		}
		if err := svcs.Admin.UpdateEvent(c.Request.Context(), &domain.Event{
			ID:       eventID,
			Title:    req.Title,
			Location: req.Location,
			Starts:   starts,
			Ends:     ends,
		}); err != nil {
			respondErr(c, err, logger)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  List event bookings
// @Param    id      path   int     true   "Event ID"
// @Param    status  query  string  false  "comma-separated statuses"
// @Success  200  {array}  BookingResponse
// @Router   /admin/events/{id}/bookings [get]
func handleListBookings(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var statuses []domain.BookingStatus
		if raw := c.Query("status"); raw != "" {
			for _, s := range strings.Split(raw, ",") {
				statuses = append(statuses, domain.BookingStatus(strings.TrimSpace(s)))
			}
		}
		bookings, err := svcs.Query.ListBookings(c.Request.Context(), eventID, statuses)
		if err != nil {
			respondErr(c, err, logger)
			return
		}
		out := make([]BookingResponse, 0, len(bookings))
		for i := range bookings {
			out = append(out, toBookingResponse(&bookings[i]))
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Create discount
// @Param    id   path  int                    true  "Event ID"
// @Param    req  body  CreateDiscountRequest  true  "payload"
// @Success  201  {object}  CreateDiscountResponse
// @Failure  400  {object}  ErrorResponse
// @Router   /admin/events/{id}/discounts [post]
func handleCreateDiscount(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req CreateDiscountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "malformed request body")
			return
		}
		d, err := toDiscount(eventID, &req)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		id, err := svcs.Admin.CreateDiscount(c.Request.Context(), d)
		if err != nil {
			respondErr(c, err, logger)
			return
		}
		c.JSON(http.StatusCreated, CreateDiscountResponse{DiscountID: id})
	}
}

// @Summary  List event discounts
// @Param    id  path  int  true  "Event ID"
// @Success  200  {array}  DiscountResponse
// @Router   /admin/events/{id}/discounts [get]
func handleListDiscounts(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		list, err := svcs.Admin.ListDiscounts(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err, logger)
			return
		}
		out := make([]DiscountResponse, 0, len(list))
		for i := range list {
			out = append(out, toDiscountResponse(&list[i]))
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Activate or deactivate discount
// @Param    id   path  int                       true  "Discount ID"
// @Param    req  body  SetDiscountActiveRequest  true  "payload"
// @Success  204
// @Router   /admin/discounts/{id}/active [patch]
func handleSetDiscountActive(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		discountID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req SetDiscountActiveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "malformed request body")
			return
		}
		if err := svcs.Admin.SetDiscountActive(c.Request.Context(), discountID, *req.Active); err != nil {
			respondErr(c, err, logger)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return v, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func isRateLimitedErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "rate limited")
}

// respondErr maps service sentinels to HTTP statuses. Anything unmapped is a
// 500 with a generic body; the cause goes to the log only.
func respondErr(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// discounts service
	case errors.Is(err, discounts.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	// booking service
	case errors.Is(err, booking.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
		return
	case errors.Is(err, booking.ErrBookingConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "booking conflict"})
		return
	case errors.Is(err, booking.ErrDiscountExhausted):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "discount usage cap exhausted"})
		return
	case errors.Is(err, booking.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "status transition not allowed"})
		return
	// query service
	case errors.Is(err, query.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, query.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
		return
	// admin service
	case errors.Is(err, admin.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, admin.ErrEventConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "event conflict"})
		return
	case errors.Is(err, admin.ErrDiscountNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "discount not found"})
		return
	case errors.Is(err, admin.ErrInvalidDiscount):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	// messaging service
	case errors.Is(err, messaging.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
		return
	case errors.Is(err, messaging.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "message not found"})
		return
	case errors.Is(err, messaging.ErrEmptyBody):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message body is empty"})
		return
	// tickets service
	case errors.Is(err, tickets.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
		return
	}

	if logger != nil {
		logger.Error("request failed", "error", err)
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
