package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/railbook/rail-go/internal/calendar"
	"github.com/railbook/rail-go/internal/domain"
	redisrepo "github.com/railbook/rail-go/internal/repository/redis"
	"github.com/railbook/rail-go/internal/service"
	"github.com/railbook/rail-go/internal/service/admin"
	"github.com/railbook/rail-go/internal/service/query"
	"github.com/railbook/rail-go/internal/service/reservation"
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

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.GET("/trains/:id", handleGetTrain(svcs))
	r.GET("/trains/:id/schedule", handleGetSchedule(svcs))
	r.GET("/tickets", handleSearchTickets(svcs))
	r.GET("/transfers", handleSearchTransfer(svcs))

	r.POST("/tickets", handleBuyTicket(svcs, idem))
	r.POST("/tickets/refund", handleRefundTicket(svcs))
	r.GET("/orders", handleListOrders(svcs))

	// Admin API
	// TODO: add admin middleware
	adminGrp := r.Group("/admin")
	{
		adminGrp.POST("/trains", handleAddTrain(svcs))
		adminGrp.POST("/trains/:id/release", handleReleaseTrain(svcs))
		adminGrp.DELETE("/trains/:id", handleDeleteTrain(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Get train
// @Param    id  path  string  true  "Train ID"
// @Success  200  {object}  domain.Train
// @Failure  404  {object}  ErrorResponse
// @Router   /trains/{id} [get]
func handleGetTrain(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := svcs.Admin.GetTrain(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, t, "public, max-age=60", true)
	}
}

// @Summary  Project one run's timetable
// @Param    id    path   string  true  "Train ID"
// @Param    date  query  string  true  "mm-dd"
// @Success  200  {array}   domain.StationStop
// @Failure  404  {object}  ErrorResponse
// @Router   /trains/{id}/schedule [get]
func handleGetSchedule(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		day, ok := parseDateQuery(c, "date")
		if !ok {
			return
		}
		stops, err := svcs.Query.QueryTrain(c.Request.Context(), c.Param("id"), day)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, stops, "public, max-age=15", true)
	}
}

// @Summary  Search direct tickets
// @Param    from  query  string  true  "departure station"
// @Param    to    query  string  true  "arrival station"
// @Param    date  query  string  true  "mm-dd"
// @Param    sort  query  string  false "time|cost"
// @Success  200  {array}  domain.TicketQuote
// @Router   /tickets [get]
func handleSearchTickets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		day, ok := parseDateQuery(c, "date")
		if !ok {
			return
		}
		sortKey, err := query.ParseSortKey(c.Query("sort"))
		if err != nil {
			badRequest(c, "invalid sort")
			return
		}
		quotes, err := svcs.Query.SearchDirect(
			c.Request.Context(),
			c.Query("from"),
			c.Query("to"),
			day,
			sortKey,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, quotes, "public, max-age=15", true)
	}
}

// @Summary  Search one-transfer itinerary
// @Param    from  query  string  true  "departure station"
// @Param    to    query  string  true  "arrival station"
// @Param    date  query  string  true  "mm-dd"
// @Param    sort  query  string  false "time|cost"
// @Success  200  {object}  domain.TransferPlan
// @Failure  404  {object}  ErrorResponse
// @Router   /transfers [get]
func handleSearchTransfer(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		day, ok := parseDateQuery(c, "date")
		if !ok {
			return
		}
		sortKey, err := query.ParseSortKey(c.Query("sort"))
		if err != nil {
			badRequest(c, "invalid sort")
			return
		}
		plan, err := svcs.Query.QueryTransfer(
			c.Request.Context(),
			c.Query("from"),
			c.Query("to"),
			day,
			sortKey,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, plan, "public, max-age=15", true)
	}
}

// @Summary  Buy ticket (idempotent)
// @Param    req body  BuyTicketRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} BuyTicketResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "not enough seats / idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /tickets [post]
func handleBuyTicket(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BuyTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		day, err := calendar.DayIndex(req.Date)
		if err != nil {
			badRequest(c, "invalid date (mm-dd)")
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemBuy(req.TrainID, day, idemKey)

			if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, 60*time.Second)
			if err != nil {
				respondErr(c, err)
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

		res, err := svcs.Reservation.Buy(
			c.Request.Context(),
			req.Username,
			req.TrainID,
			day,
			req.From,
			req.To,
			req.Count,
			req.AllowQueue,
			rlKey,
		)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			if isRateLimitedErr(err) {
				c.Header("Retry-After", "60")
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: err.Error()})
				return
			}
			respondErr(c, err)
			return
		}

		resp := BuyTicketResponse{OrderID: res.Order.ID, Status: "success"}
		if res.Queued {
			resp.Status = "queue"
		} else {
			resp.TotalPrice = res.Order.Total()
		}

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Refund ticket
// @Param    req body  RefundTicketRequest true "payload"
// @Success  200 {object} RefundTicketResponse
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse
// @Router   /tickets/refund [post]
func handleRefundTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefundTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		o, err := svcs.Reservation.Refund(c.Request.Context(), req.Username, req.Ordinal)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, RefundTicketResponse{
			OrderID: o.ID,
			Status:  string(o.Status),
		})
	}
}

// @Summary  List a user's orders, most recent first
// @Param    username  query  string  true  "username"
// @Success  200  {array}  query.OrderTicket
// @Router   /orders [get]
func handleListOrders(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Query("username")
		if username == "" {
			badRequest(c, "username required")
			return
		}

		tickets, err := svcs.Query.OrderTickets(c.Request.Context(), username)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, tickets)
	}
}

// @Summary  Add train
// @Param    req body  AddTrainRequest true "payload"
// @Success  201 {object} AddTrainResponse
// @Failure  409 {object} ErrorResponse
// @Router   /admin/trains [post]
func handleAddTrain(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddTrainRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		t, err := toTrain(req)
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		if err := svcs.Admin.AddTrain(c.Request.Context(), t); err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, AddTrainResponse{TrainID: t.ID})
	}
}

// @Summary  Release train for booking
// @Param    id  path  string  true  "Train ID"
// @Success  204
// @Failure  409 {object} ErrorResponse
// @Router   /admin/trains/{id}/release [post]
func handleReleaseTrain(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svcs.Admin.ReleaseTrain(c.Request.Context(), c.Param("id")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Delete unreleased train
// @Param    id  path  string  true  "Train ID"
// @Success  204
// @Failure  409 {object} ErrorResponse
// @Router   /admin/trains/{id} [delete]
func handleDeleteTrain(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svcs.Admin.DeleteTrain(c.Request.Context(), c.Param("id")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- Helpers ---

func parseDateQuery(c *gin.Context, name string) (int, bool) {
	day, err := calendar.DayIndex(c.Query(name))
	if err != nil {
		badRequest(c, "invalid "+name+" (mm-dd)")
		return 0, false
	}
	return day, true
}

func toTrain(req AddTrainRequest) (*domain.Train, error) {
	start, err := calendar.MinuteOfDay(req.StartTime)
	if err != nil {
		return nil, err
	}
	first, err := calendar.DayIndex(req.SaleFirst)
	if err != nil {
		return nil, err
	}
	last, err := calendar.DayIndex(req.SaleLast)
	if err != nil {
		return nil, err
	}

	typ := byte('G')
	if req.Type != "" {
		typ = req.Type[0]
	}

	return &domain.Train{
		ID:            req.TrainID,
		StationNum:    len(req.Stations),
		SeatNum:       req.SeatNum,
		Stations:      req.Stations,
		Prices:        req.Prices,
		TravelTimes:   req.TravelTimes,
		StopoverTimes: req.StopoverTimes,
		StartTime:     start,
		SaleFirst:     first,
		SaleLast:      last,
		Type:          typ,
	}, nil
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func isRateLimitedErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "rate limited")
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// admin service
	case errors.Is(err, admin.ErrDuplicateTrain):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "train already exists"})
	case errors.Is(err, admin.ErrAlreadyReleased):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "train already released"})
	case errors.Is(err, admin.ErrInvalidTrain):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid train definition"})
	case errors.Is(err, admin.ErrTrainNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "train not found"})
	// query service
	case errors.Is(err, query.ErrTrainNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "train not found"})
	case errors.Is(err, query.ErrInvalidRoute):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid route"})
	case errors.Is(err, query.ErrOutOfSaleWindow):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "not on sale that day"})
	case errors.Is(err, query.ErrTransferNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no transfer found"})
	// reservation service
	case errors.Is(err, reservation.ErrTrainNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "train not found"})
	case errors.Is(err, reservation.ErrInvalidRoute):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid route"})
	case errors.Is(err, reservation.ErrOutOfSaleWindow):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "not on sale that day"})
	case errors.Is(err, reservation.ErrExceedsCapacity):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "count exceeds train capacity"})
	case errors.Is(err, reservation.ErrInsufficientSeats):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "not enough seats"})
	case errors.Is(err, reservation.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "order not found"})
	case errors.Is(err, reservation.ErrAlreadyRefunded):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "order already refunded"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
