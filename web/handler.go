package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nomadguide/model"
	"nomadguide/report"
	"nomadguide/service"
)

type handler struct {
	svc *service.Service
}

func (h *handler) listTrips(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		badRequest(c, "userId is required")
		return
	}
	trips, err := h.svc.ListTrips(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}

func (h *handler) createTrip(c *gin.Context) {
	var in model.Trip
	if !bindJSON(c, &in) {
		return
	}
	trip, err := h.svc.CreateTrip(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

func (h *handler) getTrip(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	trip, err := h.svc.GetTrip(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *handler) updateTrip(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in model.Trip
	if !bindJSON(c, &in) {
		return
	}
	in.ID = id
	trip, err := h.svc.UpdateTrip(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *handler) activateTrip(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	trip, err := h.svc.ActivateTrip(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *handler) deleteTrip(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteTrip(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) listTransactions(c *gin.Context) {
	tripID, ok := paramID(c, "id")
	if !ok {
		return
	}
	txType := model.TransactionType(c.Query("type"))
	if txType != "" && !txType.Valid() {
		badRequest(c, "type must be income or outcome")
		return
	}
	txs, err := h.svc.ListTransactions(c.Request.Context(), tripID, txType)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

func (h *handler) createTransaction(c *gin.Context) {
	tripID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in model.Transaction
	if !bindJSON(c, &in) {
		return
	}
	in.TripID = tripID
	tx, err := h.svc.CreateTransaction(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *handler) updateTransaction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in model.Transaction
	if !bindJSON(c, &in) {
		return
	}
	in.ID = id
	tx, err := h.svc.UpdateTransaction(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *handler) deleteTransaction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteTransaction(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) listRecurring(c *gin.Context) {
	tripID, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.svc.ListRecurring(c.Request.Context(), tripID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *handler) createRecurring(c *gin.Context) {
	tripID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in model.RecurringTransaction
	if !bindJSON(c, &in) {
		return
	}
	in.TripID = tripID
	r, err := h.svc.CreateRecurring(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *handler) updateRecurring(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in model.RecurringTransaction
	if !bindJSON(c, &in) {
		return
	}
	in.ID = id
	r, err := h.svc.UpdateRecurring(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *handler) deleteRecurring(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteRecurring(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) listCategories(c *gin.Context) {
	tripID, ok := paramID(c, "id")
	if !ok {
		return
	}
	categories, err := h.svc.ListCategories(c.Request.Context(), tripID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *handler) createCategory(c *gin.Context) {
	tripID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in model.Category
	if !bindJSON(c, &in) {
		return
	}
	in.TripID = tripID
	category, err := h.svc.CreateCategory(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *handler) updateCategory(c *gin.Context) {
	tripID, ok := paramID(c, "id")
	if !ok {
		return
	}
	id, ok := paramID(c, "categoryId")
	if !ok {
		return
	}
	var in model.Category
	if !bindJSON(c, &in) {
		return
	}
	in.ID = id
	category, err := h.svc.UpdateCategory(c.Request.Context(), tripID, in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *handler) deleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteCategory(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) summary(c *gin.Context) {
	tripID, ok := paramID(c, "id")
	if !ok {
		return
	}
	s, err := h.svc.Summary(c.Request.Context(), tripID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// tripReport adapts a per-trip report function to a handler.
func tripReport[T any](fn func(c *gin.Context, tripID uuid.UUID) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		tripID, ok := paramID(c, "id")
		if !ok {
			return
		}
		out, err := fn(c, tripID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return n
}

func (h *handler) overview(c *gin.Context) {
	ov, err := h.svc.Overview(c.Request.Context(), c.Param("userId"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

func (h *handler) rates(c *gin.Context) {
	refresh, _ := strconv.ParseBool(c.Query("refresh"))
	c.JSON(http.StatusOK, h.svc.Rates(c.Request.Context(), refresh))
}

func (h *handler) quote(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		badRequest(c, "invalid amount")
		return
	}
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		badRequest(c, "from and to are required")
		return
	}
	conv, res, err := h.svc.Quote(c.Request.Context(), amount, from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"conversion": conv,
		"success":    res.Success,
		"stale":      res.Stale,
		"updatedAt":  res.Table.UpdatedAt,
	})
}

func (h *handler) categoryReport(c *gin.Context, tripID uuid.UUID) ([]report.CategoryTotal, error) {
	return h.svc.CategoryReport(c.Request.Context(), tripID)
}

func (h *handler) dailyReport(c *gin.Context, tripID uuid.UUID) (*service.DailyReport, error) {
	return h.svc.DailyReport(c.Request.Context(), tripID)
}

func (h *handler) weeklyReport(c *gin.Context, tripID uuid.UUID) ([]report.WeekPoint, error) {
	return h.svc.WeeklyReport(c.Request.Context(), tripID, queryInt(c, "weeks"))
}

func (h *handler) monthlyReport(c *gin.Context, tripID uuid.UUID) ([]report.MonthPoint, error) {
	return h.svc.MonthlyReport(c.Request.Context(), tripID, queryInt(c, "months"))
}

func (h *handler) currencyReport(c *gin.Context, tripID uuid.UUID) ([]report.CurrencyTotal, error) {
	return h.svc.CurrencyReport(c.Request.Context(), tripID)
}
