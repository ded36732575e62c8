package http

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/camp-booking-backend/internal/booking"
	"github.com/nekogravitycat/camp-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/camp-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/camp-booking-backend/internal/report"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sub, err := body.toSubmission()
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), sub)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateBookingResponse{BookingID: b.ID, Pricing: b.Pricing})
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	req.Normalize(10)

	isPaid := true
	if req.IsPaid != nil {
		isPaid = *req.IsPaid
	}

	filter := booking.Filter{
		Search:   req.Search,
		Location: req.Location,
		IsPaid:   &isPaid,
		Page:     req.Page,
		Limit:    req.Limit,
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, NewBookingResponse(b))
	}

	c.JSON(http.StatusOK, ListBookingsResponse{
		Bookings:   items,
		Pagination: response.NewPagination(req.Page, req.Limit, total),
	})
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Export(c *gin.Context) {
	var req ExportBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	filter, err := req.toFilter()
	if err != nil {
		response.Error(c, err)
		return
	}

	bookings, err := h.service.ListForExport(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteBookingsXLSX(&buf, bookings); err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handler) Receipt(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !b.IsPaid {
		response.Error(c, booking.ErrNotPaid)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteReceiptPDF(&buf, b); err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt-%s.pdf"`, b.ID))
	c.Data(http.StatusOK, pdfContentType, buf.Bytes())
}

func (h *Handler) GetDateConstraints(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		response.Error(c, booking.ErrDateRequired)
		return
	}
	date, err := parseBookingDate(raw)
	if err != nil {
		response.Error(c, err)
		return
	}

	av, err := h.service.Availability(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewDateConstraintsResponse(av))
}

func (h *Handler) RebuildDateConstraints(c *gin.Context) {
	var body RebuildDateLockBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.Date == "" || body.Location == "" || body.Tents == 0 {
		response.Error(c, booking.ErrConstraintFields)
		return
	}

	date, err := parseBookingDate(body.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	loc, ok := booking.ParseLocation(body.Location)
	if !ok {
		response.Error(c, booking.ErrInvalidLocation)
		return
	}

	lock, err := h.service.RebuildDateLock(c.Request.Context(), date, loc)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, RebuildDateLockResponse{
		Success:           true,
		LockedLocation:    string(lock.LockedLocation),
		TotalTents:        lock.TotalTents,
		RemainingCapacity: booking.MaxTentsPerDate - lock.TotalTents,
	})
}
