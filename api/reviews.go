package api

import (
	"net/http"

	"github.com/avemarin/clinicbook/internal/auth"
	"github.com/avemarin/clinicbook/internal/domain"
	"github.com/avemarin/clinicbook/internal/service/review"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	service review.ReviewUseCase
}

type submitReviewRequest struct {
	AppointmentID string `json:"appointmentId"`
	PatientEmail  string `json:"patientEmail"`
	DoctorName    string `json:"doctorName"`
	ReviewText    string `json:"reviewText"`
	Rating        int    `json:"rating"`
}

func NewReviewHandler(service review.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func (h *ReviewHandler) Register(public, authed *gin.RouterGroup) {
	public.GET("/reviews/:doctorName", h.listByDoctor)
	authed.POST("/reviews", h.submit)
}

func (h *ReviewHandler) submit(c *gin.Context) {
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rv := &domain.Review{
		AppointmentID: req.AppointmentID,
		PatientEmail:  req.PatientEmail,
		DoctorName:    req.DoctorName,
		ReviewText:    req.ReviewText,
		Rating:        req.Rating,
	}
	if err := h.service.Submit(c.Request.Context(), rv, auth.CallerEmail(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rv)
}

func (h *ReviewHandler) listByDoctor(c *gin.Context) {
	reviews, err := h.service.ListByDoctor(c.Request.Context(), c.Param("doctorName"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}
