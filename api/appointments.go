package api

import (
	"net/http"
	"time"

	"github.com/avemarin/clinicbook/internal/auth"
	"github.com/avemarin/clinicbook/internal/domain"
	"github.com/avemarin/clinicbook/internal/service/appointment"
	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	service appointment.AppointmentUseCase
}

type appointmentResponse struct {
	ID             string `json:"id"`
	DoctorEmail    string `json:"doctorEmail"`
	DoctorName     string `json:"doctorName"`
	PatientEmail   string `json:"patientEmail"`
	PatientName    string `json:"patientName"`
	Day            string `json:"day"`
	Hour           string `json:"hour"`
	AreaOfInterest string `json:"areaOfInterest"`
	Status         string `json:"status"`
	VisitStatus    string `json:"visitStatus"`
	RemindersSent  int    `json:"remindersSent"`
	CreatedAt      string `json:"createdAt"`
}

type confirmRequest struct {
	ID string `json:"id"`
}

func NewAppointmentHandler(service appointment.AppointmentUseCase) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

func (h *AppointmentHandler) Register(public, authed *gin.RouterGroup) {
	public.POST("/tempAppointments", h.request)
	authed.GET("/tempAppointments", h.listMine)
	authed.DELETE("/tempAppointments/:id", h.cancel)
	authed.POST("/tempAppointments/:id/complete", h.completeVisit)
	authed.GET("/confirmedAppointments", h.listConfirmed)
	authed.POST("/appointments", h.confirm)
	authed.POST("/appointments/direct", h.book)
}

func (h *AppointmentHandler) request(c *gin.Context) {
	var req appointment.RequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appt, err := h.service.Request(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(appt))
}

func (h *AppointmentHandler) listMine(c *gin.Context) {
	appointments, err := h.service.ListByPatient(c.Request.Context(), auth.CallerEmail(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponses(appointments))
}

func (h *AppointmentHandler) cancel(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context(), c.Param("id"), auth.CallerEmail(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "appointment deleted"})
}

func (h *AppointmentHandler) completeVisit(c *gin.Context) {
	appt, err := h.service.CompleteVisit(c.Request.Context(), c.Param("id"), auth.CallerEmail(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(appt))
}

func (h *AppointmentHandler) listConfirmed(c *gin.Context) {
	appointments, err := h.service.ListConfirmed(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponses(appointments))
}

func (h *AppointmentHandler) confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "appointment id is required"})
		return
	}

	appt, err := h.service.Confirm(c.Request.Context(), req.ID, auth.CallerEmail(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(appt))
}

func (h *AppointmentHandler) book(c *gin.Context) {
	var req appointment.BookInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.PatientEmail = auth.CallerEmail(c)

	appt, err := h.service.Book(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(appt))
}

func toResponse(appt *domain.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:             appt.ID,
		DoctorEmail:    appt.DoctorEmail,
		DoctorName:     appt.DoctorName,
		PatientEmail:   appt.PatientEmail,
		PatientName:    appt.PatientName,
		Day:            appt.Day,
		Hour:           appt.Hour,
		AreaOfInterest: appt.AreaOfInterest,
		Status:         string(appt.Status),
		VisitStatus:    string(appt.VisitStatus),
		RemindersSent:  appt.RemindersSent,
		CreatedAt:      appt.CreatedAt.Format(time.RFC3339),
	}
}

func toResponses(appointments []domain.Appointment) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(appointments))
	for i := range appointments {
		out = append(out, toResponse(&appointments[i]))
	}
	return out
}
