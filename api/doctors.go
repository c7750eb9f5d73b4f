package api

import (
	"net/http"
	"strconv"

	"github.com/avemarin/clinicbook/internal/domain"
	"github.com/avemarin/clinicbook/internal/repository"
	"github.com/avemarin/clinicbook/internal/service/doctors"
	"github.com/gin-gonic/gin"
)

type DoctorHandler struct {
	service doctors.DoctorUseCase
}

type registerDoctorRequest struct {
	Email          string   `json:"email"`
	DoctorName     string   `json:"doctorName"`
	AreaOfInterest string   `json:"areaOfInterest"`
	City           string   `json:"city"`
	Address        string   `json:"address"`
	AvailableHours []string `json:"availableHours"`
}

func NewDoctorHandler(service doctors.DoctorUseCase) *DoctorHandler {
	return &DoctorHandler{service: service}
}

func (h *DoctorHandler) Register(public, authed *gin.RouterGroup) {
	public.GET("/doctors", h.search)
	authed.POST("/doctors", h.register)
	authed.POST("/approve/:doctorEmail", h.approve)
}

func (h *DoctorHandler) search(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	result, err := h.service.Search(c.Request.Context(), repository.DoctorQuery{
		AreaOfInterest: c.Query("searchTerm"),
		City:           c.Query("city"),
		DoctorName:     c.Query("doctorName"),
		Page:           page,
		Size:           size,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"doctors": result, "page": page, "size": size})
}

func (h *DoctorHandler) register(c *gin.Context) {
	var req registerDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Email == "" || req.DoctorName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and doctorName are required"})
		return
	}

	doctor := &domain.Doctor{
		Email:          req.Email,
		DoctorName:     req.DoctorName,
		AreaOfInterest: req.AreaOfInterest,
		City:           req.City,
		Address:        req.Address,
		AvailableHours: req.AvailableHours,
	}
	if err := h.service.Register(c.Request.Context(), doctor); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doctor)
}

func (h *DoctorHandler) approve(c *gin.Context) {
	if err := h.service.Approve(c.Request.Context(), c.Param("doctorEmail")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "doctor approved"})
}
