package api_test

import (
	"net/http"
	"testing"

	"github.com/avemarin/clinicbook/internal/domain"
	"github.com/avemarin/clinicbook/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSearchDoctors_PublicWithFilters(t *testing.T) {
	env := newTestEnv(t)
	expected := repository.DoctorQuery{AreaOfInterest: "Cardiology", City: "Ankara", DoctorName: "House", Page: 2, Size: 5}
	env.doctors.On("Search", mock.Anything, expected).
		Return([]domain.Doctor{{Email: "d@x.com", DoctorName: "House"}}, nil).Once()

	rec := env.do(t, http.MethodGet, "/api/doctors?searchTerm=Cardiology&city=Ankara&doctorName=House&page=2&size=5", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "House")
	env.doctors.AssertExpectations(t)
}

func TestSearchDoctors_DefaultsPagination(t *testing.T) {
	env := newTestEnv(t)
	env.doctors.On("Search", mock.Anything, repository.DoctorQuery{Page: 1, Size: 20}).
		Return([]domain.Doctor{}, nil).Once()

	rec := env.do(t, http.MethodGet, "/api/doctors", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.doctors.AssertExpectations(t)
}

func TestRegisterDoctor(t *testing.T) {
	env := newTestEnv(t)
	env.doctors.On("Register", mock.Anything, mock.MatchedBy(func(d *domain.Doctor) bool {
		return d.Email == "d@x.com" && d.DoctorName == "House" && len(d.AvailableHours) == 2
	})).Return(nil).Once()

	body := map[string]interface{}{
		"email":          "d@x.com",
		"doctorName":     "House",
		"areaOfInterest": "Cardiology",
		"city":           "Ankara",
		"availableHours": []string{"10:00", "11:00"},
	}
	rec := env.do(t, http.MethodPost, "/api/doctors", "d@x.com", body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	env.doctors.AssertExpectations(t)
}

func TestRegisterDoctor_MissingName(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/doctors", "d@x.com", map[string]string{"email": "d@x.com"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env.doctors.AssertNotCalled(t, "Register")
}

func TestRegisterDoctor_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/doctors", "", map[string]string{"email": "d@x.com", "doctorName": "House"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApproveDoctor(t *testing.T) {
	env := newTestEnv(t)
	env.doctors.On("Approve", mock.Anything, "d@x.com").Return(nil).Once()

	rec := env.do(t, http.MethodPost, "/api/approve/d@x.com", "admin@x.com", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.doctors.AssertExpectations(t)
}

func TestApproveDoctor_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.doctors.On("Approve", mock.Anything, "missing@x.com").Return(domain.ErrDoctorNotFound).Once()

	rec := env.do(t, http.MethodPost, "/api/approve/missing@x.com", "admin@x.com", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
