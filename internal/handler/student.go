package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jwilber99/calbright-portal-backend-seperated/internal/model"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/repository"
)

// StudentStore is the student persistence surface the handlers need.
type StudentStore interface {
	List(ctx context.Context) ([]model.Student, error)
	GetByID(ctx context.Context, id uint64) (model.Student, error)
	Create(ctx context.Context, s *model.Student) error
	Update(ctx context.Context, id uint64, p model.StudentPatch) (model.Student, error)
}

type StudentHandler struct {
	Students StudentStore
}

func NewStudentHandler(students StudentStore) *StudentHandler {
	return &StudentHandler{Students: students}
}

// studentReq binds both create and update bodies.  Pointers distinguish
// absent fields from empty ones so updates only touch what was sent.
type studentReq struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Address   *struct {
		City  *string `json:"city"`
		State *string `json:"state"`
	} `json:"address"`
	EyeColor *string `json:"eyeColor"`
}

// validateStudent checks the fields that are present.  requireName
// makes firstName mandatory (creates); updates validate only what they
// change.
func validateStudent(req studentReq, requireName bool) fieldErrors {
	errs := fieldErrors{}
	if requireName && (req.FirstName == nil || strings.TrimSpace(*req.FirstName) == "") {
		errs["firstName"] = "firstName is required"
	}
	if !requireName && req.FirstName != nil && strings.TrimSpace(*req.FirstName) == "" {
		errs["firstName"] = "firstName must not be empty"
	}
	if req.Email != nil && *req.Email != "" && !strings.Contains(*req.Email, "@") {
		errs["email"] = "email must be a valid address"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// List handles GET /students.
func (h *StudentHandler) List(c echo.Context) error {
	students, err := h.Students.List(c.Request().Context())
	if err != nil {
		log.Printf("student: list: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error fetching students"})
	}
	return c.JSON(http.StatusOK, students)
}

// Get handles GET /students/:id.
func (h *StudentHandler) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	s, err := h.Students.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Student not found"})
		}
		log.Printf("student: get %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error fetching student"})
	}
	return c.JSON(http.StatusOK, s)
}

// Create handles POST /students (admin only).
func (h *StudentHandler) Create(c echo.Context) error {
	var req studentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if errs := validateStudent(req, true); errs != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation error", "errors": errs})
	}

	s := model.Student{}
	applyStudent(&s, req)

	if err := h.Students.Create(c.Request().Context(), &s); err != nil {
		log.Printf("student: create: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error creating student"})
	}
	return c.JSON(http.StatusCreated, s)
}

// Update handles PUT /students/:id (admin only).  Provided fields are
// merged into the existing record.
func (h *StudentHandler) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	var req studentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if errs := validateStudent(req, false); errs != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation error", "errors": errs})
	}

	p := model.StudentPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		EyeColor:  req.EyeColor,
	}
	if req.Address != nil {
		p.City = req.Address.City
		p.State = req.Address.State
	}

	s, err := h.Students.Update(c.Request().Context(), id, p)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Student not found"})
		}
		log.Printf("student: update %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error updating student"})
	}
	return c.JSON(http.StatusOK, s)
}

func applyStudent(s *model.Student, req studentReq) {
	if req.FirstName != nil {
		s.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		s.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		s.Email = strings.TrimSpace(*req.Email)
	}
	if req.Address != nil {
		if req.Address.City != nil {
			s.Address.City = strings.TrimSpace(*req.Address.City)
		}
		if req.Address.State != nil {
			s.Address.State = strings.TrimSpace(*req.Address.State)
		}
	}
	if req.EyeColor != nil {
		s.EyeColor = strings.TrimSpace(*req.EyeColor)
	}
}
