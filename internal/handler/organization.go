package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kofiadjei/robolab-api/internal/repository"
)

// OrgHandler manages the organizational registry: companies, their
// departments, employees and the faculty roster built on top of
// employees. All mutations run behind the admin role.
type OrgHandler struct {
	Companies   *repository.CompanyRepo
	Departments *repository.DepartmentRepo
	Employees   *repository.EmployeeRepo
	Faculties   *repository.FacultyRepo
}

func NewOrgHandler(co *repository.CompanyRepo, d *repository.DepartmentRepo, e *repository.EmployeeRepo, f *repository.FacultyRepo) *OrgHandler {
	return &OrgHandler{Companies: co, Departments: d, Employees: e, Faculties: f}
}

// ----- companies -----

type companyReq struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (h *OrgHandler) CreateCompany(c echo.Context) error {
	var req companyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	company, err := h.Companies.Create(ctx, name, strings.TrimSpace(req.Location))
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "company name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create company"})
	}
	return c.JSON(http.StatusCreated, company)
}

func (h *OrgHandler) GetCompany(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	company, err := h.Companies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, company)
}

func (h *OrgHandler) ListCompanies(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Companies.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *OrgHandler) UpdateCompany(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req companyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Companies.Update(ctx, id, name, strings.TrimSpace(req.Location)); err != nil {
		switch {
		case errors.Is(err, repository.ErrCompanyNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "company name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	company, _ := h.Companies.GetByID(ctx, id)
	return c.JSON(http.StatusOK, company)
}

func (h *OrgHandler) DeleteCompany(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Companies.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrCompanyNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "company still has departments"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- departments -----

type departmentReq struct {
	CompanyID uint64 `json:"company_id"`
	Name      string `json:"name"`
}

func (h *OrgHandler) CreateDepartment(c echo.Context) error {
	var req departmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || req.CompanyID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and company_id are required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Companies.GetByID(ctx, req.CompanyID); err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	dep, err := h.Departments.Create(ctx, req.CompanyID, name)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "department already exists in company"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create department"})
	}
	return c.JSON(http.StatusCreated, dep)
}

func (h *OrgHandler) GetDepartment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	dep, err := h.Departments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDepartmentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "department not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, dep)
}

// ListDepartments supports an optional ?company_id= filter.
func (h *OrgHandler) ListDepartments(c echo.Context) error {
	var companyID uint64
	if raw := c.QueryParam("company_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid company_id"})
		}
		companyID = n
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Departments.List(ctx, companyID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *OrgHandler) UpdateDepartment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req departmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Departments.Update(ctx, id, name); err != nil {
		switch {
		case errors.Is(err, repository.ErrDepartmentNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "department not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "department already exists in company"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	dep, _ := h.Departments.GetByID(ctx, id)
	return c.JSON(http.StatusOK, dep)
}

func (h *OrgHandler) DeleteDepartment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Departments.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrDepartmentNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "department not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "department still has employees"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- employees -----

type employeeReq struct {
	DepartmentID uint64 `json:"department_id"`
	UserID       uint64 `json:"user_id"` // optional login account link
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Position     string `json:"position"`
}

func (h *OrgHandler) CreateEmployee(c echo.Context) error {
	var req employeeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	if first == "" || last == "" || req.DepartmentID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name, last_name and department_id are required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Departments.GetByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, repository.ErrDepartmentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "department not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	emp, err := h.Employees.Create(ctx, req.DepartmentID, req.UserID, first, last, strings.TrimSpace(req.Position))
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "user is already linked to an employee"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create employee"})
	}
	return c.JSON(http.StatusCreated, emp)
}

func (h *OrgHandler) GetEmployee(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	emp, err := h.Employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, emp)
}

// ListEmployees supports an optional ?department_id= filter.
func (h *OrgHandler) ListEmployees(c echo.Context) error {
	var departmentID uint64
	if raw := c.QueryParam("department_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid department_id"})
		}
		departmentID = n
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Employees.List(ctx, departmentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *OrgHandler) UpdateEmployee(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req employeeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	if first == "" || last == "" || req.DepartmentID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name, last_name and department_id are required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Employees.Update(ctx, id, req.DepartmentID, first, last, strings.TrimSpace(req.Position)); err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	emp, _ := h.Employees.GetByID(ctx, id)
	return c.JSON(http.StatusOK, emp)
}

func (h *OrgHandler) DeleteEmployee(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Employees.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmployeeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "employee is still referenced"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- faculties -----

type facultyReq struct {
	EmployeeID uint64 `json:"employee_id"`
	LabAdmin   bool   `json:"lab_admin"`
}

func (h *OrgHandler) CreateFaculty(c echo.Context) error {
	var req facultyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.EmployeeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "employee_id is required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Employees.GetByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	fac, err := h.Faculties.Create(ctx, req.EmployeeID, req.LabAdmin)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "employee is already a faculty member"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create faculty"})
	}
	return c.JSON(http.StatusCreated, fac)
}

func (h *OrgHandler) GetFaculty(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	fac, err := h.Faculties.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrFacultyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "faculty not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, fac)
}

func (h *OrgHandler) ListFaculties(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Faculties.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *OrgHandler) UpdateFaculty(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req facultyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Faculties.SetLabAdmin(ctx, id, req.LabAdmin); err != nil {
		if errors.Is(err, repository.ErrFacultyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "faculty not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	fac, _ := h.Faculties.GetByID(ctx, id)
	return c.JSON(http.StatusOK, fac)
}

func (h *OrgHandler) DeleteFaculty(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Faculties.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrFacultyNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "faculty not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "faculty has appointments"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
