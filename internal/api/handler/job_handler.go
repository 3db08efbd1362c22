package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/workhive/marketplace-api/internal/api/metrics"
	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
)

// JobHandler serves job postings and applications.
type JobHandler struct {
	jobs ports.JobService
}

func NewJobHandler(jobs ports.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// Create posts a job for the signed-in business.
//
// @Summary      Post a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        body  body      createJobRequest  true  "Job posting"
// @Success      201   {object}  envelope{data=domain.Job}
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /jobs [post]
func (h *JobHandler) Create(c echo.Context) error {
	claims, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req createJobRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	job, err := h.jobs.Create(c.Request().Context(), ports.CreateJobInput{
		BusinessID:  claims.ID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		PayRate:     req.PayRate,
	})
	if err != nil {
		return err
	}

	metrics.JobsCreatedTotal.Inc()
	return respond(c, http.StatusCreated, "Job created", job)
}

// List returns one page of jobs.
//
// @Summary      List jobs
// @Tags         jobs
// @Produce      json
// @Param        status      query     string  false  "OPEN or CLOSED"
// @Param        location    query     string  false  "Exact location"
// @Param        search      query     string  false  "Title or description contains"
// @Param        businessId  query     string  false  "Owning business"
// @Param        page        query     int     false  "Page, from 1"
// @Param        limit       query     int     false  "Page size, at most 100"
// @Success      200         {object}  envelope{data=jobPageData}
// @Failure      422         {object}  errorResponse
// @Router       /jobs [get]
func (h *JobHandler) List(c echo.Context) error {
	var q listJobsQuery
	if err := bind(c, &q); err != nil {
		return err
	}

	page, err := h.jobs.List(c.Request().Context(), q.filter())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Jobs", toJobPageData(page))
}

// Get returns one job.
//
// @Summary      Get a job
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job id"
// @Success      200  {object}  envelope{data=domain.Job}
// @Failure      404  {object}  errorResponse
// @Router       /jobs/{id} [get]
func (h *JobHandler) Get(c echo.Context) error {
	var p jobIDParam
	if err := bind(c, &p); err != nil {
		return err
	}

	job, err := h.jobs.Get(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Job", job)
}

// SetStatus opens or closes a job owned by the caller.
//
// @Summary      Open or close a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id    path      string            true  "Job id"
// @Param        body  body      jobStatusRequest  true  "Target status"
// @Success      200   {object}  envelope{data=domain.Job}
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /jobs/{id}/status [patch]
func (h *JobHandler) SetStatus(c echo.Context) error {
	claims, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req jobStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	job, err := h.jobs.SetStatus(c.Request().Context(), claims.ID, req.ID, domain.JobStatus(req.Status))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Job updated", job)
}

// Apply submits the caller's application to an open job.
//
// @Summary      Apply to a job
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      string        true  "Job id"
// @Param        body  body      applyRequest  true  "Cover letter"
// @Success      201   {object}  envelope{data=domain.Application}
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /jobs/{id}/applications [post]
func (h *JobHandler) Apply(c echo.Context) error {
	claims, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req applyRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	app, err := h.jobs.Apply(c.Request().Context(), claims.ID, req.ID, req.CoverLetter)
	if err != nil {
		return err
	}

	metrics.ApplicationsSubmittedTotal.Inc()
	return respond(c, http.StatusCreated, "Application submitted", app)
}

// ListApplications returns applications to a job owned by the caller.
//
// @Summary      Applications to a job
// @Tags         applications
// @Produce      json
// @Param        id   path      string  true  "Job id"
// @Success      200  {object}  envelope{data=[]domain.Application}
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /jobs/{id}/applications [get]
func (h *JobHandler) ListApplications(c echo.Context) error {
	claims, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var p jobIDParam
	if err := bind(c, &p); err != nil {
		return err
	}

	apps, err := h.jobs.ListApplications(c.Request().Context(), claims.ID, p.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Applications", nonNil(apps))
}

// MyApplications returns the caller's own applications.
//
// @Summary      My applications
// @Tags         applications
// @Produce      json
// @Success      200  {object}  envelope{data=[]domain.Application}
// @Failure      401  {object}  errorResponse
// @Router       /applications/me [get]
func (h *JobHandler) MyApplications(c echo.Context) error {
	claims, err := currentIdentity(c)
	if err != nil {
		return err
	}

	apps, err := h.jobs.MyApplications(c.Request().Context(), claims.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Applications", nonNil(apps))
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
