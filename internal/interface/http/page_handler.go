package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/doctor-directory/internal/application"
	"github.com/oksasatya/doctor-directory/internal/domain/entity"
	"github.com/oksasatya/doctor-directory/pkg/validation"
)

const (
	addFallbackMessage  = "Failed to add doctor. Please try again."
	listFailedNotice    = "We couldn't load doctors right now. Please try again later."
	duplicateNotice     = "This form was already submitted."
	maxUploadMemory     = 8 << 20
	submissionTokenName = "submission_token"
)

// PageHandler renders the listing and add-doctor pages.
type PageHandler struct {
	Svc           *application.DoctorService
	Logger        *logrus.Logger
	HomeSlug      string
	RedirectDelay time.Duration
}

func NewPageHandler(svc *application.DoctorService, logger *logrus.Logger, homeSlug string, redirectDelay time.Duration) *PageHandler {
	if homeSlug == "" {
		homeSlug = entity.DefaultListingSlug
	}
	return &PageHandler{Svc: svc, Logger: logger, HomeSlug: homeSlug, RedirectDelay: redirectDelay}
}

type listPage struct {
	Title       string
	Slug        string
	HomeSlug    string
	City        string
	Gender      string
	Notice      string
	Doctors     []entity.Doctor
	Cities      []string
	Specialties []string
}

type addDoctorPage struct {
	HomeSlug      string
	Token         string
	Form          application.AddDoctorInput
	Errors        map[string]string
	Notice        string
	UploadEnabled bool
	Specialties   []string
	Cities        []string
}

type doctorAddedPage struct {
	HomeSlug     string
	RedirectTo   string
	DelayMillis  int64
	DelaySeconds int64
}

func (h *PageHandler) Home(c *gin.Context) {
	c.Redirect(http.StatusFound, "/doctors/"+h.HomeSlug)
}

// ListDoctors renders /doctors/:specialty. A failed fetch renders an empty list with a notice.
func (h *PageHandler) ListDoctors(c *gin.Context) {
	slug := c.Param("specialty")
	query := c.Request.URL.Query()
	page := listPage{
		Title:       entity.SpecialtyTitle(slug),
		Slug:        slug,
		HomeSlug:    h.HomeSlug,
		City:        query.Get("city"),
		Gender:      query.Get("gender"),
		Cities:      entity.Cities,
		Specialties: entity.Specialties,
	}

	res, err := h.Svc.List(c.Request.Context(), slug, query)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("slug", slug).Warn("list doctors failed")
		}
		page.Notice = listFailedNotice
		c.HTML(http.StatusOK, "doctors.tmpl", page)
		return
	}
	page.Doctors = res.Doctors
	c.HTML(http.StatusOK, "doctors.tmpl", page)
}

func (h *PageHandler) AddDoctorForm(c *gin.Context) {
	c.HTML(http.StatusOK, "add_doctor.tmpl", h.formPage(application.DefaultAddDoctorInput(), uuid.NewString()))
}

// SubmitDoctor handles the add-doctor form. On any failure the form is rendered
// again with the entered values and the same submission token.
func (h *PageHandler) SubmitDoctor(c *gin.Context) {
	in := application.DefaultAddDoctorInput()
	if err := parseForm(c); err != nil {
		page := h.formPage(in, uuid.NewString())
		page.Notice = "Could not read the submitted form."
		c.HTML(http.StatusBadRequest, "add_doctor.tmpl", page)
		return
	}
	token := c.Request.PostForm.Get(submissionTokenName)
	if _, err := uuid.Parse(token); err != nil {
		token = uuid.NewString()
	}
	if failed := validation.BindForm(&in, c.Request.PostForm); len(failed) > 0 {
		page := h.formPage(in, token)
		page.Errors = failed
		c.HTML(http.StatusUnprocessableEntity, "add_doctor.tmpl", page)
		return
	}

	if imageURL, err := h.uploadImage(c); err != nil {
		page := h.formPage(in, token)
		page.Errors = map[string]string{"image": "upload failed: " + err.Error()}
		c.HTML(http.StatusUnprocessableEntity, "add_doctor.tmpl", page)
		return
	} else if imageURL != "" {
		in.Image = imageURL
	}

	_, err := h.Svc.Submit(c.Request.Context(), in, token)
	if err == nil {
		delay := h.RedirectDelay
		c.HTML(http.StatusOK, "doctor_added.tmpl", doctorAddedPage{
			HomeSlug:     h.HomeSlug,
			RedirectTo:   "/doctors/" + h.HomeSlug,
			DelayMillis:  delay.Milliseconds(),
			DelaySeconds: int64((delay + time.Second - 1) / time.Second),
		})
		return
	}

	page := h.formPage(in, token)
	var verr *application.ValidationError
	var uerr *application.UpstreamError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		page.Errors = verr.Fields
	case errors.Is(err, application.ErrDuplicateSubmission):
		status = http.StatusConflict
		page.Notice = duplicateNotice
	case errors.As(err, &uerr):
		status = http.StatusBadGateway
		page.Notice = uerr.Message
		if page.Notice == "" {
			page.Notice = addFallbackMessage
		}
	default:
		page.Notice = addFallbackMessage
	}
	if h.Logger != nil && status != http.StatusUnprocessableEntity {
		h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Warn("add doctor failed")
	}
	c.HTML(status, "add_doctor.tmpl", page)
}

func (h *PageHandler) formPage(in application.AddDoctorInput, token string) addDoctorPage {
	return addDoctorPage{
		HomeSlug:      h.HomeSlug,
		Token:         token,
		Form:          in,
		UploadEnabled: h.Svc.GCS != nil && h.Svc.GCSBucket != "",
		Specialties:   entity.Specialties,
		Cities:        entity.Cities,
	}
}

// uploadImage stores an attached photo, if any. Returns "" when nothing was attached.
func (h *PageHandler) uploadImage(c *gin.Context) (string, error) {
	fh, err := c.FormFile("image_file")
	if err != nil || fh.Size == 0 {
		return "", nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	return h.Svc.UploadImage(c.Request.Context(), f, fh.Filename, fh.Header.Get("Content-Type"))
}

func parseForm(c *gin.Context) error {
	err := c.Request.ParseMultipartForm(maxUploadMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return c.Request.ParseForm()
	}
	return err
}
