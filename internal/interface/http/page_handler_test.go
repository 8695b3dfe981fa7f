package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Pallinder/go-randomdata"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/doctor-directory/internal/domain/entity"
)

func validForm() url.Values {
	return url.Values{
		"submission_token": {uuid.NewString()},
		"name":             {"Dr. " + randomdata.FullName(randomdata.RandomGender)},
		"specialty":        {"Cardiology"},
		"gender":           {"female"},
		"city":             {"Pune"},
		"experience":       {"12"},
		"rating":           {"4.5"},
		"image":            {"https://example.com/photo.jpg"},
		"hospital":         {"Ruby Hall Clinic"},
		"fee":              {"800"},
		"reviewCount":      {"40"},
	}
}

func postForm(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/add-doctor", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHomeRedirectsToDefaultListing(t *testing.T) {
	r := newEngine(t, newService(t, newFakeBackend(t).srv.URL))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/doctors/"+entity.DefaultListingSlug, w.Header().Get("Location"))
}

func TestListingRendersDoctors(t *testing.T) {
	fb := newFakeBackend(t)
	r := newEngine(t, newService(t, fb.srv.URL))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/doctors/cardiology?city=Pune", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dr. Meera Shah")
	assert.Contains(t, w.Body.String(), "1 doctors found")
	calls := fb.Calls()
	require.Len(t, calls, 1)
	q, err := url.ParseQuery(calls[0].RawQuery)
	require.NoError(t, err)
	assert.Equal(t, "Pune", q.Get("city"))
	assert.Equal(t, "cardiology", q.Get("specialty"))
}

func TestListingServedFromCache(t *testing.T) {
	fb := newFakeBackend(t)
	r := newEngine(t, newService(t, fb.srv.URL))

	for i := 0; i < 3; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/doctors/cardiology?city=Pune", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Len(t, fb.Calls(), 1)
}

func TestListingBackendDownShowsEmptyList(t *testing.T) {
	r := newEngine(t, newService(t, deadURL(t)))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/doctors/cardiology", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "0 doctors found")
	assert.Contains(t, w.Body.String(), `role="alert"`)
}

func TestAddDoctorFormHasToken(t *testing.T) {
	r := newEngine(t, newService(t, newFakeBackend(t).srv.URL))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/add-doctor", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="submission_token"`)
	assert.Contains(t, w.Body.String(), "General Physician")
}

func TestSubmitDoctorSuccess(t *testing.T) {
	fb := newFakeBackend(t)
	r := newEngine(t, newService(t, fb.srv.URL))
	form := validForm()

	w := serve(r, postForm(form))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Doctor has been added successfully.")
	assert.Contains(t, w.Body.String(), "1500")

	calls := fb.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/api/add-doctor", calls[0].Path)
	var sent entity.Doctor
	require.NoError(t, json.Unmarshal([]byte(calls[0].Body), &sent))
	assert.Equal(t, form.Get("name"), sent.Name)
	assert.Equal(t, 800, sent.Fee)
	assert.InDelta(t, 4.5, sent.Rating, 0.001)
}

func TestSubmitDoctorInvalidMakesNoCall(t *testing.T) {
	fb := newFakeBackend(t)
	r := newEngine(t, newService(t, fb.srv.URL))

	cases := map[string]func(url.Values){
		"missing name":     func(f url.Values) { f.Del("name") },
		"rating above 5":   func(f url.Values) { f.Set("rating", "7") },
		"negative fee":     func(f url.Values) { f.Set("fee", "-1") },
		"unknown city":     func(f url.Values) { f.Set("city", "Atlantis") },
		"non numeric fee":  func(f url.Values) { f.Set("fee", "lots") },
		"image not an url": func(f url.Values) { f.Set("image", "photo") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			form := validForm()
			mutate(form)
			w := serve(r, postForm(form))
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Contains(t, w.Body.String(), "Ruby Hall Clinic")
		})
	}
	assert.Empty(t, fb.Calls())
}

func TestSubmitDoctorNonNumericFieldKeepsForm(t *testing.T) {
	fb := newFakeBackend(t)
	r := newEngine(t, newService(t, fb.srv.URL))
	form := validForm()
	form.Set("experience", "ten")

	w := serve(r, postForm(form))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Experience must be a number")
	assert.Contains(t, body, `value="https://example.com/photo.jpg"`)
	assert.Contains(t, body, `value="800"`)
	assert.Contains(t, body, `value="40"`)
	assert.Contains(t, body, "Ruby Hall Clinic")
	assert.Contains(t, body, form.Get("submission_token"))
	assert.Empty(t, fb.Calls())
}

func TestSubmitDoctorBackendDownKeepsForm(t *testing.T) {
	r := newEngine(t, newService(t, deadURL(t)))
	form := validForm()

	w := serve(r, postForm(form))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Failed to add doctor")
	assert.Contains(t, body, "Ruby Hall Clinic")
	assert.Contains(t, body, form.Get("submission_token"))
}

func TestSubmitDoctorBackendRejects(t *testing.T) {
	fb := newFakeBackend(t)
	fb.addStatus = http.StatusBadRequest
	fb.addBody = `{"error":"Doctor already exists"}`
	r := newEngine(t, newService(t, fb.srv.URL))

	w := serve(r, postForm(validForm()))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Doctor already exists")
}

func TestSubmitDoctorDuplicateToken(t *testing.T) {
	fb := newFakeBackend(t)
	r := newEngine(t, newService(t, fb.srv.URL))
	form := validForm()

	assert.Equal(t, http.StatusOK, serve(r, postForm(form)).Code)
	assert.Equal(t, http.StatusConflict, serve(r, postForm(form)).Code)
	assert.Len(t, fb.Calls(), 1)
}

func TestSubmitInvalidatesListingCache(t *testing.T) {
	fb := newFakeBackend(t)
	r := newEngine(t, newService(t, fb.srv.URL))

	listing := func() { serve(r, httptest.NewRequest(http.MethodGet, "/doctors/cardiology", nil)) }
	listing()
	listing()
	require.Len(t, fb.Calls(), 1)

	require.Equal(t, http.StatusOK, serve(r, postForm(validForm())).Code)
	listing()

	calls := fb.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "/api/list-doctor-with-filter", calls[2].Path)
}
