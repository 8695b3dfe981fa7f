package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/doctor-directory/internal/application"
	"github.com/oksasatya/doctor-directory/internal/infrastructure/backend"
	"github.com/oksasatya/doctor-directory/internal/infrastructure/cache"
	"github.com/oksasatya/doctor-directory/web"
)

func init() { gin.SetMode(gin.TestMode) }

type backendCall struct {
	Method   string
	Path     string
	RawQuery string
	Body     string
}

// fakeBackend records every request and answers with the configured handler.
type fakeBackend struct {
	mu    sync.Mutex
	calls []backendCall
	srv   *httptest.Server

	addStatus  int
	addBody    string
	listStatus int
	listBody   string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{
		addStatus:  http.StatusCreated,
		addBody:    `{"_id":"abc123","message":"Doctor added"}`,
		listStatus: http.StatusOK,
		listBody:   `[{"_id":"d1","name":"Dr. Meera Shah","specialty":"Cardiology","city":"Pune","gender":"female","experience":12,"rating":4.6,"fee":800,"reviewCount":40}]`,
	}
	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		fb.mu.Lock()
		fb.calls = append(fb.calls, backendCall{Method: r.Method, Path: r.URL.Path, RawQuery: r.URL.RawQuery, Body: string(b)})
		fb.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/add-doctor":
			w.WriteHeader(fb.addStatus)
			_, _ = io.WriteString(w, fb.addBody)
		case "/api/list-doctor-with-filter":
			w.WriteHeader(fb.listStatus)
			_, _ = io.WriteString(w, fb.listBody)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) Calls() []backendCall {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]backendCall(nil), fb.calls...)
}

func newService(t *testing.T, baseURL string) *application.DoctorService {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	gw := backend.NewClient(baseURL, 2*time.Second, nil)
	return application.NewDoctorService(gw, cache.NewListCache(rdb, time.Minute), cache.NewSubmitLocks(rdb, time.Minute), nil)
}

func newEngine(t *testing.T, svc *application.DoctorService) *gin.Engine {
	t.Helper()
	tmpl, err := web.LoadTemplates()
	require.NoError(t, err)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)

	pages := NewPageHandler(svc, nil, "", 1500*time.Millisecond)
	r.GET("/", pages.Home)
	r.GET("/doctors/:specialty", pages.ListDoctors)
	r.GET("/add-doctor", pages.AddDoctorForm)
	r.POST("/add-doctor", pages.SubmitDoctor)

	proxy := NewProxyHandler(svc, nil)
	r.POST("/api/add-doctor", proxy.AddDoctor)
	r.GET("/api/list-doctor-with-filter", proxy.ListDoctors)

	search := NewSearchHandler(svc, nil)
	r.GET("/api/doctors/search", search.Search)
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// deadURL returns the address of a server that is already closed.
func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()
	return u
}
