package api

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"doctor-booking/apperr"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

type API struct {
	router         *mux.Router
	db             *sql.DB
	logger         *log.Logger
	location       *time.Location
	allowedOrigins []string
	now            func() time.Time
}

type Option func(*API)

func WithLogger(logger *log.Logger) Option {
	return func(a *API) { a.logger = logger }
}

// WithLocation sets the timezone used to turn a date plus times of day into instants.
func WithLocation(loc *time.Location) Option {
	return func(a *API) { a.location = loc }
}

func WithAllowedOrigins(origins []string) Option {
	return func(a *API) { a.allowedOrigins = origins }
}

func WithClock(now func() time.Time) Option {
	return func(a *API) { a.now = now }
}

func NewAPI(db *sql.DB, opts ...Option) *API {
	a := &API{
		router:         mux.NewRouter(),
		db:             db,
		logger:         log.New(os.Stdout, "", log.LstdFlags|log.LUTC),
		location:       time.UTC,
		allowedOrigins: []string{"*"},
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *API) Router() *mux.Router {
	return a.router
}

func (a *API) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(a.allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(a.logger), handlers.PrintRecoveryStack(true))

	// Use Gorilla's built-in logging handler
	return handlers.LoggingHandler(os.Stdout, recovery(cors(a.router)))
}

type Response struct {
	Status   int    `json:"status"`
	Response any    `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (a *API) Response(w http.ResponseWriter, status int, data any) {
	a.write(w, Response{Status: status, Response: data})
}

// Error writes the failure envelope for err. Storage failures are logged
// with the request and reported with a generic message.
func (a *API) Error(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.StatusCode(err)
	if status >= http.StatusInternalServerError {
		a.logger.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	a.write(w, Response{Status: status, Error: apperr.Message(err)})
}

func (a *API) write(w http.ResponseWriter, res Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		a.logger.Printf("encode response: %v", err)
	}
}

func (a *API) RegisterRoutes() {
	a.registerRoutes(a.router.PathPrefix("/api").Subrouter())
	a.registerRoutes(a.router)
}

func (a *API) registerRoutes(r *mux.Router) {
	r.HandleFunc("/health", a.health).Methods(http.MethodGet)

	r.HandleFunc("/doctors", a.getDoctors).Methods(http.MethodGet)
	r.HandleFunc("/doctors", a.createDoctor).Methods(http.MethodPost)
	r.HandleFunc("/doctors/{id}", a.deleteDoctor).Methods(http.MethodDelete)

	r.HandleFunc("/doctors/{doctorId}/slots", a.getDoctorSlots).Methods(http.MethodGet)
	r.HandleFunc("/doctors/{doctorId}/slots", a.createSlotsForDate).Methods(http.MethodPost)
	r.HandleFunc("/slots", a.createSlot).Methods(http.MethodPost)
}
