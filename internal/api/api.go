package api

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.lumeweb.com/checkout-bridge/internal/config"
	"go.lumeweb.com/checkout-bridge/service"
	"go.uber.org/zap"
)

const apiName = "checkout"

// maxWebhookBody bounds how much of a webhook request is read.
const maxWebhookBody = 1 << 20

//go:embed templates/*.html
var templates embed.FS

type API struct {
	orders   service.OrderService
	webhooks service.WebhookService
	cfg      config.ServerConfig
	logger   *zap.Logger
	pages    *template.Template
}

func NewAPI(orders service.OrderService, webhooks service.WebhookService, cfg config.ServerConfig, logger *zap.Logger) (*API, error) {
	pages, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &API{
		orders:   orders,
		webhooks: webhooks,
		cfg:      cfg,
		logger:   logger,
		pages:    pages,
	}, nil
}

func (a *API) Name() string {
	return apiName
}

func (a *API) Configure(router *mux.Router) error {
	router.HandleFunc("/", a.checkoutPage).Methods("GET")
	router.HandleFunc("/health", a.health).Methods("GET")
	router.HandleFunc("/create_order", a.createOrder).Methods("POST")
	router.HandleFunc("/pay", a.pay).Methods("POST")
	router.HandleFunc("/payment_webhook", a.paymentWebhook).Methods("POST")
	router.HandleFunc(config.CallbackPath, a.paymentWebhook).Methods("POST")
	router.HandleFunc(config.PaymentReturnPath, a.paymentReturn).Methods("GET", "POST")

	return nil
}

// Handler returns the routed API wrapped in request logging and CORS.
func (a *API) Handler() (http.Handler, error) {
	router := mux.NewRouter()
	router.Use(requestLogger(a.logger))

	if err := a.Configure(router); err != nil {
		return nil, err
	}

	c := cors.New(cors.Options{
		AllowedOrigins: a.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         86400,
	})

	return c.Handler(router), nil
}
