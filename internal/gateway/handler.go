// Package gateway serves the invoice form gate behind API Gateway.
package gateway

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/ginjaninja78/invoice-form-gate/internal/config"
	"github.com/ginjaninja78/invoice-form-gate/internal/form"
	"github.com/ginjaninja78/invoice-form-gate/internal/formparser"
	"github.com/ginjaninja78/invoice-form-gate/internal/httpx"
	"github.com/ginjaninja78/invoice-form-gate/internal/i18n"
	"github.com/ginjaninja78/invoice-form-gate/internal/notify"
)

// App holds the state shared by every invocation.
type App struct {
	cfg      *config.MainConfig
	log      *zap.Logger
	catalogs map[string]*i18n.Catalog
}

// New loads one catalog per known locale so requests never touch disk.
func New(cfg *config.MainConfig, log *zap.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	base, err := i18n.New(cfg.Locale, cfg.LocalesDir)
	if err != nil {
		return nil, err
	}
	catalogs := map[string]*i18n.Catalog{"": base}
	for _, l := range base.Locales() {
		c, err := i18n.New(l, cfg.LocalesDir)
		if err != nil {
			return nil, err
		}
		catalogs[l] = c
	}
	return &App{cfg: cfg, log: log, catalogs: catalogs}, nil
}

// rejection is the 422 body.
type rejection struct {
	Notification notify.Notification `json:"notification"`
}

// Handle validates the posted form and answers with its payload.
//
//	200 payload
//	400 malformed body or unknown locale
//	405 anything but POST
//	422 {"notification": ...} when the form is rejected
func (a *App) Handle(_ context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	log := a.log.With(zap.String("request_id", req.RequestContext.RequestID))

	if m := req.RequestContext.HTTP.Method; m != "" && !strings.EqualFold(m, http.MethodPost) {
		return httpx.Error(http.StatusMethodNotAllowed, "method not allowed")
	}

	catalog, ok := a.catalogs[req.QueryStringParameters["locale"]]
	if !ok {
		return httpx.Error(http.StatusBadRequest, "unsupported locale")
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return httpx.Error(http.StatusBadRequest, "invalid base64 body")
		}
		body = decoded
	}
	if len(body) == 0 {
		return httpx.Error(http.StatusBadRequest, "missing body")
	}

	f, err := formparser.DecodeJSON(body, a.cfg.SchemaCheck)
	if err != nil {
		log.Info("gateway.malformed", zap.Error(err))
		return httpx.Error(http.StatusBadRequest, err.Error())
	}
	if a.cfg.UseSavedSettings {
		f = f.WithSavedDefaults()
	}

	rec := &notify.Recorder{}
	v := form.NewValidator(rec, catalog, form.WithLogger(log))
	payload, ok := v.Gate(f)
	if !ok {
		n, _ := rec.Last()
		log.Info("gateway.rejected", zap.String("key", n.Key))
		return httpx.JSON(http.StatusUnprocessableEntity, rejection{Notification: n})
	}

	log.Info("gateway.ok", zap.Int("rows", len(payload.Rows)))
	return httpx.JSON(http.StatusOK, payload)
}
