package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/casefolio/stepup/internal/mfa/service"
	"github.com/casefolio/stepup/internal/mfa/store"
	"github.com/casefolio/stepup/pkg/httpx"
	"github.com/casefolio/stepup/pkg/jwtx"
	"github.com/casefolio/stepup/pkg/slogx"

	_ "github.com/casefolio/stepup/api/mfa" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store  store.Store
	Engine *service.Engine
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerStatus()
	r.registerEnrollment()
	r.registerChallenges()
	r.registerVerification()
	r.registerDevices()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Casefolio Step-up MFA Service API
//	@version		0.1.0
//	@description	Multi-factor authentication assurance service: TOTP, SMS and
//	@description	email challenges, backup codes, trusted devices and per-request
//	@description	step-up assurance decisions.
//
//	@contact.name				Casefolio Platform Team
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token from primary auth. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerStatus() {
	h := &StatusHandler{Engine: r.Engine}

	r.Mux.Handle("GET /v1/mfa/status",
		httpx.Chain(http.HandlerFunc(h.HandleStatus),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// POST /v1/mfa/assurance - the hot path other services call per request
	r.Mux.Handle("POST /v1/mfa/assurance",
		httpx.Chain(http.HandlerFunc(h.HandleAssurance),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerEnrollment() {
	h := &EnrollHandler{Engine: r.Engine}

	r.Mux.Handle("POST /v1/mfa/totp/enroll",
		httpx.Chain(http.HandlerFunc(h.HandleEnroll),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Strict: confirmation is a code-guessing surface.
	r.Mux.Handle("POST /v1/mfa/totp/confirm",
		httpx.Chain(http.HandlerFunc(h.HandleConfirm),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/mfa/backup-codes",
		httpx.Chain(http.HandlerFunc(h.HandleRegenerateBackupCodes),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("PUT /v1/mfa/channels",
		httpx.Chain(http.HandlerFunc(h.HandleConfigureChannels),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("DELETE /v1/mfa",
		httpx.Chain(http.HandlerFunc(h.HandleDisableSelf),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerChallenges() {
	h := &ChallengeHandler{Engine: r.Engine}

	// Moderate: each issue triggers an outbound SMS/email.
	r.Mux.Handle("POST /v1/mfa/challenges",
		httpx.Chain(http.HandlerFunc(h.HandleIssue),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerVerification() {
	h := &VerifyHandler{Engine: r.Engine}

	// Strict: this is the brute-force surface.
	r.Mux.Handle("POST /v1/mfa/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerDevices() {
	h := &DevicesHandler{Engine: r.Engine}

	r.Mux.Handle("GET /v1/mfa/devices",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("POST /v1/mfa/devices",
		httpx.Chain(http.HandlerFunc(h.HandleTrust),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("DELETE /v1/mfa/devices/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleRevoke),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{Engine: r.Engine}

	r.Mux.Handle("DELETE /v1/admin/mfa/{user_id}",
		httpx.Chain(http.HandlerFunc(h.HandleDisable),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(service.ScopeMFAAdmin),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
