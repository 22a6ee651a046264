package api

import (
	"time"

	"github.com/quiethollow/tandem/internal/db"
	"github.com/quiethollow/tandem/internal/llm"
	"github.com/quiethollow/tandem/internal/services"
	"gorm.io/gorm"
)

const (
	defaultAuthTokenTTL  = 7 * 24 * time.Hour
	rememberAuthTokenTTL = 30 * 24 * time.Hour
)

const (
	chatRateLimit  = 10
	chatRateWindow = time.Minute
	chatMaxTokens  = 1024
	chatTimeout    = 60 * time.Second
)

type Handler struct {
	db           *gorm.DB
	secretKey    []byte
	cookieSecure bool
	model        llm.Client

	repositories    *db.Repositories
	authService     *services.AuthService
	sessionService  *services.SessionService
	documentService *services.DocumentService
	pdfRenderer     *services.PDFRenderer
	chatLimiter     *services.FixedWindowLimiter
	tasks           *services.TaskRunner
}

type registerInput struct {
	Email          string `json:"email" form:"email"`
	Password       string `json:"password" form:"password"`
	PartnerAName   string `json:"partnerAName" form:"partnerAName"`
	PartnerBName   string `json:"partnerBName" form:"partnerBName"`
	PartnerAGender string `json:"partnerAGender" form:"partnerAGender"`
	PartnerBGender string `json:"partnerBGender" form:"partnerBGender"`
	RememberMe     bool   `json:"rememberMe" form:"rememberMe"`
}

type credentialsInput struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"rememberMe" form:"rememberMe"`
}

type chatInput struct {
	SessionID string  `json:"sessionId"`
	Message   *string `json:"message"`
}

type generateDocumentInput struct {
	Type string `json:"type"`
}

type reviseDocumentInput struct {
	Feedback string `json:"feedback"`
}

func NewHandler(database *gorm.DB, secret string, model llm.Client, tasks *services.TaskRunner, cookieSecure bool) *Handler {
	handler := &Handler{
		db:           database,
		secretKey:    []byte(secret),
		cookieSecure: cookieSecure,
		model:        model,
		pdfRenderer:  services.NewPDFRenderer(),
		chatLimiter:  services.NewFixedWindowLimiter(services.NewMemoryCounterStore(), chatRateLimit, chatRateWindow),
		tasks:        tasks,
	}
	return handler.withDependencies(database)
}

// ChatLimiter exposes the chat rate limiter so the process entry point can
// start its sweep loop.
func (handler *Handler) ChatLimiter() *services.FixedWindowLimiter {
	return handler.chatLimiter
}
