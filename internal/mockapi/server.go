// Package mockapi is an in-memory implementation of the ConnectU service
// contract. It backs the package tests and the connectu-mock command.
package mockapi

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/ctxutil"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/logger"
)

const (
	DefaultCode     = "123456"
	DefaultTokenTTL = 7 * 24 * time.Hour

	ctxUserID = "mockapi.user_id"
	ctxToken  = "mockapi.token"
)

type Options struct {
	Secret   string
	TokenTTL time.Duration
	// Code is the verification code every address receives.
	Code        string
	EmailSuffix string
	// CodeRequestsPerMinute limits send-verification per address; 0 means 5.
	CodeRequestsPerMinute int
	// AllowOrigins for browser clients; empty means DefaultAllowOrigins.
	AllowOrigins []string
	ServiceName  string

	Logger *logger.Logger
	Now    func() time.Time
}

type userRecord struct {
	user    domain.User
	profile domain.Profile
	stats   domain.UserStats
	grades  []domain.Grade
	points  []domain.PointTransaction
	skipped map[string]bool
}

type matchRecord struct {
	id          string
	requesterID string
	targetID    string
	status      domain.MatchStatus
	matchType   domain.MatchType
	score       float64
	createdAt   time.Time
	acceptedAt  *time.Time
}

type fault struct {
	status  int
	message string
	times   int
}

type Server struct {
	opts   Options
	log    *logger.Logger
	secret []byte
	engine *gin.Engine

	mu            sync.Mutex
	codes         map[string]string
	codeRequests  map[string][]time.Time
	users         map[string]*userRecord
	byEmail       map[string]string
	revoked       map[string]bool
	matches       map[string]*matchRecord
	matchOrder    []string
	messages      map[string][]*domain.Message
	sessions      map[string]*domain.Session
	resources     []*domain.FeedResource
	likes         map[string]map[string]bool
	notifications map[string][]*domain.Notification
	faults        map[string]*fault
	calls         map[string]int
}

func New(opts Options) *Server {
	if opts.Secret == "" {
		opts.Secret = uuid.NewString()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.Code == "" {
		opts.Code = DefaultCode
	}
	if opts.EmailSuffix == "" {
		opts.EmailSuffix = domain.DefaultEmailSuffix
	}
	if opts.CodeRequestsPerMinute <= 0 {
		opts.CodeRequestsPerMinute = 5
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "connectu-mock"
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		opts:          opts,
		log:           log.With("component", "mockapi"),
		secret:        []byte(opts.Secret),
		codes:         map[string]string{},
		codeRequests:  map[string][]time.Time{},
		users:         map[string]*userRecord{},
		byEmail:       map[string]string{},
		revoked:       map[string]bool{},
		matches:       map[string]*matchRecord{},
		messages:      map[string][]*domain.Message{},
		sessions:      map[string]*domain.Session{},
		likes:         map[string]map[string]bool{},
		notifications: map[string][]*domain.Notification{},
		faults:        map[string]*fault{},
		calls:         map[string]int{},
	}
	s.engine = s.router()
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.corsMiddleware())
	r.Use(s.tracing())
	r.Use(s.requestLogger())
	r.Use(s.injectFaults())

	r.GET("/healthcheck", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	{
		api.POST("/auth/send-verification", s.sendVerification)
		api.POST("/auth/verify", s.verify)
	}

	protected := api.Group("/")
	protected.Use(s.requireAuth())
	{
		protected.POST("/auth/onboarding", s.onboarding)
		protected.POST("/auth/logout", s.logout)

		protected.GET("/users/me", s.getMe)
		protected.PATCH("/users/me", s.updateMe)
		protected.POST("/users/me/profile-image", s.uploadProfileImage)
		protected.POST("/users/me/grades", s.addGrades)
		protected.GET("/users/:id", s.getUser)

		protected.GET("/matches/candidates", s.candidates)
		protected.POST("/matches/request", s.requestMatch)
		protected.POST("/matches/skip", s.skipCandidate)
		protected.GET("/matches/my-matches", s.myMatches)
		protected.POST("/matches/:id/respond", s.respond)
		protected.GET("/matches/:id/messages", s.listMessages)
		protected.POST("/matches/:id/messages", s.sendMessage)
		protected.POST("/matches/:id/messages/read", s.markRead)

		protected.POST("/sessions", s.createSession)
		protected.GET("/sessions", s.listSessions)
		protected.POST("/sessions/:id/complete", s.completeSession)
		protected.POST("/sessions/:id/cancel", s.cancelSession)
		protected.POST("/sessions/:id/reschedule", s.rescheduleSession)

		protected.GET("/feed", s.listFeed)
		protected.POST("/feed/resources", s.createResource)
		protected.POST("/feed/resources/:id/like", s.likeResource)
		protected.DELETE("/feed/resources/:id/like", s.unlikeResource)

		protected.GET("/gamification/me", s.myProgress)
		protected.GET("/gamification/leaderboard", s.leaderboard)
		protected.GET("/gamification/certificates/:type", s.certificate)
		protected.GET("/gamification/points/history", s.pointsHistory)

		protected.GET("/notifications", s.listNotifications)
		protected.POST("/notifications/read-all", s.readAllNotifications)
		protected.POST("/notifications/:id/read", s.readNotification)
		protected.DELETE("/notifications/:id", s.deleteNotification)
	}
	return r
}

// Fail makes the next n calls to method+route answer status. route is the
// templated path without the /api prefix, e.g. "/matches/:id/respond".
// n <= 0 fails until ClearFaults.
func (s *Server) Fail(method, route string, status int, message string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[strings.ToUpper(method)+" "+route] = &fault{status: status, message: message, times: n}
}

func (s *Server) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = map[string]*fault{}
}

// Calls reports how many requests reached method+route, faulted ones included.
func (s *Server) Calls(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[strings.ToUpper(method)+" "+route]
}

func routeKey(c *gin.Context) string {
	return strings.ToUpper(c.Request.Method) + " " + strings.TrimPrefix(c.FullPath(), "/api")
}

func (s *Server) injectFaults() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := routeKey(c)
		s.mu.Lock()
		s.calls[key]++
		f := s.faults[key]
		if f != nil && f.times > 0 {
			f.times--
			if f.times == 0 {
				delete(s.faults, key)
			}
		}
		s.mu.Unlock()
		if f != nil {
			respondError(c, f.status, "injected", errors.New(f.message))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.GetHeader("X-Request-ID")
		if rid != "" {
			ctx := ctxutil.WithTraceData(c.Request.Context(), &ctxutil.TraceData{RequestID: rid})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if rid != "" {
			fields = append(fields, "request_id", rid)
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			s.log.Error("HTTP request", fields...)
		case status >= 400:
			s.log.Warn("HTTP request", fields...)
		default:
			s.log.Debug("HTTP request", fields...)
		}
	}
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if len(header) <= 7 || !strings.EqualFold(header[:7], "Bearer ") {
			respondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid token"))
			c.Abort()
			return
		}
		token := header[7:]
		userID, err := s.parseToken(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "unauthorized", err)
			c.Abort()
			return
		}
		c.Set(ctxUserID, userID)
		c.Set(ctxToken, token)
		c.Next()
	}
}

func (s *Server) issueToken(userID string) (string, error) {
	now := s.opts.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey())
}

func (s *Server) signingKey() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secret
}

func (s *Server) parseToken(token string) (string, error) {
	key := s.signingKey()
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.opts.Now))
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid or expired token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revoked[token] {
		return "", errors.New("token revoked")
	}
	if _, ok := s.users[claims.Subject]; !ok {
		return "", errors.New("unknown user")
	}
	return claims.Subject, nil
}

// RevokeAll invalidates every issued token.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = []byte(uuid.NewString())
}

func currentUser(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorEnvelope struct {
	Success bool     `json:"success"`
	Error   apiError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, errorEnvelope{Error: apiError{Message: msg, Code: code}})
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func newID() string { return uuid.NewString() }
