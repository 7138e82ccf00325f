package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qrpass/internal/attendance"
	"qrpass/internal/auth"
	"qrpass/internal/config"
	"qrpass/internal/geo"
	"qrpass/internal/httpmiddleware"
	"qrpass/internal/queue"
	"qrpass/internal/session"
	"qrpass/internal/store"
	"qrpass/internal/token"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var sessStore session.Store
	var guard session.ReplayGuard
	if cfg.StoreBackend == "redis" {
		sessStore = session.NewRedisStore(redisClient.Client, cfg.EvictionGrace)
		guard = session.NewRedisReplayGuard(redisClient.Client)
	} else {
		sessStore = session.NewMemoryStore(cfg.EvictionGrace)
		guard = session.NewMemoryReplayGuard(cfg.SweepInterval)
	}

	// Periodic eviction runs regardless of traffic; the redis backend's sweep
	// is a no-op since redis expires keys itself.
	sweeper := session.NewSweeper(sessStore, cfg.SweepInterval, nil)
	go sweeper.Run(ctx)

	var q queue.Queue
	if cfg.QueueBackend == "redis" {
		q = queue.NewRedisQueue(redisClient.Client, "qrpass:records")
	} else {
		q = queue.NewInMemory(64)
	}

	signer := token.NewSigner([]byte(cfg.SharedSecret), cfg.TokenLength)
	fence := geo.Fence{
		Reference: geo.Point{Lat: cfg.GeofenceLat, Lon: cfg.GeofenceLon},
		RadiusKm:  cfg.GeofenceRadiusKm,
	}
	records := attendance.NewMemoryLog()
	svc := attendance.NewService(sessStore, guard, signer, fence, cfg.EvictionGrace, records)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := cfg.StoreBackend != "redis" || redisClient.Healthy(c.Request.Context())
		status := http.StatusOK
		if !redisHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy})
	})

	r.POST("/v1/devices/register", func(c *gin.Context) {
		var req struct {
			DeviceID string `json:"device_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		tokens, err := auth.Issue(req.DeviceID, auth.RoleDevice, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	})

	// Admin collaborator: issue a session and get the QR payload back.
	r.POST("/v1/sessions", func(c *gin.Context) {
		var req struct {
			EventType  string `json:"event_type" binding:"required"`
			TTLSeconds int    `json:"ttl_seconds" binding:"required,gt=0"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		payload, err := svc.IssueSession(c.Request.Context(),
			session.EventType(req.EventType), time.Duration(req.TTLSeconds)*time.Second)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, payload)
	})

	authGroup := r.Group("/v1", auth.DeviceAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	// Student collaborator: redeem a scanned payload with evidence.
	authGroup.POST("/redemptions", func(c *gin.Context) {
		var req struct {
			Payload   attendance.QrPayload `json:"payload"`
			StudentID string               `json:"student_id" binding:"required"`
			DeviceID  string               `json:"device_id" binding:"required"`
			Location  *geo.Point           `json:"location" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		claimsAny, _ := c.Get("claims")
		claims, _ := claimsAny.(auth.Claims)
		if claims.Subject != "" && claims.Subject != req.DeviceID {
			c.JSON(http.StatusForbidden, gin.H{"error": "device mismatch"})
			return
		}

		ev := attendance.Evidence{
			StudentID: req.StudentID,
			DeviceID:  req.DeviceID,
			IPAddress: c.ClientIP(),
			Location:  *req.Location,
		}

		rec, err := svc.RedeemSession(c.Request.Context(), req.Payload, ev)
		if err != nil {
			if rej, ok := attendance.AsRedemptionError(err); ok {
				body := gin.H{"error": rej.Detail, "kind": string(rej.Kind)}
				if rej.Kind == attendance.KindLocationOutOfRange {
					body["distance_km"] = rej.DistanceKm
				}
				c.JSON(redemptionStatus(rej.Kind), body)
				return
			}
			log.Printf("redeem failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "redemption failed"})
			return
		}

		if raw, err := json.Marshal(rec); err == nil {
			if err := q.Publish(ctx, queue.Message{Type: queue.TypeRecord, Body: raw}); err != nil {
				log.Printf("queue publish failed: %v", err)
			}
		}

		c.JSON(http.StatusCreated, rec)
	})

	authGroup.GET("/records", func(c *gin.Context) {
		sessionID := c.Query("session_id")
		deviceID := c.Query("device_id")
		limit, offset := 50, 0
		if v := c.Query("limit"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				limit = parsed
			}
		}
		if v := c.Query("offset"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				offset = parsed
			}
		}
		recs, err := svc.Records().List(c.Request.Context(), sessionID, deviceID, limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"records": recs})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	cancel()

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// redemptionStatus maps a rejection kind to an HTTP status.
func redemptionStatus(kind attendance.ErrorKind) int {
	switch kind {
	case attendance.KindMalformedPayload, attendance.KindInvalidCoordinates:
		return http.StatusBadRequest
	case attendance.KindSessionInvalidOrExpired:
		return http.StatusNotFound
	case attendance.KindSignatureInvalid:
		return http.StatusForbidden
	case attendance.KindSessionExpired:
		return http.StatusGone
	case attendance.KindAlreadyRecorded:
		return http.StatusConflict
	case attendance.KindLocationOutOfRange:
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
