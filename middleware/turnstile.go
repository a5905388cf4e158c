package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const TurnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

type turnstileResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

type TurnstileConfig struct {
	Enabled   bool
	Secret    string
	VerifyURL string
	Client    *http.Client
}

// TurnstileConfigFromViper reads the cloudflare.turnstile.* keys
func TurnstileConfigFromViper() TurnstileConfig {
	return TurnstileConfig{
		Enabled: viper.GetBool("cloudflare.turnstile.enabled"),
		Secret:  viper.GetString("cloudflare.turnstile.secret_token"),
	}
}

func NewTurnstileMiddleware(cfg TurnstileConfig) gin.HandlerFunc {
	if cfg.VerifyURL == "" {
		cfg.VerifyURL = TurnstileVerifyURL
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 10 * time.Second}
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		requestID := c.GetString("requestID")

		token := c.Request.Header.Get("TurnstileToken")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "Missing or invalid turnstile token",
				"requestID": requestID,
			})
			return
		}

		payload := gin.H{
			"secret":   cfg.Secret,
			"response": token,
			"remoteip": c.ClientIP(),
		}

		jsonBody, _ := json.Marshal(payload)
		req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, cfg.VerifyURL, bytes.NewReader(jsonBody))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := cfg.Client.Do(req)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Unauthorized",
				"requestID": requestID,
			})

			zap.L().Error("Turnstile verification failed", zap.Error(err), zap.String("requestID", requestID))
			return
		}
		defer resp.Body.Close()

		var res turnstileResponse
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil || !res.Success {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Unauthorized",
				"requestID": requestID,
			})

			zap.L().Debug("Turnstile token rejected", zap.Strings("codes", res.ErrorCodes), zap.String("requestID", requestID))
			return
		}

		c.Next()
	}
}
