package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/Matheuscfs/tgt-contratto-mvp/internal/adapter/observ"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/security"
	"github.com/gin-gonic/gin"
)

// SignatureHeader carries the provider's hex-encoded HMAC-SHA256 of the
// raw request body.
const SignatureHeader = "X-Signature"

type WebhookVerify struct {
	signer security.Signer
}

func NewWebhookVerify(signer security.Signer) *WebhookVerify {
	return &WebhookVerify{signer: signer}
}

// Verify authenticates the raw body against X-Signature before any
// business logic runs. The body is restored for downstream handlers.
func (wv *WebhookVerify) Verify() gin.HandlerFunc {
	return func(c *gin.Context) {
		sig := c.GetHeader(SignatureHeader)
		if sig == "" {
			observ.WebhookRejected.WithLabelValues("missing_signature").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing signature"})
			return
		}

		rawBody, err := io.ReadAll(c.Request.Body)
		if err != nil {
			observ.WebhookRejected.WithLabelValues("unreadable_body").Inc()
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}
		defer c.Request.Body.Close()

		if err := wv.signer.Verify(rawBody, sig); err != nil {
			observ.WebhookRejected.WithLabelValues("bad_signature").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "signature verification failed"})
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(rawBody))
		c.Request.ContentLength = int64(len(rawBody))
		c.Next()
	}
}
