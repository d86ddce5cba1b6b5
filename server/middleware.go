package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ZaguanLabs/codeshift"
	"github.com/ZaguanLabs/codeshift/i18n"
)

// SessionCookieName is the cookie carrying the session ID.
const SessionCookieName = "session_id"

const sessionContextKey = "codeshift.session"

// sessionMiddleware attaches the requester's session, creating one and
// setting the cookie when needed.
func sessionMiddleware(m *SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookieName)
		sess := m.GetOrCreate(id)

		if id != sess.ID() {
			secure := c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookieName, sess.ID(), int(m.ttl.Seconds()), "/", "", secure, true)
		}

		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// sessionFrom returns the session attached by sessionMiddleware.
func sessionFrom(c *gin.Context) *codeshift.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*codeshift.Session)
	return sess
}

// requestLogger logs one line per request.
func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}
		if sess := sessionFrom(c); sess != nil {
			fields["session"] = sess.ID()
		}

		entry := logger.WithFields(fields)
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("Request failed")
		case len(c.Errors) > 0:
			entry.WithField("errors", c.Errors.String()).Warn("Request completed with errors")
		default:
			entry.Debug("Request completed")
		}
	}
}

// recovery turns a handler panic into a 500 with the conversion failure message.
func recovery(logger logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.WithFields(logrus.Fields{
			"panic": recovered,
			"path":  c.Request.URL.Path,
		}).Error("Handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": i18n.T(i18n.MsgConversionFailed)})
	})
}
