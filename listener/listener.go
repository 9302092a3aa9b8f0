/*
Copyright 2025 PayGrid Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package listener runs the local HTTP receiver for gateway webhook
// callbacks. Incoming status events are normalized and dispatched to
// the lifecycle sessions watching the referenced transactions, so a
// webhook can settle a payment ahead of the next poll.
package listener

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/paygridhq/paygrid/config"
	"github.com/paygridhq/paygrid/lifecycle"
	"github.com/paygridhq/paygrid/model"
)

type Listener struct {
	registry *lifecycle.Registry
	router   *gin.Engine
	log      *logrus.Entry
	port     string
}

// New assembles the callback receiver. The shared-secret check is only
// attached when a secret is configured.
func New(registry *lifecycle.Registry, conf *config.Configuration, logger *logrus.Logger) *Listener {
	gin.SetMode(gin.ReleaseMode)
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	l := &Listener{
		registry: registry,
		log:      logger.WithField("component", "webhook_listener"),
		port:     conf.Listener.Port,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RateLimitMiddleware(conf))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "listener running...")
	})

	callbacks := r.Group("/callbacks")
	if conf.Listener.SharedSecret != "" {
		callbacks.Use(SharedSecretMiddleware())
	}
	callbacks.POST("/paygrid", l.handleCallback)

	l.router = r
	return l
}

// Router exposes the gin engine, mainly for tests.
func (l *Listener) Router() *gin.Engine {
	return l.router
}

// Run blocks serving callbacks on the configured port.
func (l *Listener) Run() error {
	l.log.WithField("port", l.port).Info("webhook listener starting")
	return l.router.Run(":" + l.port)
}

// handleCallback ingests one gateway status event. Unknown references
// are acknowledged with 200: redelivery is the gateway's concern and a
// retry would not make the session appear.
func (l *Listener) handleCallback(c *gin.Context) {
	var event model.WebhookEvent
	if err := c.BindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed callback payload"})
		return
	}

	ref := event.Reference()
	if ref.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "callback payload is missing a transaction id"})
		return
	}

	rec, err := event.Data.Record()
	if err != nil {
		l.log.WithFields(logrus.Fields{
			"reference": ref.String(),
			"error":     err.Error(),
		}).Warn("dropping callback with unparseable status")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !l.registry.Dispatch(ref, rec) {
		l.log.WithField("reference", ref.String()).Info("callback for unwatched reference, acknowledged")
		c.JSON(http.StatusOK, gin.H{"status": "acknowledged"})
		return
	}

	l.log.WithFields(logrus.Fields{
		"reference": ref.String(),
		"event":     event.Event,
		"status":    string(rec.Status),
	}).Info("callback dispatched to lifecycle session")
	c.JSON(http.StatusOK, gin.H{"status": "dispatched"})
}
