package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	log "github.com/sirupsen/logrus"

	"github.com/castrelay/signaling/config"
	"github.com/castrelay/signaling/internal/turnrest"
)

// ICEServers serves the ICE server list clients feed into their
// RTCPeerConnection. STUN URLs come straight from config; when a TURN
// REST generator is configured, TURN URLs are returned with credentials
// minted per request. gen may be nil.
func ICEServers(cfg config.ICEConfig, gen *turnrest.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		servers := []webrtc.ICEServer{
			{URLs: cfg.STUNURLs},
		}

		if gen != nil && len(cfg.TURNURLs) > 0 {
			creds, err := gen.Credentials(c.ClientIP())
			if err != nil {
				log.Errorf("failed to mint TURN credentials: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate TURN credentials"})
				return
			}
			servers = append(servers, webrtc.ICEServer{
				URLs:       cfg.TURNURLs,
				Username:   creds.Username,
				Credential: creds.Credential,
			})
		}

		c.JSON(http.StatusOK, gin.H{"iceServers": servers})
	}
}

// ClientIP tells a client the address the server sees it as, which is
// also the address the local-network join policy judges it by.
func ClientIP(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ip": c.ClientIP()})
}
