package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"smm-wallet/internal/auth"
	"smm-wallet/internal/config"
	"smm-wallet/internal/events"
	"smm-wallet/pkg/common"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var walletUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WalletSocket streams wallet.updated events for the user in ?token=. Other
// tabs of the same user use them to refetch their balance.
func WalletSocket(cfg config.JWTConfig, bus *events.Bus, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized,
				common.NewErrorResponse("token required", nil, http.StatusUnauthorized).WithCode("unauthorized"))
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized,
				common.NewErrorResponse("invalid token", nil, http.StatusUnauthorized).WithCode("unauthorized"))
			return
		}

		conn, err := walletUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Debug("Websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		updates, cancel := bus.Subscribe(claims.UserID, 16)
		defer cancel()
		log.Debug("Wallet socket connected",
			zap.Uint("user_id", claims.UserID),
			zap.Int("subscribers", bus.SubscriberCount(claims.UserID)))

		done := make(chan struct{})
		go func() {
			defer close(done)
			conn.SetReadDeadline(time.Now().Add(wsPongWait))
			conn.SetPongHandler(func(string) error {
				conn.SetReadDeadline(time.Now().Add(wsPongWait))
				return nil
			})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-updates:
				if !ok {
					return
				}
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteJSON(ev); err != nil {
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}
}
