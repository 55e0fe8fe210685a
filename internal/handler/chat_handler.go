package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"ai-content-consultant/internal/domain"
	"ai-content-consultant/internal/model"
	"ai-content-consultant/internal/service"
	"ai-content-consultant/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ChatHandler serves conversational turns over HTTP and WebSocket.
type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat answers one ChatRequest. Failures still carry a ChatResponse body.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid := &domain.InvalidInputError{Message: "malformed chat request: " + err.Error()}
		c.JSON(http.StatusBadRequest, service.FailureResponse(nil, invalid))
		return
	}

	resp, err := h.chatService.ProcessTurn(c.Request.Context(), &req)
	if err != nil {
		c.JSON(domain.StatusCode(err), resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// chunkWriter wraps streamed text into {"type":"chunk"} frames.
type chunkWriter struct {
	conn *websocket.Conn
}

func (w *chunkWriter) WriteMessage(messageType int, data []byte) error {
	b, err := json.Marshal(gin.H{"type": "chunk", "chunk": string(data)})
	if err != nil {
		return err
	}
	return w.conn.WriteMessage(messageType, b)
}

// Handle runs a WebSocket session. Each text frame is a ChatRequest, or a
// bare utterance. Conversational replies stream as chunk frames; every turn
// ends with a {"type":"response"} frame holding the ChatResponse.
func (h *ChatHandler) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", err)
		return
	}
	defer conn.Close()
	log.Infof("websocket session opened from %s", c.ClientIP())

	ctx := c.Request.Context()
	writer := &chunkWriter{conn: conn}
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("websocket read failed: %v", err)
			}
			return
		}

		req, err := decodeFrame(message)
		var resp *model.ChatResponse
		if err != nil {
			resp = service.FailureResponse(nil, err)
		} else {
			resp, _ = h.chatService.StreamTurn(ctx, req, writer)
		}

		frame, err := json.Marshal(struct {
			Type      string `json:"type"`
			Timestamp int64  `json:"timestamp"`
			*model.ChatResponse
		}{"response", time.Now().UnixMilli(), resp})
		if err != nil {
			log.Error("failed to encode websocket response", err)
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			log.Warnf("websocket write failed: %v", err)
			return
		}
	}
}

func decodeFrame(message []byte) (*model.ChatRequest, error) {
	text := strings.TrimSpace(string(message))
	if !strings.HasPrefix(text, "{") {
		return &model.ChatRequest{UserInput: text}, nil
	}
	var req model.ChatRequest
	if err := json.Unmarshal(message, &req); err != nil {
		return nil, &domain.InvalidInputError{Message: "malformed chat request: " + err.Error()}
	}
	return &req, nil
}
