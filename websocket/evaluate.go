package websocket

import (
	"log"
	"net/http"

	"insightengine/models"
	"insightengine/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// In production, adjust the CheckOrigin function to allow only trusted origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// evaluateRequest is the first frame the client sends after connecting.
type evaluateRequest struct {
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
}

// progressFrame is sent once per completed dimension.
type progressFrame struct {
	Type      string           `json:"type"` // "dimension"
	Dimension models.Dimension `json:"dimension"`
	Score     float64          `json:"score"`
	Degraded  bool             `json:"degraded,omitempty"`
}

// reportFrame is the final frame carrying the full report.
type reportFrame struct {
	Type   string                  `json:"type"` // "report"
	Report models.EvaluationReport `json:"report"`
}

type errorFrame struct {
	Type  string `json:"type"` // "error"
	Error string `json:"error"`
}

// EvaluateHandler upgrades the connection, reads one article, and streams a
// frame per completed dimension before the final report. The evaluator
// serializes progress callbacks, so writes to the connection do not race.
func EvaluateHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	var req evaluateRequest
	if err := conn.ReadJSON(&req); err != nil {
		conn.WriteJSON(errorFrame{Type: "error", Error: "Invalid evaluation request"})
		return
	}

	onDimension := func(dim models.Dimension, score models.DimensionScore) {
		frame := progressFrame{
			Type:      "dimension",
			Dimension: dim,
			Score:     score.Score,
			Degraded:  score.Degraded,
		}
		if err := conn.WriteJSON(frame); err != nil {
			log.Printf("websocket progress write failed: %v", err)
		}
	}

	report, err := services.EvaluateArticleWithProgress(c.Request.Context(), req.Text, req.Title, onDimension)
	if err != nil {
		conn.WriteJSON(errorFrame{Type: "error", Error: err.Error()})
		return
	}

	if err := conn.WriteJSON(reportFrame{Type: "report", Report: report}); err != nil {
		log.Printf("websocket report write failed: %v", err)
	}
}
