package respond

import "github.com/gin-gonic/gin"

// Orchestrator envelope statuses.
const (
	StatusOK            = "OK"
	StatusNeedCleanText = "NEED_CLEAN_TEXT"
	StatusNeedMoreInfo  = "NEED_MORE_INFO"
	StatusError         = "ERROR"
)

// Envelope is the response shape for orchestrator-style endpoints.
type Envelope struct {
	Status    string      `json:"status"`
	Action    string      `json:"action"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	NextSteps []string    `json:"next_steps"`
}

// Orchestrated writes an orchestrator envelope with the given HTTP status.
func Orchestrated(c *gin.Context, httpStatus int, env Envelope) {
	if env.NextSteps == nil {
		env.NextSteps = []string{}
	}
	JSON(c, httpStatus, env)
}
