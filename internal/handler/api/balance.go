package api

import (
	"net/http"

	reqdto "commerce-server/internal/handler/dto/request"
	resdto "commerce-server/internal/handler/dto/response"
	"commerce-server/internal/handler/httperr"
	"commerce-server/internal/usecase/commands"
	"commerce-server/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type BalanceHandler struct {
	cmds commands.BalanceCommands
	q    queries.BalanceQueries
}

func NewBalanceHandler(cmds commands.BalanceCommands, q queries.BalanceQueries) *BalanceHandler {
	return &BalanceHandler{cmds: cmds, q: q}
}

func (h *BalanceHandler) Charge(c *gin.Context) {
	var req reqdto.ChargeBalanceRequest
	if !bindJSON(c, &req) {
		return
	}
	rm, err := h.cmds.Charge(c.Request.Context(), req.UserID, req.Amount)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBalanceRM(rm))
}

func (h *BalanceHandler) Deduct(c *gin.Context) {
	var req reqdto.DeductBalanceRequest
	if !bindJSON(c, &req) {
		return
	}
	rm, err := h.cmds.Deduct(c.Request.Context(), req.UserID, req.Amount)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBalanceRM(rm))
}

func (h *BalanceHandler) Get(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	rm, err := h.q.Get(c.Request.Context(), userID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBalanceRM(rm))
}
