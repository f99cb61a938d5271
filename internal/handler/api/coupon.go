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

type CouponHandler struct {
	cmds commands.CouponCommands
	q    queries.CouponQueries
}

func NewCouponHandler(cmds commands.CouponCommands, q queries.CouponQueries) *CouponHandler {
	return &CouponHandler{cmds: cmds, q: q}
}

func (h *CouponHandler) Issue(c *gin.Context) {
	couponID, ok := pathID(c, "couponId")
	if !ok {
		return
	}
	var req reqdto.IssueCouponRequest
	if !bindJSON(c, &req) {
		return
	}
	rm, err := h.cmds.Issue(c.Request.Context(), req.UserID, couponID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromCouponIssueRM(rm))
}

func (h *CouponHandler) ListByUser(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	var req reqdto.ListRequest
	if !bindQuery(c, &req) {
		return
	}
	rms, err := h.q.ListByUser(c.Request.Context(), userID, queries.NewPage(req.Limit, req.Offset))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCouponHistoryRMs(rms))
}
