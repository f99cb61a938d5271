package api

import (
	"net/http"
	"strconv"

	reqdto "commerce-server/internal/handler/dto/request"
	resdto "commerce-server/internal/handler/dto/response"
	"commerce-server/internal/handler/httperr"
	"commerce-server/internal/usecase/commands"
	"commerce-server/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	cmds commands.OrderCommands
	q    queries.OrderQueries
}

func NewOrderHandler(cmds commands.OrderCommands, q queries.OrderQueries) *OrderHandler {
	return &OrderHandler{cmds: cmds, q: q}
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req reqdto.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	rm, err := h.cmds.Create(c.Request.Context(), req.UserID, req.ToInputs())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Header("Location", "/api/orders/"+strconv.FormatInt(rm.ID, 10))
	c.JSON(http.StatusCreated, resdto.FromOrderRM(rm))
}

func (h *OrderHandler) Pay(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	var req reqdto.PayOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.cmds.Pay(c.Request.Context(), req.ToInput(orderID))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPayOrderResult(result))
}

func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	rm, err := h.q.Get(c.Request.Context(), orderID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrderRM(rm))
}

func (h *OrderHandler) ListByUser(c *gin.Context) {
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
	c.JSON(http.StatusOK, resdto.FromOrderRMs(rms))
}
