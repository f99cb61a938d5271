package api

import (
	"net/http"
	"time"

	reqdto "commerce-server/internal/handler/dto/request"
	resdto "commerce-server/internal/handler/dto/response"
	"commerce-server/internal/handler/httperr"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/pkg/keygen"
	"commerce-server/internal/usecase/commands"
	"commerce-server/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	q   queries.ProductQueries
	cmd commands.ProductCommands
}

func NewProductHandler(q queries.ProductQueries, cmd commands.ProductCommands) *ProductHandler {
	return &ProductHandler{q: q, cmd: cmd}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req reqdto.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	rm, err := h.cmd.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromProductRM(rm))
}

func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}
	var req reqdto.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	rm, err := h.cmd.Update(c.Request.Context(), productID, req.ToInput())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromProductRM(rm))
}

func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}
	if err := h.cmd.Delete(c.Request.Context(), productID); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}
	rm, err := h.q.Get(c.Request.Context(), productID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromProductRM(rm))
}

func (h *ProductHandler) List(c *gin.Context) {
	var req reqdto.ListRequest
	if !bindQuery(c, &req) {
		return
	}
	rms, err := h.q.List(c.Request.Context(), queries.NewPage(req.Limit, req.Offset))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromProductRMs(rms))
}

func (h *ProductHandler) Popular(c *gin.Context) {
	var req reqdto.PopularRequest
	if !bindQuery(c, &req) {
		return
	}
	rms, err := h.q.Popular(c.Request.Context(), req.Days, req.Limit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPopularProductRMs(rms))
}

func (h *ProductHandler) Ranking(c *gin.Context) {
	period, err := keygen.ParsePeriod(c.Param("period"))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	var req reqdto.RankingRequest
	if !bindQuery(c, &req) {
		return
	}

	var at time.Time
	if req.Date != "" {
		at, err = time.ParseInLocation(time.DateOnly, req.Date, time.Local)
		if err != nil {
			httperr.Abort(c, errs.Wrapf(errs.ErrValidation, "date %q", req.Date))
			return
		}
	}

	rm, err := h.q.Ranking(c.Request.Context(), period, at, req.Limit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRankingRM(rm))
}
