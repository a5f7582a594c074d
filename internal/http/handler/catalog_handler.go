package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Ahammedsa/server-site-fitenss/internal/domain"
	"github.com/Ahammedsa/server-site-fitenss/internal/service"
)

// CatalogHandler exposes trainers and classes.
type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ListTrainers(c *gin.Context) {
	docs, err := h.catalog.ListTrainers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// GetTrainer serves both /trainnerDetails/:id and /paymentPage/:id.
func (h *CatalogHandler) GetTrainer(c *gin.Context) {
	doc, err := h.catalog.GetTrainer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *CatalogHandler) AddTrainer(c *gin.Context) {
	doc, ok := bindDocument(c)
	if !ok {
		return
	}
	res, err := h.catalog.AddTrainer(c.Request.Context(), doc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListClasses pages only when both page and size are supplied.
func (h *CatalogHandler) ListClasses(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	docs, err := h.catalog.ListClasses(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *CatalogHandler) CountClasses(c *gin.Context) {
	n, err := h.catalog.CountClasses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *CatalogHandler) AddClass(c *gin.Context) {
	doc, ok := bindDocument(c)
	if !ok {
		return
	}
	res, err := h.catalog.AddClass(c.Request.Context(), doc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func pageFromQuery(c *gin.Context) (domain.Page, error) {
	pageRaw, hasPage := c.GetQuery("page")
	sizeRaw, hasSize := c.GetQuery("size")
	if !hasPage || !hasSize {
		return domain.Page{}, nil
	}
	page, err := strconv.ParseInt(pageRaw, 10, 64)
	if err != nil {
		return domain.Page{}, fmt.Errorf("%w: page must be an integer", domain.ErrValidation)
	}
	size, err := strconv.ParseInt(sizeRaw, 10, 64)
	if err != nil {
		return domain.Page{}, fmt.Errorf("%w: size must be an integer", domain.ErrValidation)
	}
	return domain.Page{Skip: page * size, Limit: size}, nil
}
