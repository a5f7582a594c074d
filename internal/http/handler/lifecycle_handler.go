package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ahammedsa/server-site-fitenss/internal/config"
	"github.com/Ahammedsa/server-site-fitenss/internal/domain"
	"github.com/Ahammedsa/server-site-fitenss/internal/service/lifecycle"
)

// LifecycleHandler exposes the user upsert routes. Each route is one
// policy of lifecycle.Manager.
type LifecycleHandler struct {
	manager *lifecycle.Manager
	policy  lifecycle.StatusPolicy
}

// NewLifecycleHandler creates the handler set.
func NewLifecycleHandler(manager *lifecycle.Manager, cfg config.Config) *LifecycleHandler {
	policy := lifecycle.StatusOneDirectional
	if cfg.StatusChangePolicy == config.PolicyOverwrite {
		policy = lifecycle.StatusOverwrite
	}
	return &LifecycleHandler{manager: manager, policy: policy}
}

// NewUser handles PUT /new-user. New users are created verified.
func (h *LifecycleHandler) NewUser(c *gin.Context) {
	h.apply(c, lifecycle.Register, nil, lifecycle.CreateAs(domain.RoleUnset, domain.StatusVerified))
}

// RequestStatus handles PUT /user.
func (h *LifecycleHandler) RequestStatus(c *gin.Context) {
	h.apply(c, lifecycle.RequestStatusChange, nil, lifecycle.WithStatusPolicy(h.policy))
}

// SaveUser handles PUT /users/:email. The path email wins over the body.
func (h *LifecycleHandler) SaveUser(c *gin.Context) {
	email := c.Param("email")
	h.apply(c, lifecycle.Register, func(doc domain.Document) {
		doc[domain.FieldEmail] = email
	})
}

// CreateUser handles POST /users.
func (h *LifecycleHandler) CreateUser(c *gin.Context) {
	h.apply(c, lifecycle.Register, nil)
}

// Promote handles PUT /random.
func (h *LifecycleHandler) Promote(c *gin.Context) {
	payload, ok := bindDocument(c)
	if !ok {
		return
	}
	res, err := h.manager.Apply(c.Request.Context(), lifecycle.PromoteToTrainer, payload,
		lifecycle.CreateAs(domain.RoleTrainer, domain.StatusVerified))
	if err != nil {
		respondError(c, err)
		return
	}

	switch res.Outcome {
	case lifecycle.Created:
		c.JSON(http.StatusOK, gin.H{"message": "New user created", "result": res.Write})
	case lifecycle.Updated:
		c.JSON(http.StatusOK, gin.H{"message": "User updated", "result": res.Write})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "User unchanged", "result": res.User})
	}
}

func (h *LifecycleHandler) apply(c *gin.Context, intent lifecycle.Intent, prepare func(domain.Document), opts ...lifecycle.Option) {
	payload, ok := bindDocument(c)
	if !ok {
		return
	}
	if prepare != nil {
		prepare(payload)
	}

	res, err := h.manager.Apply(c.Request.Context(), intent, payload, opts...)
	if err != nil {
		respondError(c, err)
		return
	}
	if res.Outcome == lifecycle.Unchanged {
		c.JSON(http.StatusOK, res.User)
		return
	}
	c.JSON(http.StatusOK, res.Write)
}
