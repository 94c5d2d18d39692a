package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/perchlabs/perch/internal/db"
	"github.com/perchlabs/perch/internal/twitter"
)

type addAccountRequest struct {
	Username string `json:"username" binding:"required"`
}

type updateAccountRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// addAccount resolves a username upstream and registers it for
// monitoring
func (r *Router) addAccount(c *gin.Context) {
	var req addAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "username is required")
		return
	}

	username := strings.TrimPrefix(strings.TrimSpace(req.Username), "@")
	if username == "" {
		respondError(c, http.StatusBadRequest, "username is required")
		return
	}

	accountRepo := db.NewAccountRepository(r.repo)
	existing, err := accountRepo.GetByUsername(c.Request.Context(), username)
	if err != nil {
		r.logger.Error("Failed to check account existence", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}
	if existing != nil {
		respondError(c, http.StatusConflict, "account @"+username+" is already monitored")
		return
	}

	account, _, err := r.service.AddAccount(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, twitter.ErrNotFound) {
			respondError(c, http.StatusNotFound, "no such account @"+username)
			return
		}
		r.logger.Error("Failed to add account", zap.String("username", username), zap.Error(err))
		respondError(c, http.StatusBadGateway, "failed to resolve account upstream")
		return
	}

	c.JSON(http.StatusCreated, accountJSON(account))
}

// listAccounts returns all monitored accounts
func (r *Router) listAccounts(c *gin.Context) {
	accountRepo := db.NewAccountRepository(r.repo)
	accounts, err := accountRepo.List(c.Request.Context())
	if err != nil {
		r.logger.Error("Failed to list accounts", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}

	out := make([]gin.H, 0, len(accounts))
	for i := range accounts {
		out = append(out, accountJSON(&accounts[i]))
	}
	c.JSON(http.StatusOK, out)
}

// getAccount returns one monitored account
func (r *Router) getAccount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid account id")
		return
	}

	accountRepo := db.NewAccountRepository(r.repo)
	account, err := accountRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		r.logger.Error("Failed to load account", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}
	if account == nil {
		respondError(c, http.StatusNotFound, "account not found")
		return
	}

	c.JSON(http.StatusOK, accountJSON(account))
}

// updateAccount toggles the monitoring flag for an account
func (r *Router) updateAccount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid account id")
		return
	}

	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "active flag is required")
		return
	}

	accountRepo := db.NewAccountRepository(r.repo)
	account, err := accountRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		r.logger.Error("Failed to load account", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}
	if account == nil {
		respondError(c, http.StatusNotFound, "account not found")
		return
	}

	if err := accountRepo.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		r.logger.Error("Failed to update account", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}
	account.Active = *req.Active

	c.JSON(http.StatusOK, accountJSON(account))
}

// ingestAccount runs one ingestion pass for one account immediately
func (r *Router) ingestAccount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid account id")
		return
	}

	accountRepo := db.NewAccountRepository(r.repo)
	account, err := accountRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		r.logger.Error("Failed to load account", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}
	if account == nil {
		respondError(c, http.StatusNotFound, "account not found")
		return
	}

	result := r.service.Ingest(c.Request.Context(), account)
	c.JSON(http.StatusOK, result)
}

// ingestAll runs one batch ingestion pass over all active accounts
func (r *Router) ingestAll(c *gin.Context) {
	result := r.service.IngestAll(c.Request.Context())
	c.JSON(http.StatusOK, result)
}
