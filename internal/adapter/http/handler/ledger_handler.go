package handler

import (
	"strconv"
	"time"

	"gameserver-market/internal/adapter/http/dto"
	"gameserver-market/internal/adapter/http/middleware"
	"gameserver-market/internal/core/domain"
	"gameserver-market/internal/core/ports"
	"gameserver-market/pkg/apperror"
	"gameserver-market/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler exposes the player-facing balance surface.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// GetBalance handles GET /api/v1/balance.
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	accountID, ok := contextAccountID(c)
	if !ok {
		return
	}

	info, err := h.ledgerSvc.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		AccountID: info.AccountID,
		Username:  info.Username,
		Balance:   info.Balance,
	})
}

// Deposit handles POST /api/v1/balance/deposit.
func (h *LedgerHandler) Deposit(c *gin.Context) {
	accountID, ok := contextAccountID(c)
	if !ok {
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	mutation, err := h.ledgerSvc.Deposit(c.Request.Context(), ports.DepositRequest{
		AccountID:   accountID,
		Amount:      req.Amount,
		Kind:        domain.TransactionKindDeposit,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toMutationResponse(mutation))
}

// ListTransactions handles GET /api/v1/transactions.
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	accountID, ok := contextAccountID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.ledgerSvc.ListTransactions(c.Request.Context(), accountID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		items = append(items, toTransactionResponse(&txs[i]))
	}
	response.OK(c, dto.TransactionListResponse{
		Items:  items,
		Limit:  limit,
		Offset: offset,
	})
}

// contextAccountID reads the player account set by the identity middleware.
func contextAccountID(c *gin.Context) (int64, bool) {
	accountID := c.GetInt64(middleware.CtxAccountID)
	if accountID <= 0 {
		response.Error(c, apperror.ErrInvalidToken())
		return 0, false
	}
	return accountID, true
}

func toTransactionResponse(t *domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Amount:      t.Amount,
		Kind:        string(t.Kind),
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toMutationResponse(m *ports.BalanceMutation) dto.MutationResponse {
	return dto.MutationResponse{
		NewBalance:  m.NewBalance,
		Transaction: toTransactionResponse(m.Transaction),
	}
}
