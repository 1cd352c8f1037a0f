package http_handlers

import (
	"net/http"

	"github.com/baechuer/expense-tracker/internal/transport/http/dto"
	"github.com/baechuer/expense-tracker/internal/transport/http/response"
)

// PremiumFeatures are the capabilities unlocked by an active subscription.
var PremiumFeatures = []string{
	"advanced_reports",
	"export_excel",
	"unlimited_categories",
	"recurring_transactions",
}

type PremiumHandler struct{}

func NewPremiumHandler() *PremiumHandler { return &PremiumHandler{} }

// Features is only reachable through the premium gate.
func (h *PremiumHandler) Features(w http.ResponseWriter, r *http.Request) {
	response.OK(w, dto.FeaturesData{Features: PremiumFeatures})
}
